package sheets

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	testSpreadsheet = "sheet-123"
	testEmail       = "svc@example.iam.gserviceaccount.com"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

type fakeValueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values,omitempty"`
}

type fakeAPI struct {
	t   *testing.T
	key *rsa.PrivateKey

	mu          sync.Mutex
	tokenCalls  int
	tabs        []string
	rows        [][]string
	failStatus  int
	lastAppend  string
	inputOption string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/token" {
		f.tokenCalls++
		require.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, jwtBearerGrant, r.PostForm.Get("grant_type"))
		tok, err := jwt.Parse(r.PostForm.Get("assertion"), func(tok *jwt.Token) (interface{}, error) {
			assert.Equal(f.t, "RS256", tok.Method.Alg())
			return &f.key.PublicKey, nil
		})
		require.NoError(f.t, err)
		claims := tok.Claims.(jwt.MapClaims)
		assert.Equal(f.t, testEmail, claims["iss"])
		assert.Equal(f.t, gsheets.SpreadsheetsScope, claims["scope"])
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1", "token_type": "Bearer", "expires_in": 3600,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("Authorization") != "Bearer tok-1" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"message":"unauthenticated"}}`))
		return
	}
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		w.Write([]byte(`{"error":{"code":` + strconv.Itoa(f.failStatus) + `,"message":"denied"}}`))
		return
	}

	sheetPath := "/v4/spreadsheets/" + testSpreadsheet
	switch {
	case r.URL.Path == sheetPath && r.Method == http.MethodGet:
		sheets := make([]map[string]interface{}, 0, len(f.tabs))
		for _, title := range f.tabs {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]string{"title": title}})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"sheets": sheets})
		return
	case r.URL.Path == sheetPath+":batchUpdate":
		var req gsheets.BatchUpdateSpreadsheetRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(f.t, req.Requests, 1)
		f.tabs = append(f.tabs, req.Requests[0].AddSheet.Properties.Title)
		w.Write([]byte(`{}`))
		return
	}

	prefix := sheetPath + "/values/"
	require.True(f.t, strings.HasPrefix(r.URL.Path, prefix), r.URL.Path)
	rng := strings.TrimPrefix(r.URL.Path, prefix)

	switch r.Method {
	case http.MethodGet:
		out := fakeValueRange{Range: rng}
		if len(f.rows) > 0 {
			out.Values = f.rows[:1]
		}
		json.NewEncoder(w).Encode(out)
	case http.MethodPut:
		f.inputOption = r.URL.Query().Get("valueInputOption")
		var in fakeValueRange
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		if len(f.rows) == 0 {
			f.rows = append(f.rows, in.Values...)
		} else {
			f.rows[0] = in.Values[0]
		}
		w.Write([]byte(`{}`))
	case http.MethodPost:
		require.True(f.t, strings.HasSuffix(rng, ":append"), rng)
		assert.Equal(f.t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		f.inputOption = r.URL.Query().Get("valueInputOption")
		f.lastAppend = strings.TrimSuffix(rng, ":append")
		var in fakeValueRange
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		f.rows = append(f.rows, in.Values...)
		w.Write([]byte(`{}`))
	}
}

func newTestKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func credentialsJSON(t *testing.T, keyPEM, tokenURI string) []byte {
	t.Helper()
	b, err := json.Marshal(Credentials{
		Type:        "service_account",
		ClientEmail: testEmail,
		PrivateKey:  keyPEM,
		TokenURI:    tokenURI,
	})
	require.NoError(t, err)
	return b
}

func setupFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	key, keyPEM := newTestKey(t)
	api := &fakeAPI{t: t, key: key}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := NewWithCredentialsJSON(
		Config{BaseURL: srv.URL, SpreadsheetID: testSpreadsheet, HTTPClient: srv.Client()},
		credentialsJSON(t, keyPEM, srv.URL+"/token"),
	)
	return api, client
}

func TestClient_UpdateAppendValues(t *testing.T) {
	api, client := setupFakeAPI(t)
	ctx := context.Background()

	vals, err := client.Values(ctx, "주문!A1:F1")
	require.NoError(t, err)
	assert.Empty(t, vals)

	require.NoError(t, client.Update(ctx, "주문!A1:F1", [][]string{{"a", "b"}}))
	assert.Equal(t, "RAW", api.inputOption)
	require.NoError(t, client.Append(ctx, "주문!A1", [][]string{{"1", "010"}}))
	assert.Equal(t, "RAW", api.inputOption)

	vals, err = client.Values(ctx, "주문!A1:F1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, vals)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "010"}}, api.rows)
	assert.Equal(t, "주문!A1", api.lastAppend)
	assert.Equal(t, 1, api.tokenCalls, "access token is cached")
}

func TestClient_EnsureSheet(t *testing.T) {
	api, client := setupFakeAPI(t)
	api.tabs = []string{"Sheet1"}
	ctx := context.Background()

	require.NoError(t, client.EnsureSheet(ctx, "주문"))
	assert.Equal(t, []string{"Sheet1", "주문"}, api.tabs)

	require.NoError(t, client.EnsureSheet(ctx, "주문"))
	assert.Equal(t, []string{"Sheet1", "주문"}, api.tabs, "an existing tab is left alone")
}

func TestClient_Unauthorized(t *testing.T) {
	api, client := setupFakeAPI(t)
	api.failStatus = http.StatusForbidden

	err := client.Append(context.Background(), "주문!A1", [][]string{{"x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}

func TestClient_BadRequestIsNotUnauthorized(t *testing.T) {
	api, client := setupFakeAPI(t)
	api.failStatus = http.StatusBadRequest

	err := client.Append(context.Background(), "주문!A1", [][]string{{"x"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestClient_MissingCredentialFile(t *testing.T) {
	client := New(Config{
		BaseURL:         "http://127.0.0.1:0",
		SpreadsheetID:   testSpreadsheet,
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	err := client.Append(context.Background(), "주문!A1", [][]string{{"x"}})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestClient_NotAServiceAccount(t *testing.T) {
	client := NewWithCredentialsJSON(
		Config{BaseURL: "http://127.0.0.1:0", SpreadsheetID: testSpreadsheet},
		[]byte(`{"type":"authorized_user","client_email":"a@b","private_key":"k"}`),
	)
	err := client.Append(context.Background(), "주문!A1", [][]string{{"x"}})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestClient_MissingSpreadsheetID(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:0"})
	err := client.Append(context.Background(), "주문!A1", [][]string{{"x"}})
	assert.ErrorIs(t, err, ErrMissingSpreadsheet)
}

func TestParseCredentials(t *testing.T) {
	c, err := ParseCredentials([]byte(`{"type":"service_account","client_email":"a@b","private_key":"k"}`))
	require.NoError(t, err)
	assert.Equal(t, "a@b", c.ClientEmail)

	_, err = ParseCredentials([]byte(`{"client_email":"a@b"}`))
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = ParseCredentials([]byte(`not json`))
	assert.Error(t, err)

	_, err = LoadCredentials("")
	assert.ErrorIs(t, err, ErrMissingCredential)
}
