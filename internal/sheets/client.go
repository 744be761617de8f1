// Package sheets wraps the spreadsheet values API: read a range, overwrite a
// range, append rows, and make sure a tab exists. Requests authenticate with
// a service-account key read lazily from disk.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var (
	ErrUnauthorized       = errors.New("spreadsheet authorization failed")
	ErrMissingSpreadsheet = errors.New("spreadsheet id not configured")
)

const (
	valueInputRaw   = "RAW"
	insertRows      = "INSERT_ROWS"
	requestTimeout  = 30 * time.Second
	defaultEndpoint = "https://sheets.googleapis.com/"
)

type Config struct {
	BaseURL         string
	SpreadsheetID   string
	CredentialsFile string
	// HTTPClient carries both the token exchange and the API calls; its
	// transport is wrapped with the oauth2 token source.
	HTTPClient *http.Client
}

type Client struct {
	cfg         Config
	credentials func() ([]byte, error)

	mu  sync.Mutex
	svc *gsheets.Service
}

// New builds a client whose credential file is read on first use, so a
// missing credential surfaces as a request error rather than at startup.
// A failed read is retried on the next call.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, credentials: func() ([]byte, error) {
		return LoadCredentials(cfg.CredentialsFile)
	}}
}

// NewWithCredentialsJSON builds a client from service-account key JSON.
func NewWithCredentialsJSON(cfg Config, data []byte) *Client {
	return &Client{cfg: cfg, credentials: func() ([]byte, error) {
		if _, err := ParseCredentials(data); err != nil {
			return nil, err
		}
		return data, nil
	}}
}

func (c *Client) service(ctx context.Context) (*gsheets.Service, error) {
	if c.cfg.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheet
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	key, err := c.credentials()
	if err != nil {
		return nil, err
	}
	jwtCfg, err := google.JWTConfigFromJSON(key, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}

	base := c.cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: requestTimeout}
	}
	// the token source outlives this call, so it gets its own context
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := oauth2.NewClient(tokenCtx, jwtCfg.TokenSource(tokenCtx))
	hc.Timeout = requestTimeout

	endpoint := defaultEndpoint
	if c.cfg.BaseURL != "" {
		endpoint = strings.TrimRight(c.cfg.BaseURL, "/") + "/"
	}
	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(hc), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

// Values reads a range such as "'Orders'!A1:F1". Empty trailing cells are
// omitted by the API.
func (c *Client) Values(ctx context.Context, rng string) ([][]string, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		out = append(out, cells)
	}
	return out, nil
}

// Update overwrites rng with rows.
func (c *Client) Update(ctx context.Context, rng string, rows [][]string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Spreadsheets.Values.Update(c.cfg.SpreadsheetID, rng, valueRange(rows)).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	return classify(err)
}

// Append adds rows after the last row of the table found in rng.
func (c *Client) Append(ctx context.Context, rng string, rows [][]string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Spreadsheets.Values.Append(c.cfg.SpreadsheetID, rng, valueRange(rows)).
		ValueInputOption(valueInputRaw).InsertDataOption(insertRows).Context(ctx).Do()
	return classify(err)
}

// EnsureSheet adds a tab named title unless the spreadsheet already has one.
func (c *Client) EnsureSheet(ctx context.Context, title string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	ss, err := svc.Spreadsheets.Get(c.cfg.SpreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{Requests: []*gsheets.Request{{
		AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: title}},
	}}}
	if _, err := svc.Spreadsheets.BatchUpdate(c.cfg.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

func valueRange(rows [][]string) *gsheets.ValueRange {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, v := range row {
			cells = append(cells, v)
		}
		values = append(values, cells)
	}
	return &gsheets.ValueRange{MajorDimension: "ROWS", Values: values}
}

// classify marks rejected credentials and 401/403 responses with ErrUnauthorized.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) &&
		(apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
