package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/catalog-order-form/internal/cart"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ORDER_FORM_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data.csv", cfg.CatalogPath)
	assert.Equal(t, cart.PolicyIncrement, cfg.Policy)
	assert.Equal(t, CartStoreMemory, cfg.CartStore)
	assert.Equal(t, OrderSinkSheets, cfg.OrderSink)
	assert.Equal(t, 24*time.Hour, cfg.SessionExpiration)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":9090\"\ncatalogPath: /srv/catalog.csv\ncartReaddPolicy: ignore\nsessionTTL: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ORDER_FORM_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr, "env overrides file")
	assert.Equal(t, "/srv/catalog.csv", cfg.CatalogPath)
	assert.Equal(t, cart.PolicyIgnore, cfg.Policy)
	assert.Equal(t, 30*time.Minute, cfg.SessionExpiration)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"policy":         {"CART_READD_POLICY": "double"},
		"store":          {"CART_STORE": "disk"},
		"redis no url":   {"CART_STORE": "redis", "REDIS_URL": ""},
		"sink":           {"ORDER_SINK": "email"},
		"postgres no db": {"ORDER_SINK": "postgres", "DATABASE_URL": ""},
		"ttl":            {"SESSION_TTL": "forever"},
		"timezone":       {"TIMEZONE": "Mars/Base"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_PolicyErrorFromCart(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CART_READD_POLICY", "double")
	_, err := Load()
	assert.ErrorIs(t, err, cart.ErrUnknownPolicy)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
