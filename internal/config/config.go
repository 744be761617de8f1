package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/wichananm65/catalog-order-form/internal/cart"
)

const (
	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"

	OrderSinkSheets   = "sheets"
	OrderSinkPostgres = "postgres"
	OrderSinkLog      = "log"
)

// Config holds environment-driven configuration. A YAML file named by
// CONFIG_FILE may provide the same keys; environment variables win.
type Config struct {
	Addr            string `yaml:"addr"`
	CatalogPath     string `yaml:"catalogPath"`
	SearchBaseURL   string `yaml:"searchBaseURL"`
	CartReaddPolicy string `yaml:"cartReaddPolicy"`
	CartStore       string `yaml:"cartStore"`
	RedisURL        string `yaml:"redisURL"`
	SessionTTL      string `yaml:"sessionTTL"`
	OrderSink       string `yaml:"orderSink"`
	SheetID         string `yaml:"sheetID"`
	// SheetName is the tab orders are appended to. It is created on the
	// first submission if the spreadsheet does not have it yet.
	SheetName       string `yaml:"sheetName"`
	SheetsBaseURL   string `yaml:"sheetsBaseURL"`
	CredentialsFile string `yaml:"credentialsFile"`
	DatabaseURL     string `yaml:"databaseURL"`
	Timezone        string `yaml:"timezone"`

	// resolved from the string fields by Load
	SessionExpiration time.Duration  `yaml:"-"`
	Location          *time.Location `yaml:"-"`
	Policy            cart.Policy    `yaml:"-"`
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		CatalogPath:     "data.csv",
		SearchBaseURL:   "https://search.shopping.naver.com/search/all",
		CartReaddPolicy: string(cart.PolicyIncrement),
		CartStore:       CartStoreMemory,
		SessionTTL:      "24h",
		OrderSink:       OrderSinkSheets,
		SheetName:       "주문",
		SheetsBaseURL:   "https://sheets.googleapis.com",
		Timezone:        "Asia/Seoul",
	}
}

// Load reads configuration from CONFIG_FILE (optional) and environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	overrideFromEnv(&cfg)

	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	env := map[string]*string{
		"ORDER_FORM_ADDR":         &cfg.Addr,
		"CATALOG_PATH":            &cfg.CatalogPath,
		"SEARCH_BASE_URL":         &cfg.SearchBaseURL,
		"CART_READD_POLICY":       &cfg.CartReaddPolicy,
		"CART_STORE":              &cfg.CartStore,
		"REDIS_URL":               &cfg.RedisURL,
		"SESSION_TTL":             &cfg.SessionTTL,
		"ORDER_SINK":              &cfg.OrderSink,
		"SHEET_ID":                &cfg.SheetID,
		"SHEET_NAME":              &cfg.SheetName,
		"SHEETS_BASE_URL":         &cfg.SheetsBaseURL,
		"GOOGLE_CREDENTIALS_FILE": &cfg.CredentialsFile,
		"DATABASE_URL":            &cfg.DatabaseURL,
		"TIMEZONE":                &cfg.Timezone,
	}
	for key, dst := range env {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) resolve() error {
	policy, err := cart.ParsePolicy(c.CartReaddPolicy)
	if err != nil {
		return fmt.Errorf("invalid CART_READD_POLICY %q: %w", c.CartReaddPolicy, err)
	}
	c.Policy = policy

	switch c.CartStore {
	case CartStoreMemory:
	case CartStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("CART_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("invalid CART_STORE %q", c.CartStore)
	}

	switch c.OrderSink {
	case OrderSinkSheets, OrderSinkLog:
	case OrderSinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("ORDER_SINK=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("invalid ORDER_SINK %q", c.OrderSink)
	}

	ttl, err := time.ParseDuration(c.SessionTTL)
	if err != nil || ttl <= 0 {
		return fmt.Errorf("invalid SESSION_TTL %q", c.SessionTTL)
	}
	c.SessionExpiration = ttl

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	return nil
}
