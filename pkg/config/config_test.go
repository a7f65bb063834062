package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
service_name = "catalog"

[http]
port = 9090

[database]
dsn = "user:pass@tcp(localhost:3306)/shop"

[catalog]
page_size = 24
category_limit = 6
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("http.port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Catalog.PageSize != 24 || cfg.Catalog.CategoryLimit != 6 {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Catalog.PerCategoryOfferLimit != 8 {
		t.Errorf("per_category_offer_limit default = %d, want 8", cfg.Catalog.PerCategoryOfferLimit)
	}
	if cfg.Catalog.Source != "mysql" {
		t.Errorf("source default = %q, want mysql", cfg.Catalog.Source)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
[database]
dsn = "dsn"
`)
	t.Setenv("APP_CATALOG_PAGE_SIZE", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.PageSize != 5 {
		t.Errorf("page_size = %d, want 5 from env", cfg.Catalog.PageSize)
	}
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_DATABASE_DSN", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "from-env" {
		t.Errorf("dsn = %q, want from-env", cfg.Database.DSN)
	}
	if cfg.Catalog.PageSize != 12 {
		t.Errorf("page_size = %d, want default 12", cfg.Catalog.PageSize)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			ServiceName: "catalog",
			HTTP:        HTTPConfig{Port: 8080},
			GRPC:        GRPCConfig{Port: 50051},
			Database:    DatabaseConfig{Driver: "mysql", DSN: "dsn"},
			Catalog:     CatalogConfig{Source: "mysql", PageSize: 12, CategoryLimit: 4, PerCategoryOfferLimit: 8},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero page size", func(c *Config) { c.Catalog.PageSize = 0 }, "page_size"},
		{"negative limit", func(c *Config) { c.Catalog.CategoryLimit = -1 }, "limits"},
		{"unknown source", func(c *Config) { c.Catalog.Source = "ftp" }, "unsupported catalog source"},
		{"mysql without dsn", func(c *Config) { c.Database.DSN = "" }, "DSN"},
		{"http without url", func(c *Config) { c.Catalog.Source = "http" }, "upstream_url"},
		{"http with url", func(c *Config) { c.Catalog.Source = "http"; c.Catalog.UpstreamURL = "http://shop" }, ""},
		{"rate limit needs redis", func(c *Config) { c.RateLimit.Enabled = true }, "redis"},
		{"kafka needs brokers", func(c *Config) { c.Kafka.Enabled = true }, "brokers"},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "HTTP port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
