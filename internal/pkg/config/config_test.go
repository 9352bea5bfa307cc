package config

import (
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "5000" || cfg.Addr() != ":5000" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.Auth.AccessTTL != 30*time.Minute || cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected token ttls: %v %v", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	}
	if cfg.Files.MaxSize != 50*1024*1024 {
		t.Fatalf("unexpected max file size: %d", cfg.Files.MaxSize)
	}
	if len(cfg.Files.AllowedTypes) != 4 || cfg.Files.AllowedTypes[3] != "text/csv" {
		t.Fatalf("unexpected allowed types: %v", cfg.Files.AllowedTypes)
	}
	if !cfg.Redis.Disabled || cfg.Redis.CacheTTL != time.Hour {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.RateLimit.Register != 5 || cfg.RateLimit.Login != 10 || cfg.RateLimit.Refresh != 20 || cfg.RateLimit.Burst != 0 {
		t.Fatalf("unexpected rate limits: %+v", cfg.RateLimit)
	}
	if cfg.MaxPageSize != 100 {
		t.Fatalf("unexpected max page size: %d", cfg.MaxPageSize)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(envconfig.MapLookuper(map[string]string{
		"PORT":                "8080",
		"DISABLE_DATABASE":    "true",
		"ACCESS_TOKEN_EXPIRE": "5m",
		"ALLOWED_ORIGINS":     "http://a.test,http://b.test",
		"STORAGE_BACKEND":     "minio",
		"MINIO_BUCKET":        "reports",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || !cfg.Database.Disabled || cfg.Auth.AccessTTL != 5*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Files.Backend != "minio" || cfg.Files.MinioBucket != "reports" {
		t.Fatalf("unexpected files config: %+v", cfg.Files)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"dev secret in production": {"ENV": "production"},
		"unknown storage backend":  {"STORAGE_BACKEND": "s3"},
		"zero page size":           {"MAX_PAGE_SIZE": "0"},
		"malformed duration":       {"CACHE_TTL": "soon"},
		"zero login budget":        {"RATE_LIMIT_LOGIN": "0"},
		"negative burst":           {"RATE_LIMIT_BURST": "-1"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := load(envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
