package config

import (
	"context"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Http:      HttpConfig{Port: ":8080"},
		Postgres:  PostgresConfig{Host: "localhost"},
		Auth:      AuthConfig{JWTSecret: strings.Repeat("k", 32)},
		Webhook:   WebhookConfig{URL: "http://hooks.local/in"},
		Hierarchy: HierarchyConfig{CacheTTL: time.Minute, RefreshSpec: "@every 5m"},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(c *Config){
		"port_without_colon": func(c *Config) { c.Http.Port = "8080" },
		"no_postgres_host":   func(c *Config) { c.Postgres.Host = "" },
		"short_secret":       func(c *Config) { c.Auth.JWTSecret = "short" },
		"no_webhook_url":     func(c *Config) { c.Webhook.URL = "" },
		"zero_ttl":           func(c *Config) { c.Hierarchy.CacheTTL = 0 },
		"bad_cron":           func(c *Config) { c.Hierarchy.RefreshSpec = "every tuesday" },
	}
	for name, mutate := range cases {
		c := validConfig()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	c := validConfig()
	c.Webhook = WebhookConfig{Disabled: true}
	if err := c.Validate(); err != nil {
		t.Fatalf("disabled webhook needs no url, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 40))
	t.Setenv("WEBHOOK_DISABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://admin.example, ,https://hr.example")
	t.Setenv("HIERARCHY_CACHE_TTL", "2m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Http.CORSOrigins) != 2 || cfg.Http.CORSOrigins[1] != "https://hr.example" {
		t.Fatalf("unexpected origins: %v", cfg.Http.CORSOrigins)
	}
	if cfg.Hierarchy.CacheTTL != 2*time.Minute {
		t.Fatalf("unexpected ttl: %v", cfg.Hierarchy.CacheTTL)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
}
