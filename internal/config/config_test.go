package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:8000" {
		t.Errorf("expected base url derived from port, got %s", cfg.BaseURL)
	}
	if cfg.RecordCount != 250 {
		t.Errorf("expected 250 records, got %d", cfg.RecordCount)
	}
	if cfg.LoadDelay != time.Second {
		t.Errorf("expected 1s load delay, got %s", cfg.LoadDelay)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %s", cfg.SearchDebounce)
	}
	if cfg.CopyFeedback != 2*time.Second {
		t.Errorf("expected 2s copy feedback, got %s", cfg.CopyFeedback)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RECORD_COUNT", "1000")
	t.Setenv("RECORD_SEED", "42")
	t.Setenv("LOAD_DELAY", "0s")
	t.Setenv("SEARCH_DEBOUNCE", "150ms")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.BaseURL != "http://localhost:9090" {
		t.Errorf("unexpected port/base url %s %s", cfg.Port, cfg.BaseURL)
	}
	if cfg.RecordCount != 1000 || cfg.RecordSeed != 42 {
		t.Errorf("unexpected record settings %d/%d", cfg.RecordCount, cfg.RecordSeed)
	}
	if cfg.LoadDelay != 0 || cfg.SearchDebounce != 150*time.Millisecond {
		t.Errorf("unexpected durations %s %s", cfg.LoadDelay, cfg.SearchDebounce)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
	if !c.IsProduction() {
		t.Error("expected IsProduction() to return true for production")
	}
}

func TestConfig_Level(t *testing.T) {
	c := &Config{LogLevel: "DEBUG"}
	lvl, err := c.Level()
	if err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v (%v)", lvl, err)
	}

	c.LogLevel = ""
	if lvl, _ := c.Level(); lvl != zerolog.InfoLevel {
		t.Errorf("expected info level by default, got %v", lvl)
	}
}

func validConfig() *Config {
	return &Config{
		Port:           "8000",
		Env:            "development",
		BaseURL:        "http://localhost:8000",
		RecordCount:    250,
		LoadDelay:      time.Second,
		SearchDebounce: 300 * time.Millisecond,
		CopyFeedback:   2 * time.Second,
		RateLimitRPS:   50,
		RateLimitBurst: 100,
		RequestTimeout: 30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"relative base url", func(c *Config) { c.BaseURL = "/claims" }, "BASE_URL"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"negative records", func(c *Config) { c.RecordCount = -1 }, "RECORD_COUNT"},
		{"too many records", func(c *Config) { c.RecordCount = 100000 }, "RECORD_COUNT"},
		{"negative load delay", func(c *Config) { c.LoadDelay = -time.Second }, "LOAD_DELAY"},
		{"zero debounce", func(c *Config) { c.SearchDebounce = 0 }, "SEARCH_DEBOUNCE"},
		{"zero copy feedback", func(c *Config) { c.CopyFeedback = 0 }, "COPY_FEEDBACK"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -1 }, "REQUEST_TIMEOUT"},
		{"negative rate", func(c *Config) { c.RateLimitRPS = -1 }, "RATE_LIMIT_RPS"},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, "RATE_LIMIT_BURST"},
		{"rate limiting disabled", func(c *Config) { c.RateLimitRPS = 0; c.RateLimitBurst = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
