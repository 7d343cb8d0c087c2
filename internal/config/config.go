package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/claimsview/claimsview/internal/domain/claims"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	BaseURL        string        `mapstructure:"BASE_URL"`
	RecordCount    int           `mapstructure:"RECORD_COUNT"`
	RecordSeed     uint64        `mapstructure:"RECORD_SEED"`
	LoadDelay      time.Duration `mapstructure:"LOAD_DELAY"`
	SearchDebounce time.Duration `mapstructure:"SEARCH_DEBOUNCE"`
	CopyFeedback   time.Duration `mapstructure:"COPY_FEEDBACK"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "BASE_URL",
	"RECORD_COUNT", "RECORD_SEED", "LOAD_DELAY",
	"SEARCH_DEBOUNCE", "COPY_FEEDBACK",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RECORD_COUNT", claims.DefaultRecordCount)
	v.SetDefault("RECORD_SEED", 1)
	v.SetDefault("LOAD_DELAY", time.Second)
	v.SetDefault("SEARCH_DEBOUNCE", 300*time.Millisecond)
	v.SetDefault("COPY_FEEDBACK", 2*time.Second)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Level returns the configured log level, defaulting to info when
// LOG_LEVEL is empty.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("BASE_URL is not a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}

	if _, err := c.Level(); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if c.RecordCount < 0 || c.RecordCount > claims.MaxRecordCount {
		return fmt.Errorf("RECORD_COUNT must be between 0 and %d, got %d", claims.MaxRecordCount, c.RecordCount)
	}

	if c.LoadDelay < 0 {
		return fmt.Errorf("LOAD_DELAY must not be negative, got %s", c.LoadDelay)
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must be positive, got %s", c.SearchDebounce)
	}
	if c.CopyFeedback <= 0 {
		return fmt.Errorf("COPY_FEEDBACK must be positive, got %s", c.CopyFeedback)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}

	// A zero rate disables the limiter; a burst is then irrelevant.
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled, got %d", c.RateLimitBurst)
	}

	return nil
}
