package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "https://www.ebay.co.uk", cfg.Scraper.BaseURL)
	assert.Equal(t, 50, cfg.Scraper.ItemsPerPage)
	assert.True(t, cfg.Scraper.Headless)
	assert.Equal(t, 2, cfg.Scraper.MaxAttempts)
	assert.Equal(t, 10, cfg.Scraper.PerPageVisitCap)
	assert.Equal(t, 0.78, cfg.Scraper.USDToGBPRate)
	assert.Equal(t, 1000, cfg.Scraper.JitterMinMs)
	assert.Equal(t, 3000, cfg.Scraper.JitterMaxMs)

	// Optional backends stay off unless addressed.
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Database.Host)
	assert.Equal(t, 300, cfg.Redis.TTLSec)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCRAPER_BASE_URL", "https://www.ebay.com")
	t.Setenv("SCRAPER_HEADLESS", "false")
	t.Setenv("SCRAPER_USD_TO_GBP_RATE", "0.81")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://www.ebay.com", cfg.Scraper.BaseURL)
	assert.False(t, cfg.Scraper.Headless)
	assert.Equal(t, 0.81, cfg.Scraper.USDToGBPRate)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SCRAPER_HEADLESS", "kinda")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Scraper.Headless)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"Port out of range",
			func(c *Config) { c.Server.Port = 70000 },
			"invalid server port",
		},
		{
			"Relative base URL",
			func(c *Config) { c.Scraper.BaseURL = "/sch/i.html" },
			"not an absolute URL",
		},
		{
			"Zero attempts",
			func(c *Config) { c.Scraper.MaxAttempts = 0 },
			"at least 1 scrape attempt",
		},
		{
			"Negative rate",
			func(c *Config) { c.Scraper.USDToGBPRate = -1 },
			"must be positive",
		},
		{
			"Inverted jitter range",
			func(c *Config) { c.Scraper.JitterMinMs, c.Scraper.JitterMaxMs = 500, 100 },
			"invalid jitter range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("SCRAPER_USD_TO_GBP_RATE", "0")

	_, err := Load()
	assert.Error(t, err)
}
