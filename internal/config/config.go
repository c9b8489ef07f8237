package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

type ScraperConfig struct {
	BaseURL         string
	SmokeURL        string
	ItemsPerPage    int
	ConditionFilter string
	Headless        bool
	NavTimeoutSec   int
	MaxAttempts     int
	RetryBaseSec    int
	PerPageVisitCap int
	USDToGBPRate    float64
	JitterMinMs     int
	JitterMaxMs     int
}

// RedisConfig enables the optional scrape-result cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSec   int
}

// DatabaseConfig enables the optional run-history store when Host is set.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		},
		Scraper: ScraperConfig{
			BaseURL:         getEnv("SCRAPER_BASE_URL", "https://www.ebay.co.uk"),
			SmokeURL:        getEnv("SCRAPER_SMOKE_URL", "https://example.com"),
			ItemsPerPage:    getEnvInt("SCRAPER_ITEMS_PER_PAGE", 50),
			ConditionFilter: getEnv("SCRAPER_CONDITION_FILTER", ""),
			Headless:        getEnvBool("SCRAPER_HEADLESS", true),
			NavTimeoutSec:   getEnvInt("SCRAPER_NAV_TIMEOUT", 45),
			MaxAttempts:     getEnvInt("SCRAPER_MAX_ATTEMPTS", 2),
			RetryBaseSec:    getEnvInt("SCRAPER_RETRY_BASE", 1),
			PerPageVisitCap: getEnvInt("SCRAPER_PAGE_VISIT_CAP", 10),
			USDToGBPRate:    getEnvFloat("SCRAPER_USD_TO_GBP_RATE", 0.78),
			JitterMinMs:     getEnvInt("SCRAPER_JITTER_MIN_MS", 1000),
			JitterMaxMs:     getEnvInt("SCRAPER_JITTER_MAX_MS", 3000),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTLSec:   getEnvInt("REDIS_RESULT_TTL", 300),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "sold_scraper"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("scraper base URL %q is not an absolute URL", c.Scraper.BaseURL)
	}

	if c.Scraper.MaxAttempts < 1 {
		return fmt.Errorf("at least 1 scrape attempt is required")
	}
	if c.Scraper.USDToGBPRate <= 0 {
		return fmt.Errorf("USD to GBP rate must be positive, got %v", c.Scraper.USDToGBPRate)
	}
	if c.Scraper.JitterMinMs < 0 || c.Scraper.JitterMaxMs < c.Scraper.JitterMinMs {
		return fmt.Errorf("invalid jitter range [%d, %d]", c.Scraper.JitterMinMs, c.Scraper.JitterMaxMs)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
