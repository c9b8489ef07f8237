package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/certiauth/ebay-sold-scraper/internal/scraper"
)

// ResultCache is a TTL cache of serialized scrape responses, keyed by the
// clamped request. A hit saves a whole browser run for repeated queries;
// a miss or a Redis failure just means scraping as usual.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "result_cache"),
	}, nil
}

// Key derives the cache key from everything that changes a run's outcome.
func Key(req scraper.ScrapeRequest) string {
	return fmt.Sprintf("scrape:%s:%d:%d:%t:%v:%t",
		req.Query, req.Pages, req.PerPage, req.Headless, req.USDRate, req.Mobile)
}

func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return payload, true
}

func (c *ResultCache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (c *ResultCache) Close() error {
	return c.client.Close()
}
