package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certiauth/ebay-sold-scraper/internal/scraper"
)

// RunStore persists a summary row per completed scrape run. It is an
// audit/history surface, not part of the extraction engine; runs succeed
// whether or not the store is configured.
type RunStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	MaxConns int32
}

// RunRecord is one stored run summary.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Query      string    `json:"query"`
	Pages      int       `json:"pages_requested"`
	PerPage    int       `json:"per_page_requested"`
	ItemCount  int       `json:"count"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	ElapsedSec float64   `json:"elapsed_sec"`
	CreatedAt  time.Time `json:"created_at"`
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	run_id      UUID PRIMARY KEY,
	query       TEXT NOT NULL,
	pages       INT NOT NULL,
	per_page    INT NOT NULL,
	item_count  INT NOT NULL,
	success     BOOLEAN NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	elapsed_sec DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*RunStore, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createRunsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure runs table: %w", err)
	}

	return &RunStore{
		pool:   pool,
		logger: logger.With("component", "run_store"),
	}, nil
}

func (s *RunStore) SaveRun(ctx context.Context, res *scraper.RunResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scrape_runs (run_id, query, pages, per_page, item_count, success, error, elapsed_sec)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (run_id) DO NOTHING`,
		res.RunID, res.Query, res.PagesRequested, res.PerPageRequested,
		res.Count, res.Success, res.Error, res.ElapsedSec)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, query, pages, per_page, item_count, success, error, elapsed_sec, created_at
		 FROM scrape_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Query, &r.Pages, &r.PerPage, &r.ItemCount,
			&r.Success, &r.Error, &r.ElapsedSec, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *RunStore) Close() {
	s.pool.Close()
}
