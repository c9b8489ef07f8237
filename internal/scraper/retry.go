package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AttemptFunc runs one full scrape attempt. A returned error is a
// structural execution failure; a nil error with an unsuccessful result is
// a clean run that legitimately found nothing.
type AttemptFunc func(ctx context.Context, attempt int) (*RunResult, error)

// RetryOrchestrator wraps whole-run attempts with bounded retries and
// exponential backoff. The sleep function is injectable so tests can
// observe the backoff schedule without waiting on it.
type RetryOrchestrator struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration)
	logger      *slog.Logger
}

func NewRetryOrchestrator(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *RetryOrchestrator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &RetryOrchestrator{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Sleep:       time.Sleep,
		logger:      logger.With("component", "retry"),
	}
}

// Run executes fn up to MaxAttempts times, sleeping 2^(attempt-1) base
// units between failed attempts.
//
// A clean attempt that collected zero items is terminal: retrying an
// unchanged deterministic query against unchanged content rarely changes
// the outcome, so "ran correctly but found nothing" is returned as-is
// rather than burning further attempts. An execution failure that still
// salvaged items is likewise terminal; the partial result stands.
func (o *RetryOrchestrator) Run(ctx context.Context, req ScrapeRequest, fn AttemptFunc) *RunResult {
	var lastErr error

	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		res, err := fn(ctx, attempt)
		if err == nil {
			return res
		}
		if res != nil && len(res.Items) > 0 {
			o.logger.Warn("attempt failed after collecting items, returning partial result",
				"attempt", attempt, "items", len(res.Items), "error", err)
			return res
		}

		lastErr = err
		o.logger.Warn("attempt failed", "attempt", attempt, "max_attempts", o.MaxAttempts, "error", err)

		if attempt < o.MaxAttempts {
			backoff := o.BaseDelay << (attempt - 1)
			o.logger.Info("backing off before retry", "sleep", backoff)
			o.Sleep(backoff)
		}
	}

	return failedRunResult(req, fmt.Sprintf("all %d attempts failed: %v", o.MaxAttempts, lastErr))
}
