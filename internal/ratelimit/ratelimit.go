package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// JitterPacer inserts a randomized delay between browser navigations. The
// jitter is an anti-throttling policy, not a correctness mechanism; the
// range is configurable and the sleep is injectable for tests.
type JitterPacer struct {
	minDelay time.Duration
	maxDelay time.Duration
	sleep    func(context.Context, time.Duration) error
	rng      *rand.Rand
	mu       sync.Mutex
}

func NewJitterPacer(minDelay, maxDelay time.Duration) *JitterPacer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &JitterPacer{
		minDelay: minDelay,
		maxDelay: maxDelay,
		sleep:    sleepCtx,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSleep replaces the sleep implementation. Tests use this to make
// pacing observable and instantaneous.
func (p *JitterPacer) WithSleep(sleep func(context.Context, time.Duration) error) *JitterPacer {
	p.sleep = sleep
	return p
}

func (p *JitterPacer) SetDelay(minDelay, maxDelay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minDelay = minDelay
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	p.maxDelay = maxDelay
}

// Wait blocks for a random duration in [minDelay, maxDelay], or until the
// context is cancelled.
func (p *JitterPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	delay := p.minDelay
	if p.maxDelay > p.minDelay {
		delay += time.Duration(p.rng.Int63n(int64(p.maxDelay - p.minDelay)))
	}
	p.mu.Unlock()

	if delay <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
