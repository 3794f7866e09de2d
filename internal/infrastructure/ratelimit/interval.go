package ratelimit

import (
	"context"
	"sync"
	"time"

	"ainews/internal/ports"
)

// IntervalLimiter enforces a minimum gap between successive Wait calls. The
// first call never blocks; later calls wait out the remainder of the
// interval since the previous one. Clock and sleep are injectable so tests
// run without wall-clock delays.
type IntervalLimiter struct {
	interval time.Duration

	mu    sync.Mutex
	next  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ports.Limiter = (*IntervalLimiter)(nil)

// NewInterval builds a limiter; a non-positive interval never blocks.
func NewInterval(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until the minimum interval since the previous call has
// elapsed, or the context is cancelled.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := l.now()
	var wait time.Duration
	if now.Before(l.next) {
		wait = l.next.Sub(now)
	}
	l.next = now.Add(wait + l.interval)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return l.sleep(ctx, wait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
