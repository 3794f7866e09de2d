package scheduler

import (
	"context"
	"time"

	"ainews/internal/ports"
)

// TickerScheduler triggers the job on a fixed interval, firing once
// immediately on start.
type TickerScheduler struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler builds a scheduler with the given interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{interval: interval}
}

// Start launches the ticking goroutine. Calling Start twice is a no-op.
func (t *TickerScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || t.interval <= 0 {
		return nil
	}
	if t.stop != nil {
		return nil
	}

	t.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case tick := <-ticker.C:
				job(tick)
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (t *TickerScheduler) Stop(ctx context.Context) error {
	if t.stop == nil {
		return nil
	}
	close(t.stop)
	t.stop = nil
	return nil
}
