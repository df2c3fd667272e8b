package launcher

import (
	"context"
	"time"
)

// clock isolates the poll loop from real time.
type clock interface {
	now() time.Time
	since(t time.Time) time.Duration
	sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) now() time.Time {
	return time.Now()
}

func (realClock) since(t time.Time) time.Duration {
	return time.Since(t)
}

func (realClock) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
