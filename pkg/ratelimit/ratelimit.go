package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Limiter spaces out operations by pausing a fixed interval, with optional
// jitter, between them. A zero Limiter never blocks.
type Limiter struct {
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
}

// NewLimiter creates a limiter that pauses for interval. Jitter must be
// between 0.0 and 1.0 and is clamped otherwise. If interval is <= 0 the
// limiter does not block.
func NewLimiter(interval time.Duration, jitter float64) *Limiter {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	if interval < 0 {
		interval = 0
	}
	return &Limiter{interval: interval, jitter: jitter}
}

// Interval returns the configured base pause.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

// Pause blocks for the interval, shifted by up to +/- jitter*interval, or
// until the context is canceled.
func (l *Limiter) Pause(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return ctx.Err()
	}

	d := l.interval
	if l.jitter > 0 {
		jitterFactor := (rand.Float64() * 2) - 1.0 // -1.0 to 1.0
		d += time.Duration(float64(l.interval) * l.jitter * jitterFactor)
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
