package ratelimit

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between geocoding requests.
const DefaultInterval = time.Second

// Limiter enforces a minimum interval between successive Wait returns.
// The interval starts when the Limiter is created, so the first Wait also
// blocks for one full interval.
type Limiter struct {
	lim   *rate.Limiter
	clock Clock
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the clock the limiter reserves against and sleeps on.
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// New creates a Limiter allowing one event per interval with no burst.
// A non-positive interval means DefaultInterval.
func New(interval time.Duration, opts ...Option) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &Limiter{
		lim:   rate.NewLimiter(rate.Every(interval), 1),
		clock: NewSystemClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	// Drain the initial token.
	l.lim.ReserveN(l.clock.Now(), 1)
	return l
}

// Wait blocks until the next request may be issued.
func (l *Limiter) Wait(ctx context.Context) error {
	now := l.clock.Now()
	r := l.lim.ReserveN(now, 1)
	if !r.OK() {
		return eris.New("ratelimit: reservation exceeds burst")
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(l.clock.Now())
		return eris.Wrap(err, "ratelimit: wait")
	}
	return nil
}

// Interval returns the configured spacing.
func (l *Limiter) Interval() time.Duration {
	return time.Duration(float64(time.Second) / float64(l.lim.Limit()))
}
