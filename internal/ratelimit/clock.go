// Package ratelimit paces outbound geocoding requests against an
// injectable clock.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// Clock is the time source a Limiter waits on.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock uses the wall clock.
type SystemClock struct {
	clock clock.Clock
}

// NewSystemClock returns a SystemClock backed by the real time source.
func NewSystemClock() *SystemClock {
	return &SystemClock{clock: clock.New()}
}

// Now implements Clock.
func (c *SystemClock) Now() time.Time { return c.clock.Now() }

// Sleep implements Clock.
func (c *SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := c.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ManualClock is a Clock whose Sleep returns immediately after moving Now
// forward. Tests use it to check pacing without waiting.
type ManualClock struct {
	mu     sync.Mutex
	mock   *clock.Mock
	slept  time.Duration
	sleeps int
}

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	m := clock.NewMock()
	m.Add(start.Sub(m.Now()))
	return &ManualClock{mock: m}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	return c.mock.Now()
}

// Sleep implements Clock.
func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps++
	c.advance(d)
	return nil
}

// Advance moves the clock forward without counting as a sleep.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance(d)
}

func (c *ManualClock) advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mock.Add(d)
	c.slept += d
}

// Slept returns the total time the clock was moved forward.
func (c *ManualClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// Sleeps returns how many Sleep calls advanced the clock.
func (c *ManualClock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sleeps
}
