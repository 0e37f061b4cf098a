// Package clock supplies the time source the engine reads and the fixed-rate
// loop that drives decay ticks.
package clock

import (
	"context"
	"sync"
	"time"
)

// Real reads the system clock.
type Real struct{}

func NewReal() *Real { return &Real{} }

func (Real) Now() time.Time { return time.Now() }

// Mock is a controllable time source for tests.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMock(start time.Time) *Mock { return &Mock{now: start} }

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d and returns the new instant.
func (m *Mock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// Loop calls a function at a fixed interval with the current instant.
type Loop struct {
	Interval time.Duration
	Now      func() time.Time
}

// Run blocks until ctx is done. fn runs on the loop goroutine, so ticks never
// overlap.
func (l Loop) Run(ctx context.Context, fn func(now time.Time)) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	interval := l.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(now())
		}
	}
}
