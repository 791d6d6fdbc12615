// Package ratelimit bounds outbound Telegram API calls on two time
// scales at once: a per-second allowance and a per-minute allowance.
// It is a coarse window counter, not a strict leaky bucket; steady-state
// throughput stays under both configured limits.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a two-tier window counter. Acquire blocks until both the
// second-level and minute-level allowance are available, then consumes
// one unit from each. Safe for concurrent use.
type Limiter struct {
	mu sync.Mutex

	perSecond int
	perMinute int

	secRemaining int
	minRemaining int

	secWindowStart time.Time
	minWindowStart time.Time

	now func() time.Time
}

// New creates a limiter allowing perSecond calls per second and
// perMinute calls per minute. Non-positive limits are treated as 1.
func New(perSecond, perMinute int) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if perMinute <= 0 {
		perMinute = 1
	}
	now := time.Now()
	return &Limiter{
		perSecond:      perSecond,
		perMinute:      perMinute,
		secRemaining:   perSecond,
		minRemaining:   perMinute,
		secWindowStart: now,
		minWindowStart: now,
		now:            time.Now,
	}
}

// Acquire blocks until a call slot is available in both windows, then
// consumes one unit from each. It only fails when ctx is done; left
// alone it always eventually succeeds.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait, ok := l.tryAcquire()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire refills any elapsed window, then either consumes one unit
// from both tiers or reports how long to sleep before the next attempt.
func (l *Limiter) tryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if elapsed := now.Sub(l.secWindowStart); elapsed >= time.Second {
		l.secRemaining = l.perSecond
		l.secWindowStart = now
	}
	if elapsed := now.Sub(l.minWindowStart); elapsed >= time.Minute {
		l.minRemaining = l.perMinute
		l.minWindowStart = now
	}

	if l.secRemaining > 0 && l.minRemaining > 0 {
		l.secRemaining--
		l.minRemaining--
		return 0, true
	}

	// Sleep until the longest exhausted window rolls over.
	var wait time.Duration
	if l.secRemaining <= 0 {
		wait = time.Second - now.Sub(l.secWindowStart)
	}
	if l.minRemaining <= 0 {
		if w := time.Minute - now.Sub(l.minWindowStart); w > wait {
			wait = w
		}
	}
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}
