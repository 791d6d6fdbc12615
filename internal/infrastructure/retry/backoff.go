package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes exponential retry delays with an upper bound and
// optional jitter
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultBackoff matches the source-side flood control comfortably:
// 1s, 2s, 4s, ... capped at 5 minutes.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: time.Second,
		MaxDelay:     5 * time.Minute,
		Multiplier:   2,
		Jitter:       true,
	}
}

// Delay returns the delay before retry number attempt (0-based):
// min(InitialDelay * Multiplier^attempt, MaxDelay). With jitter the
// result is scaled by a uniform factor in [0.5, 1.5].
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := b.Multiplier
	if mult <= 0 {
		mult = 2
	}

	d := float64(b.InitialDelay) * math.Pow(mult, float64(attempt))
	if max := float64(b.MaxDelay); b.MaxDelay > 0 && d > max {
		d = max
	}
	if b.Jitter {
		d *= 0.5 + rand.Float64()
	}
	return time.Duration(d)
}
