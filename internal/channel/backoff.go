package channel

import (
	"math/rand"
	"time"
)

const (
	defaultBackoffBase   = time.Second
	defaultBackoffMax    = 30 * time.Second
	defaultBackoffJitter = 250 * time.Millisecond
)

// Backoff computes reconnect delays: min(Base*2^(attempt-1), Max) plus
// a uniform jitter in [0, Jitter).
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter time.Duration

	// rand returns a value in [0, n); nil uses math/rand
	rand func(n int64) int64
}

// DefaultBackoff returns the 1s/30s/250ms policy shared by every socket in the daemon
func DefaultBackoff() Backoff {
	return Backoff{
		Base:   defaultBackoffBase,
		Max:    defaultBackoffMax,
		Jitter: defaultBackoffJitter,
	}
}

// Delay returns the deterministic part of the delay for attempt (1-based)
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}

// Next returns Delay(attempt) plus jitter
func (b Backoff) Next(attempt int) time.Duration {
	d := b.Delay(attempt)
	if b.Jitter <= 0 {
		return d
	}
	rnd := b.rand
	if rnd == nil {
		rnd = rand.Int63n
	}
	return d + time.Duration(rnd(int64(b.Jitter)))
}
