package views

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Cooldown counts a server-supplied retry-after down in whole seconds.
// While it is above zero the gated action is disabled.
type Cooldown struct {
	clock clock.Clock

	mu        sync.Mutex
	remaining int
	ticker    *clock.Ticker
	done      chan struct{}
	listeners map[int]func(int)
	nextID    int
}

// NewCooldown creates an idle countdown
func NewCooldown(clk clock.Clock) *Cooldown {
	return &Cooldown{clock: clk, listeners: make(map[int]func(int))}
}

// Start (re)starts the countdown at seconds. Non-positive values are ignored.
// A restart replaces the ticker so the next tick is a full second away.
func (c *Cooldown) Start(seconds int) {
	if seconds <= 0 {
		return
	}

	c.mu.Lock()
	c.remaining = seconds
	c.stopLocked()
	ticker := c.clock.Ticker(time.Second)
	done := make(chan struct{})
	c.ticker, c.done = ticker, done
	c.mu.Unlock()

	c.notify(seconds)
	go c.run(ticker, done)
}

// Remaining returns the seconds left, 0 when idle
func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Active reports whether the countdown is still running
func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}

// OnTick subscribes fn to every change of the remaining seconds
func (c *Cooldown) OnTick(fn func(remaining int)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Stop cancels a running countdown and resets it to zero
func (c *Cooldown) Stop() {
	c.mu.Lock()
	c.remaining = 0
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Cooldown) run(ticker *clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.ticker != ticker {
			c.mu.Unlock()
			return
		}
		if c.remaining > 0 {
			c.remaining--
		}
		remaining := c.remaining
		if remaining == 0 {
			c.stopLocked()
		}
		c.mu.Unlock()

		c.notify(remaining)
		if remaining == 0 {
			return
		}
	}
}

func (c *Cooldown) stopLocked() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.done)
	c.ticker, c.done = nil, nil
}

func (c *Cooldown) notify(remaining int) {
	c.mu.Lock()
	fns := make([]func(int), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(remaining)
	}
}
