package channel

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// heartbeat probes one open socket with PING frames and reports a missed
// PONG through onExpire. It is rebuilt for every socket.
type heartbeat struct {
	clock    clock.Clock
	interval time.Duration
	timeout  time.Duration
	ping     func(ts int64) error
	onExpire func()

	mu       sync.Mutex
	running  bool
	stopped  bool
	done     chan struct{}
	ticker   *clock.Ticker
	deadline *clock.Timer
	// seq identifies the armed deadline; bumping it disarms a callback already in flight
	seq      uint64
	lastPing time.Time
}

func newHeartbeat(clk clock.Clock, interval, timeout time.Duration, ping func(ts int64) error, onExpire func()) *heartbeat {
	return &heartbeat{
		clock:    clk,
		interval: interval,
		timeout:  timeout,
		ping:     ping,
		onExpire: onExpire,
	}
}

// start sends the first PING immediately and then one per interval.
// A heartbeat that was stopped never starts again.
func (h *heartbeat) start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.done = make(chan struct{})
	h.ticker = h.clock.Ticker(h.interval)
	ticks, done := h.ticker.C, h.done
	h.mu.Unlock()

	h.sendPing()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticks:
				h.sendPing()
			}
		}
	}()
}

// sendPing arms the deadline and then writes the PING without holding mu,
// so a stalled write is still caught by the deadline. A failed write
// expires the heartbeat at once.
func (h *heartbeat) sendPing() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	now := h.clock.Now()
	h.lastPing = now
	h.disarmLocked()
	seq := h.seq
	h.deadline = h.clock.AfterFunc(h.timeout, func() { h.expire(seq) })
	h.mu.Unlock()

	if err := h.ping(now.UnixMilli()); err != nil {
		h.expire(seq)
	}
}

func (h *heartbeat) expire(seq uint64) {
	h.mu.Lock()
	if !h.running || seq != h.seq {
		h.mu.Unlock()
		return
	}
	h.deadline = nil
	h.seq++
	h.mu.Unlock()

	h.onExpire()
}

// pong cancels the pending deadline
func (h *heartbeat) pong() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disarmLocked()
}

// stop tears down the ticker and any pending deadline
func (h *heartbeat) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if !h.running {
		return
	}
	h.running = false
	h.ticker.Stop()
	close(h.done)
	h.disarmLocked()
}

// pending reports whether a deadline is armed
func (h *heartbeat) pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deadline != nil
}

func (h *heartbeat) disarmLocked() {
	if h.deadline != nil {
		h.deadline.Stop()
		h.deadline = nil
	}
	h.seq++
}

func (h *heartbeat) setTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeout = d
}
