package lifecycle

import "context"

// Manual is an observer fed programmatically, e.g. by an embedding shell
// forwarding window focus.
type Manual struct {
	signals chan Signal
}

// NewManual creates a manual observer
func NewManual() *Manual {
	return &Manual{signals: make(chan Signal, 8)}
}

// Name implements Observer
func (m *Manual) Name() string {
	return "manual"
}

// Emit queues sig for delivery. Signals beyond the buffer are dropped.
func (m *Manual) Emit(sig Signal) {
	select {
	case m.signals <- sig:
	default:
	}
}

// Observe implements Observer
func (m *Manual) Observe(ctx context.Context, emit func(Signal)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-m.signals:
			emit(sig)
		}
	}
}
