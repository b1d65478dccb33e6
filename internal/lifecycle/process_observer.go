//go:build unix

package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// ProcessObserver reports SIGCONT, sent when the kiosk process is resumed
// after being stopped, as a restore.
type ProcessObserver struct {
	logger *zap.Logger
}

// NewProcessObserver creates a process signal observer
func NewProcessObserver(logger *zap.Logger) *ProcessObserver {
	return &ProcessObserver{logger: logger}
}

// Name implements Observer
func (p *ProcessObserver) Name() string {
	return "process"
}

// Observe implements Observer
func (p *ProcessObserver) Observe(ctx context.Context, emit func(Signal)) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCONT)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
			p.logger.Info("Process resumed")
			emit(SignalRestored)
		}
	}
}
