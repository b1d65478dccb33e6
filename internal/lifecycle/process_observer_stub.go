//go:build !unix

package lifecycle

import (
	"context"

	"go.uber.org/zap"
)

// ProcessObserver stub for platforms without SIGCONT
type ProcessObserver struct {
	logger *zap.Logger
}

// NewProcessObserver creates a stub observer
func NewProcessObserver(logger *zap.Logger) *ProcessObserver {
	return &ProcessObserver{logger: logger}
}

// Name implements Observer
func (p *ProcessObserver) Name() string {
	return "process"
}

// Observe blocks until ctx is done
func (p *ProcessObserver) Observe(ctx context.Context, emit func(Signal)) error {
	<-ctx.Done()
	return ctx.Err()
}
