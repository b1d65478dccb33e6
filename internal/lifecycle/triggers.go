package lifecycle

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/channel"
)

// Signal is an environment event relevant to connectivity
type Signal int

const (
	// SignalVisible means the display became visible
	SignalVisible Signal = iota
	// SignalHidden means the display was blanked or hidden
	SignalHidden
	// SignalRestored means the device resumed from a suspended state
	SignalRestored
	// SignalOnline means the network regained connectivity
	SignalOnline
	// SignalFocus means the kiosk window regained input focus
	SignalFocus
	// SignalUnload means the kiosk is going away on purpose
	SignalUnload
)

func (s Signal) String() string {
	switch s {
	case SignalVisible:
		return "visible"
	case SignalHidden:
		return "hidden"
	case SignalRestored:
		return "restored"
	case SignalOnline:
		return "online"
	case SignalFocus:
		return "focus"
	case SignalUnload:
		return "unload"
	default:
		return "unknown"
	}
}

// Observer watches one source of environment signals.
// Observe blocks until ctx is done and reports signals through emit.
type Observer interface {
	Name() string
	Observe(ctx context.Context, emit func(Signal)) error
}

// Connection is the channel the triggers drive
type Connection interface {
	Connect()
	State() channel.State
	SetVisible(visible bool)
	Shutdown()
}

// Triggers maps environment signals to connection actions.
// Every action bypasses backoff; Connect is idempotent so nothing stacks.
type Triggers struct {
	logger *zap.Logger
	conn   Connection

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	observers map[string]context.CancelFunc
	listeners []signalListener
	nextID    int
	errs      error
	wg        sync.WaitGroup
}

// NewTriggers creates a trigger set bound to conn
func NewTriggers(logger *zap.Logger, conn Connection) *Triggers {
	ctx, cancel := context.WithCancel(context.Background())
	return &Triggers{
		logger:    logger,
		conn:      conn,
		ctx:       ctx,
		cancel:    cancel,
		observers: make(map[string]context.CancelFunc),
	}
}

// Register starts obs. Registering an observer name twice is a no-op.
func (t *Triggers) Register(obs Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := obs.Name()
	if _, ok := t.observers[name]; ok {
		t.logger.Debug("Observer already registered", zap.String("observer", name))
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	t.observers[name] = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.logger.Info("Environment observer started", zap.String("observer", name))
		err := obs.Observe(ctx, t.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Warn("Environment observer failed", zap.String("observer", name), zap.Error(err))
			t.mu.Lock()
			t.errs = multierr.Append(t.errs, err)
			t.mu.Unlock()
		}
	}()
}

type signalListener struct {
	id int
	fn func(Signal)
}

// OnSignal subscribes fn to every handled signal. Listeners run in
// registration order.
func (t *Triggers) OnSignal(fn func(Signal)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, signalListener{id: id, fn: fn})
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// Handle applies the action for sig and then notifies listeners
func (t *Triggers) Handle(sig Signal) {
	state := t.conn.State()
	t.logger.Debug("Environment signal", zap.Stringer("signal", sig), zap.Stringer("state", state))

	switch sig {
	case SignalVisible:
		t.conn.SetVisible(true)
		if state != channel.StateOpen {
			t.conn.Connect()
		}
	case SignalHidden:
		t.conn.SetVisible(false)
	case SignalRestored:
		t.conn.Connect()
	case SignalOnline, SignalFocus:
		if state == channel.StateClosed {
			t.conn.Connect()
		}
	case SignalUnload:
		t.conn.Shutdown()
	}

	t.mu.Lock()
	fns := make([]func(Signal), 0, len(t.listeners))
	for _, l := range t.listeners {
		fns = append(fns, l.fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(sig)
	}
}

// Stop cancels every observer and returns their accumulated failures
func (t *Triggers) Stop(ctx context.Context) error {
	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errs
}
