package channel

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

// State is the connection state of a Manager
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// MinPongTimeout is the smallest pong timeout accepted at runtime
const MinPongTimeout = time.Second

// Socket is one established duplex connection. A Socket is never reused
// after Close.
type Socket interface {
	// ReadMessage blocks until a frame arrives or the socket fails
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Dialer opens sockets
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces the wall clock
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) { m.clock = clk }
}

// WithBackoff replaces the reconnect policy
func WithBackoff(b Backoff) Option {
	return func(m *Manager) { m.backoff = b }
}

// Manager owns the session event socket: it connects, supervises the
// socket with a heartbeat, dispatches inbound frames on its Bus and
// reconnects with backoff after unexpected closes.
type Manager struct {
	logger       *zap.Logger
	dialer       Dialer
	url          string
	clock        clock.Clock
	backoff      Backoff
	pingInterval time.Duration
	bus          *Bus

	mu              sync.Mutex
	state           State
	sock            Socket
	hb              *heartbeat
	pongTimeout     time.Duration
	shouldReconnect bool
	attempts        int
	// gen identifies the current connection attempt; every close bumps it
	gen            uint64
	cancelDial     context.CancelFunc
	reconnectTimer *clock.Timer
	reconnectSeq   uint64
	visible        bool

	writeMu sync.Mutex
}

// NewManager creates a Manager for cfg's event channel URL
func NewManager(logger *zap.Logger, cfg domain.Config, dialer Dialer, opts ...Option) *Manager {
	m := &Manager{
		logger:          logger,
		dialer:          dialer,
		url:             cfg.GetEventsURL(),
		clock:           clock.New(),
		backoff:         DefaultBackoff(),
		pingInterval:    cfg.GetPingInterval(),
		pongTimeout:     cfg.GetPongTimeout(),
		bus:             NewBus(),
		shouldReconnect: true,
		visible:         true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.pongTimeout < MinPongTimeout {
		m.pongTimeout = MinPongTimeout
	}
	return m
}

// Start enables reconnection and opens the channel
func (m *Manager) Start(ctx context.Context) error {
	m.logger.Info("Starting event channel", zap.String("url", m.url))
	m.mu.Lock()
	m.shouldReconnect = true
	m.mu.Unlock()
	m.Connect()
	return nil
}

// Stop is the intentional teardown
func (m *Manager) Stop(ctx context.Context) error {
	m.Shutdown()
	return nil
}

// Bus returns the subscription surface
func (m *Manager) Bus() *Bus {
	return m.bus
}

// OnMessage subscribes fn to inbound frames of msgType
func (m *Manager) OnMessage(msgType string, fn func(domain.Envelope)) func() {
	return m.bus.OnMessage(msgType, fn)
}

// OnConnectivity subscribes fn to open/close transitions
func (m *Manager) OnConnectivity(fn func(connected bool)) func() {
	return m.bus.OnConnectivity(fn)
}

// Connected reports whether the channel is OPEN
func (m *Manager) Connected() bool {
	return m.State() == StateOpen
}

// State returns the current connection state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns the reconnect attempt counter
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// ReconnectPending reports whether a retry timer is armed
func (m *Manager) ReconnectPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnectTimer != nil
}

// SetVisible records display visibility. While hidden, a firing retry
// timer does not dial; the next visibility trigger reconnects instead.
func (m *Manager) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
}

// SetPongTimeout applies a runtime override; values under one second are ignored
func (m *Manager) SetPongTimeout(d time.Duration) {
	if d < MinPongTimeout {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pongTimeout = d
	if m.hb != nil {
		m.hb.setTimeout(d)
	}
	m.logger.Debug("Pong timeout updated", zap.Duration("timeout", d))
}

// Connect opens the channel unless it is already OPEN or CONNECTING.
// It never blocks; the dial runs in the background. Any pending retry
// timer is cancelled.
func (m *Manager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.shouldReconnect || m.state != StateClosed {
		return
	}
	m.stopReconnectLocked()

	m.state = StateConnecting
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel

	m.logger.Debug("Connecting event channel", zap.Int("attempt", m.attempts))
	go m.dial(ctx, gen)
}

// Send writes env if the channel is OPEN and reports whether it was written.
// Nothing is queued.
func (m *Manager) Send(env domain.Envelope) bool {
	m.mu.Lock()
	sock := m.sock
	open := m.state == StateOpen
	m.mu.Unlock()
	if !open || sock == nil {
		return false
	}

	data, err := json.Marshal(env)
	if err != nil {
		m.logger.Warn("Failed to encode frame", zap.String("type", env.Type), zap.Error(err))
		return false
	}
	if err := m.write(sock, data); err != nil {
		m.logger.Debug("Failed to send frame", zap.String("type", env.Type), zap.Error(err))
		return false
	}
	return true
}

// Shutdown disables reconnection and closes the channel
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.shouldReconnect = false
	m.stopReconnectLocked()
	wasOpen := m.state == StateOpen
	if m.state != StateClosed {
		m.closeLocked()
	}
	m.mu.Unlock()

	m.logger.Info("Event channel shut down")
	if wasOpen {
		m.bus.PublishConnectivity(false)
	}
}

func (m *Manager) dial(ctx context.Context, gen uint64) {
	sock, err := m.dialer.Dial(ctx, m.url)

	m.mu.Lock()
	if gen != m.gen || m.state != StateConnecting {
		m.mu.Unlock()
		if sock != nil {
			_ = sock.Close()
		}
		return
	}
	m.cancelDial = nil

	if err != nil {
		m.logger.Debug("Event channel dial failed", zap.Error(err))
		m.closeLocked()
		info, scheduled := m.scheduleReconnectLocked()
		m.mu.Unlock()
		m.bus.PublishConnectivity(false)
		if scheduled {
			m.bus.PublishReconnect(info)
		}
		return
	}

	m.sock = sock
	m.state = StateOpen
	m.attempts = 0
	m.stopReconnectLocked()
	hb := newHeartbeat(m.clock, m.pingInterval, m.pongTimeout,
		func(ts int64) error { return m.sendPing(sock, ts) },
		func() { m.forceClose(gen) })
	m.hb = hb
	m.mu.Unlock()

	// The first PING is written here, outside mu. A close that raced it has
	// already stopped hb and reported connectivity=false.
	hb.start()
	m.mu.Lock()
	current := gen == m.gen
	m.mu.Unlock()
	if !current {
		return
	}

	m.logger.Info("Event channel connected", zap.String("url", m.url))
	m.bus.PublishConnectivity(true)

	go m.readLoop(sock, gen)
}

func (m *Manager) readLoop(sock Socket, gen uint64) {
	for {
		data, err := sock.ReadMessage()
		if err != nil {
			m.handleClose(gen, err)
			return
		}
		m.handleFrame(gen, data)
	}
}

func (m *Manager) handleFrame(gen uint64, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		m.logger.Debug("Dropping malformed frame", zap.Error(err))
		return
	}

	m.mu.Lock()
	current := gen == m.gen
	hb := m.hb
	m.mu.Unlock()
	if !current {
		return
	}

	if env.Type == domain.MessagePong {
		if hb != nil {
			hb.pong()
		}
		return
	}
	m.bus.PublishMessage(env)
}

// handleClose runs when the socket of generation gen fails
func (m *Manager) handleClose(gen uint64, cause error) {
	m.mu.Lock()
	if gen != m.gen || m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.closeLocked()
	info, scheduled := m.scheduleReconnectLocked()
	m.mu.Unlock()

	if errors.Is(cause, errForcedClose) {
		m.logger.Warn("Heartbeat failed, closing event channel")
	} else {
		m.logger.Info("Event channel closed", zap.Error(cause))
	}
	m.bus.PublishConnectivity(false)
	if scheduled {
		m.bus.PublishReconnect(info)
	}
}

var errForcedClose = errors.New("no pong before deadline")

func (m *Manager) forceClose(gen uint64) {
	m.handleClose(gen, errForcedClose)
}

// closeLocked tears down the socket and heartbeat; mu must be held.
// The socket goes first so a write stuck on it returns.
func (m *Manager) closeLocked() {
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.sock != nil {
		_ = m.sock.Close()
		m.sock = nil
	}
	if m.hb != nil {
		m.hb.stop()
		m.hb = nil
	}
	m.state = StateClosed
	m.gen++
}

// scheduleReconnectLocked arms the retry timer, replacing any pending one.
// The caller publishes the returned info once mu is released.
func (m *Manager) scheduleReconnectLocked() (ReconnectInfo, bool) {
	if !m.shouldReconnect {
		return ReconnectInfo{}, false
	}
	m.attempts++
	delay := m.backoff.Next(m.attempts)

	m.stopReconnectLocked()
	seq := m.reconnectSeq
	m.reconnectTimer = m.clock.AfterFunc(delay, func() { m.fireReconnect(seq) })

	m.logger.Debug("Reconnect scheduled",
		zap.Int("attempt", m.attempts),
		zap.Duration("delay", delay))

	return ReconnectInfo{Attempt: m.attempts, Delay: delay}, true
}

func (m *Manager) fireReconnect(seq uint64) {
	m.mu.Lock()
	if seq != m.reconnectSeq {
		m.mu.Unlock()
		return
	}
	m.reconnectTimer = nil
	m.reconnectSeq++
	if !m.visible {
		m.mu.Unlock()
		m.logger.Debug("Display hidden, deferring reconnect")
		return
	}
	m.mu.Unlock()

	m.Connect()
}

func (m *Manager) stopReconnectLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.reconnectSeq++
}

func (m *Manager) sendPing(sock Socket, ts int64) error {
	data, err := json.Marshal(domain.Envelope{Type: domain.MessagePing, TS: ts})
	if err != nil {
		return err
	}
	return m.write(sock, data)
}

func (m *Manager) write(sock Socket, data []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return sock.WriteMessage(data)
}
