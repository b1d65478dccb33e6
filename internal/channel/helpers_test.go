package channel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

type stubConfig struct {
	url      string
	interval time.Duration
	timeout  time.Duration
}

func (c stubConfig) GetServerURL() string           { return "http://127.0.0.1:6680" }
func (c stubConfig) GetAPIPrefix() string           { return "/pibox" }
func (c stubConfig) GetEventsURL() string           { return c.url }
func (c stubConfig) GetMediaURL() string            { return "ws://127.0.0.1:6680/mopidy/ws/" }
func (c stubConfig) GetPingInterval() time.Duration { return c.interval }
func (c stubConfig) GetPongTimeout() time.Duration  { return c.timeout }
func (c stubConfig) GetSettleDelay() time.Duration  { return 1500 * time.Millisecond }
func (c stubConfig) GetArtworkSize() int            { return 640 }
func (c stubConfig) GetOutputDir() string           { return "" }
func (c stubConfig) GetStateDir() string            { return "" }

type fakeSocket struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
	closes atomic.Int32

	// writes past writeLimit fail with writeErr, or block until Close when
	// writeErr is nil; zero means unlimited
	writeLimit int
	writeErr   error
	attempts   atomic.Int32

	mu      sync.Mutex
	written []domain.Envelope
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (s *fakeSocket) ReadMessage() ([]byte, error) {
	select {
	case <-s.closed:
		return nil, io.EOF
	default:
	}
	select {
	case f := <-s.frames:
		return f, nil
	case <-s.closed:
		return nil, io.EOF
	}
}

func (s *fakeSocket) WriteMessage(data []byte) error {
	select {
	case <-s.closed:
		return errors.New("write on closed socket")
	default:
	}
	if n := int(s.attempts.Add(1)); s.writeLimit > 0 && n > s.writeLimit {
		if s.writeErr != nil {
			return s.writeErr
		}
		<-s.closed
		return errors.New("write interrupted by close")
	}
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	s.mu.Lock()
	s.written = append(s.written, env)
	s.mu.Unlock()
	return nil
}

func (s *fakeSocket) Close() error {
	s.closes.Add(1)
	s.once.Do(func() { close(s.closed) })
	return nil
}

// drop simulates the far end going away
func (s *fakeSocket) drop() {
	s.once.Do(func() { close(s.closed) })
}

func (s *fakeSocket) push(t *testing.T, env domain.Envelope) {
	t.Helper()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s.frames <- data
}

func (s *fakeSocket) sent(msgType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, env := range s.written {
		if env.Type == msgType {
			n++
		}
	}
	return n
}

type fakeDialer struct {
	mu      sync.Mutex
	results []error
	sockets []*fakeSocket
	dials   int
	block   chan struct{}

	writeLimit int
	writeErr   error
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Socket, error) {
	d.mu.Lock()
	d.dials++
	var err error
	if len(d.results) > 0 {
		err = d.results[0]
		d.results = d.results[1:]
	}
	block := d.block
	d.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	s := newFakeSocket()
	d.mu.Lock()
	s.writeLimit, s.writeErr = d.writeLimit, d.writeErr
	d.sockets = append(d.sockets, s)
	d.mu.Unlock()
	return s, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) last() *fakeSocket {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sockets) == 0 {
		return nil
	}
	return d.sockets[len(d.sockets)-1]
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func never(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			t.Fatalf("unexpected %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func noJitter() Backoff {
	b := DefaultBackoff()
	b.rand = func(int64) int64 { return 0 }
	return b
}

type retryRecorder struct {
	mu    sync.Mutex
	infos []ReconnectInfo
}

func (r *retryRecorder) record(info ReconnectInfo) {
	r.mu.Lock()
	r.infos = append(r.infos, info)
	r.mu.Unlock()
}

func (r *retryRecorder) all() []ReconnectInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ReconnectInfo(nil), r.infos...)
}

func newTestManager(t *testing.T, dialer Dialer) (*Manager, *clock.Mock, *retryRecorder) {
	t.Helper()
	clk := clock.NewMock()
	cfg := stubConfig{url: "ws://kiosk.test/pibox/ws", interval: 8 * time.Second, timeout: 4 * time.Second}
	m := NewManager(zap.NewNop(), cfg, dialer, WithClock(clk), WithBackoff(noJitter()))
	rec := &retryRecorder{}
	m.Bus().OnReconnectScheduled(rec.record)
	t.Cleanup(m.Shutdown)
	return m, clk, rec
}
