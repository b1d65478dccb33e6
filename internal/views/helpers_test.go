package views

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/cache"
	"github.com/genricoloni/queuekiosk/internal/channel"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/domain/mocks"
)

type stubConfig struct{}

func (stubConfig) GetServerURL() string           { return "http://127.0.0.1:6680" }
func (stubConfig) GetAPIPrefix() string           { return "/pibox" }
func (stubConfig) GetEventsURL() string           { return "" }
func (stubConfig) GetMediaURL() string            { return "" }
func (stubConfig) GetPingInterval() time.Duration { return 8 * time.Second }
func (stubConfig) GetPongTimeout() time.Duration  { return 4 * time.Second }
func (stubConfig) GetSettleDelay() time.Duration  { return 1500 * time.Millisecond }
func (stubConfig) GetArtworkSize() int            { return 640 }
func (stubConfig) GetOutputDir() string           { return "" }
func (stubConfig) GetStateDir() string            { return "" }

type fakeEvents struct {
	*channel.Bus
	connected atomic.Bool
}

func (f *fakeEvents) Connected() bool { return f.connected.Load() }

type fakeTuner struct {
	mu      sync.Mutex
	timeout time.Duration
}

func (f *fakeTuner) SetPongTimeout(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeout = d
}

func (f *fakeTuner) get() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeout
}

type harness struct {
	t      *testing.T
	api    *mocks.MockSessionAPI
	media  *mocks.MockMediaPlayer
	events *fakeEvents
	tuner  *fakeTuner
	clk    *clock.Mock
	store  *cache.Store
	views  *Views

	mu      sync.Mutex
	mediaFn func(domain.MediaEvent)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		t:      t,
		api:    mocks.NewMockSessionAPI(ctrl),
		media:  mocks.NewMockMediaPlayer(ctrl),
		events: &fakeEvents{Bus: channel.NewBus()},
		tuner:  &fakeTuner{},
		clk:    clock.NewMock(),
	}
	h.store = cache.NewStore(zap.NewNop(), cache.WithClock(h.clk))
	h.views = New(zap.NewNop(), stubConfig{}, h.store, h.api, h.media, h.events, h.tuner, WithClock(h.clk))

	h.media.EXPECT().Subscribe(gomock.Any()).DoAndReturn(func(fn func(domain.MediaEvent)) func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.mediaFn = fn
		return func() {}
	}).AnyTimes()

	t.Cleanup(func() {
		_ = h.views.Stop(context.Background())
		h.store.Close()
	})
	return h
}

// start expects the initial config load and serves sessions in order,
// repeating the last one
func (h *harness) start(cfg *domain.BackendConfig, sessions ...*domain.Session) {
	h.t.Helper()
	if cfg == nil {
		cfg = &domain.BackendConfig{}
	}
	h.api.EXPECT().Config(gomock.Any()).Return(cfg, nil).AnyTimes()

	var served atomic.Int32
	h.api.EXPECT().Session(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Session, error) {
		i := int(served.Add(1)) - 1
		if i >= len(sessions) {
			i = len(sessions) - 1
		}
		return sessions[i], nil
	}).AnyTimes()

	if err := h.views.Start(context.Background()); err != nil {
		h.t.Fatalf("Start: %v", err)
	}
	eventually(h.t, "session load", func() bool {
		_, ok := h.store.Peek(cache.Key{View: ViewSession})
		return ok
	})
}

func (h *harness) emitMedia(ev domain.MediaEvent) {
	h.mu.Lock()
	fn := h.mediaFn
	h.mu.Unlock()
	if fn == nil {
		h.t.Fatal("media events not subscribed")
	}
	fn(ev)
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
