package views

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/genricoloni/queuekiosk/internal/cache"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/lifecycle"
)

func TestViews_SessionStartedNavigatesToSession(t *testing.T) {
	h := newHarness(t)
	h.start(&domain.BackendConfig{WSPongTimeoutMs: 2500},
		&domain.Session{Started: false},
		&domain.Session{Started: true},
	)

	eventually(t, "new-session route", func() bool { return h.views.Route() == RouteNewSession })
	eventually(t, "pong override", func() bool { return h.tuner.get() == 2500*time.Millisecond })

	routeCh := make(chan Route, 4)
	h.views.OnRoute(func(r Route) { routeCh <- r })

	h.events.PublishMessage(domain.Envelope{
		Type:    domain.MessageSessionStarted,
		Payload: json.RawMessage(`{"id":"s1"}`),
	})

	eventually(t, "home route", func() bool { return h.views.Route() == RouteHome })
	if got := <-routeCh; got != RouteHome {
		t.Errorf("route change = %s, want %s", got, RouteHome)
	}
}

func TestViews_SessionEndedNavigatesToNewSession(t *testing.T) {
	h := newHarness(t)
	h.start(nil, &domain.Session{Started: true}, &domain.Session{Started: false})
	eventually(t, "home route", func() bool { return h.views.Route() == RouteHome })

	h.events.PublishMessage(domain.Envelope{Type: domain.MessageSessionEnded})
	eventually(t, "new-session route", func() bool { return h.views.Route() == RouteNewSession })
}

func TestViews_PinnedViewNeverNavigates(t *testing.T) {
	h := newHarness(t)
	h.views.Pin(true)
	if got := h.views.Route(); got != RouteView {
		t.Fatalf("Route() = %s, want %s", got, RouteView)
	}

	h.start(nil, &domain.Session{Started: true}, &domain.Session{Started: false})
	h.events.PublishMessage(domain.Envelope{Type: domain.MessageSessionEnded})
	eventually(t, "ended session loaded", func() bool {
		s, ok := cache.Peek[*domain.Session](h.store, cache.Key{View: ViewSession})
		return ok && !s.Started
	})
	if got := h.views.Route(); got != RouteView {
		t.Errorf("Route() = %s, want %s", got, RouteView)
	}

	h.views.Pin(false)
	if got := h.views.Route(); got != RouteNewSession {
		t.Errorf("Route() after unpin = %s, want %s", got, RouteNewSession)
	}
}

func TestViews_PongOverrideIgnoredWhenUnset(t *testing.T) {
	h := newHarness(t)
	h.start(&domain.BackendConfig{SiteTitle: "pibox"}, &domain.Session{})

	eventually(t, "config load", func() bool {
		_, ok := h.store.Peek(cache.Key{View: ViewConfig})
		return ok
	})
	if got := h.tuner.get(); got != 0 {
		t.Errorf("pong timeout = %s, want untouched", got)
	}
}

func TestViews_PlaybackChangeSettlesBeforeTrackRefetch(t *testing.T) {
	h := newHarness(t)
	h.start(nil, &domain.Session{Started: true})

	var trackCalls, stateCalls atomic.Int32
	h.media.EXPECT().CurrentTrack(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Track, error) {
		trackCalls.Add(1)
		return &domain.Track{URI: "spotify:track:1", Name: "One"}, nil
	}).AnyTimes()
	h.media.EXPECT().PlaybackState(gomock.Any()).DoAndReturn(func(ctx context.Context) (domain.PlaybackState, error) {
		stateCalls.Add(1)
		return domain.StatePlaying, nil
	}).AnyTimes()

	ctx := context.Background()
	if _, err := h.views.CurrentTrack(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := h.views.PlaybackState(ctx); err != nil {
		t.Fatal(err)
	}

	h.emitMedia(domain.MediaEvent{Type: domain.MediaEventPlaybackStateChanged, NewState: domain.StatePaused})

	eventually(t, "immediate playback state refetch", func() bool { return stateCalls.Load() == 2 })

	h.clk.Add(1499 * time.Millisecond)
	never(t, "current track refetch before settle", func() bool { return trackCalls.Load() > 1 })

	h.clk.Add(time.Millisecond)
	eventually(t, "current track refetch", func() bool { return trackCalls.Load() == 2 })
	never(t, "second current track refetch", func() bool { return trackCalls.Load() > 2 })
}

func TestViews_TracklistEventsInvalidateTracklist(t *testing.T) {
	tests := []struct {
		name string
		emit func(h *harness)
	}{
		{"Vote added", func(h *harness) {
			h.events.PublishMessage(domain.Envelope{Type: domain.MessageVoteAdded})
		}},
		{"Media tracklist changed", func(h *harness) {
			h.emitMedia(domain.MediaEvent{Type: domain.MediaEventTracklistChanged})
		}},
		{"Media track ended", func(h *harness) {
			h.emitMedia(domain.MediaEvent{Type: domain.MediaEventTrackPlaybackEnded})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.start(nil, &domain.Session{Started: true})

			var calls atomic.Int32
			h.api.EXPECT().Tracklist(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Tracklist, error) {
				calls.Add(1)
				return &domain.Tracklist{}, nil
			}).AnyTimes()

			if _, err := h.views.Tracklist(context.Background()); err != nil {
				t.Fatal(err)
			}
			tt.emit(h)
			eventually(t, "tracklist refetch", func() bool { return calls.Load() == 2 })
		})
	}
}

func TestViews_ResynchronizesOnReconnect(t *testing.T) {
	tests := []struct {
		name string
		emit func(h *harness)
	}{
		{"Event channel open", func(h *harness) { h.events.PublishConnectivity(true) }},
		{"Media online", func(h *harness) {
			h.emitMedia(domain.MediaEvent{Type: domain.MediaEventState, Online: true})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.start(nil, &domain.Session{Started: true})

			var trackCalls, listCalls atomic.Int32
			h.media.EXPECT().CurrentTrack(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Track, error) {
				trackCalls.Add(1)
				return nil, nil
			}).AnyTimes()
			h.api.EXPECT().Tracklist(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Tracklist, error) {
				listCalls.Add(1)
				return &domain.Tracklist{}, nil
			}).AnyTimes()

			ctx := context.Background()
			_, _ = h.views.CurrentTrack(ctx)
			_, _ = h.views.Tracklist(ctx)

			tt.emit(h)
			eventually(t, "current track refetch", func() bool { return trackCalls.Load() == 2 })
			eventually(t, "tracklist refetch", func() bool { return listCalls.Load() == 2 })
		})
	}
}

func TestViews_ClosedConnectionDoesNotResync(t *testing.T) {
	h := newHarness(t)
	h.start(nil, &domain.Session{Started: true})

	var listCalls atomic.Int32
	h.api.EXPECT().Tracklist(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Tracklist, error) {
		listCalls.Add(1)
		return &domain.Tracklist{}, nil
	}).AnyTimes()
	_, _ = h.views.Tracklist(context.Background())

	h.events.PublishConnectivity(false)
	h.emitMedia(domain.MediaEvent{Type: domain.MediaEventState, Online: false})
	never(t, "tracklist refetch", func() bool { return listCalls.Load() > 1 })
}

func TestViews_VisibleRefetchesTrackButKeepsArtwork(t *testing.T) {
	h := newHarness(t)
	h.start(nil, &domain.Session{Started: true})

	var trackCalls atomic.Int32
	h.media.EXPECT().CurrentTrack(gomock.Any()).DoAndReturn(func(ctx context.Context) (*domain.Track, error) {
		trackCalls.Add(1)
		return &domain.Track{URI: "T"}, nil
	}).AnyTimes()
	h.media.EXPECT().Images(gomock.Any(), []string{"T"}).
		Return(map[string][]domain.Image{"T": {{URI: "https://img.example/T-300.jpg"}}}, nil).
		Times(1)

	ctx := context.Background()
	_, _ = h.views.CurrentTrack(ctx)
	_, _ = h.views.ArtworkURL(ctx, "T", 640)

	h.views.HandleSignal(lifecycle.SignalHidden)
	h.views.HandleSignal(lifecycle.SignalVisible)
	eventually(t, "current track refetch", func() bool { return trackCalls.Load() == 2 })

	url, _ := h.views.ArtworkURL(ctx, "T", 640)
	if url != "https://img.example/T-640.jpg" {
		t.Errorf("ArtworkURL() = %q", url)
	}
}

func TestViews_ArtworkSizesAreIndependentEntries(t *testing.T) {
	h := newHarness(t)

	h.media.EXPECT().Images(gomock.Any(), []string{"T"}).
		Return(map[string][]domain.Image{"T": {{URI: "https://resources.tidal.com/images/ab/320x320.jpg"}}}, nil).
		Times(2)

	ctx := context.Background()
	small, err := h.views.ArtworkURL(ctx, "T", 640)
	if err != nil {
		t.Fatal(err)
	}
	large, err := h.views.ArtworkURL(ctx, "T", 1280)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := h.views.ArtworkURL(ctx, "T", 640)

	if small != "https://resources.tidal.com/images/ab/640x640.jpg" {
		t.Errorf("640 = %q", small)
	}
	if large != "https://resources.tidal.com/images/ab/1280x1280.jpg" {
		t.Errorf("1280 = %q", large)
	}
	if again != small {
		t.Errorf("cached 640 = %q, want %q", again, small)
	}
}

func TestViews_ArtworkFailureYieldsEmptyURL(t *testing.T) {
	h := newHarness(t)
	h.media.EXPECT().Images(gomock.Any(), []string{"T"}).Return(nil, errors.New("offline"))

	url, err := h.views.ArtworkURL(context.Background(), "T", 640)
	if err != nil || url != "" {
		t.Errorf("ArtworkURL() = %q, %v", url, err)
	}
}

func TestViews_NowPlaying(t *testing.T) {
	tests := []struct {
		name        string
		track       *domain.Track
		wantArtwork string
	}{
		{name: "Nothing loaded", track: nil, wantArtwork: ""},
		{name: "Track loaded", track: &domain.Track{URI: "T", Name: "Song"}, wantArtwork: "https://img.example/a?size=1280"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.media.EXPECT().CurrentTrack(gomock.Any()).Return(tt.track, nil)
			h.media.EXPECT().PlaybackState(gomock.Any()).Return(domain.StatePlaying, nil)
			if tt.track != nil {
				h.media.EXPECT().Images(gomock.Any(), []string{"T"}).
					Return(map[string][]domain.Image{"T": {{URI: "https://img.example/a?size=320"}}}, nil)
			}

			np, err := h.views.NowPlaying(context.Background(), 1280)
			if err != nil {
				t.Fatal(err)
			}
			if np.Track != tt.track || np.State != domain.StatePlaying || np.ArtworkURL != tt.wantArtwork {
				t.Errorf("NowPlaying() = %+v", np)
			}
		})
	}
}

func TestViews_Connected(t *testing.T) {
	tests := []struct {
		name   string
		events bool
		media  bool
		want   bool
	}{
		{"Both online", true, true, true},
		{"Events offline", false, true, false},
		{"Media offline", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.events.connected.Store(tt.events)
			h.media.EXPECT().Connected().Return(tt.media).MaxTimes(1)

			if got := h.views.Connected(); got != tt.want {
				t.Errorf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViews_Playlists(t *testing.T) {
	h := newHarness(t)
	h.media.EXPECT().Playlists(gomock.Any()).Return([]domain.Ref{{Type: "playlist", URI: "m3u:a", Name: "A"}}, nil).Times(1)
	h.media.EXPECT().Browse(gomock.Any(), "tidal:my_mixes").Return([]domain.Ref{{Type: "playlist", URI: "tidal:mix:1", Name: "Daily"}}, nil).Times(1)

	ctx := context.Background()
	refs, err := h.views.Playlists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[1].Name != "Mix - Daily" {
		t.Errorf("Playlists() = %+v", refs)
	}

	h.clk.Add(45 * time.Second)
	if _, err := h.views.Playlists(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestViews_OnTrackChange(t *testing.T) {
	h := newHarness(t)
	h.media.EXPECT().CurrentTrack(gomock.Any()).Return(&domain.Track{URI: "T"}, nil)
	h.api.EXPECT().Tracklist(gomock.Any()).Return(&domain.Tracklist{}, nil)

	var changes atomic.Int32
	unsub := h.views.OnTrackChange(func() { changes.Add(1) })
	defer unsub()

	ctx := context.Background()
	_, _ = h.views.Tracklist(ctx)
	_, _ = h.views.CurrentTrack(ctx)

	if got := changes.Load(); got != 1 {
		t.Errorf("changes = %d, want 1", got)
	}
}
