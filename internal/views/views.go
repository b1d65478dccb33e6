package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/artwork"
	"github.com/genricoloni/queuekiosk/internal/cache"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/mopidy"
)

// View names
const (
	ViewCurrentTrack  = "currentTrack"
	ViewPlaybackState = "playbackState"
	ViewArtworkURL    = "artworkURL"
	ViewTracklist     = "tracklist"
	ViewSession       = "session"
	ViewPlaylists     = "playlists"
	ViewConfig        = "config"
)

// Staleness windows
const (
	CurrentTrackTTL  = 30 * time.Second
	PlaybackStateTTL = 30 * time.Second
	ArtworkTTL       = 30 * time.Second
	TracklistTTL     = 30 * time.Second
	SessionTTL       = 30 * time.Second
	PlaylistsTTL     = 60 * time.Second
	ConfigTTL        = cache.Forever
)

// PongTuner accepts the heartbeat override published by the backend config
type PongTuner interface {
	SetPongTimeout(d time.Duration)
}

// NowPlaying is the display state of the current track
type NowPlaying struct {
	Track      *domain.Track
	State      domain.PlaybackState
	ArtworkURL string
}

// Option configures Views
type Option func(*Views)

// WithClock replaces the wall clock used by the vote cooldown
func WithClock(clk clock.Clock) Option {
	return func(v *Views) { v.clock = clk }
}

// Views exposes the cached backend state and the user actions of the kiosk.
// Server-pushed events invalidate the affected views.
type Views struct {
	logger *zap.Logger
	clock  clock.Clock
	store  *cache.Store
	api    domain.SessionAPI
	media  domain.MediaPlayer
	events domain.EventChannel
	tuner  PongTuner
	settle time.Duration

	cooldown *Cooldown

	mu         sync.Mutex
	route      Route
	pinned     bool
	routeSubs  map[int]func(Route)
	nextSubID  int
	unsubs     []func()
	subscribed bool
}

// New creates the views over store
func New(logger *zap.Logger, cfg domain.Config, store *cache.Store, api domain.SessionAPI, media domain.MediaPlayer, events domain.EventChannel, tuner PongTuner, opts ...Option) *Views {
	v := &Views{
		logger:    logger,
		clock:     clock.New(),
		store:     store,
		api:       api,
		media:     media,
		events:    events,
		tuner:     tuner,
		settle:    cfg.GetSettleDelay(),
		route:     RouteLoading,
		routeSubs: make(map[int]func(Route)),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.cooldown = NewCooldown(v.clock)
	store.OnUpdate(v.handleUpdate)
	return v
}

// Connected reports whether both the event channel and the media connection are online
func (v *Views) Connected() bool {
	return v.events.Connected() && v.media.Connected()
}

// Cooldown returns the vote-to-skip countdown
func (v *Views) Cooldown() *Cooldown {
	return v.cooldown
}

// CurrentTrack returns the loaded track, nil when nothing is loaded
func (v *Views) CurrentTrack(ctx context.Context) (*domain.Track, error) {
	return cache.Get(ctx, v.store, cache.Key{View: ViewCurrentTrack}, CurrentTrackTTL, v.media.CurrentTrack)
}

// PlaybackState returns the player state
func (v *Views) PlaybackState(ctx context.Context) (domain.PlaybackState, error) {
	return cache.Get(ctx, v.store, cache.Key{View: ViewPlaybackState}, PlaybackStateTTL, v.media.PlaybackState)
}

// ArtworkURL returns the artwork of uri at size. Each (uri, size) pair is
// cached on its own; a lookup failure yields an empty URL.
func (v *Views) ArtworkURL(ctx context.Context, uri string, size int) (string, error) {
	key := cache.Key{View: ViewArtworkURL, Dep: fmt.Sprintf("%s|%d", uri, size)}
	return cache.Get(ctx, v.store, key, ArtworkTTL, func(ctx context.Context) (string, error) {
		images, err := v.media.Images(ctx, []string{uri})
		if err != nil {
			v.logger.Debug("Artwork lookup failed", zap.String("uri", uri), zap.Error(err))
			return "", nil
		}
		candidates := images[uri]
		if len(candidates) == 0 {
			return "", nil
		}
		return artwork.PreferSize(candidates[0].URI, size), nil
	})
}

// NowPlaying combines the current track, playback state and artwork at size
func (v *Views) NowPlaying(ctx context.Context, size int) (NowPlaying, error) {
	track, err := v.CurrentTrack(ctx)
	if err != nil {
		return NowPlaying{}, fmt.Errorf("current track: %w", err)
	}
	state, err := v.PlaybackState(ctx)
	if err != nil {
		return NowPlaying{}, fmt.Errorf("playback state: %w", err)
	}

	np := NowPlaying{Track: track, State: state}
	if track != nil {
		if np.ArtworkURL, err = v.ArtworkURL(ctx, track.URI, size); err != nil {
			return NowPlaying{}, fmt.Errorf("artwork: %w", err)
		}
	}
	return np, nil
}

// Tracklist returns the queue
func (v *Views) Tracklist(ctx context.Context) (*domain.Tracklist, error) {
	return cache.Get(ctx, v.store, cache.Key{View: ViewTracklist}, TracklistTTL, v.api.Tracklist)
}

// Session returns the party session
func (v *Views) Session(ctx context.Context) (*domain.Session, error) {
	return cache.Get(ctx, v.store, cache.Key{View: ViewSession}, SessionTTL, v.api.Session)
}

// Playlists returns the media playlists followed by the user's mixes
func (v *Views) Playlists(ctx context.Context) ([]domain.Ref, error) {
	return cache.Get(ctx, v.store, cache.Key{View: ViewPlaylists}, PlaylistsTTL, func(ctx context.Context) ([]domain.Ref, error) {
		return mopidy.PlaylistsAndMixes(ctx, v.logger, v.media), nil
	})
}

// Config returns the backend configuration. It is loaded once.
func (v *Views) Config(ctx context.Context) (*domain.BackendConfig, error) {
	return cache.Get(ctx, v.store, cache.Key{View: ViewConfig}, ConfigTTL, v.api.Config)
}

// OnTrackChange subscribes fn to every refresh of the current track view
func (v *Views) OnTrackChange(fn func()) func() {
	return v.store.OnUpdate(func(key cache.Key, _ any) {
		if key.View == ViewCurrentTrack {
			fn()
		}
	})
}

// Route returns the screen the UI should present
func (v *Views) Route() Route {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.route
}

// Pin keeps the UI on the read-only display screen regardless of session state
func (v *Views) Pin(pinned bool) {
	v.mu.Lock()
	v.pinned = pinned
	v.mu.Unlock()

	next := RouteLoading
	if session, ok := cache.Peek[*domain.Session](v.store, cache.Key{View: ViewSession}); ok && session != nil {
		next = routeFor(pinned, session.Started)
	} else if pinned {
		next = RouteView
	}

	v.setRoute(next)
}

// OnRoute subscribes fn to route changes
func (v *Views) OnRoute(fn func(Route)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextSubID++
	id := v.nextSubID
	v.routeSubs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.routeSubs, id)
	}
}

func (v *Views) setRoute(next Route) {
	v.mu.Lock()
	if v.route == next {
		v.mu.Unlock()
		return
	}
	prev := v.route
	v.route = next
	fns := make([]func(Route), 0, len(v.routeSubs))
	for _, fn := range v.routeSubs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	v.logger.Info("Route changed", zap.String("from", string(prev)), zap.String("to", string(next)))
	for _, fn := range fns {
		fn(next)
	}
}
