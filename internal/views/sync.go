package views

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/cache"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/lifecycle"
)

// Start subscribes the views to the event channel and the media
// connection, then loads the backend config and the session
func (v *Views) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.subscribed {
		v.mu.Unlock()
		return nil
	}
	v.subscribed = true
	v.unsubs = append(v.unsubs,
		v.media.Subscribe(v.handleMediaEvent),
		v.events.OnConnectivity(v.handleConnectivity),
		v.events.OnMessage(domain.MessageSessionStarted, v.handleSessionMessage),
		v.events.OnMessage(domain.MessageSessionEnded, v.handleSessionMessage),
		v.events.OnMessage(domain.MessageSessionPlaylistsUpdated, v.handleSessionMessage),
		v.events.OnMessage(domain.MessageVoteAdded, v.handleVoteMessage),
	)
	v.mu.Unlock()

	go v.prime(context.WithoutCancel(ctx))
	return nil
}

// Stop drops every subscription and the running cooldown
func (v *Views) Stop(ctx context.Context) error {
	v.mu.Lock()
	unsubs := v.unsubs
	v.unsubs = nil
	v.subscribed = false
	v.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	v.cooldown.Stop()
	return nil
}

// HandleSignal refreshes views on environment changes. Returning to
// visible refetches the current track; artwork is kept while reconnecting.
func (v *Views) HandleSignal(sig lifecycle.Signal) {
	if sig == lifecycle.SignalVisible {
		v.store.Invalidate(ViewCurrentTrack)
	}
}

func (v *Views) prime(ctx context.Context) {
	if _, err := v.Config(ctx); err != nil {
		v.logger.Warn("Could not load backend config", zap.Error(err))
	}
	if _, err := v.Session(ctx); err != nil {
		v.logger.Warn("Could not load session", zap.Error(err))
	}
}

func (v *Views) handleMediaEvent(ev domain.MediaEvent) {
	switch ev.Type {
	case domain.MediaEventState:
		if ev.Online {
			v.logger.Debug("Media connection online, resynchronizing views")
			v.store.InvalidateAll()
		}
	case domain.MediaEventPlaybackStateChanged:
		v.store.InvalidateAfter(ViewCurrentTrack, v.settle)
		v.store.Invalidate(ViewPlaybackState)
	case domain.MediaEventTracklistChanged, domain.MediaEventTrackPlaybackEnded:
		v.store.Invalidate(ViewTracklist)
	}
}

func (v *Views) handleConnectivity(connected bool) {
	if connected {
		v.logger.Debug("Event channel open, resynchronizing views")
		v.store.InvalidateAll()
	}
}

func (v *Views) handleSessionMessage(env domain.Envelope) {
	v.logger.Info("Session event", zap.String("type", env.Type))
	v.store.Invalidate(ViewSession)
	// the session may never have been read; load it so the route follows
	go func() {
		if _, err := v.Session(context.Background()); err != nil {
			v.logger.Warn("Could not reload session", zap.Error(err))
		}
	}()
}

func (v *Views) handleVoteMessage(env domain.Envelope) {
	v.store.Invalidate(ViewTracklist)
}

func (v *Views) handleUpdate(key cache.Key, value any) {
	switch key.View {
	case ViewSession:
		session, ok := value.(*domain.Session)
		if !ok || session == nil {
			return
		}
		v.mu.Lock()
		pinned := v.pinned
		v.mu.Unlock()
		v.setRoute(routeFor(pinned, session.Started))
	case ViewTracklist:
		if tl, ok := value.(*domain.Tracklist); ok && tl != nil {
			v.cooldown.Start(tl.RetryAfterSeconds)
		}
	case ViewConfig:
		if cfg, ok := value.(*domain.BackendConfig); ok && cfg != nil && cfg.WSPongTimeoutMs > 0 {
			v.tuner.SetPongTimeout(time.Duration(cfg.WSPongTimeoutMs) * time.Millisecond)
		}
	}
}
