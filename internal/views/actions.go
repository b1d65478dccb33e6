package views

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/cache"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/mopidy"
)

// QueueTrack adds uri to the queue and starts a stopped player
func (v *Views) QueueTrack(ctx context.Context, uri string) (*domain.Tracklist, error) {
	tl, err := v.api.QueueTrack(ctx, uri)
	if err != nil {
		return nil, err
	}
	v.store.Set(cache.Key{View: ViewTracklist}, tl)

	if err := mopidy.PlayIfStopped(ctx, v.media); err != nil {
		v.logger.Debug("Could not start playback", zap.Error(err))
	}
	return tl, nil
}

// RemoveQueuedTrack removes a track the caller queued
func (v *Views) RemoveQueuedTrack(ctx context.Context, uri string) (*domain.Tracklist, error) {
	tl, err := v.api.RemoveQueuedTrack(ctx, uri)
	if err != nil {
		return nil, err
	}
	v.store.Set(cache.Key{View: ViewTracklist}, tl)
	return tl, nil
}

// VoteToSkip votes against uri. It returns domain.ErrCooldownActive while
// a previous rate limit is counting down; a new rate limit restarts the
// countdown.
func (v *Views) VoteToSkip(ctx context.Context, uri string) error {
	if v.cooldown.Active() {
		return domain.ErrCooldownActive
	}

	err := v.api.VoteToSkip(ctx, uri)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Code == domain.CodeRateLimited && apiErr.RetryAfterSeconds() > 0 {
		v.cooldown.Start(apiErr.RetryAfterSeconds())
		return err
	}

	v.store.Invalidate(ViewTracklist)
	return err
}

// SkipEntry removes the entry when the caller queued it and votes against it otherwise
func (v *Views) SkipEntry(ctx context.Context, entry domain.TracklistEntry) error {
	if entry.AddedByMe {
		_, err := v.RemoveQueuedTrack(ctx, entry.Info.URI)
		return err
	}
	return v.VoteToSkip(ctx, entry.Info.URI)
}

// StartSession starts a party session and reloads the session view
func (v *Views) StartSession(ctx context.Context, opts domain.SessionOptions) error {
	if err := v.api.StartSession(ctx, opts); err != nil {
		return err
	}
	return v.reloadSession(ctx)
}

// EndSession ends the party session and reloads the session view
func (v *Views) EndSession(ctx context.Context) error {
	if err := v.api.EndSession(ctx); err != nil {
		return err
	}
	return v.reloadSession(ctx)
}

// UpdateSessionPlaylists replaces the playlists feeding the session
func (v *Views) UpdateSessionPlaylists(ctx context.Context, playlists []string) (*domain.Session, error) {
	session, err := v.api.UpdateSessionPlaylists(ctx, playlists)
	if err != nil {
		return nil, err
	}
	v.store.Set(cache.Key{View: ViewSession}, session)
	return session, nil
}

// Suggestions returns tracks the backend suggests queueing
func (v *Views) Suggestions(ctx context.Context) ([]domain.Track, error) {
	return v.api.Suggestions(ctx)
}

// Search queries the media library
func (v *Views) Search(ctx context.Context, query string) ([]domain.Track, error) {
	return v.media.Search(ctx, query)
}

// TogglePlayback pauses a playing player and resumes a paused one
func (v *Views) TogglePlayback(ctx context.Context) error {
	return mopidy.TogglePlayback(ctx, v.media)
}

// Skip advances the player to the next track
func (v *Views) Skip(ctx context.Context) error {
	return v.media.Next(ctx)
}

// Reboot asks the backend host to reboot
func (v *Views) Reboot(ctx context.Context) error {
	return v.api.Reboot(ctx)
}

func (v *Views) reloadSession(ctx context.Context) error {
	v.store.Invalidate(ViewSession)
	_, err := v.Session(ctx)
	return err
}
