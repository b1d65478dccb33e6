package mopidy

import (
	"context"

	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

const (
	mixesURI    = "tidal:my_mixes"
	mixesPrefix = "Mix - "
)

// Mixes lists the user's favourite mixes, named with a "Mix - " prefix.
// A backend without mixes yields an empty list.
func Mixes(ctx context.Context, logger *zap.Logger, mp domain.MediaPlayer) []domain.Ref {
	refs, err := mp.Browse(ctx, mixesURI)
	if err != nil {
		logger.Debug("Could not fetch mixes", zap.Error(err))
		return nil
	}
	mixes := make([]domain.Ref, 0, len(refs))
	for _, r := range refs {
		r.Name = mixesPrefix + r.Name
		mixes = append(mixes, r)
	}
	return mixes
}

// PlaylistsAndMixes returns the playlists followed by the mixes
func PlaylistsAndMixes(ctx context.Context, logger *zap.Logger, mp domain.MediaPlayer) []domain.Ref {
	playlists, err := mp.Playlists(ctx)
	if err != nil {
		logger.Warn("Could not fetch playlists", zap.Error(err))
		playlists = nil
	}
	mixes := Mixes(ctx, logger, mp)

	out := make([]domain.Ref, 0, len(playlists)+len(mixes))
	out = append(out, playlists...)
	return append(out, mixes...)
}

// PlayIfStopped starts playback when the player is stopped
func PlayIfStopped(ctx context.Context, mp domain.MediaPlayer) error {
	state, err := mp.PlaybackState(ctx)
	if err != nil {
		return err
	}
	if state == domain.StateStopped {
		return mp.Play(ctx)
	}
	return nil
}

// TogglePlayback resumes a paused player and pauses anything else
func TogglePlayback(ctx context.Context, mp domain.MediaPlayer) error {
	state, err := mp.PlaybackState(ctx)
	if err != nil {
		return err
	}
	if state == domain.StatePaused {
		return mp.Resume(ctx)
	}
	return mp.Pause(ctx)
}
