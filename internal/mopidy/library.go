package mopidy

import (
	"context"
	"sort"
	"strings"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

// searchPriority orders search results by backend; unlisted backends go last
var searchPriority = []string{"spotify", "soundcloud"}

type searchResult struct {
	URI    string         `json:"uri"`
	Tracks []domain.Track `json:"tracks"`
}

// PlaybackState returns playing, paused or stopped
func (c *Client) PlaybackState(ctx context.Context) (domain.PlaybackState, error) {
	var state string
	if err := c.call(ctx, "core.playback.get_state", nil, &state); err != nil {
		return "", err
	}
	return domain.PlaybackState(state), nil
}

func (c *Client) Play(ctx context.Context) error {
	return c.call(ctx, "core.playback.play", nil, nil)
}

func (c *Client) Pause(ctx context.Context) error {
	return c.call(ctx, "core.playback.pause", nil, nil)
}

func (c *Client) Resume(ctx context.Context) error {
	return c.call(ctx, "core.playback.resume", nil, nil)
}

func (c *Client) Next(ctx context.Context) error {
	return c.call(ctx, "core.playback.next", nil, nil)
}

// CurrentTrack returns nil when nothing is loaded
func (c *Client) CurrentTrack(ctx context.Context) (*domain.Track, error) {
	var track *domain.Track
	if err := c.call(ctx, "core.playback.get_current_track", nil, &track); err != nil {
		return nil, err
	}
	return track, nil
}

// TimePosition returns the playback position in milliseconds
func (c *Client) TimePosition(ctx context.Context) (int, error) {
	var pos *int
	if err := c.call(ctx, "core.playback.get_time_position", nil, &pos); err != nil {
		return 0, err
	}
	if pos == nil {
		return 0, nil
	}
	return *pos, nil
}

// Search runs a free-text library search and flattens the per-backend
// results into one track list, preferred backends first.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Track, error) {
	params := map[string]any{
		"query": map[string][]string{"any": {query}},
		"exact": false,
	}
	var results []searchResult
	if err := c.call(ctx, "core.library.search", params, &results); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return backendRank(results[i].URI) < backendRank(results[j].URI)
	})

	var tracks []domain.Track
	for _, r := range results {
		tracks = append(tracks, r.Tracks...)
	}
	return tracks, nil
}

func (c *Client) Browse(ctx context.Context, uri string) ([]domain.Ref, error) {
	var refs []domain.Ref
	if err := c.call(ctx, "core.library.browse", map[string]string{"uri": uri}, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// Images returns artwork candidates keyed by library URI
func (c *Client) Images(ctx context.Context, uris []string) (map[string][]domain.Image, error) {
	images := make(map[string][]domain.Image)
	if err := c.call(ctx, "core.library.get_images", map[string][]string{"uris": uris}, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) Playlists(ctx context.Context) ([]domain.Ref, error) {
	var refs []domain.Ref
	if err := c.call(ctx, "core.playlists.as_list", nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func backendRank(uri string) int {
	backend, _, _ := strings.Cut(uri, ":")
	for i, b := range searchPriority {
		if b == backend {
			return i
		}
	}
	return len(searchPriority)
}
