package domain

import (
	"encoding/json"
	"time"
)

// PlaybackState represents the current state of the media player
type PlaybackState string

const (
	// StatePlaying indicates the media is currently playing
	StatePlaying PlaybackState = "playing"
	// StatePaused indicates the media is paused
	StatePaused PlaybackState = "paused"
	// StateStopped indicates the media is stopped
	StateStopped PlaybackState = "stopped"
)

// Artist is a track performer as reported by the media backend
type Artist struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// Album groups tracks as reported by the media backend
type Album struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// Track contains information about a playable item
type Track struct {
	URI     string   `json:"uri"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists,omitempty"`
	Album   *Album   `json:"album,omitempty"`
	// Length is the duration in milliseconds
	Length int `json:"length,omitempty"`
}

// Image is an artwork candidate for a library URI
type Image struct {
	URI    string `json:"uri"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Ref is a lightweight pointer to a library object (playlist, mix, directory)
type Ref struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// TracklistEntry is one queued track together with the caller's vote state
type TracklistEntry struct {
	Info      Track `json:"info"`
	Votes     int   `json:"votes"`
	Voted     bool  `json:"voted"`
	AddedByMe bool  `json:"added_by_me"`
}

// Tracklist is the queue as returned by the session backend.
// The first entry is the track currently playing.
type Tracklist struct {
	Entries []TracklistEntry `json:"tracklist"`
	// RetryAfterSeconds carries the caller's vote cooldown, if any
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

// TrackSource records where a queued track came from
type TrackSource struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Session is the party session state owned by the backend
type Session struct {
	Started                 bool                   `json:"started"`
	StartTime               *Timestamp             `json:"startTime,omitempty"`
	SkipThreshold           int                    `json:"skipThreshold"`
	Playlists               []string               `json:"playlists"`
	PlayedTracks            []string               `json:"playedTracks"`
	RemainingPlaylistTracks []string               `json:"remainingPlaylistTracks"`
	TrackSources            map[string]TrackSource `json:"trackSources,omitempty"`
}

// Timestamp decodes RFC 3339 times as well as zone-less ISO 8601 times,
// which are read as UTC
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// SessionOptions configures a new party session
type SessionOptions struct {
	SkipThreshold int      `json:"skipThreshold"`
	Playlists     []string `json:"playlists"`
	AutoStart     bool     `json:"autoStart"`
	Shuffle       bool     `json:"shuffle"`
}

// BackendConfig is the configuration published by the session backend.
// It is loaded once and kept until explicitly invalidated.
type BackendConfig struct {
	Offline              bool     `json:"offline"`
	DefaultPlaylists     []string `json:"defaultPlaylists"`
	DefaultSkipThreshold int      `json:"defaultSkipThreshold"`
	ServerAddress        string   `json:"serverAddress"`
	SiteTitle            string   `json:"siteTitle"`
	RebootCommand        string   `json:"rebootCommand,omitempty"`
	WSPongTimeoutMs      int      `json:"wsPongTimeoutMs"`
}

// Envelope is the wire format of every session event frame
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	TS      int64           `json:"ts,omitempty"`
}

// Session event channel message types
const (
	MessagePing                    = "PING"
	MessagePong                    = "PONG"
	MessageSessionStarted          = "SESSION_STARTED"
	MessageSessionEnded            = "SESSION_ENDED"
	MessageSessionPlaylistsUpdated = "SESSION_PLAYLISTS_UPDATED"
	MessageVoteAdded               = "VOTE_ADDED"
)

// MediaEventType names an event emitted by the media player connection
type MediaEventType string

const (
	// MediaEventState carries the connection state (online/offline)
	MediaEventState MediaEventType = "state"
	// MediaEventPlaybackStateChanged carries the new playback state
	MediaEventPlaybackStateChanged MediaEventType = "playback_state_changed"
	// MediaEventTracklistChanged fires when the player queue changes
	MediaEventTracklistChanged MediaEventType = "tracklist_changed"
	// MediaEventTrackPlaybackEnded fires when a track finishes
	MediaEventTrackPlaybackEnded MediaEventType = "track_playback_ended"
)

// MediaEvent is a single notification from the media player connection
type MediaEvent struct {
	Type MediaEventType
	// Online is set for MediaEventState
	Online bool
	// NewState is set for MediaEventPlaybackStateChanged
	NewState PlaybackState
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}
