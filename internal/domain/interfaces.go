package domain

import (
	"context"
	"time"
)

// MediaPlayer is the primary media connection.
// Implementations speak the media backend's RPC protocol and report their
// own connectivity through MediaEventState events.
//
//go:generate mockgen -destination=mocks/media_player_mock.go -package=mocks github.com/genricoloni/queuekiosk/internal/domain MediaPlayer
type MediaPlayer interface {
	// Connected reports whether the RPC socket is currently online
	Connected() bool

	PlaybackState(ctx context.Context) (PlaybackState, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error

	// CurrentTrack returns nil when nothing is loaded
	CurrentTrack(ctx context.Context) (*Track, error)
	// TimePosition returns the playback position in milliseconds
	TimePosition(ctx context.Context) (int, error)

	Search(ctx context.Context, query string) ([]Track, error)
	Browse(ctx context.Context, uri string) ([]Ref, error)
	Images(ctx context.Context, uris []string) (map[string][]Image, error)
	Playlists(ctx context.Context) ([]Ref, error)

	// Subscribe registers fn for every media event and returns its unsubscribe func
	Subscribe(fn func(MediaEvent)) func()
}

// SessionAPI is the REST session collaborator
//
//go:generate mockgen -destination=mocks/session_api_mock.go -package=mocks github.com/genricoloni/queuekiosk/internal/domain SessionAPI
type SessionAPI interface {
	Config(ctx context.Context) (*BackendConfig, error)
	Session(ctx context.Context) (*Session, error)
	StartSession(ctx context.Context, opts SessionOptions) error
	EndSession(ctx context.Context) error
	UpdateSessionPlaylists(ctx context.Context, playlists []string) (*Session, error)

	Tracklist(ctx context.Context) (*Tracklist, error)
	QueueTrack(ctx context.Context, uri string) (*Tracklist, error)
	RemoveQueuedTrack(ctx context.Context, uri string) (*Tracklist, error)
	VoteToSkip(ctx context.Context, uri string) error

	Suggestions(ctx context.Context) ([]Track, error)
	Reboot(ctx context.Context) error
}

// EventChannel is the session event channel as seen by its consumers
type EventChannel interface {
	// OnMessage subscribes fn to inbound frames of msgType
	OnMessage(msgType string, fn func(Envelope)) func()
	// OnConnectivity subscribes fn to open/close transitions
	OnConnectivity(fn func(connected bool)) func()
	// Connected reports whether the channel is OPEN
	Connected() bool
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads image data from a URL
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageProcessor defines the interface for in-memory image processing
// This is OS-agnostic and works purely with byte streams
type ImageProcessor interface {
	// Resize scales the cover to a size x size square (JPEG)
	Resize(ctx context.Context, imageData []byte, size int) ([]byte, error)

	// Backdrop renders the blurred display background with the cover centered
	Backdrop(ctx context.Context, imageData []byte) ([]byte, error)
}

// Config defines the interface for application configuration
type Config interface {
	// GetServerURL returns the base URL of the kiosk backend
	GetServerURL() string

	// GetAPIPrefix returns the path prefix of the REST session API
	GetAPIPrefix() string

	// GetEventsURL returns the websocket URL of the session event channel
	GetEventsURL() string

	// GetMediaURL returns the websocket URL of the media player connection
	GetMediaURL() string

	// GetPingInterval returns the heartbeat cadence
	GetPingInterval() time.Duration

	// GetPongTimeout returns how long to wait for a PONG
	GetPongTimeout() time.Duration

	// GetSettleDelay returns the delay before refetching the current track
	GetSettleDelay() time.Duration

	// GetArtworkSize returns the artwork edge length requested by the display
	GetArtworkSize() int

	// GetOutputDir returns the directory for rendered display artwork
	GetOutputDir() string

	// GetStateDir returns the directory holding device state (fingerprint)
	GetStateDir() string
}
