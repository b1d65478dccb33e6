package pibox

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

// Ensure API implements domain.SessionAPI at compile time.
var _ domain.SessionAPI = (*API)(nil)

// API is the session backend surface built on Client
type API struct {
	client *Client
}

// NewAPI wraps client
func NewAPI(client *Client) *API {
	return &API{client: client}
}

type errorBody struct {
	Error             string `json:"error"`
	Text              string `json:"_text"`
	RetryAfterSeconds *int   `json:"retry_after_seconds"`
}

type queueResponse struct {
	domain.Tracklist
	Error string `json:"error"`
}

// Config loads the backend configuration
func (a *API) Config(ctx context.Context) (*domain.BackendConfig, error) {
	var cfg domain.BackendConfig
	if err := a.get(ctx, "/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Session loads the current party session
func (a *API) Session(ctx context.Context) (*domain.Session, error) {
	var s domain.Session
	if err := a.get(ctx, "/api/session", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// StartSession starts a party session
func (a *API) StartSession(ctx context.Context, opts domain.SessionOptions) error {
	resp, err := a.client.Do(ctx, http.MethodPost, "/api/session", opts)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return domain.NewAPIError(domain.CodeUnknown, "An error occurred while starting the session")
	}
	return nil
}

// EndSession ends the party session
func (a *API) EndSession(ctx context.Context) error {
	resp, err := a.client.Do(ctx, http.MethodDelete, "/api/session", nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return domain.NewAPIError(domain.CodeUnknown, "An error occurred while ending the session")
	}
	return nil
}

// UpdateSessionPlaylists replaces the playlists feeding the active session
func (a *API) UpdateSessionPlaylists(ctx context.Context, playlists []string) (*domain.Session, error) {
	resp, err := a.client.Do(ctx, http.MethodPost, "/api/session/playlists", map[string][]string{"playlists": playlists})
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		var s domain.Session
		if err := resp.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		return &s, nil
	}

	var body errorBody
	_ = resp.Decode(&body)
	switch domain.ErrorCode(body.Error) {
	case domain.CodeNoActiveSession:
		return nil, domain.NewAPIError(domain.CodeNoActiveSession, "No active session to update")
	case domain.CodeNoPlaylists:
		return nil, domain.NewAPIError(domain.CodeNoPlaylists, "At least one playlist must be selected")
	default:
		return nil, domain.NewAPIError(domain.CodeUnknown, "An error occurred while updating playlists")
	}
}

// Tracklist loads the queue with the caller's vote state
func (a *API) Tracklist(ctx context.Context) (*domain.Tracklist, error) {
	var tl domain.Tracklist
	if err := a.get(ctx, "/api/tracklist/", &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

// QueueTrack adds uri to the queue and returns the updated tracklist
func (a *API) QueueTrack(ctx context.Context, uri string) (*domain.Tracklist, error) {
	resp, err := a.client.Do(ctx, http.MethodPost, "/api/tracklist", map[string]string{"track": uri})
	if err != nil {
		return nil, err
	}

	var body queueResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode tracklist: %w", err)
	}
	switch domain.ErrorCode(body.Error) {
	case "":
	case domain.CodeAlreadyPlayed:
		return nil, domain.NewAPIError(domain.CodeAlreadyPlayed, "Track has already been played")
	case domain.CodeAlreadyQueued:
		return nil, domain.NewAPIError(domain.CodeAlreadyQueued, "Track has already been queued")
	case domain.CodeUserQueueLimit:
		return nil, domain.NewAPIError(domain.CodeUserQueueLimit, "You have reached your queue limit")
	default:
		return nil, domain.NewAPIError(domain.CodeUnknown, "An unknown error occurred")
	}
	if !resp.OK() {
		return nil, domain.NewAPIError(domain.CodeUnknown, "An unknown error occurred")
	}
	return &body.Tracklist, nil
}

// RemoveQueuedTrack removes a track the caller queued
func (a *API) RemoveQueuedTrack(ctx context.Context, uri string) (*domain.Tracklist, error) {
	resp, err := a.client.Do(ctx, http.MethodDelete, "/api/tracklist", map[string]string{"track": uri})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, domain.NewAPIError(domain.CodeUnknown, "An error occurred while removing the track")
	}

	var body queueResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode tracklist: %w", err)
	}
	return &body.Tracklist, nil
}

// VoteToSkip votes to skip the track at uri. A rate-limited vote returns
// an APIError carrying the backend's retry-after.
func (a *API) VoteToSkip(ctx context.Context, uri string) error {
	resp, err := a.client.Do(ctx, http.MethodPost, "/api/vote", map[string]string{"uri": uri})
	if err != nil {
		return err
	}

	switch resp.Status {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return domain.NewAPIError(domain.CodeAlreadyVoted, "User has already voted on this track")
	case http.StatusTooManyRequests:
		apiErr := domain.NewAPIError(domain.CodeRateLimited, "Vote rate limit exceeded")
		apiErr.RetryAfter = retryAfter(resp)
		return apiErr
	default:
		return domain.NewAPIError(domain.CodeUnknown, "An error occurred while voting")
	}
}

// Suggestions returns tracks the backend suggests queueing
func (a *API) Suggestions(ctx context.Context) ([]domain.Track, error) {
	var body struct {
		Suggestions []domain.Track `json:"suggestions"`
	}
	if err := a.get(ctx, "/api/suggestions", &body); err != nil {
		return nil, err
	}
	return body.Suggestions, nil
}

// Reboot asks the backend host to run its configured reboot command
func (a *API) Reboot(ctx context.Context) error {
	resp, err := a.client.Do(ctx, http.MethodPost, "/api/reboot", nil)
	if err != nil {
		return err
	}
	if resp.OK() {
		return nil
	}

	var body errorBody
	_ = resp.Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = body.Text
	}
	if msg == "" {
		msg = "Failed to start reboot"
	}
	return domain.NewAPIError(domain.CodeUnknown, msg)
}

func (a *API) get(ctx context.Context, path string, v any) error {
	resp, err := a.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.Status)
	}
	if err := resp.Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// retryAfter prefers retry_after_seconds in the body and falls back to the header
func retryAfter(resp *Response) time.Duration {
	var body errorBody
	if err := resp.Decode(&body); err == nil && body.RetryAfterSeconds != nil && *body.RetryAfterSeconds > 0 {
		return time.Duration(*body.RetryAfterSeconds) * time.Second
	}
	if n, err := strconv.Atoi(strings.TrimSpace(resp.RetryAfter)); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return 0
}
