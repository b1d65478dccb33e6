package pibox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

const (
	// FingerprintHeader identifies the device for per-user limits
	FingerprintHeader = "X-Pibox-Fingerprint"
	requestTimeout    = 10 * time.Second
	maxBodySize       = 4 * 1024 * 1024
)

// Response is the outcome of a request that reached the backend.
// Data holds the JSON body, a {"_text": raw} object for non-JSON bodies,
// or nil when the response had no content length.
type Response struct {
	Status     int
	Data       json.RawMessage
	RetryAfter string
}

// Decode unmarshals Data into v; a missing body leaves v untouched
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// OK reports a 200 response
func (r *Response) OK() bool {
	return r.Status == http.StatusOK
}

// Client performs path-prefixed JSON requests against the session backend
type Client struct {
	logger      *zap.Logger
	baseURL     string
	http        *http.Client
	fingerprint string
}

// NewClient builds a Client for cfg, loading the device fingerprint from the state dir
func NewClient(logger *zap.Logger, cfg domain.Config) (*Client, error) {
	fp, err := LoadFingerprint(cfg.GetStateDir())
	if err != nil {
		return nil, err
	}
	return &Client{
		logger:      logger,
		baseURL:     strings.TrimRight(cfg.GetServerURL(), "/") + cfg.GetAPIPrefix(),
		http:        &http.Client{Timeout: requestTimeout},
		fingerprint: fp,
	}, nil
}

// Fingerprint returns the device fingerprint sent with every request
func (c *Client) Fingerprint() string {
	return c.fingerprint
}

// Do sends body (JSON-encoded when non-nil) to path and returns the response.
// Only transport failures are errors; any HTTP status is a Response.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(FingerprintHeader, c.fingerprint)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	out := &Response{
		Status:     resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
	}
	if resp.ContentLength > 0 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		out.Data = parseBody(raw)
	}

	c.logger.Debug("Backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", out.Status))

	return out, nil
}

func parseBody(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	wrapped, _ := json.Marshal(map[string]string{"_text": string(raw)})
	return wrapped
}
