package pibox

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubConfig struct {
	server   string
	stateDir string
}

func (c stubConfig) GetServerURL() string           { return c.server }
func (c stubConfig) GetAPIPrefix() string           { return "/pibox" }
func (c stubConfig) GetEventsURL() string           { return "" }
func (c stubConfig) GetMediaURL() string            { return "" }
func (c stubConfig) GetPingInterval() time.Duration { return 8 * time.Second }
func (c stubConfig) GetPongTimeout() time.Duration  { return 4 * time.Second }
func (c stubConfig) GetSettleDelay() time.Duration  { return 1500 * time.Millisecond }
func (c stubConfig) GetArtworkSize() int            { return 640 }
func (c stubConfig) GetOutputDir() string           { return "" }
func (c stubConfig) GetStateDir() string            { return c.stateDir }

func newTestAPI(t *testing.T, handler http.HandlerFunc) (*API, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(zap.NewNop(), stubConfig{server: srv.URL, stateDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewAPI(client), client
}
