package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/channel"
	"github.com/genricoloni/queuekiosk/internal/config"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/pibox"
)

// check is one doctor probe result
type check struct {
	Name     string
	OK       bool
	Duration time.Duration
	Message  string
}

type report struct {
	Checks []check
}

func (r report) failed() int {
	n := 0
	for _, c := range r.Checks {
		if !c.OK {
			n++
		}
	}
	return n
}

func newDoctorCmd(cfgPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Probes the session API, the event channel and the media connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewAppConfig(config.Path(*cfgPath))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rep := runDoctor(ctx, cfg)
			renderReport(cmd.OutOrStdout(), cfg, rep)
			if n := rep.failed(); n > 0 {
				return fmt.Errorf("%d of %d checks failed", n, len(rep.Checks))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Overall timeout for all probes")
	return cmd
}

func runDoctor(ctx context.Context, cfg domain.Config) report {
	var rep report

	client, err := pibox.NewClient(zap.NewNop(), cfg)
	if err != nil {
		rep.Checks = append(rep.Checks, check{Name: "fingerprint", Message: err.Error()})
		return rep
	}

	rep.Checks = append(rep.Checks,
		probe("session api", func() (string, error) { return checkSessionAPI(ctx, client) }),
		probe("event channel", func() (string, error) { return checkEventChannel(ctx, cfg, client.Fingerprint()) }),
		probe("media connection", func() (string, error) { return checkMedia(ctx, cfg) }),
	)
	return rep
}

func probe(name string, fn func() (string, error)) check {
	start := time.Now()
	msg, err := fn()
	c := check{Name: name, OK: err == nil, Duration: time.Since(start), Message: msg}
	if err != nil {
		c.Message = err.Error()
	}
	return c
}

func checkSessionAPI(ctx context.Context, client *pibox.Client) (string, error) {
	cfg, err := pibox.NewAPI(client).Config(ctx)
	if err != nil {
		return "", err
	}
	if cfg.Offline {
		return "", errors.New("backend reports offline mode")
	}
	return fmt.Sprintf("site %q, pong timeout override %dms", cfg.SiteTitle, cfg.WSPongTimeoutMs), nil
}

func checkEventChannel(ctx context.Context, cfg domain.Config, fingerprint string) (string, error) {
	header := http.Header{}
	header.Set(pibox.FingerprintHeader, fingerprint)
	sock, err := channel.NewWebSocketDialer(header).Dial(ctx, cfg.GetEventsURL())
	if err != nil {
		return "", err
	}
	defer sock.Close()

	ping, err := json.Marshal(domain.Envelope{Type: domain.MessagePing, TS: time.Now().UnixMilli()})
	if err != nil {
		return "", err
	}
	if err := sock.WriteMessage(ping); err != nil {
		return "", fmt.Errorf("send PING: %w", err)
	}

	sent := time.Now()
	deadline, cancel := context.WithTimeout(ctx, cfg.GetPongTimeout())
	defer cancel()
	_, err = awaitFrame(deadline, sock, func(data []byte) bool {
		var env domain.Envelope
		return json.Unmarshal(data, &env) == nil && env.Type == domain.MessagePong
	})
	if err != nil {
		return "", fmt.Errorf("no PONG: %w", err)
	}
	return fmt.Sprintf("PONG after %s", time.Since(sent).Round(time.Millisecond)), nil
}

func checkMedia(ctx context.Context, cfg domain.Config) (string, error) {
	sock, err := channel.NewWebSocketDialer(nil).Dial(ctx, cfg.GetMediaURL())
	if err != nil {
		return "", err
	}
	defer sock.Close()

	req := []byte(`{"jsonrpc":"2.0","id":1,"method":"core.get_version"}`)
	if err := sock.WriteMessage(req); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	var resp struct {
		ID     *int64          `json:"id"`
		Result json.RawMessage `json:"result"`
	}
	if _, err := awaitFrame(ctx, sock, func(data []byte) bool {
		return json.Unmarshal(data, &resp) == nil && resp.ID != nil && *resp.ID == 1
	}); err != nil {
		return "", err
	}
	var version string
	if err := json.Unmarshal(resp.Result, &version); err != nil || version == "" {
		return "connected", nil
	}
	return "version " + version, nil
}

// awaitFrame reads until match accepts a frame or ctx ends. The socket is
// closed on timeout to unblock the reader.
func awaitFrame(ctx context.Context, sock channel.Socket, match func([]byte) bool) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	found := make(chan result, 1)
	go func() {
		for {
			data, err := sock.ReadMessage()
			if err != nil {
				found <- result{err: err}
				return
			}
			if match(data) {
				found <- result{data: data}
				return
			}
		}
	}()

	select {
	case r := <-found:
		return r.data, r.err
	case <-ctx.Done():
		_ = sock.Close()
		return nil, ctx.Err()
	}
}

func renderReport(w io.Writer, cfg domain.Config, rep report) {
	bold := color.New(color.Bold).SprintFunc()
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", bold("kioskd doctor"), dim(cfg.GetServerURL()))
	for _, c := range rep.Checks {
		status := ok("PASS")
		if !c.OK {
			status = fail("FAIL")
		}
		fmt.Fprintf(w, "  %s  %-17s %s %s\n", status, c.Name, c.Message, dim(c.Duration.Round(time.Millisecond)))
	}

	if n := rep.failed(); n > 0 {
		fmt.Fprintf(w, "%s\n", fail(fmt.Sprintf("%d check(s) failed", n)))
		return
	}
	fmt.Fprintf(w, "%s\n", ok("all checks passed"))
}
