package mopidy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/channel"
	"github.com/genricoloni/queuekiosk/internal/domain"
)

// ErrNotConnected is returned by calls made while the media socket is offline
var ErrNotConnected = errors.New("media connection offline")

// Ensure Client implements domain.MediaPlayer at compile time.
var _ domain.MediaPlayer = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithClock replaces the wall clock used for reconnect timers
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithBackoff replaces the reconnect policy
func WithBackoff(b channel.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// Client speaks Mopidy JSON-RPC over a websocket and keeps itself
// connected with the same backoff policy as the event channel.
type Client struct {
	logger  *zap.Logger
	url     string
	dialer  channel.Dialer
	clock   clock.Clock
	backoff channel.Backoff

	mu             sync.Mutex
	running        bool
	dialing        bool
	sock           channel.Socket
	nextID         int64
	pending        map[int64]chan rpcResult
	attempts       int
	reconnectTimer *clock.Timer

	subMu  sync.RWMutex
	subs   map[int]func(domain.MediaEvent)
	subSeq int

	writeMu sync.Mutex
}

// NewClient creates a media client for cfg's media URL
func NewClient(logger *zap.Logger, cfg domain.Config, dialer channel.Dialer, opts ...Option) *Client {
	c := &Client{
		logger:  logger,
		url:     cfg.GetMediaURL(),
		dialer:  dialer,
		clock:   clock.New(),
		backoff: channel.DefaultBackoff(),
		pending: make(map[int64]chan rpcResult),
		subs:    make(map[int]func(domain.MediaEvent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start connects in the background
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()

	c.logger.Info("Starting media connection", zap.String("url", c.url))
	c.connect()
	return nil
}

// Stop closes the socket and cancels reconnection
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.running = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	sock := c.sock
	c.mu.Unlock()

	if sock != nil {
		_ = sock.Close()
	}
	c.logger.Info("Media connection stopped")
	return nil
}

// Connected reports whether the RPC socket is online
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock != nil
}

// Subscribe registers fn for every media event
func (c *Client) Subscribe(fn func(domain.MediaEvent)) func() {
	c.subMu.Lock()
	c.subSeq++
	id := c.subSeq
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Client) publish(ev domain.MediaEvent) {
	c.subMu.RLock()
	fns := make([]func(domain.MediaEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) connect() {
	c.mu.Lock()
	if !c.running || c.dialing || c.sock != nil {
		c.mu.Unlock()
		return
	}
	c.dialing = true
	c.mu.Unlock()

	go func() {
		sock, err := c.dialer.Dial(context.Background(), c.url)

		c.mu.Lock()
		c.dialing = false
		if !c.running {
			c.mu.Unlock()
			if sock != nil {
				_ = sock.Close()
			}
			return
		}
		if err != nil {
			c.scheduleReconnectLocked()
			c.mu.Unlock()
			c.logger.Debug("Media dial failed", zap.Error(err))
			return
		}
		c.sock = sock
		c.attempts = 0
		c.mu.Unlock()

		c.logger.Info("Media connection online")
		c.publish(domain.MediaEvent{Type: domain.MediaEventState, Online: true})
		go c.readLoop(sock)
	}()
}

func (c *Client) scheduleReconnectLocked() {
	c.attempts++
	delay := c.backoff.Next(c.attempts)
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		c.mu.Unlock()
		c.connect()
	})
	c.logger.Debug("Media reconnect scheduled", zap.Int("attempt", c.attempts), zap.Duration("delay", delay))
}

func (c *Client) readLoop(sock channel.Socket) {
	for {
		data, err := sock.ReadMessage()
		if err != nil {
			c.handleClose(sock, err)
			return
		}

		var frame rpcFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Debug("Dropping malformed media frame", zap.Error(err))
			continue
		}
		switch {
		case frame.ID != nil:
			c.resolve(frame)
		case frame.Event != "":
			c.handleEvent(frame)
		}
	}
}

func (c *Client) resolve(frame rpcFrame) {
	c.mu.Lock()
	ch, ok := c.pending[*frame.ID]
	delete(c.pending, *frame.ID)
	c.mu.Unlock()
	if !ok {
		return
	}

	if frame.Error != nil {
		ch <- rpcResult{err: frame.Error}
		return
	}
	ch <- rpcResult{result: frame.Result}
}

func (c *Client) handleEvent(frame rpcFrame) {
	switch domain.MediaEventType(frame.Event) {
	case domain.MediaEventPlaybackStateChanged:
		c.publish(domain.MediaEvent{
			Type:     domain.MediaEventPlaybackStateChanged,
			NewState: domain.PlaybackState(frame.NewState),
		})
	case domain.MediaEventTracklistChanged, domain.MediaEventTrackPlaybackEnded:
		c.publish(domain.MediaEvent{Type: domain.MediaEventType(frame.Event)})
	}
}

func (c *Client) handleClose(sock channel.Socket, cause error) {
	c.mu.Lock()
	if c.sock != sock {
		c.mu.Unlock()
		return
	}
	_ = sock.Close()
	c.sock = nil
	pending := c.pending
	c.pending = make(map[int64]chan rpcResult)
	if c.running {
		c.scheduleReconnectLocked()
	}
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- rpcResult{err: ErrNotConnected}
	}

	c.logger.Info("Media connection offline", zap.Error(cause))
	c.publish(domain.MediaEvent{Type: domain.MediaEventState, Online: false})
}

// call invokes method and decodes its result into out (if non-nil)
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	c.mu.Lock()
	sock := c.sock
	if sock == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.nextID++
	id := c.nextID
	ch := make(chan rpcResult, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	data, err := json.Marshal(rpcRequest{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params})
	if err != nil {
		c.forget(id)
		return fmt.Errorf("encode %s: %w", method, err)
	}

	c.writeMu.Lock()
	err = sock.WriteMessage(data)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return fmt.Errorf("%s: %w", method, res.err)
		}
		if out == nil || len(res.result) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.result, out); err != nil {
			return fmt.Errorf("decode %s: %w", method, err)
		}
		return nil
	}
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
