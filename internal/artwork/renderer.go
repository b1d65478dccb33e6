package artwork

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

const (
	// BackdropFile is the rendered display background
	BackdropFile = "nowplaying.jpg"
	// CoverFile is the cover resized to the configured artwork size
	CoverFile = "cover.jpg"

	renderDebounce = 500 * time.Millisecond
	memoSize       = 16
)

// Source resolves what the display shows
type Source interface {
	CurrentTrack(ctx context.Context) (*domain.Track, error)
	ArtworkURL(ctx context.Context, uri string, size int) (string, error)
	// OnTrackChange subscribes fn to refreshes of the current track
	OnTrackChange(fn func()) func()
}

type memoKey struct {
	url  string
	size int
}

type rendered struct {
	backdrop []byte
	cover    []byte
}

// Option configures a Renderer
type Option func(*Renderer)

// WithClock replaces the wall clock used for debouncing
func WithClock(clk clock.Clock) Option {
	return func(r *Renderer) { r.clock = clk }
}

// Renderer keeps the display artwork files in sync with the current track.
// Bursts of track changes are debounced so quick skipping renders once.
type Renderer struct {
	logger    *zap.Logger
	source    Source
	fetcher   domain.Fetcher
	processor domain.ImageProcessor
	clock     clock.Clock
	size      int
	outputDir string

	memo   *lru.Cache[memoKey, rendered]
	notify chan struct{}

	mu      sync.Mutex
	lastURL string
	unsub   func()
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRenderer creates a renderer writing into the configured output dir
func NewRenderer(logger *zap.Logger, cfg domain.Config, source Source, fetcher domain.Fetcher, processor domain.ImageProcessor, opts ...Option) (*Renderer, error) {
	memo, err := lru.New[memoKey, rendered](memoSize)
	if err != nil {
		return nil, fmt.Errorf("artwork memo: %w", err)
	}
	r := &Renderer{
		logger:    logger,
		source:    source,
		fetcher:   fetcher,
		processor: processor,
		clock:     clock.New(),
		size:      cfg.GetArtworkSize(),
		outputDir: cfg.GetOutputDir(),
		memo:      memo,
		notify:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start subscribes to track changes and renders the current track once
// things settle. It returns immediately.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.done = make(chan struct{})
	r.unsub = r.source.OnTrackChange(r.Notify)

	go r.runLoop(loopCtx, r.done)
	r.Notify()
	r.logger.Info("Artwork renderer started", zap.String("dir", r.outputDir), zap.Int("size", r.size))
	return nil
}

// Stop ends the render loop and waits for an in-progress render
func (r *Renderer) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done, unsub := r.cancel, r.done, r.unsub
	r.cancel, r.done, r.unsub = nil, nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	unsub()
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify requests a render after the debounce window
func (r *Renderer) Notify() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *Renderer) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := r.clock.Timer(renderDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.notify:
			timer.Reset(renderDebounce)
		case <-timer.C:
			if err := r.render(ctx); err != nil {
				r.logger.Error("Failed to render artwork", zap.Error(err))
			}
		}
	}
}

func (r *Renderer) render(ctx context.Context) error {
	track, err := r.source.CurrentTrack(ctx)
	if err != nil {
		return fmt.Errorf("current track: %w", err)
	}
	if track == nil {
		r.logger.Debug("Nothing playing, keeping artwork")
		return nil
	}

	url, err := r.source.ArtworkURL(ctx, track.URI, r.size)
	if err != nil {
		return fmt.Errorf("artwork url: %w", err)
	}
	if url == "" {
		r.logger.Warn("No artwork for track", zap.String("track", track.Name), zap.String("uri", track.URI))
		return nil
	}

	r.mu.Lock()
	unchanged := url == r.lastURL
	r.mu.Unlock()
	if unchanged {
		return nil
	}

	key := memoKey{url: url, size: r.size}
	out, ok := r.memo.Get(key)
	if !ok {
		if out, err = r.produce(ctx, url); err != nil {
			return err
		}
		r.memo.Add(key, out)
	}

	if err := r.write(out); err != nil {
		return err
	}

	r.mu.Lock()
	r.lastURL = url
	r.mu.Unlock()
	r.logger.Info("Artwork updated", zap.String("track", track.Name), zap.Bool("memo", ok))
	return nil
}

func (r *Renderer) produce(ctx context.Context, url string) (rendered, error) {
	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return rendered{}, fmt.Errorf("fetch artwork: %w", err)
	}
	cover, err := r.processor.Resize(ctx, data, r.size)
	if err != nil {
		return rendered{}, fmt.Errorf("resize cover: %w", err)
	}
	backdrop, err := r.processor.Backdrop(ctx, data)
	if err != nil {
		return rendered{}, fmt.Errorf("render backdrop: %w", err)
	}
	return rendered{backdrop: backdrop, cover: cover}, nil
}

func (r *Renderer) write(out rendered) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeAtomic(filepath.Join(r.outputDir, CoverFile), out.cover); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(r.outputDir, BackdropFile), out.backdrop)
}

// writeAtomic replaces path so the display never reads a partial image
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
