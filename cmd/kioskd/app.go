package main

import (
	"context"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/artwork"
	"github.com/genricoloni/queuekiosk/internal/cache"
	"github.com/genricoloni/queuekiosk/internal/channel"
	"github.com/genricoloni/queuekiosk/internal/config"
	"github.com/genricoloni/queuekiosk/internal/domain"
	"github.com/genricoloni/queuekiosk/internal/lifecycle"
	"github.com/genricoloni/queuekiosk/internal/mopidy"
	"github.com/genricoloni/queuekiosk/internal/pibox"
	"github.com/genricoloni/queuekiosk/internal/views"
)

// AppOptions is the daemon's dependency graph. The config path is supplied
// separately so tests and the CLI can choose it.
var AppOptions = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	fx.Provide(
		// Configuration and logging
		config.NewAppConfig,
		func(cfg *config.AppConfig) domain.Config { return cfg },
		newLogger,

		// Backend collaborators
		newRESTClient,
		func(client *pibox.Client) domain.SessionAPI { return pibox.NewAPI(client) },
		newEventChannel,
		newMediaClient,
		func(c *mopidy.Client) domain.MediaPlayer { return c },

		// Cache and views
		newStore,
		newViews,

		// Environment triggers
		func(logger *zap.Logger, m *channel.Manager) *lifecycle.Triggers {
			return lifecycle.NewTriggers(logger, m)
		},
		lifecycle.NewManual,

		// Display artwork pipeline
		artwork.NewScreenResolution,
		func(logger *zap.Logger) domain.Fetcher { return artwork.NewHTTPFetcher(logger) },
		func(logger *zap.Logger, res *domain.ScreenResolution) domain.ImageProcessor {
			return artwork.NewProcessor(logger, res)
		},
		newRenderer,
	),

	fx.Invoke(registerHooks),
)

// newLogger creates the process logger
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	cfg.LogSummary(logger)
	return logger, nil
}

func newRESTClient(logger *zap.Logger, cfg domain.Config) (*pibox.Client, error) {
	return pibox.NewClient(logger, cfg)
}

// newEventChannel creates the session event channel; its handshake carries
// the device fingerprint like every REST request
func newEventChannel(logger *zap.Logger, cfg domain.Config, client *pibox.Client) *channel.Manager {
	header := http.Header{}
	header.Set(pibox.FingerprintHeader, client.Fingerprint())
	return channel.NewManager(logger, cfg, channel.NewWebSocketDialer(header))
}

func newMediaClient(logger *zap.Logger, cfg domain.Config) *mopidy.Client {
	return mopidy.NewClient(logger, cfg, channel.NewWebSocketDialer(nil))
}

func newStore(logger *zap.Logger) *cache.Store {
	return cache.NewStore(logger)
}

func newViews(logger *zap.Logger, cfg domain.Config, store *cache.Store, api domain.SessionAPI, media domain.MediaPlayer, events *channel.Manager) *views.Views {
	return views.New(logger, cfg, store, api, media, events, events)
}

func newRenderer(logger *zap.Logger, cfg domain.Config, v *views.Views, fetcher domain.Fetcher, proc domain.ImageProcessor) (*artwork.Renderer, error) {
	return artwork.NewRenderer(logger, cfg, v, fetcher, proc)
}

type hookParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Events    *channel.Manager
	Media     *mopidy.Client
	Store     *cache.Store
	Views     *views.Views
	Triggers  *lifecycle.Triggers
	Manual    *lifecycle.Manual
	Renderer  *artwork.Renderer
}

// registerHooks starts the components in dependency order and stops them
// in reverse
func registerHooks(p hookParams) {
	var unsubs []func()

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("Queue kiosk daemon starting")

			unsubs = append(unsubs,
				p.Triggers.OnSignal(p.Views.HandleSignal),
				p.Events.Bus().OnReconnectScheduled(func(info channel.ReconnectInfo) {
					p.Logger.Info("Event channel reconnect scheduled",
						zap.Int("attempt", info.Attempt),
						zap.Duration("delay", info.Delay))
				}),
			)

			if err := p.Media.Start(ctx); err != nil {
				return err
			}
			if err := p.Events.Start(ctx); err != nil {
				return err
			}
			if err := p.Views.Start(ctx); err != nil {
				return err
			}
			p.Triggers.Register(lifecycle.NewDBusObserver(p.Logger))
			p.Triggers.Register(lifecycle.NewProcessObserver(p.Logger))
			p.Triggers.Register(p.Manual)
			return p.Renderer.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Shutting down")
			for _, unsub := range unsubs {
				unsub()
			}

			var err error
			err = multierr.Append(err, p.Renderer.Stop(ctx))
			if obsErr := p.Triggers.Stop(ctx); obsErr != nil {
				p.Logger.Warn("Environment observers reported errors", zap.Error(obsErr))
			}
			err = multierr.Append(err, p.Views.Stop(ctx))
			err = multierr.Append(err, p.Events.Stop(ctx))
			err = multierr.Append(err, p.Media.Stop(ctx))
			p.Store.Close()
			_ = p.Logger.Sync()
			return err
		},
	})
}
