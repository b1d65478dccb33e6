package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	defaultServerURL    = "http://127.0.0.1:6680"
	defaultAPIPrefix    = "/pibox"
	defaultEventsPath   = "/pibox/ws"
	defaultMediaPath    = "/mopidy/ws/"
	defaultPingInterval = 8 * time.Second
	defaultPongTimeout  = 4 * time.Second
	defaultSettleDelay  = 1500 * time.Millisecond
	defaultArtworkSize  = 640
	defaultOutputDir    = "/tmp/queuekiosk"
	defaultStateDir     = "~/.local/state/queuekiosk"

	// MinPongTimeout is the floor applied to every pong timeout override
	MinPongTimeout = time.Second
)

// Path is the location of the TOML config file; empty selects the default
type Path string

// AppConfig holds application configuration
type AppConfig struct {
	serverURL    string
	apiPrefix    string
	eventsPath   string
	mediaPath    string
	pingInterval time.Duration
	pongTimeout  time.Duration
	settleDelay  time.Duration
	artworkSize  int
	outputDir    string
	stateDir     string
	development  bool
}

type fileConfig struct {
	Server struct {
		URL        string `toml:"url"`
		APIPrefix  string `toml:"api_prefix"`
		EventsPath string `toml:"events_path"`
		MediaPath  string `toml:"media_path"`
	} `toml:"server"`
	Heartbeat struct {
		Interval    string `toml:"interval"`
		PongTimeout string `toml:"pong_timeout"`
	} `toml:"heartbeat"`
	Cache struct {
		SettleDelay string `toml:"settle_delay"`
	} `toml:"cache"`
	Artwork struct {
		Size      int    `toml:"size"`
		OutputDir string `toml:"output_dir"`
	} `toml:"artwork"`
	State struct {
		Dir string `toml:"dir"`
	} `toml:"state"`
	Log struct {
		Development bool `toml:"development"`
	} `toml:"log"`
}

// NewAppConfig creates a new application configuration instance.
// Values come from the TOML file, then QUEUEKIOSK_* environment variables, then defaults.
func NewAppConfig(path Path) (*AppConfig, error) {
	raw, err := readFile(string(path))
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		serverURL:   firstNonEmpty(os.Getenv("QUEUEKIOSK_SERVER_URL"), raw.Server.URL, defaultServerURL),
		apiPrefix:   firstNonEmpty(raw.Server.APIPrefix, defaultAPIPrefix),
		eventsPath:  firstNonEmpty(raw.Server.EventsPath, defaultEventsPath),
		mediaPath:   firstNonEmpty(raw.Server.MediaPath, defaultMediaPath),
		outputDir:   expandPath(firstNonEmpty(os.Getenv("QUEUEKIOSK_OUTPUT_DIR"), raw.Artwork.OutputDir, defaultOutputDir)),
		stateDir:    expandPath(firstNonEmpty(os.Getenv("QUEUEKIOSK_STATE_DIR"), raw.State.Dir, defaultStateDir)),
		artworkSize: raw.Artwork.Size,
		development: raw.Log.Development,
	}
	if cfg.artworkSize <= 0 {
		cfg.artworkSize = defaultArtworkSize
	}
	if v, ok := os.LookupEnv("QUEUEKIOSK_DEV"); ok {
		cfg.development, _ = strconv.ParseBool(v)
	}

	if cfg.pingInterval, err = parseDuration(raw.Heartbeat.Interval, defaultPingInterval); err != nil {
		return nil, fmt.Errorf("heartbeat.interval: %w", err)
	}
	pong := firstNonEmpty(os.Getenv("QUEUEKIOSK_PONG_TIMEOUT"), raw.Heartbeat.PongTimeout)
	if cfg.pongTimeout, err = parseDuration(pong, defaultPongTimeout); err != nil {
		return nil, fmt.Errorf("heartbeat.pong_timeout: %w", err)
	}
	if cfg.pongTimeout < MinPongTimeout {
		cfg.pongTimeout = MinPongTimeout
	}
	if cfg.settleDelay, err = parseDuration(raw.Cache.SettleDelay, defaultSettleDelay); err != nil {
		return nil, fmt.Errorf("cache.settle_delay: %w", err)
	}

	if _, err := url.Parse(cfg.serverURL); err != nil {
		return nil, fmt.Errorf("server.url %q: %w", cfg.serverURL, err)
	}

	return cfg, nil
}

// LogSummary writes the effective settings to logger
func (c *AppConfig) LogSummary(logger *zap.Logger) {
	logger.Info("Configuration loaded",
		zap.String("serverURL", c.serverURL),
		zap.String("eventsURL", c.GetEventsURL()),
		zap.String("mediaURL", c.GetMediaURL()),
		zap.Duration("pingInterval", c.pingInterval),
		zap.Duration("pongTimeout", c.pongTimeout),
		zap.String("outputDir", c.outputDir),
		zap.Bool("development", c.development))
}

// DefaultPath returns the config file location used when none is given
func DefaultPath() string {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "queuekiosk", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "queuekiosk", "config.toml")
}

// GetServerURL returns the base URL of the kiosk backend
func (c *AppConfig) GetServerURL() string {
	return c.serverURL
}

// GetAPIPrefix returns the path prefix of the REST session API
func (c *AppConfig) GetAPIPrefix() string {
	return c.apiPrefix
}

// GetEventsURL returns the websocket URL of the session event channel
func (c *AppConfig) GetEventsURL() string {
	return websocketURL(c.serverURL, c.eventsPath)
}

// GetMediaURL returns the websocket URL of the media player connection
func (c *AppConfig) GetMediaURL() string {
	return websocketURL(c.serverURL, c.mediaPath)
}

// GetPingInterval returns the heartbeat cadence
func (c *AppConfig) GetPingInterval() time.Duration {
	return c.pingInterval
}

// GetPongTimeout returns how long to wait for a PONG
func (c *AppConfig) GetPongTimeout() time.Duration {
	return c.pongTimeout
}

// GetSettleDelay returns the delay before refetching the current track
func (c *AppConfig) GetSettleDelay() time.Duration {
	return c.settleDelay
}

// GetArtworkSize returns the artwork edge length requested by the display
func (c *AppConfig) GetArtworkSize() int {
	return c.artworkSize
}

// GetOutputDir returns the directory for rendered display artwork
func (c *AppConfig) GetOutputDir() string {
	return c.outputDir
}

// GetStateDir returns the directory holding device state
func (c *AppConfig) GetStateDir() string {
	return c.stateDir
}

// IsDevelopment reports whether development logging was requested
func (c *AppConfig) IsDevelopment() bool {
	return c.development
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return raw, nil
		}
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func websocketURL(base, path string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + path
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = path
	u.RawQuery = ""
	return u.String()
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Expand path if it contains ~ or environment variables
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
