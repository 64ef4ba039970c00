// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultAddress      = "127.0.0.1:6600"
	DefaultFallbackIcon = "audio-x-generic"
	DefaultGroupKey     = "mpd-notification"
	DefaultAppName      = "mpdnotify"
	DefaultTimeout      = 6 * time.Second
	DefaultMaxImageSize = 256
	DefaultLogLevel     = "info"
)

// Notification backends.
const (
	BackendAuto  = "auto"
	BackendDBus  = "dbus"
	BackendBeeep = "beeep"
)

// ErrMusicRootNotFound is returned when the music directory cannot be resolved
// to an existing directory.
var ErrMusicRootNotFound = errors.New("music directory not found")

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "6s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '6s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the mpdnotify configuration.
// Loaded from ~/.config/mpdnotify/config.toml
type Config struct {
	Server       ServerConfig       `toml:"server" yaml:"server"`
	Music        MusicConfig        `toml:"music" yaml:"music"`
	Notification NotificationConfig `toml:"notification" yaml:"notification"`
	Art          ArtConfig          `toml:"art" yaml:"art"`
	Reconnect    ReconnectConfig    `toml:"reconnect" yaml:"reconnect"`
	Log          LogConfig          `toml:"log" yaml:"log"`
}

// ServerConfig describes how to reach MPD.
type ServerConfig struct {
	Address  string   `toml:"address" yaml:"address"`   // host:port or unix socket path
	Password string   `toml:"password" yaml:"password"` // Empty = no password command
	Events   []string `toml:"events" yaml:"events"`     // Idle subsystems, default ["player"]
}

// MusicConfig locates the local copy of the MPD music directory.
type MusicConfig struct {
	Root string `toml:"root" yaml:"root"` // Empty = XDG music dir
}

// NotificationConfig controls how notifications are rendered and sent.
type NotificationConfig struct {
	Backend         string   `toml:"backend" yaml:"backend"` // auto, dbus, beeep
	AppName         string   `toml:"app_name" yaml:"app_name"`
	Timeout         Duration `toml:"timeout" yaml:"timeout"`
	FallbackIcon    string   `toml:"fallback_icon" yaml:"fallback_icon"`
	GroupKey        string   `toml:"group_key" yaml:"group_key"`
	Urgency         string   `toml:"urgency" yaml:"urgency"`     // low, normal, critical
	Transient       bool     `toml:"transient" yaml:"transient"` // Ask history daemons not to persist
	NotifyOnConnect bool     `toml:"notify_on_connect" yaml:"notify_on_connect"`
}

// ArtConfig controls album art lookup.
type ArtConfig struct {
	PreferredNames []string `toml:"preferred_names" yaml:"preferred_names"`
	Embedded       bool     `toml:"embedded" yaml:"embedded"`
	MaxImageSize   int      `toml:"max_image_size" yaml:"max_image_size"`
}

// ReconnectConfig controls the backoff used when the MPD connection drops.
type ReconnectConfig struct {
	Initial     Duration `toml:"initial" yaml:"initial"`
	Max         Duration `toml:"max" yaml:"max"`
	MaxAttempts int      `toml:"max_attempts" yaml:"max_attempts"` // 0 = unlimited
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"` // debug, info, warn, error
}

// Urgency levels matching the freedesktop spec.
var urgencyLevels = map[string]byte{
	"low":      0,
	"normal":   1,
	"critical": 2,
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: DefaultAddress,
			Events:  []string{"player"},
		},
		Notification: NotificationConfig{
			Backend:      BackendAuto,
			AppName:      DefaultAppName,
			Timeout:      Duration(DefaultTimeout),
			FallbackIcon: DefaultFallbackIcon,
			GroupKey:     DefaultGroupKey,
			Urgency:      "low",
			Transient:    true,
		},
		Art: ArtConfig{
			PreferredNames: []string{"cover", "folder", "front", "album"},
			Embedded:       false,
			MaxImageSize:   DefaultMaxImageSize,
		},
		Reconnect: ReconnectConfig{
			Initial:     Duration(time.Second),
			Max:         Duration(time.Minute),
			MaxAttempts: 0,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigDir returns the mpdnotify config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mpdnotify"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnvPath returns the path to the optional env file.
func EnvPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "env"), nil
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config (with env overrides) if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays the standard MPD client environment variables.
// MPD_HOST may carry a password in the form "password@host".
func (c *Config) ApplyEnv() {
	host := os.Getenv("MPD_HOST")
	port := os.Getenv("MPD_PORT")
	if host == "" && port == "" {
		return
	}

	if i := strings.LastIndex(host, "@"); i > 0 {
		c.Server.Password = host[:i]
		host = host[i+1:]
	}

	// Unix socket paths carry no port
	if strings.HasPrefix(host, "/") || strings.HasPrefix(host, "~") {
		c.Server.Address = expandPath(host)
		return
	}

	curHost, curPort, err := net.SplitHostPort(c.Server.Address)
	if err != nil {
		curHost, curPort = "127.0.0.1", "6600"
	}
	if host == "" {
		host = curHost
	}
	if port == "" {
		port = curPort
	}
	c.Server.Address = net.JoinHostPort(host, port)
}

// RedactedPassword replaces the server password in printed configs.
const RedactedPassword = "********"

// Redacted returns a copy of the config that is safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.Events = append([]string(nil), c.Server.Events...)
	out.Art.PreferredNames = append([]string(nil), c.Art.PreferredNames...)
	if out.Server.Password != "" {
		out.Server.Password = RedactedPassword
	}
	return &out
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server address cannot be empty")
	}
	if len(c.Server.Events) == 0 {
		return errors.New("server events cannot be empty")
	}

	switch c.Notification.Backend {
	case BackendAuto, BackendDBus, BackendBeeep:
	default:
		return fmt.Errorf("invalid notification backend %q, must be one of: auto, dbus, beeep", c.Notification.Backend)
	}

	if _, ok := urgencyLevels[c.Notification.Urgency]; !ok {
		return fmt.Errorf("invalid urgency %q, must be one of: low, normal, critical", c.Notification.Urgency)
	}
	if c.Notification.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Notification.Timeout.Duration())
	}
	if c.Notification.GroupKey == "" {
		return errors.New("group_key cannot be empty")
	}

	if c.Art.MaxImageSize < 16 || c.Art.MaxImageSize > 1024 {
		return fmt.Errorf("max_image_size must be between 16 and 1024, got %d", c.Art.MaxImageSize)
	}

	if c.Reconnect.Initial <= 0 {
		return fmt.Errorf("reconnect initial must be positive, got %s", c.Reconnect.Initial.Duration())
	}
	if c.Reconnect.Max < c.Reconnect.Initial {
		return fmt.Errorf("reconnect max (%s) must not be below initial (%s)",
			c.Reconnect.Max.Duration(), c.Reconnect.Initial.Duration())
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts cannot be negative, got %d", c.Reconnect.MaxAttempts)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// UrgencyLevel returns the freedesktop urgency byte for the configured urgency.
func (c *NotificationConfig) UrgencyLevel() byte {
	if u, ok := urgencyLevels[c.Urgency]; ok {
		return u
	}
	return 1
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
