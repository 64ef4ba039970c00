package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearMPDEnv(t *testing.T) {
	t.Setenv("MPD_HOST", "")
	t.Setenv("MPD_PORT", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1:6600", cfg.Server.Address)
	assert.Equal(t, []string{"player"}, cfg.Server.Events)
	assert.Equal(t, BackendAuto, cfg.Notification.Backend)
	assert.Equal(t, 6000, cfg.Notification.Timeout.Milliseconds())
	assert.Equal(t, "audio-x-generic", cfg.Notification.FallbackIcon)
	assert.Equal(t, "mpd-notification", cfg.Notification.GroupKey)
	assert.False(t, cfg.Art.Embedded)
	assert.Equal(t, time.Second, cfg.Reconnect.Initial.Duration())
	assert.Equal(t, time.Minute, cfg.Reconnect.Max.Duration())
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	clearMPDEnv(t)

	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	clearMPDEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[server]
address = "music.local:6601"
password = "secret"
events = ["player", "options"]

[music]
root = "/srv/music"

[notification]
backend = "dbus"
timeout = "10s"
fallback_icon = "media-optical"
urgency = "normal"
transient = false
notify_on_connect = true

[art]
preferred_names = ["front"]
embedded = true
max_image_size = 128

[reconnect]
initial = 500
max = "30s"
max_attempts = 5

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "music.local:6601", cfg.Server.Address)
	assert.Equal(t, "secret", cfg.Server.Password)
	assert.Equal(t, []string{"player", "options"}, cfg.Server.Events)
	assert.Equal(t, "/srv/music", cfg.Music.Root)
	assert.Equal(t, BackendDBus, cfg.Notification.Backend)
	assert.Equal(t, 10*time.Second, cfg.Notification.Timeout.Duration())
	assert.Equal(t, "media-optical", cfg.Notification.FallbackIcon)
	assert.Equal(t, byte(1), cfg.Notification.UrgencyLevel())
	assert.False(t, cfg.Notification.Transient)
	assert.True(t, cfg.Notification.NotifyOnConnect)
	assert.Equal(t, []string{"front"}, cfg.Art.PreferredNames)
	assert.True(t, cfg.Art.Embedded)
	assert.Equal(t, 128, cfg.Art.MaxImageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Reconnect.Initial.Duration())
	assert.Equal(t, 30*time.Second, cfg.Reconnect.Max.Duration())
	assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unchanged fields keep defaults
	assert.Equal(t, "mpd-notification", cfg.Notification.GroupKey)
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearMPDEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearMPDEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "[notification]\nbackend = \"growl\"\n"},
		{"bad urgency", "[notification]\nurgency = \"loud\"\n"},
		{"bad duration", "[notification]\ntimeout = \"soon\"\n"},
		{"image too large", "[art]\nmax_image_size = 4096\n"},
		{"max below initial", "[reconnect]\ninitial = \"10s\"\nmax = \"1s\"\n"},
		{"bad log level", "[log]\nlevel = \"chatty\"\n"},
		{"empty address", "[server]\naddress = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		port         string
		wantAddress  string
		wantPassword string
	}{
		{"no env", "", "", "127.0.0.1:6600", ""},
		{"host only", "music.local", "", "music.local:6600", ""},
		{"port only", "", "6601", "127.0.0.1:6601", ""},
		{"host and port", "music.local", "7000", "music.local:7000", ""},
		{"password", "hunter2@music.local", "", "music.local:6600", "hunter2"},
		{"unix socket", "/run/mpd/socket", "", "/run/mpd/socket", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MPD_HOST", tt.host)
			t.Setenv("MPD_PORT", tt.port)

			cfg := DefaultConfig()
			cfg.ApplyEnv()

			assert.Equal(t, tt.wantAddress, cfg.Server.Address)
			assert.Equal(t, tt.wantPassword, cfg.Server.Password)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearMPDEnv(t)
	path := filepath.Join(t.TempDir(), "env")
	require.NoError(t, os.WriteFile(path, []byte("MPD_HOST=envhost\nMPD_PORT=6700\n"), 0600))

	// Unset so godotenv may populate them
	require.NoError(t, os.Unsetenv("MPD_HOST"))
	require.NoError(t, os.Unsetenv("MPD_PORT"))

	require.NoError(t, LoadEnvFile(path))

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "envhost:6700", cfg.Server.Address)
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing")))
}

func TestSaveAndLoad(t *testing.T) {
	clearMPDEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Music.Root = "/data/music"
	cfg.Notification.Timeout = Duration(8 * time.Second)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/music", loaded.Music.Root)
	assert.Equal(t, 8*time.Second, loaded.Notification.Timeout.Duration())
}

func TestResolveMusicRoot(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Music.Root = root

	got, err := cfg.ResolveMusicRoot()
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestResolveMusicRoot_Missing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Music.Root = filepath.Join(t.TempDir(), "missing")

	_, err := cfg.ResolveMusicRoot()
	assert.ErrorIs(t, err, ErrMusicRootNotFound)
}

func TestResolveMusicRoot_NotDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	cfg := DefaultConfig()
	cfg.Music.Root = file

	_, err := cfg.ResolveMusicRoot()
	assert.ErrorIs(t, err, ErrMusicRootNotFound)
}

func TestDefaultMusicDir(t *testing.T) {
	home := t.TempDir()
	configHome := filepath.Join(home, ".config")
	require.NoError(t, os.MkdirAll(configHome, 0755))

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_MUSIC_DIR", "")

	t.Run("fallback", func(t *testing.T) {
		dir, err := DefaultMusicDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "Music"), dir)
	})

	t.Run("user-dirs", func(t *testing.T) {
		content := "# written by xdg-user-dirs-update\nXDG_MUSIC_DIR=\"$HOME/Audio\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(configHome, "user-dirs.dirs"), []byte(content), 0644))

		dir, err := DefaultMusicDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "Audio"), dir)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("XDG_MUSIC_DIR", "/mnt/music")

		dir, err := DefaultMusicDir()
		require.NoError(t, err)
		assert.Equal(t, "/mnt/music", dir)
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration

	require.NoError(t, d.UnmarshalText([]byte("6000")))
	assert.Equal(t, 6*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("later")))
}

func TestResolveMusicRoot_UserDirsHome(t *testing.T) {
	home := t.TempDir()
	configHome := filepath.Join(home, ".config")
	require.NoError(t, os.MkdirAll(configHome, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Music"), 0755))

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_MUSIC_DIR", "")

	tests := []struct {
		name string
		line string
	}{
		{"plain", `XDG_MUSIC_DIR="$HOME/Music"`},
		{"braced", `XDG_MUSIC_DIR="${HOME}/Music"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "XDG_DESKTOP_DIR=\"$HOME/Desktop\"\n" + tt.line + "\n"
			require.NoError(t, os.WriteFile(filepath.Join(configHome, "user-dirs.dirs"), []byte(content), 0644))

			cfg := DefaultConfig()
			root, err := cfg.ResolveMusicRoot()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(home, "Music"), root)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Password = "hunter2"

	out := cfg.Redacted()

	assert.Equal(t, RedactedPassword, out.Server.Password)
	assert.Equal(t, "hunter2", cfg.Server.Password)
	assert.Equal(t, cfg.Server.Address, out.Server.Address)

	// No password, nothing to hide
	assert.Empty(t, DefaultConfig().Redacted().Server.Password)
}
