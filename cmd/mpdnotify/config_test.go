package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mpdnotify/internal/config"
)

func TestInitialConfig_SkipsEnvironment(t *testing.T) {
	t.Setenv("MPD_HOST", "hunter2@music.local")
	t.Setenv("MPD_PORT", "")

	loaded, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, "hunter2", loaded.Server.Password)

	globalOpts.musicDir = "/srv/music"
	t.Cleanup(func() { globalOpts.musicDir = "" })

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, initialConfig().Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.NotContains(t, string(data), "music.local")
	assert.Contains(t, string(data), "/srv/music")
}

func TestConfigOutput_RedactsPassword(t *testing.T) {
	c := config.DefaultConfig()
	c.Server.Password = "hunter2"

	data, err := toml.Marshal(c.Redacted())
	require.NoError(t, err)

	assert.False(t, bytes.Contains(data, []byte("hunter2")))
	assert.Contains(t, string(data), config.RedactedPassword)
}
