package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// UserDirsPath returns the path to the xdg-user-dirs file.
func UserDirsPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "user-dirs.dirs"), nil
}

// DefaultMusicDir returns the user's music directory.
// Checks XDG_MUSIC_DIR, then ~/.config/user-dirs.dirs, then falls back to ~/Music.
// The directory is not required to exist.
func DefaultMusicDir() (string, error) {
	if dir := os.Getenv("XDG_MUSIC_DIR"); dir != "" {
		return expandPath(os.ExpandEnv(dir)), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	if path, err := UserDirsPath(); err == nil {
		if dir, ok := readUserMusicDir(path, home); ok {
			return dir, nil
		}
	}

	return filepath.Join(home, "Music"), nil
}

// readUserMusicDir reads XDG_MUSIC_DIR from an xdg-user-dirs file.
// The file is shell syntax, XDG_MUSIC_DIR="$HOME/Music", and $HOME refers to
// the process environment, so it is substituted before parsing.
func readUserMusicDir(path, home string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	content := strings.NewReplacer("${HOME}", home, "$HOME", home).Replace(string(data))
	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return "", false
	}

	dir := vars["XDG_MUSIC_DIR"]
	if dir == "" {
		return "", false
	}
	return filepath.Clean(dir), true
}

// ResolveMusicRoot returns the absolute music root. Uses the configured root
// if set, otherwise the XDG music directory. The result must be an existing
// directory.
func (c *Config) ResolveMusicRoot() (string, error) {
	root := c.Music.Root
	if root == "" {
		var err error
		root, err = DefaultMusicDir()
		if err != nil {
			return "", err
		}
	}

	root, err := filepath.Abs(expandPath(root))
	if err != nil {
		return "", fmt.Errorf("failed to resolve music directory %q: %w", c.Music.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMusicRootNotFound, root)
		}
		return "", fmt.Errorf("failed to stat music directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrMusicRootNotFound, root)
	}

	return root, nil
}

// ParseLogLevel converts a level name into a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", level)
	}
}
