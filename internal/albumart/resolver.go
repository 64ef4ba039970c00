// Package albumart finds artwork for the playing track.
//
// Lookup is best-effort: the local music directory may not match the
// server's, or the server may run on another machine, so every failure is
// reported as "not found" rather than as an error.
package albumart

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/mpdnotify/internal/model"
)

// ImageExtensions lists the file extensions recognised as artwork.
var ImageExtensions = []string{".jpeg", ".jpg", ".gif", ".png", ".webp", ".avif", ".tiff"}

// IsImageName returns true if name ends in a supported image extension,
// ignoring case.
func IsImageName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// AlbumDir returns the local directory holding a track's file.
// Streams have no album directory.
func AlbumDir(root string, track model.Track) (string, bool) {
	if track.File == "" || track.IsStream() {
		return "", false
	}
	return filepath.Join(root, filepath.Dir(filepath.FromSlash(track.File))), true
}

// Resolver scans album directories for image files.
type Resolver struct {
	preferred []string
	logger    *slog.Logger
}

// NewResolver creates a Resolver. Files whose base name (without extension)
// matches one of preferred, case-insensitively, win in that order; otherwise
// the lexicographically first image wins.
func NewResolver(preferred []string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	names := make([]string, len(preferred))
	for i, p := range preferred {
		names[i] = strings.ToLower(p)
	}
	return &Resolver{
		preferred: names,
		logger:    logger,
	}
}

// Resolve returns the path of the artwork in dir, or false if none is found
// or dir cannot be read.
func (r *Resolver) Resolve(dir string) (string, bool) {
	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.logger.Debug("album directory unreadable", "dir", dir, "error", err)
		return "", false
	}

	var candidates []string
	for _, entry := range entries {
		if !IsImageName(entry.Name()) {
			continue
		}
		if !isRegular(dir, entry) {
			continue
		}
		candidates = append(candidates, entry.Name())
	}

	if len(candidates) == 0 {
		return "", false
	}

	return filepath.Join(dir, r.pick(candidates)), true
}

// pick applies the preferred-name order to a sorted candidate list.
func (r *Resolver) pick(candidates []string) string {
	for _, pref := range r.preferred {
		for _, name := range candidates {
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if strings.ToLower(stem) == pref {
				return name
			}
		}
	}
	return candidates[0]
}

// isRegular reports whether entry is a regular file, following symlinks.
func isRegular(dir string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
