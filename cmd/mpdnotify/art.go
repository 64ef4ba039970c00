package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/mpdnotify/internal/albumart"
)

var artOpts struct {
	embedded bool
}

var errNoArt = errors.New("no artwork found")

var artCmd = &cobra.Command{
	Use:   "art [directory]",
	Short: "Resolve album artwork",
	Long: `Print the artwork file the daemon would attach.

With a directory argument, the directory is scanned directly. Without one,
the album directory of the current track is used. Exits non-zero when no
artwork is found.

Examples:
  mpdnotify art
  mpdnotify art ~/Music/Artist/Album
  mpdnotify art --embedded`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArt,
}

func init() {
	rootCmd.AddCommand(artCmd)

	artCmd.Flags().BoolVar(&artOpts.embedded, "embedded", false,
		"Also check the current track for an embedded picture")
}

func runArt(cmd *cobra.Command, args []string) error {
	resolver := albumart.NewResolver(cfg.Art.PreferredNames, logger)

	if len(args) == 1 {
		path, ok := resolver.Resolve(args[0])
		if !ok {
			return errNoArt
		}
		return printArt(path)
	}

	root, err := cfg.ResolveMusicRoot()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, track, err := currentPlayback(ctx)
	if err != nil {
		return err
	}
	if track == nil {
		return errors.New("nothing is playing")
	}

	if dir, ok := albumart.AlbumDir(root, *track); ok {
		if path, ok := resolver.Resolve(dir); ok {
			return printArt(path)
		}
	}

	if artOpts.embedded && !track.IsStream() {
		img, err := albumart.ExtractEmbedded(filepath.Join(root, filepath.FromSlash(track.File)), cfg.Art.MaxImageSize)
		if err == nil {
			fmt.Printf("embedded %dx%d (%s)\n", img.Width, img.Height, humanize.Bytes(uint64(len(img.Data))))
			return nil
		}
		logger.Debug("no embedded artwork", "file", track.File, "error", err)
	}

	return errNoArt
}

func printArt(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
	return nil
}
