package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mpdnotify/internal/adapter/output"
	"github.com/jmylchreest/mpdnotify/internal/albumart"
)

var nowOpts struct {
	format   string
	field    string
	template string
	noColor  bool
}

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print the current track",
	Long: `Print the current track, its album and the artwork the daemon would use.

Examples:
  # Human-readable
  mpdnotify now

  # Status bar line
  mpdnotify now --format line

  # A single field
  mpdnotify now --field artist

  # Custom template
  mpdnotify now --template '{{.Artist}} - {{.Title}} [{{.Elapsed}}/{{.Duration}}]'

  # Machine-readable
  mpdnotify now --format json`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	nowCmd.Flags().StringVarP(&nowOpts.format, "format", "f", "plain",
		"Output format: plain, line, json, yaml")
	nowCmd.Flags().StringVar(&nowOpts.field, "field", "",
		"Print a single field: title, artist, album, file, art, state, body")
	nowCmd.Flags().StringVar(&nowOpts.template, "template", "",
		"Go template for plain/line output")
	nowCmd.Flags().BoolVar(&nowOpts.noColor, "no-color", false,
		"Disable styled output")
}

func runNow(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormatType(nowOpts.format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, track, err := currentPlayback(ctx)
	if err != nil {
		return err
	}

	art := ""
	if track != nil {
		if root, err := cfg.ResolveMusicRoot(); err == nil {
			if dir, ok := albumart.AlbumDir(root, *track); ok {
				art, _ = albumart.NewResolver(cfg.Art.PreferredNames, logger).Resolve(dir)
			}
		} else {
			logger.Debug("music directory unavailable, skipping artwork", "error", err)
		}
	}

	np := output.NewNowPlaying(status, track, art)

	if nowOpts.field != "" {
		_, err := fmt.Fprintln(os.Stdout, output.FormatField(np, nowOpts.field))
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = nowOpts.template
	opts.Color = !nowOpts.noColor
	return output.NewFormatter(format, opts).Format(os.Stdout, np)
}
