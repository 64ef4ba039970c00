package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mpdnotify/internal/albumart"
	"github.com/jmylchreest/mpdnotify/internal/notify"
)

var notifyOpts struct {
	backend string
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a notification for the current track",
	Long: `Send one notification for the current track, exactly as the daemon
would on a track change. Useful for key bindings and for testing the
notification setup.`,
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().StringVar(&notifyOpts.backend, "backend", "",
		"Notification backend: auto, dbus, beeep (default from config)")
}

func runNotify(cmd *cobra.Command, args []string) error {
	backend := cfg.Notification.Backend
	if notifyOpts.backend != "" {
		backend = notifyOpts.backend
	}

	notifier, err := notify.New(backend, logger)
	if err != nil {
		return err
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

	dispatcher := notify.NewDispatcher(notifier,
		albumart.NewResolver(cfg.Art.PreferredNames, logger),
		root, notify.OptionsFromConfig(cfg.Notification), logger)
	dispatcher.SetEmbeddedArt(notify.EmbeddedArt{
		Enabled: cfg.Art.Embedded,
		MaxSize: cfg.Art.MaxImageSize,
	})

	return dispatcher.Dispatch(ctx, *track)
}
