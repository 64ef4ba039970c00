// Package main is the entry point for the mpdnotifyd notification daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/mpdnotify/internal/albumart"
	"github.com/jmylchreest/mpdnotify/internal/config"
	"github.com/jmylchreest/mpdnotify/internal/daemon"
	"github.com/jmylchreest/mpdnotify/internal/mpd"
	"github.com/jmylchreest/mpdnotify/internal/notify"
)

var (
	// Build-time variables
	version = "dev"
)

type options struct {
	configPath string
	server     string
	musicDir   string
	backend    string
	verbose    bool
	version    bool
}

func main() {
	var opts options
	flag.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: ~/.config/mpdnotify/config.toml)")
	flag.StringVarP(&opts.server, "server", "s", "", "MPD address, host:port or socket path (overrides config and MPD_HOST)")
	flag.StringVarP(&opts.musicDir, "music-dir", "m", "", "Local copy of the MPD music directory (default: XDG music dir)")
	flag.StringVar(&opts.backend, "backend", "", "Notification backend: auto, dbus, beeep")
	flag.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flag.BoolVar(&opts.version, "version", false, "Show version and exit")
	flag.Parse()

	if opts.version {
		fmt.Println("mpdnotifyd version", version)
		os.Exit(0)
	}

	if err := run(opts); err != nil {
		slog.Error("mpdnotifyd exiting", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Bootstrap logger until the configured level is known
	logger := newLogger(slog.LevelInfo, opts.verbose)

	if envPath, err := config.EnvPath(); err == nil {
		if err := config.LoadEnvFile(envPath); err != nil {
			logger.Warn("failed to load env file", "path", envPath, "error", err)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLogLevel(cfg.Log.Level)
	logger = newLogger(level, opts.verbose)

	musicRoot, err := cfg.ResolveMusicRoot()
	if err != nil {
		return err
	}

	notifier, err := notify.New(cfg.Notification.Backend, logger)
	if err != nil {
		return err
	}

	resolver := albumart.NewResolver(cfg.Art.PreferredNames, logger)
	dispatcher := notify.NewDispatcher(notifier, resolver, musicRoot,
		notify.OptionsFromConfig(cfg.Notification), logger)
	dispatcher.SetEmbeddedArt(notify.EmbeddedArt{
		Enabled: cfg.Art.Embedded,
		MaxSize: cfg.Art.MaxImageSize,
	})

	sessionOpts := mpd.OptionsFromConfig(cfg.Server)
	connect := func(ctx context.Context) (mpd.Session, error) {
		return mpd.Connect(ctx, sessionOpts, logger)
	}
	loop := daemon.NewLoop(connect, dispatcher, daemon.LoopOptions{
		Backoff:         daemon.BackoffFromConfig(cfg.Reconnect),
		NotifyOnConnect: cfg.Notification.NotifyOnConnect,
	}, logger)

	watcher, err := daemon.NewConfigWatcher(opts.configPath, logger)
	if err != nil {
		return err
	}
	watcher.SetReloadCallback(func(newConfig *config.Config) {
		dispatcher.UpdateOptions(notify.OptionsFromConfig(newConfig.Notification))
		dispatcher.SetEmbeddedArt(notify.EmbeddedArt{
			Enabled: newConfig.Art.Embedded,
			MaxSize: newConfig.Art.MaxImageSize,
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting mpdnotifyd",
		"version", version,
		"server", cfg.Server.Address,
		"music_dir", musicRoot,
		"backend", notifier.Name(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return watcher.Run(gctx, cfg)
	})

	// A loop error cancels gctx, which stops the watcher
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("mpdnotifyd stopped")
	return nil
}

// applyFlags overlays command line flags onto the loaded config.
func applyFlags(cfg *config.Config, opts options) {
	if opts.server != "" {
		cfg.Server.Address = opts.server
	}
	if opts.musicDir != "" {
		cfg.Music.Root = opts.musicDir
	}
	if opts.backend != "" {
		cfg.Notification.Backend = opts.backend
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
}

// newLogger builds the stderr text logger and installs it as the default.
func newLogger(level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
