// Package main provides the CLI entrypoint for mpdnotify.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mpdnotify/internal/config"
	"github.com/jmylchreest/mpdnotify/internal/model"
	"github.com/jmylchreest/mpdnotify/internal/mpd"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		server     string
		musicDir   string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mpdnotify",
	Short: "Desktop notifications for MPD",
	Long: `mpdnotify inspects what MPD is playing and sends the same desktop
notification that the mpdnotifyd daemon sends on every track change.

Running mpdnotify without a subcommand prints the current track.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		if envPath, err := config.EnvPath(); err == nil {
			if err := config.LoadEnvFile(envPath); err != nil {
				logger.Warn("failed to load env file", "path", envPath, "error", err)
			}
		}

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.server != "" {
			cfg.Server.Address = globalOpts.server
		}
		if globalOpts.musicDir != "" {
			cfg.Music.Root = globalOpts.musicDir
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNow(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/mpdnotify/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.server, "server", "s", "",
		"MPD address, host:port or socket path")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.musicDir, "music-dir", "m", "",
		"Local copy of the MPD music directory")

	rootCmd.Flags().AddFlagSet(nowCmd.Flags())
}

func main() {
	Execute()
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// currentPlayback opens a session, reads the status and current track once,
// and closes it.
func currentPlayback(ctx context.Context) (model.Status, *model.Track, error) {
	session, err := mpd.Connect(ctx, mpd.OptionsFromConfig(cfg.Server), logger)
	if err != nil {
		return model.Status{}, nil, err
	}
	defer func() { _ = session.Close() }()

	status, err := session.Status(ctx)
	if err != nil {
		return model.Status{}, nil, err
	}

	track, ok, err := session.CurrentTrack(ctx)
	if err != nil {
		return status, nil, err
	}
	if !ok {
		return status, nil, nil
	}
	return status, &track, nil
}
