package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/mpdnotify/internal/config"
)

var configOpts struct {
	path bool
	init bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, the env file
and MPD_HOST/MPD_PORT have been applied.

Use --init to write the defaults to the config file if it does not exist.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.path, "path", false,
		"Print only the config file path")
	configCmd.Flags().BoolVar(&configOpts.init, "init", false,
		"Write the current configuration to the config file if missing")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := globalOpts.configPath
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return err
		}
	}

	if configOpts.path {
		fmt.Println(path)
		return nil
	}

	if configOpts.init {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := initialConfig().Save(path); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}

	data, err := toml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// initialConfig returns the config written by --init: defaults plus the
// command line overrides. Values from the environment, such as a password
// in MPD_HOST, are left out.
func initialConfig() *config.Config {
	c := config.DefaultConfig()
	if globalOpts.server != "" {
		c.Server.Address = globalOpts.server
	}
	if globalOpts.musicDir != "" {
		c.Music.Root = globalOpts.musicDir
	}
	return c
}
