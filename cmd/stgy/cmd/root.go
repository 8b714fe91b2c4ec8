/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/config"
	"github.com/ssargent/stgyboard/pkg/di"
	"github.com/ssargent/stgyboard/pkg/logging"
	"github.com/ssargent/stgyboard/pkg/stgy"
)

var (
	container *di.Container
	cfg       *config.Config
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stgy",
	Short: "stgy - strategy board code tool",
	Long: `stgy encodes, decodes and inspects [stgy:a...] strategy board codes,
keeps boards in a local store and serves them as short links.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command with ctx. Errors have already been printed
// by the failing command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", config.GetDefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for stored boards (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// loadSettings reads the config file when present, applies flag overrides
// and builds the logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	if container == nil {
		container = di.NewContainer()
	}

	configPath, _ := cmd.Flags().GetString("config")
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	logger, err := logging.New(cfg.Logging.Level, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	container.SetLogger(logger)
	return nil
}

func newCodec() *stgy.Codec {
	return stgy.NewCodec(stgy.WithLogger(container.Logger()))
}
