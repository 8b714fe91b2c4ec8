/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/config"
	"github.com/ssargent/stgyboard/pkg/printer"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Long: `Write a configuration file with a freshly generated API key.

Examples:
  stgy init
  stgy init --config ./stgy.yaml --data-dir ./data --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		if config.ConfigExists(configPath) && !force {
			printer.Warning(out, "Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		written, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Failed to write configuration", err.Error(), nil)
		}

		printer.Success(out, "Configuration written\n")
		printer.Field(out, "Config", configPath)
		printer.Field(out, "Data directory", written.DataDir)
		printer.Field(out, "API key", written.Security.APIKey)
		printer.Info(out, "\nStart the short-link service with:\n  stgy serve --config %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
