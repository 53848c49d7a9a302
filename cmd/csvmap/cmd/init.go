/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/config"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a csvmap configuration file",
		Long: `Create a csvmap configuration file with a generated API key.

This command will:
- Write a default configuration to the config path
- Generate a secure API key for the REST API

Schema definitions are added to the "schemas" section of the file afterwards.

Examples:
  csvmap init
  csvmap init --config ./csvmap.yaml --data-dir ./data --print-keys`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := configPathFlag(cmd)
			dataDir, _ := cmd.Flags().GetString("data-dir")
			force, _ := cmd.Flags().GetBool("force")
			printKeys, _ := cmd.Flags().GetBool("print-keys")

			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := initializeConfig(configPath, dataDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Configuration created at %s\n", configPath)
			fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
			if printKeys {
				fmt.Fprintf(out, "API key: %s\n", cfg.Security.APIKey)
			}
			fmt.Fprintf(out, "\nYou can now start the server with:\n  csvmap up --config %s\n", configPath)
			return nil
		},
	}

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-keys", false, "Print the generated API key to the console")
	return initCmd
}

// initializeConfig writes a fresh configuration with a generated API key
func initializeConfig(configPath, dataDir string) (*config.Config, error) {
	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap config: %w", err)
	}
	return cfg, nil
}
