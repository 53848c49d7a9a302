/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/config"
)

func newUpCmd() *cobra.Command {
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Bootstrap and start the csvmap server",
		Long: `Bootstrap csvmap by creating a configuration with an API key if it doesn't
exist, then start the REST API server. This is the recommended way to get the
server running.

The command will:
- Create a configuration file with a secure API key if missing
- Open the record archive in the data directory
- Start the REST API server

Examples:
  csvmap up
  csvmap up --data-dir ./mydata --port 9000
  csvmap up --config ./custom-config.yaml --print-keys`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := configPathFlag(cmd)
			cfg, err := loadOrBootstrap(cmd, configPath)
			if err != nil {
				return err
			}
			return setRuntime(cmd, cfg, configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}

	addServerFlags(upCmd)
	upCmd.Flags().Bool("print-keys", false, "Print generated API keys to console")
	return upCmd
}

// loadOrBootstrap loads the configuration at configPath, creating it first
// when it does not exist
func loadOrBootstrap(cmd *cobra.Command, configPath string) (*config.Config, error) {
	out := cmd.OutOrStdout()

	if config.ConfigExists(configPath) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("error loading existing config: %w", err)
		}
		fmt.Fprintf(out, "✅ Loaded existing configuration from %s\n", configPath)
		return cfg, nil
	}

	fmt.Fprintf(out, "🔧 First run detected. Bootstrapping csvmap...\n")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	cfg, err := initializeConfig(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✅ Configuration created at %s\n", configPath)

	if printKeys, _ := cmd.Flags().GetBool("print-keys"); printKeys {
		fmt.Fprintf(out, "\n🔑 API Key: %s\n", cfg.Security.APIKey)
		fmt.Fprintf(out, "\n⚠️  Store this key securely! It is also saved in %s\n", configPath)
	}
	return cfg, nil
}
