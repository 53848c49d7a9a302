/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/api"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the csvmap REST API server for the schemas of the loaded configuration.

Requests must carry the configured API key in the X-API-Key header. Prometheus
metrics are exposed on /metrics.

Examples:
  csvmap serve --config ./csvmap.yaml
  csvmap serve --api-key=mysecretkey --port=9000 --schema-file ./schemas.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}

	addServerFlags(serveCmd)
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides the config file)")
	return serveCmd
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
}

// runServer starts the API server and blocks until it stops or the process
// receives SIGINT or SIGTERM
func runServer(cmd *cobra.Command) error {
	rt, err := runtimeFrom(cmd)
	if err != nil {
		return err
	}
	cfg := rt.config

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("bind") {
		cfg.Bind, _ = flags.GetString("bind")
	}
	if flags.Lookup("api-key") != nil && flags.Changed("api-key") {
		cfg.Security.APIKey, _ = flags.GetString("api-key")
	}
	if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
		return errors.New("no API key configured: run 'csvmap init' or pass --api-key")
	}

	metrics := api.NewMetrics(prometheus.NewRegistry())
	service, closeArchive, err := openService(cmd, true, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeArchive(); err != nil {
			rt.logger.Error("failed to close archive", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🚀 Starting csvmap server on %s:%d\n", cfg.Bind, cfg.Port)
	fmt.Fprintf(out, "📁 Data directory: %s\n", cfg.DataDir)
	fmt.Fprintf(out, "📋 Schemas: %d\n", len(service.Schemas()))

	starter := container.GetServerFactory().CreateServerStarter()
	if err := starter.StartServer(ctx, service, api.ServerConfig{
		Bind:    cfg.Bind,
		Port:    cfg.Port,
		APIKey:  cfg.Security.APIKey,
		Metrics: metrics,
		Logger:  rt.logger,
	}); err != nil {
		return fmt.Errorf("error starting server: %w", err)
	}
	return nil
}
