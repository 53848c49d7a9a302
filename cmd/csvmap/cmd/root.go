/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/api"
	"github.com/ssargent/csvmap/pkg/config"
	"github.com/ssargent/csvmap/pkg/di"
	"github.com/ssargent/csvmap/pkg/logging"
	"github.com/ssargent/csvmap/pkg/schema"
	"gopkg.in/yaml.v3"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

type runtimeKey struct{}

// runtime is the resolved configuration shared by a command invocation
type runtime struct {
	config     *config.Config
	configPath string
	logger     *slog.Logger
}

// newRootCmd builds the command tree. A fresh tree is built for every
// execution so flag values never leak between runs.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "csvmap",
		Short: "csvmap - typed records to delimited text and back",
		Long: `csvmap maps records of declared schemas to a delimited text table and
parses such tables back into typed records. Tables can be archived in a local
record store and served over a REST API.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadRuntime,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: OS-specific location)")
	flags.StringP("data-dir", "d", "", "Data directory for the record archive")
	flags.String("separator", "", "Field separator (overrides the config file)")
	flags.String("newline", "", "Line terminator: lf, crlf or platform")
	flags.StringArray("schema-file", nil, "YAML file with additional schema definitions (repeatable)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newInitCmd(),
		newUpCmd(),
		newServeCmd(),
		newSchemasCmd(),
		newSerializeCmd(),
		newDeserializeCmd(),
		newImportCmd(),
		newExportCmd(),
		newGetCmd(),
		newDeleteCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRuntime resolves the configuration for commands that need an existing
// (or default) configuration and stores it in the command context
func loadRuntime(cmd *cobra.Command, _ []string) error {
	configPath, explicit := configPathFlag(cmd)

	cfg := config.DefaultConfig()
	switch {
	case config.ConfigExists(configPath):
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	case explicit:
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	return setRuntime(cmd, cfg, configPath)
}

// setRuntime applies flag overrides, validates the result and builds the logger
func setRuntime(cmd *cobra.Command, cfg *config.Config, configPath string) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, runtimeKey{}, &runtime{
		config:     cfg,
		configPath: configPath,
		logger:     logger,
	}))
	return nil
}

func configPathFlag(cmd *cobra.Command) (string, bool) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		return config.GetDefaultConfigPath(), false
	}
	return configPath, true
}

// applyFlags overrides configuration values with explicitly set flags
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("separator") {
		cfg.Codec.Separator, _ = flags.GetString("separator")
	}
	if flags.Changed("newline") {
		cfg.Codec.Newline, _ = flags.GetString("newline")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}

	files, _ := flags.GetStringArray("schema-file")
	for _, path := range files {
		defs, err := loadSchemaFile(path)
		if err != nil {
			return err
		}
		cfg.Schemas = append(cfg.Schemas, defs...)
	}

	return cfg.Validate()
}

// loadSchemaFile reads a YAML list of schema definitions
func loadSchemaFile(path string) ([]schema.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var defs []schema.Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return defs, nil
}

func runtimeFrom(cmd *cobra.Command) (*runtime, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return rt, nil
}

// openService builds a record service from the resolved configuration. With
// withArchive the archive in the data directory is opened too; the returned
// close function releases it. metrics may be nil.
func openService(cmd *cobra.Command, withArchive bool, metrics *api.Metrics) (*api.RecordService, func() error, error) {
	if container == nil {
		return nil, nil, errors.New("dependency container not initialized")
	}
	rt, err := runtimeFrom(cmd)
	if err != nil {
		return nil, nil, err
	}

	opts, err := rt.config.CodecOptions()
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() error { return nil }
	var archive api.IArchive
	if withArchive {
		a, err := container.GetArchiveOpener()(rt.config.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open archive: %w", err)
		}
		archive = a
		closeFn = a.Close
	}

	service, err := container.GetRecordServiceFactory().CreateRecordService(archive, api.ServiceConfig{
		Schemas: rt.config.Schemas,
		Codec:   opts,
		Metrics: metrics,
		Logger:  rt.logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return service, closeFn, nil
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// closeInto runs closeFn and stores its error in err unless err is already set
func closeInto(closeFn func() error, err *error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close archive: %w", cerr)
	}
}

// readInput reads a file, or stdin when path is empty or "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if isStdio(path) {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// readTable reads a text table from stdin, dropping a single trailing line
// terminator. Table files are read exactly by the record service.
func readTable(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	text := string(data)
	if trimmed, ok := strings.CutSuffix(text, "\r\n"); ok {
		return trimmed, nil
	}
	return strings.TrimSuffix(text, "\n"), nil
}

// writeOutput writes to a file, or stdout when path is empty or "-". Output
// to stdout is terminated with a newline.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if isStdio(path) {
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 {
			_, err := fmt.Fprintln(out)
			return err
		}
		return nil
	}
	return os.WriteFile(path, data, 0600)
}
