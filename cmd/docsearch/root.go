package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/canonical/docsearch/internal/config"
	"github.com/canonical/docsearch/internal/logging"
)

var (
	configPath string
	logLevel   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docsearch",
		Short:         "Build documentation sites with a client-side search index",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSearchCmd())
	return root
}

// loadConfig reads the config file and builds the logger it asks for.
// The --log-level flag wins over the file.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logging.BuildLogger(cfg.LogLevel), nil
}
