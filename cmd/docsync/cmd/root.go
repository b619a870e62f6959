// Package cmd provides the CLI commands for docsync.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/config"
	logpkg "github.com/kailas-cloud/docsync/internal/logger"
	"github.com/kailas-cloud/docsync/internal/version"
)

// globalOpts are the persistent flags shared by every subcommand.
type globalOpts struct {
	env        string
	configPath string
	logLevel   string
}

// NewRootCmd creates the root command for the docsync CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOpts{}

	cmd := &cobra.Command{
		Use:   "docsync",
		Short: "Keep a remote document index in step with local entities",
		Long: `docsync forwards entity lifecycle events (insert, update, delete) to a
remote indexing API and keeps the entity-to-document mapping locally.

Run 'docsync serve' to accept lifecycle webhooks over HTTP, or drive single
events and backfills from the command line.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("docsync version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"Environment: selects config/<env>.yaml and the logger format (local, dev, docker, prod)")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Explicit config file path (overrides --env lookup)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newMappingsCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background()) //nolint:wrapcheck // cobra prints the error
}

// load reads configuration and builds the logger.
func (o *globalOpts) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := logpkg.NewLogger(o.env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
