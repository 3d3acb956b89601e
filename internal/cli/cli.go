// Package cli provides the command-line interface for installsync.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/klauern/installsync/internal/config"
	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

type configKey struct{}

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "installsync",
		Usage:   "Mirror package content into project trees and manage build steps",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging, per-file lines)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file",
				Value: config.FilePath(),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.LoadFromPath(cmd.String("config"))
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			configureColors(cmd, cfg)
			if err := configureLogging(cmd, cfg); err != nil {
				return ctx, err
			}
			return context.WithValue(ctx, configKey{}, cfg), nil
		},
		Commands: []*cli.Command{
			versionCommand(),
			configCommand(),
			addCommand(),
			removeCommand(),
			treeCommand(),
			stepCommand(),
			copyStepCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configFrom returns the configuration loaded in Before, or defaults.
func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// configureColors sets up color output based on config and CLI flags.
func configureColors(cmd *cli.Command, cfg *config.Config) {
	ui.ApplyMode(cfg.Output.Color)
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command, cfg *config.Config) error {
	opts := logging.DefaultOptions()
	opts.JSON = cfg.Logging.JSON

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

// verbose reports whether per-item output was requested on the command line
// or in the config file.
func verbose(ctx context.Context, cmd *cli.Command) bool {
	return cmd.Bool("verbose") || cmd.Bool("debug") || configFrom(ctx).Output.Verbose
}
