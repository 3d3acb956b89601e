package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/installsync/internal/config"
	"github.com/klauern/installsync/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display or initialize configuration",
		Commands: []*cli.Command{
			configShowCommand(),
			configInitCommand(),
			configPathCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return showConfig(ctx, cmd)
		},
	}
}

func configShowCommand() *cli.Command {
	return &cli.Command{
		Name:   "show",
		Usage:  "Print the effective configuration (file, defaults and environment)",
		Action: showConfig,
	}
}

func showConfig(ctx context.Context, cmd *cli.Command) error {
	data, err := yaml.Marshal(configFrom(ctx))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	path := cmd.Root().String("config")
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("# Loaded from: %s\n", path)
	} else {
		fmt.Printf("# Defaults (no config file at %s)\n", path)
	}
	fmt.Print(string(data))
	return nil
}

func configInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing config file",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Root().String("config")
			if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}
			if err := config.Default().SaveToPath(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Println(ui.StatusSuccess("Created config file: " + path))
			return nil
		},
	}
}

func configPathCommand() *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "Print the config file path",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Println(cmd.Root().String("config"))
			return nil
		},
	}
}
