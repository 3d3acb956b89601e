package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/installsync/internal/buildstep"
	"github.com/klauern/installsync/internal/copystep"
	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/project"
	"github.com/klauern/installsync/internal/ui"
	"github.com/klauern/installsync/internal/util"
)

func projectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "project",
			Aliases:  []string{"p"},
			Usage:    "Project file (.yaml, .yml or .toml)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "slot",
			Aliases: []string{"s"},
			Usage:   "Build event slot: pre or post (default from config)",
		},
	}
}

func stepCommand() *cli.Command {
	return &cli.Command{
		Name:  "step",
		Usage: "Manage pre/post build event commands of a project",
		Commands: []*cli.Command{
			stepAddCommand(),
			stepRemoveCommand(),
			stepShowCommand(),
		},
	}
}

func stepAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Append a command to a build event unless already present",
		UsageText: "installsync step add --project <file> [--slot pre|post] <command>",
		Flags: append(projectFlags(), &cli.BoolFlag{
			Name:  "raw",
			Usage: "Append the command verbatim without a trailing CRLF",
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			command, err := stepArgument(cmd)
			if err != nil {
				return err
			}
			return editProject(ctx, cmd, command, buildstep.AddStep)
		},
	}
}

func stepRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove every occurrence of a command from a build event",
		UsageText: "installsync step remove --project <file> [--slot pre|post] <command>",
		Flags: append(projectFlags(), &cli.BoolFlag{
			Name:  "raw",
			Usage: "Match the command verbatim without a trailing CRLF",
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			command, err := stepArgument(cmd)
			if err != nil {
				return err
			}
			return editProject(ctx, cmd, command, buildstep.RemoveStep)
		},
	}
}

func stepShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the build event commands of a project",
		UsageText: "installsync step show --project <file> [--slot pre|post]",
		Flags:     projectFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := project.Open(util.ExpandPath(cmd.String("project"), ""))
			if err != nil {
				return err
			}

			fmt.Printf("# %s (%s)\n", proj.Name(), proj.Path())
			slots := buildstep.AllSlots()
			if cmd.IsSet("slot") {
				slot, err := resolveSlot(ctx, cmd)
				if err != nil {
					return err
				}
				slots = []buildstep.Slot{slot}
			}

			for _, slot := range slots {
				text, err := buildstep.Steps(proj, slot)
				if err != nil {
					fmt.Println(ui.StatusWarning(err.Error()))
					continue
				}
				fmt.Printf("%s:\n", slot.Property())
				for _, line := range strings.Split(strings.TrimRight(text, "\r\n"), "\n") {
					if line = strings.TrimRight(line, "\r"); line != "" {
						fmt.Printf("  %s\n", line)
					}
				}
			}
			return nil
		},
	}
}

func copyStepCommand() *cli.Command {
	return &cli.Command{
		Name:      "copystep",
		Usage:     "Generate the build command that copies package files to the output",
		UsageText: "installsync copystep --install-root <dir> [options]",
		Description: `Print the commands that create the target folder under $(TargetDir)
   and recursively copy <install-root>\<source> into it. An install root
   under the solution root is written relative to $(SolutionDir).

   With --project the commands are also added to (or, with --remove,
   removed from) the project's build event.

   Examples:
     installsync copystep --install-root C:\sln\packages\Foo.1.0 \
       --solution-root C:\sln --source NativeBinaries --target NativeBinaries`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "install-root",
				Usage:    "Directory the package was installed to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "solution-root",
				Usage: "Solution directory (default from config)",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Subpath below the install root to copy from",
			},
			&cli.StringFlag{
				Name:  "target",
				Usage: "Subpath below the build output to copy to (default from config)",
			},
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "Project file to install the command into",
			},
			&cli.StringFlag{
				Name:    "slot",
				Aliases: []string{"s"},
				Usage:   "Build event slot: pre or post (default from config)",
			},
			&cli.BoolFlag{
				Name:  "remove",
				Usage: "Remove the generated command from the project instead of adding it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			solutionRoot := cfg.Build.SolutionRoot
			if cmd.IsSet("solution-root") {
				solutionRoot = cmd.String("solution-root")
			}
			target := cfg.Build.TargetSubPath
			if cmd.IsSet("target") {
				target = cmd.String("target")
			}

			command := copystep.Generate(cmd.String("install-root"), solutionRoot, cmd.String("source"), target)
			fmt.Print(command)

			if !cmd.IsSet("project") {
				return nil
			}
			edit := buildstep.AddStep
			if cmd.Bool("remove") {
				edit = buildstep.RemoveStep
			}
			return editProject(ctx, cmd, command, edit)
		},
	}
}

func stepArgument(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", errors.New("exactly 1 argument required: <command>")
	}
	command := cmd.Args().First()
	if command == "" {
		return "", errors.New("command must not be empty")
	}
	if !cmd.Bool("raw") && !strings.HasSuffix(command, copystep.LineEnding) {
		command += copystep.LineEnding
	}
	return command, nil
}

func resolveSlot(ctx context.Context, cmd *cli.Command) (buildstep.Slot, error) {
	if !cmd.IsSet("slot") {
		return configFrom(ctx).GetSlot(), nil
	}
	return buildstep.ParseSlot(cmd.String("slot"))
}

type editFunc func(buildstep.Target, buildstep.Slot, string) error

// editProject applies edit to the project named by --project and saves it.
// A slot the project does not expose is reported and otherwise ignored.
func editProject(ctx context.Context, cmd *cli.Command, command string, edit editFunc) error {
	slot, err := resolveSlot(ctx, cmd)
	if err != nil {
		return err
	}

	path := util.ExpandPath(cmd.String("project"), "")
	proj, err := project.Open(path)
	if err != nil {
		return err
	}

	if err := edit(proj, slot, command); err != nil {
		if errors.Is(err, buildstep.ErrSlotUnavailable) {
			logging.Warn("build step not applied", logging.Path(path), logging.Slot(slot.String()), logging.Err(err))
			fmt.Println(ui.StatusWarning(err.Error()))
			return nil
		}
		return err
	}

	if !proj.Dirty() {
		fmt.Println(ui.StatusSkipped(fmt.Sprintf("%s unchanged", slot.Property())))
		return nil
	}
	if err := proj.Save(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	logging.Info("project updated", logging.Path(proj.Path()), logging.Slot(slot.String()))
	fmt.Println(ui.StatusSuccess(fmt.Sprintf("updated %s in %s", slot.Property(), proj.Path())))
	return nil
}
