package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/urfave/cli/v3"

	"github.com/klauern/installsync/internal/hierarchy"
	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/progress"
	"github.com/klauern/installsync/internal/scan"
	"github.com/klauern/installsync/internal/sync"
	"github.com/klauern/installsync/internal/ui"
	"github.com/klauern/installsync/internal/util"
)

func syncFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "File name glob to mirror (default from config, \"*\")",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"d"},
			Usage:   "Preview changes without modifying the destination",
		},
		&cli.BoolFlag{
			Name:  "fold-case",
			Usage: "Match destination names case-insensitively",
		},
		&cli.BoolFlag{
			Name:  "no-progress",
			Usage: "Hide the progress indicator",
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Mirror source files into a destination tree",
		UsageText: "installsync add [options] <source-dir> <dest-dir>",
		Description: `Attach every file below <source-dir> that matches the filter to the
   same relative location below <dest-dir>. Missing folders are created.
   Files that already exist in the destination are never overwritten.

   Examples:
     installsync add ./content ./MyProject
     installsync add --filter "*.config" --dry-run ./content ./MyProject`,
		Flags: syncFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSync(ctx, cmd, sync.OperationAdd)
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove mirrored source files from a destination tree",
		UsageText: "installsync remove [options] <source-dir> <dest-dir>",
		Description: `Delete the copies of the files below <source-dir> from <dest-dir>.
   A copy whose size differs from the source is assumed to be modified and
   is kept. Folders left empty are removed, up to but excluding <dest-dir>.

   Examples:
     installsync remove ./content ./MyProject
     installsync remove --dry-run ./content ./MyProject`,
		Flags: syncFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSync(ctx, cmd, sync.OperationRemove)
		},
	}
}

func runSync(ctx context.Context, cmd *cli.Command, op sync.Operation) error {
	args := cmd.Args()
	if args.Len() != 2 {
		return fmt.Errorf("%s requires exactly 2 arguments: <source-dir> <dest-dir>", op)
	}

	cfg := configFrom(ctx)
	filter := cfg.GetFilter()
	if cmd.IsSet("filter") {
		filter = cmd.String("filter")
	}
	foldCase := cfg.Sync.FoldCase || cmd.Bool("fold-case")

	if info, err := os.Stat(util.ExpandPath(args.Get(0), "")); err != nil {
		return fmt.Errorf("source directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("source %q is not a directory", args.Get(0))
	}

	srcFS, srcDir, err := openDir(args.Get(0))
	if err != nil {
		return err
	}
	destFS, destDir, err := openDir(args.Get(1))
	if err != nil {
		return err
	}

	tree, err := hierarchy.NewTree(destFS, destDir, hierarchy.WithFoldCase(foldCase))
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}

	logging.Info("starting "+string(op),
		logging.Path(args.Get(0)),
		slog.String("dest", args.Get(1)),
		slog.String("filter", filter),
	)

	bar := progress.New(progress.Options{
		Max:         -1,
		Description: string(op),
		Disabled:    cmd.Bool("no-progress") || !cfg.Output.Progress || cmd.Bool("debug"),
	})

	opts := sync.Options{
		DryRun: cmd.Bool("dry-run"),
		Progress: func(ev sync.ProgressEvent) error {
			if ev.Type == sync.ProgressEventFile {
				return bar.Add(1)
			}
			return nil
		},
	}

	src := scan.Source{FS: srcFS, Dir: srcDir, Filter: filter}
	syncer := sync.New()

	var result *sync.Result
	if op == sync.OperationAdd {
		result, err = syncer.Add(ctx, tree.Root(), src, opts)
	} else {
		result, err = syncer.Remove(ctx, tree.Root(), src, opts)
	}
	if finishErr := bar.Finish(); finishErr != nil {
		logging.Debug("progress finish failed", logging.Err(finishErr))
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}

	printResult(result, verbose(ctx, cmd))

	if !result.Success() {
		return errors.New("some files could not be processed")
	}
	return nil
}

func printResult(result *sync.Result, perFile bool) {
	if perFile {
		for _, f := range result.Files {
			line := f.RelPath
			if f.Message != "" {
				line += " (" + f.Message + ")"
			}
			fmt.Println(ui.StatusFor(string(f.Action), line))
		}
		for _, dir := range result.Pruned {
			fmt.Println(ui.StatusFor(string(sync.ActionDeleted), dir+string(filepath.Separator)))
		}
	}
	fmt.Print(result.Summary())
}

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Show a destination tree",
		UsageText: "installsync tree <dir>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("tree requires exactly 1 argument: <dir>")
			}
			if _, err := os.Stat(util.ExpandPath(cmd.Args().First(), "")); err != nil {
				return err
			}
			fs, dir, err := openDir(cmd.Args().First())
			if err != nil {
				return err
			}
			tree, err := hierarchy.NewTree(fs, dir)
			if err != nil {
				return err
			}
			out, err := hierarchy.Render(tree.Root())
			if err != nil {
				return fmt.Errorf("render tree: %w", err)
			}
			fmt.Println(out)
			return nil
		},
	}
}

// openDir returns an OS-backed filesystem rooted at the parent of path along
// with the directory's name inside it, so the directory keeps its own name
// when it becomes a tree root.
func openDir(path string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(util.ExpandPath(path, ""))
	if err != nil {
		return nil, "", fmt.Errorf("resolve %q: %w", path, err)
	}
	parent, name := filepath.Split(abs)
	if name == "" {
		return osfs.New(abs), ".", nil
	}
	return osfs.New(parent), name, nil
}
