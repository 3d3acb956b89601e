package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/klauern/installsync/internal/hierarchy"
	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/pathmap"
	"github.com/klauern/installsync/internal/scan"
)

// Options configures an Add or Remove run.
type Options struct {
	// DryRun reports what would change without touching the destination.
	DryRun bool

	// Progress receives progress events when set.
	Progress ProgressCallback
}

// Syncer mirrors source files into a destination hierarchy.
type Syncer interface {
	// Add attaches every matching source file below destRoot.
	Add(ctx context.Context, destRoot hierarchy.Node, src scan.Source, opts Options) (*Result, error)
	// Remove deletes mirrored copies of every matching source file.
	Remove(ctx context.Context, destRoot hierarchy.Node, src scan.Source, opts Options) (*Result, error)
}

// Synchronizer implements the Syncer interface.
type Synchronizer struct{}

// New creates a new Synchronizer.
func New() *Synchronizer {
	return &Synchronizer{}
}

// Add mirrors src into destRoot.
//
// The returned error is non-nil only when the run had to stop: a scanned path
// outside the source directory, a bad filter, or cancellation. Per-file host
// failures are reported through the Result.
func (s *Synchronizer) Add(ctx context.Context, destRoot hierarchy.Node, src scan.Source, opts Options) (*Result, error) {
	defer logging.Timer(string(OperationAdd))()
	return s.run(ctx, OperationAdd, destRoot, src, opts, s.addFile)
}

// Remove deletes the copies of src found in destRoot and prunes the folders
// that end up empty. destRoot itself is never deleted.
func (s *Synchronizer) Remove(ctx context.Context, destRoot hierarchy.Node, src scan.Source, opts Options) (*Result, error) {
	defer logging.Timer(string(OperationRemove))()
	return s.run(ctx, OperationRemove, destRoot, src, opts, s.removeFile)
}

type fileFunc func(destRoot hierarchy.Node, entry scan.SourceEntry, opts Options, result *Result) FileResult

func (s *Synchronizer) run(
	ctx context.Context,
	op Operation,
	destRoot hierarchy.Node,
	src scan.Source,
	opts Options,
	handle fileFunc,
) (*Result, error) {
	logging.Debug("starting run",
		logging.Operation(string(op)),
		logging.Path(src.Dir),
		slog.String("filter", src.Filter),
		slog.Bool("dry_run", opts.DryRun),
	)

	result := &Result{
		Operation: op,
		SourceDir: src.Dir,
		Files:     make([]FileResult, 0),
		DryRun:    opts.DryRun,
	}

	if err := opts.report(ProgressEvent{Type: ProgressEventStart, Operation: op}); err != nil {
		return result, fmt.Errorf("%s cancelled: %w", op, err)
	}

	for entry, err := range src.Entries() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s cancelled: %w", op, ctxErr)
		}

		var fr FileResult
		switch {
		case errors.Is(err, pathmap.ErrInvalidPath), errors.Is(err, scan.ErrBadPattern):
			logging.Error("aborting run", logging.Operation(string(op)), logging.Err(err))
			return result, err
		case err != nil:
			fr = FileResult{Action: ActionFailed, Error: err, Message: "scan failed"}
		default:
			fr = handle(destRoot, entry, opts, result)
		}

		result.add(fr)
		logResult(op, fr)

		if err := opts.report(ProgressEvent{
			Type:      ProgressEventFile,
			Operation: op,
			RelPath:   fr.RelPath,
			Action:    fr.Action,
			Processed: len(result.Files),
		}); err != nil {
			return result, fmt.Errorf("%s cancelled: %w", op, err)
		}
	}

	if err := opts.report(ProgressEvent{
		Type:      ProgressEventComplete,
		Operation: op,
		Processed: len(result.Files),
	}); err != nil {
		return result, fmt.Errorf("%s cancelled: %w", op, err)
	}

	logging.Debug("run complete",
		logging.Operation(string(op)),
		logging.Count(result.TotalProcessed()),
		slog.Int("failed", len(result.Failed())),
	)
	return result, nil
}

func (s *Synchronizer) addFile(destRoot hierarchy.Node, entry scan.SourceEntry, opts Options, _ *Result) FileResult {
	fr := FileResult{RelPath: entry.RelPath, Size: entry.Size}
	name := pathmap.Base(entry.RelPath)

	// chain holds every folder on the way down; created marks the ones this
	// call made so they can be pruned again if the attach fails.
	chain := []hierarchy.Node{destRoot}
	created := 0
	node := destRoot
	for _, seg := range pathmap.Segments(entry.RelPath) {
		child, ok, err := node.Child(seg)
		if err != nil {
			return failed(fr, err, "lookup failed")
		}
		if ok && child.IsFile() {
			return failed(fr, fmt.Errorf("%w: %q is a file", hierarchy.ErrHostRejected, seg), "folder name taken by a file")
		}
		if !ok {
			if opts.DryRun {
				fr.Action = ActionCreated
				fr.Message = "would create"
				return fr
			}
			child, err = node.CreateFolder(seg)
			if err != nil {
				s.pruneCreated(chain, created)
				return failed(fr, err, "create folder failed")
			}
			created++
		}
		chain = append(chain, child)
		node = child
	}

	if _, exists, err := node.Child(name); err != nil {
		return failed(fr, err, "lookup failed")
	} else if exists {
		fr.Action = ActionSkipped
		fr.Message = "already exists"
		return fr
	}

	if opts.DryRun {
		fr.Action = ActionCreated
		fr.Message = "would create"
		return fr
	}

	if err := attachFile(node, name, entry); err != nil {
		s.pruneCreated(chain, created)
		return failed(fr, err, "attach failed")
	}

	fr.Action = ActionCreated
	return fr
}

func (s *Synchronizer) removeFile(destRoot hierarchy.Node, entry scan.SourceEntry, opts Options, result *Result) FileResult {
	fr := FileResult{RelPath: entry.RelPath, Size: entry.Size}
	name := pathmap.Base(entry.RelPath)

	chain := []hierarchy.Node{destRoot}
	node := destRoot
	for _, seg := range pathmap.Segments(entry.RelPath) {
		child, ok, err := node.Child(seg)
		if err != nil {
			return failed(fr, err, "lookup failed")
		}
		if !ok || child.IsFile() {
			fr.Action = ActionSkipped
			fr.Message = "not found"
			return fr
		}
		chain = append(chain, child)
		node = child
	}

	target, ok, err := node.Child(name)
	if err != nil {
		return failed(fr, err, "lookup failed")
	}
	if !ok || !target.IsFile() {
		fr.Action = ActionSkipped
		fr.Message = "not found"
		return fr
	}

	size, err := target.Size()
	if err != nil {
		return failed(fr, err, "stat failed")
	}
	if size != entry.Size {
		fr.Action = ActionSkipped
		fr.Message = fmt.Sprintf("size differs (%d != %d), assuming modified", size, entry.Size)
		return fr
	}

	if opts.DryRun {
		fr.Action = ActionDeleted
		fr.Message = "would delete"
		return fr
	}

	if err := target.Delete(); err != nil {
		return failed(fr, err, "delete failed")
	}
	fr.Action = ActionDeleted

	result.Pruned = append(result.Pruned, s.pruneEmpty(chain, entry.RelPath)...)
	return fr
}

func failed(fr FileResult, err error, msg string) FileResult {
	fr.Action = ActionFailed
	fr.Error = err
	fr.Message = msg
	return fr
}

func logResult(op Operation, fr FileResult) {
	attrs := []any{
		logging.Operation(string(op)),
		logging.Node(fr.RelPath),
		logging.Action(string(fr.Action)),
	}
	if fr.Message != "" {
		attrs = append(attrs, slog.String("message", fr.Message))
	}
	if fr.Action == ActionFailed {
		logging.Warn("host rejected file", append(attrs, logging.Err(fr.Error))...)
		return
	}
	logging.Debug("processed file", attrs...)
}
