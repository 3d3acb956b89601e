package sync

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Operation names the kind of run that produced a Result.
type Operation string

const (
	// OperationAdd mirrors source files into the destination.
	OperationAdd Operation = "add"
	// OperationRemove deletes mirrored files from the destination.
	OperationRemove Operation = "remove"
)

// Action represents the action taken on a file during a run.
type Action string

const (
	// ActionCreated indicates the file was attached to the destination.
	ActionCreated Action = "created"

	// ActionSkipped indicates nothing was done (already present, missing, or modified).
	ActionSkipped Action = "skipped"

	// ActionDeleted indicates the mirrored copy was removed.
	ActionDeleted Action = "deleted"

	// ActionFailed indicates the host rejected a request for this file.
	ActionFailed Action = "failed"
)

// FileResult represents the outcome of processing a single source file.
type FileResult struct {
	// RelPath is the file path relative to the source directory.
	RelPath string

	// Action is the action that was taken.
	Action Action

	// Size is the byte length of the source file.
	Size int64

	// Error contains any error that occurred during processing.
	Error error

	// Message provides additional context about the action.
	Message string
}

// Success returns true if the file was processed without a host failure.
func (fr *FileResult) Success() bool {
	return fr.Action != ActionFailed
}

// Result contains the complete outcome of an Add or Remove run.
type Result struct {
	// Operation is the kind of run.
	Operation Operation

	// SourceDir is the scanned source directory.
	SourceDir string

	// Files contains the result for each processed source file.
	Files []FileResult

	// Pruned lists folders removed because they became empty, relative to
	// the destination root, deepest first.
	Pruned []string

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// Created returns files that were attached.
func (r *Result) Created() []FileResult {
	return r.filterByAction(ActionCreated)
}

// Skipped returns files that were left alone.
func (r *Result) Skipped() []FileResult {
	return r.filterByAction(ActionSkipped)
}

// Deleted returns files whose mirrored copy was removed.
func (r *Result) Deleted() []FileResult {
	return r.filterByAction(ActionDeleted)
}

// Failed returns files the host rejected.
func (r *Result) Failed() []FileResult {
	return r.filterByAction(ActionFailed)
}

func (r *Result) filterByAction(action Action) []FileResult {
	var filtered []FileResult
	for _, fr := range r.Files {
		if fr.Action == action {
			filtered = append(filtered, fr)
		}
	}
	return filtered
}

// Success returns true if no file failed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// TotalProcessed returns the number of source files seen.
func (r *Result) TotalProcessed() int {
	return len(r.Files)
}

// BytesChanged returns the total size of created or deleted files.
func (r *Result) BytesChanged() uint64 {
	var total uint64
	for _, fr := range r.Files {
		if (fr.Action == ActionCreated || fr.Action == ActionDeleted) && fr.Size > 0 {
			total += uint64(fr.Size)
		}
	}
	return total
}

func (r *Result) add(fr FileResult) {
	r.Files = append(r.Files, fr)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("%s %s (%s)\n", r.Operation, r.SourceDir, humanize.Bytes(r.BytesChanged())))
	sb.WriteString(fmt.Sprintf("  Created: %d\n", len(r.Created())))
	sb.WriteString(fmt.Sprintf("  Deleted: %d\n", len(r.Deleted())))
	sb.WriteString(fmt.Sprintf("  Pruned:  %d\n", len(r.Pruned)))
	sb.WriteString(fmt.Sprintf("  Skipped: %d\n", len(r.Skipped())))
	sb.WriteString(fmt.Sprintf("  Failed:  %d\n", len(r.Failed())))

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.RelPath, f.Error))
		}
	}

	return sb.String()
}
