// Package sync mirrors the files of a source directory into a destination
// hierarchy and takes them back out again.
//
// # Add
//
// Add walks the source directory and, for every matching file, creates the
// folder chain named by the file's relative path below the destination root
// and attaches a copy of the file. Entries that already exist are never
// overwritten. A file the host refuses is recorded as failed and the walk
// moves on to the next file.
//
// # Remove
//
// Remove walks the same source and deletes the mirrored copies. A copy is
// only deleted when its byte length equals the source file's length, so a
// file the user edited after installation is left alone. After a delete,
// folders left without children are removed bottom-up, stopping at the first
// folder that still has children and never touching the destination root.
//
//	syncer := sync.New()
//	result, err := syncer.Add(ctx, tree.Root(), scan.Source{FS: fs, Dir: "content", Filter: "*.dll"}, sync.Options{})
//	if err != nil {
//	    return err // only invalid paths or cancellation abort a run
//	}
//	fmt.Print(result.Summary())
//
// # Progress Reporting
//
// Options.Progress receives a ProgressEventStart, one ProgressEventFile per
// processed file, and a ProgressEventComplete. Returning an error from the
// callback cancels the run.
package sync
