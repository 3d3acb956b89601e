package sync

// ProgressEventType identifies the stage a ProgressEvent reports.
type ProgressEventType int

const (
	// ProgressEventStart is emitted once before the first file.
	ProgressEventStart ProgressEventType = iota
	// ProgressEventFile is emitted after each source file is processed.
	ProgressEventFile
	// ProgressEventComplete is emitted once after the last file.
	ProgressEventComplete
)

// ProgressEvent reports the state of a running Add or Remove.
type ProgressEvent struct {
	Type      ProgressEventType
	Operation Operation
	// RelPath and Action are set for ProgressEventFile.
	RelPath string
	Action  Action
	// Processed counts files handled so far.
	Processed int
}

// ProgressCallback receives progress events. A non-nil return cancels the run.
type ProgressCallback func(ProgressEvent) error

func (o Options) report(ev ProgressEvent) error {
	if o.Progress == nil {
		return nil
	}
	return o.Progress(ev)
}
