// Package scan enumerates the files below a source directory that a
// synchronization run operates on.
package scan

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/pathmap"
)

// MatchAll is the filter used when none is given.
const MatchAll = "*"

// ErrBadPattern is returned for a malformed filter glob.
var ErrBadPattern = filepath.ErrBadPattern

var errStop = errors.New("scan stopped")

// SourceEntry is a file found under a source directory.
type SourceEntry struct {
	// FullPath is the file path inside the scanned filesystem.
	FullPath string
	// RelPath is FullPath relative to the scan root.
	RelPath string
	// Size is the byte length of the file.
	Size int64

	fs billy.Filesystem
}

// Open opens the file for reading. Callers must close the returned reader.
func (e SourceEntry) Open() (io.ReadCloser, error) {
	if e.fs == nil {
		return nil, fmt.Errorf("source entry %q has no filesystem", e.FullPath)
	}
	// #nosec G304 - path comes from the walk of a caller-chosen directory
	f, err := e.fs.Open(e.FullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %q: %w", e.FullPath, err)
	}
	return f, nil
}

// Source describes a directory scan: where to look and which file names to keep.
type Source struct {
	FS     billy.Filesystem
	Dir    string
	Filter string
}

// Entries walks the source and yields matching files in lexical order.
// Each call starts a fresh walk.
func (s Source) Entries() iter.Seq2[SourceEntry, error] {
	return Scan(s.FS, s.Dir, s.Filter)
}

// Scan returns a lazy sequence of the files below dir whose base name matches
// filter. An empty filter matches everything. Directories are descended into
// but never yielded. A linked file is reported with the size of its target;
// linked directories are skipped.
func Scan(fs billy.Filesystem, dir, filter string) iter.Seq2[SourceEntry, error] {
	if filter == "" {
		filter = MatchAll
	}
	root := filepath.Clean(dir)

	return func(yield func(SourceEntry, error) bool) {
		if _, err := filepath.Match(filter, ""); err != nil {
			yield(SourceEntry{}, fmt.Errorf("invalid filter %q: %w", filter, err))
			return
		}

		err := util.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if !yield(SourceEntry{}, fmt.Errorf("failed to walk %q: %w", path, err)) {
					return errStop
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if info.Mode()&os.ModeSymlink != 0 {
				target, statErr := fs.Stat(path)
				if statErr != nil {
					if !yield(SourceEntry{}, fmt.Errorf("failed to resolve link %q: %w", path, statErr)) {
						return errStop
					}
					return nil
				}
				if target.IsDir() {
					logging.Debug("skipping linked directory", logging.Path(path))
					return nil
				}
				info = target
			}

			matched, _ := filepath.Match(filter, info.Name())
			if !matched {
				return nil
			}

			entry := SourceEntry{FullPath: path, Size: info.Size(), fs: fs}
			if root == "." {
				entry.RelPath = path
			} else {
				rel, relErr := pathmap.RelativePath(root, path)
				if relErr != nil {
					if !yield(SourceEntry{}, relErr) {
						return errStop
					}
					return nil
				}
				entry.RelPath = rel
			}

			if !yield(entry, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(SourceEntry{}, err)
		}
	}
}
