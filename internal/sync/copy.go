package sync

import (
	"github.com/klauern/installsync/internal/hierarchy"
	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/pathmap"
	"github.com/klauern/installsync/internal/scan"
)

// attachFile copies the source entry into a new file node under parent.
// The source reader is closed on every path.
func attachFile(parent hierarchy.Node, name string, entry scan.SourceEntry) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if _, err := parent.CreateFile(name, src); err != nil {
		return err
	}

	logging.Debug("attached file", logging.Path(entry.FullPath))
	return nil
}

// pruneEmpty deletes the folders of chain that have no children, deepest
// first. chain[0] is the synchronization root and is never deleted. It
// returns the relative paths of the removed folders.
func (s *Synchronizer) pruneEmpty(chain []hierarchy.Node, relPath string) []string {
	segments := pathmap.Segments(relPath)
	var pruned []string

	for i := len(chain) - 1; i > 0; i-- {
		folder := chain[i]
		count, err := folder.ChildCount()
		if err != nil {
			logging.Warn("cannot count children, stopping prune",
				logging.Node(folder.Name()),
				logging.Err(err),
			)
			break
		}
		if count > 0 {
			break
		}
		if err := folder.Delete(); err != nil {
			logging.Warn("failed to delete empty folder",
				logging.Node(folder.Name()),
				logging.Err(err),
			)
			break
		}

		rel := pathmap.JoinSegments("", segments[:i]...)
		logging.Debug("pruned empty folder", logging.Node(rel))
		pruned = append(pruned, rel)
	}
	return pruned
}

// pruneCreated undoes the folder creations of a failed attach. Only the last
// created folders of chain are candidates.
func (s *Synchronizer) pruneCreated(chain []hierarchy.Node, created int) {
	if created == 0 {
		return
	}
	for i := len(chain) - 1; i >= len(chain)-created && i > 0; i-- {
		count, err := chain[i].ChildCount()
		if err != nil || count > 0 {
			return
		}
		if err := chain[i].Delete(); err != nil {
			logging.Warn("failed to roll back folder", logging.Node(chain[i].Name()), logging.Err(err))
			return
		}
	}
}
