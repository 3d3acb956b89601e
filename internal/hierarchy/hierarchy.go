// Package hierarchy defines the destination hierarchy that mirrored package
// content is synchronized into, and a go-billy backed implementation of it.
//
// A hierarchy is a tree of named nodes. Folder nodes hold children and file
// nodes hold a byte payload. The synchronization code only ever talks to the
// Node interface, so any host that can enumerate, create, and delete entries
// can be plugged in.
package hierarchy

import (
	"errors"
	"fmt"
	"io"
)

// ErrHostRejected indicates the hierarchy provider refused a create, delete,
// or write request.
var ErrHostRejected = errors.New("host rejected request")

// Node is a single entry in a destination hierarchy.
type Node interface {
	// Name returns the entry name within its parent.
	Name() string
	// IsFile reports whether the node wraps a file payload.
	IsFile() bool
	// Size returns the payload length in bytes. Folders report 0.
	Size() (int64, error)
	// Child looks up a direct child by name. The bool is false when absent.
	Child(name string) (Node, bool, error)
	// Children enumerates the direct children.
	Children() ([]Node, error)
	// ChildCount returns the number of direct children.
	ChildCount() (int, error)
	// CreateFolder creates a child folder node.
	CreateFolder(name string) (Node, error)
	// CreateFile creates a child file node holding the bytes read from r.
	CreateFile(name string, r io.Reader) (Node, error)
	// Delete removes the node from its parent.
	Delete() error
}

// HostError records a rejected hierarchy operation.
type HostError struct {
	Op   string
	Path string
	Err  error
}

// Error returns a formatted message with the operation and path.
func (e *HostError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrHostRejected and the underlying cause.
func (e *HostError) Unwrap() []error {
	return []error{ErrHostRejected, e.Err}
}

func rejected(op, path string, err error) error {
	return &HostError{Op: op, Path: path, Err: err}
}
