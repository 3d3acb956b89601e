package hierarchy

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/text/cases"
)

// Tree is a hierarchy stored in a go-billy filesystem below a root directory.
type Tree struct {
	fs       billy.Filesystem
	root     string
	foldCase bool
	fold     cases.Caser
}

// Option configures a Tree.
type Option func(*Tree)

// WithFoldCase makes child lookups case-insensitive, matching hosts whose
// project systems treat names that differ only in case as the same entry.
func WithFoldCase(enabled bool) Option {
	return func(t *Tree) {
		t.foldCase = enabled
	}
}

// NewTree returns a Tree rooted at root inside fs, creating root if needed.
func NewTree(fs billy.Filesystem, root string, opts ...Option) (*Tree, error) {
	t := &Tree{
		fs:   fs,
		root: filepath.Clean(root),
		fold: cases.Fold(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := fs.MkdirAll(t.root, 0o750); err != nil {
		return nil, rejected("mkdir", t.root, err)
	}
	return t, nil
}

// Root returns the node at the root of the tree.
//
//nolint:ireturn // callers work against the Node abstraction
func (t *Tree) Root() Node {
	return &billyNode{tree: t, path: t.root, name: filepath.Base(t.root), dir: true}
}

// FoldCase reports whether lookups ignore case.
func (t *Tree) FoldCase() bool {
	return t.foldCase
}

func (t *Tree) sameName(a, b string) bool {
	if !t.foldCase {
		return a == b
	}
	return t.fold.String(a) == t.fold.String(b)
}

type billyNode struct {
	tree *Tree
	path string
	name string
	dir  bool
}

func (n *billyNode) Name() string { return n.name }

func (n *billyNode) IsFile() bool { return !n.dir }

func (n *billyNode) Size() (int64, error) {
	if n.dir {
		return 0, nil
	}
	info, err := n.tree.fs.Stat(n.path)
	if err != nil {
		return 0, rejected("stat", n.path, err)
	}
	return info.Size(), nil
}

//nolint:ireturn // Node abstraction
func (n *billyNode) Child(name string) (Node, bool, error) {
	if !n.dir {
		return nil, false, nil
	}

	if !n.tree.foldCase {
		p := n.tree.fs.Join(n.path, name)
		info, err := n.tree.fs.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, rejected("lstat", p, err)
		}
		return n.child(info), true, nil
	}

	infos, err := n.readDir()
	if err != nil {
		return nil, false, err
	}
	for _, info := range infos {
		if n.tree.sameName(info.Name(), name) {
			return n.child(info), true, nil
		}
	}
	return nil, false, nil
}

func (n *billyNode) Children() ([]Node, error) {
	infos, err := n.readDir()
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(infos))
	for _, info := range infos {
		nodes = append(nodes, n.child(info))
	}
	return nodes, nil
}

func (n *billyNode) ChildCount() (int, error) {
	infos, err := n.readDir()
	if err != nil {
		return 0, err
	}
	return len(infos), nil
}

//nolint:ireturn // Node abstraction
func (n *billyNode) CreateFolder(name string) (Node, error) {
	p := n.tree.fs.Join(n.path, name)
	if err := n.tree.fs.MkdirAll(p, 0o750); err != nil {
		return nil, rejected("mkdir", p, err)
	}
	return &billyNode{tree: n.tree, path: p, name: name, dir: true}, nil
}

//nolint:ireturn // Node abstraction
func (n *billyNode) CreateFile(name string, r io.Reader) (Node, error) {
	p := n.tree.fs.Join(n.path, name)
	f, err := n.tree.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, rejected("create", p, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = n.tree.fs.Remove(p)
		return nil, rejected("write", p, err)
	}
	if err := f.Close(); err != nil {
		_ = n.tree.fs.Remove(p)
		return nil, rejected("close", p, err)
	}
	return &billyNode{tree: n.tree, path: p, name: name}, nil
}

func (n *billyNode) Delete() error {
	if n.path == n.tree.root {
		return rejected("remove", n.path, errors.New("cannot delete hierarchy root"))
	}
	if err := n.tree.fs.Remove(n.path); err != nil {
		return rejected("remove", n.path, err)
	}
	return nil
}

func (n *billyNode) child(info os.FileInfo) *billyNode {
	return &billyNode{
		tree: n.tree,
		path: n.tree.fs.Join(n.path, info.Name()),
		name: info.Name(),
		dir:  info.IsDir(),
	}
}

// readDir lists children in name order. A folder that was never materialized
// by the backing filesystem is treated as empty.
func (n *billyNode) readDir() ([]os.FileInfo, error) {
	if !n.dir {
		return nil, nil
	}
	infos, err := n.tree.fs.ReadDir(n.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, rejected("readdir", n.path, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}
