package sync

import (
	"errors"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/klauern/installsync/internal/hierarchy"
	"github.com/klauern/installsync/internal/scan"
)

var errDenied = errors.New("access denied")

// sourceFS builds an in-memory source tree under "src".
func sourceFS(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("src", 0o755))
	for name, content := range files {
		p := filepath.Join("src", filepath.FromSlash(name))
		require.NoError(t, util.WriteFile(fs, p, []byte(content), 0o644))
	}
	return fs
}

func newDest(t *testing.T, opts ...hierarchy.Option) (billy.Filesystem, *hierarchy.Tree) {
	t.Helper()
	fs := memfs.New()
	tree, err := hierarchy.NewTree(fs, "project", opts...)
	require.NoError(t, err)
	return fs, tree
}

func writeDest(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	p := filepath.Join("project", filepath.FromSlash(name))
	require.NoError(t, util.WriteFile(fs, p, []byte(content), 0o644))
}

func readDest(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, filepath.Join("project", filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

// listFiles returns every file below n as slash-separated relative paths.
func listFiles(t *testing.T, n hierarchy.Node) []string {
	t.Helper()
	var out []string
	var walk func(prefix string, n hierarchy.Node)
	walk = func(prefix string, n hierarchy.Node) {
		children, err := n.Children()
		require.NoError(t, err)
		for _, c := range children {
			p := c.Name()
			if prefix != "" {
				p = prefix + "/" + c.Name()
			}
			if c.IsFile() {
				out = append(out, p)
				continue
			}
			walk(p, c)
		}
	}
	walk("", n)
	sort.Strings(out)
	return out
}

// faultyNode rejects creates or deletes of specific names.
type faultyNode struct {
	hierarchy.Node
	rejectCreate map[string]bool
	rejectDelete map[string]bool
}

func (n *faultyNode) wrap(c hierarchy.Node) hierarchy.Node {
	return &faultyNode{Node: c, rejectCreate: n.rejectCreate, rejectDelete: n.rejectDelete}
}

func (n *faultyNode) Child(name string) (hierarchy.Node, bool, error) {
	c, ok, err := n.Node.Child(name)
	if err != nil || !ok {
		return c, ok, err
	}
	return n.wrap(c), true, nil
}

func (n *faultyNode) Children() ([]hierarchy.Node, error) {
	children, err := n.Node.Children()
	if err != nil {
		return nil, err
	}
	for i, c := range children {
		children[i] = n.wrap(c)
	}
	return children, nil
}

func (n *faultyNode) CreateFolder(name string) (hierarchy.Node, error) {
	if n.rejectCreate[name] {
		return nil, &hierarchy.HostError{Op: "mkdir", Path: name, Err: errDenied}
	}
	c, err := n.Node.CreateFolder(name)
	if err != nil {
		return nil, err
	}
	return n.wrap(c), nil
}

func (n *faultyNode) CreateFile(name string, r io.Reader) (hierarchy.Node, error) {
	if n.rejectCreate[name] {
		return nil, &hierarchy.HostError{Op: "create", Path: name, Err: errDenied}
	}
	c, err := n.Node.CreateFile(name, r)
	if err != nil {
		return nil, err
	}
	return n.wrap(c), nil
}

func (n *faultyNode) Delete() error {
	if n.rejectDelete[n.Name()] {
		return &hierarchy.HostError{Op: "remove", Path: n.Name(), Err: errDenied}
	}
	return n.Node.Delete()
}

// trackingFS counts opened and closed source files.
type trackingFS struct {
	billy.Filesystem
	opened, closed int
}

func (fs *trackingFS) Open(name string) (billy.File, error) {
	f, err := fs.Filesystem.Open(name)
	if err != nil {
		return nil, err
	}
	fs.opened++
	return &trackedFile{File: f, fs: fs}, nil
}

type trackedFile struct {
	billy.File
	fs *trackingFS
}

func (f *trackedFile) Close() error {
	f.fs.closed++
	return f.File.Close()
}

func source(fs billy.Filesystem, filter string) scan.Source {
	return scan.Source{FS: fs, Dir: "src", Filter: filter}
}
