package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// Dir returns the fixture base directory.
func (f *Fixture) Dir() string {
	return f.baseDir
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteFiles writes every relPath/content pair of files.
func (f *Fixture) WriteFiles(files map[string]string) {
	f.t.Helper()
	for rel, content := range files {
		f.WriteFile(rel, content)
	}
}

// MkdirAll creates a directory and all parent directories relative to the base.
func (f *Fixture) MkdirAll(relPath string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)

	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// Path returns the full path for a slash-separated relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, filepath.FromSlash(relPath))
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(f.Path(relPath))
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// PackageFixture creates the install directory of a package named id, laid
// out the way a package manager extracts it: a content folder mirrored into
// the project and a folder of native binaries copied at build time.
func (h *Harness) PackageFixture(id string) *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.t.TempDir(), "packages", id)
	if err := os.MkdirAll(filepath.Join(dir, "content"), 0o750); err != nil {
		h.t.Fatalf("failed to create package directory: %v", err)
	}
	return NewFixture(h.t, dir)
}

// ProjectFixture creates an empty project directory.
func (h *Harness) ProjectFixture(name string) *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		h.t.Fatalf("failed to create project directory: %v", err)
	}
	return NewFixture(h.t, dir)
}

// TempFixture creates a fixture helper for a new temporary directory.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}
