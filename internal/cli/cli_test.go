package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klauern/installsync/internal/buildstep"
	"github.com/klauern/installsync/internal/copystep"
	"github.com/klauern/installsync/internal/logging"
	"github.com/klauern/installsync/internal/project"
	"github.com/klauern/installsync/internal/util"
)

// runCLI runs the application with args and returns what it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := Run(context.Background(), append([]string{"installsync"}, args...))

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = old
	return <-done, runErr
}

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() { logging.SetDefault(logging.New(logging.DefaultOptions())) })

	tests := map[string]struct {
		args      []string
		wantDebug bool
	}{
		"no flags uses info level":   {args: []string{"version"}, wantDebug: false},
		"verbose stays at info":      {args: []string{"--verbose", "version"}, wantDebug: false},
		"debug enables debug output": {args: []string{"--debug", "version"}, wantDebug: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			got := logging.Default().Enabled(context.Background(), slog.LevelDebug)
			assert.Equal(t, tt.wantDebug, got)
		})
	}
}

func TestAddAndRemoveCommands(t *testing.T) {
	src := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "readme.txt"), "hello")
	util.WriteFile(t, filepath.Join(src, "content", "app.config"), "<config/>")
	util.WriteFile(t, filepath.Join(src, "content", "deep", "x.js"), "var x;")
	dest := filepath.Join(t.TempDir(), "MyProject")

	output, err := runCLI(t, "add", "--no-progress", src, dest)
	require.NoError(t, err)
	assert.Contains(t, output, "Created: 3")

	for _, rel := range []string{"readme.txt", "content/app.config", "content/deep/x.js"} {
		assert.FileExists(t, filepath.Join(dest, filepath.FromSlash(rel)))
	}

	// A second add leaves everything in place.
	output, err = runCLI(t, "add", "--no-progress", src, dest)
	require.NoError(t, err)
	assert.Contains(t, output, "Skipped: 3")

	output, err = runCLI(t, "remove", "--no-progress", src, dest)
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted: 3")

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "empty folders should be pruned")
	assert.DirExists(t, dest, "destination root is never pruned")
}

func TestAddCommandFilterAndDryRun(t *testing.T) {
	src := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "a.config"), "a")
	util.WriteFile(t, filepath.Join(src, "b.txt"), "b")
	dest := filepath.Join(t.TempDir(), "proj")

	output, err := runCLI(t, "--verbose", "add", "--no-progress", "--dry-run", "--filter", "*.config", src, dest)
	require.NoError(t, err)
	assert.Contains(t, output, "Dry run")
	assert.Contains(t, output, "a.config")
	assert.NotContains(t, output, "b.txt")
	assert.NoFileExists(t, filepath.Join(dest, "a.config"))
}

func TestRemoveCommandKeepsModifiedFiles(t *testing.T) {
	src := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "sub", "a.txt"), "abc")
	dest := filepath.Join(t.TempDir(), "proj")
	util.WriteFile(t, filepath.Join(dest, "sub", "a.txt"), "abcdef")

	output, err := runCLI(t, "--verbose", "remove", "--no-progress", src, dest)
	require.NoError(t, err)
	assert.Contains(t, output, "assuming modified")
	assert.FileExists(t, filepath.Join(dest, "sub", "a.txt"))
}

func TestSyncCommandArgumentErrors(t *testing.T) {
	dir := t.TempDir()

	tests := map[string][]string{
		"add without arguments":  {"add"},
		"add with one argument":  {"add", dir},
		"remove with three args": {"remove", dir, dir, dir},
		"missing source":         {"add", filepath.Join(dir, "missing"), dir},
		"tree without argument":  {"tree"},
		"tree of missing dir":    {"tree", filepath.Join(dir, "missing")},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestTreeCommand(t *testing.T) {
	root := filepath.Join(t.TempDir(), "MyProject")
	util.WriteFile(t, filepath.Join(root, "content", "app.config"), "x")
	util.WriteFile(t, filepath.Join(root, "readme.txt"), "x")

	output, err := runCLI(t, "tree", root)
	require.NoError(t, err)
	for _, want := range []string{"MyProject", "content", "app.config", "readme.txt"} {
		assert.Contains(t, output, want)
	}
}

func TestStepCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")

	_, err := runCLI(t, "step", "add", "--project", path, "--slot", "post", "echo hi")
	require.NoError(t, err)
	output, err := runCLI(t, "step", "add", "--project", path, "--slot", "post", "echo hi")
	require.NoError(t, err)
	assert.Contains(t, output, "unchanged")

	proj, err := project.Open(path)
	require.NoError(t, err)
	text, err := buildstep.Steps(proj, buildstep.Post)
	require.NoError(t, err)
	assert.Equal(t, "echo hi\r\n", text)

	output, err = runCLI(t, "step", "show", "--project", path)
	require.NoError(t, err)
	assert.Contains(t, output, "# app ("+path+")")
	assert.Contains(t, output, "PostBuildEvent:")
	assert.Contains(t, output, "  echo hi")

	_, err = runCLI(t, "step", "remove", "--project", path, "--slot", "post", "echo hi")
	require.NoError(t, err)

	proj, err = project.Open(path)
	require.NoError(t, err)
	text, err = buildstep.Steps(proj, buildstep.Post)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestStepRemoveOnMissingProjectWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")

	output, err := runCLI(t, "step", "remove", "--project", path, "echo hi")
	require.NoError(t, err)
	assert.Contains(t, output, "unchanged")
	assert.NotContains(t, output, "updated")
	assert.NoFileExists(t, path)
}

func TestStepCommandInvalidSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")

	_, err := runCLI(t, "step", "add", "--project", path, "--slot", "during", "echo hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, buildstep.ErrInvalidSlot)
	assert.NoFileExists(t, path)
}

func TestStepCommandUnavailableSlotIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	util.WriteFile(t, path, "name: app\nproperties:\n  PreBuildEvent: \"\"\n")

	output, err := runCLI(t, "step", "add", "--project", path, "--slot", "post", "echo hi")
	require.NoError(t, err)
	assert.Contains(t, output, "PostBuildEvent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "echo hi")
}

func TestCopyStepCommand(t *testing.T) {
	output, err := runCLI(t, "copystep",
		"--install-root", `C:\sln\packages\Foo.1.0`,
		"--solution-root", `C:\sln`,
		"--source", "NativeBinaries",
		"--target", "NativeBinaries",
	)
	require.NoError(t, err)

	want := copystep.Generate(`C:\sln\packages\Foo.1.0`, `C:\sln`, "NativeBinaries", "NativeBinaries")
	assert.Equal(t, want, output)
	assert.True(t, strings.HasPrefix(output, `if not exist "$(TargetDir)NativeBinaries"`))
}

func TestCopyStepCommandInstallsIntoProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	args := []string{"copystep",
		"--install-root", `C:\sln\packages\Foo.1.0`,
		"--solution-root", `C:\sln`,
		"--source", "bin",
		"--target", "bin",
		"--project", path,
		"--slot", "pre",
	}

	_, err := runCLI(t, args...)
	require.NoError(t, err)
	_, err = runCLI(t, args...)
	require.NoError(t, err)

	proj, err := project.Open(path)
	require.NoError(t, err)
	text, err := buildstep.Steps(proj, buildstep.Pre)
	require.NoError(t, err)
	want := copystep.Generate(`C:\sln\packages\Foo.1.0`, `C:\sln`, "bin", "bin")
	assert.Equal(t, want, text, "the command is added once")

	_, err = runCLI(t, append(args, "--remove")...)
	require.NoError(t, err)
	proj, err = project.Open(path)
	require.NoError(t, err)
	text, err = buildstep.Steps(proj, buildstep.Pre)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	output, err := runCLI(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, output, "Created config file:")
	assert.FileExists(t, path)

	_, err = runCLI(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCLI(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	output, err = runCLI(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "Loaded from:")
	assert.Contains(t, output, "filter:")
	assert.Contains(t, output, "slot: post")

	output, err = runCLI(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(output))
}

func TestConfigFileSetsDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	util.WriteFile(t, cfgPath, "sync:\n  filter: \"*.dll\"\n")

	src := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "native.dll"), "bin")
	util.WriteFile(t, filepath.Join(src, "notes.txt"), "txt")
	dest := filepath.Join(t.TempDir(), "proj")

	_, err := runCLI(t, "--config", cfgPath, "add", "--no-progress", src, dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "native.dll"))
	assert.NoFileExists(t, filepath.Join(dest, "notes.txt"))
}
