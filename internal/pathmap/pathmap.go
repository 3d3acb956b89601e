// Package pathmap maps files under a source directory onto a mirrored
// destination hierarchy by relative path.
package pathmap

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidPath indicates a path that is not located under the expected root.
var ErrInvalidPath = errors.New("invalid path")

// PathError describes a relative path computation that could not be made.
type PathError struct {
	Root string
	Path string
}

// Error returns a formatted message naming both paths.
func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %q is not under %q", ErrInvalidPath, e.Path, e.Root)
}

// Unwrap returns ErrInvalidPath so callers can use errors.Is.
func (e *PathError) Unwrap() error {
	return ErrInvalidPath
}

// RelativePath strips root and one separator from fullPath.
// A fullPath equal to root yields the empty string.
func RelativePath(root, fullPath string) (string, error) {
	sep := string(os.PathSeparator)
	trimmed := strings.TrimRight(root, sep)
	if trimmed == "" && root != "" {
		// A root made only of separators is the filesystem root, however many
		// separators it repeats. Any absolute path is under it.
		if !strings.HasPrefix(fullPath, sep) {
			return "", &PathError{Root: root, Path: fullPath}
		}
		return strings.TrimLeft(fullPath, sep), nil
	}

	if fullPath == trimmed {
		return "", nil
	}

	prefix := trimmed + sep
	if !strings.HasPrefix(fullPath, prefix) {
		return "", &PathError{Root: root, Path: fullPath}
	}
	return fullPath[len(prefix):], nil
}

// JoinSegments joins base and segments with the platform separator.
// Unlike filepath.Join it does not clean the result, so ".." is kept as-is.
func JoinSegments(base string, segments ...string) string {
	sep := string(os.PathSeparator)
	var sb strings.Builder
	sb.WriteString(base)
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), sep) {
			sb.WriteString(sep)
		}
		sb.WriteString(seg)
	}
	return sb.String()
}

// Segments returns the ordered directory segments of a relative file path.
// A file at the root of the scan has no segments.
func Segments(rel string) []string {
	dir := Dir(rel)
	if dir == "" {
		return nil
	}
	parts := strings.Split(dir, string(os.PathSeparator))
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dir returns the directory portion of rel without a trailing separator.
func Dir(rel string) string {
	i := strings.LastIndex(rel, string(os.PathSeparator))
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// Base returns the final element of rel.
func Base(rel string) string {
	i := strings.LastIndex(rel, string(os.PathSeparator))
	if i < 0 {
		return rel
	}
	return rel[i+1:]
}
