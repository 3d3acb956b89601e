// Package copystep generates the build event commands that copy a package's
// native files next to the build output.
//
// The generated text is meant for a Windows command processor run by the
// build tool. It refers to solution and output locations through the build
// tool's own macros, which are expanded when the build runs, so the command
// keeps working if the solution is moved after installation.
package copystep

import (
	"fmt"
	"strings"
)

const (
	// SolutionDirToken expands to the solution directory, with a trailing backslash.
	SolutionDirToken = "$(SolutionDir)"
	// TargetDirToken expands to the build output directory, with a trailing backslash.
	TargetDirToken = "$(TargetDir)"

	// LineEnding terminates every generated command.
	LineEnding = "\r\n"
)

// Generate returns the commands that create targetSubPath under the output
// directory when missing and recursively copy every file below
// installRoot\sourceSubPath into it, overwriting without prompting.
//
// A solutionRoot prefix on installRoot is replaced by SolutionDirToken.
// Tokens are emitted as-is and never resolved here.
func Generate(installRoot, solutionRoot, sourceSubPath, targetSubPath string) string {
	source := join(Relocate(installRoot, solutionRoot), sourceSubPath)
	target := join(TargetDirToken, targetSubPath)

	var sb strings.Builder
	fmt.Fprintf(&sb, `if not exist "%s" md "%s"%s`, target, target, LineEnding)
	fmt.Fprintf(&sb, `xcopy /s /y "%s" "%s"%s`, join(source, "*.*"), target, LineEnding)
	return sb.String()
}

// Relocate rewrites installRoot relative to SolutionDirToken when it lies
// under solutionRoot. Paths are compared case-insensitively and either slash
// is accepted as a separator. Other paths are returned unchanged.
func Relocate(installRoot, solutionRoot string) string {
	root := strings.TrimRight(solutionRoot, `\/`)
	if root == "" || len(installRoot) < len(root) {
		return installRoot
	}
	if !strings.EqualFold(installRoot[:len(root)], root) {
		return installRoot
	}

	rest := installRoot[len(root):]
	if rest != "" && rest[0] != '\\' && rest[0] != '/' {
		// a sibling such as C:\sln2 sharing the prefix C:\sln
		return installRoot
	}
	return SolutionDirToken + toBackslash(strings.TrimLeft(rest, `\/`))
}

// join appends seg to base with a single backslash. Bases ending in a
// directory token already carry their separator.
func join(base, seg string) string {
	seg = strings.TrimLeft(toBackslash(seg), `\`)
	switch {
	case seg == "":
		return base
	case base == "",
		strings.HasSuffix(base, `\`),
		strings.HasSuffix(base, SolutionDirToken),
		strings.HasSuffix(base, TargetDirToken):
		return base + seg
	default:
		return base + `\` + seg
	}
}

func toBackslash(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}
