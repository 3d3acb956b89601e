package copystep

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := map[string]struct {
		installRoot  string
		solutionRoot string
		source       string
		target       string
		want         []string
	}{
		"install under solution": {
			installRoot:  `C:\sln\pkg\tools`,
			solutionRoot: `C:\sln`,
			source:       "native",
			target:       "bin",
			want: []string{
				`if not exist "$(TargetDir)bin" md "$(TargetDir)bin"`,
				`xcopy /s /y "$(SolutionDir)pkg\tools\native\*.*" "$(TargetDir)bin"`,
			},
		},
		"solution root with trailing separator and other case": {
			installRoot:  `c:\SLN\packages\Foo.1.0\content`,
			solutionRoot: `C:\sln\`,
			source:       `x86/lib`,
			target:       `x86`,
			want: []string{
				`if not exist "$(TargetDir)x86" md "$(TargetDir)x86"`,
				`xcopy /s /y "$(SolutionDir)packages\Foo.1.0\content\x86\lib\*.*" "$(TargetDir)x86"`,
			},
		},
		"install outside solution keeps absolute path": {
			installRoot:  `D:\cache\pkg`,
			solutionRoot: `C:\sln`,
			source:       "native",
			target:       "bin",
			want: []string{
				`if not exist "$(TargetDir)bin" md "$(TargetDir)bin"`,
				`xcopy /s /y "D:\cache\pkg\native\*.*" "$(TargetDir)bin"`,
			},
		},
		"empty target copies into output root": {
			installRoot:  `C:\sln\pkg`,
			solutionRoot: `C:\sln`,
			source:       "",
			target:       "",
			want: []string{
				`if not exist "$(TargetDir)" md "$(TargetDir)"`,
				`xcopy /s /y "$(SolutionDir)pkg\*.*" "$(TargetDir)"`,
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Generate(tt.installRoot, tt.solutionRoot, tt.source, tt.target)

			if !strings.HasSuffix(got, LineEnding) {
				t.Errorf("Generate() should end with a line ending, got %q", got)
			}
			lines := strings.Split(strings.TrimSuffix(got, LineEnding), LineEnding)
			if len(lines) != len(tt.want) {
				t.Fatalf("Generate() produced %d lines, want %d: %q", len(lines), len(tt.want), got)
			}
			for i := range lines {
				if lines[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i+1, lines[i], tt.want[i])
				}
			}
		})
	}
}

func TestRelocate(t *testing.T) {
	tests := map[string]struct {
		install  string
		solution string
		want     string
	}{
		"nested":              {install: `C:\sln\pkg`, solution: `C:\sln`, want: `$(SolutionDir)pkg`},
		"equal":               {install: `C:\sln`, solution: `C:\sln`, want: `$(SolutionDir)`},
		"forward slashes":     {install: `C:/sln/pkg/tools`, solution: `C:/sln`, want: `$(SolutionDir)pkg\tools`},
		"sibling with prefix": {install: `C:\sln2\pkg`, solution: `C:\sln`, want: `C:\sln2\pkg`},
		"empty solution":      {install: `C:\sln\pkg`, solution: ``, want: `C:\sln\pkg`},
		"shorter install":     {install: `C:\`, solution: `C:\sln`, want: `C:\`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Relocate(tt.install, tt.solution); got != tt.want {
				t.Errorf("Relocate(%q, %q) = %q, want %q", tt.install, tt.solution, got, tt.want)
			}
		})
	}
}

func TestGenerateLeavesTokensUnresolved(t *testing.T) {
	t.Setenv("TargetDir", `C:\should\not\appear`)

	got := Generate(`C:\sln\pkg`, `C:\sln`, "native", "bin")
	if strings.Contains(got, `C:\should\not\appear`) {
		t.Errorf("Generate() must not expand tokens, got %q", got)
	}
	if !strings.Contains(got, TargetDirToken) || !strings.Contains(got, SolutionDirToken) {
		t.Errorf("Generate() should contain both tokens, got %q", got)
	}
}
