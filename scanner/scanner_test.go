package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramScanner(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	files := map[string]string{
		"b.eql":           "p(a).",
		"a.pl":            "?- p(a).",
		"notes.txt":       "not a program",
		"sub/c.eql":       "q(b).",
		".hidden/d.eql":   "r(c).",
		"sub/deep/e.eql":  "s(d).",
		"sub/deep/e.json": "{}",
	}
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scanned, err := New(tempDir, ProgramExtensions...).Scan()
	require.NoError(t, err)

	var paths []string
	for _, f := range scanned {
		paths = append(paths, f.Path)
		assert.Greater(t, f.Size, int64(0))
	}
	assert.Equal(t, []string{
		filepath.Join(tempDir, "a.pl"),
		filepath.Join(tempDir, "b.eql"),
		filepath.Join(tempDir, "sub/c.eql"),
		filepath.Join(tempDir, "sub/deep/e.eql"),
	}, paths)
}

func TestIsTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		extensions []string
		path       string
		want       bool
	}{
		{name: "program", extensions: ProgramExtensions, path: "x/prog.eql", want: true},
		{name: "prolog style", extensions: ProgramExtensions, path: "prog.pl", want: true},
		{name: "other", extensions: ProgramExtensions, path: "prog.go", want: false},
		{name: "no filter", path: "anything.bin", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(".", tt.extensions...).IsTarget(tt.path))
		})
	}
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()
	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
