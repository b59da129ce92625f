package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/eqlog/eqlog"
)

func TestMain(m *testing.M) {
	logger = zap.NewNop()
	eqlog.ProgressOutput = io.Discard
	os.Exit(m.Run())
}

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunProgramsStdin(t *testing.T) {
	engine, err := eqlog.NewEngine(eqlog.DefaultConfig(), eqlog.Options{})
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	err = runPrograms(context.Background(), strings.NewReader("p(a).\n?- p(X)."), &out, &errOut, engine, nil)
	require.NoError(t, err)
	assert.Equal(t, "-? (p ?X)\n[?X = a];\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	err = runPrograms(context.Background(), strings.NewReader("p(X)."), &out, &errOut, engine, nil)
	assert.Error(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "error: parse error")
	assert.Contains(t, errOut.String(), "--> <stdin>:1:")
}

func TestRunProgramsFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeProgram(t, dir, "good.eql", "p(a).\n?- p(X).")
	bad := writeProgram(t, dir, "bad.eql", "p(a).\nq(X) :- p(X), r(Y)")

	engine, err := eqlog.NewEngine(eqlog.DefaultConfig(), eqlog.Options{})
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	err = runPrograms(context.Background(), nil, &out, &errOut, engine, []string{good, bad})
	require.EqualError(t, err, "1 of 2 programs failed")

	assert.Equal(t, "% "+good+"\n-? (p ?X)\n[?X = a];\n% "+bad+"\n", out.String())
	assert.Contains(t, errOut.String(), "--> "+bad+":2:")
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "chain.eql", "a = b.\nb = c.\n?- a = c.")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "run subcommand",
			args: []string{"run", path},
			want: "-? a = c\n[];\n",
		},
		{
			name: "paths without a subcommand",
			args: []string{"--proof", path},
			want: "-? a = c\n[];\nProof a = c: a =[fact]=> b =[fact]=> c\n",
		},
		{
			name: "limit flags",
			args: []string{"run", "--iter-limit", "1", path},
			want: "-? a = c\n[];\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() {
				proof, iterLimit = false, 0
			})
			var out bytes.Buffer
			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(&out)
			rootCmd.SetErr(io.Discard)
			require.NoError(t, rootCmd.Execute())
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestInitConfigurationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	got, err := initConfigurationFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := eqlog.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, eqlog.DefaultConfig(), cfg)

	_, err = initConfigurationFile(path, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = initConfigurationFile(path, true)
	assert.NoError(t, err)
}

func TestNeedsMore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "complete fact", input: "p(a).", want: false},
		{name: "missing dot", input: "p(a)", want: true},
		{name: "open paren", input: "p(a,\n", want: true},
		{name: "second line completes", input: "p(a,\nb).", want: false},
		{name: "unterminated comment", input: "/* note", want: true},
		{name: "hard error", input: "p(a)) .", want: false},
		{name: "command", input: ":quit", want: false},
		{name: "blank", input: "  ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, needsMore(tt.input))
		})
	}
}
