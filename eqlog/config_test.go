package eqlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/eqlog/internal/engine"
	"github.com/gnolang/eqlog/internal/syntax"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".eqlog.yaml": `
name: arith
limits:
  iterations: 12
  time: 250ms
proof: true
rules:
  - name: add-zero
    lhs: X
    rhs: plus(X, zero)
  - name: comm
    lhs: plus(X, Y)
    rhs: plus(Y, X)
    bidirectional: true
  - lhs: f(X)
    rhs: g(X)
    conditions:
      - p(X) = q(X)
`})

	cfg, err := LoadConfig(filepath.Join(dir, ".eqlog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "arith", cfg.Name)
	assert.Equal(t, LimitsConfig{Iterations: 12, Time: 250 * time.Millisecond}, cfg.Limits)
	assert.True(t, cfg.Proof)
	require.Len(t, cfg.Rules, 3)

	entries, err := cfg.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "X <- plus(X, zero).", entries[0].String())
	assert.IsType(t, syntax.BiRewrite{}, entries[1])
	assert.Equal(t, "f(X) <- g(X) :- p(X) = q(X).", entries[2].String())

	limits := cfg.limits(Limits{Nodes: 50})
	assert.Equal(t, Limits{Iterations: 12, Nodes: 50, Time: 250 * time.Millisecond}, limits)
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		rule RuleConfig
		msg  string
	}{
		{name: "bad lhs", rule: RuleConfig{Name: "r", Lhs: "f(", Rhs: "a"}, msg: "rule r: lhs"},
		{name: "bad condition", rule: RuleConfig{Lhs: "a", Rhs: "b", Conditions: []string{"p(a"}}, msg: "rules[0]: condition"},
		{
			name: "conditional birewrite",
			rule: RuleConfig{Name: "c", Lhs: "a", Rhs: "b", Bidirectional: true, Conditions: []string{"p = q"}},
			msg:  "cannot have conditions",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Config{Rules: []RuleConfig{tt.rule}}.Entries()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, WriteConfig(path, DefaultConfig()))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestEngineUsesConfiguredRules(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Rules = []RuleConfig{{Name: "comm", Lhs: "plus(X, Y)", Rhs: "plus(Y, X)"}}

	e, err := NewEngine(cfg, Options{})
	require.NoError(t, err)

	out, err := e.RunSource([]byte("plus(a, b).\n?- plus(b, a) = plus(a, b)."))
	require.NoError(t, err)
	assert.Equal(t, "-? (plus b a) = (plus a b)\n[];\n", out.Report)
	assert.Equal(t, Saturated, out.Stop)
	assert.Equal(t, 1, out.Queries)
	assert.Equal(t, 1, out.Answered)

	t.Run("name clash with the program", func(t *testing.T) {
		_, err := e.RunSource([]byte("axiom comm : forall x, f(x) = c."))
		var rerr *engine.RuleCompileError
		assert.ErrorAs(t, err, &rerr)
	})
}

func TestNewFromConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"cfg.yaml": "name: tiny\nlimits:\n  iterations: 2\n",
		"grow.eql": "p(s(X)) :- p(X).\np(z).",
	})

	e, err := New(filepath.Join(dir, "cfg.yaml"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "tiny", e.Config().Name)

	out, err := e.RunFile(filepath.Join(dir, "grow.eql"))
	require.NoError(t, err)
	assert.Equal(t, IterationLimit, out.Stop)
	assert.Equal(t, 2, out.Iterations)
}
