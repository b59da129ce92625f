package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/syntax"
)

func compileSource(t *testing.T, names NameGen, src string) (*Program, error) {
	t.Helper()
	entries, err := syntax.Parse(src)
	require.NoError(t, err)
	p := NewProgram(names)
	return p, p.AddAll(entries)
}

func runSource(t *testing.T, src string, limits egraph.Limits) *Result {
	t.Helper()
	p, err := compileSource(t, &Counter{}, src)
	require.NoError(t, err)
	res, err := Run(p, Options{Limits: limits})
	require.NoError(t, err)
	return res
}

func lookup(t *testing.T, g *egraph.EGraph, src string) (egraph.ID, bool) {
	t.Helper()
	term, err := syntax.ParseTerm(src)
	require.NoError(t, err)
	return g.Lookup(patternOf(term), nil)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		s1, s2 egraph.Subst
		want   egraph.Subst
		ok     bool
	}{
		{
			name: "disjoint keys",
			s1:   egraph.Subst{{Var: "X", ID: 1}},
			s2:   egraph.Subst{{Var: "Y", ID: 2}},
			want: egraph.Subst{{Var: "X", ID: 1}, {Var: "Y", ID: 2}},
			ok:   true,
		},
		{
			name: "shared key agrees",
			s1:   egraph.Subst{{Var: "X", ID: 1}, {Var: "Y", ID: 2}},
			s2:   egraph.Subst{{Var: "Y", ID: 2}, {Var: "Z", ID: 3}},
			want: egraph.Subst{{Var: "X", ID: 1}, {Var: "Y", ID: 2}, {Var: "Z", ID: 3}},
			ok:   true,
		},
		{
			name: "shared key conflicts",
			s1:   egraph.Subst{{Var: "X", ID: 1}},
			s2:   egraph.Subst{{Var: "X", ID: 2}},
			ok:   false,
		},
		{
			name: "empty sides",
			s1:   egraph.Subst{},
			s2:   egraph.Subst{{Var: "X", ID: 4}},
			want: egraph.Subst{{Var: "X", ID: 4}},
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Merge(tt.s1, tt.s2)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()
	left := []egraph.Subst{
		{{Var: "X", ID: 1}},
		{{Var: "X", ID: 2}},
	}
	right := []egraph.Subst{
		{{Var: "X", ID: 1}, {Var: "Y", ID: 3}},
		{{Var: "Y", ID: 4}},
	}

	got := Join(left, right)
	assert.Len(t, got, 3)
	assert.LessOrEqual(t, len(got), len(left)*len(right))
	for _, s := range got {
		found := false
		for _, s1 := range left {
			for _, s2 := range right {
				if m, ok := Merge(s1, s2); ok && assert.ObjectsAreEqual(m, s) {
					found = true
				}
			}
		}
		assert.True(t, found, "%v is not a merge of any pair", s)
	}

	assert.Empty(t, Join(nil, right))
	assert.Empty(t, Join(left, nil))
}

func TestMultiPatternVars(t *testing.T) {
	t.Parallel()
	mp := MultiPattern{Patterns: []EqPattern{
		EqualPattern(egraph.PApply("f", egraph.PVar("Y"), egraph.PVar("X")), egraph.PVar("Z")),
		BarePattern(egraph.PApply("g", egraph.PVar("X"), egraph.PVar("A"))),
		BarePattern(egraph.PVar("Y")),
	}}
	assert.Equal(t, []string{"A", "X", "Y", "Z"}, mp.Vars())

	reversed := MultiPattern{Patterns: []EqPattern{mp.Patterns[2], mp.Patterns[1], mp.Patterns[0]}}
	assert.Equal(t, mp.Vars(), reversed.Vars())
}

func TestEqualityQuery(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
f(a, b) = f(a, b).
?- f(a, b) = X.
`, egraph.Limits{})

	require.Len(t, res.Answers, 1)
	require.Len(t, res.Answers[0], 1)
	id, ok := res.Answers[0][0].Get("X")
	require.True(t, ok)
	assert.Equal(t, "(f a b)", res.Extract(id).String())
}

func TestMultiPatternJoinsAcrossClasses(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
parent(alice, bob). parent(bob, carol). parent(bob, dave).
?- parent(X, Y), parent(Y, Z).
`, egraph.Limits{})

	require.Len(t, res.Answers, 1)
	var got []string
	for _, s := range res.Answers[0] {
		x, _ := s.Get("X")
		z, _ := s.Get("Z")
		got = append(got, res.Extract(x).String()+"->"+res.Extract(z).String())
	}
	assert.ElementsMatch(t, []string{"alice->carol", "alice->dave"}, got)
}

func TestForallEqualityAxiom(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
axiom fg : forall x, f(x) = g(x).
c.
f(c).
g(c).
`, egraph.Limits{})

	fc, ok := lookup(t, res.Graph, "f(c)")
	require.True(t, ok)
	gc, ok := lookup(t, res.Graph, "g(c)")
	require.True(t, ok)
	assert.Equal(t, fc, gc)
	assert.Equal(t, egraph.Saturated, res.Report.Stop)
}

func TestImplicationAxiom(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
axiom trans : forall x y z, (le(x, y) /\ le(y, z)) => le(x, z).
le(a, b). le(b, c).
?- le(a, c).
?- le(c, a).
`, egraph.Limits{})

	require.Len(t, res.Answers, 2)
	assert.Len(t, res.Answers[0], 1)
	assert.Empty(t, res.Answers[1])
}

func TestConditionalRewrite(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
f(X) <- g(X) :- p(X) = q(X).
g(a). g(b).
p(a) = q(a).
p(b). q(b).
`, egraph.Limits{})

	fa, ok := lookup(t, res.Graph, "f(a)")
	require.True(t, ok, "condition holds for a")
	ga, ok := lookup(t, res.Graph, "g(a)")
	require.True(t, ok)
	assert.Equal(t, fa, ga)

	_, ok = lookup(t, res.Graph, "f(b)")
	assert.False(t, ok, "condition does not hold for b")
}

func TestClauseInsertsWithoutMerging(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
q(X) :- p(X).
p(a).
?- q(a).
`, egraph.Limits{})

	require.Len(t, res.Answers[0], 1)
	qa, ok := lookup(t, res.Graph, "q(a)")
	require.True(t, ok)
	pa, ok := lookup(t, res.Graph, "p(a)")
	require.True(t, ok)
	assert.NotEqual(t, qa, pa)
}

func TestBiRewrite(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
plus(X, Y) <-> plus(Y, X).
plus(one, two).
?- plus(two, one) = plus(one, two).
`, egraph.Limits{})
	assert.Len(t, res.Answers[0], 1)
}

func TestSkolemizedGoal(t *testing.T) {
	t.Parallel()
	names := &Counter{}
	p, err := compileSource(t, names, `goal exists y, forall x, p(x, y).`)
	require.NoError(t, err)
	require.Len(t, p.Queries, 1)
	assert.Equal(t, "(p x!1 ?y)", p.Queries[0].String())
	assert.Equal(t, []string{"y"}, p.Queries[0].Vars())

	again, err := compileSource(t, names, `goal exists y, forall x, p(x, y) = q(x).`)
	require.NoError(t, err)
	assert.Equal(t, "(p x!2 ?y) = (q x!2)", again.Queries[0].String())
}

func TestSkolemShadowing(t *testing.T) {
	t.Parallel()
	p, err := compileSource(t, &Counter{}, `goal forall x, exists x, p(x).`)
	require.NoError(t, err)
	assert.Equal(t, "(p ?x)", p.Queries[0].String())
}

func TestDefaultNamesAreNeverReused(t *testing.T) {
	t.Parallel()
	a := DefaultNames.Fresh("x")
	b := DefaultNames.Fresh("x")
	assert.NotEqual(t, a, b)
}

func TestBudgetExhausted(t *testing.T) {
	t.Parallel()

	t.Run("growing clause", func(t *testing.T) {
		res := runSource(t, `
p(s(X)) :- p(X).
p(z).
?- p(s(s(z))).
`, egraph.Limits{Iterations: 5, Nodes: 10_000})
		assert.Equal(t, egraph.IterationLimit, res.Report.Stop)
		assert.Len(t, res.Answers[0], 1, "partial results are still reported")
	})

	t.Run("unoriented associativity", func(t *testing.T) {
		res := runSource(t, `
plus(X, plus(Y, Z)) <-> plus(plus(X, Y), Z).
plus(X, Y) <-> plus(Y, X).
plus(a, plus(b, plus(c, plus(d, plus(e, f))))).
`, egraph.Limits{Iterations: 30, Nodes: 200})
		assert.NotEqual(t, egraph.Saturated, res.Report.Stop)
	})
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	t.Run("disjunction in axiom", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom pq : forall x, (p(x) \/ q(x)).`)
		var shape *UnsupportedShapeError
		require.True(t, errors.As(err, &shape), "got %v", err)
		assert.Equal(t, "Disj", shape.Construct)
		assert.Equal(t, "axiom pq > forall", shape.Path)
	})

	t.Run("unguarded exists in axiom", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom ex : exists x, p(x).`)
		var shape *UnsupportedShapeError
		require.True(t, errors.As(err, &shape))
		assert.Equal(t, "Exists", shape.Construct)
	})

	t.Run("nested implication", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom nest : forall x, (p(x) => q(x)) => r(x).`)
		var shape *UnsupportedShapeError
		require.True(t, errors.As(err, &shape))
		assert.Equal(t, "Impl", shape.Construct)
		assert.Equal(t, "axiom nest > forall > impl.hyp", shape.Path)
	})

	t.Run("disjunction in conclusion conjunct", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom c : forall x, p(x) => (q(x) /\ (r(x) \/ s(x))).`)
		var shape *UnsupportedShapeError
		require.True(t, errors.As(err, &shape))
		assert.Equal(t, "Disj", shape.Construct)
		assert.Equal(t, "axiom c > forall > impl.conc > conj[1]", shape.Path)
	})

	t.Run("unquantified variable", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom bad : f(X) = g(X).`)
		var ng *NonGroundError
		require.True(t, errors.As(err, &ng))
		assert.Equal(t, "X", ng.Var)
		assert.Contains(t, ng.Error(), "f(X) = g(X)")
	})

	t.Run("universal bare atom", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom all : forall x, p(x).`)
		var ng *NonGroundError
		require.True(t, errors.As(err, &ng))
		assert.Equal(t, "x", ng.Var)
	})

	t.Run("equality with uncovered sides", func(t *testing.T) {
		_, err := compileSource(t, nil, `axiom split : forall x y, f(x) = g(y).`)
		var ng *NonGroundError
		require.True(t, errors.As(err, &ng))
	})

	t.Run("unbound head variable", func(t *testing.T) {
		_, err := compileSource(t, nil, `q(X, Y) :- p(X).`)
		var rc *RuleCompileError
		require.True(t, errors.As(err, &rc))
		assert.Contains(t, rc.Msg, "?Y")
	})

	t.Run("duplicate rule", func(t *testing.T) {
		_, err := compileSource(t, nil, "q(X) :- p(X).\nq(X) :- p(X).")
		var rc *RuleCompileError
		require.True(t, errors.As(err, &rc))
	})

	t.Run("disjunctive goal", func(t *testing.T) {
		_, err := compileSource(t, nil, `goal p(a) \/ q(a).`)
		var shape *UnsupportedShapeError
		require.True(t, errors.As(err, &shape))
		assert.Equal(t, "Disj", shape.Construct)
	})
}

func TestAxiomRuleNames(t *testing.T) {
	t.Parallel()
	p, err := compileSource(t, nil, `
axiom one : forall x, f(x) = c.
axiom both : forall x, f(x) = g(x).
`)
	require.NoError(t, err)
	var names []string
	for _, r := range p.Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"one", "both#1", "both#2"}, names)
}

func TestEnvIsNotShared(t *testing.T) {
	t.Parallel()
	base := NewEnv().WithFresh("x")
	left := base.WithFresh("y")
	right := base.WithMeta("x")

	assert.True(t, base.IsFresh("x"))
	assert.False(t, base.IsFresh("y"))
	assert.True(t, left.IsFresh("y"))
	assert.False(t, right.IsFresh("x"))
	assert.True(t, right.IsMeta("x"))
}

func TestExplainProof(t *testing.T) {
	t.Parallel()
	res := runSource(t, `
a = b.
b = c.
?- a = c.
`, egraph.Limits{})

	require.Len(t, res.Answers[0], 1)
	lines := res.Explain(0, res.Answers[0][0])
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].Left)
	assert.Equal(t, "c", lines[0].Right)
	assert.Equal(t, "a =[fact]=> b =[fact]=> c", lines[0].Justification)
}
