package engine

import (
	"fmt"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/syntax"
)

type pendingRule struct {
	searcher egraph.Searcher
	applier  egraph.Applier
}

// axiomCompiler turns one axiom into facts and rules. Rules are held
// back until the whole axiom compiled so they can be named together.
type axiomCompiler struct {
	prog  *Program
	name  string
	rules []pendingRule
}

func (p *Program) compileAxiom(name string, f syntax.Formula) error {
	c := &axiomCompiler{prog: p, name: name}
	if err := c.compile(NewEnv(), f, path{"axiom " + name}); err != nil {
		return err
	}
	for i, r := range c.rules {
		ruleName := name
		if len(c.rules) > 1 {
			ruleName = fmt.Sprintf("%s#%d", name, i+1)
		}
		if err := p.addRule(ruleName, r.searcher, r.applier); err != nil {
			return err
		}
	}
	return nil
}

func (c *axiomCompiler) compile(env Env, f syntax.Formula, at path) error {
	switch f := f.(type) {
	case syntax.Atom:
		return c.atom(env, f.Eq, at)
	case syntax.Conj:
		for i, item := range f.Items {
			if err := c.compile(env, item, at.with(fmt.Sprintf("conj[%d]", i))); err != nil {
				return err
			}
		}
		return nil
	case syntax.ForAll:
		return c.compile(env.WithFresh(f.Vars...), f.Body, at.with("forall"))
	case syntax.Impl:
		return c.impl(env, f, at)
	default:
		// Disj, and Exists with no enclosing rule to guard it
		return unsupported(f, at)
	}
}

// atom compiles a top-level atom. A ground atom is a fact. An equality
// over bound variables becomes a rewrite in each direction whose left
// side binds every variable of its right side.
func (c *axiomCompiler) atom(env Env, eq syntax.EqTerm, at path) error {
	r, err := resolveAxiomAtom(env, eq, at)
	if err != nil {
		return err
	}

	l, lok := syntax.Ground(r.Left)
	rr, rok := l, lok
	if r.Kind == syntax.WrapEq {
		rr, rok = syntax.Ground(r.Right)
	}
	if lok && rok {
		c.prog.Facts = append(c.prog.Facts, Fact{Left: l, Right: rr, Reason: "axiom " + c.name})
		return nil
	}

	if r.Kind == syntax.WrapBare {
		return &NonGroundError{Term: eq.String(), Var: syntax.FreeVars(r.Left)[0], Path: at.String()}
	}

	lp, rp := patternOf(r.Left), patternOf(r.Right)
	lv, rv := lp.Vars(), rp.Vars()
	forward := covers(lv, rv)
	backward := covers(rv, lv)
	switch {
	case forward && backward:
		c.rules = append(c.rules,
			pendingRule{egraph.PatternSearcher{Pattern: lp}, egraph.PatternApplier{Pattern: rp}},
			pendingRule{egraph.PatternSearcher{Pattern: rp}, egraph.PatternApplier{Pattern: lp}},
		)
	case forward:
		c.rules = append(c.rules, pendingRule{egraph.PatternSearcher{Pattern: lp}, egraph.PatternApplier{Pattern: rp}})
	case backward:
		c.rules = append(c.rules, pendingRule{egraph.PatternSearcher{Pattern: rp}, egraph.PatternApplier{Pattern: lp}})
	default:
		return &NonGroundError{Term: eq.String(), Var: firstMissing(lv, rv), Path: at.String()}
	}
	return nil
}

// impl compiles hyp => conc into one rule: the hypotheses are joined as
// the searcher and every conclusion is asserted by the applier.
func (c *axiomCompiler) impl(env Env, f syntax.Impl, at path) error {
	hyps, err := c.atoms(env, f.Hyp, at.with("impl.hyp"))
	if err != nil {
		return err
	}
	concs, err := c.atoms(env, f.Conc, at.with("impl.conc"))
	if err != nil {
		return err
	}
	c.rules = append(c.rules, pendingRule{
		searcher: MultiPattern{Patterns: hyps},
		applier:  MultiPattern{Patterns: concs},
	})
	return nil
}

// atoms accepts an Atom or a Conj of Atoms only.
func (c *axiomCompiler) atoms(env Env, f syntax.Formula, at path) ([]EqPattern, error) {
	var items []syntax.Formula
	switch f := f.(type) {
	case syntax.Atom:
		items = []syntax.Formula{f}
	case syntax.Conj:
		items = f.Items
	default:
		return nil, unsupported(f, at)
	}

	out := make([]EqPattern, 0, len(items))
	for i, item := range items {
		a, ok := item.(syntax.Atom)
		if !ok {
			return nil, unsupported(item, at.with(fmt.Sprintf("conj[%d]", i)))
		}
		r, err := resolveAxiomAtom(env, a.Eq, at)
		if err != nil {
			return nil, err
		}
		out = append(out, eqPatternOf(r))
	}
	return out, nil
}

func resolveAxiomAtom(env Env, eq syntax.EqTerm, at path) (syntax.EqTerm, error) {
	var unbound []string
	r := syntax.MapWrap(eq, func(t syntax.Term) syntax.Term {
		return resolve(t, env.IsFresh, &unbound)
	})
	if len(unbound) > 0 {
		return r, &NonGroundError{Term: eq.String(), Var: unbound[0], Path: at.String()}
	}
	return r, nil
}

// compileGoal turns a goal into queries. Universal variables are replaced
// by fresh constants; existential ones become query variables.
func (p *Program) compileGoal(env Env, f syntax.Formula, at path) error {
	switch f := f.(type) {
	case syntax.Atom:
		p.Queries = append(p.Queries, MultiPattern{Patterns: []EqPattern{resolveGoalAtom(env, f.Eq)}})
		return nil
	case syntax.Conj:
		patterns := make([]EqPattern, 0, len(f.Items))
		for i, item := range f.Items {
			a, ok := item.(syntax.Atom)
			if !ok {
				return unsupported(item, at.with(fmt.Sprintf("conj[%d]", i)))
			}
			patterns = append(patterns, resolveGoalAtom(env, a.Eq))
		}
		p.Queries = append(p.Queries, MultiPattern{Patterns: patterns})
		return nil
	case syntax.Exists:
		return p.compileGoal(env.WithMeta(f.Vars...), f.Body, at.with("exists"))
	case syntax.ForAll:
		return p.compileGoal(env, skolemize(f.Vars, f.Body, p.names), at.with("forall"))
	default:
		return unsupported(f, at)
	}
}

// resolveGoalAtom keeps explicit variables as query variables.
func resolveGoalAtom(env Env, eq syntax.EqTerm) EqPattern {
	return eqPatternOf(syntax.MapWrap(eq, func(t syntax.Term) syntax.Term {
		return resolve(t, env.IsMeta, nil)
	}))
}

// skolemize replaces every free occurrence of vars in f by a fresh
// constant, one per variable.
func skolemize(vars []string, f syntax.Formula, names NameGen) syntax.Formula {
	fresh := make(map[string]string, len(vars))
	for _, v := range vars {
		if _, ok := fresh[v]; !ok {
			fresh[v] = names.Fresh(v)
		}
	}
	active := make(map[string]bool, len(vars))
	for _, v := range vars {
		active[v] = true
	}
	return renameFormula(f, fresh, active)
}

func renameFormula(f syntax.Formula, fresh map[string]string, active map[string]bool) syntax.Formula {
	if len(active) == 0 {
		return f
	}
	switch f := f.(type) {
	case syntax.Atom:
		return syntax.Atom{Eq: syntax.MapWrap(f.Eq, func(t syntax.Term) syntax.Term {
			return renameTerm(t, fresh, active)
		})}
	case syntax.Conj:
		return syntax.Conj{Items: renameAll(f.Items, fresh, active)}
	case syntax.Disj:
		return syntax.Disj{Items: renameAll(f.Items, fresh, active)}
	case syntax.Impl:
		return syntax.Impl{Hyp: renameFormula(f.Hyp, fresh, active), Conc: renameFormula(f.Conc, fresh, active)}
	case syntax.ForAll:
		return syntax.ForAll{Vars: f.Vars, Body: renameFormula(f.Body, fresh, shadow(active, f.Vars))}
	case syntax.Exists:
		return syntax.Exists{Vars: f.Vars, Body: renameFormula(f.Body, fresh, shadow(active, f.Vars))}
	default:
		return f
	}
}

func renameAll(fs []syntax.Formula, fresh map[string]string, active map[string]bool) []syntax.Formula {
	out := make([]syntax.Formula, len(fs))
	for i, f := range fs {
		out[i] = renameFormula(f, fresh, active)
	}
	return out
}

func renameTerm(t syntax.Term, fresh map[string]string, active map[string]bool) syntax.Term {
	switch t := t.(type) {
	case syntax.Var:
		if active[t.Name] {
			return syntax.Const(fresh[t.Name])
		}
		return t
	case syntax.Apply:
		if len(t.Args) == 0 {
			if active[t.Head] {
				return syntax.Const(fresh[t.Head])
			}
			return t
		}
		args := make([]syntax.Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = renameTerm(a, fresh, active)
		}
		return syntax.Apply{Head: t.Head, Args: args}
	default:
		return t
	}
}

func shadow(active map[string]bool, vars []string) map[string]bool {
	out := make(map[string]bool, len(active))
	for k := range active {
		out[k] = true
	}
	for _, v := range vars {
		delete(out, v)
	}
	return out
}

func unsupported(f syntax.Formula, at path) *UnsupportedShapeError {
	return &UnsupportedShapeError{Construct: constructName(f), Path: at.String(), Formula: f.String()}
}

func constructName(f syntax.Formula) string {
	switch f.(type) {
	case syntax.Impl:
		return "Impl"
	case syntax.Conj:
		return "Conj"
	case syntax.Disj:
		return "Disj"
	case syntax.ForAll:
		return "ForAll"
	case syntax.Exists:
		return "Exists"
	case syntax.Atom:
		return "Atom"
	default:
		return fmt.Sprintf("%T", f)
	}
}

// covers reports whether every name in want appears in have.
func covers(have, want []string) bool {
	return firstMissing(have, want) == ""
}

func firstMissing(have, want []string) string {
	set := make(map[string]bool, len(have))
	for _, v := range have {
		set[v] = true
	}
	for _, v := range want {
		if !set[v] {
			return v
		}
	}
	return ""
}
