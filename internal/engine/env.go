package engine

import "github.com/gnolang/eqlog/internal/syntax"

// Env records which names are bound while compiling a formula. Fresh
// names come from forall in axioms and become rule variables; meta names
// come from exists in goals and become query variables. The two sets are
// disjoint. An Env is never modified: the With methods return copies.
type Env struct {
	fresh map[string]struct{}
	meta  map[string]struct{}
}

func NewEnv() Env {
	return Env{}
}

// WithFresh returns a copy of e with names bound as rule variables.
func (e Env) WithFresh(names ...string) Env {
	return Env{fresh: extend(e.fresh, names), meta: without(e.meta, names)}
}

// WithMeta returns a copy of e with names bound as query variables.
func (e Env) WithMeta(names ...string) Env {
	return Env{fresh: without(e.fresh, names), meta: extend(e.meta, names)}
}

func (e Env) IsFresh(name string) bool {
	_, ok := e.fresh[name]
	return ok
}

func (e Env) IsMeta(name string) bool {
	_, ok := e.meta[name]
	return ok
}

func extend(set map[string]struct{}, names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(set)+len(names))
	for k := range set {
		out[k] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func without(set map[string]struct{}, names []string) map[string]struct{} {
	if len(set) == 0 {
		return set
	}
	out := make(map[string]struct{}, len(set))
	for k := range set {
		out[k] = struct{}{}
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// resolve turns constants named by a bound variable into variables.
// Explicit variables are kept and reported through unbound when bound
// rejects them.
func resolve(t syntax.Term, bound func(string) bool, unbound *[]string) syntax.Term {
	switch t := t.(type) {
	case syntax.Var:
		if unbound != nil && !bound(t.Name) {
			*unbound = append(*unbound, t.Name)
		}
		return t
	case syntax.Apply:
		if len(t.Args) == 0 {
			if bound(t.Head) {
				return syntax.Var{Name: t.Head}
			}
			return t
		}
		args := make([]syntax.Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = resolve(a, bound, unbound)
		}
		return syntax.Apply{Head: t.Head, Args: args}
	default:
		return t
	}
}
