package egraph

import (
	"fmt"
	"strings"
)

// Pattern is a term template. A pattern with a non-empty Var is a
// matching slot; otherwise it matches nodes with operator Op whose
// children match Args.
type Pattern struct {
	Var  string
	Op   string
	Args []Pattern
}

func PVar(name string) Pattern {
	return Pattern{Var: name}
}

func PApply(op string, args ...Pattern) Pattern {
	return Pattern{Op: op, Args: args}
}

func (p Pattern) IsVar() bool {
	return p.Var != ""
}

// String renders p as an s-expression with "?" before variables.
func (p Pattern) String() string {
	if p.IsVar() {
		return "?" + p.Var
	}
	if len(p.Args) == 0 {
		return p.Op
	}
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, p.Op)
	for _, a := range p.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Vars returns the variables of p in first-occurrence order.
func (p Pattern) Vars() []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Pattern)
	walk = func(p Pattern) {
		if p.IsVar() {
			if !seen[p.Var] {
				seen[p.Var] = true
				out = append(out, p.Var)
			}
			return
		}
		for _, a := range p.Args {
			walk(a)
		}
	}
	walk(p)
	return out
}

// Binding maps one pattern variable to a class.
type Binding struct {
	Var string
	ID  ID
}

// Subst is a substitution. Bindings keep the order variables were bound
// in and every variable appears at most once.
type Subst []Binding

func (s Subst) Get(v string) (ID, bool) {
	for _, b := range s {
		if b.Var == v {
			return b.ID, true
		}
	}
	return 0, false
}

// Insert returns a copy of s with v bound to id, replacing an earlier
// binding of v.
func (s Subst) Insert(v string, id ID) Subst {
	out := make(Subst, 0, len(s)+1)
	for _, b := range s {
		if b.Var != v {
			out = append(out, b)
		}
	}
	return append(out, Binding{Var: v, ID: id})
}

func (s Subst) Clone() Subst {
	if s == nil {
		return nil
	}
	out := make(Subst, len(s))
	copy(out, s)
	return out
}

func (s Subst) String() string {
	parts := make([]string, len(s))
	for i, b := range s {
		parts[i] = fmt.Sprintf("?%s = %d", b.Var, b.ID)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SearchMatches groups the substitutions found at one class.
type SearchMatches struct {
	Class  ID
	Substs []Subst
}

// SearchClass matches p against the class of id.
func (g *EGraph) SearchClass(p Pattern, id ID) []Subst {
	return g.match(p, id, Subst{})
}

// Search matches p against every class, in ascending class order.
func (g *EGraph) Search(p Pattern) []SearchMatches {
	var out []SearchMatches
	for _, id := range g.ClassIDs() {
		if substs := g.SearchClass(p, id); len(substs) > 0 {
			out = append(out, SearchMatches{Class: id, Substs: substs})
		}
	}
	return out
}

func (g *EGraph) match(p Pattern, id ID, s Subst) []Subst {
	id = g.uf.find(id)
	if p.IsVar() {
		if bound, ok := s.Get(p.Var); ok {
			if g.uf.find(bound) == id {
				return []Subst{s}
			}
			return nil
		}
		return []Subst{s.Insert(p.Var, id)}
	}

	var out []Subst
	for _, n := range g.Nodes(id) {
		if n.Op != p.Op || len(n.Children) != len(p.Args) {
			continue
		}
		partial := []Subst{s}
		for i, arg := range p.Args {
			var next []Subst
			for _, ps := range partial {
				next = append(next, g.match(arg, n.Children[i], ps)...)
			}
			partial = next
			if len(partial) == 0 {
				break
			}
		}
		out = append(out, partial...)
	}
	return out
}

// Instantiate builds p under s, inserting any missing nodes.
func (g *EGraph) Instantiate(p Pattern, s Subst) (ID, error) {
	if p.IsVar() {
		id, ok := s.Get(p.Var)
		if !ok {
			return 0, fmt.Errorf("unbound pattern variable ?%s", p.Var)
		}
		return g.uf.find(id), nil
	}
	children := make([]ID, len(p.Args))
	for i, a := range p.Args {
		c, err := g.Instantiate(a, s)
		if err != nil {
			return 0, err
		}
		children[i] = c
	}
	return g.Add(Node{Op: p.Op, Children: children}), nil
}

// Lookup resolves p under s to a class without inserting anything. It
// reports false when some part of the instance is not in the graph.
func (g *EGraph) Lookup(p Pattern, s Subst) (ID, bool) {
	id, ok := g.lookupPattern(p, s)
	if !ok {
		return 0, false
	}
	return g.uf.find(id), true
}

// lookupPattern returns the node id (not the class) of the instance.
func (g *EGraph) lookupPattern(p Pattern, s Subst) (ID, bool) {
	if p.IsVar() {
		return s.Get(p.Var)
	}
	children := make([]ID, len(p.Args))
	for i, a := range p.Args {
		c, ok := g.lookupPattern(a, s)
		if !ok {
			return 0, false
		}
		children[i] = c
	}
	return g.lookupNode(Node{Op: p.Op, Children: children})
}

// Searcher finds the substitutions under which a rule fires.
type Searcher interface {
	Search(g *EGraph) []SearchMatches
	Vars() []string
}

// Applier adds the consequences of a rule for a set of matches. It
// returns the classes it changed.
type Applier interface {
	ApplyMatches(g *EGraph, matches []SearchMatches, rule string) ([]ID, error)
	Vars() []string
}

// PatternSearcher adapts a single Pattern to Searcher.
type PatternSearcher struct {
	Pattern Pattern
}

func (s PatternSearcher) Search(g *EGraph) []SearchMatches {
	return g.Search(s.Pattern)
}

func (s PatternSearcher) Vars() []string {
	return s.Pattern.Vars()
}

// PatternApplier instantiates Pattern and unions it with the matched
// class, the usual left-to-right rewrite.
type PatternApplier struct {
	Pattern Pattern
}

func (a PatternApplier) ApplyMatches(g *EGraph, matches []SearchMatches, rule string) ([]ID, error) {
	var changed []ID
	for _, m := range matches {
		for _, s := range m.Substs {
			id, err := g.Instantiate(a.Pattern, s)
			if err != nil {
				return changed, fmt.Errorf("rule %s: %w", rule, err)
			}
			if root, did := g.Union(m.Class, id, rule); did {
				changed = append(changed, root)
			}
		}
	}
	return changed, nil
}

func (a PatternApplier) Vars() []string {
	return a.Pattern.Vars()
}
