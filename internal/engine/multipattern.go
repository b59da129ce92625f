package engine

import (
	"sort"
	"strings"

	"github.com/gnolang/eqlog/internal/egraph"
)

// MultiPattern is the conjunction of its patterns. Order changes only
// the cost of a search, never its result.
type MultiPattern struct {
	Patterns []EqPattern
}

func (m MultiPattern) String() string {
	parts := make([]string, len(m.Patterns))
	for i, p := range m.Patterns {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// SearchClass anchors the first pattern at the class of id and joins the
// global matches of every later pattern.
func (m MultiPattern) SearchClass(g *egraph.EGraph, id egraph.ID) []egraph.Subst {
	if len(m.Patterns) == 0 {
		return nil
	}
	return m.joinRest(m.Patterns[0].SearchClass(g, id), m.restMatches(g))
}

// Search tries every class as the anchor. The global matches of the
// non-anchored patterns are computed once and shared by every anchor.
func (m MultiPattern) Search(g *egraph.EGraph) []egraph.SearchMatches {
	if len(m.Patterns) == 0 {
		return nil
	}
	rest := m.restMatches(g)
	var out []egraph.SearchMatches
	for _, id := range g.ClassIDs() {
		anchored := m.Patterns[0].SearchClass(g, id)
		if len(anchored) == 0 {
			continue
		}
		if substs := m.joinRest(anchored, rest); len(substs) > 0 {
			out = append(out, egraph.SearchMatches{Class: id, Substs: substs})
		}
	}
	return out
}

func (m MultiPattern) restMatches(g *egraph.EGraph) [][]egraph.Subst {
	rest := make([][]egraph.Subst, 0, len(m.Patterns)-1)
	for _, p := range m.Patterns[1:] {
		var all []egraph.Subst
		for _, sm := range p.Search(g) {
			all = append(all, sm.Substs...)
		}
		rest = append(rest, all)
	}
	return rest
}

func (m MultiPattern) joinRest(substs []egraph.Subst, rest [][]egraph.Subst) []egraph.Subst {
	for _, r := range rest {
		if len(substs) == 0 {
			return nil
		}
		substs = Join(substs, r)
	}
	return substs
}

// Vars is the sorted, duplicate-free union of every pattern's variables.
func (m MultiPattern) Vars() []string {
	seen := make(map[string]bool)
	var vars []string
	for _, p := range m.Patterns {
		for _, v := range p.Vars() {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	sort.Strings(vars)
	return vars
}

// ApplyMatches applies every pattern, in order, to every match.
func (m MultiPattern) ApplyMatches(g *egraph.EGraph, matches []egraph.SearchMatches, rule string) ([]egraph.ID, error) {
	var changed []egraph.ID
	for _, p := range m.Patterns {
		ids, err := p.apply(g, matches, rule)
		changed = append(changed, ids...)
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}
