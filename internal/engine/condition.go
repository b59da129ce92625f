package engine

import (
	"strings"

	"github.com/gnolang/eqlog/internal/egraph"
)

// Condition holds for a substitution when both sides already exist in
// the graph and are in the same class. Checking never inserts.
type Condition struct {
	Left  egraph.Pattern
	Right egraph.Pattern
}

func (c Condition) Check(g *egraph.EGraph, s egraph.Subst) bool {
	l, ok := g.Lookup(c.Left, s)
	if !ok {
		return false
	}
	r, ok := g.Lookup(c.Right, s)
	if !ok {
		return false
	}
	return l == r
}

func (c Condition) String() string {
	return c.Left.String() + " = " + c.Right.String()
}

// ConditionalApplier runs Applier only for substitutions that satisfy
// every condition.
type ConditionalApplier struct {
	Conditions []Condition
	Applier    egraph.Applier
}

func (a ConditionalApplier) ApplyMatches(g *egraph.EGraph, matches []egraph.SearchMatches, rule string) ([]egraph.ID, error) {
	if len(a.Conditions) == 0 {
		return a.Applier.ApplyMatches(g, matches, rule)
	}
	var kept []egraph.SearchMatches
	for _, m := range matches {
		var substs []egraph.Subst
		for _, s := range m.Substs {
			if a.holds(g, s) {
				substs = append(substs, s)
			}
		}
		if len(substs) > 0 {
			kept = append(kept, egraph.SearchMatches{Class: m.Class, Substs: substs})
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return a.Applier.ApplyMatches(g, kept, rule)
}

func (a ConditionalApplier) holds(g *egraph.EGraph, s egraph.Subst) bool {
	for _, c := range a.Conditions {
		if !c.Check(g, s) {
			return false
		}
	}
	return true
}

// Vars covers the applier and every condition.
func (a ConditionalApplier) Vars() []string {
	vars := a.Applier.Vars()
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		seen[v] = true
	}
	for _, c := range a.Conditions {
		for _, p := range []egraph.Pattern{c.Left, c.Right} {
			for _, v := range p.Vars() {
				if !seen[v] {
					seen[v] = true
					vars = append(vars, v)
				}
			}
		}
	}
	return vars
}

func joinConditions(cs []Condition) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
