package engine

import (
	"fmt"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/syntax"
)

// EqPattern is a pattern that is either bare or an equality between two
// patterns. An equality matches when both sides match in the same class.
type EqPattern struct {
	Kind  syntax.WrapKind
	Left  egraph.Pattern
	Right egraph.Pattern
}

func BarePattern(p egraph.Pattern) EqPattern {
	return EqPattern{Kind: syntax.WrapBare, Left: p}
}

func EqualPattern(l, r egraph.Pattern) EqPattern {
	return EqPattern{Kind: syntax.WrapEq, Left: l, Right: r}
}

func (p EqPattern) String() string {
	if p.Kind == syntax.WrapEq {
		return fmt.Sprintf("%s = %s", p.Left, p.Right)
	}
	return p.Left.String()
}

// SearchClass returns the substitutions under which p holds at the class
// of id.
func (p EqPattern) SearchClass(g *egraph.EGraph, id egraph.ID) []egraph.Subst {
	switch p.Kind {
	case syntax.WrapBare:
		return g.SearchClass(p.Left, id)
	case syntax.WrapEq:
		left := g.SearchClass(p.Left, id)
		if len(left) == 0 {
			return nil
		}
		right := g.SearchClass(p.Right, id)
		if len(right) == 0 {
			return nil
		}
		return Join(left, right)
	default:
		return nil
	}
}

// Search runs SearchClass on every class in ascending class order.
func (p EqPattern) Search(g *egraph.EGraph) []egraph.SearchMatches {
	var out []egraph.SearchMatches
	for _, id := range g.ClassIDs() {
		if substs := p.SearchClass(g, id); len(substs) > 0 {
			out = append(out, egraph.SearchMatches{Class: id, Substs: substs})
		}
	}
	return out
}

// Vars returns the variables of both sides in first-occurrence order.
func (p EqPattern) Vars() []string {
	vars := p.Left.Vars()
	if p.Kind != syntax.WrapEq {
		return vars
	}
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		seen[v] = true
	}
	for _, v := range p.Right.Vars() {
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	return vars
}

// apply asserts p for every match. A bare pattern is only inserted and
// never reported as a change; an equality is inserted on both sides and
// the two classes are merged.
func (p EqPattern) apply(g *egraph.EGraph, matches []egraph.SearchMatches, rule string) ([]egraph.ID, error) {
	var changed []egraph.ID
	for _, m := range matches {
		for _, s := range m.Substs {
			switch p.Kind {
			case syntax.WrapBare:
				if _, err := g.Instantiate(p.Left, s); err != nil {
					return changed, err
				}
			case syntax.WrapEq:
				l, err := g.Instantiate(p.Left, s)
				if err != nil {
					return changed, err
				}
				r, err := g.Instantiate(p.Right, s)
				if err != nil {
					return changed, err
				}
				if root, did := g.Union(l, r, rule); did {
					changed = append(changed, root)
				}
			}
		}
	}
	return changed, nil
}

// patternOf converts a term into a pattern; variables become slots.
func patternOf(t syntax.Term) egraph.Pattern {
	switch t := t.(type) {
	case syntax.Var:
		return egraph.PVar(t.Name)
	case syntax.Apply:
		args := make([]egraph.Pattern, len(t.Args))
		for i, a := range t.Args {
			args[i] = patternOf(a)
		}
		if len(args) == 0 {
			args = nil
		}
		return egraph.Pattern{Op: t.Head, Args: args}
	default:
		return egraph.Pattern{}
	}
}

func eqPatternOf(t syntax.EqTerm) EqPattern {
	if t.Kind == syntax.WrapEq {
		return EqualPattern(patternOf(t.Left), patternOf(t.Right))
	}
	return BarePattern(patternOf(t.Left))
}

// exprOf converts a ground term for insertion.
func exprOf(t syntax.GroundTerm) egraph.Expr {
	e := egraph.Expr{Op: t.Head}
	for _, a := range t.Args {
		e.Args = append(e.Args, exprOf(a))
	}
	return e
}
