package engine

import "github.com/gnolang/eqlog/internal/egraph"

// Merge combines two substitutions. It fails when a variable bound in
// both maps to different classes; otherwise the result holds every
// binding of s1 followed by the new bindings of s2.
func Merge(s1, s2 egraph.Subst) (egraph.Subst, bool) {
	out := make(egraph.Subst, len(s1), len(s1)+len(s2))
	copy(out, s1)
	for _, b := range s2 {
		if id, ok := s1.Get(b.Var); ok {
			if id != b.ID {
				return nil, false
			}
			continue
		}
		out = append(out, b)
	}
	return out, true
}

// Join is the nested-loop equi-join of two substitution sets on their
// shared variables. It is evaluated eagerly.
func Join(left, right []egraph.Subst) []egraph.Subst {
	var out []egraph.Subst
	for _, s1 := range left {
		for _, s2 := range right {
			if m, ok := Merge(s1, s2); ok {
				out = append(out, m)
			}
		}
	}
	return out
}
