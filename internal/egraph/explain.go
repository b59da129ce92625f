package egraph

import "strings"

// ReasonCongruence labels unions made by Rebuild.
const ReasonCongruence = "congruence"

type proofEdge struct {
	to     ID
	reason string
}

// proofForest records every successful union as an edge between the two
// nodes that were merged. Since an edge is only added between different
// classes, each class is spanned by a tree.
type proofForest struct {
	adj [][]proofEdge
}

func (p *proofForest) grow() {
	p.adj = append(p.adj, nil)
}

func (p *proofForest) link(a, b ID, reason string) {
	p.adj[a] = append(p.adj[a], proofEdge{to: b, reason: reason})
	p.adj[b] = append(p.adj[b], proofEdge{to: a, reason: reason})
}

// Step is one link of an explanation: Term was reached from the previous
// step because of Reason. The first step has no reason.
type Step struct {
	Term   string
	Reason string
}

type Explanation []Step

// String renders the chain as "a =[reason]=> b =[reason]=> c".
func (e Explanation) String() string {
	var sb strings.Builder
	for i, s := range e {
		if i > 0 {
			sb.WriteString(" =[")
			sb.WriteString(s.Reason)
			sb.WriteString("]=> ")
		}
		sb.WriteString(s.Term)
	}
	return sb.String()
}

// Explain returns the chain of unions connecting nodes a and b. It
// reports false when the nodes are not known to be equal.
func (g *EGraph) Explain(a, b ID) (Explanation, bool) {
	if int(a) >= len(g.nodes) || int(b) >= len(g.nodes) {
		return nil, false
	}
	if g.uf.find(a) != g.uf.find(b) {
		return nil, false
	}

	type visit struct {
		from   ID
		reason string
	}
	prev := map[ID]visit{a: {from: a}}
	queue := []ID{a}
	for len(queue) > 0 && !containsID(prev, b) {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.proof.adj[cur] {
			if _, seen := prev[e.to]; seen {
				continue
			}
			prev[e.to] = visit{from: cur, reason: e.reason}
			queue = append(queue, e.to)
		}
	}
	if !containsID(prev, b) {
		return nil, false
	}

	var rev Explanation
	for cur := b; ; {
		v := prev[cur]
		step := Step{Term: g.term(cur)}
		if cur != a {
			step.Reason = v.reason
		}
		rev = append(rev, step)
		if cur == a {
			break
		}
		cur = v.from
	}
	out := make(Explanation, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out, true
}

// ExplainPatterns explains why l and r, both instantiated under s, are
// equal. Nothing is inserted; missing instances report false.
func (g *EGraph) ExplainPatterns(l, r Pattern, s Subst) (Explanation, bool) {
	a, ok := g.lookupPattern(l, s)
	if !ok {
		return nil, false
	}
	b, ok := g.lookupPattern(r, s)
	if !ok {
		return nil, false
	}
	return g.Explain(a, b)
}

func containsID[V any](m map[ID]V, id ID) bool {
	_, ok := m[id]
	return ok
}
