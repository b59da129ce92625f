// Package egraph is a small congruence-closure store: hash-consed nodes
// grouped into equivalence classes, with e-matching, extraction and
// explanations of why two nodes are equal.
package egraph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ID identifies a node, and through Find, the class it belongs to.
type ID uint32

// Node is an operator applied to child classes.
type Node struct {
	Op       string
	Children []ID
}

func (n Node) key() string {
	var sb strings.Builder
	sb.WriteString(n.Op)
	for _, c := range n.Children {
		sb.WriteByte(0)
		sb.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return sb.String()
}

type eclass struct {
	members []ID
	// nodes holds the canonical, deduplicated nodes of the class. It is
	// refreshed by Rebuild.
	nodes []Node
}

// EGraph is not safe for concurrent use.
type EGraph struct {
	uf      unionFind
	nodes   []Node
	memo    map[string]ID
	classes map[ID]*eclass
	proof   proofForest
	unions  int
	dirty   bool
}

func New() *EGraph {
	return &EGraph{
		memo:    make(map[string]ID),
		classes: make(map[ID]*eclass),
	}
}

// Find returns the canonical id of the class containing id.
func (g *EGraph) Find(id ID) ID {
	return g.uf.find(id)
}

func (g *EGraph) canonicalize(n Node) Node {
	out := Node{Op: n.Op}
	if len(n.Children) > 0 {
		out.Children = make([]ID, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = g.uf.find(c)
		}
	}
	return out
}

// Add inserts n unless an equal node already exists, and returns the
// class of the node.
func (g *EGraph) Add(n Node) ID {
	n = g.canonicalize(n)
	key := n.key()
	if id, ok := g.memo[key]; ok {
		return g.uf.find(id)
	}
	id := g.uf.makeSet()
	g.nodes = append(g.nodes, n)
	g.proof.grow()
	g.memo[key] = id
	g.classes[id] = &eclass{members: []ID{id}, nodes: []Node{n}}
	g.dirty = true
	return id
}

// AddExpr inserts every subterm of e and returns the class of e.
func (g *EGraph) AddExpr(e Expr) ID {
	children := make([]ID, len(e.Args))
	for i, arg := range e.Args {
		children[i] = g.AddExpr(arg)
	}
	return g.Add(Node{Op: e.Op, Children: children})
}

// lookupNode finds the node id registered for n without inserting.
func (g *EGraph) lookupNode(n Node) (ID, bool) {
	id, ok := g.memo[g.canonicalize(n).key()]
	return id, ok
}

// Union merges the classes of a and b. It returns the surviving class id
// and whether anything changed. The reason is recorded for explanations.
func (g *EGraph) Union(a, b ID, reason string) (ID, bool) {
	ra, rb := g.uf.find(a), g.uf.find(b)
	if ra == rb {
		return ra, false
	}
	g.proof.link(a, b, reason)
	root := g.uf.union(ra, rb)
	other := ra
	if root == ra {
		other = rb
	}
	rc, oc := g.classes[root], g.classes[other]
	rc.members = append(rc.members, oc.members...)
	rc.nodes = append(rc.nodes, oc.nodes...)
	delete(g.classes, other)
	g.unions++
	g.dirty = true
	return root, true
}

// Rebuild restores the congruence invariant: nodes whose canonical forms
// coincide end up in one class. It returns the number of merges made.
func (g *EGraph) Rebuild() int {
	if !g.dirty {
		return 0
	}
	merged := 0
	for {
		memo := make(map[string]ID, len(g.nodes))
		changed := false
		for i, n := range g.nodes {
			id := ID(i)
			key := g.canonicalize(n).key()
			if prev, ok := memo[key]; ok {
				if _, did := g.Union(prev, id, ReasonCongruence); did {
					changed = true
					merged++
				}
				continue
			}
			memo[key] = id
		}
		g.memo = memo
		if !changed {
			break
		}
	}

	for _, c := range g.classes {
		seen := make(map[string]bool, len(c.members))
		c.nodes = c.nodes[:0]
		for _, m := range c.members {
			n := g.canonicalize(g.nodes[m])
			k := n.key()
			if seen[k] {
				continue
			}
			seen[k] = true
			c.nodes = append(c.nodes, n)
		}
	}
	g.dirty = false
	return merged
}

// NumNodes returns the number of distinct nodes ever added.
func (g *EGraph) NumNodes() int {
	return len(g.nodes)
}

// NumClasses returns the number of equivalence classes.
func (g *EGraph) NumClasses() int {
	return len(g.classes)
}

// Unions returns how many successful unions have been performed.
func (g *EGraph) Unions() int {
	return g.unions
}

// ClassIDs returns every canonical class id in ascending order.
func (g *EGraph) ClassIDs() []ID {
	ids := make([]ID, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Nodes returns the canonical nodes of the class of id.
func (g *EGraph) Nodes(id ID) []Node {
	c, ok := g.classes[g.uf.find(id)]
	if !ok {
		return nil
	}
	return c.nodes
}

// Expr is a concrete term, as extracted from or inserted into the graph.
type Expr struct {
	Op   string
	Args []Expr
}

func Leaf(op string) Expr {
	return Expr{Op: op}
}

func Call(op string, args ...Expr) Expr {
	return Expr{Op: op, Args: args}
}

// String renders e as an s-expression: "a" or "(f a b)".
func (e Expr) String() string {
	if len(e.Args) == 0 {
		return e.Op
	}
	parts := make([]string, 0, len(e.Args)+1)
	parts = append(parts, e.Op)
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Size is the number of operators in e.
func (e Expr) Size() int {
	n := 1
	for _, a := range e.Args {
		n += a.Size()
	}
	return n
}

// term renders the node that introduced id.
func (g *EGraph) term(id ID) string {
	if int(id) >= len(g.nodes) {
		return fmt.Sprintf("#%d", id)
	}
	n := g.nodes[id]
	if len(n.Children) == 0 {
		return n.Op
	}
	parts := make([]string, 0, len(n.Children)+1)
	parts = append(parts, n.Op)
	for _, c := range n.Children {
		parts = append(parts, g.term(c))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
