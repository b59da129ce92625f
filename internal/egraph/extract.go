package egraph

// Extractor picks the smallest term (by operator count) for each class.
// It is a snapshot: build a new one after the graph changes.
type Extractor struct {
	g    *EGraph
	best map[ID]choice
}

type choice struct {
	cost int
	node Node
}

func NewExtractor(g *EGraph) *Extractor {
	ex := &Extractor{g: g, best: make(map[ID]choice, g.NumClasses())}
	ex.compute()
	return ex
}

// compute iterates to a fixpoint. Ties keep the earlier node of the
// class, so the result does not depend on map order.
func (ex *Extractor) compute() {
	ids := ex.g.ClassIDs()
	for changed := true; changed; {
		changed = false
		for _, id := range ids {
			for _, n := range ex.g.Nodes(id) {
				cost, ok := ex.nodeCost(n)
				if !ok {
					continue
				}
				if cur, seen := ex.best[id]; !seen || cost < cur.cost {
					ex.best[id] = choice{cost: cost, node: n}
					changed = true
				}
			}
		}
	}
}

func (ex *Extractor) nodeCost(n Node) (int, bool) {
	cost := 1
	for _, c := range n.Children {
		ch, ok := ex.best[ex.g.Find(c)]
		if !ok {
			return 0, false
		}
		cost += ch.cost
	}
	return cost, true
}

// Best returns the smallest term of the class of id and its size.
func (ex *Extractor) Best(id ID) (Expr, int, bool) {
	ch, ok := ex.best[ex.g.Find(id)]
	if !ok {
		return Expr{}, 0, false
	}
	return ex.build(ch.node), ch.cost, true
}

func (ex *Extractor) build(n Node) Expr {
	e := Expr{Op: n.Op}
	for _, c := range n.Children {
		e.Args = append(e.Args, ex.build(ex.best[ex.g.Find(c)].node))
	}
	return e
}
