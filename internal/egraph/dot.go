package egraph

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDot renders the graph in GraphViz format, one cluster per class.
// Edges point from a node to the class of each child.
func (g *EGraph) WriteDot(w io.Writer) error {
	g.Rebuild()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph egraph {")
	fmt.Fprintln(bw, "  compound=true;")
	fmt.Fprintln(bw, "  clusterrank=local;")

	ids := g.ClassIDs()
	for _, id := range ids {
		fmt.Fprintf(bw, "  subgraph cluster_%d {\n", id)
		fmt.Fprintln(bw, "    style=dotted;")
		for i, n := range g.Nodes(id) {
			fmt.Fprintf(bw, "    n%d_%d [label=%q];\n", id, i, n.Op)
		}
		fmt.Fprintln(bw, "  }")
	}
	for _, id := range ids {
		for i, n := range g.Nodes(id) {
			for _, c := range n.Children {
				child := g.Find(c)
				fmt.Fprintf(bw, "  n%d_%d -> n%d_0 [lhead=cluster_%d];\n", id, i, child, child)
			}
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
