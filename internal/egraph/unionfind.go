package egraph

// unionFind is a disjoint-set forest with path compression and union by
// size. Ties keep the lower id as root so merges are deterministic.
type unionFind struct {
	parent []ID
	size   []int
}

func (u *unionFind) makeSet() ID {
	id := ID(len(u.parent))
	u.parent = append(u.parent, id)
	u.size = append(u.size, 1)
	return id
}

func (u *unionFind) find(x ID) ID {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

// union links two roots and returns the new root.
func (u *unionFind) union(a, b ID) ID {
	if u.size[a] < u.size[b] || (u.size[a] == u.size[b] && b < a) {
		a, b = b, a
	}
	u.parent[b] = a
	u.size[a] += u.size[b]
	return a
}
