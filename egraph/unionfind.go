package egraph

import "beamlearn/ast"

// unionFind is a standard disjoint-set structure over e-class ids with
// path compression and union by size, used to track which e-classes
// have been merged before a Rebuild canonicalizes the hash-cons table.
type unionFind struct {
	parent []ast.ClassID
	size   []int
}

func newUnionFind() *unionFind {
	return &unionFind{}
}

// makeSet allocates a fresh singleton set and returns its id.
func (u *unionFind) makeSet() ast.ClassID {
	id := ast.ClassID(len(u.parent))
	u.parent = append(u.parent, id)
	u.size = append(u.size, 1)
	return id
}

// find returns the canonical representative of id's set, compressing
// the path traversed.
func (u *unionFind) find(id ast.ClassID) ast.ClassID {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		next := u.parent[id]
		u.parent[id] = root
		id = next
	}
	return root
}

// union merges the sets containing a and b, returning the new
// representative and whether a merge actually happened (false if they
// were already the same set).
func (u *unionFind) union(a, b ast.ClassID) (ast.ClassID, bool) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return ra, false
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
	return ra, true
}
