package tiles

import "sort"

// Graph holds the adjacency derived from tile boundaries. All lists are sorted
// ascending so that two builds from the same tiles are identical.
type Graph struct {
	// VertexTiles[v] lists the tiles whose boundary contains vertex v.
	VertexTiles [][]int
	// VertexNeighbors[v] lists vertices consecutive to v on some boundary.
	VertexNeighbors [][]int
	// TileNeighbors[t] lists tiles sharing at least one vertex with t.
	TileNeighbors [][]int
}

// BuildGraph derives the incidence and adjacency graphs for numVerts vertices.
// Vertex indices outside [0, numVerts) are ignored.
func BuildGraph(numVerts int, ts []*Tile) *Graph {
	g := &Graph{
		VertexTiles:     make([][]int, numVerts),
		VertexNeighbors: make([][]int, numVerts),
		TileNeighbors:   make([][]int, len(ts)),
	}
	valid := func(v int) bool { return v >= 0 && v < numVerts }

	for i, t := range ts {
		n := len(t.Vertices)
		for j, v := range t.Vertices {
			if !valid(v) {
				continue
			}
			g.VertexTiles[v] = append(g.VertexTiles[v], i)
			w := t.Vertices[(j+1)%n]
			if !valid(w) || w == v {
				continue
			}
			g.VertexNeighbors[v] = append(g.VertexNeighbors[v], w)
			g.VertexNeighbors[w] = append(g.VertexNeighbors[w], v)
		}
	}
	for v := range g.VertexTiles {
		g.VertexTiles[v] = sortedUnique(g.VertexTiles[v])
		g.VertexNeighbors[v] = sortedUnique(g.VertexNeighbors[v])
	}

	for i, t := range ts {
		var ns []int
		for _, v := range t.Vertices {
			if !valid(v) {
				continue
			}
			for _, o := range g.VertexTiles[v] {
				if o != i {
					ns = append(ns, o)
				}
			}
		}
		g.TileNeighbors[i] = sortedUnique(ns)
	}
	return g
}

// Equal reports whether two graphs have identical adjacency.
func (g *Graph) Equal(o *Graph) bool {
	return equalLists(g.VertexTiles, o.VertexTiles) &&
		equalLists(g.VertexNeighbors, o.VertexNeighbors) &&
		equalLists(g.TileNeighbors, o.TileNeighbors)
}

func equalLists(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func sortedUnique(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	sort.Ints(xs)
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
