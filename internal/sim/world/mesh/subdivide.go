package mesh

import "hexglobe.ai/internal/sim/world/logic/mathx"

type edgeKey struct{ a, b int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Subdivide splits every triangle of m into four. Midpoints are projected onto
// the unit sphere and shared between the two faces of an edge. Other faces are
// dropped and counted in Skipped. m is not modified.
func Subdivide(m *Mesh) *Mesh {
	arena := mathx.NewArena(len(m.Verts) + len(m.Faces)*3/2)
	remap := make([]int, len(m.Verts))
	for i, v := range m.Verts {
		remap[i] = arena.Intern(v)
	}

	mids := make(map[edgeKey]int, len(m.Faces)*3/2)
	midpoint := func(a, b int) int {
		k := newEdgeKey(a, b)
		if i, ok := mids[k]; ok {
			return i
		}
		p := m.Verts[a].Add(m.Verts[b]).Mul(0.5).Normalize()
		i := arena.Intern(p)
		mids[k] = i
		return i
	}

	faces := make([]Face, 0, len(m.Faces)*4)
	skipped := m.Skipped
	for _, f := range m.Faces {
		if len(f) != 3 {
			skipped++
			continue
		}
		v1, v2, v3 := f[0], f[1], f[2]
		m1 := midpoint(v1, v2)
		m2 := midpoint(v2, v3)
		m3 := midpoint(v3, v1)
		a, b, c := remap[v1], remap[v2], remap[v3]
		faces = append(faces,
			Face{a, m1, m3},
			Face{b, m2, m1},
			Face{c, m3, m2},
			Face{m1, m2, m3},
		)
	}
	return &Mesh{Verts: arena.Seal(), Faces: faces, Skipped: skipped}
}

// Geodesic returns the icosahedron subdivided level times. Levels below 1 are
// raised to 1.
func Geodesic(level int) *Mesh {
	level = ClampLevel(level)
	m := Icosahedron()
	for i := 0; i < level; i++ {
		m = Subdivide(m)
	}
	return m
}

func ClampLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}
