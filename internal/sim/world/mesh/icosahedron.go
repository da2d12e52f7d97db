package mesh

import (
	"math"

	"hexglobe.ai/internal/sim/world/logic/mathx"
)

var icosaFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// Icosahedron returns the unit icosahedron: 12 vertices on the unit sphere and
// 20 outward-wound triangles.
func Icosahedron() *Mesh {
	t := (1.0 + math.Sqrt(5.0)) / 2.0
	raw := []mathx.Vec3{
		{X: -1, Y: t, Z: 0}, {X: 1, Y: t, Z: 0}, {X: -1, Y: -t, Z: 0}, {X: 1, Y: -t, Z: 0},
		{X: 0, Y: -1, Z: t}, {X: 0, Y: 1, Z: t}, {X: 0, Y: -1, Z: -t}, {X: 0, Y: 1, Z: -t},
		{X: t, Y: 0, Z: -1}, {X: t, Y: 0, Z: 1}, {X: -t, Y: 0, Z: -1}, {X: -t, Y: 0, Z: 1},
	}
	m := &Mesh{
		Verts: make([]mathx.Vec3, len(raw)),
		Faces: make([]Face, len(icosaFaces)),
	}
	for i, v := range raw {
		m.Verts[i] = v.Normalize()
	}
	for i, f := range icosaFaces {
		m.Faces[i] = Face{f[0], f[1], f[2]}
	}
	return m
}
