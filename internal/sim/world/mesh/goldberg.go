package mesh

import (
	"math"
	"sort"

	"hexglobe.ai/internal/sim/world/logic/mathx"
)

// Goldberg is the dual of a geodesic sphere: one polygon per geodesic vertex,
// in geodesic vertex order. A vertex with fewer than three incident faces gets
// no cell and is counted in Skipped; when Skipped is 0, Faces[i] is the cell
// around geodesic vertex i.
type Goldberg struct {
	Mesh
	// Normals[i] is the outward unit normal of Faces[i].
	Normals []mathx.Vec3
	// Degenerate counts cells whose edge cross product vanished; their normal
	// falls back to the radial direction.
	Degenerate int
}

// Dual builds the Goldberg polyhedron of a triangulated geodesic mesh.
func Dual(geo *Mesh) *Goldberg {
	arena := mathx.NewArena(len(geo.Faces))
	centroid := make([]int, len(geo.Faces))
	for f := range geo.Faces {
		centroid[f] = arena.Intern(geo.FaceCentroid(f).Normalize())
	}

	incident := make([][]int, len(geo.Verts))
	for f, face := range geo.Faces {
		for _, v := range face {
			incident[v] = append(incident[v], f)
		}
	}

	verts := arena.Seal()
	out := &Goldberg{
		Mesh: Mesh{
			Verts:   verts,
			Faces:   make([]Face, 0, len(geo.Verts)),
			Skipped: geo.Skipped,
		},
		Normals: make([]mathx.Vec3, 0, len(geo.Verts)),
	}
	for v, faces := range incident {
		if len(faces) < 3 {
			out.Skipped++
			continue
		}
		radial := geo.Verts[v]
		cell := make(Face, len(faces))
		for i, f := range faces {
			cell[i] = centroid[f]
		}
		sortByAngle(cell, verts, radial)

		out.Faces = append(out.Faces, cell)
		n, ok := out.FaceNormal(len(out.Faces) - 1)
		switch {
		case !ok:
			out.Degenerate++
			n = radial.Normalize()
		case n.Dot(radial) < 0:
			reverse(cell)
			n = n.Mul(-1)
		}
		out.Normals = append(out.Normals, n)
	}
	return out
}

// Build runs the whole geometry pipeline: icosahedron, level subdivisions, dual.
func Build(level int) *Goldberg {
	return Dual(Geodesic(level))
}

// TangentBasis returns (u, v) spanning the plane orthogonal to n such that
// (u, v, n) is right handed.
func TangentBasis(n mathx.Vec3) (mathx.Vec3, mathx.Vec3) {
	u := n.Cross(mathx.Vec3{Y: 1})
	if u.Len() < 1e-5 {
		u = n.Cross(mathx.Vec3{X: 1})
	}
	u = u.Normalize()
	return u, n.Cross(u)
}

// sortByAngle orders cell counter-clockwise around n, seen from outside.
func sortByAngle(cell Face, verts []mathx.Vec3, n mathx.Vec3) {
	u, v := TangentBasis(n)
	angle := make(map[int]float64, len(cell))
	for _, vi := range cell {
		p := verts[vi]
		angle[vi] = math.Atan2(p.Dot(v), p.Dot(u))
	}
	sort.SliceStable(cell, func(i, j int) bool {
		return angle[cell[i]] < angle[cell[j]]
	})
}

func reverse(f Face) {
	for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
		f[i], f[j] = f[j], f[i]
	}
}
