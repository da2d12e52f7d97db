// Package mesh builds the geodesic sphere and its Goldberg dual.
//
// All meshes are indexed: faces hold indices into Verts. Vertex identity during
// construction is the quantized position (see mathx.Arena); after a build the
// index is the identity.
package mesh

import "hexglobe.ai/internal/sim/world/logic/mathx"

// Face is an ordered vertex loop, counter-clockwise seen from outside the sphere.
type Face []int

// Mesh is a polyhedron with unique vertices. Triangles (geodesic) and
// pentagons/hexagons (Goldberg) share this one type.
type Mesh struct {
	Verts []mathx.Vec3
	Faces []Face
	// Skipped counts malformed input dropped while building this mesh and
	// its ancestors: non-triangle faces for Subdivide, geodesic vertices with
	// fewer than three incident faces for Dual.
	Skipped int
}

func (m *Mesh) FaceCentroid(f int) mathx.Vec3 {
	face := m.Faces[f]
	pts := make([]mathx.Vec3, len(face))
	for i, vi := range face {
		pts[i] = m.Verts[vi]
	}
	return mathx.Mean(pts...)
}

// FaceNormal is the normalized cross product of the first two edges leaving
// the first vertex. ok is false for fewer than 3 vertices or collinear points.
func (m *Mesh) FaceNormal(f int) (mathx.Vec3, bool) {
	face := m.Faces[f]
	if len(face) < 3 {
		return mathx.Vec3{}, false
	}
	p1, p2, p3 := m.Verts[face[0]], m.Verts[face[1]], m.Verts[face[2]]
	return p2.Sub(p1).Cross(p3.Sub(p1)).Unit()
}
