// Package tiles holds the Goldberg tile set and the graphs derived from it.
package tiles

import (
	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/mesh"
)

type Tile struct {
	// ID is the creation index; Set.Tiles[ID] == tile.
	ID int
	// Vertices index Set.Verts, counter-clockwise from outside.
	Vertices []int
	Normal   mathx.Vec3

	Terrain Terrain
	// Height is in [0,1]; water tiles are 0.
	Height float64

	// Derived by Set.Rebuild; never persisted.
	Neighbors []*Tile

	Unit     *Unit
	Selected bool
}

func (t *Tile) IsWater() bool    { return t.Terrain.IsWater() }
func (t *Tile) IsPentagon() bool { return len(t.Vertices) == 5 }

func (t *Tile) HasNeighbor(o *Tile) bool {
	for _, n := range t.Neighbors {
		if n == o {
			return true
		}
	}
	return false
}

func (t *Tile) NeighborIDs() []int {
	out := make([]int, len(t.Neighbors))
	for i, n := range t.Neighbors {
		out[i] = n.ID
	}
	return out
}

// Set is the tile set plus the shared vertex arena and derived graphs.
type Set struct {
	Verts []mathx.Vec3
	Tiles []*Tile
	Graph *Graph
}

// FromGoldberg creates one tile per Goldberg cell, in cell order.
func FromGoldberg(g *mesh.Goldberg) *Set {
	ts := make([]*Tile, len(g.Faces))
	for i, f := range g.Faces {
		vs := make([]int, len(f))
		copy(vs, f)
		ts[i] = &Tile{ID: i, Vertices: vs, Normal: g.Normals[i]}
	}
	return NewSet(g.Verts, ts)
}

// NewSet wraps verts and tiles and derives the graphs.
func NewSet(verts []mathx.Vec3, ts []*Tile) *Set {
	s := &Set{Verts: verts, Tiles: ts}
	s.Rebuild()
	return s
}

// Rebuild re-derives the graphs and every tile's neighbor list. It must run
// after any change to the tile set.
func (s *Set) Rebuild() {
	s.Graph = BuildGraph(len(s.Verts), s.Tiles)
	for i, t := range s.Tiles {
		ids := s.Graph.TileNeighbors[i]
		t.Neighbors = make([]*Tile, len(ids))
		for j, id := range ids {
			t.Neighbors[j] = s.Tiles[id]
		}
	}
}

func (s *Set) Tile(id int) (*Tile, bool) {
	if id < 0 || id >= len(s.Tiles) {
		return nil, false
	}
	return s.Tiles[id], true
}

// CenterOf is the mean of the tile's boundary vertices (inside the sphere).
func (s *Set) CenterOf(t *Tile) mathx.Vec3 {
	pts := make([]mathx.Vec3, len(t.Vertices))
	for i, v := range t.Vertices {
		pts[i] = s.Verts[v]
	}
	return mathx.Mean(pts...)
}

// Terrain access used by terrain assigners.

func (s *Set) Len() int                 { return len(s.Tiles) }
func (s *Set) Center(id int) mathx.Vec3 { return s.CenterOf(s.Tiles[id]) }
func (s *Set) Neighbors(id int) []int   { return s.Graph.TileNeighbors[id] }
func (s *Set) Height(id int) float64    { return s.Tiles[id].Height }
func (s *Set) SetTerrain(id int, t Terrain, height float64) {
	tile := s.Tiles[id]
	tile.Terrain = t
	if t.IsWater() {
		height = 0
	}
	tile.Height = mathx.Clamp01(height)
}
