// Package store converts the tile set to and from its persisted form.
package store

import (
	"fmt"

	snapv1 "hexglobe.ai/internal/persistence/snapshot"
	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/tiles"
)

// ExportVertices copies the shared vertex arena.
func ExportVertices(s *tiles.Set) [][3]float64 {
	out := make([][3]float64, len(s.Verts))
	for i, v := range s.Verts {
		out[i] = v.Array()
	}
	return out
}

// ExportTiles flattens tiles in id order. Neighbor pointers are dropped.
func ExportTiles(s *tiles.Set) []snapv1.TileV1 {
	out := make([]snapv1.TileV1, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		vs := make([]int, len(t.Vertices))
		copy(vs, t.Vertices)
		out = append(out, snapv1.TileV1{
			ID:       t.ID,
			Vertices: vs,
			Normal:   t.Normal.Array(),
			Terrain:  t.Terrain.String(),
			Height:   t.Height,
		})
	}
	return out
}

// ImportTiles rebuilds a tile set, re-deriving every graph from the boundaries.
func ImportTiles(verts [][3]float64, ts []snapv1.TileV1) (*tiles.Set, error) {
	vs := make([]mathx.Vec3, len(verts))
	for i, v := range verts {
		vs[i] = mathx.FromArray(v)
	}
	out := make([]*tiles.Tile, len(ts))
	for i, t := range ts {
		if t.ID != i {
			return nil, fmt.Errorf("snapshot tile %d: id %d out of order", i, t.ID)
		}
		if n := len(t.Vertices); n < 3 {
			return nil, fmt.Errorf("snapshot tile %d: %d vertices", i, n)
		}
		for _, v := range t.Vertices {
			if v < 0 || v >= len(vs) {
				return nil, fmt.Errorf("snapshot tile %d: vertex %d out of range [0,%d)", i, v, len(vs))
			}
		}
		terr, err := tiles.ParseTerrain(t.Terrain)
		if err != nil {
			return nil, fmt.Errorf("snapshot tile %d: %w", i, err)
		}
		bound := make([]int, len(t.Vertices))
		copy(bound, t.Vertices)
		tile := &tiles.Tile{
			ID:       i,
			Vertices: bound,
			Normal:   mathx.FromArray(t.Normal),
			Terrain:  terr,
			Height:   t.Height,
		}
		if terr.IsWater() {
			tile.Height = 0
		}
		out[i] = tile
	}
	return tiles.NewSet(vs, out), nil
}
