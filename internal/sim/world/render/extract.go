// Package render flattens a generated world into renderer-facing arrays.
// Every array is a flat list of xyz (or rgb) triples.
package render

import (
	"hexglobe.ai/internal/sim/world/rivers"
	"hexglobe.ai/internal/sim/world/tiles"
)

var (
	DefaultRiverColor = tiles.Color{60, 120, 200}
	DefaultEdgeColor  = tiles.Color{40, 40, 40}
)

type Options struct {
	Palette    tiles.Palette
	RiverColor tiles.Color
}

type TileMeta struct {
	ID        int        `json:"id"`
	Terrain   string     `json:"terrain"`
	Height    float64    `json:"height"`
	Center    [3]float64 `json:"center"`
	Neighbors []int      `json:"neighbors"`
	Unit      int        `json:"unit,omitempty"`
	Selected  bool       `json:"selected,omitempty"`
}

type Data struct {
	TilePositions []float32 `json:"tile_positions"`
	TileNormals   []float32 `json:"tile_normals"`
	TileColors    []float32 `json:"tile_colors"`
	// Edges is a line list: two points per boundary edge.
	Edges []float32 `json:"edges"`

	RiverPositions []float32 `json:"river_positions"`
	RiverColors    []float32 `json:"river_colors"`

	Tiles []TileMeta `json:"tiles"`
}

// TriangleCount is the number of fan triangles in TilePositions.
func (d *Data) TriangleCount() int { return len(d.TilePositions) / 9 }

// Extract fan-triangulates every tile from its first vertex and expands the
// ribbon into a triangle list. ribbon may be nil.
func Extract(s *tiles.Set, ribbon *rivers.Ribbon, opts Options) *Data {
	if opts.RiverColor == (tiles.Color{}) {
		opts.RiverColor = DefaultRiverColor
	}
	d := &Data{Tiles: make([]TileMeta, 0, len(s.Tiles))}
	for _, t := range s.Tiles {
		d.Tiles = append(d.Tiles, meta(s, t))
		n := len(t.Vertices)
		if n < 3 {
			continue
		}
		col := rgb(opts.Palette.Color(t.Terrain))
		nrm := t.Normal.Float32()
		v0 := s.Verts[t.Vertices[0]].Float32()
		for j := 1; j < n-1; j++ {
			v1 := s.Verts[t.Vertices[j]].Float32()
			v2 := s.Verts[t.Vertices[j+1]].Float32()
			d.TilePositions = append(d.TilePositions, v0[:]...)
			d.TilePositions = append(d.TilePositions, v1[:]...)
			d.TilePositions = append(d.TilePositions, v2[:]...)
			for k := 0; k < 3; k++ {
				d.TileNormals = append(d.TileNormals, nrm[:]...)
				d.TileColors = append(d.TileColors, col[:]...)
			}
		}
		for j := 0; j < n; j++ {
			a := s.Verts[t.Vertices[j]].Float32()
			b := s.Verts[t.Vertices[(j+1)%n]].Float32()
			d.Edges = append(d.Edges, a[:]...)
			d.Edges = append(d.Edges, b[:]...)
		}
	}
	if ribbon != nil {
		col := rgb(opts.RiverColor)
		for _, tri := range ribbon.Triangles {
			for _, i := range tri {
				p := ribbon.Positions[i].Float32()
				d.RiverPositions = append(d.RiverPositions, p[:]...)
				d.RiverColors = append(d.RiverColors, col[:]...)
			}
		}
	}
	return d
}

func meta(s *tiles.Set, t *tiles.Tile) TileMeta {
	m := TileMeta{
		ID:        t.ID,
		Terrain:   t.Terrain.String(),
		Height:    t.Height,
		Center:    s.CenterOf(t).Array(),
		Neighbors: t.NeighborIDs(),
		Selected:  t.Selected,
	}
	if t.Unit != nil {
		m.Unit = t.Unit.ID
	}
	return m
}

func rgb(c tiles.Color) [3]float32 {
	return [3]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255}
}
