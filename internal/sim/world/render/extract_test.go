package render

import (
	"testing"

	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/mesh"
	"hexglobe.ai/internal/sim/world/rivers"
	"hexglobe.ai/internal/sim/world/tiles"
)

func TestExtractFanTriangulation(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(1))
	d := Extract(s, nil, Options{})

	// 12 pentagons give 3 triangles each, 30 hexagons give 4.
	if got, want := d.TriangleCount(), 12*3+30*4; got != want {
		t.Fatalf("triangles: got %d want %d", got, want)
	}
	if len(d.TileNormals) != len(d.TilePositions) || len(d.TileColors) != len(d.TilePositions) {
		t.Fatalf("per-vertex arrays differ in length: %d %d %d", len(d.TilePositions), len(d.TileNormals), len(d.TileColors))
	}
	// One line per boundary edge: 12*5 + 30*6 edges, two points each.
	if got, want := len(d.Edges), (12*5+30*6)*2*3; got != want {
		t.Fatalf("edge floats: got %d want %d", got, want)
	}
	if len(d.RiverPositions) != 0 {
		t.Fatalf("expected no river geometry")
	}
	if len(d.Tiles) != 42 {
		t.Fatalf("metadata: got %d tiles", len(d.Tiles))
	}
	if d.Tiles[0].Terrain != "UNASSIGNED" || len(d.Tiles[0].Neighbors) != len(s.Tiles[0].Vertices) {
		t.Fatalf("tile 0 metadata: %+v", d.Tiles[0])
	}
}

func TestExtractColorsAndRivers(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(1))
	s.SetTerrain(0, tiles.Forest, 0.7)
	pal := tiles.Palette{tiles.Forest: {255, 0, 0}}
	ribbon := &rivers.Ribbon{
		Positions: []mathx.Vec3{{X: 1}, {Y: 1}, {Z: 1}},
		Triangles: [][3]int{{0, 1, 2}},
	}
	d := Extract(s, ribbon, Options{Palette: pal})
	if d.TileColors[0] != 1 || d.TileColors[1] != 0 || d.TileColors[2] != 0 {
		t.Fatalf("palette override not applied: %v", d.TileColors[:3])
	}
	if len(d.RiverPositions) != 9 || len(d.RiverColors) != 9 {
		t.Fatalf("river arrays: %d %d", len(d.RiverPositions), len(d.RiverColors))
	}
	if d.RiverColors[0] != float32(60)/255 {
		t.Fatalf("default river color not applied: %v", d.RiverColors[:3])
	}
	if d.Tiles[0].Terrain != "FOREST" || d.Tiles[0].Height != 0.7 {
		t.Fatalf("tile 0 metadata: %+v", d.Tiles[0])
	}
}
