package store

import (
	"testing"

	snapv1 "hexglobe.ai/internal/persistence/snapshot"
	"hexglobe.ai/internal/sim/world/mesh"
	"hexglobe.ai/internal/sim/world/tiles"
)

func TestExportAndImportTilesRoundTrip(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(2))
	for id := range s.Tiles {
		s.SetTerrain(id, tiles.Grassland, 0.4)
	}
	s.SetTerrain(0, tiles.Mountains, 0.9)
	s.SetTerrain(1, tiles.Coast, 0)

	verts := ExportVertices(s)
	exported := ExportTiles(s)
	if len(exported) != len(s.Tiles) {
		t.Fatalf("expected %d exported tiles, got %d", len(s.Tiles), len(exported))
	}
	if exported[0].Terrain != "MOUNTAINS" || exported[0].Height != 0.9 {
		t.Fatalf("unexpected exported tile 0: %+v", exported[0])
	}

	imported, err := ImportTiles(verts, exported)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !imported.Graph.Equal(s.Graph) {
		t.Fatalf("rebuilt graphs differ from the originals")
	}
	for i, tile := range imported.Tiles {
		orig := s.Tiles[i]
		if tile.Terrain != orig.Terrain || tile.Height != orig.Height {
			t.Fatalf("tile %d: got %s/%f want %s/%f", i, tile.Terrain, tile.Height, orig.Terrain, orig.Height)
		}
		if len(tile.Neighbors) != len(orig.Neighbors) {
			t.Fatalf("tile %d: neighbor count %d want %d", i, len(tile.Neighbors), len(orig.Neighbors))
		}
	}
}

func TestImportTilesRejectsInvalidShape(t *testing.T) {
	verts := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	cases := map[string][]snapv1.TileV1{
		"vertex out of range": {{ID: 0, Vertices: []int{0, 1, 7}, Terrain: "OCEAN"}},
		"too few vertices":    {{ID: 0, Vertices: []int{0, 1}, Terrain: "OCEAN"}},
		"unknown terrain":     {{ID: 0, Vertices: []int{0, 1, 2}, Terrain: "LAVA"}},
		"unassigned terrain":  {{ID: 0, Vertices: []int{0, 1, 2}, Terrain: "UNASSIGNED"}},
		"id out of order":     {{ID: 4, Vertices: []int{0, 1, 2}, Terrain: "OCEAN"}},
	}
	for name, ts := range cases {
		if _, err := ImportTiles(verts, ts); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
