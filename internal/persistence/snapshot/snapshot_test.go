package snapshot

import (
	"path/filepath"
	"testing"
)

func sample() SnapshotV1 {
	return SnapshotV1{
		Header:     Header{WorldID: "globe-1", CreatedUnix: 1700000000, Tiles: 1},
		Level:      1,
		LandSeed:   3,
		HeightSeed: 4,
		RiverSeed:  5,
		RiverCount: 2,
		Vertices:   [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Tiles: []TileV1{{
			ID:       0,
			Vertices: []int{0, 1, 2},
			Normal:   [3]float64{0.57735, 0.57735, 0.57735},
			Terrain:  "FOREST",
			Height:   0.7,
		}},
		Downstream: []EdgeV1{{From: 0, To: 1}},
		Flow:       []FlowV1{{Vertex: 0, Flow: 1}, {Vertex: 1, Flow: 1}},
		Units:      []UnitV1{{ID: 1, Owner: "p1", Tile: 0}},
		Stats:      &StatsV1{Rivers: 1},
	}
}

func TestWriteReadSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "globe.snap.zst")
	if err := WriteSnapshot(path, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header.Version != Version || got.Header.WorldID != "globe-1" {
		t.Fatalf("header: %+v", got.Header)
	}
	if len(got.Tiles) != 1 || got.Tiles[0].Terrain != "FOREST" || got.Tiles[0].Height != 0.7 {
		t.Fatalf("tiles: %+v", got.Tiles)
	}
	if len(got.Downstream) != 1 || got.Downstream[0] != (EdgeV1{From: 0, To: 1}) {
		t.Fatalf("downstream: %+v", got.Downstream)
	}
	if got.Stats == nil || got.Stats.Rivers != 1 {
		t.Fatalf("stats: %+v", got.Stats)
	}
	if len(got.Units) != 1 || got.Units[0].Owner != "p1" {
		t.Fatalf("units: %+v", got.Units)
	}
}

func TestReadHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globe.snap.zst")
	if err := WriteSnapshot(path, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.WorldID != "globe-1" || h.Tiles != 1 || h.Version != Version {
		t.Fatalf("header: %+v", h)
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.zst")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
