package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hexglobe.ai/internal/sim/world/tiles"
)

func TestLoadTuningYAML(t *testing.T) {
	tu, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning.yaml: %v", err)
	}
	if tu.SubdivisionLevel != 4 || tu.RiverCount != 150 {
		t.Fatalf("unexpected level/rivers: %d/%d", tu.SubdivisionLevel, tu.RiverCount)
	}
	if tu.Rivers.BaseWidth != 0.002 || tu.Rivers.WidthFactor != 0.01 || tu.Rivers.Elevation != 0.99 {
		t.Fatalf("unexpected river ribbon params: %+v", tu.Rivers)
	}
	if tu.Spatial.CellSize != 0.1 {
		t.Fatalf("unexpected cell size: %v", tu.Spatial.CellSize)
	}
	cfg, err := tu.GenConfig()
	if err != nil {
		t.Fatalf("gen config: %v", err)
	}
	if cfg.Palette.Color(tiles.Ocean) != (tiles.Color{30, 144, 255}) {
		t.Fatalf("ocean color: %v", cfg.Palette.Color(tiles.Ocean))
	}
	if cfg.Terrain.SeaLevel != tu.Terrain.SeaLevel || cfg.Rivers.MaxSteps != 200 {
		t.Fatalf("stage configs not populated: %+v %+v", cfg.Terrain, cfg.Rivers)
	}
}

func TestUnknownTerrainColorSuggests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "terrain_colors:\n  MOUNTIANS: [1, 2, 3]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for unknown terrain name")
	}
	if !strings.Contains(err.Error(), "did you mean MOUNTAINS") {
		t.Fatalf("missing suggestion: %v", err)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("subdivision_level: 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tu, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d := Defaults()
	if tu.SubdivisionLevel != 2 || tu.RiverCount != d.RiverCount || tu.Seeds != d.Seeds {
		t.Fatalf("defaults not preserved: %+v", tu)
	}
}

func TestNegativeRiverCountRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("river_count: -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadOrDefaultsMissingFile(t *testing.T) {
	tu, err := LoadOrDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if tu.SubdivisionLevel != Defaults().SubdivisionLevel {
		t.Fatalf("unexpected tuning: %+v", tu)
	}
}
