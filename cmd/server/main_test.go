package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hexglobe.ai/internal/persistence/indexdb"
	persistlog "hexglobe.ai/internal/persistence/log"
	"hexglobe.ai/internal/sim/world"
	"hexglobe.ai/internal/transport/observer"
)

func testGenConfig() world.GenConfig {
	cfg := world.DefaultGenConfig()
	cfg.ID = "cache_test"
	cfg.Level = 2
	cfg.RiverCount = 8
	return cfg
}

func TestLoadOrGenerateUsesCache(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)
	idx, err := indexdb.OpenSQLite(filepath.Join(dir, "index", "worlds.sqlite"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	worldDir := filepath.Join(dir, "worlds", "cache_test")
	cfg := testGenConfig()

	first, err := loadOrGenerate(ctx, cfg, worldDir, "", idx, logger)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Source != sourceGenerated {
		t.Fatalf("first source: %s", first.Source)
	}
	e, ok, err := idx.Lookup(ctx, cfg.CacheKey())
	if err != nil || !ok || e.Path != first.Path || e.Tiles != 162 {
		t.Fatalf("index entry: %+v ok=%v err=%v", e, ok, err)
	}

	second, err := loadOrGenerate(ctx, cfg, worldDir, "", idx, logger)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Source != sourceSnapshot || second.Path != first.Path {
		t.Fatalf("second: source=%s path=%s", second.Source, second.Path)
	}
	if second.World.Digest() != first.World.Digest() {
		t.Fatalf("cached world digest differs")
	}

	other := cfg
	other.RiverSeed++
	third, err := loadOrGenerate(ctx, other, worldDir, "", idx, logger)
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.Source != sourceGenerated || third.Path == first.Path {
		t.Fatalf("changed seed must regenerate: %+v", third)
	}

	reports := persistlog.NewReportLogger(worldDir)
	if err := recordRun(second, idx, reports); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := reports.Close(); err != nil {
		t.Fatalf("close reports: %v", err)
	}
}

func TestLoadOrGenerateExplicitSnapshot(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)
	cfg := testGenConfig()

	w := world.Generate(cfg, nil)
	if _, err := w.PlaceUnit(3, "p1"); err != nil {
		t.Fatalf("place: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	path := filepath.Join(dir, "session.snap.zst")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := checkpoint(ctx, w, path); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	w.Stop()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	res, err := loadOrGenerate(context.Background(), cfg, filepath.Join(dir, "worlds", "x"), path, nil, logger)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Source != sourceSnapshot || len(res.World.Units()) != 1 {
		t.Fatalf("explicit snapshot: source=%s units=%d", res.Source, len(res.World.Units()))
	}

	if _, err := loadOrGenerate(context.Background(), cfg, dir, filepath.Join(dir, "missing.snap.zst"), nil, logger); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}

func TestCheckpointNeedsRunningLoop(t *testing.T) {
	w := world.Generate(testGenConfig(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	path := filepath.Join(t.TempDir(), "never.snap.zst")
	if err := checkpoint(ctx, w, path); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error without Run, got %v", err)
	}
}

func TestMetricsHandler(t *testing.T) {
	w := world.Generate(testGenConfig(), nil)
	obs := observer.NewServer(w, nil)

	rec := httptest.NewRecorder()
	metricsHandler(w, obs, nil)(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`hexglobe_world_tiles{world="cache_test",shape="pentagon"} 12`,
		`hexglobe_world_tiles{world="cache_test",shape="hexagon"} 150`,
		`hexglobe_world_stage_seconds{world="cache_test",stage="rivers"}`,
		`hexglobe_viewer_sessions{world="cache_test"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "hexglobe_index_runs_dropped_total") {
		t.Fatalf("index metrics without an index")
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("HG_TEST_FLAG", "yes")
	if !envBool("HG_TEST_FLAG", false) {
		t.Fatalf("yes should be true")
	}
	t.Setenv("HG_TEST_FLAG", "junk")
	if envBool("HG_TEST_FLAG", false) {
		t.Fatalf("junk should fall back to default")
	}
}
