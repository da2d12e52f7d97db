package world

import (
	"fmt"
	"log"
	"math"
	"time"

	snapv1 "hexglobe.ai/internal/persistence/snapshot"
	"hexglobe.ai/internal/sim/world/io/snapshotcodec"
	"hexglobe.ai/internal/sim/world/rivers"
	"hexglobe.ai/internal/sim/world/terrain/store"
	"hexglobe.ai/internal/sim/world/tiles"
)

// ExportSnapshot flattens the world. Derived data (neighbors, vertex
// adjacency, ribbon, spatial index) is left out.
func (w *World) ExportSnapshot() snapv1.SnapshotV1 {
	snap := snapv1.SnapshotV1{
		Header: snapv1.Header{
			Version:     snapv1.Version,
			WorldID:     w.cfg.ID,
			CreatedUnix: time.Now().Unix(),
			Tiles:       w.tiles.Len(),
		},
		Level:      w.cfg.Level,
		LandSeed:   w.cfg.LandSeed,
		HeightSeed: w.cfg.HeightSeed,
		RiverSeed:  w.cfg.RiverSeed,
		RiverCount: w.cfg.RiverCount,
		Vertices:   store.ExportVertices(w.tiles),
		Tiles:      store.ExportTiles(w.tiles),
		Downstream: snapshotcodec.EdgesFromMap(w.rivers.Downstream),
		Flow:       snapshotcodec.FlowsFromMap(w.rivers.Flow),
		Stats: &snapv1.StatsV1{
			DegenerateTiles:       w.stats.DegenerateTiles,
			SkippedGeometry:       w.stats.SkippedGeometry,
			SkippedRibbonVertices: w.stats.SkippedRibbonVertices,
			Rivers:                w.stats.Rivers,
			SeaVertices:           w.stats.SeaVertices,
		},
	}
	for _, u := range w.Units() {
		snap.Units = append(snap.Units, snapv1.UnitV1{ID: u.ID, Owner: u.Owner, Tile: u.Tile.ID})
	}
	return snap
}

// ImportSnapshot rebuilds a world from a snapshot without rerunning terrain
// generation. base supplies the settings a snapshot does not carry (palette,
// ribbon shape, cell size); its level, seeds and river count are replaced.
func ImportSnapshot(snap snapv1.SnapshotV1, base GenConfig, logger *log.Logger) (*World, error) {
	cfg := base
	if snap.Header.WorldID != "" {
		cfg.ID = snap.Header.WorldID
	}
	cfg.Level = snap.Level
	cfg.LandSeed, cfg.HeightSeed, cfg.RiverSeed = snap.LandSeed, snap.HeightSeed, snap.RiverSeed
	cfg.RiverCount = snap.RiverCount
	cfg = cfg.normalized()

	w := newWorld(cfg, logger)
	w.stats.Level = cfg.Level

	var err error
	w.stats.timed("graph", func() { w.tiles, err = store.ImportTiles(snap.Vertices, snap.Tiles) })
	if err != nil {
		return nil, fmt.Errorf("import tiles: %w", err)
	}

	down, err := snapshotcodec.MapFromEdges(snap.Downstream, len(snap.Vertices))
	if err != nil {
		return nil, fmt.Errorf("import rivers: %w", err)
	}
	w.rivers = rivers.NewNetwork(down, rivers.Classify(w.tiles))
	if err := w.rivers.Validate(); err != nil {
		return nil, fmt.Errorf("import rivers: %w", err)
	}
	if err := sameFlow(w.rivers.Flow, snapshotcodec.MapFromFlows(snap.Flow)); err != nil {
		return nil, fmt.Errorf("import rivers: %w", err)
	}

	for _, su := range snap.Units {
		t, err := w.Tile(su.Tile)
		if err != nil {
			return nil, fmt.Errorf("import unit %d: %w", su.ID, err)
		}
		u, err := tiles.Place(t, su.ID, su.Owner)
		if err != nil {
			return nil, fmt.Errorf("import unit %d: %w", su.ID, err)
		}
		if _, dup := w.units[u.ID]; dup {
			return nil, fmt.Errorf("import unit %d: duplicate id", su.ID)
		}
		w.units[u.ID] = u
		if u.ID >= w.nextUnit {
			w.nextUnit = u.ID + 1
		}
	}

	if snap.Stats != nil {
		w.stats.DegenerateTiles = snap.Stats.DegenerateTiles
		w.stats.SkippedGeometry = snap.Stats.SkippedGeometry
	}
	w.finish()
	w.logf("world %s loaded from snapshot: level=%d tiles=%d rivers=%d units=%d",
		cfg.ID, cfg.Level, w.stats.Tiles, w.stats.Rivers, len(w.units))
	return w, nil
}

// sameFlow checks stored flow against the flow derived from the edges.
func sameFlow(derived, stored map[int]float64) error {
	if len(derived) != len(stored) {
		return fmt.Errorf("flow map has %d entries, edges imply %d", len(stored), len(derived))
	}
	for v, f := range derived {
		if math.Abs(stored[v]-f) > 1e-9 {
			return fmt.Errorf("vertex %d flow %g, edges imply %g", v, stored[v], f)
		}
	}
	return nil
}
