package world

import (
	"log"
	"math/rand"

	"hexglobe.ai/internal/sim/world/mesh"
	"hexglobe.ai/internal/sim/world/rivers"
	"hexglobe.ai/internal/sim/world/spatial"
	"hexglobe.ai/internal/sim/world/terrain/gen"
	"hexglobe.ai/internal/sim/world/tiles"
)

// Generate runs the full pipeline: icosahedron, subdivision, dual, tile
// graph, terrain, rivers, spatial index. It does not fail: bad inputs are
// clamped and degenerate geometry is skipped and counted in Stats.
func Generate(cfg GenConfig, logger *log.Logger) *World {
	cfg = cfg.normalized()
	w := newWorld(cfg, logger)
	st := &w.stats
	st.Level = cfg.Level

	var geo *mesh.Mesh
	var gb *mesh.Goldberg
	st.timed("subdivide", func() { geo = mesh.Geodesic(cfg.Level) })
	st.timed("dual", func() { gb = mesh.Dual(geo) })
	st.DegenerateTiles = gb.Degenerate
	st.SkippedGeometry = gb.Skipped
	st.timed("graph", func() { w.tiles = tiles.FromGoldberg(gb) })

	assigner := cfg.Assigner
	if assigner == nil {
		assigner = gen.NewNoiseAssigner(cfg.Terrain)
	}
	st.timed("terrain", func() { assigner.Assign(w.tiles) })

	st.timed("rivers", func() {
		rng := rand.New(rand.NewSource(cfg.RiverSeed))
		w.rivers = rivers.Generate(w.tiles, cfg.RiverCount, rng, cfg.Rivers)
	})
	w.finish()

	w.logf("world %s generated: level=%d tiles=%d pentagons=%d rivers=%d degenerate=%d skipped_geometry=%d skipped_ribbon=%d in %s",
		cfg.ID, st.Level, st.Tiles, st.Pentagons, st.Rivers, st.DegenerateTiles, st.SkippedGeometry, st.SkippedRibbonVertices, st.Total())
	return w
}

// finish derives everything that follows from tiles and rivers: ribbon
// geometry, the spatial index and stats.
func (w *World) finish() {
	st := &w.stats
	st.timed("ribbon", func() { w.ribbon = rivers.BuildRibbon(w.rivers, w.tiles.Verts, w.cfg.Rivers) })
	st.timed("index", func() {
		w.grid = spatial.NewGrid(w.cfg.CellSize)
		for i := range w.tiles.Tiles {
			w.grid.Insert(i, w.tiles.Center(i))
		}
	})
	w.countTiles()
	w.countRivers()
}
