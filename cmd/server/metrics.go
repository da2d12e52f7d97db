package main

import (
	"fmt"
	"io"
	"net/http"

	"hexglobe.ai/internal/persistence/indexdb"
	"hexglobe.ai/internal/sim/world"
	"hexglobe.ai/internal/sim/world/tiles"
	"hexglobe.ai/internal/transport/observer"
)

func metricsHandler(w *world.World, obs *observer.Server, idx *indexdb.SQLiteIndex) http.HandlerFunc {
	// Generation stats never change after startup.
	st := w.Stats()
	id := w.ID()
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeWorldMetrics(rw, id, st)
		writeObserverMetrics(rw, id, obs.Counters())
		if idx != nil {
			fmt.Fprintf(rw, "# HELP hexglobe_index_runs_dropped_total Run records dropped by the index writer.\n")
			fmt.Fprintf(rw, "# TYPE hexglobe_index_runs_dropped_total counter\n")
			fmt.Fprintf(rw, "hexglobe_index_runs_dropped_total %d\n", idx.Dropped())
		}
	}
}

// Minimal Prometheus exposition format.
func writeWorldMetrics(rw io.Writer, id string, st world.Stats) {
	fmt.Fprintf(rw, "# HELP hexglobe_world_level Subdivision level.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_world_level gauge\n")
	fmt.Fprintf(rw, "hexglobe_world_level{world=%q} %d\n", id, st.Level)

	fmt.Fprintf(rw, "# HELP hexglobe_world_tiles Tile count by shape.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_world_tiles gauge\n")
	fmt.Fprintf(rw, "hexglobe_world_tiles{world=%q,shape=%q} %d\n", id, "pentagon", st.Pentagons)
	fmt.Fprintf(rw, "hexglobe_world_tiles{world=%q,shape=%q} %d\n", id, "hexagon", st.Hexagons)

	fmt.Fprintf(rw, "# HELP hexglobe_world_terrain_tiles Tile count by terrain.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_world_terrain_tiles gauge\n")
	for _, t := range tiles.AllTerrains() {
		fmt.Fprintf(rw, "hexglobe_world_terrain_tiles{world=%q,terrain=%q} %d\n", id, t.String(), st.TerrainCount(t))
	}

	fmt.Fprintf(rw, "# HELP hexglobe_world_rivers River paths and downstream edges.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_world_rivers gauge\n")
	fmt.Fprintf(rw, "hexglobe_world_rivers{world=%q,kind=%q} %d\n", id, "paths", st.Rivers)
	fmt.Fprintf(rw, "hexglobe_world_rivers{world=%q,kind=%q} %d\n", id, "edges", st.RiverEdges)
	fmt.Fprintf(rw, "hexglobe_world_rivers{world=%q,kind=%q} %d\n", id, "sea_vertices", st.SeaVertices)

	fmt.Fprintf(rw, "# HELP hexglobe_world_degenerate Degenerate elements skipped during generation.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_world_degenerate gauge\n")
	fmt.Fprintf(rw, "hexglobe_world_degenerate{world=%q,kind=%q} %d\n", id, "tiles", st.DegenerateTiles)
	fmt.Fprintf(rw, "hexglobe_world_degenerate{world=%q,kind=%q} %d\n", id, "ribbon_vertices", st.SkippedRibbonVertices)
	fmt.Fprintf(rw, "hexglobe_world_degenerate{world=%q,kind=%q} %d\n", id, "geometry", st.SkippedGeometry)

	fmt.Fprintf(rw, "# HELP hexglobe_world_stage_seconds Generation stage duration.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_world_stage_seconds gauge\n")
	for _, s := range st.Stages {
		fmt.Fprintf(rw, "hexglobe_world_stage_seconds{world=%q,stage=%q} %.6f\n", id, s.Stage, s.Duration.Seconds())
	}
}

func writeObserverMetrics(rw io.Writer, id string, c observer.Counters) {
	fmt.Fprintf(rw, "# HELP hexglobe_viewer_sessions Connected viewer sessions.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_viewer_sessions gauge\n")
	fmt.Fprintf(rw, "hexglobe_viewer_sessions{world=%q} %d\n", id, c.Sessions)

	fmt.Fprintf(rw, "# HELP hexglobe_viewer_messages_total Viewer messages by direction.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_viewer_messages_total counter\n")
	fmt.Fprintf(rw, "hexglobe_viewer_messages_total{world=%q,dir=%q} %d\n", id, "in", c.Received)
	fmt.Fprintf(rw, "hexglobe_viewer_messages_total{world=%q,dir=%q} %d\n", id, "out", c.Sent)

	fmt.Fprintf(rw, "# HELP hexglobe_viewer_busy_total Requests that timed out waiting for the world loop.\n")
	fmt.Fprintf(rw, "# TYPE hexglobe_viewer_busy_total counter\n")
	fmt.Fprintf(rw, "hexglobe_viewer_busy_total{world=%q} %d\n", id, c.Busy)
}
