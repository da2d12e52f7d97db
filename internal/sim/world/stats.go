package world

import (
	"time"

	"hexglobe.ai/internal/sim/world/tiles"
)

type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats summarizes a generation run. Degenerate geometry is counted here
// rather than failing the run.
type Stats struct {
	Level     int `json:"level"`
	Tiles     int `json:"tiles"`
	Pentagons int `json:"pentagons"`
	Hexagons  int `json:"hexagons"`
	Vertices  int `json:"vertices"`

	DegenerateTiles       int `json:"degenerate_tiles"`
	SkippedGeometry       int `json:"skipped_geometry"`
	SkippedRibbonVertices int `json:"skipped_ribbon_vertices"`

	Rivers      int `json:"rivers"`
	RiverEdges  int `json:"river_edges"`
	SeaVertices int `json:"sea_vertices"`

	Terrain map[string]int `json:"terrain"`
	Stages  []StageTiming  `json:"stages,omitempty"`
}

func (s *Stats) timed(stage string, fn func()) {
	start := time.Now()
	fn()
	s.Stages = append(s.Stages, StageTiming{Stage: stage, Duration: time.Since(start)})
}

// Total is the summed stage time.
func (s Stats) Total() time.Duration {
	var d time.Duration
	for _, st := range s.Stages {
		d += st.Duration
	}
	return d
}

func (w *World) countTiles() {
	st := &w.stats
	st.Tiles = w.tiles.Len()
	st.Vertices = len(w.tiles.Verts)
	st.Pentagons, st.Hexagons = 0, 0
	st.Terrain = map[string]int{}
	for _, t := range w.tiles.Tiles {
		switch len(t.Vertices) {
		case 5:
			st.Pentagons++
		case 6:
			st.Hexagons++
		}
		st.Terrain[t.Terrain.String()]++
	}
}

func (w *World) countRivers() {
	st := &w.stats
	st.Rivers = len(w.rivers.Paths())
	st.RiverEdges = len(w.rivers.Downstream)
	st.SeaVertices = 0
	for _, sea := range w.rivers.Sea {
		if sea {
			st.SeaVertices++
		}
	}
	if w.ribbon != nil {
		st.SkippedRibbonVertices = w.ribbon.Skipped
	}
}

// TerrainCount returns how many tiles carry terrain t.
func (s Stats) TerrainCount(t tiles.Terrain) int { return s.Terrain[t.String()] }
