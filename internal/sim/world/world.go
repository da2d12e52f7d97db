package world

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/rivers"
	"hexglobe.ai/internal/sim/world/spatial"
	"hexglobe.ai/internal/sim/world/tiles"
)

var (
	ErrUnknownTile = errors.New("unknown tile")
	ErrUnknownUnit = errors.New("unknown unit")

	ErrTileOccupied = tiles.ErrTileOccupied
	ErrNotNeighbor  = tiles.ErrNotNeighbor
)

// World is the simulation context: the generated globe plus the little game
// state layered on it. After Run starts, only the Run goroutine may touch it.
type World struct {
	cfg GenConfig
	log *log.Logger

	tiles  *tiles.Set
	rivers *rivers.Network
	ribbon *rivers.Ribbon
	grid   *spatial.Grid

	units    map[int]*tiles.Unit
	nextUnit int
	selected *tiles.Tile

	stats  Stats
	events EventSink

	pickReq   chan PickRequest
	selectReq chan SelectRequest
	placeReq  chan PlaceRequest
	moveReq   chan MoveRequest
	renderReq chan RenderRequest
	snapReq   chan SnapshotRequest
	stop      chan struct{}
	stopOnce  sync.Once
}

func newWorld(cfg GenConfig, logger *log.Logger) *World {
	return &World{
		cfg:       cfg,
		log:       logger,
		units:     map[int]*tiles.Unit{},
		nextUnit:  1,
		pickReq:   make(chan PickRequest, 64),
		selectReq: make(chan SelectRequest, 64),
		placeReq:  make(chan PlaceRequest, 64),
		moveReq:   make(chan MoveRequest, 64),
		renderReq: make(chan RenderRequest, 16),
		snapReq:   make(chan SnapshotRequest, 4),
		stop:      make(chan struct{}),
	}
}

func (w *World) logf(format string, args ...any) {
	if w.log != nil {
		w.log.Printf(format, args...)
	}
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() GenConfig          { return w.cfg }
func (w *World) Stats() Stats               { return w.stats }
func (w *World) Tiles() *tiles.Set          { return w.tiles }
func (w *World) Rivers() *rivers.Network    { return w.rivers }
func (w *World) Ribbon() *rivers.Ribbon     { return w.ribbon }
func (w *World) TileCount() int             { return w.tiles.Len() }
func (w *World) Vertices() []mathx.Vec3     { return w.tiles.Verts }
func (w *World) RiverPaths() [][]int        { return w.rivers.Paths() }
func (w *World) RiverFlow() map[int]float64 { return w.rivers.Flow }

func (w *World) Tile(id int) (*tiles.Tile, error) {
	t, ok := w.tiles.Tile(id)
	if !ok {
		return nil, fmt.Errorf("tile %d: %w", id, ErrUnknownTile)
	}
	return t, nil
}

// Pick casts a ray at the unit globe. A miss is (nil, false).
func (w *World) Pick(origin, dir mathx.Vec3) (*tiles.Tile, bool) {
	id, ok := w.grid.Pick(origin, dir)
	if !ok {
		return nil, false
	}
	return w.tiles.Tiles[id], true
}

// Select marks one tile as selected and clears the previous one. A negative
// id clears the selection.
func (w *World) Select(id int) error {
	if id < 0 {
		w.clearSelection()
		return nil
	}
	t, err := w.Tile(id)
	if err != nil {
		return err
	}
	w.clearSelection()
	t.Selected = true
	w.selected = t
	return nil
}

func (w *World) clearSelection() {
	if w.selected != nil {
		w.selected.Selected = false
		w.selected = nil
	}
}

func (w *World) Selected() (*tiles.Tile, bool) {
	return w.selected, w.selected != nil
}

func (w *World) PathTo(from, to, maxDepth int) ([]int, error) {
	a, err := w.Tile(from)
	if err != nil {
		return nil, err
	}
	b, err := w.Tile(to)
	if err != nil {
		return nil, err
	}
	path := w.tiles.PathTo(a, b, maxDepth)
	out := make([]int, len(path))
	for i, t := range path {
		out[i] = t.ID
	}
	return out, nil
}

func (w *World) WithinDistance(id int, dist float64) ([]int, error) {
	t, err := w.Tile(id)
	if err != nil {
		return nil, err
	}
	near := w.tiles.WithinDistance(t, dist)
	out := make([]int, len(near))
	for i, n := range near {
		out[i] = n.ID
	}
	return out, nil
}

func (w *World) GeodesicDistance(a, b int) (float64, error) {
	ta, err := w.Tile(a)
	if err != nil {
		return 0, err
	}
	tb, err := w.Tile(b)
	if err != nil {
		return 0, err
	}
	return w.tiles.GeodesicDistance(ta, tb), nil
}
