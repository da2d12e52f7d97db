package world

import (
	"context"

	snapv1 "hexglobe.ai/internal/persistence/snapshot"
	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/render"
)

type PickRequest struct {
	Origin, Dir mathx.Vec3
	// Select also makes the picked tile the selection.
	Select bool
	Resp   chan PickResult
}

// PickResult.TileID is -1 on a miss.
type PickResult struct {
	TileID int
}

type SelectRequest struct {
	TileID int
	Resp   chan error
}

type PlaceRequest struct {
	TileID int
	Owner  string
	Resp   chan PlaceResult
}

type PlaceResult struct {
	UnitID int
	Err    error
}

type MoveRequest struct {
	UnitID int
	To     int
	Resp   chan error
}

type RenderRequest struct {
	Resp chan *render.Data
}

type SnapshotRequest struct {
	Resp chan snapv1.SnapshotV1
}

// Event is an accepted state change made through Run.
type Event struct {
	Kind   string `json:"kind"` // PLACE, MOVE, SELECT
	UnitID int    `json:"unit_id,omitempty"`
	Owner  string `json:"owner,omitempty"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

type EventSink interface {
	WriteEvent(e Event) error
}

// SetEventSink must be called before Run.
func (w *World) SetEventSink(s EventSink) { w.events = s }

func (w *World) emit(e Event) {
	if w.events == nil {
		return
	}
	if err := w.events.WriteEvent(e); err != nil {
		w.logf("event sink: %v", err)
	}
}

func (w *World) PickRequests() chan<- PickRequest         { return w.pickReq }
func (w *World) SelectRequests() chan<- SelectRequest     { return w.selectReq }
func (w *World) PlaceRequests() chan<- PlaceRequest       { return w.placeReq }
func (w *World) MoveRequests() chan<- MoveRequest         { return w.moveReq }
func (w *World) RenderRequests() chan<- RenderRequest     { return w.renderReq }
func (w *World) SnapshotRequests() chan<- SnapshotRequest { return w.snapReq }

// Run serves requests until ctx is done or Stop is called. It is the only
// goroutine that mutates the world once started. Response channels must be
// buffered; a full one drops the reply.
func (w *World) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.pickReq:
			res := PickResult{TileID: -1}
			if t, ok := w.Pick(req.Origin, req.Dir); ok {
				res.TileID = t.ID
				if req.Select {
					w.selectAndEmit(t.ID)
				}
			}
			reply(req.Resp, res)
		case req := <-w.selectReq:
			reply(req.Resp, w.selectAndEmit(req.TileID))
		case req := <-w.placeReq:
			res := PlaceResult{}
			u, err := w.PlaceUnit(req.TileID, req.Owner)
			if err != nil {
				res.Err = err
			} else {
				res.UnitID = u.ID
				w.emit(Event{Kind: "PLACE", UnitID: u.ID, Owner: u.Owner, From: -1, To: u.Tile.ID})
			}
			reply(req.Resp, res)
		case req := <-w.moveReq:
			from := -1
			if u, ok := w.units[req.UnitID]; ok {
				from = u.Tile.ID
			}
			err := w.MoveUnit(req.UnitID, req.To)
			if err != nil {
				w.logf("move unit %d -> %d rejected: %v", req.UnitID, req.To, err)
			} else {
				w.emit(Event{Kind: "MOVE", UnitID: req.UnitID, From: from, To: req.To})
			}
			reply(req.Resp, err)
		case req := <-w.renderReq:
			reply(req.Resp, w.RenderData())
		case req := <-w.snapReq:
			reply(req.Resp, w.ExportSnapshot())
		}
	}
}

// Stop makes Run return nil. It is safe to call more than once.
func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

func (w *World) selectAndEmit(id int) error {
	from := -1
	if w.selected != nil {
		from = w.selected.ID
	}
	if err := w.Select(id); err != nil {
		return err
	}
	w.emit(Event{Kind: "SELECT", From: from, To: id})
	return nil
}

func reply[T any](ch chan T, v T) {
	if ch == nil {
		return
	}
	select {
	case ch <- v:
	default:
	}
}
