package world

import (
	"fmt"
	"sort"

	"hexglobe.ai/internal/sim/world/tiles"
)

// PlaceUnit creates a unit on an empty tile. Unit ids start at 1.
func (w *World) PlaceUnit(tileID int, owner string) (*tiles.Unit, error) {
	t, err := w.Tile(tileID)
	if err != nil {
		return nil, err
	}
	u, err := tiles.Place(t, w.nextUnit, owner)
	if err != nil {
		return nil, err
	}
	w.units[u.ID] = u
	w.nextUnit++
	return u, nil
}

// MoveUnit steps a unit onto an unoccupied neighbor of its tile.
func (w *World) MoveUnit(unitID, toTile int) error {
	u, ok := w.units[unitID]
	if !ok {
		return fmt.Errorf("unit %d: %w", unitID, ErrUnknownUnit)
	}
	dst, err := w.Tile(toTile)
	if err != nil {
		return err
	}
	return u.MoveTo(dst)
}

func (w *World) RemoveUnit(unitID int) error {
	u, ok := w.units[unitID]
	if !ok {
		return fmt.Errorf("unit %d: %w", unitID, ErrUnknownUnit)
	}
	u.Remove()
	delete(w.units, unitID)
	return nil
}

func (w *World) Unit(id int) (*tiles.Unit, bool) {
	u, ok := w.units[id]
	return u, ok
}

// Units returns every unit ordered by id.
func (w *World) Units() []*tiles.Unit {
	out := make([]*tiles.Unit, 0, len(w.units))
	for _, u := range w.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
