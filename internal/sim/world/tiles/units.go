package tiles

import (
	"errors"
	"fmt"
)

var (
	ErrTileOccupied = errors.New("tile occupied")
	ErrNotNeighbor  = errors.New("tile is not adjacent")
)

// Unit occupies exactly one tile; a tile holds at most one unit.
type Unit struct {
	ID    int
	Owner string
	Tile  *Tile
}

// Place puts a new unit on t.
func Place(t *Tile, id int, owner string) (*Unit, error) {
	if t.Unit != nil {
		return nil, fmt.Errorf("place unit %d on tile %d: %w", id, t.ID, ErrTileOccupied)
	}
	u := &Unit{ID: id, Owner: owner, Tile: t}
	t.Unit = u
	return u, nil
}

// MoveTo moves u one step to an unoccupied neighbor of its tile.
func (u *Unit) MoveTo(dst *Tile) error {
	if !u.Tile.HasNeighbor(dst) {
		return fmt.Errorf("move unit %d to tile %d: %w", u.ID, dst.ID, ErrNotNeighbor)
	}
	if dst.Unit != nil {
		return fmt.Errorf("move unit %d to tile %d: %w", u.ID, dst.ID, ErrTileOccupied)
	}
	u.Tile.Unit = nil
	u.Tile = dst
	dst.Unit = u
	return nil
}

// Remove detaches u from its tile.
func (u *Unit) Remove() {
	if u.Tile != nil && u.Tile.Unit == u {
		u.Tile.Unit = nil
	}
	u.Tile = nil
}
