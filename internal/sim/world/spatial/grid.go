// Package spatial indexes tile centers on a uniform grid for picking.
package spatial

import (
	"math"
	"sort"

	"hexglobe.ai/internal/sim/world/logic/mathx"
)

const DefaultCellSize = 0.1

type cellKey struct{ X, Y, Z int }

// Grid buckets ids by floor(p / cell) on each axis. Queries return a
// candidate set; Nearest does the exact distance check.
type Grid struct {
	cell   float64
	cells  map[cellKey][]int
	points map[int]mathx.Vec3
}

func NewGrid(cell float64) *Grid {
	if cell <= 0 {
		cell = DefaultCellSize
	}
	return &Grid{
		cell:   cell,
		cells:  map[cellKey][]int{},
		points: map[int]mathx.Vec3{},
	}
}

// FromPoints indexes points[i] under id i.
func FromPoints(points []mathx.Vec3, cell float64) *Grid {
	g := NewGrid(cell)
	for id, p := range points {
		g.Insert(id, p)
	}
	return g
}

func (g *Grid) CellSize() float64 { return g.cell }
func (g *Grid) Len() int          { return len(g.points) }

func (g *Grid) key(p mathx.Vec3) cellKey {
	return cellKey{
		X: mathx.FloorCell(p.X, g.cell),
		Y: mathx.FloorCell(p.Y, g.cell),
		Z: mathx.FloorCell(p.Z, g.cell),
	}
}

// Insert replaces any earlier position of id.
func (g *Grid) Insert(id int, p mathx.Vec3) {
	if old, ok := g.points[id]; ok {
		k := g.key(old)
		ids := g.cells[k]
		for i, x := range ids {
			if x == id {
				g.cells[k] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	g.points[id] = p
	k := g.key(p)
	g.cells[k] = append(g.cells[k], id)
}

// Query returns the ids in p's cell and its 26 neighbors, ascending.
func (g *Grid) Query(p mathx.Vec3) []int {
	c := g.key(p)
	var out []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				out = append(out, g.cells[cellKey{c.X + dx, c.Y + dy, c.Z + dz}]...)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Nearest returns the candidate closest to p; ties go to the lower id.
func (g *Grid) Nearest(p mathx.Vec3) (int, bool) {
	best, bestD := -1, math.Inf(1)
	for _, id := range g.Query(p) {
		d := g.points[id].Sub(p).Len2()
		if d < bestD {
			best, bestD = id, d
		}
	}
	return best, best >= 0
}
