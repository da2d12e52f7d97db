package tiles

import (
	"container/heap"
	"math"

	"hexglobe.ai/internal/sim/world/logic/mathx"
)

// Distance is the straight-line distance between two tile centers.
func (s *Set) Distance(a, b *Tile) float64 {
	return s.CenterOf(a).Sub(s.CenterOf(b)).Len()
}

// GeodesicDistance is the angle in radians between two tile centers.
func (s *Set) GeodesicDistance(a, b *Tile) float64 {
	ca := s.CenterOf(a).Normalize()
	cb := s.CenterOf(b).Normalize()
	return math.Acos(mathx.Clamp(ca.Dot(cb), -1, 1))
}

type pathItem struct {
	cost float64
	path []*Tile
}

// pathQueue orders by cost, then by the id of the path's last tile so equal
// costs pop deterministically.
type pathQueue []pathItem

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].path[len(q[i].path)-1].ID < q[j].path[len(q[j].path)-1].ID
}
func (q pathQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any)   { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// PathTo searches the neighbor graph from start to target. A path is extended
// only while it has at most maxDepth tiles. Returns nil when target is not
// reached.
func (s *Set) PathTo(start, target *Tile, maxDepth int) []*Tile {
	q := &pathQueue{{cost: 0, path: []*Tile{start}}}
	visited := map[*Tile]bool{start: true}
	for q.Len() > 0 {
		it := heap.Pop(q).(pathItem)
		cur := it.path[len(it.path)-1]
		if cur == target {
			return it.path
		}
		if len(it.path) > maxDepth {
			continue
		}
		for _, n := range cur.Neighbors {
			if visited[n] {
				continue
			}
			visited[n] = true
			next := make([]*Tile, len(it.path)+1)
			copy(next, it.path)
			next[len(it.path)] = n
			heap.Push(q, pathItem{
				cost: float64(len(it.path)) + s.Distance(cur, n),
				path: next,
			})
		}
	}
	return nil
}

// WithinDistance returns the tiles (excluding start) whose centers are within
// dist of start's center, in breadth-first order.
func (s *Set) WithinDistance(start *Tile, dist float64) []*Tile {
	var out []*Tile
	q := []*Tile{start}
	visited := map[*Tile]bool{start: true}
	for len(q) > 0 {
		cur := q[0]
		q = q[1:]
		if s.Distance(start, cur) > dist {
			continue
		}
		if cur != start {
			out = append(out, cur)
		}
		for _, n := range cur.Neighbors {
			if !visited[n] {
				visited[n] = true
				q = append(q, n)
			}
		}
	}
	return out
}
