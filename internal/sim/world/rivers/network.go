// Package rivers traces river networks over the tile-vertex graph and builds
// ribbon geometry for them.
package rivers

import (
	"fmt"
	"math/rand"
	"sort"

	"hexglobe.ai/internal/sim/world/tiles"
)

type Config struct {
	// Sources must have an average incident tile height above this.
	SourceHeight float64
	// MaxSteps bounds each trace.
	MaxSteps int

	BaseWidth   float64
	WidthFactor float64
	// Elevation is the radius ribbon vertices are projected to.
	Elevation float64
	// Delta fan geometry at sea mouths, relative to the local ribbon width.
	DeltaLength float64
	DeltaSpread float64
}

func DefaultConfig() Config {
	return Config{
		SourceHeight: 0.6,
		MaxSteps:     200,
		BaseWidth:    0.002,
		WidthFactor:  0.01,
		Elevation:    0.99,
		DeltaLength:  3,
		DeltaSpread:  2.5,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SourceHeight <= 0 {
		c.SourceHeight = d.SourceHeight
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.BaseWidth <= 0 {
		c.BaseWidth = d.BaseWidth
	}
	if c.WidthFactor <= 0 {
		c.WidthFactor = d.WidthFactor
	}
	if c.Elevation <= 0 {
		c.Elevation = d.Elevation
	}
	if c.DeltaLength <= 0 {
		c.DeltaLength = d.DeltaLength
	}
	if c.DeltaSpread <= 0 {
		c.DeltaSpread = d.DeltaSpread
	}
}

// Network is a forest of downstream edges over tile-set vertices. Downstream
// is the single source of truth; flow and paths are derived from it.
type Network struct {
	Downstream map[int]int
	Flow       map[int]float64
	// Sea[v] reports whether vertex v touches a water tile.
	Sea []bool
}

// NewNetwork wraps a downstream map and accumulates its flow. sea may be nil.
func NewNetwork(downstream map[int]int, sea []bool) *Network {
	n := &Network{Downstream: downstream, Sea: sea}
	if n.Downstream == nil {
		n.Downstream = map[int]int{}
	}
	n.Flow = accumulate(n.Downstream)
	return n
}

func (n *Network) Empty() bool { return len(n.Downstream) == 0 }

// IsSea is false for vertices outside the classified range.
func (n *Network) IsSea(v int) bool {
	return v >= 0 && v < len(n.Sea) && n.Sea[v]
}

// MaxFlow is 1 for an empty network.
func (n *Network) MaxFlow() float64 {
	m := 0.0
	for _, f := range n.Flow {
		if f > m {
			m = f
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

// Generate classifies vertices, samples up to count sources with rng, traces
// them to the sea and accumulates flow. Terrain must already be assigned.
func Generate(s *tiles.Set, count int, rng *rand.Rand, cfg Config) *Network {
	cfg.applyDefaults()
	sea := Classify(s)
	if count <= 0 {
		return NewNetwork(nil, sea)
	}
	g := s.Graph
	sources := sample(candidates(s, sea, cfg.SourceHeight), count, rng)

	down := map[int]int{}
	claimed := map[int]bool{}
	for _, src := range sources {
		if claimed[src] {
			continue
		}
		trace(g.VertexNeighbors, sea, down, claimed, src, cfg.MaxSteps, rng)
	}
	return NewNetwork(down, sea)
}

// Classify marks a vertex as sea when any incident tile is water.
func Classify(s *tiles.Set) []bool {
	sea := make([]bool, len(s.Verts))
	for v, ts := range s.Graph.VertexTiles {
		for _, id := range ts {
			if s.Tiles[id].IsWater() {
				sea[v] = true
				break
			}
		}
	}
	return sea
}

func inland(v int, nbrs [][]int, sea []bool) bool {
	if sea[v] {
		return false
	}
	for _, n := range nbrs[v] {
		if sea[n] {
			return false
		}
	}
	return true
}

// candidates returns high inland vertices, or every inland vertex when none
// is high enough. Ascending vertex order.
func candidates(s *tiles.Set, sea []bool, minHeight float64) []int {
	g := s.Graph
	var high, all []int
	for v := range s.Verts {
		ts := g.VertexTiles[v]
		if len(ts) == 0 || !inland(v, g.VertexNeighbors, sea) {
			continue
		}
		all = append(all, v)
		sum := 0.0
		for _, id := range ts {
			sum += s.Tiles[id].Height
		}
		if sum/float64(len(ts)) > minHeight {
			high = append(high, v)
		}
	}
	if len(high) > 0 {
		return high
	}
	return all
}

// sample picks up to k distinct elements uniformly without replacement.
func sample(xs []int, k int, rng *rand.Rand) []int {
	if k > len(xs) {
		k = len(xs)
	}
	out := make([]int, 0, k)
	for _, i := range rng.Perm(len(xs))[:k] {
		out = append(out, xs[i])
	}
	return out
}

// trace walks from src to a random unvisited neighbor each step, jumping to
// the sea as soon as one is adjacent. It stops on a vertex that already has a
// downstream edge, at a dead end, or after maxSteps.
func trace(nbrs [][]int, sea []bool, down map[int]int, claimed map[int]bool, src, maxSteps int, rng *rand.Rand) {
	cur := src
	onPath := map[int]bool{src: true}
	claimed[src] = true
	for step := 0; step < maxSteps; step++ {
		if _, ok := down[cur]; ok {
			return
		}
		var valid, seaward []int
		for _, n := range nbrs[cur] {
			if onPath[n] || reaches(down, n, cur) {
				continue
			}
			valid = append(valid, n)
			if sea[n] {
				seaward = append(seaward, n)
			}
		}
		if len(seaward) > 0 {
			down[cur] = seaward[rng.Intn(len(seaward))]
			return
		}
		if len(valid) == 0 {
			return
		}
		next := valid[rng.Intn(len(valid))]
		down[cur] = next
		claimed[next] = true
		onPath[next] = true
		cur = next
	}
}

// reaches reports whether following downstream edges from v arrives at target.
// Stepping onto such a vertex would close a cycle.
func reaches(down map[int]int, v, target int) bool {
	for steps := 0; steps <= len(down); steps++ {
		if v == target {
			return true
		}
		next, ok := down[v]
		if !ok {
			return false
		}
		v = next
	}
	return false
}

// accumulate runs Kahn's algorithm over the forest. Vertices without inflow
// start at 1; every other vertex carries the sum of its inflows.
func accumulate(down map[int]int) map[int]float64 {
	flow := map[int]float64{}
	if len(down) == 0 {
		return flow
	}
	indeg := map[int]int{}
	for u, v := range down {
		if _, ok := indeg[u]; !ok {
			indeg[u] = 0
		}
		indeg[v]++
	}
	verts := make([]int, 0, len(indeg))
	for v := range indeg {
		verts = append(verts, v)
	}
	sort.Ints(verts)

	var queue []int
	for _, v := range verts {
		if indeg[v] == 0 {
			queue = append(queue, v)
			flow[v] = 1
		}
	}
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		v, ok := down[u]
		if !ok {
			continue
		}
		flow[v] += flow[u]
		indeg[v]--
		if indeg[v] == 0 {
			queue = append(queue, v)
		}
	}
	return flow
}

// Sources are the vertices that never appear as a downstream target, ascending.
func (n *Network) Sources() []int {
	targets := map[int]bool{}
	for _, v := range n.Downstream {
		targets[v] = true
	}
	var out []int
	for u := range n.Downstream {
		if !targets[u] {
			out = append(out, u)
		}
	}
	sort.Ints(out)
	return out
}

// Paths walks downstream from every source. Paths shorter than two vertices
// are dropped.
func (n *Network) Paths() [][]int {
	var out [][]int
	for _, src := range n.Sources() {
		path := []int{src}
		seen := map[int]bool{src: true}
		for v := src; ; {
			next, ok := n.Downstream[v]
			if !ok || seen[next] {
				break
			}
			path = append(path, next)
			seen[next] = true
			v = next
		}
		if len(path) >= 2 {
			out = append(out, path)
		}
	}
	return out
}

// Validate reports a downstream chain that loops back on itself.
func (n *Network) Validate() error {
	for u := range n.Downstream {
		if reaches(n.Downstream, n.Downstream[u], u) {
			return fmt.Errorf("river network has a cycle through vertex %d", u)
		}
	}
	return nil
}
