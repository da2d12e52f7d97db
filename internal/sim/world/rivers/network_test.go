package rivers

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/mesh"
	"hexglobe.ai/internal/sim/world/terrain/gen"
	"hexglobe.ai/internal/sim/world/tiles"
)

func TestFlowOnHandBuiltForest(t *testing.T) {
	const a, b, c, d = 0, 1, 2, 3
	n := NewNetwork(map[int]int{a: c, b: c, c: d}, nil)
	want := map[int]float64{a: 1, b: 1, c: 2, d: 2}
	if !reflect.DeepEqual(n.Flow, want) {
		t.Fatalf("flow: got %v want %v", n.Flow, want)
	}
	paths := n.Paths()
	wantPaths := [][]int{{a, c, d}, {b, c, d}}
	if !reflect.DeepEqual(paths, wantPaths) {
		t.Fatalf("paths: got %v want %v", paths, wantPaths)
	}
	if n.MaxFlow() != 2 {
		t.Fatalf("max flow: got %f", n.MaxFlow())
	}
}

func TestEmptyNetwork(t *testing.T) {
	n := NewNetwork(nil, nil)
	if !n.Empty() || len(n.Flow) != 0 || len(n.Paths()) != 0 {
		t.Fatalf("expected empty network, got %+v", n)
	}
	if n.MaxFlow() != 1 {
		t.Fatalf("empty max flow: %f", n.MaxFlow())
	}
}

func world(t *testing.T, level int) *tiles.Set {
	t.Helper()
	s := tiles.FromGoldberg(mesh.Build(level))
	cfg := gen.DefaultConfig()
	cfg.LandSeed, cfg.HeightSeed = 11, 12
	gen.NewNoiseAssigner(cfg).Assign(s)
	return s
}

func TestZeroRiverCount(t *testing.T) {
	s := world(t, 3)
	n := Generate(s, 0, rand.New(rand.NewSource(1)), DefaultConfig())
	if !n.Empty() || len(n.Flow) != 0 || len(n.Paths()) != 0 {
		t.Fatalf("expected empty network for zero rivers")
	}
}

func TestNoInlandVerticesYieldsEmptyNetwork(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(2))
	for id := range s.Tiles {
		s.SetTerrain(id, tiles.Ocean, 0)
	}
	n := Generate(s, 10, rand.New(rand.NewSource(1)), DefaultConfig())
	if !n.Empty() || len(n.Flow) != 0 {
		t.Fatalf("expected empty network on an all-water world")
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	s := world(t, 4)
	a := Generate(s, 25, rand.New(rand.NewSource(99)), DefaultConfig())
	b := Generate(s, 25, rand.New(rand.NewSource(99)), DefaultConfig())
	if a.Empty() {
		t.Fatalf("expected rivers on a level 4 world")
	}
	if !reflect.DeepEqual(a.Downstream, b.Downstream) || !reflect.DeepEqual(a.Flow, b.Flow) {
		t.Fatalf("same seed produced different networks")
	}
}

func TestGeneratedNetworkIsForestWithConsistentFlow(t *testing.T) {
	s := world(t, 4)
	for seed := int64(1); seed <= 5; seed++ {
		n := Generate(s, 40, rand.New(rand.NewSource(seed)), DefaultConfig())
		for u := range n.Downstream {
			if reaches(n.Downstream, n.Downstream[u], u) {
				t.Fatalf("seed %d: cycle through vertex %d", seed, u)
			}
			if n.IsSea(u) {
				t.Fatalf("seed %d: sea vertex %d has a downstream edge", seed, u)
			}
		}
		inflow := map[int]float64{}
		for u, v := range n.Downstream {
			inflow[v] += n.Flow[u]
		}
		for v, f := range n.Flow {
			if f < 1 {
				t.Fatalf("seed %d: vertex %d flow %f < 1", seed, v, f)
			}
			if in, ok := inflow[v]; ok && math.Abs(in-f) > 1e-9 {
				t.Fatalf("seed %d: vertex %d flow %f != inflow %f", seed, v, f, in)
			}
		}
		for _, p := range n.Paths() {
			if len(p) < 2 {
				t.Fatalf("seed %d: degenerate path %v", seed, p)
			}
			if len(p) > DefaultConfig().MaxSteps*len(n.Sources())+1 {
				t.Fatalf("seed %d: unbounded path of %d vertices", seed, len(p))
			}
		}
	}
}

func TestSourcesAreInland(t *testing.T) {
	s := world(t, 4)
	n := Generate(s, 30, rand.New(rand.NewSource(3)), DefaultConfig())
	for _, src := range n.Sources() {
		if !inland(src, s.Graph.VertexNeighbors, n.Sea) {
			t.Fatalf("source %d is not strictly inland", src)
		}
	}
}

func TestRibbonStripAndDelta(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(2))
	nb := s.Graph.VertexNeighbors
	v0 := 0
	v1 := nb[v0][0]
	var v2 int
	for _, w := range nb[v1] {
		if w != v0 {
			v2 = w
			break
		}
	}
	down := map[int]int{v0: v1, v1: v2}
	cfg := DefaultConfig()

	r := BuildRibbon(NewNetwork(down, nil), s.Verts, cfg)
	if r.Skipped != 0 {
		t.Fatalf("unexpected skipped vertices: %d", r.Skipped)
	}
	if len(r.Positions) != 6 || len(r.Triangles) != 4 {
		t.Fatalf("strip: got %d vertices %d triangles", len(r.Positions), len(r.Triangles))
	}
	for i, p := range r.Positions {
		if math.Abs(p.Len()-cfg.Elevation) > 1e-9 {
			t.Fatalf("vertex %d radius %f", i, p.Len())
		}
	}

	sea := make([]bool, len(s.Verts))
	sea[v2] = true
	r = BuildRibbon(NewNetwork(down, sea), s.Verts, cfg)
	if len(r.Positions) != 10 || len(r.Triangles) != 8 {
		t.Fatalf("delta: got %d vertices %d triangles", len(r.Positions), len(r.Triangles))
	}
	for i, tri := range r.Triangles {
		a, b, c := r.Positions[tri[0]], r.Positions[tri[1]], r.Positions[tri[2]]
		if b.Sub(a).Cross(c.Sub(a)).Dot(a.Add(b).Add(c)) < 0 {
			t.Fatalf("triangle %d wound inward", i)
		}
	}
}

func TestRibbonWidthFollowsFlow(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(3))
	nb := s.Graph.VertexNeighbors
	c := 10
	a, b := nb[c][0], nb[c][1]
	d := nb[c][2]
	n := NewNetwork(map[int]int{a: c, b: c, c: d}, nil)
	r := BuildRibbon(n, s.Verts, DefaultConfig())
	maxSeen, minSeen := 0.0, math.Inf(1)
	for _, f := range r.Flow {
		maxSeen = math.Max(maxSeen, f)
		minSeen = math.Min(minSeen, f)
	}
	if maxSeen != 1 || minSeen != 0.5 {
		t.Fatalf("normalized flow range: got [%f,%f] want [0.5,1]", minSeen, maxSeen)
	}
}

func TestRibbonSkipsDegenerateVertices(t *testing.T) {
	verts := []mathx.Vec3{{X: 1}, {X: 1}}
	r := BuildRibbon(NewNetwork(map[int]int{0: 1}, nil), verts, DefaultConfig())
	if r.Skipped != 2 || len(r.Triangles) != 0 {
		t.Fatalf("got skipped=%d triangles=%d", r.Skipped, len(r.Triangles))
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	if err := NewNetwork(map[int]int{0: 1, 1: 2}, nil).Validate(); err != nil {
		t.Fatalf("chain reported as cycle: %v", err)
	}
	if err := NewNetwork(map[int]int{0: 1, 1: 2, 2: 0}, nil).Validate(); err == nil {
		t.Fatalf("expected cycle error")
	}
}

// chainGraph links 0-1-2-...-(n-1).
func chainGraph(n int) [][]int {
	nbrs := make([][]int, n)
	for v := 0; v+1 < n; v++ {
		nbrs[v] = append(nbrs[v], v+1)
		nbrs[v+1] = append(nbrs[v+1], v)
	}
	return nbrs
}

func TestTraceStepsToSeaFirst(t *testing.T) {
	// 2 touches land (1, 4) and sea (3).
	nbrs := [][]int{{1}, {0, 2}, {1, 3, 4}, {2}, {2}}
	sea := []bool{false, false, false, true, false}
	for seed := int64(1); seed <= 50; seed++ {
		down := map[int]int{}
		trace(nbrs, sea, down, map[int]bool{}, 2, 200, rand.New(rand.NewSource(seed)))
		if !reflect.DeepEqual(down, map[int]int{2: 3}) {
			t.Fatalf("seed %d: got %v, want a single step into the sea", seed, down)
		}
	}
}

func TestTraceStopsOnDrainedVertex(t *testing.T) {
	nbrs := chainGraph(4)
	sea := []bool{false, false, false, true}
	down := map[int]int{2: 3}
	trace(nbrs, sea, down, map[int]bool{}, 0, 200, rand.New(rand.NewSource(1)))
	want := map[int]int{0: 1, 1: 2, 2: 3}
	if !reflect.DeepEqual(down, want) {
		t.Fatalf("got %v want %v", down, want)
	}
}

func TestTraceBoundedByMaxSteps(t *testing.T) {
	const n, maxSteps = 300, 200
	nbrs := chainGraph(n)
	sea := make([]bool, n)
	down := map[int]int{}
	claimed := map[int]bool{}
	trace(nbrs, sea, down, claimed, 0, maxSteps, rand.New(rand.NewSource(1)))
	if len(down) != maxSteps {
		t.Fatalf("edges: got %d want %d", len(down), maxSteps)
	}
	if down[maxSteps-1] != maxSteps {
		t.Fatalf("trace left the chain: %v", down[maxSteps-1])
	}
	if !claimed[0] || !claimed[maxSteps] || claimed[maxSteps+1] {
		t.Fatalf("claimed set does not match the traced path")
	}
}

func TestTraceDoesNotClimbDeadEndRiver(t *testing.T) {
	// An earlier river 10->11->12 dead-ended at 12. A new trace from 13 joins
	// at 12 and must not step back onto 11, which would close 11->12->11.
	nbrs := make([][]int, 14)
	nbrs[10] = []int{11}
	nbrs[11] = []int{10, 12}
	nbrs[12] = []int{11, 13}
	nbrs[13] = []int{12}
	sea := make([]bool, 14)
	down := map[int]int{10: 11, 11: 12}
	trace(nbrs, sea, down, map[int]bool{10: true}, 13, 200, rand.New(rand.NewSource(1)))

	want := map[int]int{10: 11, 11: 12, 13: 12}
	if !reflect.DeepEqual(down, want) {
		t.Fatalf("got %v want %v", down, want)
	}
	n := NewNetwork(down, sea)
	if err := n.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := n.Paths(); !reflect.DeepEqual(got, [][]int{{10, 11, 12}, {13, 12}}) {
		t.Fatalf("paths: %v", got)
	}
	if !reaches(down, 11, 12) || reaches(down, 12, 11) {
		t.Fatalf("reaches does not follow downstream edges")
	}
}

func TestCandidatesPreferHighInland(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(2))
	for id := range s.Tiles {
		s.SetTerrain(id, tiles.Grassland, 0.3)
	}
	peak := s.Tiles[0]
	s.SetTerrain(peak.ID, tiles.Mountains, 0.9)
	for _, n := range peak.Neighbors {
		s.SetTerrain(n.ID, tiles.Mountains, 0.9)
	}
	sea := Classify(s)
	got := candidates(s, sea, DefaultConfig().SourceHeight)

	in := map[int]bool{}
	for _, v := range got {
		in[v] = true
		sum := 0.0
		for _, id := range s.Graph.VertexTiles[v] {
			sum += s.Tiles[id].Height
		}
		if avg := sum / float64(len(s.Graph.VertexTiles[v])); avg <= 0.6 {
			t.Fatalf("vertex %d average height %f is not above the threshold", v, avg)
		}
	}
	for _, v := range peak.Vertices {
		if !in[v] {
			t.Fatalf("peak vertex %d missing from %v", v, got)
		}
	}
}

func TestCandidatesFallBackToInland(t *testing.T) {
	s := tiles.FromGoldberg(mesh.Build(2))
	for id := range s.Tiles {
		s.SetTerrain(id, tiles.Grassland, 0.3)
	}
	s.SetTerrain(100, tiles.Ocean, 0)
	sea := Classify(s)
	got := candidates(s, sea, DefaultConfig().SourceHeight)

	var want []int
	for v := range s.Verts {
		if inland(v, s.Graph.VertexNeighbors, sea) {
			want = append(want, v)
		}
	}
	if len(want) == 0 || len(want) == len(s.Verts) {
		t.Fatalf("expected some but not all vertices inland, got %d of %d", len(want), len(s.Verts))
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fallback candidates: got %d vertices want %d", len(got), len(want))
	}
	for _, v := range s.Tiles[100].Vertices {
		for _, c := range got {
			if c == v {
				t.Fatalf("sea vertex %d offered as a source", v)
			}
		}
	}
}
