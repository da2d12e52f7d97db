package rivers

import (
	"hexglobe.ai/internal/sim/world/logic/mathx"
)

// Ribbon is indexed triangle geometry for every river path. Flow holds the
// normalized flow (0..1] of the path vertex each ribbon vertex came from.
type Ribbon struct {
	Positions []mathx.Vec3
	Flow      []float64
	Triangles [][3]int
	// Skipped counts path vertices dropped for degenerate direction vectors.
	Skipped int
}

// BuildRibbon lays a continuous strip along each path: two offset vertices per
// path vertex, joined by two triangles per segment. Paths ending at a sea
// vertex get a delta fan.
func BuildRibbon(n *Network, verts []mathx.Vec3, cfg Config) *Ribbon {
	cfg.applyDefaults()
	r := &Ribbon{}
	maxFlow := n.MaxFlow()
	for _, path := range n.Paths() {
		r.addPath(n, verts, path, maxFlow, cfg)
	}
	return r
}

type crossSection struct {
	center, side, dir mathx.Vec3
	width             float64
	left, right       int
}

func (r *Ribbon) addPath(n *Network, verts []mathx.Vec3, path []int, maxFlow float64, cfg Config) {
	var prev *crossSection
	for i, v := range path {
		p := verts[v]
		a, b := p, p
		if i > 0 {
			a = verts[path[i-1]]
		}
		if i < len(path)-1 {
			b = verts[path[i+1]]
		}
		dir, ok := b.Sub(a).Unit()
		if !ok {
			r.Skipped++
			continue
		}
		up, ok := p.Unit()
		if !ok {
			r.Skipped++
			continue
		}
		side, ok := up.Cross(dir).Unit()
		if !ok {
			r.Skipped++
			continue
		}
		f := n.Flow[v] / maxFlow
		if f <= 0 {
			f = 1 / maxFlow
		}
		cs := &crossSection{
			center: p,
			side:   side,
			dir:    dir,
			width:  cfg.BaseWidth + cfg.WidthFactor*f,
		}
		half := cs.width / 2
		cs.left = r.vertex(p.Sub(side.Mul(half)), cfg.Elevation, f)
		cs.right = r.vertex(p.Add(side.Mul(half)), cfg.Elevation, f)
		if prev != nil {
			r.triangle(prev.left, prev.right, cs.right)
			r.triangle(prev.left, cs.right, cs.left)
		}
		prev = cs
	}
	if prev == nil || !n.IsSea(path[len(path)-1]) || prev.center != verts[path[len(path)-1]] {
		return
	}
	r.delta(prev, cfg)
}

// delta fans out from the mouth cross-section toward the sea.
func (r *Ribbon) delta(cs *crossSection, cfg Config) {
	f := r.Flow[cs.left]
	mouth := r.vertex(cs.center, cfg.Elevation, f)
	ahead := cs.center.Add(cs.dir.Mul(cs.width * cfg.DeltaLength))
	spread := cs.side.Mul(cs.width * cfg.DeltaSpread / 2)
	fan := []int{
		cs.left,
		r.vertex(ahead.Sub(spread), cfg.Elevation, f),
		r.vertex(ahead, cfg.Elevation, f),
		r.vertex(ahead.Add(spread), cfg.Elevation, f),
		cs.right,
	}
	for i := 0; i+1 < len(fan); i++ {
		r.triangle(mouth, fan[i], fan[i+1])
	}
}

func (r *Ribbon) vertex(p mathx.Vec3, elevation, flow float64) int {
	r.Positions = append(r.Positions, p.Normalize().Mul(elevation))
	r.Flow = append(r.Flow, flow)
	return len(r.Positions) - 1
}

// triangle appends a, b, c wound counter-clockwise as seen from outside.
func (r *Ribbon) triangle(a, b, c int) {
	pa, pb, pc := r.Positions[a], r.Positions[b], r.Positions[c]
	if pb.Sub(pa).Cross(pc.Sub(pa)).Dot(pa.Add(pb).Add(pc)) < 0 {
		b, c = c, b
	}
	r.Triangles = append(r.Triangles, [3]int{a, b, c})
}
