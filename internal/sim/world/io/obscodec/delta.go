package obscodec

import "hexglobe.ai/internal/sim/world/render"

// TileDeltas returns the entries of curr that differ from prev at the same
// index, in index order. A length mismatch returns all of curr.
func TileDeltas(prev, curr []render.TileMeta) []render.TileMeta {
	if len(prev) != len(curr) {
		return curr
	}
	var out []render.TileMeta
	for i := range curr {
		p, c := prev[i], curr[i]
		if p.Terrain != c.Terrain || p.Height != c.Height || p.Unit != c.Unit || p.Selected != c.Selected {
			out = append(out, c)
		}
	}
	return out
}
