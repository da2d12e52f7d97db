package world

import (
	"crypto/sha256"
	"encoding/hex"

	"hexglobe.ai/internal/sim/world/io/digestcodec"
)

// Digest hashes the persisted and derived world structure: tile boundaries,
// terrain, both adjacency graphs, the downstream map and flow. Two worlds with
// equal digests serve identical queries.
func (w *World) Digest() string {
	h := sha256.New()
	d := digestcodec.NewWriter(h)

	d.Int(w.cfg.Level)
	d.Int(len(w.tiles.Verts))
	for _, v := range w.tiles.Verts {
		d.F64(v.X)
		d.F64(v.Y)
		d.F64(v.Z)
	}
	d.Int(w.tiles.Len())
	for _, t := range w.tiles.Tiles {
		d.Ints(t.Vertices)
		d.String(t.Terrain.String())
		d.F64(t.Height)
	}
	w.digestGraph(d)
	d.IntMap(w.rivers.Downstream)
	d.FloatMap(w.rivers.Flow)
	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestGraph(d *digestcodec.Writer) {
	g := w.tiles.Graph
	for _, ns := range g.TileNeighbors {
		d.Ints(ns)
	}
	for _, ns := range g.VertexNeighbors {
		d.Ints(ns)
	}
	for _, ts := range g.VertexTiles {
		d.Ints(ts)
	}
}
