package world

import "hexglobe.ai/internal/sim/world/render"

// RenderData flattens the current state for a renderer. Tile metadata reflects
// units and selection at the time of the call.
func (w *World) RenderData() *render.Data {
	return render.Extract(w.tiles, w.ribbon, render.Options{
		Palette:    w.cfg.Palette,
		RiverColor: w.cfg.RiverColor,
	})
}
