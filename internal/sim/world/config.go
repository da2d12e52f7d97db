package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"hexglobe.ai/internal/sim/world/mesh"
	"hexglobe.ai/internal/sim/world/rivers"
	"hexglobe.ai/internal/sim/world/spatial"
	"hexglobe.ai/internal/sim/world/terrain/gen"
	"hexglobe.ai/internal/sim/world/tiles"
)

// GenConfig is everything a generation run depends on. Each stage gets its
// own slice of it; nothing is read from package state.
type GenConfig struct {
	ID string

	// Level is the number of subdivision rounds; values below 1 clamp to 1.
	Level int
	// RiverCount is the number of sources sampled; negative clamps to 0.
	RiverCount int

	LandSeed   int64
	HeightSeed int64
	RiverSeed  int64

	Terrain  gen.Config
	Rivers   rivers.Config
	CellSize float64

	Palette    tiles.Palette
	RiverColor tiles.Color

	// Assigner replaces the noise terrain policy when set.
	Assigner gen.Assigner
}

func DefaultGenConfig() GenConfig {
	return GenConfig{
		ID:         "globe",
		Level:      4,
		RiverCount: 150,
		LandSeed:   1,
		HeightSeed: 2,
		RiverSeed:  3,
		Terrain:    gen.DefaultConfig(),
		Rivers:     rivers.DefaultConfig(),
		CellSize:   spatial.DefaultCellSize,
	}
}

func (c GenConfig) normalized() GenConfig {
	c.Level = mesh.ClampLevel(c.Level)
	if c.RiverCount < 0 {
		c.RiverCount = 0
	}
	if c.CellSize <= 0 {
		c.CellSize = spatial.DefaultCellSize
	}
	c.Terrain.LandSeed = c.LandSeed
	c.Terrain.HeightSeed = c.HeightSeed
	return c
}

// CacheKey identifies the generated geometry, terrain and rivers. Presentation
// settings (palette, colors, ID, ribbon shape) do not contribute; the ribbon
// is rebuilt on every load.
func (c GenConfig) CacheKey() string {
	n := c.normalized()
	h := sha256.New()
	fmt.Fprintf(h, "v1|level=%d|rivers=%d|seeds=%d,%d,%d|terrain=%+v|river_source=%g|river_steps=%d|assigner=%T",
		n.Level, n.RiverCount, n.LandSeed, n.HeightSeed, n.RiverSeed, n.Terrain,
		n.Rivers.SourceHeight, n.Rivers.MaxSteps, n.Assigner)
	return hex.EncodeToString(h.Sum(nil))[:32]
}
