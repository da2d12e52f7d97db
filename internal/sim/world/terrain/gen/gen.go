// Package gen assigns terrain to a tile set. The policy is swappable: the
// rest of the pipeline only requires that every tile has a terrain and height
// before rivers are traced.
package gen

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/tiles"
)

// View is the read/write surface a terrain policy sees. *tiles.Set implements it.
type View interface {
	Len() int
	Center(id int) mathx.Vec3
	Neighbors(id int) []int
	Height(id int) float64
	SetTerrain(id int, t tiles.Terrain, height float64)
}

type Assigner interface {
	Assign(v View)
}

type Config struct {
	LandSeed   int64
	HeightSeed int64

	// Noise sampling scales applied to tile centers.
	LandScale   float64
	HeightScale float64
	Octaves     int
	Persistence float64
	// Contrast stretches the elevation field around 0.5.
	Contrast float64

	// Land where the land field exceeds SeaLevel.
	SeaLevel float64

	MountainHeight float64
	HillHeight     float64

	// Absolute latitudes in degrees.
	PolarIceLatitude float64
	SnowLatitude     float64
	TundraLatitude   float64
	TropicLatitude   float64
}

func DefaultConfig() Config {
	return Config{
		LandSeed:         1,
		HeightSeed:       2,
		LandScale:        1.5,
		HeightScale:      4.0,
		Octaves:          3,
		Persistence:      0.5,
		Contrast:         1.8,
		SeaLevel:         0.5,
		MountainHeight:   0.8,
		HillHeight:       0.65,
		PolarIceLatitude: 75,
		SnowLatitude:     70,
		TundraLatitude:   55,
		TropicLatitude:   23,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.LandScale <= 0 {
		c.LandScale = d.LandScale
	}
	if c.HeightScale <= 0 {
		c.HeightScale = d.HeightScale
	}
	if c.Octaves <= 0 {
		c.Octaves = d.Octaves
	}
	if c.Persistence <= 0 {
		c.Persistence = d.Persistence
	}
	if c.Contrast <= 0 {
		c.Contrast = d.Contrast
	}
	if c.SeaLevel <= 0 {
		c.SeaLevel = d.SeaLevel
	}
	if c.MountainHeight <= 0 {
		c.MountainHeight = d.MountainHeight
	}
	if c.HillHeight <= 0 {
		c.HillHeight = d.HillHeight
	}
	if c.PolarIceLatitude <= 0 {
		c.PolarIceLatitude = d.PolarIceLatitude
	}
	if c.SnowLatitude <= 0 {
		c.SnowLatitude = d.SnowLatitude
	}
	if c.TundraLatitude <= 0 {
		c.TundraLatitude = d.TundraLatitude
	}
	if c.TropicLatitude <= 0 {
		c.TropicLatitude = d.TropicLatitude
	}
}

// NoiseAssigner combines a low-frequency land mask, a higher-frequency
// elevation field and latitude.
type NoiseAssigner struct {
	cfg  Config
	land opensimplex.Noise
	elev opensimplex.Noise
}

func NewNoiseAssigner(cfg Config) *NoiseAssigner {
	cfg.applyDefaults()
	return &NoiseAssigner{
		cfg:  cfg,
		land: opensimplex.NewNormalized(cfg.LandSeed),
		elev: opensimplex.NewNormalized(cfg.HeightSeed),
	}
}

func (a *NoiseAssigner) Config() Config { return a.cfg }

// Assign runs two passes: land tiles first, then water tiles, since the
// coast test looks at neighbor heights.
func (a *NoiseAssigner) Assign(v View) {
	n := v.Len()
	water := make([]bool, n)
	for id := 0; id < n; id++ {
		c := v.Center(id)
		lat := Latitude(c)
		if a.landAt(c) <= a.cfg.SeaLevel {
			water[id] = true
			// Provisional; decided in the second pass.
			v.SetTerrain(id, tiles.Ocean, 0)
			continue
		}
		h := a.ElevationAt(c)
		v.SetTerrain(id, a.landBiome(h, lat), h)
	}
	for id := 0; id < n; id++ {
		if !water[id] {
			continue
		}
		v.SetTerrain(id, a.waterBiome(v, id), 0)
	}
}

func (a *NoiseAssigner) landAt(c mathx.Vec3) float64 {
	p := c.Mul(a.cfg.LandScale)
	return a.land.Eval3(p.X, p.Y, p.Z)
}

// ElevationAt samples the elevation field; land heights never reach 0 so that
// "height > 0" stays a land test.
func (a *NoiseAssigner) ElevationAt(c mathx.Vec3) float64 {
	e := octaveNoise3(a.elev, c.Mul(a.cfg.HeightScale), a.cfg.Octaves, a.cfg.Persistence)
	e = (e-0.5)*a.cfg.Contrast + 0.5
	return mathx.Clamp(e, 0.01, 1)
}

func (a *NoiseAssigner) landBiome(h, lat float64) tiles.Terrain {
	alat := math.Abs(lat)
	switch {
	case alat >= a.cfg.SnowLatitude:
		return tiles.Snow
	case h >= a.cfg.MountainHeight:
		return tiles.Mountains
	case h >= a.cfg.HillHeight:
		return tiles.Hills
	case alat >= a.cfg.TundraLatitude:
		return tiles.Tundra
	case alat <= a.cfg.TropicLatitude:
		switch {
		case h < 0.3:
			return tiles.Desert
		case h < 0.45:
			return tiles.Savanna
		default:
			return tiles.Forest
		}
	default:
		switch {
		case h < 0.35:
			return tiles.Plains
		case h < 0.5:
			return tiles.Grassland
		default:
			return tiles.Forest
		}
	}
}

func (a *NoiseAssigner) waterBiome(v View, id int) tiles.Terrain {
	if math.Abs(Latitude(v.Center(id))) >= a.cfg.PolarIceLatitude {
		return tiles.Ice
	}
	for _, n := range v.Neighbors(id) {
		if v.Height(n) > 0 {
			return tiles.Coast
		}
	}
	return tiles.Ocean
}

// Latitude is asin of the normalized Y component, in degrees.
func Latitude(c mathx.Vec3) float64 {
	u, ok := c.Unit()
	if !ok {
		return 0
	}
	return mathx.Degrees(math.Asin(mathx.Clamp(u.Y, -1, 1)))
}

// octaveNoise3 layers octaves of noise at doubling frequency, normalized back
// into the range of a single octave.
func octaveNoise3(noise opensimplex.Noise, p mathx.Vec3, octaves int, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := 1.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval3(p.X*freq, p.Y*freq, p.Z*freq) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxVal
}
