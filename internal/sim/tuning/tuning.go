// Package tuning loads generation parameters from configs/tuning.yaml.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hexglobe.ai/internal/sim/world"
	"hexglobe.ai/internal/sim/world/tiles"
)

type Tuning struct {
	WorldID          string `yaml:"world_id"`
	SubdivisionLevel int    `yaml:"subdivision_level"`
	RiverCount       int    `yaml:"river_count"`

	Seeds   Seeds   `yaml:"seeds"`
	Terrain Terrain `yaml:"terrain"`
	Rivers  Rivers  `yaml:"rivers"`
	Spatial Spatial `yaml:"spatial"`

	// TerrainColors overrides the default RGB of terrains by name.
	TerrainColors map[string][3]uint8 `yaml:"terrain_colors,omitempty"`
}

type Seeds struct {
	Land   int64 `yaml:"land"`
	Height int64 `yaml:"height"`
	River  int64 `yaml:"river"`
}

type Terrain struct {
	LandScale        float64 `yaml:"land_scale"`
	HeightScale      float64 `yaml:"height_scale"`
	Octaves          int     `yaml:"octaves"`
	Persistence      float64 `yaml:"persistence"`
	Contrast         float64 `yaml:"contrast"`
	SeaLevel         float64 `yaml:"sea_level"`
	MountainHeight   float64 `yaml:"mountain_height"`
	HillHeight       float64 `yaml:"hill_height"`
	PolarIceLatitude float64 `yaml:"polar_ice_latitude"`
	SnowLatitude     float64 `yaml:"snow_latitude"`
	TundraLatitude   float64 `yaml:"tundra_latitude"`
	TropicLatitude   float64 `yaml:"tropic_latitude"`
}

type Rivers struct {
	SourceHeight float64  `yaml:"source_height"`
	MaxSteps     int      `yaml:"max_steps"`
	BaseWidth    float64  `yaml:"base_width"`
	WidthFactor  float64  `yaml:"width_factor"`
	Elevation    float64  `yaml:"elevation"`
	DeltaLength  float64  `yaml:"delta_length"`
	DeltaSpread  float64  `yaml:"delta_spread"`
	Color        [3]uint8 `yaml:"color"`
}

type Spatial struct {
	CellSize float64 `yaml:"cell_size"`
}

// Defaults mirrors world.DefaultGenConfig.
func Defaults() Tuning {
	d := world.DefaultGenConfig()
	return Tuning{
		WorldID:          d.ID,
		SubdivisionLevel: d.Level,
		RiverCount:       d.RiverCount,
		Seeds:            Seeds{Land: d.LandSeed, Height: d.HeightSeed, River: d.RiverSeed},
		Terrain: Terrain{
			LandScale:        d.Terrain.LandScale,
			HeightScale:      d.Terrain.HeightScale,
			Octaves:          d.Terrain.Octaves,
			Persistence:      d.Terrain.Persistence,
			Contrast:         d.Terrain.Contrast,
			SeaLevel:         d.Terrain.SeaLevel,
			MountainHeight:   d.Terrain.MountainHeight,
			HillHeight:       d.Terrain.HillHeight,
			PolarIceLatitude: d.Terrain.PolarIceLatitude,
			SnowLatitude:     d.Terrain.SnowLatitude,
			TundraLatitude:   d.Terrain.TundraLatitude,
			TropicLatitude:   d.Terrain.TropicLatitude,
		},
		Rivers: Rivers{
			SourceHeight: d.Rivers.SourceHeight,
			MaxSteps:     d.Rivers.MaxSteps,
			BaseWidth:    d.Rivers.BaseWidth,
			WidthFactor:  d.Rivers.WidthFactor,
			Elevation:    d.Rivers.Elevation,
			DeltaLength:  d.Rivers.DeltaLength,
			DeltaSpread:  d.Rivers.DeltaSpread,
			Color:        [3]uint8{60, 120, 200},
		},
		Spatial: Spatial{CellSize: d.CellSize},
	}
}

// Load reads path over Defaults. An empty path returns the defaults; a
// missing file is an error.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// LoadOrDefaults treats a missing file as "use defaults".
func LoadOrDefaults(path string) (Tuning, error) {
	t, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return t, err
}

func (t Tuning) Validate() error {
	if t.RiverCount < 0 {
		return fmt.Errorf("river_count must be >= 0, got %d", t.RiverCount)
	}
	if t.Rivers.Elevation < 0 || t.Rivers.Elevation > 1.5 {
		return fmt.Errorf("rivers.elevation out of range: %g", t.Rivers.Elevation)
	}
	if t.Spatial.CellSize < 0 {
		return fmt.Errorf("spatial.cell_size must be >= 0, got %g", t.Spatial.CellSize)
	}
	if _, err := t.Palette(); err != nil {
		return err
	}
	return nil
}

// Palette resolves terrain_colors names; unknown names carry a suggestion.
func (t Tuning) Palette() (tiles.Palette, error) {
	if len(t.TerrainColors) == 0 {
		return nil, nil
	}
	p := tiles.Palette{}
	for name, c := range t.TerrainColors {
		terr, err := tiles.ParseTerrain(name)
		if err != nil {
			return nil, fmt.Errorf("terrain_colors: %w", err)
		}
		p[terr] = tiles.Color(c)
	}
	return p, nil
}

// GenConfig converts the file layout into the per-stage generation config.
func (t Tuning) GenConfig() (world.GenConfig, error) {
	pal, err := t.Palette()
	if err != nil {
		return world.GenConfig{}, err
	}
	cfg := world.DefaultGenConfig()
	if t.WorldID != "" {
		cfg.ID = t.WorldID
	}
	cfg.Level = t.SubdivisionLevel
	cfg.RiverCount = t.RiverCount
	cfg.LandSeed, cfg.HeightSeed, cfg.RiverSeed = t.Seeds.Land, t.Seeds.Height, t.Seeds.River

	cfg.Terrain.LandScale = t.Terrain.LandScale
	cfg.Terrain.HeightScale = t.Terrain.HeightScale
	cfg.Terrain.Octaves = t.Terrain.Octaves
	cfg.Terrain.Persistence = t.Terrain.Persistence
	cfg.Terrain.Contrast = t.Terrain.Contrast
	cfg.Terrain.SeaLevel = t.Terrain.SeaLevel
	cfg.Terrain.MountainHeight = t.Terrain.MountainHeight
	cfg.Terrain.HillHeight = t.Terrain.HillHeight
	cfg.Terrain.PolarIceLatitude = t.Terrain.PolarIceLatitude
	cfg.Terrain.SnowLatitude = t.Terrain.SnowLatitude
	cfg.Terrain.TundraLatitude = t.Terrain.TundraLatitude
	cfg.Terrain.TropicLatitude = t.Terrain.TropicLatitude

	cfg.Rivers.SourceHeight = t.Rivers.SourceHeight
	cfg.Rivers.MaxSteps = t.Rivers.MaxSteps
	cfg.Rivers.BaseWidth = t.Rivers.BaseWidth
	cfg.Rivers.WidthFactor = t.Rivers.WidthFactor
	cfg.Rivers.Elevation = t.Rivers.Elevation
	cfg.Rivers.DeltaLength = t.Rivers.DeltaLength
	cfg.Rivers.DeltaSpread = t.Rivers.DeltaSpread
	cfg.RiverColor = tiles.Color(t.Rivers.Color)

	cfg.CellSize = t.Spatial.CellSize
	cfg.Palette = pal
	return cfg, nil
}
