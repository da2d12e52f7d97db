package tiles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Terrain uint8

const (
	Unassigned Terrain = iota
	Ocean
	Coast
	Ice
	Grassland
	Forest
	Hills
	Mountains
	Desert
	Savanna
	Tundra
	Snow
	Plains
)

var terrainNames = [...]string{
	Unassigned: "UNASSIGNED",
	Ocean:      "OCEAN",
	Coast:      "COAST",
	Ice:        "ICE",
	Grassland:  "GRASSLAND",
	Forest:     "FOREST",
	Hills:      "HILLS",
	Mountains:  "MOUNTAINS",
	Desert:     "DESERT",
	Savanna:    "SAVANNA",
	Tundra:     "TUNDRA",
	Snow:       "SNOW",
	Plains:     "PLAINS",
}

// Color is an 8-bit RGB triple.
type Color [3]uint8

var defaultColors = [...]Color{
	Unassigned: {200, 200, 200},
	Ocean:      {30, 144, 255},
	Coast:      {100, 149, 237},
	Ice:        {240, 248, 255},
	Grassland:  {34, 139, 34},
	Forest:     {0, 100, 0},
	Hills:      {139, 137, 112},
	Mountains:  {105, 105, 105},
	Desert:     {244, 164, 96},
	Savanna:    {218, 165, 32},
	Tundra:     {135, 142, 150},
	Snow:       {255, 250, 250},
	Plains:     {152, 251, 152},
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("TERRAIN(%d)", t)
}

// IsWater reports the biomes rivers drain into.
func (t Terrain) IsWater() bool {
	return t == Ocean || t == Coast || t == Ice
}

func (t Terrain) DefaultColor() Color {
	if int(t) < len(defaultColors) {
		return defaultColors[t]
	}
	return defaultColors[Unassigned]
}

// AllTerrains lists every assignable terrain (Unassigned excluded).
func AllTerrains() []Terrain {
	out := make([]Terrain, 0, len(terrainNames)-1)
	for t := Ocean; int(t) < len(terrainNames); t++ {
		out = append(out, t)
	}
	return out
}

// ParseTerrain resolves an assignable terrain name case-insensitively.
// UNASSIGNED is rejected. Unknown names get the closest known name as a
// suggestion.
func ParseTerrain(name string) (Terrain, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, t := range AllTerrains() {
		if t.String() == n {
			return t, nil
		}
	}
	if s := suggest(n); s != "" {
		return Unassigned, fmt.Errorf("unknown terrain %q (did you mean %s?)", name, s)
	}
	return Unassigned, fmt.Errorf("unknown terrain %q", name)
}

func suggest(n string) string {
	type cand struct {
		name string
		dist int
	}
	var cands []cand
	for _, t := range AllTerrains() {
		d := levenshtein.ComputeDistance(n, t.String())
		if d <= 3 {
			cands = append(cands, cand{t.String(), d})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})
	return cands[0].name
}

// Palette maps terrains to colors, starting from the defaults.
type Palette map[Terrain]Color

func (p Palette) Color(t Terrain) Color {
	if c, ok := p[t]; ok {
		return c
	}
	return t.DefaultColor()
}
