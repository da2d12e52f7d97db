package mathx

import "math"

// KeyDigits is the rounding precision that defines logical vertex identity.
const KeyDigits = 5

var keyScale = math.Pow10(KeyDigits)

// Key is a vertex position quantized to KeyDigits decimal places. Two positions
// derived along different arithmetic paths collapse to the same Key.
type Key struct{ X, Y, Z int64 }

func Quantize(v Vec3) Key {
	return Key{q(v.X), q(v.Y), q(v.Z)}
}

func q(x float64) int64 {
	r := math.Round(x * keyScale)
	if r == 0 {
		// -0 and +0 are the same vertex.
		return 0
	}
	return int64(r)
}

// Arena owns vertex positions; everything else refers to them by index.
// While building, Intern deduplicates by Key. Seal drops the lookup table.
type Arena struct {
	Verts []Vec3
	index map[Key]int
}

func NewArena(capacity int) *Arena {
	return &Arena{
		Verts: make([]Vec3, 0, capacity),
		index: make(map[Key]int, capacity),
	}
}

// Intern returns the index of the vertex at v, appending it if no vertex with
// the same Key exists yet.
func (a *Arena) Intern(v Vec3) int {
	k := Quantize(v)
	if i, ok := a.index[k]; ok {
		return i
	}
	i := len(a.Verts)
	a.Verts = append(a.Verts, v)
	a.index[k] = i
	return i
}

// Seal discards the dedup table and returns the vertex slice.
func (a *Arena) Seal() []Vec3 {
	a.index = nil
	return a.Verts
}
