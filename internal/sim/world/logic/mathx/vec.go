package mathx

import "math"

// Vec3 is a point or direction in world space. The sphere is centered at the origin.
type Vec3 struct{ X, Y, Z float64 }

func (a Vec3) Add(b Vec3) Vec3    { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3    { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Mul(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len2() float64      { return a.Dot(a) }
func (a Vec3) Len() float64       { return math.Sqrt(a.Len2()) }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Unit projects a onto the unit sphere. ok is false for (near) zero vectors,
// in which case a is returned unchanged.
func (a Vec3) Unit() (Vec3, bool) {
	l := a.Len()
	if l < 1e-12 {
		return a, false
	}
	return a.Mul(1.0 / l), true
}

// Normalize is Unit without the degeneracy flag.
func (a Vec3) Normalize() Vec3 {
	v, _ := a.Unit()
	return v
}

func (a Vec3) Array() [3]float64 { return [3]float64{a.X, a.Y, a.Z} }

func (a Vec3) Float32() [3]float32 {
	return [3]float32{float32(a.X), float32(a.Y), float32(a.Z)}
}

func FromArray(v [3]float64) Vec3 { return Vec3{v[0], v[1], v[2]} }

// Mean returns the arithmetic mean of vs (zero for an empty slice).
func Mean(vs ...Vec3) Vec3 {
	if len(vs) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float64(len(vs)))
}
