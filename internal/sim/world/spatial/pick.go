package spatial

import (
	"math"

	"hexglobe.ai/internal/sim/world/logic/mathx"
)

// RaySphere intersects a ray with a sphere at the origin. The nearer hit in
// front of the origin wins; a ray starting inside hits the far side.
func RaySphere(origin, dir mathx.Vec3, radius float64) (mathx.Vec3, bool) {
	a := dir.Dot(dir)
	if a == 0 {
		return mathx.Vec3{}, false
	}
	b := 2 * origin.Dot(dir)
	c := origin.Dot(origin) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return mathx.Vec3{}, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
		if t < 0 {
			return mathx.Vec3{}, false
		}
	}
	return origin.Add(dir.Mul(t)), true
}

// Pick returns the id whose point is nearest to where the ray meets the unit
// sphere. A miss is (-1, false).
func (g *Grid) Pick(origin, dir mathx.Vec3) (int, bool) {
	hit, ok := RaySphere(origin, dir, 1)
	if !ok {
		return -1, false
	}
	return g.Nearest(hit)
}
