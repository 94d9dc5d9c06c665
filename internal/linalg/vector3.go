// Package linalg provides the small 3-vector kernel shared by the
// world, flight, comms, IADS, maneuver and engine packages. It is
// grounded on the vector conventions in ChristopherRabotin-smd's
// dynamics package (r, v pairs, cross/dot products feeding Keplerian
// element conversion) but kept dependency-light: it imports only the
// standard library and stays a plain value type so it can be copied
// freely across per-tick snapshots without aliasing.
package linalg

import "math"

// Vec3 is a Cartesian 3-vector. Copying a Vec3 copies its value.
type Vec3 struct {
	X, Y, Z float64
}

func New(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Neg() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Norm() float64 { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Unit() Vec3 {
	n := a.Norm()
	if n == 0 {
		return Vec3{}
	}
	return a.Scale(1 / n)
}

func (a Vec3) Distance(b Vec3) float64 { return a.Sub(b).Norm() }

// Angle returns the unsigned angle between a and b, in radians.
func (a Vec3) Angle(b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	cosT := a.Dot(b) / (na * nb)
	cosT = math.Max(-1, math.Min(1, cosT))
	return math.Acos(cosT)
}

// Lerp linearly interpolates between a and b at parameter t in [0,1].
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// RotateAxis rotates v by angle radians about the unit axis, via
// Rodrigues' rotation formula.
func RotateAxis(v, axis Vec3, angle float64) Vec3 {
	k := axis.Unit()
	cosT, sinT := math.Cos(angle), math.Sin(angle)
	term1 := v.Scale(cosT)
	term2 := k.Cross(v).Scale(sinT)
	term3 := k.Scale(k.Dot(v) * (1 - cosT))
	return term1.Add(term2).Add(term3)
}
