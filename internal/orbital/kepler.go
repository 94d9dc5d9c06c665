// Package orbital implements the Keplerian two-body kernel: universal-
// variable (f, g) propagation, osculating-element conversion, and
// geodetic/ECI frame transforms. Grounded on ChristopherRabotin-smd's
// src/dynamics/orbit.go and astro.go (the universal-anomaly Newton
// iteration, Stumpff series, and element-extraction formulas follow
// the same structure), generalized from that package's Orbit type to
// the spec's plain (r, v, t) ECI state used across the whole engine.
package orbital

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
)

// MuEarth is Earth's standard gravitational parameter, m^3/s^2.
const MuEarth = 3.986004418e14

// EarthRotationRadS is Earth's sidereal rotation rate.
const EarthRotationRadS = 7.2921159e-5

// EarthMeanRadiusM is used by comms LOS, flight, IADS, and the frame
// conversions in this package.
const EarthMeanRadiusM = 6371000.0

// StateVector is an ECI Cartesian state.
type StateVector struct {
	R linalg.Vec3
	V linalg.Vec3
}

// stumpffC evaluates the Stumpff C(z) function, with the series
// expansion for |z| below 1e-6 to avoid cancellation, and the closed
// forms otherwise.
func stumpffC(z float64) float64 {
	switch {
	case z > 1e-6:
		sq := math.Sqrt(z)
		return (1 - math.Cos(sq)) / z
	case z < -1e-6:
		sq := math.Sqrt(-z)
		return (math.Cosh(sq) - 1) / (-z)
	default:
		// series: 1/2 - z/24 + z^2/720 - ...
		return 0.5 - z/24 + z*z/720
	}
}

// stumpffS evaluates the Stumpff S(z) function.
func stumpffS(z float64) float64 {
	switch {
	case z > 1e-6:
		sq := math.Sqrt(z)
		return (sq - math.Sin(sq)) / math.Pow(sq, 3)
	case z < -1e-6:
		sq := math.Sqrt(-z)
		return (math.Sinh(sq) - sq) / math.Pow(sq, 3)
	default:
		return 1.0/6.0 - z/120 + z*z/5040
	}
}

// PropagateResult carries the propagated state plus the f,g
// coefficients, useful to callers (e.g. Lambert validation) that need
// the velocity Lagrange coefficients too.
type PropagateResult struct {
	R, V   [3]float64
	F, G   float64
	FDot   float64
	GDot   float64
	Iters  int
	Converged bool
}

// Propagate advances (r0, v0) by dt seconds under two-body gravity
// with parameter mu, via the universal-variable formulation. Converges
// for elliptical and hyperbolic orbits within about 20 Newton
// iterations for |dt| up to one period; if it fails to converge within
// 100 iterations the Converged flag is false and callers should treat
// the result as "maneuver infeasible" / no-op per the spec's numerical
// non-convergence policy.
func Propagate(r0, v0 [3]float64, dt, mu float64) PropagateResult {
	if mu <= 0 {
		mu = MuEarth
	}
	r0n := norm(r0)
	v0n := norm(v0)
	vr0 := dot(r0, v0) / r0n
	alpha := 2/r0n - v0n*v0n/mu // 1/a

	// Initial guess for universal anomaly chi.
	chi := math.Sqrt(mu) * math.Abs(alpha) * dt
	if alpha == 0 {
		// Parabolic fallback: crude guess, still converges via Newton below.
		h := cross(r0, v0)
		hn := norm(h)
		p := hn * hn / mu
		chi = math.Sqrt(p) // not exact but a reasonable seed
	}

	converged := false
	iters := 0
	var chiNext float64
	for iters = 0; iters < 100; iters++ {
		z := alpha * chi * chi
		c := stumpffC(z)
		s := stumpffS(z)

		tOfChi := (chi*chi*chi*s+vr0/math.Sqrt(mu)*chi*chi*c+r0n*chi*(1-z*s))/math.Sqrt(mu) - dt
		dtdchi := (chi*chi*c + vr0/math.Sqrt(mu)*chi*(1-z*s) + r0n*(1-z*c)) / math.Sqrt(mu)

		if dtdchi == 0 {
			break
		}
		chiNext = chi - tOfChi/dtdchi
		if math.Abs(chiNext-chi) < 1e-8 {
			chi = chiNext
			converged = true
			iters++
			break
		}
		chi = chiNext
	}

	z := alpha * chi * chi
	c := stumpffC(z)
	s := stumpffS(z)

	f := 1 - (chi*chi*c)/r0n
	g := dt - (chi*chi*chi*s)/math.Sqrt(mu)

	rVec := add(scale(r0, f), scale(v0, g))
	rn := norm(rVec)

	gdot := 1 - (chi*chi*c)/rn
	fdot := (math.Sqrt(mu) / (rn * r0n)) * (z*s - 1) * chi

	vVec := add(scale(r0, fdot), scale(v0, gdot))

	return PropagateResult{
		R: rVec, V: vVec,
		F: f, G: g, FDot: fdot, GDot: gdot,
		Iters: iters, Converged: converged,
	}
}

func norm(v [3]float64) float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }
func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func scale(v [3]float64, s float64) [3]float64 { return [3]float64{v[0] * s, v[1] * s, v[2] * s} }
func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
