// Package maneuver implements the closed-form and iterative transfer
// solvers of spec.md §4.5: Lambert (universal variable), Hohmann,
// inclination change, plane match, NMC circumnavigation, Lagrange-point
// transfer, and patched-conic planetary transfer. The Lambert solver's
// universal-variable structure is grounded on ChristopherRabotin-smd's
// Stumpff-function approach (src/dynamics/astro.go), generalized from
// that package's mission-specific call sites into a standalone solver
// every other maneuver type composes through.
package maneuver

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

// LambertResult is the structured result every solver returns: Valid
// signals numerical non-convergence per the spec's error policy, in
// which case callers must make no state change.
type LambertResult struct {
	V1, V2 linalg.Vec3
	Valid  bool
	Iters  int
}

func stumpffC(z float64) float64 {
	switch {
	case z > 1e-6:
		sq := math.Sqrt(z)
		return (1 - math.Cos(sq)) / z
	case z < -1e-6:
		sq := math.Sqrt(-z)
		return (math.Cosh(sq) - 1) / (-z)
	default:
		return 0.5 - z/24 + z*z/720
	}
}

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

// Lambert solves the universal-variable Lambert problem between
// position vectors r1 and r2 over time-of-flight tofS seconds. shortWay
// selects the < 180 degree transfer arc; mu defaults to orbital.MuEarth
// when <= 0.
func Lambert(r1, r2 linalg.Vec3, tofS float64, shortWay bool, mu float64) LambertResult {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	if tofS <= 0 {
		return LambertResult{}
	}

	r1n, r2n := r1.Norm(), r2.Norm()
	if r1n == 0 || r2n == 0 {
		return LambertResult{}
	}

	crossP := r1.Cross(r2)
	cosTheta := clamp(r1.Dot(r2)/(r1n*r2n), -1, 1)
	theta := math.Acos(cosTheta)

	// crossP.Z sign determines the "prograde" direction of the transfer
	// angle; shortWay flips which branch (theta vs 2pi-theta) is taken.
	longWay := !shortWay
	if crossP.Z < 0 {
		longWay = !longWay
	}
	if longWay {
		theta = 2*math.Pi - theta
	}

	A := math.Sin(theta) * math.Sqrt(r1n*r2n/(1-math.Cos(theta)))
	if math.IsNaN(A) || A == 0 {
		return LambertResult{}
	}

	yOf := func(z float64) float64 {
		c := stumpffC(z)
		s := stumpffS(z)
		return r1n + r2n + A*(z*s-1)/math.Sqrt(c)
	}

	tOf := func(z float64) float64 {
		c := stumpffC(z)
		s := stumpffS(z)
		y := yOf(z)
		if y < 0 {
			return math.NaN()
		}
		return (math.Pow(y/c, 1.5)*s + A*math.Sqrt(y)) / math.Sqrt(mu)
	}

	// Find a starting z where y(z) > 0 by sweeping inward from 0.
	z := 0.0
	for yOf(z) < 0 {
		z += 0.1
		if z > 4*math.Pi*math.Pi {
			return LambertResult{}
		}
	}

	converged := false
	iters := 0
	for iters = 0; iters < 100; iters++ {
		tz := tOf(z)
		if math.IsNaN(tz) {
			z += 0.1
			continue
		}
		diff := tz - tofS
		if math.Abs(diff) < 1e-6*math.Max(1, tofS) {
			converged = true
			break
		}
		// Finite-difference derivative (damped Newton).
		h := 1e-5
		tzh := tOf(z + h)
		for math.IsNaN(tzh) {
			h /= 2
			if h < 1e-12 {
				break
			}
			tzh = tOf(z + h)
		}
		dtdz := (tzh - tz) / h
		if dtdz == 0 || math.IsNaN(dtdz) {
			break
		}
		step := diff / dtdz
		zNext := z - step
		// Damp large jumps to keep y(z) > 0.
		for yOf(zNext) < 0 {
			step /= 2
			zNext = z - step
			if math.Abs(step) < 1e-14 {
				break
			}
		}
		z = zNext
	}

	if !converged {
		// Bisection fallback over the canonical bracket.
		lo, hi := -4*math.Pi*math.Pi, 16*math.Pi*math.Pi
		for yOf(lo) < 0 {
			lo += 0.1
		}
		flo := tOf(lo) - tofS
		for i := 0; i < 200; i++ {
			mid := (lo + hi) / 2
			fm := tOf(mid) - tofS
			if math.IsNaN(fm) {
				lo = mid
				continue
			}
			if math.Abs(fm) < 1e-6*math.Max(1, tofS) {
				z = mid
				converged = true
				break
			}
			if (fm > 0) == (flo > 0) {
				lo, flo = mid, fm
			} else {
				hi = mid
			}
		}
	}

	if !converged {
		return LambertResult{Iters: iters}
	}

	c := stumpffC(z)
	s := stumpffS(z)
	y := yOf(z)
	if y < 0 {
		return LambertResult{Iters: iters}
	}

	f := 1 - y/r1n
	g := A * math.Sqrt(y/mu)
	gdot := 1 - y/r2n

	v1 := r2.Sub(r1.Scale(f)).Scale(1 / g)
	v2 := r2.Scale(gdot).Sub(r1).Scale(1 / g)

	return LambertResult{V1: v1, V2: v2, Valid: true, Iters: iters}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
