package maneuver

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

// InclinationChange computes the normal-direction delta-v for a change
// of deltaIncRad radians, with the burn at the supplied state (r, v)
// and time execAt. It does not move the burn to the ascending or
// descending node, and the burn direction follows the sign of
// deltaIncRad alone, not which node the burn is at.
func InclinationChange(execAt float64, r, v linalg.Vec3, deltaIncRad, massKg, thrustN, mu float64) Node {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	vNode := v.Norm()
	dvMag := 2 * vNode * math.Sin(math.Abs(deltaIncRad)/2)

	_, normal, _ := orbitalFrame(r, v)
	sign := 1.0
	if deltaIncRad < 0 {
		sign = -1.0
	}
	dv := normal.Scale(dvMag * sign)

	node := dvToNode(execAt, r, v, dv, massKg, thrustN, mu)

	vEsc := math.Sqrt(2 * mu / r.Norm())
	node.Valid = true
	_ = vEsc // surfaced via ExceedsEscapeVelocity below for callers that need it
	return node
}

// ExceedsEscapeVelocity reports whether the post-burn speed at r
// exceeds local escape velocity, per spec.md §4.5's inclination-change
// reporting requirement.
func ExceedsEscapeVelocity(r, postBurnV linalg.Vec3, mu float64) bool {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	vEsc := math.Sqrt(2 * mu / r.Norm())
	return postBurnV.Norm() > vEsc
}

// PlaneMatch computes the line of nodes between the entity's orbit
// plane and a target's orbit plane (h1 x h2), scans the orbit in 5-deg
// true-anomaly steps for the closest alignment to that line, refines
// by binary subdivision, and returns the delta-v to match planes at
// that point.
func PlaneMatch(execAt float64, r, v, targetR, targetV linalg.Vec3, massKg, thrustN, mu float64) Node {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	h1 := r.Cross(v)
	h2 := targetR.Cross(targetV)
	lineOfNodes := h1.Cross(h2)
	if lineOfNodes.Norm() < 1e-6 {
		// Already coplanar.
		node := dvToNode(execAt, r, v, linalg.Vec3{}, massKg, thrustN, mu)
		node.Valid = true
		return node
	}
	lineOfNodes = lineOfNodes.Unit()

	els := orbital.ElementsFromState([3]float64{r.X, r.Y, r.Z}, [3]float64{v.X, v.Y, v.Z}, mu)
	if els.Degenerate {
		return Node{}
	}

	bestTrueAnom, bestAngle := scanClosestAlignment(r, v, els, lineOfNodes, mu, 0, 2*math.Pi, 5*math.Pi/180)
	// Binary-subdivision refine around the coarse best.
	lo := bestTrueAnom - 5*math.Pi/180
	hi := bestTrueAnom + 5*math.Pi/180
	for i := 0; i < 20; i++ {
		mid := (lo + hi) / 2
		rMid, vMid := stateAtTrueAnomaly(els, mu, mid)
		angleMid := rMid.Unit().Angle(lineOfNodes)

		rLo, _ := stateAtTrueAnomaly(els, mu, lo)
		angleLo := rLo.Unit().Angle(lineOfNodes)

		if angleMid < bestAngle {
			bestAngle = angleMid
			bestTrueAnom = mid
		}
		if angleLo < angleMid {
			hi = mid
		} else {
			lo = mid
		}
		_ = vMid
	}

	rBurn, vBurn := stateAtTrueAnomaly(els, mu, bestTrueAnom)
	deltaInc := v.Angle(targetV) // coarse magnitude estimate of plane separation at burn time
	dvMag := 2 * vBurn.Norm() * math.Sin(deltaInc/2)
	_, normal, _ := orbitalFrame(rBurn, vBurn)
	dv := normal.Scale(dvMag)

	node := dvToNode(execAt, rBurn, vBurn, dv, massKg, thrustN, mu)
	node.Valid = true
	return node
}

func scanClosestAlignment(r, v linalg.Vec3, els orbital.Elements, lineOfNodes linalg.Vec3, mu, start, end, step float64) (bestTrueAnom, bestAngle float64) {
	bestAngle = math.MaxFloat64
	for ta := start; ta < end; ta += step {
		rAt, _ := stateAtTrueAnomaly(els, mu, ta)
		angle := rAt.Unit().Angle(lineOfNodes)
		if angle < bestAngle {
			bestAngle = angle
			bestTrueAnom = ta
		}
	}
	return
}

// stateAtTrueAnomaly reconstructs an (r, v) ECI state at a given true
// anomaly along the orbit described by els, in closed form from the
// conic equation and the perifocal-to-ECI rotation.
func stateAtTrueAnomaly(els orbital.Elements, mu, trueAnom float64) (linalg.Vec3, linalg.Vec3) {
	p := els.SMA * (1 - els.Ecc*els.Ecc)
	rMag := p / (1 + els.Ecc*math.Cos(trueAnom))

	// Perifocal frame coordinates.
	xPF := rMag * math.Cos(trueAnom)
	yPF := rMag * math.Sin(trueAnom)
	h := math.Sqrt(mu * p)
	vxPF := -mu / h * math.Sin(trueAnom)
	vyPF := mu / h * (els.Ecc + math.Cos(trueAnom))

	// Rotate perifocal -> ECI via 3-1-3 Euler sequence (RAAN, inc, argP).
	cosO, sinO := math.Cos(els.RAANRad), math.Sin(els.RAANRad)
	cosI, sinI := math.Cos(els.IncRad), math.Sin(els.IncRad)
	cosW, sinW := math.Cos(els.ArgPerigeeRad), math.Sin(els.ArgPerigeeRad)

	r11 := cosO*cosW - sinO*sinW*cosI
	r12 := -cosO*sinW - sinO*cosW*cosI
	r21 := sinO*cosW + cosO*sinW*cosI
	r22 := -sinO*sinW + cosO*cosW*cosI
	r31 := sinW * sinI
	r32 := cosW * sinI

	rECI := linalg.New(r11*xPF+r12*yPF, r21*xPF+r22*yPF, r31*xPF+r32*yPF)
	vECI := linalg.New(r11*vxPF+r12*vyPF, r21*vxPF+r22*vyPF, r31*vxPF+r32*vyPF)
	return rECI, vECI
}
