package maneuver

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

// Planet names the inner planets this engine carries simple circular
// ephemerides for; outer planets are out of scope for patched-conic
// transfer scenarios this engine targets.
type Planet string

const (
	Mercury Planet = "mercury"
	Venus   Planet = "venus"
	EarthPl Planet = "earth"
	Mars    Planet = "mars"
)

const muSun = 1.32712440018e20

var planetOrbits = map[Planet]struct{ distM, periodS float64 }{
	Mercury: {5.791e10, 87.969 * 86400},
	Venus:   {1.0821e11, 224.701 * 86400},
	EarthPl: {sunDistM, sunPeriodS},
	Mars:    {2.2794e11, 686.98 * 86400},
}

// HeliocentricPosition returns a planet's simple circular-orbit
// heliocentric position at sim time t.
func HeliocentricPosition(p Planet, t float64) linalg.Vec3 {
	o, ok := planetOrbits[p]
	if !ok {
		return linalg.Vec3{}
	}
	return circularBodyPosition(o.distM, o.periodS, 0, t)
}

// HeliocentricVelocity differentiates the circular-orbit position
// formula analytically (exact for a circular orbit).
func HeliocentricVelocity(p Planet, t float64) linalg.Vec3 {
	o, ok := planetOrbits[p]
	if !ok {
		return linalg.Vec3{}
	}
	omega := 2 * math.Pi / o.periodS
	theta := omega * t
	speed := omega * o.distM
	return linalg.New(-speed*math.Sin(theta), speed*math.Cos(theta), 0)
}

// PlanetaryTransferResult is the patched-conic transfer result:
// heliocentric v-infinity at departure plus the departure delta-v from
// a parking orbit of radius parkRadiusM. Arrival v-infinity is not
// computed.
type PlanetaryTransferResult struct {
	DepartureDVMS float64
	VInfinityMS   float64
	Valid         bool
}

// PlanetaryTransfer computes a patched-conic transfer from Earth to
// target at departureT with arrival at arrivalT, per spec.md §4.5:
// Lambert under mu_sun gives the heliocentric departure velocity, vInf
// is its difference from Earth's own heliocentric velocity, and the
// departure delta-v is computed from a parking orbit at parkRadiusM.
func PlanetaryTransfer(target Planet, departureT, arrivalT, parkRadiusM float64) PlanetaryTransferResult {
	tof := arrivalT - departureT
	if tof <= 0 {
		return PlanetaryTransferResult{}
	}

	earthPos := HeliocentricPosition(EarthPl, departureT)
	earthVel := HeliocentricVelocity(EarthPl, departureT)
	targetPos := HeliocentricPosition(target, arrivalT)

	lam := Lambert(earthPos, targetPos, tof, true, muSun)
	if !lam.Valid {
		return PlanetaryTransferResult{}
	}

	vInfVec := lam.V1.Sub(earthVel)
	vInf := vInfVec.Norm()

	vCirc := math.Sqrt(orbital.MuEarth / parkRadiusM)
	departureDV := math.Sqrt(vInf*vInf+2*orbital.MuEarth/parkRadiusM) - vCirc

	return PlanetaryTransferResult{DepartureDVMS: departureDV, VInfinityMS: vInf, Valid: true}
}
