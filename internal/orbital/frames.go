package orbital

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
)

// GMST approximates Greenwich mean sidereal time as a pure function of
// simulation time, per spec.md §4.3: "geodetic<->ECI uses current sim
// time as GMST proxy." This is deliberately not a real GMST epoch
// computation — there is no wall-clock/epoch concept in this engine,
// only sim time since scenario start.
func GMST(simTimeS float64) float64 {
	return normalizeAngle(EarthRotationRadS * simTimeS)
}

// GeodeticToECIPos converts (lat, lon in radians, alt in meters MSL)
// plus the current GMST angle to an ECI position, treating the Earth
// as a sphere of EarthMeanRadiusM (consistent with the rest of the
// engine's spherical-Earth treatment — see comms LOS, flight and IADS,
// all of which also assume a mean-radius sphere).
func GeodeticToECIPos(lat, lon, altM, gmst float64) [3]float64 {
	r := EarthMeanRadiusM + altM
	lonECI := lon + gmst
	return [3]float64{
		r * math.Cos(lat) * math.Cos(lonECI),
		r * math.Cos(lat) * math.Sin(lonECI),
		r * math.Sin(lat),
	}
}

// ECIToGeodetic inverts GeodeticToECIPos.
func ECIToGeodetic(r [3]float64, gmst float64) (lat, lon, altM float64) {
	rn := norm(r)
	lat = math.Asin(clamp(r[2]/rn, -1, 1))
	lonECI := math.Atan2(r[1], r[0])
	lon = normalizeAngle(lonECI - gmst)
	if lon > math.Pi {
		lon -= 2 * math.Pi
	}
	altM = rn - EarthMeanRadiusM
	return
}

// enuBasis returns the East, North, Up unit vectors at (lat, lon) in
// the ECI frame at the given GMST.
func enuBasis(lat, lon, gmst float64) (east, north, up [3]float64) {
	lonECI := lon + gmst
	sinLon, cosLon := math.Sin(lonECI), math.Cos(lonECI)
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)

	east = [3]float64{-sinLon, cosLon, 0}
	north = [3]float64{-sinLat * cosLon, -sinLat * sinLon, cosLat}
	up = [3]float64{cosLat * cosLon, cosLat * sinLon, sinLat}
	return
}

// GeodeticToECIState lifts a ground-frame kinematic state (lat, lon,
// alt, speed, heading, flight-path angle gamma) into a full ECI state
// vector, including the rotating-frame velocity contribution of
// Earth's spin (omega x r), per spec.md §4.3.
func GeodeticToECIState(lat, lon, altM, speed, heading, gammaAngle, gmst float64) StateVector {
	rVec := GeodeticToECIPos(lat, lon, altM, gmst)
	east, north, up := enuBasis(lat, lon, gmst)

	// Local ENU velocity components from speed/heading/gamma.
	vUp := speed * math.Sin(gammaAngle)
	vHoriz := speed * math.Cos(gammaAngle)
	vNorth := vHoriz * math.Cos(heading)
	vEast := vHoriz * math.Sin(heading)

	vENU := add(add(scale(east, vEast), scale(north, vNorth)), scale(up, vUp))

	omega := [3]float64{0, 0, EarthRotationRadS}
	vRot := cross(omega, rVec)

	vECI := add(vENU, vRot)

	return StateVector{R: v3(rVec), V: v3(vECI)}
}

// v3 adapts the package's plain [3]float64 arithmetic helpers to the
// linalg.Vec3 shape StateVector exposes to callers.
func v3(a [3]float64) linalg.Vec3 { return linalg.New(a[0], a[1], a[2]) }

// ECIVelocityToGround extracts the ground-frame (speed, heading, gamma)
// triple from an ECI state, inverse of the velocity half of
// GeodeticToECIState. Used when flight re-syncs its local state from
// the authoritative ECI cache (e.g. after a maneuver burn).
func ECIVelocityToGround(rVec, vECI [3]float64, gmst float64) (speed, heading, gammaAngle float64) {
	lat, lon, _ := ECIToGeodetic(rVec, gmst)
	east, north, up := enuBasis(lat, lon, gmst)

	omega := [3]float64{0, 0, EarthRotationRadS}
	vRot := cross(omega, rVec)
	vENU := sub(vECI, vRot)

	vEast := dot(vENU, east)
	vNorth := dot(vENU, north)
	vUp := dot(vENU, up)

	speed = math.Sqrt(vEast*vEast + vNorth*vNorth + vUp*vUp)
	if speed < 1e-9 {
		return 0, 0, 0
	}
	heading = math.Atan2(vEast, vNorth)
	if heading < 0 {
		heading += 2 * math.Pi
	}
	horiz := math.Sqrt(vEast*vEast + vNorth*vNorth)
	gammaAngle = math.Atan2(vUp, horiz)
	return
}
