// Package flight propagates atmospheric entities (aircraft, missiles
// below ~100km) via the 3-DOF point-mass equations of spec.md §4.4,
// blending seamlessly into the orbital package's vacuum Kepler
// propagation above 80km. Grounded on the teacher's per-entity
// integration step in controllers/simulation_controller.go (a plain
// Euler/RK-ish position update driven by a fixed dt), generalized here
// from the teacher's 2D drone kinematics to the spec's full 3-DOF
// lat/lon/alt/speed/heading/gamma/roll state with atmosphere- and
// wind-coupled forces.
package flight

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/atmosphere"
	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/weather"
	"github.com/orbitalarena/alldomainsim/internal/world"
)

const (
	gravityMS2 = 9.80665

	// aeroBlend interpolation band, spec.md §4.4.
	blendLowAltM  = 60000.0
	blendHighAltM = 100000.0

	// below this blend value ground-frame state is authoritative and
	// the ECI cache is kept in sync for rendering/orbital readers; at or
	// above it the ECI cache is authoritative and ground-frame state is
	// derived from it, per spec.md §4.4's "seamless crossing" guarantee.
	eciAuthoritativeBlend = 0.1
)

// aeroBlendFor linearly interpolates the blend scalar across
// [blendLowAltM, blendHighAltM]: 0 below the floor (pure atmospheric),
// 1 above the ceiling (pure vacuum/orbital).
func aeroBlendFor(altM float64) float64 {
	if altM <= blendLowAltM {
		return 0
	}
	if altM >= blendHighAltM {
		return 1
	}
	return (altM - blendLowAltM) / (blendHighAltM - blendLowAltM)
}

// Propagate advances one atmospheric/blended entity by dt seconds,
// returning the new state. gmst is the current sidereal angle
// (orbital.GMST(simTime)), used both to integrate the vacuum branch
// and to re-sync the ECI cache from ground-frame state each tick.
//
// Below blendLowAltM the aerodynamic branch alone determines the next
// state. Above blendHighAltM the vacuum Kepler branch alone determines
// it. In between, both branches are propagated from the same starting
// state and the result is linearly interpolated by aeroBlend, so the
// transition has no discontinuity in position or velocity.
func Propagate(e world.Entity, dt, gmst float64, wx *weather.Model) world.State {
	st := e.State.Clone()
	blend := aeroBlendFor(st.Alt)
	st.AeroBlend = blend

	aero := st
	if e.Flight != nil {
		aero = propagateAero(st, *e.Flight, dt, wx, blend)
	}
	aeroECI := orbital.GeodeticToECIState(aero.Lat, aero.Lon, aero.Alt, aero.Speed, aero.Heading, aero.Gamma, gmst)
	aero.ECIPos, aero.ECIVel = aeroECI.R, aeroECI.V

	if blend <= 0 {
		aero.AeroBlend = blend
		return aero
	}

	vac := propagateVacuum(st, dt, gmst)

	if blend >= 1 {
		vac.AeroBlend = blend
		return vac
	}

	out := aero
	out.ECIPos = aero.ECIPos.Lerp(vac.ECIPos, blend)
	out.ECIVel = aero.ECIVel.Lerp(vac.ECIVel, blend)

	if blend < eciAuthoritativeBlend {
		// Ground-frame state (the aero branch) stays authoritative; the
		// ECI cache above is kept in sync for any orbital-side reader.
		out.Lat, out.Lon, out.Alt = aero.Lat, aero.Lon, aero.Alt
		out.Speed, out.Heading, out.Gamma = aero.Speed, aero.Heading, aero.Gamma
	} else {
		// The ECI cache is authoritative; ground-frame state is derived
		// from it so the two regimes never disagree past the threshold.
		lat, lon, alt := orbital.ECIToGeodetic(
			[3]float64{out.ECIPos.X, out.ECIPos.Y, out.ECIPos.Z}, gmst)
		speed, heading, gamma := orbital.ECIVelocityToGround(
			[3]float64{out.ECIPos.X, out.ECIPos.Y, out.ECIPos.Z},
			[3]float64{out.ECIVel.X, out.ECIVel.Y, out.ECIVel.Z},
			gmst,
		)
		out.Lat, out.Lon, out.Alt = lat, lon, alt
		out.Speed, out.Heading, out.Gamma = speed, heading, gamma
	}
	out.AeroBlend = blend
	return out
}

// propagateAero integrates the 3-DOF aerodynamic equations of motion
// for one substep, per spec.md §4.4:
//
//	dV/dt  = (T - D)/m - g*sin(gamma)
//	dgamma/dt = (L*cos(roll) - m*g*cos(gamma)) / (m*V)
//	dpsi/dt   = L*sin(roll) / (m*V*cos(gamma))
//
// with ground-track position integrated via the small-angle great-
// circle rate (V*cos(gamma)*cos/sin(heading))/R.
func propagateAero(st world.State, fr world.FlightRecord, dt float64, wx *weather.Model, blend float64) world.State {
	if st.Speed < 1 {
		st.Speed = 1
	}

	air := atmosphere.At(st.Alt)
	q := 0.5 * air.DensityKgM3 * st.Speed * st.Speed

	thrust := 0.0
	if st.EngineOn {
		thrust = fr.ThrustN * st.Throttle
	}
	drag := q * fr.DragCoeff * fr.WingAreaM2
	lift := q * fr.LiftCoeff * fr.WingAreaM2

	mass := fr.MassKg
	if mass <= 0 {
		mass = 1
	}

	dVdt := (thrust-drag)/mass - gravityMS2*math.Sin(st.Gamma)
	dGammaDt := (lift*math.Cos(st.Roll) - mass*gravityMS2*math.Cos(st.Gamma)) / (mass * st.Speed)
	dPsiDt := lift * math.Sin(st.Roll) / (mass * st.Speed * math.Cos(st.Gamma))

	st.Speed += dVdt * dt
	if st.Speed < 0 {
		st.Speed = 0
	}
	st.Gamma += dGammaDt * dt
	st.Heading += dPsiDt * dt
	for st.Heading < 0 {
		st.Heading += 2 * math.Pi
	}
	for st.Heading >= 2*math.Pi {
		st.Heading -= 2 * math.Pi
	}

	if wx != nil {
		dSpeed, dHeading, dGamma, dRoll := applyWindToState(st, wx)
		st.Speed += dSpeed * blendInverse(blend)
		st.Heading += dHeading * blendInverse(blend)
		st.Gamma += dGamma * blendInverse(blend)
		st.Roll += dRoll * blendInverse(blend)
	}

	r := orbital.EarthMeanRadiusM + st.Alt
	groundSpeed := st.Speed * math.Cos(st.Gamma)
	st.Lat += (groundSpeed * math.Cos(st.Heading) / r) * dt
	st.Lon += (groundSpeed*math.Sin(st.Heading))/(r*math.Cos(st.Lat)+1e-9) * dt
	st.Alt += st.Speed * math.Sin(st.Gamma) * dt
	if st.Alt < 0 {
		st.Alt = 0
	}

	if fr.FuelBurnKgS > 0 && st.EngineOn {
		fr.FuelKg -= fr.FuelBurnKgS * st.Throttle * dt
		if fr.FuelKg <= 0 {
			st.EngineOn = false
		}
	}

	return st
}

// blendInverse is the (1 - aeroBlend) weighting applied to wind so
// aerodynamic forcing fades out smoothly as an entity nears orbital
// blend, rather than snapping off at the boundary.
func blendInverse(blend float64) float64 { return 1 - blend }

// applyWindToState returns (speed, heading, gamma, roll) deltas for
// one tick from the weather model's wind stack, per spec.md §4.4.
// Callers scale the result by (1 - aeroBlend) so vacuum entities are
// unaffected.
func applyWindToState(st world.State, wx *weather.Model) (dSpeed, dHeading, dGamma, dRoll float64) {
	windSpeed, windHeadingDeg := wx.WindAt(st.Alt)
	if windSpeed == 0 {
		return 0, 0, 0, 0
	}
	windHeadingRad := windHeadingDeg * math.Pi / 180

	// Headwind/tailwind component affects ground speed; crosswind
	// component nudges heading and induces a small roll disturbance.
	relAngle := st.Heading - windHeadingRad
	headwind := windSpeed * math.Cos(relAngle)
	crosswind := windSpeed * math.Sin(relAngle)

	turbulence := wx.TurbulenceAt(st.Alt)

	dSpeed = -headwind * 0.01
	dHeading = crosswind / math.Max(st.Speed, 1) * 0.05
	dGamma = turbulence * 0.002
	dRoll = crosswind / math.Max(st.Speed, 1) * 0.1
	return
}

// propagateVacuum advances the ECI cache under pure two-body gravity
// for the tick. If the entity has no ECI cache yet (first tick
// entering the blend band), the ground-frame state is lifted into ECI
// first so the vacuum branch has a valid starting point.
func propagateVacuum(st world.State, dt, gmst float64) world.State {
	if st.ECIPos == (world.State{}).ECIPos {
		lifted := orbital.GeodeticToECIState(st.Lat, st.Lon, st.Alt, st.Speed, st.Heading, st.Gamma, gmst)
		st.ECIPos, st.ECIVel = lifted.R, lifted.V
	}
	r := [3]float64{st.ECIPos.X, st.ECIPos.Y, st.ECIPos.Z}
	v := [3]float64{st.ECIVel.X, st.ECIVel.Y, st.ECIVel.Z}
	res := orbital.Propagate(r, v, dt, orbital.MuEarth)
	if !res.Converged {
		return st
	}
	st.ECIPos = linalg.New(res.R[0], res.R[1], res.R[2])
	st.ECIVel = linalg.New(res.V[0], res.V[1], res.V[2])
	return st
}
