package iads

import (
	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

const gravityMS2 = 9.80665

// Missile is one in-flight interceptor under proportional navigation
// guidance, per spec.md §4.9: commanded acceleration N*Vclosing*sigma_dot,
// clamped to max_g, 3-DOF integration.
type Missile struct {
	Position  linalg.Vec3
	Velocity  linalg.Vec3
	FuelS     float64
	BurnTimeS float64
	MaxGs     float64
	KillRadiusM float64
	NavGain   float64 // N, typically 3-5

	prevLOS      linalg.Vec3
	havePrevLOS  bool
	elapsedS     float64
}

// GuidanceOutcome reports the per-step result of a proportional
// navigation integration step.
type GuidanceOutcome struct {
	Hit          bool
	Miss         bool
	MissReason   string
	SlantRangeM  float64
}

// Step advances the missile one dt under proportional navigation
// against targetPos/targetVel, and reports hit/miss per spec.md §4.9:
// hit when slant range < kill radius; miss on fuel exhaustion, ground
// impact, post-burn speed below 80 m/s, or post-terminal-phase range
// divergence.
func (m *Missile) Step(dt float64, targetPos, targetVel linalg.Vec3) GuidanceOutcome {
	los := targetPos.Sub(m.Position)
	slantRange := los.Norm()
	if slantRange < m.KillRadiusM {
		return GuidanceOutcome{Hit: true, SlantRangeM: slantRange}
	}

	relVel := targetVel.Sub(m.Velocity)
	closingSpeed := -los.Unit().Dot(relVel)

	var losRate linalg.Vec3
	if m.havePrevLOS && dt > 0 {
		losRate = los.Unit().Sub(m.prevLOS.Unit()).Scale(1 / dt)
	}
	m.prevLOS = los
	m.havePrevLOS = true

	accelCmd := losRate.Scale(m.NavGain * closingSpeed)
	maxAccel := m.MaxGs * gravityMS2
	if accelCmd.Norm() > maxAccel {
		accelCmd = accelCmd.Unit().Scale(maxAccel)
	}

	m.Velocity = m.Velocity.Add(accelCmd.Scale(dt))
	// Position is ECI, so "down" is toward Earth's center, not -Z.
	gravity := m.Position.Unit().Scale(-gravityMS2)
	m.Velocity = m.Velocity.Add(gravity.Scale(dt))
	m.Position = m.Position.Add(m.Velocity.Scale(dt))

	m.elapsedS += dt
	m.FuelS -= dt

	if m.Position.Norm()-orbital.EarthMeanRadiusM <= 0 {
		return GuidanceOutcome{Miss: true, MissReason: "ground_impact", SlantRangeM: slantRange}
	}
	if m.FuelS <= 0 {
		return GuidanceOutcome{Miss: true, MissReason: "fuel_out", SlantRangeM: slantRange}
	}
	if m.elapsedS > m.BurnTimeS && m.Velocity.Norm() < 80 {
		return GuidanceOutcome{Miss: true, MissReason: "speed_below_minimum", SlantRangeM: slantRange}
	}
	if closingSpeed < 0 && m.elapsedS > m.BurnTimeS {
		return GuidanceOutcome{Miss: true, MissReason: "range_diverging", SlantRangeM: slantRange}
	}
	return GuidanceOutcome{SlantRangeM: slantRange}
}

// InterceptSimulate steps a missile to completion (hit, miss, or
// maxSteps exhausted) against a constant-velocity target, returning
// the terminal outcome. Used by the engagement ASSESS phase when a
// full kinematic resolution is wanted instead of a probabilistic roll.
func InterceptSimulate(m Missile, targetPos0, targetVel linalg.Vec3, dt float64, maxSteps int) GuidanceOutcome {
	pos := targetPos0
	var last GuidanceOutcome
	for i := 0; i < maxSteps; i++ {
		last = m.Step(dt, pos, targetVel)
		pos = pos.Add(targetVel.Scale(dt))
		if last.Hit || last.Miss {
			return last
		}
	}
	return GuidanceOutcome{Miss: true, MissReason: "range_diverging", SlantRangeM: last.SlantRangeM}
}
