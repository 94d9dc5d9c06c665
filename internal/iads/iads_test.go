package iads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
)

func TestScanDetectsWithinBeamAndRange(t *testing.T) {
	r := &Radar{Kind: RadarEW, MaxRangeM: 100000, BeamwidthRad: 0.5, ScanRateRadS: 0.1, TrackAccuracyM: 10}
	target := linalg.New(50000, 0, 0)
	var detected bool
	for i := 0; i < 200; i++ {
		res := r.Scan(0.5, target, 1, 1, nil)
		if res.Detected {
			detected = true
			break
		}
	}
	assert.True(t, detected)
}

func TestScanRejectsBeyondMaxRange(t *testing.T) {
	r := &Radar{Kind: RadarEW, MaxRangeM: 1000, BeamwidthRad: 1, ScanRateRadS: 1}
	res := r.Scan(0.1, linalg.New(5000, 0, 0), 0, 0, nil)
	assert.False(t, res.Detected)
}

func TestSlewScanLocksOntoAssignedTarget(t *testing.T) {
	r := &Radar{Kind: RadarTTR, MaxRangeM: 100000, BeamwidthRad: 0.1, ScanRateRadS: 2, AssignedTarget: "trk1"}
	target := linalg.New(1000, 1000, 0)
	var detected bool
	for i := 0; i < 20; i++ {
		res := r.SlewScan(0.1, target, 1, 1, nil)
		if res.Detected {
			detected = true
		}
	}
	assert.True(t, detected)
}

func TestReportWithNoiseAppliesGaussianJitter(t *testing.T) {
	rng := simrand.New(7)
	res := reportWithNoise(10, 20, 50, rng)
	assert.True(t, res.Detected)
	assert.NotEqual(t, 10.0, res.ReportLat)
}

func doctrine() Doctrine {
	return Doctrine{
		ConsecutiveUpdatesToTrack: 3,
		ConfidenceThreshold:       0.6,
		ConfidenceStepPerUpdate:   0.25,
		MissilesPerSalvo:          2,
		MagazineSize:              4,
	}
}

func TestEngagementAdvancesThroughFind2TargetForward(t *testing.T) {
	e := NewEngagement("trk1", doctrine())
	assert.Equal(t, PhaseIdle, e.Phase)

	e.AdvanceOnDetection()
	assert.Equal(t, PhaseFind, e.Phase)

	e.AdvanceOnHandoff()
	assert.Equal(t, PhaseFix, e.Phase)

	e.AdvanceOnTTRUpdate(doctrine(), "")
	assert.Equal(t, PhaseTrack, e.Phase)

	e.AdvanceOnTTRUpdate(doctrine(), "")
	assert.Equal(t, PhaseTrack, e.Phase)

	e.AdvanceOnTTRUpdate(doctrine(), "fcr1")
	assert.Equal(t, PhaseTarget, e.Phase)
	assert.Equal(t, "fcr1", e.FCRID)
}

func TestEngagementLaunchFiresSalvoAndMovesToEngage(t *testing.T) {
	e := NewEngagement("trk1", doctrine())
	e.Phase = PhaseTarget
	fired := e.Launch(doctrine())
	assert.Equal(t, 2, fired)
	assert.Equal(t, PhaseEngage, e.Phase)
	assert.Equal(t, 2, e.MagazineRemaining)
}

func TestEngagementAssessHitGoesToComplete(t *testing.T) {
	e := NewEngagement("trk1", doctrine())
	e.Phase = PhaseEngage
	e.MagazineRemaining = 2
	e.Assess(true)
	assert.Equal(t, PhaseComplete, e.Phase)
}

func TestEngagementAssessMissWithMagazineRetargets(t *testing.T) {
	e := NewEngagement("trk1", doctrine())
	e.Phase = PhaseEngage
	e.MagazineRemaining = 2
	e.Assess(false)
	assert.Equal(t, PhaseTarget, e.Phase)
}

func TestEngagementAssessMissNoMagazineCompletes(t *testing.T) {
	e := NewEngagement("trk1", doctrine())
	e.Phase = PhaseEngage
	e.MagazineRemaining = 0
	e.Assess(false)
	assert.Equal(t, PhaseComplete, e.Phase)
}

func TestInterceptProbabilityDecreasesWithRangeAndCountermeasures(t *testing.T) {
	env := EnvironmentalModifiers{Visibility: 1, Weather: 1}
	near := InterceptProbability(0.9, 1000, 20000, env)
	far := InterceptProbability(0.9, 18000, 20000, env)
	assert.Greater(t, near, far)

	withECM := env
	withECM.CountermeasuresActive = true
	degraded := InterceptProbability(0.9, 1000, 20000, withECM)
	assert.Less(t, degraded, near)
}

func TestRollInterceptIsDeterministicForSameSeed(t *testing.T) {
	r1 := simrand.New(42)
	r2 := simrand.New(42)
	a := RollIntercept(0.5, r1)
	b := RollIntercept(0.5, r2)
	assert.Equal(t, a, b)
}

// Missile.Step treats Position/Velocity as ECI coordinates, so these
// tests place the missile near Earth's surface (EarthMeanRadiusM plus
// a small altitude) rather than at a toy local-frame origin.
func TestMissileStepHitsWithinKillRadius(t *testing.T) {
	base := orbital.EarthMeanRadiusM + 1000
	m := Missile{
		Position:    linalg.New(base, 0, 0),
		Velocity:    linalg.New(0, 10, 0),
		FuelS:       20,
		BurnTimeS:   5,
		MaxGs:       30,
		KillRadiusM: 50,
		NavGain:     4,
	}
	target := linalg.New(base, 5, 0)
	out := m.Step(0.1, target, linalg.New(0, 0, 0))
	assert.True(t, out.Hit)
}

func TestMissileStepMissesOnFuelOut(t *testing.T) {
	base := orbital.EarthMeanRadiusM + 1000
	m := Missile{
		Position:    linalg.New(base, 0, 0),
		Velocity:    linalg.New(0, 10, 0),
		FuelS:       0.05,
		BurnTimeS:   5,
		MaxGs:       30,
		KillRadiusM: 5,
		NavGain:     4,
	}
	target := linalg.New(base, 20000, 0)
	out := m.Step(0.1, target, linalg.New(0, 0, 0))
	require.True(t, out.Miss)
	assert.Equal(t, "fuel_out", out.MissReason)
}

func TestMissileStepMissesOnGroundImpact(t *testing.T) {
	base := orbital.EarthMeanRadiusM + 5
	m := Missile{
		Position:    linalg.New(base, 0, 0),
		Velocity:    linalg.New(-100, 0, 0), // radially inward, toward Earth's center
		FuelS:       20,
		BurnTimeS:   5,
		MaxGs:       30,
		KillRadiusM: 5,
		NavGain:     4,
	}
	target := linalg.New(base, 20000, 0)
	out := m.Step(0.1, target, linalg.New(0, 0, 0))
	require.True(t, out.Miss)
	assert.Equal(t, "ground_impact", out.MissReason)
}

func TestInterceptSimulateReachesTerminalOutcome(t *testing.T) {
	base := orbital.EarthMeanRadiusM + 1000
	m := Missile{
		Position:    linalg.New(base, 0, 0),
		Velocity:    linalg.New(0, 200, 0),
		FuelS:       30,
		BurnTimeS:   10,
		MaxGs:       30,
		KillRadiusM: 30,
		NavGain:     4,
	}
	target := linalg.New(base, 2000, 0)
	out := InterceptSimulate(m, target, linalg.New(0, 0, 0), 0.05, 2000)
	assert.True(t, out.Hit || out.Miss)
}
