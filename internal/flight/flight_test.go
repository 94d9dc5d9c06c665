package flight

import (
	"math"
	"testing"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/weather"
	"github.com/orbitalarena/alldomainsim/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cruiseEntity() world.Entity {
	return world.Entity{
		ID:      "a1",
		Physics: world.PhysicsAtmospheric3DOF,
		State: world.State{
			Lat: 0.1, Lon: 0.2, Alt: 10000,
			Speed: 230, Heading: 1.0, Gamma: 0, Roll: 0,
			Throttle: 0.6, EngineOn: true,
		},
		Flight: &world.FlightRecord{
			MassKg: 9000, ThrustN: 40000, DragCoeff: 0.03, LiftCoeff: 0.3,
			WingAreaM2: 30, FuelKg: 2000, FuelBurnKgS: 0.3,
		},
	}
}

func TestAeroBlendForBelowFloorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, aeroBlendFor(10000))
}

func TestAeroBlendForAboveCeilingIsOne(t *testing.T) {
	assert.Equal(t, 1.0, aeroBlendFor(200000))
}

func TestAeroBlendForMidBandInterpolates(t *testing.T) {
	b := aeroBlendFor(80000)
	assert.InDelta(t, 0.5, b, 1e-9)
}

func TestPropagateCruiseStaysAtmospheric(t *testing.T) {
	e := cruiseEntity()
	gmst := orbital.GMST(0)
	st := Propagate(e, 1.0, gmst, nil)
	assert.Equal(t, 0.0, st.AeroBlend)
	assert.NotEqual(t, e.State.Lat, st.Lat)
}

func TestPropagateOrbitalEntityIgnoresAero(t *testing.T) {
	mu := orbital.MuEarth
	r := [3]float64{7000000, 0, 0}
	v := [3]float64{0, math.Sqrt(mu / 7000000), 0}
	lat, lon, alt := orbital.ECIToGeodetic(r, 0)

	e := world.Entity{
		ID:      "sat1",
		Physics: world.PhysicsOrbital2Body,
		State: world.State{
			Lat: lat, Lon: lon, Alt: alt,
			ECIPos: linalg.New(r[0], r[1], r[2]), ECIVel: linalg.New(v[0], v[1], v[2]),
		},
	}
	gmst := orbital.GMST(0)
	st := Propagate(e, 60, gmst, nil)
	require.Equal(t, 1.0, st.AeroBlend)
	assert.Greater(t, st.ECIPos.Norm(), 0.0)
}

func TestApplyWindToStateZeroWindIsNoOp(t *testing.T) {
	wx := weather.New(nil, []weather.Layer{{Name: "calm", MinAltM: 0, MaxAltM: 50000, SpeedMS: 0, HeadingDeg: 0}}, 0)
	st := world.State{Alt: 1000, Speed: 200, Heading: 0}
	dS, dH, dG, dR := applyWindToState(st, wx)
	assert.Equal(t, 0.0, dS)
	assert.Equal(t, 0.0, dH)
	assert.Equal(t, 0.0, dG)
	assert.Equal(t, 0.0, dR)
}
