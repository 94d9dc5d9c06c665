package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/internal/world"
)

func TestTickAdvancesWorldTimeAndKeepsEntitiesActive(t *testing.T) {
	w := world.New()
	id, err := w.Spawn(world.Entity{
		Name:    "blue-bomber-1",
		Side:    "blue",
		Type:    "aircraft",
		Physics: world.PhysicsAtmospheric3DOF,
		State:   world.State{Lat: 10, Lon: 20, Alt: 8000, Speed: 200, Heading: 90, EngineOn: true, Throttle: 0.8},
	})
	require.NoError(t, err)

	eng := New(w, config.Default(), telemetry.New(), simrand.New(1))
	require.NoError(t, eng.Validate())

	eng.Tick(0.1)

	require.InDelta(t, 0.1, w.SimTime(), 1e-9)
	e, ok := w.Get(id)
	require.True(t, ok)
	require.True(t, e.Active)
}

func TestValidateRejectsUnknownRadarEntity(t *testing.T) {
	w := world.New()
	eng := New(w, config.Default(), telemetry.New(), simrand.New(1))
	eng.RegisterRadar("missing-entity", nil)

	err := eng.Validate()
	require.Error(t, err)
}
