package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/internal/world"
)

func TestStagesRunInRegistrationOrder(t *testing.T) {
	s := New(world.New(), nil)
	var order []string
	s.Register(Stage{Name: "physics", Run: func(*Frame) error { order = append(order, "physics"); return nil }})
	s.Register(Stage{Name: "weather", Run: func(*Frame) error { order = append(order, "weather"); return nil }})
	s.Register(Stage{Name: "comms", Run: func(*Frame) error { order = append(order, "comms"); return nil }})

	s.Tick(0.1)
	assert.Equal(t, []string{"physics", "weather", "comms"}, order)
}

func TestThrottledStageSkipsUntilIntervalElapses(t *testing.T) {
	s := New(world.New(), nil)
	runs := 0
	s.Register(Stage{Name: "datalink", Rate: 1, Run: func(*Frame) error { runs++; return nil }})

	for i := 0; i < 5; i++ {
		s.Tick(0.1)
	}
	assert.Equal(t, 0, runs)

	for i := 0; i < 6; i++ {
		s.Tick(0.1)
	}
	assert.Equal(t, 1, runs)
}

func TestStageErrorIsLoggedAndSkipsRestOfPipelineUnaffected(t *testing.T) {
	s := New(world.New(), nil)
	secondRan := false
	s.Register(Stage{Name: "failing", Run: func(*Frame) error { return errors.New("boom") }})
	s.Register(Stage{Name: "next", Run: func(*Frame) error { secondRan = true; return nil }})

	require.NotPanics(t, func() { s.Tick(0.1) })
	assert.True(t, secondRan)
}

func TestTickClampsDtAndAdvancesSimTime(t *testing.T) {
	w := world.New()
	s := New(w, nil)
	s.Register(Stage{Name: "noop", Run: func(*Frame) error { return nil }})

	s.Tick(5.0)
	assert.InDelta(t, frameDtClampS, w.SimTime(), 1e-9)
}

func TestFrameCarriesSnapshotAndDt(t *testing.T) {
	w := world.New()
	_, err := w.Spawn(world.Entity{Name: "sat1", Physics: world.PhysicsOrbital2Body})
	require.NoError(t, err)

	s := New(w, nil)
	var seen *Frame
	s.Register(Stage{Name: "physics", Run: func(f *Frame) error { seen = f; return nil }})
	s.Tick(0.05)

	require.NotNil(t, seen)
	assert.Len(t, seen.Snapshot, 1)
	assert.InDelta(t, 0.05, seen.Dt, 1e-9)
}

func TestStageTimingFeedsMetricsRegistry(t *testing.T) {
	reg := telemetry.New()
	s := New(world.New(), reg)
	s.Register(Stage{Name: "physics", Run: func(*Frame) error { return nil }})
	s.Tick(0.1)
	// No direct accessor on the histogram vec; absence of panic plus a
	// populated StageNames list is the behavior under test here.
	assert.Equal(t, []string{"physics"}, s.StageNames())
}
