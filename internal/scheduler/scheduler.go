// Package scheduler drives the tick pipeline: an ordered list of
// per-subsystem Stages run at independent rates against a frozen
// per-tick snapshot. It generalizes the teacher's SimulationController
// tick loop (cmd/drone-swarm/controllers/simulation_controller.go
// runSimulationLoop, which selects between a single fixed ticker and a
// once-a-second status ticker) into the spec's multi-rate pipeline: an
// ordered slice of named stages, each carrying its own accumulator, so
// ordering is enforced by slice position rather than by which select
// case happened to fire.
package scheduler

import (
	"time"

	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/internal/world"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

// frameDtClampS bounds a single Tick's dt to prevent integrator blow-up
// after a host pause, per spec.md §5.
const frameDtClampS = 0.1

// accumulatorClampS bounds how far a stage's accumulator may run past
// that stage's own interval, so a long real-time stall cannot leave a
// backlog of dozens of catch-up runs
// ("spiral of death"), per spec.md §4.1 and SPEC_FULL.md §4.1.
const accumulatorClampS = 0.25

// Frame is the read-only context every stage receives: the frozen
// entity snapshot taken at physics step, and the tick's dt/simTime.
type Frame struct {
	World    *world.World
	Snapshot []world.Entity
	Dt       float64
	SimTime  float64
}

// Stage is one named pipeline step. Rate is in Hz; 0 means "every
// tick, no throttling." Stages run in the order they were registered.
type Stage struct {
	Name string
	Rate float64
	Run  func(*Frame) error

	accumulator float64
}

// Scheduler owns the world and the ordered stage list, and exposes the
// single tick(dt) operation spec.md §4.1 calls for.
type Scheduler struct {
	world   *world.World
	stages  []*Stage
	metrics *telemetry.Registry
	log     logger.Logger
}

// New constructs a Scheduler bound to w. metrics may be nil (stage
// timing is then a no-op) for tests that don't need a registry.
func New(w *world.World, metrics *telemetry.Registry) *Scheduler {
	return &Scheduler{
		world:   w,
		metrics: metrics,
		log:     logger.WithPrefix("scheduler"),
	}
}

// Register appends a stage to the pipeline. Call in the exact order
// spec.md §4.1 lists: physics, weather, sensors, datalink, comms,
// routing+packets, auto-track, combat, effects, conjunction, metrics,
// publish.
func (s *Scheduler) Register(stage Stage) {
	st := stage
	s.stages = append(s.stages, &st)
}

// Tick advances sim time by dt (clamped) and runs every due stage
// once, in registration order, against one frozen snapshot. A stage
// that errors is logged once and skipped for this tick; the tick
// itself never aborts, per spec.md §7.
func (s *Scheduler) Tick(dt float64) {
	if dt > frameDtClampS {
		dt = frameDtClampS
	}
	if dt <= 0 {
		return
	}

	s.world.AdvanceTime(dt)
	frame := &Frame{
		World:    s.world,
		Snapshot: s.world.Snapshot(),
		Dt:       dt,
		SimTime:  s.world.SimTime(),
	}

	for _, stage := range s.stages {
		interval := 0.0
		if stage.Rate > 0 {
			interval = 1.0 / stage.Rate
		}

		stage.accumulator += dt
		if limit := interval + accumulatorClampS; stage.accumulator > limit {
			stage.accumulator = limit
		}

		due := interval == 0 || stage.accumulator >= interval
		if !due {
			continue
		}
		if interval > 0 {
			stage.accumulator -= interval
		} else {
			stage.accumulator = 0
		}

		start := time.Now()
		err := stage.Run(frame)
		elapsed := time.Since(start).Seconds()
		if s.metrics != nil {
			s.metrics.TickStageSeconds.WithLabelValues(stage.Name).Observe(elapsed)
		}
		if err != nil {
			logger.Tick(frame.SimTime).WithPrefix("scheduler").Errorf("stage %s failed: %v", stage.Name, err)
		}
	}
}

// StageNames returns the registered stages in pipeline order, for
// tests asserting ordering without running a real tick.
func (s *Scheduler) StageNames() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.Name
	}
	return names
}
