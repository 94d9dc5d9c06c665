// Package engine wires every domain package into the scheduler's
// ordered stage pipeline per spec.md §5's twelve-step tick contract.
// Grounded on the teacher's SimulationController.Start (controllers/
// simulation_controller.go), which owns the entity tables, the status
// ticker, and the tick loop in one struct — generalized here from one
// fixed-rate loop over two entity types into the spec's multi-rate
// pipeline over every domain package this repository implements.
package engine

import (
	"fmt"

	"github.com/orbitalarena/alldomainsim/internal/comms"
	"github.com/orbitalarena/alldomainsim/internal/conjunction"
	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/datalink"
	"github.com/orbitalarena/alldomainsim/internal/effects"
	"github.com/orbitalarena/alldomainsim/internal/flight"
	"github.com/orbitalarena/alldomainsim/internal/iads"
	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/scheduler"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/internal/weather"
	"github.com/orbitalarena/alldomainsim/internal/world"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

// Battery pairs one fire-control radar with the engagement state
// machine it is currently driving, so the combat stage has one thing
// to advance per active shot.
type Battery struct {
	FCRID      string
	Doctrine   iads.Doctrine
	Engagement *iads.Engagement
}

// Engine owns every per-replication subsystem registry the stages
// close over: radar set, active engagements, in-flight missiles, the
// comms graph (nil until a scenario wires networks), the packet queue,
// and the effects bus. One Engine belongs to exactly one World.
type Engine struct {
	World     *world.World
	Scheduler *scheduler.Scheduler
	Metrics   *telemetry.Registry
	RNG       *simrand.Source
	Weather   *weather.Model
	Effects   *effects.Bus

	Radars      map[string]*iads.Radar
	Batteries   map[string]*Battery
	Missiles    []*iads.Missile
	missileMeta []missileMeta

	CommandNodes  []datalink.CommandNode
	Graph         *comms.Graph
	Jammers       []comms.Jammer
	packets       []*comms.Packet
	trackPayloads map[string]datalink.TrackUpdate
	commsMetrics  *comms.Metrics

	// Alerts holds the most recent conjunction pass's ranked, capped
	// alert list (spec.md §4.7), the conjunction engine's sole owned
	// output, readable by callers between ticks.
	Alerts []conjunction.Alert

	log logger.Logger
}

type missileMeta struct {
	m          *iads.Missile
	batteryID  string
	targetID   string
	impactedAt float64
}

// New builds an Engine over w wired to the given config and metrics
// registry. rng must be a per-replication simrand.Source so two runs
// seeded identically reproduce identical engagement rolls.
func New(w *world.World, cfg *config.Config, metrics *telemetry.Registry, rng *simrand.Source) *Engine {
	e := &Engine{
		World:        w,
		Metrics:      metrics,
		RNG:          rng,
		Weather:      weather.New(rng.Derive(1), weather.DefaultLayers(), 0.3),
		Effects:      effects.NewBus(512),
		Radars:        make(map[string]*iads.Radar),
		Batteries:     make(map[string]*Battery),
		trackPayloads: make(map[string]datalink.TrackUpdate),
		commsMetrics:  &comms.Metrics{},
		log:           logger.WithPrefix("engine"),
	}
	e.Scheduler = scheduler.New(w, metrics)
	e.registerStages(cfg)
	return e
}

// RegisterRadar adds a sensor to the IADS network, keyed by the entity
// ID that carries it.
func (e *Engine) RegisterRadar(entityID string, r *iads.Radar) {
	e.Radars[entityID] = r
}

// RegisterBattery attaches an F2T2EA engagement driver to the entity
// that owns fcrID's fire-control radar, so detections the sensors
// stage reports against entityID advance an Engagement instead of
// being discarded.
func (e *Engine) RegisterBattery(entityID, fcrID string, doctrine iads.Doctrine) {
	e.Batteries[entityID] = &Battery{FCRID: fcrID, Doctrine: doctrine}
}

// RegisterNetworks builds the comms graph from scenario-declared
// networks. Scenarios that declare none leave Graph nil; stages 5 and
// 6 then skip comms processing entirely for that run.
func (e *Engine) RegisterNetworks(networks []comms.Network, template comms.Link) {
	e.Graph = comms.NewGraph(networks, template)
}

func (e *Engine) registerStages(cfg *config.Config) {
	s := e.Scheduler

	s.Register(scheduler.Stage{Name: "physics", Rate: 0, Run: e.stagePhysics})
	s.Register(scheduler.Stage{Name: "weather", Rate: 0, Run: e.stageWeather})
	s.Register(scheduler.Stage{Name: "sensors", Rate: cfg.Scheduler.SensorRateHz, Run: e.stageSensors})
	s.Register(scheduler.Stage{Name: "datalink", Rate: cfg.Scheduler.DatalinkRateHz, Run: e.stageDatalink})
	s.Register(scheduler.Stage{Name: "comms_link", Rate: cfg.Scheduler.CommsLinkRateHz, Run: e.stageCommsLink})
	s.Register(scheduler.Stage{Name: "comms_routing", Rate: cfg.Scheduler.CommsRoutingRateHz, Run: e.stageCommsRouting})
	s.Register(scheduler.Stage{Name: "auto_track", Rate: 1.0 / cfg.Scheduler.AutoTrackIntervalS, Run: e.stageAutoTrack})
	s.Register(scheduler.Stage{Name: "combat", Rate: 0, Run: e.stageCombat})
	s.Register(scheduler.Stage{Name: "effects", Rate: 0, Run: e.stageEffects})
	s.Register(scheduler.Stage{Name: "conjunction", Rate: cfg.Scheduler.ConjunctionRateHz, Run: e.stageConjunction})
	s.Register(scheduler.Stage{Name: "metrics", Rate: 0, Run: e.stageMetrics})
	s.Register(scheduler.Stage{Name: "publish", Rate: 0, Run: e.stagePublish})
}

// Tick advances the world by dt seconds, running every due stage in
// registration order. This is the one entrypoint callers (simctl,
// mcworker) ever call.
func (e *Engine) Tick(dt float64) {
	e.Scheduler.Tick(dt)
}

// --- stage 1: world entity physics ---

func (e *Engine) stagePhysics(f *scheduler.Frame) error {
	gmst := orbital.GMST(f.SimTime)
	for _, ent := range f.Snapshot {
		if ent.Physics == world.PhysicsStatic {
			continue
		}
		next := flight.Propagate(ent, f.Dt, gmst, e.Weather)
		id := ent.ID
		e.World.Mutate(id, func(target *world.Entity) { target.State = next })
	}
	return nil
}

// --- stage 2: weather update ---
//
// weather.Model computes wind/turbulence/cloud cover on demand from
// its cell hash rather than integrating forward state, so there is no
// per-tick advance to perform; this stage exists only to keep the
// scheduler's ordering contract visible and is the hook a storm-front
// or gust-timing extension would occupy.
func (e *Engine) stageWeather(f *scheduler.Frame) error {
	return nil
}

// --- stage 3: sensors ---

func (e *Engine) stageSensors(f *scheduler.Frame) error {
	bySide := make(map[string][]world.Entity)
	for _, ent := range f.Snapshot {
		bySide[ent.Side] = append(bySide[ent.Side], ent)
	}
	for entityID, radar := range e.Radars {
		owner, ok := e.World.Get(entityID)
		if !ok || !owner.Active {
			continue
		}
		target, ok := nearestOpposing(owner, bySide)
		if !ok {
			continue
		}
		targetPos := linalg.New(target.State.ECIPos.X, target.State.ECIPos.Y, target.State.ECIPos.Z)
		var result iads.ScanResult
		if radar.Kind == iads.RadarEW {
			result = radar.Scan(f.Dt, targetPos, target.State.Lat, target.State.Lon, e.RNG)
		} else {
			radar.AssignedTarget = target.ID
			result = radar.SlewScan(f.Dt, targetPos, target.State.Lat, target.State.Lon, e.RNG)
		}
		if result.Detected {
			e.onDetection(entityID, target.ID)
		}
	}
	return nil
}

func nearestOpposing(owner world.Entity, bySide map[string][]world.Entity) (world.Entity, bool) {
	var best world.Entity
	bestDist := -1.0
	found := false
	for side, entities := range bySide {
		if side == owner.Side {
			continue
		}
		for _, ent := range entities {
			d := ownerDistance(owner, ent)
			if !found || d < bestDist {
				best, bestDist, found = ent, d, true
			}
		}
	}
	return best, found
}

func ownerDistance(a, b world.Entity) float64 {
	dx := a.State.ECIPos.X - b.State.ECIPos.X
	dy := a.State.ECIPos.Y - b.State.ECIPos.Y
	dz := a.State.ECIPos.Z - b.State.ECIPos.Z
	return dx*dx + dy*dy + dz*dz
}

func (e *Engine) onDetection(radarEntityID, targetID string) {
	b, ok := e.Batteries[radarEntityID]
	if !ok {
		return
	}
	if b.Engagement == nil {
		b.Engagement = iads.NewEngagement(targetID, b.Doctrine)
	}
	b.Engagement.AdvanceOnDetection()
}

// --- stage 4: tactical datalink (1 Hz default) ---

func (e *Engine) stageDatalink(f *scheduler.Frame) error {
	if len(e.CommandNodes) == 0 {
		return nil
	}
	packets, payloads := datalink.BuildTrackPackets(f.Snapshot, e.CommandNodes, f.SimTime)
	e.packets = append(e.packets, packets...)
	for id, payload := range payloads {
		e.trackPayloads[id] = payload
	}
	return nil
}

// --- stage 5: comms link states, jammers, cyber, self-heal (4 Hz default) ---

func (e *Engine) stageCommsLink(f *scheduler.Frame) error {
	if e.Graph == nil {
		return nil
	}
	positions := make(map[string]linalg.Vec3, len(f.Snapshot))
	for _, ent := range f.Snapshot {
		positions[ent.ID] = ent.State.ECIPos
	}
	env := comms.Environment{}
	for _, l := range e.Graph.Links {
		posA, posB := positions[l.NodeA], positions[l.NodeB]
		comms.UpdateLinkBudget(l, posA, posB, env)
		if len(e.Jammers) > 0 {
			comms.ApplyJammers(l, e.Jammers, posA, posB, f.SimTime)
		}
	}
	return nil
}

// --- stage 6: comms routing + packet advance (2 Hz default) ---

func (e *Engine) stageCommsRouting(f *scheduler.Frame) error {
	if e.Graph == nil || len(e.packets) == 0 {
		return nil
	}
	isAlive := func(id string) bool {
		ent, ok := e.World.Get(id)
		return ok && ent.Active
	}
	isBricked := func(id string) bool {
		ent, ok := e.World.Get(id)
		return ok && ent.Comm != nil && ent.Comm.Bricked
	}
	deps := comms.ProcessorDeps{
		Graph:     e.Graph,
		IsAlive:   isAlive,
		IsBricked: isBricked,
		SimTimeS:  f.SimTime,
		DtS:       f.Dt,
		RNG:       e.RNG,
	}
	comms.ProcessPackets(e.packets, deps)

	var spawned []*comms.Packet
	remaining := e.packets[:0]
	for _, p := range e.packets {
		if p.Delivered || p.Dropped {
			e.commsMetrics.Record(f.SimTime, p)
			if p.Delivered {
				spawned = append(spawned, e.onPacketDelivered(p, f)...)
			}
			delete(e.trackPayloads, p.ID)
			continue
		}
		remaining = append(remaining, p)
	}
	e.packets = append(remaining, spawned...)
	return nil
}

// onPacketDelivered runs spec.md §4.6's F2T2EA distribution for a
// delivered track packet: extrapolate the reported track by its travel
// latency, then emit priority-9 targeting packets to every active,
// weapon-carrying teammate node sharing a network with the destination
// command node. Delivered targeting packets, in turn, cue that node's
// own engagement (battery) the same way a direct radar detection does.
func (e *Engine) onPacketDelivered(p *comms.Packet, f *scheduler.Frame) []*comms.Packet {
	payload, ok := e.trackPayloads[p.ID]
	if !ok {
		return nil
	}

	switch p.Type {
	case comms.PacketTrack:
		extrapolated := datalink.Extrapolate(payload, p.AgeS, orbital.EarthMeanRadiusM)
		var targeting []*comms.Packet
		for _, netID := range e.networksContaining(p.Destination) {
			net := e.Graph.Networks[netID]
			for _, nodeID := range net.NodeIDs {
				if nodeID == p.Destination {
					continue
				}
				node, ok := e.World.Get(nodeID)
				if !ok || !node.Active || node.Side != payload.Side {
					continue
				}
				if node.Comm == nil || !node.Comm.CarriesWeapon {
					continue
				}
				id := fmt.Sprintf("targeting-%s-%s-%.3f", p.ID, nodeID, f.SimTime)
				targeting = append(targeting, &comms.Packet{
					ID:          id,
					Source:      p.Destination,
					Destination: nodeID,
					Priority:    9,
					Type:        comms.PacketTargeting,
					SizeBytes:   128,
					TTLS:        2.0,
				})
				e.trackPayloads[id] = extrapolated.TrackUpdate
			}
		}
		return targeting
	case comms.PacketTargeting:
		e.onDetection(p.Destination, payload.EntityID)
	}
	return nil
}

// networksContaining returns the IDs of every network the graph owns
// that lists nodeID as a member.
func (e *Engine) networksContaining(nodeID string) []string {
	var ids []string
	for id, net := range e.Graph.Networks {
		for _, n := range net.NodeIDs {
			if n == nodeID {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

// --- stage 7: auto track-packet / engagement update (every AutoTrackIntervalS) ---

func (e *Engine) stageAutoTrack(f *scheduler.Frame) error {
	for id, b := range e.Batteries {
		if b.Engagement == nil {
			continue
		}
		b.Engagement.AdvanceOnTTRUpdate(b.Doctrine, b.FCRID)
		if b.Engagement.Phase == iads.PhaseEngage {
			e.launchSalvo(id, b)
		}
	}
	return nil
}

func (e *Engine) launchSalvo(batteryID string, b *Battery) {
	n := b.Engagement.Launch(b.Doctrine)
	if n == 0 {
		return
	}
	owner, ok := e.World.Get(batteryID)
	if !ok {
		return
	}
	target, ok := e.World.Get(b.Engagement.TrackID)
	if !ok {
		return
	}
	for i := 0; i < n; i++ {
		m := &iads.Missile{
			Position:    owner.State.ECIPos,
			Velocity:    linalg.Vec3{},
			FuelS:       20,
			BurnTimeS:   6,
			MaxGs:       25,
			KillRadiusM: 15,
			NavGain:     3.5,
		}
		e.Missiles = append(e.Missiles, m)
		e.missileMeta = append(e.missileMeta, missileMeta{m: m, batteryID: batteryID, targetID: target.ID})
	}
	e.Effects.Push(effects.Event{Kind: effects.KindExhaustPlume, Position: [3]float64{owner.State.ECIPos.X, owner.State.ECIPos.Y, owner.State.ECIPos.Z}})
}

// --- stage 8: combat engagements (every tick for missiles) ---

func (e *Engine) stageCombat(f *scheduler.Frame) error {
	live := e.Missiles[:0]
	liveMeta := e.missileMeta[:0]
	for i, m := range e.Missiles {
		meta := e.missileMeta[i]
		target, ok := e.World.Get(meta.targetID)
		if !ok || !target.Active {
			continue
		}
		targetVel := linalg.Vec3{}
		outcome := m.Step(f.Dt, target.State.ECIPos, targetVel)
		if outcome.Hit || outcome.Miss {
			e.resolveIntercept(meta, outcome)
			continue
		}
		live = append(live, m)
		liveMeta = append(liveMeta, meta)
	}
	e.Missiles = live
	e.missileMeta = liveMeta
	return nil
}

func (e *Engine) resolveIntercept(meta missileMeta, outcome iads.GuidanceOutcome) {
	b, ok := e.Batteries[meta.batteryID]
	if !ok {
		return
	}
	kind := effects.KindExplosion
	if outcome.Miss {
		e.log.Infof("missile from %s missed %s: %s", meta.batteryID, meta.targetID, outcome.MissReason)
	}
	e.Effects.Push(effects.Event{Kind: kind, Position: [3]float64{}})
	if b.Engagement != nil {
		b.Engagement.Assess(outcome.Hit)
		outcomeLabel := "miss"
		if outcome.Hit {
			outcomeLabel = "hit"
			e.World.Deactivate(meta.targetID)
		}
		if e.Metrics != nil {
			e.Metrics.Engagements.WithLabelValues(outcomeLabel).Inc()
		}
	}
}

// --- stage 9: effects bus update ---
//
// Events are pushed at the point of occurrence (combat: salvo launch
// and intercept resolution); this
// stage is the scheduler-ordering placeholder spec.md §5 names, kept
// separate so a future producer doesn't need to reach into a
// different stage to publish.
func (e *Engine) stageEffects(f *scheduler.Frame) error {
	return nil
}

// --- stage 10: conjunction / SDA ---

func (e *Engine) stageConjunction(f *scheduler.Frame) error {
	tracked := make([]conjunction.TrackedEntity, 0, len(f.Snapshot))
	for _, ent := range f.Snapshot {
		tracked = append(tracked, conjunction.TrackedEntity{
			ID:       ent.ID,
			Team:     ent.Side,
			Position: [3]float64{ent.State.ECIPos.X, ent.State.ECIPos.Y, ent.State.ECIPos.Z},
			Velocity: [3]float64{ent.State.ECIVel.X, ent.State.ECIVel.Y, ent.State.ECIVel.Z},
		})
	}
	pairs := conjunction.BroadPhase(tracked)
	deps := conjunction.NarrowPhaseDeps{}
	alerts := make([]conjunction.Alert, 0, len(pairs))
	for _, pair := range pairs {
		if alert, ok := conjunction.NarrowPhase(tracked[pair[0]], tracked[pair[1]], deps); ok {
			alerts = append(alerts, alert)
		}
	}
	e.Alerts = conjunction.RankAlerts(alerts)
	if e.Metrics != nil {
		e.Metrics.ActiveAlerts.Set(float64(len(e.Alerts)))
	}
	return nil
}

// --- stage 11: metrics ---
//
// Stage timing is already recorded by the scheduler wrapper for every
// stage; this hook is reserved for windowed (30s) aggregate metrics a
// future dashboard would consume.
func (e *Engine) stageMetrics(f *scheduler.Frame) error {
	return nil
}

// --- stage 12: observable state publish ---
//
// simctl's interactive mode and the MC bridge both read state through
// World.Snapshot/World.Get directly rather than a push channel, so
// this stage is a no-op placeholder preserving the ordering contract.
func (e *Engine) stagePublish(f *scheduler.Frame) error {
	return nil
}

// Validate reports whether the engine's registries reference entities
// that actually exist in the world, surfacing scenario/engine wiring
// mistakes before the first tick rather than mid-run.
func (e *Engine) Validate() error {
	for id := range e.Radars {
		if _, ok := e.World.Get(id); !ok {
			return fmt.Errorf("engine: radar registered on unknown entity %q", id)
		}
	}
	return nil
}
