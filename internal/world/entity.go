// Package world owns the entity table: the single source of truth for
// every physical actor in the simulation. It is grounded on the
// teacher's CounterUASSystem/UASThreat pair (cmd/drone-swarm/simulation/
// entities.go) — a Blue/Red, ID + mutable-state-record shape — but
// generalized from two hardcoded structs into one tagged-variant
// Entity plus per-domain component records (FlightRecord, CommRecord,
// SensorRecord, CyberRecord), per the spec's duck-typed-state-map
// redesign note (§9). Every other subsystem holds entity IDs, never
// pointers into this table, and looks them up through World.
package world

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/orbitalarena/alldomainsim/internal/linalg"
)

// PhysicsKind tags which propagator owns an entity's motion.
type PhysicsKind string

const (
	PhysicsOrbital2Body   PhysicsKind = "orbital_2body"
	PhysicsAtmospheric3DOF PhysicsKind = "atmospheric_3dof"
	PhysicsShip           PhysicsKind = "ship"
	PhysicsSubmarine      PhysicsKind = "submarine"
	PhysicsStatic         PhysicsKind = "static" // radars, jammers, fixed C2 nodes
)

// State is the flat, semantically-keyed state blob the spec describes:
// lat/lon in radians, alt in meters MSL, speed m/s, heading/gamma/roll
// radians, throttle 0..1, plus the ECI cache used to bridge atmospheric
// and orbital regimes seamlessly.
type State struct {
	Lat, Lon   float64 // radians
	Alt        float64 // meters above mean radius
	Speed      float64 // m/s
	Heading    float64 // radians, [0, 2pi)
	Gamma      float64 // flight-path angle, radians
	Roll       float64 // radians
	Throttle   float64 // 0..1
	EngineOn   bool
	AeroBlend  float64 // 0 = pure atmospheric, 1 = pure vacuum/orbital

	ECIPos linalg.Vec3 // _eci_pos cache
	ECIVel linalg.Vec3 // _eci_vel cache
}

// Clone returns a value copy; State has no pointer fields so a plain
// copy suffices, but this keeps call sites explicit about intent.
func (s State) Clone() State { return s }

// Entity is the opaque-ID record every subsystem keys off of.
type Entity struct {
	ID     string
	Name   string
	Side   string // team/affiliation tag
	Type   string // domain-specific type tag, e.g. "f16", "leo-sat", "oiler"
	Active bool

	Physics PhysicsKind
	State   State

	Flight *FlightRecord // present when Physics == atmospheric/ship/sub
	Comm   *CommRecord   // present when the entity participates in comms
	Sensor *SensorRecord // present when the entity carries a sensor
	Cyber  *CyberRecord  // present when the entity is a cyber attack target/source
	AI     *AIRecord     // at most one AI component
}

// FlightRecord holds propagator-owned kinematic detail not part of the
// shared State (mass, engine performance, aero coefficients).
type FlightRecord struct {
	MassKg        float64
	ThrustN       float64
	DragCoeff     float64
	LiftCoeff     float64
	WingAreaM2    float64
	MaxGLoad      float64
	FuelKg        float64
	FuelBurnKgS   float64
}

// CommRecord marks an entity as a comms-graph node (ownership of the
// link/network details themselves stays with the comms engine; this
// only records what the node needs to expose to it).
type CommRecord struct {
	NetworkIDs   []string
	IsCommandNode bool
	CarriesWeapon bool
	Compromised   bool // cyber "exploit" effect flag
	Bricked       bool // cyber "brick" effect flag
}

// SensorRecord marks radar/sonar ownership; the heavy state (scan
// angle, track list) lives in the iads/sonar packages keyed by entity
// ID, this just flags capability and a cross-reference key.
type SensorRecord struct {
	HasRadar bool
	HasSonar bool
}

// CyberRecord tracks cumulative cyber-effect state applied to a node.
type CyberRecord struct {
	DDoSFactor float64 // throughput multiplier, 1.0 = unaffected
}

// AIRecord is the (at most one) behavior driver attached to an entity.
type AIRecord struct {
	Role           string
	TargetEntityID string // "" if none; missing-component errors are logged once by the caller
}

// World is the single owner of the entity table. All mutation happens
// through its methods so the "exactly one physics component, at most
// one AI component" invariant is enforced in one place.
type World struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	simTime  float64
}

func New() *World {
	return &World{entities: make(map[string]*Entity)}
}

// SimTime returns the current simulation time in seconds.
func (w *World) SimTime() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.simTime
}

// AdvanceTime is called once per tick by the scheduler, never by a
// subsystem mid-tick.
func (w *World) AdvanceTime(dt float64) {
	w.mu.Lock()
	w.simTime += dt
	w.mu.Unlock()
}

// Spawn registers a new entity. If e.ID is empty a UUID is generated.
func (w *World) Spawn(e Entity) (string, error) {
	if e.Physics == "" {
		return "", fmt.Errorf("world: entity %q requires exactly one physics component", e.Name)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.entities[e.ID]; exists {
		return "", fmt.Errorf("world: entity id %q already registered", e.ID)
	}
	e.Active = true
	w.entities[e.ID] = &e
	return e.ID, nil
}

// Get returns a copy of the entity record for id, or false if absent;
// deactivated entities are still returned, with Active false. Callers
// never receive the internal pointer.
func (w *World) Get(id string) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Mutate applies fn to the entity keyed by id under the write lock.
// This is the only way callers outside the physics step may change an
// entity, and it is intended for owner subsystems only (comms marking
// a node bricked, IADS marking a threat destroyed) — never for
// overwriting another subsystem's State during the same tick.
func (w *World) Mutate(id string, fn func(*Entity)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	fn(e)
	return true
}

// Deactivate marks an entity inactive (destroyed/removed) without
// deleting its record, so IDs already referenced by in-flight packets
// or alerts resolve to a stable "not active" result rather than a miss.
func (w *World) Deactivate(id string) {
	w.Mutate(id, func(e *Entity) { e.Active = false })
}

// Snapshot returns a point-in-time copy of every active entity, taken
// once per tick at the physics step per the spec's "frozen snapshot"
// contract: no later subsystem in the tick observes writes newer than
// this snapshot.
func (w *World) Snapshot() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if e.Active {
			out = append(out, *e)
		}
	}
	return out
}

// All returns every entity including inactive ones (used by reporting).
func (w *World) All() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, *e)
	}
	return out
}

// ByType filters a snapshot by type tag.
func ByType(entities []Entity, t string) []Entity {
	out := make([]Entity, 0)
	for _, e := range entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// BySide filters a snapshot by side tag.
func BySide(entities []Entity, side string) []Entity {
	out := make([]Entity, 0)
	for _, e := range entities {
		if e.Side == side {
			out = append(out, e)
		}
	}
	return out
}
