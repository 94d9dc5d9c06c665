// Package scenario loads and builds a world from the JSON scenario
// format of spec.md §6: metadata, environment, a list of entity specs
// with per-domain components, scripted events, and a camera hint.
// Grounded on the teacher's NewCounterUASSystem/NewUASThreat
// constructors (cmd/drone-swarm/controllers/simulation_controller.go),
// generalized from two hardcoded entity constructors into one
// data-driven builder that dispatches on each entity's physics
// component type tag, per spec.md §9's "polymorphic entities... tagged
// variant" redesign note.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/orbitalarena/alldomainsim/internal/world"
)

// Metadata is the scenario's descriptive header.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Environment carries simulation-wide environmental hints.
type Environment struct {
	MaxTimeWarp   float64 `json:"maxTimeWarp"`
	WeatherPreset string  `json:"weatherPreset,omitempty"`
}

// Camera is a rendering hint, passed through unexamined by the engine.
type Camera struct {
	Target string  `json:"target"`
	Range  float64 `json:"range"`
	Pitch  float64 `json:"pitch"`
}

// PhysicsSpec decodes an entity's "physics" component.
type PhysicsSpec struct {
	Type          string  `json:"type"`
	MassKg        float64 `json:"massKg"`
	ThrustN       float64 `json:"thrustN"`
	DragCoeff     float64 `json:"dragCoeff"`
	LiftCoeff     float64 `json:"liftCoeff"`
	WingAreaM2    float64 `json:"wingAreaM2"`
	MaxGLoad      float64 `json:"maxGLoad"`
	FuelKg        float64 `json:"fuelKg"`
	FuelBurnKgS   float64 `json:"fuelBurnKgS"`
}

// AISpec decodes an entity's "ai" component.
type AISpec struct {
	Type           string  `json:"type"`
	Role           string  `json:"role"`
	TargetEntityID string  `json:"targetEntityId,omitempty"`
	DetectRangeM   float64 `json:"detectRangeM,omitempty"`
	EngageRangeM   float64 `json:"engageRangeM,omitempty"`
}

// WeaponSpec decodes an entity's "weapons" component, the scenario-
// file source of IADS doctrine (spec.md §6: "weapons
// {type, Pk, maxRange, cooldown, inventory|salvoSize}").
type WeaponSpec struct {
	Type      string  `json:"type"`
	Pk        float64 `json:"Pk"`
	MaxRangeM float64 `json:"maxRange"`
	CooldownS float64 `json:"cooldown"`
	Inventory int     `json:"inventory"`
	SalvoSize int     `json:"salvoSize"`
}

// EntitySpec is one entity as authored in the scenario file.
type EntitySpec struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	Type          string                     `json:"type"`
	Team          string                     `json:"team"`
	InitialState  map[string]float64         `json:"initialState"`
	Components    map[string]json.RawMessage `json:"components"`
}

// Physics decodes this entity's physics component, if present.
func (e EntitySpec) Physics() (PhysicsSpec, bool, error) {
	raw, ok := e.Components["physics"]
	if !ok {
		return PhysicsSpec{}, false, nil
	}
	var p PhysicsSpec
	if err := json.Unmarshal(raw, &p); err != nil {
		return PhysicsSpec{}, true, fmt.Errorf("entity %q: decoding physics component: %w", e.ID, err)
	}
	return p, true, nil
}

// AI decodes this entity's ai component, if present.
func (e EntitySpec) AI() (AISpec, bool, error) {
	raw, ok := e.Components["ai"]
	if !ok {
		return AISpec{}, false, nil
	}
	var a AISpec
	if err := json.Unmarshal(raw, &a); err != nil {
		return AISpec{}, true, fmt.Errorf("entity %q: decoding ai component: %w", e.ID, err)
	}
	return a, true, nil
}

// Weapons decodes this entity's weapons component, if present.
func (e EntitySpec) Weapons() (WeaponSpec, bool, error) {
	raw, ok := e.Components["weapons"]
	if !ok {
		return WeaponSpec{}, false, nil
	}
	var w WeaponSpec
	if err := json.Unmarshal(raw, &w); err != nil {
		return WeaponSpec{}, true, fmt.Errorf("entity %q: decoding weapons component: %w", e.ID, err)
	}
	return w, true, nil
}

// EventSpec is one scripted event; Params is dispatched by the
// registered handler for Action, decoded lazily so the scenario
// package doesn't need to know every action's shape.
type EventSpec struct {
	Time   float64         `json:"time"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"-"`
}

// UnmarshalJSON captures every field besides time/action into Params,
// so action-specific fields (targetId, networkId, ...) pass through
// without the scenario package enumerating them.
func (e *EventSpec) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Time   float64 `json:"time"`
		Action string  `json:"action"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	e.Time = envelope.Time
	e.Action = envelope.Action
	e.Params = json.RawMessage(data)
	return nil
}

// Scenario is the fully parsed scenario file.
type Scenario struct {
	Metadata    Metadata     `json:"metadata"`
	Environment Environment  `json:"environment"`
	Entities    []EntitySpec `json:"entities"`
	Events      []EventSpec  `json:"events"`
	Camera      Camera       `json:"camera"`
}

// Load reads and parses path. Per spec.md §7 "scenario parse failure",
// any error aborts the load entirely; no partial Scenario is returned.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario: invalid %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	seen := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.ID == "" {
			return fmt.Errorf("entity %q: id is required", e.Name)
		}
		if seen[e.ID] {
			return fmt.Errorf("entity id %q is duplicated", e.ID)
		}
		seen[e.ID] = true
		if _, hasPhysics, err := e.Physics(); err != nil {
			return err
		} else if !hasPhysics {
			return fmt.Errorf("entity %q: requires a physics component", e.ID)
		}
	}
	return nil
}

var physicsKindByTag = map[string]world.PhysicsKind{
	"orbital_2body":    world.PhysicsOrbital2Body,
	"atmospheric_3dof": world.PhysicsAtmospheric3DOF,
	"ship":             world.PhysicsShip,
	"submarine":        world.PhysicsSubmarine,
	"static":           world.PhysicsStatic,
}

// Build spawns every entity in s into w, returning the assigned entity
// IDs (equal to EntitySpec.ID, since the scenario format supplies
// stable IDs rather than letting World generate UUIDs).
func Build(w *world.World, s *Scenario) ([]string, error) {
	ids := make([]string, 0, len(s.Entities))
	for _, spec := range s.Entities {
		entity, err := buildEntity(spec)
		if err != nil {
			return nil, fmt.Errorf("scenario: building entity %q: %w", spec.ID, err)
		}
		id, err := w.Spawn(entity)
		if err != nil {
			return nil, fmt.Errorf("scenario: spawning entity %q: %w", spec.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildEntity(spec EntitySpec) (world.Entity, error) {
	physics, _, err := spec.Physics()
	if err != nil {
		return world.Entity{}, err
	}
	kind, ok := physicsKindByTag[physics.Type]
	if !ok {
		return world.Entity{}, fmt.Errorf("unrecognized physics type %q", physics.Type)
	}

	e := world.Entity{
		ID:      spec.ID,
		Name:    spec.Name,
		Side:    spec.Team,
		Type:    spec.Type,
		Physics: kind,
		State:   stateFromInitial(spec.InitialState),
	}

	if kind == world.PhysicsAtmospheric3DOF || kind == world.PhysicsShip || kind == world.PhysicsSubmarine {
		e.Flight = &world.FlightRecord{
			MassKg:      physics.MassKg,
			ThrustN:     physics.ThrustN,
			DragCoeff:   physics.DragCoeff,
			LiftCoeff:   physics.LiftCoeff,
			WingAreaM2:  physics.WingAreaM2,
			MaxGLoad:    physics.MaxGLoad,
			FuelKg:      physics.FuelKg,
			FuelBurnKgS: physics.FuelBurnKgS,
		}
	}

	if ai, present, err := spec.AI(); err != nil {
		return world.Entity{}, err
	} else if present {
		e.AI = &world.AIRecord{Role: ai.Role, TargetEntityID: ai.TargetEntityID}
	}

	if _, present, err := spec.Weapons(); err != nil {
		return world.Entity{}, err
	} else if present {
		if e.Comm == nil {
			e.Comm = &world.CommRecord{}
		}
		e.Comm.CarriesWeapon = true
	}

	return e, nil
}

func stateFromInitial(m map[string]float64) world.State {
	return world.State{
		Lat:      m["lat"],
		Lon:      m["lon"],
		Alt:      m["alt"],
		Speed:    m["speed"],
		Heading:  m["heading"],
		Gamma:    m["gamma"],
		Roll:     m["roll"],
		Throttle: m["throttle"],
		EngineOn: m["throttle"] > 0,
	}
}
