// Package bridge implements the Monte-Carlo batch/replay/DOE contract
// of spec.md §4.10/§6: one child process per job (cmd/mcworker),
// JSON-lines progress on its stdout, jobs addressable and pollable by
// ID. Grounded on the teacher's core.UpdateBuffer (background worker,
// periodic flush, force-flush on shutdown) and SimulationController's
// goroutine + sync.WaitGroup lifecycle
// (cmd/drone-swarm/controllers/simulation_controller.go Start/Stop),
// generalized from one long-lived in-process simulation loop to
// many short-lived child-process jobs.
package bridge

import (
	"encoding/json"
	"time"
)

// Mode selects which MC operation a job runs.
type Mode string

const (
	ModeBatch  Mode = "batch"
	ModeReplay Mode = "replay"
	ModeDOE    Mode = "doe"
)

// Status is a job's lifecycle state, per spec.md §6.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// BatchRequest is POST /api/mc/batch's body.
type BatchRequest struct {
	Scenario json.RawMessage `json:"scenario"`
	Runs     int             `json:"runs"`
	Seed     int64           `json:"seed"`
	MaxTimeS float64         `json:"maxTime"`
	DtS      float64         `json:"dt"`
}

// ReplayRequest is POST /api/mc/replay's body.
type ReplayRequest struct {
	Scenario       json.RawMessage `json:"scenario"`
	Seed           int64           `json:"seed"`
	MaxTimeS       float64         `json:"maxTime"`
	DtS            float64         `json:"dt"`
	SampleInterval float64         `json:"sampleInterval"`
}

// DOERequest is POST /api/mc/doe's body.
type DOERequest struct {
	Permutations []json.RawMessage `json:"permutations"`
	Seed         int64             `json:"seed"`
	MaxTimeS     float64           `json:"maxTime"`
	ArenaConfig  json.RawMessage   `json:"arenaConfig"`
}

// Progress carries the job's percent complete plus mode-specific
// fields (run/total for batch, step/totalSteps/simTime for replay).
type Progress struct {
	Pct        float64 `json:"pct"`
	Run        int     `json:"run,omitempty"`
	Total      int     `json:"total,omitempty"`
	Step       int     `json:"step,omitempty"`
	TotalSteps int     `json:"totalSteps,omitempty"`
	SimTimeS   float64 `json:"simTime,omitempty"`
}

// ProgressEvent is one JSON-lines message read from the child's
// stdout, per spec.md §4.10's three event shapes, plus a fourth
// "results" line this engine's mcworker emits last carrying the
// aggregated outcome the job exposes once complete.
type ProgressEvent struct {
	Type       string          `json:"type"` // run_complete | replay_progress | done | results
	Run        int             `json:"run,omitempty"`
	Total      int             `json:"total,omitempty"`
	Step       int             `json:"step,omitempty"`
	TotalSteps int             `json:"totalSteps,omitempty"`
	SimTimeS   float64         `json:"simTime,omitempty"`
	ElapsedS   float64         `json:"elapsed,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Job is one addressable, pollable MC run.
type Job struct {
	ID        string          `json:"jobId"`
	Mode      Mode            `json:"mode"`
	Status    Status          `json:"status"`
	Progress  Progress        `json:"progress"`
	Results   json.RawMessage `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
	ElapsedS  float64         `json:"elapsed"`
	StartedAt time.Time       `json:"-"`
}
