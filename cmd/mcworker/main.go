// Command mcworker is the child process internal/bridge.Runner spawns
// for one Monte-Carlo batch, replay, or DOE job. It reads its request
// as JSON on stdin, ticks the engine headlessly, and emits JSON-lines
// progress events on stdout per spec.md §4.10/§6, terminated by a
// "results" line carrying the aggregated outcome and a "done" line.
//
// Grounded on the teacher's core.UpdateBuffer background-flush loop
// (periodic work, bounded buffer, force-flush on shutdown) generalized
// from one long-lived buffered writer into one short-lived batch-run
// process whose "flush" is its final stdout line.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/orbitalarena/alldomainsim/internal/bridge"
	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/engine"
	"github.com/orbitalarena/alldomainsim/internal/scenario"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/internal/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mcworker <batch|replay|doe>")
		os.Exit(2)
	}

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reading request:", err)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var runErr error
	switch bridge.Mode(os.Args[1]) {
	case bridge.ModeBatch:
		runErr = runBatch(body, out)
	case bridge.ModeReplay:
		runErr = runReplay(body, out)
	case bridge.ModeDOE:
		runErr = runDOE(body, out)
	default:
		runErr = fmt.Errorf("unknown mode %q", os.Args[1])
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		out.Flush()
		os.Exit(1)
	}
}

func emit(w *bufio.Writer, ev bridge.ProgressEvent) {
	data, _ := json.Marshal(ev)
	w.Write(data)
	w.WriteByte('\n')
	w.Flush()
}

// runOutcome is one replication's summarized result.
type runOutcome struct {
	DestroyedBlue int     `json:"destroyedBlue"`
	DestroyedRed  int     `json:"destroyedRed"`
	SimTimeS      float64 `json:"simTime"`
}

func simulateOnce(scenarioJSON json.RawMessage, seed int64, maxTimeS, dtS float64) (runOutcome, error) {
	tmp, err := os.CreateTemp("", "scenario-*.json")
	if err != nil {
		return runOutcome{}, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(scenarioJSON); err != nil {
		tmp.Close()
		return runOutcome{}, err
	}
	tmp.Close()

	s, err := scenario.Load(tmp.Name())
	if err != nil {
		return runOutcome{}, fmt.Errorf("loading scenario: %w", err)
	}

	w := world.New()
	if _, err := scenario.Build(w, s); err != nil {
		return runOutcome{}, fmt.Errorf("building scenario: %w", err)
	}

	if dtS <= 0 {
		dtS = 0.05
	}
	if maxTimeS <= 0 {
		maxTimeS = 60
	}

	rng := simrand.New(seed)
	eng := engine.New(w, config.Default(), telemetry.New(), rng)
	engine.WireIADSFromScenario(eng, s)

	steps := int(maxTimeS / dtS)
	for i := 0; i < steps; i++ {
		eng.Tick(dtS)
	}

	destroyedBlue, destroyedRed := 0, 0
	for _, e := range w.All() {
		if e.Active {
			continue
		}
		switch e.Side {
		case "blue":
			destroyedBlue++
		case "red":
			destroyedRed++
		}
	}
	return runOutcome{DestroyedBlue: destroyedBlue, DestroyedRed: destroyedRed, SimTimeS: w.SimTime()}, nil
}

func runBatch(body []byte, out *bufio.Writer) error {
	start := time.Now()
	var req bridge.BatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decoding batch request: %w", err)
	}
	if req.Runs <= 0 {
		req.Runs = 1
	}

	outcomes := make([]runOutcome, 0, req.Runs)
	for i := 1; i <= req.Runs; i++ {
		seed := req.Seed + int64(i)
		outcome, err := simulateOnce(req.Scenario, seed, req.MaxTimeS, req.DtS)
		if err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		outcomes = append(outcomes, outcome)
		emit(out, bridge.ProgressEvent{Type: "run_complete", Run: i, Total: req.Runs})
	}

	results := aggregateBatch(outcomes)
	data, _ := json.Marshal(results)
	emit(out, bridge.ProgressEvent{Type: "results", Data: data})
	emit(out, bridge.ProgressEvent{Type: "done", ElapsedS: time.Since(start).Seconds()})
	return nil
}

type batchResults struct {
	Runs             int     `json:"runs"`
	BlueLossRate     float64 `json:"blueLossRate"`
	RedLossRate      float64 `json:"redLossRate"`
	MeanSimTimeS     float64 `json:"meanSimTimeS"`
}

func aggregateBatch(outcomes []runOutcome) batchResults {
	if len(outcomes) == 0 {
		return batchResults{}
	}
	var blue, red, simTime float64
	for _, o := range outcomes {
		blue += float64(o.DestroyedBlue)
		red += float64(o.DestroyedRed)
		simTime += o.SimTimeS
	}
	n := float64(len(outcomes))
	return batchResults{
		Runs:         len(outcomes),
		BlueLossRate: blue / n,
		RedLossRate:  red / n,
		MeanSimTimeS: simTime / n,
	}
}

func runReplay(body []byte, out *bufio.Writer) error {
	start := time.Now()
	var req bridge.ReplayRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decoding replay request: %w", err)
	}

	tmp, err := os.CreateTemp("", "scenario-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(req.Scenario); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	s, err := scenario.Load(tmp.Name())
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	w := world.New()
	if _, err := scenario.Build(w, s); err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	dtS := req.DtS
	if dtS <= 0 {
		dtS = 0.05
	}
	maxTimeS := req.MaxTimeS
	if maxTimeS <= 0 {
		maxTimeS = 60
	}
	sampleEvery := req.SampleInterval
	if sampleEvery <= 0 {
		sampleEvery = 1.0
	}

	rng := simrand.New(req.Seed)
	eng := engine.New(w, config.Default(), telemetry.New(), rng)
	engine.WireIADSFromScenario(eng, s)

	totalSteps := int(maxTimeS / dtS)
	sampleEveryNSteps := int(sampleEvery / dtS)
	if sampleEveryNSteps < 1 {
		sampleEveryNSteps = 1
	}

	for i := 1; i <= totalSteps; i++ {
		eng.Tick(dtS)
		if i%sampleEveryNSteps == 0 || i == totalSteps {
			emit(out, bridge.ProgressEvent{Type: "replay_progress", Step: i, TotalSteps: totalSteps, SimTimeS: w.SimTime()})
		}
	}

	type entitySnapshot struct {
		ID     string  `json:"id"`
		Side   string  `json:"side"`
		Active bool    `json:"active"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Alt    float64 `json:"alt"`
	}
	snapshot := make([]entitySnapshot, 0)
	for _, e := range w.All() {
		snapshot = append(snapshot, entitySnapshot{ID: e.ID, Side: e.Side, Active: e.Active, Lat: e.State.Lat, Lon: e.State.Lon, Alt: e.State.Alt})
	}
	data, _ := json.Marshal(map[string]any{"finalState": snapshot, "simTime": w.SimTime()})
	emit(out, bridge.ProgressEvent{Type: "results", Data: data})
	emit(out, bridge.ProgressEvent{Type: "done", ElapsedS: time.Since(start).Seconds()})
	return nil
}

func runDOE(body []byte, out *bufio.Writer) error {
	start := time.Now()
	var req bridge.DOERequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decoding doe request: %w", err)
	}

	outcomes := make([]runOutcome, 0, len(req.Permutations))
	for i, perm := range req.Permutations {
		scenarioJSON := perm
		if len(scenarioJSON) == 0 {
			scenarioJSON = req.ArenaConfig
		}
		outcome, err := simulateOnce(scenarioJSON, req.Seed+int64(i), req.MaxTimeS, 0)
		if err != nil {
			return fmt.Errorf("permutation %d: %w", i+1, err)
		}
		outcomes = append(outcomes, outcome)
		emit(out, bridge.ProgressEvent{Type: "run_complete", Run: i + 1, Total: len(req.Permutations)})
	}

	results := aggregateBatch(outcomes)
	data, _ := json.Marshal(results)
	emit(out, bridge.ProgressEvent{Type: "results", Data: data})
	emit(out, bridge.ProgressEvent{Type: "done", ElapsedS: time.Since(start).Seconds()})
	return nil
}
