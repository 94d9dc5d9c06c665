package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

// Runner launches one cmd/mcworker child process per job and streams
// its stdout as JSON-lines progress, per spec.md §5: "one child engine
// process per job." Grounded on the teacher's updateBuffer.Flush /
// ForceFlush shutdown discipline: the child is always waited on and
// its final state always recorded, success or failure.
type Runner struct {
	WorkerPath string
}

func NewRunner(workerPath string) *Runner {
	return &Runner{WorkerPath: workerPath}
}

// Run spawns the worker for job, feeding requestJSON on stdin and
// updating mgr's record for job.ID as progress lines arrive. Run
// blocks until the child exits or timeout elapses; callers invoke it
// in its own goroutine per spec.md §5's "each replication... its own
// goroutine" extended up one level to "each job its own goroutine."
func (r *Runner) Run(ctx context.Context, jobID string, mgr *Manager, mode Mode, requestJSON []byte, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.WorkerPath, string(mode))
	cmd.Stdin = bytes.NewReader(requestJSON)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.fail(mgr, jobID, fmt.Errorf("starting worker: %w", err), 0)
		return
	}
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		r.fail(mgr, jobID, fmt.Errorf("starting worker: %w", err), time.Since(start).Seconds())
		return
	}

	var results json.RawMessage
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		var ev ProgressEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			logger.WithPrefix("bridge").Warnf("job %s: malformed progress line: %v", jobID, err)
			continue
		}
		r.applyProgress(mgr, jobID, ev)
		if ev.Type == "results" {
			results = ev.Data
		}
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(start).Seconds()
	if waitErr != nil {
		r.fail(mgr, jobID, fmt.Errorf("worker exited: %w: %s", waitErr, stderrBuf.String()), elapsed)
		return
	}

	mgr.Update(jobID, func(j *Job) {
		j.Status = StatusComplete
		j.ElapsedS = elapsed
		j.Progress.Pct = 100
		if results != nil {
			j.Results = results
		}
	})
}

func (r *Runner) applyProgress(mgr *Manager, jobID string, ev ProgressEvent) {
	switch ev.Type {
	case "run_complete":
		mgr.Update(jobID, func(j *Job) {
			pct := 0.0
			if ev.Total > 0 {
				pct = float64(ev.Run) / float64(ev.Total) * 100
			}
			j.Progress = Progress{Pct: pct, Run: ev.Run, Total: ev.Total}
		})
	case "replay_progress":
		mgr.Update(jobID, func(j *Job) {
			pct := 0.0
			if ev.TotalSteps > 0 {
				pct = float64(ev.Step) / float64(ev.TotalSteps) * 100
			}
			j.Progress = Progress{Pct: pct, Step: ev.Step, TotalSteps: ev.TotalSteps, SimTimeS: ev.SimTimeS}
		})
	case "done":
		mgr.Update(jobID, func(j *Job) { j.ElapsedS = ev.ElapsedS })
	}
}

func (r *Runner) fail(mgr *Manager, jobID string, err error, elapsed float64) {
	logger.WithPrefix("bridge").Errorf("job %s failed: %v", jobID, err)
	mgr.Update(jobID, func(j *Job) {
		j.Status = StatusFailed
		j.Error = err.Error()
		j.ElapsedS = elapsed
	})
}
