package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalarena/alldomainsim/internal/config"
)

func TestManagerCreateGetUpdate(t *testing.T) {
	mgr := NewManager()
	job := mgr.Create(ModeBatch)
	assert.Equal(t, StatusRunning, job.Status)
	assert.Equal(t, 1, mgr.ActiveCount())

	mgr.Update(job.ID, func(j *Job) { j.Status = StatusComplete })
	got, ok := mgr.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, 0, mgr.ActiveCount())
}

func TestManagerGetUnknownJob(t *testing.T) {
	mgr := NewManager()
	_, ok := mgr.Get("nope")
	assert.False(t, ok)
}

func TestRunnerAppliesRunCompleteAndResultsEvents(t *testing.T) {
	mgr := NewManager()
	job := mgr.Create(ModeBatch)

	r := NewRunner(fakeWorkerPath(t, []string{
		`{"type":"run_complete","run":1,"total":2}`,
		`{"type":"run_complete","run":2,"total":2}`,
		`{"type":"results","data":{"killProbability":0.42}}`,
	}, 0))

	r.Run(t.Context(), job.ID, mgr, ModeBatch, []byte(`{}`), 5*time.Second)

	got, ok := mgr.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, 100.0, got.Progress.Pct)
	require.NotNil(t, got.Results)
	var results struct {
		KillProbability float64 `json:"killProbability"`
	}
	require.NoError(t, json.Unmarshal(got.Results, &results))
	assert.Equal(t, 0.42, results.KillProbability)
}

func TestRunnerFailsJobOnNonzeroExit(t *testing.T) {
	mgr := NewManager()
	job := mgr.Create(ModeReplay)

	r := NewRunner(fakeWorkerPath(t, nil, 1))
	r.Run(t.Context(), job.ID, mgr, ModeReplay, []byte(`{}`), 5*time.Second)

	got, ok := mgr.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)
}

func TestServerStatusReportsActiveJobs(t *testing.T) {
	mgr := NewManager()
	mgr.Create(ModeBatch)
	srv := NewServer(config.Default().Bridge, mgr, NewRunner("/bin/true"), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/mc/status", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ready"])
	assert.Equal(t, float64(1), body["activeJobs"])
}

func TestServerGetJobNotFound(t *testing.T) {
	srv := NewServer(config.Default().Bridge, NewManager(), NewRunner("/bin/true"), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/mc/jobs/missing", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerBatchRejectsMalformedBody(t *testing.T) {
	srv := NewServer(config.Default().Bridge, NewManager(), NewRunner("/bin/true"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/mc/batch", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerBatchAcceptsRequestAndReturnsJobID(t *testing.T) {
	mgr := NewManager()
	srv := NewServer(config.Default().Bridge, mgr, NewRunner(fakeWorkerPath(t, []string{`{"type":"done","elapsed":0.01}`}, 0)), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/mc/batch", strings.NewReader(`{"runs":5,"seed":1}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["jobId"])
}

// fakeWorkerPath builds a tiny shell script standing in for cmd/mcworker:
// it prints each line and exits with exitCode.
func fakeWorkerPath(t *testing.T, lines []string, exitCode int) string {
	t.Helper()
	script := "#!/bin/sh\n"
	for _, l := range lines {
		script += "echo '" + l + "'\n"
	}
	script += "exit " + strconv.Itoa(exitCode) + "\n"

	path := t.TempDir() + "/worker.sh"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
