package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

const engineName = "alldomainsim"
const engineVersion = "0.1.0"

// Server exposes the HTTP contract of spec.md §6 over the job Manager
// and Runner. Grounded on the teacher's cmd/drone-swarm HTTP handlers
// (status/health endpoints backed by the simulation controller), using
// stdlib net/http's method+path ServeMux patterns rather than a router
// dependency since the teacher itself uses bare net/http for its API.
type Server struct {
	cfg     config.BridgeConfig
	mgr     *Manager
	runner  *Runner
	metrics *telemetry.Registry
	log     logger.Logger
}

func NewServer(cfg config.BridgeConfig, mgr *Manager, runner *Runner, metrics *telemetry.Registry) *Server {
	return &Server{cfg: cfg, mgr: mgr, runner: runner, metrics: metrics, log: logger.WithPrefix("bridge")}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mc/status", s.handleStatus)
	mux.HandleFunc("POST /api/mc/batch", s.handleBatch)
	mux.HandleFunc("POST /api/mc/replay", s.handleReplay)
	mux.HandleFunc("POST /api/mc/doe", s.handleDOE)
	mux.HandleFunc("GET /api/mc/jobs/{id}", s.handleGetJob)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ready":      true,
		"engine":     engineName,
		"version":    engineVersion,
		"activeJobs": s.mgr.ActiveCount(),
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeOrError(w, r, &req) {
		return
	}
	job := s.mgr.Create(ModeBatch)
	body, _ := json.Marshal(req)
	timeout := time.Duration(s.cfg.BatchTimeoutS * float64(time.Second))
	go s.runner.Run(context.Background(), job.ID, s.mgr, ModeBatch, body, timeout)
	writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.ID})
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req ReplayRequest
	if !decodeOrError(w, r, &req) {
		return
	}
	job := s.mgr.Create(ModeReplay)
	body, _ := json.Marshal(req)
	timeout := time.Duration(s.cfg.ReplayTimeoutS * float64(time.Second))
	go s.runner.Run(context.Background(), job.ID, s.mgr, ModeReplay, body, timeout)
	writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.ID})
}

func (s *Server) handleDOE(w http.ResponseWriter, r *http.Request) {
	var req DOERequest
	if !decodeOrError(w, r, &req) {
		return
	}
	job := s.mgr.Create(ModeDOE)
	body, _ := json.Marshal(req)
	timeout := time.Duration(s.cfg.DOETimeoutS * float64(time.Second))
	go s.runner.Run(context.Background(), job.ID, s.mgr, ModeDOE, body, timeout)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"jobId":            job.ID,
		"totalPermutations": len(req.Permutations),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.mgr.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func decodeOrError(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
