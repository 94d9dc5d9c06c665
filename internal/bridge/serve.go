package bridge

import (
	"fmt"
	"net/http"

	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

// Serve builds a Manager, Runner, and Server over cfg and blocks on
// http.ListenAndServe, so cmd/bridge and simctl's bridge subcommand
// start the identical stack rather than duplicating wiring.
func Serve(cfg config.BridgeConfig, workerPath string, metrics *telemetry.Registry) error {
	mgr := NewManager()
	runner := NewRunner(workerPath)
	srv := NewServer(cfg, mgr, runner, metrics)

	logger.Infof("mc bridge listening on %s (worker: %s)", cfg.ListenAddr, workerPath)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		return fmt.Errorf("bridge: server exited: %w", err)
	}
	return nil
}
