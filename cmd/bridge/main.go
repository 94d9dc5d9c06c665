// Command bridge runs the Monte-Carlo batch/replay/DOE HTTP server on
// its own, without the rest of the simctl CLI tree, for deployments
// that run the bridge as a standalone sidecar process.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/orbitalarena/alldomainsim/internal/bridge"
	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "", "path to simctl.yaml (uses built-in defaults if empty)")
	workerPath := flag.String("worker", "mcworker", "path to the mcworker binary")
	listenAddr := flag.String("listen", "", "override the configured listen address")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Bridge.ListenAddr = *listenAddr
	}

	metrics := telemetry.New()
	if err := bridge.Serve(cfg.Bridge, *workerPath, metrics); err != nil {
		logger.Errorf("bridge exited: %v", err)
		os.Exit(1)
	}
}
