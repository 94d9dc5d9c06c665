package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/orbitalarena/alldomainsim/internal/bridge"
	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
)

var workerPath string

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Start the Monte-Carlo batch/replay HTTP bridge",
	RunE:  runBridge,
}

func init() {
	bridgeCmd.Flags().StringVar(&workerPath, "worker", "mcworker", "path to the mcworker binary")
}

func runBridge(cmd *cobra.Command, args []string) error {
	// SIMCTL_BRIDGE_* secrets (worker credentials, listen overrides) may
	// be supplied via a .env file next to the binary; a missing file is
	// not an error, matching how godotenv is used for optional local dev
	// overrides rather than required configuration.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	metrics := telemetry.New()
	return bridge.Serve(cfg.Bridge, workerPath, metrics)
}
