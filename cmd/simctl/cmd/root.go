// Package cmd is the simctl command tree, grounded on the teacher's
// cmd/cli/cmd package: one persistent-flag root command that configures
// the logger before any subcommand runs, subcommands added from init().
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "simctl",
	Short: "All-domain tactical simulation engine",
	Long: `simctl runs scenario-driven tactical simulations: orbital and
atmospheric flight, maneuver planning, comms, conjunction/SDA, passive
sonar, and IADS engagements, with a Monte-Carlo batch/replay bridge for
headless analysis.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logger.ParseLevel(logLevel))
		logger.SetNoColor(noColor)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "engine config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
