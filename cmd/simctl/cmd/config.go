package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the engine configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default engine configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "simctl.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.SaveDefault(path); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	logger.Infof("wrote default configuration to %s", path)
	return nil
}
