package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orbitalarena/alldomainsim/internal/discovery"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

var scenarioDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenario files",
	RunE:  listScenarios,
}

func init() {
	listCmd.Flags().StringVar(&scenarioDir, "dir", "scenarios", "directory to scan for scenario JSON files")
}

func listScenarios(cmd *cobra.Command, args []string) error {
	infos, warnings, err := discovery.Scenarios(scenarioDir)
	if err != nil {
		return fmt.Errorf("listing scenarios: %w", err)
	}
	for _, w := range warnings {
		logger.Warnf("skipping unparseable scenario: %s", w)
	}
	if len(infos) == 0 {
		fmt.Println("no scenarios found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tDESCRIPTION\tPATH")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----------\t----")
	for _, info := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Version, info.Description, info.Path)
	}
	return w.Flush()
}
