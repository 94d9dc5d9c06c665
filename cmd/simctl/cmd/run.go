package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orbitalarena/alldomainsim/internal/config"
	"github.com/orbitalarena/alldomainsim/internal/discovery"
	"github.com/orbitalarena/alldomainsim/internal/engine"
	"github.com/orbitalarena/alldomainsim/internal/scenario"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
	"github.com/orbitalarena/alldomainsim/internal/telemetry"
	"github.com/orbitalarena/alldomainsim/internal/ux"
	"github.com/orbitalarena/alldomainsim/internal/world"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

var (
	scenarioPath string
	seed         int64
	durationS    float64
	dtS          float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario headlessly",
	RunE:  runScenario,
}

func init() {
	runCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario JSON file to run")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Monte-Carlo RNG seed")
	runCmd.Flags().Float64Var(&durationS, "duration", 120, "simulated seconds to run")
	runCmd.Flags().Float64Var(&dtS, "dt", 0.05, "tick size in seconds")
}

func runScenario(cmd *cobra.Command, args []string) error {
	path := scenarioPath
	if path == "" {
		p, err := pickScenarioInteractively()
		if err != nil {
			return err
		}
		path = p
	}

	s, err := scenario.Load(path)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	w := world.New()
	if _, err := scenario.Build(w, s); err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	rng := simrand.New(seed)
	metrics := telemetry.New()
	eng := engine.New(w, cfg, metrics, rng)
	engine.WireIADSFromScenario(eng, s)
	if err := eng.Validate(); err != nil {
		return fmt.Errorf("engine wiring: %w", err)
	}

	events := scenario.NewEventRunner(s.Events, map[string]scenario.Handler{
		"launch_wave": func(params []byte) error { return nil },
	})

	logger.LogSection(fmt.Sprintf("Running %s", s.Metadata.Name))
	steps := int(durationS / dtS)
	for i := 0; i < steps; i++ {
		eng.Tick(dtS)
		if _, err := events.Advance(w.SimTime()); err != nil {
			logger.Warnf("scenario event handler error: %v", err)
		}
	}

	report := ux.AfterActionReport{
		ScenarioName: s.Metadata.Name,
		SimTimeS:     w.SimTime(),
		Entities:     w.All(),
	}
	report.Print(os.Stdout)
	logger.Success("Run complete")
	return nil
}

func pickScenarioInteractively() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no --scenario given and stdin is not a terminal")
	}

	infos, warnings, err := discovery.Scenarios(scenarioDir)
	if err != nil {
		return "", fmt.Errorf("discovering scenarios: %w", err)
	}
	for _, w := range warnings {
		logger.Warnf("skipping unparseable scenario: %s", w)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no scenarios found under %s", scenarioDir)
	}

	options := make([]string, len(infos))
	byName := make(map[string]string, len(infos))
	for i, info := range infos {
		options[i] = info.Name
		byName[info.Name] = info.Path
	}

	var selected string
	prompt := &survey.Select{Message: "Select a scenario to run:", Options: options}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return byName[selected], nil
}
