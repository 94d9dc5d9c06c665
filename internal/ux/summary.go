// Package ux renders human-facing run summaries. Grounded on the
// teacher's logger.Success/logger.LogSection console output
// (pkg/logger/logger.go), generalized into a standalone after-action
// report the CLI prints once a scenario run completes, using
// github.com/fatih/color directly for the parts pkg/logger's own
// hand-rolled ANSI codes don't cover (bold section rules, per-team
// coloring).
package ux

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/orbitalarena/alldomainsim/internal/world"
)

// AfterActionReport summarizes one completed run's final world state.
type AfterActionReport struct {
	ScenarioName string
	SimTimeS     float64
	Entities     []world.Entity
}

// sideColor assigns a stable color per side tag so repeated runs read
// consistently; unrecognized sides fall back to plain text.
func sideColor(side string) *color.Color {
	switch side {
	case "blue":
		return color.New(color.FgBlue, color.Bold)
	case "red":
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// Print writes the report to w. Counts active vs destroyed per side,
// then lists surviving entities grouped by side.
func (r AfterActionReport) Print(w io.Writer) {
	title := color.New(color.Bold, color.Underline)
	_, _ = title.Fprintf(w, "After-Action Report: %s\n", r.ScenarioName)
	_, _ = fmt.Fprintf(w, "sim time: %.1fs, entities: %d\n\n", r.SimTimeS, len(r.Entities))

	bySide := make(map[string][]world.Entity)
	for _, e := range r.Entities {
		bySide[e.Side] = append(bySide[e.Side], e)
	}

	sides := make([]string, 0, len(bySide))
	for side := range bySide {
		sides = append(sides, side)
	}
	sort.Strings(sides)

	for _, side := range sides {
		entities := bySide[side]
		active, destroyed := 0, 0
		for _, e := range entities {
			if e.Active {
				active++
			} else {
				destroyed++
			}
		}
		c := sideColor(side)
		_, _ = c.Fprintf(w, "%s: %d active, %d destroyed\n", side, active, destroyed)
		for _, e := range entities {
			status := "active"
			if !e.Active {
				status = "destroyed"
			}
			_, _ = fmt.Fprintf(w, "  %-20s %-10s %s\n", e.ID, e.Type, status)
		}
	}
}
