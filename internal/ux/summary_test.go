package ux

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/orbitalarena/alldomainsim/internal/world"
)

func TestAfterActionReportListsEntitiesBySide(t *testing.T) {
	color.NoColor = true

	report := AfterActionReport{
		ScenarioName: "demo",
		SimTimeS:     120,
		Entities: []world.Entity{
			{ID: "f16-1", Type: "f16", Side: "blue", Active: true},
			{ID: "sam-1", Type: "sa-10", Side: "red", Active: false},
		},
	}

	var buf bytes.Buffer
	report.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "f16-1")
	assert.Contains(t, out, "sam-1")
	assert.Contains(t, out, "destroyed")
}
