package sonar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceLevelSurfaceAddsBonus(t *testing.T) {
	base := SourceLevel(Target{SpeedKts: 20})
	surface := SourceLevel(Target{SpeedKts: 20, IsSurface: true})
	assert.InDelta(t, 15, surface-base, 1e-9)
}

func TestSourceLevelSlowSubmarineIsQuiet(t *testing.T) {
	sl := SourceLevel(Target{SpeedKts: 3, IsSubmarine: true})
	assert.Equal(t, 100.0, sl)
}

func TestTransmissionLossIncreasesWithRange(t *testing.T) {
	close := TransmissionLoss(1000)
	far := TransmissionLoss(50000)
	assert.Greater(t, far, close)
}

func TestThermoclineAddsPenaltyWhenSplitAcrossLayer(t *testing.T) {
	adj := ThermoclineAdjustmentDB(10, 200, 5000)
	assert.GreaterOrEqual(t, adj, thermoclinePenaltyDB)
}

func TestThermoclineConvergenceZoneBonus(t *testing.T) {
	adj := ThermoclineAdjustmentDB(10, 10, 33000)
	assert.Less(t, adj, 0.0)
}

func TestEvaluateCloseRangeDetectsReliably(t *testing.T) {
	listener := Listener{DepthM: 10, Array: ArrayTowed, SeaState: 2}
	target := Target{SpeedKts: 15, IsSurface: true}
	res := Evaluate(listener, target, 2000, false, 5)
	assert.Greater(t, res.DetectionProbability, 0.5)
}

func TestEvaluateLongRangeLowProbability(t *testing.T) {
	listener := Listener{DepthM: 10, Array: ArrayHullMounted, SeaState: 4}
	target := Target{SpeedKts: 5, IsSubmarine: true}
	res := Evaluate(listener, target, 80000, false, 10)
	assert.Less(t, res.DetectionProbability, 0.5)
}
