package conjunction

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadPhaseFindsNearbyPair(t *testing.T) {
	entities := []TrackedEntity{
		{ID: "a", Position: [3]float64{0, 0, 0}},
		{ID: "b", Position: [3]float64{100, 0, 0}},
		{ID: "c", Position: [3]float64{5000000, 0, 0}},
	}
	pairs := BroadPhase(entities)
	found := false
	for _, p := range pairs {
		if (p[0] == 0 && p[1] == 1) || (p[0] == 1 && p[1] == 0) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNarrowPhaseRejectsBeyondWatchThreshold(t *testing.T) {
	a := TrackedEntity{ID: "a", Position: [3]float64{0, 0, 0}}
	b := TrackedEntity{ID: "b", Position: [3]float64{100000, 0, 0}}
	_, ok := NarrowPhase(a, b, NarrowPhaseDeps{})
	assert.False(t, ok)
}

func TestNarrowPhaseClassifiesCriticalRange(t *testing.T) {
	a := TrackedEntity{ID: "a", Position: [3]float64{0, 0, 0}}
	b := TrackedEntity{ID: "b", Position: [3]float64{500, 0, 0}}
	alert, ok := NarrowPhase(a, b, NarrowPhaseDeps{})
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, alert.Severity)
}

func TestNarrowPhaseComputesTCA(t *testing.T) {
	a := TrackedEntity{ID: "a", Position: [3]float64{0, 0, 0}, Velocity: [3]float64{10, 0, 0}}
	b := TrackedEntity{ID: "b", Position: [3]float64{1000, 0, 0}, Velocity: [3]float64{-10, 0, 0}}
	alert, ok := NarrowPhase(a, b, NarrowPhaseDeps{})
	require.True(t, ok)
	assert.Greater(t, alert.TCATimeS, 0.0)
	assert.Less(t, alert.TCADistanceM, alert.DistanceM+1)
}

func TestRankAlertsSortsBySeverityThenDistance(t *testing.T) {
	alerts := []Alert{
		{AID: "x", Severity: SeverityWatch, DistanceM: 40000},
		{AID: "y", Severity: SeverityCritical, DistanceM: 900},
		{AID: "z", Severity: SeverityCaution, DistanceM: 5000},
	}
	ranked := RankAlerts(alerts)
	gotOrder := make([]string, len(ranked))
	for i, a := range ranked {
		gotOrder[i] = a.AID
	}
	wantOrder := []string{"y", "z", "x"}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Errorf("RankAlerts order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankAlertsCapsAtFifty(t *testing.T) {
	alerts := make([]Alert, 80)
	for i := range alerts {
		alerts[i] = Alert{Severity: SeverityWatch, DistanceM: float64(i)}
	}
	ranked := RankAlerts(alerts)
	assert.Len(t, ranked, 50)
}

func TestDetectManeuverFlagsLargeDeltaV(t *testing.T) {
	e := TrackedEntity{ID: "sat1", Velocity: [3]float64{7500, 10, 0}}
	deps := NarrowPhaseDeps{PrevVelocity: map[string][3]float64{"sat1": {7500, 0, 0}}}
	alert, ok := DetectManeuver(e, deps)
	require.True(t, ok)
	assert.True(t, alert.IsManeuver)
}

func TestDetectManeuverIgnoresSmallDeltaV(t *testing.T) {
	e := TrackedEntity{ID: "sat1", Velocity: [3]float64{7500.01, 0, 0}}
	deps := NarrowPhaseDeps{PrevVelocity: map[string][3]float64{"sat1": {7500, 0, 0}}}
	_, ok := DetectManeuver(e, deps)
	assert.False(t, ok)
}
