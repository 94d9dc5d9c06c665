package orbital

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeodeticECIRoundTrip(t *testing.T) {
	gmst := 1234.5
	lat, lon, alt := 0.6, -1.1, 8000.0
	r := GeodeticToECIPos(lat, lon, alt, gmst)
	gotLat, gotLon, gotAlt := ECIToGeodetic(r, gmst)

	assert.InDelta(t, lat, gotLat, 1e-8)
	assert.InDelta(t, lon, gotLon, 1e-8)
	assert.InDelta(t, alt, gotAlt, 1e-3)
}

func TestCircularLEOPeriodReturnsToStart(t *testing.T) {
	// 7000 km SMA circular orbit at 51.6 deg inclination (end-to-end
	// scenario 1 in spec.md §8).
	sma := 7000000.0
	v := math.Sqrt(MuEarth / sma)
	incRad := 51.6 * math.Pi / 180

	r0 := [3]float64{sma, 0, 0}
	v0 := [3]float64{0, v * math.Cos(incRad), v * math.Sin(incRad)}

	els := ElementsFromState(r0, v0, MuEarth)
	require.False(t, els.Degenerate)

	res := Propagate(r0, v0, els.PeriodS, MuEarth)
	require.True(t, res.Converged)

	dist := math.Sqrt(
		math.Pow(res.R[0]-r0[0], 2) + math.Pow(res.R[1]-r0[1], 2) + math.Pow(res.R[2]-r0[2], 2),
	)
	assert.Less(t, dist, 1000.0, "expected return within 1km after one period")
}

func TestSMAConservedOverShortPropagation(t *testing.T) {
	sma := 7200000.0
	v := math.Sqrt(MuEarth / sma)
	r0 := [3]float64{sma, 0, 0}
	v0 := [3]float64{0, v, 0}

	els0 := ElementsFromState(r0, v0, MuEarth)

	res := Propagate(r0, v0, 50.0, MuEarth)
	require.True(t, res.Converged)
	els1 := ElementsFromState(res.R, res.V, MuEarth)

	assert.InDelta(t, els0.SMA, els1.SMA, els0.SMA*0.001)
}

func TestDegenerateParabolicOrbitFlagged(t *testing.T) {
	sma := 7000000.0
	vCirc := math.Sqrt(MuEarth / sma)
	vEsc := vCirc * math.Sqrt2

	r0 := [3]float64{sma, 0, 0}
	v0 := [3]float64{0, vEsc, 0}

	els := ElementsFromState(r0, v0, MuEarth)
	assert.True(t, els.Degenerate)
}
