// Package weather holds the layered wind-altitude stack, cloud cover,
// turbulence, and terrain-height cache that back the flight
// propagator's wind application (spec.md §4.4, SPEC_FULL.md §4.13).
// Grounded on the teacher's environment-table pattern in
// controllers/simulation_controller.go (static lookup tables keyed by
// coarse bucket, refreshed per tick) generalized from a single
// threat-density table to a layered wind/cloud/terrain model.
package weather

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/simrand"
)

// Layer is one band of the wind-altitude stack.
type Layer struct {
	Name       string
	MinAltM    float64
	MaxAltM    float64
	SpeedMS    float64
	HeadingDeg float64
	GustStdMS  float64
}

// DefaultLayers is the stock ground/low/mid/jet-stream wind profile.
func DefaultLayers() []Layer {
	return []Layer{
		{Name: "ground", MinAltM: 0, MaxAltM: 1000, SpeedMS: 3, HeadingDeg: 270, GustStdMS: 1.5},
		{Name: "low", MinAltM: 1000, MaxAltM: 6000, SpeedMS: 12, HeadingDeg: 260, GustStdMS: 2.5},
		{Name: "mid", MinAltM: 6000, MaxAltM: 11000, SpeedMS: 25, HeadingDeg: 250, GustStdMS: 3},
		{Name: "jetstream", MinAltM: 11000, MaxAltM: 16000, SpeedMS: 55, HeadingDeg: 240, GustStdMS: 6},
	}
}

type cellKey struct {
	x, y int
}

// Model is the per-replication weather state: a layered wind stack, a
// cloud-cover field, a turbulence intensity, and a terrain-height
// cache, all driven by one replication-scoped RNG source so Monte
// Carlo runs stay reproducible (spec.md §9 determinism note).
type Model struct {
	layers      []Layer
	turbulence  float64
	cellSizeM   float64
	cloudCover  map[cellKey]float64
	terrain     map[cellKey]float64
	rng         *simrand.Source
}

// New builds a weather model for one replication, seeded from rng so
// gust jitter and cloud generation are deterministic per seed.
func New(rng *simrand.Source, layers []Layer, turbulence float64) *Model {
	if layers == nil {
		layers = DefaultLayers()
	}
	return &Model{
		layers:     layers,
		turbulence: turbulence,
		cellSizeM:  10000,
		cloudCover: make(map[cellKey]float64),
		terrain:    make(map[cellKey]float64),
		rng:        rng,
	}
}

func (m *Model) cell(lat, lon float64) cellKey {
	return cellKey{
		x: int(math.Floor(lat * 1000 / m.cellSizeM)),
		y: int(math.Floor(lon * 1000 / m.cellSizeM)),
	}
}

// WindAt returns the wind speed (m/s) and heading (deg, from-direction)
// at the given altitude, including gust jitter drawn from the model's
// RNG. Altitudes above the top layer carry no wind.
func (m *Model) WindAt(altM float64) (speedMS, headingDeg float64) {
	for _, l := range m.layers {
		if altM >= l.MinAltM && altM < l.MaxAltM {
			gust := 0.0
			if m.rng != nil && l.GustStdMS > 0 {
				gust = m.rng.Gauss(0, l.GustStdMS)
			}
			return math.Max(0, l.SpeedMS+gust), l.HeadingDeg
		}
	}
	return 0, 0
}

// TurbulenceAt returns a turbulence intensity scalar (0..1ish) for the
// given altitude; simplistic model scales the base intensity down
// above the jet stream layer.
func (m *Model) TurbulenceAt(altM float64) float64 {
	if altM > 16000 {
		return m.turbulence * 0.2
	}
	return m.turbulence
}

// CloudCoverAt returns a 0..1 cloud cover fraction for the grid cell
// containing (lat, lon), lazily generated on first query so cover is
// stable for the lifetime of the replication.
func (m *Model) CloudCoverAt(lat, lon float64) float64 {
	k := m.cell(lat, lon)
	if v, ok := m.cloudCover[k]; ok {
		return v
	}
	v := 0.3
	if m.rng != nil {
		v = m.rng.Range(0, 1)
	}
	m.cloudCover[k] = v
	return v
}

// TerrainHeightAt returns the cached terrain height in meters for
// (lat, lon), or 0 on a cache miss per spec.md §7's terrain-query
// failure policy ("terrain query failure returns 0").
func (m *Model) TerrainHeightAt(lat, lon float64) float64 {
	k := m.cell(lat, lon)
	if v, ok := m.terrain[k]; ok {
		return v
	}
	return 0
}

// SetTerrainHeight seeds the terrain cache for a grid cell, used by
// scenario loading to populate known elevation data.
func (m *Model) SetTerrainHeight(lat, lon, heightM float64) {
	m.terrain[m.cell(lat, lon)] = heightM
}
