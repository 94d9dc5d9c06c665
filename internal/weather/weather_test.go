package weather

import (
	"testing"

	"github.com/orbitalarena/alldomainsim/internal/simrand"
	"github.com/stretchr/testify/assert"
)

func TestWindAtSelectsCorrectLayer(t *testing.T) {
	m := New(simrand.New(1), nil, 0.1)
	speed, heading := m.WindAt(500)
	assert.Greater(t, speed, 0.0)
	assert.Equal(t, 270.0, heading)

	_, headingJet := m.WindAt(12000)
	assert.Equal(t, 240.0, headingJet)
}

func TestWindAtAboveTopLayerIsZero(t *testing.T) {
	m := New(simrand.New(1), nil, 0.1)
	speed, _ := m.WindAt(500000)
	assert.Equal(t, 0.0, speed)
}

func TestTerrainHeightMissReturnsZero(t *testing.T) {
	m := New(simrand.New(1), nil, 0.1)
	assert.Equal(t, 0.0, m.TerrainHeightAt(10, 10))
}

func TestTerrainHeightHitReturnsSetValue(t *testing.T) {
	m := New(simrand.New(1), nil, 0.1)
	m.SetTerrainHeight(10, 10, 542)
	assert.Equal(t, 542.0, m.TerrainHeightAt(10, 10))
}

func TestCloudCoverIsStableAcrossQueries(t *testing.T) {
	m := New(simrand.New(1), nil, 0.1)
	first := m.CloudCoverAt(5, 5)
	second := m.CloudCoverAt(5, 5)
	assert.Equal(t, first, second)
}

func TestDeterministicAcrossSameSeed(t *testing.T) {
	m1 := New(simrand.New(42), nil, 0.1)
	m2 := New(simrand.New(42), nil, 0.1)
	s1, _ := m1.WindAt(500)
	s2, _ := m2.WindAt(500)
	assert.Equal(t, s1, s2)
}
