package datalink

import (
	"testing"

	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrackPacketsAddressesCommandNode(t *testing.T) {
	entities := []world.Entity{
		{ID: "f1", Side: "blue", Type: "f16", Comm: &world.CommRecord{}},
		{ID: "cmd1", Side: "blue", Type: "awacs", Comm: &world.CommRecord{IsCommandNode: true}},
	}
	nodes := []CommandNode{{Side: "blue", NodeID: "cmd1", NetworkID: "net1"}}

	packets, payloads := BuildTrackPackets(entities, nodes, 10.0)
	require.Len(t, packets, 1)
	assert.Equal(t, "f1", packets[0].Source)
	assert.Equal(t, "cmd1", packets[0].Destination)
	assert.Len(t, payloads, 1)
}

func TestBuildTrackPacketsSkipsEntitiesWithoutComm(t *testing.T) {
	entities := []world.Entity{
		{ID: "f1", Side: "blue", Type: "f16"},
	}
	nodes := []CommandNode{{Side: "blue", NodeID: "cmd1"}}
	packets, _ := BuildTrackPackets(entities, nodes, 10.0)
	assert.Empty(t, packets)
}

func TestExtrapolateAdvancesPosition(t *testing.T) {
	track := TrackUpdate{Lat: 0, Lon: 0, Alt: 1000, Speed: 200, Heading: 0}
	out := Extrapolate(track, 1.0, orbital.EarthMeanRadiusM)
	assert.Greater(t, out.Lat, track.Lat)
	assert.Greater(t, out.UncertaintyM, 0.0)
}
