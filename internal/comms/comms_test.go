package comms

import (
	"testing"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTemplate() Link {
	return Link{
		Medium:           MediumRF,
		FrequencyHz:       3e9,
		BandwidthHz:       5e6,
		TxPowerDBW:        10,
		TxGainDB:          10,
		RxGainDB:          10,
		RxSensitivityDBm:  -90,
		NoiseTempK:        290,
		CapacityBPS:       1e6,
	}
}

func TestMeshTopologyGeneratesAllPairs(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyMesh, NodeIDs: []string{"a", "b", "c"}}
	g := NewGraph([]Network{net}, baseTemplate())
	assert.Len(t, g.Links, 3)
}

func TestStarTopologyGeneratesHubSpokes(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyStar, NodeIDs: []string{"hub", "a", "b"}, HubID: "hub"}
	g := NewGraph([]Network{net}, baseTemplate())
	assert.Len(t, g.Links, 2)
	assert.NotNil(t, g.Link("hub", "a"))
}

func TestSharedEdgeCollapsesAcrossNetworks(t *testing.T) {
	n1 := Network{ID: "n1", Topology: TopologyMultihop, NodeIDs: []string{"a", "b"}}
	n2 := Network{ID: "n2", Topology: TopologyMesh, NodeIDs: []string{"a", "b"}}
	g := NewGraph([]Network{n1, n2}, baseTemplate())
	assert.Len(t, g.Links, 1)
}

func TestLinkBudgetCloseRangeGivesExcellentQuality(t *testing.T) {
	l := baseTemplate()
	posA := linalg.New(orbital.EarthMeanRadiusM+1000, 0, 0)
	posB := linalg.New(orbital.EarthMeanRadiusM+1000, 5000, 0)
	UpdateLinkBudget(&l, posA, posB, Environment{TroposphericFraction: 1, TempK: 290})
	assert.True(t, l.LOS)
	assert.Equal(t, QualityExcellent, l.Quality)
}

func TestLinkBudgetNoLOSIsLost(t *testing.T) {
	l := baseTemplate()
	posA := linalg.New(orbital.EarthMeanRadiusM+1000, 0, 0)
	posB := linalg.New(-(orbital.EarthMeanRadiusM + 1000), 0, 0)
	UpdateLinkBudget(&l, posA, posB, Environment{TroposphericFraction: 1, TempK: 290})
	assert.False(t, l.LOS)
	assert.Equal(t, QualityLost, l.Quality)
}

func TestFiberLinkIsAlwaysLOSAndExcellent(t *testing.T) {
	l := baseTemplate()
	l.Medium = MediumFiber
	posA := linalg.New(orbital.EarthMeanRadiusM+1000, 0, 0)
	posB := linalg.New(-(orbital.EarthMeanRadiusM + 1000), 0, 0)
	UpdateLinkBudget(&l, posA, posB, Environment{})
	assert.True(t, l.LOS)
	assert.Equal(t, QualityExcellent, l.Quality)
}

func TestJammerKillsLinkAboveZeroJS(t *testing.T) {
	l := baseTemplate()
	posA := linalg.New(orbital.EarthMeanRadiusM+1000, 0, 0)
	posB := linalg.New(orbital.EarthMeanRadiusM+1000, 5000, 0)
	l.NodeA, l.NodeB = "a", "b"
	UpdateLinkBudget(&l, posA, posB, Environment{TroposphericFraction: 1, TempK: 290})
	require.Equal(t, QualityExcellent, l.Quality)

	jammer := Jammer{
		NodeID: "jam1", Type: JammerBarrage, Direction: DirectionDownlink,
		CenterFreqHz: 3e9, BandwidthHz: 10e6, PowerDBW: 30, GainDB: 15,
		MaxRangeM: 50000, Position: linalg.New(orbital.EarthMeanRadiusM+1000, 2500, 0),
		Active: true,
	}
	ApplyJammers(&l, []Jammer{jammer}, posA, posB, 0)
	assert.Equal(t, QualityLost, l.Quality)
}

func TestCyberBrickKillsNodeLinks(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyMesh, NodeIDs: []string{"a", "b", "c"}}
	g := NewGraph([]Network{net}, baseTemplate())
	state := &NodeCyberState{DDoSFactor: 1}

	attack := CyberAttack{ID: "atk1", TargetNodeID: "a", Type: CyberBrick, DurationS: 5}
	AdvanceCyberAttack(&attack, 5)
	require.True(t, attack.Applied)

	ApplyCyberEffect(state, attack, g)
	assert.True(t, state.Bricked)
	for k, l := range g.Links {
		if k.a == "a" || k.b == "a" {
			assert.False(t, l.Alive)
		}
	}

	CancelCyberAttack(state, attack)
	assert.False(t, state.Bricked)
}

func TestRouteFindsShortestPath(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyMultihop, NodeIDs: []string{"a", "b", "c"}}
	g := NewGraph([]Network{net}, baseTemplate())
	for _, l := range g.Links {
		l.Quality = QualityExcellent
		l.LatencyS = 0.01
		l.PacketLossProb = 0
	}
	route := g.Route("a", "c", nil)
	require.True(t, route.Found)
	assert.Equal(t, []string{"a", "b", "c"}, route.Path)
}

func TestRouteNoPathWhenLinkLost(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyMultihop, NodeIDs: []string{"a", "b"}}
	g := NewGraph([]Network{net}, baseTemplate())
	g.Link("a", "b").Quality = QualityLost
	route := g.Route("a", "b", nil)
	assert.False(t, route.Found)
}

func TestProcessPacketsDropsOnTTLExceeded(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyMesh, NodeIDs: []string{"a", "b"}}
	g := NewGraph([]Network{net}, baseTemplate())
	for _, l := range g.Links {
		l.Quality = QualityExcellent
		l.EffectiveBPS = 1e6
		l.LatencyS = 0.001
	}
	p := &Packet{ID: "p1", Source: "a", Destination: "b", Priority: 5, SizeBytes: 100, TTLS: 1}
	deps := ProcessorDeps{
		Graph: g, IsAlive: func(string) bool { return true },
		IsBricked: func(string) bool { return false },
		SimTimeS: 2, DtS: 2, RNG: simrand.New(1),
	}
	ProcessPackets([]*Packet{p}, deps)
	assert.True(t, p.Dropped)
	assert.Equal(t, DropTTLExceeded, p.DropReason)
}

func TestProcessPacketsDeliversWithinCapacityAndTime(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyMesh, NodeIDs: []string{"a", "b"}}
	g := NewGraph([]Network{net}, baseTemplate())
	for _, l := range g.Links {
		l.Quality = QualityExcellent
		l.EffectiveBPS = 1e6
		l.LatencyS = 0
		l.PacketLossProb = 0
		l.Alive = true
	}
	p := &Packet{ID: "p1", Source: "a", Destination: "b", Priority: 5, SizeBytes: 100, TTLS: 100}
	deps := ProcessorDeps{
		Graph: g, IsAlive: func(string) bool { return true },
		IsBricked: func(string) bool { return false },
		SimTimeS: 0, DtS: 0.5, RNG: simrand.New(1),
	}
	ProcessPackets([]*Packet{p}, deps)
	assert.True(t, p.Delivered)
}

func TestMetricsSnapshotComputesDeliveryRate(t *testing.T) {
	var m Metrics
	m.Record(1, &Packet{Delivered: true, AgeS: 0.5, SizeBytes: 100})
	m.Record(2, &Packet{Delivered: false, AgeS: 0, SizeBytes: 0})
	rate, _, _ := m.Snapshot(2)
	assert.InDelta(t, 0.5, rate, 1e-9)
}

func TestSelfHealPromotesHighestScoringDaughter(t *testing.T) {
	net := Network{ID: "n1", Topology: TopologyStar, NodeIDs: []string{"hub", "a", "b"}, HubID: "hub"}
	g := NewGraph([]Network{net}, baseTemplate())
	alive := map[string]bool{"hub": false, "a": true, "b": true}
	candidates := []NodeScore{
		{NodeID: "a", IsGroundStation: false, AliveNeighbors: 1},
		{NodeID: "b", IsGroundStation: true, AliveNeighbors: 1},
	}
	newHub, ok := SelfHealStar(g, net, candidates, func(id string) bool { return alive[id] })
	require.True(t, ok)
	assert.Equal(t, "b", newHub)
}
