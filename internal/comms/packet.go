package comms

import (
	"sort"

	"github.com/orbitalarena/alldomainsim/internal/simrand"
)

// DropReason enumerates why a packet never reached its destination,
// per spec.md §4.6.
type DropReason string

const (
	DropNoRoute      DropReason = "no_route"
	DropTTLExceeded  DropReason = "ttl_exceeded"
	DropLinkLost     DropReason = "link_lost"
	DropJammed       DropReason = "jammed"
	DropCyber        DropReason = "cyber"
	DropBandwidth    DropReason = "bandwidth"
	DropExpired      DropReason = "expired"
	DropNodeDead     DropReason = "node_dead"
)

// PacketType distinguishes tactical track-sharing packets (which
// trigger F2T2EA distribution on delivery) from ordinary traffic.
type PacketType string

const (
	PacketTrack     PacketType = "track"
	PacketTargeting PacketType = "targeting"
	PacketGeneric   PacketType = "generic"
)

// Packet is one unit of traffic in flight across the comms graph.
type Packet struct {
	ID          string
	Source      string
	Destination string
	Priority    int // 0..9, higher preempts
	Type        PacketType
	SizeBytes   int
	TTLS        float64
	AgeS        float64

	Path      []string
	HopIndex  int
	BytesSent int

	HopStartTimeS float64 // sim time the packet arrived at its current hop
	HopWaitS      float64 // time spent queued at the current hop awaiting capacity
	Delivered     bool
	Dropped       bool
	DropReason    DropReason
}

// hopQueueExpiryS bounds how long a priority 5-7 packet may sit queued
// on one hop waiting for capacity before it is dropped as expired
// rather than retrying forever, per spec.md §4.6's "expired" reason.
const hopQueueExpiryS = 5.0

// AliveCheck is a per-node lookup (ProcessorDeps.IsAlive and
// IsBricked) supplied by the caller from world lookups rather than
// owned here, so this package stays free of a dependency on
// internal/world.
type AliveCheck func(nodeID string) bool

// ProcessorDeps bundles the per-tick inputs ProcessPackets needs beyond
// the packets themselves.
type ProcessorDeps struct {
	Graph       *Graph
	Utilization map[string]float64
	IsAlive     AliveCheck
	IsBricked   AliveCheck
	SimTimeS    float64
	DtS         float64
	RNG         *simrand.Source
}

// linkTickBudget tracks bits already committed on a link this tick;
// ProcessPackets creates a fresh one on every call.
type linkTickBudget struct {
	bitsSentByKey map[string]float64
}

// ProcessPackets advances every in-flight packet by one tick, per
// spec.md §4.6 "Packet processing (2 Hz)": sorted by descending
// priority, routed/re-routed as needed, capacity-checked per hop, with
// a Bernoulli loss roll and minimum in-flight hop time.
func ProcessPackets(packets []*Packet, deps ProcessorDeps) {
	sort.SliceStable(packets, func(i, j int) bool {
		return packets[i].Priority > packets[j].Priority
	})

	budget := &linkTickBudget{bitsSentByKey: make(map[string]float64)}

	for _, p := range packets {
		if p.Delivered || p.Dropped {
			continue
		}
		p.AgeS += deps.DtS
		if p.AgeS > p.TTLS {
			p.Dropped = true
			p.DropReason = DropTTLExceeded
			continue
		}
		if deps.IsAlive != nil && (!deps.IsAlive(p.Source) || !deps.IsAlive(p.Destination)) {
			p.Dropped = true
			p.DropReason = DropNodeDead
			continue
		}

		needsRoute := len(p.Path) == 0 || p.HopIndex >= len(p.Path)-1
		if !needsRoute {
			hop := deps.Graph.Link(p.Path[p.HopIndex], p.Path[p.HopIndex+1])
			if hop == nil || hop.Quality == QualityLost || !hop.Alive {
				needsRoute = true
			}
		}
		if needsRoute {
			route := deps.Graph.Route(p.Source, p.Destination, deps.Utilization)
			if !route.Found {
				p.Dropped = true
				p.DropReason = DropNoRoute
				continue
			}
			p.Path = route.Path
			p.HopIndex = 0
		}

		advancePacketHop(p, deps, budget)
	}
}

func advancePacketHop(p *Packet, deps ProcessorDeps, budget *linkTickBudget) {
	if p.HopIndex >= len(p.Path)-1 {
		p.Delivered = true
		return
	}
	from, to := p.Path[p.HopIndex], p.Path[p.HopIndex+1]

	if deps.IsBricked != nil && deps.IsBricked(to) {
		p.Dropped = true
		p.DropReason = DropCyber
		return
	}

	link := deps.Graph.Link(from, to)
	if link == nil || !link.Alive {
		p.Dropped = true
		p.DropReason = DropLinkLost
		return
	}
	if link.Quality == QualityLost {
		p.Dropped = true
		p.DropReason = DropJammed
		return
	}

	key := linkKey(link)
	bitsAvailable := link.EffectiveBPS*deps.DtS - budget.bitsSentByKey[key]
	bitsNeeded := float64(p.SizeBytes) * 8

	if bitsNeeded > bitsAvailable {
		switch {
		case p.Priority >= 8:
			link.Saturated = true
		case p.Priority >= 5:
			p.HopWaitS += deps.DtS
			if p.HopWaitS > hopQueueExpiryS {
				p.Dropped = true
				p.DropReason = DropExpired
			}
			return // otherwise queues for next tick, no state change
		default:
			p.Dropped = true
			p.DropReason = DropBandwidth
			return
		}
	}

	lossProb := link.PacketLossProb
	if deps.RNG != nil && deps.RNG.Bernoulli(lossProb) {
		p.Dropped = true
		p.DropReason = DropJammed
		return
	}

	minHopTimeS := link.LatencyS
	if deps.SimTimeS-p.HopStartTimeS < minHopTimeS {
		return // still in flight on this hop
	}

	budget.bitsSentByKey[key] += bitsNeeded
	p.HopIndex++
	p.HopStartTimeS = deps.SimTimeS
	p.HopWaitS = 0

	if p.HopIndex >= len(p.Path)-1 {
		p.Delivered = true
	}
}
