// Package datalink implements the tactical datalink named in spec.md
// §2's rate table and detailed in SPEC_FULL.md §4.11: once per second,
// every side's physics-visible entities are serialized into track
// packets addressed to that side's command node(s) and handed to the
// comms engine as ordinary traffic. It is the concrete mechanism
// behind the spec's otherwise undetailed "Tactical datalink — 1 Hz
// track sharing over comm networks" row.
package datalink

import (
	"fmt"
	"math"

	"github.com/orbitalarena/alldomainsim/internal/comms"
	"github.com/orbitalarena/alldomainsim/internal/world"
)

// TrackUpdate is the payload of a track packet; comms.Packet has no
// body field, so this struct travels alongside the
// packet (keyed by packet ID) rather than inside comms.Packet itself.
type TrackUpdate struct {
	EntityID string
	Side     string
	Type     string
	Lat, Lon, Alt float64
	Speed, Heading float64
}

// CommandNode names a side's command-node entity ID within a network.
type CommandNode struct {
	Side         string
	NodeID       string
	NetworkID    string
}

// BuildTrackPackets serializes every active, comms-capable entity's
// state into a track packet addressed to its side's command node,
// per SPEC_FULL.md §4.11. Entities belonging to a side with no
// registered command node, and the command node itself, are skipped
// without logging.
func BuildTrackPackets(entities []world.Entity, commandNodes []CommandNode, simTime float64) ([]*comms.Packet, map[string]TrackUpdate) {
	nodeBySide := make(map[string]CommandNode, len(commandNodes))
	for _, n := range commandNodes {
		nodeBySide[n.Side] = n
	}

	packets := make([]*comms.Packet, 0, len(entities))
	payloads := make(map[string]TrackUpdate, len(entities))

	for _, e := range entities {
		if e.Comm == nil {
			continue
		}
		node, ok := nodeBySide[e.Side]
		if !ok || node.NodeID == e.ID {
			continue
		}
		id := fmt.Sprintf("track-%s-%.3f", e.ID, simTime)
		p := &comms.Packet{
			ID:          id,
			Source:      e.ID,
			Destination: node.NodeID,
			Priority:    4,
			Type:        comms.PacketTrack,
			SizeBytes:   256,
			TTLS:        2.0,
		}
		packets = append(packets, p)
		payloads[id] = TrackUpdate{
			EntityID: e.ID, Side: e.Side, Type: e.Type,
			Lat: e.State.Lat, Lon: e.State.Lon, Alt: e.State.Alt,
			Speed: e.State.Speed, Heading: e.State.Heading,
		}
	}
	return packets, payloads
}

// ExtrapolatedTrack is a track update advanced by its travel time and
// tagged with a position-uncertainty, per spec.md §4.6's "F2T2EA
// distribution" delivery behavior for track packets.
type ExtrapolatedTrack struct {
	TrackUpdate
	UncertaintyM float64
}

// Extrapolate advances a track's lat/lon by speed*heading*latency and
// attaches a position-uncertainty proportional to the travel distance,
// mirroring the delivery-time extrapolation spec.md §4.6 assigns to
// F2T2EA distribution of delivered track packets.
func Extrapolate(t TrackUpdate, latencyS float64, earthRadiusM float64) ExtrapolatedTrack {
	groundSpeed := t.Speed
	travelM := groundSpeed * latencyS
	r := earthRadiusM + t.Alt
	dLat := travelM * math.Cos(t.Heading) / r
	dLon := travelM * math.Sin(t.Heading) / r

	out := t
	out.Lat += dLat
	out.Lon += dLon

	return ExtrapolatedTrack{TrackUpdate: out, UncertaintyM: travelM * 0.05}
}
