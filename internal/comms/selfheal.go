package comms

// NodeScore ranks a candidate for hub promotion, per spec.md §4.6
// "Self-heal": ground station > command/AWACS > alive-neighbor-count.
type NodeScore struct {
	NodeID           string
	IsGroundStation  bool
	IsCommandOrAWACS bool
	AliveNeighbors   int
}

func (s NodeScore) rank() int {
	switch {
	case s.IsGroundStation:
		return 2
	case s.IsCommandOrAWACS:
		return 1
	default:
		return 0
	}
}

// SelfHealStar promotes the highest-scoring alive daughter node to hub
// when a star network's hub is down: rewires every surviving daughter
// to the new hub and marks the old hub's links LOST. Mesh and
// multihop topologies self-heal implicitly through re-routing and need
// no explicit promotion step.
func SelfHealStar(g *Graph, n Network, candidates []NodeScore, isAlive func(string) bool) (newHub string, ok bool) {
	if n.Topology != TopologyStar {
		return "", false
	}
	if isAlive(n.HubID) {
		return "", false
	}

	best := NodeScore{}
	found := false
	for _, c := range candidates {
		if !isAlive(c.NodeID) || c.NodeID == n.HubID {
			continue
		}
		if !found || c.rank() > best.rank() || (c.rank() == best.rank() && c.AliveNeighbors > best.AliveNeighbors) {
			best = c
			found = true
		}
	}
	if !found {
		return "", false
	}

	for k, l := range g.Links {
		if k.a == n.HubID || k.b == n.HubID {
			l.Alive = false
			l.Quality = QualityLost
		}
	}

	updated := n
	updated.HubID = best.NodeID
	updated.CustomEdges = nil
	updated.Topology = TopologyStar
	g.Networks[n.ID] = updated

	for _, pair := range edgesFor(updated) {
		k := newEdgeKey(pair[0], pair[1])
		if _, exists := g.Links[k]; !exists {
			g.Links[k] = &Link{NodeA: k.a, NodeB: k.b, Alive: true, Quality: QualityGood}
		}
	}

	return best.NodeID, true
}
