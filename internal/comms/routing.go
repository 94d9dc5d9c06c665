package comms

// Route is the result of a Dijkstra search between two nodes.
type Route struct {
	Path       []string
	TotalCost  float64
	TotalLatencyS float64
	Found      bool
}

// edgeCost computes the routing cost of a link per spec.md §4.6:
// latency * (1/quality_factor) * (1 + packetLoss) * (1 + 2*utilization).
func edgeCost(l *Link, utilization float64) float64 {
	qf := qualityFactor[l.Quality]
	if qf <= 0 {
		qf = 0.01
	}
	return l.LatencyS * (1 / qf) * (1 + l.PacketLossProb) * (1 + 2*utilization)
}

// adjacency builds the live (alive, non-LOST) neighbor list for every
// node referenced by the graph's links.
func adjacency(g *Graph, utilization map[string]float64) map[string][]string {
	adj := make(map[string][]string)
	for k, l := range g.Links {
		if !l.Alive || l.Quality == QualityLost {
			continue
		}
		adj[k.a] = append(adj[k.a], k.b)
		adj[k.b] = append(adj[k.b], k.a)
	}
	return adj
}

// Route runs Dijkstra from source to destination over the graph's
// alive, non-LOST links, using a linear-scan priority queue (adequate
// for <=1000 nodes per spec.md §4.6 — an O(V^2) scan instead of a heap
// is the spec's explicit choice, not an oversight).
func (g *Graph) Route(source, destination string, utilization map[string]float64) Route {
	if source == destination {
		return Route{Path: []string{source}, Found: true}
	}
	adj := adjacency(g, utilization)

	dist := map[string]float64{source: 0}
	latency := map[string]float64{source: 0}
	prev := map[string]string{}
	visited := map[string]bool{}

	nodes := map[string]bool{source: true, destination: true}
	for a, ns := range adj {
		nodes[a] = true
		for _, n := range ns {
			nodes[n] = true
		}
	}

	for {
		// Linear scan for the unvisited node with smallest tentative
		// distance.
		cur := ""
		best := -1.0
		for n := range nodes {
			if visited[n] {
				continue
			}
			d, ok := dist[n]
			if !ok {
				continue
			}
			if best < 0 || d < best {
				best = d
				cur = n
			}
		}
		if cur == "" {
			break
		}
		if cur == destination {
			break
		}
		visited[cur] = true

		for _, nb := range adj[cur] {
			if visited[nb] {
				continue
			}
			l := g.Link(cur, nb)
			if l == nil {
				continue
			}
			u := 0.0
			if utilization != nil {
				u = utilization[linkKey(l)]
			}
			cost := edgeCost(l, u)
			nd := dist[cur] + cost
			if existing, ok := dist[nb]; !ok || nd < existing {
				dist[nb] = nd
				latency[nb] = latency[cur] + l.LatencyS
				prev[nb] = cur
			}
		}
	}

	if _, ok := dist[destination]; !ok {
		return Route{Found: false}
	}

	path := []string{destination}
	for path[len(path)-1] != source {
		p, ok := prev[path[len(path)-1]]
		if !ok {
			return Route{Found: false}
		}
		path = append(path, p)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return Route{Path: path, TotalCost: dist[destination], TotalLatencyS: latency[destination], Found: true}
}

func linkKey(l *Link) string { return l.NodeA + "|" + l.NodeB }
