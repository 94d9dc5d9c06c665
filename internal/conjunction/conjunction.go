// Package conjunction implements the conjunction/spatial-proximity
// engine of spec.md §4.7: spatial-hash broad phase, narrow-phase TCA,
// severity classification, and SDA maneuver detection. Grounded on the
// teacher's grid-bucketing idea in swarm_controller.go (coarse-cell
// neighbor iteration for local swarm cohesion checks), generalized
// from a 2D neighbor search to the spec's 3D 26-neighbor cell scan.
package conjunction

import (
	"math"
	"sort"
)

// Severity classifies a close-approach pair by distance thresholds.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWatch
	SeverityCaution
	SeverityCritical
)

const (
	watchThresholdM    = 50000.0
	cautionThresholdM  = 10000.0
	criticalThresholdM = 1000.0
	tcaWindowS         = 600.0
	maneuverDVThresholdMS  = 5.0
	maneuverDSMAThresholdM = 10000.0
)

// cellIndex is the spatial hash's integer bucket coordinate.
type cellIndex struct{ x, y, z int }

func cellFor(pos [3]float64, cellSizeM float64) cellIndex {
	return cellIndex{
		x: int(math.Floor(pos[0] / cellSizeM)),
		y: int(math.Floor(pos[1] / cellSizeM)),
		z: int(math.Floor(pos[2] / cellSizeM)),
	}
}

// TrackedEntity is the minimal per-entity state the conjunction engine
// needs: ID, position, velocity, and (optionally) osculating SMA for
// maneuver detection.
type TrackedEntity struct {
	ID       string
	Team     string
	Position [3]float64
	Velocity [3]float64
	SMA      float64
}

// Alert is one reported close-approach or maneuver event.
type Alert struct {
	AID, BID   string
	Severity   Severity
	DistanceM  float64
	TCADistanceM float64
	TCATimeS   float64
	IsManeuver bool
	Team       string
}

// pairKey is the sorted-ID key used to track distance trend between
// ticks for entities without usable relative velocity.
type pairKey struct{ a, b string }

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// BroadPhase buckets every entity into its spatial-hash cell (sized to
// the watch threshold) and returns deduplicated candidate pairs drawn
// from each entity's own cell and its 26 neighbors, per spec.md §4.7.
func BroadPhase(entities []TrackedEntity) [][2]int {
	cellSize := watchThresholdM
	buckets := make(map[cellIndex][]int)
	for i, e := range entities {
		c := cellFor(e.Position, cellSize)
		buckets[c] = append(buckets[c], i)
	}

	seen := make(map[[2]int]bool)
	var pairs [][2]int

	neighborOffsets := make([]cellIndex, 0, 27)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				neighborOffsets = append(neighborOffsets, cellIndex{dx, dy, dz})
			}
		}
	}

	for i, e := range entities {
		c := cellFor(e.Position, cellSize)
		for _, off := range neighborOffsets {
			nc := cellIndex{c.x + off.x, c.y + off.y, c.z + off.z}
			for _, j := range buckets[nc] {
				if j == i {
					continue
				}
				minI, maxI := i, j
				if minI > maxI {
					minI, maxI = maxI, minI
				}
				key := [2]int{minI, maxI}
				if seen[key] {
					continue
				}
				seen[key] = true
				pairs = append(pairs, key)
			}
		}
	}
	return pairs
}

// NarrowPhaseDeps bundles the previous-tick state the narrow phase
// needs for trend extrapolation and maneuver detection.
type NarrowPhaseDeps struct {
	PrevDistanceM map[pairKey]float64
	PrevVelocity  map[string][3]float64
	PrevSMA       map[string]float64
}

// NarrowPhase evaluates one candidate pair: squared-distance reject
// against WATCH^2, TCA from relative kinematics when both entities
// carry velocity, trend-extrapolation fallback otherwise, and severity
// classification by threshold crossing, per spec.md §4.7.
func NarrowPhase(a, b TrackedEntity, deps NarrowPhaseDeps) (Alert, bool) {
	rel := sub(b.Position, a.Position)
	distSq := dot(rel, rel)
	if distSq > watchThresholdM*watchThresholdM {
		return Alert{}, false
	}
	dist := math.Sqrt(distSq)
	sev := classify(dist)

	alert := Alert{AID: a.ID, BID: b.ID, Severity: sev, DistanceM: dist}

	vrel := sub(b.Velocity, a.Velocity)
	vrelSq := dot(vrel, vrel)

	if vrelSq > 1e-6 {
		tMin := -dot(rel, vrel) / vrelSq
		if tMin > 0 && tMin < tcaWindowS {
			tcaPos := add(rel, scale(vrel, tMin))
			tcaDist := math.Sqrt(dot(tcaPos, tcaPos))
			tcaSev := classify(tcaDist)
			if tcaSev > sev {
				sev = tcaSev
			}
			alert.TCADistanceM = tcaDist
			alert.TCATimeS = tMin
			alert.Severity = sev
			return alert, sev != SeverityNone
		}
	}

	// Fall back to trend extrapolation using the previous tick's
	// pair distance.
	if prev, ok := deps.PrevDistanceM[newPairKey(a.ID, b.ID)]; ok {
		trend := dist - prev
		if trend < 0 {
			projected := dist + trend*10
			if classify(projected) > sev {
				sev = classify(projected)
			}
		}
	}
	alert.Severity = sev
	return alert, sev != SeverityNone
}

func classify(distM float64) Severity {
	switch {
	case distM <= criticalThresholdM:
		return SeverityCritical
	case distM <= cautionThresholdM:
		return SeverityCaution
	case distM <= watchThresholdM:
		return SeverityWatch
	default:
		return SeverityNone
	}
}

// RankAlerts sorts alerts by severity (descending) then distance
// (ascending) and caps the result at 50, per spec.md §4.7.
func RankAlerts(alerts []Alert) []Alert {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return alerts[i].Severity > alerts[j].Severity
		}
		return alerts[i].DistanceM < alerts[j].DistanceM
	})
	if len(alerts) > 50 {
		alerts = alerts[:50]
	}
	return alerts
}

// DetectManeuver flags an SDA-variant maneuver when delta-V or
// delta-SMA between ticks exceeds the spec's thresholds.
func DetectManeuver(e TrackedEntity, deps NarrowPhaseDeps) (Alert, bool) {
	prevV, hasV := deps.PrevVelocity[e.ID]
	prevSMA, hasSMA := deps.PrevSMA[e.ID]
	if !hasV && !hasSMA {
		return Alert{}, false
	}

	dv := 0.0
	if hasV {
		d := sub(e.Velocity, prevV)
		dv = math.Sqrt(dot(d, d))
	}
	dsma := 0.0
	if hasSMA {
		dsma = math.Abs(e.SMA - prevSMA)
	}

	if dv > maneuverDVThresholdMS || dsma > maneuverDSMAThresholdM {
		return Alert{AID: e.ID, IsManeuver: true, Team: e.Team}, true
	}
	return Alert{}, false
}

func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func scale(a [3]float64, s float64) [3]float64 { return [3]float64{a[0] * s, a[1] * s, a[2] * s} }
func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
