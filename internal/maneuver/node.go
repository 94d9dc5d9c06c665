package maneuver

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

// Node is a planned maneuver: the burn time, the ECI state at that
// time, the orbital-frame delta-v decomposition, and predictions
// derived from it (post-burn apsides and an orbit polyline for
// rendering). Owned exclusively by the maneuver planner per spec.md §3.
type Node struct {
	ExecuteAtS float64
	R, V       linalg.Vec3 // ECI state at execution time

	DVProgradeMS float64
	DVNormalMS   float64
	DVRadialMS   float64
	DVTotalMS    float64

	BurnTimeS float64

	PredictedApoapsisAltM  float64
	PredictedPeriapsisAltM float64
	Polyline               []linalg.Vec3

	Valid bool
}

// orbitalFrame returns the (prograde, normal, radial) unit basis at
// state (r, v): radial points outward from the primary, normal is the
// orbit-plane normal (angular momentum direction), prograde completes
// the right-handed triad.
func orbitalFrame(r, v linalg.Vec3) (prograde, normal, radial linalg.Vec3) {
	radial = r.Unit()
	h := r.Cross(v)
	normal = h.Unit()
	prograde = normal.Cross(radial).Unit()
	return
}

// dvToNode decomposes a delta-v vector expressed in ECI into the
// orbital frame at (r, v) and fills in burn time / apsis predictions.
func dvToNode(execAt float64, r, v, dv linalg.Vec3, massKg, thrustN, mu float64) Node {
	prograde, normal, radial := orbitalFrame(r, v)
	dvP := dv.Dot(prograde)
	dvN := dv.Dot(normal)
	dvR := dv.Dot(radial)
	dvTotal := dv.Norm()

	burnTime := 0.0
	if thrustN > 0 && massKg > 0 {
		burnTime = massKg * dvTotal / thrustN
	}

	vNew := v.Add(dv)
	els := orbital.ElementsFromState([3]float64{r.X, r.Y, r.Z}, [3]float64{vNew.X, vNew.Y, vNew.Z}, mu)

	n := Node{
		ExecuteAtS: execAt, R: r, V: v,
		DVProgradeMS: dvP, DVNormalMS: dvN, DVRadialMS: dvR, DVTotalMS: dvTotal,
		BurnTimeS: burnTime,
		Valid:     true,
	}
	if !els.Degenerate {
		n.PredictedApoapsisAltM = els.ApoapsisAltM
		n.PredictedPeriapsisAltM = els.PeriapsisAltM
		n.Polyline = polyline(r, vNew, mu, 64)
	}
	return n
}

// polyline samples the post-burn orbit at n points over one period
// for rendering. Orbits without a positive period (hyperbolic ones
// included) get a nil polyline.
func polyline(r, v linalg.Vec3, mu float64, n int) []linalg.Vec3 {
	els := orbital.ElementsFromState([3]float64{r.X, r.Y, r.Z}, [3]float64{v.X, v.Y, v.Z}, mu)
	if els.Degenerate {
		return nil
	}
	span := els.PeriodS
	if span <= 0 || math.IsNaN(span) {
		return nil
	}
	out := make([]linalg.Vec3, 0, n)
	for i := 0; i < n; i++ {
		dt := span * float64(i) / float64(n)
		res := orbital.Propagate([3]float64{r.X, r.Y, r.Z}, [3]float64{v.X, v.Y, v.Z}, dt, mu)
		if !res.Converged {
			continue
		}
		out = append(out, linalg.New(res.R[0], res.R[1], res.R[2]))
	}
	return out
}
