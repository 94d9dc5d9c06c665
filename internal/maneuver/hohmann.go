package maneuver

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

// Hohmann computes a two-burn coplanar transfer from the entity's
// current radius (not SMA — valid departing from an elliptical orbit,
// per spec.md §4.5) to a target circular radius.
func Hohmann(execAt float64, r, v linalg.Vec3, targetRadiusM, massKg, thrustN, mu float64) Node {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	r1 := r.Norm()
	r2 := targetRadiusM
	if r1 <= 0 || r2 <= 0 {
		return Node{}
	}

	vCurrent := v.Norm()
	aTransfer := (r1 + r2) / 2

	vTransferAtR1 := math.Sqrt(mu * (2/r1 - 1/aTransfer))
	vCircularAtR2 := math.Sqrt(mu / r2)
	vTransferAtR2 := math.Sqrt(mu * (2/r2 - 1/aTransfer))

	dv1 := vTransferAtR1 - vCurrent
	dv2 := vCircularAtR2 - vTransferAtR2

	prograde, _, _ := orbitalFrame(r, v)
	dvVec1 := prograde.Scale(dv1)

	node := dvToNode(execAt, r, v, dvVec1, massKg, thrustN, mu)

	transferTimeS := math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/mu)

	node.DVTotalMS = math.Abs(dv1) + math.Abs(dv2)
	node.BurnTimeS = transferTimeS // caller (UI) distinguishes burn vs coast via the two dv fields
	node.Valid = true

	return node
}

// HohmannTransferTimeS returns the coast duration between the two burns.
func HohmannTransferTimeS(r1, r2, mu float64) float64 {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	aTransfer := (r1 + r2) / 2
	return math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/mu)
}

// HohmannDeltaVs returns (dv1, dv2) separately for testability against
// the analytic vis-viva formula (spec.md §8 testable property).
func HohmannDeltaVs(r1, r2, vCurrent, mu float64) (dv1, dv2 float64) {
	if mu <= 0 {
		mu = orbital.MuEarth
	}
	aTransfer := (r1 + r2) / 2
	vTransferAtR1 := math.Sqrt(mu * (2/r1 - 1/aTransfer))
	vCircularAtR2 := math.Sqrt(mu / r2)
	vTransferAtR2 := math.Sqrt(mu * (2/r2 - 1/aTransfer))
	dv1 = vTransferAtR1 - vCurrent
	dv2 = vCircularAtR2 - vTransferAtR2
	return
}
