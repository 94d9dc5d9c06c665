// Package iads implements the integrated air defense engagement
// engine of spec.md §4.9: radar scan models, the F2T2EA state machine,
// and proportional-navigation SAM guidance. Generalizes the teacher's
// CounterUASSystem/UASThreat Blue/Red pair (cmd/drone-swarm/simulation/
// entities.go) into Radar/SAMBattery/InboundTrack per SPEC_FULL.md
// §4.9, and reuses core/engagement_calculator.go's range-check, base-
// probability, environmental-modifier, Bernoulli-roll shape for the
// ASSESS phase's intercept roll, drawing from the per-replication
// simrand.Source instead of the teacher's package-level math/rand.
package iads

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
	"github.com/orbitalarena/alldomainsim/internal/simrand"
)

// Phase is one state of the F2T2EA engagement state machine.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseFind    Phase = "find"
	PhaseFix     Phase = "fix"
	PhaseTrack   Phase = "track"
	PhaseTarget  Phase = "target"
	PhaseEngage  Phase = "engage"
	PhaseAssess  Phase = "assess"
	PhaseComplete Phase = "complete"
)

// RadarKind selects scan behavior and detection rules.
type RadarKind string

const (
	RadarEW  RadarKind = "ew"  // early warning: rotates, wide search
	RadarTTR RadarKind = "ttr" // track: slews to assigned target
	RadarFCR RadarKind = "fcr" // fire control: slews, narrow beam
)

// Radar is one sensor in the IADS network.
type Radar struct {
	ID             string
	Kind           RadarKind
	Position       linalg.Vec3
	AzimuthRad     float64
	ScanRateRadS   float64
	BeamwidthRad   float64
	MaxRangeM      float64
	AssignedTarget string // TTR/FCR only
	TrackAccuracyM float64
}

// ScanResult reports whether a radar detects a given track this tick.
type ScanResult struct {
	Detected   bool
	ReportLat  float64
	ReportLon  float64
}

// Scan advances an EW radar's azimuth by its scan rate and reports a
// detection if the target falls within beamwidth/2 and max range, per
// spec.md §4.9. TTR/FCR radars use SlewScan instead.
func (r *Radar) Scan(dt float64, targetPos linalg.Vec3, targetLat, targetLon float64, rng *simrand.Source) ScanResult {
	r.AzimuthRad = normalizeAngle(r.AzimuthRad + r.ScanRateRadS*dt)

	rel := targetPos.Sub(r.Position)
	rng2D := math.Hypot(rel.X, rel.Y)
	if rng2D > r.MaxRangeM {
		return ScanResult{}
	}
	bearing := math.Atan2(rel.Y, rel.X)
	diff := angularDiff(bearing, r.AzimuthRad)
	if math.Abs(diff) > r.BeamwidthRad/2 {
		return ScanResult{}
	}
	return reportWithNoise(targetLat, targetLon, r.TrackAccuracyM, rng)
}

// SlewScan advances a TTR/FCR radar's azimuth toward its assigned
// target and reports a detection within an "assigned + 2*beamwidth"
// window, per spec.md §4.9.
func (r *Radar) SlewScan(dt float64, targetPos linalg.Vec3, targetLat, targetLon float64, rng *simrand.Source) ScanResult {
	rel := targetPos.Sub(r.Position)
	rng2D := math.Hypot(rel.X, rel.Y)
	if rng2D > r.MaxRangeM {
		return ScanResult{}
	}
	bearing := math.Atan2(rel.Y, rel.X)
	diff := angularDiff(bearing, r.AzimuthRad)

	maxStep := r.ScanRateRadS * dt
	if math.Abs(diff) < maxStep {
		r.AzimuthRad = bearing
	} else if diff > 0 {
		r.AzimuthRad = normalizeAngle(r.AzimuthRad + maxStep)
	} else {
		r.AzimuthRad = normalizeAngle(r.AzimuthRad - maxStep)
	}

	window := r.BeamwidthRad/2 + 2*r.BeamwidthRad
	if math.Abs(angularDiff(bearing, r.AzimuthRad)) > window {
		return ScanResult{}
	}
	return reportWithNoise(targetLat, targetLon, r.TrackAccuracyM, rng)
}

func reportWithNoise(lat, lon, accuracyM float64, rng *simrand.Source) ScanResult {
	if rng == nil {
		return ScanResult{Detected: true, ReportLat: lat, ReportLon: lon}
	}
	// lat/lon are radians everywhere in this codebase, so a noise
	// draw in meters converts via the Earth's radius, not a
	// meters-per-degree constant.
	noiseLatM := rng.Gauss(0, accuracyM)
	noiseLonM := rng.Gauss(0, accuracyM)
	return ScanResult{
		Detected:  true,
		ReportLat: lat + noiseLatM/orbital.EarthMeanRadiusM,
		ReportLon: lon + noiseLonM/(orbital.EarthMeanRadiusM*math.Max(math.Cos(lat), 0.1)),
	}
}

func normalizeAngle(a float64) float64 {
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

func angularDiff(target, current float64) float64 {
	d := math.Mod(target-current+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}
