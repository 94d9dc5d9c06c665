package iads

import (
	"github.com/orbitalarena/alldomainsim/internal/simrand"
)

// Doctrine configures how many missiles an engagement fires per salvo
// and the track-confidence threshold required to weapons-free.
type Doctrine struct {
	ConsecutiveUpdatesToTrack int
	ConfidenceThreshold       float64
	ConfidenceStepPerUpdate   float64
	MissilesPerSalvo          int
	MagazineSize              int
}

// Engagement tracks one battery's F2T2EA state against one inbound
// track. Transitions are one-way forward except ASSESS -> TARGET on a
// miss with magazine remaining, per spec.md §4.9.
type Engagement struct {
	Phase           Phase
	TrackID         string
	FCRID           string
	ConsecutiveHits int
	TrackConfidence float64
	MissilesFired   int
	MagazineRemaining int
}

// NewEngagement starts an engagement in IDLE against trackID, with the
// battery's full magazine available.
func NewEngagement(trackID string, d Doctrine) *Engagement {
	return &Engagement{Phase: PhaseIdle, TrackID: trackID, MagazineRemaining: d.MagazineSize}
}

// AdvanceOnDetection moves IDLE -> FIND on an EW detection.
func (e *Engagement) AdvanceOnDetection() {
	if e.Phase == PhaseIdle {
		e.Phase = PhaseFind
	}
}

// AdvanceOnHandoff moves FIND -> FIX when EW hands the track to a TTR
// by frequency/bearing correlation (the correlation match itself is
// the caller's responsibility; this only advances the phase).
func (e *Engagement) AdvanceOnHandoff() {
	if e.Phase == PhaseFind {
		e.Phase = PhaseFix
	}
}

// AdvanceOnTTRUpdate moves FIX -> TRACK on the first TTR update, then
// accumulates consecutive updates until doctrine's threshold raises
// TrackConfidence; TRACK -> TARGET once confidence clears the
// doctrine's threshold and an FCR is assigned.
func (e *Engagement) AdvanceOnTTRUpdate(d Doctrine, fcrID string) {
	switch e.Phase {
	case PhaseFix:
		e.Phase = PhaseTrack
		e.ConsecutiveHits = 1
	case PhaseTrack:
		e.ConsecutiveHits++
	default:
		return
	}
	e.TrackConfidence += d.ConfidenceStepPerUpdate
	if e.TrackConfidence > 1 {
		e.TrackConfidence = 1
	}
	if e.Phase == PhaseTrack && e.TrackConfidence >= d.ConfidenceThreshold && fcrID != "" {
		e.Phase = PhaseTarget
		e.FCRID = fcrID
	}
}

// Launch moves TARGET -> ENGAGE and fires the doctrine's salvo size
// (bounded by remaining magazine).
func (e *Engagement) Launch(d Doctrine) int {
	if e.Phase != PhaseTarget {
		return 0
	}
	n := d.MissilesPerSalvo
	if n > e.MagazineRemaining {
		n = e.MagazineRemaining
	}
	e.MissilesFired += n
	e.MagazineRemaining -= n
	e.Phase = PhaseEngage
	return n
}

// Assess moves ENGAGE -> ASSESS -> (TARGET on miss with magazine
// remaining, else COMPLETE), per spec.md §4.9's one exception to the
// otherwise one-way-forward rule.
func (e *Engagement) Assess(hit bool) {
	if e.Phase != PhaseEngage {
		return
	}
	e.Phase = PhaseAssess
	if hit {
		e.Phase = PhaseComplete
		return
	}
	if e.MagazineRemaining > 0 {
		e.Phase = PhaseTarget
	} else {
		e.Phase = PhaseComplete
	}
}

// EnvironmentalModifiers mirrors the teacher's Modifiers struct
// (core/engagement_calculator.go), generalized from Counter-UAS
// engagements to SAM intercept assessment.
type EnvironmentalModifiers struct {
	Visibility float64
	Weather    float64
	CountermeasuresActive bool
}

// InterceptProbability applies the teacher's range-check/base-
// probability/environmental-modifier chain (core/engagement_
// calculator.go CalculateEngagement/applyModifiers) to an intercept
// roll: base Pk scaled by visibility and weather, halved if
// countermeasures are active.
func InterceptProbability(basePk, rangeM, maxRangeM float64, env EnvironmentalModifiers) float64 {
	if maxRangeM <= 0 {
		return 0
	}
	ratio := rangeM / maxRangeM
	prob := basePk * (1 - ratio*0.3)
	prob *= env.Visibility
	prob *= env.Weather
	if env.CountermeasuresActive {
		prob *= 0.5
	}
	if prob < 0 {
		prob = 0
	}
	if prob > 1 {
		prob = 1
	}
	return prob
}

// RollIntercept draws the Bernoulli success roll for an ASSESS-phase
// intercept, via the replication's seeded RNG (never global math/rand,
// per the determinism note in spec.md §9).
func RollIntercept(prob float64, rng *simrand.Source) bool {
	return rng.Bernoulli(prob)
}
