package engine

import (
	"github.com/orbitalarena/alldomainsim/internal/iads"
	"github.com/orbitalarena/alldomainsim/internal/scenario"
)

// defaultDoctrine is used for every weapons-carrying entity a scenario
// declares, since spec.md's scenario format (§6) does not expose the
// full F2T2EA tuning knobs per entity, only Pk/maxRange/cooldown/
// inventory/salvo size; WireIADSFromScenario overrides MagazineSize
// and MissilesPerSalvo from those. Confidence/track-continuity
// parameters are held constant
// across scenarios rather than left unset.
var defaultDoctrine = iads.Doctrine{
	ConsecutiveUpdatesToTrack: 3,
	ConfidenceThreshold:       0.6,
	ConfidenceStepPerUpdate:   0.25,
	MissilesPerSalvo:          2,
	MagazineSize:              4,
}

// WireIADSFromScenario registers one radar per entity the scenario
// tags with an "ai" component whose role is "sam" or "radar", and a
// battery for each "sam" entity, per SPEC_FULL.md §4.9. It is the scenario-driven
// counterpart to the engagement machinery tested directly in
// internal/iads; it keeps radar/doctrine construction out of cmd/
// binaries so simctl and mcworker build identical engines from the
// same scenario file.
func WireIADSFromScenario(e *Engine, s *scenario.Scenario) {
	for _, spec := range s.Entities {
		ai, present, err := spec.AI()
		if err != nil || !present {
			continue
		}
		if ai.Role != "sam" && ai.Role != "radar" {
			continue
		}

		weapons, hasWeapons, _ := spec.Weapons()

		kind := iads.RadarEW
		if ai.Role == "sam" {
			kind = iads.RadarFCR
		}
		radar := &iads.Radar{
			ID:             spec.ID + "-radar",
			Kind:           kind,
			ScanRateRadS:   0.5,
			BeamwidthRad:   0.1,
			MaxRangeM:      ai.DetectRangeM,
			TrackAccuracyM: 50,
		}
		if hasWeapons && weapons.MaxRangeM > 0 {
			radar.MaxRangeM = weapons.MaxRangeM
		}
		e.RegisterRadar(spec.ID, radar)

		if ai.Role == "sam" {
			doctrine := defaultDoctrine
			if hasWeapons {
				if weapons.Inventory > 0 {
					doctrine.MagazineSize = weapons.Inventory
				}
				if weapons.SalvoSize > 0 {
					doctrine.MissilesPerSalvo = weapons.SalvoSize
				}
			}
			e.RegisterBattery(spec.ID, radar.ID, doctrine)
		}
	}
}
