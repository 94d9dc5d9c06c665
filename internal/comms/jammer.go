package comms

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
)

// JammerType selects which in-band rule a jammer follows.
type JammerType string

const (
	JammerBarrage JammerType = "barrage" // wideband, constant power across the band
	JammerSpot    JammerType = "spot"    // narrowband, targets one frequency
	JammerSweep   JammerType = "sweep"   // narrowband, sweeps across the band over time
	JammerNoise   JammerType = "noise"   // wideband, power spread thinner than barrage
)

// Direction selects which endpoint of a link a jammer's effect is
// evaluated against.
type Direction string

const (
	DirectionUplink   Direction = "uplink"
	DirectionDownlink Direction = "downlink"
	DirectionBoth     Direction = "both"
)

// Jammer is an active RF jamming source.
type Jammer struct {
	NodeID      string
	Type        JammerType
	Direction   Direction
	CenterFreqHz float64
	BandwidthHz  float64
	PowerDBW     float64
	GainDB       float64
	MaxRangeM    float64
	Position     linalg.Vec3
	Active       bool
}

// inBand reports whether the jammer's frequency coverage overlaps
// linkFreqHz, per type.
func (j Jammer) inBand(linkFreqHz, simTime float64) bool {
	switch j.Type {
	case JammerBarrage, JammerNoise:
		lo := j.CenterFreqHz - j.BandwidthHz/2
		hi := j.CenterFreqHz + j.BandwidthHz/2
		return linkFreqHz >= lo && linkFreqHz <= hi
	case JammerSpot:
		return math.Abs(linkFreqHz-j.CenterFreqHz) < j.BandwidthHz*0.05
	case JammerSweep:
		// Sweeps linearly across [center-bw/2, center+bw/2] with a 10s
		// period; in-band only while its instantaneous frequency is
		// within one channel width of the link frequency.
		period := 10.0
		phase := math.Mod(simTime, period) / period
		sweepFreq := j.CenterFreqHz - j.BandwidthHz/2 + phase*j.BandwidthHz
		return math.Abs(linkFreqHz-sweepFreq) < j.BandwidthHz*0.05
	}
	return false
}

// ReceivedPowerDBW returns the jammer's received power at the given
// endpoint position, or (0, false) if inactive, out of range or
// without LOS.
func (j Jammer) receivedPowerDBW(endpoint linalg.Vec3) (float64, bool) {
	if !j.Active {
		return 0, false
	}
	dist := j.Position.Distance(endpoint)
	if j.MaxRangeM > 0 && dist > j.MaxRangeM {
		return 0, false
	}
	if !hasLineOfSight(j.Position, endpoint) {
		return 0, false
	}
	if dist < 1 {
		dist = 1
	}
	fspl := 20*math.Log10(dist) + 20*math.Log10(j.CenterFreqHz) + 20*math.Log10(4*math.Pi/speedOfLightMS)
	return j.PowerDBW + j.GainDB - fspl, true
}

// ApplyJammers folds every active jammer whose band overlaps the
// link's frequency into the link's noise and quality, per spec.md
// §4.6.1: received jammer power is summed in watts at the selected
// endpoint, J/S is computed against the link's receive power, J/S >
// 0dB kills the link, J/S > -6dB degrades one quality tier and adds
// 0.3 to packet-loss probability.
func ApplyJammers(l *Link, jammers []Jammer, posA, posB linalg.Vec3, simTime float64) {
	if l.Quality == QualityLost || !l.LOS {
		return
	}
	totalJamWatts := 0.0
	any := false
	for _, j := range jammers {
		if !j.inBand(l.FrequencyHz, simTime) {
			continue
		}
		jDBW, ok := j.receivedPowerDBW(jammerEndpoint(j.Direction, posA, posB))
		if j.Direction == DirectionBoth {
			// A "both" jammer degrades the link if it reaches either
			// endpoint; take the stronger of the two received powers.
			if altDBW, altOK := j.receivedPowerDBW(posB); altOK && (!ok || altDBW > jDBW) {
				jDBW, ok = altDBW, true
			}
		}
		if !ok {
			continue
		}
		totalJamWatts += dbwToWatts(jDBW)
		any = true
	}
	if !any {
		return
	}

	jamDBW := wattsToDBW(totalJamWatts)
	rxDBW := l.MarginDB + l.RxSensitivityDBm - 30 // reconstruct approx rx power in dBW from margin
	js := jamDBW - rxDBW

	switch {
	case js > 0:
		l.Quality = QualityLost
		l.EffectiveBPS = 0
		l.PacketLossProb = 1
	case js > -6:
		l.Quality = degradeOneLevel(l.Quality)
		l.PacketLossProb += 0.3
		if l.PacketLossProb > 1 {
			l.PacketLossProb = 1
		}
		l.EffectiveBPS = shannonScale(l.CapacityBPS, l.SNIRDb-6)
	}
}

// jammerEndpoint picks which link endpoint a jammer's direction
// targets; "both" is evaluated starting from posA, with ApplyJammers
// separately checking posB for the stronger of the two.
func jammerEndpoint(dir Direction, posA, posB linalg.Vec3) linalg.Vec3 {
	if dir == DirectionUplink || dir == DirectionBoth {
		return posA
	}
	return posB
}

func degradeOneLevel(q Quality) Quality {
	switch q {
	case QualityExcellent:
		return QualityGood
	case QualityGood:
		return QualityDegraded
	default:
		return QualityLost
	}
}

func dbwToWatts(dbw float64) float64 { return math.Pow(10, dbw/10) }
func wattsToDBW(w float64) float64 {
	if w <= 0 {
		return -300
	}
	return 10 * math.Log10(w)
}
