package comms

import (
	"math"

	"github.com/orbitalarena/alldomainsim/internal/linalg"
	"github.com/orbitalarena/alldomainsim/internal/orbital"
)

const speedOfLightMS = 299792458.0

// atmosAttenDBPerKm is a coarse band-indexed table (0.005 to 0.2 dB/km
// per spec.md §4.6), keyed by frequency band floor in Hz.
var atmosAttenDBPerKm = []struct {
	minHz float64
	dbKm  float64
}{
	{0, 0.005},
	{1e9, 0.01},
	{3e9, 0.03},
	{10e9, 0.08},
	{20e9, 0.2},
}

func atmosAttenuationDBPerKm(freqHz float64) float64 {
	v := atmosAttenDBPerKm[0].dbKm
	for _, b := range atmosAttenDBPerKm {
		if freqHz >= b.minHz {
			v = b.dbKm
		}
	}
	return v
}

// rainFadeDB is a simplified ITU P.838-style coefficient: fade grows
// with frequency and path length through rain, scaled by a rain rate
// the caller supplies (0 = clear).
func rainFadeDB(freqHz, distanceKm, rainRateMMH float64) float64 {
	if rainRateMMH <= 0 {
		return 0
	}
	k := 0.0001 * math.Pow(freqHz/1e9, 1.6)
	return k * math.Pow(rainRateMMH, 1.1) * distanceKm
}

// Environment carries the per-tick atmospheric/weather inputs the link
// budget needs beyond pure geometry.
type Environment struct {
	TroposphericFraction float64 // 0..1, portion of path through troposphere
	RainRateMMH          float64
	TempK                float64
}

// UpdateLinkBudget recomputes every property of link l for the current
// tick, given the two endpoints' ECI positions, per spec.md §4.6. Fiber
// links are LOS-independent, jam-immune, fixed bandwidth; laser links
// require strict LOS and exponentially penalize low-altitude paths;
// RF links carry the full FSPL/atmos/rain/thermal-noise computation.
func UpdateLinkBudget(l *Link, posA, posB linalg.Vec3, env Environment) {
	distM := posA.Distance(posB)
	distKm := distM / 1000

	switch l.Medium {
	case MediumFiber:
		l.LOS = true
		l.Quality = QualityExcellent
		l.MarginDB = 40
		l.LatencyS = distM/speedOfLightMS + 0.0005
		l.EffectiveBPS = l.CapacityBPS
		l.PacketLossProb = 0.0001
		return
	case MediumLaser:
		l.LOS = hasLineOfSight(posA, posB)
		if !l.LOS {
			l.Quality = QualityLost
			l.EffectiveBPS = 0
			l.PacketLossProb = 1
			return
		}
		altKm := math.Min(altitudeKm(posA), altitudeKm(posB))
		penalty := 0.0
		if altKm < 10 {
			penalty = math.Exp((10 - altKm) / 10)
		}
		margin := 60 - penalty*10
		l.MarginDB = margin
		l.Quality = qualityForMargin(margin)
		l.LatencyS = distM / speedOfLightMS
		l.EffectiveBPS = shannonScale(l.CapacityBPS, margin)
		l.PacketLossProb = lossForQuality(l.Quality)
		return
	}

	l.LOS = hasLineOfSight(posA, posB)
	if !l.LOS {
		l.Quality = QualityLost
		l.EffectiveBPS = 0
		l.PacketLossProb = 1
		l.LatencyS = distM / speedOfLightMS
		return
	}

	fspl := 20*math.Log10(distM) + 20*math.Log10(l.FrequencyHz) + 20*math.Log10(4*math.Pi/speedOfLightMS)
	atmos := atmosAttenuationDBPerKm(l.FrequencyHz) * distKm * env.TroposphericFraction
	rain := rainFadeDB(l.FrequencyHz, distKm, env.RainRateMMH)

	prxDBm := l.TxPowerDBW + 30 + l.TxGainDB + l.RxGainDB - fspl - atmos - rain

	tempK := env.TempK
	if tempK <= 0 {
		tempK = l.NoiseTempK
	}
	if tempK <= 0 {
		tempK = 290
	}
	noiseFloorDBm := -228.6 + 10*math.Log10(tempK) + 10*math.Log10(l.BandwidthHz) + 30

	snir := prxDBm - noiseFloorDBm
	margin := prxDBm - l.RxSensitivityDBm

	l.SNIRDb = snir
	l.MarginDB = margin
	l.Quality = qualityForMargin(margin)
	l.LatencyS = distM/speedOfLightMS + 0.0005
	l.EffectiveBPS = shannonScale(l.CapacityBPS, snir)
	l.PacketLossProb = lossForQuality(l.Quality)
}

func qualityForMargin(marginDB float64) Quality {
	switch {
	case marginDB > 20:
		return QualityExcellent
	case marginDB > 10:
		return QualityGood
	case marginDB > 0:
		return QualityDegraded
	default:
		return QualityLost
	}
}

func lossForQuality(q Quality) float64 {
	switch q {
	case QualityExcellent:
		return 0.001
	case QualityGood:
		return 0.01
	case QualityDegraded:
		return 0.08
	default:
		return 1.0
	}
}

// shannonScale scales capacity by a Shannon-like factor of SNIR up to
// a 20dB reference, per spec.md §4.6.
func shannonScale(capacityBPS, snirDB float64) float64 {
	ref := 20.0
	factor := math.Log2(1+math.Pow(10, snirDB/10)) / math.Log2(1+math.Pow(10, ref/10))
	if factor > 1 {
		factor = 1
	}
	if factor < 0 {
		factor = 0
	}
	return capacityBPS * factor
}

// hasLineOfSight computes the parametric closest approach of Earth's
// center to the segment between posA and posB; LOS holds iff that
// minimum distance exceeds Earth's mean radius, per spec.md §4.6.
func hasLineOfSight(posA, posB linalg.Vec3) bool {
	d := posB.Sub(posA)
	dn2 := d.Dot(d)
	if dn2 == 0 {
		return true
	}
	t := -posA.Dot(d) / dn2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	closest := posA.Add(d.Scale(t))
	return closest.Norm() > orbital.EarthMeanRadiusM
}

func altitudeKm(pos linalg.Vec3) float64 {
	return (pos.Norm() - orbital.EarthMeanRadiusM) / 1000
}
