// Package atmosphere implements the US Standard Atmosphere 1976 model:
// piecewise layers from sea level to the edge of the thermosphere, plus
// the exponential decay approximation above it. Grounded on the
// formula layout in spec.md §4.2; no pack repo carries this model
// directly, so the layer table and Newton-free closed forms below are
// implemented from the standard ICAO/NASA coefficients the spec names.
package atmosphere

import "math"

const (
	// EffectiveRadiusM is the radius used to convert geometric to
	// geopotential altitude.
	EffectiveRadiusM = 6356766.0
	g0               = 9.80665  // m/s^2
	gasConstantR     = 287.053 // J/(kg*K), dry air
	gamma            = 1.4     // ratio of specific heats

	thermosphereBaseAltM   = 84852.0
	thermosphereScaleH     = 8500.0
)

// Layer is one piecewise segment of the 1976 model, indexed by base
// geopotential altitude.
type Layer struct {
	BaseAltM  float64
	BaseTempK float64
	BasePresPa float64
	LapseKPerM float64 // 0 => isothermal
}

// layers is computed once via buildLayers so each entry's BasePresPa is
// consistent with the one before it.
var layers = buildLayers()

func buildLayers() []Layer {
	raw := []struct {
		baseAlt, baseTemp, lapse float64
	}{
		{0, 288.15, -0.0065},
		{11000, 216.65, 0.0},
		{20000, 216.65, 0.001},
		{32000, 228.65, 0.0028},
		{47000, 270.65, 0.0},
		{51000, 270.65, -0.0028},
		{71000, 214.65, -0.002},
	}
	out := make([]Layer, len(raw))
	pressure := 101325.0
	for i, r := range raw {
		out[i] = Layer{BaseAltM: r.baseAlt, BaseTempK: r.baseTemp, BasePresPa: pressure, LapseKPerM: r.lapse}
		if i+1 < len(raw) {
			next := raw[i+1]
			dh := next.baseAlt - r.baseAlt
			if r.lapse == 0 {
				pressure = pressure * math.Exp(-g0*dh/(gasConstantR*r.baseTemp))
			} else {
				topTemp := r.baseTemp + r.lapse*dh
				pressure = pressure * math.Pow(topTemp/r.baseTemp, -g0/(gasConstantR*r.lapse))
			}
		}
	}
	return out
}

// GeopotentialAltitude converts geometric altitude (meters above mean
// sea level) to geopotential altitude using the effective Earth radius.
func GeopotentialAltitude(geometricM float64) float64 {
	return EffectiveRadiusM * geometricM / (EffectiveRadiusM + geometricM)
}

// State holds the computed atmospheric properties at an altitude.
type State struct {
	DensityKgM3 float64
	PressurePa  float64
	TempK       float64
	SpeedOfSoundMS float64
}

// At returns the atmospheric state at geometricAltM meters MSL.
func At(geometricAltM float64) State {
	h := GeopotentialAltitude(geometricAltM)

	if geometricAltM >= thermosphereBaseAltM {
		base := At(thermosphereBaseAltM - 1) // recurse just under the boundary for a continuous join
		decay := math.Exp(-(geometricAltM - thermosphereBaseAltM) / thermosphereScaleH)
		density := base.DensityKgM3 * decay
		temp := base.TempK
		pressure := density * gasConstantR * temp
		return State{
			DensityKgM3:    density,
			PressurePa:     pressure,
			TempK:          temp,
			SpeedOfSoundMS: math.Sqrt(gamma * gasConstantR * temp),
		}
	}

	layer := layers[0]
	for i := len(layers) - 1; i >= 0; i-- {
		if h >= layers[i].BaseAltM {
			layer = layers[i]
			break
		}
	}

	dh := h - layer.BaseAltM
	var temp, pressure float64
	if layer.LapseKPerM == 0 {
		temp = layer.BaseTempK
		pressure = layer.BasePresPa * math.Exp(-g0*dh/(gasConstantR*temp))
	} else {
		temp = layer.BaseTempK + layer.LapseKPerM*dh
		pressure = layer.BasePresPa * math.Pow(temp/layer.BaseTempK, -g0/(gasConstantR*layer.LapseKPerM))
	}
	density := pressure / (gasConstantR * temp)

	return State{
		DensityKgM3:    density,
		PressurePa:     pressure,
		TempK:          temp,
		SpeedOfSoundMS: math.Sqrt(gamma * gasConstantR * temp),
	}
}

// Mach returns the Mach number for a true airspeed at the given altitude.
func Mach(trueAirspeedMS, altM float64) float64 {
	a := At(altM).SpeedOfSoundMS
	if a == 0 {
		return 0
	}
	return trueAirspeedMS / a
}

// CASFromTAS converts true airspeed to calibrated airspeed using the
// standard compressible Bernoulli relation against sea-level reference
// conditions, valid for subsonic speeds.
func CASFromTAS(tasMS, altM float64) float64 {
	sea := At(0)
	st := At(altM)
	m := Mach(tasMS, altM)
	if m <= 0 {
		return 0
	}
	// Impact pressure at altitude (subsonic compressible form).
	qc := st.PressurePa * (math.Pow(1+0.2*m*m, 3.5) - 1)
	// Invert for equivalent Mach at sea level, then convert to speed.
	casMachSq := 5 * (math.Pow(qc/sea.PressurePa+1, 2.0/7.0) - 1)
	if casMachSq < 0 {
		casMachSq = 0
	}
	return math.Sqrt(casMachSq) * sea.SpeedOfSoundMS
}

// TASFromCAS converts calibrated airspeed to true airspeed at altitude.
// Uses bisection since the forward relation (CASFromTAS) isn't trivial
// to invert in closed form across the whole envelope.
func TASFromCAS(casMS, altM float64) float64 {
	if casMS <= 0 {
		return 0
	}
	lo, hi := 0.0, casMS*3+50
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if CASFromTAS(mid, altM) < casMS {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
