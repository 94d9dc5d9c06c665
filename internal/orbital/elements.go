package orbital

import "math"

// Elements holds the classical osculating orbital elements plus the
// derived quantities the spec asks for (apsides, period, node/apsis
// timing). Degenerate is set for parabolic (|e-1| < 1e-6) or
// near-zero-angular-momentum orbits per the spec's error policy:
// dependent consumers (orbit polyline, TCA) must treat a Degenerate
// record as no-data.
type Elements struct {
	SMA            float64 // semi-major axis, m
	Ecc            float64
	IncRad         float64
	RAANRad        float64
	ArgPerigeeRad  float64
	MeanAnomalyRad float64
	TrueAnomalyRad float64

	ApoapsisAltM  float64
	PeriapsisAltM float64
	PeriodS       float64

	TimeToApoapsisS       float64
	TimeToPeriapsisS      float64
	TimeToAscendingNodeS  float64
	TimeToDescendingNodeS float64

	Degenerate bool
}

// ElementsFromState converts an ECI state vector to classical elements
// under gravitational parameter mu (defaults to MuEarth when mu<=0).
func ElementsFromState(r, v [3]float64, mu float64) Elements {
	if mu <= 0 {
		mu = MuEarth
	}
	rn := norm(r)
	vn := norm(v)
	h := cross(r, v)
	hn := norm(h)

	if hn < 1e-3 {
		return Elements{Degenerate: true}
	}

	nVec := cross([3]float64{0, 0, 1}, h)
	nn := norm(nVec)

	eVec := sub(scale(r, vn*vn/mu-1/rn), scale(v, dot(r, v)/mu))
	ecc := norm(eVec)

	if math.Abs(ecc-1) < 1e-6 {
		return Elements{Degenerate: true}
	}

	energy := vn*vn/2 - mu/rn
	var sma float64
	if math.Abs(energy) > 1e-12 {
		sma = -mu / (2 * energy)
	} else {
		return Elements{Degenerate: true}
	}

	inc := math.Acos(clamp(h[2]/hn, -1, 1))

	raan := 0.0
	if nn > 1e-9 {
		raan = math.Acos(clamp(nVec[0]/nn, -1, 1))
		if nVec[1] < 0 {
			raan = 2*math.Pi - raan
		}
	}

	argPerigee := 0.0
	if nn > 1e-9 && ecc > 1e-9 {
		argPerigee = math.Acos(clamp(dot(nVec, eVec)/(nn*ecc), -1, 1))
		if eVec[2] < 0 {
			argPerigee = 2*math.Pi - argPerigee
		}
	}

	trueAnom := 0.0
	if ecc > 1e-9 {
		trueAnom = math.Acos(clamp(dot(eVec, r)/(ecc*rn), -1, 1))
		if dot(r, v) < 0 {
			trueAnom = 2*math.Pi - trueAnom
		}
	} else {
		// Circular: measure true anomaly from ascending node (or x-axis).
		ref := nVec
		if nn <= 1e-9 {
			ref = [3]float64{1, 0, 0}
		}
		refn := norm(ref)
		trueAnom = math.Acos(clamp(dot(ref, r)/(refn*rn), -1, 1))
		if r[2] < 0 {
			trueAnom = 2*math.Pi - trueAnom
		}
	}

	eccAnom := 2 * math.Atan2(math.Sqrt(1-ecc)*math.Sin(trueAnom/2), math.Sqrt(1+ecc)*math.Cos(trueAnom/2))
	meanAnom := eccAnom - ecc*math.Sin(eccAnom)
	if meanAnom < 0 {
		meanAnom += 2 * math.Pi
	}

	period := 2 * math.Pi * math.Sqrt(math.Pow(sma, 3)/mu)
	n := 2 * math.Pi / period // mean motion

	apoAlt := sma*(1+ecc) - EarthMeanRadiusM
	periAlt := sma*(1-ecc) - EarthMeanRadiusM

	timeTo := func(targetMeanAnom float64) float64 {
		delta := targetMeanAnom - meanAnom
		for delta < 0 {
			delta += 2 * math.Pi
		}
		return delta / n
	}

	meanAnomAtTrue := func(trueA float64) float64 {
		ea := 2 * math.Atan2(math.Sqrt(1-ecc)*math.Sin(trueA/2), math.Sqrt(1+ecc)*math.Cos(trueA/2))
		ma := ea - ecc*math.Sin(ea)
		if ma < 0 {
			ma += 2 * math.Pi
		}
		return ma
	}

	timeToApo := timeTo(meanAnomAtTrue(math.Pi))
	timeToPeri := timeTo(meanAnomAtTrue(0))

	var timeToAsc, timeToDesc float64
	if nn > 1e-9 {
		// True anomaly of nodes is -argPerigee and pi-argPerigee.
		ascTrue := normalizeAngle(-argPerigee)
		descTrue := normalizeAngle(math.Pi - argPerigee)
		timeToAsc = timeTo(meanAnomAtTrue(ascTrue))
		timeToDesc = timeTo(meanAnomAtTrue(descTrue))
	}

	return Elements{
		SMA: sma, Ecc: ecc, IncRad: inc, RAANRad: raan, ArgPerigeeRad: argPerigee,
		MeanAnomalyRad: meanAnom, TrueAnomalyRad: trueAnom,
		ApoapsisAltM: apoAlt, PeriapsisAltM: periAlt, PeriodS: period,
		TimeToApoapsisS: timeToApo, TimeToPeriapsisS: timeToPeri,
		TimeToAscendingNodeS: timeToAsc, TimeToDescendingNodeS: timeToDesc,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
