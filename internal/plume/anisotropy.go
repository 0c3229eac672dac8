package plume

import (
	"math"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/orbit"
)

// spinOrbitMult returns the opening-angle and velocity multipliers for a
// ring at the given true anomaly, modelling latitude-dependent wind
// anisotropy. The angular distance of the ring direction from the spin
// equator feeds a tanh transition between the equatorial and polar values
// of wind speed and opening angle; the transition steepness is stored in
// log10.
func spinOrbitMult(trueAnom dual.Num, p *DualParams) (oaMult, velMult dual.Num) {
	dist := dual.Abs(p.SpinInc.Mul(dual.Sin(trueAnom.Sub(orbit.Deg2Rad(p.SpinOmega)))))

	velSat := dual.Tanh(dual.Pow10(p.AnisoVelMult).Mul(dual.Pow(dist, p.AnisoVelPower)))
	velMult = p.WindSpeedPolar.Div(p.WindSpeed1).Shift(-1).Mul(velSat).Shift(1)

	oaSat := dual.Tanh(dual.Pow10(p.AnisoOAMult).Mul(dual.Pow(dist, p.AnisoOAPower)))
	oaMult = p.OpenAnglePolar.Div(p.OpenAngle).Shift(-1).Mul(oaSat).Shift(1)

	return oaMult, velMult
}

// companionDissociate returns the per-particle survival multiplier for
// photodissociation by the tertiary companion. Particles within the
// companion's half-opening-angle cone are attenuated by a Gaussian of the
// angular separation; everything outside the cone is untouched. The
// result is floored at zero so weights can never go negative.
func companionDissociate(x, y, z dual.Num, p *DualParams) dual.Num {
	alpha := orbit.Deg2Rad(p.CompIncl)
	beta := orbit.Deg2Rad(p.CompAz)
	halfTheta := orbit.Deg2Rad(p.CompOpen).Scale(0.5)

	r := dual.SafeSqrt(x.Mul(x).Add(y.Mul(y)).Add(z.Mul(z)))
	partAlpha := dual.SafeAcos(z.Div(r))
	rho := dual.SafeSqrt(x.Mul(x).Add(y.Mul(y)))
	partBeta := dual.SafeAcos(x.Div(rho)).Scale(dual.Sign(y))

	// Great-circle separation between the particle direction and the
	// companion direction.
	term1 := dual.Cos(alpha).Mul(dual.Cos(partAlpha))
	term2 := dual.Sin(alpha).Mul(dual.Sin(partAlpha)).Mul(dual.Cos(beta.Sub(partBeta)))
	angDist := dual.SafeAcos(term1.Add(term2))

	ratio := angDist.Div(halfTheta)
	gauss := dual.Con(1).Sub(p.CompReduction.Mul(dual.Exp(ratio.Mul(ratio).Neg())))
	gauss = dual.Max(gauss, dual.Con(0))

	// Inside the cone use the Gaussian attenuation, outside leave the
	// particle alone.
	if angDist.V < halfTheta.V {
		return gauss
	}
	return dual.Con(1)
}

// nonlinearAccel is the plume velocity law: exponential approach to the
// terminal wind speed with an acceleration rate stored in log10. Applied
// before any anisotropy multiplier, so the result can safely be scaled by
// a constant factor.
func nonlinearAccel(ageSec dual.Num, p *DualParams) dual.Num {
	rate := dual.Pow10(p.AccelRate)
	decay := dual.Exp(rate.Mul(ageSec.Scale(1 / orbit.YearSeconds)).Neg())
	return p.TermWindSpeed.Add(p.WindSpeed1.Sub(p.TermWindSpeed).Mul(decay))
}

// wrapAnomaly maps a true anomaly into the signed range (-pi, pi], where
// the turn-on/turn-off thresholds live. Without this shift the dust
// production window would be discontinuous at nu = 0.
func wrapAnomaly(nu dual.Num) dual.Num {
	return dual.Mod(nu.Shift(-math.Pi), 2*math.Pi).Shift(-math.Pi)
}
