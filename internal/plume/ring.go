package plume

import (
	"math"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/orbit"
)

// Weighting floors. Spread widths are clamped away from zero before they
// appear in a denominator, otherwise the gradient blows up as the width
// parameter approaches zero.
const (
	minGradualSigma = 0.001  // radians
	minVariationSD  = 0.0001 // degrees
)

// generateRing builds one dust ring: a parametric circle of particles at
// the given true anomaly, oriented along the instantaneous binary
// separation vector, with every physical weighting effect applied. The
// results are written into xs/ys/zs/ws, which must all have the length of
// theta. Coordinates are in km from the binary barycenter.
func generateRing(ringIdx int, nu dual.Num, p *DualParams, theta []float64, sep orbit.Vec3, width dual.Num, xs, ys, zs, ws []dual.Num) {
	transfNu := wrapAnomaly(nu)
	turnOn := orbit.Deg2Rad(p.TurnOn)
	turnOff := orbit.Deg2Rad(p.TurnOff)

	// Dust is nominally produced only between the turn-on and turn-off
	// anomalies, and is only visible past the nucleation distance.
	turnedOn := dual.Step(transfNu.Sub(turnOn), 0)
	turnedOff := dual.Step(turnOff.Sub(transfNu), 0)
	nucleated := dual.Step(width.Sub(p.NucDist.Scale(orbit.AUKm)), 1)

	direction := sep.Scale(dual.Con(1).Div(sep.Norm()))

	oaMult, vMult := spinOrbitMult(nu, p)

	// Only the half opening angle enters the construction; cap at 90
	// degrees so an anisotropy multiplier cannot fold the cone inside out.
	halfAngle := orbit.Deg2Rad(p.OpenAngle.Mul(oaMult)).Scale(0.5)
	halfAngle = dual.Min(halfAngle, dual.Con(math.Pi/2))
	cosHalf := dual.Cos(halfAngle)
	sinHalf := dual.Sin(halfAngle)

	radius := width.Mul(vMult)

	// Soft-edged production window: a Gaussian residual just outside the
	// hard thresholds, with the whole mechanism switched off once the
	// width reaches one radian.
	sigma := dual.Max(orbit.Deg2Rad(p.GradualTurn), dual.Con(minGradualSigma))
	onArg := transfNu.Sub(turnOn).Div(sigma)
	offArg := transfNu.Sub(turnOff).Div(sigma)
	residOn := dual.Exp(onArg.Mul(onArg).Scale(-0.5)).Scale(1 - turnedOn)
	residOff := dual.Exp(offArg.Mul(offArg).Scale(-0.5)).Scale(1 - turnedOff)
	residual := dual.Min(residOn.Add(residOff), dual.Con(1)).Scale(1 - dual.Step(sigma.Shift(-1), 1))

	ringWeight := dual.Con(turnedOn * turnedOff * nucleated)
	ringWeight = ringWeight.Add(residual.Scale(nucleated))

	// Whole-ring brightness modulation over the orbit. Widths below one
	// degree disable the modulation outright: the +1 pushes the factor to
	// the clamp ceiling.
	orbSD := dual.Max(p.OrbSD, dual.Con(minVariationSD))
	orbArg := transfNu.Scale(180 / math.Pi).Shift(180).Sub(p.OrbMin).Div(orbSD)
	propOrb := dual.Con(1).Sub(p.OrbAmp.Neg().Shift(1).Mul(dual.Exp(orbArg.Mul(orbArg).Scale(-0.5))))
	propOrb = propOrb.Shift(1 - dual.Step(orbSD.Shift(-1), 1))
	propOrb = dual.Clamp(propOrb, 0, 1)

	ringWeight = ringWeight.Mul(propOrb)

	// Orient the circle axis along the separation direction: the circle
	// is built about the x-axis, then rotated about z by the azimuth of
	// the separation vector plus pi.
	angleZ := dual.SafeAtan2(direction[1], direction[0]).Shift(math.Pi)
	cosZ := dual.Cos(angleZ)
	sinZ := dual.Sin(angleZ)

	azSD := dual.Max(p.AzSD, dual.Con(minVariationSD))
	azDisable := 1 - dual.Step(azSD.Shift(-1), 1)

	for k := range theta {
		// Dither the angular coordinate by the ring index so successive
		// rings do not alias into spokes on the image grid. Deterministic:
		// a function of the ring index, not an RNG.
		shifted := math.Mod(theta[k]+float64(ringIdx), 2*math.Pi)
		sinT, cosT := math.Sincos(shifted)

		// Circle about the x-axis, scaled to physical size.
		cx := cosHalf.Mul(radius)
		cy := sinHalf.Scale(sinT).Mul(radius)
		cz := sinHalf.Scale(cosT).Mul(radius)

		x := cosZ.Mul(cx).Sub(sinZ.Mul(cy))
		y := sinZ.Mul(cx).Add(cosZ.Mul(cy))
		z := cz

		w := ringWeight.Mul(companionDissociate(x, y, z, p))

		// Azimuthal brightness modulation within the ring.
		azArg := p.AzMin.Neg().Shift(shifted * 180 / math.Pi).Div(azSD)
		propAz := dual.Con(1).Sub(p.AzAmp.Neg().Shift(1).Mul(dual.Exp(azArg.Mul(azArg).Scale(-0.5))))
		propAz = propAz.Shift(azDisable)
		propAz = dual.Clamp(propAz, 0, 1)

		xs[k] = x
		ys[k] = y
		zs[k] = z
		ws[k] = w.Mul(propAz)
	}
}
