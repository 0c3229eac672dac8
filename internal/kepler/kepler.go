// Package kepler solves Kepler's equation M = E - e*sin(E) for the
// eccentric anomaly E and converts between anomaly measures.
//
// The solve is non-iterative: a closed-form rational starter (accurate to
// ~1e-4 rad) followed by a single fourth-order Householder refinement.
// Derivatives are never taken through the solve itself; they are
// assembled from the implicit-function rule
//
//	dE/dM = 1 / (1 - e*cos E),  dE/de = sin(E) * dE/dM
//
// which stays bounded and NaN-free for e < 1.
package kepler

import (
	"math"

	"github.com/wrplume/plumesim/internal/dual"
)

// starter computes the closed-form rational initial guess for the
// eccentric anomaly, valid for mean anomaly in [0, pi].
func starter(m, e float64) float64 {
	ome := 1 - e
	m2 := m * m
	alpha := 3 * math.Pi / (math.Pi - 6/math.Pi)
	alpha += 1.6 / (math.Pi - 6/math.Pi) * (math.Pi - m) / (1 + e)
	d := 3*ome + alpha*e
	alphad := alpha * d
	r := (3*alphad*(d-ome) + m2) * m
	q := 2*alphad*ome - m2
	q2 := q * q
	w := math.Cbrt(math.Abs(r) + math.Sqrt(q2*q+r*r))
	w *= w
	return (2*r*w/(w*w+w*q+q2) + m) / d
}

// refine applies one fourth-order correction to the starter guess. The
// high order absorbs the starter's ~1e-4 rad residual in a single step.
func refine(m, e, ecc float64) float64 {
	ome := 1 - e
	sE := ecc - math.Sin(ecc)
	cE := 1 - math.Cos(ecc)

	f0 := e*sE + ecc*ome - m
	f1 := e*cE + ome
	f2 := e * (ecc - sE)
	f3 := 1 - f1
	d3 := -f0 / (f1 - 0.5*f0*f2/f1)
	d4 := -f0 / (f1 + 0.5*d3*f2 + d3*d3*f3/6)
	d42 := d4 * d4
	dE := -f0 / (f1 + 0.5*d4*f2 + d42*f3/6 - d42*d4*f2/24)

	return ecc + dE
}

// solveValue solves Kepler's equation in plain float64. The mean anomaly
// is reduced to [0, 2pi) and mirrored onto [0, pi] for conditioning; the
// result is mirrored back.
func solveValue(m, e float64) float64 {
	m = math.Mod(m, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}

	high := m > math.Pi
	if high {
		m = 2*math.Pi - m
	}

	ecc := refine(m, e, starter(m, e))

	if high {
		ecc = 2*math.Pi - ecc
	}
	return ecc
}

// Solve returns the eccentric anomaly for the given mean anomaly and
// eccentricity. The value is computed in float64 and the dual tangent is
// assembled from the implicit-function derivative rule, so gradients stay
// stable even where the refinement formula's own derivative would be
// noisy.
func Solve(meanAnom, ecc dual.Num) dual.Num {
	e := solveValue(meanAnom.V, ecc.V)

	dEdM := 1 / (1 - ecc.V*math.Cos(e))
	dEde := math.Sin(e) * dEdM

	return dual.Num{V: e, D: dEdM*meanAnom.D + dEde*ecc.D}
}

// TrueFromEccentric converts eccentric anomaly to true anomaly through
// the half-angle tangent relation. Routing through SafeAtan2 keeps the
// conversion continuous and differentiable at E = pi, where the naive
// arctan(tan(...)) form branches.
func TrueFromEccentric(ecc, e dual.Num) dual.Num {
	half := ecc.Scale(0.5)
	y := dual.SafeSqrt(e.Shift(1)).Mul(dual.Sin(half))
	x := dual.SafeSqrt(e.Neg().Shift(1)).Mul(dual.Cos(half))
	return dual.SafeAtan2(y, x).Scale(2)
}

// MeanFromTrue converts true anomaly to mean anomaly; the inverse
// direction of the solver, used to place the dust turn-on/turn-off arc.
func MeanFromTrue(trueAnom, e dual.Num) dual.Num {
	// tan(E/2) = sqrt((1-e)/(1+e)) * tan(nu/2)
	factor := dual.SafeSqrt(e.Neg().Shift(1).Div(e.Shift(1)))
	ecc := dual.SafeAtan2(dual.Tan(trueAnom.Scale(0.5)), dual.Con(1).Div(factor)).Scale(2)
	return ecc.Sub(e.Mul(dual.Sin(ecc)))
}
