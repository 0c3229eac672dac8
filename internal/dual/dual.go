// Package dual implements forward-mode dual-number arithmetic for the
// plume pipeline. A Num carries a value and the derivative of that value
// with respect to a single seed parameter, so one simulation pass yields
// both an image and its gradient along the chosen parameter direction.
//
// The Safe* functions implement the hand-defined derivative rules the
// fitting pipeline depends on: at singular inputs (sqrt at zero, atan2 at
// the origin, acos at +/-1) they return a bounded tangent instead of
// propagating NaN.
package dual

import "math"

// eps is the float64 machine epsilon; singular-point guards trigger
// within 10*eps of the singularity.
const eps = 2.220446049250313e-16

const tol = 10 * eps

// Num is a dual number: value V and derivative D with respect to the
// seeded parameter.
type Num struct {
	V float64
	D float64
}

// Con returns a constant: derivative zero.
func Con(v float64) Num { return Num{V: v} }

// Var returns a seeded variable: derivative one.
func Var(v float64) Num { return Num{V: v, D: 1} }

func (a Num) Add(b Num) Num { return Num{a.V + b.V, a.D + b.D} }
func (a Num) Sub(b Num) Num { return Num{a.V - b.V, a.D - b.D} }
func (a Num) Mul(b Num) Num { return Num{a.V * b.V, a.V*b.D + a.D*b.V} }
func (a Num) Div(b Num) Num {
	return Num{a.V / b.V, (a.D*b.V - a.V*b.D) / (b.V * b.V)}
}
func (a Num) Neg() Num { return Num{-a.V, -a.D} }

// Scale multiplies by a plain constant.
func (a Num) Scale(c float64) Num { return Num{c * a.V, c * a.D} }

// Shift adds a plain constant.
func (a Num) Shift(c float64) Num { return Num{a.V + c, a.D} }

func Sin(a Num) Num { return Num{math.Sin(a.V), math.Cos(a.V) * a.D} }
func Cos(a Num) Num { return Num{math.Cos(a.V), -math.Sin(a.V) * a.D} }

func Tan(a Num) Num {
	t := math.Tan(a.V)
	return Num{t, (1 + t*t) * a.D}
}

func Tanh(a Num) Num {
	t := math.Tanh(a.V)
	return Num{t, (1 - t*t) * a.D}
}

func Exp(a Num) Num {
	e := math.Exp(a.V)
	return Num{e, e * a.D}
}

func Atan(a Num) Num {
	return Num{math.Atan(a.V), a.D / (1 + a.V*a.V)}
}

func Cbrt(a Num) Num {
	c := math.Cbrt(a.V)
	d := 0.0
	if math.Abs(a.V) > tol {
		d = a.D / (3 * c * c)
	}
	return Num{c, d}
}

func Abs(a Num) Num {
	if a.V < 0 {
		return a.Neg()
	}
	return a
}

// Min and Max select by value; the derivative follows the selected branch.
func Min(a, b Num) Num {
	if a.V <= b.V {
		return a
	}
	return b
}

func Max(a, b Num) Num {
	if a.V >= b.V {
		return a
	}
	return b
}

// Clamp restricts a to [lo, hi]; the derivative is zero on the clamped
// ranges.
func Clamp(a Num, lo, hi float64) Num {
	if a.V < lo {
		return Con(lo)
	}
	if a.V > hi {
		return Con(hi)
	}
	return a
}

// Mod reduces a into [0, m) for a constant positive modulus. The
// derivative passes through unchanged away from the wrap points.
func Mod(a Num, m float64) Num {
	v := math.Mod(a.V, m)
	if v < 0 {
		v += m
	}
	return Num{v, a.D}
}

// ModN reduces a into [0, m) for a dual modulus, as a - m*floor(a/m).
func ModN(a, m Num) Num {
	k := math.Floor(a.V / m.V)
	return Num{a.V - k*m.V, a.D - k*m.D}
}

// Step is the heaviside function: 0 for x < 0, 1 for x > 0, and atZero
// exactly at zero. Its derivative is identically zero, so it returns a
// plain float.
func Step(x Num, atZero float64) float64 {
	switch {
	case x.V > 0:
		return 1
	case x.V < 0:
		return 0
	default:
		return atZero
	}
}

// Sign returns -1, 0 or 1 by value; zero derivative.
func Sign(x Num) float64 {
	switch {
	case x.V > 0:
		return 1
	case x.V < 0:
		return -1
	default:
		return 0
	}
}

// SafeSqrt is sqrt with a guarded tangent: within 10*eps of zero the
// tangent denominator is replaced by 1, so the derivative at zero is
// bounded instead of infinite.
func SafeSqrt(a Num) Num {
	v := math.Sqrt(a.V)
	denom := 1.0
	if a.V > tol {
		denom = v
	}
	return Num{v, 0.5 * a.D / denom}
}

// SafeAtan2 is atan2(y, x) with a guarded tangent: when both arguments
// are within 10*eps of zero the tangent denominator x^2+y^2 is replaced
// by 1.
func SafeAtan2(y, x Num) Num {
	v := math.Atan2(y.V, x.V)
	denom := x.V*x.V + y.V*y.V
	if math.Abs(x.V) < tol && math.Abs(y.V) < tol {
		denom = 1
	}
	return Num{v, (x.V*y.D - y.V*x.D) / denom}
}

// SafeAcos is acos with a guarded tangent at |x| -> 1, where the exact
// derivative -1/sqrt(1-x^2) diverges.
func SafeAcos(a Num) Num {
	v := math.Acos(math.Max(-1, math.Min(1, a.V)))
	s := 1 - a.V*a.V
	denom := 1.0
	if s > tol {
		denom = math.Sqrt(s)
	}
	return Num{v, -a.D / denom}
}

// Pow computes a**p for a non-negative base, with the tangent zeroed when
// the base is within 10*eps of zero (where the log term diverges).
func Pow(a, p Num) Num {
	v := math.Pow(a.V, p.V)
	d := 0.0
	if a.V > tol {
		d = v * (p.D*math.Log(a.V) + p.V*a.D/a.V)
	}
	return Num{v, d}
}

// Pow10 computes 10**a.
func Pow10(a Num) Num {
	v := math.Pow(10, a.V)
	return Num{v, v * math.Ln10 * a.D}
}

// IsFinite reports whether both the value and the derivative are finite.
func IsFinite(a Num) bool {
	return !math.IsNaN(a.V) && !math.IsInf(a.V, 0) &&
		!math.IsNaN(a.D) && !math.IsInf(a.D, 0)
}
