// Package orbit provides the frame machinery for the binary: rotation
// matrices, the Z-X-Z Euler transform from the orbital frame to the sky
// frame, Kepler's-third-law semi-major axes, and the projection from
// physical to angular coordinates.
package orbit

import (
	"math"

	"github.com/wrplume/plumesim/internal/dual"
)

// Physical constants (SI unless noted).
const (
	GravConst   = 6.67e-11 // gravitational constant, m^3 kg^-1 s^-2
	SolarMassKg = 1.98e30  // solar mass, kg

	YearSeconds = 365.25 * 24 * 60 * 60
	AUKm        = 1.496e8 // kilometers per AU
	ParsecKm    = 3.086e13

	// ArcsecPerRad converts small angles in radians to arcseconds.
	ArcsecPerRad = 60 * 60 * 180 / math.Pi
)

// Vec3 is a 3-vector of dual numbers.
type Vec3 [3]dual.Num

// Norm returns the Euclidean length, safe to differentiate at the origin.
func (v Vec3) Norm() dual.Num {
	return dual.SafeSqrt(v[0].Mul(v[0]).Add(v[1].Mul(v[1])).Add(v[2].Mul(v[2])))
}

// Scale multiplies every component by s.
func (v Vec3) Scale(s dual.Num) Vec3 {
	return Vec3{v[0].Mul(s), v[1].Mul(s), v[2].Mul(s)}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0].Add(w[0]), v[1].Add(w[1]), v[2].Add(w[2])}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0].Sub(w[0]), v[1].Sub(w[1]), v[2].Sub(w[2])}
}

// RotateX rotates v about the x-axis by angle (radians).
func RotateX(angle dual.Num, v Vec3) Vec3 {
	c, s := dual.Cos(angle), dual.Sin(angle)
	return Vec3{
		v[0],
		c.Mul(v[1]).Sub(s.Mul(v[2])),
		s.Mul(v[1]).Add(c.Mul(v[2])),
	}
}

// RotateY rotates v about the y-axis by angle (radians).
func RotateY(angle dual.Num, v Vec3) Vec3 {
	c, s := dual.Cos(angle), dual.Sin(angle)
	return Vec3{
		c.Mul(v[0]).Add(s.Mul(v[2])),
		v[1],
		c.Mul(v[2]).Sub(s.Mul(v[0])),
	}
}

// RotateZ rotates v about the z-axis by angle (radians).
func RotateZ(angle dual.Num, v Vec3) Vec3 {
	c, s := dual.Cos(angle), dual.Sin(angle)
	return Vec3{
		c.Mul(v[0]).Sub(s.Mul(v[1])),
		s.Mul(v[0]).Add(c.Mul(v[1])),
		v[2],
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(a dual.Num) dual.Num { return a.Scale(math.Pi / 180) }

// EulerRotate maps coordinates from the orbital frame to the observer's
// sky frame given the longitude of the ascending node, inclination, and
// argument of periapsis (all degrees). The rotation order is the fixed
// Z-X-Z convention with each angle negated, matching the sign convention
// of the orbital-element transform.
func EulerRotate(v Vec3, ascNode, inclination, argPeri dual.Num) Vec3 {
	v = RotateZ(Deg2Rad(argPeri).Neg(), v)
	v = RotateX(Deg2Rad(inclination).Neg(), v)
	return RotateZ(Deg2Rad(ascNode).Neg(), v)
}

// SemiMajorAxes applies Kepler's third law to split the total separation
// by mass ratio. Period is in seconds, masses in solar masses; the
// returned semi-major axes are in meters, each measured from the
// barycenter.
func SemiMajorAxes(periodSec, m1, m2 dual.Num) (a1, a2 dual.Num) {
	m1kg := m1.Scale(SolarMassKg)
	m2kg := m2.Scale(SolarMassKg)
	totalKg := m1kg.Add(m2kg)

	mu := totalKg.Scale(GravConst)
	p := periodSec.Scale(1 / (2 * math.Pi))
	a := dual.Cbrt(p.Mul(p).Mul(mu))

	a1 = m2kg.Div(totalKg).Mul(a)
	a2 = a.Sub(a1)
	return a1, a2
}

// ProjectToSky converts physical transverse coordinates (km) at the given
// distance (parsecs) to angular coordinates (arcseconds).
func ProjectToSky(v Vec3, distancePc dual.Num) Vec3 {
	d := distancePc.Scale(ParsecKm)
	return Vec3{
		dual.Atan(v[0].Div(d)).Scale(ArcsecPerRad),
		dual.Atan(v[1].Div(d)).Scale(ArcsecPerRad),
		dual.Atan(v[2].Div(d)).Scale(ArcsecPerRad),
	}
}
