package orbit

import (
	"math"
	"testing"

	"github.com/wrplume/plumesim/internal/dual"
)

func vecClose(t *testing.T, got Vec3, want [3]float64, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(got[i].V-want[i]) > tol {
			t.Errorf("component %d = %.9f, want %.9f", i, got[i].V, want[i])
		}
	}
}

func TestRotateZQuarterTurn(t *testing.T) {
	v := Vec3{dual.Con(1), dual.Con(0), dual.Con(0)}
	got := RotateZ(dual.Con(math.Pi/2), v)
	vecClose(t, got, [3]float64{0, 1, 0}, 1e-12)
}

func TestRotateXQuarterTurn(t *testing.T) {
	v := Vec3{dual.Con(0), dual.Con(1), dual.Con(0)}
	got := RotateX(dual.Con(math.Pi/2), v)
	vecClose(t, got, [3]float64{0, 0, 1}, 1e-12)
}

func TestEulerRotateIdentity(t *testing.T) {
	v := Vec3{dual.Con(1.5), dual.Con(-2.5), dual.Con(0.5)}
	got := EulerRotate(v, dual.Con(0), dual.Con(0), dual.Con(0))
	vecClose(t, got, [3]float64{1.5, -2.5, 0.5}, 1e-12)
}

func TestEulerRotatePreservesNorm(t *testing.T) {
	v := Vec3{dual.Con(3), dual.Con(-4), dual.Con(12)}
	got := EulerRotate(v, dual.Con(47), dual.Con(112), dual.Con(-31))
	if math.Abs(got.Norm().V-13) > 1e-10 {
		t.Errorf("rotation changed norm: %.12f, want 13", got.Norm().V)
	}
}

func TestEulerRotateInclinationOnly(t *testing.T) {
	// A 90 degree inclination maps the orbital y-axis onto the sky z-axis
	// (rotation by -i about x sends y to -z... with the negated-angle
	// convention y maps to (0, cos(-i), sin(-i)) = (0, 0, -1)).
	v := Vec3{dual.Con(0), dual.Con(1), dual.Con(0)}
	got := EulerRotate(v, dual.Con(0), dual.Con(90), dual.Con(0))
	vecClose(t, got, [3]float64{0, 0, -1}, 1e-12)
}

func TestSemiMajorAxesEarthSun(t *testing.T) {
	// One solar mass, negligible secondary, one-year period: the
	// secondary's semi-major axis should be ~1 AU.
	a1, a2 := SemiMajorAxes(dual.Con(YearSeconds), dual.Con(1), dual.Con(1e-9))
	auM := AUKm * 1e3
	if math.Abs(a2.V-auM)/auM > 0.01 {
		t.Errorf("a2 = %.4g m, want ~%.4g m", a2.V, auM)
	}
	// The primary barely moves.
	if a1.V > 1e-6*a2.V {
		t.Errorf("a1 = %.4g m, expected negligible", a1.V)
	}
}

func TestSemiMajorAxesMassRatio(t *testing.T) {
	a1, a2 := SemiMajorAxes(dual.Con(YearSeconds*10), dual.Con(10), dual.Con(5))
	// a1/a2 = m2/m1.
	ratio := a1.V / a2.V
	if math.Abs(ratio-0.5) > 1e-9 {
		t.Errorf("a1/a2 = %.9f, want 0.5", ratio)
	}
}

func TestProjectToSkySmallAngle(t *testing.T) {
	// 1 AU at 1 parsec subtends very nearly 1 arcsecond.
	v := Vec3{dual.Con(AUKm), dual.Con(0), dual.Con(0)}
	got := ProjectToSky(v, dual.Con(1))
	if math.Abs(got[0].V-1) > 1e-4 {
		t.Errorf("1 AU at 1 pc = %.6f arcsec, want ~1", got[0].V)
	}
}

func TestProjectToSkyGradient(t *testing.T) {
	// Derivative w.r.t. distance by finite differences.
	v := Vec3{dual.Con(1e9), dual.Con(0), dual.Con(0)}
	d := 2400.0
	got := ProjectToSky(v, dual.Var(d))[0].D

	h := 1e-3
	hi := ProjectToSky(v, dual.Con(d+h))[0].V
	lo := ProjectToSky(v, dual.Con(d-h))[0].V
	want := (hi - lo) / (2 * h)
	if math.Abs(got-want)/math.Abs(want) > 1e-5 {
		t.Errorf("d(proj)/d(dist) = %.9g, finite difference %.9g", got, want)
	}
}
