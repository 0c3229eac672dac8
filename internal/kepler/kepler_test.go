package kepler

import (
	"math"
	"testing"

	"github.com/wrplume/plumesim/internal/dual"
)

func TestSolveResidual(t *testing.T) {
	// Re-substituting E into Kepler's equation must reproduce M to 1e-10
	// across the full circle and eccentricities up to 0.95.
	for _, e := range []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 0.95} {
		for i := 0; i < 400; i++ {
			m := 2 * math.Pi * float64(i) / 400
			E := Solve(dual.Con(m), dual.Con(e)).V
			back := E - e*math.Sin(E)
			back = math.Mod(back, 2*math.Pi)
			if back < 0 {
				back += 2 * math.Pi
			}

			diff := math.Abs(back - m)
			if diff > math.Pi {
				diff = 2*math.Pi - diff
			}
			if diff > 1e-10 {
				t.Fatalf("e=%.2f M=%.6f: residual %.3e", e, m, diff)
			}
		}
	}
}

func TestSolveDerivativeMatchesRule(t *testing.T) {
	// dE/dM from the dual tangent must match finite differences to 1e-6
	// relative, away from e ~ 1.
	for _, e := range []float64{0.1, 0.5, 0.8} {
		for _, m := range []float64{0.3, 1.2, 2.5, 4.0, 5.8} {
			got := Solve(dual.Var(m), dual.Con(e)).D

			h := 1e-6
			want := (Solve(dual.Con(m+h), dual.Con(e)).V - Solve(dual.Con(m-h), dual.Con(e)).V) / (2 * h)
			if math.Abs(got-want)/math.Abs(want) > 1e-6 {
				t.Errorf("e=%.1f M=%.1f: dE/dM = %.12f, finite difference %.12f", e, m, got, want)
			}

			// And it must equal the analytic rule exactly.
			E := Solve(dual.Con(m), dual.Con(e)).V
			rule := 1 / (1 - e*math.Cos(E))
			if got != rule {
				t.Errorf("e=%.1f M=%.1f: dE/dM = %.17g, rule %.17g", e, m, got, rule)
			}
		}
	}
}

func TestSolveEccentricityDerivative(t *testing.T) {
	for _, m := range []float64{0.7, 2.1, 3.9} {
		e := 0.6
		got := Solve(dual.Con(m), dual.Var(e)).D

		h := 1e-6
		want := (Solve(dual.Con(m), dual.Con(e+h)).V - Solve(dual.Con(m), dual.Con(e-h)).V) / (2 * h)
		if math.Abs(got-want)/math.Max(math.Abs(want), 1e-9) > 1e-5 {
			t.Errorf("M=%.1f: dE/de = %.10f, finite difference %.10f", m, got, want)
		}
	}
}

func TestTrueFromEccentricContinuity(t *testing.T) {
	// No branch jump across E = pi.
	for _, e := range []float64{0, 0.3, 0.7, 0.95} {
		lo := TrueFromEccentric(dual.Con(math.Pi-1e-7), dual.Con(e)).V
		hi := TrueFromEccentric(dual.Con(math.Pi+1e-7), dual.Con(e)).V

		// Wrap both into [0, 2pi) before comparing.
		lo = math.Mod(lo+2*math.Pi, 2*math.Pi)
		hi = math.Mod(hi+2*math.Pi, 2*math.Pi)
		if math.Abs(hi-lo) > 1e-5 {
			t.Errorf("e=%.2f: true anomaly jumps across E=pi: %.9f vs %.9f", e, lo, hi)
		}
	}
}

func TestTrueFromEccentricCircular(t *testing.T) {
	// For e = 0 the true anomaly equals the eccentric anomaly.
	for _, E := range []float64{0.1, 1.0, 2.0, 3.0} {
		nu := TrueFromEccentric(dual.Con(E), dual.Con(0)).V
		if math.Abs(nu-E) > 1e-12 {
			t.Errorf("e=0: nu(%.1f) = %.12f, want %.12f", E, nu, E)
		}
	}
}

func TestMeanFromTrueRoundTrip(t *testing.T) {
	// MeanFromTrue then Solve then TrueFromEccentric must return the
	// original true anomaly.
	for _, e := range []float64{0.1, 0.5, 0.8} {
		for _, nu := range []float64{-2.5, -1.0, 0.4, 1.8, 2.9} {
			m := MeanFromTrue(dual.Con(nu), dual.Con(e))
			E := Solve(m, dual.Con(e))
			back := TrueFromEccentric(E, dual.Con(e)).V

			diff := math.Abs(back - nu)
			diff = math.Min(diff, math.Abs(diff-2*math.Pi))
			if diff > 1e-8 {
				t.Errorf("e=%.1f nu=%.1f: round trip gives %.9f", e, nu, back)
			}
		}
	}
}
