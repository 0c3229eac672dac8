package render

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/wrplume/plumesim/internal/plume"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// a compact eccentric system in the style of Apep
func testParams() plume.Params {
	return plume.Params{
		M1: 15, M2: 10,
		Eccentricity: 0.7,
		Inclination:  25, AscNode: 164, ArgPeri: 11,
		Period: 125, Distance: 2400, Phase: 0.6,
		WindSpeed1: 700, WindSpeed2: 2100, TermWindSpeed: 700,
		WindSpeedPolar: 700, AccelRate: -2,
		OpenAngle: 125, OpenAnglePolar: 125,
		AnisoVelPower: 1, AnisoOAPower: 1,
		TurnOn:    -114, TurnOff: 150, GradualTurn: 10,
		Histmax: 1, LumPower: 1, Sigma: 2,
	}
}

func testConfig() plume.Config {
	return plume.Config{
		OrbitShells:      1,
		RingsPerOrbit:    60,
		ParticlesPerRing: 40,
		Workers:          2,
	}
}

func TestRenderProducesNormalizedImage(t *testing.T) {
	r := New(testLogger())
	im, err := r.Render(context.Background(), testParams(), testConfig(), Options{Size: 64})
	if err != nil {
		t.Fatal(err)
	}
	if got := im.Size(); got != 64 {
		t.Fatalf("image size = %d, want 64", got)
	}
	max := 0.0
	for _, v := range im.Pix {
		if v.V < 0 {
			t.Fatalf("negative pixel %g", v.V)
		}
		max = math.Max(max, v.V)
	}
	if math.Abs(max-1) > 1e-9 {
		t.Errorf("max pixel = %g, want 1", max)
	}
}

func TestRenderPhasePeriodicity(t *testing.T) {
	r := New(testLogger())
	cfg := testConfig()

	p := testParams()
	a, err := r.Render(context.Background(), p, cfg, Options{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	p.Phase += 1
	b, err := r.Render(context.Background(), p, cfg, Options{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Pix {
		if math.Abs(a.Pix[i].V-b.Pix[i].V) > 1e-6 {
			t.Fatalf("pixel %d differs across a whole orbit: %g vs %g",
				i, a.Pix[i].V, b.Pix[i].V)
		}
	}
}

func TestRenderGradientFinite(t *testing.T) {
	r := New(testLogger())
	cfg := testConfig()
	cfg.Gradient = "eccentricity"

	im, err := r.Render(context.Background(), testParams(), cfg, Options{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	nonzero := false
	for _, v := range im.Pix {
		if v.D != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("eccentricity gradient is identically zero")
	}
}

func TestRenderUnknownGradient(t *testing.T) {
	r := New(testLogger())
	cfg := testConfig()
	cfg.Gradient = "not_a_parameter"
	if _, err := r.Render(context.Background(), testParams(), cfg, Options{Size: 32}); err == nil {
		t.Fatal("expected error for unknown gradient parameter")
	}
}

func TestRenderWithStars(t *testing.T) {
	p := testParams()
	p.Star1Amp, p.Star1SD = 0.4, -2
	p.Star2Amp, p.Star2SD = 0.3, -2

	r := New(testLogger())
	im, err := r.Render(context.Background(), p, testConfig(), Options{Size: 64, Stars: true})
	if err != nil {
		t.Fatal(err)
	}
	max := 0.0
	for _, v := range im.Pix {
		max = math.Max(max, v.V)
	}
	if math.Abs(max-1) > 1e-9 {
		t.Errorf("max pixel after star overlay = %g, want 1", max)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(testLogger())
	if _, err := r.Render(ctx, testParams(), testConfig(), Options{Size: 32}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestLightcurve(t *testing.T) {
	r := New(testLogger())
	cfg := testConfig()
	cfg.Gradient = "open_angle"

	phases := []float64{0.1, 0.4, 0.7}
	flux, err := r.Lightcurve(context.Background(), testParams(), cfg, phases, 48)
	if err != nil {
		t.Fatal(err)
	}
	if len(flux) != len(phases) {
		t.Fatalf("got %d samples, want %d", len(flux), len(phases))
	}
	for i, f := range flux {
		if math.IsNaN(f.V) || math.IsInf(f.V, 0) || f.V < 0 {
			t.Errorf("flux[%d] = %g", i, f.V)
		}
		if math.IsNaN(f.D) || math.IsInf(f.D, 0) {
			t.Errorf("flux gradient[%d] = %g", i, f.D)
		}
	}
}
