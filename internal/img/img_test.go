package img

import (
	"math"
	"testing"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/plume"
)

func cloudOf(pts [][3]float64, ws []float64) *plume.Cloud {
	c := &plume.Cloud{
		X: make([]dual.Num, len(pts)),
		Y: make([]dual.Num, len(pts)),
		Z: make([]dual.Num, len(pts)),
		W: make([]dual.Num, len(ws)),
	}
	for i, p := range pts {
		c.X[i] = dual.Con(p[0])
		c.Y[i] = dual.Con(p[1])
		c.Z[i] = dual.Con(p[2])
	}
	for i, w := range ws {
		c.W[i] = dual.Con(w)
	}
	return c
}

func TestSplatConservesMass(t *testing.T) {
	cloud := cloudOf([][3]float64{
		{0.13, -0.27, 0},
		{-0.91, 0.44, 0},
		{0.02, 0.03, 0},
		{0.555, -0.555, 0},
	}, []float64{1.0, 0.25, 3.5, 0.8})

	g := SquareGrid(dual.Con(2), 64)
	im := Splat(cloud, g)

	want := 1.0 + 0.25 + 3.5 + 0.8
	if got := im.Mass().V; math.Abs(got-want) > 1e-10 {
		t.Errorf("total mass = %g, want %g", got, want)
	}
}

func TestSplatCellCenteredParticle(t *testing.T) {
	// a 4x4 grid over [-2, 2] has cell centers at odd half-integers; a
	// particle exactly on one deposits everything into that pixel
	g := SquareGrid(dual.Con(2), 4)
	cloud := cloudOf([][3]float64{{-1.5, 0.5, 0}}, []float64{2})
	im := Splat(cloud, g)

	if got := im.At(0, 2).V; math.Abs(got-2) > 1e-12 {
		t.Errorf("home pixel = %g, want 2", got)
	}
	if got := im.Mass().V; math.Abs(got-2) > 1e-12 {
		t.Errorf("total mass = %g, want 2", got)
	}
}

func TestSplatOutOfBoundsDropped(t *testing.T) {
	g := SquareGrid(dual.Con(1), 8)
	cloud := cloudOf([][3]float64{{5, 5, 0}}, []float64{1})
	im := Splat(cloud, g)
	if got := im.Mass().V; got != 0 {
		t.Errorf("mass from out-of-bounds particle = %g, want 0", got)
	}
}

func TestConvolvePreservesMass(t *testing.T) {
	g := SquareGrid(dual.Con(1), 64)
	im := NewImage(g)
	im.Pix[32*64+32] = dual.Con(1)
	im.Pix[30*64+20] = dual.Con(0.5)

	out := ConvolveGaussian(im, dual.Con(2))
	if got := out.Mass().V; math.Abs(got-1.5) > 1e-8 {
		t.Errorf("mass after blur = %g, want 1.5", got)
	}
	if peak := out.At(32, 32).V; peak >= 1 {
		t.Errorf("blurred peak = %g, want < 1", peak)
	}
	if err := out.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestConvolveSigmaGradient(t *testing.T) {
	g := SquareGrid(dual.Con(1), 32)
	im := NewImage(g)
	im.Pix[16*32+16] = dual.Con(1)

	sigma := 1.5
	out := ConvolveGaussian(im, dual.Var(sigma))

	// finite-difference reference for a few probe pixels
	h := 1e-6
	lo := ConvolveGaussian(im, dual.Con(sigma-h))
	hi := ConvolveGaussian(im, dual.Con(sigma+h))
	for _, p := range [][2]int{{16, 16}, {18, 16}, {16, 13}} {
		fd := (hi.At(p[0], p[1]).V - lo.At(p[0], p[1]).V) / (2 * h)
		got := out.At(p[0], p[1]).D
		if math.Abs(got-fd) > 1e-4*math.Max(1, math.Abs(fd)) {
			t.Errorf("d/dsigma at %v = %g, finite difference %g", p, got, fd)
		}
	}
}

func TestNormalizeClip(t *testing.T) {
	g := SquareGrid(dual.Con(1), 4)
	im := NewImage(g)
	im.Pix[0] = dual.Con(4)
	im.Pix[1] = dual.Con(2)
	im.Pix[2] = dual.Con(1)

	NormalizeClip(im, dual.Con(0.5), dual.Con(1))
	if got := im.maxPix().V; math.Abs(got-1) > 1e-12 {
		t.Errorf("max after normalize = %g, want 1", got)
	}
	// 4 and 2 both clip at histmax and end up equal
	if a, b := im.Pix[0].V, im.Pix[1].V; a != b {
		t.Errorf("clipped pixels differ: %g vs %g", a, b)
	}
	if got := im.Pix[2].V; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sub-clip pixel = %g, want 0.5", got)
	}
}

func TestNormalizeClipEmptyImage(t *testing.T) {
	im := NewImage(SquareGrid(dual.Con(1), 4))
	NormalizeClip(im, dual.Con(1), dual.Con(2))
	if err := im.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := im.Mass().V; got != 0 {
		t.Errorf("empty image mass = %g, want 0", got)
	}
}

func TestNormalizeClipIdempotent(t *testing.T) {
	g := SquareGrid(dual.Con(1), 4)
	im := NewImage(g)
	im.Pix[0] = dual.Con(3)
	im.Pix[5] = dual.Con(1.2)
	im.Pix[9] = dual.Con(0.4)

	NormalizeClip(im, dual.Con(1), dual.Con(1))
	snapshot := append([]dual.Num(nil), im.Pix...)
	NormalizeClip(im, dual.Con(1), dual.Con(1))
	for i := range im.Pix {
		if math.Abs(im.Pix[i].V-snapshot[i].V) > 1e-12 {
			t.Fatalf("pixel %d changed on second pass: %g vs %g",
				i, im.Pix[i].V, snapshot[i].V)
		}
	}
}

func TestNormalizeClipLumPower(t *testing.T) {
	g := SquareGrid(dual.Con(1), 4)
	im := NewImage(g)
	im.Pix[0] = dual.Con(1)
	im.Pix[1] = dual.Con(0.25)

	NormalizeClip(im, dual.Con(1), dual.Con(0.5))
	if got := im.Pix[1].V; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("pixel after exponent 0.5 = %g, want 0.5", got)
	}
}

func TestOverlayStars(t *testing.T) {
	g := SquareGrid(dual.Con(1), 33)
	im := NewImage(g)
	im.Pix[0] = dual.Con(0.1)

	OverlayStars(im, []StarSprite{{
		X: dual.Con(0), Y: dual.Con(0), Amp: dual.Con(5), SD: dual.Con(0.1),
	}})
	if got := im.maxPix().V; math.Abs(got-1) > 1e-12 {
		t.Errorf("max after overlay = %g, want 1", got)
	}
	// the star sits at the grid center
	if got := im.At(16, 16).V; math.Abs(got-1) > 1e-12 {
		t.Errorf("center pixel = %g, want 1", got)
	}
}
