// Package render composes the full forward model: particle cloud
// simulation, splatting, point-spread blur, display normalization and
// star overlays, producing either a single sky image or a lightcurve
// across orbital phases. Gradients seeded in the simulation config flow
// through to the output pixels.
package render

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/img"
	"github.com/wrplume/plumesim/internal/metrics"
	"github.com/wrplume/plumesim/internal/plume"
)

// defaultSize is the image side in pixels when the caller does not pick one.
const defaultSize = 256

// lightcurveTopPixels is how many of the brightest pixels are averaged
// into one flux sample.
const lightcurveTopPixels = 50

// Options selects the imaging stage behavior for one render.
type Options struct {
	Size  int       // image side in pixels; 0 means defaultSize
	Grid  *img.Grid // fixed observation grid; nil derives the field of view from the cloud
	Stars bool      // overlay the stellar point sources
}

// Renderer owns a plume assembler and turns parameter sets into images.
type Renderer struct {
	logger    *slog.Logger
	assembler *plume.Assembler
}

// New creates a renderer logging to the given logger.
func New(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger, assembler: plume.NewAssembler(logger)}
}

// Render simulates the plume for p and produces the normalized sky
// image. The imaging parameters are lifted with the same gradient seed
// as the simulation, so a single call yields d(image)/d(parameter) for
// any parameter in either stage.
func (r *Renderer) Render(ctx context.Context, p plume.Params, cfg plume.Config, opts Options) (*img.Image, error) {
	start := time.Now()

	cloud, err := r.assembler.Simulate(ctx, p, cfg)
	if err != nil {
		return nil, err
	}
	dp, err := plume.Lift(p, cfg.Gradient)
	if err != nil {
		return nil, err
	}

	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	var grid img.Grid
	if opts.Grid != nil {
		grid = *opts.Grid
	} else {
		grid = img.BoundingGrid(cloud, size)
	}

	image := img.ConvolveGaussian(img.Splat(cloud, grid), dp.Sigma)
	img.NormalizeClip(image, dp.Histmax, dp.LumPower)
	if opts.Stars {
		img.OverlayStars(image, starSprites(dp))
	}
	if err := image.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	metrics.RecordRender(duration)
	r.logger.Debug("image rendered",
		"size", grid.Size(),
		"particles", cloud.Len(),
		"duration_ms", duration.Milliseconds(),
	)
	return image, nil
}

// starSprites builds the point-source overlays for the two orbiting
// stars and the tertiary companion. Sources with zero amplitude are
// skipped.
func starSprites(dp *plume.DualParams) []img.StarSprite {
	pos1, pos2 := plume.StarPositions(dp)
	pos3 := plume.CompanionPosition(dp)
	all := []img.StarSprite{
		{X: pos1[0], Y: pos1[1], Amp: dp.Star1Amp, SD: dual.Pow10(dp.Star1SD)},
		{X: pos2[0], Y: pos2[1], Amp: dp.Star2Amp, SD: dual.Pow10(dp.Star2SD)},
		{X: pos3[0], Y: pos3[1], Amp: dp.Star3Amp, SD: dual.Pow10(dp.Star3SD)},
	}
	sprites := all[:0]
	for _, s := range all {
		if s.Amp.V != 0 {
			sprites = append(sprites, s)
		}
	}
	return sprites
}

// Lightcurve evaluates the model flux over the given orbital phases.
// Each sample rebuilds the cloud at that phase, splats and blurs it on
// a self-determined grid, clips bright pixels at histmax times the
// maximum, and averages the brightest pixels into one flux value.
func (r *Renderer) Lightcurve(ctx context.Context, p plume.Params, cfg plume.Config, phases []float64, size int) ([]dual.Num, error) {
	if size <= 0 {
		size = defaultSize
	}
	out := make([]dual.Num, len(phases))
	for i, ph := range phases {
		q := p
		q.Phase = ph
		cloud, err := r.assembler.Simulate(ctx, q, cfg)
		if err != nil {
			return nil, err
		}
		dp, err := plume.Lift(q, cfg.Gradient)
		if err != nil {
			return nil, err
		}

		grid := img.BoundingGrid(cloud, size)
		image := img.ConvolveGaussian(img.Splat(cloud, grid), dp.Sigma)

		max := dual.Con(0)
		for _, v := range image.Pix {
			max = dual.Max(max, v)
		}
		ceiling := max.Mul(dp.Histmax)
		pix := make([]dual.Num, len(image.Pix))
		for j, v := range image.Pix {
			pix[j] = dual.Min(v, ceiling)
		}
		sort.Slice(pix, func(a, b int) bool { return pix[a].V > pix[b].V })
		k := lightcurveTopPixels
		if len(pix) < k {
			k = len(pix)
		}
		flux := dual.Con(0)
		for _, v := range pix[:k] {
			flux = flux.Add(v)
		}
		out[i] = flux.Scale(1 / float64(k))
	}
	return out, nil
}
