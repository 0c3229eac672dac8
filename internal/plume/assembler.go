// Package plume generates the three-dimensional dust geometry of a
// colliding-wind binary: successive rings of dust emitted near the
// secondary star along the dust-production arc of the orbit, aged by
// the wind velocity law, weighted by the physical gating effects, and
// projected into angular sky coordinates.
package plume

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/kepler"
	"github.com/wrplume/plumesim/internal/metrics"
	"github.com/wrplume/plumesim/internal/orbit"
)

// Rings at exactly +/-180 degrees true anomaly are numerically fragile;
// the production arc is clamped just inside.
const maxTurnAnomalyDeg = 180 - 0.1

// Config controls the discretization of one simulation pass.
type Config struct {
	OrbitShells      int // number of orbital shells (dust generations)
	RingsPerOrbit    int
	ParticlesPerRing int
	Workers          int
	// Gradient names the parameter to differentiate with respect to
	// (TOML key); empty disables gradient seeding.
	Gradient string
}

func (c Config) withDefaults() Config {
	if c.OrbitShells <= 0 {
		c.OrbitShells = 1
	}
	if c.RingsPerOrbit <= 0 {
		c.RingsPerOrbit = 1000
	}
	if c.ParticlesPerRing <= 0 {
		c.ParticlesPerRing = 500
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// Cloud is the assembled particle cloud: positions in angular sky
// coordinates (arcseconds; the first two axes are the sky plane) and a
// weight per particle in [0, 1].
type Cloud struct {
	X, Y, Z []dual.Num
	W       []dual.Num
}

// Len returns the number of particles.
func (c *Cloud) Len() int { return len(c.W) }

// Assembler drives ring generation across the full plume.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a plume assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Simulate builds the full particle cloud for the given parameters.
// Rings are generated independently on a fixed worker pool; each ring
// writes into its own slice segment, so results are identical regardless
// of scheduling order.
func (a *Assembler) Simulate(ctx context.Context, p Params, cfg Config) (*Cloud, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	dp, err := Lift(p, cfg.Gradient)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cloud := a.simulate(ctx, dp, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	metrics.RecordSimulation(duration, cloud.Len())
	a.logger.Debug("plume simulated",
		"rings", cfg.OrbitShells*cfg.RingsPerOrbit,
		"particles", cloud.Len(),
		"duration_ms", duration.Milliseconds(),
	)
	return cloud, nil
}

func (a *Assembler) simulate(ctx context.Context, dp *DualParams, cfg Config) *Cloud {
	nt := cfg.RingsPerOrbit
	nRings := nt * cfg.OrbitShells
	nPart := cfg.ParticlesPerRing

	phase := dual.Mod(dp.Phase, 1)
	phaseRad := phase.Scale(2 * math.Pi)
	periodSec := dp.Period.Scale(orbit.YearSeconds)
	ecc := dp.Eccentricity

	// The production arc in mean anomaly, widened by two gradual-turn
	// sigmas so soft edges are sampled, clamped inside +/-180 degrees.
	onTrue := dual.Max(dual.Con(-maxTurnAnomalyDeg), dp.TurnOn.Sub(dp.GradualTurn.Scale(2)))
	offTrue := dual.Min(dual.Con(maxTurnAnomalyDeg), dp.TurnOff.Add(dp.GradualTurn.Scale(2)))
	onMean := kepler.MeanFromTrue(dual.Mod(orbit.Deg2Rad(onTrue), 2*math.Pi), ecc)
	offMean := kepler.MeanFromTrue(dual.Mod(orbit.Deg2Rad(offTrue), 2*math.Pi), ecc)
	deltaMean := offMean.Sub(onMean)

	a1, a2 := orbit.SemiMajorAxes(periodSec, dp.M1, dp.M2)

	// Base angular positions within a ring; each ring dithers these by
	// its index.
	theta := make([]float64, nPart)
	for k := range theta {
		theta[k] = 2 * math.Pi * float64(k) / float64(nPart-1)
	}

	cloud := &Cloud{
		X: make([]dual.Num, nRings*nPart),
		Y: make([]dual.Num, nRings*nPart),
		Z: make([]dual.Num, nRings*nPart),
		W: make([]dual.Num, nRings*nPart),
	}

	pool := newRingPool(cfg.Workers)
	pool.run(ctx, nRings, func(r int) {
		j := r % nt // position within the shell
		shell := r / nt

		var frac dual.Num
		if nt > 1 {
			frac = deltaMean.Scale(float64(j) / float64(nt-1))
		}
		meanAnom := dual.Mod(onMean.Add(frac), 2*math.Pi)

		// Ring age as a fraction of the period, measured back from the
		// current phase, plus one whole period per extra shell.
		nonDim := dual.Mod(dual.Mod(onMean.Add(frac), 2*math.Pi).Sub(phaseRad).Scale(1/(2*math.Pi)), 1)
		nonDim = nonDim.Shift(float64(shell))

		age := periodSec.Mul(nonDim.Neg().Shift(float64(cfg.OrbitShells)))
		width := nonlinearAccel(age, dp).Mul(age)

		e := kepler.Solve(meanAnom, ecc)
		nu := kepler.TrueFromEccentric(e, ecc)

		// Orbital-frame positions in km; the separation vector orients
		// the ring, the secondary's position is the dust origin.
		sep := ecc.Mul(dual.Cos(e)).Neg().Shift(1)
		r1 := a1.Mul(sep).Scale(1e-3)
		r2 := a2.Mul(sep).Scale(1e-3)
		cosNu, sinNu := dual.Cos(nu), dual.Sin(nu)
		pos1 := orbit.Vec3{r1.Mul(cosNu), r1.Mul(sinNu), dual.Con(0)}
		pos2 := orbit.Vec3{r2.Mul(cosNu).Neg(), r2.Mul(sinNu).Neg(), dual.Con(0)}

		lo, hi := r*nPart, (r+1)*nPart
		xs, ys, zs, ws := cloud.X[lo:hi], cloud.Y[lo:hi], cloud.Z[lo:hi], cloud.W[lo:hi]
		generateRing(r, nu, dp, theta, pos1.Sub(pos2), width, xs, ys, zs, ws)

		for k := 0; k < nPart; k++ {
			v := orbit.Vec3{xs[k], ys[k], zs[k]}.Add(pos2)
			v = orbit.EulerRotate(v, dp.AscNode, dp.Inclination, dp.ArgPeri)
			v = orbit.ProjectToSky(v, dp.Distance)
			xs[k], ys[k], zs[k] = v[0], v[1], v[2]
		}
	})

	return cloud
}

// StarPositions returns the sky-projected positions (arcseconds) of the
// two orbiting stars at the parameter phase, for the image star overlay.
func StarPositions(dp *DualParams) (pos1, pos2 orbit.Vec3) {
	phase := dual.Mod(dp.Phase, 1)
	periodSec := dp.Period.Scale(orbit.YearSeconds)
	ecc := dp.Eccentricity

	e := kepler.Solve(phase.Scale(2*math.Pi), ecc)
	nu := kepler.TrueFromEccentric(e, ecc)

	a1, a2 := orbit.SemiMajorAxes(periodSec, dp.M1, dp.M2)
	sep := ecc.Mul(dual.Cos(e)).Neg().Shift(1)
	r1 := a1.Mul(sep).Scale(1e-3)
	r2 := a2.Mul(sep).Scale(1e-3)
	cosNu, sinNu := dual.Cos(nu), dual.Sin(nu)

	pos1 = orbit.Vec3{r1.Mul(cosNu), r1.Mul(sinNu), dual.Con(0)}
	pos2 = orbit.Vec3{r2.Mul(cosNu).Neg(), r2.Mul(sinNu).Neg(), dual.Con(0)}
	return transformOrbit(pos1, dp), transformOrbit(pos2, dp)
}

// CompanionPosition returns the sky-projected position of the tertiary
// companion from its spherical direction parameters and distance.
func CompanionPosition(dp *DualParams) orbit.Vec3 {
	incl := orbit.Deg2Rad(dp.CompIncl)
	az := orbit.Deg2Rad(dp.CompAz)
	dist := dp.Star3Dist.Scale(orbit.AUKm)

	pos := orbit.Vec3{
		dual.Sin(incl).Mul(dual.Cos(az)).Mul(dist),
		dual.Sin(incl).Mul(dual.Sin(az)).Mul(dist),
		dual.Cos(incl).Mul(dist),
	}
	return transformOrbit(pos, dp)
}

func transformOrbit(v orbit.Vec3, dp *DualParams) orbit.Vec3 {
	v = orbit.EulerRotate(v, dp.AscNode, dp.Inclination, dp.ArgPeri)
	return orbit.ProjectToSky(v, dp.Distance)
}
