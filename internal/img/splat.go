package img

import (
	"math"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/plume"
)

// Splat deposits every particle onto the grid as a square footprint one
// cell wide, split by overlap area across the four cells it touches.
// The quadrant areas always sum to side^2, so dividing by that keeps
// each in-bounds particle's total deposit exactly equal to its weight,
// and the deposit varies smoothly as the particle moves between cells.
func Splat(cloud *plume.Cloud, g Grid) *Image {
	im := NewImage(g)
	n := g.Size()
	side := g.XEdges[1].Sub(g.XEdges[0])
	if side.V <= 0 {
		return im
	}
	half := side.Scale(0.5)
	invArea := dual.Con(1).Div(side.Mul(side))

	deposit := func(ix, iy int, area, w dual.Num) {
		if ix < 0 || ix >= n || iy < 0 || iy >= n {
			return
		}
		im.Pix[iy*n+ix] = im.Pix[iy*n+ix].Add(area.Mul(w))
	}

	for i := range cloud.X {
		xpos := cloud.X[i].Sub(g.XEdges[0])
		ypos := cloud.Y[i].Sub(g.YEdges[0])
		ix := int(math.Floor(xpos.V / side.V))
		iy := int(math.Floor(ypos.V / side.V))

		// offsets within the home cell
		alpha := dual.ModN(xpos, side)
		beta := dual.ModN(ypos, side)

		// neighbor cells share the closer boundary
		nx := ix - 1
		if alpha.V > side.V/2 {
			nx = ix + 1
		}
		ny := iy - 1
		if beta.V > side.V/2 {
			ny = iy + 1
		}

		// overlap lengths of the particle footprint with the home cell
		aMain := dual.Min(alpha, side.Sub(alpha)).Add(half)
		bMain := dual.Min(beta, side.Sub(beta)).Add(half)
		aSide := side.Sub(aMain)
		bSide := side.Sub(bMain)

		w := cloud.W[i].Mul(invArea)
		deposit(ix, iy, aMain.Mul(bMain), w)
		deposit(nx, iy, aSide.Mul(bMain), w)
		deposit(ix, ny, aMain.Mul(bSide), w)
		deposit(nx, ny, aSide.Mul(bSide), w)
	}
	return im
}
