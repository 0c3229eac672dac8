package img

import "github.com/wrplume/plumesim/internal/dual"

// StarSprite is a Gaussian point source in grid coordinates. SD is the
// spread in the same angular units as the grid.
type StarSprite struct {
	X, Y, Amp, SD dual.Num
}

// OverlayStars adds point sources on top of a normalized image and
// renormalizes so the brightest pixel stays at unity. Sprites are
// evaluated at pixel coordinates spanning the grid symmetrically.
func OverlayStars(im *Image, stars []StarSprite) {
	n := im.Size()
	bound := im.Grid.XEdges[n]
	coords := make([]dual.Num, n)
	for i := 0; i < n; i++ {
		coords[i] = bound.Scale(2*float64(i)/float64(n-1) - 1)
	}
	for _, s := range stars {
		expo := dual.Con(-0.5).Div(s.SD.Mul(s.SD))
		for iy := 0; iy < n; iy++ {
			dy := coords[iy].Sub(s.Y)
			dy2 := dy.Mul(dy)
			for ix := 0; ix < n; ix++ {
				dx := coords[ix].Sub(s.X)
				r2 := dx.Mul(dx).Add(dy2)
				im.Pix[iy*n+ix] = im.Pix[iy*n+ix].Add(s.Amp.Mul(dual.Exp(expo.Mul(r2))))
			}
		}
	}
	im.normalizeMax()
}
