// Package img turns a weighted particle cloud into a smooth synthetic
// sky image: area-weighted splatting onto a regular grid, Gaussian PSF
// convolution, clip/normalization, and point-source star overlays. All
// pixel values are dual numbers so image gradients with respect to the
// seeded parameter survive the whole pipeline.
package img

import (
	"fmt"

	"github.com/wrplume/plumesim/internal/dual"
	"github.com/wrplume/plumesim/internal/plume"
)

// Grid is a square pixel grid defined by its bin-edge coordinates in
// angular units (arcseconds). len(XEdges) == len(YEdges) == Size()+1 and
// the bins are uniform.
type Grid struct {
	XEdges, YEdges []dual.Num
}

// Size returns the number of bins along one axis.
func (g Grid) Size() int { return len(g.XEdges) - 1 }

// SquareGrid builds a symmetric grid spanning [-bound, bound] on both
// axes. The bound may carry a gradient (self-determined fields of view
// depend on the particle extent).
func SquareGrid(bound dual.Num, size int) Grid {
	xe := make([]dual.Num, size+1)
	ye := make([]dual.Num, size+1)
	for i := 0; i <= size; i++ {
		f := 2*float64(i)/float64(size) - 1
		xe[i] = bound.Scale(f)
		ye[i] = bound.Scale(f)
	}
	return Grid{XEdges: xe, YEdges: ye}
}

// FixedGrid wraps externally supplied bin edges (an observation's pixel
// grid) as constants.
func FixedGrid(xEdges, yEdges []float64) Grid {
	xe := make([]dual.Num, len(xEdges))
	ye := make([]dual.Num, len(yEdges))
	for i, v := range xEdges {
		xe[i] = dual.Con(v)
	}
	for i, v := range yEdges {
		ye[i] = dual.Con(v)
	}
	return Grid{XEdges: xe, YEdges: ye}
}

// BoundingGrid builds the self-determined field of view: a symmetric
// grid just wide enough for the particle cloud, with a small margin so
// edge particles do not land exactly on the boundary.
func BoundingGrid(cloud *plume.Cloud, size int) Grid {
	bound := dual.Con(0)
	for i := range cloud.X {
		bound = dual.Max(bound, dual.Abs(cloud.X[i]))
		bound = dual.Max(bound, dual.Abs(cloud.Y[i]))
	}
	bound = bound.Scale(1 + 2/float64(size))
	return SquareGrid(bound, size)
}

// Image is a square grid of non-negative intensities plus the bin edges
// that define it.
type Image struct {
	Grid Grid
	Pix  []dual.Num // row-major: Pix[iy*Size+ix]
}

// NewImage allocates a zeroed image on the given grid.
func NewImage(g Grid) *Image {
	return &Image{Grid: g, Pix: make([]dual.Num, g.Size()*g.Size())}
}

// Size returns the number of pixels along one axis.
func (im *Image) Size() int { return im.Grid.Size() }

// At returns the pixel at column ix, row iy.
func (im *Image) At(ix, iy int) dual.Num { return im.Pix[iy*im.Size()+ix] }

// Mass returns the total intensity of the image.
func (im *Image) Mass() dual.Num {
	sum := dual.Con(0)
	for _, v := range im.Pix {
		sum = sum.Add(v)
	}
	return sum
}

// maxPix returns the maximum pixel by value, or zero for an empty image.
func (im *Image) maxPix() dual.Num {
	max := dual.Con(0)
	for _, v := range im.Pix {
		max = dual.Max(max, v)
	}
	return max
}

// Validate reports an error if any pixel value or gradient is non-finite.
// Downstream likelihood evaluation depends on finiteness, so a NaN here
// is a defect to surface, never a value to patch over.
func (im *Image) Validate() error {
	n := im.Size()
	for i, v := range im.Pix {
		if !dual.IsFinite(v) {
			return fmt.Errorf("non-finite pixel at (%d, %d): value %g gradient %g",
				i%n, i/n, v.V, v.D)
		}
	}
	return nil
}

// normalizeMax divides the image by its maximum in place, substituting a
// unit denominator when the image is empty.
func (im *Image) normalizeMax() {
	max := im.maxPix()
	if max.V == 0 {
		return
	}
	inv := dual.Con(1).Div(max)
	for i := range im.Pix {
		im.Pix[i] = im.Pix[i].Mul(inv)
	}
}
