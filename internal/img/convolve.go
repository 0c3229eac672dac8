package img

import (
	"github.com/wrplume/plumesim/internal/dual"
	"gonum.org/v1/gonum/dsp/fourier"
)

// kernelRadius fixes the point-spread kernel at 31x31 pixels.
const kernelRadius = 15

// minBlurSigma keeps the kernel well defined when the blur width is
// optimized toward zero.
const minBlurSigma = 1e-3

// gaussianKernel builds a normalized (2r+1)x(2r+1) Gaussian with the
// given standard deviation in pixels.
func gaussianKernel(sigma dual.Num) [][]dual.Num {
	sigma = dual.Max(sigma, dual.Con(minBlurSigma))
	expo := dual.Con(-0.5).Div(sigma.Mul(sigma))
	size := 2*kernelRadius + 1
	k := make([][]dual.Num, size)
	sum := dual.Con(0)
	for j := 0; j < size; j++ {
		row := make([]dual.Num, size)
		dy := float64(j - kernelRadius)
		for i := 0; i < size; i++ {
			dx := float64(i - kernelRadius)
			v := dual.Exp(expo.Scale(dx*dx + dy*dy))
			row[i] = v
			sum = sum.Add(v)
		}
		k[j] = row
	}
	invSum := dual.Con(1).Div(sum)
	for j := range k {
		for i := range k[j] {
			k[j][i] = k[j][i].Mul(invSum)
		}
	}
	return k
}

// ConvolveGaussian blurs the image with a Gaussian point-spread kernel.
// Values and tangents go through separate real convolutions following
// the product rule: (H*K)' = H'*K + H*K', the second term dropped when
// the kernel carries no gradient.
func ConvolveGaussian(im *Image, sigma dual.Num) *Image {
	n := im.Size()
	ker := gaussianKernel(sigma)
	kSize := 2*kernelRadius + 1

	hv := make([]float64, n*n)
	hd := make([]float64, n*n)
	imHasD := false
	for i, p := range im.Pix {
		hv[i] = p.V
		hd[i] = p.D
		if p.D != 0 {
			imHasD = true
		}
	}
	kv := make([]float64, kSize*kSize)
	kd := make([]float64, kSize*kSize)
	kerHasD := false
	for j := 0; j < kSize; j++ {
		for i := 0; i < kSize; i++ {
			kv[j*kSize+i] = ker[j][i].V
			kd[j*kSize+i] = ker[j][i].D
			if ker[j][i].D != 0 {
				kerHasD = true
			}
		}
	}

	c := newConvolver(n, kSize)
	outV := c.same(hv, n, kv)
	outD := make([]float64, n*n)
	if imHasD {
		outD = c.same(hd, n, kv)
	}
	if kerHasD {
		t := c.same(hv, n, kd)
		for i := range outD {
			outD[i] += t[i]
		}
	}

	res := NewImage(im.Grid)
	for i := range res.Pix {
		res.Pix[i] = dual.Num{V: outV[i], D: outD[i]}
	}
	return res
}

// convolver performs "same"-mode 2D convolution of an n x n plane with a
// k x k kernel by zero-padded FFT on a power-of-two grid.
type convolver struct {
	n, k, f int
	fft     *fourier.CmplxFFT
}

func newConvolver(n, k int) *convolver {
	f := 1
	for f < n+k-1 {
		f <<= 1
	}
	return &convolver{n: n, k: k, f: f, fft: fourier.NewCmplxFFT(f)}
}

func (c *convolver) same(plane []float64, n int, ker []float64) []float64 {
	a := c.embed(plane, n)
	c.fft2(a, false)
	b := c.embed(ker, c.k)
	c.fft2(b, false)
	for i := range a {
		a[i] *= b[i]
	}
	c.fft2(a, true)

	// the transform pair is unnormalized: forward then inverse scales
	// by f in each dimension
	scale := 1 / float64(c.f*c.f)
	out := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = real(a[(y+kernelRadius)*c.f+x+kernelRadius]) * scale
		}
	}
	return out
}

func (c *convolver) embed(plane []float64, m int) []complex128 {
	out := make([]complex128, c.f*c.f)
	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			out[y*c.f+x] = complex(plane[y*m+x], 0)
		}
	}
	return out
}

// fft2 transforms rows then columns in place.
func (c *convolver) fft2(a []complex128, inverse bool) {
	f := c.f
	row := make([]complex128, f)
	for y := 0; y < f; y++ {
		copy(row, a[y*f:(y+1)*f])
		if inverse {
			c.fft.Sequence(a[y*f:(y+1)*f], row)
		} else {
			c.fft.Coefficients(a[y*f:(y+1)*f], row)
		}
	}
	col := make([]complex128, f)
	out := make([]complex128, f)
	for x := 0; x < f; x++ {
		for y := 0; y < f; y++ {
			col[y] = a[y*f+x]
		}
		if inverse {
			c.fft.Sequence(out, col)
		} else {
			c.fft.Coefficients(out, col)
		}
		for y := 0; y < f; y++ {
			a[y*f+x] = out[y]
		}
	}
}
