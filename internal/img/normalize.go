package img

import "github.com/wrplume/plumesim/internal/dual"

// NormalizeClip applies the display transfer chain in place: scale to
// unit maximum, clip bright pixels at histmax, rescale, raise to the
// luminosity exponent, and rescale once more. An all-zero image passes
// through unchanged rather than dividing by zero. The exponent step is
// skipped entirely at lumPower == 1 so negative intermediate values
// survive a unit exponent untouched.
func NormalizeClip(im *Image, histmax, lumPower dual.Num) {
	im.normalizeMax()
	for i := range im.Pix {
		im.Pix[i] = dual.Min(im.Pix[i], histmax)
	}
	im.normalizeMax()
	if lumPower.V != 1 {
		for i := range im.Pix {
			im.Pix[i] = dual.Pow(dual.Abs(im.Pix[i]), lumPower)
		}
	}
	im.normalizeMax()
}
