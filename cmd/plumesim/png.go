package main

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/wrplume/plumesim/internal/img"
)

// writePNG encodes the normalized image as 16-bit grayscale. Row 0 of
// the PNG is the top of the sky frame, so rows are flipped.
func writePNG(path string, im *img.Image) error {
	n := im.Size()
	out := image.NewGray16(image.Rect(0, 0, n, n))
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			v := im.At(ix, iy).V
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			out.SetGray16(ix, n-1-iy, color.Gray16{Y: uint16(v * 65535)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
