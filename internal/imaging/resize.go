package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Upscale resizes img by factor with a Catmull-Rom (bicubic) filter.
//
// A factor of 1 returns an NRGBA copy. Output dimensions are rounded and never
// drop below 1x1.
func Upscale(img image.Image, factor float64) *image.NRGBA {
	bounds := img.Bounds()
	if factor == 1 {
		return imaging.Clone(img)
	}
	w := max(1, int(math.Round(float64(bounds.Dx())*factor)))
	h := max(1, int(math.Round(float64(bounds.Dy())*factor)))
	return imaging.Resize(img, w, h, imaging.CatmullRom)
}

// Pad surrounds img with a solid border of px pixels on every side.
func Pad(img image.Image, px int, fill color.Color) *image.NRGBA {
	if px <= 0 {
		return imaging.Clone(img)
	}
	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx()+2*px, bounds.Dy()+2*px, fill)
	return imaging.Paste(canvas, img, image.Pt(px, px))
}
