package imaging

import (
	"image"

	"github.com/dashlens/dashlens-ocr/internal/util"
)

// SharpenKernel returns the 3x3 kernel for a given centre weight.
//
// The four arms carry -(strength-1)/4 and the corners 0, so the kernel always
// sums to exactly 1 and flat regions keep their brightness.
func SharpenKernel(strength float64) [3][3]float64 {
	arm := -(strength - 1) / 4
	return [3][3]float64{
		{0, arm, 0},
		{arm, strength, arm},
		{0, arm, 0},
	}
}

// Sharpen convolves every colour channel of src with SharpenKernel(strength).
//
// The first and last rows and columns are copied from src since they have no
// full neighbourhood. Alpha is forced to 255 and every channel is clamped to
// [0, 255].
func Sharpen(src *image.RGBA, strength float64) *image.RGBA {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+width*4], src.Pix[y*src.Stride:y*src.Stride+width*4])
	}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}
	if width < 3 || height < 3 {
		return out
	}

	k := SharpenKernel(strength)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			o := y*out.Stride + x*4
			for ch := 0; ch < 3; ch++ {
				var v float64
				for ky := 0; ky < 3; ky++ {
					row := (y+ky-1)*src.Stride + ch
					for kx := 0; kx < 3; kx++ {
						if w := k[ky][kx]; w != 0 {
							v += w * float64(src.Pix[row+(x+kx-1)*4])
						}
					}
				}
				out.Pix[o+ch] = util.ClampByte(v)
			}
		}
	}
	return out
}
