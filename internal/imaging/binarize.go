package imaging

import (
	"fmt"
	"strings"
)

// BinarizeMode selects the thresholding strategy.
type BinarizeMode string

const (
	// BinarizeGlobalMode compares every pixel to one fixed threshold.
	BinarizeGlobalMode BinarizeMode = "global"
	// BinarizeAdaptiveMode compares every pixel to the mean of its neighbourhood.
	BinarizeAdaptiveMode BinarizeMode = "adaptive"
	// BinarizeNone leaves the grayscale buffer untouched.
	BinarizeNone BinarizeMode = "none"
)

// ParseBinarizeMode accepts "global", "adaptive" or "none" (case-insensitive).
func ParseBinarizeMode(s string) (BinarizeMode, error) {
	switch BinarizeMode(strings.ToLower(strings.TrimSpace(s))) {
	case BinarizeGlobalMode:
		return BinarizeGlobalMode, nil
	case BinarizeAdaptiveMode:
		return BinarizeAdaptiveMode, nil
	case BinarizeNone:
		return BinarizeNone, nil
	}
	return "", fmt.Errorf("unknown binarize mode %q (want global, adaptive or none)", s)
}

// BinarizeGlobal maps in >= threshold to 255 and everything else to 0.
func BinarizeGlobal(src *GrayBuffer, threshold uint8) *GrayBuffer {
	return src.Map(func(v uint8) uint8 {
		if v >= threshold {
			return 255
		}
		return 0
	})
}

// IntegralImage is a summed-area table over a GrayBuffer.
//
// The table has one extra leading row and column of zeros, so
// sum[(y+1)*(w+1)+(x+1)] holds the total of all pixels in [0..x]x[0..y].
type IntegralImage struct {
	Width  int
	Height int
	sum    []int64
}

// NewIntegralImage builds the summed-area table in a single pass:
//
//	sat[y][x] = sat[y-1][x] + sat[y][x-1] - sat[y-1][x-1] + pixel[y][x]
func NewIntegralImage(src *GrayBuffer) *IntegralImage {
	w, h := src.Width, src.Height
	stride := w + 1
	sat := make([]int64, stride*(h+1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sat[(y+1)*stride+x+1] = sat[y*stride+x+1] + sat[(y+1)*stride+x] - sat[y*stride+x] + int64(src.Pix[y*w+x])
		}
	}
	return &IntegralImage{Width: w, Height: h, sum: sat}
}

// Sum returns the total intensity of the inclusive rectangle [x0..x1]x[y0..y1].
// Coordinates must already lie inside the image.
func (ii *IntegralImage) Sum(x0, y0, x1, y1 int) int64 {
	stride := ii.Width + 1
	return ii.sum[(y1+1)*stride+x1+1] - ii.sum[y0*stride+x1+1] - ii.sum[(y1+1)*stride+x0] + ii.sum[y0*stride+x0]
}

// WindowMean returns the mean of the (2r+1)x(2r+1) window centred on (x, y),
// clipped to the image bounds with the area reduced accordingly.
func (ii *IntegralImage) WindowMean(x, y, radius int) float64 {
	x0 := max(x-radius, 0)
	y0 := max(y-radius, 0)
	x1 := min(x+radius, ii.Width-1)
	y1 := min(y+radius, ii.Height-1)
	area := (x1 - x0 + 1) * (y1 - y0 + 1)
	return float64(ii.Sum(x0, y0, x1, y1)) / float64(area)
}

// BinarizeAdaptive thresholds every pixel against its local mean plus bias.
//
// The local mean comes from the summed-area table in O(1) per pixel, so the
// cost does not depend on the radius. A negative bias lowers the threshold
// and keeps thin dark strokes from washing out. A radius <= 0 is treated as 1.
func BinarizeAdaptive(src *GrayBuffer, radius int, bias float64) *GrayBuffer {
	if radius <= 0 {
		radius = 1
	}
	ii := NewIntegralImage(src)
	out := NewGrayBuffer(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			i := y*src.Width + x
			threshold := ii.WindowMean(x, y, radius) + bias
			if float64(src.Pix[i]) >= threshold {
				out.Pix[i] = 255
			}
		}
	}
	return out
}

// Binarize dispatches to the strategy named by mode. BinarizeNone returns a copy.
func Binarize(src *GrayBuffer, mode BinarizeMode, threshold uint8, radius int, bias float64) (*GrayBuffer, error) {
	switch mode {
	case BinarizeGlobalMode:
		return BinarizeGlobal(src, threshold), nil
	case BinarizeAdaptiveMode:
		return BinarizeAdaptive(src, radius, bias), nil
	case BinarizeNone, "":
		return src.Clone(), nil
	}
	return nil, fmt.Errorf("unknown binarize mode %q", mode)
}
