package imaging

import "github.com/dashlens/dashlens-ocr/internal/util"

// DefaultDarkCutoff is the median intensity below which a stretched
// screenshot is treated as dark mode and inverted.
const DefaultDarkCutoff = 128

// Stretch linearly remaps [low, high] onto [0, 255]:
//
//	out = clamp(round((in - low) / (high - low) * 255), 0, 255)
//
// When high <= low the input is returned unchanged (as a copy).
func Stretch(src *GrayBuffer, low, high uint8) *GrayBuffer {
	if high <= low {
		return src.Clone()
	}

	var lut [256]uint8
	span := float64(high) - float64(low)
	for v := 0; v < 256; v++ {
		lut[v] = util.ClampByte((float64(v) - float64(low)) / span * 255)
	}
	return src.Map(func(v uint8) uint8 { return lut[v] })
}

// Invert flips polarity: out = 255 - in.
func Invert(src *GrayBuffer) *GrayBuffer {
	return src.Map(func(v uint8) uint8 { return 255 - v })
}

// IsDarkMode reports whether a buffer with the given median should be
// inverted so text ends up dark on a light background.
func IsDarkMode(median uint8, cutoff int) bool {
	return int(median) < cutoff
}

// Polarity decides whether the stretched buffer gets inverted.
//
// With autoInvert the median of src decides (dark-mode screenshots are
// flipped); otherwise forceInvert is the manual override.
func Polarity(src *GrayBuffer, autoInvert, forceInvert bool, cutoff int) (invert bool, median uint8) {
	median = NewHistogram(src).Median()
	if autoInvert {
		return IsDarkMode(median, cutoff), median
	}
	return forceInvert, median
}
