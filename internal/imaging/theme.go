package imaging

import (
	"image"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme describes the background colour of a source screenshot.
type Theme struct {
	// BackgroundHex is the dominant border colour in "#rrggbb" form.
	BackgroundHex string `json:"background_hex"`

	// Lightness is the CIE L* of the background, 0 (black) to 1 (white).
	Lightness float64 `json:"lightness"`

	// Dark is true when the background is darker than mid-gray.
	Dark bool `json:"dark"`

	// Coverage is the share (0-100) of sampled border pixels in the dominant bucket.
	Coverage float64 `json:"coverage"`
}

// borderFraction is the share of each dimension sampled as "border".
const borderFraction = 0.04

// SampleTheme estimates the app theme of a screenshot from its border.
//
// Border pixels are quantised to 16 levels per channel (the same bucketing
// used for dominant-colour analysis), the most common bucket is taken as the
// background, and its average colour is converted to CIE L*a*b* to decide
// whether the screenshot is dark or light themed. Returns a zero Theme for an
// empty image.
func SampleTheme(img image.Image) Theme {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return Theme{}
	}

	bw := max(1, int(float64(width)*borderFraction))
	bh := max(1, int(float64(height)*borderFraction))

	type bucket struct {
		count   int
		r, g, b float64
	}
	buckets := make(map[[3]uint8]*bucket)
	total := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= bw && x < width-bw && y >= bh && y < height-bh {
				continue
			}
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			r8, g8, b8 := c.RGB255()
			key := [3]uint8{r8 / 16 * 16, g8 / 16 * 16, b8 / 16 * 16}
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += c.R
			bk.g += c.G
			bk.b += c.B
			total++
		}
	}
	if total == 0 {
		return Theme{}
	}

	keys := make([][3]uint8, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		bi, bj := buckets[keys[i]], buckets[keys[j]]
		if bi.count != bj.count {
			return bi.count > bj.count
		}
		return bucketSum(keys[i]) > bucketSum(keys[j])
	})

	top := buckets[keys[0]]
	n := float64(top.count)
	bg := colorful.Color{R: top.r / n, G: top.g / n, B: top.b / n}.Clamped()
	l, _, _ := bg.Lab()

	return Theme{
		BackgroundHex: bg.Hex(),
		Lightness:     l,
		Dark:          l < 0.5,
		Coverage:      n / float64(total) * 100,
	}
}

func bucketSum(k [3]uint8) int {
	return int(k[0]) + int(k[1]) + int(k[2])
}
