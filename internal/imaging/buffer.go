package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// Luminance weights (ITU-R BT.601) used for every colour -> gray conversion.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// GrayBuffer is a width x height grid of 8-bit intensities stored row-major.
//
// Filters in this package never modify their input buffer; each returns a newly
// allocated GrayBuffer of the same dimensions.
type GrayBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGrayBuffer allocates a zeroed (black) buffer.
func NewGrayBuffer(width, height int) *GrayBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &GrayBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// GrayBufferFromPix wraps pix as a buffer after checking its length.
func GrayBufferFromPix(width, height int, pix []uint8) (*GrayBuffer, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, fmt.Errorf("pixel slice of length %d does not match %dx%d", len(pix), width, height)
	}
	return &GrayBuffer{Width: width, Height: height, Pix: pix}, nil
}

// At returns the intensity at (x, y). Coordinates must be in range.
func (b *GrayBuffer) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

// Set writes the intensity at (x, y).
func (b *GrayBuffer) Set(x, y int, v uint8) {
	b.Pix[y*b.Width+x] = v
}

// Len is the number of pixels.
func (b *GrayBuffer) Len() int {
	return len(b.Pix)
}

// Clone returns a deep copy.
func (b *GrayBuffer) Clone() *GrayBuffer {
	out := &GrayBuffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Map returns a new buffer with fn applied to every intensity.
func (b *GrayBuffer) Map(fn func(uint8) uint8) *GrayBuffer {
	out := &GrayBuffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	for i, v := range b.Pix {
		out.Pix[i] = fn(v)
	}
	return out
}

// Grayscale converts any image to a GrayBuffer using 0.299R + 0.587G + 0.114B,
// rounded to the nearest integer. Alpha is ignored.
func Grayscale(img image.Image) *GrayBuffer {
	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := NewGrayBuffer(width, height)

	for y := 0; y < height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
		for x := 0; x < width; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			bl := float64(row[x*4+2])
			out.Pix[y*width+x] = uint8(lumaR*r + lumaG*g + lumaB*bl + 0.5)
		}
	}
	return out
}

// ToRGBA expands the buffer into an opaque RGBA raster with R = G = B = intensity.
func (b *GrayBuffer) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, v := range b.Pix {
		o := i * 4
		out.Pix[o] = v
		out.Pix[o+1] = v
		out.Pix[o+2] = v
		out.Pix[o+3] = 255
	}
	return out
}
