package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createNoiseBuffer fills a buffer with a deterministic pseudo-random pattern
func createNoiseBuffer(width, height int, seed uint32) *GrayBuffer {
	b := NewGrayBuffer(width, height)
	state := seed
	for i := range b.Pix {
		state = state*1664525 + 1013904223
		b.Pix[i] = uint8(state >> 24)
	}
	return b
}

// createFlatBuffer creates a buffer with a single intensity
func createFlatBuffer(width, height int, v uint8) *GrayBuffer {
	b := NewGrayBuffer(width, height)
	for i := range b.Pix {
		b.Pix[i] = v
	}
	return b
}

func TestGrayscale_Luminance(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"pure red", color.RGBA{255, 0, 0, 255}, 76},
		{"pure green", color.RGBA{0, 255, 0, 255}, 150},
		{"pure blue", color.RGBA{0, 0, 255, 255}, 29},
		{"gray", color.RGBA{128, 128, 128, 255}, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grayscale(createInMemoryImage(4, 3, tt.c))
			if g.Width != 4 || g.Height != 3 {
				t.Fatalf("dimensions: got %dx%d, want 4x3", g.Width, g.Height)
			}
			if g.At(2, 1) != tt.want {
				t.Errorf("luminance: got %d, want %d", g.At(2, 1), tt.want)
			}
		})
	}
}

func TestGrayscale_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 14, 23))
	img.Set(10, 20, color.White)
	g := Grayscale(img)
	if g.Width != 4 || g.Height != 3 {
		t.Fatalf("dimensions: got %dx%d, want 4x3", g.Width, g.Height)
	}
	if g.At(0, 0) != 255 || g.At(1, 0) != 0 {
		t.Errorf("origin not rebased: got %d,%d", g.At(0, 0), g.At(1, 0))
	}
}

func TestGrayBuffer_ToRGBA(t *testing.T) {
	b := createFlatBuffer(3, 2, 77)
	rgba := b.ToRGBA()
	r, g, bl, a := rgba.At(1, 1).RGBA()
	if r>>8 != 77 || g>>8 != 77 || bl>>8 != 77 || a>>8 != 255 {
		t.Errorf("pixel: got (%d,%d,%d,%d), want (77,77,77,255)", r>>8, g>>8, bl>>8, a>>8)
	}
}

func TestGrayBufferFromPix(t *testing.T) {
	if _, err := GrayBufferFromPix(2, 2, make([]uint8, 3)); err == nil {
		t.Error("expected length mismatch error")
	}
	b, err := GrayBufferFromPix(2, 2, []uint8{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("GrayBufferFromPix failed: %v", err)
	}
	if b.At(1, 1) != 4 {
		t.Errorf("At(1,1): got %d, want 4", b.At(1, 1))
	}
}

func TestBoxBlur_RadiusZeroIsIdentity(t *testing.T) {
	src := createNoiseBuffer(17, 9, 3)
	out := BoxBlur(src, 0)
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel %d changed: got %d, want %d", i, out.Pix[i], src.Pix[i])
		}
	}
	out.Pix[0]++
	if src.Pix[0] == out.Pix[0] {
		t.Error("BoxBlur(…, 0) must return a copy, not the input")
	}
}

func TestBoxBlur_InteriorMatchesWindowMean(t *testing.T) {
	src := createNoiseBuffer(31, 23, 42)

	for _, r := range []int{1, 2, 4, 7} {
		out := BoxBlur(src, r)
		if out.Width != src.Width || out.Height != src.Height {
			t.Fatalf("r=%d: dimensions changed", r)
		}
		for y := r; y < src.Height-r; y++ {
			for x := r; x < src.Width-r; x++ {
				sum := 0
				for dy := -r; dy <= r; dy++ {
					for dx := -r; dx <= r; dx++ {
						sum += int(src.At(x+dx, y+dy))
					}
				}
				area := float64((2*r + 1) * (2*r + 1))
				want := float64(sum) / area
				if math.Abs(float64(out.At(x, y))-want) > 0.5 {
					t.Fatalf("r=%d (%d,%d): got %d, want %.2f", r, x, y, out.At(x, y), want)
				}
			}
		}
	}
}

func TestBoxBlur_EdgeReplication(t *testing.T) {
	// Single bright column on the left edge: replicated samples weigh it more.
	src := NewGrayBuffer(5, 1)
	src.Pix[0] = 90
	out := BoxBlur(src, 1)

	// Window at x=0 samples columns {0,0,1} horizontally and row 0 three times vertically.
	if out.At(0, 0) != 60 {
		t.Errorf("edge pixel: got %d, want 60", out.At(0, 0))
	}
	if out.At(1, 0) != 30 {
		t.Errorf("next pixel: got %d, want 30", out.At(1, 0))
	}
	if out.At(3, 0) != 0 {
		t.Errorf("far pixel: got %d, want 0", out.At(3, 0))
	}
}

func TestBoxBlur_FlatImageUnchanged(t *testing.T) {
	src := createFlatBuffer(12, 12, 143)
	out := BoxBlur(src, 5)
	for i, v := range out.Pix {
		if v != 143 {
			t.Fatalf("pixel %d: got %d, want 143", i, v)
		}
	}
}

func TestBoxBlur_LargeRadius(t *testing.T) {
	src := createNoiseBuffer(8, 6, 9)
	out := BoxBlur(src, 500)
	if out.Width != 8 || out.Height != 6 {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}
}

func TestHistogram_ClipPoints(t *testing.T) {
	tests := []struct {
		name     string
		buf      *GrayBuffer
		clip     float64
		wantLow  uint8
		wantHigh uint8
	}{
		{"flat image degenerates", createFlatBuffer(10, 10, 77), 5, 0, 255},
		{"flat white degenerates", createFlatBuffer(10, 10, 255), 0, 0, 255},
		{"too much clip degenerates", createNoiseBuffer(20, 20, 1), 50, 0, 255},
	}

	ramp := NewGrayBuffer(100, 1)
	for i := range ramp.Pix {
		ramp.Pix[i] = uint8(50 + i)
	}
	tests = append(tests,
		struct {
			name     string
			buf      *GrayBuffer
			clip     float64
			wantLow  uint8
			wantHigh uint8
		}{"ramp 5 percent", ramp, 5, 54, 145},
		struct {
			name     string
			buf      *GrayBuffer
			clip     float64
			wantLow  uint8
			wantHigh uint8
		}{"zero clip spans full range", ramp, 0, 0, 255},
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high := NewHistogram(tt.buf).ClipPoints(tt.clip)
			if low != tt.wantLow || high != tt.wantHigh {
				t.Errorf("ClipPoints(%v): got (%d,%d), want (%d,%d)", tt.clip, low, high, tt.wantLow, tt.wantHigh)
			}
		})
	}
}

func TestHistogram_ClipPointsOrdered(t *testing.T) {
	src := createNoiseBuffer(64, 48, 77)
	h := NewHistogram(src)
	for _, p := range []float64{0.5, 1, 5, 10, 25, 40, 49} {
		low, high := h.ClipPoints(p)
		if low >= high {
			t.Errorf("p=%v: low %d >= high %d", p, low, high)
		}
	}
}

func TestHistogram_Median(t *testing.T) {
	b := NewGrayBuffer(4, 1)
	copy(b.Pix, []uint8{10, 20, 200, 210})
	if got := NewHistogram(b).Median(); got != 20 {
		t.Errorf("Median: got %d, want 20", got)
	}

	if got := NewHistogram(NewGrayBuffer(0, 0)).Median(); got != 128 {
		t.Errorf("empty Median: got %d, want 128", got)
	}
}

func TestStretch(t *testing.T) {
	b := NewGrayBuffer(5, 1)
	copy(b.Pix, []uint8{0, 50, 100, 150, 255})
	out := Stretch(b, 50, 150)
	want := []uint8{0, 0, 128, 255, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("pixel %d: got %d, want %d", i, out.Pix[i], want[i])
		}
	}
}

func TestStretch_FullRangeIsNoOp(t *testing.T) {
	src := createNoiseBuffer(20, 20, 5)
	low, high := NewHistogram(src).ClipPoints(2)
	once := Stretch(src, low, high)

	// Re-stretching an already maximally stretched buffer with (0,255) changes nothing.
	twice := Stretch(once, 0, 255)
	for i := range once.Pix {
		if once.Pix[i] != twice.Pix[i] {
			t.Fatalf("pixel %d: got %d, want %d", i, twice.Pix[i], once.Pix[i])
		}
	}
}

func TestStretch_DegenerateRange(t *testing.T) {
	src := createFlatBuffer(3, 3, 90)
	out := Stretch(src, 100, 100)
	if out.At(1, 1) != 90 {
		t.Errorf("got %d, want unchanged 90", out.At(1, 1))
	}
}

func TestInvert(t *testing.T) {
	b := NewGrayBuffer(3, 1)
	copy(b.Pix, []uint8{0, 100, 255})
	out := Invert(b)
	want := []uint8{255, 155, 0}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("pixel %d: got %d, want %d", i, out.Pix[i], want[i])
		}
	}
	if b.Pix[0] != 0 {
		t.Error("Invert modified its input")
	}
}

func TestPolarity(t *testing.T) {
	tests := []struct {
		name        string
		median      uint8
		autoInvert  bool
		forceInvert bool
		want        bool
	}{
		{"light auto", 200, true, false, false},
		{"dark auto", 50, true, false, true},
		{"force ignored when auto", 200, true, true, false},
		{"manual force", 200, false, true, true},
		{"manual off keeps dark", 50, false, false, false},
		{"cutoff is exclusive", 128, true, false, false},
		{"just below cutoff", 127, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, median := Polarity(createFlatBuffer(8, 8, tt.median), tt.autoInvert, tt.forceInvert, DefaultDarkCutoff)
			if got != tt.want {
				t.Errorf("invert: got %v, want %v", got, tt.want)
			}
			if median != tt.median {
				t.Errorf("median: got %d, want %d", median, tt.median)
			}
		})
	}
}

func TestParseBinarizeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    BinarizeMode
		wantErr bool
	}{
		{"global", BinarizeGlobalMode, false},
		{" Adaptive ", BinarizeAdaptiveMode, false},
		{"NONE", BinarizeNone, false},
		{"otsu", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBinarizeMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBinarizeMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseBinarizeMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBinarizeGlobal(t *testing.T) {
	b := NewGrayBuffer(4, 1)
	copy(b.Pix, []uint8{0, 127, 128, 255})
	out := BinarizeGlobal(b, 128)
	want := []uint8{0, 0, 255, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("pixel %d: got %d, want %d", i, out.Pix[i], want[i])
		}
	}
}

func TestIntegralImage_Sum(t *testing.T) {
	src := createNoiseBuffer(13, 7, 11)
	ii := NewIntegralImage(src)

	rects := [][4]int{{0, 0, 12, 6}, {3, 2, 5, 4}, {0, 6, 12, 6}, {7, 0, 7, 0}}
	for _, r := range rects {
		var want int64
		for y := r[1]; y <= r[3]; y++ {
			for x := r[0]; x <= r[2]; x++ {
				want += int64(src.At(x, y))
			}
		}
		if got := ii.Sum(r[0], r[1], r[2], r[3]); got != want {
			t.Errorf("Sum%v: got %d, want %d", r, got, want)
		}
	}
}

func TestIntegralImage_WindowMeanClipsAtEdges(t *testing.T) {
	b := NewGrayBuffer(3, 3)
	copy(b.Pix, []uint8{
		9, 0, 0,
		0, 0, 0,
		0, 0, 0,
	})
	ii := NewIntegralImage(b)
	// Corner window covers only 2x2 = 4 pixels.
	if got := ii.WindowMean(0, 0, 1); got != 9.0/4 {
		t.Errorf("corner mean: got %v, want %v", got, 9.0/4)
	}
	if got := ii.WindowMean(1, 1, 1); got != 1 {
		t.Errorf("centre mean: got %v, want 1", got)
	}
}

func TestBinarizeAdaptive_WholeImageRadiusMatchesGlobal(t *testing.T) {
	src := createNoiseBuffer(25, 19, 123)

	var sum int
	for _, v := range src.Pix {
		sum += int(v)
	}
	mean := float64(sum) / float64(src.Len())

	adaptive := BinarizeAdaptive(src, 100, 0)
	global := BinarizeGlobal(src, uint8(math.Ceil(mean)))

	for i := range src.Pix {
		if adaptive.Pix[i] != global.Pix[i] {
			t.Fatalf("pixel %d (value %d, mean %.2f): adaptive %d, global %d",
				i, src.Pix[i], mean, adaptive.Pix[i], global.Pix[i])
		}
	}
}

func TestBinarizeAdaptive_UnevenBackground(t *testing.T) {
	// Horizontal gradient background with darker "text" pixels on both ends.
	width, height := 60, 10
	src := NewGrayBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src.Set(x, y, uint8(60+x*3))
		}
	}
	src.Set(5, 5, 20)   // text in the dark region
	src.Set(55, 5, 150) // text in the bright region

	out := BinarizeAdaptive(src, 4, -10)
	if out.At(5, 5) != 0 || out.At(55, 5) != 0 {
		t.Errorf("text pixels should be black: got %d and %d", out.At(5, 5), out.At(55, 5))
	}
	if out.At(5, 1) != 255 || out.At(55, 1) != 255 {
		t.Errorf("background should be white: got %d and %d", out.At(5, 1), out.At(55, 1))
	}

	// A single global threshold blackens the dark end of the background.
	global := BinarizeGlobal(src, 128)
	if global.At(5, 1) != 0 {
		t.Errorf("global threshold: got %d at dark background, want 0", global.At(5, 1))
	}
}

func TestBinarize_Dispatch(t *testing.T) {
	src := createNoiseBuffer(10, 10, 8)

	none, err := Binarize(src, BinarizeNone, 0, 0, 0)
	if err != nil {
		t.Fatalf("Binarize none: %v", err)
	}
	for i := range src.Pix {
		if none.Pix[i] != src.Pix[i] {
			t.Fatalf("none mode changed pixel %d", i)
		}
	}

	if _, err := Binarize(src, "bogus", 0, 0, 0); err == nil {
		t.Error("expected error for unknown mode")
	}

	for _, mode := range []BinarizeMode{BinarizeGlobalMode, BinarizeAdaptiveMode} {
		out, err := Binarize(src, mode, 128, 3, -10)
		if err != nil {
			t.Fatalf("Binarize %s: %v", mode, err)
		}
		for i, v := range out.Pix {
			if v != 0 && v != 255 {
				t.Fatalf("%s: pixel %d not binary: %d", mode, i, v)
			}
		}
	}
}

func TestSharpenKernel_SumsToOne(t *testing.T) {
	for _, s := range []float64{0, 1, 1.5, 2, 5, 9.75} {
		k := SharpenKernel(s)
		var sum float64
		for _, row := range k {
			for _, v := range row {
				sum += v
			}
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("strength %v: kernel sums to %v", s, sum)
		}
		if k[0][0] != 0 || k[0][2] != 0 || k[2][0] != 0 || k[2][2] != 0 {
			t.Errorf("strength %v: corners must be zero", s)
		}
	}
}

func TestSharpen_AppliesKernel(t *testing.T) {
	src := createNoiseBuffer(7, 6, 11).ToRGBA()
	for _, s := range []float64{0.5, 2, 3.25} {
		k := SharpenKernel(s)
		out := Sharpen(src, s)
		for y := 1; y < 5; y++ {
			for x := 1; x < 6; x++ {
				var want float64
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						want += k[ky+1][kx+1] * float64(src.RGBAAt(x+kx, y+ky).R)
					}
				}
				wantByte := uint8(0)
				switch {
				case want >= 255:
					wantByte = 255
				case want > 0:
					wantByte = uint8(math.Round(want))
				}
				if got := out.RGBAAt(x, y).R; got != wantByte {
					t.Fatalf("s=%v (%d,%d): got %d, want %d", s, x, y, got, wantByte)
				}
			}
		}
	}
}

func TestSharpen_FlatRegionPreserved(t *testing.T) {
	for _, s := range []float64{1, 1.7, 3, 5} {
		for _, v := range []uint8{0, 1, 77, 200, 255} {
			src := createFlatBuffer(6, 5, v).ToRGBA()
			out := Sharpen(src, s)
			for y := 0; y < 5; y++ {
				for x := 0; x < 6; x++ {
					r, g, b, a := out.At(x, y).RGBA()
					if uint8(r>>8) != v || uint8(g>>8) != v || uint8(b>>8) != v || a>>8 != 255 {
						t.Fatalf("s=%v v=%d (%d,%d): got (%d,%d,%d,%d)", s, v, x, y, r>>8, g>>8, b>>8, a>>8)
					}
				}
			}
		}
	}
}

func TestSharpen_EdgeAmplifiedAndBordersCopied(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			v := uint8(100)
			if x >= 2 {
				v = 200
			}
			src.Set(x, y, color.RGBA{v, v, v, 128})
		}
	}

	out := Sharpen(src, 3)

	// Dark side of the edge gets darker, bright side brighter.
	dark := out.RGBAAt(1, 2)
	bright := out.RGBAAt(2, 2)
	if dark.R >= 100 {
		t.Errorf("dark side: got %d, want < 100", dark.R)
	}
	if bright.R <= 200 {
		t.Errorf("bright side: got %d, want > 200", bright.R)
	}
	if dark.A != 255 {
		t.Errorf("alpha: got %d, want 255", dark.A)
	}

	// Border column copied as-is (colour), alpha forced.
	border := out.RGBAAt(0, 2)
	if border.R != 100 || border.A != 255 {
		t.Errorf("border: got %+v, want R=100 A=255", border)
	}
}

func TestSharpen_TinyImage(t *testing.T) {
	src := createFlatBuffer(2, 2, 40).ToRGBA()
	out := Sharpen(src, 2)
	if out.Bounds().Dx() != 2 || out.RGBAAt(1, 1).R != 40 {
		t.Errorf("tiny image should be copied unchanged")
	}
}

func TestSampleTheme(t *testing.T) {
	tests := []struct {
		name     string
		bg       color.RGBA
		wantDark bool
	}{
		{"dark mode", color.RGBA{18, 18, 18, 255}, true},
		{"light mode", color.RGBA{250, 250, 250, 255}, false},
		{"peach", color.RGBA{255, 220, 180, 255}, false},
		{"navy", color.RGBA{10, 20, 70, 255}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 100, 200))
			for y := 0; y < 200; y++ {
				for x := 0; x < 100; x++ {
					img.Set(x, y, tt.bg)
				}
			}
			// Content in the middle must not affect the border sample.
			for y := 80; y < 120; y++ {
				for x := 20; x < 80; x++ {
					img.Set(x, y, color.RGBA{128, 255, 128, 255})
				}
			}

			theme := SampleTheme(img)
			if theme.Dark != tt.wantDark {
				t.Errorf("Dark: got %v (L=%.2f), want %v", theme.Dark, theme.Lightness, tt.wantDark)
			}
			if theme.Coverage != 100 {
				t.Errorf("Coverage: got %.1f, want 100", theme.Coverage)
			}
			if len(theme.BackgroundHex) != 7 || theme.BackgroundHex[0] != '#' {
				t.Errorf("BackgroundHex: got %q", theme.BackgroundHex)
			}
		})
	}
}

func TestSampleTheme_Empty(t *testing.T) {
	theme := SampleTheme(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if theme != (Theme{}) {
		t.Errorf("empty image: got %+v, want zero Theme", theme)
	}
}

func TestUpscale(t *testing.T) {
	src := createInMemoryImage(40, 30, color.RGBA{90, 90, 90, 255})

	tests := []struct {
		factor       float64
		wantW, wantH int
	}{
		{1, 40, 30},
		{2.5, 100, 75},
		{0.01, 1, 1},
	}

	for _, tt := range tests {
		out := Upscale(src, tt.factor)
		if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
			t.Errorf("factor %v: got %dx%d, want %dx%d", tt.factor,
				out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
		}
	}

	// A flat image stays flat through the bicubic filter.
	r, _, _, _ := Upscale(src, 2).At(37, 41).RGBA()
	if r>>8 != 90 {
		t.Errorf("flat upscale: got %d, want 90", r>>8)
	}
}

func TestPad(t *testing.T) {
	src := createInMemoryImage(10, 6, color.Black)
	out := Pad(src, 4, color.White)

	if out.Bounds().Dx() != 18 || out.Bounds().Dy() != 14 {
		t.Fatalf("dimensions: got %dx%d, want 18x14", out.Bounds().Dx(), out.Bounds().Dy())
	}
	if c := out.NRGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("border: got %+v, want white", c)
	}
	if c := out.NRGBAAt(4, 4); c.R != 0 || c.A != 255 {
		t.Errorf("content origin: got %+v, want black", c)
	}
	if c := out.NRGBAAt(13, 9); c.R != 0 {
		t.Errorf("content corner: got %+v, want black", c)
	}
	if c := out.NRGBAAt(14, 10); c.R != 255 {
		t.Errorf("past content: got %+v, want white", c)
	}

	same := Pad(src, 0, color.White)
	if same.Bounds().Dx() != 10 {
		t.Errorf("zero padding changed width to %d", same.Bounds().Dx())
	}
}
