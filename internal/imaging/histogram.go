package imaging

// Histogram counts pixels per intensity level.
type Histogram struct {
	Counts [256]int
	Total  int
}

// NewHistogram builds the 256-bucket intensity histogram of b.
func NewHistogram(b *GrayBuffer) *Histogram {
	h := &Histogram{Total: len(b.Pix)}
	for _, v := range b.Pix {
		h.Counts[v]++
	}
	return h
}

// ClipPoints returns the intensities at which the cumulative pixel count
// first reaches clipPercent% of the total, scanning up from 0 (low) and down
// from 255 (high).
//
// clipPercent is clamped to [0, 50]. When the result is degenerate
// (low >= high, e.g. a flat image) the full range (0, 255) is returned so the
// stretch stage never divides by zero.
func (h *Histogram) ClipPoints(clipPercent float64) (low, high uint8) {
	if h.Total == 0 {
		return 0, 255
	}
	if clipPercent < 0 {
		clipPercent = 0
	}
	if clipPercent > 50 {
		clipPercent = 50
	}
	target := float64(h.Total) * clipPercent / 100

	lo := 0
	cum := 0
	for v := 0; v < 256; v++ {
		cum += h.Counts[v]
		if float64(cum) >= target {
			lo = v
			break
		}
	}

	hi := 255
	cum = 0
	for v := 255; v >= 0; v-- {
		cum += h.Counts[v]
		if float64(cum) >= target {
			hi = v
			break
		}
	}

	if lo >= hi {
		return 0, 255
	}
	return uint8(lo), uint8(hi)
}

// Median returns the first intensity whose cumulative count reaches half of
// the pixels, or 128 for an empty histogram.
func (h *Histogram) Median() uint8 {
	if h.Total == 0 {
		return 128
	}
	half := float64(h.Total) / 2
	cum := 0
	for v := 0; v < 256; v++ {
		cum += h.Counts[v]
		if float64(cum) >= half {
			return uint8(v)
		}
	}
	return 128
}
