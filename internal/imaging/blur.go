package imaging

import "github.com/dashlens/dashlens-ocr/internal/util"

// BoxBlur returns the mean of the (2r+1)x(2r+1) neighbourhood of every pixel.
//
// Samples outside the image are replaced by the nearest edge pixel (edge
// replication). The filter runs as two separable sliding-window passes, so the
// cost is O(width*height) whatever the radius. A radius <= 0 returns an
// unmodified copy.
//
// The horizontal pass keeps unnormalised window sums so the final division
// happens once, giving the exactly rounded windowed mean.
func BoxBlur(src *GrayBuffer, radius int) *GrayBuffer {
	if radius <= 0 || src.Len() == 0 {
		return src.Clone()
	}

	width, height := src.Width, src.Height
	window := 2*radius + 1

	// Horizontal pass: rowSums[i] = sum of window pixels along the row.
	rowSums := make([]int32, width*height)
	for y := 0; y < height; y++ {
		row := src.Pix[y*width : (y+1)*width]
		var sum int32
		for k := -radius; k <= radius; k++ {
			sum += int32(row[util.Clamp(k, 0, width-1)])
		}
		for x := 0; x < width; x++ {
			rowSums[y*width+x] = sum
			enter := util.Clamp(x+radius+1, 0, width-1)
			exit := util.Clamp(x-radius, 0, width-1)
			sum += int32(row[enter]) - int32(row[exit])
		}
	}

	// Vertical pass over the row sums.
	out := NewGrayBuffer(width, height)
	area := int64(window) * int64(window)
	half := area / 2
	for x := 0; x < width; x++ {
		var sum int64
		for k := -radius; k <= radius; k++ {
			sum += int64(rowSums[util.Clamp(k, 0, height-1)*width+x])
		}
		for y := 0; y < height; y++ {
			out.Pix[y*width+x] = uint8((sum + half) / area)
			enter := util.Clamp(y+radius+1, 0, height-1)
			exit := util.Clamp(y-radius, 0, height-1)
			sum += int64(rowSums[enter*width+x]) - int64(rowSums[exit*width+x])
		}
	}
	return out
}
