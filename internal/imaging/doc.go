// Package imaging provides the pixel-level filters of the screenshot
// preprocessing chain.
//
// Everything operates on GrayBuffer, a row-major grid of 8-bit intensities,
// except Sharpen which works on an RGBA raster. Filters are pure: they never
// modify their input and always return a freshly allocated result, so
// independent screenshots can be processed concurrently without locking.
//
// # Filters
//
//   - Grayscale: RGB -> luminance using 0.299*R + 0.587*G + 0.114*B
//   - BoxBlur: separable sliding-window mean, O(n) for any radius
//   - Histogram: 256-bucket counts, percentile clip points and median
//   - Stretch / Invert / Polarity: contrast stretch and dark-mode detection
//   - BinarizeGlobal / BinarizeAdaptive: fixed threshold, or local mean via a
//     summed-area table (IntegralImage)
//   - Sharpen: 3x3 kernel whose weights always sum to 1
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left; X grows rightward and Y
// downward. Buffers produced here always start at the origin even if the
// source image did not.
//
// # Edge Handling
//
// BoxBlur replicates edge pixels. BinarizeAdaptive shrinks the window at the
// borders and divides by the reduced area. Sharpen copies the outermost
// rows and columns unchanged.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All filters are stateless.
package imaging
