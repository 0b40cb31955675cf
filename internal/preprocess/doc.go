// Package preprocess turns raw earnings screenshots into clean, high-contrast
// rasters that an OCR engine reads reliably.
//
// The stage order is fixed:
//
//	decode -> upscale -> grayscale -> denoise -> contrast stretch ->
//	auto/forced invert -> binarize -> RGBA -> sharpen -> pad -> PNG
//
// Each stage produces a new buffer; the caller's input is never modified.
// A [Config] is built once per call by merging [Overrides] or [Option] values
// onto [DefaultConfig] and stays immutable for the run.
//
// # Errors
//
// Every failure is returned as a *[Error] carrying the [Stage] that failed.
// No partial output is ever returned. Callers facing end users should show
// [UserMessage] rather than the error text.
//
// # Thread Safety
//
// [Run], [RunWithReport] and [RunImage] hold no shared state and may be
// called concurrently.
package preprocess
