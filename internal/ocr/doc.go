// Package ocr provides the optical character recognition collaborator used
// after preprocessing.
//
// Callers depend on the [Engine] contract only: image bytes in, recognized
// text and a 0-100 confidence out. [Tesseract] implements it with the
// Tesseract engine via gosseract/v2.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Lifecycle
//
// Initializing Tesseract is expensive, so a [Tesseract] creates its client
// lazily on first use and keeps it for later calls. Holders register with
// [Tesseract.Acquire] and leave with [Tesseract.Release]; when the last
// holder leaves the client is closed and recreated on the next call.
// [Tesseract.Close] shuts the engine down for good.
//
// # Thread Safety
//
// A gosseract client is not safe for concurrent use. [Tesseract] serializes
// Recognize calls internally, so one engine can be shared by many goroutines
// that take turns.
package ocr
