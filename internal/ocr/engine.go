package ocr

import (
	"context"
	"errors"
)

// ErrEngineClosed is returned by engines used after Close.
var ErrEngineClosed = errors.New("ocr engine is closed")

// Result is the output of one recognition.
type Result struct {
	// Text is all recognized text with the engine's line breaks.
	Text string `json:"text"`

	// Confidence is the mean word confidence, 0 to 100.
	Confidence float64 `json:"confidence"`
}

// Engine recognizes text in an encoded image.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (Result, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, image []byte) (Result, error)

// Recognize calls f.
func (f EngineFunc) Recognize(ctx context.Context, image []byte) (Result, error) {
	return f(ctx, image)
}
