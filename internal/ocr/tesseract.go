package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// DefaultLanguage is the Tesseract language code used when none is given.
const DefaultLanguage = "eng"

// Tesseract is a lazily initialized, reference-counted Tesseract engine.
type Tesseract struct {
	mu       sync.Mutex
	language string
	client   *gosseract.Client
	refs     int
	closed   bool
}

// NewTesseract returns an engine for language. The Tesseract client is not
// created until the first Recognize call.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{language: language}
}

// Language returns the Tesseract language code.
func (t *Tesseract) Language() string {
	return t.language
}

// Acquire registers a holder of the engine.
func (t *Tesseract) Acquire() *Tesseract {
	t.mu.Lock()
	t.refs++
	t.mu.Unlock()
	return t
}

// Release drops a holder. When none remain the client is closed and will be
// recreated by the next Recognize.
func (t *Tesseract) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.refs == 0 {
		return
	}
	t.refs--
	if t.refs == 0 {
		t.closeClient()
	}
}

// refCount reports the number of current holders.
func (t *Tesseract) refCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refs
}

// Close shuts the engine down. Later calls to Recognize fail with
// ErrEngineClosed.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return t.closeClient()
}

func (t *Tesseract) closeClient() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	tl.Log(tl.Verbose, palette.CyanDim, "Closed %s client for '%s'", "tesseract", t.language)
	if err != nil {
		return fmt.Errorf("failed to close tesseract client: %w", err)
	}
	return nil
}

// Recognize runs OCR on an encoded image.
//
// Parameters:
//   - ctx: checked before and after waiting for the engine. A running
//     recognition cannot be interrupted.
//   - image: PNG, JPEG, TIFF or BMP bytes.
//
// Returns:
//   - Result: the full text and mean word confidence (0 if word boxes are
//     unavailable).
//   - error: ErrEngineClosed after Close, or a wrapped Tesseract error.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return Result{}, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	client, err := t.ensureClient()
	if err != nil {
		return Result{}, err
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return Result{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("OCR failed: %w", err)
	}

	return Result{Text: text, Confidence: meanConfidence(client)}, nil
}

func (t *Tesseract) ensureClient() (*gosseract.Client, error) {
	if t.client != nil {
		return t.client, nil
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(t.language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	t.client = client
	tl.Log(tl.Info, palette.Cyan, "Initialized %s client for '%s'", "tesseract", t.language)
	return client, nil
}

// meanConfidence averages word confidences. Word boxes can fail on some
// Tesseract builds, in which case 0 is reported.
func meanConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return 0
	}
	var sum float64
	n := 0
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		sum += box.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Backend   string `json:"backend"`
	Error     string `json:"error,omitempty"`
}

// Info reports whether the engine is usable and which Tesseract it links.
func (t *Tesseract) Info() Info {
	info := Info{Language: t.Language(), Backend: "gosseract"}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		info.Error = ErrEngineClosed.Error()
		return info
	}

	client := gosseract.NewClient()
	defer client.Close()
	info.Version = client.Version()
	info.Available = info.Version != ""
	if !info.Available {
		info.Error = "tesseract version unavailable"
	}
	return info
}
