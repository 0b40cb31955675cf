package preprocess

import (
	"fmt"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
)

// MaxScaleFactor bounds the upscale factor so a single request cannot
// allocate an unbounded raster.
const MaxScaleFactor = 8.0

// Config holds every preprocessing option.
type Config struct {
	// ScaleFactor is the upscale multiplier applied before any filtering.
	ScaleFactor float64 `json:"scale_factor"`

	// ContrastClipPercent is the share of pixels (0-50) clipped at each end
	// of the histogram before stretching.
	ContrastClipPercent float64 `json:"contrast_clip_percent"`

	// AutoInvert inverts dark-mode screenshots based on the median intensity.
	AutoInvert bool `json:"auto_invert"`

	// ForceInvert inverts unconditionally. Ignored when AutoInvert is set.
	ForceInvert bool `json:"force_invert"`

	// DarkCutoff is the median intensity below which an image counts as dark.
	DarkCutoff int `json:"dark_cutoff"`

	BinarizeMode    imaging.BinarizeMode `json:"binarize_mode"`
	BinaryThreshold int                  `json:"binary_threshold"`
	AdaptiveRadius  int                  `json:"adaptive_radius"`
	AdaptiveBias    float64              `json:"adaptive_bias"`

	// DenoiseRadius is the box blur radius. Zero disables denoising.
	DenoiseRadius int `json:"denoise_radius"`

	Sharpen         bool    `json:"sharpen"`
	SharpenStrength float64 `json:"sharpen_strength"`

	// PaddingPx is the white border added on every side of the output.
	PaddingPx int `json:"padding_px"`
}

// DefaultConfig returns the configuration tuned for phone screenshots of
// earnings summaries.
func DefaultConfig() Config {
	return Config{
		ScaleFactor:         2.5,
		ContrastClipPercent: 5,
		AutoInvert:          true,
		ForceInvert:         false,
		DarkCutoff:          imaging.DefaultDarkCutoff,
		BinarizeMode:        imaging.BinarizeAdaptiveMode,
		BinaryThreshold:     128,
		AdaptiveRadius:      15,
		AdaptiveBias:        -10,
		DenoiseRadius:       1,
		Sharpen:             true,
		SharpenStrength:     1.5,
		PaddingPx:           20,
	}
}

// Validate reports the first invalid field, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !(c.ScaleFactor > 0) || c.ScaleFactor > MaxScaleFactor:
		return fmt.Errorf("%w: scale_factor %v must be in (0, %v]", ErrInvalidConfig, c.ScaleFactor, MaxScaleFactor)
	case c.ContrastClipPercent < 0 || c.ContrastClipPercent > 50:
		return fmt.Errorf("%w: contrast_clip_percent %v must be in [0, 50]", ErrInvalidConfig, c.ContrastClipPercent)
	case c.DarkCutoff < 0 || c.DarkCutoff > 256:
		return fmt.Errorf("%w: dark_cutoff %d must be in [0, 256]", ErrInvalidConfig, c.DarkCutoff)
	case c.BinaryThreshold < 0 || c.BinaryThreshold > 255:
		return fmt.Errorf("%w: binary_threshold %d must be in [0, 255]", ErrInvalidConfig, c.BinaryThreshold)
	case c.BinarizeMode == imaging.BinarizeAdaptiveMode && c.AdaptiveRadius <= 0:
		return fmt.Errorf("%w: adaptive_radius %d must be positive", ErrInvalidConfig, c.AdaptiveRadius)
	case c.DenoiseRadius < 0:
		return fmt.Errorf("%w: denoise_radius %d must not be negative", ErrInvalidConfig, c.DenoiseRadius)
	case c.Sharpen && !(c.SharpenStrength > 0):
		return fmt.Errorf("%w: sharpen_strength %v must be positive", ErrInvalidConfig, c.SharpenStrength)
	case c.PaddingPx < 0:
		return fmt.Errorf("%w: padding_px %d must not be negative", ErrInvalidConfig, c.PaddingPx)
	}
	if _, err := imaging.ParseBinarizeMode(string(c.BinarizeMode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Overrides is the caller-facing partial config. Nil fields keep the value
// they are applied onto.
type Overrides struct {
	ScaleFactor         *float64 `json:"scale_factor,omitempty"`
	ContrastClipPercent *float64 `json:"contrast_clip_percent,omitempty"`
	AutoInvert          *bool    `json:"auto_invert,omitempty"`
	ForceInvert         *bool    `json:"force_invert,omitempty"`
	DarkCutoff          *int     `json:"dark_cutoff,omitempty"`
	BinarizeMode        *string  `json:"binarize_mode,omitempty"`
	BinaryThreshold     *int     `json:"binary_threshold,omitempty"`
	AdaptiveRadius      *int     `json:"adaptive_radius,omitempty"`
	AdaptiveBias        *float64 `json:"adaptive_bias,omitempty"`
	DenoiseRadius       *int     `json:"denoise_radius,omitempty"`
	Sharpen             *bool    `json:"sharpen,omitempty"`
	SharpenStrength     *float64 `json:"sharpen_strength,omitempty"`
	PaddingPx           *int     `json:"padding_px,omitempty"`
}

// Apply merges o onto base and validates the result.
func (o Overrides) Apply(base Config) (Config, error) {
	c := base
	setIf(&c.ScaleFactor, o.ScaleFactor)
	setIf(&c.ContrastClipPercent, o.ContrastClipPercent)
	setIf(&c.AutoInvert, o.AutoInvert)
	setIf(&c.ForceInvert, o.ForceInvert)
	setIf(&c.DarkCutoff, o.DarkCutoff)
	setIf(&c.BinaryThreshold, o.BinaryThreshold)
	setIf(&c.AdaptiveRadius, o.AdaptiveRadius)
	setIf(&c.AdaptiveBias, o.AdaptiveBias)
	setIf(&c.DenoiseRadius, o.DenoiseRadius)
	setIf(&c.Sharpen, o.Sharpen)
	setIf(&c.SharpenStrength, o.SharpenStrength)
	setIf(&c.PaddingPx, o.PaddingPx)
	if o.BinarizeMode != nil {
		mode, err := imaging.ParseBinarizeMode(*o.BinarizeMode)
		if err != nil {
			return base, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.BinarizeMode = mode
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Option mutates a Config under construction.
type Option func(*Config)

// NewConfig applies opts to DefaultConfig.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithScale sets the upscale factor.
func WithScale(factor float64) Option {
	return func(c *Config) { c.ScaleFactor = factor }
}

// WithBinarize selects the binarization strategy.
func WithBinarize(mode imaging.BinarizeMode) Option {
	return func(c *Config) { c.BinarizeMode = mode }
}

// WithGlobalThreshold selects global binarization at threshold.
func WithGlobalThreshold(threshold int) Option {
	return func(c *Config) {
		c.BinarizeMode = imaging.BinarizeGlobalMode
		c.BinaryThreshold = threshold
	}
}

// WithAdaptive selects adaptive binarization with the given window radius and bias.
func WithAdaptive(radius int, bias float64) Option {
	return func(c *Config) {
		c.BinarizeMode = imaging.BinarizeAdaptiveMode
		c.AdaptiveRadius = radius
		c.AdaptiveBias = bias
	}
}

// WithDenoise sets the box blur radius.
func WithDenoise(radius int) Option {
	return func(c *Config) { c.DenoiseRadius = radius }
}

// WithInvert sets the polarity policy.
func WithInvert(auto, force bool) Option {
	return func(c *Config) {
		c.AutoInvert = auto
		c.ForceInvert = force
	}
}

// WithSharpen enables or disables sharpening at strength.
func WithSharpen(enabled bool, strength float64) Option {
	return func(c *Config) {
		c.Sharpen = enabled
		c.SharpenStrength = strength
	}
}

// WithPadding sets the white border width.
func WithPadding(px int) Option {
	return func(c *Config) { c.PaddingPx = px }
}
