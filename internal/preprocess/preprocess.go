package preprocess

import (
	"image"
	"image/color"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
)

// Report records the decisions taken during one preprocessing run.
type Report struct {
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
	ScaledWidth  int `json:"scaled_width"`
	ScaledHeight int `json:"scaled_height"`
	Width        int `json:"width"`
	Height       int `json:"height"`

	ClipLow  uint8 `json:"clip_low"`
	ClipHigh uint8 `json:"clip_high"`

	// Median is the median intensity of the stretched buffer, used for the
	// dark-mode decision.
	Median   uint8 `json:"median"`
	Inverted bool  `json:"inverted"`

	BinarizeMode imaging.BinarizeMode `json:"binarize_mode"`

	// SourceTheme describes the background of the screenshot as received.
	SourceTheme imaging.Theme `json:"source_theme"`
}

// Run preprocesses an encoded image and returns the cleaned raster as PNG.
//
// Parameters:
//   - raw: PNG, JPEG or GIF bytes.
//   - cfg: a validated or default Config.
//
// Returns:
//   - []byte: the lossless PNG output.
//   - error: a *Error naming the failed stage.
func Run(raw []byte, cfg Config) ([]byte, error) {
	out, _, err := RunWithReport(raw, cfg)
	return out, err
}

// RunWithReport is Run that also returns the stage decisions.
func RunWithReport(raw []byte, cfg Config) ([]byte, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, stageError(StageConfig, err)
	}

	src, err := imaging.Decode(raw)
	if err != nil {
		tl.Log(tl.Warning, palette.PurpleBright, "Rejected image of '%d' bytes: %s", len(raw), err)
		return nil, nil, stageError(StageDecode, err)
	}

	img, report, err := RunImage(src, cfg)
	if err != nil {
		return nil, nil, err
	}

	out, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, nil, stageError(StageEncode, err)
	}
	return out, report, nil
}

// RunImage runs every stage after decoding on an already decoded image.
func RunImage(src image.Image, cfg Config) (*image.NRGBA, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, stageError(StageConfig, err)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, nil, stageError(StageDecode, imaging.ErrEmptyImage)
	}

	report := &Report{
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
		BinarizeMode: cfg.BinarizeMode,
		SourceTheme:  imaging.SampleTheme(src),
	}

	scaled := imaging.Upscale(src, cfg.ScaleFactor)
	report.ScaledWidth, report.ScaledHeight = scaled.Bounds().Dx(), scaled.Bounds().Dy()
	tl.Log(tl.Detailed, palette.CyanDim, "Upscaled '%dx%d' to '%dx%d'",
		report.SourceWidth, report.SourceHeight, report.ScaledWidth, report.ScaledHeight)

	gray := imaging.Grayscale(scaled)
	gray = imaging.BoxBlur(gray, cfg.DenoiseRadius)

	report.ClipLow, report.ClipHigh = imaging.NewHistogram(gray).ClipPoints(cfg.ContrastClipPercent)
	gray = imaging.Stretch(gray, report.ClipLow, report.ClipHigh)

	report.Inverted, report.Median = imaging.Polarity(gray, cfg.AutoInvert, cfg.ForceInvert, cfg.DarkCutoff)
	if report.Inverted {
		gray = imaging.Invert(gray)
	}
	tl.Log(tl.Detailed, palette.CyanDim, "Contrast clip '%d..%d', median '%d', inverted '%t'",
		report.ClipLow, report.ClipHigh, report.Median, report.Inverted)

	gray, err := imaging.Binarize(gray, cfg.BinarizeMode, uint8(cfg.BinaryThreshold), cfg.AdaptiveRadius, cfg.AdaptiveBias)
	if err != nil {
		return nil, nil, stageError(StageBinarize, err)
	}

	rgba := gray.ToRGBA()
	if cfg.Sharpen {
		rgba = imaging.Sharpen(rgba, cfg.SharpenStrength)
	}

	out := imaging.Pad(rgba, cfg.PaddingPx, color.White)
	report.Width, report.Height = out.Bounds().Dx(), out.Bounds().Dy()

	tl.Log(tl.Verbose, palette.Cyan, "Preprocessed '%dx%d' screenshot into '%dx%d' %s raster",
		report.SourceWidth, report.SourceHeight, report.Width, report.Height, cfg.BinarizeMode)
	return out, report, nil
}
