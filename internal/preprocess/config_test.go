package preprocess

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.ScaleFactor != 2.5 {
		t.Errorf("ScaleFactor: got %v, want 2.5", c.ScaleFactor)
	}
	if c.ContrastClipPercent != 5 {
		t.Errorf("ContrastClipPercent: got %v, want 5", c.ContrastClipPercent)
	}
	if !c.AutoInvert || c.ForceInvert {
		t.Errorf("invert policy: got auto=%v force=%v", c.AutoInvert, c.ForceInvert)
	}
	if c.BinarizeMode != imaging.BinarizeAdaptiveMode {
		t.Errorf("BinarizeMode: got %q, want adaptive", c.BinarizeMode)
	}
	if c.AdaptiveBias != -10 {
		t.Errorf("AdaptiveBias: got %v, want -10", c.AdaptiveBias)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero scale", func(c *Config) { c.ScaleFactor = 0 }, true},
		{"huge scale", func(c *Config) { c.ScaleFactor = 50 }, true},
		{"clip above 50", func(c *Config) { c.ContrastClipPercent = 51 }, true},
		{"negative clip", func(c *Config) { c.ContrastClipPercent = -1 }, true},
		{"threshold above 255", func(c *Config) { c.BinaryThreshold = 256 }, true},
		{"adaptive without radius", func(c *Config) { c.AdaptiveRadius = 0 }, true},
		{"global ignores radius", func(c *Config) {
			c.BinarizeMode = imaging.BinarizeGlobalMode
			c.AdaptiveRadius = 0
		}, false},
		{"negative denoise", func(c *Config) { c.DenoiseRadius = -2 }, true},
		{"denoise disabled", func(c *Config) { c.DenoiseRadius = 0 }, false},
		{"sharpen without strength", func(c *Config) { c.SharpenStrength = 0 }, true},
		{"sharpen off ignores strength", func(c *Config) {
			c.Sharpen = false
			c.SharpenStrength = 0
		}, false},
		{"unknown mode", func(c *Config) { c.BinarizeMode = "sauvola" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error does not wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestOverrides_Apply(t *testing.T) {
	var o Overrides
	if err := json.Unmarshal([]byte(`{"scale_factor": 3, "binarize_mode": "Global", "binary_threshold": 140, "sharpen": false}`), &o); err != nil {
		t.Fatalf("failed to unmarshal overrides: %v", err)
	}

	c, err := o.Apply(DefaultConfig())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if c.ScaleFactor != 3 {
		t.Errorf("ScaleFactor: got %v, want 3", c.ScaleFactor)
	}
	if c.BinarizeMode != imaging.BinarizeGlobalMode {
		t.Errorf("BinarizeMode: got %q, want global", c.BinarizeMode)
	}
	if c.BinaryThreshold != 140 {
		t.Errorf("BinaryThreshold: got %d, want 140", c.BinaryThreshold)
	}
	if c.Sharpen {
		t.Error("Sharpen: got true, want false")
	}
	// Untouched fields keep their defaults.
	if c.PaddingPx != 20 || c.AdaptiveRadius != 15 {
		t.Errorf("defaults lost: padding %d, radius %d", c.PaddingPx, c.AdaptiveRadius)
	}
}

func TestOverrides_ApplyInvalid(t *testing.T) {
	base := DefaultConfig()

	badMode := "median"
	if _, err := (Overrides{BinarizeMode: &badMode}).Apply(base); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad mode: got %v, want ErrInvalidConfig", err)
	}

	negative := -5
	c, err := (Overrides{PaddingPx: &negative}).Apply(base)
	if err == nil {
		t.Fatal("negative padding accepted")
	}
	if c != base {
		t.Error("failed Apply must return the base config unchanged")
	}
}

func TestNewConfig_Options(t *testing.T) {
	c := NewConfig(
		WithScale(1.25),
		WithGlobalThreshold(100),
		WithDenoise(0),
		WithInvert(false, true),
		WithPadding(4),
	)
	if c.ScaleFactor != 1.25 || c.BinarizeMode != imaging.BinarizeGlobalMode || c.BinaryThreshold != 100 {
		t.Errorf("options not applied: %+v", c)
	}
	if c.DenoiseRadius != 0 || c.AutoInvert || !c.ForceInvert || c.PaddingPx != 4 {
		t.Errorf("options not applied: %+v", c)
	}

	a := NewConfig(WithAdaptive(9, -4))
	if a.BinarizeMode != imaging.BinarizeAdaptiveMode || a.AdaptiveRadius != 9 || a.AdaptiveBias != -4 {
		t.Errorf("WithAdaptive not applied: %+v", a)
	}
}
