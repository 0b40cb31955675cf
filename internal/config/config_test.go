package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
	"github.com/dashlens/dashlens-ocr/internal/preprocess"
)

var allKeys = []string{
	EnvLanguage, EnvHTTPAddr, EnvRateLimit, EnvRateBurst, EnvWorkers, EnvLogLevel,
	EnvMaxUploadBytes, EnvScale, EnvBinarize, EnvAdaptiveRadius, EnvAdaptiveBias,
}

// clearEnv unsets every variable the package reads for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	want := Default()
	if cfg.Language != "eng" || cfg.HTTPAddr != ":8080" {
		t.Errorf("got language %q addr %q", cfg.Language, cfg.HTTPAddr)
	}
	if cfg.RateLimit != want.RateLimit || cfg.RateBurst != want.RateBurst {
		t.Errorf("rate: got %d/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.MaxUploadBytes != 20<<20 || cfg.Workers != 0 {
		t.Errorf("got max upload %d workers %d", cfg.MaxUploadBytes, cfg.Workers)
	}
	if cfg.Preprocess != preprocess.DefaultConfig() {
		t.Errorf("Preprocess: got %+v", cfg.Preprocess)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLanguage, "eng+spa")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9000")
	t.Setenv(EnvRateLimit, "2")
	t.Setenv(EnvRateBurst, "4")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvMaxUploadBytes, "4096")
	t.Setenv(EnvScale, "3")
	t.Setenv(EnvBinarize, "global")
	t.Setenv(EnvAdaptiveRadius, "9")
	t.Setenv(EnvAdaptiveBias, "-4.5")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Language != "eng+spa" || cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("got language %q addr %q", cfg.Language, cfg.HTTPAddr)
	}
	if cfg.RateLimit != 2 || cfg.RateBurst != 4 || cfg.Workers != 3 || cfg.MaxUploadBytes != 4096 {
		t.Errorf("got %+v", cfg)
	}
	p := cfg.Preprocess
	if p.ScaleFactor != 3 || p.BinarizeMode != imaging.BinarizeGlobalMode || p.AdaptiveRadius != 9 || p.AdaptiveBias != -4.5 {
		t.Errorf("Preprocess: got %+v", p)
	}
	// Untouched fields keep their defaults.
	if p.PaddingPx != 20 || !p.Sharpen {
		t.Errorf("Preprocess defaults lost: %+v", p)
	}
}

func TestFromEnv_MalformedIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRateLimit, "fast")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit: got %d, want default 5", cfg.RateLimit)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"scale not a number", EnvScale, "big"},
		{"scale out of range", EnvScale, "0"},
		{"unknown binarize mode", EnvBinarize, "otsu"},
		{"radius not a number", EnvAdaptiveRadius, "wide"},
		{"bias not a number", EnvAdaptiveBias, "low"},
		{"zero rate", EnvRateLimit, "0"},
		{"negative workers", EnvWorkers, "-1"},
		{"tiny upload limit", EnvMaxUploadBytes, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("%s=%q: expected error", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := EnvLanguage + "=deu\n" + EnvBinarize + "=none\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	// Process environment wins over the file.
	t.Setenv(EnvBinarize, "adaptive")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Language != "deu" {
		t.Errorf("Language: got %q, want deu", cfg.Language)
	}
	if cfg.Preprocess.BinarizeMode != imaging.BinarizeAdaptiveMode {
		t.Errorf("BinarizeMode: got %s, want adaptive", cfg.Preprocess.BinarizeMode)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("missing env file should not fail: %v", err)
	}
	if cfg.Language != "eng" {
		t.Errorf("Language: got %q", cfg.Language)
	}
}
