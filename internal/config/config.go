// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/dashlens/dashlens-ocr/internal/preprocess"
)

// Environment variable names.
const (
	EnvLanguage       = "DASHLENS_LANGUAGE"
	EnvHTTPAddr       = "DASHLENS_HTTP_ADDR"
	EnvRateLimit      = "DASHLENS_RATE_LIMIT"
	EnvRateBurst      = "DASHLENS_RATE_BURST"
	EnvWorkers        = "DASHLENS_WORKERS"
	EnvLogLevel       = "DASHLENS_LOG_LEVEL"
	EnvMaxUploadBytes = "DASHLENS_MAX_UPLOAD_BYTES"
	EnvScale          = "DASHLENS_SCALE"
	EnvBinarize       = "DASHLENS_BINARIZE"
	EnvAdaptiveRadius = "DASHLENS_ADAPTIVE_RADIUS"
	EnvAdaptiveBias   = "DASHLENS_ADAPTIVE_BIAS"
)

// DefaultMaxUploadBytes bounds HTTP request bodies.
const DefaultMaxUploadBytes = 20 << 20

// Config holds process configuration
type Config struct {
	// Language is the Tesseract language, e.g. "eng" or "eng+spa".
	Language string

	// HTTP API
	HTTPAddr       string
	RateLimit      int // requests per second per client IP
	RateBurst      int
	MaxUploadBytes int64

	// Workers bounds concurrent preprocessing in batches. 0 means GOMAXPROCS.
	Workers int

	// LogLevel is handed to tintlog through LOG_LEVEL when set.
	LogLevel string

	// Preprocess is the base preprocessing config with env overrides applied.
	Preprocess preprocess.Config
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		Language:       "eng",
		HTTPAddr:       ":8080",
		RateLimit:      5,
		RateBurst:      10,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Preprocess:     preprocess.DefaultConfig(),
	}
}

// Load reads envFiles (".env" when none are given) into the environment
// without overriding variables that are already set, then builds the
// configuration from the environment. Missing env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				tl.Log(tl.Verbose, palette.CyanDim, "Env file '%s' not found, using process environment", path)
				continue
			}
			return nil, fmt.Errorf("failed to load env file '%s': %w", path, err)
		}
		tl.Log(tl.Info1, palette.Purple, "Loaded env file '%s'", path)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	def := Default()
	cfg := &Config{
		Language:       getEnvOrDefault(EnvLanguage, def.Language),
		HTTPAddr:       getEnvOrDefault(EnvHTTPAddr, def.HTTPAddr),
		RateLimit:      getEnvAsIntOrDefault(EnvRateLimit, def.RateLimit),
		RateBurst:      getEnvAsIntOrDefault(EnvRateBurst, def.RateBurst),
		MaxUploadBytes: getEnvAsInt64OrDefault(EnvMaxUploadBytes, def.MaxUploadBytes),
		Workers:        getEnvAsIntOrDefault(EnvWorkers, 0),
		LogLevel:       os.Getenv(EnvLogLevel),
	}

	overrides, err := preprocessOverrides()
	if err != nil {
		return nil, err
	}
	cfg.Preprocess, err = overrides.Apply(def.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.LogLevel != "" && os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}
	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("%s must not be empty", EnvLanguage)
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvRateLimit, c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvRateBurst, c.RateBurst)
	}
	if c.Workers < 0 || c.Workers > 256 {
		return fmt.Errorf("%s must be between 0 and 256, got %d", EnvWorkers, c.Workers)
	}
	if c.MaxUploadBytes < 1024 || c.MaxUploadBytes > 1<<30 { // 1KB to 1GB
		return fmt.Errorf("%s must be between 1KB and 1GB, got %d", EnvMaxUploadBytes, c.MaxUploadBytes)
	}
	return c.Preprocess.Validate()
}

// LogSummary logs the effective configuration.
func (c *Config) LogSummary() {
	tl.Log(
		tl.Info, palette.Blue, "Configuration: language '%s', http '%s', rate '%d/s' burst '%d', workers '%d'",
		c.Language, c.HTTPAddr, c.RateLimit, c.RateBurst, c.Workers,
	)
	tl.LogJSON(tl.Verbose, palette.CyanDim, "Preprocess configuration", c.Preprocess)
}

func preprocessOverrides() (preprocess.Overrides, error) {
	var o preprocess.Overrides
	var err error
	if o.ScaleFactor, err = getEnvAsFloat(EnvScale); err != nil {
		return o, err
	}
	if v := os.Getenv(EnvBinarize); v != "" {
		o.BinarizeMode = &v
	}
	if o.AdaptiveRadius, err = getEnvAsInt(EnvAdaptiveRadius); err != nil {
		return o, err
	}
	if o.AdaptiveBias, err = getEnvAsFloat(EnvAdaptiveBias); err != nil {
		return o, err
	}
	return o, nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		tl.Log(tl.Warning, palette.YellowBold, "%s value '%s' is not an integer, using default '%d'", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		tl.Log(tl.Warning, palette.YellowBold, "%s value '%s' is not an integer, using default '%d'", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsInt returns nil when key is unset. Preprocessing overrides fail
// loudly instead of falling back.
func getEnvAsInt(key string) (*int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &value, nil
}

func getEnvAsFloat(key string) (*float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &value, nil
}
