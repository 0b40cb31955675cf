// Package httpapi exposes the screenshot pipeline and the earnings parser
// over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/dashlens/dashlens-ocr/internal/ocr"
	"github.com/dashlens/dashlens-ocr/internal/pipeline"
)

const healthPath = "/healthz"

// Options configures the API.
type Options struct {
	RateLimit      int   // requests per second per client IP
	RateBurst      int   // burst per client IP
	MaxUploadBytes int64 // request body limit for image uploads
}

// API is the HTTP front end. It implements http.Handler.
type API struct {
	echo      *echo.Echo
	extractor *pipeline.Extractor
	info      func() ocr.Info
	limiter   *RateLimiter
	maxUpload int64
}

// DefaultOptions mirrors the config package defaults.
func DefaultOptions() Options {
	return Options{RateLimit: 5, RateBurst: 10, MaxUploadBytes: 20 << 20}
}

// New builds the API and registers its routes. info may be nil. Zero
// fields in opts take their DefaultOptions value.
func New(extractor *pipeline.Extractor, info func() ocr.Info, opts Options) *API {
	def := DefaultOptions()
	if opts.RateLimit < 1 {
		opts.RateLimit = def.RateLimit
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = def.RateBurst
	}
	if opts.MaxUploadBytes < 1 {
		opts.MaxUploadBytes = def.MaxUploadBytes
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &API{
		echo:      e,
		extractor: extractor,
		info:      info,
		limiter:   NewRateLimiter(opts.RateLimit, opts.RateBurst),
		maxUpload: opts.MaxUploadBytes,
	}

	e.Use(RouteAccessLoggerMiddleware)
	e.GET(healthPath, a.handleHealth)

	v1 := e.Group("/v1", a.limiter.Middleware)
	v1.POST("/preprocess", a.handlePreprocess)
	v1.POST("/extract", a.handleExtract)
	v1.POST("/batch", a.handleBatch)
	v1.POST("/parse", a.handleParse)
	v1.POST("/classify", a.handleClassify)

	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (a *API) Start(addr string) error {
	tl.Log(tl.Notice, palette.BlueBold, "HTTP API listening on '%s'", addr)
	if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *API) Shutdown(ctx context.Context) error {
	tl.Log(tl.Notice, palette.Blue, "HTTP API shutting down")
	return a.echo.Shutdown(ctx)
}
