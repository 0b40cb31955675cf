package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
	"github.com/dashlens/dashlens-ocr/internal/parser"
	"github.com/dashlens/dashlens-ocr/internal/pipeline"
	"github.com/dashlens/dashlens-ocr/internal/preprocess"
)

// HeaderPreprocessReport carries the JSON preprocess report alongside the
// PNG returned by /v1/preprocess.
const HeaderPreprocessReport = "X-Preprocess-Report"

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type textRequest struct {
	Text          string `json:"text"`
	SessionSchema bool   `json:"session_schema"`
}

type classifyResponse struct {
	EntryType parser.EntryType `json:"entry_type"`
	Rule      string           `json:"rule"`
}

type batchResponse struct {
	Count   int                   `json:"count"`
	Failed  int                   `json:"failed"`
	Results []pipeline.Extraction `json:"results"`
}

type healthResponse struct {
	Status string `json:"status"`
	OCR    any    `json:"ocr,omitempty"`
}

func (a *API) handleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok"}
	if a.info != nil {
		resp.OCR = a.info()
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *API) handlePreprocess(c echo.Context) error {
	raw, err := a.readUpload(c)
	if err != nil {
		return uploadError(c, err)
	}
	cfg, err := a.configFor(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid overrides", Detail: err.Error()})
	}

	out, report, err := preprocess.RunWithReport(raw, cfg)
	if err != nil {
		return imageError(c, err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	c.Response().Header().Set(HeaderPreprocessReport, string(reportJSON))
	return c.Blob(http.StatusOK, "image/png", out)
}

func (a *API) handleExtract(c echo.Context) error {
	raw, err := a.readUpload(c)
	if err != nil {
		return uploadError(c, err)
	}
	cfg, err := a.configFor(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid overrides", Detail: err.Error()})
	}

	x, err := a.extractor.ExtractWith(c.Request().Context(), raw, cfg)
	if err != nil {
		return imageError(c, err)
	}
	return c.JSON(http.StatusOK, x)
}

func (a *API) handleBatch(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, a.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		return uploadError(c, err)
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "no images uploaded", Detail: "expected multipart field 'images'"})
	}

	items := make([]pipeline.Item, len(files))
	for i, fh := range files {
		data, err := readFormFile(fh)
		if err != nil {
			return uploadError(c, err)
		}
		items[i] = pipeline.Item{Name: fh.Filename, Data: data}
	}

	results, err := a.extractor.Batch(c.Request().Context(), items)
	if err != nil {
		return err
	}
	resp := batchResponse{Count: len(results), Results: results}
	for _, r := range results {
		if r.Error != "" {
			resp.Failed++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *API) handleParse(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Detail: err.Error()})
	}
	if req.SessionSchema {
		return c.JSON(http.StatusOK, parser.ParseSession(req.Text))
	}
	return c.JSON(http.StatusOK, a.extractor.Parse(req.Text))
}

func (a *API) handleClassify(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Detail: err.Error()})
	}
	entry, rule := parser.ClassifyWithReason(req.Text)
	return c.JSON(http.StatusOK, classifyResponse{EntryType: entry, Rule: rule})
}

// readUpload returns the image from a multipart "image" field or, for any
// other content type, the raw request body.
func (a *API) readUpload(c echo.Context) ([]byte, error) {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, a.maxUpload)

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return nil, err
		}
		return readFormFile(fh)
	}
	return io.ReadAll(req.Body)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload '%s': %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// configFor applies the "overrides" JSON form value or query parameter onto
// the extractor's base config.
func (a *API) configFor(c echo.Context) (preprocess.Config, error) {
	base := a.extractor.Config()
	raw := c.FormValue("overrides")
	if raw == "" {
		return base, nil
	}
	var o preprocess.Overrides
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return base, fmt.Errorf("%w: %v", preprocess.ErrInvalidConfig, err)
	}
	return o.Apply(base)
}

func uploadError(c echo.Context, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, errorBody{
			Error:  "upload too large",
			Detail: fmt.Sprintf("limit is %d bytes", tooLarge.Limit),
		})
	}
	return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid upload", Detail: err.Error()})
}

// imageError maps pipeline failures to responses. Image problems are the
// caller's fault; anything else is the engine's.
func imageError(c echo.Context, err error) error {
	var perr *preprocess.Error
	if errors.As(err, &perr) {
		status := http.StatusUnprocessableEntity
		if perr.Stage == preprocess.StageConfig {
			status = http.StatusBadRequest
		}
		tl.Log(tl.Warning, palette.PurpleBright, "Rejected upload from '%s': %s", c.RealIP(), err)
		return c.JSON(status, errorBody{Error: preprocess.UserMessage, Detail: imageDetail(perr)})
	}
	tl.Log(tl.Error, palette.Red, "Extraction failed for '%s': %s", c.RealIP(), err)
	return c.JSON(http.StatusBadGateway, errorBody{Error: "ocr failed", Detail: err.Error()})
}

func imageDetail(perr *preprocess.Error) string {
	if errors.Is(perr, imaging.ErrEmptyImage) {
		return "empty image"
	}
	return string(perr.Stage)
}
