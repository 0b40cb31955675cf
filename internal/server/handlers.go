package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
	"github.com/dashlens/dashlens-ocr/internal/ocr"
	"github.com/dashlens/dashlens-ocr/internal/parser"
	"github.com/dashlens/dashlens-ocr/internal/pipeline"
	"github.com/dashlens/dashlens-ocr/internal/preprocess"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "screenshot_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		tl.Log(tl.Warning, palette.PurpleBright, "Tool '%s' failed: %s", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges preprocessing overrides into the server's base config
//  3. Loads screenshots from cache as needed
//  4. Calls the pipeline, parser or OCR engine
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Screenshots
	case "screenshot_info":
		return s.handleScreenshotInfo(args)
	case "screenshot_preprocess":
		return s.handleScreenshotPreprocess(args)
	case "screenshot_extract":
		return s.handleScreenshotExtract(ctx, args)
	case "screenshot_batch":
		return s.handleScreenshotBatch(ctx, args)

	// Text
	case "earnings_parse_text":
		return s.handleEarningsParseText(args)
	case "earnings_classify":
		return s.handleEarningsClassify(args)

	// Engine
	case "ocr_info":
		return s.handleOCRInfo()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Tools without required arguments
// accept an absent arguments object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// configFor merges overrides into the extractor's base config.
func (s *Server) configFor(o *preprocess.Overrides) (preprocess.Config, error) {
	base := s.extractor.Config()
	if o == nil {
		return base, nil
	}
	return o.Apply(base)
}

// imageFailure replaces pipeline errors with the user-facing message while
// keeping the cause for logs and errors.Is.
func imageFailure(err error) error {
	var perr *preprocess.Error
	if errors.As(err, &perr) {
		return fmt.Errorf("%s: %w", preprocess.UserMessage, err)
	}
	return err
}

// loadScreenshot reads path through the cache. A file that exists but does
// not decode is an image failure.
func (s *Server) loadScreenshot(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, imageFailure(&preprocess.Error{Stage: preprocess.StageDecode, Err: err})
	}
	return img, nil
}

// === Screenshot Handlers ===

type screenshotPathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleScreenshotInfo(args json.RawMessage) (interface{}, error) {
	var a screenshotPathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadScreenshotInfo(s.cache, a.Path)
}

type screenshotPreprocessArgs struct {
	Path       string                `json:"path"`
	OutputPath string                `json:"output_path"`
	Overrides  *preprocess.Overrides `json:"overrides"`
}

// PreprocessResult is returned by screenshot_preprocess. Exactly one of
// OutputPath and ImageBase64 is set.
type PreprocessResult struct {
	Report      *preprocess.Report `json:"report"`
	OutputPath  string             `json:"output_path,omitempty"`
	ImageBase64 string             `json:"image_base64,omitempty"`
	MimeType    string             `json:"mime_type,omitempty"`
}

func (s *Server) handleScreenshotPreprocess(args json.RawMessage) (interface{}, error) {
	var a screenshotPreprocessArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	cfg, err := s.configFor(a.Overrides)
	if err != nil {
		return nil, err
	}

	src, err := s.loadScreenshot(a.Path)
	if err != nil {
		return nil, err
	}
	img, report, err := preprocess.RunImage(src, cfg)
	if err != nil {
		return nil, imageFailure(err)
	}

	if a.OutputPath != "" {
		if err := imgio.Save(a.OutputPath, img, imgio.PNGEncoder()); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		tl.Log(tl.Info1, palette.Green, "Wrote preprocessed '%s' to '%s'", a.Path, a.OutputPath)
		return &PreprocessResult{Report: report, OutputPath: a.OutputPath}, nil
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, imageFailure(&preprocess.Error{Stage: preprocess.StageEncode, Err: err})
	}
	return &PreprocessResult{
		Report:      report,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

type screenshotExtractArgs struct {
	Path      string                `json:"path"`
	Overrides *preprocess.Overrides `json:"overrides"`
}

func (s *Server) handleScreenshotExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a screenshotExtractArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	cfg, err := s.configFor(a.Overrides)
	if err != nil {
		return nil, err
	}

	src, err := s.loadScreenshot(a.Path)
	if err != nil {
		return nil, err
	}
	x, err := s.extractor.ExtractImage(ctx, src, cfg)
	if err != nil {
		return nil, imageFailure(err)
	}
	x.Source = a.Path
	return x, nil
}

type screenshotBatchArgs struct {
	Paths []string `json:"paths"`
}

// BatchResult is returned by screenshot_batch.
type BatchResult struct {
	Count   int                   `json:"count"`
	Failed  int                   `json:"failed"`
	Results []pipeline.Extraction `json:"results"`
}

func (s *Server) handleScreenshotBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a screenshotBatchArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}

	items := make([]pipeline.Item, len(a.Paths))
	for i, path := range a.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			// An unreadable file fails decoding and is reported per item.
			tl.Log(tl.Warning, palette.PurpleBright, "Failed to read '%s': %s", path, err)
		}
		items[i] = pipeline.Item{Name: path, Data: data}
	}

	results, err := s.extractor.Batch(ctx, items)
	if err != nil {
		return nil, err
	}

	out := &BatchResult{Count: len(results), Results: results}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
		}
	}
	return out, nil
}

// === Text Handlers ===

type earningsTextArgs struct {
	Text          string `json:"text"`
	SessionSchema bool   `json:"session_schema"`
}

func (s *Server) handleEarningsParseText(args json.RawMessage) (interface{}, error) {
	var a earningsTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SessionSchema {
		return parser.ParseSession(a.Text), nil
	}
	return s.extractor.Parse(a.Text), nil
}

// ClassifyResult is returned by earnings_classify.
type ClassifyResult struct {
	EntryType parser.EntryType `json:"entry_type"`
	Rule      string           `json:"rule"`
}

func (s *Server) handleEarningsClassify(args json.RawMessage) (interface{}, error) {
	var a earningsTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	entry, rule := parser.ClassifyWithReason(a.Text)
	return &ClassifyResult{EntryType: entry, Rule: rule}, nil
}

// === Engine Handlers ===

func (s *Server) handleOCRInfo() (interface{}, error) {
	if s.info == nil {
		return ocr.Info{Language: ocr.DefaultLanguage, Error: "no OCR engine configured"}, nil
	}
	return s.info(), nil
}
