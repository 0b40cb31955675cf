// dashlens turns delivery earnings screenshots into structured records.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"github.com/dashlens/dashlens-ocr/internal/config"
	"github.com/dashlens/dashlens-ocr/internal/httpapi"
	"github.com/dashlens/dashlens-ocr/internal/imaging"
	"github.com/dashlens/dashlens-ocr/internal/ocr"
	"github.com/dashlens/dashlens-ocr/internal/parser"
	"github.com/dashlens/dashlens-ocr/internal/pipeline"
	"github.com/dashlens/dashlens-ocr/internal/preprocess"
	"github.com/dashlens/dashlens-ocr/internal/util"
)

const usage = `Usage: dashlens <subprogram> [flags]

Subprograms:
  preprocess  Clean a screenshot for OCR and save it as PNG
  extract     OCR a screenshot or a directory of screenshots into records
  parse       Parse OCR text from a file (or - for stdin) into a record
  serve       Run the HTTP API
  info        Report Tesseract availability`

func main() {
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "%s", usage)
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	switch subprogram {
	case "preprocess":
		runPreprocess(subprogram, flags)
	case "extract":
		runExtract(subprogram, flags)
	case "parse":
		runParse(subprogram, flags)
	case "serve":
		runServe(subprogram, flags)
	case "info":
		runInfo(subprogram, flags)
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}

// loadConfig reads the env file and the environment, exiting on error.
func loadConfig(envPath string) *config.Config {
	cfg, err := config.Load(envPath)
	xerr.QuitIfError(err, "Unable to load configuration")
	cfg.LogSummary()
	return cfg
}

// applyOverrides merges a JSON overrides object onto base.
func applyOverrides(base preprocess.Config, overridesJSON string) (preprocess.Config, *xerr.Error) {
	if overridesJSON == "" {
		return base, nil
	}
	var o preprocess.Overrides
	if err := json.Unmarshal([]byte(overridesJSON), &o); err != nil {
		return base, xerr.NewError(err, "parse -overrides JSON", overridesJSON)
	}
	cfg, err := o.Apply(base)
	if err != nil {
		return base, xerr.NewError(err, "apply -overrides", overridesJSON)
	}
	return cfg, nil
}

/*
runPreprocess cleans one screenshot and writes the OCR-ready PNG to -out.
The stage report is logged at Verbose level.
*/
func runPreprocess(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	envPath := subprogramCmd.String("env", ".env", "Path to an optional .env file")
	imagePath := subprogramCmd.String("image", "", "Screenshot to preprocess (.png/.jpg/.jpeg/.gif)")
	outPath := subprogramCmd.String("out", "", "Where to write the preprocessed PNG")
	overrides := subprogramCmd.String("overrides", "", `Preprocessing overrides as JSON, e.g. '{"scale_factor":3}'`)

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(imagePath, "image")
	util.RequiredFlag(outPath, "out")
	util.EnsureFlags()

	cfg := loadConfig(*envPath)
	ppCfg, e := applyOverrides(cfg.Preprocess, *overrides)
	e.QuitIf("error")

	data, err := os.ReadFile(*imagePath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *imagePath))
	src, err := imaging.Decode(data)
	xerr.QuitIfError(err, preprocess.UserMessage)

	img, report, err := preprocess.RunImage(src, ppCfg)
	xerr.QuitIfError(err, preprocess.UserMessage)
	tl.LogJSON(tl.Verbose, palette.CyanDim, "Preprocess report", report)

	xerr.QuitIfError(imgio.Save(*outPath, img, imgio.PNGEncoder()), "save preprocessed image")
	tl.Log(tl.Notice1, palette.GreenBold, "Saved '%dx%d' preprocessed image to '%s'", report.Width, report.Height, *outPath)
}

/*
runExtract runs the full pipeline. -image may be a single screenshot or a
directory; directories are processed as one batch where failed screenshots
are reported and skipped.

Results are printed as JSON, or written to -out when given.
*/
func runExtract(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	envPath := subprogramCmd.String("env", ".env", "Path to an optional .env file")
	imagePath := subprogramCmd.String("image", "", "Screenshot OR a directory with screenshots (.png/.jpg/.jpeg/.gif)")
	outPath := subprogramCmd.String("out", "", "Write JSON results here instead of stdout")
	session := subprogramCmd.Bool("session", false, "Report day and unknown entries with the session schema")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(imagePath, "image")
	util.EnsureFlags()

	cfg := loadConfig(*envPath)
	images, e := resolveImagesToProcess(*imagePath)
	e.QuitIf("error")
	if len(images) == 0 {
		tl.Log(tl.Warning, palette.PurpleBold, "No screenshots found at: '%s'", *imagePath)
		os.Exit(0)
	}

	engine := ocr.NewTesseract(cfg.Language).Acquire()
	defer engine.Release()
	tl.Log(tl.Info1, palette.Blue, "Using tesseract language '%s'", engine.Language())
	extractor := pipeline.New(engine, cfg.Preprocess,
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithParseOptions(parser.Options{SessionSchema: *session}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, e := readItems(images)
	e.QuitIf("error")

	var result any
	if len(items) == 1 && !isDir(*imagePath) {
		x, err := extractor.Extract(ctx, items[0].Data)
		if err != nil {
			engine.Release()
			xerr.QuitIfError(err, preprocess.UserMessage)
		}
		x.Source = items[0].Name
		result = x
	} else {
		results, err := extractor.Batch(ctx, items)
		if err != nil {
			engine.Release()
			xerr.QuitIfError(err, "batch extraction")
		}
		result = results
	}

	e = writeJSON(*outPath, result)
	e.QuitIf("error")
}

/*
runParse parses OCR text without touching images. Useful for replaying
text captured earlier or produced by another OCR engine.
*/
func runParse(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	textPath := subprogramCmd.String("text", "", "OCR text file, or - for stdin")
	session := subprogramCmd.Bool("session", false, "Report day and unknown entries with the session schema")
	classifyOnly := subprogramCmd.Bool("classify", false, "Print only the entry type and the rule that chose it")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(textPath, "text")
	util.EnsureFlags()

	var data []byte
	var err error
	if *textPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*textPath)
	}
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read text '%s'", *textPath))
	tl.Log(tl.Verbose, palette.BlueDim, "OCR text:\n```\n%s\n```", data)

	if *classifyOnly {
		entry, rule := parser.ClassifyWithReason(string(data))
		e := writeJSON("", map[string]string{"entry_type": string(entry), "rule": rule})
		e.QuitIf("error")
		return
	}

	record := parser.ParseWith(string(data), parser.Options{SessionSchema: *session})
	e := writeJSON("", record)
	e.QuitIf("error")
}

/*
runServe starts the HTTP API and shuts it down gracefully on SIGINT or
SIGTERM.
*/
func runServe(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	envPath := subprogramCmd.String("env", ".env", "Path to an optional .env file")
	addr := subprogramCmd.String("addr", "", "Listen address (default: DASHLENS_HTTP_ADDR)")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	cfg := loadConfig(*envPath)
	if *addr == "" {
		*addr = cfg.HTTPAddr
	}

	engine := ocr.NewTesseract(cfg.Language).Acquire()
	defer engine.Release()
	tl.Log(tl.Info1, palette.Blue, "Using tesseract language '%s'", engine.Language())

	extractor := pipeline.New(engine, cfg.Preprocess, pipeline.WithWorkers(cfg.Workers))
	api := httpapi.New(extractor, engine.Info, httpapi.Options{
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- api.Start(*addr) }()

	select {
	case err := <-errCh:
		if err != nil {
			engine.Release()
			xerr.QuitIfError(err, "HTTP server")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			tl.Log(tl.Error, palette.RedBold, "Shutdown failed: '%s'", err)
		}
	}
	tl.Log(tl.Notice, palette.GreenBold, "%s", "HTTP API stopped")
}

func runInfo(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	language := subprogramCmd.String("language", ocr.DefaultLanguage, "Tesseract language to report")
	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")

	engine := ocr.NewTesseract(*language)
	defer engine.Close()

	e := writeJSON("", engine.Info())
	e.QuitIf("error")
}
