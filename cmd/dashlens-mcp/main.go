package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/dashlens/dashlens-ocr/internal/config"
	"github.com/dashlens/dashlens-ocr/internal/ocr"
	"github.com/dashlens/dashlens-ocr/internal/pipeline"
	"github.com/dashlens/dashlens-ocr/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("dashlens-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("dashlens-mcp - MCP server for delivery earnings screenshots")
			fmt.Println()
			fmt.Println("Usage: dashlens-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  DASHLENS_LANGUAGE=eng          Tesseract language")
			fmt.Println("  DASHLENS_WORKERS=4             Batch preprocessing workers")
			fmt.Println("  DASHLENS_SCALE=2.5             Upscale factor")
			fmt.Println("  DASHLENS_BINARIZE=adaptive     adaptive, global or none")
			fmt.Println("  DASHLENS_LOG_LEVEL=debug       Log verbosity")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// stdout is for MCP protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	tl.Log(tl.Info, palette.BlueBold, "dashlens-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	cfg.LogSummary()

	engine := ocr.NewTesseract(cfg.Language).Acquire()
	defer engine.Release()
	tl.Log(tl.Info1, palette.Blue, "Using tesseract language '%s'", engine.Language())

	extractor := pipeline.New(engine, cfg.Preprocess, pipeline.WithWorkers(cfg.Workers))
	srv := server.New(extractor, engine.Info)

	// Serve returns when the client closes stdin.
	if err := srv.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		engine.Release()
		log.Fatalf("Server error: %v", err)
	}
}
