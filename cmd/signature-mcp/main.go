package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/ironsheep/signature-redactor/internal/config"
	"github.com/ironsheep/signature-redactor/internal/logging"
	"github.com/ironsheep/signature-redactor/internal/pipeline"
	"github.com/ironsheep/signature-redactor/internal/server"
	"github.com/ironsheep/signature-redactor/internal/vision"
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
			fmt.Printf("signature-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("signature-mcp - MCP server for signature detection and redaction")
			fmt.Println()
			fmt.Println("Usage: signature-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SIGNATURE_CONFIG=<file>         YAML configuration file")
			fmt.Println("  SIGNATURE_LOG_LEVEL=debug       Enable debug logging")
			fmt.Println("  GLM_API_KEY / GEMINI_API_KEY    Enable vision verification")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(os.Getenv("SIGNATURE_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	verifier, err := vision.New(ctx, cfg.Vision)
	if err != nil {
		return fmt.Errorf("failed to create vision client: %w", err)
	}

	logger.Info("signature MCP server starting",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
		zap.Bool("vision", verifier != nil),
		zap.Bool("ocr", cfg.OCR.Enabled))

	server.Version = Version
	srv := server.New(pipeline.New(cfg, logger, verifier), logger)
	return srv.Run(ctx)
}
