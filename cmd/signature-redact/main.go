package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/signature-redactor/internal/config"
	"github.com/ironsheep/signature-redactor/internal/logging"
	"github.com/ironsheep/signature-redactor/internal/pipeline"
	"github.com/ironsheep/signature-redactor/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type options struct {
	configPath string
	output     string
	verbose    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "signature-redact <image> [mask|detect|quick]",
		Short: "Find and redact the handwritten signature on a scanned page",
		Long: `signature-redact locates the most signature-like region of a scanned
document and writes a copy of the image with it obscured.

Modes:
  mask    (default) optional vision check, detect, redact, write masked.png
  detect  optional vision check, detect, draw boxes and score, write detected.png
  quick   detect and mosaic without the vision check, write quick.png

The vision check runs when an API key is configured:
  GLM_API_KEY, GEMINI_API_KEY or SIGNATURE_VISION_API_KEY.`,
		Args:          cobra.RangeArgs(1, 2),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), out, opts, args)
		},
	}
	cmd.SetOut(out)
	cmd.SetVersionTemplate(fmt.Sprintf("signature-redact %s\n  Build time: %s\n  Git commit: %s\n",
		Version, BuildTime, GitCommit))

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.output, "output", "o", "", "output image path (default: mode's file in the output directory)")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts *options, args []string) error {
	mode := pipeline.ModeMask
	if len(args) > 1 {
		var err error
		if mode, err = pipeline.ParseMode(args[1]); err != nil {
			return err
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var verifier vision.Verifier
	if mode != pipeline.ModeQuick {
		verifier, err = vision.New(ctx, cfg.Vision)
		if err != nil {
			return fmt.Errorf("failed to create vision client: %w", err)
		}
		if verifier == nil {
			logger.Info("vision verification disabled")
		}
	}

	res, err := pipeline.New(cfg, logger, verifier).Run(ctx, args[0], mode, opts.output)
	if err != nil {
		return err
	}

	if !res.Found {
		fmt.Fprintln(out, "no signature found")
		return nil
	}

	det := res.Detection
	logger.Debug("run complete", zap.Int("candidates", len(det.Candidates)))
	fmt.Fprintf(out, "signature at (%d,%d)-(%d,%d), %s\n",
		det.Refined.X1, det.Refined.Y1, det.Refined.X2, det.Refined.Y2,
		pipeline.ScoreLabel(det.Best.Score))
	if res.Verdict != nil && res.Verdict.Content != "" {
		fmt.Fprintf(out, "signature text: %s\n", res.Verdict.Content)
	}
	fmt.Fprintf(out, "wrote %s\n", res.OutputPath)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
