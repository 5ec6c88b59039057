// Package pipeline runs verification, detection and redaction on one image
// file and writes the result image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/signature-redactor/internal/config"
	"github.com/ironsheep/signature-redactor/internal/detection"
	"github.com/ironsheep/signature-redactor/internal/imaging"
	"github.com/ironsheep/signature-redactor/internal/ocr"
	"github.com/ironsheep/signature-redactor/internal/vision"
)

// ErrUnreadableImage is returned when the input cannot be opened or decoded.
var ErrUnreadableImage = errors.New("unreadable image")

// Mode selects what the pipeline produces.
type Mode string

const (
	// ModeMask verifies, detects and redacts with the configured mode.
	ModeMask Mode = "mask"
	// ModeDetect verifies, detects and draws the boxes instead of redacting.
	ModeDetect Mode = "detect"
	// ModeQuick detects and mosaics without asking the vision model.
	ModeQuick Mode = "quick"
)

// ParseMode validates a mode name. The empty string means ModeMask.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMask:
		return ModeMask, nil
	case ModeDetect:
		return ModeDetect, nil
	case ModeQuick:
		return ModeQuick, nil
	}
	return "", fmt.Errorf("unknown mode: %q (want mask, detect or quick)", s)
}

// OutputName is the default file name written by each mode.
func (m Mode) OutputName() string {
	switch m {
	case ModeDetect:
		return "detected.png"
	case ModeQuick:
		return "quick.png"
	}
	return "masked.png"
}

// Overlay colors and stroke for ModeDetect.
const (
	coarseColor   = "#FF0000"
	refinedColor  = "#00FF00"
	labelText     = "#000000"
	overlayStroke = 2
)

// Result describes one pipeline run.
type Result struct {
	Mode Mode `json:"mode"`

	// Found is true when a signature was located and an output was written.
	Found bool `json:"found"`

	// Verdict is the vision model's answer, nil when verification was not
	// attempted or failed.
	Verdict *vision.Verdict `json:"verdict,omitempty"`

	// Detection is nil when the vision model ruled the image out.
	Detection *detection.Result `json:"detection,omitempty"`

	// OutputPath is the written image, empty when nothing was found.
	OutputPath string `json:"output_path,omitempty"`

	// Image is the produced image, nil when nothing was found.
	Image *image.NRGBA `json:"-"`
}

// Pipeline runs the configured stages. It holds no per-image state.
type Pipeline struct {
	cfg      *config.Config
	detector *detection.Detector
	verifier vision.Verifier
	logger   *zap.Logger
}

// New creates a pipeline. A nil verifier disables vision verification and a
// nil logger discards logs. When cfg enables OCR, Tesseract date detection
// is chained after the geometric date rules.
func New(cfg *config.Config, logger *zap.Logger, verifier vision.Verifier) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []detection.Option{detection.WithLogger(logger.Named("detection"))}
	if cfg.OCR.Enabled {
		opts = append(opts, detection.WithClassifier(detection.ChainClassifier{
			&detection.GeometryDateClassifier{Rules: cfg.Detection.DateRules},
			detection.NewOCRDateClassifier(ocr.NewReader(cfg.OCR.Language), cfg.OCR.Penalty),
		}))
	}

	return &Pipeline{
		cfg:      cfg,
		detector: detection.New(cfg.Detection, opts...),
		verifier: verifier,
		logger:   logger,
	}
}

// Detector returns the underlying detector.
func (p *Pipeline) Detector() *detection.Detector {
	return p.detector
}

// OutputPath returns where mode writes when no explicit path is given.
func (p *Pipeline) OutputPath(mode Mode) string {
	return filepath.Join(p.cfg.Output.Dir, mode.OutputName())
}

// Run processes the image at path. outPath overrides the mode's default
// output file.
//
// Finding nothing is not an error: the result has Found false and no file
// is written.
func (p *Pipeline) Run(ctx context.Context, path string, mode Mode, outPath string) (*Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	p.logger.Info("image loaded",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.String("mode", string(mode)))

	return p.RunImage(ctx, img, mode, outPath)
}

// RunImage is Run for an already decoded image.
func (p *Pipeline) RunImage(ctx context.Context, img image.Image, mode Mode, outPath string) (*Result, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnreadableImage)
	}
	if outPath == "" {
		outPath = p.OutputPath(mode)
	}

	result := &Result{Mode: mode}

	if mode != ModeQuick && p.verifier != nil {
		verdict, ok := p.verify(ctx, img)
		if ok {
			result.Verdict = &verdict
			if !verdict.HasSignature {
				p.logger.Info("no signature found", zap.String("reason", "vision model reports none"))
				return result, nil
			}
		}
	}

	det, err := p.detector.Detect(img)
	if err != nil {
		return nil, err
	}
	result.Detection = det
	if !det.Found {
		p.logger.Info("no signature found", zap.String("reason", "no candidate regions"))
		return result, nil
	}

	out, err := p.render(img, det, mode)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(outPath, out); err != nil {
		return nil, fmt.Errorf("failed to save output: %w", err)
	}

	result.Found = true
	result.OutputPath = outPath
	result.Image = out
	p.logger.Info("output written", zap.String("path", outPath))
	return result, nil
}

// verify asks the vision model. ok is false when verification could not be
// completed and should be skipped.
func (p *Pipeline) verify(ctx context.Context, img image.Image) (vision.Verdict, bool) {
	data, err := imaging.PNGBytes(img)
	if err != nil {
		p.logger.Warn("vision verification skipped", zap.Error(err))
		return vision.Verdict{}, false
	}

	verdict, err := p.verifier.Verify(ctx, data, "image/png")
	if err != nil {
		p.logger.Warn("vision verification skipped", zap.Error(err))
		return vision.Verdict{}, false
	}

	p.logger.Info("vision verdict",
		zap.Bool("has_signature", verdict.HasSignature),
		zap.String("content", verdict.Content))
	return verdict, true
}

// render produces the output image for mode from a successful detection.
func (p *Pipeline) render(img image.Image, det *detection.Result, mode Mode) (*image.NRGBA, error) {
	dst := imaging.Editable(img)

	switch mode {
	case ModeMask:
		if err := imaging.Redact(dst, det.Refined.Rect(), p.cfg.Redact); err != nil {
			return nil, fmt.Errorf("failed to redact: %w", err)
		}
	case ModeQuick:
		opts := imaging.DefaultRedactOptions()
		opts.Factor = p.cfg.Redact.Factor
		if err := imaging.Redact(dst, det.Refined.Rect(), opts); err != nil {
			return nil, fmt.Errorf("failed to redact: %w", err)
		}
	case ModeDetect:
		if err := drawOverlay(dst, det); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// drawOverlay outlines the coarse box in red and the refined box in green,
// with the score above the coarse box.
func drawOverlay(dst *image.NRGBA, det *detection.Result) error {
	coarse, err := imaging.ParseHexColor(coarseColor)
	if err != nil {
		return err
	}
	refined, err := imaging.ParseHexColor(refinedColor)
	if err != nil {
		return err
	}
	text, err := imaging.ParseHexColor(labelText)
	if err != nil {
		return err
	}

	box := det.Best.Box
	imaging.DrawRect(dst, box, coarse, overlayStroke)
	imaging.DrawRect(dst, det.Refined.Rect(), refined, overlayStroke)

	label := ScoreLabel(det.Best.Score)
	y := box.Min.Y - 16
	if y < 1 {
		y = 1
	}
	imaging.DrawLabel(dst, box.Min.X+1, y, label, text, refined)
	return nil
}

// ScoreLabel formats a candidate score for the detect overlay.
func ScoreLabel(score float64) string {
	return fmt.Sprintf("Score:%d", int(math.Round(score)))
}
