package detection

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/signature-redactor/internal/imaging"
)

// Params bundles the settings of every detection stage.
type Params struct {
	Threshold imaging.ThresholdParams `yaml:"threshold" json:"threshold"`
	Proposer  ProposerParams          `yaml:"proposer" json:"proposer"`
	Scoring   ScoringWeights          `yaml:"scoring" json:"scoring"`
	DateRules []DateRule              `yaml:"date_rules" json:"date_rules"`
	TieBreak  TieBreak                `yaml:"tie_break" json:"tie_break"`
	Refine    RefineParams            `yaml:"refine" json:"refine"`
}

// DefaultParams returns the default settings for all stages.
func DefaultParams() Params {
	return Params{
		Threshold: imaging.DefaultThresholdParams(),
		Proposer:  DefaultProposerParams(),
		Scoring:   DefaultScoringWeights(),
		DateRules: DefaultDateRules(),
		TieBreak:  TieBreakStable,
		Refine:    DefaultRefineParams(),
	}
}

// Result is the outcome of one detection run.
type Result struct {
	// Found is false when no candidate scored above zero.
	Found bool `json:"found"`

	// Width and Height of the analyzed image.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Candidates lists every positive candidate, best first.
	Candidates []Candidate `json:"candidates"`

	// Best is Candidates[0], or nil when nothing was found.
	Best *Candidate `json:"best,omitempty"`

	// Refined is the tightened box around Best's ink.
	Refined Bounds `json:"refined"`

	// RefinedFromInk is false when refinement fell back to the coarse box.
	RefinedFromInk bool `json:"refined_from_ink"`
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger for per-stage debug output.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClassifier replaces the default geometry-based date classifier.
func WithClassifier(c RegionClassifier) Option {
	return func(d *Detector) {
		if c != nil {
			d.scorer.Classifier = c
		}
	}
}

// Detector runs binarization, proposal, scoring and refinement on an image.
// A Detector holds no per-image state and may be reused.
type Detector struct {
	params   Params
	proposer *Proposer
	scorer   *Scorer
	refiner  *Refiner
	logger   *zap.Logger
}

// New creates a Detector.
func New(p Params, opts ...Option) *Detector {
	d := &Detector{
		params:   p,
		proposer: NewProposer(p.Proposer),
		scorer:   NewScorer(p.Scoring, &GeometryDateClassifier{Rules: p.DateRules}, p.TieBreak),
		refiner:  NewRefiner(p.Refine),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Params returns the detector's settings.
func (d *Detector) Params() Params {
	return d.params
}

// Candidates returns every positive-scoring candidate region, best first.
func (d *Detector) Candidates(img image.Image) []Candidate {
	b := img.Bounds()
	mask := imaging.Binarize(img, d.params.Threshold)
	boxes := d.proposer.Propose(mask)
	d.logger.Debug("regions proposed",
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Int("boxes", len(boxes)))

	// Boxes are mask coordinates; shift them for classifiers reading pixels.
	var src image.Image
	if b.Min == (image.Point{}) {
		src = img
	} else {
		src = imaging.Editable(img)
	}

	ranked := d.scorer.RankImage(src, boxes, mask)
	for _, c := range ranked {
		d.logger.Debug("candidate scored",
			zap.Stringer("box", c.Box),
			zap.Float64("score", c.Score),
			zap.Float64("density", c.Features.Density),
			zap.Float64("aspect_ratio", c.Features.AspectRatio),
			zap.Float64("relative_y", c.Features.RelativeY),
			zap.Strings("labels", c.Labels))
	}
	return ranked
}

// Detect finds the most signature-like region and refines it.
//
// An image without any positive candidate is not an error: the result has
// Found set to false.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("failed to detect signature: image has no pixels")
	}

	// Work in 0-origin coordinates throughout.
	if b.Min != (image.Point{}) {
		img = imaging.Editable(img)
		b = img.Bounds()
	}

	result := &Result{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Candidates: d.Candidates(img),
	}
	if len(result.Candidates) == 0 {
		d.logger.Info("no signature candidates")
		return result, nil
	}

	best := result.Candidates[0]
	refined, fromInk := d.refiner.refine(img, best.Box)
	if !fromInk {
		d.logger.Debug("refinement found no ink, using coarse box", zap.Stringer("box", best.Box))
	}

	result.Found = true
	result.Best = &best
	result.Refined = BoundsOf(refined)
	result.RefinedFromInk = fromInk

	d.logger.Info("signature located",
		zap.Stringer("coarse", best.Box),
		zap.Stringer("refined", refined),
		zap.Float64("score", best.Score),
		zap.Int("candidates", len(result.Candidates)))
	return result, nil
}
