package detection

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/signature-redactor/internal/imaging"
)

// Tier awards Score when a measurement is strictly above Above.
type Tier struct {
	Above float64 `yaml:"above" json:"above"`
	Score float64 `yaml:"score" json:"score"`
}

// Band awards Score when a measurement lies in [Min, Max].
type Band struct {
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Score float64 `yaml:"score" json:"score"`
}

// ScoringWeights holds every constant of the signature score.
//
// Tier and band lists are checked in order and only the first match counts,
// so list the most demanding entry first.
type ScoringWeights struct {
	// Aspect ratios at or above AspectProportionalFrom earn
	// min(aspect/AspectCap, 1) × AspectMaxScore. Failing that, ratios at or
	// above AspectMinimum earn AspectMinimumScore.
	AspectProportionalFrom float64 `yaml:"aspect_proportional_from" json:"aspect_proportional_from"`
	AspectCap              float64 `yaml:"aspect_cap" json:"aspect_cap"`
	AspectMaxScore         float64 `yaml:"aspect_max_score" json:"aspect_max_score"`
	AspectMinimum          float64 `yaml:"aspect_minimum" json:"aspect_minimum"`
	AspectMinimumScore     float64 `yaml:"aspect_minimum_score" json:"aspect_minimum_score"`

	Width   []Tier `yaml:"width" json:"width"`
	Density []Band `yaml:"density" json:"density"`
	Height  []Tier `yaml:"height" json:"height"`
	Area    []Tier `yaml:"area" json:"area"`
}

// DefaultScoringWeights returns weights tuned for cursive signatures on
// scanned A4/Letter pages.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		AspectProportionalFrom: 2,
		AspectCap:              4,
		AspectMaxScore:         30,
		AspectMinimum:          1.5,
		AspectMinimumScore:     15,
		Width: []Tier{
			{Above: 150, Score: 25},
			{Above: 100, Score: 20},
			{Above: 50, Score: 10},
		},
		Density: []Band{
			{Min: 0.05, Max: 0.20, Score: 20},
			{Min: 0.02, Max: 0.30, Score: 10},
		},
		Height: []Tier{
			{Above: 30, Score: 15},
			{Above: 20, Score: 10},
		},
		Area: []Tier{
			{Above: 3000, Score: 10},
		},
	}
}

// TieBreak orders candidates whose scores are equal.
type TieBreak string

const (
	// TieBreakStable keeps proposer order.
	TieBreakStable TieBreak = "stable"
	// TieBreakArea puts the larger box first.
	TieBreakArea TieBreak = "area"
	// TieBreakReading orders top-to-bottom, then left-to-right.
	TieBreakReading TieBreak = "reading"
)

// ParseTieBreak validates a tie-break policy name. The empty string means stable.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakStable:
		return TieBreakStable, nil
	case TieBreakArea:
		return TieBreakArea, nil
	case TieBreakReading:
		return TieBreakReading, nil
	}
	return "", fmt.Errorf("unknown tie-break policy: %q", s)
}

// Scorer rates proposed boxes by how much they look like a signature.
type Scorer struct {
	Weights    ScoringWeights
	Classifier RegionClassifier
	TieBreak   TieBreak
}

// NewScorer creates a Scorer. A nil classifier means GeometryDateClassifier
// with its default rules.
func NewScorer(w ScoringWeights, c RegionClassifier, tb TieBreak) *Scorer {
	if c == nil {
		c = NewGeometryDateClassifier()
	}
	if tb == "" {
		tb = TieBreakStable
	}
	return &Scorer{Weights: w, Classifier: c, TieBreak: tb}
}

// Measure computes the features of box against the undilated ink mask.
func Measure(box image.Rectangle, mask *imaging.Mask) Features {
	w, h := box.Dx(), box.Dy()
	f := Features{
		Width:   w,
		Height:  h,
		Area:    w * h,
		Density: mask.Density(box),
	}
	if h > 0 {
		f.AspectRatio = float64(w) / float64(h)
	}
	if mask.Height > 0 {
		f.RelativeY = float64(box.Min.Y) / float64(mask.Height)
	}
	return f
}

// Score measures and scores a single box without source pixels. Classifiers
// that need pixels contribute nothing.
func (s *Scorer) Score(box image.Rectangle, mask *imaging.Mask) Candidate {
	return s.score(nil, box, mask)
}

// Rank scores every box and returns the positive ones, best first.
func (s *Scorer) Rank(boxes []image.Rectangle, mask *imaging.Mask) []Candidate {
	return s.RankImage(nil, boxes, mask)
}

// RankImage is Rank with the source image available to the classifier.
func (s *Scorer) RankImage(img image.Image, boxes []image.Rectangle, mask *imaging.Mask) []Candidate {
	ranked := make([]Candidate, 0, len(boxes))
	for _, box := range boxes {
		c := s.score(img, box, mask)
		if c.Score > 0 {
			ranked = append(ranked, c)
		}
	}
	s.sort(ranked)
	return ranked
}

func (s *Scorer) score(img image.Image, box image.Rectangle, mask *imaging.Mask) Candidate {
	f := Measure(box, mask)
	c := Candidate{
		Box:      box,
		Features: f,
		Score:    s.Weights.base(f),
	}
	if s.Classifier != nil {
		adj := s.Classifier.Classify(Region{Box: box, Features: f, Image: img})
		c.Score += adj.Delta
		c.Labels = adj.Labels
	}
	return c
}

func (s *Scorer) sort(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch s.TieBreak {
		case TieBreakArea:
			return a.Features.Area > b.Features.Area
		case TieBreakReading:
			if a.Box.Min.Y != b.Box.Min.Y {
				return a.Box.Min.Y < b.Box.Min.Y
			}
			return a.Box.Min.X < b.Box.Min.X
		}
		return false
	})
}

// base is the geometric score before classifier adjustments.
func (w ScoringWeights) base(f Features) float64 {
	score := 0.0

	switch {
	case f.AspectRatio >= w.AspectProportionalFrom:
		ratio := 1.0
		if w.AspectCap > 0 {
			ratio = math.Min(f.AspectRatio/w.AspectCap, 1)
		}
		score += ratio * w.AspectMaxScore
	case f.AspectRatio >= w.AspectMinimum:
		score += w.AspectMinimumScore
	}

	score += firstTier(w.Width, float64(f.Width))
	score += firstBand(w.Density, f.Density)
	score += firstTier(w.Height, float64(f.Height))
	score += firstTier(w.Area, float64(f.Area))
	return score
}

func firstTier(tiers []Tier, v float64) float64 {
	for _, t := range tiers {
		if v > t.Above {
			return t.Score
		}
	}
	return 0
}

func firstBand(bands []Band, v float64) float64 {
	for _, b := range bands {
		if v >= b.Min && v <= b.Max {
			return b.Score
		}
	}
	return 0
}
