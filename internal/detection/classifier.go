package detection

import (
	"image"
	"regexp"
	"strings"

	"github.com/ironsheep/signature-redactor/internal/imaging"
)

// Region is what a classifier gets to look at.
type Region struct {
	Box      image.Rectangle
	Features Features

	// Image is the full source image, or nil when only geometry is known.
	Image image.Image
}

// Adjustment is a classifier's verdict: a score delta and the labels that
// explain it.
type Adjustment struct {
	Delta  float64
	Labels []string
}

// RegionClassifier adjusts a candidate's score based on what the region
// appears to contain. Implementations must be safe to call with a nil
// Region.Image.
type RegionClassifier interface {
	Classify(r Region) Adjustment
}

// DateRule penalizes a region matching every non-zero limit.
type DateRule struct {
	// MaxWidth, MaxHeight and MaxAspect are strict upper bounds; zero
	// disables the check.
	MaxWidth  int     `yaml:"max_width" json:"max_width"`
	MaxHeight int     `yaml:"max_height" json:"max_height"`
	MaxAspect float64 `yaml:"max_aspect" json:"max_aspect"`

	// MinRelativeY is a strict lower bound on the box's vertical position.
	MinRelativeY float64 `yaml:"min_relative_y" json:"min_relative_y"`

	// Penalty is subtracted from the score.
	Penalty float64 `yaml:"penalty" json:"penalty"`
}

func (r DateRule) matches(f Features) bool {
	if r.MaxWidth > 0 && f.Width >= r.MaxWidth {
		return false
	}
	if r.MaxHeight > 0 && f.Height >= r.MaxHeight {
		return false
	}
	if r.MaxAspect > 0 && f.AspectRatio >= r.MaxAspect {
		return false
	}
	return f.RelativeY > r.MinRelativeY
}

// DefaultDateRules describe printed date fields: small and short boxes in
// the lower part of the page.
func DefaultDateRules() []DateRule {
	return []DateRule{
		{MaxWidth: 150, MaxHeight: 30, MinRelativeY: 0.7, Penalty: 30},
		{MaxAspect: 3, MaxHeight: 25, MinRelativeY: 0.6, Penalty: 20},
	}
}

// GeometryDateClassifier penalizes date-shaped regions using box geometry
// alone. Every matching rule applies.
type GeometryDateClassifier struct {
	Rules []DateRule
}

// NewGeometryDateClassifier returns a classifier with DefaultDateRules.
func NewGeometryDateClassifier() *GeometryDateClassifier {
	return &GeometryDateClassifier{Rules: DefaultDateRules()}
}

// Classify implements RegionClassifier.
func (g *GeometryDateClassifier) Classify(r Region) Adjustment {
	var adj Adjustment
	for _, rule := range g.Rules {
		if rule.matches(r.Features) {
			adj.Delta -= rule.Penalty
			adj.Labels = appendLabel(adj.Labels, LabelDateLike)
		}
	}
	return adj
}

// TextReader extracts printed text from an image.
type TextReader interface {
	ReadText(img image.Image) (string, error)
}

// DatePattern matches common numeric and English written dates:
// 2024-03-15, 15/03/2024, 2024年3月15日, March 15, 2024, 15 Mar 2024.
var DatePattern = regexp.MustCompile(`(?i)` +
	`\d{1,4}\s*[-/.年]\s*\d{1,2}\s*[-/.月]\s*\d{1,4}|` +
	`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{2,4}|` +
	`\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{2,4}`)

// OCRDateClassifier reads the region's text and penalizes it when the text
// looks like a date. Regions without pixels, or where OCR fails, are left
// alone.
type OCRDateClassifier struct {
	Reader  TextReader
	Penalty float64
	Pattern *regexp.Regexp
}

// NewOCRDateClassifier creates a classifier using DatePattern.
func NewOCRDateClassifier(reader TextReader, penalty float64) *OCRDateClassifier {
	return &OCRDateClassifier{Reader: reader, Penalty: penalty, Pattern: DatePattern}
}

// Classify implements RegionClassifier.
func (o *OCRDateClassifier) Classify(r Region) Adjustment {
	if o.Reader == nil || r.Image == nil {
		return Adjustment{}
	}
	box := imaging.ClipRect(r.Box, r.Image.Bounds())
	if box.Empty() {
		return Adjustment{}
	}
	crop, err := imaging.CropRegion(r.Image, box)
	if err != nil {
		return Adjustment{}
	}
	text, err := o.Reader.ReadText(crop)
	if err != nil {
		return Adjustment{}
	}
	pattern := o.Pattern
	if pattern == nil {
		pattern = DatePattern
	}
	if !pattern.MatchString(strings.TrimSpace(text)) {
		return Adjustment{}
	}
	return Adjustment{Delta: -o.Penalty, Labels: []string{LabelDateText}}
}

// ChainClassifier sums the adjustments of several classifiers.
type ChainClassifier []RegionClassifier

// Classify implements RegionClassifier.
func (c ChainClassifier) Classify(r Region) Adjustment {
	var total Adjustment
	for _, cl := range c {
		if cl == nil {
			continue
		}
		adj := cl.Classify(r)
		total.Delta += adj.Delta
		for _, l := range adj.Labels {
			total.Labels = appendLabel(total.Labels, l)
		}
	}
	return total
}

func appendLabel(labels []string, l string) []string {
	for _, existing := range labels {
		if existing == l {
			return labels
		}
	}
	return append(labels, l)
}
