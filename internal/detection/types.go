package detection

import (
	"encoding/json"
	"image"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// BoundsOf converts an image.Rectangle to Bounds.
func BoundsOf(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect converts b back to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Width returns X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Valid reports whether b is a non-empty box inside a width×height image:
// 0 <= X1 < X2 <= width and 0 <= Y1 < Y2 <= height.
func (b Bounds) Valid(width, height int) bool {
	return b.X1 >= 0 && b.X1 < b.X2 && b.X2 <= width &&
		b.Y1 >= 0 && b.Y1 < b.Y2 && b.Y2 <= height
}

// Overlaps reports whether two bounds share any pixel.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.X1 < o.X2 && b.X2 > o.X1 && b.Y1 < o.Y2 && b.Y2 > o.Y1
}

// Features are the geometric measurements a candidate is scored on.
type Features struct {
	// Width and Height of the box in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Area is Width × Height.
	Area int `json:"area"`

	// AspectRatio is Width / Height.
	AspectRatio float64 `json:"aspect_ratio"`

	// Density is the fraction of ink pixels inside the box, measured on the
	// binarized mask before dilation.
	Density float64 `json:"density"`

	// RelativeY is the box top divided by the image height: 0 at the top of
	// the page, approaching 1 at the bottom.
	RelativeY float64 `json:"relative_y"`
}

// Label values attached to candidates by classifiers.
const (
	LabelDateLike = "date-like"
	LabelDateText = "date-text"
)

// Candidate is a proposed signature region with its features and score.
// Candidates are not modified after scoring.
type Candidate struct {
	// Box is the coarse bounding box in image coordinates.
	Box image.Rectangle

	Features Features

	// Score is an unbounded heuristic sum; higher is more signature-like.
	Score float64

	// Labels name any penalties applied, such as "date-like".
	Labels []string
}

// HasLabel reports whether the candidate carries label.
func (c Candidate) HasLabel(label string) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the box as Bounds.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Bounds   Bounds   `json:"bounds"`
		Features Features `json:"features"`
		Score    float64  `json:"score"`
		Labels   []string `json:"labels,omitempty"`
	}{
		Bounds:   BoundsOf(c.Box),
		Features: c.Features,
		Score:    c.Score,
		Labels:   c.Labels,
	})
}
