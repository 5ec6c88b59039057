package detection

import (
	"image"

	"github.com/ironsheep/signature-redactor/internal/imaging"
)

// ProposerParams controls how ink is grouped into candidate regions.
type ProposerParams struct {
	// KernelWidth and KernelHeight size the dilation rectangle. A wide,
	// short kernel joins letters of a cursive line without merging lines.
	KernelWidth  int `yaml:"kernel_width" json:"kernel_width"`
	KernelHeight int `yaml:"kernel_height" json:"kernel_height"`

	// Iterations is how many times the dilation is applied.
	Iterations int `yaml:"iterations" json:"iterations"`

	// Boxes narrower, shorter or smaller than these are dropped.
	MinWidth  int `yaml:"min_width" json:"min_width"`
	MinHeight int `yaml:"min_height" json:"min_height"`
	MinArea   int `yaml:"min_area" json:"min_area"`

	// MaxAreaFraction drops boxes covering more than this share of the
	// page, which are almost always the page body or a frame.
	MaxAreaFraction float64 `yaml:"max_area_fraction" json:"max_area_fraction"`
}

// DefaultProposerParams returns the proposer settings for scanned pages.
func DefaultProposerParams() ProposerParams {
	return ProposerParams{
		KernelWidth:     25,
		KernelHeight:    8,
		Iterations:      2,
		MinWidth:        30,
		MinHeight:       10,
		MinArea:         500,
		MaxAreaFraction: 0.6,
	}
}

// Proposer turns a binary ink mask into coarse candidate boxes.
type Proposer struct {
	Params ProposerParams
}

// NewProposer creates a Proposer with the given parameters.
func NewProposer(p ProposerParams) *Proposer {
	return &Proposer{Params: p}
}

// Propose dilates the mask, finds external connected components and returns
// the bounding boxes that pass the size filters.
//
// Boxes come back in scan order of each component's first pixel. Callers
// must not rely on that order carrying any meaning.
func (p *Proposer) Propose(mask *imaging.Mask) []image.Rectangle {
	params := p.Params
	dilated := imaging.Dilate(mask, params.KernelWidth, params.KernelHeight, params.Iterations)

	maxArea := params.MaxAreaFraction * float64(mask.Width*mask.Height)
	boxes := make([]image.Rectangle, 0)
	for _, r := range imaging.ExternalComponents(dilated) {
		w, h := r.Dx(), r.Dy()
		if w < params.MinWidth || h < params.MinHeight {
			continue
		}
		area := w * h
		if area < params.MinArea {
			continue
		}
		if float64(area) > maxArea {
			continue
		}
		boxes = append(boxes, r)
	}
	return boxes
}
