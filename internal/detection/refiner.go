package detection

import (
	"image"

	"github.com/ironsheep/signature-redactor/internal/imaging"
)

// RefineParams controls tightening of a coarse box to the ink it contains.
type RefineParams struct {
	// Threshold is the finer binarization applied inside the box.
	Threshold imaging.ThresholdParams `yaml:"threshold" json:"threshold"`

	// CloseWidth and CloseHeight size the closing kernel that bridges small
	// gaps in pen strokes.
	CloseWidth  int `yaml:"close_width" json:"close_width"`
	CloseHeight int `yaml:"close_height" json:"close_height"`

	// Padding is added on every side of the ink box before clipping.
	Padding int `yaml:"padding" json:"padding"`
}

// DefaultRefineParams returns the refinement settings.
func DefaultRefineParams() RefineParams {
	return RefineParams{
		Threshold: imaging.ThresholdParams{
			Method:    imaging.ThresholdMean,
			BlockSize: 11,
			C:         5,
		},
		CloseWidth:  3,
		CloseHeight: 3,
		Padding:     5,
	}
}

// Refiner shrinks a coarse candidate box to the handwriting inside it.
type Refiner struct {
	Params RefineParams
}

// NewRefiner creates a Refiner with the given parameters.
func NewRefiner(p RefineParams) *Refiner {
	return &Refiner{Params: p}
}

// Refine returns the padded bounding box of the ink inside coarse.
//
// The coarse box is first clipped to the image. If nothing is left the
// result is the whole image. If the finer threshold finds no ink the
// clipped coarse box is returned. The result never extends past the image.
func (r *Refiner) Refine(img image.Image, coarse image.Rectangle) image.Rectangle {
	refined, _ := r.refine(img, coarse)
	return refined
}

// refine also reports whether ink was found.
func (r *Refiner) refine(img image.Image, coarse image.Rectangle) (image.Rectangle, bool) {
	bounds := img.Bounds()
	clipped := imaging.ClipRect(coarse, bounds)
	if clipped.Empty() {
		return bounds, false
	}

	crop, err := imaging.CropRegion(img, clipped)
	if err != nil {
		return clipped, false
	}

	p := r.Params
	mask := imaging.Binarize(crop, p.Threshold)
	mask = imaging.Close(mask, p.CloseWidth, p.CloseHeight)

	ink, ok := mask.InkBounds()
	if !ok {
		return clipped, false
	}

	refined := ink.Add(clipped.Min).Inset(-p.Padding)
	return imaging.ClipRect(refined, bounds), true
}
