package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Local-mean methods for AdaptiveThreshold.
const (
	ThresholdMean     = "mean"
	ThresholdGaussian = "gaussian"
)

// ThresholdParams controls adaptive binarization.
type ThresholdParams struct {
	// Method selects how the local mean is computed: "mean" (box window)
	// or "gaussian" (Gaussian-weighted window of the same size).
	Method string `yaml:"method" json:"method"`

	// BlockSize is the side of the square neighborhood in pixels. Odd, >= 3.
	BlockSize int `yaml:"block_size" json:"block_size"`

	// C is subtracted from the local mean. A pixel is ink when its
	// intensity is at or below mean - C.
	C float64 `yaml:"c" json:"c"`
}

// DefaultThresholdParams returns the page-level binarization settings.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		Method:    ThresholdMean,
		BlockSize: 15,
		C:         10,
	}
}

// Grayscale converts any image to 8-bit luminance. The result has the same
// bounds as img.
func Grayscale(img image.Image) *image.Gray {
	rgba := effect.Grayscale(img)
	b := img.Bounds()
	gray := image.NewGray(b)
	rb := rgba.Bounds()
	for y := 0; y < b.Dy(); y++ {
		so := rgba.PixOffset(rb.Min.X, rb.Min.Y+y)
		do := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			gray.Pix[do+x] = rgba.Pix[so+4*x]
		}
	}
	return gray
}

// AdaptiveThreshold binarizes a grayscale image against its local mean,
// inverted so dark strokes on a light page become foreground.
//
// Uniform areas, whatever their brightness, produce no foreground because
// every pixel equals its local mean and C > 0 keeps it above the threshold.
func AdaptiveThreshold(gray *image.Gray, p ThresholdParams) *Mask {
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	if m.Width == 0 || m.Height == 0 {
		return m
	}

	local := localMean(gray, p)
	lb := local.Bounds()

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			r, _, _, _ := local.At(lb.Min.X+x, lb.Min.Y+y).RGBA()
			mean := float64(r >> 8)
			if v <= mean-p.C {
				m.Pix[y*m.Width+x] = true
			}
		}
	}
	return m
}

// Binarize is Grayscale followed by AdaptiveThreshold.
func Binarize(img image.Image, p ThresholdParams) *Mask {
	return AdaptiveThreshold(Grayscale(img), p)
}

func localMean(gray *image.Gray, p ThresholdParams) image.Image {
	radius := float64(p.BlockSize / 2)
	if radius < 1 {
		radius = 1
	}
	if p.Method == ThresholdGaussian {
		return blur.Gaussian(gray, radius)
	}
	return blur.Box(gray, radius)
}
