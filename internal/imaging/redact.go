package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
)

// RedactMode selects how a region is obscured.
type RedactMode string

const (
	// RedactMosaic replaces the region with coarse blocks.
	RedactMosaic RedactMode = "mosaic"
	// RedactBlur applies a strong Gaussian blur to the region.
	RedactBlur RedactMode = "blur"
	// RedactBlack fills the region with a solid color.
	RedactBlack RedactMode = "black"
)

// ParseRedactMode resolves a mode name or one of its aliases
// (pixelate, pixelation, gaussian, fill). Matching is case-insensitive.
func ParseRedactMode(s string) (RedactMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mosaic", "pixelate", "pixelation":
		return RedactMosaic, nil
	case "blur", "gaussian":
		return RedactBlur, nil
	case "black", "fill":
		return RedactBlack, nil
	}
	return "", fmt.Errorf("unknown redaction mode: %q", s)
}

// RedactOptions configures Redact.
type RedactOptions struct {
	Mode RedactMode `yaml:"mode" json:"mode"`

	// Factor is the mosaic block size: the region is sampled down to
	// max(1, w/Factor) × max(1, h/Factor) and scaled back up.
	Factor int `yaml:"factor" json:"factor"`

	// BlurSigma is the Gaussian standard deviation for RedactBlur.
	BlurSigma float64 `yaml:"blur_sigma" json:"blur_sigma"`

	// FillColor is a hex color (#RRGGBB or #RRGGBBAA) for RedactBlack.
	FillColor string `yaml:"fill_color" json:"fill_color"`
}

// DefaultRedactOptions returns mosaic redaction with 10-pixel blocks.
func DefaultRedactOptions() RedactOptions {
	return RedactOptions{
		Mode:      RedactMosaic,
		Factor:    10,
		BlurSigma: 8.0,
		FillColor: "#000000",
	}
}

// Redact obscures box inside dst in place. The box is clipped to the image;
// a box with no area left after clipping leaves dst untouched.
func Redact(dst *image.NRGBA, box image.Rectangle, opts RedactOptions) error {
	mode, err := ParseRedactMode(string(opts.Mode))
	if err != nil {
		return err
	}

	var fill color.NRGBA
	if mode == RedactBlack {
		fill, err = ParseHexColor(opts.FillColor)
		if err != nil {
			return fmt.Errorf("failed to parse fill color: %w", err)
		}
	}

	box = box.Canon().Intersect(dst.Bounds())
	if box.Empty() {
		return nil
	}

	switch mode {
	case RedactMosaic:
		pasteInto(dst, Mosaic(imaging.Crop(dst, box), opts.Factor), box.Min)
	case RedactBlur:
		sigma := opts.BlurSigma
		if sigma <= 0 {
			sigma = DefaultRedactOptions().BlurSigma
		}
		pasteInto(dst, imaging.Blur(imaging.Crop(dst, box), sigma), box.Min)
	case RedactBlack:
		draw.Draw(dst, box, &image.Uniform{C: fill}, image.Point{}, draw.Src)
	}
	return nil
}

// Mosaic pixelates src with nearest-neighbor sampling in both directions.
// Applying it twice with the same factor gives the same result as once.
func Mosaic(src *image.NRGBA, factor int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	sw, sh := w/factor, h/factor
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	small := imaging.Resize(src, sw, sh, imaging.NearestNeighbor)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}

// pasteInto copies src row by row into dst at pt, bypassing color conversion
// so pixel values survive exactly.
func pasteInto(dst, src *image.NRGBA, pt image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(pt).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	n := r.Dx() * 4
	sb := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := sb.Min.Y + (y - pt.Y)
		sx := sb.Min.X + (r.Min.X - pt.X)
		so := src.PixOffset(sx, sy)
		do := dst.PixOffset(r.Min.X, y)
		copy(dst.Pix[do:do+n], src.Pix[so:so+n])
	}
}
