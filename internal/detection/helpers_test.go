package detection

import (
	"image"
	"image/color"
	"math"
)

// blankPage returns an all-white page.
func blankPage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// drawSignature draws a sine-wave stroke standing in for cursive handwriting.
func drawSignature(img *image.NRGBA, x0, x1, cy int, amp, period float64, thick int) {
	yAt := func(x int) int {
		return int(math.Round(float64(cy) + amp*math.Sin(2*math.Pi*float64(x-x0)/period)))
	}
	for x := x0; x < x1; x++ {
		a, b := yAt(x), yAt(x+1)
		lo, hi := min(a, b), max(a, b)
		for y := lo; y < hi+thick; y++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
		}
	}
}

// drawDate draws n hollow 8x14 glyph outlines spaced 12px apart, like a
// printed numeric date.
func drawDate(img *image.NRGBA, x0, y0, n int) {
	const gw, gh, step = 8, 14, 12
	black := color.NRGBA{0, 0, 0, 255}
	for i := 0; i < n; i++ {
		gx := x0 + i*step
		for x := gx; x < gx+gw; x++ {
			img.SetNRGBA(x, y0, black)
			img.SetNRGBA(x, y0+gh-1, black)
		}
		for y := y0; y < y0+gh; y++ {
			img.SetNRGBA(gx, y, black)
			img.SetNRGBA(gx+gw-1, y, black)
		}
	}
}

// signedPage is a 600x400 page with a signature at mid-height and a date
// string near the bottom.
func signedPage() *image.NRGBA {
	img := blankPage(600, 400)
	drawSignature(img, 100, 400, 175, 20, 100, 3)
	drawDate(img, 100, 330, 8)
	return img
}

// Expected boxes for signedPage with default parameters.
var (
	signatureCoarse  = image.Rect(76, 149, 424, 206)
	dateCoarse       = image.Rect(76, 324, 216, 352)
	signatureRefined = image.Rect(95, 150, 405, 203)
)

type fakeReader struct {
	text  string
	err   error
	calls int
}

func (f *fakeReader) ReadText(img image.Image) (string, error) {
	f.calls++
	return f.text, f.err
}
