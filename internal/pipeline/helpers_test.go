package pipeline

import (
	"context"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/signature-redactor/internal/imaging"
	"github.com/ironsheep/signature-redactor/internal/vision"
)

func blankPage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// signedPage is a 600x400 page with a sine-wave signature around y=175
// and a row of hollow date glyphs near the bottom.
func signedPage() *image.NRGBA {
	img := blankPage(600, 400)
	black := color.NRGBA{0, 0, 0, 255}

	yAt := func(x int) int {
		return int(math.Round(175 + 20*math.Sin(2*math.Pi*float64(x-100)/100)))
	}
	for x := 100; x < 400; x++ {
		a, b := yAt(x), yAt(x+1)
		for y := min(a, b); y < max(a, b)+3; y++ {
			img.SetNRGBA(x, y, black)
		}
	}

	for i := 0; i < 8; i++ {
		gx := 100 + i*12
		for x := gx; x < gx+8; x++ {
			img.SetNRGBA(x, 330, black)
			img.SetNRGBA(x, 343, black)
		}
		for y := 330; y < 344; y++ {
			img.SetNRGBA(gx, y, black)
			img.SetNRGBA(gx+7, y, black)
		}
	}
	return img
}

// Boxes the default parameters find on signedPage.
var (
	signatureCoarse  = image.Rect(76, 149, 424, 206)
	signatureRefined = image.Rect(95, 150, 405, 203)
)

// writeImage saves img as PNG in a temp dir and returns its path.
func writeImage(t *testing.T, img image.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imaging.Save(path, img))
	return path
}

type fakeVerifier struct {
	verdict vision.Verdict
	err     error
	calls   int
	mime    string
}

func (f *fakeVerifier) Verify(_ context.Context, data []byte, mimeType string) (vision.Verdict, error) {
	f.calls++
	f.mime = mimeType
	if len(data) == 0 {
		return vision.Verdict{}, vision.ErrMalformedReply
	}
	return f.verdict, f.err
}
