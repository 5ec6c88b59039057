package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/signature-redactor/internal/config"
	"github.com/ironsheep/signature-redactor/internal/imaging"
	"github.com/ironsheep/signature-redactor/internal/vision"
)

func newTestPipeline(t *testing.T, verifier vision.Verifier, mutate func(*config.Config)) (*Pipeline, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, zaptest.NewLogger(t), verifier), cfg.Output.Dir
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeMask, false},
		{"mask", ModeMask, false},
		{"Detect", ModeDetect, false},
		{" quick ", ModeQuick, false},
		{"erase", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseMode(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestMode_OutputName(t *testing.T) {
	assert.Equal(t, "masked.png", ModeMask.OutputName())
	assert.Equal(t, "detected.png", ModeDetect.OutputName())
	assert.Equal(t, "quick.png", ModeQuick.OutputName())
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Score:100", ScoreLabel(99.6))
	assert.Equal(t, "Score:60", ScoreLabel(60))
}

func TestRun_BlankImageWritesNothing(t *testing.T) {
	verifier := &fakeVerifier{verdict: vision.Verdict{HasSignature: true}}
	p, dir := newTestPipeline(t, verifier, nil)
	path := writeImage(t, blankPage(300, 200), "blank.png")

	for _, mode := range []Mode{ModeMask, ModeDetect, ModeQuick} {
		res, err := p.Run(context.Background(), path, mode, "")
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.Empty(t, res.OutputPath)
		require.NotNil(t, res.Detection)
		assert.Empty(t, res.Detection.Candidates)

		_, statErr := os.Stat(filepath.Join(dir, mode.OutputName()))
		assert.True(t, errors.Is(statErr, os.ErrNotExist), "%s should not write a file", mode)
	}
}

func TestRun_MaskMode(t *testing.T) {
	p, dir := newTestPipeline(t, nil, nil)
	page := signedPage()
	path := writeImage(t, page, "page.png")

	res, err := p.Run(context.Background(), path, ModeMask, "")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, filepath.Join(dir, "masked.png"), res.OutputPath)
	assert.Equal(t, signatureRefined, res.Detection.Refined.Rect())

	written, err := imaging.Open(res.OutputPath)
	require.NoError(t, err)
	out := imaging.Editable(written)

	changed := false
	for y := 0; y < page.Bounds().Dy(); y++ {
		for x := 0; x < page.Bounds().Dx(); x++ {
			inside := image.Pt(x, y).In(signatureRefined)
			same := out.NRGBAAt(x, y) == page.NRGBAAt(x, y)
			if !inside && !same {
				t.Fatalf("pixel (%d,%d) outside the refined box changed", x, y)
			}
			if inside && !same {
				changed = true
			}
		}
	}
	assert.True(t, changed, "mosaic should alter the signature region")
}

func TestRun_BlackMode(t *testing.T) {
	p, _ := newTestPipeline(t, nil, func(c *config.Config) {
		c.Redact.Mode = imaging.RedactBlack
	})

	res, err := p.RunImage(context.Background(), signedPage(), ModeMask, "")
	require.NoError(t, err)
	require.True(t, res.Found)

	black := color.NRGBA{0, 0, 0, 255}
	r := res.Detection.Refined.Rect()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			require.Equal(t, black, res.Image.NRGBAAt(x, y))
		}
	}
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, res.Image.NRGBAAt(r.Min.X-1, r.Min.Y-1))
}

func TestRun_DetectModeDrawsBoxes(t *testing.T) {
	p, dir := newTestPipeline(t, nil, nil)

	res, err := p.RunImage(context.Background(), signedPage(), ModeDetect, "")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, filepath.Join(dir, "detected.png"), res.OutputPath)
	assert.Equal(t, signatureCoarse, res.Detection.Best.Box)

	red := color.NRGBA{255, 0, 0, 255}
	green := color.NRGBA{0, 255, 0, 255}
	assert.Equal(t, red, res.Image.NRGBAAt(signatureCoarse.Min.X, 180))
	assert.Equal(t, red, res.Image.NRGBAAt(signatureCoarse.Max.X-1, 180))
	assert.Equal(t, green, res.Image.NRGBAAt(signatureRefined.Min.X, 180))
	assert.Equal(t, green, res.Image.NRGBAAt(signatureRefined.Max.X-2, 180))

	_, err = os.Stat(res.OutputPath)
	assert.NoError(t, err)
}

func TestRun_QuickModeSkipsVerification(t *testing.T) {
	verifier := &fakeVerifier{verdict: vision.Verdict{HasSignature: false}}
	p, dir := newTestPipeline(t, verifier, func(c *config.Config) {
		c.Redact.Mode = imaging.RedactBlack
	})

	res, err := p.RunImage(context.Background(), signedPage(), ModeQuick, "")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 0, verifier.calls)
	assert.Nil(t, res.Verdict)
	assert.Equal(t, filepath.Join(dir, "quick.png"), res.OutputPath)

	// quick always mosaics, whatever the configured mode
	r := res.Detection.Refined.Rect()
	white := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if res.Image.NRGBAAt(x, y) == (color.NRGBA{255, 255, 255, 255}) {
				white++
			}
		}
	}
	assert.Positive(t, white, "region should be pixelated, not filled")
}

func TestRun_NegativeVerdictStops(t *testing.T) {
	verifier := &fakeVerifier{verdict: vision.Verdict{HasSignature: false, Raw: "Signature: no"}}
	p, dir := newTestPipeline(t, verifier, nil)

	res, err := p.RunImage(context.Background(), signedPage(), ModeMask, "")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Detection)
	require.NotNil(t, res.Verdict)
	assert.False(t, res.Verdict.HasSignature)
	assert.Equal(t, 1, verifier.calls)
	assert.Equal(t, "image/png", verifier.mime)

	_, statErr := os.Stat(filepath.Join(dir, "masked.png"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRun_PositiveVerdict(t *testing.T) {
	verifier := &fakeVerifier{verdict: vision.Verdict{HasSignature: true, Content: "J. Doe"}}
	p, _ := newTestPipeline(t, verifier, nil)

	res, err := p.RunImage(context.Background(), signedPage(), ModeMask, "")
	require.NoError(t, err)
	assert.True(t, res.Found)
	require.NotNil(t, res.Verdict)
	assert.Equal(t, "J. Doe", res.Verdict.Content)
}

func TestRun_VerifierErrorSkipsVerification(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("connection refused")}
	p, _ := newTestPipeline(t, verifier, nil)

	res, err := p.RunImage(context.Background(), signedPage(), ModeDetect, "")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Nil(t, res.Verdict)
	assert.Equal(t, 1, verifier.calls)
}

func TestRun_ExplicitOutputPath(t *testing.T) {
	p, _ := newTestPipeline(t, nil, nil)
	out := filepath.Join(t.TempDir(), "sub", "result.jpg")

	res, err := p.RunImage(context.Background(), signedPage(), ModeMask, out)
	require.NoError(t, err)
	assert.Equal(t, out, res.OutputPath)

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestRun_UnreadableImage(t *testing.T) {
	p, _ := newTestPipeline(t, nil, nil)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing.png"), ModeMask, "")
	assert.ErrorIs(t, err, ErrUnreadableImage)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = p.Run(context.Background(), garbage, ModeMask, "")
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestRun_SaveFailure(t *testing.T) {
	p, _ := newTestPipeline(t, nil, nil)

	// a regular file where a directory is needed
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := p.RunImage(context.Background(), signedPage(), ModeMask, filepath.Join(blocker, "out.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save output")
}

func TestRun_InvalidMode(t *testing.T) {
	p, _ := newTestPipeline(t, nil, nil)
	_, err := p.RunImage(context.Background(), signedPage(), Mode("erase"), "")
	assert.Error(t, err)
}

func TestNew_NilArguments(t *testing.T) {
	p := New(nil, nil, nil)
	require.NotNil(t, p.Detector())
	assert.Equal(t, "masked.png", p.OutputPath(ModeMask))
}
