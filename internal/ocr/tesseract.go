package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Reader runs Tesseract on in-memory images.
//
// Each call creates its own Tesseract client, so a Reader may be shared
// between goroutines.
type Reader struct {
	// Language is the Tesseract language code, e.g. "eng" or "eng+chi_sim".
	Language string

	// PageSegMode tells Tesseract what layout to expect. Candidate regions
	// are usually a single line of text.
	PageSegMode gosseract.PageSegMode

	// Whitelist restricts recognized characters when non-empty.
	Whitelist string
}

// NewReader creates a Reader for single-line regions in the given language.
// An empty language means English.
func NewReader(language string) *Reader {
	if language == "" {
		language = "eng"
	}
	return &Reader{
		Language:    language,
		PageSegMode: gosseract.PSM_SINGLE_LINE,
	}
}

// ReadText performs OCR on img and returns the recognized text with
// surrounding whitespace trimmed.
//
// The image is encoded as PNG in memory and handed to Tesseract directly;
// no temporary files are created.
func (r *Reader) ReadText(img image.Image) (string, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return "", fmt.Errorf("OCR failed: image has no pixels")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if r.PageSegMode != 0 {
		if err := client.SetPageSegMode(r.PageSegMode); err != nil {
			return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if r.Whitelist != "" {
		if err := client.SetWhitelist(r.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ReadRegion performs OCR on the part of img inside region.
//
// The region is clipped to the image. An empty intersection is an error.
func (r *Reader) ReadRegion(img image.Image, region image.Rectangle) (string, error) {
	region = region.Canon().Intersect(img.Bounds())
	if region.Empty() {
		return "", fmt.Errorf("OCR failed: region outside image")
	}
	return r.ReadText(imaging.Crop(img, region))
}

// Version returns the version string of the linked Tesseract library.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
