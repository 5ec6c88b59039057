package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (the leading # is optional).
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	hex = strings.TrimPrefix(hex, "#")

	var alpha uint8 = 255
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// DrawRect outlines r on dst with the given stroke thickness, drawn inward.
// Parts of the outline outside dst are skipped.
func DrawRect(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	src := &image.Uniform{C: c}
	bounds := dst.Bounds()
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(r).Intersect(bounds)
		if !e.Empty() {
			draw.Draw(dst, e, src, image.Point{}, draw.Over)
		}
	}
}

// DrawLabel writes text in a 7×13 bitmap font with its top-left corner at
// (x, y), over a filled background box.
func DrawLabel(dst draw.Image, x, y int, text string, fg, bg color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{C: fg},
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	height := face.Height

	box := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(dst.Bounds())
	if !box.Empty() {
		draw.Draw(dst, box, &image.Uniform{C: bg}, image.Point{}, draw.Over)
	}

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
