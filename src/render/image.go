package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iafilius/ChartEngine/src/logging"
)

// Size is a chart size in pixels.
type Size struct {
	Width, Height int
}

const (
	minChartWidth  = 800
	minChartHeight = 280
	maxChartHeight = 520
	heightRatio    = 0.33
)

// ChartDimensions sizes a chart for a canvas rawW pixels wide: at least
// minChartWidth wide, a third as high within minChartHeight..maxChartHeight.
func ChartDimensions(rawW int) Size {
	w := max(rawW, minChartWidth)
	h := int(float64(w) * heightRatio)
	return Size{Width: w, Height: min(max(h, minChartHeight), maxChartHeight)}
}

// orDefault fills in a zero size.
func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return ChartDimensions(s.Width)
	}
	return s
}

// Blank returns a dark placeholder image.
func Blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 18, G: 18, B: 18, A: 255}), image.Point{}, draw.Src)
	return img
}

// OrBlank returns img, or a blank of size s when err is set.
func OrBlank(img image.Image, err error, s Size, what string) image.Image {
	if err == nil && img != nil {
		return img
	}
	s = s.orDefault()
	logging.Warnf("[render] %s: %v; showing blank fallback", what, err)
	return Blank(s.Width, s.Height)
}

// toRGBA returns an RGBA copy of img.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

const hintPad = 4

var hintBand = color.RGBA{A: 190}

// DrawHint captions a copy of img with text on a translucent band along its
// bottom edge.
func DrawHint(img image.Image, text string) image.Image {
	text = strings.TrimSpace(text)
	if img == nil || text == "" {
		return img
	}
	out := toRGBA(img)
	b := out.Bounds()
	face := basicfont.Face7x13
	m := face.Metrics()
	band := image.Rect(b.Min.X, b.Max.Y-m.Height.Ceil()-2*hintPad, b.Max.X, b.Max.Y)
	draw.Draw(out, band, image.NewUniform(hintBand), image.Point{}, draw.Over)
	d := font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(band.Min.X+2*hintPad, band.Max.Y-hintPad-m.Descent.Ceil()),
	}
	d.DrawString(text)
	return out
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
