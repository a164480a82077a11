package raster

import (
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
)

type Options struct {
	CanvasSize       int
	ScaleFactor      float64
	FontPaths        []string
	FontSize         int
	TextOpacity      int
	MarginPercentage float64
	Logger           *slog.Logger
}

type Processor struct {
	canvasSize  int
	scaleFactor float64
	fontSize    int
	textOpacity int
	margin      float64
	font        *truetype.Font
	logger      *slog.Logger
}

func New(opts Options) *Processor {
	canvasSize := opts.CanvasSize
	if canvasSize < 1 {
		canvasSize = 1024
	}

	scaleFactor := opts.ScaleFactor
	if scaleFactor <= 0 || scaleFactor > 1 {
		scaleFactor = 0.56
	}

	fontSize := opts.FontSize
	if fontSize < 1 {
		fontSize = 48
	}

	textOpacity := opts.TextOpacity
	if textOpacity < 0 || textOpacity > 255 {
		textOpacity = 200
	}

	margin := opts.MarginPercentage
	if margin < 0 || margin >= 0.5 {
		margin = 0.05
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Processor{
		canvasSize:  canvasSize,
		scaleFactor: scaleFactor,
		fontSize:    fontSize,
		textOpacity: textOpacity,
		margin:      margin,
		font:        loadFont(opts.FontPaths, logger),
		logger:      logger,
	}
}

// PrepareCanvas scales the image down and centers it on an opaque white
// square canvas. The returned rectangle is the area the scaled image
// occupies; outpainting must leave those pixels untouched.
func (p *Processor) PrepareCanvas(img image.Image) (image.Image, image.Rectangle) {
	bounds := img.Bounds()
	scaledW := int(float64(bounds.Dx()) * p.scaleFactor)
	scaledH := int(float64(bounds.Dy()) * p.scaleFactor)
	scaled := imaging.Resize(img, scaledW, scaledH, imaging.Lanczos)

	x := (p.canvasSize - scaledW) / 2
	y := (p.canvasSize - scaledH) / 2
	innerBox := image.Rect(x, y, x+scaledW, y+scaledH)

	canvas := imaging.New(p.canvasSize, p.canvasSize, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	canvas = imaging.Overlay(canvas, scaled, image.Pt(x, y), 1.0)

	p.logger.Debug("prepared canvas", "canvas", p.canvasSize, "inner_box", innerBox.String())
	return canvas, innerBox
}

func (p *Processor) CanvasSize() int {
	return p.canvasSize
}
