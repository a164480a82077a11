package raster

import (
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	minFontSize  = 12
	fontSizeStep = 4
	rectPadding  = 10
)

// Overlay burns the text into the bottom-right corner over a dark
// backing rectangle. The font size shrinks until the text fits inside
// the margins; if even the smallest size does not fit, or the text is
// blank, the input image comes back unchanged.
func (p *Processor) Overlay(img image.Image, text string) image.Image {
	if strings.TrimSpace(text) == "" {
		return img
	}

	bounds := img.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())

	marginX := imgW * p.margin
	marginY := imgH * p.margin

	dc := gg.NewContextForImage(img)

	textW, textH, ok := p.fitText(dc, text, imgW-2*marginX, imgH-2*marginY)
	if !ok {
		p.logger.Warn("text does not fit in overlay area, keeping image as is", "text", text)
		return img
	}

	x := imgW - textW - marginX
	y := imgH - textH - marginY

	dc.SetRGBA255(0, 0, 0, 100)
	dc.DrawRectangle(x-rectPadding, y-rectPadding, textW+2*rectPadding, textH+2*rectPadding)
	dc.Fill()

	dc.SetRGBA255(255, 255, 255, p.textOpacity)
	dc.DrawStringAnchored(text, x, y, 0, 1)

	return dc.Image()
}

func (p *Processor) fitText(dc *gg.Context, text string, maxW, maxH float64) (float64, float64, bool) {
	if p.font == nil {
		return 0, 0, false
	}

	for size := p.fontSize; size > minFontSize; size -= fontSizeStep {
		face := truetype.NewFace(p.font, &truetype.Options{Size: float64(size)})
		dc.SetFontFace(face)

		w, h := dc.MeasureString(text)
		if w <= maxW && h <= maxH {
			p.logger.Debug("overlay layout found", "font_size", size, "text_width", int(w), "text_height", int(h))
			return w, h, true
		}
	}
	return 0, 0, false
}

func loadFont(paths []string, logger *slog.Logger) *truetype.Font {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		parsed, err := truetype.Parse(data)
		if err != nil {
			logger.Debug("font not usable", "path", path, "err", err)
			continue
		}
		return parsed
	}

	fallback, err := truetype.Parse(goregular.TTF)
	if err != nil {
		logger.Warn("bundled font failed to parse", "err", err)
		return nil
	}
	return fallback
}
