package raster

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestOverlayBlankTextReturnsSameImage(t *testing.T) {
	p := New(Options{})
	img := imaging.New(200, 200, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	for _, text := range []string{"", "   ", "\n\t "} {
		out := p.Overlay(img, text)
		require.Same(t, img, out)
	}
}

func TestOverlayTooSmallReturnsSameImage(t *testing.T) {
	p := New(Options{FontSize: 48})
	img := imaging.New(30, 30, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := p.Overlay(img, "Premium quality you can taste every single day")
	require.Same(t, img, out)
}

func TestOverlayAtFloorFontSizeReturnsSameImage(t *testing.T) {
	// The size search is exclusive at the floor, so a starting size of
	// 12 never produces a candidate.
	p := New(Options{FontSize: 12})
	img := imaging.New(1024, 1024, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := p.Overlay(img, "Hello")
	require.Same(t, img, out)
}

func TestOverlayDrawsTextAndBackingRect(t *testing.T) {
	p := New(Options{FontSize: 48, TextOpacity: 200, MarginPercentage: 0.05})
	img := imaging.New(400, 400, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := p.Overlay(img, "Hello")
	require.NotSame(t, img, out)
	require.Equal(t, 400, out.Bounds().Dx())
	require.Equal(t, 400, out.Bounds().Dy())

	require.NotEqual(t, imaging.Clone(img).Pix, imaging.Clone(out).Pix)

	// Top-left quadrant stays untouched; the overlay sits bottom-right.
	outPix := imaging.Clone(out)
	require.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, outPix.NRGBAAt(10, 10))
}

func TestOverlayMissingFontPathsFallBackToBundled(t *testing.T) {
	p := New(Options{
		FontSize:  48,
		FontPaths: []string{"/nonexistent/helvetica.ttc", "/also/missing.ttf"},
	})
	img := imaging.New(400, 400, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := p.Overlay(img, "Hello")
	require.NotEqual(t, imaging.Clone(img).Pix, imaging.Clone(out).Pix)
}
