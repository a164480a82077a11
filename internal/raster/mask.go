package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Mask convention, matching what the edit endpoint expects: opaque
// pixels are preserved, fully transparent pixels may be repainted.

var (
	maskKeep = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	maskEdit = color.NRGBA{}
)

// LockMask marks the asset silhouette as protected: every pixel with
// any alpha, dilated by one pixel so anti-aliased edges stay covered.
func LockMask(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	visible := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src.NRGBAAt(x, y).A > 0 {
				visible[y*w+x] = true
			}
		}
	}

	mask := imaging.New(w, h, maskEdit)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if anyNeighbor(visible, w, h, x, y) {
				mask.SetNRGBA(x, y, maskKeep)
			}
		}
	}
	return mask
}

// PreserveMask protects the inner box during outpainting and leaves
// everything around it editable.
func PreserveMask(width, height int, innerBox image.Rectangle) *image.NRGBA {
	mask := imaging.New(width, height, maskEdit)
	for y := innerBox.Min.Y; y < innerBox.Max.Y; y++ {
		for x := innerBox.Min.X; x < innerBox.Max.X; x++ {
			if x < 0 || y < 0 || x >= width || y >= height {
				continue
			}
			mask.SetNRGBA(x, y, maskKeep)
		}
	}
	return mask
}

func anyNeighbor(visible []bool, w, h, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if visible[ny*w+nx] {
				return true
			}
		}
	}
	return false
}
