package raster

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Crops go through a fixed square intermediate so output dimensions do
// not depend on what size the edit endpoint happened to return.
const cropIntermediate = 1536

// CropRatio resizes the image to the intermediate square and crops the
// centered rectangle for the requested ratio, e.g. "16x9" or "9x16".
// A malformed ratio is a programming error and comes back as an error.
func (p *Processor) CropRatio(img image.Image, ratio string) (image.Image, error) {
	rect, err := cropRect(ratio, cropIntermediate)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, cropIntermediate, cropIntermediate, imaging.Lanczos)
	out := imaging.Crop(resized, rect)

	p.logger.Debug("cropped ratio", "ratio", ratio, "width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	return out, nil
}

func cropRect(ratio string, size int) (image.Rectangle, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(ratio)), "x")
	if len(parts) != 2 {
		return image.Rectangle{}, fmt.Errorf("unsupported ratio: %q", ratio)
	}

	rw, errW := strconv.Atoi(parts[0])
	rh, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || rw < 1 || rh < 1 {
		return image.Rectangle{}, fmt.Errorf("unsupported ratio: %q", ratio)
	}

	if rw >= rh {
		height := size * rh / rw
		y := (size - height) / 2
		return image.Rect(0, y, size, y+height), nil
	}

	width := size * rw / rh
	x := (size - width) / 2
	return image.Rect(x, 0, x+width, size), nil
}
