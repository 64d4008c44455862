package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts the region (x1,y1)-(x2,y2) from an image.
//
// The region is validated against the image bounds; the result is anchored at
// (0,0). Cropping before filtering restricts the work to a region of
// interest, but note that pixels near the crop edge lose the context the
// kernel window would otherwise see.
func Crop(img image.Image, x1, y1, x2, y2 int) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, image.Rect(x1, y1, x2, y2)), nil
}

// RegionRect resolves a named region of an image to its rectangle.
//
// Supported names: "full", "top-left", "top-right", "bottom-left",
// "bottom-right", "top-half", "bottom-half", "left-half", "right-half" and
// "center" (the middle 50% in each direction).
func RegionRect(bounds image.Rectangle, region string) (image.Rectangle, error) {
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int

	switch region {
	case "", "full":
		x1, y1, x2, y2 = 0, 0, w, h
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", region)
	}

	return image.Rect(x1, y1, x2, y2).Add(bounds.Min), nil
}

// CropRegion crops a named region (see RegionRect) from an image.
func CropRegion(img image.Image, region string) (*image.NRGBA, error) {
	r, err := RegionRect(img.Bounds(), region)
	if err != nil {
		return nil, err
	}
	return Crop(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
