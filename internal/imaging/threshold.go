package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Threshold binarizes an image with a global luminance threshold.
//
// Pixels with luminance >= level become 255, the rest 0. With invert set the
// image is inverted first, so dark ink on light paper becomes foreground.
func Threshold(img image.Image, level uint8, invert bool) *image.Gray {
	src := img
	if invert {
		src = effect.Invert(img)
	}
	return segment.Threshold(src, level)
}

// BinarizeMethod selects the upstream binarization step.
type BinarizeMethod string

const (
	// BinarizeNone treats every non-black pixel as foreground.
	BinarizeNone BinarizeMethod = "none"
	// BinarizeEdge runs Canny edge detection.
	BinarizeEdge BinarizeMethod = "edge"
	// BinarizeThreshold applies a global luminance threshold.
	BinarizeThreshold BinarizeMethod = "threshold"
)

// ParseBinarizeMethod converts a method name; the empty string means none.
func ParseBinarizeMethod(s string) (BinarizeMethod, error) {
	switch BinarizeMethod(s) {
	case "", BinarizeNone:
		return BinarizeNone, nil
	case BinarizeEdge:
		return BinarizeEdge, nil
	case BinarizeThreshold:
		return BinarizeThreshold, nil
	}
	return "", fmt.Errorf("unknown binarization method: %s (want none, edge or threshold)", s)
}

// BinarizeOptions configures Binarize.
type BinarizeOptions struct {
	Method BinarizeMethod `json:"method"`

	// Level and Invert apply to BinarizeThreshold.
	Level  uint8 `json:"level"`
	Invert bool  `json:"invert"`

	// Low and High are the hysteresis thresholds of BinarizeEdge (0-255).
	Low  int `json:"low"`
	High int `json:"high"`
}

// DefaultBinarizeOptions returns options for an already-binary input with
// the usual threshold and edge parameters filled in.
func DefaultBinarizeOptions() BinarizeOptions {
	return BinarizeOptions{
		Method: BinarizeNone,
		Level:  128,
		Low:    50,
		High:   150,
	}
}

// Binarize reduces an image to a 0/255 plane using the selected method.
func Binarize(img image.Image, opts BinarizeOptions) (*image.Gray, error) {
	switch opts.Method {
	case "", BinarizeNone:
		g := ToGrid(img)
		for i, v := range g.Pix {
			if v != 0 {
				g.Pix[i] = 255
			}
		}
		return FromGrid(g), nil
	case BinarizeEdge:
		if opts.Low < 0 || opts.High < opts.Low {
			return nil, fmt.Errorf("invalid edge thresholds: low=%d high=%d", opts.Low, opts.High)
		}
		return EdgeDetect(img, opts.Low, opts.High), nil
	case BinarizeThreshold:
		return Threshold(img, opts.Level, opts.Invert), nil
	}
	return nil, fmt.Errorf("unknown binarization method: %s", opts.Method)
}
