package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Default overlay colours.
const (
	DefaultKeptColor    = "#ffffff"
	DefaultRemovedColor = "#ff3b30"
)

// OverlayResult is a before/after visualisation of one filter run.
type OverlayResult struct {
	Image   *image.NRGBA
	Kept    int
	Removed int
}

// DiffOverlay paints the difference between a binary input and the filter
// output.
//
// Pixels on in both planes get keptHex, pixels the filter cleared get
// removedHex, everything else is black. Colours are "#rrggbb" or "#rgb".
// Both planes must have the same dimensions.
func DiffOverlay(before, after *image.Gray, keptHex, removedHex string) (*OverlayResult, error) {
	bb, ab := before.Bounds(), after.Bounds()
	if bb.Dx() != ab.Dx() || bb.Dy() != ab.Dy() {
		return nil, fmt.Errorf("overlay size mismatch: %dx%d vs %dx%d", bb.Dx(), bb.Dy(), ab.Dx(), ab.Dy())
	}

	kept, err := parseHexColor(keptHex, DefaultKeptColor)
	if err != nil {
		return nil, err
	}
	removed, err := parseHexColor(removedHex, DefaultRemovedColor)
	if err != nil {
		return nil, err
	}

	res := &OverlayResult{Image: image.NewNRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))}
	for y := 0; y < bb.Dy(); y++ {
		for x := 0; x < bb.Dx(); x++ {
			was := before.GrayAt(bb.Min.X+x, bb.Min.Y+y).Y != 0
			is := after.GrayAt(ab.Min.X+x, ab.Min.Y+y).Y != 0
			c := color.NRGBA{A: 255}
			switch {
			case is:
				c = kept
				res.Kept++
			case was:
				c = removed
				res.Removed++
			}
			res.Image.SetNRGBA(x, y, c)
		}
	}
	return res, nil
}

func parseHexColor(s, fallback string) (color.NRGBA, error) {
	if s == "" {
		s = fallback
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
