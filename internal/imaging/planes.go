package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/line-filter-mcp/internal/linefilter"
)

// ToGrid converts an image to a single-channel grid of gray levels.
//
// *image.Gray inputs are copied directly; everything else goes through a
// luminance conversion. The grid is anchored at (0,0) whatever the image
// bounds.
func ToGrid(img image.Image) *linefilter.Grid {
	b := img.Bounds()
	g := linefilter.NewGrid(b.Dx(), b.Dy())

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < g.Height; y++ {
			off := gray.PixOffset(b.Min.X, b.Min.Y+y)
			copy(g.Row(y), gray.Pix[off:off+g.Width])
		}
		return g
	}

	// Grayscale stores the luminance in every colour channel of an NRGBA.
	nrgba := imaging.Grayscale(img)
	for y := 0; y < g.Height; y++ {
		row := g.Row(y)
		off := y * nrgba.Stride
		for x := range row {
			row[x] = nrgba.Pix[off+4*x]
		}
	}
	return g
}

// FromGrid copies a grid into a new *image.Gray anchored at (0,0).
func FromGrid(g *linefilter.Grid) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(gray.Pix, g.Pix)
	return gray
}
