package linefilter

import "fmt"

// Grid is a single-channel 8-bit pixel plane stored row-major.
type Grid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height int) *Grid {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Grid{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// GridFromPixels wraps an existing row-major buffer without copying it.
func GridFromPixels(width, height int, pix []uint8) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("grid %dx%d needs %d pixels, got %d", width, height, width*height, len(pix))
	}
	return &Grid{Width: width, Height: height, Pix: pix}, nil
}

// At returns the pixel at column x, row y. Callers stay within bounds.
func (g *Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Row returns the pixels of row y, sharing the grid's storage.
func (g *Grid) Row(y int) []uint8 {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// Empty reports whether the grid has no pixels.
func (g *Grid) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.Width, g.Height)
	copy(c.Pix, g.Pix)
	return c
}

// Count returns the number of foreground (positive) pixels.
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.Pix {
		if v > 0 {
			n++
		}
	}
	return n
}

// Equal reports whether two grids have the same dimensions and pixels.
func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i, v := range g.Pix {
		if o.Pix[i] != v {
			return false
		}
	}
	return true
}

// Clamp returns a new grid where every positive pixel is 1 and the rest 0.
func Clamp(g *Grid) *Grid {
	c := NewGrid(g.Width, g.Height)
	for i, v := range g.Pix {
		if v > 0 {
			c.Pix[i] = 1
		}
	}
	return c
}

// Pad returns a new grid with margin cells of fill added on every side.
func Pad(g *Grid, margin int, fill uint8) *Grid {
	w, h := g.Width+2*margin, g.Height+2*margin
	p := NewGrid(w, h)
	if fill != 0 {
		for i := range p.Pix {
			p.Pix[i] = fill
		}
	}
	for y := 0; y < g.Height; y++ {
		copy(p.Pix[(y+margin)*w+margin:], g.Row(y))
	}
	return p
}
