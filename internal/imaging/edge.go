package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// edgeBlurRadius is the Gaussian radius applied before gradient computation.
const edgeBlurRadius = 1.4

// EdgeDetect performs Canny-style edge detection and returns a binary image
// where edges are 255 and everything else is 0.
//
// This is the usual upstream step for the line filter: it turns a photograph
// or diagram into thin one-pixel strokes, which the filter then cleans.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - thresholdLow: Gradient magnitude (0-255 scale) below which pixels are
//     discarded. Typical value: 50.
//   - thresholdHigh: Gradient magnitude above which pixels are strong edges.
//     Typical value: 150.
//
// # Algorithm
//
//  1. Gaussian blur (bild, radius 1.4) to reduce noise
//  2. Luminance conversion (bild)
//  3. Sobel gradients: magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//  4. Non-maximum suppression: keep local maxima along the gradient direction,
//     which thins edges to one pixel
//  5. Hysteresis: strong edges are kept, weak edges only next to a strong one
//
// Border pixels never become edges.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) *image.Gray {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return result
	}

	// bild returns RGBA with R == G == B; read the red channel.
	gray := effect.Grayscale(blur.Gaussian(img, edgeBlurRadius))
	lum := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[y*gray.Stride+4*x]) / 255.0
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -lum(x-1, y-1) + lum(x+1, y-1) +
				-2*lum(x-1, y) + 2*lum(x+1, y) +
				-lum(x-1, y+1) + lum(x+1, y+1)
			gy := -lum(x-1, y-1) - 2*lum(x, y-1) - lum(x+1, y-1) +
				lum(x-1, y+1) + 2*lum(x, y+1) + lum(x+1, y+1)
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			dx, dy := gradientNeighbour(direction[i])
			mag := magnitude[i]
			if mag >= magnitude[(y+dy)*width+x+dx] && mag >= magnitude[(y-dy)*width+x-dx] {
				suppressed[i] = mag
			}
		}
	}

	low := float64(thresholdLow) / 255.0
	high := float64(thresholdHigh) / 255.0
	strong := func(x, y int) bool {
		return suppressed[y*width+x] >= high
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			v := suppressed[y*width+x]
			switch {
			case v >= high:
				result.Pix[y*result.Stride+x] = 255
			case v >= low:
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						if strong(x+kx, y+ky) {
							result.Pix[y*result.Stride+x] = 255
						}
					}
				}
			}
		}
	}

	return result
}

// gradientNeighbour quantizes a gradient angle to one of four directions and
// returns the pixel step along it.
func gradientNeighbour(angle float64) (dx, dy int) {
	a := math.Mod(angle+math.Pi, math.Pi)
	switch {
	case a < math.Pi/8 || a >= 7*math.Pi/8:
		return 1, 0
	case a < 3*math.Pi/8:
		return 1, 1
	case a < 5*math.Pi/8:
		return 0, 1
	default:
		return -1, 1
	}
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
