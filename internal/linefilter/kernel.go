package linefilter

// Kernel is a square grid of concentric power-of-two weights.
//
// Ring i (0 = outermost) holds 2^(size/2 - i): the perimeter carries the
// largest weight and the centre cell is 1. Distinct ring magnitudes make the
// full-window sum act as a fingerprint: a straight line of full kernel width
// through the centre sums to exactly Checksum (125 for size 11).
type Kernel struct {
	size     int
	weights  []uint8
	checksum int
}

// NewKernel builds the kernel for the given size.
//
// Rings are painted from the outside in, each overwriting the square it
// bounds, with the weight halving at every step inward. The checksum is
// computed once, after population.
func NewKernel(size int) (*Kernel, error) {
	if err := validateKernelSize(size); err != nil {
		return nil, err
	}

	half := size / 2
	weights := make([]uint8, size*size)

	for ring := 0; ring <= half; ring++ {
		w := uint8(1) << uint(half-ring)
		for y := ring; y < size-ring; y++ {
			for x := ring; x < size-ring; x++ {
				weights[y*size+x] = w
			}
		}
	}

	k := &Kernel{size: size, weights: weights}
	for x := 0; x < size; x++ {
		k.checksum += int(k.At(x, half))
	}
	return k, nil
}

// Size returns the side length of the kernel.
func (k *Kernel) Size() int { return k.size }

// Half returns size/2, the padding every pass needs around the image.
func (k *Kernel) Half() int { return k.size / 2 }

// At returns the weight at column x, row y.
func (k *Kernel) At(x, y int) uint8 {
	return k.weights[y*k.size+x]
}

// Ring returns the concentric ring index of a cell, 0 being the perimeter.
func (k *Kernel) Ring(x, y int) int {
	return min(x, y, k.size-1-x, k.size-1-y)
}

// Checksum is the weighted sum of a full-width line through the centre.
func (k *Kernel) Checksum() int { return k.checksum }

// Rows returns a copy of the weights as a 2-D slice, row by row.
func (k *Kernel) Rows() [][]uint8 {
	rows := make([][]uint8, k.size)
	for y := range rows {
		rows[y] = append([]uint8(nil), k.weights[y*k.size:(y+1)*k.size]...)
	}
	return rows
}

// offset is a cell position relative to the kernel centre.
type offset struct {
	dx, dy int
}

// perimeterOffsets returns the outer-ring cells of a kernel in the cyclic
// order used by PerimeterVector: top row (without its right corner), right
// column (without its bottom corner), bottom row (without its left corner),
// left column (without its top corner).
func perimeterOffsets(size int) []offset {
	half := size / 2
	edge := size - 1
	offs := make([]offset, 0, 4*edge)
	for side := 0; side < 4; side++ {
		for k := -half; k < half; k++ {
			switch side {
			case 0:
				offs = append(offs, offset{k, -half})
			case 1:
				offs = append(offs, offset{half, k})
			case 2:
				offs = append(offs, offset{-k, half})
			case 3:
				offs = append(offs, offset{-half, -k})
			}
		}
	}
	return offs
}
