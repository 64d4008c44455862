package linefilter

import (
	"fmt"
	"slices"
)

// PerimeterVector holds one weight per outer-ring cell of the kernel.
//
// Cells are ordered cyclically: top row left to right, right column top to
// bottom, bottom row right to left, left column bottom to top. Each edge
// contributes size-1 cells and omits the corner the next edge starts with.
type PerimeterVector struct {
	kernelSize int
	weights    []uint8
}

// NewPerimeterVector checks the weights against the kernel size and copies them.
//
// Only the first PerimeterLength(kernelSize) values are used. Each value must
// fit in 8 bits so that pairwise products fit in 16.
func NewPerimeterVector(weights []int, kernelSize int) (*PerimeterVector, error) {
	if err := validateKernelSize(kernelSize); err != nil {
		return nil, err
	}
	n := PerimeterLength(kernelSize)
	if len(weights) < n {
		return nil, fmt.Errorf("%w: kernel size %d needs %d weights, got %d", ErrWeights, kernelSize, n, len(weights))
	}

	v := &PerimeterVector{kernelSize: kernelSize, weights: make([]uint8, n)}
	for i, w := range weights[:n] {
		if w < 0 || w > 0xff {
			return nil, fmt.Errorf("%w: weight %d at position %d does not fit in 8 bits", ErrWeights, w, i)
		}
		v.weights[i] = uint8(w)
	}
	return v, nil
}

// Len returns the perimeter length.
func (v *PerimeterVector) Len() int { return len(v.weights) }

// At returns the weight at a perimeter position, taken modulo the length.
func (v *PerimeterVector) At(i int) uint8 {
	n := len(v.weights)
	return v.weights[((i%n)+n)%n]
}

// Weights returns a copy of the weights.
func (v *PerimeterVector) Weights() []uint8 {
	return slices.Clone(v.weights)
}

// ProductTable is the sorted set of acceptable perimeter weight products.
//
// A product is acceptable when it can come from two perimeter cells that lie
// within span/2 positions of being exactly opposite each other through the
// kernel centre, i.e. from a near-straight line crossing the kernel.
type ProductTable struct {
	products []uint16
}

// NewProductTable derives the acceptable products from a perimeter vector.
//
// For every position i and every offset j in [-span/2, span/2], the product
// of the weights at i and at i + L/2 + j (mod L) is added once. The table
// holds exactly the distinct products generated, in ascending order.
func NewProductTable(v *PerimeterVector, span int) (*ProductTable, error) {
	if span < 1 || span%2 == 0 {
		return nil, fmt.Errorf("%w: kernel span must be odd and positive, got %d", ErrInvalidConfig, span)
	}

	n := v.Len()
	opposite := 2*v.kernelSize - 2
	halfSpan := span / 2

	seen := make(map[uint16]struct{}, n*span/2)
	products := make([]uint16, 0, n*span/2)
	for i := 0; i < n; i++ {
		for j := -halfSpan; j <= halfSpan; j++ {
			p := uint16(v.At(i)) * uint16(v.At(i+opposite+j))
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			products = append(products, p)
		}
	}
	slices.Sort(products)

	return &ProductTable{products: products}, nil
}

// Contains reports whether p is an acceptable product.
func (t *ProductTable) Contains(p uint16) bool {
	_, ok := slices.BinarySearch(t.products, p)
	return ok
}

// Len returns the number of distinct products.
func (t *ProductTable) Len() int { return len(t.products) }

// Products returns a copy of the products in ascending order.
func (t *ProductTable) Products() []uint16 {
	return slices.Clone(t.products)
}
