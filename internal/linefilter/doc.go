// Package linefilter removes foreground pixels that do not belong to a locally
// straight, contiguous line segment in a binary raster.
//
// The filter is meant to run after an upstream binarization step such as edge
// detection. It suppresses isolated or curved foreground noise while keeping
// pixels that form straight strokes at least one kernel wide.
//
// # Construction
//
// A Filter is built once from a Config and a perimeter weight sequence:
//
//	weights, err := linefilter.EmbeddedSource().Weights(11)
//	if err != nil {
//	    return err
//	}
//	f, err := linefilter.New(linefilter.Config{KernelSize: 11, KernelRuns: 1, KernelSpan: 5}, weights)
//
// Construction derives three immutable values owned by the Filter:
//   - Kernel: a square grid of concentric power-of-two rings, with its checksum
//     (the sum of the centre row).
//   - PerimeterVector: one weight per outer-ring cell, in cyclic order top row,
//     right column, bottom row, left column.
//   - ProductTable: the sorted set of weight products of perimeter cells lying
//     roughly opposite each other through the kernel centre.
//
// All fallible work happens here. Errors wrap ErrInvalidConfig or ErrWeights.
//
// # Filtering
//
// Run clamps the input to {0,1} and applies two passes:
//
//  1. Straight-line pruning (once). For every foreground pixel, the first two
//     foreground cells found on the kernel perimeter are paired; when their
//     weight product is not in the ProductTable the pixel is cleared.
//  2. Contiguous-line confirmation (KernelRuns times). A foreground pixel stays
//     on only when the kernel-weighted sum of its window equals the checksum.
//
// The output has the input's dimensions and holds only 0 and 255.
//
// # Thread Safety
//
// A Filter is immutable after construction and safe for concurrent use. Each
// pass reads a frozen, padded snapshot and writes a separate buffer, so rows
// are processed in parallel without locks.
package linefilter
