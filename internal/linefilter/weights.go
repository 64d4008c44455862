package linefilter

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
)

// WeightFilePrefix is the file name prefix of perimeter weight files. The
// kernel size and ".dat" follow it.
const WeightFilePrefix = "contiguous_line_weights_"

//go:embed weights/*.dat
var embeddedWeights embed.FS

// WeightSource supplies perimeter weights keyed by kernel size.
type WeightSource interface {
	Weights(kernelSize int) ([]int, error)
}

// ParseWeights reads n whitespace-separated integers, conventionally one per
// line. Anything after the first n values is ignored.
func ParseWeights(r io.Reader, n int) ([]int, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	weights := make([]int, 0, n)
	for len(weights) < n && sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", ErrWeights, len(weights)+1, err)
		}
		weights = append(weights, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeights, err)
	}
	if len(weights) < n {
		return nil, fmt.Errorf("%w: expected %d values, found %d", ErrWeights, n, len(weights))
	}
	return weights, nil
}

// DirSource reads "<Prefix><size>.dat" from the file system. Prefix usually
// ends with WeightFilePrefix, e.g. "weights/contiguous_line_weights_".
type DirSource struct {
	Prefix string
}

// Weights opens and parses the weight file for kernelSize.
func (s DirSource) Weights(kernelSize int) ([]int, error) {
	return readWeights(kernelSize, s.Prefix, func(name string) (io.ReadCloser, error) {
		return os.Open(name)
	})
}

type fsSource struct {
	fsys   fs.FS
	prefix string
}

// EmbeddedSource serves the default weight files built into the binary, one
// for every valid kernel size.
//
// The defaults split the perimeter into four direction arcs, each
// size/2 cells long, weighted 1, 2, 8 and 64; a cell and its opposite share an
// arc. Products of straight crossings then never equal 1*8 or 2*64, so pairs
// about 90 degrees apart are rejected for any span up to the kernel size.
func EmbeddedSource() WeightSource {
	return fsSource{fsys: embeddedWeights, prefix: "weights/" + WeightFilePrefix}
}

// FSSource reads "<prefix><size>.dat" from fsys.
func FSSource(fsys fs.FS, prefix string) WeightSource {
	return fsSource{fsys: fsys, prefix: prefix}
}

func (s fsSource) Weights(kernelSize int) ([]int, error) {
	return readWeights(kernelSize, s.prefix, func(name string) (io.ReadCloser, error) {
		return s.fsys.Open(name)
	})
}

func readWeights(kernelSize int, prefix string, open func(string) (io.ReadCloser, error)) ([]int, error) {
	if err := validateKernelSize(kernelSize); err != nil {
		return nil, err
	}
	name := prefix + strconv.Itoa(kernelSize) + ".dat"
	f, err := open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open weight file: %w", ErrWeights, err)
	}
	defer f.Close()

	w, err := ParseWeights(f, PerimeterLength(kernelSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return w, nil
}

// LoadFilter fetches the weights for cfg.KernelSize from src and builds a Filter.
func LoadFilter(cfg Config, src WeightSource, opts ...Option) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weights, err := src.Weights(cfg.KernelSize)
	if err != nil {
		return nil, err
	}
	return New(cfg, weights, opts...)
}
