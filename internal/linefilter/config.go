package linefilter

import (
	"errors"
	"fmt"
)

const (
	// MinKernelSize is the smallest kernel with a perimeter distinct from its centre.
	MinKernelSize = 3

	// MaxKernelSize bounds the ring count so every weight fits in a uint8.
	MaxKernelSize = 13
)

var (
	// ErrInvalidConfig is wrapped by every configuration error.
	ErrInvalidConfig = errors.New("invalid line filter configuration")

	// ErrWeights is wrapped by every perimeter weight loading error.
	ErrWeights = errors.New("invalid perimeter weights")
)

// Config holds the filter parameters.
type Config struct {
	// KernelSize is the side of the square kernel. Odd, in [3, 13].
	KernelSize int `json:"kernel_size"`

	// KernelRuns is how many times the contiguous-line pass is repeated. At least 1.
	KernelRuns int `json:"kernel_runs"`

	// KernelSpan is the tolerance, in perimeter positions, around the exactly
	// opposite perimeter cell. Odd, at least 1.
	KernelSpan int `json:"kernel_span"`
}

// DefaultConfig returns the parameters the filter is usually run with.
func DefaultConfig() Config {
	return Config{
		KernelSize: 11,
		KernelRuns: 1,
		KernelSpan: 5,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validateKernelSize(c.KernelSize); err != nil {
		return err
	}
	if c.KernelRuns < 1 {
		return fmt.Errorf("%w: kernel runs must be at least 1, got %d", ErrInvalidConfig, c.KernelRuns)
	}
	if c.KernelSpan < 1 || c.KernelSpan%2 == 0 {
		return fmt.Errorf("%w: kernel span must be odd and positive, got %d", ErrInvalidConfig, c.KernelSpan)
	}
	return nil
}

// PerimeterLength returns the number of outer-ring cells of a kernel of the given size.
func PerimeterLength(kernelSize int) int {
	return 4 * (kernelSize - 1)
}

func validateKernelSize(size int) error {
	if size%2 == 0 {
		return fmt.Errorf("%w: kernel size must be odd, got %d", ErrInvalidConfig, size)
	}
	if size < MinKernelSize || size > MaxKernelSize {
		return fmt.Errorf("%w: kernel size must be in [%d, %d], got %d",
			ErrInvalidConfig, MinKernelSize, MaxKernelSize, size)
	}
	return nil
}
