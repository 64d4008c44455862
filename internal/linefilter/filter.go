package linefilter

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/rs/zerolog"
)

// On is the output value of a surviving pixel.
const On = 255

// Filter is a contiguous straight-line filter. It is immutable and safe for
// concurrent use.
type Filter struct {
	cfg       Config
	kernel    *Kernel
	perimeter *PerimeterVector
	table     *ProductTable
	offsets   []offset
	log       zerolog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the logger used for construction and per-pass debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Filter) {
		f.log = l
	}
}

// Stats reports foreground pixel counts at each stage of a run.
type Stats struct {
	Input       int   `json:"input"`
	AfterPrune  int   `json:"after_prune"`
	AfterRuns   []int `json:"after_runs"`
	Width       int   `json:"width"`
	Height      int   `json:"height"`
	PrunedCount int   `json:"pruned_count"`
}

// New validates cfg and builds the kernel, perimeter vector and product table.
func New(cfg Config, weights []int, opts ...Option) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kernel, err := NewKernel(cfg.KernelSize)
	if err != nil {
		return nil, err
	}
	perimeter, err := NewPerimeterVector(weights, cfg.KernelSize)
	if err != nil {
		return nil, err
	}
	table, err := NewProductTable(perimeter, cfg.KernelSpan)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		cfg:       cfg,
		kernel:    kernel,
		perimeter: perimeter,
		table:     table,
		offsets:   perimeterOffsets(cfg.KernelSize),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.log.Debug().
		Int("kernel_size", cfg.KernelSize).
		Int("kernel_runs", cfg.KernelRuns).
		Int("kernel_span", cfg.KernelSpan).
		Int("checksum", kernel.Checksum()).
		Int("products", table.Len()).
		Msg("line filter ready")

	return f, nil
}

// Config returns the parameters the filter was built with.
func (f *Filter) Config() Config { return f.cfg }

// Kernel returns the concentric weight kernel.
func (f *Filter) Kernel() *Kernel { return f.kernel }

// Perimeter returns the perimeter weight vector.
func (f *Filter) Perimeter() *PerimeterVector { return f.perimeter }

// Table returns the acceptable product table.
func (f *Filter) Table() *ProductTable { return f.table }

// Run filters g and returns a new grid of the same size holding 0 and 255.
// The input is not modified.
//
// Every contiguous-line pass only keeps or clears foreground pixels; a
// background pixel is never turned on, so no run can add pixels.
func (f *Filter) Run(ctx context.Context, g *Grid) (*Grid, error) {
	out, _, err := f.RunWithStats(ctx, g)
	return out, err
}

// RunWithStats is Run that also reports foreground counts after each stage.
func (f *Filter) RunWithStats(ctx context.Context, g *Grid) (*Grid, *Stats, error) {
	stats := &Stats{Width: g.Width, Height: g.Height}
	if g.Empty() {
		return NewGrid(g.Width, g.Height), stats, nil
	}

	cur := Clamp(g)
	stats.Input = cur.Count()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cur, pruned := f.prune(cur)
	stats.PrunedCount = pruned
	stats.AfterPrune = cur.Count()
	f.log.Debug().Int("input", stats.Input).Int("pruned", pruned).Msg("straight-line pass done")

	for run := 0; run < f.cfg.KernelRuns; run++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("contiguous-line pass %d: %w", run+1, err)
		}
		cur = f.confirm(Clamp(cur))
		n := cur.Count()
		stats.AfterRuns = append(stats.AfterRuns, n)
		f.log.Debug().Int("run", run+1).Int("remaining", n).Msg("contiguous-line pass done")
	}

	return cur, stats, nil
}

// prune runs the straight-line pass over a clamped grid. It returns a new
// clamped grid and the number of pixels cleared.
func (f *Filter) prune(clamped *Grid) (*Grid, int) {
	half := f.kernel.Half()
	src := Pad(clamped, half, 0)
	out := clamped.Clone()
	var cleared atomic.Int64

	parallel.Line(clamped.Height, func(start, end int) {
		n := 0
		for y := start; y < end; y++ {
			for x := 0; x < clamped.Width; x++ {
				if clamped.At(x, y) == 0 {
					continue
				}
				if !f.straight(src, x+half, y+half) {
					out.Set(x, y, 0)
					n++
				}
			}
		}
		cleared.Add(int64(n))
	})

	return out, int(cleared.Load())
}

// straight decides whether the pixel at padded position (cx, cy) may lie on a
// straight line.
//
// Only the first two foreground perimeter cells in scan order are paired, even
// when more exist. With fewer than two the pixel is kept.
func (f *Filter) straight(src *Grid, cx, cy int) bool {
	product := uint16(1)
	found := 0
	for pos, o := range f.offsets {
		if src.At(cx+o.dx, cy+o.dy) == 0 {
			continue
		}
		product *= uint16(f.perimeter.At(pos))
		found++
		if found == 2 {
			return f.table.Contains(product)
		}
	}
	return true
}

// confirm runs one contiguous-line pass over a clamped grid. A pixel is On in
// the result only if it is foreground in clamped and its window sums to the
// checksum. With the centre weighing 1 and every other weight even, a
// background centre could not reach the odd checksum anyway.
func (f *Filter) confirm(clamped *Grid) *Grid {
	half := f.kernel.Half()
	src := Pad(clamped, half, 0)
	out := NewGrid(clamped.Width, clamped.Height)
	checksum := f.kernel.Checksum()

	parallel.Line(clamped.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < clamped.Width; x++ {
				// Background pixels are never turned on.
				if clamped.At(x, y) == 0 {
					continue
				}
				if f.correlate(src, x, y) == checksum {
					out.Set(x, y, On)
				}
			}
		}
	})

	return out
}

// correlate returns the kernel-weighted sum of the window whose top-left
// corner is (x, y) in the padded grid.
func (f *Filter) correlate(src *Grid, x, y int) int {
	size := f.kernel.Size()
	sum := 0
	for ky := 0; ky < size; ky++ {
		row := src.Row(y + ky)[x : x+size]
		for kx, v := range row {
			if v != 0 {
				sum += int(v) * int(f.kernel.At(kx, ky))
			}
		}
	}
	return sum
}
