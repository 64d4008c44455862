package linefilter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

func newTestFilter(t *testing.T, cfg Config) *Filter {
	t.Helper()
	f, err := LoadFilter(cfg, EmbeddedSource())
	if err != nil {
		t.Fatalf("LoadFilter failed: %v", err)
	}
	return f
}

// horizontalLine returns a grid with a single run of length pixels on row y
// starting at column x0.
func horizontalLine(w, h, x0, y, length int, v uint8) *Grid {
	g := NewGrid(w, h)
	for x := x0; x < x0+length; x++ {
		g.Set(x, y, v)
	}
	return g
}

// noiseGrid returns a reproducible grid with roughly density foreground pixels.
func noiseGrid(w, h int, density float64, seed int64) *Grid {
	r := rand.New(rand.NewSource(seed))
	g := NewGrid(w, h)
	for i := range g.Pix {
		if r.Float64() < density {
			g.Pix[i] = 255
		}
	}
	return g
}

func TestNew_InvalidConfig(t *testing.T) {
	weights := sequentialWeights(48)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"even size", Config{KernelSize: 10, KernelRuns: 1, KernelSpan: 5}},
		{"size too small", Config{KernelSize: 1, KernelRuns: 1, KernelSpan: 5}},
		{"size too large", Config{KernelSize: 15, KernelRuns: 1, KernelSpan: 5}},
		{"zero runs", Config{KernelSize: 11, KernelRuns: 0, KernelSpan: 5}},
		{"even span", Config{KernelSize: 11, KernelRuns: 1, KernelSpan: 4}},
		{"zero span", Config{KernelSize: 11, KernelRuns: 1, KernelSpan: 0}},
		{"negative span", Config{KernelSize: 11, KernelRuns: 1, KernelSpan: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg, weights)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if f != nil {
				t.Error("New must not return a filter on error")
			}
		})
	}
}

func TestNew_ShortWeights(t *testing.T) {
	_, err := New(DefaultConfig(), sequentialWeights(39))
	if !errors.Is(err, ErrWeights) {
		t.Errorf("expected ErrWeights, got %v", err)
	}
}

func TestRun_AllZero(t *testing.T) {
	for _, size := range validSizes() {
		for _, runs := range []int{1, 3} {
			t.Run(fmt.Sprintf("size_%d_runs_%d", size, runs), func(t *testing.T) {
				f := newTestFilter(t, Config{KernelSize: size, KernelRuns: runs, KernelSpan: 3})
				out, err := f.Run(context.Background(), NewGrid(40, 30))
				if err != nil {
					t.Fatalf("Run failed: %v", err)
				}
				if out.Width != 40 || out.Height != 30 {
					t.Errorf("dimensions: got %dx%d, want 40x30", out.Width, out.Height)
				}
				if out.Count() != 0 {
					t.Errorf("expected no foreground, got %d pixels", out.Count())
				}
			})
		}
	}
}

func TestRun_FullWidthLineSurvives(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 11, KernelRuns: 1, KernelSpan: 5})

	// Eleven pixels on row 10, columns 10..20, with a margin of at least 5.
	in := horizontalLine(31, 21, 10, 10, 11, 255)

	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := out.At(15, 10); got != On {
		t.Errorf("centre of the run: got %d, want %d", got, On)
	}
	if out.Count() != 1 {
		t.Errorf("only the centre has a full-width line, got %d survivors", out.Count())
	}
}

func TestRun_VerticalLineSurvives(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 7, KernelRuns: 1, KernelSpan: 3})

	in := NewGrid(15, 21)
	for y := 3; y < 18; y++ {
		in.Set(7, y, 1)
	}

	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Every pixel with three line pixels on each side keeps its full window.
	for y := 6; y < 15; y++ {
		if out.At(7, y) != On {
			t.Errorf("At(7,%d): got %d, want %d", y, out.At(7, y), On)
		}
	}
	if out.At(7, 3) != 0 || out.At(7, 17) != 0 {
		t.Error("line ends do not have a full-width window and must be cleared")
	}
}

func TestRun_IsolatedPixelRemoved(t *testing.T) {
	for _, size := range validSizes() {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			f := newTestFilter(t, Config{KernelSize: size, KernelRuns: 1, KernelSpan: 1})
			in := NewGrid(30, 30)
			in.Set(15, 15, 255)

			// The straight-line pass finds no perimeter neighbours and keeps it.
			pruned, cleared := f.prune(Clamp(in))
			if cleared != 0 || pruned.At(15, 15) != 1 {
				t.Fatalf("straight-line pass should keep an isolated pixel, cleared %d", cleared)
			}

			out, err := f.Run(context.Background(), in)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if out.At(15, 15) != 0 {
				t.Errorf("isolated pixel: got %d, want 0", out.At(15, 15))
			}
		})
	}
}

func TestPrune_RejectsBentPair(t *testing.T) {
	// Opposite products are {16, 64, 256, 1024}; neighbours at positions 0
	// and 1 multiply to 2, which is not a straight crossing.
	f, err := New(Config{KernelSize: 3, KernelRuns: 1, KernelSpan: 1}, []int{1, 2, 4, 8, 16, 32, 64, 128})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	bent := NewGrid(5, 5)
	bent.Set(2, 2, 1)
	bent.Set(1, 1, 1)
	bent.Set(2, 1, 1)
	out, _ := f.prune(bent)
	if out.At(2, 2) != 0 {
		t.Error("pixel with a bent neighbour pair should be cleared")
	}

	diagonal := NewGrid(5, 5)
	diagonal.Set(2, 2, 1)
	diagonal.Set(1, 1, 1)
	diagonal.Set(3, 3, 1)
	out, _ = f.prune(diagonal)
	if out.At(2, 2) != 1 {
		t.Error("pixel on a straight diagonal should be kept")
	}
}

func TestPrune_DefaultWeightsRejectCorner(t *testing.T) {
	f := newTestFilter(t, DefaultConfig())

	// Top-centre and left-centre perimeter cells: a right-angle turn.
	corner := NewGrid(31, 31)
	corner.Set(15, 15, 1)
	corner.Set(15, 10, 1)
	corner.Set(10, 15, 1)
	out, cleared := f.prune(corner)
	if out.At(15, 15) != 0 {
		t.Error("pixel at a right-angle turn should be cleared by the default weights")
	}
	if cleared == 0 {
		t.Error("expected the straight-line pass to clear at least one pixel")
	}

	straight := NewGrid(31, 31)
	straight.Set(15, 15, 1)
	straight.Set(10, 15, 1)
	straight.Set(20, 15, 1)
	out, _ = f.prune(straight)
	if out.At(15, 15) != 1 {
		t.Error("pixel between two opposite perimeter cells should be kept")
	}

	// Two cells off exact opposition is still inside span 5.
	near := NewGrid(31, 31)
	near.Set(15, 15, 1)
	near.Set(10, 15, 1)
	near.Set(20, 17, 1)
	out, _ = f.prune(near)
	if out.At(15, 15) != 1 {
		t.Error("pixel on a near-straight crossing should be kept")
	}
}

func TestPrune_OnlyFirstTwoNeighboursCount(t *testing.T) {
	// Positions 0 and 1 are found first and reject the pixel, even though
	// position 4 would pair with position 0 on a straight line.
	f, err := New(Config{KernelSize: 3, KernelRuns: 1, KernelSpan: 1}, []int{1, 2, 4, 8, 16, 32, 64, 128})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g := NewGrid(5, 5)
	g.Set(2, 2, 1)
	g.Set(1, 1, 1) // position 0
	g.Set(2, 1, 1) // position 1
	g.Set(3, 3, 1) // position 4
	out, _ := f.prune(g)
	if out.At(2, 2) != 0 {
		t.Error("scan must stop after the first two foreground perimeter cells")
	}
}

func TestRun_MoreRunsNeverGrow(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			in := noiseGrid(64, 48, 0.35, seed)
			// Add a few lines so something survives the first run.
			for x := 5; x < 60; x++ {
				in.Set(x, 20, 255)
			}
			for y := 2; y < 46; y++ {
				in.Set(30, y, 255)
			}

			one := newTestFilter(t, Config{KernelSize: 5, KernelRuns: 1, KernelSpan: 3})
			many := newTestFilter(t, Config{KernelSize: 5, KernelRuns: 4, KernelSpan: 3})

			out1, err := one.Run(context.Background(), in)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			outN, stats, err := many.RunWithStats(context.Background(), in)
			if err != nil {
				t.Fatalf("RunWithStats failed: %v", err)
			}

			if outN.Count() > out1.Count() {
				t.Errorf("4 runs left %d pixels, 1 run left %d", outN.Count(), out1.Count())
			}
			for i := 1; i < len(stats.AfterRuns); i++ {
				if stats.AfterRuns[i] > stats.AfterRuns[i-1] {
					t.Errorf("run %d grew from %d to %d", i+1, stats.AfterRuns[i-1], stats.AfterRuns[i])
				}
			}
			if stats.AfterRuns[0] != out1.Count() {
				t.Errorf("first run count %d differs from single-run filter %d", stats.AfterRuns[0], out1.Count())
			}
		})
	}
}

func TestConfirm_BackgroundNeverTurnsOn(t *testing.T) {
	for _, size := range validSizes() {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			f := newTestFilter(t, Config{KernelSize: size, KernelRuns: 1, KernelSpan: 3})

			// A full-width line with a hole at its centre.
			in := horizontalLine(40, 20, 5, 10, size, 1)
			in.Set(5+size/2, 10, 0)
			out := f.confirm(in)
			if out.At(5+size/2, 10) != 0 {
				t.Error("background pixel inside a line was turned on")
			}

			noisy := Clamp(noiseGrid(40, 40, 0.6, int64(size)))
			out = f.confirm(noisy)
			for i, v := range out.Pix {
				if v != 0 && noisy.Pix[i] == 0 {
					t.Fatalf("pixel %d turned on from background", i)
				}
			}
		})
	}
}

func TestRun_SecondRunRemovesLoneSurvivor(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 11, KernelRuns: 2, KernelSpan: 5})
	in := horizontalLine(31, 21, 10, 10, 11, 255)

	out, stats, err := f.RunWithStats(context.Background(), in)
	if err != nil {
		t.Fatalf("RunWithStats failed: %v", err)
	}
	if len(stats.AfterRuns) != 2 || stats.AfterRuns[0] != 1 || stats.AfterRuns[1] != 0 {
		t.Errorf("AfterRuns: got %v, want [1 0]", stats.AfterRuns)
	}
	if out.Count() != 0 {
		t.Errorf("expected empty output, got %d pixels", out.Count())
	}
}

func TestRun_Deterministic(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 7, KernelRuns: 2, KernelSpan: 3})
	in := noiseGrid(80, 60, 0.4, 42)

	a, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !a.Equal(b) {
		t.Error("two runs on the same input differ")
	}
}

func TestRun_OutputIsBinary(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 5, KernelRuns: 1, KernelSpan: 3})
	in := noiseGrid(50, 50, 0.5, 7)
	for i := range in.Pix {
		if in.Pix[i] > 0 {
			in.Pix[i] = uint8(1 + i%254)
		}
	}

	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, v := range out.Pix {
		if v != 0 && v != On {
			t.Fatalf("pixel %d: got %d, want 0 or %d", i, v, On)
		}
	}
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	f := newTestFilter(t, DefaultConfig())
	in := noiseGrid(40, 40, 0.3, 9)
	before := in.Clone()

	if _, err := f.Run(context.Background(), in); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !in.Equal(before) {
		t.Error("Run modified its input")
	}
}

func TestRun_EmptyGrid(t *testing.T) {
	f := newTestFilter(t, DefaultConfig())
	for _, dims := range [][2]int{{0, 0}, {0, 10}, {10, 0}} {
		out, err := f.Run(context.Background(), NewGrid(dims[0], dims[1]))
		if err != nil {
			t.Fatalf("Run(%v) failed: %v", dims, err)
		}
		if out.Width != dims[0] || out.Height != dims[1] || len(out.Pix) != 0 {
			t.Errorf("Run(%v): got %dx%d with %d pixels", dims, out.Width, out.Height, len(out.Pix))
		}
	}
}

func TestRun_ShortLineRemoved(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 11, KernelRuns: 1, KernelSpan: 5})
	in := horizontalLine(31, 21, 10, 10, 10, 255)

	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Count() != 0 {
		t.Errorf("a 10-pixel run cannot fill an 11-wide kernel, got %d survivors", out.Count())
	}
}

func TestRun_Cancelled(t *testing.T) {
	f := newTestFilter(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Run(ctx, noiseGrid(20, 20, 0.5, 3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_ConcurrentUse(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 5, KernelRuns: 2, KernelSpan: 3})
	in := noiseGrid(60, 60, 0.4, 11)
	want, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, err := f.Run(context.Background(), in)
			if err == nil && !got.Equal(want) {
				err = errors.New("concurrent run produced a different result")
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestRunWithStats(t *testing.T) {
	f := newTestFilter(t, Config{KernelSize: 11, KernelRuns: 1, KernelSpan: 5})
	in := horizontalLine(31, 21, 10, 10, 11, 255)
	in.Set(2, 2, 255)

	_, stats, err := f.RunWithStats(context.Background(), in)
	if err != nil {
		t.Fatalf("RunWithStats failed: %v", err)
	}
	if stats.Input != 12 {
		t.Errorf("Input: got %d, want 12", stats.Input)
	}
	if stats.AfterPrune != stats.Input-stats.PrunedCount {
		t.Errorf("AfterPrune %d != Input %d - PrunedCount %d", stats.AfterPrune, stats.Input, stats.PrunedCount)
	}
	if stats.Width != 31 || stats.Height != 21 {
		t.Errorf("dimensions: got %dx%d", stats.Width, stats.Height)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	f, err := LoadFilter(DefaultConfig(), EmbeddedSource(), WithLogger(logger))
	if err != nil {
		t.Fatalf("LoadFilter failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"checksum":125`)) {
		t.Errorf("construction log missing checksum: %s", buf.String())
	}

	buf.Reset()
	if _, err := f.Run(context.Background(), NewGrid(20, 20)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("contiguous-line pass done")) {
		t.Errorf("run log missing pass output: %s", buf.String())
	}
}
