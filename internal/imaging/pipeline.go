package imaging

import (
	"context"
	"image"

	"github.com/ironsheep/line-filter-mcp/internal/linefilter"
)

// FilterResult holds the planes and counts of one pipeline run.
type FilterResult struct {
	// Input is the binarized plane handed to the filter.
	Input *image.Gray
	// Output is the filtered plane, 255 where a pixel survived.
	Output *image.Gray
	Stats  *linefilter.Stats
}

// FilterImage binarizes img and runs the line filter over it.
func FilterImage(ctx context.Context, f *linefilter.Filter, img image.Image, opts BinarizeOptions) (*FilterResult, error) {
	bin, err := Binarize(img, opts)
	if err != nil {
		return nil, err
	}

	out, stats, err := f.RunWithStats(ctx, ToGrid(bin))
	if err != nil {
		return nil, err
	}

	return &FilterResult{
		Input:  bin,
		Output: FromGrid(out),
		Stats:  stats,
	}, nil
}
