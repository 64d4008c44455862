package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/line-filter-mcp/internal/imaging"
	"github.com/ironsheep/line-filter-mcp/internal/linefilter"
	"github.com/ironsheep/line-filter-mcp/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: linefilter [-k size] [-runs n] [-span n] [-weights prefix] [-pre none|edge|threshold] [-t level] [-invert] [-low n] [-high n] [-region name] [-overlay file] [-v] inimg outimg\n")
		fmt.Fprintf(os.Stderr, "Remove foreground pixels that are not part of a straight contiguous line\n")
		flag.PrintDefaults()
	}
	def := linefilter.DefaultConfig()
	ksize := flag.Int("k", def.KernelSize, "Kernel size. Odd, 3 to 13. Longer kernels only keep longer straight runs.")
	runs := flag.Int("runs", def.KernelRuns, "Number of contiguous-line passes.")
	span := flag.Int("span", def.KernelSpan, "Angular tolerance in perimeter positions. Odd.")
	weights := flag.String("weights", "", "Load perimeter weights from <prefix><size>.dat instead of the built-in defaults.")
	pre := flag.String("pre", "none", "Binarization before filtering: none, edge or threshold.")
	thresh := flag.Int("t", 128, "Luminance level for threshold binarization.")
	invert := flag.Bool("invert", false, "Invert before threshold binarization, for dark lines on a light background.")
	low := flag.Int("low", 50, "Low hysteresis threshold for edge binarization.")
	high := flag.Int("high", 150, "High hysteresis threshold for edge binarization.")
	region := flag.String("region", "full", "Only filter a named region: full, top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half or center.")
	overlay := flag.String("overlay", "", "Also write a kept/removed colour overlay to this file.")
	verbose := flag.Bool("v", false, "Verbose logging.")
	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsole(os.Stderr, level)

	method, err := imaging.ParseBinarizeMethod(*pre)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -pre")
	}
	if *thresh < 0 || *thresh > 255 {
		log.Fatal().Int("t", *thresh).Msg("-t must be between 0 and 255")
	}
	opts := imaging.BinarizeOptions{
		Method: method,
		Level:  uint8(*thresh),
		Invert: *invert,
		Low:    *low,
		High:   *high,
	}

	var src linefilter.WeightSource = linefilter.EmbeddedSource()
	if *weights != "" {
		src = linefilter.DirSource{Prefix: *weights}
	}
	cfg := linefilter.Config{KernelSize: *ksize, KernelRuns: *runs, KernelSpan: *span}
	f, err := linefilter.LoadFilter(cfg, src, linefilter.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("could not set up filter")
	}

	cache := imaging.NewImageCache()
	img, err := cache.Load(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Str("file", flag.Arg(0)).Msg("could not load image")
	}
	if *region != "full" {
		img, err = imaging.CropRegion(img, *region)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -region")
		}
	}

	log.Info().Str("binarize", string(method)).Msg("filtering")
	res, err := imaging.FilterImage(context.Background(), f, img, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("filtering failed")
	}
	log.Info().
		Int("input", res.Stats.Input).
		Int("after_prune", res.Stats.AfterPrune).
		Ints("after_runs", res.Stats.AfterRuns).
		Msg("done")

	if err := imaging.SavePNG(flag.Arg(1), res.Output); err != nil {
		log.Fatal().Err(err).Str("file", flag.Arg(1)).Msg("could not write output")
	}

	if *overlay != "" {
		ov, err := imaging.DiffOverlay(res.Input, res.Output, "", "")
		if err != nil {
			log.Fatal().Err(err).Msg("could not build overlay")
		}
		if err := imaging.SavePNG(*overlay, ov.Image); err != nil {
			log.Fatal().Err(err).Str("file", *overlay).Msg("could not write overlay")
		}
	}
}
