package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/line-filter-mcp/internal/linefilter"
	"github.com/ironsheep/line-filter-mcp/internal/logger"
	"github.com/ironsheep/line-filter-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("line-filter-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("line-filter-mcp - MCP server for contiguous straight-line filtering of binary images")
			fmt.Println()
			fmt.Println("Usage: line-filter-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  LINE_FILTER_LOG_LEVEL=debug     Log level (debug, info, warn, error; default warn)")
			fmt.Println("  LINE_FILTER_WEIGHTS=<prefix>    Load perimeter weights from <prefix><size>.dat")
			fmt.Println("                                  instead of the built-in defaults")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Logging goes to stderr (stdout is for MCP protocol)
	log := logger.New(os.Stderr, logger.LevelFromEnv("LINE_FILTER_LOG_LEVEL", zerolog.WarnLevel))
	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("line filter MCP server starting")

	opts := []server.Option{server.WithLogger(log)}
	if prefix := os.Getenv("LINE_FILTER_WEIGHTS"); prefix != "" {
		log.Info().Str("prefix", prefix).Msg("using perimeter weights from disk")
		opts = append(opts, server.WithWeights(linefilter.DirSource{Prefix: prefix}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(opts...)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
