// Package main provides the urs-log-analyzer CLI entry point.
//
// urs-log-analyzer reconstructs per-UE procedure timings from an RLS
// simulator log and reports the average duration of every 5G registration
// and session procedure across the simulated devices.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/analyzer"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/config"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/logging"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/urs-log-analyzer
var version = "dev"

const name = "urs-log-analyzer"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.ParseArgs(name, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if !errors.Is(err, config.ErrUsage) {
			fmt.Fprintf(stderr, "Error parsing arguments: %v\n", err)
		}
		return 1
	}

	if cfg.Version {
		fmt.Fprintf(stdout, "%s %s\n", name, version)
		return 0
	}

	// Initialize logger
	// When TUI is enabled, suppress logs to avoid interfering with TUI rendering
	var logger *slog.Logger
	if cfg.TUI {
		logger = logging.Discard()
	} else {
		logger = logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cfg.Verbose)
	}
	logging.SetDefault(logger)

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	logger.Debug("starting",
		"version", version,
		"first_imsi", cfg.FirstIMSI,
		"ue_count", cfg.UECount,
		"log_file", cfg.LogPath,
		"format", cfg.Format,
	)

	a := analyzer.New(cfg, logger, version)
	a.SetOutput(stdout)
	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
