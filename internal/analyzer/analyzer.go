// Package analyzer runs one log analysis end to end: load the log, ingest
// it, build the report, write the outputs and optionally keep serving the
// metrics or show the interactive browser.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/config"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/correlator"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/logfile"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/metrics"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/preflight"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/stats"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/tui"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/ue"
)

// Analyzer coordinates all components for one run.
type Analyzer struct {
	config  *config.Config
	logger  *slog.Logger
	version string

	stdout io.Writer

	registry  *prometheus.Registry
	collector *metrics.Collector

	// runTUI and signals are replaced in tests.
	runTUI  func(tui.Config) error
	signals func() (<-chan os.Signal, func())
}

// Result is the outcome of a successful ingestion.
type Result struct {
	Log      *logfile.Log
	Report   *stats.Report
	Counters correlator.Counters
	Elapsed  time.Duration
}

// New creates an Analyzer writing its report to stdout.
func New(cfg *config.Config, logger *slog.Logger, version string) *Analyzer {
	registry := prometheus.NewRegistry()
	return &Analyzer{
		config:    cfg,
		logger:    logger,
		version:   version,
		stdout:    os.Stdout,
		registry:  registry,
		collector: metrics.NewCollector(registry),
		runTUI:    tui.Run,
		signals:   notifySignals,
	}
}

// SetOutput redirects the report.
func (a *Analyzer) SetOutput(w io.Writer) {
	a.stdout = w
}

// Analyze loads and ingests the log and builds the report. A fatal format
// error is returned as-is so callers can print its diagnostic.
func (a *Analyzer) Analyze() (*Result, error) {
	start := time.Now()

	input, err := logfile.ReadFile(a.config.LogPath)
	if err != nil {
		return nil, err
	}
	a.logger.Info("log_loaded",
		"path", input.Path,
		"compression", input.Compression.String(),
		"lines", len(input.Lines),
		"bytes", input.Bytes,
	)

	store, err := ue.NewStore(a.config.FirstIMSI, a.config.UECount)
	if err != nil {
		return nil, err
	}

	engine := correlator.New(store, a.logger)
	if err := engine.Run(input.Lines); err != nil {
		return nil, err
	}

	overall, observed := engine.Overall().Duration()
	report := stats.Build(store, stats.Options{
		LogPath:         a.config.LogPath,
		DeviceCount:     a.config.UECount,
		Overall:         overall,
		OverallObserved: observed,
	})

	counters := engine.Counters()
	a.logger.Info("ingest_complete",
		"relevant", counters.Relevant,
		"procedure_events", counters.ProcedureEvents,
		"correlated", engine.Correlated(),
		"warnings", len(report.Warnings()),
	)

	return &Result{
		Log:      input,
		Report:   report,
		Counters: counters,
		Elapsed:  time.Since(start),
	}, nil
}

// Run checks the inputs and executes the analysis. It blocks until the TUI is closed or, with a
// metrics address, until a signal arrives or ctx is cancelled.
func (a *Analyzer) Run(ctx context.Context) error {
	checks := preflight.RunAll(preflight.Options{
		LogPath:     a.config.LogPath,
		MetricsFile: a.config.MetricsFile,
		MetricsAddr: a.config.MetricsAddr,
	})
	preflight.LogResults(a.logger, checks)
	if err := checks.Err(); err != nil {
		return err
	}

	res, err := a.Analyze()
	if err != nil {
		return err
	}

	for _, ps := range res.Report.Warnings() {
		a.logger.Warn("procedure_inconsistent",
			"procedure", ps.Procedure.String(),
			"count", ps.Count,
			"ue_count", res.Report.DeviceCount,
		)
	}

	if err := a.writeReport(res.Report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	a.collector.SetInfo(a.version, res.Report)
	a.collector.RecordReport(res.Report)
	a.collector.RecordIngest(res.Counters)

	if err := a.writeMetrics(); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	if a.config.TUI {
		if err := a.runTUI(tui.Config{Report: res.Report, Version: a.version}); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
	}

	if a.config.MetricsAddr != "" {
		return a.serve(ctx)
	}
	return nil
}

func (a *Analyzer) writeReport(r *stats.Report) error {
	switch a.config.Format {
	case config.FormatJSON:
		return stats.Export(a.stdout, r, stats.FormatJSON)
	case config.FormatYAML:
		return stats.Export(a.stdout, r, stats.FormatYAML)
	default:
		return stats.WriteText(a.stdout, r, stats.TextOptions{Detail: a.config.Detail})
	}
}

func (a *Analyzer) writeMetrics() error {
	switch a.config.MetricsFile {
	case "":
		return nil
	case metrics.StdoutPath:
		return metrics.WriteText(a.stdout, a.registry)
	}
	if err := metrics.WriteFile(a.config.MetricsFile, a.registry); err != nil {
		return err
	}
	a.logger.Info("metrics_written", "path", a.config.MetricsFile)
	return nil
}

// serve exposes the report metrics until interrupted.
func (a *Analyzer) serve(ctx context.Context) error {
	server := metrics.NewServer(a.config.MetricsAddr, a.registry, a.logger)
	server.Start()

	sigCh, stop := a.signals()
	defer stop()

	select {
	case sig := <-sigCh:
		a.logger.Info("received_signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context_cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("metrics_server_shutdown_error", "error", err)
	}
	return nil
}

func notifySignals() (<-chan os.Signal, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	return sigCh, func() { signal.Stop(sigCh) }
}
