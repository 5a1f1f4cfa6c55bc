package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
)

// ErrUsage is returned when the positional arguments do not match the usage.
var ErrUsage = errors.New("usage")

// ParseArgs parses command-line arguments (without the program name) and
// returns a Config. Usage is printed to stderr on -h and on bad arguments.
func ParseArgs(name string, args []string, stderr io.Writer) (*Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Custom usage message
	fs.Usage = func() {
		fmt.Fprintf(stderr, `%[1]s - UE procedure timing analysis for RLS simulator logs

Usage:
  %[1]s [flags]
  %[1]s [flags] <first-imsi> <ue-count> <log-file>

With no positional arguments the defaults are used:
  first-imsi=%[2]d ue-count=%[3]d log-file=%[4]s

Output:
`, name, DefaultFirstIMSI, DefaultUECount, DefaultLogPath)
		printFlagCategory(fs, stderr, []string{"format", "detail", "tui"})

		fmt.Fprintf(stderr, "\nMetrics:\n")
		printFlagCategory(fs, stderr, []string{"metrics-file", "metrics-addr"})

		fmt.Fprintf(stderr, "\nObservability:\n")
		printFlagCategory(fs, stderr, []string{"v", "log-format", "log-level", "version"})

		fmt.Fprintf(stderr, `
Examples:
  # Single UE, default log
  %[1]s

  # 100 UEs, per-procedure percentiles
  %[1]s -detail 901700000000001 100 urs-all.log.zst

  # JSON report plus a node_exporter textfile
  %[1]s -format json -metrics-file /var/lib/node_exporter/urs.prom 901700000000001 10 run.log

`, name)
	}

	// Output
	fs.StringVar(&cfg.Format, "format", cfg.Format, `Report format: "text", "json" or "yaml"`)
	fs.BoolVar(&cfg.Detail, "detail", cfg.Detail, "Append percentile table and per-UE end-to-end durations (text format)")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "Browse the report in an interactive terminal UI")

	// Metrics
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, `Write Prometheus text exposition to this file ("-" = stdout)`)
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve report metrics on this address until interrupted")

	// Observability
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, `Log level: "debug", "info", "warn" or "error"`)
	fs.BoolVar(&cfg.Version, "version", cfg.Version, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Version {
		return cfg, nil
	}

	if err := applyPositional(cfg, fs.Args()); err != nil {
		if errors.Is(err, ErrUsage) {
			fs.Usage()
		}
		return nil, err
	}
	return cfg, nil
}

// applyPositional fills the input triple from 0 or 3 positional arguments.
func applyPositional(cfg *Config, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 3:
	default:
		return fmt.Errorf("%w: expected 0 or 3 arguments, got %d", ErrUsage, len(args))
	}

	var errs []error

	first, err := parser.ParseIMSI(args[0])
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "first_imsi",
			Message: fmt.Sprintf("must be a decimal IMSI (got %q)", args[0]),
		})
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "ue_count",
			Message: fmt.Sprintf("must be an integer (got %q)", args[1]),
		})
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	cfg.FirstIMSI = first
	cfg.UECount = count
	cfg.LogPath = args[2]
	return nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, w io.Writer, names []string) {
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(w, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			fmt.Fprintf(w, " (default %s)", f.DefValue)
		}
		fmt.Fprintln(w)
	}
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}
	if _, err := strconv.Atoi(f.DefValue); err == nil {
		return "int"
	}
	return "string"
}
