// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int64  // Required value (if applicable)
	Actual   int64  // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
	Err      error  // Underlying error of a failed check
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// Options describes the run being checked.
type Options struct {
	LogPath     string
	MetricsFile string
	MetricsAddr string

	// MeminfoPath defaults to /proc/meminfo.
	MeminfoPath string
}

// memoryFactor estimates resident bytes per byte of uncompressed log: the
// decoded lines plus the slice and per-device bookkeeping.
const memoryFactor = 3

// compressedFactor is the assumed expansion of a compressed log.
const compressedFactor = 10

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}

	if c.Required > 0 {
		return fmt.Sprintf("  %s %s: %d available (need %d)", status, c.Name, c.Actual, c.Required)
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// Err returns the error of the first failed check, or nil.
func (r *Result) Err() error {
	for _, c := range r.Checks {
		if c.Passed {
			continue
		}
		if c.Err != nil {
			return fmt.Errorf("preflight %s: %w", c.Name, c.Err)
		}
		return fmt.Errorf("preflight %s: %s", c.Name, c.Message)
	}
	return nil
}

// RunAll executes all preflight checks.
func RunAll(opts Options) *Result {
	if opts.MeminfoPath == "" {
		opts.MeminfoPath = "/proc/meminfo"
	}

	result := &Result{
		Checks: make([]Check, 0, 4),
		Passed: true,
	}
	add := func(c Check) {
		result.Checks = append(result.Checks, c)
		if !c.Passed {
			result.Passed = false
		}
	}

	logCheck, size := checkLogFile(opts.LogPath)
	add(logCheck)
	if logCheck.Passed {
		// Memory check (warning only)
		add(checkMemory(opts.MeminfoPath, opts.LogPath, size))
	}

	if opts.MetricsFile != "" && opts.MetricsFile != "-" {
		add(checkMetricsDir(opts.MetricsFile))
	}
	if opts.MetricsAddr != "" {
		add(checkListenAddr(opts.MetricsAddr))
	}

	return result
}

// checkLogFile verifies the log exists, is a regular file and can be opened.
func checkLogFile(path string) (Check, int64) {
	info, err := os.Stat(path)
	if err != nil {
		return Check{
			Name:    "log_file",
			Passed:  false,
			Message: fmt.Sprintf("cannot stat %s", path),
			Err:     err,
		}, 0
	}
	if !info.Mode().IsRegular() {
		return Check{
			Name:    "log_file",
			Passed:  false,
			Message: fmt.Sprintf("%s is not a regular file", path),
			Err:     fmt.Errorf("%s: not a regular file", path),
		}, 0
	}

	f, err := os.Open(path)
	if err != nil {
		return Check{
			Name:    "log_file",
			Passed:  false,
			Message: fmt.Sprintf("cannot open %s", path),
			Err:     err,
		}, 0
	}
	f.Close()

	c := Check{
		Name:    "log_file",
		Passed:  true,
		Message: fmt.Sprintf("%s (%d bytes)", path, info.Size()),
	}
	if info.Size() == 0 {
		c.Warning = true
		c.Message = fmt.Sprintf("%s is empty", path)
	}
	return c, info.Size()
}

// checkMemory compares the estimated footprint of the loaded log with
// MemAvailable.
func checkMemory(meminfoPath, logPath string, size int64) Check {
	data, err := os.ReadFile(meminfoPath)
	if err != nil {
		// Non-Linux or restricted access, assume OK
		return Check{
			Name:    "memory",
			Passed:  true,
			Warning: true,
			Message: "unable to check (non-Linux or restricted)",
		}
	}

	var available int64
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "MemAvailable:") {
			var kb int64
			fmt.Sscanf(strings.TrimPrefix(line, "MemAvailable:"), "%d", &kb)
			available = kb * 1024
			break
		}
	}
	if available == 0 {
		return Check{
			Name:    "memory",
			Passed:  true,
			Warning: true,
			Message: "unable to determine (assuming OK)",
		}
	}

	required := size * memoryFactor
	if isCompressedName(logPath) {
		required *= compressedFactor
	}

	return Check{
		Name:     "memory",
		Required: required,
		Actual:   available,
		Passed:   true, // Don't fail on this
		Warning:  available < required,
		Message:  fmt.Sprintf("%d bytes available (estimate %d)", available, required),
	}
}

func isCompressedName(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".zst", ".zstd":
		return true
	}
	return false
}

// checkMetricsDir verifies the exposition file can be created next to its
// final location.
func checkMetricsDir(path string) Check {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return Check{
			Name:    "metrics_dir",
			Passed:  false,
			Message: fmt.Sprintf("cannot stat %s", dir),
			Err:     err,
		}
	}
	if !info.IsDir() {
		return Check{
			Name:    "metrics_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s is not a directory", dir),
			Err:     fmt.Errorf("%s: not a directory", dir),
		}
	}
	return Check{
		Name:    "metrics_dir",
		Passed:  true,
		Message: dir,
	}
}

// checkListenAddr verifies the metrics address can be bound.
func checkListenAddr(addr string) Check {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Check{
			Name:    "metrics_addr",
			Passed:  false,
			Message: fmt.Sprintf("cannot listen on %s", addr),
			Err:     err,
		}
	}
	ln.Close()
	return Check{
		Name:    "metrics_addr",
		Passed:  true,
		Message: addr,
	}
}

// LogResults logs every check: failures at error, warnings at warn and the
// rest at debug.
func LogResults(logger *slog.Logger, result *Result) {
	for _, c := range result.Checks {
		attrs := []any{"check", c.Name, "message", c.Message}
		switch {
		case !c.Passed:
			logger.Error("preflight_failed", append(attrs, "fix", suggestFix(c.Name))...)
		case c.Warning:
			logger.Warn("preflight_warning", attrs...)
		default:
			logger.Debug("preflight_passed", attrs...)
		}
	}
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "log_file":
		return "pass <first-imsi> <ue-count> <log-file> with a readable log"
	case "metrics_dir":
		return "create the directory or choose another -metrics-file"
	case "metrics_addr":
		return "choose a free -metrics-addr"
	default:
		return "see documentation"
	}
}

