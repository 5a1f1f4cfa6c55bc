// Package config provides configuration management for urs-log-analyzer.
package config

// Defaults used when no positional arguments are given.
const (
	DefaultFirstIMSI uint64 = 901700000000001
	DefaultUECount          = 1
	DefaultLogPath          = "urs-all.log"
)

// Output formats for the report on stdout.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all configuration options for one analysis run.
type Config struct {
	// Input (positional)
	FirstIMSI uint64 `json:"first_imsi"`
	UECount   int    `json:"ue_count"`
	LogPath   string `json:"log_path"`

	// Output
	Format string `json:"format"` // text, json, yaml
	Detail bool   `json:"detail"`
	TUI    bool   `json:"tui"`

	// Metrics
	MetricsFile string `json:"metrics_file"` // "" = disabled, "-" = stdout
	MetricsAddr string `json:"metrics_addr"` // "" = disabled

	// Observability
	Verbose   bool   `json:"verbose"`
	LogFormat string `json:"log_format"` // json, text
	LogLevel  string `json:"log_level"`

	// Diagnostic modes
	Version bool `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Input
		FirstIMSI: DefaultFirstIMSI,
		UECount:   DefaultUECount,
		LogPath:   DefaultLogPath,

		// Output
		Format: FormatText,

		// Observability
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// LastIMSI returns the highest IMSI in the configured range.
func (c *Config) LastIMSI() uint64 {
	return c.FirstIMSI + uint64(c.UECount) - 1
}
