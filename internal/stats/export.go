package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the machine-readable form of a Report. Durations are
// milliseconds rounded to 3 decimals.
type Document struct {
	Input      DocInput        `json:"input" yaml:"input"`
	UEDuration *float64        `json:"ue_duration_ms" yaml:"ue_duration_ms"`
	Procedures []DocProcedure  `json:"procedures" yaml:"procedures"`
	EndToEnd   DocDistribution `json:"end_to_end" yaml:"end_to_end"`
	Devices    []DocDevice     `json:"devices" yaml:"devices"`
}

// DocInput echoes the run parameters.
type DocInput struct {
	FirstIMSI uint64 `json:"first_imsi" yaml:"first_imsi"`
	UECount   int    `json:"ue_count" yaml:"ue_count"`
	LogFile   string `json:"log_file" yaml:"log_file"`
}

// DocProcedure is one row of per-procedure statistics.
type DocProcedure struct {
	Name         string          `json:"name" yaml:"name"`
	AverageMs    float64         `json:"avg_ms" yaml:"avg_ms"`
	Count        int             `json:"count" yaml:"count"`
	Consistent   bool            `json:"consistent" yaml:"consistent"`
	DurationsMs  []float64       `json:"durations_ms" yaml:"durations_ms"`
	Distribution DocDistribution `json:"distribution" yaml:"distribution"`
}

// DocDistribution is a Distribution in milliseconds.
type DocDistribution struct {
	Count int     `json:"count" yaml:"count"`
	MinMs float64 `json:"min_ms" yaml:"min_ms"`
	MaxMs float64 `json:"max_ms" yaml:"max_ms"`
	P50Ms float64 `json:"p50_ms" yaml:"p50_ms"`
	P95Ms float64 `json:"p95_ms" yaml:"p95_ms"`
	P99Ms float64 `json:"p99_ms" yaml:"p99_ms"`
}

// DocDevice is the per-device record.
type DocDevice struct {
	IMSI       uint64               `json:"imsi" yaml:"imsi"`
	UEID       uint64               `json:"ue_id" yaml:"ue_id"`
	UEToken    string               `json:"ue_token,omitempty" yaml:"ue_token,omitempty"`
	GNBToken   string               `json:"gnb_token,omitempty" yaml:"gnb_token,omitempty"`
	EndToEndMs *float64             `json:"end_to_end_ms" yaml:"end_to_end_ms"`
	Procedures []DocDeviceProcedure `json:"procedures" yaml:"procedures"`
}

// DocDeviceProcedure is one timed procedure of a device. Only procedures
// with at least one timestamp are listed.
type DocDeviceProcedure struct {
	Name       string   `json:"name" yaml:"name"`
	StartMs    float64  `json:"start_ms,omitempty" yaml:"start_ms,omitempty"`
	EndMs      float64  `json:"end_ms,omitempty" yaml:"end_ms,omitempty"`
	DurationMs *float64 `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// NewDocument converts a report into its exported form.
func NewDocument(r *Report) Document {
	doc := Document{
		Input: DocInput{
			FirstIMSI: r.FirstIMSI,
			UECount:   r.DeviceCount,
			LogFile:   r.LogPath,
		},
		Procedures: make([]DocProcedure, 0, len(r.Procedures)),
		EndToEnd:   docDistribution(r.EndToEnd),
		Devices:    make([]DocDevice, 0, len(r.Devices)),
	}
	if r.OverallObserved {
		doc.UEDuration = msPtr(r.Overall)
	}

	for _, ps := range r.Procedures {
		row := DocProcedure{
			Name:         ps.Procedure.String(),
			AverageMs:    ms(ps.Average),
			Count:        ps.Count,
			Consistent:   ps.Consistent,
			DurationsMs:  make([]float64, 0, len(ps.Durations)),
			Distribution: docDistribution(ps.Distribution),
		}
		for _, d := range ps.Durations {
			row.DurationsMs = append(row.DurationsMs, ms(d))
		}
		doc.Procedures = append(doc.Procedures, row)
	}

	for _, dev := range r.Devices {
		out := DocDevice{
			IMSI:       dev.IMSI,
			UEID:       dev.InternalID,
			UEToken:    dev.UEToken,
			GNBToken:   dev.GNBToken,
			Procedures: []DocDeviceProcedure{},
		}
		if dev.EndToEndObserved {
			out.EndToEndMs = msPtr(dev.EndToEnd)
		}
		for _, dp := range dev.Procedures {
			if dp.Start.IsZero() && dp.End.IsZero() {
				continue
			}
			row := DocDeviceProcedure{
				Name:    dp.Procedure.String(),
				StartMs: dp.Start.Millis(),
				EndMs:   dp.End.Millis(),
			}
			if dp.Complete {
				row.DurationMs = msPtr(dp.Duration)
			}
			out.Procedures = append(out.Procedures, row)
		}
		doc.Devices = append(doc.Devices, out)
	}
	return doc
}

// Export writes the report as JSON or YAML.
func Export(w io.Writer, r *Report, format string) error {
	doc := NewDocument(r)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func docDistribution(d Distribution) DocDistribution {
	return DocDistribution{
		Count: d.Count,
		MinMs: ms(d.Min),
		MaxMs: ms(d.Max),
		P50Ms: ms(d.P50),
		P95Ms: ms(d.P95),
		P99Ms: ms(d.P99),
	}
}

// ms converts to milliseconds rounded to 3 decimals.
func ms(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Microsecond)) / 1000
}

func msPtr(d time.Duration) *float64 {
	v := ms(d)
	return &v
}
