// Package stats builds the post-ingestion timing report.
//
// The report is computed once, after the whole log has been ingested:
//   - per device, per procedure: duration = END - START when both are set
//   - per procedure: sum, contributing count, average, percentiles
//   - consistency: a procedure whose contributing count differs from the
//     configured device count is flagged (never fatal)
package stats

import (
	"strconv"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/procedure"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/ue"
)

// Options carries the run context echoed in the report.
type Options struct {
	// LogPath is the analyzed log file.
	LogPath string

	// DeviceCount is the configured number of devices. Defaults to the store size.
	DeviceCount int

	// Overall is the process-wide UE duration; OverallObserved is false when
	// the start or the end of the window never appeared in the log.
	Overall         time.Duration
	OverallObserved bool
}

// Distribution summarizes a set of durations.
type Distribution struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// ProcedureStats holds the durations collected for one procedure.
type ProcedureStats struct {
	Procedure procedure.Procedure

	// Durations in device order (ascending IMSI).
	Durations []time.Duration

	Sum time.Duration

	// Count excludes durations that are exactly zero; Sum does not.
	Count int

	// Average is Sum/Count, or 0 when Count is 0.
	Average time.Duration

	// Consistent is false when Count differs from the device count or is 0.
	Consistent bool

	Distribution Distribution
}

// DeviceProcedure is one procedure timing of one device.
type DeviceProcedure struct {
	Procedure procedure.Procedure
	Start     parser.Timestamp
	End       parser.Timestamp
	Duration  time.Duration
	Complete  bool
}

// DeviceReport is the per-device view of the report.
type DeviceReport struct {
	IMSI       uint64
	InternalID uint64
	UEToken    string
	GNBToken   string
	Procedures []DeviceProcedure

	EndToEnd         time.Duration
	EndToEndObserved bool
}

// Report is the complete analysis result. It is built fresh per run.
type Report struct {
	FirstIMSI   uint64
	DeviceCount int
	LogPath     string

	Overall         time.Duration
	OverallObserved bool

	// Procedures in catalog order.
	Procedures []ProcedureStats

	// Devices in ascending IMSI order.
	Devices []DeviceReport

	// EndToEnd summarizes per-device setup-to-session durations.
	EndToEnd Distribution
}

// Build computes the report from a fully ingested store. The store is only read.
func Build(store *ue.Store, opts Options) *Report {
	count := opts.DeviceCount
	if count == 0 {
		count = store.Len()
	}

	r := &Report{
		FirstIMSI:       store.First(),
		DeviceCount:     count,
		LogPath:         opts.LogPath,
		Overall:         opts.Overall,
		OverallObserved: opts.OverallObserved,
		Procedures:      make([]ProcedureStats, procedure.Count),
		Devices:         make([]DeviceReport, 0, store.Len()),
	}
	for _, p := range procedure.All() {
		r.Procedures[p].Procedure = p
	}

	var endToEnd []time.Duration
	store.Each(func(rec *ue.Record) {
		dev := DeviceReport{
			IMSI:       rec.IMSI,
			InternalID: rec.InternalID,
			UEToken:    rec.UEToken,
			GNBToken:   rec.GNBToken,
			Procedures: make([]DeviceProcedure, 0, procedure.Count),
		}
		for _, p := range procedure.All() {
			timing := rec.Timing(p)
			d, ok := timing.Duration()
			dev.Procedures = append(dev.Procedures, DeviceProcedure{
				Procedure: p,
				Start:     timing.Start,
				End:       timing.End,
				Duration:  d,
				Complete:  ok,
			})
			if ok {
				r.Procedures[p].Durations = append(r.Procedures[p].Durations, d)
			}
		}
		if d, ok := rec.EndToEnd(); ok {
			dev.EndToEnd, dev.EndToEndObserved = d, true
			endToEnd = append(endToEnd, d)
		}
		r.Devices = append(r.Devices, dev)
	})

	for i := range r.Procedures {
		r.Procedures[i].summarize(count)
	}
	r.EndToEnd = distribution(endToEnd)
	return r
}

func (ps *ProcedureStats) summarize(deviceCount int) {
	ps.Sum = 0
	ps.Count = len(ps.Durations)
	for _, d := range ps.Durations {
		if d == 0 {
			ps.Count--
		}
		ps.Sum += d
	}
	if ps.Count > 0 {
		ps.Average = ps.Sum / time.Duration(ps.Count)
	}
	ps.Consistent = ps.Count == deviceCount && ps.Count != 0
	ps.Distribution = distribution(ps.Durations)
}

// distribution computes min/max exactly and percentiles from a t-digest.
func distribution(values []time.Duration) Distribution {
	dist := Distribution{Count: len(values)}
	if len(values) == 0 {
		return dist
	}

	td := tdigest.NewWithCompression(100)
	dist.Min, dist.Max = values[0], values[0]
	for _, v := range values {
		td.Add(float64(v.Nanoseconds()), 1)
		dist.Min = min(dist.Min, v)
		dist.Max = max(dist.Max, v)
	}
	dist.P50 = time.Duration(td.Quantile(0.50))
	dist.P95 = time.Duration(td.Quantile(0.95))
	dist.P99 = time.Duration(td.Quantile(0.99))
	return dist
}

// Warnings returns the procedures whose data count does not match the
// configured device count, in catalog order.
func (r *Report) Warnings() []ProcedureStats {
	var out []ProcedureStats
	for _, ps := range r.Procedures {
		if !ps.Consistent {
			out = append(out, ps)
		}
	}
	return out
}

// Procedure returns the statistics of p.
func (r *Report) Procedure(p procedure.Procedure) ProcedureStats {
	return r.Procedures[p]
}

// FormatMillis renders a duration as milliseconds with 3 decimals ("5.500").
func FormatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64)
}
