// Package metrics exposes a finished timing report as Prometheus gauges.
//
// The analyzer is a batch tool, so every metric is a gauge set once after
// the report is built. The registry is injected so tests and the file
// exporter never touch the global default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/correlator"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/stats"
)

// Quantiles exported for every distribution.
var quantiles = []float64{0.5, 0.95, 0.99}

// Collector owns the report gauges.
type Collector struct {
	info *prometheus.GaugeVec

	ueCount            prometheus.Gauge
	ueDurationSeconds  prometheus.Gauge
	ueDurationObserved prometheus.Gauge

	procedureAvgSeconds      *prometheus.GaugeVec
	procedureSamples         *prometheus.GaugeVec
	procedureConsistent      *prometheus.GaugeVec
	procedureQuantileSeconds *prometheus.GaugeVec

	endToEndQuantileSeconds *prometheus.GaugeVec
	endToEndDevices         prometheus.Gauge

	logLines *prometheus.GaugeVec
}

// NewCollector creates the report gauges and registers them on registry.
func NewCollector(registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_analyzer_info",
				Help: "Information about the analyzed log (value always 1)",
			},
			[]string{"version", "log_file", "first_imsi"},
		),
		ueCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "urs_ue_count",
				Help: "Configured number of simulated devices",
			},
		),
		ueDurationSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "urs_ue_duration_seconds",
				Help: "Time from the latest RLS setup completion to the session establishment end that followed it",
			},
		),
		ueDurationObserved: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "urs_ue_duration_observed",
				Help: "1 if both ends of the overall window appeared in the log",
			},
		),
		procedureAvgSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_procedure_avg_seconds",
				Help: "Average procedure duration over contributing devices",
			},
			[]string{"procedure"},
		),
		procedureSamples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_procedure_samples",
				Help: "Number of devices contributing a non-zero duration",
			},
			[]string{"procedure"},
		),
		procedureConsistent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_procedure_consistent",
				Help: "1 if every configured device contributed a duration",
			},
			[]string{"procedure"},
		),
		procedureQuantileSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_procedure_duration_quantile_seconds",
				Help: "Procedure duration quantiles (t-digest estimate)",
			},
			[]string{"procedure", "quantile"},
		),
		endToEndQuantileSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_end_to_end_quantile_seconds",
				Help: "Per-device setup-to-session duration quantiles",
			},
			[]string{"quantile"},
		),
		endToEndDevices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "urs_end_to_end_devices",
				Help: "Devices with both setup completion and session establishment",
			},
		),
		logLines: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "urs_log_lines",
				Help: "Log lines seen during ingestion, by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		c.info,
		c.ueCount,
		c.ueDurationSeconds,
		c.ueDurationObserved,
		c.procedureAvgSeconds,
		c.procedureSamples,
		c.procedureConsistent,
		c.procedureQuantileSeconds,
		c.endToEndQuantileSeconds,
		c.endToEndDevices,
		c.logLines,
	)
	return c
}

// SetInfo records the run identity.
func (c *Collector) SetInfo(version string, r *stats.Report) {
	c.info.WithLabelValues(version, r.LogPath, strconv.FormatUint(r.FirstIMSI, 10)).Set(1)
}

// RecordReport sets every report gauge from r.
func (c *Collector) RecordReport(r *stats.Report) {
	c.ueCount.Set(float64(r.DeviceCount))
	c.ueDurationSeconds.Set(r.Overall.Seconds())
	c.ueDurationObserved.Set(boolGauge(r.OverallObserved))

	for _, ps := range r.Procedures {
		name := ps.Procedure.String()
		c.procedureAvgSeconds.WithLabelValues(name).Set(ps.Average.Seconds())
		c.procedureSamples.WithLabelValues(name).Set(float64(ps.Count))
		c.procedureConsistent.WithLabelValues(name).Set(boolGauge(ps.Consistent))
		for q, v := range quantileValues(ps.Distribution) {
			c.procedureQuantileSeconds.WithLabelValues(name, q).Set(v.Seconds())
		}
	}

	c.endToEndDevices.Set(float64(r.EndToEnd.Count))
	for q, v := range quantileValues(r.EndToEnd) {
		c.endToEndQuantileSeconds.WithLabelValues(q).Set(v.Seconds())
	}
}

// RecordIngest sets the log line gauges from the ingestion counters.
func (c *Collector) RecordIngest(n correlator.Counters) {
	c.logLines.WithLabelValues("total").Set(float64(n.Lines))
	c.logLines.WithLabelValues("relevant").Set(float64(n.Relevant))
	c.logLines.WithLabelValues("setup_complete").Set(float64(n.SetupCompletions))
	c.logLines.WithLabelValues("assignment").Set(float64(n.Assignments))
	c.logLines.WithLabelValues("procedure").Set(float64(n.ProcedureEvents))
}

func quantileValues(d stats.Distribution) map[string]time.Duration {
	values := []time.Duration{d.P50, d.P95, d.P99}
	out := make(map[string]time.Duration, len(quantiles))
	for i, q := range quantiles {
		out[strconv.FormatFloat(q, 'f', -1, 64)] = values[i]
	}
	return out
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
