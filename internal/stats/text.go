package stats

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextOptions controls the plain-text report.
type TextOptions struct {
	// Detail appends the percentile table and per-device end-to-end durations.
	Detail bool
}

const (
	ruleHeavy = "═══════════════════════════════════════════════════════════════════════════════════════════════════"
	ruleLight = "───────────────────────────────────────────────────────────────────────────────────────────────────"
)

// WriteText writes the report in its line-oriented form:
//
//	Input: <first-imsi> <ue-count> <log-file>
//	UE#: <ue-count>
//	ue_duration: <ms>
//	<procedure> <average ms>    (catalog order, consistency warnings inline)
func WriteText(w io.Writer, r *Report, opts TextOptions) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Input: %d %d %s\n", r.FirstIMSI, r.DeviceCount, r.LogPath)
	fmt.Fprintf(bw, "UE#: %d\n", r.DeviceCount)
	fmt.Fprintf(bw, "ue_duration: %s\n", r.OverallString())

	for _, ps := range r.Procedures {
		if !ps.Consistent {
			fmt.Fprintf(bw, "\nERROR: Data Count is not the same as ue_num: %s %d \n\n", ps.Procedure, ps.Count)
		}
		fmt.Fprintf(bw, "%s %s\n", ps.Procedure, FormatMillis(ps.Average))
	}

	if opts.Detail {
		writeDetail(bw, r)
	}
	return bw.Flush()
}

// OverallString formats the overall duration, or "" when it was not observed.
func (r *Report) OverallString() string {
	if !r.OverallObserved {
		return ""
	}
	return FormatMillis(r.Overall)
}

// writeDetail renders the percentile table in the exit-summary style.
func writeDetail(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n%s\n", ruleHeavy)
	fmt.Fprintf(w, "%s\n", center("Procedure Timing Detail (ms)", len([]rune(ruleHeavy))))
	fmt.Fprintf(w, "%s\n\n", ruleHeavy)

	fmt.Fprintf(w, "  %-60s %5s %10s %10s %10s %10s\n", "Procedure", "N", "Avg", "P50", "P95", "P99")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 110))
	for _, ps := range r.Procedures {
		flag := ""
		if !ps.Consistent {
			flag = " !"
		}
		d := ps.Distribution
		fmt.Fprintf(w, "  %-60s %5d %10s %10s %10s %10s%s\n",
			ps.Procedure,
			ps.Count,
			FormatMillis(ps.Average),
			FormatMillis(d.P50),
			FormatMillis(d.P95),
			FormatMillis(d.P99),
			flag,
		)
	}

	fmt.Fprintf(w, "\n%s\n", ruleLight)
	fmt.Fprintf(w, "%s\n", center("End-to-End per UE (ms)", len([]rune(ruleLight))))
	fmt.Fprintf(w, "%s\n\n", ruleLight)

	for _, dev := range r.Devices {
		value := "-"
		if dev.EndToEndObserved {
			value = FormatMillis(dev.EndToEnd)
		}
		fmt.Fprintf(w, "  %-20d ueId %-8d %12s\n", dev.IMSI, dev.InternalID, value)
	}
	if r.EndToEnd.Count > 0 {
		e := r.EndToEnd
		fmt.Fprintf(w, "\n  P50 %s  P95 %s  P99 %s  (min %s, max %s, n=%d)\n",
			FormatMillis(e.P50), FormatMillis(e.P95), FormatMillis(e.P99),
			FormatMillis(e.Min), FormatMillis(e.Max), e.Count)
	}

	if warnings := r.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(w, "\n  ! %d procedure(s) with data count != %d\n", len(warnings), r.DeviceCount)
	}
	fmt.Fprintf(w, "%s\n", ruleHeavy)
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
