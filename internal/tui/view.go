package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/stats"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// renderProcedureView renders the per-procedure table.
func (m Model) renderProcedureView() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderSummary())
	sections = append(sections, sectionHeaderStyle.Render("Procedures"))
	sections = append(sections, m.procedures.View())
	sections = append(sections, m.renderFooter("↑/↓ select • enter devices • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDeviceView renders per-device timings of the selected procedure.
func (m Model) renderDeviceView() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderProcedureSummary())
	sections = append(sections, sectionHeaderStyle.Render(m.selected.String()))
	sections = append(sections, m.devices.View())
	sections = append(sections, m.renderFooter("↑/↓ scroll • esc back • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	header := " urs-log-analyzer"
	if m.version != "" {
		header += " " + m.version
	}
	if m.report != nil {
		header += fmt.Sprintf(" │ %s │ UE#: %d ", m.report.LogPath, m.report.DeviceCount)
	}
	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Summary
// =============================================================================

func (m Model) renderSummary() string {
	if m.report == nil {
		return boxStyle.Render(mutedStyle.Render("no report"))
	}
	r := m.report

	warnings := len(r.Warnings())
	warnText := ConsistencyStyle(warnings, len(r.Procedures)).
		Render(fmt.Sprintf("%d of %d procedures", warnings, len(r.Procedures)))

	e2e := "-"
	if r.EndToEnd.Count > 0 {
		e2e = fmt.Sprintf("p50 %s  p95 %s  p99 %s ms",
			formatMillis(r.EndToEnd.P50, true),
			formatMillis(r.EndToEnd.P95, true),
			formatMillis(r.EndToEnd.P99, true))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Run"),
		RenderKeyValue("First IMSI", utoa(r.FirstIMSI)),
		RenderKeyValue("ue_duration", formatMillis(r.Overall, r.OverallObserved)+" ms"),
		RenderKeyValue("End-to-end", e2e),
		lipgloss.JoinHorizontal(lipgloss.Left, labelStyle.Render("Warnings:"), warnText),
	)
	return boxStyle.Width(max(m.width-2, 40)).Render(content)
}

func (m Model) renderProcedureSummary() string {
	if m.report == nil {
		return ""
	}
	ps := m.report.Procedure(m.selected)

	status := statusOK.Render(ConsistencyLabel(ps, m.report.DeviceCount))
	if !ps.Consistent {
		status = statusWarning.Render(ConsistencyLabel(ps, m.report.DeviceCount))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		RenderKeyValue("Average", stats.FormatMillis(ps.Average)+" ms"),
		RenderKeyValue("Samples", itoa(ps.Count)),
		lipgloss.JoinHorizontal(lipgloss.Left, labelStyle.Render("Status:"), status),
	)
	return boxStyle.Width(max(m.width-2, 40)).Render(content)
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter(keys string) string {
	return footerStyle.Render(dimStyle.Render(keys))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func utoa(n uint64) string {
	return strconv.FormatUint(n, 10)
}
