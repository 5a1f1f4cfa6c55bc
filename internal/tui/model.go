package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/procedure"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/stats"
)

// =============================================================================
// Model
// =============================================================================

type page int

const (
	pageProcedures page = iota
	pageDevices
)

// Model represents the TUI state.
type Model struct {
	// Configuration
	report  *stats.Report
	version string

	// Current state
	page       page
	selected   procedure.Procedure
	procedures table.Model
	devices    table.Model

	// Display options
	width  int
	height int

	// Quit flag
	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	Report  *stats.Report
	Version string
}

// New creates a new TUI model.
func New(cfg Config) Model {
	m := Model{
		report:  cfg.Report,
		version: cfg.Version,
		width:   80,
		height:  24,
	}

	m.procedures = table.New(
		table.WithColumns(procedureColumns(m.width)),
		table.WithFocused(true),
		table.WithHeight(procedure.Count),
		table.WithStyles(tableStyles()),
	)
	m.procedures.SetRows(procedureRows(cfg.Report))

	m.devices = table.New(
		table.WithColumns(deviceColumns()),
		table.WithHeight(15),
		table.WithStyles(tableStyles()),
	)
	return m
}

// Run shows the report until the user quits.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model. The report is static, so there is nothing to poll.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc", "backspace":
			if m.page == pageDevices {
				m.showProcedures()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.page == pageProcedures {
				m.showDevices(procedure.Procedure(m.procedures.Cursor()))
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	if m.page == pageDevices {
		m.devices, cmd = m.devices.Update(msg)
	} else {
		m.procedures, cmd = m.procedures.Update(msg)
	}
	return m, cmd
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.page == pageDevices {
		return m.renderDeviceView()
	}
	return m.renderProcedureView()
}

// =============================================================================
// Navigation
// =============================================================================

func (m *Model) showDevices(p procedure.Procedure) {
	if !p.Valid() {
		return
	}
	m.selected = p
	m.page = pageDevices
	m.devices.SetRows(deviceRows(m.report, p))
	m.devices.GotoTop()
	m.procedures.Blur()
	m.devices.Focus()
}

func (m *Model) showProcedures() {
	m.page = pageProcedures
	m.devices.Blur()
	m.procedures.Focus()
}

func (m *Model) resize() {
	m.procedures.SetColumns(procedureColumns(m.width))
	m.procedures.SetWidth(max(m.width-4, 40))
	m.devices.SetWidth(max(m.width-4, 40))
	// header, summary box and footer take roughly ten lines
	m.devices.SetHeight(max(m.height-12, 5))
	m.procedures.SetHeight(min(procedure.Count, max(m.height-12, 5)))
}

// =============================================================================
// Accessors
// =============================================================================

// Selected returns the procedure shown on the device page.
func (m Model) Selected() procedure.Procedure {
	return m.selected
}

// OnDevicePage reports whether the per-device page is shown.
func (m Model) OnDevicePage() bool {
	return m.page == pageDevices
}

// =============================================================================
// Rows
// =============================================================================

func procedureColumns(width int) []table.Column {
	name := max(width-4-8-4*10-12, 30)
	return []table.Column{
		{Title: "Procedure", Width: name},
		{Title: "N", Width: 6},
		{Title: "Avg ms", Width: 10},
		{Title: "P50", Width: 10},
		{Title: "P95", Width: 10},
		{Title: "P99", Width: 10},
		{Title: "Status", Width: 12},
	}
}

func deviceColumns() []table.Column {
	return []table.Column{
		{Title: "IMSI", Width: 17},
		{Title: "ueId", Width: 8},
		{Title: "Start", Width: 16},
		{Title: "End", Width: 16},
		{Title: "Duration ms", Width: 12},
	}
}

func procedureRows(r *stats.Report) []table.Row {
	if r == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(r.Procedures))
	for _, ps := range r.Procedures {
		d := ps.Distribution
		has := d.Count > 0
		rows = append(rows, table.Row{
			ps.Procedure.String(),
			itoa(ps.Count),
			stats.FormatMillis(ps.Average),
			formatMillis(d.P50, has),
			formatMillis(d.P95, has),
			formatMillis(d.P99, has),
			ConsistencyLabel(ps, r.DeviceCount),
		})
	}
	return rows
}

func deviceRows(r *stats.Report, p procedure.Procedure) []table.Row {
	if r == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(r.Devices))
	for _, dev := range r.Devices {
		dp := dev.Procedures[p]
		rows = append(rows, table.Row{
			utoa(dev.IMSI),
			utoa(dev.InternalID),
			timestamp(dp.Start.IsZero(), dp.Start.String()),
			timestamp(dp.End.IsZero(), dp.End.String()),
			formatMillis(dp.Duration, dp.Complete),
		})
	}
	return rows
}

func timestamp(zero bool, s string) string {
	if zero {
		return "-"
	}
	return s
}
