package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/procedure"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/stats"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/ue"
)

// =============================================================================
// Test Helpers
// =============================================================================

const firstIMSI = 901700000000001

func testReport(t *testing.T) *stats.Report {
	t.Helper()
	store, err := ue.NewStore(firstIMSI, 2)
	if err != nil {
		t.Fatal(err)
	}
	start, _ := parser.ParseTimestamp("1000.000")
	end, _ := parser.ParseTimestamp("1005.500")
	rec := store.Get(firstIMSI)
	rec.InternalID = 7
	rec.SetStart(procedure.SendInitialRegistrationRequest, start)
	rec.SetEnd(procedure.SendInitialRegistrationRequest, end)

	return stats.Build(store, stats.Options{
		LogPath:         "urs-all.log",
		Overall:         5500 * time.Microsecond,
		OverallObserved: true,
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

// =============================================================================
// Tests: New
// =============================================================================

func TestNew(t *testing.T) {
	r := testReport(t)
	model := New(Config{Report: r, Version: "v1"})

	if model.width != 80 || model.height != 24 {
		t.Errorf("size = %dx%d, want 80x24", model.width, model.height)
	}
	if model.OnDevicePage() {
		t.Error("should start on the procedure page")
	}
	if got := len(model.procedures.Rows()); got != procedure.Count {
		t.Errorf("procedure rows = %d, want %d", got, procedure.Count)
	}
	if model.Init() != nil {
		t.Error("Init() should not schedule work for a static report")
	}
}

func TestNew_NilReport(t *testing.T) {
	model := New(Config{})
	if len(model.procedures.Rows()) != 0 {
		t.Error("nil report should produce no rows")
	}
	if !strings.Contains(model.View(), "no report") {
		t.Error("View() should say there is no report")
	}
}

// =============================================================================
// Tests: Update - Key Messages
// =============================================================================

func TestModel_Update_QuitKeys(t *testing.T) {
	tests := []struct {
		key      string
		wantQuit bool
	}{
		{"q", true},
		{"ctrl+c", true},
		{"esc", true},
		{"down", false},
		{"x", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, cmd := update(t, New(Config{Report: testReport(t)}), key(tt.key))

			if m.quitting != tt.wantQuit {
				t.Errorf("quitting = %v, want %v", m.quitting, tt.wantQuit)
			}
			if tt.wantQuit && cmd == nil {
				t.Error("expected tea.Quit cmd")
			}
			if tt.wantQuit && m.View() != "" {
				t.Error("View() should be empty after quitting")
			}
		})
	}
}

func TestModel_Update_DrillDown(t *testing.T) {
	m := New(Config{Report: testReport(t)})

	m, _ = update(t, m, key("enter"))
	if !m.OnDevicePage() {
		t.Fatal("enter should open the device page")
	}
	if m.Selected() != procedure.SendInitialRegistrationRequest {
		t.Errorf("Selected() = %s", m.Selected())
	}

	rows := m.devices.Rows()
	if len(rows) != 2 {
		t.Fatalf("device rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "901700000000001" || rows[0][1] != "7" || rows[0][4] != "5.500" {
		t.Errorf("first device row = %v", rows[0])
	}
	if rows[1][2] != "-" || rows[1][4] != "-" {
		t.Errorf("device without timings should show '-': %v", rows[1])
	}

	// esc goes back instead of quitting
	m, cmd := update(t, m, key("esc"))
	if m.OnDevicePage() || m.quitting || cmd != nil {
		t.Errorf("esc on device page: page=%v quitting=%v", m.OnDevicePage(), m.quitting)
	}
}

func TestModel_Update_SelectSecondProcedure(t *testing.T) {
	m := New(Config{Report: testReport(t)})

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("enter"))

	if m.Selected() != procedure.Procedure(1) {
		t.Errorf("Selected() = %s, want %s", m.Selected(), procedure.Procedure(1))
	}
}

// =============================================================================
// Tests: Update - Window Size
// =============================================================================

func TestModel_Update_WindowSize(t *testing.T) {
	m, _ := update(t, New(Config{Report: testReport(t)}), tea.WindowSizeMsg{Width: 160, Height: 50})

	if m.width != 160 || m.height != 50 {
		t.Errorf("size = %dx%d, want 160x50", m.width, m.height)
	}
	if got := m.procedures.Columns()[0].Width; got < 60 {
		t.Errorf("procedure column width = %d, want >= 60", got)
	}
}

// =============================================================================
// Tests: View
// =============================================================================

func TestModel_View(t *testing.T) {
	m := New(Config{Report: testReport(t), Version: "v1.2.3"})
	view := m.View()

	for _, want := range []string{
		"urs-log-analyzer v1.2.3",
		"urs-all.log",
		"sendInitialRegistrationRequest",
		"5.500",
		"! 1/2",
		"no data",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_View_DevicePage(t *testing.T) {
	m, _ := update(t, New(Config{Report: testReport(t)}), key("enter"))
	view := m.View()

	for _, want := range []string{"901700000000001", "Average", "esc back"} {
		if !strings.Contains(view, want) {
			t.Errorf("device View() missing %q", want)
		}
	}
}

// =============================================================================
// Tests: Styles
// =============================================================================

func TestConsistencyLabel(t *testing.T) {
	tests := []struct {
		name string
		ps   stats.ProcedureStats
		want string
	}{
		{"consistent", stats.ProcedureStats{Count: 3, Consistent: true}, "ok"},
		{"no data", stats.ProcedureStats{}, "no data"},
		{"partial", stats.ProcedureStats{Count: 2}, "! 2/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsistencyLabel(tt.ps, 3); got != tt.want {
				t.Errorf("ConsistencyLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMillis(t *testing.T) {
	if got := formatMillis(0, false); got != "-" {
		t.Errorf("formatMillis(absent) = %q", got)
	}
	if got := formatMillis(1500*time.Microsecond, true); got != "1.500" {
		t.Errorf("formatMillis(1.5ms) = %q", got)
	}
}
