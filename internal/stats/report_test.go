package stats

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/procedure"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/ue"
)

const firstIMSI = 901700000000001

// =============================================================================
// Test Helpers
// =============================================================================

func mustTS(t *testing.T, s string) parser.Timestamp {
	t.Helper()
	v, err := parser.ParseTimestamp(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func newStore(t *testing.T, count int) *ue.Store {
	t.Helper()
	s, err := ue.NewStore(firstIMSI, count)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func setTiming(t *testing.T, s *ue.Store, imsi uint64, p procedure.Procedure, start, end string) {
	t.Helper()
	rec := s.Get(imsi)
	if start != "" {
		rec.SetStart(p, mustTS(t, start))
	}
	if end != "" {
		rec.SetEnd(p, mustTS(t, end))
	}
}

// =============================================================================
// Tests: Build
// =============================================================================

func TestBuild_SingleDevice(t *testing.T) {
	s := newStore(t, 1)
	setTiming(t, s, firstIMSI, procedure.SendInitialRegistrationRequest, "1000.000", "1005.500")

	r := Build(s, Options{LogPath: "urs-all.log"})

	ps := r.Procedure(procedure.SendInitialRegistrationRequest)
	if got := FormatMillis(ps.Average); got != "5.500" {
		t.Errorf("average = %s, want 5.500", got)
	}
	if diff := cmp.Diff([]time.Duration{5500 * time.Microsecond}, ps.Durations); diff != "" {
		t.Errorf("Durations mismatch (-want +got):\n%s", diff)
	}
	if !ps.Consistent {
		t.Error("procedure with 1/1 contributions should be consistent")
	}
	if r.DeviceCount != 1 || r.FirstIMSI != firstIMSI || r.LogPath != "urs-all.log" {
		t.Errorf("report header = %d %d %s", r.FirstIMSI, r.DeviceCount, r.LogPath)
	}

	// every other procedure has no data
	if got := len(r.Warnings()); got != procedure.Count-1 {
		t.Errorf("len(Warnings()) = %d, want %d", got, procedure.Count-1)
	}
}

func TestBuild_ConsistencyFlagging(t *testing.T) {
	s := newStore(t, 3)
	p := procedure.SendSecurityModeComplete
	setTiming(t, s, firstIMSI, p, "100", "110")
	setTiming(t, s, firstIMSI+1, p, "100", "") // incomplete, excluded
	setTiming(t, s, firstIMSI+2, p, "200", "230")

	r := Build(s, Options{})
	ps := r.Procedure(p)

	if ps.Count != 2 {
		t.Errorf("Count = %d, want 2", ps.Count)
	}
	if ps.Consistent {
		t.Error("2 of 3 devices should be flagged")
	}
	if ps.Average != 20*time.Millisecond {
		t.Errorf("Average = %v, want 20ms", ps.Average)
	}
	if diff := cmp.Diff([]time.Duration{10 * time.Millisecond, 30 * time.Millisecond}, ps.Durations); diff != "" {
		t.Errorf("Durations mismatch (-want +got):\n%s", diff)
	}

	found := false
	for _, w := range r.Warnings() {
		if w.Procedure == p {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings() does not include %s", p)
	}
}

func TestBuild_ZeroDurationExcludedFromCount(t *testing.T) {
	s := newStore(t, 3)
	p := procedure.ReceiveSecurityModeCommand
	setTiming(t, s, firstIMSI, p, "100", "100")
	setTiming(t, s, firstIMSI+1, p, "100", "106")
	setTiming(t, s, firstIMSI+2, p, "100", "112")

	ps := Build(s, Options{}).Procedure(p)

	if len(ps.Durations) != 3 {
		t.Errorf("len(Durations) = %d, want 3", len(ps.Durations))
	}
	if ps.Count != 2 {
		t.Errorf("Count = %d, want 2", ps.Count)
	}
	if ps.Sum != 18*time.Millisecond {
		t.Errorf("Sum = %v, want 18ms", ps.Sum)
	}
	if ps.Average != 9*time.Millisecond {
		t.Errorf("Average = %v, want 9ms", ps.Average)
	}
	if ps.Consistent {
		t.Error("zero duration should make the count inconsistent")
	}
}

func TestBuild_NegativeDurationPropagates(t *testing.T) {
	s := newStore(t, 1)
	p := procedure.SendContextReleaseComplete
	setTiming(t, s, firstIMSI, p, "110", "100")

	ps := Build(s, Options{}).Procedure(p)
	if ps.Average != -10*time.Millisecond {
		t.Errorf("Average = %v, want -10ms", ps.Average)
	}
	if FormatMillis(ps.Average) != "-10.000" {
		t.Errorf("FormatMillis = %s", FormatMillis(ps.Average))
	}
}

func TestBuild_NoData(t *testing.T) {
	r := Build(newStore(t, 2), Options{DeviceCount: 2})
	for _, ps := range r.Procedures {
		if ps.Average != 0 || ps.Count != 0 || ps.Consistent {
			t.Errorf("%s: %+v", ps.Procedure, ps)
		}
	}
	if len(r.Warnings()) != procedure.Count {
		t.Errorf("len(Warnings()) = %d, want %d", len(r.Warnings()), procedure.Count)
	}
	if r.EndToEnd.Count != 0 {
		t.Errorf("EndToEnd.Count = %d", r.EndToEnd.Count)
	}
}

func TestBuild_DeviceOrderAndEndToEnd(t *testing.T) {
	s := newStore(t, 2)
	for i := uint64(0); i < 2; i++ {
		rec := s.Get(firstIMSI + i)
		rec.SetupStart = mustTS(t, "1000")
		rec.InternalID = 10 + i
	}
	setTiming(t, s, firstIMSI, procedure.SessionComplete, "1200", "1250")
	setTiming(t, s, firstIMSI+1, procedure.SessionComplete, "1300", "1400")

	r := Build(s, Options{})

	if len(r.Devices) != 2 || r.Devices[0].IMSI != firstIMSI || r.Devices[1].IMSI != firstIMSI+1 {
		t.Fatalf("Devices order wrong: %+v", r.Devices)
	}
	if r.Devices[1].InternalID != 11 {
		t.Errorf("InternalID = %d, want 11", r.Devices[1].InternalID)
	}
	if !r.Devices[0].EndToEndObserved || r.Devices[0].EndToEnd != 250*time.Millisecond {
		t.Errorf("device 0 end-to-end = %v", r.Devices[0].EndToEnd)
	}
	if r.EndToEnd.Count != 2 || r.EndToEnd.Min != 250*time.Millisecond || r.EndToEnd.Max != 400*time.Millisecond {
		t.Errorf("EndToEnd = %+v", r.EndToEnd)
	}
	if len(r.Devices[0].Procedures) != procedure.Count {
		t.Errorf("len(Procedures) = %d, want %d", len(r.Devices[0].Procedures), procedure.Count)
	}
}

func TestBuild_DoesNotMutateStore(t *testing.T) {
	s := newStore(t, 1)
	setTiming(t, s, firstIMSI, procedure.SendRegistrationComplete, "1", "2")
	before := *s.Get(firstIMSI)

	Build(s, Options{})

	if diff := cmp.Diff(before, *s.Get(firstIMSI)); diff != "" {
		t.Errorf("store mutated (-before +after):\n%s", diff)
	}
}

func TestDistribution(t *testing.T) {
	single := distribution([]time.Duration{7 * time.Millisecond})
	if single.P50 != 7*time.Millisecond || single.P99 != 7*time.Millisecond {
		t.Errorf("single-value distribution = %+v", single)
	}

	var values []time.Duration
	for i := 1; i <= 100; i++ {
		values = append(values, time.Duration(i)*time.Millisecond)
	}
	d := distribution(values)
	if d.Count != 100 || d.Min != time.Millisecond || d.Max != 100*time.Millisecond {
		t.Errorf("distribution = %+v", d)
	}
	if d.P50 < 45*time.Millisecond || d.P50 > 55*time.Millisecond {
		t.Errorf("P50 = %v, want ~50ms", d.P50)
	}
	if d.P95 < d.P50 || d.P99 < d.P95 {
		t.Errorf("percentiles not monotonic: %+v", d)
	}
}

func TestFormatMillis(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0.000"},
		{"half ms", 500 * time.Microsecond, "0.500"},
		{"5.5ms", 5500 * time.Microsecond, "5.500"},
		{"sub-microsecond rounds", 1234567 * time.Nanosecond, "1.235"},
		{"seconds", 2 * time.Second, "2000.000"},
		{"negative", -1500 * time.Microsecond, "-1.500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMillis(tt.d); got != tt.want {
				t.Errorf("FormatMillis(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
