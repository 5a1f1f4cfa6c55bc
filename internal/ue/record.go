// Package ue holds the per-device timing records reconstructed from a log.
package ue

import (
	"time"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/procedure"
)

// Timing is the start/end pair of one procedure on one device.
type Timing struct {
	Start parser.Timestamp
	End   parser.Timestamp
}

// Duration returns End-Start. ok is false until both ends are set.
// Negative and zero durations are returned as-is.
func (t Timing) Duration() (d time.Duration, ok bool) {
	if t.Start.IsZero() || t.End.IsZero() {
		return 0, false
	}
	return t.End.Sub(t.Start), true
}

// Record is everything known about one device.
type Record struct {
	IMSI uint64

	// InternalID is the gNB-assigned UE context id (0 = unassigned).
	InternalID uint64

	// Tokens exchanged on RLS setup, used only for correlation ("" = unassigned).
	UEToken  string
	GNBToken string

	// SetupStart is the UE-side RLS setup-completion time.
	SetupStart parser.Timestamp

	Procedures [procedure.Count]Timing
}

// Timing returns the timing of procedure p.
func (r *Record) Timing(p procedure.Procedure) Timing {
	return r.Procedures[p]
}

// SetStart records the START timestamp of procedure p.
func (r *Record) SetStart(p procedure.Procedure, ts parser.Timestamp) {
	r.Procedures[p].Start = ts
}

// SetEnd records the END timestamp of procedure p.
func (r *Record) SetEnd(p procedure.Procedure, ts parser.Timestamp) {
	r.Procedures[p].End = ts
}

// EndToEnd returns the time from RLS setup completion to the end of
// session establishment for this device.
func (r *Record) EndToEnd() (time.Duration, bool) {
	end := r.Procedures[procedure.SessionComplete].End
	if r.SetupStart.IsZero() || end.IsZero() {
		return 0, false
	}
	return end.Sub(r.SetupStart), true
}
