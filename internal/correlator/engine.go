// Package correlator attributes classified log lines to devices and
// accumulates their procedure timings.
//
// UE-side lines name the device directly by IMSI. gNB-side lines only carry
// the gNB's internal UE context id, which is tied to an IMSI in two steps:
//
//  1. RlsUeEntity_sendSetupComplete (UE side) stores the UE token on the
//     device record.
//  2. RlsGnbEntity_onReceive (gNB side) pairs an internal id with a UE token,
//     which resolves to the device holding that token.
//
// Lines are processed strictly in file order with no lookahead, so a gNB
// procedure line can only reference ids introduced earlier in the log.
package correlator

import (
	"errors"
	"log/slog"
	"time"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/logging"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/procedure"
	"github.com/randomizedcoder/go-urs-log-analyzer/internal/ue"
)

// Special event names outside the procedure catalog.
const (
	SetupCompleteEvent = "RlsUeEntity_sendSetupComplete"
	AssignEvent        = "RlsGnbEntity_onReceive"
)

// Field labels.
const (
	sideUE       = "@ue"
	sideGNB      = "@gNB"
	labelUEID    = "ueId:"
	labelUEToken = "ueToken:"
	fieldStart   = "START:"
	fieldEnd     = "END:"
)

// Overall is the process-wide UE timing window. Start is the most recent
// setup completion. Each end of session establishment takes a snapshot of
// End-Start against the Start known at that line, so setup completions
// logged afterwards do not change it.
type Overall struct {
	Start parser.Timestamp
	End   parser.Timestamp

	elapsed  time.Duration
	observed bool
}

// Duration returns the last snapshot. ok is false until a session
// establishment END follows a setup completion.
func (o Overall) Duration() (time.Duration, bool) {
	return o.elapsed, o.observed
}

// finish records the end of session establishment at ts.
func (o *Overall) finish(ts parser.Timestamp) {
	o.End = ts
	if o.Start.IsZero() {
		return
	}
	o.elapsed, o.observed = ts.Sub(o.Start), true
}

// Counters summarize one ingestion pass.
type Counters struct {
	Lines            int
	Relevant         int
	SetupCompletions int
	Assignments      int
	ProcedureEvents  int
}

// Engine owns the device store and the correlation tables during ingestion.
// It is not safe for concurrent use.
type Engine struct {
	store  *ue.Store
	logger *slog.Logger

	// internal id -> IMSI
	byInternalID map[uint64]uint64

	// UE token -> lowest IMSI currently holding it
	byToken map[string]uint64

	overall  Overall
	counters Counters
}

// New creates an engine that mutates store.
func New(store *ue.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:        store,
		logger:       logger,
		byInternalID: make(map[uint64]uint64),
		byToken:      make(map[string]uint64),
	}
}

// Run classifies and ingests every line in order. It stops at the first
// error; a *FormatError carries the 1-based line number.
func (e *Engine) Run(lines []string) error {
	debug := logging.DebugEnabled(e.logger)
	for i, raw := range lines {
		e.counters.Lines++

		line, ok := parser.Classify(raw)
		if !ok {
			if debug {
				e.logger.Debug("line_skipped", logging.LineAttr(i+1, raw))
			}
			continue
		}
		e.counters.Relevant++

		if err := e.Ingest(line); err != nil {
			var fe *FormatError
			if errors.As(err, &fe) {
				fe.Line = i + 1
			}
			return err
		}
	}

	e.logger.Debug("ingest_complete",
		"lines", e.counters.Lines,
		"relevant", e.counters.Relevant,
		"correlated", len(e.byInternalID),
	)
	return nil
}

// Ingest processes one classified line.
func (e *Engine) Ingest(line parser.Line) error {
	event := line.Event()
	switch event {
	case "":
		return formatErr(ErrUnexpectedFormat, line, "no event after marker")
	case SetupCompleteEvent:
		return e.setupComplete(line)
	case AssignEvent:
		return e.assign(line)
	}

	p, ok := procedure.Lookup(event)
	if !ok {
		return formatErr(ErrUnknownProcedure, line, "%s", event)
	}
	return e.procedureEvent(p, line)
}

// Store returns the device store being populated.
func (e *Engine) Store() *ue.Store {
	return e.store
}

// Overall returns the process-wide timing window observed so far.
func (e *Engine) Overall() Overall {
	return e.overall
}

// Counters returns line counts for the ingestion so far.
func (e *Engine) Counters() Counters {
	return e.counters
}

// Correlated returns the number of internal ids bound to a device.
func (e *Engine) Correlated() int {
	return len(e.byInternalID)
}

// Lookup resolves a gNB internal id to an IMSI.
func (e *Engine) Lookup(internalID uint64) (uint64, bool) {
	imsi, ok := e.byInternalID[internalID]
	return imsi, ok
}

func (e *Engine) single() bool {
	return e.store.Len() == 1
}

// setupComplete handles:
//
//	RlsUeEntity_sendSetupComplete @ue gnbToken: <G> ueToken: <U> START: <T>
func (e *Engine) setupComplete(line parser.Line) error {
	if len(line.Fields) < 8 {
		return formatErr(ErrUnexpectedFormat, line, "setup completion needs 8 fields")
	}
	start, err := parser.ParseTimestamp(line.Fields[7])
	if err != nil {
		return formatErr(ErrUnexpectedFormat, line, "%v", err)
	}

	imsi := e.store.First()
	if !e.single() {
		imsi, err = parser.EmbeddedIMSI(line.Prefix)
		if err != nil {
			return formatErr(ErrUnknownDevice, line, "%v", err)
		}
	}
	rec := e.store.Get(imsi)
	if rec == nil {
		return formatErr(ErrUnknownDevice, line, "IMSI %d outside configured range", imsi)
	}

	rec.GNBToken = line.Fields[3]
	e.setUEToken(rec, line.Fields[5])
	rec.SetupStart = start
	e.overall.Start = start
	e.counters.SetupCompletions++
	return nil
}

// assign handles:
//
//	RlsGnbEntity_onReceive @gNB ueId: <id> ueToken: <U>
func (e *Engine) assign(line parser.Line) error {
	if line.Field(2) != labelUEID {
		return formatErr(ErrUnexpectedFormat, line, "%s not found", labelUEID)
	}
	if line.Field(4) != labelUEToken {
		return formatErr(ErrUnexpectedFormat, line, "%s not found", labelUEToken)
	}
	id, err := parser.ParseInternalID(line.Field(3))
	if err != nil {
		return formatErr(ErrUnexpectedFormat, line, "%s %v", labelUEID, err)
	}
	token := line.Field(5)
	if token == "" {
		return formatErr(ErrUnexpectedFormat, line, "%s value missing", labelUEToken)
	}

	imsi := e.store.First()
	if !e.single() {
		var ok bool
		imsi, ok = e.byToken[token]
		if !ok {
			return formatErr(ErrNoCorrelation, line, "ueToken %s matches no configured device", token)
		}
	}

	rec := e.store.Get(imsi)
	rec.InternalID = id
	e.byInternalID[id] = imsi
	e.counters.Assignments++

	e.logger.Debug("ue_correlated", "imsi", imsi, "ue_id", id)
	return nil
}

// procedureEvent handles either addressing mode:
//
//	<procedure> @ue IMSI: <imsi> START:|END: <T>
//	<procedure> @gNB ueId: <id> START:|END: <T>
func (e *Engine) procedureEvent(p procedure.Procedure, line parser.Line) error {
	imsi := e.store.First()

	switch line.Field(1) {
	case sideUE:
		if !e.single() {
			v, err := parser.ParseIMSI(line.Field(3))
			if err != nil {
				return formatErr(ErrUnexpectedFormat, line, "IMSI %v", err)
			}
			imsi = v
		}
	case sideGNB:
		if line.Field(2) != labelUEID {
			return formatErr(ErrUnexpectedFormat, line, "%s not found", labelUEID)
		}
		if !e.single() {
			id, err := parser.ParseInternalID(line.Field(3))
			if err != nil {
				return formatErr(ErrUnexpectedFormat, line, "%s %v", labelUEID, err)
			}
			v, ok := e.byInternalID[id]
			if !ok {
				return formatErr(ErrNoCorrelation, line, "ueId %d was never assigned", id)
			}
			imsi = v
		}
	default:
		return formatErr(ErrUnexpectedFormat, line, "%s/%s not found", sideUE, sideGNB)
	}

	rec := e.store.Get(imsi)
	if rec == nil {
		return formatErr(ErrUnknownDevice, line, "IMSI %d outside configured range", imsi)
	}

	mark := line.Field(4)
	if mark != fieldStart && mark != fieldEnd {
		return formatErr(ErrUnexpectedFormat, line, "%s/%s not found", fieldStart, fieldEnd)
	}
	ts, err := parser.ParseTimestamp(line.Field(5))
	if err != nil {
		return formatErr(ErrUnexpectedFormat, line, "%v", err)
	}

	if mark == fieldStart {
		rec.SetStart(p, ts)
	} else {
		rec.SetEnd(p, ts)
		if p == procedure.SessionComplete {
			e.overall.finish(ts)
		}
	}
	e.counters.ProcedureEvents++
	return nil
}

// setUEToken stores token on rec and keeps byToken pointing at the lowest
// IMSI holding each token.
func (e *Engine) setUEToken(rec *ue.Record, token string) {
	old := rec.UEToken
	rec.UEToken = token
	if old == token {
		return
	}

	if holder, ok := e.byToken[old]; ok && holder == rec.IMSI {
		delete(e.byToken, old)
		e.reindex(old)
	}
	if cur, ok := e.byToken[token]; !ok || rec.IMSI < cur {
		e.byToken[token] = rec.IMSI
	}
}

// reindex finds the next holder of a token whose indexed device moved on.
func (e *Engine) reindex(token string) {
	for _, r := range e.store.Records() {
		if r.UEToken == token {
			e.byToken[token] = r.IMSI
			return
		}
	}
}
