package correlator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randomizedcoder/go-urs-log-analyzer/internal/parser"
)

// Sentinel causes of a FormatError. Match them with errors.Is.
var (
	ErrUnexpectedFormat = errors.New("unexpected format")
	ErrUnknownProcedure = errors.New("unknown procedure")
	ErrUnknownDevice    = errors.New("unknown device")
	ErrNoCorrelation    = errors.New("no correlation")
)

// FormatError reports a relevant line that cannot be ingested.
// Ingestion stops at the first FormatError.
type FormatError struct {
	// Line is the 1-based line number in the log, 0 when not known.
	Line int

	// Reason names what was expected, e.g. "ueId: not found".
	Reason string

	// Input is the offending line.
	Input parser.Line

	Err error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Err.Error())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	b.WriteString(" ")
	b.WriteString(e.Input.String())
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(err error, line parser.Line, format string, args ...any) *FormatError {
	return &FormatError{
		Reason: fmt.Sprintf(format, args...),
		Input:  line,
		Err:    err,
	}
}
