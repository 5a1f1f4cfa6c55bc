// Package parser classifies raw simulator log lines and converts their
// fields into typed values.
//
// Only lines carrying the Marker are relevant. Everything else in the merged
// UE/gNB log is noise from unrelated subsystems and is skipped.
//
// Example relevant lines:
//
//	[2021-03-27 10:12:54.960] [901700000000001|rls] [info] JK### RlsUeEntity_sendSetupComplete @ue gnbToken: 3312879965910294896 ueToken: 864116952956684276 START: 1616817174960.644043
//	[2021-03-27 10:12:54.961] [rls] [info] JK### RlsGnbEntity_onReceive @gNB ueId: 3 ueToken: 864116952956684276
//	[2021-03-27 10:12:54.962] [901700000000001|nas] [info] JK### sendInitialRegistrationRequest @ue IMSI: 901700000000001 START: 1616872241581.620
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Marker separates the free-form prefix of a line from its timing fields.
const Marker = "JK###"

// rlsSuffix terminates the bracketed device tag in a UE-side line prefix.
const rlsSuffix = "|rls]"

// ErrNoEmbeddedIMSI is returned when a line prefix carries no device tag.
var ErrNoEmbeddedIMSI = errors.New("no embedded IMSI in line prefix")

// Line is a classified log line.
type Line struct {
	// Prefix is everything before the marker (timestamps, logger tags).
	Prefix string

	// Fields are the whitespace-separated tokens after the marker.
	// Fields[0] is the event name.
	Fields []string
}

// Classify splits a raw line on Marker.
//
// ok is false when the line does not split into exactly two parts; such
// lines are irrelevant, not malformed.
func Classify(raw string) (line Line, ok bool) {
	parts := strings.Split(raw, Marker)
	if len(parts) != 2 {
		return Line{}, false
	}
	return Line{
		Prefix: parts[0],
		Fields: strings.Fields(parts[1]),
	}, true
}

// Event returns the event name, or "" when the marker is followed by nothing.
func (l Line) Event() string {
	return l.Field(0)
}

// Field returns the token at position i, or "" when the line is too short.
func (l Line) Field(i int) string {
	if i < 0 || i >= len(l.Fields) {
		return ""
	}
	return l.Fields[i]
}

// String renders the fields the way they appear in diagnostics.
func (l Line) String() string {
	return fmt.Sprintf("%q", l.Fields)
}

// EmbeddedIMSI extracts the device identifier tagging a UE-side line.
//
// The identifier is the third '['-delimited segment of the prefix, up to the
// "|rls]" suffix: "[ts] [901700000000001|rls] ..." yields 901700000000001.
func EmbeddedIMSI(prefix string) (uint64, error) {
	segments := strings.Split(prefix, "[")
	if len(segments) < 3 {
		return 0, ErrNoEmbeddedIMSI
	}
	tag, _, found := strings.Cut(segments[2], rlsSuffix)
	if !found {
		return 0, ErrNoEmbeddedIMSI
	}
	imsi, err := ParseIMSI(tag)
	if err != nil {
		return 0, fmt.Errorf("embedded IMSI %q: %w", tag, err)
	}
	return imsi, nil
}

// ParseIMSI parses a subscriber identifier.
func ParseIMSI(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// ParseInternalID parses a gNB-assigned UE context identifier.
func ParseInternalID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
