package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a wall-clock instant in milliseconds since the Unix epoch,
// held as a fixed-point offset. The zero value means "unset".
type Timestamp time.Duration

// ParseTimestamp converts a "START:"/"END:" value such as
// "1616817174960.644043" (milliseconds with a decimal fraction).
//
// Fraction digits past nanosecond resolution are truncated.
func ParseTimestamp(s string) (Timestamp, error) {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(digits, ".")
	if whole == "" && frac == "" || !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	if whole == "" {
		whole = "0"
	}

	ms, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	// 6 fraction digits of a millisecond reach nanoseconds
	const fracDigits = 6
	if len(frac) > fracDigits {
		frac = frac[:fracDigits]
	}
	var ns int64
	if frac != "" {
		frac += strings.Repeat("0", fracDigits-len(frac))
		ns, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}

	if ms > (1<<63-1)/int64(time.Millisecond)-1 {
		return 0, fmt.Errorf("timestamp %q out of range", s)
	}

	d := time.Duration(ms)*time.Millisecond + time.Duration(ns)
	if neg {
		d = -d
	}
	return Timestamp(d), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == 0
}

// Sub returns t-u.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t - u)
}

// Millis returns the timestamp as fractional milliseconds.
func (t Timestamp) Millis() float64 {
	return float64(t) / float64(time.Millisecond)
}

// String formats the timestamp as milliseconds with 3 decimals.
func (t Timestamp) String() string {
	return strconv.FormatFloat(t.Millis(), 'f', 3, 64)
}
