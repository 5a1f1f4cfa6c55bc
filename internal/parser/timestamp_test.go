package parser

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1000.000", 1000 * time.Millisecond, false},
		{"1005.500", 1005*time.Millisecond + 500*time.Microsecond, false},
		{"1616817174960.644043", 1616817174960*time.Millisecond + 644043*time.Nanosecond, false},
		{"1616817174960.6440439", 1616817174960*time.Millisecond + 644043*time.Nanosecond, false},
		{"42", 42 * time.Millisecond, false},
		{".5", 500 * time.Microsecond, false},
		{"7.", 7 * time.Millisecond, false},
		{"-1.5", -(time.Millisecond + 500*time.Microsecond), false},
		{"0", 0, false},
		{"", 0, true},
		{".", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"+1", 0, true},
		{"1.-5", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimestamp(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseTimestamp(%q) err = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if time.Duration(got) != tc.want {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.input, time.Duration(got), tc.want)
			}
		})
	}
}

func TestTimestampArithmetic(t *testing.T) {
	start, _ := ParseTimestamp("1000.000")
	end, _ := ParseTimestamp("1005.500")

	if d := end.Sub(start); d != 5500*time.Microsecond {
		t.Errorf("Sub = %v, want 5.5ms", d)
	}
	if d := start.Sub(end); d != -5500*time.Microsecond {
		t.Errorf("negative Sub = %v, want -5.5ms", d)
	}
	if end.String() != "1005.500" {
		t.Errorf("String() = %q", end.String())
	}
	if !Timestamp(0).IsZero() || start.IsZero() {
		t.Error("IsZero mismatch")
	}
}
