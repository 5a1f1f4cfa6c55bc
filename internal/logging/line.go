package logging

import (
	"context"
	"log/slog"
)

// MaxLineLength is the longest raw log line echoed into a record before truncation.
const MaxLineLength = 512

// TruncateLine shortens line to MaxLineLength bytes for logging.
func TruncateLine(line string) string {
	if len(line) <= MaxLineLength {
		return line
	}
	return line[:MaxLineLength] + "...(truncated)"
}

// LineAttr groups a line number and its (truncated) text under "line".
func LineAttr(number int, text string) slog.Attr {
	return slog.Group("line",
		slog.Int("number", number),
		slog.String("text", TruncateLine(text)),
	)
}

// DebugEnabled reports whether logger emits debug records. Callers use it to
// skip building per-line attributes on hot paths.
func DebugEnabled(logger *slog.Logger) bool {
	return logger.Enabled(context.Background(), slog.LevelDebug)
}
