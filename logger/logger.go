/* logger.go
 * Contains the structured logger setup. Every component logs through a *slog.Logger writing JSON lines
 */

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values fall back to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a JSON logger writing to w at the given level
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Init creates the stdout logger and installs it as the slog default
// Preconditions: Receives the LOG_LEVEL value, may be empty
// Postconditions: Returns the logger, which is also slog.Default()
func Init(level string) *slog.Logger {
	l := New(os.Stdout, level)
	slog.SetDefault(l)
	l.Debug("logger initialized", "level", ParseLevel(level).String())
	return l
}
