package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/phuslu/log"
)

var levels = map[string]log.Level{
	"trace": log.TraceLevel,
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
}

// ParseLevel converts a level name to a log level.
func ParseLevel(name string) (log.Level, error) {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return log.InfoLevel, fmt.Errorf("unknown log level %q (want trace, debug, info, warn or error)", name)
	}
	return lvl, nil
}

// NewLogger returns a console logger writing to w at the given level.
// Unknown level names fall back to info.
func NewLogger(level string, w io.Writer, color bool) *log.Logger {
	lvl, _ := ParseLevel(level)
	return &log.Logger{
		Level:      lvl,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    color,
			EndWithMessage: true,
		},
	}
}

// NopLogger returns a logger that discards everything.
func NopLogger() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
