// Package logging builds the slog logger used across sappy.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a levelled slog logger writing charm-styled text to w.
// Unknown levels fall back to warn.
func New(level string, w io.Writer) *slog.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.WarnLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "sappy",
	})
	return slog.New(handler)
}
