package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
	ansiGray      = "\033[90m"
	ansiUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var levelColors = map[slog.Level]string{
	slog.LevelDebug: ansiCyan,
	slog.LevelInfo:  ansiGreen,
	slog.LevelWarn:  ansiYellow,
	slog.LevelError: ansiRed,
}

// ConsoleHandler implements slog.Handler with colored, human-readable output
// suitable for development environments.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger names to minimum log levels
	PkgLevels map[string]slog.Level

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler by formatting the log record with colors,
// a timestamp and source information.
func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	attrs = append(attrs, h.attrs...)

	if h.suppressed(loggerName(attrs), r.Level) {
		return nil
	}

	msg := ansiGray + r.Time.Format("15:04:05.000000") + ansiReset
	msg += " " + levelColors[r.Level] + "[" + r.Level.String() + "]" + ansiReset
	msg += " " + r.Message

	var prefix string
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		msg += " " + ansiGray + "|" + ansiReset
		msg += renderAttrs(prefix, attrs)
	}

	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()

	msg += "\n-> " + ansiGray + frame.Function + "()"
	msg += " in " + ansiUnderline + frame.File + ":" + strconv.Itoa(frame.Line) + ansiReset

	fmt.Fprintln(h.Output, msg)

	return nil
}

// suppressed reports whether a record from the named logger is below the
// most specific configured package-level filter. Filters match on dotted
// name prefixes, longest first.
func (h *ConsoleHandler) suppressed(name string, level slog.Level) bool {
	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0; i-- {
		key := strings.Join(parts[:i], ".")

		minLevel, ok := h.PkgLevels[key]
		if !ok {
			continue
		}

		return level < minLevel
	}

	return false
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == "logger" {
			return attr.Value.String()
		}
	}

	return ""
}

func renderAttrs(prefix string, attrs []slog.Attr) (out string) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			out += renderAttrs(prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		out += " " + prefix + attr.Key
		out += "=" + ansiGray + attr.Value.String() + ansiReset
	}

	return
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		attrs:     append(h.attrs, attrs...),
		groups:    h.groups,
	}
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		attrs:     h.attrs,
		groups:    append(h.groups, name),
	}
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}
