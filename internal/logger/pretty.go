package logger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette holds the colors used by PrettyHandler.
type palette struct {
	dim, bold, attrs  *color.Color
	debug, info, warn *color.Color
	err, other        *color.Color
}

func newPalette(enabled bool) *palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &palette{
		dim:   mk(color.Faint),
		bold:  mk(color.Bold),
		attrs: mk(color.FgCyan),
		debug: mk(color.FgMagenta),
		info:  mk(color.FgGreen),
		warn:  mk(color.FgYellow),
		err:   mk(color.FgRed),
		other: mk(color.FgWhite),
	}
}

// PrettyHandler is a slog.Handler writing one colored line per record:
//
//	15:04:05 INF message key=value group.key=value
type PrettyHandler struct {
	opts   *slog.HandlerOptions
	writer io.Writer
	mu     *sync.Mutex
	colors *palette
	attrs  []slog.Attr // already qualified with their group prefix
	prefix string      // "group." for attributes added after WithGroup
}

// NewPrettyHandler creates a new pretty handler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions, colored bool) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{
		opts:   opts,
		writer: w,
		mu:     &sync.Mutex{},
		colors: newPalette(colored),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(h.colors.dim.Sprint(r.Time.Format("15:04:05")))
	b.WriteByte(' ')
	b.WriteString(h.formatLevel(r.Level))
	b.WriteByte(' ')

	if h.opts.AddSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		b.WriteString(h.colors.dim.Sprint(filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)))
		b.WriteByte(' ')
	}

	b.WriteString(h.colors.bold.Sprint(r.Message))

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, h.prefix, a)
		return true
	})

	if len(attrs) > 0 {
		pairs := make([]string, len(attrs))
		for i, a := range attrs {
			pairs[i] = a.Key + "=" + formatValue(a.Value)
		}
		b.WriteByte(' ')
		b.WriteString(h.colors.attrs.Sprint(strings.Join(pairs, " ")))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.attrs = appendAttr(next.attrs, h.prefix, a)
	}
	return next
}

// WithGroup returns a new handler qualifying later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		opts:   h.opts,
		writer: h.writer,
		mu:     h.mu,
		colors: h.colors,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		prefix: h.prefix,
	}
}

// appendAttr flattens groups into dotted keys and drops empty attributes.
func appendAttr(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, groupPrefix, ga)
		}
		return dst
	}
	a.Key = prefix + a.Key
	return append(dst, a)
}

// formatLevel returns the colored three letter level.
func (h *PrettyHandler) formatLevel(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return h.colors.debug.Sprint("DBG")
	case slog.LevelInfo:
		return h.colors.info.Sprint("INF")
	case slog.LevelWarn:
		return h.colors.warn.Sprint("WRN")
	case slog.LevelError:
		return h.colors.err.Sprint("ERR")
	default:
		return h.colors.other.Sprint(level.String())
	}
}

// formatValue renders a value; strings containing spaces are quoted.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return v.String()
	}
}
