// Package loghandler provides a compact, optionally colored slog handler for
// CLI output.
package loghandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiCyan   = "\033[36m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[1;31m"
)

// Options configures a Handler.
type Options struct {
	Level    slog.Level
	UseColor bool
}

// Handler renders records as "HH:MM:SS LVL message key=value ...".
type Handler struct {
	w      io.Writer
	opts   Options
	mu     *sync.Mutex
	prefix string // pre-rendered attrs from WithAttrs
	group  string // dotted group path from WithGroup
}

// New creates a Handler writing to w.
func New(w io.Writer, opts *Options) *Handler {
	h := &Handler{w: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle formats and writes the log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if h.opts.UseColor {
		buf.WriteString(ansiDim)
	}
	buf.WriteString(r.Time.Format("15:04:05"))
	if h.opts.UseColor {
		buf.WriteString(ansiReset)
	}
	buf.WriteByte(' ')

	label, color := levelLabel(r.Level)
	if h.opts.UseColor {
		buf.WriteString(color)
	}
	buf.WriteString(label)
	if h.opts.UseColor {
		buf.WriteString(ansiReset)
	}

	if r.Message != "" {
		buf.WriteByte(' ')
		buf.WriteString(r.Message)
	}

	buf.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var buf bytes.Buffer
	buf.WriteString(h.prefix)
	for _, a := range attrs {
		h.appendAttr(&buf, a)
	}
	h2 := *h
	h2.prefix = buf.String()
	return &h2
}

// WithGroup returns a new Handler qualifying subsequent attribute keys.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

func (h *Handler) appendAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			ga.Key = a.Key + "." + ga.Key
			h.appendAttr(buf, ga)
		}
		return
	}
	buf.WriteByte(' ')
	if h.opts.UseColor {
		buf.WriteString(ansiDim)
	}
	buf.WriteString(h.group)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	val := valueString(a.Value)
	if needsQuoting(val) {
		buf.WriteString(strconv.Quote(val))
	} else {
		buf.WriteString(val)
	}
	if h.opts.UseColor {
		buf.WriteString(ansiReset)
	}
}

func levelLabel(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return "ERR", ansiRed
	case level >= slog.LevelWarn:
		return "WRN", ansiYellow
	case level >= slog.LevelInfo:
		return "INF", ansiGreen
	default:
		return "DBG", ansiCyan
	}
}

func valueString(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\n\"\\=")
}

// Verify interface compliance at compile time.
var _ slog.Handler = (*Handler)(nil)
