package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// HomeMarker replaces the home directory in rewritten paths.
const HomeMarker = "~"

// PathHandler wraps an slog.Handler and rewrites every occurrence of the
// user's home directory in the record message and attribute values to
// HomeMarker before passing the record on.
type PathHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler

	// home is the cleaned home directory, empty when unknown.
	home string
}

// NewPathHandler creates a PathHandler wrapping handler that rewrites paths
// under home. When home is empty or "/", records pass through unchanged.
// If handler is nil, slog.Default().Handler() is used.
func NewPathHandler(handler slog.Handler, home string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if home != "" {
		home = filepath.Clean(home)
	}
	if home == string(filepath.Separator) || home == "." {
		home = ""
	}
	return &PathHandler{handler: handler, home: home}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's message and attributes and passes it to the
// underlying handler.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, h.rewrite(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are rewritten before being added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewritten), home: h.home}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), home: h.home}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if h.home == "" {
		return a
	}

	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewritten[i] = h.rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	case slog.KindString:
		return slog.String(a.Key, h.rewrite(a.Value.String()))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case error:
			return slog.String(a.Key, h.rewrite(v.Error()))
		case []string:
			out := make([]string, len(v))
			for i, s := range v {
				out[i] = h.rewrite(s)
			}
			return slog.Any(a.Key, out)
		}
	}
	return a
}

// rewrite replaces the home directory prefix of every path in s.
func (h *PathHandler) rewrite(s string) string {
	if h.home == "" || !strings.Contains(s, h.home) {
		return s
	}
	sep := string(filepath.Separator)
	if s == h.home {
		return HomeMarker
	}
	return strings.ReplaceAll(s, h.home+sep, HomeMarker+sep)
}

// userHome returns the current user's home directory or "" when unknown.
func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// newLevelOptions returns handler options for the verbosity.
// The default level is Warn; verbose enables Debug.
func newLevelOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}

// NewLogger creates a text slog.Logger that rewrites home directory paths.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	textHandler := slog.NewTextHandler(w, newLevelOptions(verbose))
	return slog.New(NewPathHandler(textHandler, userHome()))
}

// NewJSONLogger creates a JSON slog.Logger that rewrites home directory
// paths. Useful for structured log aggregation in batch runs.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, newLevelOptions(verbose))
	return slog.New(NewPathHandler(jsonHandler, userHome()))
}

// Log output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by New for a format other than FormatText
// or FormatJSON.
var ErrUnknownFormat = errors.New("unknown log format")

// New creates a logger writing in format, which is case-insensitive. An
// empty format means FormatText.
func New(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewLogger(w, verbose), nil
	case FormatJSON:
		return NewJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownFormat, format, FormatText, FormatJSON)
	}
}
