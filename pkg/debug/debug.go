// Package debug provides logging utilities for troubleshooting imports,
// exports and store access. All methods are nil-safe: a nil *Logger is a
// no-op, so callers pass one around without checking.
package debug

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// maxPreview is the maximum number of bytes shown for a data preview.
const maxPreview = 2 * 1024

// Logger writes debug output to a writer. A nil *Logger is safe to use;
// all methods are no-ops.
type Logger struct {
	w io.Writer
}

// NewLogger creates a Logger that writes to w.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Enabled reports whether output is written anywhere.
func (l *Logger) Enabled() bool {
	return l != nil
}

// Printf writes a formatted debug line. No-op on nil receiver.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.w, "[debug] "+format+"\n", args...)
}

// Section writes a visual separator. No-op on nil receiver.
func (l *Logger) Section(label string) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.w, "[debug] ─── %s ───\n", label)
}

// Timed logs the start of label and returns a func that logs its elapsed
// time. Use as: defer dbg.Timed("import")().
func (l *Logger) Timed(label string) func() {
	if l == nil {
		return func() {}
	}
	start := time.Now()
	l.Printf("→ %s", label)
	return func() {
		l.Printf("← %s (%s)", label, time.Since(start).Round(time.Millisecond))
	}
}

// Preview logs the head of an input payload, one debug line per source
// line. JSON is indented first. Payloads over maxPreview are truncated.
func (l *Logger) Preview(label string, data []byte) {
	if l == nil {
		return
	}
	l.Printf("%s (%d bytes):", label, len(data))
	if len(data) == 0 {
		return
	}

	display := prettyJSON(data)
	truncated := false
	if len(display) > maxPreview {
		display = display[:maxPreview]
		for len(display) > 0 && !utf8.ValidString(display) {
			display = display[:len(display)-1]
		}
		truncated = true
	}
	for _, line := range strings.Split(strings.TrimRight(display, "\n"), "\n") {
		l.Printf("  %s", strings.TrimRight(line, "\r"))
	}
	if truncated {
		l.Printf("  ... truncated at %d bytes", maxPreview)
	}
}

// prettyJSON attempts to indent JSON. Falls back to the raw string for
// non-JSON content.
func prettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
