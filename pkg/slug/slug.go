// Package slug provides filename-safe string sanitization for VaultKey
// exports and history entries.
package slug

import (
	"strings"
	"time"
	"unicode"
)

// Sanitize converts a string into a safe filename component.
// Lowercases, keeps letters and digits (including non-ASCII ones),
// replaces everything else with dashes, collapses runs of dashes, and
// trims leading/trailing dashes.
func Sanitize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '-'
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "unknown"
	}
	return s
}

// Dated builds "<prefix>_YYYY-MM-DD<ext>", the default export file name.
// The prefix is sanitized with underscores kept as separators.
func Dated(prefix string, t time.Time, ext string) string {
	parts := strings.Split(prefix, "_")
	for i, p := range parts {
		parts[i] = Sanitize(p)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.Join(parts, "_") + "_" + t.Format("2006-01-02") + ext
}
