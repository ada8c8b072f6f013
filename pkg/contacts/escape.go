package contacts

import "strings"

// escapeText escapes a vCard text value. Backslashes go first so the
// escapes added for ';', ',' and newlines are not doubled.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// unescapeText reverses escapeText in a single left-to-right pass, so an
// escaped backslash followed by 'n' stays a literal "\n" rather than
// becoming a newline. Unknown escapes are kept verbatim.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case ';', ',', '\\':
			b.WriteByte(s[i])
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// splitComponents splits a structured value (N, ORG, ADR) on semicolons
// that are not escaped, then unescapes each component.
func splitComponents(raw string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++ // skip the escaped byte
		case ';':
			parts = append(parts, unescapeText(raw[start:i]))
			start = i + 1
		}
	}
	return append(parts, unescapeText(raw[start:]))
}
