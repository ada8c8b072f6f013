package contacts

import (
	"regexp"
	"strings"
)

// noteSeparator divides free-text notes from the custom-field listing in
// an encoded NOTE property.
const noteSeparator = "--- Additional Info ---"

// securePrefix marks a sensitive custom-field value inside NOTE.
const securePrefix = "[SECURE] "

var (
	beginPattern = regexp.MustCompile(`(?i)BEGIN:VCARD`)
	endPattern   = regexp.MustCompile(`(?i)END:VCARD`)
)

// DecodeVCard parses one or more concatenated vCard entries. Entries that
// are unterminated or carry no identifying data are skipped and reported
// as warnings; one bad entry never affects its siblings.
func DecodeVCard(data []byte) ([]Contact, []string) {
	var contacts []Contact
	var warnings []string

	// The first fragment is whatever precedes the first BEGIN line.
	for i, fragment := range beginPattern.Split(string(data), -1) {
		if i == 0 || strings.TrimSpace(fragment) == "" {
			continue
		}
		end := endPattern.FindStringIndex(fragment)
		if end == nil {
			warnings = append(warnings, "skipping unterminated vCard entry")
			continue
		}

		c, ok := decodeEntry(fragment[:end[0]])
		if !ok {
			warnings = append(warnings, "skipping vCard entry with no name, email, phone, or company")
			continue
		}
		contacts = append(contacts, c)
	}

	return contacts, warnings
}

// decodeEntry decodes the body of one BEGIN/END block.
func decodeEntry(body string) (Contact, bool) {
	b := &builder{}
	for _, line := range unfoldLines(body) {
		key, params, value, ok := parseProperty(line)
		if !ok {
			continue
		}
		applyProperty(b, key, params, value)
	}
	return b.build()
}

// unfoldLines joins RFC 6350 folded lines: a physical line starting with a
// space or tab continues the previous logical line. The continuation is
// stripped of its leading whitespace before it is appended.
func unfoldLines(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var lines []string

	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			if len(lines) > 0 {
				lines[len(lines)-1] += strings.TrimLeft(line, " \t")
			}
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// parseProperty splits "group.NAME;PARAM=x;PARAM=y:VALUE" into an
// upper-cased key, the raw parameter string (with its leading ';') and the
// still-escaped, trimmed value. Lines without a name or with a blank value
// fail.
func parseProperty(line string) (key, params, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", "", false
	}
	head := line[:colon]
	value = strings.TrimSpace(line[colon+1:])
	if value == "" {
		return "", "", "", false
	}

	name := head
	if semi := strings.IndexByte(head, ';'); semi >= 0 {
		name, params = head[:semi], head[semi:]
	}
	if name == "" {
		return "", "", "", false
	}
	if _, rest, grouped := strings.Cut(name, "."); grouped {
		name, _, _ = strings.Cut(rest, ".")
	}
	key = strings.ToUpper(strings.TrimSpace(name))
	return key, params, value, key != ""
}

// typeValues returns the TYPE values of a parameter string in order. Bare
// parameters without '=' (vCard 2.1 style) count as types too.
func typeValues(params string) []string {
	var types []string
	for _, p := range strings.Split(params, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, hasEq := strings.Cut(p, "=")
		if !hasEq {
			types = append(types, p)
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(k), "TYPE") {
			continue
		}
		for _, t := range strings.Split(strings.Trim(v, `"`), ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	return types
}

// emailLabel derives an email label from the first meaningful TYPE value.
// INTERNET and PREF describe the address kind, not its category, and are
// passed over; with nothing left the label is Other.
func emailLabel(params string) Label {
	for _, t := range typeValues(params) {
		switch strings.ToUpper(t) {
		case "INTERNET", "PREF", "X400":
			continue
		}
		return Label(capitalize(t))
	}
	return LabelOther
}

// phoneLabel scans the parameters for a known category, in fixed priority.
func phoneLabel(params string) Label {
	upper := strings.ToUpper(params)
	switch {
	case strings.Contains(upper, "WORK"):
		return LabelWork
	case strings.Contains(upper, "HOME"):
		return LabelHome
	case strings.Contains(upper, "MAIN"):
		return LabelMain
	case strings.Contains(upper, "FAX"):
		return LabelFax
	}
	return LabelMobile
}

func applyProperty(b *builder, key, params, raw string) {
	switch key {
	case "BEGIN", "END", "VERSION", "REV", "PRODID":
		return
	case "FN":
		b.fullName = unescapeText(raw)
	case "N":
		b.structured = raw
		b.hasN = true
	case "EMAIL":
		b.addEmail(emailLabel(params), unescapeText(raw))
	case "TEL":
		b.addPhone(phoneLabel(params), unescapeText(raw))
	case "ORG":
		parts := splitComponents(raw)
		b.company = parts[0]
		if len(parts) > 1 {
			b.department = parts[1]
		}
	case "TITLE":
		b.position = unescapeText(raw)
	case "URL":
		b.website = unescapeText(raw)
	case "BDAY":
		b.birthday = normalizeBirthday(unescapeText(raw))
	case "NOTE":
		applyNote(b, unescapeText(raw))
	case "NICKNAME":
		b.nickname = unescapeText(raw)
	case "ADR":
		var kept []string
		for _, part := range splitComponents(raw) {
			if strings.TrimSpace(part) != "" {
				kept = append(kept, part)
			}
		}
		b.address = strings.Join(kept, ", ")
	case "PHOTO":
		// The MIME type is not sniffed: untagged payloads are assumed JPEG.
		payload := strings.Join(strings.Fields(raw), "")
		if strings.HasPrefix(payload, "data:") {
			b.photo = payload
		} else {
			b.photo = "data:image/jpeg;base64," + payload
		}
	default:
		if value := unescapeText(raw); value != "" {
			b.addCustom(capitalize(key), value, false)
		}
	}
}

// applyNote stores free-text notes and recovers custom fields that were
// folded into NOTE below the "Additional Info" separator.
func applyNote(b *builder, note string) {
	lines := strings.Split(note, "\n")
	sep := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == noteSeparator {
			sep = i
			break
		}
	}
	if sep < 0 {
		b.notes = note
		return
	}

	b.notes = strings.TrimSpace(strings.Join(lines[:sep], "\n"))
	first := len(b.custom)
	for _, l := range lines[sep+1:] {
		label, value, ok := strings.Cut(l, ": ")
		if !ok {
			if n := len(b.custom); n > first {
				b.custom[n-1].Value += "\n" + l
			} else if strings.TrimSpace(l) != "" {
				b.notes = strings.TrimSpace(b.notes + "\n" + l)
			}
			continue
		}
		sensitive := strings.HasPrefix(value, securePrefix)
		value = strings.TrimPrefix(value, securePrefix)
		b.addCustom(label, value, sensitive)
	}
}

// normalizeBirthday rewrites the basic ISO form YYYYMMDD as YYYY-MM-DD.
func normalizeBirthday(s string) string {
	if len(s) >= 8 && isDigits(s[:8]) && (len(s) == 8 || s[8] == 'T') {
		return s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	return s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
