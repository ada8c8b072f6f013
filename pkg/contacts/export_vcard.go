package contacts

import (
	"strings"
	"time"
)

// EncodeOptions controls vCard encoding.
type EncodeOptions struct {
	// IncludePhoto embeds the photo. QR payloads leave it out because of
	// their size limit.
	IncludePhoto bool
	// Now stamps the REV property. Zero means the current time.
	Now time.Time
}

// revLayout is the compact UTC timestamp form used for REV.
const revLayout = "20060102T150405Z"

// EncodeVCard serializes one contact as a vCard 3.0 block. Custom fields
// are folded into NOTE below an "Additional Info" separator, sensitive ones
// annotated with a [SECURE] prefix rather than redacted.
func EncodeVCard(c Contact, opts EncodeOptions) string {
	ts := opts.Now
	if ts.IsZero() {
		ts = now()
	}

	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		strings.TrimSpace("FN:" + escapeText(c.FirstName) + " " + escapeText(c.LastName)),
		"N:" + escapeText(c.LastName) + ";" + escapeText(c.FirstName) + ";;;",
	}
	if c.Nickname != "" {
		lines = append(lines, "NICKNAME:"+escapeText(c.Nickname))
	}

	for _, e := range c.Emails {
		lines = append(lines, "EMAIL;TYPE=INTERNET,"+strings.ToUpper(string(e.Label))+":"+escapeText(e.Value))
	}
	for _, p := range c.Phones {
		lines = append(lines, "TEL;TYPE="+telCategory(p.Label)+":"+escapeText(p.Value))
	}

	if opts.IncludePhoto && c.Photo != "" {
		if _, payload, ok := strings.Cut(c.Photo, ","); ok && payload != "" {
			lines = append(lines, "PHOTO;ENCODING=b;TYPE=JPEG:"+payload)
		}
	}

	if c.Company != "" || c.Department != "" {
		lines = append(lines, "ORG:"+escapeText(c.Company)+";"+escapeText(c.Department))
	}
	if c.Position != "" {
		lines = append(lines, "TITLE:"+escapeText(c.Position))
	}
	if c.Website != "" {
		lines = append(lines, "URL:"+escapeText(c.Website))
	}
	if c.Birthday != "" {
		lines = append(lines, "BDAY:"+escapeText(c.Birthday))
	}
	if c.Address != "" {
		lines = append(lines, "ADR;TYPE=HOME:;;"+escapeText(c.Address)+";;;;")
	}

	lines = append(lines, "REV:"+ts.UTC().Format(revLayout))

	if note := combinedNote(c); note != "" {
		lines = append(lines, "NOTE:"+escapeText(note))
	}
	lines = append(lines, "END:VCARD")

	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// EncodeVCards encodes several contacts into one .vcf document.
func EncodeVCards(cs []Contact, opts EncodeOptions) string {
	if opts.Now.IsZero() {
		opts.Now = now()
	}
	blocks := make([]string, 0, len(cs))
	for _, c := range cs {
		blocks = append(blocks, EncodeVCard(c, opts))
	}
	return strings.Join(blocks, "\n")
}

// telCategory maps a phone label to vCard TEL types.
func telCategory(l Label) string {
	switch strings.ToLower(string(l)) {
	case "mobile":
		return "CELL,VOICE"
	case "work":
		return "WORK,VOICE"
	case "home":
		return "HOME,VOICE"
	case "fax":
		return "FAX"
	}
	return "VOICE"
}

// combinedNote joins the free-text notes with one "Label: value" line per
// custom field. The separator line is present whenever there are custom
// fields so a decoder can tell the two parts apart.
func combinedNote(c Contact) string {
	var parts []string
	if c.Notes != "" {
		parts = append(parts, c.Notes)
	}
	if len(c.CustomFields) > 0 {
		parts = append(parts, noteSeparator)
		for _, f := range c.CustomFields {
			value := f.Value
			if f.IsSensitive {
				value = securePrefix + value
			}
			parts = append(parts, f.Label+": "+value)
		}
	}
	return strings.Join(parts, "\n")
}
