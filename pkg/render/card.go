package render

import (
	"fmt"
	"strings"

	"github.com/jcadam/vaultkey/pkg/contacts"
)

// MaskGlyphs replaces a sensitive value. Its length is fixed so the mask
// does not leak the length of the secret.
const MaskGlyphs = "••••••••"

// Mask hides a sensitive value. Empty values stay empty.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	return MaskGlyphs
}

// CardOptions controls how a contact is written as markdown.
type CardOptions struct {
	// Reveal shows sensitive custom field values instead of the mask.
	Reveal bool
	// Photo embeds the photo data URI as a markdown image.
	Photo bool
	// HeadingLevel of the name heading; 0 means 1.
	HeadingLevel int
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
	"#", `\#`, "|", `\|`, "!", `\!`,
)

// EscapeMarkdown backslash-escapes characters markdown would interpret.
func EscapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

// CardMarkdown writes one contact as a markdown card. Empty attributes are
// left out entirely.
func CardMarkdown(c contacts.Contact, opts CardOptions) string {
	level := opts.HeadingLevel
	if level <= 0 {
		level = 1
	}
	h := strings.Repeat("#", level)
	sub := strings.Repeat("#", level+1)

	var b strings.Builder
	name := c.DisplayName()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "%s %s\n\n", h, EscapeMarkdown(name))

	if c.Nickname != "" {
		fmt.Fprintf(&b, "*%s*\n\n", EscapeMarkdown(c.Nickname))
	}
	if line := orgLine(c); line != "" {
		b.WriteString(line + "\n\n")
	}
	if opts.Photo && strings.HasPrefix(c.Photo, "data:image/") {
		fmt.Fprintf(&b, "![%s](%s)\n\n", EscapeMarkdown(name), c.Photo)
	}

	var items []string
	for _, e := range c.Emails {
		value := EscapeMarkdown(e.Value)
		if contacts.ValidEmail(e.Value) {
			value = "<" + e.Value + ">"
		}
		items = append(items, item("Email", string(e.Label), value))
	}
	for _, p := range c.Phones {
		items = append(items, item("Phone", string(p.Label), EscapeMarkdown(p.Value)))
	}
	if c.Website != "" {
		items = append(items, item("Website", "", "<"+contacts.EnsureURLProtocol(c.Website)+">"))
	}
	if c.Address != "" {
		items = append(items, item("Address", "", EscapeMarkdown(c.Address)))
	}
	if c.Birthday != "" {
		items = append(items, item("Birthday", "", EscapeMarkdown(c.Birthday)))
	}
	if len(items) > 0 {
		b.WriteString(strings.Join(items, "\n") + "\n\n")
	}

	if strings.TrimSpace(c.Notes) != "" {
		fmt.Fprintf(&b, "%s Notes\n\n%s\n\n", sub, multiline(c.Notes))
	}

	if len(c.CustomFields) > 0 {
		fmt.Fprintf(&b, "%s Additional info\n\n", sub)
		for _, f := range c.CustomFields {
			value := EscapeMarkdown(f.Value)
			if f.IsSensitive {
				if !opts.Reveal {
					value = Mask(f.Value)
				}
				value += " *(sensitive)*"
			}
			b.WriteString(item(EscapeMarkdown(f.Label), "", value) + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// orgLine joins position, department and company as "Title · Dept · **Co**".
func orgLine(c contacts.Contact) string {
	var parts []string
	if c.Position != "" {
		parts = append(parts, EscapeMarkdown(c.Position))
	}
	if c.Department != "" {
		parts = append(parts, EscapeMarkdown(c.Department))
	}
	if c.Company != "" {
		parts = append(parts, "**"+EscapeMarkdown(c.Company)+"**")
	}
	return strings.Join(parts, " · ")
}

func item(name, label, value string) string {
	if label != "" {
		name += " (" + EscapeMarkdown(label) + ")"
	}
	return fmt.Sprintf("- **%s:** %s", name, value)
}

// multiline escapes each line and keeps line breaks as hard breaks.
func multiline(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = EscapeMarkdown(strings.TrimRight(l, " \r"))
	}
	return strings.Join(lines, "  \n")
}
