// Package export writes the address book as a vCard file, a JSON backup,
// or a self-contained HTML page.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/render"
	"github.com/jcadam/vaultkey/pkg/slug"
	"github.com/yuin/goldmark"
)

// Format is an export file format.
type Format string

const (
	FormatVCF  Format = "vcf"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat accepts a format name or its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "vcf", "vcard", "":
		return FormatVCF, nil
	case "json", "backup":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want vcf, json or html)", s)
	}
}

// DefaultName returns the dated file name for an export, e.g.
// vaultkey_contacts_2024-07-09.vcf or vaultkey_backup_2024-07-09.json.
func DefaultName(f Format, now time.Time) string {
	prefix := "vaultkey_contacts"
	if f == FormatJSON {
		prefix = "vaultkey_backup"
	}
	return slug.Dated(prefix, now, string(f))
}

// Options controls an export.
type Options struct {
	// IncludePhoto embeds photos in vCard and HTML output.
	IncludePhoto bool
	// Reveal writes sensitive custom fields in clear in HTML output. vCard
	// and JSON always carry them.
	Reveal bool
	// Now stamps REV values and the HTML footer. Zero means time.Now.
	Now time.Time
	// Title of the HTML page.
	Title string
}

// Render encodes cs in the given format.
func Render(f Format, cs []contacts.Contact, opts Options) ([]byte, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	switch f {
	case FormatVCF:
		out := contacts.EncodeVCards(cs, contacts.EncodeOptions{IncludePhoto: opts.IncludePhoto, Now: opts.Now})
		if out != "" {
			out += "\n"
		}
		return []byte(out), nil
	case FormatJSON:
		return contacts.EncodeBackup(cs)
	case FormatHTML:
		page, err := HTML(cs, opts)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Markdown builds the address-book document HTML export converts.
func Markdown(cs []contacts.Contact, opts Options) string {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	title := opts.Title
	if title == "" {
		title = "Address book"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", render.EscapeMarkdown(title))
	noun := "contacts"
	if len(cs) == 1 {
		noun = "contact"
	}
	fmt.Fprintf(&b, "%d %s · exported %s\n\n", len(cs), noun, opts.Now.Format("2006-01-02"))

	for i, c := range cs {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		b.WriteString(render.CardMarkdown(c, render.CardOptions{
			Reveal:       opts.Reveal,
			Photo:        opts.IncludePhoto,
			HeadingLevel: 2,
		}))
	}
	return b.String()
}

// HTML converts the address book to a self-contained HTML document. Photos
// stay embedded as data URIs.
func HTML(cs []contacts.Contact, opts Options) (string, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	title := opts.Title
	if title == "" {
		title = "Address book"
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(cs, opts)), &buf); err != nil {
		return "", fmt.Errorf("converting markdown to HTML: %w", err)
	}

	escaped := html.EscapeString(title)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
  body { max-width: 48em; margin: 2em auto; padding: 0 1em; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; line-height: 1.6; color: #1a1a1a; }
  h1, h2, h3 { margin-top: 1.5em; }
  h2 { border-bottom: 1px solid #eee; padding-bottom: 0.2em; }
  ul { list-style: none; padding-left: 0; }
  hr { border: 0; border-top: 1px solid #ddd; margin: 2em 0; }
  img { max-width: 8em; height: auto; border-radius: 50%%; }
  a { color: #0b57d0; }
</style>
</head>
<body>
%s
</body>
</html>
`, escaped, buf.String()), nil
}
