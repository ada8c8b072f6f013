package render

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// linkPattern matches HTTP(S) and mailto URLs, stopping before whitespace,
// ANSI escapes, or closing parens, brackets and angles. Bare email
// addresses match too; a URL that contains one matches first.
var linkPattern = regexp.MustCompile(`(?:https?://|mailto:)[^\s\x1b)\]>]+|[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// processHyperlinks wraps URLs and email addresses in the rendered card
// with OSC 8 hyperlink escape sequences so they become clickable in
// supporting terminals. Addresses link to mailto:. Terminals without an
// image tier are assumed not to support hyperlinks either.
func processHyperlinks(rendered string, tier ImageTier) string {
	if tier == TierNone {
		return rendered
	}

	return linkPattern.ReplaceAllStringFunc(rendered, func(text string) string {
		target := text
		if !strings.Contains(text, "://") && !strings.HasPrefix(text, "mailto:") {
			target = "mailto:" + text
		}
		return ansi.SetHyperlink(target) + text + ansi.ResetHyperlink()
	})
}
