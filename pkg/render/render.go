// Package render turns contacts into styled terminal output: glamour cards,
// inline photos, and the interactive browser.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// Style names accepted by RenderMarkdown, matching rendering.style.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// ResolveStyle turns "auto" (or "") into a concrete style by inspecting the
// terminal: no colour support means notty, otherwise dark or light by
// background. Concrete names pass through lowercased.
func ResolveStyle(style string) string {
	switch s := strings.ToLower(style); s {
	case StyleDark, StyleLight, StyleNoTTY:
		return s
	}
	if termenv.EnvColorProfile() == termenv.Ascii {
		return StyleNoTTY
	}
	if termenv.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

// RenderMarkdown renders markdown to styled terminal output using Glamour.
func RenderMarkdown(markdown string, width int, style string) (string, error) {
	if width <= 0 {
		width = 80
	}

	var styleOpt glamour.TermRendererOption
	switch ResolveStyle(style) {
	case StyleDark:
		styleOpt = glamour.WithStyles(vaultStyle())
	case StyleLight:
		styleOpt = glamour.WithStandardStyle(styles.LightStyle)
	default:
		styleOpt = glamour.WithStandardStyle(styles.NoTTYStyle)
	}

	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// vaultStyle is TokyoNight with a banner H1 and a quieter rule.
func vaultStyle() ansi.StyleConfig {
	s := styles.TokyoNightStyleConfig
	s.H1.BackgroundColor = stringPtr("#1a1b26")
	s.HorizontalRule.Format = "\n──────────\n"
	return s
}

func stringPtr(s string) *string { return &s }
