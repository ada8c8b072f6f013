package share

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/jcadam/vaultkey/pkg/config"
	"github.com/jcadam/vaultkey/pkg/contacts"
)

// ErrNoTarget is returned when a contact has nothing to hand off.
var ErrNoTarget = errors.New("nothing to open")

// Handoff launches system apps for websites, mail and record editing.
type Handoff struct {
	apps config.AppsConfig

	// start launches a command without waiting. Replaced in tests.
	start func(name string, args ...string) error
}

// NewHandoff creates a Handoff with the given app configuration.
func NewHandoff(apps config.AppsConfig) *Handoff {
	return &Handoff{apps: apps, start: startDetached}
}

// OpenURL opens a URL in the configured browser. Bare hosts get https://.
func (h *Handoff) OpenURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrNoTarget
	}
	return h.open(h.apps.Browser, contacts.EnsureURLProtocol(rawURL))
}

// OpenWebsite opens the contact's website.
func (h *Handoff) OpenWebsite(c contacts.Contact) error {
	if c.Website == "" {
		return fmt.Errorf("%s has no website: %w", c.DisplayName(), ErrNoTarget)
	}
	return h.OpenURL(c.Website)
}

// OpenMailto opens a mailto: URI in the configured email app.
func (h *Handoff) OpenMailto(to, subject, body string) error {
	if to == "" {
		return ErrNoTarget
	}
	return h.open(h.apps.Email, BuildMailtoURI(to, subject, body))
}

// MailContact starts a message to the contact's first email address.
func (h *Handoff) MailContact(c contacts.Contact, subject string) error {
	to := c.PrimaryEmail()
	if to == "" {
		return fmt.Errorf("%s has no email address: %w", c.DisplayName(), ErrNoTarget)
	}
	return h.OpenMailto(to, subject, "")
}

// Edit opens path in the configured editor and waits for it to exit. The
// editor falls back to $VISUAL, $EDITOR, then vi. The configured value may
// carry arguments, e.g. "code --wait".
func (h *Handoff) Edit(path string) error {
	editor := h.apps.Editor
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor %s: %w", parts[0], err)
	}
	return nil
}

// BuildMailtoURI constructs a properly encoded mailto: URI.
func BuildMailtoURI(to, subject, body string) string {
	var params []string
	if subject != "" {
		params = append(params, "subject="+url.QueryEscape(subject))
	}
	if body != "" {
		params = append(params, "body="+url.QueryEscape(body))
	}
	uri := "mailto:" + to
	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}
	return uri
}

// open launches the given target with the configured app or system default.
func (h *Handoff) open(app, target string) error {
	if app == "" || app == "default" {
		app = systemOpener()
	}
	start := h.start
	if start == nil {
		start = startDetached
	}
	if err := start(app, target); err != nil {
		return fmt.Errorf("opening %q with %s: %w", target, app, err)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// systemOpener returns the platform default application opener.
func systemOpener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}
