package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/share"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("205")).
	PaddingLeft(1)

var footerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")).
	PaddingLeft(1)

var rowSelectedStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("205"))

var rowNormalStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252"))

// Column widths of the list view.
const (
	nameWidth    = 24
	companyWidth = 20
)

// actionResultMsg carries the result of an async action.
type actionResultMsg struct {
	status string
	err    error
}

// Browser is a Bubble Tea model listing contacts with a filter line and a
// scrollable detail card.
type Browser struct {
	all      []contacts.Contact
	filtered []contacts.Contact
	cursor   int

	filter    textinput.Model
	filtering bool

	detail     viewport.Model
	showDetail bool
	ready      bool
	width      int
	height     int

	reveal    bool
	style     string
	imageTier ImageTier

	handoff *share.Handoff
	copy    func(string) error
	now     func() time.Time
	busy    bool

	statusMsg string
	statusExp time.Time
}

// BrowserOption configures optional Browser behavior.
type BrowserOption func(*Browser)

// WithHandoff provides a Handoff for the open and mail keys.
func WithHandoff(h *share.Handoff) BrowserOption {
	return func(b *Browser) { b.handoff = h }
}

// WithStyle sets the glamour style used for detail cards.
func WithStyle(style string) BrowserOption {
	return func(b *Browser) { b.style = style }
}

// WithReveal starts the browser with sensitive values shown.
func WithReveal(reveal bool) BrowserOption {
	return func(b *Browser) { b.reveal = reveal }
}

// WithImageTier enables OSC 8 hyperlinks in detail cards on capable terminals.
func WithImageTier(tier ImageTier) BrowserOption {
	return func(b *Browser) { b.imageTier = tier }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) BrowserOption {
	return func(b *Browser) { b.copy = fn }
}

// NewBrowser creates a browser over cs. The slice is not modified.
func NewBrowser(cs []contacts.Contact, opts ...BrowserOption) Browser {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by name, company or email"

	b := Browser{
		all:    cs,
		filter: ti,
		copy:   share.CopyToClipboard,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	// resolve once; auto detection queries the terminal
	b.style = ResolveStyle(b.style)
	b.applyFilter()
	return b
}

// Init initializes the browser.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		if !b.ready {
			b.detail = viewport.New(msg.Width, b.bodyHeight())
			b.ready = true
		} else {
			b.detail.Width = msg.Width
			b.detail.Height = b.bodyHeight()
		}
		if b.showDetail {
			b.refreshDetail()
		}
		return b, nil

	case actionResultMsg:
		b.busy = false
		if msg.err != nil {
			b.setStatus("Error: " + msg.err.Error())
		} else {
			b.setStatus(msg.status)
		}
		return b, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return b, tea.Quit
		}
		if b.busy {
			if msg.String() == "q" {
				return b, tea.Quit
			}
			return b, nil
		}
		if b.filtering {
			return b.updateFilter(msg)
		}
		if b.showDetail {
			return b.updateDetail(msg)
		}
		return b.updateList(msg)
	}

	if b.showDetail {
		var cmd tea.Cmd
		b.detail, cmd = b.detail.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b Browser) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case "esc":
		if b.filter.Value() == "" {
			return b, tea.Quit
		}
		b.filter.SetValue("")
		b.applyFilter()
		b.layout()
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.filtered)-1 {
			b.cursor++
		}
	case "home", "g":
		b.cursor = 0
	case "end", "G":
		if len(b.filtered) > 0 {
			b.cursor = len(b.filtered) - 1
		}
	case "/":
		b.filtering = true
		b.layout()
		return b, b.filter.Focus()
	case "enter", "l":
		if len(b.filtered) > 0 {
			b.showDetail = true
			b.refreshDetail()
		}
	case "r":
		b.toggleReveal()
	default:
		return b.startAction(msg.String())
	}
	return b, nil
}

func (b Browser) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case "esc", "backspace", "h":
		b.showDetail = false
		return b, nil
	case "r":
		b.toggleReveal()
		return b, nil
	case "y", "o", "m":
		return b.startAction(msg.String())
	}
	var cmd tea.Cmd
	b.detail, cmd = b.detail.Update(msg)
	return b, cmd
}

func (b Browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		b.filtering = false
		b.filter.Blur()
		b.layout()
		return b, nil
	case "esc":
		b.filtering = false
		b.filter.Blur()
		b.filter.SetValue("")
		b.applyFilter()
		b.layout()
		return b, nil
	}
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	b.applyFilter()
	return b, cmd
}

// startAction runs copy, open or mail for the selected contact.
func (b Browser) startAction(key string) (tea.Model, tea.Cmd) {
	c, ok := b.Selected()
	if !ok {
		return b, nil
	}
	switch key {
	case "y":
		payload := share.QRPayload(c, b.now())
		copyFn := b.copy
		b.busy = true
		return b, func() tea.Msg {
			if err := copyFn(payload.Data); err != nil {
				return actionResultMsg{err: fmt.Errorf("clipboard: %w", err)}
			}
			status := "vCard for " + c.DisplayName() + " copied to clipboard"
			if payload.TooLarge() {
				status += " (too large for a QR code)"
			}
			return actionResultMsg{status: status}
		}
	case "o", "m":
		if b.handoff == nil {
			b.setStatus("No handoff configured")
			return b, nil
		}
		handoff := b.handoff
		b.busy = true
		return b, func() tea.Msg {
			if key == "o" {
				if err := handoff.OpenWebsite(c); err != nil {
					return actionResultMsg{err: err}
				}
				return actionResultMsg{status: "Opened: " + c.Website}
			}
			if err := handoff.MailContact(c, ""); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{status: "Mail to: " + c.PrimaryEmail()}
		}
	}
	return b, nil
}

// Selected returns the contact under the cursor.
func (b Browser) Selected() (contacts.Contact, bool) {
	if b.cursor < 0 || b.cursor >= len(b.filtered) {
		return contacts.Contact{}, false
	}
	return b.filtered[b.cursor], true
}

func (b *Browser) applyFilter() {
	b.filtered = contacts.Filter(b.all, b.filter.Value())
	if b.cursor >= len(b.filtered) {
		b.cursor = len(b.filtered) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

func (b *Browser) toggleReveal() {
	b.reveal = !b.reveal
	if b.reveal {
		b.setStatus("Sensitive fields revealed")
	} else {
		b.setStatus("Sensitive fields masked")
	}
	if b.showDetail {
		b.refreshDetail()
	}
}

func (b *Browser) refreshDetail() {
	c, ok := b.Selected()
	if !ok {
		return
	}
	out, err := RenderMarkdown(CardMarkdown(c, CardOptions{Reveal: b.reveal}), b.width, b.style)
	if err != nil {
		out = err.Error()
	}
	b.detail.SetContent(processHyperlinks(out, b.imageTier))
	b.detail.GotoTop()
}

// layout resizes the detail viewport when the filter line appears or goes.
func (b *Browser) layout() {
	if b.ready {
		b.detail.Height = b.bodyHeight()
	}
}

// bodyHeight is the space left after the header, filter line and footer.
func (b Browser) bodyHeight() int {
	h := b.height - 4
	if b.filtering || b.filter.Value() != "" {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the browser.
func (b Browser) View() string {
	if !b.ready {
		return "Loading..."
	}

	title := fmt.Sprintf("VaultKey · %d contacts", len(b.all))
	if len(b.filtered) != len(b.all) {
		title = fmt.Sprintf("VaultKey · %d of %d contacts", len(b.filtered), len(b.all))
	}
	parts := []string{headerStyle.Render(title)}
	if b.filtering || b.filter.Value() != "" {
		parts = append(parts, " "+b.filter.View())
	}
	parts = append(parts, "")

	if b.showDetail {
		parts = append(parts, b.detail.View())
	} else {
		parts = append(parts, b.listView())
	}
	parts = append(parts, "", b.footerView())
	return strings.Join(parts, "\n")
}

func (b Browser) listView() string {
	height := b.bodyHeight()
	if len(b.filtered) == 0 {
		return footerStyle.Render("No contacts match.") + strings.Repeat("\n", height-1)
	}

	start := 0
	if b.cursor >= height {
		start = b.cursor - height + 1
	}
	end := start + height
	if end > len(b.filtered) {
		end = len(b.filtered)
	}

	rows := make([]string, 0, height)
	for i := start; i < end; i++ {
		c := b.filtered[i]
		marker := "  "
		style := rowNormalStyle
		if i == b.cursor {
			marker = "▸ "
			style = rowSelectedStyle
		}
		row := marker + column(c.DisplayName(), nameWidth) + " " + column(c.Company, companyWidth) + " " + c.PrimaryEmail()
		if b.width > 0 {
			row = ansi.Truncate(row, b.width-1, "…")
		}
		rows = append(rows, style.Render(row))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

// column truncates s to width cells and pads it to exactly width.
func column(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (b Browser) footerView() string {
	status := ""
	if b.busy {
		status = " • Working..."
	} else if b.statusMsg != "" && b.now().Before(b.statusExp) {
		status = " • " + b.statusMsg
	}

	var hints []string
	switch {
	case b.filtering:
		hints = []string{"enter apply", "esc clear"}
	case b.showDetail:
		hints = []string{fmt.Sprintf("%3.f%%", b.detail.ScrollPercent()*100), "esc back", "r reveal", "y copy vCard"}
		if b.handoff != nil {
			hints = append(hints, "o open", "m mail")
		}
		hints = append(hints, "q quit")
	default:
		hints = []string{"↑↓ move", "enter view", "/ filter", "r reveal", "y copy vCard"}
		if b.handoff != nil {
			hints = append(hints, "o open", "m mail")
		}
		hints = append(hints, "q quit")
	}
	return footerStyle.Render(strings.Join(hints, " │ ") + status)
}

func (b *Browser) setStatus(msg string) {
	b.statusMsg = msg
	b.statusExp = b.now().Add(5 * time.Second)
}

// RunBrowser launches the interactive contact browser.
func RunBrowser(cs []contacts.Contact, opts ...BrowserOption) error {
	p := tea.NewProgram(NewBrowser(cs, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
