// Package charts computes address-book statistics and renders them as PNG
// charts or as text tables for terminals without image support.
package charts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/go-analyze/charts"
	"github.com/jcadam/vaultkey/pkg/contacts"
)

// Kind selects the chart renderer.
type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

// Series is one labelled data set ready to chart.
type Series struct {
	Kind   Kind
	Title  string
	Labels []string
	Values []float64
}

// Count is a label with the number of contacts carrying it.
type Count struct {
	Label string
	N     int
}

// Stats summarises an address book.
type Stats struct {
	Total         int
	WithEmail     int
	WithPhone     int
	WithPhoto     int
	WithBirthday  int
	WithSensitive int

	Companies   []Count // most contacts first
	PhoneLabels []Count // most entries first
	EmailLabels []Count // most entries first
	Months      []Count // contacts created per month, oldest first
}

// noCompany labels contacts without a company.
const noCompany = "(none)"

// Compute gathers statistics over cs.
func Compute(cs []contacts.Contact) Stats {
	s := Stats{Total: len(cs)}
	companies := map[string]int{}
	phones := map[string]int{}
	emails := map[string]int{}
	months := map[string]int{}

	for _, c := range cs {
		if len(c.Emails) > 0 {
			s.WithEmail++
		}
		if len(c.Phones) > 0 {
			s.WithPhone++
		}
		if c.Photo != "" {
			s.WithPhoto++
		}
		if c.Birthday != "" {
			s.WithBirthday++
		}
		if c.HasSensitive() {
			s.WithSensitive++
		}

		company := strings.TrimSpace(c.Company)
		if company == "" {
			company = noCompany
		}
		companies[company]++

		for _, p := range c.Phones {
			phones[labelOrOther(p.Label)]++
		}
		for _, e := range c.Emails {
			emails[labelOrOther(e.Label)]++
		}
		if !c.CreatedAt.IsZero() {
			months[c.CreatedAt.UTC().Format("2006-01")]++
		}
	}

	s.Companies = byCount(companies)
	s.PhoneLabels = byCount(phones)
	s.EmailLabels = byCount(emails)
	for m, n := range months {
		s.Months = append(s.Months, Count{Label: m, N: n})
	}
	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].Label < s.Months[j].Label })
	return s
}

func labelOrOther(l contacts.Label) string {
	if l == "" {
		return string(contacts.LabelOther)
	}
	return string(l)
}

// byCount sorts a tally by count descending, then label.
func byCount(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// CompanySeries is a bar chart of contacts per company. Companies beyond
// the top n are folded into "Other"; n <= 0 keeps them all.
func (s Stats) CompanySeries(n int) Series {
	d := Series{Kind: KindBar, Title: "Contacts per company"}
	rest := 0
	for i, c := range s.Companies {
		if n > 0 && i >= n {
			rest += c.N
			continue
		}
		d.Labels = append(d.Labels, c.Label)
		d.Values = append(d.Values, float64(c.N))
	}
	if rest > 0 {
		d.Labels = append(d.Labels, "Other")
		d.Values = append(d.Values, float64(rest))
	}
	return d
}

// CompletenessSeries is a bar chart of how many contacts fill each
// optional attribute.
func (s Stats) CompletenessSeries() Series {
	return Series{
		Kind:   KindBar,
		Title:  "Contacts with",
		Labels: []string{"Email", "Phone", "Photo", "Birthday", "Sensitive"},
		Values: []float64{
			float64(s.WithEmail), float64(s.WithPhone), float64(s.WithPhoto),
			float64(s.WithBirthday), float64(s.WithSensitive),
		},
	}
}

// PhoneLabelSeries is a pie of phone entries by label.
func (s Stats) PhoneLabelSeries() Series {
	d := Series{Kind: KindPie, Title: "Phone numbers by label"}
	for _, c := range s.PhoneLabels {
		d.Labels = append(d.Labels, c.Label)
		d.Values = append(d.Values, float64(c.N))
	}
	return d
}

// GrowthSeries is a line of the running contact total by creation month.
func (s Stats) GrowthSeries() Series {
	d := Series{Kind: KindLine, Title: "Address book size"}
	total := 0
	for _, m := range s.Months {
		total += m.N
		d.Labels = append(d.Labels, m.Label)
		d.Values = append(d.Values, float64(total))
	}
	return d
}

// RenderPNG renders a series to PNG bytes at the given dimensions.
func RenderPNG(d Series, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	if len(d.Values) == 0 {
		return nil, fmt.Errorf("chart %q has no data", d.Title)
	}

	switch d.Kind {
	case KindBar:
		return renderBar(d, width, height)
	case KindLine:
		return renderLine(d, width, height)
	case KindPie:
		return renderPie(d, width, height)
	default:
		return nil, fmt.Errorf("unsupported chart type: %q", d.Kind)
	}
}

// RenderTextTable formats a series as a box-drawn table for terminals that
// do not support inline images.
func RenderTextTable(d Series) string {
	if len(d.Labels) == 0 || len(d.Values) == 0 {
		return ""
	}

	count := len(d.Labels)
	if len(d.Values) < count {
		count = len(d.Values)
	}

	maxLabel, maxValue := 1, 1
	valueStrs := make([]string, count)
	for i := 0; i < count; i++ {
		if w := ansi.StringWidth(d.Labels[i]); w > maxLabel {
			maxLabel = w
		}
		valueStrs[i] = formatValue(d.Values[i])
		if len(valueStrs[i]) > maxValue {
			maxValue = len(valueStrs[i])
		}
	}

	var b strings.Builder
	if d.Title != "" {
		b.WriteString("  " + d.Title + "\n")
	}
	b.WriteString(fmt.Sprintf("  ┌%s┬%s┐\n",
		strings.Repeat("─", maxLabel+2),
		strings.Repeat("─", maxValue+2)))
	for i := 0; i < count; i++ {
		pad := strings.Repeat(" ", maxLabel-ansi.StringWidth(d.Labels[i]))
		b.WriteString(fmt.Sprintf("  │ %s%s │ %*s │\n", d.Labels[i], pad, maxValue, valueStrs[i]))
	}
	b.WriteString(fmt.Sprintf("  └%s┴%s┘",
		strings.Repeat("─", maxLabel+2),
		strings.Repeat("─", maxValue+2)))

	return b.String()
}

// formatValue formats a float64 for display, omitting decimal places for integers.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func renderBar(d Series, width, height int) ([]byte, error) {
	values := make([]float64, len(d.Values))
	copy(values, d.Values)

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(d.Title),
		charts.XAxisLabelsOptionFunc(d.Labels),
		charts.DimensionsOptionFunc(width, height),
		charts.PNGOutputOptionFunc(),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering bar chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding bar chart PNG: %w", err)
	}
	return buf, nil
}

func renderLine(d Series, width, height int) ([]byte, error) {
	values := make([]float64, len(d.Values))
	copy(values, d.Values)

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(d.Title),
		charts.XAxisLabelsOptionFunc(d.Labels),
		charts.DimensionsOptionFunc(width, height),
		charts.PNGOutputOptionFunc(),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering line chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding line chart PNG: %w", err)
	}
	return buf, nil
}

func renderPie(d Series, width, height int) ([]byte, error) {
	values := make([]float64, len(d.Values))
	copy(values, d.Values)

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(d.Title),
		charts.LegendLabelsOptionFunc(d.Labels),
		charts.DimensionsOptionFunc(width, height),
		charts.PNGOutputOptionFunc(),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering pie chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding pie chart PNG: %w", err)
	}
	return buf, nil
}
