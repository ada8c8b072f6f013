package charts

import (
	"strings"
	"testing"
	"time"

	"github.com/jcadam/vaultkey/pkg/contacts"
)

func statsFixture() []contacts.Contact {
	may := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	return []contacts.Contact{
		{FirstName: "A", Company: "Acme", CreatedAt: may,
			Emails: []contacts.LabeledValue{{Label: contacts.LabelWork, Value: "a@acme.example"}},
			Phones: []contacts.LabeledValue{{Label: contacts.LabelMobile, Value: "1"}, {Label: contacts.LabelWork, Value: "2"}}},
		{FirstName: "B", Company: "Acme", CreatedAt: may, Photo: "data:image/jpeg;base64,AA",
			Phones: []contacts.LabeledValue{{Label: contacts.LabelMobile, Value: "3"}}},
		{FirstName: "C", Company: "Globex", CreatedAt: jun, Birthday: "1990-01-01",
			CustomFields: []contacts.CustomField{{Label: "PIN", Value: "1", IsSensitive: true}}},
		{FirstName: "D", CreatedAt: jun,
			Phones: []contacts.LabeledValue{{Value: "4"}}},
		{FirstName: "E", Company: "Initech"},
	}
}

func TestCompute(t *testing.T) {
	s := Compute(statsFixture())

	if s.Total != 5 || s.WithEmail != 1 || s.WithPhone != 3 || s.WithPhoto != 1 || s.WithBirthday != 1 || s.WithSensitive != 1 {
		t.Errorf("totals: got %+v", s)
	}
	wantCompanies := []Count{{"Acme", 2}, {"(none)", 1}, {"Globex", 1}, {"Initech", 1}}
	if len(s.Companies) != len(wantCompanies) {
		t.Fatalf("Companies: got %+v", s.Companies)
	}
	for i, c := range wantCompanies {
		if s.Companies[i] != c {
			t.Errorf("Companies[%d]: got %+v, want %+v", i, s.Companies[i], c)
		}
	}
	if len(s.PhoneLabels) != 3 || s.PhoneLabels[0] != (Count{"Mobile", 2}) {
		t.Errorf("PhoneLabels: got %+v", s.PhoneLabels)
	}
	if len(s.Months) != 2 || s.Months[0] != (Count{"2024-05", 2}) || s.Months[1] != (Count{"2024-06", 2}) {
		t.Errorf("Months: got %+v", s.Months)
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s.Total != 0 || len(s.Companies) != 0 {
		t.Errorf("got %+v", s)
	}
	if _, err := RenderPNG(s.GrowthSeries(), 0, 0); err == nil {
		t.Error("expected error charting no data")
	}
}

func TestCompanySeriesFoldsTail(t *testing.T) {
	d := Compute(statsFixture()).CompanySeries(2)
	if strings.Join(d.Labels, ",") != "Acme,(none),Other" {
		t.Errorf("Labels: got %v", d.Labels)
	}
	if d.Values[0] != 2 || d.Values[2] != 2 {
		t.Errorf("Values: got %v", d.Values)
	}

	all := Compute(statsFixture()).CompanySeries(0)
	if len(all.Labels) != 4 {
		t.Errorf("n=0 should keep every company, got %v", all.Labels)
	}
}

func TestGrowthSeriesIsCumulative(t *testing.T) {
	d := Compute(statsFixture()).GrowthSeries()
	if d.Kind != KindLine || len(d.Values) != 2 || d.Values[0] != 2 || d.Values[1] != 4 {
		t.Errorf("got %+v", d)
	}
}

func TestRenderPNG(t *testing.T) {
	s := Compute(statsFixture())
	for _, d := range []Series{s.CompanySeries(5), s.CompletenessSeries(), s.PhoneLabelSeries(), s.GrowthSeries()} {
		png, err := RenderPNG(d, 800, 400)
		if err != nil {
			t.Fatalf("RenderPNG %s: %v", d.Kind, err)
		}
		if len(png) < 8 || string(png[1:4]) != "PNG" {
			t.Errorf("%s: expected valid PNG header", d.Kind)
		}
	}
}

func TestRenderPNGUnsupportedType(t *testing.T) {
	d := Series{Kind: "radar", Title: "Unsupported", Labels: []string{"A"}, Values: []float64{1}}
	if _, err := RenderPNG(d, 800, 400); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestRenderTextTable(t *testing.T) {
	d := Series{
		Kind:   KindBar,
		Title:  "Contacts per company",
		Labels: []string{"Acme", "Müller GmbH"},
		Values: []float64{12, 1.5},
	}
	table := RenderTextTable(d)
	lines := strings.Split(table, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, two borders and two rows:\n%s", table)
	}
	if !strings.Contains(lines[0], "Contacts per company") {
		t.Error("expected title in table")
	}
	if lines[2] != "  │ Acme        │  12 │" {
		t.Errorf("row 1: got %q", lines[2])
	}
	if lines[3] != "  │ Müller GmbH │ 1.5 │" {
		t.Errorf("row 2 should align by display width: got %q", lines[3])
	}
}

func TestRenderTextTableEmpty(t *testing.T) {
	if table := RenderTextTable(Series{Kind: KindBar, Title: "Empty"}); table != "" {
		t.Error("expected empty string for no data")
	}
}
