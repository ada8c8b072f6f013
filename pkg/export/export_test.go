package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/render"
)

var exportNow = time.Date(2024, 7, 9, 8, 30, 0, 0, time.UTC)

func exportFixture() []contacts.Contact {
	return []contacts.Contact{
		{
			ID:        "c1",
			FirstName: "Jane",
			LastName:  "Doe",
			Company:   "Acme <Labs>",
			Photo:     "data:image/jpeg;base64,QUJD",
			Emails:    []contacts.LabeledValue{{ID: "e1", Label: contacts.LabelWork, Value: "jane@acme.example"}},
			Phones:    []contacts.LabeledValue{{ID: "p1", Label: contacts.LabelMobile, Value: "555-0100"}},
			Website:   "acme.example",
			CustomFields: []contacts.CustomField{
				{ID: "f1", Label: "Door code", Value: "4711", IsSensitive: true},
			},
			CreatedAt: exportNow.Add(-time.Hour),
		},
		{ID: "c2", FirstName: "John", LastName: "Roe", CreatedAt: exportNow},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"vcf": FormatVCF, "vCard": FormatVCF, "": FormatVCF, ".json": FormatJSON,
		"backup": FormatJSON, "HTML": FormatHTML, "htm": FormatHTML,
	} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestDefaultName(t *testing.T) {
	tests := map[Format]string{
		FormatVCF:  "vaultkey_contacts_2024-07-09.vcf",
		FormatJSON: "vaultkey_backup_2024-07-09.json",
		FormatHTML: "vaultkey_contacts_2024-07-09.html",
	}
	for f, want := range tests {
		if got := DefaultName(f, exportNow); got != want {
			t.Errorf("DefaultName(%s): got %q, want %q", f, got, want)
		}
	}
}

func TestRenderVCF(t *testing.T) {
	out, err := Render(FormatVCF, exportFixture(), Options{Now: exportNow, IncludePhoto: true})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Count(s, "BEGIN:VCARD") != 2 || !strings.HasSuffix(s, "END:VCARD\n") {
		t.Errorf("unexpected document:\n%s", s)
	}
	if !strings.Contains(s, "PHOTO;ENCODING=b;TYPE=JPEG:QUJD") {
		t.Error("photo should be embedded")
	}
	if !strings.Contains(s, "REV:20240709T083000Z") {
		t.Error("REV should come from Options.Now")
	}

	decoded, warnings := contacts.DecodeVCard(out)
	if len(decoded) != 2 || len(warnings) != 0 {
		t.Errorf("export should decode back: %d contacts, warnings %v", len(decoded), warnings)
	}

	noPhoto, _ := Render(FormatVCF, exportFixture(), Options{Now: exportNow})
	if strings.Contains(string(noPhoto), "PHOTO") {
		t.Error("photo must be omitted unless requested")
	}
}

func TestRenderVCFEmpty(t *testing.T) {
	out, err := Render(FormatVCF, nil, Options{Now: exportNow})
	if err != nil || len(out) != 0 {
		t.Errorf("got %q, %v", out, err)
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(FormatJSON, exportFixture(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Contacts []map[string]any `json:"contacts"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if len(doc.Contacts) != 2 || doc.Contacts[0]["firstName"] != "Jane" {
		t.Errorf("got %+v", doc.Contacts)
	}
	if !strings.Contains(string(out), `"value": "4711"`) {
		t.Error("backups keep sensitive values")
	}
}

func TestHTML(t *testing.T) {
	page, err := HTML(exportFixture(), Options{Now: exportNow, IncludePhoto: true, Title: "Team <A>"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Team &lt;A&gt;</title>",
		"<h2>Jane Doe</h2>",
		"<h2>John Roe</h2>",
		"2 contacts · exported 2024-07-09",
		`<img src="data:image/jpeg;base64,QUJD" alt="Jane Doe">`,
		`<a href="mailto:jane@acme.example">jane@acme.example</a>`,
		`<a href="https://acme.example">https://acme.example</a>`,
		"Acme &lt;Labs&gt;",
		render.MaskGlyphs,
		"<hr>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("missing %q in:\n%s", want, page)
		}
	}
	if strings.Contains(page, "4711") {
		t.Error("sensitive value leaked into masked export")
	}
	if strings.Contains(page, "<Labs>") {
		t.Error("company name must be escaped")
	}
}

func TestHTMLReveal(t *testing.T) {
	page, err := HTML(exportFixture(), Options{Now: exportNow, Reveal: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, "4711") {
		t.Error("revealed export should carry the sensitive value")
	}
	if strings.Contains(page, "<img") {
		t.Error("photos are embedded only on request")
	}
}

func TestMarkdownSingular(t *testing.T) {
	md := Markdown(exportFixture()[:1], Options{Now: exportNow})
	if !strings.Contains(md, "1 contact · exported") {
		t.Errorf("got:\n%s", md)
	}
	if strings.Contains(md, "---") {
		t.Error("single contact needs no separator")
	}
}
