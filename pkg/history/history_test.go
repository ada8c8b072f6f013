package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	root := t.TempDir()
	l, err := NewLedger(root)
	if err != nil {
		t.Fatal(err)
	}
	return l, root
}

func TestDirectoryStructure(t *testing.T) {
	_, root := newTestLedger(t)
	for _, sub := range []string{"imports", "exports", "shares"} {
		if info, err := os.Stat(filepath.Join(root, sub)); err != nil || !info.IsDir() {
			t.Errorf("expected %s directory: %v", sub, err)
		}
	}
}

func TestAppendAndList(t *testing.T) {
	l, _ := newTestLedger(t)
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Type: TypeImport, Label: "friends.vcf", Format: "vcard", Count: 12, Warnings: 1, Timestamp: base, Content: "- skipping unterminated vCard entry"},
		{Type: TypeExport, Label: "vaultkey_contacts_2024-06-01.vcf", Format: "vcf", Count: 12, Timestamp: base.Add(time.Hour)},
		{Type: TypeShare, Label: "Jane Doe", Format: "qr", Count: 1, Timestamp: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		if err := l.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := l.List("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Type != TypeShare || all[2].Type != TypeImport {
		t.Errorf("expected newest first, got %s..%s", all[0].Type, all[2].Type)
	}

	imports, err := l.List(TypeImport, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(imports) != 1 {
		t.Fatalf("got %d imports, want 1", len(imports))
	}
	got := imports[0]
	if got.Label != "friends.vcf" || got.Format != "vcard" || got.Count != 12 || got.Warnings != 1 {
		t.Errorf("import entry: got %+v", got)
	}
	if !got.Timestamp.Equal(base) {
		t.Errorf("Timestamp: got %v, want %v", got.Timestamp, base)
	}
	if got.Content != "- skipping unterminated vCard entry" {
		t.Errorf("Content: got %q", got.Content)
	}
	if !strings.HasSuffix(got.ID, ".md") {
		t.Errorf("ID: got %q", got.ID)
	}

	limited, _ := l.List("", 2)
	if len(limited) != 2 {
		t.Errorf("limit: got %d, want 2", len(limited))
	}
}

func TestAppendUnknownType(t *testing.T) {
	l, _ := newTestLedger(t)
	if err := l.Append(Entry{Type: "report", Label: "x"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := l.List("report", 0); err == nil {
		t.Error("expected error listing unknown type")
	}
}

func TestAppendFilenameCollision(t *testing.T) {
	l, root := newTestLedger(t)
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := l.Append(Entry{Type: TypeImport, Label: "Same File", Timestamp: ts}); err != nil {
			t.Fatal(err)
		}
	}
	files, _ := os.ReadDir(filepath.Join(root, "imports"))
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	want := []string{
		"2024-01-01T120000-same-file-2.md",
		"2024-01-01T120000-same-file-3.md",
		"2024-01-01T120000-same-file.md",
	}
	for i, f := range files {
		if f.Name() != want[i] {
			t.Errorf("file %d: got %q, want %q", i, f.Name(), want[i])
		}
	}
}

func TestFileFormat(t *testing.T) {
	l, root := newTestLedger(t)
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	if err := l.Append(Entry{Type: TypeExport, Label: `odd: "label"`, Count: 2, Timestamp: ts, Content: "body"}); err != nil {
		t.Fatal(err)
	}

	files, _ := os.ReadDir(filepath.Join(root, "exports"))
	if len(files) != 1 {
		t.Fatalf("got %d files", len(files))
	}
	data, _ := os.ReadFile(filepath.Join(root, "exports", files[0].Name()))
	s := string(data)
	if !strings.HasPrefix(s, "---\ntype: export\n") {
		t.Errorf("unexpected front matter:\n%s", s)
	}
	if !strings.HasSuffix(s, "---\n\nbody") {
		t.Errorf("unexpected body:\n%s", s)
	}

	entries, _ := l.List(TypeExport, 0)
	if len(entries) != 1 || entries[0].Label != `odd: "label"` {
		t.Errorf("label with YAML metacharacters: got %+v", entries)
	}
}

func TestParseEntryWithoutFrontMatter(t *testing.T) {
	e := parseEntry("just text\n", "x.md", TypeShare)
	if e.Type != TypeShare || e.Content != "just text" {
		t.Errorf("got %+v", e)
	}

	e = parseEntry("---\nlabel: never closed\n", "y.md", TypeImport)
	if e.Type != TypeImport || e.Content != "label: never closed" {
		t.Errorf("unclosed: got %+v", e)
	}
}

func TestSearch(t *testing.T) {
	l, _ := newTestLedger(t)
	l.Append(Entry{Type: TypeImport, Label: "work.csv", Content: "row 3 skipped"})
	l.Append(Entry{Type: TypeExport, Label: "backup.json"})

	got, err := l.Search("SKIPPED")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Label != "work.csv" {
		t.Errorf("got %+v", got)
	}

	got, _ = l.Search("backup")
	if len(got) != 1 || got[0].Type != TypeExport {
		t.Errorf("got %+v", got)
	}
}

func TestStats(t *testing.T) {
	l, _ := newTestLedger(t)
	latest := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l.Append(Entry{Type: TypeImport, Label: "a", Count: 5, Timestamp: latest.Add(-time.Hour)})
	l.Append(Entry{Type: TypeImport, Label: "b", Count: 7, Timestamp: latest})

	stats, err := l.Stats()
	if err != nil {
		t.Fatal(err)
	}
	s, ok := stats[TypeImport]
	if !ok {
		t.Fatal("missing import stats")
	}
	if s.Entries != 2 || s.Contacts != 12 || !s.Latest.Equal(latest) {
		t.Errorf("got %+v", s)
	}
	if _, ok := stats[TypeExport]; ok {
		t.Error("exports should be absent when empty")
	}
}
