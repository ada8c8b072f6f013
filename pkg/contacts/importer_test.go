package contacts

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jcadam/vaultkey/pkg/debug"
)

// memStore is an in-memory Store that records Put order.
type memStore struct {
	byID    map[string]Contact
	order   []string
	failOn  int // 1-based Put call that fails; 0 never fails
	putCall int
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]Contact{}}
}

func (m *memStore) GetAll(ctx context.Context) ([]Contact, error) {
	out := make([]Contact, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *memStore) Put(ctx context.Context, c Contact) error {
	m.putCall++
	if m.failOn != 0 && m.putCall == m.failOn {
		return errors.New("disk full")
	}
	if _, ok := m.byID[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.byID[c.ID] = c
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"contacts.vcf", FormatVCard},
		{"Contacts.VCARD", FormatVCard},
		{"export.csv", FormatCSV},
		{"list.TXT", FormatCSV},
		{"backup.json", FormatJSON},
		{"noextension", FormatJSON},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.name); got != tt.want {
			t.Errorf("DetectFormat(%q): got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeLegacyJSON(t *testing.T) {
	data := `{"contacts":[{"firstName":"A","phone":"123","email":"a@b.com"}]}`

	b, err := Decode("backup.json", []byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(b.Contacts))
	}
	c := b.Contacts[0]
	if len(c.Phones) != 1 || c.Phones[0].Label != LabelMobile || c.Phones[0].Value != "123" {
		t.Errorf("Phones: got %+v", c.Phones)
	}
	if len(c.Emails) != 1 || c.Emails[0].Label != LabelWork || c.Emails[0].Value != "a@b.com" {
		t.Errorf("Emails: got %+v", c.Emails)
	}
	if c.CustomFields == nil {
		t.Error("CustomFields should be an empty list, not nil")
	}
}

func TestDecodeJSONKeepsExistingLists(t *testing.T) {
	data := `{"contacts":[{"firstName":"A","phone":"999",
		"phones":[{"id":"p1","label":"Home","value":"123"}],
		"emails":null,"email":"a@b.com"}]}`

	b, err := Decode("backup.json", []byte(data))
	if err != nil {
		t.Fatal(err)
	}
	c := b.Contacts[0]
	if len(c.Phones) != 1 || c.Phones[0].Value != "123" || c.Phones[0].Label != LabelHome {
		t.Errorf("Phones: got %+v, want the existing list", c.Phones)
	}
	if c.Phones[0].ID == "p1" {
		t.Error("list-entry ids should be re-minted")
	}
	if len(c.Emails) != 1 || c.Emails[0].Value != "a@b.com" {
		t.Errorf("null emails should migrate from email: got %+v", c.Emails)
	}
}

func TestDecodeJSONFreshIdentity(t *testing.T) {
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	data := `{"contacts":[
		{"id":"1","firstName":"A","createdAt":"2001-01-01T00:00:00Z"},
		{"id":"1","firstName":"B","createdAt":"not a date"}
	]}`

	b, err := Decode("backup.json", []byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(b.Contacts))
	}
	for _, c := range b.Contacts {
		if c.ID == "1" || c.ID == "" {
			t.Errorf("%s: expected a fresh id, got %q", c.FirstName, c.ID)
		}
		if !c.CreatedAt.Equal(fixed) {
			t.Errorf("%s: CreatedAt got %v, want %v", c.FirstName, c.CreatedAt, fixed)
		}
	}
	if b.Contacts[0].ID == b.Contacts[1].ID {
		t.Error("duplicate source ids must not collapse")
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"syntax", `{"contacts": [`, ErrUnparseable},
		{"no array", `{"people": []}`, ErrUnparseable},
		{"not an object", `[1,2,3]`, ErrUnparseable},
		{"empty array", `{"contacts": []}`, ErrNoContacts},
		{"all bad", `{"contacts": [42, "x"]}`, ErrNoContacts},
	}
	for _, tt := range tests {
		_, err := Decode("in.json", []byte(tt.data))
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestDecodeJSONSkipsBadElements(t *testing.T) {
	b, err := Decode("in.json", []byte(`{"contacts":[{"firstName":"Ok"}, 42, {"firstName": 7}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Contacts) != 1 || b.Contacts[0].FirstName != "Ok" {
		t.Errorf("got %+v", b.Contacts)
	}
	if len(b.Warnings) != 2 {
		t.Errorf("warnings: got %v, want two", b.Warnings)
	}
}

func TestDecodeEmptyVCardIsNoContacts(t *testing.T) {
	_, err := Decode("empty.vcf", []byte("nothing here"))
	if !errors.Is(err, ErrNoContacts) {
		t.Errorf("got %v, want ErrNoContacts", err)
	}
	_, err = Decode("empty.csv", []byte("first name\n"))
	if !errors.Is(err, ErrNoContacts) {
		t.Errorf("got %v, want ErrNoContacts", err)
	}
}

func TestImportPersistsInOrder(t *testing.T) {
	store := newMemStore()
	var logs bytes.Buffer
	im := &Importer{Store: store, Debug: debug.NewLogger(&logs)}

	vcf := "BEGIN:VCARD\nFN:First One\nEND:VCARD\n" +
		"BEGIN:VCARD\nFN:Second Two\nEND:VCARD\n" +
		"BEGIN:VCARD\nFN:Broken\n"

	res, err := im.Import(context.Background(), "friends.vcf", []byte(vcf))
	if err != nil {
		t.Fatal(err)
	}
	if res.Format != FormatVCard {
		t.Errorf("Format: got %q", res.Format)
	}
	if len(res.Imported) != 2 || len(res.Warnings) != 1 {
		t.Errorf("got %d imported, %d warnings", len(res.Imported), len(res.Warnings))
	}

	all, _ := store.GetAll(context.Background())
	if len(all) != 2 || all[0].FirstName != "First" || all[1].FirstName != "Second" {
		t.Errorf("store contents: got %+v", all)
	}
	if !strings.Contains(logs.String(), "decoded 2 contact(s)") {
		t.Errorf("expected debug output, got:\n%s", logs.String())
	}
}

func TestImportNeverMerges(t *testing.T) {
	store := newMemStore()
	im := &Importer{Store: store}
	data := []byte("first name,email\nJane,jane@x.com\n")

	for i := 0; i < 2; i++ {
		if _, err := im.Import(context.Background(), "a.csv", data); err != nil {
			t.Fatal(err)
		}
	}
	all, _ := store.GetAll(context.Background())
	if len(all) != 2 {
		t.Errorf("got %d contacts, want 2 (imports are never deduplicated)", len(all))
	}
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()

	im := &Importer{Store: newMemStore(), MaxFileSize: 10}
	if _, err := im.Import(ctx, "big.vcf", []byte(strings.Repeat("x", 11))); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("size guard: got %v", err)
	}

	im = &Importer{Store: newMemStore()}
	if _, err := im.Import(ctx, "bad.json", []byte("{oops")); !errors.Is(err, ErrUnparseable) {
		t.Errorf("unparseable: got %v", err)
	}
	if _, err := im.Import(ctx, "empty.json", []byte(`{"contacts":[]}`)); !errors.Is(err, ErrNoContacts) {
		t.Errorf("no contacts: got %v", err)
	}

	store := newMemStore()
	store.failOn = 2
	im = &Importer{Store: store}
	data := []byte("first name\nA\nB\nC\n")
	_, err := im.Import(ctx, "x.csv", data)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store failure, got %v", err)
	}
	if len(store.order) != 1 {
		t.Errorf("batch should stop at the failing Put: %d stored", len(store.order))
	}
}

func TestImportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemStore()
	im := &Importer{Store: store}
	_, err := im.Import(ctx, "a.csv", []byte("first name\nA\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(store.order) != 0 {
		t.Errorf("nothing should be stored, got %d", len(store.order))
	}
}
