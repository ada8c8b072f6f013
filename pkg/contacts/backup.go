package contacts

import (
	"encoding/json"
	"fmt"
)

// Backup is the JSON backup document: {"contacts": [...]}.
type Backup struct {
	Contacts []Contact `json:"contacts"`
}

// EncodeBackup renders contacts as a pretty-printed JSON backup.
func EncodeBackup(cs []Contact) ([]byte, error) {
	out := Backup{Contacts: make([]Contact, 0, len(cs))}
	for _, c := range cs {
		c = c.Clone()
		c.ensureLists()
		out.Contacts = append(out.Contacts, c)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	return append(data, '\n'), nil
}

// legacyRecord accepts both the current record shape and the older one
// with a single phone/email string.
type legacyRecord struct {
	Contact
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// importRecord is a legacyRecord whose id and createdAt are ignored:
// imported contacts always get fresh ones, so malformed source values
// must not fail the record.
type importRecord struct {
	legacyRecord
	ID        json.RawMessage `json:"id,omitempty"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
}

// DecodeRecordJSON decodes one stored record, migrating the legacy
// single phone/email shape.
func DecodeRecordJSON(data []byte) (Contact, error) {
	var rec legacyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Contact{}, fmt.Errorf("decoding contact record: %w", err)
	}
	MigrateLegacy(&rec.Contact, rec.Phone, rec.Email)
	return rec.Contact, nil
}

// DecodeBackup parses a JSON backup. A syntax error or a document without
// a "contacts" array yields ErrUnparseable. Elements that are not valid
// contact objects are skipped with a warning. Every returned contact has a
// fresh id, CreatedAt and list-entry ids.
func DecodeBackup(data []byte) ([]Contact, []string, error) {
	var doc struct {
		Contacts *[]json.RawMessage `json:"contacts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if doc.Contacts == nil {
		return nil, nil, fmt.Errorf("%w: no contacts array", ErrUnparseable)
	}

	var contacts []Contact
	var warnings []string
	for i, raw := range *doc.Contacts {
		var rec importRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping contact %d: %v", i+1, err))
			continue
		}
		c := rec.Contact
		MigrateLegacy(&c, rec.Phone, rec.Email)
		contacts = append(contacts, Refresh(c))
	}
	return contacts, warnings, nil
}

// Refresh returns a copy of c treated as a new entity: a fresh id,
// CreatedAt, and list-entry ids.
func Refresh(c Contact) Contact {
	c = c.Clone()
	c.ID = newID()
	c.CreatedAt = now().UTC()
	for i := range c.Emails {
		c.Emails[i].ID = newID()
	}
	for i := range c.Phones {
		c.Phones[i].ID = newID()
	}
	for i := range c.CustomFields {
		c.CustomFields[i].ID = newID()
	}
	c.ensureLists()
	return c
}
