// Package contacts holds the VaultKey contact record model and the
// interchange subsystem around it: vCard and CSV decoding, vCard encoding,
// JSON backups, and the import orchestrator that feeds a Store.
package contacts

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Label is a free-form category for an email or phone entry. The constants
// below are the well-known values used for defaulting and matching; any
// other string is a valid label.
type Label string

const (
	LabelMobile Label = "Mobile"
	LabelWork   Label = "Work"
	LabelHome   Label = "Home"
	LabelMain   Label = "Main"
	LabelFax    Label = "Fax"
	LabelOther  Label = "Other"
)

// LabeledValue is one entry of a multi-valued attribute (emails, phones).
type LabeledValue struct {
	ID    string `json:"id" yaml:"id"`
	Label Label  `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// CustomField is a free-form field not covered by the standard attributes.
// Sensitive fields are masked by the presentation layer.
type CustomField struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Value       string `json:"value" yaml:"value"`
	IsSensitive bool   `json:"isSensitive" yaml:"isSensitive"`
}

// Contact is the canonical contact record. Field names on the wire match
// the JSON backup format so backups interoperate across versions.
type Contact struct {
	ID           string         `json:"id" yaml:"id"`
	FirstName    string         `json:"firstName" yaml:"firstName"`
	LastName     string         `json:"lastName" yaml:"lastName"`
	Nickname     string         `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Photo        string         `json:"photo,omitempty" yaml:"photo,omitempty"` // data URI
	Emails       []LabeledValue `json:"emails" yaml:"emails"`
	Phones       []LabeledValue `json:"phones" yaml:"phones"`
	Position     string         `json:"position,omitempty" yaml:"position,omitempty"`
	Department   string         `json:"department,omitempty" yaml:"department,omitempty"`
	Company      string         `json:"company,omitempty" yaml:"company,omitempty"`
	Address      string         `json:"address,omitempty" yaml:"address,omitempty"`
	Website      string         `json:"website,omitempty" yaml:"website,omitempty"`
	Birthday     string         `json:"birthday,omitempty" yaml:"birthday,omitempty"` // YYYY-MM-DD
	Notes        string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	CustomFields []CustomField  `json:"customFields" yaml:"customFields"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"createdAt"`
}

// Store is the persistence collaborator. Put is an upsert keyed by ID.
type Store interface {
	GetAll(ctx context.Context) ([]Contact, error)
	Put(ctx context.Context, c Contact) error
	Delete(ctx context.Context, id string) error
}

// ErrNotFound is returned by stores and lookups when no contact matches.
var ErrNotFound = errors.New("contact not found")

// now is the clock used for CreatedAt stamps and vCard REV values.
var now = time.Now

// DisplayName returns "First Last" with surrounding whitespace trimmed.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PrimaryEmail returns the first email value, or "".
func (c Contact) PrimaryEmail() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0].Value
}

// PrimaryPhone returns the first phone value, or "".
func (c Contact) PrimaryPhone() string {
	if len(c.Phones) == 0 {
		return ""
	}
	return c.Phones[0].Value
}

// HasSensitive reports whether any custom field is flagged sensitive.
func (c Contact) HasSensitive() bool {
	for _, f := range c.CustomFields {
		if f.IsSensitive {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can edit without aliasing slices.
func (c Contact) Clone() Contact {
	out := c
	out.Emails = append([]LabeledValue(nil), c.Emails...)
	out.Phones = append([]LabeledValue(nil), c.Phones...)
	out.CustomFields = append([]CustomField(nil), c.CustomFields...)
	return out
}

// ensureLists replaces nil slices with empty ones so encoded records always
// carry arrays rather than null.
func (c *Contact) ensureLists() {
	if c.Emails == nil {
		c.Emails = []LabeledValue{}
	}
	if c.Phones == nil {
		c.Phones = []LabeledValue{}
	}
	if c.CustomFields == nil {
		c.CustomFields = []CustomField{}
	}
}

// MigrateLegacy converts the old single-string phone/email shape into
// one-element lists. Lists already present are left untouched.
func MigrateLegacy(c *Contact, phone, email string) {
	if c.Phones == nil && phone != "" {
		c.Phones = []LabeledValue{{ID: newID(), Label: LabelMobile, Value: phone}}
	}
	if c.Emails == nil && email != "" {
		c.Emails = []LabeledValue{{ID: newID(), Label: LabelWork, Value: email}}
	}
	c.ensureLists()
}
