package contacts

import (
	"strings"

	"github.com/google/uuid"
)

// newID returns a fresh record or list-entry identifier.
func newID() string {
	return uuid.NewString()
}

// builder accumulates decoded properties for one entry before the record
// is validated and frozen into a Contact. Scalar fields are last-wins;
// list fields append.
type builder struct {
	fullName   string
	structured string // N value, "Last;First;..."
	hasN       bool

	firstName  string
	lastName   string
	nickname   string
	company    string
	department string
	position   string
	address    string
	website    string
	birthday   string
	notes      string
	photo      string

	emails []LabeledValue
	phones []LabeledValue
	custom []CustomField
}

func (b *builder) addEmail(label Label, value string) {
	b.emails = append(b.emails, LabeledValue{ID: newID(), Label: label, Value: value})
}

func (b *builder) addPhone(label Label, value string) {
	b.phones = append(b.phones, LabeledValue{ID: newID(), Label: label, Value: value})
}

func (b *builder) addCustom(label, value string, sensitive bool) {
	b.custom = append(b.custom, CustomField{ID: newID(), Label: label, Value: value, IsSensitive: sensitive})
}

// resolveName fills firstName/lastName from the structured N value when one
// was seen, otherwise (or when N holds only empty components) from the
// formatted FN value.
func (b *builder) resolveName() {
	if b.firstName != "" || b.lastName != "" {
		return
	}
	if b.hasN {
		parts := splitComponents(b.structured)
		b.lastName = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			b.firstName = strings.TrimSpace(parts[1])
		}
	}
	if b.firstName == "" && b.lastName == "" && b.fullName != "" {
		b.firstName, b.lastName = splitFullName(b.fullName)
	}
}

// emittable reports whether the entry carries enough identifying data to
// be kept: a name, an email, a phone, or a company.
func (b *builder) emittable() bool {
	return b.firstName != "" || b.lastName != "" ||
		len(b.emails) > 0 || len(b.phones) > 0 || b.company != ""
}

// build freezes the builder into a Contact with a fresh id and CreatedAt.
// It returns false when the emission filter rejects the entry.
func (b *builder) build() (Contact, bool) {
	b.resolveName()
	if !b.emittable() {
		return Contact{}, false
	}
	first := b.firstName
	if first == "" {
		first = "Unknown"
	}
	birthday := b.birthday
	if len(birthday) > 10 {
		birthday = birthday[:10]
	}
	c := Contact{
		ID:           newID(),
		FirstName:    first,
		LastName:     b.lastName,
		Nickname:     b.nickname,
		Photo:        b.photo,
		Emails:       b.emails,
		Phones:       b.phones,
		Position:     b.position,
		Department:   b.department,
		Company:      b.company,
		Address:      b.address,
		Website:      b.website,
		Birthday:     birthday,
		Notes:        b.notes,
		CustomFields: b.custom,
		CreatedAt:    now().UTC(),
	}
	c.ensureLists()
	return c, true
}

// splitFullName splits a formatted name on spaces: the last token is the
// last name, the rest joined back is the first name. A single token is
// a first name only.
func splitFullName(full string) (first, last string) {
	parts := strings.Split(strings.TrimSpace(full), " ")
	if len(parts) > 1 {
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
	return parts[0], ""
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
