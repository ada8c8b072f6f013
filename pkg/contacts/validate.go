package contacts

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^\+?\d{7,15}$`)
	phoneFormatting = regexp.MustCompile(`[\s\-()]`)
	nonDialable     = regexp.MustCompile(`[^\d+]`)
	urlPattern      = regexp.MustCompile(`^(https?://)?(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)
	indiaMobile     = regexp.MustCompile(`^[6-9]\d{9}$`)
	tenDigits       = regexp.MustCompile(`^\d{10}$`)
)

// ValidEmail reports whether s looks like an email address. Empty is valid.
func ValidEmail(s string) bool {
	return s == "" || emailPattern.MatchString(s)
}

// ValidPhone reports whether s holds 7 to 15 digits with an optional
// leading '+', ignoring spaces, dashes and parentheses. Empty is valid.
func ValidPhone(s string) bool {
	return s == "" || phonePattern.MatchString(phoneFormatting.ReplaceAllString(s, ""))
}

// ValidURL reports whether s has a dotted domain, with or without an http
// or https scheme. Empty is valid.
func ValidURL(s string) bool {
	return s == "" || urlPattern.MatchString(s)
}

// FormatPhone pretty-prints Indian and North American numbers. Anything it
// does not recognise is returned unchanged.
func FormatPhone(s string) string {
	clean := nonDialable.ReplaceAllString(s, "")
	switch {
	case strings.HasPrefix(clean, "+91") && len(clean) == 13:
		return "+91 " + clean[3:8] + " " + clean[8:]
	case indiaMobile.MatchString(clean):
		return clean[:5] + " " + clean[5:]
	case strings.HasPrefix(clean, "+1") && len(clean) == 12:
		return "+1 (" + clean[2:5] + ") " + clean[5:8] + "-" + clean[8:]
	case tenDigits.MatchString(clean):
		return "(" + clean[:3] + ") " + clean[3:6] + "-" + clean[6:]
	}
	return s
}

// EnsureURLProtocol prefixes https:// when s has no scheme.
func EnsureURLProtocol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + s
}

// FieldError describes one invalid field of a contact.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every field problem found by Validate.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid contact: " + strings.Join(msgs, "; ")
}

// Validate checks a contact entered by hand. It returns a ValidationError
// listing every problem, or nil.
func (c Contact) Validate() error {
	var errs ValidationError
	if strings.TrimSpace(c.FirstName) == "" {
		errs = append(errs, FieldError{"firstName", "first name is required"})
	}
	for i, e := range c.Emails {
		if !ValidEmail(e.Value) {
			errs = append(errs, FieldError{fmt.Sprintf("emails[%d]", i), fmt.Sprintf("invalid email address %q", e.Value)})
		}
	}
	for i, p := range c.Phones {
		if !ValidPhone(p.Value) {
			errs = append(errs, FieldError{fmt.Sprintf("phones[%d]", i), fmt.Sprintf("invalid phone number %q", p.Value)})
		}
	}
	if !ValidURL(c.Website) {
		errs = append(errs, FieldError{"website", fmt.Sprintf("invalid URL %q", c.Website)})
	}
	for i, f := range c.CustomFields {
		if strings.TrimSpace(f.Label) == "" && f.Value != "" {
			errs = append(errs, FieldError{fmt.Sprintf("customFields[%d]", i), "label is required"})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Normalize tidies a hand-entered contact: trims names, formats phone
// numbers, drops empty list entries and gives new entries ids.
func (c *Contact) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now().UTC()
	}

	c.Emails = compactValues(c.Emails, strings.TrimSpace)
	c.Phones = compactValues(c.Phones, FormatPhone)

	fields := c.CustomFields[:0]
	for _, f := range c.CustomFields {
		if strings.TrimSpace(f.Label) == "" && strings.TrimSpace(f.Value) == "" {
			continue
		}
		if f.ID == "" {
			f.ID = newID()
		}
		fields = append(fields, f)
	}
	c.CustomFields = fields
	c.ensureLists()
}

func compactValues(vs []LabeledValue, format func(string) string) []LabeledValue {
	out := vs[:0]
	for _, v := range vs {
		v.Value = strings.TrimSpace(v.Value)
		if v.Value == "" {
			continue
		}
		v.Value = format(v.Value)
		if v.ID == "" {
			v.ID = newID()
		}
		if v.Label == "" {
			v.Label = LabelOther
		}
		out = append(out, v)
	}
	return out
}
