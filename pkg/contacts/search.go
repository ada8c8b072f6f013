package contacts

import (
	"fmt"
	"sort"
	"strings"
)

// SortField selects the key Sort orders by.
type SortField string

const (
	SortByName    SortField = "name"
	SortByCompany SortField = "company"
	SortByCreated SortField = "created"
)

// ParseSortField validates a user-supplied sort key.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByName, SortByCompany, SortByCreated:
		return f, nil
	case "":
		return SortByName, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want name, company, or created)", s)
}

// Filter returns the contacts matching query, a case-insensitive substring
// over first name, last name, nickname, company and email addresses. An
// empty query matches everything.
func Filter(cs []Contact, query string) []Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Contact, 0, len(cs))
	for _, c := range cs {
		if q == "" || matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

// matches checks a contact against a lowercase query.
func matches(c Contact, q string) bool {
	for _, s := range []string{c.FirstName, c.LastName, c.Nickname, c.Company} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e.Value), q) {
			return true
		}
	}
	return false
}

// Sort orders cs in place. Name compares "first last" case-insensitively,
// company compares company names, created compares CreatedAt. Ties keep
// their input order.
func Sort(cs []Contact, field SortField, desc bool) {
	key := func(c Contact) string {
		switch field {
		case SortByCompany:
			return strings.ToLower(c.Company)
		default:
			return strings.ToLower(c.FirstName + " " + c.LastName)
		}
	}
	less := func(i, j int) bool {
		if field == SortByCreated {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return key(cs[i]) < key(cs[j])
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

// Lookup finds the best-matching contact for a user-supplied reference. It
// tries the id, then the display name: exact match, case-insensitive exact,
// prefix, then substring. Returns ErrNotFound if nothing matches.
func Lookup(cs []Contact, ref string) (Contact, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Contact{}, ErrNotFound
	}

	for _, c := range cs {
		if c.ID == ref {
			return c, nil
		}
	}
	for _, c := range cs {
		if c.DisplayName() == ref {
			return c, nil
		}
	}

	lower := strings.ToLower(ref)
	tiers := []func(name string) bool{
		func(name string) bool { return name == lower },
		func(name string) bool { return strings.HasPrefix(name, lower) },
		func(name string) bool { return strings.Contains(name, lower) },
	}
	for _, match := range tiers {
		for _, c := range cs {
			if match(strings.ToLower(c.DisplayName())) {
				return c, nil
			}
		}
	}
	return Contact{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
}
