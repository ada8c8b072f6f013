package contacts

import (
	"fmt"
	"strings"
)

// csvField is the record attribute a CSV column maps onto.
type csvField int

const (
	csvCustom csvField = iota
	csvFirstName
	csvLastName
	csvFullName
	csvEmail
	csvMobilePhone
	csvWorkPhone
	csvCompany
	csvDepartment
	csvPosition
	csvAddress
	csvWebsite
	csvBirthday
	csvNotes
	csvNickname
)

// csvSynonyms maps lower-cased header names to record attributes.
var csvSynonyms = map[string]csvField{
	"first name": csvFirstName, "firstname": csvFirstName, "given name": csvFirstName,
	"last name": csvLastName, "lastname": csvLastName, "family name": csvLastName, "surname": csvLastName,
	"name": csvFullName, "full name": csvFullName,
	"email": csvEmail, "e-mail": csvEmail,
	"phone": csvMobilePhone, "mobile": csvMobilePhone, "cell": csvMobilePhone,
	"work phone": csvWorkPhone, "business phone": csvWorkPhone,
	"company": csvCompany, "organization": csvCompany, "org": csvCompany,
	"department": csvDepartment, "dept": csvDepartment,
	"position": csvPosition, "title": csvPosition, "job title": csvPosition,
	"address": csvAddress, "street": csvAddress,
	"website": csvWebsite, "web": csvWebsite, "url": csvWebsite,
	"birthday": csvBirthday, "dob": csvBirthday,
	"notes": csvNotes, "note": csvNotes,
	"nickname": csvNickname,
}

// DecodeCSV parses header-driven CSV text. Header names are matched
// case-insensitively against fixed synonym tables; unmatched columns become
// custom fields. Rows shorter than the header, or without identifying data,
// are skipped and reported as warnings.
func DecodeCSV(data []byte) ([]Contact, []string) {
	rows := csvRecords(string(data))
	if len(rows) < 2 {
		return nil, nil
	}

	header := splitRow(rows[0])
	for i := range header {
		header[i] = strings.ToLower(header[i])
	}

	var contacts []Contact
	var warnings []string
	for n, line := range rows[1:] {
		row := splitRow(line)
		if len(row) < len(header) {
			warnings = append(warnings, fmt.Sprintf("skipping row %d: %d of %d columns", n+2, len(row), len(header)))
			continue
		}
		c, ok := decodeRow(header, row)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("skipping row %d: no name, email, phone, or company", n+2))
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, warnings
}

func decodeRow(header, row []string) (Contact, bool) {
	b := &builder{}
	var fullName string

	for i, h := range header {
		value := row[i]
		if value == "" {
			continue
		}
		field, known := csvSynonyms[h]
		if !known {
			b.addCustom(titleCase(h), value, false)
			continue
		}
		switch field {
		case csvFirstName:
			if b.firstName == "" {
				b.firstName = value
			}
		case csvLastName:
			b.lastName = value
		case csvFullName:
			if fullName == "" {
				fullName = value
			}
		case csvEmail:
			b.addEmail(LabelWork, value)
		case csvMobilePhone:
			b.addPhone(LabelMobile, value)
		case csvWorkPhone:
			b.addPhone(LabelWork, value)
		case csvCompany:
			b.company = value
		case csvDepartment:
			b.department = value
		case csvPosition:
			b.position = value
		case csvAddress:
			b.address = value
		case csvWebsite:
			b.website = value
		case csvBirthday:
			b.birthday = normalizeBirthday(value)
		case csvNotes:
			b.notes = value
		case csvNickname:
			b.nickname = value
		}
	}

	// A full-name column fills in whatever the split columns left empty.
	if b.firstName == "" && fullName != "" {
		first, last := splitFullName(fullName)
		b.firstName = first
		if b.lastName == "" {
			b.lastName = last
		}
	}
	return b.build()
}

// csvRecords splits text into non-blank records, one per physical line. A
// line that ends inside a quoted field is joined with the next line when
// that closes the field; otherwise it stays a record of its own, so a
// malformed row never swallows the rows after it.
func csvRecords(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var records []string
	for i := 0; i < len(lines); i++ {
		rec := lines[i]
		if _, open := scanRow(rec); open && i+1 < len(lines) {
			joined := rec + "\n" + lines[i+1]
			if _, stillOpen := scanRow(joined); !stillOpen {
				rec = joined
				i++
			}
		}
		if strings.TrimSpace(rec) != "" {
			records = append(records, rec)
		}
	}
	return records
}

// splitRow scans one record into trimmed fields.
func splitRow(line string) []string {
	fields, _ := scanRow(line)
	return fields
}

// scanRow splits a record on commas. A double quote opens a quoted field
// only at the start of a field, leading blanks allowed; anywhere else it is
// literal text. Inside a quoted field a doubled quote is a literal quote and
// commas do not separate. open reports whether the record ended inside a
// quoted field.
func scanRow(line string) (fields []string, open bool) {
	var cur strings.Builder
	atStart, inQuote := true, false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case inQuote && ch == '"' && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case inQuote && ch == '"':
			inQuote = false
		case inQuote:
			cur.WriteByte(ch)
		case ch == ',':
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
			atStart = true
		case ch == '"' && atStart:
			cur.Reset()
			inQuote, atStart = true, false
		default:
			cur.WriteByte(ch)
			if ch != ' ' && ch != '\t' {
				atStart = false
			}
		}
	}
	return append(fields, strings.TrimSpace(cur.String())), inQuote
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
