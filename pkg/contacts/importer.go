package contacts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jcadam/vaultkey/pkg/debug"
)

// Format identifies an import file encoding.
type Format string

const (
	FormatVCard Format = "vcard"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// DefaultMaxFileSize caps the size of a single import file.
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrUnparseable means the file could not be read as its format at all.
	ErrUnparseable = errors.New("failed to parse file")
	// ErrNoContacts means the file parsed but yielded no usable records.
	ErrNoContacts = errors.New("no valid contacts found in file")
	// ErrFileTooLarge means the file exceeds the configured import cap.
	ErrFileTooLarge = errors.New("file too large")
)

// DetectFormat picks a decoder from the file name extension. Anything that
// is not vCard or CSV is treated as a JSON backup.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".vcf", ".vcard":
		return FormatVCard
	case ".csv", ".txt":
		return FormatCSV
	}
	return FormatJSON
}

// Batch is the decoded content of one import file.
type Batch struct {
	Format   Format
	Contacts []Contact
	Warnings []string
}

// Decode sniffs the format of name and decodes data. The returned contacts
// all have fresh ids. An empty result is ErrNoContacts; a JSON document that
// cannot be parsed is ErrUnparseable.
func Decode(name string, data []byte) (*Batch, error) {
	b := &Batch{Format: DetectFormat(name)}

	switch b.Format {
	case FormatVCard:
		b.Contacts, b.Warnings = DecodeVCard(data)
	case FormatCSV:
		b.Contacts, b.Warnings = DecodeCSV(data)
	default:
		var err error
		b.Contacts, b.Warnings, err = DecodeBackup(data)
		if err != nil {
			return nil, err
		}
	}

	if len(b.Contacts) == 0 {
		return b, ErrNoContacts
	}
	return b, nil
}

// ImportResult reports the outcome of a completed import.
type ImportResult struct {
	Format   Format
	Imported []Contact
	Warnings []string
}

// Importer decodes import files and persists the result into a Store.
type Importer struct {
	Store       Store
	MaxFileSize int64 // zero means DefaultMaxFileSize
	Debug       *debug.Logger
}

// Import decodes data and appends every contact to the store, one Put at a
// time. Records are never merged with existing ones. The result is returned
// only after every Put succeeded; the first failing Put aborts the batch.
func (im *Importer) Import(ctx context.Context, name string, data []byte) (*ImportResult, error) {
	limit := im.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, name, len(data), limit)
	}

	im.Debug.Section("Import " + filepath.Base(name))
	im.Debug.Preview("input", data)

	batch, err := Decode(name, data)
	if batch != nil {
		im.Debug.Printf("format: %s, decoded %d contact(s)", batch.Format, len(batch.Contacts))
		for _, w := range batch.Warnings {
			im.Debug.Printf("warning: %s", w)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", name, err)
	}

	done := im.Debug.Timed("store")
	defer done()
	for i, c := range batch.Contacts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("importing %s: %w", name, err)
		}
		if err := im.Store.Put(ctx, c); err != nil {
			return nil, fmt.Errorf("saving contact %d (%s): %w", i+1, c.DisplayName(), err)
		}
	}

	return &ImportResult{
		Format:   batch.Format,
		Imported: batch.Contacts,
		Warnings: batch.Warnings,
	}, nil
}
