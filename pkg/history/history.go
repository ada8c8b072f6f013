// Package history keeps an append-only ledger of imports, exports and
// shares. Entries are markdown files with YAML front matter, organized by
// type subdirectory. The ledger never leaves the local machine.
package history

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jcadam/vaultkey/pkg/slug"
	"gopkg.in/yaml.v3"
)

// Entry types for the ledger.
const (
	TypeImport = "import"
	TypeExport = "export"
	TypeShare  = "share"
)

var entryTypes = []string{TypeImport, TypeExport, TypeShare}

// Entry is a single item in the ledger.
type Entry struct {
	ID        string    `yaml:"-"`
	Type      string    `yaml:"type"` // import | export | share
	Label     string    `yaml:"label"`
	Format    string    `yaml:"format,omitempty"`
	Count     int       `yaml:"count"`
	Warnings  int       `yaml:"warnings,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
	Content   string    `yaml:"-"`
}

// Ledger manages the history ledger stored on disk.
type Ledger struct {
	root string
	mu   sync.Mutex
}

// NewLedger creates a ledger rooted at the given directory.
func NewLedger(root string) (*Ledger, error) {
	for _, t := range entryTypes {
		if err := os.MkdirAll(filepath.Join(root, t+"s"), 0o700); err != nil {
			return nil, fmt.Errorf("creating history directory %s: %w", t+"s", err)
		}
	}
	return &Ledger{root: root}, nil
}

// Append writes an entry to disk as a markdown file with YAML front matter.
// If a file with the same timestamp and slug already exists, an incrementing
// index (-2, -3, etc.) is appended to avoid collisions.
func (l *Ledger) Append(e Entry) error {
	if !knownType(e.Type) {
		return fmt.Errorf("unknown history entry type %q", e.Type)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	front, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling history entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := e.Timestamp.Format("2006-01-02T150405")
	nameSlug := slug.Sanitize(e.Label)
	dir := filepath.Join(l.root, e.Type+"s")

	filename := fmt.Sprintf("%s-%s.md", ts, nameSlug)
	path := filepath.Join(dir, filename)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		filename = fmt.Sprintf("%s-%s-%d.md", ts, nameSlug, i)
		path = filepath.Join(dir, filename)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n\n")
	b.WriteString(e.Content)

	return os.WriteFile(path, b.Bytes(), 0o600)
}

// List returns entries of the given type, newest first, up to limit. An
// empty type lists every type. If limit <= 0, all entries are returned.
func (l *Ledger) List(entryType string, limit int) ([]Entry, error) {
	types := entryTypes
	if entryType != "" {
		if !knownType(entryType) {
			return nil, fmt.Errorf("unknown history entry type %q", entryType)
		}
		types = []string{entryType}
	}

	var entries []Entry
	for _, t := range types {
		got, err := l.readDir(t)
		if err != nil {
			return nil, err
		}
		entries = append(entries, got...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Search returns entries whose label or content contains query
// (case-insensitive), newest first.
func (l *Ledger) Search(query string) ([]Entry, error) {
	all, err := l.List("", 0)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Label), q) || strings.Contains(strings.ToLower(e.Content), q) {
			out = append(out, e)
		}
	}
	return out, nil
}

// TypeStats holds aggregate statistics for one entry type.
type TypeStats struct {
	Entries  int
	Contacts int
	Latest   time.Time
}

// Stats returns per-type totals: how many entries and how many contacts
// they moved.
func (l *Ledger) Stats() (map[string]TypeStats, error) {
	stats := make(map[string]TypeStats)
	for _, t := range entryTypes {
		entries, err := l.readDir(t)
		if err != nil {
			return nil, err
		}
		var ts TypeStats
		for _, e := range entries {
			ts.Entries++
			ts.Contacts += e.Count
			if e.Timestamp.After(ts.Latest) {
				ts.Latest = e.Timestamp
			}
		}
		if ts.Entries > 0 {
			stats[t] = ts
		}
	}
	return stats, nil
}

func (l *Ledger) readDir(entryType string) ([]Entry, error) {
	dir := filepath.Join(l.root, entryType+"s")
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, parseEntry(string(data), f.Name(), entryType))
	}
	return entries, nil
}

func knownType(t string) bool {
	for _, known := range entryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// parseEntry extracts an Entry from raw file content and filename. Files
// without valid front matter keep the directory type and carry the whole
// file as content.
func parseEntry(raw, filename, entryType string) Entry {
	e := Entry{ID: filename, Type: entryType}

	if !strings.HasPrefix(raw, "---\n") {
		e.Content = strings.TrimSpace(raw)
		return e
	}
	end := strings.Index(raw[4:], "\n---\n")
	if end < 0 {
		e.Content = strings.TrimSpace(raw[4:])
		return e
	}

	front := raw[4 : 4+end+1]
	e.Content = strings.TrimSpace(raw[4+end+5:])
	if err := yaml.Unmarshal([]byte(front), &e); err != nil {
		e.Type = entryType
	}
	e.ID = filename
	return e
}
