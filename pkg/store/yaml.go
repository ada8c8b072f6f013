package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"gopkg.in/yaml.v3"
)

// storedRecord is the on-disk YAML shape. The legacy single phone/email
// keys are read so files written by older versions still load.
type storedRecord struct {
	contacts.Contact `yaml:",inline"`
	Phone            string `yaml:"phone,omitempty"`
	Email            string `yaml:"email,omitempty"`
}

// YAMLStore keeps one YAML file per contact, named by contact id.
type YAMLStore struct {
	mu  sync.Mutex
	dir string
}

// NewYAMLStore creates a YAMLStore rooted at dir, creating the directory if
// needed.
func NewYAMLStore(dir string) (*YAMLStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating contacts directory: %w", err)
	}
	return &YAMLStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *YAMLStore) Dir() string {
	return s.dir
}

// GetAll returns every readable contact sorted by creation time. Files that
// fail to parse are skipped.
func (s *YAMLStore) GetAll(ctx context.Context) ([]contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing contacts: %w", err)
	}

	var all []contacts.Contact
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		all = append(all, c)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

// Get reads one contact by id.
func (s *YAMLStore) Get(ctx context.Context, id string) (contacts.Contact, error) {
	path, err := s.path(id)
	if err != nil {
		return contacts.Contact{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(path)
	if os.IsNotExist(err) {
		return contacts.Contact{}, fmt.Errorf("%w: %s", contacts.ErrNotFound, id)
	}
	return c, err
}

// Put writes a contact, replacing any existing file with the same id. The
// file is written to a temporary name and renamed into place.
func (s *YAMLStore) Put(ctx context.Context, c contacts.Contact) error {
	path, err := s.path(c.ID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(storedRecord{Contact: c})
	if err != nil {
		return fmt.Errorf("marshaling contact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing contact %s: %w", c.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing contact %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes a contact file by id.
func (s *YAMLStore) Delete(ctx context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", contacts.ErrNotFound, id)
		}
		return fmt.Errorf("removing contact %s: %w", id, err)
	}
	return nil
}

// Close is a no-op; it exists so both backends share a lifecycle.
func (s *YAMLStore) Close() error {
	return nil
}

func (s *YAMLStore) path(id string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("invalid contact id %q", id)
	}
	return filepath.Join(s.dir, id+".yaml"), nil
}

func (s *YAMLStore) read(path string) (contacts.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contacts.Contact{}, err
	}
	var rec storedRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return contacts.Contact{}, fmt.Errorf("parsing contact %s: %w", filepath.Base(path), err)
	}
	if rec.ID == "" {
		rec.ID = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	contacts.MigrateLegacy(&rec.Contact, rec.Phone, rec.Email)
	return rec.Contact, nil
}

// validID accepts ids that are safe as a bare file name.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
