package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcadam/vaultkey/pkg/contacts"
	_ "modernc.org/sqlite"
)

// createdLayout is fixed width so created_at sorts correctly as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps contacts as JSON documents in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	// One connection serialises writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialising sqlite store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_created ON contacts(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// GetAll returns every contact ordered by creation time. Rows whose JSON
// cannot be decoded are skipped.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]contacts.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM contacts ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var all []contacts.Contact
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("listing contacts: %w", err)
		}
		c, err := contacts.DecodeRecordJSON([]byte(data))
		if err != nil {
			continue
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return all, nil
}

// Get reads one contact by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (contacts.Contact, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM contacts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return contacts.Contact{}, fmt.Errorf("%w: %s", contacts.ErrNotFound, id)
	}
	if err != nil {
		return contacts.Contact{}, fmt.Errorf("reading contact %s: %w", id, err)
	}
	return contacts.DecodeRecordJSON([]byte(data))
}

// Put upserts a contact keyed by id.
func (s *SQLiteStore) Put(ctx context.Context, c contacts.Contact) error {
	if c.ID == "" {
		return fmt.Errorf("invalid contact id %q", c.ID)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling contact: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, data, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		c.ID, string(data), c.CreatedAt.UTC().Format(createdLayout))
	if err != nil {
		return fmt.Errorf("writing contact %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes a contact by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing contact %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", contacts.ErrNotFound, id)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
