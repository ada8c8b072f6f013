// Package store provides the persistence backends for VaultKey contacts:
// a YAML-file-per-contact directory and a single-file SQLite database.
// Both implement contacts.Store and key records by id.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/jcadam/vaultkey/pkg/contacts"
)

// Backend names accepted by Open.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Store is a contacts.Store that also holds resources to release.
type Store interface {
	contacts.Store
	Close() error
}

// Open returns the backend named by backend. An empty path means the
// default location under dataDir: contacts/ for YAML, contacts.db for
// SQLite.
func Open(backend, path, dataDir string) (Store, error) {
	switch backend {
	case "", BackendYAML:
		if path == "" {
			path = filepath.Join(dataDir, "contacts")
		}
		return NewYAMLStore(path)
	case BackendSQLite:
		if path == "" {
			path = filepath.Join(dataDir, "contacts.db")
		}
		return NewSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown store backend %q (want yaml or sqlite)", backend)
}
