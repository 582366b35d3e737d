package store

import (
	"fmt"
	"path/filepath"
)

// Dataset file names inside the data directory.
const (
	FlatFileName   = "customers.dat"
	JSONFileName   = "records.json"
	SqliteFileName = "records.db"
)

// Backends lists the names accepted by New.
var Backends = []string{"flat", "json", "sqlite", "memory"}

// New creates a Backend based on the backend name.
//
// Supported backends:
//
//	"flat"   - fixed-width binary records in dataDir/customers.dat (default)
//	"json"   - JSON array in dataDir/records.json
//	"sqlite" - SQLite database at dataDir/records.db
//	"memory" - In-memory (ephemeral, for testing)
func New(backend, dataDir string) (Backend, error) {
	switch backend {
	case "flat", "":
		return NewFlatFileBackend(filepath.Join(dataDir, FlatFileName)), nil
	case "json":
		return NewJSONFileBackend(filepath.Join(dataDir, JSONFileName)), nil
	case "sqlite":
		return NewSqliteBackend(filepath.Join(dataDir, SqliteFileName))
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: flat, json, sqlite, memory)", backend)
	}
}
