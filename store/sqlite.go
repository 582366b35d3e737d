package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/stevemurr/policyledger/policy"
)

// SqliteBackend stores the dataset in a single SQLite table.
//
// Tables:
//
//	records(position, id, name, age, policy_type, sum_insured, vehicle_age)  PRIMARY KEY (position)
//
// position keeps the store order; SaveAll rewrites the table in one transaction.
type SqliteBackend struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSqliteBackend(dbPath string) (*SqliteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		position INTEGER PRIMARY KEY,
		id INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		policy_type INTEGER NOT NULL,
		sum_insured REAL NOT NULL,
		vehicle_age INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteBackend{db: db}, nil
}

func (s *SqliteBackend) Close() error {
	return s.db.Close()
}

func (s *SqliteBackend) LoadAll() ([]policy.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT id, name, age, policy_type, sum_insured, vehicle_age
		FROM records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []policy.Record
	for rows.Next() {
		var r policy.Record
		var typ int
		if err := rows.Scan(&r.ID, &r.Name, &r.Age, &typ, &r.SumInsured, &r.VehicleAge); err != nil {
			return nil, err
		}
		r.Type = policy.Type(typ)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SqliteBackend) SaveAll(records []policy.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("%w: clear records: %v", ErrStorageUnavailable, err)
	}
	if len(records) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO records
			(position, id, name, age, policy_type, sum_insured, vehicle_age)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("%w: prepare insert: %v", ErrStorageUnavailable, err)
		}
		defer stmt.Close()
		for i, r := range records {
			if _, err := stmt.Exec(i, r.ID, r.Name, r.Age, int(r.Type), r.SumInsured, r.VehicleAge); err != nil {
				return fmt.Errorf("%w: insert id %d: %v", ErrStorageUnavailable, r.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorageUnavailable, err)
	}
	return nil
}
