// Package store holds the record store and its persistence backends.
package store

import (
	"errors"
	"fmt"

	"github.com/stevemurr/policyledger/policy"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable is returned when the dataset cannot be opened
	// for writing. In-memory state is still valid.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCapacity is returned when adding a record would exceed the
	// configured record limit.
	ErrCapacity = errors.New("record capacity exceeded")
)

// PartialLoadError reports a dataset whose size is not a whole number of
// records. The records that were read in full are still returned alongside it.
type PartialLoadError struct {
	Recovered      int
	DiscardedBytes int64
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("partial load: recovered %d records, discarded %d trailing bytes", e.Recovered, e.DiscardedBytes)
}

// Backend is the interface that all persistence backends must implement.
// The dataset is always read and written as a whole.
type Backend interface {
	// LoadAll returns every persisted record in order. A missing dataset
	// yields no records and no error.
	LoadAll() ([]policy.Record, error)

	// SaveAll replaces the persisted dataset with records. An empty slice
	// removes the dataset.
	SaveAll(records []policy.Record) error

	// Close releases any resources held by the backend.
	Close() error
}
