package store

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/stevemurr/policyledger/logging"
	"github.com/stevemurr/policyledger/policy"
)

// LoadReport describes the outcome of Records.Load.
type LoadReport struct {
	Loaded         int
	Partial        bool
	DiscardedBytes int64
}

// Records is an ordered, in-memory collection of policy records backed by
// a Backend. Every mutation rewrites the whole dataset.
// Not safe for concurrent use.
type Records struct {
	backend    Backend
	log        *slog.Logger
	maxRecords int
	items      []policy.Record
}

// Option configures Records.
type Option func(*Records)

// WithLogger sets the logger. Defaults to logging.New("store").
func WithLogger(l *slog.Logger) Option {
	return func(r *Records) { r.log = l }
}

// WithMaxRecords caps the number of records Add accepts. n <= 0 means no cap.
func WithMaxRecords(n int) Option {
	return func(r *Records) { r.maxRecords = n }
}

// NewRecords returns an empty store over backend; call Load to fill it.
func NewRecords(backend Backend, opts ...Option) *Records {
	r := &Records{backend: backend}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logging.New("store")
	}
	return r
}

// Load replaces the in-memory sequence with the persisted dataset.
// A missing dataset leaves the store empty; a truncated one keeps the whole
// records and is reported, not returned as an error.
func (r *Records) Load() (LoadReport, error) {
	records, err := r.backend.LoadAll()
	var partial *PartialLoadError
	switch {
	case errors.As(err, &partial):
		r.log.Warn("partial dataset loaded",
			"recovered", partial.Recovered,
			"discarded_bytes", partial.DiscardedBytes,
		)
		r.items = records
		return LoadReport{Loaded: len(records), Partial: true, DiscardedBytes: partial.DiscardedBytes}, nil
	case err != nil:
		r.items = nil
		return LoadReport{}, fmt.Errorf("load records: %w", err)
	}
	r.items = records
	r.log.Debug("dataset loaded", "records", len(records))
	return LoadReport{Loaded: len(records)}, nil
}

// NextID returns one more than the largest id, or 1 for an empty store.
func (r *Records) NextID() int {
	maxID := 0
	for _, rec := range r.items {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return maxID + 1
}

// Add appends a new record built from f and persists. f.Type is required.
// A persist failure is returned but the record stays in memory.
func (r *Records) Add(f policy.Fields) (policy.Record, error) {
	if f.Type == nil {
		return policy.Record{}, fmt.Errorf("%w: missing", policy.ErrInvalidPolicyType)
	}
	if err := f.Validate(); err != nil {
		return policy.Record{}, err
	}
	if r.maxRecords > 0 && len(r.items) >= r.maxRecords {
		return policy.Record{}, fmt.Errorf("%w: limit %d", ErrCapacity, r.maxRecords)
	}
	id := r.NextID()
	if id > math.MaxInt32 {
		return policy.Record{}, fmt.Errorf("%w: id %d exceeds 32 bits", ErrCapacity, id)
	}

	rec := policy.Record{ID: id}
	f.Apply(&rec)
	r.items = append(r.items, rec)
	r.log.Debug("record added", "id", rec.ID, "type", rec.Type)
	return rec, r.persistAfter("add", rec.ID)
}

// FindByID returns the record with the given id.
func (r *Records) FindByID(id int) (policy.Record, error) {
	i := r.indexOf(id)
	if i < 0 {
		return policy.Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return r.items[i], nil
}

// Update overwrites the provided fields of record id and persists.
// An invalid policy type or out-of-range value leaves the record unchanged.
func (r *Records) Update(id int, f policy.Fields) (policy.Record, error) {
	i := r.indexOf(id)
	if i < 0 {
		return policy.Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err := f.Validate(); err != nil {
		return policy.Record{}, err
	}
	f.Apply(&r.items[i])
	rec := r.items[i]
	r.log.Debug("record updated", "id", id)
	return rec, r.persistAfter("update", id)
}

// Delete removes record id, closing the gap, and persists.
func (r *Records) Delete(id int) error {
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	r.items = slices.Delete(r.items, i, i+1)
	if len(r.items) == 0 {
		r.items = nil
	}
	r.log.Debug("record deleted", "id", id)
	return r.persistAfter("delete", id)
}

// List returns a copy of all records in store order.
func (r *Records) List() []policy.Record {
	return slices.Clone(r.items)
}

// Len returns the number of records.
func (r *Records) Len() int { return len(r.items) }

// Persist rewrites the whole dataset. An empty store removes it.
func (r *Records) Persist() error {
	if err := r.backend.SaveAll(r.items); err != nil {
		return fmt.Errorf("persist %d records: %w", len(r.items), err)
	}
	return nil
}

// Close persists one last time and releases the backend. Both steps run
// even if the first fails.
func (r *Records) Close() error {
	perr := r.Persist()
	if perr != nil {
		r.log.Warn("final persist failed", "error", perr)
	}
	return errors.Join(perr, r.backend.Close())
}

func (r *Records) persistAfter(op string, id int) error {
	err := r.Persist()
	if err != nil {
		r.log.Warn("mutation not persisted", "op", op, "id", id, "error", err)
	}
	return err
}

func (r *Records) indexOf(id int) int {
	for i, rec := range r.items {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
