package store

import (
	"slices"
	"sync"

	"github.com/stevemurr/policyledger/policy"
)

// MemoryBackend keeps the dataset in memory. Data is lost on restart.
type MemoryBackend struct {
	mu      sync.Mutex
	records []policy.Record
	exists  bool
	saves   int
	failErr error
}

func NewMemoryBackend(seed ...policy.Record) *MemoryBackend {
	m := &MemoryBackend{}
	if len(seed) > 0 {
		m.records = slices.Clone(seed)
		m.exists = true
	}
	return m
}

func (m *MemoryBackend) LoadAll() ([]policy.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, nil
	}
	return slices.Clone(m.records), nil
}

func (m *MemoryBackend) SaveAll(records []policy.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	if len(records) == 0 {
		m.records = nil
		m.exists = false
		return nil
	}
	m.records = slices.Clone(records)
	m.exists = true
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// Exists reports whether a dataset is currently persisted.
func (m *MemoryBackend) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists
}

// Saves returns how many successful SaveAll calls have been made.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes every later SaveAll return err. Pass nil to recover.
func (m *MemoryBackend) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}
