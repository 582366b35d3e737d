package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/stevemurr/policyledger/policy"
)

// RecordSize is the serialized size of one record in the flat file.
//
// Layout (little-endian, offsets in bytes):
//
//	0   id           int32
//	4   name         [100]byte, NUL padded
//	104 age          int32
//	108 policy_type  int32
//	112 sum_insured  float64
//	120 vehicle_age  int32
//	124 padding      [4]byte
const RecordSize = 128

const (
	offID      = 0
	offName    = 4
	offAge     = offName + policy.NameLen
	offType    = offAge + 4
	offSum     = offType + 4
	offVehicle = offSum + 8
)

// FlatFileBackend stores the dataset as a headerless sequence of
// fixed-size records. Changing the layout invalidates existing files.
type FlatFileBackend struct {
	mu   sync.Mutex
	path string
}

func NewFlatFileBackend(path string) *FlatFileBackend {
	return &FlatFileBackend{path: path}
}

// Path returns the dataset file location.
func (b *FlatFileBackend) Path() string { return b.path }

func (b *FlatFileBackend) LoadAll() ([]policy.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecords(data)
}

func (b *FlatFileBackend) SaveAll(records []policy.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(records) == 0 {
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil
	}
	for _, r := range records {
		if !r.FitsInt32() {
			return fmt.Errorf("%w: record %d does not fit the flat layout", policy.ErrOutOfRange, r.ID)
		}
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := f.Write(encodeRecords(records)); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, b.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (b *FlatFileBackend) Close() error { return nil }

func encodeRecords(records []policy.Record) []byte {
	var buf bytes.Buffer
	buf.Grow(len(records) * RecordSize)
	for _, r := range records {
		block := encodeRecord(r)
		buf.Write(block[:])
	}
	return buf.Bytes()
}

func encodeRecord(r policy.Record) [RecordSize]byte {
	var block [RecordSize]byte
	le := binary.LittleEndian
	le.PutUint32(block[offID:], uint32(int32(r.ID)))
	copy(block[offName:offName+policy.NameLen-1], policy.TruncateName(r.Name))
	le.PutUint32(block[offAge:], uint32(int32(r.Age)))
	le.PutUint32(block[offType:], uint32(int32(r.Type)))
	le.PutUint64(block[offSum:], math.Float64bits(r.SumInsured))
	le.PutUint32(block[offVehicle:], uint32(int32(r.VehicleAge)))
	return block
}

func decodeRecords(data []byte) ([]policy.Record, error) {
	n := len(data) / RecordSize
	var records []policy.Record
	if n > 0 {
		records = make([]policy.Record, 0, n)
	}
	for i := 0; i < n; i++ {
		records = append(records, decodeRecord(data[i*RecordSize:(i+1)*RecordSize]))
	}
	if rem := len(data) % RecordSize; rem != 0 {
		return records, &PartialLoadError{Recovered: n, DiscardedBytes: int64(rem)}
	}
	return records, nil
}

func decodeRecord(block []byte) policy.Record {
	le := binary.LittleEndian
	name := block[offName : offName+policy.NameLen]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return policy.Record{
		ID:         int(int32(le.Uint32(block[offID:]))),
		Name:       string(name),
		Age:        int(int32(le.Uint32(block[offAge:]))),
		Type:       policy.Type(int32(le.Uint32(block[offType:]))),
		SumInsured: math.Float64frombits(le.Uint64(block[offSum:])),
		VehicleAge: int(int32(le.Uint32(block[offVehicle:]))),
	}
}
