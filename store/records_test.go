package store_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/policyledger/logging"
	"github.com/stevemurr/policyledger/policy"
	"github.com/stevemurr/policyledger/store"
)

func newRecords(t *testing.T, seed ...policy.Record) (*store.Records, *store.MemoryBackend) {
	t.Helper()
	b := store.NewMemoryBackend(seed...)
	s := store.NewRecords(b, store.WithLogger(logging.Discard()))
	_, err := s.Load()
	require.NoError(t, err)
	return s, b
}

func lifeFields(name string) policy.Fields {
	return policy.Fields{
		Name:       policy.Ptr(name),
		Age:        policy.Ptr(30),
		Type:       policy.Ptr(policy.Life),
		SumInsured: policy.Ptr(100000.0),
	}
}

func TestNextID(t *testing.T) {
	s, _ := newRecords(t)
	assert.Equal(t, 1, s.NextID())

	s, _ = newRecords(t, sampleRecords()...)
	assert.Equal(t, 5, s.NextID(), "max id is 4")
}

func TestAddAssignsIDsAndPersists(t *testing.T) {
	s, b := newRecords(t)

	first, err := s.Add(lifeFields("Ada"))
	require.NoError(t, err)
	second, err := s.Add(lifeFields("Bob"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 2, b.Saves())

	persisted, err := b.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, s.List(), persisted)
}

func TestAddAfterDeleteDoesNotReuseHighestID(t *testing.T) {
	s, _ := newRecords(t)
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.Add(lifeFields(n))
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(2))

	rec, err := s.Add(lifeFields("d"))
	require.NoError(t, err)
	assert.Equal(t, 4, rec.ID)
}

func TestAddVehicleAgeOnlyForAuto(t *testing.T) {
	s, _ := newRecords(t)

	f := lifeFields("Ada")
	f.VehicleAge = policy.Ptr(9)
	rec, err := s.Add(f)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.VehicleAge)

	f.Type = policy.Ptr(policy.Auto)
	rec, err = s.Add(f)
	require.NoError(t, err)
	assert.Equal(t, 9, rec.VehicleAge)
}

func TestAddInvalidPolicyType(t *testing.T) {
	s, b := newRecords(t, sampleRecords()...)
	before := s.List()

	for _, bad := range []policy.Type{0, 4} {
		f := lifeFields("Nobody")
		f.Type = policy.Ptr(bad)
		_, err := s.Add(f)
		assert.ErrorIs(t, err, policy.ErrInvalidPolicyType)
	}

	f := lifeFields("Nobody")
	f.Type = nil
	_, err := s.Add(f)
	assert.ErrorIs(t, err, policy.ErrInvalidPolicyType)

	assert.Equal(t, before, s.List())
	assert.Equal(t, 0, b.Saves())
}

func TestAddRejectsValuesWiderThan32Bits(t *testing.T) {
	s, b := newRecords(t, sampleRecords()...)
	before := s.List()

	f := lifeFields("Wide")
	f.Age = policy.Ptr(1 << 31)
	_, err := s.Add(f)
	assert.ErrorIs(t, err, policy.ErrOutOfRange)

	f = lifeFields("Wide")
	f.Type = policy.Ptr(policy.Auto)
	f.VehicleAge = policy.Ptr(5000000000)
	_, err = s.Add(f)
	assert.ErrorIs(t, err, policy.ErrOutOfRange)

	f = lifeFields("Narrow")
	f.Age = policy.Ptr(math.MinInt32)
	_, err = s.Add(f)
	assert.NoError(t, err)

	assert.Equal(t, len(before)+1, s.Len())
	assert.Equal(t, 1, b.Saves())
}

func TestAddRejectsIDBeyond32Bits(t *testing.T) {
	s, b := newRecords(t, policy.Record{ID: math.MaxInt32, Name: "Last", Type: policy.Life})
	_, err := s.Add(lifeFields("Next"))
	assert.ErrorIs(t, err, store.ErrCapacity)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, b.Saves())
}

func TestAddCapacity(t *testing.T) {
	b := store.NewMemoryBackend()
	s := store.NewRecords(b, store.WithLogger(logging.Discard()), store.WithMaxRecords(1))

	_, err := s.Add(lifeFields("a"))
	require.NoError(t, err)
	_, err = s.Add(lifeFields("b"))
	assert.ErrorIs(t, err, store.ErrCapacity)
	assert.Equal(t, 1, s.Len())
}

func TestAddTruncatesName(t *testing.T) {
	s, _ := newRecords(t)
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'n'
	}
	rec, err := s.Add(lifeFields(string(long)))
	require.NoError(t, err)
	assert.Len(t, rec.Name, policy.NameLen-1)
}

func TestFindByID(t *testing.T) {
	s, _ := newRecords(t, sampleRecords()...)

	rec, err := s.FindByID(4)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", rec.Name)

	_, err = s.FindByID(99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdatePartial(t *testing.T) {
	s, b := newRecords(t, sampleRecords()...)

	rec, err := s.Update(2, policy.Fields{SumInsured: policy.Ptr(350000.0)})
	require.NoError(t, err)
	assert.Equal(t, 350000.0, rec.SumInsured)
	assert.Equal(t, "Linus", rec.Name)
	assert.Equal(t, 4, rec.VehicleAge)
	assert.Equal(t, 1, b.Saves())

	got, err := s.FindByID(2)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestUpdateNonAutoForcesZeroVehicleAge(t *testing.T) {
	s, _ := newRecords(t, sampleRecords()...)

	rec, err := s.Update(2, policy.Fields{Type: policy.Ptr(policy.Health), VehicleAge: policy.Ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, policy.Health, rec.Type)
	assert.Equal(t, 0, rec.VehicleAge)

	rec, err = s.Update(1, policy.Fields{VehicleAge: policy.Ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.VehicleAge)
}

func TestUpdateErrors(t *testing.T) {
	s, b := newRecords(t, sampleRecords()...)
	before := s.List()

	_, err := s.Update(42, policy.Fields{Age: policy.Ptr(1)})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Update(1, policy.Fields{Type: policy.Ptr(policy.Type(7)), Age: policy.Ptr(99)})
	assert.ErrorIs(t, err, policy.ErrInvalidPolicyType)

	_, err = s.Update(1, policy.Fields{Name: policy.Ptr("Wide"), Age: policy.Ptr(1 << 31)})
	assert.ErrorIs(t, err, policy.ErrOutOfRange)

	assert.Equal(t, before, s.List())
	assert.Equal(t, 0, b.Saves())
}

func TestDelete(t *testing.T) {
	s, _ := newRecords(t, sampleRecords()...)

	require.NoError(t, s.Delete(4))
	_, err := s.FindByID(4)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got := s.List()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)

	assert.ErrorIs(t, s.Delete(4), store.ErrNotFound)
	assert.Equal(t, 2, s.Len())
}

func TestDeleteLastRemovesDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), store.FlatFileName)
	s := store.NewRecords(store.NewFlatFileBackend(path), store.WithLogger(logging.Discard()))

	rec, err := s.Add(lifeFields("Only"))
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, s.Delete(rec.ID))
	assert.Equal(t, 0, s.Len())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "dataset should be removed, stat err = %v", err)

	reloaded := store.NewRecords(store.NewFlatFileBackend(path), store.WithLogger(logging.Discard()))
	report, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Loaded)
	assert.Equal(t, 1, reloaded.NextID())
}

func TestListReturnsCopy(t *testing.T) {
	s, _ := newRecords(t, sampleRecords()...)
	list := s.List()
	list[0].Name = "mutated"

	rec, err := s.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", rec.Name)
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	s, b := newRecords(t)
	b.FailSaves(store.ErrStorageUnavailable)

	rec, err := s.Add(lifeFields("Ada"))
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.Equal(t, 1, rec.ID)
	assert.Equal(t, 1, s.Len())

	b.FailSaves(nil)
	require.NoError(t, s.Persist())
	persisted, err := b.LoadAll()
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), store.FlatFileName)
	b := store.NewFlatFileBackend(path)
	require.NoError(t, b.SaveAll(sampleRecords()))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s := store.NewRecords(b, store.WithLogger(logging.Discard()))
	report, err := s.Load()
	require.NoError(t, err)
	assert.True(t, report.Partial)
	assert.Equal(t, 3, report.Loaded)
	assert.Equal(t, int64(3), report.DiscardedBytes)
	assert.Equal(t, sampleRecords(), s.List())
}

type brokenBackend struct{ store.MemoryBackend }

func (*brokenBackend) LoadAll() ([]policy.Record, error) { return nil, errors.New("disk on fire") }

func TestLoadError(t *testing.T) {
	s := store.NewRecords(&brokenBackend{}, store.WithLogger(logging.Discard()))
	_, err := s.Load()
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestCloseFlushes(t *testing.T) {
	dir := t.TempDir()
	b, err := store.New("json", dir)
	require.NoError(t, err)
	s := store.NewRecords(b, store.WithLogger(logging.Discard()))
	_, err = s.Add(lifeFields("Ada"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	b2, err := store.New("json", dir)
	require.NoError(t, err)
	got, err := b2.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, s.List(), got)
}
