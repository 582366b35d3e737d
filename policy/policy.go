// Package policy defines customer/policy records and the premium rate table.
package policy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NameLen is the fixed capacity of the name buffer in the flat file layout,
// including the terminating NUL. Names are capped at NameLen-1 bytes.
const NameLen = 100

// ErrInvalidPolicyType is returned for a policy type outside Life, Health, Auto.
var ErrInvalidPolicyType = errors.New("invalid policy type")

// ErrOutOfRange is returned for an integer field that does not fit the
// 32-bit slot it is persisted in.
var ErrOutOfRange = errors.New("value out of range")

// Type is the kind of policy. The numeric values are part of the persisted
// format and must not change.
type Type int

const (
	Life   Type = 1
	Health Type = 2
	Auto   Type = 3
)

// Types lists every valid policy type in code order.
var Types = []Type{Life, Health, Auto}

// Valid reports whether t is one of Life, Health or Auto.
func (t Type) Valid() bool {
	switch t {
	case Life, Health, Auto:
		return true
	}
	return false
}

func (t Type) String() string {
	switch t {
	case Life:
		return "Life"
	case Health:
		return "Health"
	case Auto:
		return "Auto"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType accepts either the numeric code ("1".."3") or the name
// ("life", "Health", ...).
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		t := Type(n)
		if !t.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidPolicyType, n)
		}
		return t, nil
	}
	for _, t := range Types {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPolicyType, s)
}

// Record is one customer/policy entry.
type Record struct {
	ID         int     `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Age        int     `json:"age" yaml:"age"`
	Type       Type    `json:"policy_type" yaml:"policy_type"`
	SumInsured float64 `json:"sum_insured" yaml:"sum_insured"`
	VehicleAge int     `json:"vehicle_age" yaml:"vehicle_age"`
}

// Fields is a partial record used by add and update. A nil member means
// "not provided".
type Fields struct {
	Name       *string
	Age        *int
	Type       *Type
	SumInsured *float64
	VehicleAge *int
}

// Validate checks the provided fields without touching any record.
func (f Fields) Validate() error {
	if f.Type != nil && !f.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPolicyType, int(*f.Type))
	}
	if f.Age != nil && !fitsInt32(*f.Age) {
		return fmt.Errorf("%w: age %d", ErrOutOfRange, *f.Age)
	}
	if f.VehicleAge != nil && !fitsInt32(*f.VehicleAge) {
		return fmt.Errorf("%w: vehicle age %d", ErrOutOfRange, *f.VehicleAge)
	}
	return nil
}

// FitsInt32 reports whether every integer field of r fits in 32 bits.
func (r Record) FitsInt32() bool {
	return fitsInt32(r.ID) && fitsInt32(r.Age) && fitsInt32(int(r.Type)) && fitsInt32(r.VehicleAge)
}

func fitsInt32(n int) bool { return n >= math.MinInt32 && n <= math.MaxInt32 }

// Apply overwrites the provided fields of r and restores the vehicle age
// invariant.
func (f Fields) Apply(r *Record) {
	if f.Name != nil {
		r.Name = TruncateName(*f.Name)
	}
	if f.Age != nil {
		r.Age = *f.Age
	}
	if f.Type != nil {
		r.Type = *f.Type
	}
	if f.SumInsured != nil {
		r.SumInsured = *f.SumInsured
	}
	if f.VehicleAge != nil {
		r.VehicleAge = *f.VehicleAge
	}
	if r.Type != Auto {
		r.VehicleAge = 0
	}
}

// TruncateName caps a name at NameLen-1 bytes without splitting a UTF-8
// sequence.
func TruncateName(name string) string {
	if len(name) < NameLen {
		return name
	}
	cut := NameLen - 1
	for cut > 0 && !isRuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Ptr returns a pointer to v. Handy for building Fields.
func Ptr[T any](v T) *T { return &v }
