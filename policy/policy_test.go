package policy_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/policyledger/policy"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want policy.Type
	}{
		{"1", policy.Life},
		{"2", policy.Health},
		{" 3 ", policy.Auto},
		{"life", policy.Life},
		{"HEALTH", policy.Health},
		{"Auto", policy.Auto},
	}
	for _, tc := range tests {
		got, err := policy.ParseType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"0", "4", "-1", "boat", ""} {
		_, err := policy.ParseType(bad)
		assert.True(t, errors.Is(err, policy.ErrInvalidPolicyType), "input %q", bad)
	}
}

func TestTypeValidAndString(t *testing.T) {
	for _, tt := range policy.Types {
		assert.True(t, tt.Valid())
	}
	assert.False(t, policy.Type(0).Valid())
	assert.False(t, policy.Type(4).Valid())
	assert.Equal(t, "Health", policy.Health.String())
	assert.Equal(t, "Type(7)", policy.Type(7).String())
}

func TestFieldsApply(t *testing.T) {
	r := policy.Record{ID: 1, Name: "Ada", Age: 40, Type: policy.Auto, SumInsured: 1000, VehicleAge: 7}

	policy.Fields{Age: policy.Ptr(41)}.Apply(&r)
	assert.Equal(t, 41, r.Age)
	assert.Equal(t, "Ada", r.Name)
	assert.Equal(t, 7, r.VehicleAge)

	policy.Fields{Type: policy.Ptr(policy.Life), VehicleAge: policy.Ptr(3)}.Apply(&r)
	assert.Equal(t, policy.Life, r.Type)
	assert.Equal(t, 0, r.VehicleAge, "non-auto policies carry no vehicle age")
	assert.Equal(t, 1, r.ID)
}

func TestFieldsValidate(t *testing.T) {
	assert.NoError(t, policy.Fields{}.Validate())
	assert.NoError(t, policy.Fields{Age: policy.Ptr(math.MaxInt32), VehicleAge: policy.Ptr(math.MinInt32)}.Validate())
	assert.ErrorIs(t, policy.Fields{Type: policy.Ptr(policy.Type(4))}.Validate(), policy.ErrInvalidPolicyType)
	assert.ErrorIs(t, policy.Fields{Age: policy.Ptr(1 << 31)}.Validate(), policy.ErrOutOfRange)
	assert.ErrorIs(t, policy.Fields{VehicleAge: policy.Ptr(math.MinInt32 - 1)}.Validate(), policy.ErrOutOfRange)

	assert.True(t, policy.Record{ID: 1, Age: 30, Type: policy.Life}.FitsInt32())
	assert.False(t, policy.Record{ID: math.MaxInt32 + 1}.FitsInt32())
}

func TestTruncateName(t *testing.T) {
	short := "Grace Hopper"
	assert.Equal(t, short, policy.TruncateName(short))

	long := strings.Repeat("x", 150)
	assert.Len(t, policy.TruncateName(long), policy.NameLen-1)

	// a two-byte rune straddling the cap is dropped whole
	multi := strings.Repeat("a", policy.NameLen-2) + "é"
	got := policy.TruncateName(multi)
	assert.Equal(t, strings.Repeat("a", policy.NameLen-2), got)
}
