// Package schema validates JSON record imports before they reach the store.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stevemurr/policyledger/policy"
)

// ErrInvalidImport wraps every schema violation.
var ErrInvalidImport = errors.New("invalid import document")

// maxReported caps how many violations are listed in one error.
const maxReported = 3

// ImportSchema describes an import document: a JSON array of records.
// ids are not accepted; the store assigns them. Integers may be written
// with a zero fraction (25.0), as JSON Schema allows.
const ImportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "policy_type", "sum_insured"],
    "additionalProperties": false,
    "properties": {
      "name":        {"type": "string"},
      "age":         {"type": "integer", "minimum": -2147483648, "maximum": 2147483647},
      "policy_type": {
        "oneOf": [
          {"type": "integer", "enum": [1, 2, 3]},
          {"type": "string", "enum": ["Life", "Health", "Auto", "life", "health", "auto"]}
        ]
      },
      "sum_insured": {"type": "number"},
      "vehicle_age": {"type": "integer", "minimum": -2147483648, "maximum": 2147483647}
    }
  }
}`

var importSchema = gojsonschema.NewStringLoader(ImportSchema)

type importEntry struct {
	Name       string          `json:"name"`
	Age        *json.Number    `json:"age"`
	PolicyType json.RawMessage `json:"policy_type"`
	SumInsured float64         `json:"sum_insured"`
	VehicleAge *json.Number    `json:"vehicle_age"`
}

// Validate checks data against ImportSchema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(importSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	more := ""
	if len(msgs) > maxReported {
		more = fmt.Sprintf("\n... and %d more", len(msgs)-maxReported)
		msgs = msgs[:maxReported]
	}
	return fmt.Errorf("%w:\n- %s%s", ErrInvalidImport, strings.Join(msgs, "\n- "), more)
}

// ParseImport validates data and converts each entry to the fields Add expects.
func ParseImport(data []byte) ([]policy.Fields, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var entries []importEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	out := make([]policy.Fields, 0, len(entries))
	for i, e := range entries {
		typ, err := parsePolicyType(e.PolicyType)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidImport, i, err)
		}
		age, err := optionalInt(e.Age)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: age: %v", ErrInvalidImport, i, err)
		}
		vehicleAge, err := optionalInt(e.VehicleAge)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: vehicle_age: %v", ErrInvalidImport, i, err)
		}
		out = append(out, policy.Fields{
			Name:       policy.Ptr(e.Name),
			Age:        age,
			Type:       policy.Ptr(typ),
			SumInsured: policy.Ptr(e.SumInsured),
			VehicleAge: vehicleAge,
		})
	}
	return out, nil
}

func parsePolicyType(raw json.RawMessage) (policy.Type, error) {
	var code json.Number
	if err := json.Unmarshal(raw, &code); err == nil {
		n, err := integer(code)
		if err != nil {
			return 0, err
		}
		return policy.ParseType(fmt.Sprint(n))
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, err
	}
	return policy.ParseType(name)
}

func optionalInt(n *json.Number) (*int, error) {
	if n == nil {
		return nil, nil
	}
	v, err := integer(*n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// integer converts a JSON number with no fractional part, such as 25 or
// 25.0, to an int in the 32-bit range.
func integer(n json.Number) (int, error) {
	if v, err := n.Int64(); err == nil {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, fmt.Errorf("%s out of range", n)
		}
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%s is not a 32-bit integer", n)
	}
	return int(f), nil
}
