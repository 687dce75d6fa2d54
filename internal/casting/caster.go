// Package casting turns untyped CSV text fields into typed, nullable values
// ready for parameter binding.
package casting

import (
	"fmt"

	"github.com/johndauphine/sqlcsv/internal/apperr"
)

// TypeCaster converts raw rows according to a fixed per-column type and
// nullability specification. It holds no per-row state and is safe to reuse
// for every row of one operation.
type TypeCaster struct {
	types     []ColumnType
	nullables []bool
}

// New builds a caster. A nil nullables slice marks every column non-nullable;
// otherwise its length must match types.
func New(types []ColumnType, nullables []bool) (*TypeCaster, error) {
	if len(types) == 0 {
		return nil, apperr.Config("column types are required")
	}
	if nullables == nil {
		nullables = make([]bool, len(types))
	} else if len(nullables) != len(types) {
		return nil, apperr.Config("got %d nullable flags for %d column types", len(nullables), len(types))
	}

	c := &TypeCaster{
		types:     make([]ColumnType, len(types)),
		nullables: make([]bool, len(nullables)),
	}
	copy(c.types, types)
	copy(c.nullables, nullables)
	return c, nil
}

// NewFromSpec parses comma-separated type and nullability specs and builds
// a caster from them.
func NewFromSpec(typeSpec, nullableSpec, dateFormat string) (*TypeCaster, error) {
	types, err := ParseTypes(typeSpec, dateFormat)
	if err != nil {
		return nil, err
	}
	nullables, err := ParseNullables(nullableSpec)
	if err != nil {
		return nil, err
	}
	return New(types, nullables)
}

// Columns returns the number of columns every row must have.
func (c *TypeCaster) Columns() int {
	return len(c.types)
}

// Cast converts one row. An empty field in a nullable column becomes nil
// without attempting conversion; any other field goes through its column's
// conversion, so an empty non-nullable numeric or date field is an error.
func (c *TypeCaster) Cast(row []string) ([]any, error) {
	if len(row) != len(c.types) {
		return nil, apperr.IndexRange("row has %d fields, expected %d", len(row), len(c.types))
	}

	values := make([]any, len(row))
	for i, raw := range row {
		if c.nullables[i] && raw == "" {
			continue
		}
		v, err := c.types[i].Convert(raw)
		if err != nil {
			return nil, apperr.ValueConversion(
				fmt.Sprintf("column %d: cannot convert %q to %s", i+1, raw, c.types[i]), err)
		}
		values[i] = v
	}
	return values, nil
}
