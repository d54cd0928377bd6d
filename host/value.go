package host

import (
	"fmt"
	"strconv"

	"github.com/semihalev/go-udf"
)

// Value is one argument as the host would pass it. Null values still carry
// their type tag, the way the server sends a NULL column.
type Value struct {
	Type      udf.ArgType
	Null      bool
	Int       int64
	Real      float64
	Bytes     []byte
	MaybeNull bool   // setup-time nullability declaration
	Attribute string // setup-time expression text
}

// Int returns an INT_RESULT argument.
func Int(v int64) Value { return Value{Type: udf.INT_RESULT, Int: v} }

// Real returns a REAL_RESULT argument.
func Real(v float64) Value { return Value{Type: udf.REAL_RESULT, Real: v} }

// String returns a STRING_RESULT argument.
func String(s string) Value { return Value{Type: udf.STRING_RESULT, Bytes: []byte(s)} }

// Decimal returns a DECIMAL_RESULT argument in its textual form.
func Decimal(s string) Value { return Value{Type: udf.DECIMAL_RESULT, Bytes: []byte(s)} }

// Null returns a NULL argument of the given type.
func Null(t udf.ArgType) Value { return Value{Type: t, Null: true, MaybeNull: true} }

// Named returns v with its setup-time attribute set.
func (v Value) Named(attr string) Value {
	v.Attribute = attr
	return v
}

// String formats v the way it would be written in SQL.
func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	switch v.Type {
	case udf.INT_RESULT:
		return strconv.FormatInt(v.Int, 10)
	case udf.REAL_RESULT:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case udf.DECIMAL_RESULT:
		return string(v.Bytes)
	default:
		return strconv.Quote(string(v.Bytes))
	}
}

// Declare derives setup-time arguments from the rows a function will see:
// same types as the first row, no values, and maybe_null set for every
// position that is NULL in any row. Rows must all have the same shape.
func Declare(rows [][]Value) ([]Value, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	decl := make([]Value, len(rows[0]))
	for i, v := range rows[0] {
		decl[i] = Value{Type: v.Type, Null: true, Attribute: v.Attribute}
	}
	for r, row := range rows {
		if len(row) != len(decl) {
			return nil, fmt.Errorf("row %d has %d arguments, expected %d", r, len(row), len(decl))
		}
		for i, v := range row {
			if v.Type != decl[i].Type {
				return nil, fmt.Errorf("row %d arg %d is %s, expected %s", r, i, v.Type, decl[i].Type)
			}
			if v.Null {
				decl[i].MaybeNull = true
			}
		}
	}
	return decl, nil
}
