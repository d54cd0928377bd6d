package udf

import "database/sql"

// Numeric is the set of result types a loadable function can hand back to
// the host: INTEGER functions return long long, REAL functions return double.
type Numeric interface {
	int64 | float64
}

// Output adapts what ProcessRow returns to the host's value plus null-flag
// convention. Nullable is called on the zero value during setup, so it must
// not depend on the receiver's contents.
type Output[R Numeric] interface {
	Nullable() bool
	IsNull() bool
	Value() R
}

// Int is a non-nullable INTEGER result.
type Int int64

// Nullable is always false for Int.
func (Int) Nullable() bool { return false }

// IsNull is always false for Int.
func (Int) IsNull() bool { return false }

// Value returns the result.
func (i Int) Value() int64 { return int64(i) }

// Real is a non-nullable REAL result.
type Real float64

// Nullable is always false for Real.
func (Real) Nullable() bool { return false }

// IsNull is always false for Real.
func (Real) IsNull() bool { return false }

// Value returns the result.
func (r Real) Value() float64 { return float64(r) }

// NullInt is a nullable INTEGER result.
type NullInt sql.NullInt64

// Nullable is always true for NullInt.
func (NullInt) Nullable() bool { return true }

// IsNull reports whether the result is NULL.
func (n NullInt) IsNull() bool { return !n.Valid }

// Value returns the result, zero when NULL.
func (n NullInt) Value() int64 {
	if !n.Valid {
		return 0
	}
	return n.Int64
}

// NullReal is a nullable REAL result.
type NullReal sql.NullFloat64

// Nullable is always true for NullReal.
func (NullReal) Nullable() bool { return true }

// IsNull reports whether the result is NULL.
func (n NullReal) IsNull() bool { return !n.Valid }

// Value returns the result, zero when NULL.
func (n NullReal) Value() float64 {
	if !n.Valid {
		return 0
	}
	return n.Float64
}

// SomeInt returns a non-NULL NullInt.
func SomeInt(v int64) NullInt { return NullInt{Int64: v, Valid: true} }

// SomeReal returns a non-NULL NullReal.
func SomeReal(v float64) NullReal { return NullReal{Float64: v, Valid: true} }

// nullable reports the declared nullability of output type O.
func nullable[R Numeric, O Output[R]]() bool {
	var zero O
	return zero.Nullable()
}

// adapt splits an output into the host's value and null flag. The value is
// the zero R whenever the null flag is set.
func adapt[R Numeric, O Output[R]](out O) (R, bool) {
	if out.IsNull() {
		var zero R
		return zero, true
	}
	return out.Value(), false
}
