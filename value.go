package udf

import (
	"fmt"
	"unsafe"
)

// ArgValue is one argument of the current call interpreted according to its
// host type tag. String and decimal payloads borrow host memory and are only
// valid until the enclosing call returns; copy them to keep them.
type ArgValue struct {
	typ  ArgType
	null bool
	i    int64
	f    float64
	b    []byte
}

// newArgValue interprets a host argument cell. A nil data pointer is SQL NULL
// for every tag. An unknown tag means the host and this library disagree on
// the ABI, so it panics with *ABIError instead of guessing.
func newArgValue(typ ArgType, data *byte, length uint64) ArgValue {
	v := ArgValue{typ: typ, null: data == nil}
	switch typ {
	case INT_RESULT:
		if data != nil {
			v.i = *(*int64)(unsafe.Pointer(data))
		}
	case REAL_RESULT:
		if data != nil {
			v.f = *(*float64)(unsafe.Pointer(data))
		}
	case STRING_RESULT, DECIMAL_RESULT:
		if data != nil {
			v.b = unsafe.Slice(data, int(length))
		}
	default:
		panic(&ABIError{Type: typ})
	}
	return v
}

// Type returns the host type tag.
func (v ArgValue) Type() ArgType { return v.typ }

// IsNull reports whether the argument is SQL NULL.
func (v ArgValue) IsNull() bool { return v.null }

// Int returns the integer payload. ok is false when the argument is not an
// integer or is NULL.
func (v ArgValue) Int() (val int64, ok bool) {
	if v.typ != INT_RESULT || v.null {
		return 0, false
	}
	return v.i, true
}

// Real returns the double payload. ok is false when the argument is not a
// real or is NULL.
func (v ArgValue) Real() (val float64, ok bool) {
	if v.typ != REAL_RESULT || v.null {
		return 0, false
	}
	return v.f, true
}

// Text returns the borrowed bytes of a string argument.
func (v ArgValue) Text() (val []byte, ok bool) {
	if v.typ != STRING_RESULT || v.null {
		return nil, false
	}
	return v.b, true
}

// Decimal returns the borrowed textual form of a decimal argument.
func (v ArgValue) Decimal() (val []byte, ok bool) {
	if v.typ != DECIMAL_RESULT || v.null {
		return nil, false
	}
	return v.b, true
}

// Number returns integer and real payloads widened to float64.
func (v ArgValue) Number() (val float64, ok bool) {
	if i, ok := v.Int(); ok {
		return float64(i), true
	}
	return v.Real()
}

// GoString formats the value for logs and test failures.
func (v ArgValue) GoString() string {
	if v.null {
		return fmt.Sprintf("%s(NULL)", v.typ)
	}
	switch v.typ {
	case INT_RESULT:
		return fmt.Sprintf("%s(%d)", v.typ, v.i)
	case REAL_RESULT:
		return fmt.Sprintf("%s(%g)", v.typ, v.f)
	default:
		return fmt.Sprintf("%s(%q)", v.typ, v.b)
	}
}
