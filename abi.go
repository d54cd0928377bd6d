package udf

import "unsafe"

// Host ABI mirrors of the MySQL loadable function structures declared in
// mysql/udf_registration_types.h. Field order, widths and padding must match
// the C layout exactly: the server hands us pointers to its own memory and we
// read and write it in place.

// ArgType mirrors the host's enum Item_result.
type ArgType int32

// Item_result tags. ROW_RESULT never reaches a loadable function and
// INVALID_RESULT is only used by the server internally.
const (
	INVALID_RESULT ArgType = -1
	STRING_RESULT  ArgType = 0
	REAL_RESULT    ArgType = 1
	INT_RESULT     ArgType = 2
	ROW_RESULT     ArgType = 3
	DECIMAL_RESULT ArgType = 4
)

// ErrMsgSize is MYSQL_ERRMSG_SIZE, the size of the message buffer handed to
// <name>_init, terminating NUL included.
const ErrMsgSize = 512

// MaxErrMsgLen is the longest setup error message the host can receive.
const MaxErrMsgLen = ErrMsgSize - 1

// String returns the host-side name of the tag.
func (t ArgType) String() string {
	switch t {
	case STRING_RESULT:
		return "STRING_RESULT"
	case REAL_RESULT:
		return "REAL_RESULT"
	case INT_RESULT:
		return "INT_RESULT"
	case ROW_RESULT:
		return "ROW_RESULT"
	case DECIMAL_RESULT:
		return "DECIMAL_RESULT"
	case INVALID_RESULT:
		return "INVALID_RESULT"
	}
	return "UNKNOWN_RESULT"
}

// UDFInit mirrors struct UDF_INIT.
//
// Ptr is the opaque per-instance slot. It is typed uintptr rather than a
// pointer because it holds a handle value, never an address the Go
// collector should follow.
type UDFInit struct {
	MaybeNull byte   // bool maybe_null
	Decimals  uint32 // unsigned int decimals
	MaxLength ULong  // unsigned long max_length
	Ptr       uintptr
	ConstItem byte // bool const_item
	Extension unsafe.Pointer
}

// UDFArgs mirrors struct UDF_ARGS. All arrays are ArgCount long and owned by
// the host for the duration of a single call.
type UDFArgs struct {
	ArgCount         uint32
	ArgType          *ArgType
	Args             **byte
	Lengths          *ULong
	MaybeNull        *byte
	Attributes       **byte
	AttributeLengths *ULong
	Extension        unsafe.Pointer
}

// argType returns the tag of argument i. Callers guarantee i < ArgCount.
func (a *UDFArgs) argType(i uint32) ArgType {
	return unsafe.Slice(a.ArgType, a.ArgCount)[i]
}

// argData returns the data pointer of argument i, nil for SQL NULL.
func (a *UDFArgs) argData(i uint32) *byte {
	return unsafe.Slice(a.Args, a.ArgCount)[i]
}

// argLength returns the byte length of argument i.
func (a *UDFArgs) argLength(i uint32) uint64 {
	if a.Lengths == nil {
		return 0
	}
	return uint64(unsafe.Slice(a.Lengths, a.ArgCount)[i])
}

// argMaybeNull reports the setup-time nullability flag of argument i.
func (a *UDFArgs) argMaybeNull(i uint32) bool {
	if a.MaybeNull == nil {
		return false
	}
	return unsafe.Slice(a.MaybeNull, a.ArgCount)[i] != 0
}

// argAttribute returns the attribute (column name or alias) of argument i.
func (a *UDFArgs) argAttribute(i uint32) string {
	if a.Attributes == nil || a.AttributeLengths == nil {
		return ""
	}
	p := unsafe.Slice(a.Attributes, a.ArgCount)[i]
	if p == nil {
		return ""
	}
	n := unsafe.Slice(a.AttributeLengths, a.ArgCount)[i]
	return string(unsafe.Slice(p, int(n)))
}
