package udf

import (
	"errors"
	"fmt"
)

// ErrorType represents different kinds of UDF errors.
type ErrorType int

const (
	// ErrGeneric is a generic error.
	ErrGeneric ErrorType = iota
	// ErrArgCount is a wrong number of arguments.
	ErrArgCount
	// ErrArgType is an argument of the wrong type.
	ErrArgType
	// ErrSetup is a failure raised while constructing an instance.
	ErrSetup
	// ErrLoad is a failure to load a compiled UDF library.
	ErrLoad
	// ErrSymbol is a missing entry point in a UDF library.
	ErrSymbol
	// ErrLifecycle is a call made out of the init, row, deinit order.
	ErrLifecycle
)

// Error is a UDF-specific error. Its text is what the host shows the user
// when setup fails, so it carries no package prefix.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new Error.
func NewError(typ ErrorType, message string) *Error {
	return &Error{
		Type:    typ,
		Message: message,
	}
}

// WrapError creates a new Error around err.
func WrapError(typ ErrorType, message string, err error) *Error {
	return &Error{
		Type:    typ,
		Message: message,
		Err:     err,
	}
}

// IsError checks if an error is of a specific type.
func IsError(err error, typ ErrorType) bool {
	var udfErr *Error
	if !errors.As(err, &udfErr) {
		return false
	}
	return udfErr.Type == typ
}

// ABIError reports an argument type tag this library does not know. It is
// raised as a panic: the host and the library disagree on the ABI, and
// carrying on would fabricate argument data.
type ABIError struct {
	Type ArgType
}

// Error returns the error message.
func (e *ABIError) Error() string {
	return fmt.Sprintf("udf: unsupported argument type %d", int32(e.Type))
}
