package udf

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTypes(t *testing.T) {
	err := NewError(ErrArgCount, "too many")
	if err.Error() != "too many" {
		t.Errorf("Expected bare message, got %q", err.Error())
	}
	if !IsError(err, ErrArgCount) || IsError(err, ErrArgType) {
		t.Errorf("IsError mismatch")
	}

	wrapped := fmt.Errorf("loading: %w", WrapError(ErrLoad, "open lib", errors.New("no such file")))
	if !IsError(wrapped, ErrLoad) {
		t.Errorf("IsError must see through wrapping")
	}
	if wrapped.Error() != "loading: open lib: no such file" {
		t.Errorf("Unexpected text %q", wrapped.Error())
	}
	if IsError(errors.New("plain"), ErrGeneric) {
		t.Errorf("Plain errors are not udf errors")
	}
}

func TestABIError(t *testing.T) {
	err := &ABIError{Type: ArgType(42)}
	if err.Error() != "udf: unsupported argument type 42" {
		t.Errorf("Unexpected text %q", err.Error())
	}
	if ArgType(42).String() != "UNKNOWN_RESULT" || INT_RESULT.String() != "INT_RESULT" {
		t.Errorf("Unexpected ArgType names")
	}
}
