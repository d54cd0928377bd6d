//go:build windows
// +build windows

package udf

// ULong is C unsigned long on LLP64 Windows.
type ULong = uint32
