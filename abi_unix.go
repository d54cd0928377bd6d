//go:build !windows
// +build !windows

package udf

// ULong is C unsigned long on LP64 platforms.
type ULong = uint64
