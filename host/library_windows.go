//go:build windows
// +build windows

package host

import (
	"errors"
	"syscall"
)

// Load a dynamic library on Windows systems
func loadLibrary(path string) (uintptr, error) {
	handle, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

// Close the library
func closeLibrary(handle uintptr) error {
	return syscall.FreeLibrary(syscall.Handle(handle))
}

// Get a symbol from the library
func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	if handle == 0 {
		return 0, errors.New("invalid library handle")
	}
	return syscall.GetProcAddress(syscall.Handle(handle), name)
}
