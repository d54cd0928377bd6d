//go:build !windows
// +build !windows

package host

import (
	"errors"

	"github.com/ebitengine/purego"
)

// Load a dynamic library on Unix systems using purego
func loadLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

// Close the library
func closeLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}

// Get a symbol from the library
func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	if handle == 0 {
		return 0, errors.New("invalid library handle")
	}
	return purego.Dlsym(handle, name)
}
