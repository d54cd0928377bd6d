package host

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/semihalev/go-udf"
)

// Library is a compiled plugin loaded into this process, the way the server
// loads the SONAME of CREATE FUNCTION.
type Library struct {
	Path string

	mu     sync.Mutex
	handle uintptr
}

// Open loads the shared library at path.
func Open(path string) (*Library, error) {
	handle, err := loadLibrary(path)
	if err != nil {
		return nil, udf.WrapError(udf.ErrLoad, fmt.Sprintf("can't load %s", path), err)
	}
	log.Printf("[INFO] loaded udf library %s", path)
	return &Library{Path: path, handle: handle}, nil
}

// Close unloads the library. Functions obtained from it must not be used
// afterwards.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	err := closeLibrary(l.handle)
	l.handle = 0
	return err
}

// Function resolves the entry points of function name. The row symbol is
// required; <name>_init and <name>_deinit are optional, as for the server.
func (l *Library) Function(name string, rt udf.ReturnType) (*Function, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil, udf.NewError(udf.ErrLoad, fmt.Sprintf("library %s is closed", l.Path))
	}

	rowSym, err := lookupSymbol(l.handle, name)
	if err != nil {
		return nil, udf.WrapError(udf.ErrSymbol, fmt.Sprintf("%s: missing symbol %s", l.Path, name), err)
	}

	fn := &Function{name: name, returns: rt}
	switch rt {
	case udf.ReturnReal:
		purego.RegisterFunc(&fn.realRow, rowSym)
	default:
		purego.RegisterFunc(&fn.intRow, rowSym)
	}
	if sym, err := lookupSymbol(l.handle, name+"_init"); err == nil {
		purego.RegisterFunc(&fn.initFn, sym)
	}
	if sym, err := lookupSymbol(l.handle, name+"_deinit"); err == nil {
		purego.RegisterFunc(&fn.deinitFn, sym)
	}
	log.Printf("[DEBUG] resolved %s from %s, init=%v deinit=%v", name, l.Path, fn.initFn != nil, fn.deinitFn != nil)
	return fn, nil
}

// Function is a loadable function bound to a library's C entry points.
// It implements udf.Binding.
type Function struct {
	name    string
	returns udf.ReturnType

	initFn   func(initid, args, msg unsafe.Pointer) uint8
	intRow   func(initid, args, isNull, errFlag unsafe.Pointer) int64
	realRow  func(initid, args, isNull, errFlag unsafe.Pointer) float64
	deinitFn func(initid unsafe.Pointer)
}

// Name returns the SQL name.
func (f *Function) Name() string { return f.name }

// ReturnType returns the declared result type.
func (f *Function) ReturnType() udf.ReturnType { return f.returns }

// Init calls <name>_init if the library has one.
func (f *Function) Init(initid *udf.UDFInit, args *udf.UDFArgs, msg *byte) byte {
	if f.initFn == nil {
		return 0
	}
	return f.initFn(unsafe.Pointer(initid), unsafe.Pointer(args), unsafe.Pointer(msg))
}

// Evaluate calls <name> for one row.
func (f *Function) Evaluate(initid *udf.UDFInit, args *udf.UDFArgs) udf.RowResult {
	var flags [2]byte
	var pinner runtime.Pinner
	pinner.Pin(&flags)
	defer pinner.Unpin()

	var res udf.RowResult
	if f.returns == udf.ReturnReal {
		res.Real = f.realRow(unsafe.Pointer(initid), unsafe.Pointer(args), unsafe.Pointer(&flags[0]), unsafe.Pointer(&flags[1]))
	} else {
		res.Int = f.intRow(unsafe.Pointer(initid), unsafe.Pointer(args), unsafe.Pointer(&flags[0]), unsafe.Pointer(&flags[1]))
	}
	res.Null = flags[0] != 0
	res.Error = flags[1] != 0
	return res
}

// Deinit calls <name>_deinit if the library has one.
func (f *Function) Deinit(initid *udf.UDFInit) {
	if f.deinitFn == nil {
		return
	}
	f.deinitFn(unsafe.Pointer(initid))
}

// FindLibrary looks for a plugin file in the places a server or a developer
// would keep it and returns the first existing path, or "" if none.
func FindLibrary(name string, dirs ...string) string {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name
		}
		return ""
	}

	searchPaths := append([]string{}, dirs...)
	if dir := os.Getenv("GOUDF_PLUGIN_DIR"); dir != "" {
		searchPaths = append(searchPaths, dir)
	}
	searchPaths = append(searchPaths, ".")
	if execPath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Dir(execPath))
	}
	switch runtime.GOOS {
	case "linux":
		searchPaths = append(searchPaths, "/usr/lib/mysql/plugin", "/usr/lib64/mysql/plugin", "/usr/local/mysql/lib/plugin")
	case "darwin":
		searchPaths = append(searchPaths, "/usr/local/mysql/lib/plugin", "/opt/homebrew/lib/plugin")
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var _ udf.Binding = (*Function)(nil)
