package udf

import (
	"runtime/cgo"
	"sync/atomic"
)

// The per-instance state lives behind a cgo.Handle stored in UDF_INIT.ptr.
// The host only ever sees the handle's integer value; the boxed *U is owned
// by the shim from a successful init until deinit.

var liveInstances atomic.Int64

// LiveInstances returns the number of instances initialised and not yet
// released in this process.
func LiveInstances() int64 { return liveInstances.Load() }

func storeInstance[U any](initid *UDFInit, u U) {
	p := new(U)
	*p = u
	initid.Ptr = uintptr(cgo.NewHandle(p))
	liveInstances.Add(1)
}

// loadInstance resolves the handle. It must only be called between a
// successful init and deinit.
func loadInstance[U any](initid *UDFInit) *U {
	return cgo.Handle(initid.Ptr).Value().(*U)
}

// releaseInstance frees the handle and clears the slot. A zero slot means
// init never succeeded and is left alone.
func releaseInstance[U any](initid *UDFInit) (*U, bool) {
	if initid.Ptr == 0 {
		return nil, false
	}
	h := cgo.Handle(initid.Ptr)
	p, _ := h.Value().(*U)
	h.Delete()
	initid.Ptr = 0
	liveInstances.Add(-1)
	return p, true
}
