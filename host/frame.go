package host

import (
	"runtime"
	"unsafe"

	"github.com/semihalev/go-udf"
)

// frame is the host-owned argument array of one call, laid out as UDF_ARGS.
// Everything reachable from raw is pinned so the structure can be handed to
// code outside the Go runtime; release must be called once the call returns.
type frame struct {
	raw       udf.UDFArgs
	types     []udf.ArgType
	data      []*byte
	lengths   []udf.ULong
	maybeNull []byte
	attrs     []*byte
	attrLens  []udf.ULong
	pinner    runtime.Pinner
}

func newFrame(vals []Value) *frame {
	f := &frame{raw: udf.UDFArgs{ArgCount: uint32(len(vals))}}
	if len(vals) == 0 {
		return f
	}

	n := len(vals)
	f.types = make([]udf.ArgType, n)
	f.data = make([]*byte, n)
	f.lengths = make([]udf.ULong, n)
	f.maybeNull = make([]byte, n)
	f.attrs = make([]*byte, n)
	f.attrLens = make([]udf.ULong, n)

	for i, v := range vals {
		f.types[i] = v.Type
		if v.MaybeNull {
			f.maybeNull[i] = 1
		}
		if v.Attribute != "" {
			f.attrs[i] = f.pinBytes([]byte(v.Attribute))
			f.attrLens[i] = udf.ULong(len(v.Attribute))
		}
		if v.Null {
			continue
		}
		switch v.Type {
		case udf.INT_RESULT:
			p := new(int64)
			*p = v.Int
			f.pinner.Pin(p)
			f.data[i] = (*byte)(unsafe.Pointer(p))
		case udf.REAL_RESULT:
			p := new(float64)
			*p = v.Real
			f.pinner.Pin(p)
			f.data[i] = (*byte)(unsafe.Pointer(p))
		default:
			f.data[i] = f.pinBytes(v.Bytes)
			f.lengths[i] = udf.ULong(len(v.Bytes))
		}
	}

	f.raw.ArgType = pinSlice(&f.pinner, f.types)
	f.raw.Args = pinSlice(&f.pinner, f.data)
	f.raw.Lengths = pinSlice(&f.pinner, f.lengths)
	f.raw.MaybeNull = pinSlice(&f.pinner, f.maybeNull)
	f.raw.Attributes = pinSlice(&f.pinner, f.attrs)
	f.raw.AttributeLengths = pinSlice(&f.pinner, f.attrLens)
	return f
}

// pinBytes copies b into a pinned buffer. Empty strings get a non-nil
// pointer so they are not mistaken for NULL.
func (f *frame) pinBytes(b []byte) *byte {
	buf := make([]byte, len(b)+1)
	copy(buf, b)
	f.pinner.Pin(&buf[0])
	return &buf[0]
}

func pinSlice[T any](p *runtime.Pinner, s []T) *T {
	d := unsafe.SliceData(s)
	p.Pin(d)
	return d
}

func (f *frame) args() *udf.UDFArgs { return &f.raw }

func (f *frame) release() { f.pinner.Unpin() }
