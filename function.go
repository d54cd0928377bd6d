package udf

import "io"

// Function is the per-row half of an extension. ProcessRow is called once per
// row between a successful setup and teardown. It reports failure with a
// non-nil error only; the message never reaches the host.
//
// Implementations are reached from whatever server threads run their
// instance, one call at a time per instance.
type Function[O any] interface {
	ProcessRow(args *RowArgs) (O, error)
}

// Constructor is the setup half of an extension. It validates the arguments,
// may adjust cfg, and returns the instance every row of this usage site will
// be evaluated with. The error text is delivered to the host verbatim,
// truncated to MaxErrMsgLen bytes. args must not be retained.
type Constructor[U any] func(cfg *InitConfig, args *InitArgs) (U, error)

// ReturnType is the SQL return type a function is declared with.
type ReturnType int

const (
	// ReturnInteger is RETURNS INTEGER, a long long result.
	ReturnInteger ReturnType = iota
	// ReturnReal is RETURNS REAL, a double result.
	ReturnReal
)

// String returns the keyword used in CREATE FUNCTION.
func (t ReturnType) String() string {
	if t == ReturnReal {
		return "REAL"
	}
	return "INTEGER"
}

func returnTypeOf[R Numeric]() ReturnType {
	var zero R
	if _, ok := any(zero).(float64); ok {
		return ReturnReal
	}
	return ReturnInteger
}

// RowResult is a row outcome independent of the result type.
type RowResult struct {
	Int   int64
	Real  float64
	Null  bool
	Error bool
}

// Binding is a loadable function seen through the host's three calls,
// whatever its result type. Definitions and loaded libraries both satisfy it.
type Binding interface {
	Name() string
	ReturnType() ReturnType
	Init(initid *UDFInit, args *UDFArgs, msg *byte) byte
	Evaluate(initid *UDFInit, args *UDFArgs) RowResult
	Deinit(initid *UDFInit)
}

// Definition ties a typed extension U to the host's init, row and deinit
// entry points. It holds no per-instance state and is safe to share across
// all instances.
type Definition[U Function[O], O Output[R], R Numeric] struct {
	name  string
	newFn Constructor[U]
}

// Define creates the definition of function name backed by newFn.
//
// Plugins export it as three C symbols:
//
//	var myAdd = udf.Define[*Add, udf.Int, int64]("my_add", NewAdd)
//
//	//export my_add_init
//	func my_add_init(initid, args unsafe.Pointer, msg *C.char) C.bool {
//		return C.bool(myAdd.Init((*udf.UDFInit)(initid), (*udf.UDFArgs)(args), (*byte)(unsafe.Pointer(msg))) != 0)
//	}
func Define[U Function[O], O Output[R], R Numeric](name string, newFn Constructor[U]) *Definition[U, O, R] {
	return &Definition[U, O, R]{name: name, newFn: newFn}
}

// Name returns the SQL name of the function.
func (d *Definition[U, O, R]) Name() string { return d.name }

// ReturnType returns INTEGER or REAL according to R.
func (d *Definition[U, O, R]) ReturnType() ReturnType { return returnTypeOf[R]() }

// closeInstance lets extensions holding resources release them at deinit.
func closeInstance(name string, v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logf("[WARN] %s: close instance: %v", name, err)
	}
}
