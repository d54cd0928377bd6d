// Package ext contains example loadable functions built on package udf.
// Importing it registers them by name for in-process hosts.
package ext

import (
	"github.com/semihalev/go-udf"
)

// Definitions exported by the example plugin.
var (
	ArgCountFunc = udf.Define[ArgCount, udf.Int, int64]("argcount", NewArgCount)
	AddFunc      = udf.Define[Add, udf.Int, int64]("my_add", NewAdd)
	AddFFunc     = udf.Define[AddF, udf.Real, float64]("my_addf", NewAddF)
)

func init() {
	udf.Register(ArgCountFunc)
	udf.Register(AddFunc)
	udf.Register(AddFFunc)
}

// ArgCount returns the number of arguments it was called with.
type ArgCount struct{}

// NewArgCount accepts any arguments.
func NewArgCount(*udf.InitConfig, *udf.InitArgs) (ArgCount, error) {
	return ArgCount{}, nil
}

// ProcessRow counts the row's arguments.
func (ArgCount) ProcessRow(args *udf.RowArgs) (udf.Int, error) {
	return udf.Int(args.Len()), nil
}

// Add sums integer arguments, skipping NULLs.
type Add struct{}

// NewAdd rejects any argument that is not an integer.
func NewAdd(_ *udf.InitConfig, args *udf.InitArgs) (Add, error) {
	if err := udf.ExpectTypes("my_add", args, udf.INT_RESULT); err != nil {
		return Add{}, err
	}
	return Add{}, nil
}

// ProcessRow adds up the non-NULL arguments.
func (Add) ProcessRow(args *udf.RowArgs) (udf.Int, error) {
	var total int64
	for v := range args.Values() {
		if i, ok := v.Int(); ok {
			total += i
		}
	}
	return udf.Int(total), nil
}

// AddF sums integer and real arguments as a double, skipping NULLs.
type AddF struct{}

// NewAddF rejects any argument that is neither an integer nor a real.
func NewAddF(_ *udf.InitConfig, args *udf.InitArgs) (AddF, error) {
	if err := udf.ExpectTypes("my_addf", args, udf.INT_RESULT, udf.REAL_RESULT); err != nil {
		return AddF{}, err
	}
	return AddF{}, nil
}

// ProcessRow adds up the non-NULL arguments.
func (AddF) ProcessRow(args *udf.RowArgs) (udf.Real, error) {
	var total float64
	for v := range args.Values() {
		if n, ok := v.Number(); ok {
			total += n
		}
	}
	return udf.Real(total), nil
}
