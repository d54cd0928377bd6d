/*
Package udf lets Go code implement MySQL loadable functions (UDFs) through a
typed, memory-safe surface instead of raw UDF_INIT and UDF_ARGS pointers.

# Overview

The server calls three C entry points per function: <name>_init once per
usage site, <name> once per row and <name>_deinit once at the end. This
package owns everything between those entry points and the extension:

1. Argument decoding - the host's parallel arrays of type tags, data
   pointers and lengths are exposed as forward-only iterators of ArgValue
2. Instance ownership - the value returned by the extension's constructor is
   kept behind the opaque UDF_INIT.ptr slot and released exactly once
3. Error reporting - constructor errors become the bounded, NUL-terminated
   init message; row errors become the host's error flag
4. Result marshalling - Int, Real, NullInt and NullReal map onto the host's
   value plus null-flag convention for INTEGER and REAL functions

# Writing a Function

	type Add struct{}

	func NewAdd(cfg *udf.InitConfig, args *udf.InitArgs) (*Add, error) {
		if err := udf.ExpectTypes("my_add", args, udf.INT_RESULT); err != nil {
			return nil, err
		}
		return &Add{}, nil
	}

	func (a *Add) ProcessRow(args *udf.RowArgs) (udf.Int, error) {
		var total int64
		for v := range args.Values() {
			if i, ok := v.Int(); ok {
				total += i
			}
		}
		return udf.Int(total), nil
	}

	var myAdd = udf.Define[*Add, udf.Int, int64]("my_add", NewAdd)

# Exporting it from a Plugin

Build the plugin with -buildmode=c-shared and export the three symbols:

	//export my_add_init
	func my_add_init(initid, args unsafe.Pointer, msg *C.char) C.bool {
		return C.bool(myAdd.Init((*udf.UDFInit)(initid), (*udf.UDFArgs)(args), (*byte)(unsafe.Pointer(msg))) != 0)
	}

	//export my_add
	func my_add(initid, args unsafe.Pointer, isNull, errFlag *C.uchar) C.longlong {
		return C.longlong(myAdd.Row((*udf.UDFInit)(initid), (*udf.UDFArgs)(args),
			(*byte)(unsafe.Pointer(isNull)), (*byte)(unsafe.Pointer(errFlag))))
	}

	//export my_add_deinit
	func my_add_deinit(initid unsafe.Pointer) {
		myAdd.Deinit((*udf.UDFInit)(initid))
	}

Then in MySQL:

	CREATE FUNCTION my_add RETURNS INTEGER SONAME 'libgoudf.so';
	SELECT my_add(1, NULL, 5);

# Threading

The server may run many instances of a function at once, but the calls of a
single instance never overlap. Extension types therefore need no locking for
their own state; anything shared between instances must be synchronised by
the extension.

# Host ABI

UDFInit and UDFArgs mirror MySQL 8 udf_registration_types.h. An argument
type tag outside Item_result is treated as an ABI mismatch and panics with
*ABIError. Other panics raised by extension code are recovered and reported
through the regular failure channels.
*/
package udf
