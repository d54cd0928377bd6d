// Command udfexamples is the example functions built as a MySQL plugin:
//
//	go build -buildmode=c-shared -o libgoudf.so ./cmd/udfexamples
//
// Copy the library into the server's plugin_dir and register the functions:
//
//	CREATE FUNCTION argcount RETURNS INTEGER SONAME 'libgoudf.so';
//	CREATE FUNCTION my_add RETURNS INTEGER SONAME 'libgoudf.so';
//	CREATE FUNCTION my_addf RETURNS REAL SONAME 'libgoudf.so';
//
// Set GOUDF_DEBUG=1 in the server environment to log to its error log.
package main

/*
#include <stdbool.h>
*/
import "C"

import (
	"os"
	"unsafe"

	"github.com/go-pkgz/lgr"

	"github.com/semihalev/go-udf"
	"github.com/semihalev/go-udf/ext"
)

func init() {
	if os.Getenv("GOUDF_DEBUG") != "" {
		udf.SetLogger(lgr.New(lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.Out(os.Stderr), lgr.Err(os.Stderr)))
	}
}

func main() {}

func initArgs(initid, args unsafe.Pointer, msg *C.char) (*udf.UDFInit, *udf.UDFArgs, *byte) {
	return (*udf.UDFInit)(initid), (*udf.UDFArgs)(args), (*byte)(unsafe.Pointer(msg))
}

func rowFlags(isNull, errFlag *C.uchar) (*byte, *byte) {
	return (*byte)(unsafe.Pointer(isNull)), (*byte)(unsafe.Pointer(errFlag))
}

//export argcount_init
func argcount_init(initid, args unsafe.Pointer, msg *C.char) C.bool {
	return C.bool(ext.ArgCountFunc.Init(initArgs(initid, args, msg)) != 0)
}

//export argcount
func argcount(initid, args unsafe.Pointer, isNull, errFlag *C.uchar) C.longlong {
	n, e := rowFlags(isNull, errFlag)
	return C.longlong(ext.ArgCountFunc.Row((*udf.UDFInit)(initid), (*udf.UDFArgs)(args), n, e))
}

//export argcount_deinit
func argcount_deinit(initid unsafe.Pointer) {
	ext.ArgCountFunc.Deinit((*udf.UDFInit)(initid))
}

//export my_add_init
func my_add_init(initid, args unsafe.Pointer, msg *C.char) C.bool {
	return C.bool(ext.AddFunc.Init(initArgs(initid, args, msg)) != 0)
}

//export my_add
func my_add(initid, args unsafe.Pointer, isNull, errFlag *C.uchar) C.longlong {
	n, e := rowFlags(isNull, errFlag)
	return C.longlong(ext.AddFunc.Row((*udf.UDFInit)(initid), (*udf.UDFArgs)(args), n, e))
}

//export my_add_deinit
func my_add_deinit(initid unsafe.Pointer) {
	ext.AddFunc.Deinit((*udf.UDFInit)(initid))
}

//export my_addf_init
func my_addf_init(initid, args unsafe.Pointer, msg *C.char) C.bool {
	return C.bool(ext.AddFFunc.Init(initArgs(initid, args, msg)) != 0)
}

//export my_addf
func my_addf(initid, args unsafe.Pointer, isNull, errFlag *C.uchar) C.double {
	n, e := rowFlags(isNull, errFlag)
	return C.double(ext.AddFFunc.Row((*udf.UDFInit)(initid), (*udf.UDFArgs)(args), n, e))
}

//export my_addf_deinit
func my_addf_deinit(initid unsafe.Pointer) {
	ext.AddFFunc.Deinit((*udf.UDFInit)(initid))
}
