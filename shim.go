package udf

import "fmt"

// Init is <name>_init. It pre-sets maybe_null from O, runs the constructor
// and on success stores the new instance behind initid.Ptr. On failure it
// writes the NUL-terminated message into msg, which must point at the host's
// ErrMsgSize buffer, and returns 1 without touching initid.Ptr.
func (d *Definition[U, O, R]) Init(initid *UDFInit, args *UDFArgs, msg *byte) byte {
	u, err := d.setup(initid, args)
	if err != nil {
		logf("[DEBUG] %s_init failed: %v", d.name, err)
		writeMessage(msg, err.Error())
		return 1
	}
	storeInstance(initid, u)
	logf("[DEBUG] %s_init done, %d args", d.name, args.ArgCount)
	return 0
}

func (d *Definition[U, O, R]) setup(initid *UDFInit, args *UDFArgs) (u U, err error) {
	initArgs := newInitArgs(args)
	defer initArgs.detach()
	defer func() {
		if r := recover(); r != nil {
			err = recoverExtension(d.name+"_init", ErrSetup, r)
		}
	}()

	cfg := &InitConfig{raw: initid}
	cfg.SetMaybeNull(nullable[R, O]())
	return d.newFn(cfg, initArgs)
}

// Row is <name>. It evaluates one row against the instance created by Init.
// A failed row sets *errFlag and returns the zero value; a NULL result sets
// *isNull and returns the zero value.
func (d *Definition[U, O, R]) Row(initid *UDFInit, args *UDFArgs, isNull, errFlag *byte) R {
	out, err := d.process(initid, args)
	if err != nil {
		logf("[DEBUG] %s row failed: %v", d.name, err)
		*errFlag = 1
		var zero R
		return zero
	}
	v, null := adapt[R](out)
	*isNull = boolByte(null)
	return v
}

func (d *Definition[U, O, R]) process(initid *UDFInit, args *UDFArgs) (out O, err error) {
	rowArgs := newRowArgs(args)
	defer rowArgs.detach()
	defer func() {
		if r := recover(); r != nil {
			err = recoverExtension(d.name, ErrGeneric, r)
		}
	}()

	u := loadInstance[U](initid)
	return (*u).ProcessRow(rowArgs)
}

// Evaluate runs Row and reports the outcome as a RowResult.
func (d *Definition[U, O, R]) Evaluate(initid *UDFInit, args *UDFArgs) RowResult {
	var isNull, errFlag byte
	v := d.Row(initid, args, &isNull, &errFlag)
	res := RowResult{Null: isNull != 0, Error: errFlag != 0}
	switch x := any(v).(type) {
	case int64:
		res.Int = x
	case float64:
		res.Real = x
	}
	return res
}

// Deinit is <name>_deinit. It releases the instance stored by Init; a slot
// that never received an instance is ignored.
func (d *Definition[U, O, R]) Deinit(initid *UDFInit) {
	p, ok := releaseInstance[U](initid)
	if !ok {
		return
	}
	if p != nil {
		closeInstance(d.name, *p)
	}
	logf("[DEBUG] %s_deinit done", d.name)
}

// recoverExtension turns a panic raised by extension code into an ordinary
// failure. ABI violations are re-raised.
func recoverExtension(where string, typ ErrorType, r any) error {
	if abiErr, ok := r.(*ABIError); ok {
		panic(abiErr)
	}
	logf("[WARN] %s: recovered panic: %v", where, r)
	return NewError(typ, fmt.Sprintf("%s: %v", where, r))
}
