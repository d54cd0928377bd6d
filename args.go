package udf

import "iter"

// RowArg is one positional argument of an evaluation call.
type RowArg struct {
	index int
	value ArgValue
}

// Index returns the zero-based position of the argument.
func (a RowArg) Index() int { return a.index }

// Value returns the interpreted argument.
func (a RowArg) Value() ArgValue { return a.value }

// RowArgs is a forward-only iterator over the arguments of a single call.
// It is built fresh for every call and must not be kept after the call
// returns: the shim detaches it from host memory once the extension is done.
type RowArgs struct {
	raw *UDFArgs
	idx uint32
	n   uint32
}

func newRowArgs(raw *UDFArgs) *RowArgs {
	ra := &RowArgs{raw: raw}
	if raw != nil {
		ra.n = raw.ArgCount
	}
	return ra
}

// Len returns the number of arguments of the call, consumed or not.
func (r *RowArgs) Len() int { return int(r.n) }

// Remaining returns how many arguments Next has yet to yield.
func (r *RowArgs) Remaining() int {
	if r.raw == nil || r.idx >= r.n {
		return 0
	}
	return int(r.n - r.idx)
}

// Next yields the next argument. Once it has returned false it keeps
// returning false.
func (r *RowArgs) Next() (RowArg, bool) {
	if r.raw == nil || r.idx >= r.n {
		return RowArg{}, false
	}
	i := r.idx
	r.idx++
	return RowArg{
		index: int(i),
		value: newArgValue(r.raw.argType(i), r.raw.argData(i), r.raw.argLength(i)),
	}, true
}

// All consumes the iterator, yielding index and argument pairs.
func (r *RowArgs) All() iter.Seq2[int, RowArg] {
	return func(yield func(int, RowArg) bool) {
		for {
			arg, ok := r.Next()
			if !ok || !yield(arg.index, arg) {
				return
			}
		}
	}
}

// Values consumes the iterator, yielding interpreted argument values.
func (r *RowArgs) Values() iter.Seq[ArgValue] {
	return func(yield func(ArgValue) bool) {
		for {
			arg, ok := r.Next()
			if !ok || !yield(arg.value) {
				return
			}
		}
	}
}

// detach drops the reference to host memory at the end of a call.
func (r *RowArgs) detach() {
	r.raw = nil
	r.idx = r.n
}

// InitArg is one positional argument seen during setup. Besides the value it
// carries the host's declaration of whether the argument may be NULL, which
// only exists while the function is being set up.
type InitArg struct {
	RowArg
	maybeNull bool
	attribute string
}

// MaybeNull reports whether the host declared the argument nullable.
func (a InitArg) MaybeNull() bool { return a.maybeNull }

// Attribute returns the argument's expression text or alias as sent by the
// host, empty when the host provides none.
func (a InitArg) Attribute() string { return a.attribute }

// InitArgs is the setup-time counterpart of RowArgs.
// Constant arguments carry their value; all others arrive as NULL.
type InitArgs struct {
	rows *RowArgs
}

func newInitArgs(raw *UDFArgs) *InitArgs {
	return &InitArgs{rows: newRowArgs(raw)}
}

// Len returns the number of arguments the function was called with.
func (a *InitArgs) Len() int { return a.rows.Len() }

// Remaining returns how many arguments Next has yet to yield.
func (a *InitArgs) Remaining() int { return a.rows.Remaining() }

// Next yields the next argument with its setup-time metadata.
func (a *InitArgs) Next() (InitArg, bool) {
	arg, ok := a.rows.Next()
	if !ok {
		return InitArg{}, false
	}
	i := uint32(arg.index)
	return InitArg{
		RowArg:    arg,
		maybeNull: a.rows.raw.argMaybeNull(i),
		attribute: a.rows.raw.argAttribute(i),
	}, true
}

// All consumes the iterator, yielding index and argument pairs.
func (a *InitArgs) All() iter.Seq2[int, InitArg] {
	return func(yield func(int, InitArg) bool) {
		for {
			arg, ok := a.Next()
			if !ok || !yield(arg.index, arg) {
				return
			}
		}
	}
}

func (a *InitArgs) detach() { a.rows.detach() }
