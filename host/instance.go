// Package host drives loadable functions through the server's init, row
// and deinit contract from Go. It builds argument arrays in the host layout,
// enforces the call order the server guarantees and can load compiled
// plugins, which makes it usable both for tests and for trying a plugin
// without a server.
package host

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/semihalev/go-udf"
)

// State is the lifecycle state of an instance.
type State int

const (
	// StateUninitialized is a new instance, init not yet called.
	StateUninitialized State = iota
	// StateActive is an instance whose init succeeded.
	StateActive
	// StateFailed is an instance whose init failed. It is terminal.
	StateFailed
	// StateTornDown is an instance after deinit. It is terminal.
	StateTornDown
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateActive:        "active",
	StateFailed:        "failed",
	StateTornDown:      "torn-down",
}

func (s State) String() string { return stateNames[s] }

// Settings is what the function declared about its result during init.
type Settings struct {
	MaybeNull bool
	Decimals  uint32
	MaxLength uint64
	ConstItem bool
}

// Instance is one usage site of a function: one init, any number of rows,
// one deinit. Its methods must not be called concurrently.
type Instance struct {
	ID     string
	fn     udf.Binding
	initid udf.UDFInit
	state  State
}

// NewInstance returns an uninitialized instance of fn.
func NewInstance(fn udf.Binding) *Instance {
	return &Instance{ID: uuid.NewString(), fn: fn}
}

// State returns the lifecycle state.
func (in *Instance) State() State { return in.state }

// Init runs <name>_init with the declared arguments. A setup failure is
// returned as an ErrSetup error carrying the message the function wrote.
func (in *Instance) Init(args []Value) error {
	if in.state != StateUninitialized {
		return udf.NewError(udf.ErrLifecycle, fmt.Sprintf("%s: init called on %s instance", in.fn.Name(), in.state))
	}

	f := newFrame(args)
	defer f.release()
	msg := make([]byte, udf.ErrMsgSize)

	if status := in.fn.Init(&in.initid, f.args(), &msg[0]); status != 0 {
		in.state = StateFailed
		text := cString(msg)
		log.Printf("[DEBUG] instance %s of %s failed init: %s", in.ID, in.fn.Name(), text)
		return udf.NewError(udf.ErrSetup, text)
	}
	in.state = StateActive
	log.Printf("[DEBUG] instance %s of %s initialized with %d args", in.ID, in.fn.Name(), len(args))
	return nil
}

// Settings returns the result metadata written during init.
func (in *Instance) Settings() Settings {
	return Settings{
		MaybeNull: in.initid.MaybeNull != 0,
		Decimals:  in.initid.Decimals,
		MaxLength: uint64(in.initid.MaxLength),
		ConstItem: in.initid.ConstItem != 0,
	}
}

// Row evaluates one row.
func (in *Instance) Row(args []Value) (udf.RowResult, error) {
	if in.state != StateActive {
		return udf.RowResult{}, udf.NewError(udf.ErrLifecycle, fmt.Sprintf("%s: row called on %s instance", in.fn.Name(), in.state))
	}
	f := newFrame(args)
	defer f.release()
	return in.fn.Evaluate(&in.initid, f.args()), nil
}

// Deinit runs <name>_deinit.
func (in *Instance) Deinit() error {
	if in.state != StateActive {
		return udf.NewError(udf.ErrLifecycle, fmt.Sprintf("%s: deinit called on %s instance", in.fn.Name(), in.state))
	}
	in.fn.Deinit(&in.initid)
	in.state = StateTornDown
	log.Printf("[DEBUG] instance %s of %s torn down", in.ID, in.fn.Name())
	return nil
}

func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
