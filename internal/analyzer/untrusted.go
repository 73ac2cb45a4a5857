package analyzer

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// Outcome is the result of a call into code outside the analyzer's control
type Outcome struct {
	Values []reflect.Value
	Err    error
}

// OK reports whether the call returned normally
func (o Outcome) OK() bool {
	return o.Err == nil
}

// CallUntrusted calls fn with args and turns panics, including memory faults,
// into an error. It never panics itself.
func CallUntrusted(fn reflect.Value, args ...reflect.Value) Outcome {
	var out Outcome
	out.Err = Protect(func() {
		out.Values = fn.Call(args)
	})
	return out
}

// Protect runs f inside a scoped trap. The previous fault setting is
// restored on every path.
func Protect(f func()) (err error) {
	previous := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(previous)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("untrusted call panicked: %v", r)
		}
	}()

	f()
	return nil
}

// callable reports whether methods of v may be invoked through reflection.
// Values read through unexported fields may not.
func callable(v reflect.Value) bool {
	return v.IsValid() && v.CanInterface()
}
