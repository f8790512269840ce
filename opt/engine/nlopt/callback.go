//go:build nlopt && cgo

package nlopt

/*
#include <nlopt.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/optkit-io/optkit/opt/engine"
)

// optkitEval is the bridge nlopt calls for every candidate point. The
// user data pointer carries a cgo handle to the registered callback.
// The vectors are views into nlopt-owned memory, valid only for this
// call; the gradient view is forwarded untouched.
//
//export optkitEval
func optkitEval(n C.uint, x *C.double, grad *C.double, data unsafe.Pointer) C.double {
	cb := cgo.Handle(uintptr(data)).Value().(engine.Callback)
	xs := unsafe.Slice((*float64)(unsafe.Pointer(x)), int(n))
	var gs []float64
	if grad != nil {
		gs = unsafe.Slice((*float64)(unsafe.Pointer(grad)), int(n))
	}
	return C.double(cb(xs, gs))
}
