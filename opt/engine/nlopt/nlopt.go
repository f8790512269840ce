//go:build nlopt && cgo

package nlopt

/*
#cgo LDFLAGS: -lnlopt -lm
#include <nlopt.h>
#include <stdlib.h>

extern double optkitEval(unsigned n, double *x, double *gradient, void *data);

double optkit_eval_go(unsigned n, const double *x, double *gradient, void *data) {
	return optkitEval(n, (double *)x, gradient, data);
}
*/
import "C"

import (
	"fmt"
	"math"
	"runtime/cgo"
	"unsafe"

	"github.com/optkit-io/optkit/opt/engine"
)

var algorithms = map[engine.Algorithm]C.nlopt_algorithm{
	engine.AlgNelderMead: C.NLOPT_LN_NELDERMEAD,
	engine.AlgSubplex:    C.NLOPT_LN_SBPLX,
	engine.AlgCRS:        C.NLOPT_GN_CRS2_LM,
	engine.AlgESCH:       C.NLOPT_GN_ESCH,
}

// Engine drives libnlopt.
type Engine struct{}

// New returns the libnlopt-backed engine.
func New() (engine.Engine, error) {
	return &Engine{}, nil
}

// Name returns "nlopt".
func (*Engine) Name() string { return "nlopt" }

// Seed forwards to nlopt_srand, which is library-wide state shared by
// every stochastic NLopt run in the process.
func (*Engine) Seed(seed uint64) {
	C.nlopt_srand(C.ulong(seed))
}

// Create allocates one nlopt_opt object. The caller must Destroy it.
func (*Engine) Create(alg engine.Algorithm, dim int) (engine.Context, error) {
	calg, ok := algorithms[alg]
	if !ok {
		return nil, fmt.Errorf("nlopt: unsupported algorithm %d", int(alg))
	}
	if dim < 1 {
		return nil, fmt.Errorf("nlopt: dimensionality must be positive, got %d", dim)
	}
	ptr := C.nlopt_create(calg, C.uint(dim))
	if ptr == nil {
		return nil, fmt.Errorf("nlopt: nlopt_create failed for %s dim %d", alg, dim)
	}
	return &context{ptr: ptr, dim: dim}, nil
}

// context wraps one nlopt_opt object.
type context struct {
	ptr       C.nlopt_opt
	dim       int
	handles   []cgo.Handle
	destroyed bool
}

func (c *context) SetBounds(lower, upper []float64) error {
	if len(lower) != c.dim || len(upper) != c.dim {
		return fmt.Errorf("nlopt: bounds length %d/%d does not match dimensionality %d",
			len(lower), len(upper), c.dim)
	}
	lb := append([]float64(nil), lower...)
	ub := append([]float64(nil), upper...)
	if r := C.nlopt_set_lower_bounds(c.ptr, (*C.double)(unsafe.Pointer(&lb[0]))); r < 0 {
		return resultError("nlopt_set_lower_bounds", r)
	}
	if r := C.nlopt_set_upper_bounds(c.ptr, (*C.double)(unsafe.Pointer(&ub[0]))); r < 0 {
		return resultError("nlopt_set_upper_bounds", r)
	}
	return nil
}

func (c *context) SetTolerances(tol engine.Tolerances) error {
	if !math.IsNaN(tol.FAbs) {
		if r := C.nlopt_set_ftol_abs(c.ptr, C.double(tol.FAbs)); r < 0 {
			return resultError("nlopt_set_ftol_abs", r)
		}
	}
	if !math.IsNaN(tol.FRel) {
		if r := C.nlopt_set_ftol_rel(c.ptr, C.double(tol.FRel)); r < 0 {
			return resultError("nlopt_set_ftol_rel", r)
		}
	}
	if !math.IsNaN(tol.StopValue) {
		if r := C.nlopt_set_stopval(c.ptr, C.double(tol.StopValue)); r < 0 {
			return resultError("nlopt_set_stopval", r)
		}
	}
	if tol.MaxEval > 0 {
		if r := C.nlopt_set_maxeval(c.ptr, C.int(tol.MaxEval)); r < 0 {
			return resultError("nlopt_set_maxeval", r)
		}
	}
	return nil
}

func (c *context) SetObjective(dir engine.Direction, cb engine.Callback) error {
	if cb == nil {
		return fmt.Errorf("nlopt: nil objective callback")
	}
	h := cgo.NewHandle(cb)
	c.handles = append(c.handles, h)
	fn := (C.nlopt_func)(unsafe.Pointer(C.optkit_eval_go))
	var r C.nlopt_result
	if dir == engine.Maximize {
		r = C.nlopt_set_max_objective(c.ptr, fn, unsafe.Pointer(h))
	} else {
		r = C.nlopt_set_min_objective(c.ptr, fn, unsafe.Pointer(h))
	}
	if r < 0 {
		return resultError("nlopt_set_objective", r)
	}
	return nil
}

func (c *context) SetLocalRefinement(local engine.Context) error {
	lc, ok := local.(*context)
	if !ok {
		return fmt.Errorf("nlopt: local context belongs to a different engine")
	}
	// nlopt copies the local optimizer's configuration, so the local
	// context's lifetime stays independent of this one.
	if r := C.nlopt_set_local_optimizer(c.ptr, lc.ptr); r < 0 {
		return resultError("nlopt_set_local_optimizer", r)
	}
	return nil
}

func (c *context) Run(x []float64) (engine.Status, float64) {
	if c.destroyed || len(x) != c.dim {
		return engine.InvalidArgs, math.NaN()
	}
	var score C.double
	r := C.nlopt_optimize(c.ptr, (*C.double)(unsafe.Pointer(&x[0])), &score)
	return engine.Status(int(r)), float64(score)
}

func (c *context) ForceStop() {
	C.nlopt_force_stop(c.ptr)
}

func (c *context) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	C.nlopt_destroy(c.ptr)
	c.ptr = nil
	for _, h := range c.handles {
		h.Delete()
	}
	c.handles = nil
}

func resultError(op string, r C.nlopt_result) error {
	return fmt.Errorf("nlopt: %s: %s", op, engine.Status(int(r)))
}
