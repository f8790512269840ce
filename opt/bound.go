package opt

import (
	"math"

	"github.com/optkit-io/optkit/opt/engine"
)

// Bound is one closed interval constraining a single parameter.
//
// Bounds are not validated: an inverted interval (min greater than max)
// passes through to the engine as given, and the engine's behavior on
// that input governs. They are never silently swapped.
type Bound struct {
	min, max float64
}

// NewBound returns the closed interval [min, max].
func NewBound(min, max float64) Bound {
	return Bound{min: min, max: max}
}

// Unbounded returns the widest representable interval, so a parameter
// without a meaningful constraint needs no special casing. Note that
// global search algorithms still require a finite box they can sample.
func Unbounded() Bound {
	return Bound{min: -math.MaxFloat64, max: math.MaxFloat64}
}

// Min returns the lower end of the interval.
func (b Bound) Min() float64 { return b.min }

// Max returns the upper end of the interval.
func (b Bound) Max() float64 { return b.max }

// Bounds holds one interval per parameter, in parameter order. Its
// length must equal the objective's parameter count and it must not be
// mutated while a run is in flight.
type Bounds []Bound

// split separates the intervals into the per-side arrays engines
// consume.
func (bs Bounds) split() (lower, upper []float64) {
	lower = make([]float64, len(bs))
	upper = make([]float64, len(bs))
	for i, b := range bs {
		lower[i] = b.min
		upper[i] = b.max
	}
	return lower, upper
}

// Input is a parameter vector: the initial guess on the way into
// Optimize, the best vector found inside Result. Positions align with
// Bounds and with the objective's declared parameter order.
type Input []float64

// Result is the outcome of one Optimize call.
//
// Code carries the engine's raw termination code, never reinterpreted:
// a negative code reports an engine-side failure or a forced stop, but
// Optimum and Score still describe the best point seen before
// termination.
type Result struct {
	Code    engine.Status
	Optimum Input
	Score   float64
}
