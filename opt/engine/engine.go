// Package engine defines the capability surface the optimizer facade
// consumes from a numerical optimization backend. A provider implements
// Engine and Context; the facade owns every Context it creates for
// exactly one run and releases it with Destroy when the run ends.
package engine

// Direction selects the optimization sense for an objective.
type Direction int

const (
	// Minimize searches for the lowest objective value.
	Minimize Direction = iota

	// Maximize searches for the highest objective value.
	Maximize
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Minimize:
		return "min"
	case Maximize:
		return "max"
	}
	return "unknown"
}

// Callback is the native objective shape: the engine hands over a raw
// parameter vector and an optional gradient slot, and receives one score.
// The vector may be longer than the problem dimension; callers must read
// only the leading entries. None of the supported algorithms use
// derivatives, so grad is never written and may be nil.
type Callback func(x, grad []float64) float64

// Tolerances carries the built-in stop criteria forwarded to a context.
// NaN means an unset floating-point field and zero an unset MaxEval;
// providers apply only the fields that are set.
type Tolerances struct {
	// FAbs stops when the absolute score improvement drops below it.
	FAbs float64

	// FRel stops when the relative score improvement drops below it.
	FRel float64

	// StopValue stops as soon as a score at least this good is found.
	StopValue float64

	// MaxEval caps the number of objective evaluations.
	MaxEval uint
}

// Engine creates optimization contexts and owns the backend's
// process-wide state, such as its pseudo-random seed.
type Engine interface {
	// Name identifies the provider, e.g. "gonum" or "nlopt".
	Name() string

	// Create acquires a fresh context for one algorithm and one fixed
	// dimensionality. The caller must Destroy the context.
	Create(alg Algorithm, dim int) (Context, error)

	// Seed forwards a value to the backend's pseudo-random seeding
	// facility. A no-op for deterministic algorithms.
	Seed(seed uint64)
}

// Context is one live optimization run's engine-side state. Methods are
// not safe for concurrent use; a context belongs to a single run on a
// single goroutine, except ForceStop which the run's own callback may
// invoke re-entrantly.
type Context interface {
	// SetBounds applies per-dimension lower and upper limits. Both
	// slices must have the context's dimensionality. An inverted pair
	// (lower above upper) is passed through; its effect is
	// provider-defined.
	SetBounds(lower, upper []float64) error

	// SetTolerances applies the built-in stop criteria.
	SetTolerances(tol Tolerances) error

	// SetObjective registers the objective callback and the
	// optimization direction. The context retains cb for the lifetime
	// of the run.
	SetObjective(dir Direction, cb Callback) error

	// SetLocalRefinement installs another context of the same engine
	// and dimensionality as the subordinate local-polish step of this
	// context. The local context is configured but never run directly
	// by the caller.
	SetLocalRefinement(local Context) error

	// Run drives the search. x holds the initial guess on entry and
	// the best point found on return; the returned score is that
	// point's objective value. The status code is reported verbatim,
	// negative codes included, and never as a Go error.
	Run(x []float64) (Status, float64)

	// ForceStop asks the run to halt after the in-flight evaluation.
	// Safe to call from within the objective callback.
	ForceStop()

	// Destroy releases the context's resources. Idempotent.
	Destroy()
}
