package opt

import "errors"

// Sentinel errors for configuration faults detected on the Go side
// before the engine runs. Engine termination codes are never converted
// into errors; they travel inside Result.Code.
var (
	// ErrDirectionUnset is returned by Optimize when neither ToMin nor
	// ToMax was called. There is no default direction.
	ErrDirectionUnset = errors.New("opt: optimization direction not set, call ToMin or ToMax")

	// ErrNilObjective is returned by Optimize for a nil objective.
	ErrNilObjective = errors.New("opt: nil objective")

	// ErrNilMethod is returned by Optimize when the optimizer was
	// constructed with a nil method.
	ErrNilMethod = errors.New("opt: nil method")

	// ErrDimensionMismatch is returned by Optimize when the initial
	// guess or the bounds disagree with the objective's parameter count.
	ErrDimensionMismatch = errors.New("opt: dimension mismatch")

	// ErrEngineCreate wraps an engine's refusal to create a context for
	// the requested algorithm and dimensionality.
	ErrEngineCreate = errors.New("opt: engine context creation failed")
)
