package engine

// Status is the raw termination code of one run. The numbering follows
// the NLopt convention so codes from a native backend pass through
// unchanged: positive values are successful stops, negative values are
// engine-reported failures. Interpretation is left to the caller.
type Status int

const (
	// Failure is a generic engine failure.
	Failure Status = -1

	// InvalidArgs means the run was misconfigured, e.g. a global
	// algorithm without finite bounds.
	InvalidArgs Status = -2

	// OutOfMemory means the engine could not allocate working memory.
	OutOfMemory Status = -3

	// RoundoffLimited means roundoff errors limited further progress.
	RoundoffLimited Status = -4

	// ForcedStop means the stop predicate halted the run; the best
	// point found so far is still reported.
	ForcedStop Status = -5

	// Success is a generic successful stop.
	Success Status = 1

	// StopValReached means the stop-score threshold was met.
	StopValReached Status = 2

	// FTolReached means the score-difference tolerance was met.
	FTolReached Status = 3

	// XTolReached means the parameter-step tolerance was met.
	XTolReached Status = 4

	// MaxEvalReached means the evaluation cap was exhausted.
	MaxEvalReached Status = 5

	// MaxTimeReached means the time budget was exhausted.
	MaxTimeReached Status = 6
)

var statusNames = map[Status]string{
	Failure:         "FAILURE",
	InvalidArgs:     "INVALID_ARGS",
	OutOfMemory:     "OUT_OF_MEMORY",
	RoundoffLimited: "ROUNDOFF_LIMITED",
	ForcedStop:      "FORCED_STOP",
	Success:         "SUCCESS",
	StopValReached:  "STOPVAL_REACHED",
	FTolReached:     "FTOL_REACHED",
	XTolReached:     "XTOL_REACHED",
	MaxEvalReached:  "MAXEVAL_REACHED",
	MaxTimeReached:  "MAXTIME_REACHED",
}

// String returns the NLopt-style status name, or "UNKNOWN" for codes a
// backend invented beyond the common set.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Failed reports whether s is an engine-reported failure code. Note that
// ForcedStop is negative by convention even though the run still yields
// a usable best point.
func (s Status) Failed() bool {
	return s < 0
}
