package opt

import (
	"math"

	"github.com/optkit-io/optkit/opt/engine"
)

// StopCriteria collects the stopping rules for a run. Every field is
// optional; an unset field leaves the corresponding rule inactive. The
// setters return the receiver so configuration chains:
//
//	criteria := opt.NewStopCriteria().SetRelScoreDiff(1e-6).SetMaxIterations(10000)
//
// The zero value is not ready for use; construct with NewStopCriteria.
// Mutating criteria while a run is in flight is undefined, with one
// exception: the stop condition is polled during the run and may
// observe external state.
type StopCriteria struct {
	absScoreDiff  float64
	relScoreDiff  float64
	stopScore     float64
	maxIterations uint
	stopCond      func() bool
}

// NewStopCriteria returns criteria with every rule unset: score
// tolerances and the stop score are NaN, the iteration cap is zero and
// the stop condition never requests a stop.
func NewStopCriteria() *StopCriteria {
	return &StopCriteria{
		absScoreDiff: math.NaN(),
		relScoreDiff: math.NaN(),
		stopScore:    math.NaN(),
		stopCond:     func() bool { return false },
	}
}

// SetAbsScoreDiff stops the run once the score improves by less than
// diff in absolute terms.
func (c *StopCriteria) SetAbsScoreDiff(diff float64) *StopCriteria {
	c.absScoreDiff = diff
	return c
}

// AbsScoreDiff returns the absolute score tolerance, NaN when unset.
func (c *StopCriteria) AbsScoreDiff() float64 { return c.absScoreDiff }

// SetRelScoreDiff stops the run once the score improves by less than
// diff relative to its magnitude.
func (c *StopCriteria) SetRelScoreDiff(diff float64) *StopCriteria {
	c.relScoreDiff = diff
	return c
}

// RelScoreDiff returns the relative score tolerance, NaN when unset.
func (c *StopCriteria) RelScoreDiff() float64 { return c.relScoreDiff }

// SetStopScore stops the run as soon as a score at least this good is
// found: at most stopScore when minimizing, at least stopScore when
// maximizing.
func (c *StopCriteria) SetStopScore(score float64) *StopCriteria {
	c.stopScore = score
	return c
}

// StopScore returns the stop-score threshold, NaN when unset.
func (c *StopCriteria) StopScore() float64 { return c.stopScore }

// SetMaxIterations caps the number of objective evaluations. Zero
// leaves the run uncapped.
func (c *StopCriteria) SetMaxIterations(n uint) *StopCriteria {
	c.maxIterations = n
	return c
}

// MaxIterations returns the evaluation cap, zero when unset.
func (c *StopCriteria) MaxIterations() uint { return c.maxIterations }

// SetStopCondition installs a predicate polled before every objective
// evaluation; returning true terminates the run early. The predicate
// runs on the optimizing goroutine and must not block. A nil cond
// restores the never-stop default.
func (c *StopCriteria) SetStopCondition(cond func() bool) *StopCriteria {
	if cond == nil {
		cond = func() bool { return false }
	}
	c.stopCond = cond
	return c
}

// StopRequested evaluates the stop condition.
func (c *StopCriteria) StopRequested() bool {
	if c.stopCond == nil {
		return false
	}
	return c.stopCond()
}

// tolerances translates the threshold rules into the engine's wire
// form. The stop condition is not part of it; the callback adapter
// carries that.
func (c *StopCriteria) tolerances() engine.Tolerances {
	return engine.Tolerances{
		FAbs:      c.absScoreDiff,
		FRel:      c.relScoreDiff,
		StopValue: c.stopScore,
		MaxEval:   c.maxIterations,
	}
}
