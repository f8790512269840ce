package gonum

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/optkit-io/optkit/opt/engine"
)

const (
	// convergeWindow is the number of consecutive non-improving major
	// iterations before a tolerance-driven run is declared converged.
	convergeWindow = 20

	// defaultFTolAbs terminates local runs that were given no stop
	// criteria at all.
	defaultFTolAbs = 1e-12

	// globalEvalBudget is the per-dimension evaluation budget applied
	// to global runs that were given no evaluation cap. Random search
	// has no intrinsic stopping rule.
	globalEvalBudget = 1000
)

// search is one live optimization context: an algorithm bound to a
// fixed dimensionality, plus the configuration applied before Run.
type search struct {
	alg engine.Algorithm
	dim int
	src rand.Source

	lower, upper []float64
	tol          engine.Tolerances
	dir          engine.Direction
	cb           engine.Callback
	local        *search

	forced    atomic.Bool
	destroyed bool
}

// SetBounds applies per-dimension limits. Both slices must match the
// context's dimensionality. Inverted pairs are accepted here; local
// algorithms collapse evaluation points onto the lower limit, global
// ones report INVALID_ARGS from Run because the sampler needs a
// well-formed box.
func (s *search) SetBounds(lower, upper []float64) error {
	if len(lower) != s.dim || len(upper) != s.dim {
		return fmt.Errorf("gonum: bounds length %d/%d does not match dimensionality %d",
			len(lower), len(upper), s.dim)
	}
	s.lower = append([]float64(nil), lower...)
	s.upper = append([]float64(nil), upper...)
	return nil
}

// SetTolerances applies the built-in stop criteria. NaN and zero fields
// stay unset.
func (s *search) SetTolerances(tol engine.Tolerances) error {
	s.tol = tol
	return nil
}

// SetObjective registers the objective callback and direction.
func (s *search) SetObjective(dir engine.Direction, cb engine.Callback) error {
	if cb == nil {
		return fmt.Errorf("gonum: nil objective callback")
	}
	s.dir = dir
	s.cb = cb
	return nil
}

// SetLocalRefinement installs local as the polish step run after the
// global phase. The local context must come from this engine and share
// the dimensionality.
func (s *search) SetLocalRefinement(local engine.Context) error {
	ls, ok := local.(*search)
	if !ok {
		return fmt.Errorf("gonum: local context belongs to a different engine")
	}
	if ls.dim != s.dim {
		return fmt.Errorf("gonum: local dimensionality %d does not match %d", ls.dim, s.dim)
	}
	s.local = ls
	return nil
}

// ForceStop halts the run after the in-flight evaluation. Safe to call
// from inside the objective callback.
func (s *search) ForceStop() {
	s.forced.Store(true)
}

// Destroy releases the context. Idempotent.
func (s *search) Destroy() {
	s.destroyed = true
	s.cb = nil
	s.local = nil
}

// Run drives the search. x carries the initial guess in and the best
// point found out. The status code is returned verbatim, never as an
// error.
func (s *search) Run(x []float64) (engine.Status, float64) {
	if s.destroyed || s.cb == nil {
		return engine.InvalidArgs, math.NaN()
	}
	if len(x) != s.dim {
		return engine.InvalidArgs, math.NaN()
	}

	tr := &tracker{
		dir:     s.dir,
		lower:   s.lower,
		upper:   s.upper,
		stopval: s.tol.StopValue,
		bestX:   make([]float64, s.dim),
	}

	total := int(s.tol.MaxEval) // 0 = uncapped
	first := -1                 // <0 = no cap on this phase
	switch {
	case total > 0 && s.local != nil:
		// Reserve a slice of the budget for the polish phase.
		first = total - total/4
		if first < 1 {
			first = 1
		}
	case total > 0:
		first = total
	case s.alg.IsGlobal():
		first = globalEvalBudget * s.dim
	}

	status := s.phase(s, tr, x, first)

	if s.local != nil && !status.Failed() && !tr.stopvalHit {
		rest := -1
		if total > 0 {
			rest = total - tr.evals
		}
		if rest != 0 && tr.hasBest {
			start := append([]float64(nil), tr.bestX...)
			status = s.phase(s.local, tr, start, rest)
		}
	}

	if !tr.hasBest {
		return status, math.NaN()
	}
	copy(x, tr.bestX)
	return status, tr.bestF
}

// phase runs one gonum method to completion: the context's own
// algorithm first, the installed local refinement second.
func (s *search) phase(ph *search, tr *tracker, start []float64, budget int) engine.Status {
	if ph.alg.IsGlobal() && !ph.boxOK() {
		return engine.InvalidArgs
	}

	cb := ph.cb
	if cb == nil {
		cb = s.cb
	}
	stopped := func() bool {
		if s.forced.Load() {
			return true
		}
		return s.local != nil && s.local.forced.Load()
	}

	problem := optimize.Problem{
		Func: tr.objective(cb, stopped),
		Status: func() (optimize.Status, error) {
			if stopped() {
				return optimize.Failure, nil
			}
			if tr.stopvalHit {
				return optimize.Success, nil
			}
			return optimize.NotTerminated, nil
		},
	}

	settings := &optimize.Settings{Converger: ph.converger(budget)}
	if budget > 0 {
		settings.FuncEvaluations = budget
	}

	var method optimize.Method
	if ph.alg.IsGlobal() {
		method = &optimize.GuessAndCheck{Rander: distmv.NewUniform(ph.intervals(), ph.src)}
	} else {
		method = &optimize.NelderMead{}
	}

	initX := append([]float64(nil), start...)
	result, err := optimize.Minimize(problem, initX, settings, method)
	return translate(result, err, tr, stopped(), ph.explicitTol())
}

// converger picks the convergence rule for one phase. Random search has
// no meaningful function-convergence signal, so global phases run to
// their budget; local phases follow the configured tolerances, falling
// back to an engine default when nothing else would stop the run.
func (ph *search) converger(budget int) optimize.Converger {
	if ph.alg.IsGlobal() {
		return &optimize.FunctionConverge{Iterations: math.MaxInt32}
	}
	if ph.explicitTol() {
		fc := &optimize.FunctionConverge{Iterations: convergeWindow}
		if !math.IsNaN(ph.tol.FAbs) {
			fc.Absolute = ph.tol.FAbs
		}
		if !math.IsNaN(ph.tol.FRel) {
			fc.Relative = ph.tol.FRel
		}
		return fc
	}
	if budget > 0 || !math.IsNaN(ph.tol.StopValue) {
		return &optimize.FunctionConverge{Iterations: math.MaxInt32}
	}
	return &optimize.FunctionConverge{Absolute: defaultFTolAbs, Iterations: convergeWindow}
}

func (ph *search) explicitTol() bool {
	return !math.IsNaN(ph.tol.FAbs) || !math.IsNaN(ph.tol.FRel)
}

// boxOK reports whether the sampler can draw from the bounds: present,
// ordered, and of representable width in every dimension.
func (ph *search) boxOK() bool {
	if ph.lower == nil || ph.upper == nil {
		return false
	}
	for i := range ph.lower {
		lo, hi := ph.lower[i], ph.upper[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
			return false
		}
		if math.IsInf(hi-lo, 0) {
			return false
		}
	}
	return true
}

func (ph *search) intervals() []r1.Interval {
	iv := make([]r1.Interval, ph.dim)
	for i := range iv {
		iv[i] = r1.Interval{Min: ph.lower[i], Max: ph.upper[i]}
	}
	return iv
}

// tracker accumulates the best in-bounds point seen across phases, in
// the caller's optimization sense.
type tracker struct {
	dir          engine.Direction
	lower, upper []float64
	stopval      float64

	evals      int
	bestX      []float64
	bestF      float64
	hasBest    bool
	stopvalHit bool
}

// objective adapts the engine callback into a gonum Problem.Func:
// evaluation points are clamped into the bounds, the best clamped point
// is tracked here, and minimization sense is enforced by negation.
func (t *tracker) objective(cb engine.Callback, stopped func() bool) func([]float64) float64 {
	return func(xs []float64) float64 {
		if stopped() {
			// Probes issued after a forced stop never reach the
			// user objective.
			return math.Inf(1)
		}
		pt := t.clamp(xs)
		f := cb(pt, nil)
		t.evals++
		t.observe(pt, f)
		if t.dir == engine.Maximize {
			return -f
		}
		return f
	}
}

func (t *tracker) clamp(xs []float64) []float64 {
	pt := append([]float64(nil), xs...)
	if t.lower == nil || t.upper == nil {
		return pt
	}
	for i := range pt {
		pt[i] = math.Max(t.lower[i], math.Min(pt[i], t.upper[i]))
	}
	return pt
}

func (t *tracker) observe(pt []float64, f float64) {
	better := !t.hasBest
	if !better {
		if t.dir == engine.Maximize {
			better = f > t.bestF
		} else {
			better = f < t.bestF
		}
	}
	if better {
		t.hasBest = true
		t.bestF = f
		copy(t.bestX, pt)
	}
	if !math.IsNaN(t.stopval) {
		if t.dir == engine.Maximize {
			t.stopvalHit = t.stopvalHit || f >= t.stopval
		} else {
			t.stopvalHit = t.stopvalHit || f <= t.stopval
		}
	}
}

// translate maps one finished gonum run onto the engine's status code
// space. Forced stops and stop-score hits take precedence because the
// generic statuses reported through Problem.Status are placeholders.
func translate(result *optimize.Result, err error, tr *tracker, forced, explicitTol bool) engine.Status {
	if forced {
		return engine.ForcedStop
	}
	if tr.stopvalHit {
		return engine.StopValReached
	}
	if result == nil {
		return engine.Failure
	}
	switch result.Status {
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit:
		return engine.MaxEvalReached
	case optimize.RuntimeLimit:
		return engine.MaxTimeReached
	case optimize.StepConvergence:
		return engine.XTolReached
	case optimize.FunctionConvergence, optimize.MethodConverge:
		if explicitTol {
			return engine.FTolReached
		}
		return engine.Success
	case optimize.Success:
		return engine.Success
	}
	if err != nil {
		return engine.Failure
	}
	return engine.Failure
}
