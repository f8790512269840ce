package opt

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/optkit-io/optkit/opt/engine"
	"github.com/optkit-io/optkit/opt/engine/gonum"
)

// Optimizer drives a search Method against an Objective through an
// engine provider. One Optimizer runs one optimization at a time;
// concurrent runs require independent Optimizers. Engine contexts are
// acquired per Optimize call and released before it returns, so an
// Optimizer holds no engine resources between runs.
type Optimizer struct {
	method   Method
	eng      engine.Engine
	criteria StopCriteria
	dir      engine.Direction
	dirSet   bool
	log      *zap.Logger
}

// Option configures an Optimizer at construction time.
type Option func(*Optimizer)

// WithEngine selects the engine provider. The default is the pure-Go
// provider from opt/engine/gonum.
func WithEngine(eng engine.Engine) Option {
	return func(o *Optimizer) {
		if eng != nil {
			o.eng = eng
		}
	}
}

// WithLogger attaches a logger for run lifecycle events, emitted at
// debug level. The default logger discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *Optimizer) {
		if log != nil {
			o.log = log
		}
	}
}

// WithCriteria sets the initial stopping rules, like a SetCriteria call
// during construction.
func WithCriteria(c *StopCriteria) Option {
	return func(o *Optimizer) {
		o.SetCriteria(c)
	}
}

// New returns an Optimizer for the given method. The direction of
// optimization carries no default; call ToMin or ToMax before
// Optimize.
func New(method Method, opts ...Option) *Optimizer {
	o := &Optimizer{
		method:   method,
		eng:      gonum.New(),
		criteria: *NewStopCriteria(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewDefaultGlobal returns an optimizer on the default global strategy,
// an evolutionary search with simplex refinement. It behaves well
// without per-problem tuning.
func NewDefaultGlobal(opts ...Option) *Optimizer { return New(Genetic(), opts...) }

// NewDefaultLocal returns an optimizer on the default local strategy,
// the subspace-searching simplex.
func NewDefaultLocal(opts ...Option) *Optimizer { return New(Subplex(), opts...) }

// ToMin directs the next run to minimize the objective.
func (o *Optimizer) ToMin() *Optimizer {
	o.dir = engine.Minimize
	o.dirSet = true
	return o
}

// ToMax directs the next run to maximize the objective.
func (o *Optimizer) ToMax() *Optimizer {
	o.dir = engine.Maximize
	o.dirSet = true
	return o
}

// SetCriteria copies the stopping rules into the optimizer. Later
// mutation of c does not affect the optimizer; the stored copy is
// reachable through Criteria. A nil c resets to the all-unset
// defaults.
func (o *Optimizer) SetCriteria(c *StopCriteria) *Optimizer {
	if c == nil {
		c = NewStopCriteria()
	}
	o.criteria = *c
	return o
}

// Criteria returns the optimizer's stored stopping rules for
// inspection or chained mutation. Safe only between runs.
func (o *Optimizer) Criteria() *StopCriteria { return &o.criteria }

// Seed forwards immediately to the engine's random number seeding
// facility. Its scope (per engine value, per process) is
// engine-defined; deterministic algorithms ignore it.
func (o *Optimizer) Seed(seed uint64) {
	o.eng.Seed(seed)
}

// Optimize searches for the best parameter vector. The initial guess
// and the bounds must both match the objective's parameter count.
//
// The returned error covers configuration faults only. Once the engine
// runs, its termination code lands in Result.Code verbatim; even on a
// negative code the Result carries the best point seen, and an early
// termination through the stop condition is a regular outcome, not a
// failure.
func (o *Optimizer) Optimize(obj Objective, initial Input, bounds Bounds) (Result, error) {
	r := Result{Code: engine.Failure, Score: math.NaN()}

	if o.method == nil {
		return r, ErrNilMethod
	}
	if obj == nil {
		return r, ErrNilObjective
	}
	if !o.dirSet {
		return r, ErrDirectionUnset
	}
	n := obj.arity()
	if len(initial) != n {
		return r, fmt.Errorf("%w: initial guess has %d values, objective takes %d",
			ErrDimensionMismatch, len(initial), n)
	}
	if len(bounds) != n {
		return r, fmt.Errorf("%w: %d bounds for %d parameters",
			ErrDimensionMismatch, len(bounds), n)
	}

	st := o.method.strategy()

	primary, err := acquire(o.eng, st.primary, n)
	if err != nil {
		return r, err
	}
	defer primary.release()

	var local *handle
	if st.combined {
		local, err = acquire(o.eng, st.local, n)
		if err != nil {
			return r, err
		}
		defer local.release()
	}

	if err := o.arm(primary, obj, bounds, n); err != nil {
		return r, err
	}
	if local != nil {
		if err := o.arm(local, obj, bounds, n); err != nil {
			return r, err
		}
		if err := primary.ctx.SetLocalRefinement(local.ctx); err != nil {
			return r, err
		}
	}

	o.log.Debug("optimization started",
		zap.String("method", o.method.String()),
		zap.String("direction", o.dir.String()),
		zap.String("engine", o.eng.Name()),
		zap.Int("dimensions", n))

	// The engine overwrites the vector in place; seed it with the
	// initial guess so an immediate stop still yields a usable result.
	r.Optimum = append(Input(nil), initial...)
	r.Code, r.Score = primary.ctx.Run(r.Optimum)

	o.log.Debug("optimization finished",
		zap.String("status", r.Code.String()),
		zap.Float64("score", r.Score))
	return r, nil
}

// arm applies bounds, stopping rules and the callback adapter to one
// engine context. In the combined strategy arm runs once per context,
// each adapter bound to the context it can force-stop.
func (o *Optimizer) arm(h *handle, obj Objective, bounds Bounds, n int) error {
	lower, upper := bounds.split()
	if err := h.ctx.SetBounds(lower, upper); err != nil {
		return err
	}
	if err := h.ctx.SetTolerances(o.criteria.tolerances()); err != nil {
		return err
	}
	return h.ctx.SetObjective(o.dir, o.adapter(obj, h.ctx, n))
}

// adapter bridges the engine's raw callback to the typed objective.
// Per invocation: the stop condition is polled first and a pending stop
// force-stops the bound context, the in-flight evaluation still
// completing so the engine always receives a final score; then the
// first n entries of the raw vector are expanded into the objective's
// scalar parameters. The gradient slot is never written.
func (o *Optimizer) adapter(obj Objective, ctx engine.Context, n int) engine.Callback {
	return func(x, _ []float64) float64 {
		if len(x) < n {
			panic(fmt.Sprintf("opt: engine passed %d values to an objective of %d parameters", len(x), n))
		}
		if o.criteria.StopRequested() {
			ctx.ForceStop()
		}
		return obj.eval(x[:n])
	}
}
