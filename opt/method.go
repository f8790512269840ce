package opt

import (
	"fmt"
	"strings"

	"github.com/optkit-io/optkit/opt/engine"
)

// Method selects the search strategy of an Optimizer: either one
// algorithm on its own, or a global algorithm whose best point is
// refined by a local one. The interface is sealed; values come from the
// Algorithm constructors, Combine and Genetic, so an unsupported
// strategy cannot be expressed.
type Method interface {
	fmt.Stringer
	strategy() strategy
}

// strategy is the engine-facing shape of a Method.
type strategy struct {
	primary  engine.Algorithm
	local    engine.Algorithm
	combined bool
}

// Algorithm identifies a single derivative-free search algorithm.
type Algorithm struct {
	id engine.Algorithm
}

// NelderMead is the downhill simplex local search.
func NelderMead() Algorithm { return Algorithm{id: engine.AlgNelderMead} }

// Subplex is the subspace-searching simplex local search.
func Subplex() Algorithm { return Algorithm{id: engine.AlgSubplex} }

// CRS is the controlled random search global algorithm.
func CRS() Algorithm { return Algorithm{id: engine.AlgCRS} }

// ESCH is the evolutionary global algorithm.
func ESCH() Algorithm { return Algorithm{id: engine.AlgESCH} }

func (a Algorithm) String() string { return a.id.String() }

// Global reports whether the algorithm samples the whole bound box
// rather than descending from the initial guess.
func (a Algorithm) Global() bool { return a.id.IsGlobal() }

func (a Algorithm) strategy() strategy { return strategy{primary: a.id} }

type comb struct {
	global Algorithm
	local  Algorithm
}

// Combine pairs a global algorithm with a local refinement step. Both
// receive the same bounds, stopping rules and objective; the optimizer
// drives only the global one and the engine invokes the local algorithm
// on the global result. Conventionally global is a global sampler and
// local a descent algorithm, but any pairing the engine accepts is
// allowed.
func Combine(global, local Algorithm) Method {
	return comb{global: global, local: local}
}

// Genetic is the evolutionary global search with simplex refinement, a
// robust default when nothing is known about the objective's shape.
func Genetic() Method { return Combine(ESCH(), NelderMead()) }

func (c comb) String() string { return c.global.String() + "+" + c.local.String() }

func (c comb) strategy() strategy {
	return strategy{primary: c.global.id, local: c.local.id, combined: true}
}

// ParseMethod maps a strategy name onto the closed constructor set.
// Recognized names: "neldermead" (also "nelder-mead", "simplex"),
// "subplex" ("sbplx"), "crs" ("crs2"), "esch", and "genetic" for the
// combined evolutionary search with simplex refinement.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "neldermead", "nelder-mead", "simplex":
		return NelderMead(), nil
	case "subplex", "sbplx":
		return Subplex(), nil
	case "crs", "crs2":
		return CRS(), nil
	case "esch":
		return ESCH(), nil
	case "genetic":
		return Genetic(), nil
	}
	return nil, fmt.Errorf("opt: unknown method %q", name)
}

// MethodNames lists the canonical names ParseMethod accepts, for help
// texts and API discovery.
func MethodNames() []string {
	return []string{"neldermead", "subplex", "crs", "esch", "genetic"}
}
