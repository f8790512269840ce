package engine

// Algorithm identifies one derivative-free search algorithm a provider
// can run. The set is closed; providers reject anything else at Create.
type Algorithm int

const (
	// AlgNelderMead is the downhill simplex local search.
	AlgNelderMead Algorithm = iota + 1

	// AlgSubplex is the subspace-simplex local search.
	AlgSubplex

	// AlgCRS is the controlled random search global method.
	AlgCRS

	// AlgESCH is the evolutionary global method.
	AlgESCH
)

var algorithmNames = map[Algorithm]string{
	AlgNelderMead: "nelder-mead",
	AlgSubplex:    "subplex",
	AlgCRS:        "crs",
	AlgESCH:       "esch",
}

// String returns the lower-case algorithm name, or "invalid" for values
// outside the supported set.
func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return "invalid"
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// IsGlobal reports whether a explores the whole search space rather than
// polishing a single candidate. Global algorithms need finite bounds.
func (a Algorithm) IsGlobal() bool {
	return a == AlgCRS || a == AlgESCH
}
