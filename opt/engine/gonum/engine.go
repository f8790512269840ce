// Package gonum provides the default optimization engine, built on the
// derivative-free methods of gonum's optimize package: the Nelder-Mead
// downhill simplex for local algorithms and uniform random search over
// the bounding box for global ones. It is pure Go and always available.
package gonum

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/optkit-io/optkit/opt/engine"
)

// Engine creates gonum-backed optimization contexts.
type Engine struct {
	mu     sync.Mutex
	seed   uint64
	seeded bool
}

// New returns a ready Engine. An unseeded engine draws its random
// streams from the wall clock.
func New() *Engine {
	return &Engine{}
}

// Name returns "gonum".
func (e *Engine) Name() string { return "gonum" }

// Seed fixes the pseudo-random stream handed to contexts created after
// this call. Contexts created with the same seed sample identically.
func (e *Engine) Seed(seed uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed = seed
	e.seeded = true
}

// Create acquires a context for one algorithm and one fixed
// dimensionality. The caller owns the context and must Destroy it.
func (e *Engine) Create(alg engine.Algorithm, dim int) (engine.Context, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("gonum: unsupported algorithm %d", int(alg))
	}
	if dim < 1 {
		return nil, fmt.Errorf("gonum: dimensionality must be positive, got %d", dim)
	}
	return &search{
		alg: alg,
		dim: dim,
		src: e.source(),
		tol: engine.Tolerances{
			FAbs:      math.NaN(),
			FRel:      math.NaN(),
			StopValue: math.NaN(),
		},
	}, nil
}

func (e *Engine) source() rand.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.seed
	if !e.seeded {
		s = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(s, s)
}
