package opt

import (
	"fmt"

	"github.com/optkit-io/optkit/opt/engine"
)

// noCopy makes go vet's copylocks check flag any copy of a containing
// type.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// handle owns exactly one engine context for the duration of a single
// run. It is never copied, never shared between runs, and its release
// is deferred immediately after acquisition so the context is destroyed
// on every exit path, a panicking objective included.
type handle struct {
	noCopy   noCopy
	ctx      engine.Context
	released bool
}

// acquire creates an engine context and wraps it in a fresh handle.
func acquire(eng engine.Engine, alg engine.Algorithm, dim int) (*handle, error) {
	ctx, err := eng.Create(alg, dim)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEngineCreate, alg, err)
	}
	return &handle{ctx: ctx}, nil
}

// release destroys the owned context. Only the first call reaches the
// engine; later calls are no-ops.
func (h *handle) release() {
	if h.released {
		return
	}
	h.released = true
	h.ctx.Destroy()
}
