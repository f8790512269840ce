//go:build !nlopt || !cgo

package nlopt

import (
	"errors"

	"github.com/optkit-io/optkit/opt/engine"
)

// ErrNotBuilt is returned by New when the binary was built without the
// nlopt tag or without cgo.
var ErrNotBuilt = errors.New("nlopt: engine not built in, rebuild with -tags nlopt and cgo enabled")

// New reports that the libnlopt engine is unavailable in this build.
func New() (engine.Engine, error) {
	return nil, ErrNotBuilt
}
