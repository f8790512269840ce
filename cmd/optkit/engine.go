package main

import (
	"fmt"

	"github.com/optkit-io/optkit/opt/engine"
	gonumengine "github.com/optkit-io/optkit/opt/engine/gonum"
	nloptengine "github.com/optkit-io/optkit/opt/engine/nlopt"
)

// engineFor maps an engine name to a factory producing fresh instances.
// The nlopt backend is probed once up front so a binary built without
// the nlopt tag fails at startup instead of on the first run.
func engineFor(name string) (func() engine.Engine, error) {
	switch name {
	case "gonum":
		return func() engine.Engine { return gonumengine.New() }, nil
	case "nlopt":
		if _, err := nloptengine.New(); err != nil {
			return nil, err
		}
		return func() engine.Engine {
			e, _ := nloptengine.New()
			return e
		}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q, want gonum or nlopt", name)
	}
}
