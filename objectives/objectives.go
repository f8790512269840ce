// Package objectives catalogs benchmark problems for exercising the
// optimizer from the CLI, the HTTP service and the test suites. Every
// problem is stated as a minimization; callers maximizing simply flip
// the direction on their optimizer.
package objectives

import (
	"fmt"
	"math"
	"sort"

	"github.com/optkit-io/optkit/opt"
)

// Problem is one benchmark objective together with its conventional
// search box, starting point and known best score.
type Problem struct {
	Name        string
	Description string
	Dim         int
	Objective   opt.Objective
	Bounds      opt.Bounds
	Initial     opt.Input
	BestScore   float64
}

func box(lo, hi float64, dim int) opt.Bounds {
	bs := make(opt.Bounds, dim)
	for i := range bs {
		bs[i] = opt.NewBound(lo, hi)
	}
	return bs
}

var catalog = map[string]Problem{
	"sphere": {
		Name:        "sphere",
		Description: "sum of squares, single minimum at the origin",
		Dim:         2,
		Objective:   opt.Func2(func(x0, x1 float64) float64 { return x0*x0 + x1*x1 }),
		Bounds:      box(-5.12, 5.12, 2),
		Initial:     opt.Input{3, 4},
		BestScore:   0,
	},
	"bowl": {
		Name:        "bowl",
		Description: "shifted quadratic with the minimum at (1, -2)",
		Dim:         2,
		Objective: opt.Func2(func(x0, x1 float64) float64 {
			return (x0-1)*(x0-1) + (x1+2)*(x1+2)
		}),
		Bounds:    box(-10, 10, 2),
		Initial:   opt.Input{0, 0},
		BestScore: 0,
	},
	"rosenbrock": {
		Name:        "rosenbrock",
		Description: "curved narrow valley, minimum at (1, 1)",
		Dim:         2,
		Objective: opt.Func2(func(x0, x1 float64) float64 {
			return (1-x0)*(1-x0) + 100*(x1-x0*x0)*(x1-x0*x0)
		}),
		Bounds:    box(-2.048, 2.048, 2),
		Initial:   opt.Input{-1.2, 1},
		BestScore: 0,
	},
	"himmelblau": {
		Name:        "himmelblau",
		Description: "four equally deep minima",
		Dim:         2,
		Objective: opt.Func2(func(x0, x1 float64) float64 {
			a := x0*x0 + x1 - 11
			b := x0 + x1*x1 - 7
			return a*a + b*b
		}),
		Bounds:    box(-5, 5, 2),
		Initial:   opt.Input{0, 0},
		BestScore: 0,
	},
	"rastrigin": {
		Name:        "rastrigin",
		Description: "highly multimodal, regular grid of local minima",
		Dim:         2,
		Objective: opt.Func2(func(x0, x1 float64) float64 {
			return 20 +
				x0*x0 - 10*math.Cos(2*math.Pi*x0) +
				x1*x1 - 10*math.Cos(2*math.Pi*x1)
		}),
		Bounds:    box(-5.12, 5.12, 2),
		Initial:   opt.Input{4.5, 4.5},
		BestScore: 0,
	},
	"sphere4": {
		Name:        "sphere4",
		Description: "sum of squares in four dimensions",
		Dim:         4,
		Objective: opt.Func4(func(x0, x1, x2, x3 float64) float64 {
			return x0*x0 + x1*x1 + x2*x2 + x3*x3
		}),
		Bounds:    box(-5.12, 5.12, 4),
		Initial:   opt.Input{2, -2, 2, -2},
		BestScore: 0,
	},
}

// Lookup returns the named problem.
func Lookup(name string) (Problem, error) {
	p, ok := catalog[name]
	if !ok {
		return Problem{}, fmt.Errorf("objectives: unknown objective %q", name)
	}
	return p, nil
}

// Names lists the catalog in lexical order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
