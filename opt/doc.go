// Package opt provides a statically typed, resource-safe facade over
// pluggable numerical optimization engines.
//
// An Optimizer pairs a search Method (a single derivative-free
// algorithm, or a global algorithm refined by a local one) with an
// engine provider and drives it against a black-box Objective of a
// fixed number of scalar parameters. Stopping rules are configured
// through StopCriteria, bounds through one Bound per parameter, and
// the outcome arrives as a Result carrying the engine's termination
// code verbatim.
//
//	optimizer := opt.New(opt.Genetic())
//	optimizer.SetCriteria(opt.NewStopCriteria().SetRelScoreDiff(1e-6).SetMaxIterations(5000))
//	result, err := optimizer.ToMin().Optimize(
//		opt.Func2(func(x, y float64) float64 { return (x-1)*(x-1) + (y+2)*(y+2) }),
//		opt.Input{0, 0},
//		opt.Bounds{opt.NewBound(-10, 10), opt.NewBound(-10, 10)},
//	)
//
// Engine contexts are acquired per run and released on every exit
// path, including a panicking objective. The default engine is the
// pure-Go provider in opt/engine/gonum; opt/engine/nlopt offers a cgo
// binding to libnlopt behind the "nlopt" build tag.
package opt
