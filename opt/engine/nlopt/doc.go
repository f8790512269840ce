// Package nlopt is an optional optimization engine backed by libnlopt.
// It is compiled only with the "nlopt" build tag on a system with the
// NLopt development headers installed and cgo enabled; in every other
// build New returns ErrNotBuilt and the gonum engine stays the default.
// Status codes from nlopt_optimize are reported verbatim.
package nlopt
