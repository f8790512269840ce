package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Each wrapper is fed a strictly increasing vector and a score function
// with a distinct positional weight per argument, so any transposition
// or truncation of the expansion changes the score.
func TestFuncExpansionIsPositional(t *testing.T) {
	weighted := func(xs ...float64) float64 {
		s, w := 0.0, 1.0
		for _, x := range xs {
			s += w * x
			w *= 10
		}
		return s
	}

	tests := []struct {
		name  string
		obj   Objective
		arity int
	}{
		{"Func1", Func1(func(a float64) float64 { return weighted(a) }), 1},
		{"Func2", Func2(func(a, b float64) float64 { return weighted(a, b) }), 2},
		{"Func3", Func3(func(a, b, c float64) float64 { return weighted(a, b, c) }), 3},
		{"Func4", Func4(func(a, b, c, d float64) float64 { return weighted(a, b, c, d) }), 4},
		{"Func5", Func5(func(a, b, c, d, e float64) float64 { return weighted(a, b, c, d, e) }), 5},
		{"Func6", Func6(func(a, b, c, d, e, f float64) float64 { return weighted(a, b, c, d, e, f) }), 6},
		{"Func7", Func7(func(a, b, c, d, e, f, g float64) float64 { return weighted(a, b, c, d, e, f, g) }), 7},
		{"Func8", Func8(func(a, b, c, d, e, f, g, h float64) float64 { return weighted(a, b, c, d, e, f, g, h) }), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.arity, tt.obj.arity())

			x := make([]float64, tt.arity)
			want := 0.0
			w := 1.0
			for i := range x {
				x[i] = float64(i + 1)
				want += w * x[i]
				w *= 10
			}
			assert.Equal(t, want, tt.obj.eval(x))
		})
	}
}
