package opt

// Objective is a black-box score function over a fixed number of scalar
// parameters. The interface is sealed: values come exclusively from the
// FuncN constructors, which fix the parameter count at compile time and
// expand the engine's raw vector into distinct scalar arguments. No
// gradient is ever requested from an objective.
type Objective interface {
	// arity is the declared parameter count.
	arity() int
	// eval scores the first arity() entries of x.
	eval(x []float64) float64
}

type func1 struct {
	fn func(float64) float64
}

func (f func1) arity() int               { return 1 }
func (f func1) eval(x []float64) float64 { return f.fn(x[0]) }

// Func1 adapts a score function of one parameter.
func Func1(fn func(x0 float64) float64) Objective { return func1{fn} }

type func2 struct {
	fn func(float64, float64) float64
}

func (f func2) arity() int               { return 2 }
func (f func2) eval(x []float64) float64 { return f.fn(x[0], x[1]) }

// Func2 adapts a score function of two parameters.
func Func2(fn func(x0, x1 float64) float64) Objective { return func2{fn} }

type func3 struct {
	fn func(float64, float64, float64) float64
}

func (f func3) arity() int               { return 3 }
func (f func3) eval(x []float64) float64 { return f.fn(x[0], x[1], x[2]) }

// Func3 adapts a score function of three parameters.
func Func3(fn func(x0, x1, x2 float64) float64) Objective { return func3{fn} }

type func4 struct {
	fn func(float64, float64, float64, float64) float64
}

func (f func4) arity() int               { return 4 }
func (f func4) eval(x []float64) float64 { return f.fn(x[0], x[1], x[2], x[3]) }

// Func4 adapts a score function of four parameters.
func Func4(fn func(x0, x1, x2, x3 float64) float64) Objective { return func4{fn} }

type func5 struct {
	fn func(float64, float64, float64, float64, float64) float64
}

func (f func5) arity() int               { return 5 }
func (f func5) eval(x []float64) float64 { return f.fn(x[0], x[1], x[2], x[3], x[4]) }

// Func5 adapts a score function of five parameters.
func Func5(fn func(x0, x1, x2, x3, x4 float64) float64) Objective { return func5{fn} }

type func6 struct {
	fn func(float64, float64, float64, float64, float64, float64) float64
}

func (f func6) arity() int               { return 6 }
func (f func6) eval(x []float64) float64 { return f.fn(x[0], x[1], x[2], x[3], x[4], x[5]) }

// Func6 adapts a score function of six parameters.
func Func6(fn func(x0, x1, x2, x3, x4, x5 float64) float64) Objective { return func6{fn} }

type func7 struct {
	fn func(float64, float64, float64, float64, float64, float64, float64) float64
}

func (f func7) arity() int               { return 7 }
func (f func7) eval(x []float64) float64 { return f.fn(x[0], x[1], x[2], x[3], x[4], x[5], x[6]) }

// Func7 adapts a score function of seven parameters.
func Func7(fn func(x0, x1, x2, x3, x4, x5, x6 float64) float64) Objective { return func7{fn} }

type func8 struct {
	fn func(float64, float64, float64, float64, float64, float64, float64, float64) float64
}

func (f func8) arity() int { return 8 }
func (f func8) eval(x []float64) float64 {
	return f.fn(x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7])
}

// Func8 adapts a score function of eight parameters.
func Func8(fn func(x0, x1, x2, x3, x4, x5, x6, x7 float64) float64) Objective { return func8{fn} }
