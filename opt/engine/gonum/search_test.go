package gonum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optkit-io/optkit/opt/engine"
)

func noTol() engine.Tolerances {
	return engine.Tolerances{FAbs: math.NaN(), FRel: math.NaN(), StopValue: math.NaN()}
}

func bowl(x, grad []float64) float64 {
	return (x[0]-1)*(x[0]-1) + (x[1]+2)*(x[1]+2)
}

func sphere(x, grad []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v * v
	}
	return s
}

func newContext(t *testing.T, alg engine.Algorithm, dim int) engine.Context {
	t.Helper()
	eng := New()
	ctx, err := eng.Create(alg, dim)
	require.NoError(t, err)
	t.Cleanup(ctx.Destroy)
	return ctx
}

func TestCreateValidation(t *testing.T) {
	eng := New()

	tests := []struct {
		name string
		alg  engine.Algorithm
		dim  int
	}{
		{"invalid algorithm", engine.Algorithm(0), 2},
		{"unknown algorithm", engine.Algorithm(99), 2},
		{"zero dimension", engine.AlgNelderMead, 0},
		{"negative dimension", engine.AlgNelderMead, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := eng.Create(tt.alg, tt.dim)
			assert.Error(t, err)
			assert.Nil(t, ctx)
		})
	}
}

func TestNelderMeadBowl(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	tol := noTol()
	tol.FAbs = 1e-9
	require.NoError(t, ctx.SetTolerances(tol))
	require.NoError(t, ctx.SetObjective(engine.Minimize, bowl))

	x := []float64{0, 0}
	status, score := ctx.Run(x)

	assert.Equal(t, engine.FTolReached, status)
	assert.InDelta(t, 1.0, x[0], 1e-3)
	assert.InDelta(t, -2.0, x[1], 1e-3)
	assert.InDelta(t, 0.0, score, 1e-6)
}

func TestMaximizeMirrorsMinimize(t *testing.T) {
	neg := func(x, grad []float64) float64 { return -bowl(x, nil) }

	minCtx := newContext(t, engine.AlgNelderMead, 2)
	require.NoError(t, minCtx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	tol := noTol()
	tol.FAbs = 1e-9
	require.NoError(t, minCtx.SetTolerances(tol))
	require.NoError(t, minCtx.SetObjective(engine.Minimize, bowl))

	maxCtx := newContext(t, engine.AlgNelderMead, 2)
	require.NoError(t, maxCtx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	require.NoError(t, maxCtx.SetTolerances(tol))
	require.NoError(t, maxCtx.SetObjective(engine.Maximize, neg))

	xMin := []float64{0, 0}
	_, minScore := minCtx.Run(xMin)
	xMax := []float64{0, 0}
	_, maxScore := maxCtx.Run(xMax)

	assert.InDelta(t, minScore, -maxScore, 1e-6, "opposite senses, equal magnitude")
	assert.InDelta(t, xMin[0], xMax[0], 1e-2)
	assert.InDelta(t, xMin[1], xMax[1], 1e-2)
}

func TestStopValueShortCircuits(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	tol := noTol()
	tol.StopValue = 1e6
	require.NoError(t, ctx.SetTolerances(tol))

	evals := 0
	require.NoError(t, ctx.SetObjective(engine.Minimize, func(x, grad []float64) float64 {
		evals++
		return sphere(x, nil)
	}))

	x := []float64{3, 4}
	status, score := ctx.Run(x)

	assert.Equal(t, engine.StopValReached, status)
	assert.Equal(t, 1, evals, "first evaluation already satisfies the threshold")
	assert.InDelta(t, 25.0, score, 1e-12)
	assert.Equal(t, []float64{3, 4}, x)
}

func TestMaxEvalBoundsEvaluations(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	tol := noTol()
	tol.MaxEval = 10
	require.NoError(t, ctx.SetTolerances(tol))

	evals := 0
	require.NoError(t, ctx.SetObjective(engine.Minimize, func(x, grad []float64) float64 {
		evals++
		return sphere(x, nil)
	}))

	x := []float64{5, 5}
	status, _ := ctx.Run(x)

	assert.Equal(t, engine.MaxEvalReached, status)
	assert.LessOrEqual(t, evals, 11, "cap plus at most the in-flight evaluation")
}

func TestForceStopKeepsBestPoint(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	require.NoError(t, ctx.SetTolerances(noTol()))

	evals := 0
	best := math.Inf(1)
	require.NoError(t, ctx.SetObjective(engine.Minimize, func(x, grad []float64) float64 {
		evals++
		if evals == 3 {
			ctx.ForceStop()
		}
		f := sphere(x, nil)
		if f < best {
			best = f
		}
		return f
	}))

	x := []float64{2, 2}
	status, score := ctx.Run(x)

	assert.Equal(t, engine.ForcedStop, status)
	assert.LessOrEqual(t, evals, 4, "at most the in-flight evaluation completes")
	assert.Equal(t, best, score, "best point seen so far is reported")
}

func TestForceStopOnFirstEvaluation(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	require.NoError(t, ctx.SetTolerances(noTol()))

	evals := 0
	require.NoError(t, ctx.SetObjective(engine.Minimize, func(x, grad []float64) float64 {
		evals++
		ctx.ForceStop()
		return sphere(x, nil)
	}))

	x := []float64{3, 4}
	status, score := ctx.Run(x)

	assert.Equal(t, engine.ForcedStop, status)
	assert.Equal(t, 1, evals, "in-flight evaluation completes, nothing follows")
	assert.InDelta(t, 25.0, score, 1e-12)
	assert.Equal(t, []float64{3, 4}, x)
}

func TestOptimumStaysInBounds(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	// The unconstrained minimum (0,0) lies outside the box.
	require.NoError(t, ctx.SetBounds([]float64{2, 2}, []float64{3, 3}))
	tol := noTol()
	tol.FAbs = 1e-9
	require.NoError(t, ctx.SetTolerances(tol))
	require.NoError(t, ctx.SetObjective(engine.Minimize, sphere))

	x := []float64{2.5, 2.5}
	status, score := ctx.Run(x)

	assert.False(t, status.Failed())
	for i, v := range x {
		assert.GreaterOrEqual(t, v, 2.0, "dimension %d", i)
		assert.LessOrEqual(t, v, 3.0, "dimension %d", i)
	}
	assert.InDelta(t, 8.0, score, 1e-2, "constrained minimum sits at the (2,2) corner")
}

func TestGlobalNeedsWellFormedBox(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper []float64
	}{
		{"no bounds", nil, nil},
		{"inverted bounds", []float64{5, 5}, []float64{-5, -5}},
		{"overflowing width", []float64{-math.MaxFloat64, -1}, []float64{math.MaxFloat64, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t, engine.AlgESCH, 2)
			if tt.lower != nil {
				require.NoError(t, ctx.SetBounds(tt.lower, tt.upper))
			}
			require.NoError(t, ctx.SetTolerances(noTol()))

			evals := 0
			require.NoError(t, ctx.SetObjective(engine.Minimize, func(x, grad []float64) float64 {
				evals++
				return sphere(x, nil)
			}))

			x := []float64{0, 0}
			status, _ := ctx.Run(x)

			assert.Equal(t, engine.InvalidArgs, status)
			assert.Zero(t, evals, "nothing is evaluated on a bad box")
		})
	}
}

func TestGlobalSearchFindsBasin(t *testing.T) {
	eng := New()
	eng.Seed(7)
	ctx, err := eng.Create(engine.AlgESCH, 2)
	require.NoError(t, err)
	defer ctx.Destroy()

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	tol := noTol()
	tol.MaxEval = 400
	require.NoError(t, ctx.SetTolerances(tol))
	require.NoError(t, ctx.SetObjective(engine.Minimize, bowl))

	x := []float64{9, 9}
	status, score := ctx.Run(x)

	assert.Equal(t, engine.MaxEvalReached, status)
	assert.Less(t, score, 5.0)
	for i, v := range x {
		assert.GreaterOrEqual(t, v, -10.0, "dimension %d", i)
		assert.LessOrEqual(t, v, 10.0, "dimension %d", i)
	}
}

func TestLocalRefinementImproves(t *testing.T) {
	const budget = 200

	run := func(refine bool) float64 {
		eng := New()
		eng.Seed(11)

		global, err := eng.Create(engine.AlgESCH, 2)
		require.NoError(t, err)
		defer global.Destroy()

		require.NoError(t, global.SetBounds([]float64{-10, -10}, []float64{10, 10}))
		tol := noTol()
		tol.MaxEval = budget
		require.NoError(t, global.SetTolerances(tol))
		require.NoError(t, global.SetObjective(engine.Minimize, bowl))

		if refine {
			local, err := eng.Create(engine.AlgNelderMead, 2)
			require.NoError(t, err)
			defer local.Destroy()
			require.NoError(t, local.SetBounds([]float64{-10, -10}, []float64{10, 10}))
			require.NoError(t, local.SetTolerances(tol))
			require.NoError(t, local.SetObjective(engine.Minimize, bowl))
			require.NoError(t, global.SetLocalRefinement(local))
		}

		x := []float64{9, 9}
		_, score := global.Run(x)
		return score
	}

	plain := run(false)
	refined := run(true)

	assert.LessOrEqual(t, refined, plain,
		"refined run must be at least as good for the same seed and budget")
	assert.InDelta(t, 0.0, refined, 1e-3, "polish converges on the bowl minimum")
}

func TestCombinedBudgetShared(t *testing.T) {
	const budget = 100

	eng := New()
	eng.Seed(3)

	global, err := eng.Create(engine.AlgESCH, 2)
	require.NoError(t, err)
	defer global.Destroy()
	local, err := eng.Create(engine.AlgNelderMead, 2)
	require.NoError(t, err)
	defer local.Destroy()

	tol := noTol()
	tol.MaxEval = budget

	evals := 0
	counting := func(x, grad []float64) float64 {
		evals++
		return bowl(x, nil)
	}

	for _, ctx := range []engine.Context{global, local} {
		require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
		require.NoError(t, ctx.SetTolerances(tol))
		require.NoError(t, ctx.SetObjective(engine.Minimize, counting))
	}
	require.NoError(t, global.SetLocalRefinement(local))

	x := []float64{9, 9}
	global.Run(x)

	assert.LessOrEqual(t, evals, budget+1, "both phases share one evaluation budget")
}

func TestSeedDeterminism(t *testing.T) {
	run := func() ([]float64, float64) {
		eng := New()
		eng.Seed(42)
		ctx, err := eng.Create(engine.AlgCRS, 2)
		require.NoError(t, err)
		defer ctx.Destroy()

		require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
		tol := noTol()
		tol.MaxEval = 150
		require.NoError(t, ctx.SetTolerances(tol))
		require.NoError(t, ctx.SetObjective(engine.Minimize, bowl))

		x := []float64{0, 0}
		_, score := ctx.Run(x)
		return x, score
	}

	x1, s1 := run()
	x2, s2 := run()

	assert.Equal(t, x1, x2, "same seed, same samples, same optimum")
	assert.Equal(t, s1, s2)
}

func TestSetLocalRefinementValidation(t *testing.T) {
	eng := New()

	global, err := eng.Create(engine.AlgESCH, 2)
	require.NoError(t, err)
	defer global.Destroy()

	type foreign struct{ engine.Context }
	assert.Error(t, global.SetLocalRefinement(foreign{}), "foreign context rejected")

	mismatched, err := eng.Create(engine.AlgNelderMead, 3)
	require.NoError(t, err)
	defer mismatched.Destroy()
	assert.Error(t, global.SetLocalRefinement(mismatched), "dimensionality mismatch rejected")
}

func TestRunValidation(t *testing.T) {
	t.Run("no objective", func(t *testing.T) {
		ctx := newContext(t, engine.AlgNelderMead, 2)
		status, score := ctx.Run([]float64{0, 0})
		assert.Equal(t, engine.InvalidArgs, status)
		assert.True(t, math.IsNaN(score))
	})

	t.Run("length mismatch", func(t *testing.T) {
		ctx := newContext(t, engine.AlgNelderMead, 2)
		require.NoError(t, ctx.SetObjective(engine.Minimize, sphere))
		status, _ := ctx.Run([]float64{0})
		assert.Equal(t, engine.InvalidArgs, status)
	})

	t.Run("destroyed context", func(t *testing.T) {
		eng := New()
		ctx, err := eng.Create(engine.AlgNelderMead, 2)
		require.NoError(t, err)
		require.NoError(t, ctx.SetObjective(engine.Minimize, sphere))
		ctx.Destroy()
		ctx.Destroy() // idempotent
		status, _ := ctx.Run([]float64{0, 0})
		assert.Equal(t, engine.InvalidArgs, status)
	})
}

func TestSetBoundsValidation(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)
	assert.Error(t, ctx.SetBounds([]float64{0}, []float64{1, 2}))
	assert.Error(t, ctx.SetBounds([]float64{0, 0}, []float64{1}))
	assert.NoError(t, ctx.SetBounds([]float64{0, 0}, []float64{1, 2}))
}

func TestGradientSlotNeverProvided(t *testing.T) {
	ctx := newContext(t, engine.AlgNelderMead, 2)

	require.NoError(t, ctx.SetBounds([]float64{-10, -10}, []float64{10, 10}))
	tol := noTol()
	tol.MaxEval = 20
	require.NoError(t, ctx.SetTolerances(tol))
	require.NoError(t, ctx.SetObjective(engine.Minimize, func(x, grad []float64) float64 {
		assert.Nil(t, grad, "derivative-free methods never request a gradient")
		return sphere(x, nil)
	}))

	x := []float64{1, 1}
	ctx.Run(x)
}
