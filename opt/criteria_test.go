package opt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStopCriteriaAllUnset(t *testing.T) {
	c := NewStopCriteria()

	assert.True(t, math.IsNaN(c.AbsScoreDiff()))
	assert.True(t, math.IsNaN(c.RelScoreDiff()))
	assert.True(t, math.IsNaN(c.StopScore()))
	assert.Equal(t, uint(0), c.MaxIterations())
	assert.False(t, c.StopRequested())
}

func TestSettersReturnSameInstance(t *testing.T) {
	c := NewStopCriteria()

	assert.Same(t, c, c.SetAbsScoreDiff(1e-9))
	assert.Same(t, c, c.SetRelScoreDiff(1e-6))
	assert.Same(t, c, c.SetStopScore(0.5))
	assert.Same(t, c, c.SetMaxIterations(100))
	assert.Same(t, c, c.SetStopCondition(func() bool { return true }))
}

func TestFluentChainAccumulates(t *testing.T) {
	c := NewStopCriteria().
		SetAbsScoreDiff(1e-9).
		SetRelScoreDiff(1e-6).
		SetStopScore(0.25).
		SetMaxIterations(5000)

	assert.Equal(t, 1e-9, c.AbsScoreDiff())
	assert.Equal(t, 1e-6, c.RelScoreDiff())
	assert.Equal(t, 0.25, c.StopScore())
	assert.Equal(t, uint(5000), c.MaxIterations())
}

func TestStopConditionObservesLiveState(t *testing.T) {
	stop := false
	c := NewStopCriteria().SetStopCondition(func() bool { return stop })

	require.False(t, c.StopRequested())
	stop = true
	require.True(t, c.StopRequested())
	stop = false
	require.False(t, c.StopRequested())
}

func TestSetStopConditionNilRestoresDefault(t *testing.T) {
	c := NewStopCriteria().SetStopCondition(func() bool { return true })
	require.True(t, c.StopRequested())

	c.SetStopCondition(nil)
	assert.False(t, c.StopRequested())
}

func TestTolerancesWireForm(t *testing.T) {
	c := NewStopCriteria().SetAbsScoreDiff(1e-3).SetMaxIterations(42)
	tol := c.tolerances()

	assert.Equal(t, 1e-3, tol.FAbs)
	assert.True(t, math.IsNaN(tol.FRel), "unset rules stay NaN on the wire")
	assert.True(t, math.IsNaN(tol.StopValue))
	assert.Equal(t, uint(42), tol.MaxEval)
}
