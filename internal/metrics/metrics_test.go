package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()

	m.RunsSubmitted.Inc()
	m.RunsFinished.WithLabelValues("completed", "FTOL_REACHED").Inc()
	m.RunDuration.Observe(0.042)
	m.Evaluations.Add(128)
	m.JobsInFlight.Inc()
	m.JobsQueued.Set(3)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"optkit_runs_submitted_total",
		"optkit_runs_finished_total",
		"optkit_runs_duration_seconds",
		"optkit_objective_evaluations_total",
		"optkit_jobs_in_flight",
		"optkit_jobs_queued",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestIsolatedRegistries(t *testing.T) {
	a, b := New(), New()

	a.RunsSubmitted.Inc()
	a.RunsSubmitted.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.RunsSubmitted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RunsSubmitted), "instances never share state")
}
