package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optkit-io/optkit/opt/engine"
)

func TestAlgorithmIdentities(t *testing.T) {
	tests := []struct {
		alg    Algorithm
		id     engine.Algorithm
		name   string
		global bool
	}{
		{NelderMead(), engine.AlgNelderMead, "nelder-mead", false},
		{Subplex(), engine.AlgSubplex, "subplex", false},
		{CRS(), engine.AlgCRS, "crs", true},
		{ESCH(), engine.AlgESCH, "esch", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.alg.String())
			assert.Equal(t, tt.global, tt.alg.Global())

			st := tt.alg.strategy()
			assert.Equal(t, tt.id, st.primary)
			assert.False(t, st.combined)
		})
	}
}

func TestCombineStrategy(t *testing.T) {
	m := Combine(CRS(), Subplex())
	st := m.strategy()

	assert.True(t, st.combined)
	assert.Equal(t, engine.AlgCRS, st.primary)
	assert.Equal(t, engine.AlgSubplex, st.local)
	assert.Equal(t, "crs+subplex", m.String())
}

func TestGeneticIsESCHWithSimplexRefinement(t *testing.T) {
	st := Genetic().strategy()

	assert.True(t, st.combined)
	assert.Equal(t, engine.AlgESCH, st.primary)
	assert.Equal(t, engine.AlgNelderMead, st.local)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"neldermead", "nelder-mead"},
		{"nelder-mead", "nelder-mead"},
		{"simplex", "nelder-mead"},
		{"subplex", "subplex"},
		{"sbplx", "subplex"},
		{"crs", "crs"},
		{"crs2", "crs"},
		{"esch", "esch"},
		{"genetic", "esch+nelder-mead"},
		{"  Genetic  ", "esch+nelder-mead"},
		{"ESCH", "esch"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMethod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}

	_, err := ParseMethod("annealing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "annealing")
}

func TestMethodNamesAllParse(t *testing.T) {
	for _, name := range MethodNames() {
		_, err := ParseMethod(name)
		assert.NoError(t, err, name)
	}
}
