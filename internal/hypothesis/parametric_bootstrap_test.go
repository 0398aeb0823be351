package hypothesis

import (
	"testing"

	"abalone/domain/core"
	"abalone/internal/errors"
	"abalone/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	outcome    = core.VariableKey("y")
	predictors = core.Keys("a", "b")
)

func TestParametricBootstrapTest_DetectsRealEffect(t *testing.T) {
	d := testkit.LogisticDataset(400, outcome, predictors, 0, []float64{1.0, 0.0}, testkit.NewRand(1))

	cfg, coef, err := NewTestConfig(d, outcome, predictors, "a", 200)
	require.NoError(t, err)
	assert.Greater(t, coef, 0.5)
	assert.InDelta(t, coef*coef, cfg.Observed, 1e-12)

	res, err := ParametricBootstrapTest(d, cfg, testkit.NewRand(2))
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.05)
	assert.Equal(t, 200, res.Used+res.Excluded)
	assert.GreaterOrEqual(t, res.ExclusionRate, 0.0)
}

func TestParametricBootstrapTest_Deterministic(t *testing.T) {
	d := testkit.LogisticDataset(150, outcome, predictors, 0.3, []float64{0.5, 0.2}, testkit.NewRand(3))
	cfg, _, err := NewTestConfig(d, outcome, predictors, "b", 50)
	require.NoError(t, err)

	a, err := ParametricBootstrapTest(d, cfg, testkit.NewRand(4))
	require.NoError(t, err)
	b, err := ParametricBootstrapTest(d, cfg, testkit.NewRand(4))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a.PValue, 0.0)
	assert.LessOrEqual(t, a.PValue, 1.0)
}

func TestParametricBootstrapTest_NullPValuesRoughlyUniform(t *testing.T) {
	if testing.Short() {
		t.Skip("repeated simulation is slow")
	}

	const simulations = 40
	rng := testkit.NewRand(5)

	sum := 0.0
	below := 0
	for i := 0; i < simulations; i++ {
		d := testkit.LogisticDataset(120, outcome, predictors, 0, []float64{0.8, 0}, rng)
		cfg, _, err := NewTestConfig(d, outcome, predictors, "b", 99)
		require.NoError(t, err)

		res, err := ParametricBootstrapTest(d, cfg, rng)
		require.NoError(t, err)
		sum += res.PValue
		if res.PValue < 0.5 {
			below++
		}
	}

	// Uniform p-values have mean 1/2 with standard error ≈ 0.046 here.
	mean := sum / simulations
	t.Logf("mean null p-value: %.3f, below 0.5: %d/%d", mean, below, simulations)
	assert.InDelta(t, 0.5, mean, 0.2)
	assert.Greater(t, below, 5)
	assert.Less(t, below, simulations-5)
}

func TestParametricBootstrapTest_InvalidConfig(t *testing.T) {
	d := testkit.LogisticDataset(50, outcome, predictors, 0, []float64{0.5, 0.5}, testkit.NewRand(6))

	tests := []struct {
		name string
		cfg  TestConfig
	}{
		{"no resamples", TestConfig{Outcome: outcome, Predictors: predictors, Tested: "a", Observed: 1, Resamples: 0}},
		{"unknown tested", TestConfig{Outcome: outcome, Predictors: predictors, Tested: "z", Observed: 1, Resamples: 10}},
		{"negative observed", TestConfig{Outcome: outcome, Predictors: predictors, Tested: "a", Observed: -1, Resamples: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParametricBootstrapTest(d, tt.cfg, testkit.NewRand(7))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestParametricBootstrapTest_CountsSeparatedRefits(t *testing.T) {
	// A tiny sample with a strong effect makes separable simulated outcomes likely.
	d := testkit.LogisticDataset(12, outcome, predictors, 0, []float64{0.2, 0.1}, testkit.NewRand(8))
	cfg, _, err := NewTestConfig(d, outcome, predictors, "a", 300)
	if err != nil {
		t.Skipf("fixture itself is separable: %v", err)
	}

	res, err := ParametricBootstrapTest(d, cfg, testkit.NewRand(9))
	require.NoError(t, err)
	assert.Equal(t, 300, res.Used+res.Excluded)
	assert.InDelta(t, float64(res.Excluded)/300, res.ExclusionRate, 1e-12)
}

func TestSimulateOutcome(t *testing.T) {
	dst := make([]float64, 4)
	SimulateOutcome([]float64{0, 1, 0, 1}, testkit.NewRand(10), dst)
	assert.Equal(t, []float64{0, 1, 0, 1}, dst)
}
