package intercept

import (
	"math"
	"testing"

	"abalone/domain/core"
	"abalone/internal/errors"
	"abalone/internal/regression"
	"abalone/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	outcome    = core.VariableKey("y")
	predictors = core.Keys("a", "b")
)

func TestCaseResampling_IntervalContainsEstimate(t *testing.T) {
	d := testkit.LogisticDataset(300, outcome, predictors, -0.5, []float64{1, 0.5}, testkit.NewRand(1))
	spec := regression.Spec{Family: regression.Logistic, Outcome: outcome, Predictors: predictors}

	dist, err := CaseResampling(d, spec, 200, testkit.NewRand(2))
	require.NoError(t, err)
	assert.Equal(t, 200, len(dist.Values)+dist.Excluded)

	s, err := Summarize(dist, 0.95)
	require.NoError(t, err)
	assert.True(t, s.Interval.Contains(dist.Estimate), "%v does not contain %v", s.Interval, dist.Estimate)
	assert.Greater(t, s.SD, 0.0)
	assert.Equal(t, Case, s.Method)
}

func TestModelResampling_LogisticContainsEstimate(t *testing.T) {
	d := testkit.LogisticDataset(300, outcome, predictors, -0.5, []float64{1, 0.5}, testkit.NewRand(3))
	spec := regression.Spec{Family: regression.Logistic, Outcome: outcome, Predictors: core.Keys("a")}

	dist, err := ModelResampling(d, spec, predictors, 200, testkit.NewRand(4))
	require.NoError(t, err)

	s, err := Summarize(dist, 0.95)
	require.NoError(t, err)
	assert.True(t, s.Interval.Contains(dist.Estimate), "%v does not contain %v", s.Interval, dist.Estimate)
	assert.Equal(t, Model, s.Method)
}

func TestModelResampling_LinearMatchesStandardError(t *testing.T) {
	const n = 400
	d := testkit.LinearDataset(n, outcome, predictors, 3, []float64{1, -1}, 2, testkit.NewRand(5))
	spec := regression.Spec{Family: regression.Linear, Outcome: outcome, Predictors: predictors}

	dist, err := ModelResampling(d, spec, predictors, 500, testkit.NewRand(6))
	require.NoError(t, err)
	assert.Zero(t, dist.Excluded)

	s, err := Summarize(dist, 0.95)
	require.NoError(t, err)
	// standard normal predictors: SE(intercept) ≈ σ/√n
	assert.InEpsilon(t, 2/math.Sqrt(n), s.SD, 0.25)
	assert.InDelta(t, 3, s.Mean, 0.5)
}

func TestResampling_Deterministic(t *testing.T) {
	d := testkit.LinearDataset(80, outcome, predictors, 1, []float64{0.5, 0.5}, 1, testkit.NewRand(7))
	spec := regression.Spec{Family: regression.Linear, Outcome: outcome, Predictors: predictors}

	a, err := CaseResampling(d, spec, 50, testkit.NewRand(8))
	require.NoError(t, err)
	b, err := CaseResampling(d, spec, 50, testkit.NewRand(8))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := ModelResampling(d, spec, predictors, 50, testkit.NewRand(9))
	require.NoError(t, err)
	e, err := ModelResampling(d, spec, predictors, 50, testkit.NewRand(9))
	require.NoError(t, err)
	assert.Equal(t, c, e)
}

func TestResampling_InvalidInput(t *testing.T) {
	d := testkit.LinearDataset(30, outcome, predictors, 0, []float64{1, 1}, 1, testkit.NewRand(10))
	spec := regression.Spec{Family: regression.Linear, Outcome: outcome, Predictors: predictors}

	_, err := CaseResampling(d, spec, 0, testkit.NewRand(11))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = ModelResampling(d, spec, predictors, -1, testkit.NewRand(11))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = ModelResampling(d, spec, core.Keys("a", "missing"), 10, testkit.NewRand(11))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSummarize_TooFewValues(t *testing.T) {
	_, err := Summarize(Distribution{Method: Case, Values: []float64{1}, Resamples: 10, Excluded: 9}, 0.95)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDegenerate, errors.GetCode(err))
}
