package regression

import (
	"testing"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
	"abalone/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	outcome    = core.VariableKey("outcome")
	predictors = core.Keys("a", "b", "c")
)

func TestFit_LinearRecoversCoefficients(t *testing.T) {
	d := testkit.LinearDataset(500, outcome, predictors, 1.5, []float64{2, -1, 0}, 0.1, testkit.NewRand(1))

	m, err := Fit(d, Spec{Family: Linear, Outcome: outcome, Predictors: predictors})
	require.NoError(t, err)

	assert.InDelta(t, 1.5, m.Intercept(), 0.05)
	a, _ := m.Coefficient("a")
	b, _ := m.Coefficient("b")
	c, _ := m.Coefficient("c")
	assert.InDelta(t, 2.0, a, 0.05)
	assert.InDelta(t, -1.0, b, 0.05)
	assert.InDelta(t, 0.0, c, 0.05)
	assert.Len(t, m.Fitted, 500)

	_, err = m.Coefficient("z")
	assert.Error(t, err)
}

func TestFit_LinearExact(t *testing.T) {
	d, err := dataset.New(
		core.Keys("x", "y"),
		map[core.VariableKey][]float64{"x": {0, 1, 2, 3}, "y": {1, 3, 5, 7}},
	)
	require.NoError(t, err)

	m, err := Fit(d, Spec{Family: Linear, Outcome: "y", Predictors: core.Keys("x")})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Intercept(), 1e-10)
	assert.InDeltaSlice(t, []float64{1, 3, 5, 7}, m.Fitted, 1e-10)
}

func TestFit_LinearRankDeficient(t *testing.T) {
	d, err := dataset.New(
		core.Keys("x", "x2", "y"),
		map[core.VariableKey][]float64{
			"x":  {0, 1, 2, 3, 4},
			"x2": {0, 2, 4, 6, 8},
			"y":  {1, 2, 2, 4, 5},
		},
	)
	require.NoError(t, err)

	_, err = Fit(d, Spec{Family: Linear, Outcome: "y", Predictors: core.Keys("x", "x2")})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDegenerate, errors.GetCode(err))
}

func TestFit_LogisticRecoversCoefficients(t *testing.T) {
	d := testkit.LogisticDataset(4000, outcome, predictors, -0.5, []float64{1.2, -0.8, 0}, testkit.NewRand(2))

	m, err := Fit(d, Spec{Family: Logistic, Outcome: outcome, Predictors: predictors})
	require.NoError(t, err)

	assert.InDelta(t, -0.5, m.Intercept(), 0.15)
	a, _ := m.Coefficient("a")
	b, _ := m.Coefficient("b")
	assert.InDelta(t, 1.2, a, 0.15)
	assert.InDelta(t, -0.8, b, 0.15)
	assert.Greater(t, m.Iterations, 1)
	for _, p := range m.Fitted {
		assert.True(t, p > 0 && p < 1)
	}
}

func TestFit_LogisticSeparation(t *testing.T) {
	d, err := dataset.New(
		core.Keys("x", "y"),
		map[core.VariableKey][]float64{
			"x": {-3, -2, -1, -0.5, 0.5, 1, 2, 3},
			"y": {0, 0, 0, 0, 1, 1, 1, 1},
		},
	)
	require.NoError(t, err)

	_, err = Fit(d, Spec{Family: Logistic, Outcome: "y", Predictors: core.Keys("x")})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNonConvergence, errors.GetCode(err))
	assert.True(t, errors.IsRecoverable(err))
}

func TestFit_LogisticRejectsNonBinaryOutcome(t *testing.T) {
	d, err := dataset.New(
		core.Keys("x", "y"),
		map[core.VariableKey][]float64{"x": {1, 2, 3, 4}, "y": {0, 1, 2, 1}},
	)
	require.NoError(t, err)

	_, err = Fit(d, Spec{Family: Logistic, Outcome: "y", Predictors: core.Keys("x")})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFit_TooFewRecords(t *testing.T) {
	d, err := dataset.New(
		core.Keys("x", "y"),
		map[core.VariableKey][]float64{"x": {1, 2}, "y": {0, 1}},
	)
	require.NoError(t, err)

	_, err = Fit(d, Spec{Family: Linear, Outcome: "y", Predictors: core.Keys("x")})
	assert.Equal(t, errors.CodeDegenerate, errors.GetCode(err))
}

func TestDesign_RefitIsPure(t *testing.T) {
	d := testkit.LogisticDataset(300, outcome, predictors, 0, []float64{1, 1, 1}, testkit.NewRand(3))
	y, _ := d.Column(outcome)

	design, err := NewDesign(d, predictors)
	require.NoError(t, err)

	first, err := design.Fit(Logistic, outcome, y)
	require.NoError(t, err)
	second, err := design.Fit(Logistic, outcome, y)
	require.NoError(t, err)

	assert.Equal(t, first.Coefficients, second.Coefficients)
	assert.Equal(t, 300, design.Rows())
}

func TestModel_PredictHeldOut(t *testing.T) {
	d := testkit.LinearDataset(200, outcome, predictors, 0.5, []float64{1, 2, 3}, 0.01, testkit.NewRand(4))
	train := d.Select(seq(0, 150))
	test := d.Select(seq(150, 200))

	m, err := Fit(train, Spec{Family: Linear, Outcome: outcome, Predictors: predictors})
	require.NoError(t, err)

	pred, err := m.Predict(test)
	require.NoError(t, err)
	actual, _ := test.Column(outcome)
	assert.InDeltaSlice(t, actual, pred, 0.05)
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily("logistic")
	require.NoError(t, err)
	assert.Equal(t, Logistic, f)
	_, err = ParseFamily("poisson")
	assert.Error(t, err)
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
