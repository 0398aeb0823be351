package correlation

import (
	"math/rand/v2"
	"testing"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	heights   = []float64{0.1, 0.15, 0.2, 0.4}
	diameters = []float64{0.1, 0.16, 0.22, 0.38}
)

func TestPearsonR_HandComputed(t *testing.T) {
	r, err := PearsonR(heights, diameters)
	require.NoError(t, err)
	assert.InDelta(t, 0.99466796, r, 1e-7)

	again, err := PearsonR(heights, diameters)
	require.NoError(t, err)
	assert.Equal(t, r, again, "same input must give the same output")
}

func TestSpearmanRho_MonotonicIsOne(t *testing.T) {
	rho, err := SpearmanRho(heights, diameters)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rho, 1e-12)
}

func TestCorrelate_SelfIsOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	x := make([]float64, 50)
	for i := range x {
		x[i] = rng.NormFloat64()
	}

	for _, method := range []Method{Pearson, Spearman} {
		r, err := Correlate(x, x, method)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, r, 1e-12, "method %s", method)
	}
}

func TestCorrelate_Bounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.IntN(30)
		x := make([]float64, n)
		y := make([]float64, n)
		for i := range x {
			x[i] = rng.NormFloat64()
			y[i] = rng.NormFloat64()*rng.Float64() + x[i]*rng.NormFloat64()
		}
		for _, method := range []Method{Pearson, Spearman} {
			r, err := Correlate(x, y, method)
			if err != nil {
				continue
			}
			assert.GreaterOrEqual(t, r, -1.0)
			assert.LessOrEqual(t, r, 1.0)
		}
	}
}

func TestSpearmanEqualsPearsonOnRanks(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	x := make([]float64, 40)
	y := make([]float64, 40)
	for i := range x {
		// Rounding forces ties into both columns
		x[i] = float64(int(rng.NormFloat64() * 3))
		y[i] = x[i] + float64(int(rng.NormFloat64()*2))
	}

	rho, err := SpearmanRho(x, y)
	require.NoError(t, err)
	r, err := PearsonR(Ranks(x), Ranks(y))
	require.NoError(t, err)

	assert.InDelta(t, r, rho, 1e-12)
}

func TestRanks_AveragesTies(t *testing.T) {
	assert.Equal(t, []float64{2.5, 1, 2.5, 4}, Ranks([]float64{3, 1, 3, 7}))
	assert.Equal(t, []float64{}, Ranks(nil))
}

func TestCorrelate_Failures(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		code string
	}{
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, errors.CodeInvalidInput},
		{"too short", []float64{1}, []float64{2}, errors.CodeInvalidInput},
		{"constant x", []float64{1, 1, 1}, []float64{1, 2, 3}, errors.CodeDegenerate},
		{"constant y", []float64{1, 2, 3}, []float64{5, 5, 5}, errors.CodeDegenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []Method{Pearson, Spearman} {
				_, err := Correlate(tt.x, tt.y, method)
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetCode(err))
			}
		})
	}

	_, err := Correlate(heights, diameters, Method("kendall"))
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("spearman")
	require.NoError(t, err)
	assert.Equal(t, Spearman, m)

	_, err = ParseMethod("kendall")
	assert.Error(t, err)
}

func TestStatistic(t *testing.T) {
	d, err := dataset.New(
		[]core.VariableKey{dataset.Height, dataset.Diameter},
		map[core.VariableKey][]float64{dataset.Height: heights, dataset.Diameter: diameters},
	)
	require.NoError(t, err)

	stat := Statistic(dataset.Height, dataset.Diameter, Pearson)
	r, err := stat(d)
	require.NoError(t, err)
	assert.InDelta(t, 0.99466796, r, 1e-7)

	_, err = Statistic(dataset.Height, dataset.Shell, Pearson)(d)
	assert.Error(t, err)
}
