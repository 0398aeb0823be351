package dataset

import (
	"math"
	"testing"

	"abalone/domain/core"
	"abalone/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	d, err := New(
		[]core.VariableKey{Height, Diameter},
		map[core.VariableKey][]float64{
			Height:   {0.1, 0.15, 0.2, 0.4},
			Diameter: {0.1, 0.16, 0.22, 0.38},
		},
	)
	require.NoError(t, err)
	return d
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		keys    []core.VariableKey
		columns map[core.VariableKey][]float64
	}{
		{
			name:    "no columns",
			keys:    nil,
			columns: map[core.VariableKey][]float64{},
		},
		{
			name:    "missing column",
			keys:    []core.VariableKey{Height, Shell},
			columns: map[core.VariableKey][]float64{Height: {1}},
		},
		{
			name:    "ragged columns",
			keys:    []core.VariableKey{Height, Shell},
			columns: map[core.VariableKey][]float64{Height: {1, 2}, Shell: {1}},
		},
		{
			name:    "non-finite value",
			keys:    []core.VariableKey{Height},
			columns: map[core.VariableKey][]float64{Height: {1, math.NaN()}},
		},
		{
			name:    "duplicate key",
			keys:    []core.VariableKey{Height, Height},
			columns: map[core.VariableKey][]float64{Height: {1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.keys, tt.columns)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	heights := []float64{1, 2, 3}
	d, err := New([]core.VariableKey{Height}, map[core.VariableKey][]float64{Height: heights})
	require.NoError(t, err)

	heights[0] = 99
	col, _ := d.Column(Height)
	assert.Equal(t, 1.0, col[0])
}

func TestSelect_AllowsRepeats(t *testing.T) {
	d := sampleDataset(t)

	resampled := d.Select([]int{3, 3, 0, 1})
	assert.Equal(t, 4, resampled.Len())

	h, _ := resampled.Column(Height)
	assert.Equal(t, []float64{0.4, 0.4, 0.1, 0.15}, h)

	original, _ := d.Column(Height)
	assert.Equal(t, []float64{0.1, 0.15, 0.2, 0.4}, original)
}

func TestWithout(t *testing.T) {
	d := sampleDataset(t)

	for i := 0; i < d.Len(); i++ {
		loo := d.Without(i)
		assert.Equal(t, d.Len()-1, loo.Len())
		col, _ := loo.Column(Diameter)
		full, _ := d.Column(Diameter)
		assert.NotContains(t, col, full[i])
	}
	assert.Equal(t, 4, d.Len())
}

func TestProjectAndDrop(t *testing.T) {
	d := sampleDataset(t)

	p, err := d.Project(Diameter)
	require.NoError(t, err)
	assert.Equal(t, []core.VariableKey{Diameter}, p.Keys())

	_, err = d.Project(Shell)
	assert.Error(t, err)

	dropped := d.Drop(Height, Rings)
	assert.Equal(t, []core.VariableKey{Diameter}, dropped.Keys())
	assert.True(t, d.Has(Height))
}

func TestWithColumn(t *testing.T) {
	d := sampleDataset(t)

	replaced, err := d.WithColumn(Height, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	h, _ := replaced.Column(Height)
	assert.Equal(t, []float64{1, 1, 1, 1}, h)

	orig, _ := d.Column(Height)
	assert.Equal(t, 0.1, orig[0])

	added, err := d.WithColumn(Infant, []float64{0, 1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []core.VariableKey{Height, Diameter, Infant}, added.Keys())
	assert.False(t, d.Has(Infant))

	_, err = d.WithColumn(Infant, []float64{0})
	assert.Error(t, err)
}

func TestWithoutOutliers(t *testing.T) {
	heights := []float64{0.10, 0.11, 0.12, 0.13, 0.14, 0.15, 0.16, 0.17, 1.13}
	diameters := []float64{0.2, 0.21, 0.22, 0.23, 0.24, 0.25, 0.26, 0.27, 0.28}
	d, err := New(
		[]core.VariableKey{Height, Diameter},
		map[core.VariableKey][]float64{Height: heights, Diameter: diameters},
	)
	require.NoError(t, err)

	filtered, fences, err := WithoutOutliers(d, Height, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 8, filtered.Len())
	assert.False(t, fences.Contains(1.13))
	assert.True(t, fences.Contains(0.13))

	_, _, err = WithoutOutliers(d, Height, 0)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := sampleDataset(t)
	b := sampleDataset(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint().String(), 64)

	changed, err := a.WithColumn(Height, []float64{0.1, 0.15, 0.2, 0.41})
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), changed.Fingerprint())

	reordered, err := a.Project(Diameter, Height)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), reordered.Fingerprint())
}
