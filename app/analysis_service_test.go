package app

import (
	"context"
	"testing"

	"abalone/adapters/rng"
	"abalone/adapters/table"
	"abalone/domain/dataset"
	"abalone/internal/config"
	"abalone/internal/correlation"
	"abalone/internal/errors"
	"abalone/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	d   *dataset.Dataset
	err error
}

func (f *fakeReader) ReadDataset(ctx context.Context, path string) (*dataset.Dataset, error) {
	return f.d, f.err
}

func smallConfig(workers int) config.AnalysisConfig {
	cfg := config.DefaultAnalysisConfig()
	cfg.BootstrapSamples = 40
	cfg.InnerSamples = 10
	cfg.TestSamples = 20
	cfg.InterceptSamples = 30
	cfg.CVFolds = 5
	cfg.Workers = workers
	return cfg
}

func newService(t *testing.T, workers int) (*AnalysisService, *dataset.Dataset) {
	t.Helper()
	d := testkit.NewAbaloneGenerator(testkit.DefaultAbaloneConfig()).Generate().Drop(dataset.Rings)
	svc := NewAnalysisService(&fakeReader{d: d}, rng.NewPCGAdapter(), smallConfig(workers), DefaultPlan(), nil)
	return svc, d
}

func TestAnalysisService_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("runs every resampling stage")
	}
	svc, d := newService(t, 4)

	report, err := svc.Run(context.Background(), "synthetic.txt")
	require.NoError(t, err)

	assert.Equal(t, "synthetic.txt", report.Source)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, d.Len(), report.Records)
	assert.Equal(t, dataset.Height, report.Outliers.Fences.Key)
	assert.GreaterOrEqual(t, report.Outliers.Removed, 1)

	require.Len(t, report.Correlations, 4)
	for _, c := range report.Correlations {
		assert.GreaterOrEqual(t, c.Estimate, -1.0)
		assert.LessOrEqual(t, c.Estimate, 1.0)
		assert.Greater(t, c.JackknifeSE, 0.0)
		assert.LessOrEqual(t, c.TInterval.Interval.Lower, c.TInterval.Interval.Upper)
	}
	all, ok := report.Correlation(SubsetAll, correlation.Pearson)
	require.True(t, ok)
	filtered, ok := report.Correlation(SubsetFiltered, correlation.Pearson)
	require.True(t, ok)
	assert.Less(t, filtered.Records, all.Records)
	// injected height errors weaken the linear relation
	assert.Greater(t, filtered.Estimate, all.Estimate)

	testStages := 0
	for _, f := range report.Failures {
		if f.Stage == StageTest {
			testStages++
		}
	}
	assert.Equal(t, 2, len(report.Tests)+testStages)
	for _, res := range report.Tests {
		assert.GreaterOrEqual(t, res.PValue, 0.0)
		assert.LessOrEqual(t, res.PValue, 1.0)
	}

	require.NotNil(t, report.Selection)
	assert.NotEmpty(t, report.Selection.Predictors)
	assert.LessOrEqual(t, len(report.Selection.Predictors), len(dataset.Measurements()))

	for _, ic := range report.Intercepts {
		assert.LessOrEqual(t, ic.Interval.Lower, ic.Interval.Upper)
		assert.Equal(t, report.Selection.Predictors, ic.Predictors)
		assert.Len(t, ic.Values, ic.Samples)
	}
}

func TestAnalysisService_DeterministicAcrossWorkers(t *testing.T) {
	if testing.Short() {
		t.Skip("runs every resampling stage twice")
	}
	serial, d := newService(t, 1)
	parallel, _ := newService(t, 8)

	a, err := serial.Analyze(context.Background(), d)
	require.NoError(t, err)
	b, err := parallel.Analyze(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, a.Correlations, b.Correlations)
	assert.Equal(t, a.Tests, b.Tests)
	assert.Equal(t, a.Selection, b.Selection)
	assert.Equal(t, a.Intercepts, b.Intercepts)
	assert.Equal(t, a.Failures, b.Failures)
	assert.NotEqual(t, a.RunID, b.RunID)
	require.NotNil(t, a.Manifest)
	assert.Equal(t, d.Fingerprint(), a.Manifest.Fingerprint.DataHash)
	assert.Equal(t, a.Manifest.Fingerprint, b.Manifest.Fingerprint)
}

func TestAnalysisService_ReaderError(t *testing.T) {
	svc := NewAnalysisService(&fakeReader{err: errors.InvalidInput("missing column height")}, rng.NewPCGAdapter(), smallConfig(1), DefaultPlan(), nil)

	_, err := svc.Run(context.Background(), "broken.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestAnalysisService_InvalidConfig(t *testing.T) {
	svc, d := newService(t, 1)
	svc.config.CVFolds = 1

	_, err := svc.Analyze(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestAnalysisService_EndToEndFromFile(t *testing.T) {
	if testing.Short() {
		t.Skip("runs every resampling stage")
	}
	kit := testkit.NewTestKit(t.TempDir())
	generated := kit.Abalone(testkit.DefaultAbaloneConfig())
	path, err := kit.WriteTable("abalone.data", generated)
	require.NoError(t, err)

	svc := NewAnalysisService(table.NewDataReader(nil), kit.RNGAdapter(), smallConfig(2), DefaultPlan(), nil)
	report, err := svc.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, generated.Len(), report.Records)
	assert.Equal(t, generated.Drop(dataset.Rings).Fingerprint(), report.Manifest.Fingerprint.DataHash)
	assert.Len(t, report.Correlations, 4)
	assert.NotNil(t, report.Selection)
}
