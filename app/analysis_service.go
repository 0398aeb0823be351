package app

import (
	"context"
	"math/rand/v2"
	"time"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/domain/run"
	"abalone/internal/config"
	"abalone/internal/correlation"
	"abalone/internal/errors"
	"abalone/internal/hypothesis"
	"abalone/internal/intercept"
	"abalone/internal/regression"
	"abalone/internal/resample"
	"abalone/internal/selection"
	"abalone/ports"

	"go.uber.org/zap"
)

// Stage names, also used to derive random streams
const (
	StageCorrelation = "correlation"
	StageTest        = "parametric_test"
	StageSelection   = "stepwise_selection"
	StageIntercept   = "intercept_bootstrap"
)

// Plan fixes which variables each stage of the analysis looks at
type Plan struct {
	// CorrelationX and CorrelationY are the pair whose correlation is
	// estimated with and without outliers.
	CorrelationX core.VariableKey
	CorrelationY core.VariableKey
	Methods      []correlation.Method

	// Outcome is the binary response of the logistic models.
	Outcome    core.VariableKey
	Predictors []core.VariableKey
	// Tested lists the coefficients tested one at a time against the model
	// with all Predictors.
	Tested []core.VariableKey
}

// DefaultPlan is the abalone analysis: height against diameter, and
// infant status against the seven shell measurements.
func DefaultPlan() Plan {
	return Plan{
		CorrelationX: dataset.Height,
		CorrelationY: dataset.Diameter,
		Methods:      []correlation.Method{correlation.Pearson, correlation.Spearman},
		Outcome:      dataset.Infant,
		Predictors:   dataset.Measurements(),
		Tested:       []core.VariableKey{dataset.Height, dataset.Shell},
	}
}

// AnalysisService runs the full resampling analysis over one dataset
type AnalysisService struct {
	reader  ports.DatasetReader
	rngPort ports.RNGPort
	config  config.AnalysisConfig
	plan    Plan
	logger  *zap.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(reader ports.DatasetReader, rngPort ports.RNGPort, cfg config.AnalysisConfig, plan Plan, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		reader:  reader,
		rngPort: rngPort,
		config:  cfg,
		plan:    plan,
		logger:  logger.Named("analysis"),
	}
}

// Run loads path and analyzes it.
func (s *AnalysisService) Run(ctx context.Context, path string) (*Report, error) {
	d, err := s.reader.ReadDataset(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	report, err := s.Analyze(ctx, d)
	if err != nil {
		return nil, err
	}
	report.Source = path
	return report, nil
}

// Analyze runs every stage on d. Correlations, coefficient tests and
// predictor selection run concurrently; the intercept bootstraps follow
// once the selected model is known.
func (s *AnalysisService) Analyze(ctx context.Context, d *dataset.Dataset) (*Report, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	report := &Report{
		RunID:       core.NewRunID(),
		GeneratedAt: start.UTC(),
		Config:      s.config,
		Records:     d.Len(),
	}
	manifest, err := run.NewManifest(report.RunID, d, s.config, s.plan, s.config.Seed)
	if err != nil {
		return nil, err
	}
	report.Manifest = manifest

	log := s.logger.With(zap.String("run_id", report.RunID.String()))
	log.Info("analysis started",
		zap.Int("records", d.Len()),
		zap.Uint64("seed", s.config.Seed),
		zap.String("fingerprint", manifest.Fingerprint.Fingerprint.String()),
	)

	filtered, fences, err := dataset.WithoutOutliers(d, s.config.OutlierField, s.config.OutlierIQRMultiplier)
	if err != nil {
		return nil, errors.Wrap(err, "outlier screen")
	}
	report.Outliers = OutlierSummary{
		Fences:  fences,
		Kept:    filtered.Len(),
		Removed: d.Len() - filtered.Len(),
	}
	log.Info("outliers screened",
		zap.String("field", string(fences.Key)),
		zap.Float64("lower", fences.Lower),
		zap.Float64("upper", fences.Upper),
		zap.Int("removed", report.Outliers.Removed),
	)

	runner := NewStageRunner(s.rngPort, log, s.config.Workers, s.config.Seed)

	subsets := []struct {
		name string
		data *dataset.Dataset
	}{
		{SubsetAll, d},
		{SubsetFiltered, filtered},
	}

	var stages []Stage
	report.Correlations = make([]CorrelationResult, len(subsets)*len(s.plan.Methods))
	done := make([]bool, len(report.Correlations))
	for i, sub := range subsets {
		for j, method := range s.plan.Methods {
			slot := i*len(s.plan.Methods) + j
			stages = append(stages, Stage{
				Name: StageCorrelation,
				Key:  sub.name + "/" + string(method),
				Run: func(ctx context.Context, rng *rand.Rand) error {
					res, err := s.correlate(sub.name, sub.data, method, rng)
					if err != nil {
						return err
					}
					report.Correlations[slot] = res
					done[slot] = true
					return nil
				},
			})
		}
	}

	tests := make([]hypothesis.TestResult, len(s.plan.Tested))
	tested := make([]bool, len(tests))
	for i, key := range s.plan.Tested {
		stages = append(stages, Stage{
			Name: StageTest,
			Key:  string(key),
			Run: func(ctx context.Context, rng *rand.Rand) error {
				res, err := s.testCoefficient(d, key, rng)
				if err != nil {
					return err
				}
				tests[i] = res
				tested[i] = true
				return nil
			},
		})
	}

	var selected *SelectionResult
	stages = append(stages, Stage{
		Name: StageSelection,
		Key:  string(s.plan.Outcome),
		Run: func(ctx context.Context, rng *rand.Rand) error {
			res, err := s.selectPredictors(d, rng)
			if err != nil {
				return err
			}
			selected = res
			return nil
		},
	})

	failures, err := runner.Execute(ctx, stages)
	if err != nil {
		return nil, err
	}
	report.Failures = failures
	report.Correlations = keep(report.Correlations, done)
	report.Tests = keep(tests, tested)
	report.Selection = selected

	if selected != nil {
		intercepts, failures, err := s.bootstrapIntercepts(ctx, runner, d, selected)
		if err != nil {
			return nil, err
		}
		report.Intercepts = intercepts
		report.Failures = append(report.Failures, failures...)
	}

	report.Duration = time.Since(start)
	log.Info("analysis finished",
		zap.Duration("duration", report.Duration),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (s *AnalysisService) correlate(subset string, d *dataset.Dataset, method correlation.Method, rng *rand.Rand) (CorrelationResult, error) {
	pair, err := d.Project(s.plan.CorrelationX, s.plan.CorrelationY)
	if err != nil {
		return CorrelationResult{}, err
	}
	statistic := correlation.Statistic(s.plan.CorrelationX, s.plan.CorrelationY, method)

	estimate, err := statistic(pair)
	if err != nil {
		return CorrelationResult{}, err
	}
	jack, err := resample.JackknifeSE(pair, statistic)
	if err != nil {
		return CorrelationResult{}, errors.Wrap(err, "jackknife")
	}
	boot, err := resample.BootstrapSE(pair, statistic, s.config.BootstrapSamples, rng)
	if err != nil {
		return CorrelationResult{}, errors.Wrap(err, "bootstrap SE")
	}
	tInterval, err := resample.BootstrapTInterval(pair, statistic, resample.TConfig{
		Observed: estimate,
		Outer:    s.config.BootstrapSamples,
		Inner:    s.config.InnerSamples,
		Level:    s.config.ConfidenceLevel,
	}, rng)
	if err != nil {
		return CorrelationResult{}, errors.Wrap(err, "bootstrap-t interval")
	}

	return CorrelationResult{
		Subset:      subset,
		X:           s.plan.CorrelationX,
		Y:           s.plan.CorrelationY,
		Method:      method,
		Records:     pair.Len(),
		Estimate:    estimate,
		JackknifeSE: jack,
		BootstrapSE: boot,
		TInterval:   tInterval,
	}, nil
}

func (s *AnalysisService) testCoefficient(d *dataset.Dataset, tested core.VariableKey, rng *rand.Rand) (hypothesis.TestResult, error) {
	cfg, coef, err := hypothesis.NewTestConfig(d, s.plan.Outcome, s.plan.Predictors, tested, s.config.TestSamples)
	if err != nil {
		return hypothesis.TestResult{}, err
	}
	res, err := hypothesis.ParametricBootstrapTest(d, cfg, rng)
	if err != nil {
		return hypothesis.TestResult{}, err
	}
	res.Coefficient = coef
	return res, nil
}

func (s *AnalysisService) selectPredictors(d *dataset.Dataset, rng *rand.Rand) (*SelectionResult, error) {
	res, err := selection.Backward(d, selection.Config{
		Family:     regression.Logistic,
		Outcome:    s.plan.Outcome,
		Candidates: s.plan.Predictors,
		Folds:      s.config.CVFolds,
		Tolerance:  s.config.SelectionTolerance,
	}, rng)
	if err != nil {
		return nil, err
	}
	return &SelectionResult{
		Family:     regression.Logistic,
		Outcome:    s.plan.Outcome,
		Candidates: append([]core.VariableKey(nil), s.plan.Predictors...),
		Result:     res,
	}, nil
}

// bootstrapIntercepts runs case and model-based resampling of the selected
// model's intercept. The full candidate model generates the simulated
// outcomes for model-based resampling.
func (s *AnalysisService) bootstrapIntercepts(ctx context.Context, runner *StageRunner, d *dataset.Dataset, selected *SelectionResult) ([]InterceptResult, []StageFailure, error) {
	spec := selected.Spec(selected.Family, selected.Outcome)

	schemes := []struct {
		method intercept.Method
		draw   func(rng *rand.Rand) (intercept.Distribution, error)
	}{
		{intercept.Case, func(rng *rand.Rand) (intercept.Distribution, error) {
			return intercept.CaseResampling(d, spec, s.config.InterceptSamples, rng)
		}},
		{intercept.Model, func(rng *rand.Rand) (intercept.Distribution, error) {
			return intercept.ModelResampling(d, spec, selected.Candidates, s.config.InterceptSamples, rng)
		}},
	}

	results := make([]InterceptResult, len(schemes))
	ok := make([]bool, len(schemes))
	stages := make([]Stage, len(schemes))
	for i, scheme := range schemes {
		stages[i] = Stage{
			Name: StageIntercept,
			Key:  string(scheme.method),
			Run: func(ctx context.Context, rng *rand.Rand) error {
				dist, err := scheme.draw(rng)
				if err != nil {
					return err
				}
				summary, err := intercept.Summarize(dist, s.config.ConfidenceLevel)
				if err != nil {
					return err
				}
				results[i] = InterceptResult{
					Summary:    summary,
					Predictors: spec.Predictors,
					Values:     dist.Values,
				}
				ok[i] = true
				return nil
			},
		}
	}

	failures, err := runner.Execute(ctx, stages)
	if err != nil {
		return nil, nil, errors.Wrap(err, "intercept bootstrap")
	}
	return keep(results, ok), failures, nil
}

// keep returns the entries of items whose flag is set, in order.
func keep[T any](items []T, flags []bool) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		if flags[i] {
			out = append(out, item)
		}
	}
	return out
}
