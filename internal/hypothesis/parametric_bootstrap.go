// Package hypothesis tests logistic regression coefficients by parametric
// bootstrap rather than by asymptotic normality of the estimate.
package hypothesis

import (
	"fmt"
	"math"
	"math/rand/v2"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
	"abalone/internal/regression"
	"abalone/internal/resample"

	"gonum.org/v1/gonum/stat/distuv"
)

// TestConfig describes one nested-model comparison.
type TestConfig struct {
	Outcome    core.VariableKey   `json:"outcome"`
	Predictors []core.VariableKey `json:"predictors"` // full model
	Tested     core.VariableKey   `json:"tested"`
	Observed   float64            `json:"observed"` // T_obs = β̂²_tested from the full fit
	Resamples  int                `json:"resamples"`
}

// TestResult is the outcome of a parametric bootstrap test.
type TestResult struct {
	Tested        core.VariableKey `json:"tested"`
	Coefficient   float64          `json:"coefficient,omitempty"`
	Observed      float64          `json:"observed"`
	PValue        float64          `json:"p_value"`
	Resamples     int              `json:"resamples"`
	Used          int              `json:"used"`
	Excluded      int              `json:"excluded"`
	ExclusionRate float64          `json:"exclusion_rate"`
}

// NewTestConfig fits the full logistic model on d and returns a config
// whose observed statistic is the squared coefficient of tested.
func NewTestConfig(d *dataset.Dataset, outcome core.VariableKey, predictors []core.VariableKey, tested core.VariableKey, resamples int) (TestConfig, float64, error) {
	full, err := regression.Fit(d, regression.Spec{
		Family:     regression.Logistic,
		Outcome:    outcome,
		Predictors: predictors,
	})
	if err != nil {
		return TestConfig{}, 0, errors.Wrap(err, "full model fit")
	}
	coef, err := full.Coefficient(tested)
	if err != nil {
		return TestConfig{}, 0, err
	}

	return TestConfig{
		Outcome:    outcome,
		Predictors: append([]core.VariableKey(nil), predictors...),
		Tested:     tested,
		Observed:   coef * coef,
		Resamples:  resamples,
	}, coef, nil
}

// ParametricBootstrapTest tests H0: β_tested = 0.
//
// The reduced model (full predictors minus tested) supplies null success
// probabilities p̂ᵢ. Each replicate draws yᵢ* ~ Bernoulli(p̂ᵢ), refits the
// full model and records T* = β*²_tested. The p-value is the fraction of
// usable replicates with T* >= T_obs. Refits that fail to converge (for
// example on a separable simulated outcome) are excluded and counted.
func ParametricBootstrapTest(d *dataset.Dataset, cfg TestConfig, rng *rand.Rand) (TestResult, error) {
	if cfg.Resamples < 1 {
		return TestResult{}, errors.InvalidInput(fmt.Sprintf("resample count must be positive, got %d", cfg.Resamples))
	}
	if math.IsNaN(cfg.Observed) || math.IsInf(cfg.Observed, 0) || cfg.Observed < 0 {
		return TestResult{}, errors.InvalidInput(fmt.Sprintf("observed statistic must be finite and non-negative, got %v", cfg.Observed))
	}

	testedIdx := -1
	reduced := make([]core.VariableKey, 0, len(cfg.Predictors))
	for i, key := range cfg.Predictors {
		if key == cfg.Tested {
			testedIdx = i
			continue
		}
		reduced = append(reduced, key)
	}
	if testedIdx < 0 {
		return TestResult{}, errors.InvalidInput(fmt.Sprintf("tested predictor %q is not in the full model", cfg.Tested))
	}

	null, err := regression.Fit(d, regression.Spec{
		Family:     regression.Logistic,
		Outcome:    cfg.Outcome,
		Predictors: reduced,
	})
	if err != nil {
		return TestResult{}, errors.Wrap(err, "reduced model fit")
	}

	design, err := regression.NewDesign(d, cfg.Predictors)
	if err != nil {
		return TestResult{}, err
	}

	replicates := make([]float64, 0, cfg.Resamples)
	excluded := 0
	simulated := make([]float64, d.Len())
	for b := 0; b < cfg.Resamples; b++ {
		SimulateOutcome(null.Fitted, rng, simulated)

		refit, err := design.Fit(regression.Logistic, cfg.Outcome, simulated)
		if err != nil {
			if errors.IsRecoverable(err) {
				excluded++
				continue
			}
			return TestResult{}, errors.Wrapf(err, "parametric bootstrap replicate %d", b)
		}
		beta := refit.Coefficients[testedIdx+1]
		replicates = append(replicates, beta*beta)
	}

	result := TestResult{
		Tested:        cfg.Tested,
		Observed:      cfg.Observed,
		Resamples:     cfg.Resamples,
		Used:          len(replicates),
		Excluded:      excluded,
		ExclusionRate: float64(excluded) / float64(cfg.Resamples),
	}

	p, err := resample.UpperTailPValue(cfg.Observed, replicates)
	if err != nil {
		return result, errors.Wrapf(err, "all %d refits failed to converge", cfg.Resamples)
	}
	result.PValue = p
	return result, nil
}

// SimulateOutcome fills dst with independent Bernoulli(probs[i]) draws.
func SimulateOutcome(probs []float64, rng *rand.Rand, dst []float64) {
	for i, p := range probs {
		dst[i] = distuv.Bernoulli{P: p, Src: rng}.Rand()
	}
}
