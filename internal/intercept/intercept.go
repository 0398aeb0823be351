// Package intercept builds bootstrap confidence intervals for the intercept
// of a fitted regression, by resampling records or by simulating outcomes
// from a generating model.
package intercept

import (
	"fmt"
	"math"
	"math/rand/v2"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
	"abalone/internal/hypothesis"
	"abalone/internal/regression"
	"abalone/internal/resample"

	"gonum.org/v1/gonum/stat/distuv"
)

// Method names the resampling scheme
type Method string

const (
	Case  Method = "case"
	Model Method = "model"
)

// Distribution holds the bootstrap intercepts of one scheme.
type Distribution struct {
	Method    Method    `json:"method"`
	Estimate  float64   `json:"estimate"` // intercept fitted on the original data
	Values    []float64 `json:"-"`
	Resamples int       `json:"resamples"`
	Excluded  int       `json:"excluded"`
}

// Summary reduces a distribution to its percentile interval and spread.
type Summary struct {
	resample.Summary
	Method   Method  `json:"method"`
	Estimate float64 `json:"estimate"`
	Excluded int     `json:"excluded"`
}

// CaseResampling resamples records with replacement b times and refits
// spec on each resample.
func CaseResampling(d *dataset.Dataset, spec regression.Spec, b int, rng *rand.Rand) (Distribution, error) {
	if b < 1 {
		return Distribution{}, errors.InvalidInput(fmt.Sprintf("resample count must be positive, got %d", b))
	}
	fitted, err := regression.Fit(d, spec)
	if err != nil {
		return Distribution{}, errors.Wrap(err, "intercept model fit")
	}

	dist := Distribution{
		Method:    Case,
		Estimate:  fitted.Intercept(),
		Values:    make([]float64, 0, b),
		Resamples: b,
	}
	for i := 0; i < b; i++ {
		refit, err := regression.Fit(resample.Resample(d, rng), spec)
		if err != nil {
			if errors.IsRecoverable(err) {
				dist.Excluded++
				continue
			}
			return Distribution{}, errors.Wrapf(err, "case resample %d", i)
		}
		dist.Values = append(dist.Values, refit.Intercept())
	}
	return dist, nil
}

// ModelResampling fits the generating model once, then b times simulates a
// new outcome from it and refits spec with the original predictor values.
// Logistic outcomes are drawn as Bernoulli(p̂ᵢ); linear outcomes as
// ŷᵢ + N(0, σ̂²) with σ̂² the residual variance of the generating fit.
func ModelResampling(d *dataset.Dataset, spec regression.Spec, generating []core.VariableKey, b int, rng *rand.Rand) (Distribution, error) {
	if b < 1 {
		return Distribution{}, errors.InvalidInput(fmt.Sprintf("resample count must be positive, got %d", b))
	}

	gen, err := regression.Fit(d, spec.WithPredictors(generating))
	if err != nil {
		return Distribution{}, errors.Wrap(err, "generating model fit")
	}
	fitted, err := regression.Fit(d, spec)
	if err != nil {
		return Distribution{}, errors.Wrap(err, "intercept model fit")
	}
	design, err := regression.NewDesign(d, spec.Predictors)
	if err != nil {
		return Distribution{}, err
	}

	simulate, err := simulator(d, gen, rng)
	if err != nil {
		return Distribution{}, err
	}

	dist := Distribution{
		Method:    Model,
		Estimate:  fitted.Intercept(),
		Values:    make([]float64, 0, b),
		Resamples: b,
	}
	y := make([]float64, d.Len())
	for i := 0; i < b; i++ {
		simulate(y)
		refit, err := design.Fit(spec.Family, spec.Outcome, y)
		if err != nil {
			if errors.IsRecoverable(err) {
				dist.Excluded++
				continue
			}
			return Distribution{}, errors.Wrapf(err, "model resample %d", i)
		}
		dist.Values = append(dist.Values, refit.Intercept())
	}
	return dist, nil
}

func simulator(d *dataset.Dataset, gen *regression.Model, rng *rand.Rand) (func(dst []float64), error) {
	switch gen.Spec.Family {
	case regression.Logistic:
		return func(dst []float64) {
			hypothesis.SimulateOutcome(gen.Fitted, rng, dst)
		}, nil
	case regression.Linear:
		observed, err := d.Column(gen.Spec.Outcome)
		if err != nil {
			return nil, err
		}
		rss := 0.0
		for i, v := range observed {
			r := v - gen.Fitted[i]
			rss += r * r
		}
		sigma := math.Sqrt(rss / float64(len(observed)-len(gen.Coefficients)))
		noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}
		return func(dst []float64) {
			for i, mu := range gen.Fitted {
				dst[i] = mu + noise.Rand()
			}
		}, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown model family %q", gen.Spec.Family))
}

// Summarize computes the percentile interval at level, the mean and the
// sample standard deviation of dist.
func Summarize(dist Distribution, level float64) (Summary, error) {
	s, err := resample.Summarize(dist.Values, level)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "%s resampling kept %d of %d intercepts", dist.Method, len(dist.Values), dist.Resamples)
	}
	return Summary{
		Summary:  s,
		Method:   dist.Method,
		Estimate: dist.Estimate,
		Excluded: dist.Excluded,
	}, nil
}
