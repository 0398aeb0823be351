package resample

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"abalone/domain/dataset"
	"abalone/internal/errors"
)

// TConfig parameterizes a studentized bootstrap interval.
type TConfig struct {
	Observed float64 // θ̂ on the original data
	Outer    int     // B, outer resamples
	Inner    int     // B', resamples per nested standard error
	Level    float64 // confidence level, e.g. 0.95
}

// TInterval is a bootstrap-t confidence interval.
type TInterval struct {
	Interval Interval `json:"interval"`
	Observed float64  `json:"observed"`
	SE       float64  `json:"se"`       // bootstrap SE of θ̂ on the original data
	TLower   float64  `json:"t_lower"`  // t quantile at α/2
	TUpper   float64  `json:"t_upper"`  // t quantile at 1-α/2
	Used     int      `json:"used"`     // outer iterations that produced a finite t
	Excluded int      `json:"excluded"` // outer iterations dropped as degenerate
	Swapped  bool     `json:"swapped"`  // raw bounds came out reversed
}

// BootstrapTInterval builds a studentized bootstrap confidence interval.
//
// For each outer resample it computes θ*_b and a nested bootstrap standard
// error se*_b from cfg.Inner resamples of that resample, and forms
// t_b = (θ*_b - θ̂)/se*_b. With se the bootstrap SE of θ̂ from cfg.Outer
// resamples of the original data, the interval is
//
//	[θ̂ + se·t_(⌊α/2·B⌋), θ̂ + se·t_(⌊(1-α/2)·B⌋)]
//
// where B counts the usable iterations. Iterations whose statistic is
// degenerate or whose nested SE is zero are excluded and counted. When the
// raw bounds come out reversed they are swapped and Swapped is set.
func BootstrapTInterval(d *dataset.Dataset, statistic Statistic, cfg TConfig, rng *rand.Rand) (TInterval, error) {
	if err := checkLevel(cfg.Level); err != nil {
		return TInterval{}, err
	}
	if cfg.Outer < 1 || cfg.Inner < 2 {
		return TInterval{}, errors.InvalidInput(fmt.Sprintf("bootstrap-t needs outer >= 1 and inner >= 2, got %d and %d", cfg.Outer, cfg.Inner))
	}
	if math.IsNaN(cfg.Observed) || math.IsInf(cfg.Observed, 0) {
		return TInterval{}, errors.Degenerate("observed statistic is not finite")
	}

	tStats := make([]float64, 0, cfg.Outer)
	excluded := 0
	for b := 0; b < cfg.Outer; b++ {
		t, err := studentized(d, statistic, cfg, rng)
		if err != nil {
			if errors.IsRecoverable(err) {
				excluded++
				continue
			}
			return TInterval{}, errors.Wrapf(err, "bootstrap-t iteration %d", b)
		}
		tStats = append(tStats, t)
	}
	if len(tStats) == 0 {
		return TInterval{Excluded: excluded}, errors.Degenerate(fmt.Sprintf("all %d bootstrap-t iterations were degenerate", cfg.Outer))
	}
	sort.Float64s(tStats)

	se, err := BootstrapSE(d, statistic, cfg.Outer, rng)
	if err != nil {
		return TInterval{}, errors.Wrap(err, "standard error of the observed statistic")
	}

	alpha := 1.0 - cfg.Level
	tLower := Quantile(tStats, alpha/2)
	tUpper := Quantile(tStats, 1-alpha/2)

	result := TInterval{
		Interval: Interval{
			Lower: cfg.Observed + se.SE*tLower,
			Upper: cfg.Observed + se.SE*tUpper,
		},
		Observed: cfg.Observed,
		SE:       se.SE,
		TLower:   tLower,
		TUpper:   tUpper,
		Used:     len(tStats),
		Excluded: excluded,
	}
	if result.Interval.Lower > result.Interval.Upper {
		result.Interval.Lower, result.Interval.Upper = result.Interval.Upper, result.Interval.Lower
		result.Swapped = true
	}
	return result, nil
}

func studentized(d *dataset.Dataset, statistic Statistic, cfg TConfig, rng *rand.Rand) (float64, error) {
	resampled := Resample(d, rng)

	theta, err := evaluate(statistic, resampled)
	if err != nil {
		return 0, err
	}

	inner, err := BootstrapSE(resampled, statistic, cfg.Inner, rng)
	if err != nil {
		return 0, err
	}
	if inner.SE == 0 {
		return 0, errors.Degenerate("nested bootstrap standard error is zero")
	}

	t := (theta - cfg.Observed) / inner.SE
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, errors.Degenerate("studentized statistic is not finite")
	}
	return t, nil
}
