package resample

import (
	"fmt"
	"math"
	"sort"

	"abalone/internal/errors"

	"github.com/montanaflynn/stats"
)

// OrderIndex returns the 0-based order statistic used for probability p in
// a sorted sample of size n: ⌊p·n⌋, clamped to [0, n-1]. Percentile and
// bootstrap-t intervals both use this convention.
func OrderIndex(p float64, n int) int {
	idx := int(math.Floor(p * float64(n)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// Quantile returns the order statistic at probability p of an already
// sorted sample.
func Quantile(sorted []float64, p float64) float64 {
	return sorted[OrderIndex(p, len(sorted))]
}

// PercentileInterval returns the [α/2, 1-α/2] nearest-rank interval of
// samples for confidence level 1-α. samples is not modified.
func PercentileInterval(samples []float64, level float64) (Interval, error) {
	if err := checkLevel(level); err != nil {
		return Interval{}, err
	}
	if len(samples) == 0 {
		return Interval{}, errors.Degenerate("percentile interval of an empty distribution")
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	alpha := 1.0 - level
	return Interval{
		Lower: Quantile(sorted, alpha/2),
		Upper: Quantile(sorted, 1-alpha/2),
	}, nil
}

// Summary reduces a bootstrap distribution to its percentile interval and
// spread.
type Summary struct {
	Interval Interval `json:"interval"`
	Mean     float64  `json:"mean"`
	SD       float64  `json:"sd"`
	Samples  int      `json:"samples"`
}

// Summarize computes the percentile interval, mean and sample standard
// deviation of a bootstrap distribution.
func Summarize(samples []float64, level float64) (Summary, error) {
	if len(samples) < 2 {
		return Summary{}, errors.Degenerate(fmt.Sprintf("need at least 2 bootstrap values, got %d", len(samples)))
	}

	interval, err := PercentileInterval(samples, level)
	if err != nil {
		return Summary{}, err
	}
	mean, err := stats.Mean(samples)
	if err != nil {
		return Summary{}, errors.Wrap(err, "bootstrap mean")
	}
	sd, err := stats.StandardDeviationSample(samples)
	if err != nil {
		return Summary{}, errors.Wrap(err, "bootstrap standard deviation")
	}

	return Summary{
		Interval: interval,
		Mean:     mean,
		SD:       sd,
		Samples:  len(samples),
	}, nil
}

// UpperTailPValue is the fraction of null values greater than or equal to
// observed.
func UpperTailPValue(observed float64, null []float64) (float64, error) {
	if len(null) == 0 {
		return 0, errors.Degenerate("p-value of an empty null distribution")
	}

	extremeCount := 0
	for _, v := range null {
		if v >= observed {
			extremeCount++
		}
	}
	return float64(extremeCount) / float64(len(null)), nil
}
