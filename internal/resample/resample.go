// Package resample implements jackknife and bootstrap inference for scalar
// statistics of a dataset. Every randomized procedure takes an explicit
// *rand.Rand so results are reproducible for a fixed seed and independent
// procedures can run on decorrelated streams.
package resample

import (
	"fmt"
	"math"
	"math/rand/v2"

	"abalone/domain/dataset"
	"abalone/internal/errors"
)

// Statistic maps a dataset to a scalar estimate.
type Statistic func(d *dataset.Dataset) (float64, error)

// Interval is a closed confidence interval with Lower <= Upper.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies inside the interval.
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lower && v <= iv.Upper
}

// Width returns Upper - Lower.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// Indices draws n indices uniformly with replacement from [0, n).
func Indices(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

// Resample draws a same-size case resample of d.
func Resample(d *dataset.Dataset, rng *rand.Rand) *dataset.Dataset {
	return d.Select(Indices(d.Len(), rng))
}

// evaluate runs statistic and rejects non-finite results as degenerate, so no
// NaN or Inf reaches a sort or a percentile.
func evaluate(statistic Statistic, d *dataset.Dataset) (float64, error) {
	v, err := statistic(d)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Degenerate(fmt.Sprintf("statistic is not finite: %v", v))
	}
	return v, nil
}

func checkLevel(level float64) error {
	if level <= 0 || level >= 1 {
		return errors.InvalidInput(fmt.Sprintf("confidence level must be in (0, 1), got %v", level))
	}
	return nil
}
