package resample

import (
	"fmt"
	"math/rand/v2"

	"abalone/domain/dataset"
	"abalone/internal/errors"

	"github.com/montanaflynn/stats"
)

// SEResult is a bootstrap standard error together with the replicate
// accounting behind it.
type SEResult struct {
	SE         float64 `json:"se"`
	Replicates int     `json:"replicates"`
	Excluded   int     `json:"excluded"`
}

// Replicates evaluates statistic on b case resamples of d. Resamples on
// which the statistic is degenerate (e.g. a constant resampled column) are
// skipped and counted; any other failure aborts.
func Replicates(d *dataset.Dataset, statistic Statistic, b int, rng *rand.Rand) ([]float64, int, error) {
	if b < 1 {
		return nil, 0, errors.InvalidInput(fmt.Sprintf("resample count must be positive, got %d", b))
	}
	if d.Len() < 1 {
		return nil, 0, errors.InvalidInput("cannot resample an empty dataset")
	}

	values := make([]float64, 0, b)
	excluded := 0
	for i := 0; i < b; i++ {
		v, err := evaluate(statistic, Resample(d, rng))
		if err != nil {
			if errors.IsRecoverable(err) {
				excluded++
				continue
			}
			return nil, excluded, errors.Wrapf(err, "bootstrap replicate %d", i)
		}
		values = append(values, v)
	}
	return values, excluded, nil
}

// BootstrapSE estimates the standard error of statistic as the sample
// standard deviation of b bootstrap replicates.
func BootstrapSE(d *dataset.Dataset, statistic Statistic, b int, rng *rand.Rand) (SEResult, error) {
	values, excluded, err := Replicates(d, statistic, b, rng)
	if err != nil {
		return SEResult{}, err
	}
	if len(values) < 2 {
		return SEResult{Replicates: len(values), Excluded: excluded},
			errors.Degenerate(fmt.Sprintf("only %d of %d bootstrap replicates were usable", len(values), b))
	}

	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return SEResult{}, errors.Wrap(err, "bootstrap standard deviation")
	}

	return SEResult{
		SE:         sd,
		Replicates: len(values),
		Excluded:   excluded,
	}, nil
}
