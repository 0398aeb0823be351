package resample

import (
	"fmt"
	"math"

	"abalone/domain/dataset"
	"abalone/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// JackknifeSE estimates the standard error of statistic by recomputing it on
// each of the n leave-one-out datasets:
//
//	se = sqrt((n-1)/n · Σ(θ₍ᵢ₎ - θ̄)²)
//
// This costs n evaluations of statistic. Every leave-one-out estimate is needed,
// so a failing one fails the whole estimate.
func JackknifeSE(d *dataset.Dataset, statistic Statistic) (float64, error) {
	if d.Len() < 2 {
		return 0, errors.InvalidInput(fmt.Sprintf("jackknife needs at least 2 records, got %d", d.Len()))
	}

	estimates, err := JackknifeEstimates(d, statistic)
	if err != nil {
		return 0, err
	}
	return jackknifeSpread(estimates), nil
}

// JackknifeEstimates returns the leave-one-out estimates in record order.
func JackknifeEstimates(d *dataset.Dataset, statistic Statistic) ([]float64, error) {
	n := d.Len()
	estimates := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := evaluate(statistic, d.Without(i))
		if err != nil {
			return nil, errors.Wrapf(err, "leave-one-out estimate %d", i)
		}
		estimates[i] = v
	}
	return estimates, nil
}

func jackknifeSpread(estimates []float64) float64 {
	n := float64(len(estimates))
	mean := stat.Mean(estimates, nil)

	ss := 0.0
	for _, v := range estimates {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt((n - 1) / n * ss)
}
