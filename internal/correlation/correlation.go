// Package correlation implements product-moment and rank correlation
// between two numeric columns.
package correlation

import (
	"fmt"
	"math"
	"sort"

	"abalone/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// Method selects the correlation estimator
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
)

// ParseMethod resolves a method name
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case Pearson, Spearman:
		return Method(name), nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown correlation method %q", name))
}

// Correlate computes the correlation of x and y with the given method.
// It fails on length mismatch, fewer than two observations, or a constant
// sequence, for which the correlation is undefined.
func Correlate(x, y []float64, method Method) (float64, error) {
	switch method {
	case Pearson:
		return PearsonR(x, y)
	case Spearman:
		return SpearmanRho(x, y)
	}
	return 0, errors.InvalidInput(fmt.Sprintf("unknown correlation method %q", method))
}

// PearsonR computes the product-moment correlation coefficient
func PearsonR(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, errors.Degenerate("correlation undefined for a constant sequence")
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, errors.Degenerate("correlation is not finite")
	}

	// Clamp to [-1, 1] range (due to floating point precision)
	return math.Max(-1, math.Min(1, r)), nil
}

// SpearmanRho computes Pearson's r on average ranks, so ties are handled
// exactly rather than through the 1 - 6Σd²/n(n²-1) shortcut.
func SpearmanRho(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	return PearsonR(Ranks(x), Ranks(y))
}

// Ranks converts values to 1-based ranks, averaging ties
func Ranks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}

		i = j
	}

	return ranks
}

func checkPair(x, y []float64) error {
	if len(x) != len(y) {
		return errors.InvalidInput(fmt.Sprintf("sequences differ in length: %d vs %d", len(x), len(y)))
	}
	if len(x) < 2 {
		return errors.InvalidInput(fmt.Sprintf("correlation needs at least 2 observations, got %d", len(x)))
	}
	return nil
}
