package selection

import (
	"fmt"
	"math/rand/v2"

	"abalone/domain/dataset"
	"abalone/internal/correlation"
	"abalone/internal/errors"
	"abalone/internal/regression"
)

// Folds assigns every record of a dataset to one of K folds.
type Folds struct {
	K      int
	Assign []int // fold per record
}

// AssignFolds shuffles record indices with rng and deals them round-robin
// into k folds, so fold sizes differ by at most one.
func AssignFolds(n, k int, rng *rand.Rand) (Folds, error) {
	if k < 2 || k > n {
		return Folds{}, errors.InvalidInput(fmt.Sprintf("need 2 <= folds <= records, got %d folds for %d records", k, n))
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	assign := make([]int, n)
	for pos, idx := range order {
		assign[idx] = pos % k
	}
	return Folds{K: k, Assign: assign}, nil
}

// Split returns the training and held-out records for fold f.
func (f Folds) Split(d *dataset.Dataset, fold int) (train, test *dataset.Dataset) {
	train = d.Filter(func(row int) bool { return f.Assign[row] != fold })
	test = d.Filter(func(row int) bool { return f.Assign[row] == fold })
	return train, test
}

// CrossValidatedR2 fits spec on each training split and scores the
// held-out predictions by their squared correlation with the observed
// outcome, averaged over folds.
func CrossValidatedR2(d *dataset.Dataset, spec regression.Spec, folds Folds) (float64, error) {
	if len(folds.Assign) != d.Len() {
		return 0, errors.InvalidInput(fmt.Sprintf("fold assignment covers %d records, dataset has %d", len(folds.Assign), d.Len()))
	}

	total := 0.0
	for f := 0; f < folds.K; f++ {
		train, test := folds.Split(d, f)

		model, err := regression.Fit(train, spec)
		if err != nil {
			return 0, errors.Wrapf(err, "fold %d", f)
		}
		predicted, err := model.Predict(test)
		if err != nil {
			return 0, err
		}
		observed, err := test.Column(spec.Outcome)
		if err != nil {
			return 0, err
		}

		r, err := correlation.PearsonR(predicted, observed)
		if err != nil {
			if errors.HasCode(err, errors.CodeDegenerate) {
				// constant predictions or outcomes explain nothing
				continue
			}
			return 0, errors.Wrapf(err, "fold %d", f)
		}
		total += r * r
	}
	return total / float64(folds.K), nil
}
