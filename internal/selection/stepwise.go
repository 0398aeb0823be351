// Package selection chooses a predictor subset by backward elimination
// scored with k-fold cross-validated R².
package selection

import (
	"fmt"
	"math"
	"math/rand/v2"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
	"abalone/internal/regression"
)

// Config parameterizes backward elimination.
type Config struct {
	Family     regression.Family  `json:"family"`
	Outcome    core.VariableKey   `json:"outcome"`
	Candidates []core.VariableKey `json:"candidates"`
	Folds      int                `json:"folds"`

	// Tolerance is how much cross-validated R² a removal may lose and still
	// be accepted. Zero accepts ties, so equally good smaller models win.
	Tolerance float64 `json:"tolerance"`
}

// Step records one accepted removal.
type Step struct {
	Removed    core.VariableKey   `json:"removed"`
	Score      float64            `json:"score"`
	Predictors []core.VariableKey `json:"predictors"`
}

// Result is the selected model.
type Result struct {
	Predictors   []core.VariableKey `json:"predictors"`
	Score        float64            `json:"score"` // cross-validated R² of Predictors
	InitialScore float64            `json:"initial_score"`
	Steps        []Step             `json:"steps"`
	Skipped      int                `json:"skipped"` // candidate sets whose fits did not converge
}

// Spec returns the regression spec of the selected model.
func (r Result) Spec(family regression.Family, outcome core.VariableKey) regression.Spec {
	return regression.Spec{
		Family:     family,
		Outcome:    outcome,
		Predictors: append([]core.VariableKey(nil), r.Predictors...),
	}
}

// Backward starts from all candidates and repeatedly removes the predictor
// whose removal leaves the highest cross-validated R², as long as that
// score is at least the current score minus cfg.Tolerance. Exact ties
// remove the predictor appearing later in the current order. It stops
// when no removal is acceptable or a single predictor remains.
//
// Folds are drawn once from rng and reused for every candidate set, so the
// selection is deterministic for a fixed seed.
func Backward(d *dataset.Dataset, cfg Config, rng *rand.Rand) (Result, error) {
	if len(cfg.Candidates) == 0 {
		return Result{}, errors.InvalidInput("stepwise selection needs at least one candidate predictor")
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		return Result{}, errors.InvalidInput(fmt.Sprintf("tolerance must be non-negative, got %v", cfg.Tolerance))
	}

	folds, err := AssignFolds(d.Len(), cfg.Folds, rng)
	if err != nil {
		return Result{}, err
	}

	base := regression.Spec{Family: cfg.Family, Outcome: cfg.Outcome}
	current := append([]core.VariableKey(nil), cfg.Candidates...)

	score, err := CrossValidatedR2(d, base.WithPredictors(current), folds)
	if err != nil {
		return Result{}, errors.Wrap(err, "full candidate model")
	}

	result := Result{InitialScore: score}
	for len(current) > 1 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i := range current {
			candidate := without(current, i)
			s, err := CrossValidatedR2(d, base.WithPredictors(candidate), folds)
			if err != nil {
				if errors.IsRecoverable(err) {
					result.Skipped++
					continue
				}
				return Result{}, errors.Wrapf(err, "dropping %s", current[i])
			}
			if s >= bestScore {
				bestIdx, bestScore = i, s
			}
		}

		if bestIdx < 0 || bestScore < score-cfg.Tolerance {
			break
		}

		removed := current[bestIdx]
		current = without(current, bestIdx)
		score = bestScore
		result.Steps = append(result.Steps, Step{
			Removed:    removed,
			Score:      bestScore,
			Predictors: append([]core.VariableKey(nil), current...),
		})
	}

	result.Predictors = current
	result.Score = score
	return result, nil
}

func without(keys []core.VariableKey, i int) []core.VariableKey {
	out := make([]core.VariableKey, 0, len(keys)-1)
	out = append(out, keys[:i]...)
	return append(out, keys[i+1:]...)
}
