// Package regression fits linear and logistic regression models of one
// dataset column on a set of others. A fit is a pure function of the design
// and the outcome; models never share mutable state.
package regression

import (
	"fmt"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
)

// Family selects the model type
type Family string

const (
	Linear   Family = "linear"
	Logistic Family = "logistic"
)

// ParseFamily resolves a family name
func ParseFamily(name string) (Family, error) {
	switch Family(name) {
	case Linear, Logistic:
		return Family(name), nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown model family %q", name))
}

// Spec names the outcome and predictors of a model
type Spec struct {
	Family     Family             `json:"family"`
	Outcome    core.VariableKey   `json:"outcome"`
	Predictors []core.VariableKey `json:"predictors"`
}

// WithPredictors returns a copy of the spec over a different predictor set.
func (s Spec) WithPredictors(predictors []core.VariableKey) Spec {
	out := s
	out.Predictors = append([]core.VariableKey(nil), predictors...)
	return out
}

// Model is an immutable fitted regression.
type Model struct {
	Spec Spec `json:"spec"`

	// Coefficients holds the intercept first, then one entry per predictor
	// in Spec.Predictors order.
	Coefficients []float64 `json:"coefficients"`

	// Fitted holds the fitted mean per training record: the linear
	// predictor for Linear, the success probability for Logistic.
	Fitted []float64 `json:"fitted"`

	Iterations int `json:"iterations"`
}

// Intercept returns the intercept coefficient
func (m *Model) Intercept() float64 {
	return m.Coefficients[0]
}

// Coefficient returns the coefficient for a predictor
func (m *Model) Coefficient(key core.VariableKey) (float64, error) {
	for i, p := range m.Spec.Predictors {
		if p == key {
			return m.Coefficients[i+1], nil
		}
	}
	return 0, errors.InvalidInput(fmt.Sprintf("%q is not a predictor of this model", key))
}

// Predict returns the fitted mean for every record of d.
func (m *Model) Predict(d *dataset.Dataset) ([]float64, error) {
	design, err := NewDesign(d, m.Spec.Predictors)
	if err != nil {
		return nil, err
	}
	return design.mean(m.Spec.Family, m.Coefficients), nil
}

// Fit fits spec on d.
func Fit(d *dataset.Dataset, spec Spec) (*Model, error) {
	design, err := NewDesign(d, spec.Predictors)
	if err != nil {
		return nil, err
	}
	y, err := d.Column(spec.Outcome)
	if err != nil {
		return nil, err
	}
	return design.Fit(spec.Family, spec.Outcome, y)
}
