package regression

import (
	"fmt"
	"math"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// Design is a model matrix: a leading column of ones followed by one
// column per predictor. It can be refitted against many outcome vectors,
// which is what simulation-based procedures do.
type Design struct {
	predictors []core.VariableKey
	x          *mat.Dense
}

// NewDesign builds the model matrix for predictors over d.
func NewDesign(d *dataset.Dataset, predictors []core.VariableKey) (*Design, error) {
	n, p := d.Len(), len(predictors)+1
	if n == 0 {
		return nil, errors.InvalidInput("cannot build a design over an empty dataset")
	}

	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, key := range predictors {
		col, err := d.Column(key)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			x.Set(i, j+1, v)
		}
	}

	return &Design{
		predictors: append([]core.VariableKey(nil), predictors...),
		x:          x,
	}, nil
}

// Rows returns the number of records in the design
func (ds *Design) Rows() int {
	r, _ := ds.x.Dims()
	return r
}

// Fit fits the given family against outcome values y.
func (ds *Design) Fit(family Family, outcome core.VariableKey, y []float64) (*Model, error) {
	n, p := ds.x.Dims()
	if len(y) != n {
		return nil, errors.InvalidInput(fmt.Sprintf("outcome has %d values, design has %d rows", len(y), n))
	}
	if n <= p {
		return nil, errors.Degenerate(fmt.Sprintf("%d records cannot identify %d coefficients", n, p))
	}

	var (
		coef       []float64
		iterations int
		err        error
	)
	switch family {
	case Linear:
		coef, err = ds.ols(y)
		iterations = 1
	case Logistic:
		coef, iterations, err = ds.irls(y)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown model family %q", family))
	}
	if err != nil {
		return nil, err
	}

	return &Model{
		Spec: Spec{
			Family:     family,
			Outcome:    outcome,
			Predictors: append([]core.VariableKey(nil), ds.predictors...),
		},
		Coefficients: coef,
		Fitted:       ds.mean(family, coef),
		Iterations:   iterations,
	}, nil
}

func (ds *Design) linearPredictor(coef []float64) *mat.VecDense {
	n, _ := ds.x.Dims()
	eta := mat.NewVecDense(n, nil)
	eta.MulVec(ds.x, mat.NewVecDense(len(coef), coef))
	return eta
}

func (ds *Design) mean(family Family, coef []float64) []float64 {
	eta := ds.linearPredictor(coef)
	out := make([]float64, eta.Len())
	for i := range out {
		v := eta.AtVec(i)
		if family == Logistic {
			v = sigmoid(v)
		}
		out[i] = v
	}
	return out
}

func sigmoid(eta float64) float64 {
	if eta >= 0 {
		return 1 / (1 + math.Exp(-eta))
	}
	e := math.Exp(eta)
	return e / (1 + e)
}
