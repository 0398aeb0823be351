package regression

import (
	"fmt"

	"abalone/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// designs worse conditioned than this are treated as rank deficient
const maxCondition = 1e12

// ols solves the least-squares problem through a QR factorization.
func (ds *Design) ols(y []float64) ([]float64, error) {
	n, p := ds.x.Dims()

	var qr mat.QR
	qr.Factorize(ds.x)
	if cond := qr.Cond(); cond > maxCondition {
		return nil, errors.Degenerate(fmt.Sprintf("design matrix is rank deficient (condition %.3g)", cond))
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, errors.Wrap(errors.Degenerate(err.Error()), "least squares solve")
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}
	return coef, nil
}
