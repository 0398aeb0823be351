package regression

import (
	"fmt"
	"math"

	"abalone/internal/errors"

	"gonum.org/v1/gonum/mat"
)

const (
	maxIterations = 25
	// convergence when every Newton step component is below this
	stepTolerance = 1e-8
	// a fit reproducing every 0/1 outcome this closely is separated
	separationTolerance = 1e-8
)

// irls fits logistic regression by Newton-Raphson (iteratively reweighted
// least squares). Non-convergence within maxIterations, a singular
// information matrix, or a perfectly separated outcome is reported as
// NON_CONVERGENCE so resampling loops can exclude the replicate.
func (ds *Design) irls(y []float64) ([]float64, int, error) {
	n, p := ds.x.Dims()
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, 0, errors.InvalidInput(fmt.Sprintf("logistic outcome must be 0 or 1, record %d is %v", i, v))
		}
	}

	beta := mat.NewVecDense(p, nil)
	xw := mat.NewDense(n, p, nil)
	resid := mat.NewVecDense(n, nil)
	info := mat.NewSymDense(p, nil)

	for iter := 1; iter <= maxIterations; iter++ {
		eta := ds.linearPredictor(beta.RawVector().Data)

		for i := 0; i < n; i++ {
			mu := sigmoid(eta.AtVec(i))
			w := math.Sqrt(mu * (1 - mu))
			for j := 0; j < p; j++ {
				xw.Set(i, j, w*ds.x.At(i, j))
			}
			resid.SetVec(i, y[i]-mu)
		}

		info.SymOuterK(1, xw.T())

		var score mat.VecDense
		score.MulVec(ds.x.T(), resid)

		var chol mat.Cholesky
		if ok := chol.Factorize(info); !ok {
			return nil, iter, errors.NonConvergence("information matrix is not positive definite")
		}

		var delta mat.VecDense
		if err := chol.SolveVecTo(&delta, &score); err != nil {
			return nil, iter, errors.Wrap(errors.NonConvergence(err.Error()), "newton step")
		}

		beta.AddVec(beta, &delta)

		if mat.Norm(&delta, math.Inf(1)) < stepTolerance {
			coef := append([]float64(nil), beta.RawVector().Data...)
			if err := ds.checkSeparation(coef, y); err != nil {
				return nil, iter, err
			}
			return coef, iter, nil
		}
		if hasNonFinite(beta) {
			return nil, iter, errors.NonConvergence("coefficients diverged")
		}
	}

	return nil, maxIterations, errors.NonConvergence(fmt.Sprintf("no convergence after %d iterations", maxIterations))
}

func (ds *Design) checkSeparation(coef, y []float64) error {
	fitted := ds.mean(Logistic, coef)
	for i, mu := range fitted {
		if math.Abs(y[i]-mu) > separationTolerance {
			return nil
		}
	}
	return errors.NonConvergence("outcome is perfectly separated by the predictors")
}

func hasNonFinite(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
