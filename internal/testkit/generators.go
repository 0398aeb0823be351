package testkit

import (
	"math"
	"math/rand/v2"

	"abalone/domain/core"
	"abalone/domain/dataset"

	"gonum.org/v1/gonum/stat/distuv"
)

// Synthetic column keys used by the generic generators
const (
	X core.VariableKey = "x"
	Y core.VariableKey = "y"
)

// NewRand returns a seeded generator for fixtures.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
}

// CorrelatedPair draws n records from a standard bivariate normal with
// correlation rho into columns X and Y.
func CorrelatedPair(n int, rho float64, rng *rand.Rand) *dataset.Dataset {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	scale := math.Sqrt(1 - rho*rho)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		z1 := normal.Rand()
		z2 := normal.Rand()
		xs[i] = z1
		ys[i] = rho*z1 + scale*z2
	}

	return mustDataset([]core.VariableKey{X, Y}, map[core.VariableKey][]float64{X: xs, Y: ys})
}

// LinearDataset draws n records of outcome = intercept + Σ coef·pred + N(0, noise²)
// with standard normal predictors named by keys.
func LinearDataset(n int, outcome core.VariableKey, keys []core.VariableKey, intercept float64, coefs []float64, noise float64, rng *rand.Rand) *dataset.Dataset {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	columns, eta := predictors(n, keys, intercept, coefs, normal)

	y := make([]float64, n)
	for i := range y {
		y[i] = eta[i] + noise*normal.Rand()
	}
	columns[outcome] = y

	return mustDataset(append(append([]core.VariableKey{}, keys...), outcome), columns)
}

// LogisticDataset draws n records with a Bernoulli outcome whose log-odds
// are intercept + Σ coef·pred over standard normal predictors.
func LogisticDataset(n int, outcome core.VariableKey, keys []core.VariableKey, intercept float64, coefs []float64, rng *rand.Rand) *dataset.Dataset {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	columns, eta := predictors(n, keys, intercept, coefs, normal)

	y := make([]float64, n)
	for i := range y {
		p := 1 / (1 + math.Exp(-eta[i]))
		y[i] = distuv.Bernoulli{P: p, Src: rng}.Rand()
	}
	columns[outcome] = y

	return mustDataset(append(append([]core.VariableKey{}, keys...), outcome), columns)
}

func predictors(n int, keys []core.VariableKey, intercept float64, coefs []float64, normal distuv.Normal) (map[core.VariableKey][]float64, []float64) {
	columns := make(map[core.VariableKey][]float64, len(keys)+1)
	eta := make([]float64, n)
	for i := range eta {
		eta[i] = intercept
	}
	for j, key := range keys {
		col := make([]float64, n)
		for i := range col {
			col[i] = normal.Rand()
			eta[i] += coefs[j] * col[i]
		}
		columns[key] = col
	}
	return columns, eta
}

func mustDataset(keys []core.VariableKey, columns map[core.VariableKey][]float64) *dataset.Dataset {
	d, err := dataset.New(keys, columns)
	if err != nil {
		panic(err)
	}
	return d
}
