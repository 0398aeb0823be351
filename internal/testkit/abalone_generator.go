package testkit

import (
	"math"
	"math/rand/v2"

	"abalone/domain/core"
	"abalone/domain/dataset"

	"gonum.org/v1/gonum/stat/distuv"
)

// AbaloneGeneratorConfig configures the synthetic abalone generator
type AbaloneGeneratorConfig struct {
	Records      int    `json:"records"`
	HeightErrors int    `json:"height_errors"` // records given an implausible height
	Seed         uint64 `json:"seed"`
}

// DefaultAbaloneConfig returns a small, fast fixture configuration
func DefaultAbaloneConfig() AbaloneGeneratorConfig {
	return AbaloneGeneratorConfig{
		Records:      300,
		HeightErrors: 2,
		Seed:         42,
	}
}

// AbaloneGenerator produces measurement tables shaped like the UCI abalone
// data: allometric weights, heights around a third of the diameter, and
// infants concentrated among small shells.
type AbaloneGenerator struct {
	config AbaloneGeneratorConfig
	rng    *rand.Rand
}

// NewAbaloneGenerator creates a new generator
func NewAbaloneGenerator(config AbaloneGeneratorConfig) *AbaloneGenerator {
	return &AbaloneGenerator{
		config: config,
		rng:    NewRand(config.Seed),
	}
}

// Generate builds the dataset, including a rings column so loaders can
// exercise dropping it.
func (g *AbaloneGenerator) Generate() *dataset.Dataset {
	n := g.config.Records
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: g.rng}
	size := distuv.Beta{Alpha: 4, Beta: 2.5, Src: g.rng}

	cols := make(map[core.VariableKey][]float64)
	for _, key := range append(dataset.AbaloneSchema(), dataset.Rings) {
		cols[key] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		length := 0.08 + 0.74*size.Rand()
		diameter := math.Max(0.05, 0.81*length+0.012*noise.Rand())
		height := math.Max(0.01, 0.34*diameter+0.01*noise.Rand())
		whole := math.Max(0.002, 4.1*math.Pow(length, 3)*(1+0.08*noise.Rand()))
		shucked := whole * (0.43 + 0.03*noise.Rand())
		viscera := whole * (0.22 + 0.02*noise.Rand())
		shell := whole * (0.29 + 0.025*noise.Rand())

		logit := 9.5 - 22*length + 0.4*noise.Rand()
		infant := distuv.Bernoulli{P: 1 / (1 + math.Exp(-logit)), Src: g.rng}.Rand()

		cols[dataset.Length][i] = length
		cols[dataset.Diameter][i] = diameter
		cols[dataset.Height][i] = height
		cols[dataset.Whole][i] = whole
		cols[dataset.Shucked][i] = shucked
		cols[dataset.Viscera][i] = viscera
		cols[dataset.Shell][i] = shell
		cols[dataset.Infant][i] = infant
		cols[dataset.Rings][i] = math.Round(3 + 20*length + 1.5*noise.Rand())
	}

	for i := 0; i < g.config.HeightErrors && i < n; i++ {
		cols[dataset.Height][g.rng.IntN(n)] = 0.5 + 0.6*g.rng.Float64()
	}

	return mustDataset(append(dataset.AbaloneSchema(), dataset.Rings), cols)
}
