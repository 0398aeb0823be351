package rng

import (
	"math/rand/v2"

	"abalone/ports"
)

// PCGAdapter implements ports.RNGPort on PCG generators. The stream
// selector (second PCG word) is derived from the stage name and key, which
// keeps per-stage sequences independent for a shared run seed.
type PCGAdapter struct{}

var _ ports.RNGPort = (*PCGAdapter)(nil)

// NewPCGAdapter creates a stream factory
func NewPCGAdapter() *PCGAdapter {
	return &PCGAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *PCGAdapter) SeededStream(name string, seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, hashString(name)))
}

// Stream creates a deterministic RNG stream for a specific stage/key
func (a *PCGAdapter) Stream(stageName, key string, runSeed uint64) *rand.Rand {
	selector := hashString(stageName)
	if key != "" {
		selector = selector*31 + hashString(key)
	}
	return rand.New(rand.NewPCG(runSeed, selector))
}

// hashString is djb2 widened to 64 bits
func hashString(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}
