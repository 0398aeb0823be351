package ports

import (
	"math/rand/v2"
)

// RNGPort provides seeded random streams for deterministic resampling.
// Streams derived for different names are decorrelated, so independent
// stages can run concurrently without sharing generator state.
type RNGPort interface {
	// SeededStream creates a deterministic generator for a named operation
	SeededStream(name string, seed uint64) *rand.Rand

	// Stream creates a deterministic stream for one stage of one run.
	// The same (runSeed, stageName, key) always yields the same sequence.
	Stream(stageName, key string, runSeed uint64) *rand.Rand
}
