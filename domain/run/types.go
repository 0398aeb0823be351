package run

import (
	"crypto/sha256"
	"fmt"

	"abalone/domain/core"
)

// RunFingerprint ensures deterministic replay: two runs with the same
// fingerprint produce the same numbers.
type RunFingerprint struct {
	DataHash    core.Hash `json:"data_hash"`
	ConfigHash  core.Hash `json:"config_hash"`
	PlanHash    core.Hash `json:"plan_hash"`
	Seed        uint64    `json:"seed"`
	Fingerprint core.Hash `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(dataHash, configHash, planHash core.Hash, seed uint64) RunFingerprint {
	return RunFingerprint{
		DataHash:    dataHash,
		ConfigHash:  configHash,
		PlanHash:    planHash,
		Seed:        seed,
		Fingerprint: computeRunFingerprint(dataHash, configHash, planHash, seed),
	}
}

// computeRunFingerprint generates deterministic hash from all determinism parameters
func computeRunFingerprint(dataHash, configHash, planHash core.Hash, seed uint64) core.Hash {
	data := fmt.Sprintf("data:%s|config:%s|plan:%s|seed:%d", dataHash, configHash, planHash, seed)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
