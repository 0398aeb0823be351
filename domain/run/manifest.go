package run

import (
	"encoding/json"
	"time"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
)

// Manifest identifies one analysis run and everything its output depends on
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Records     int            `json:"records"`
	Fingerprint RunFingerprint `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewManifest fingerprints the dataset, the JSON encoding of config and
// plan, and the seed.
func NewManifest(runID core.RunID, d *dataset.Dataset, config, plan any, seed uint64) (*Manifest, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, errors.Wrap(err, "encode config for fingerprint")
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, errors.Wrap(err, "encode plan for fingerprint")
	}

	return &Manifest{
		RunID:   runID,
		Records: d.Len(),
		Fingerprint: NewRunFingerprint(
			d.Fingerprint(),
			core.NewHash(configJSON),
			core.NewHash(planJSON),
			seed,
		),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return errors.InvalidInput("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.DataHash.IsEmpty() {
		return errors.InvalidInput("run manifest: data_hash cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return errors.InvalidInput("run manifest: fingerprint cannot be empty")
	}
	return nil
}
