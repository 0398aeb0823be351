package dataset

import (
	"fmt"

	"abalone/domain/core"
	"abalone/internal/errors"

	"github.com/montanaflynn/stats"
)

// Fences are Tukey outlier bounds for one column.
type Fences struct {
	Key   core.VariableKey `json:"key"`
	Q25   float64          `json:"q25"`
	Q75   float64          `json:"q75"`
	Lower float64          `json:"lower"`
	Upper float64          `json:"upper"`
}

// Contains reports whether v lies inside the fences (inclusive).
func (f Fences) Contains(v float64) bool {
	return v >= f.Lower && v <= f.Upper
}

// TukeyFences computes [Q1 - k·IQR, Q3 + k·IQR] for key.
func TukeyFences(d *Dataset, key core.VariableKey, multiplier float64) (Fences, error) {
	if multiplier <= 0 {
		return Fences{}, errors.InvalidInput(fmt.Sprintf("IQR multiplier must be positive, got %v", multiplier))
	}
	values, err := d.Column(key)
	if err != nil {
		return Fences{}, err
	}
	if len(values) == 0 {
		return Fences{}, errors.InvalidInput("cannot compute fences on an empty column")
	}

	q25, err := stats.Percentile(values, 25)
	if err != nil {
		return Fences{}, errors.Wrapf(err, "25th percentile of %s", key)
	}
	q75, err := stats.Percentile(values, 75)
	if err != nil {
		return Fences{}, errors.Wrapf(err, "75th percentile of %s", key)
	}

	iqr := q75 - q25
	return Fences{
		Key:   key,
		Q25:   q25,
		Q75:   q75,
		Lower: q25 - multiplier*iqr,
		Upper: q75 + multiplier*iqr,
	}, nil
}

// WithoutOutliers returns the records whose key value lies inside its
// Tukey fences, together with the fences used.
func WithoutOutliers(d *Dataset, key core.VariableKey, multiplier float64) (*Dataset, Fences, error) {
	fences, err := TukeyFences(d, key, multiplier)
	if err != nil {
		return nil, Fences{}, err
	}
	values, _ := d.Column(key)
	filtered := d.Filter(func(row int) bool {
		return fences.Contains(values[row])
	})
	return filtered, fences, nil
}
