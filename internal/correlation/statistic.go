package correlation

import (
	"abalone/domain/core"
	"abalone/domain/dataset"
)

// Statistic adapts Correlate to a function of a dataset, so resampling
// procedures can recompute it on derived datasets.
func Statistic(x, y core.VariableKey, method Method) func(*dataset.Dataset) (float64, error) {
	return func(d *dataset.Dataset) (float64, error) {
		xs, err := d.Column(x)
		if err != nil {
			return 0, err
		}
		ys, err := d.Column(y)
		if err != nil {
			return 0, err
		}
		return Correlate(xs, ys, method)
	}
}
