package report

import (
	"abalone/internal/errors"
	"abalone/internal/resample"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Histogram draws values as a PNG (or any format gonum/plot infers from
// the extension) at path, marking the interval bounds.
func Histogram(path, title string, values []float64, interval resample.Interval, bins int) error {
	if len(values) == 0 {
		return errors.InvalidInput("cannot plot an empty distribution")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Intercept"
	p.Y.Label.Text = "Count"

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrap(err, "build histogram")
	}
	p.Add(hist)

	top := 0.0
	for _, bin := range hist.Bins {
		if bin.Weight > top {
			top = bin.Weight
		}
	}
	for _, x := range []float64{interval.Lower, interval.Upper} {
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
		if err != nil {
			return errors.Wrap(err, "interval marker")
		}
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}
