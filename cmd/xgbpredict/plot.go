package main

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

const histogramBins = 20

// saveHistogram plots the distribution of the first output column.
func saveHistogram(path, title string, preds *mat.Dense) error {
	rows, _ := preds.Dims()
	if rows == 0 {
		return errors.NewValidationError("plot", "no predictions to plot", path)
	}
	values := make(plotter.Values, rows)
	for i := range values {
		values[i] = preds.At(i, 0)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "prediction"
	p.Y.Label.Text = "rows"

	h, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return errors.Wrap(err, "build histogram")
	}
	p.Add(h)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
