package xgboost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/core/parallel"
	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/gbm"
)

func (p *Predictor) fanOut(rows int, fn func(start, end int) error) error {
	return parallel.ParallelizeWithThreshold(rows, p.cfg.parallelThreshold, p.cfg.workers, fn)
}

// PredictBatch scores every row of X. Row i of the result corresponds to row
// i of X and has OutputWidth(outputMargin) columns. NaN cells are missing;
// opts configure how rows are turned into feature vectors.
func (p *Predictor) PredictBatch(X mat.Matrix, outputMargin bool, ntreeLimit int, opts ...fvec.DenseOption) (*mat.Dense, error) {
	rows, _ := X.Dims()
	if rows == 0 {
		return nil, errors.NewValidationError("X", "matrix has no rows", 0)
	}
	out := mat.NewDense(rows, p.OutputWidth(outputMargin), nil)
	err := p.fanOut(rows, func(start, end int) error {
		for i := start; i < end; i++ {
			preds, err := p.Predict(fvec.FromMatRow(X, i, opts...), outputMargin, ntreeLimit)
			if err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
			out.SetRow(i, preds)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictLeafBatch returns leaf indices for every row of X, one column per tree.
// A model without trees is a StructuralError here, while PredictLeaf and
// PredictLeafVectors return empty slices: a gonum matrix cannot have zero
// columns.
func (p *Predictor) PredictLeafBatch(X mat.Matrix, ntreeLimit int, opts ...fvec.DenseOption) (*mat.Dense, error) {
	e, ok := p.booster.(*gbm.TreeEnsemble)
	if !ok {
		return nil, errors.NewStructuralErrorf("predict leaf", "%s does not support leaf index prediction", p.boosterName)
	}
	rows, _ := X.Dims()
	if rows == 0 {
		return nil, errors.NewValidationError("X", "matrix has no rows", 0)
	}
	width := e.NumTrees()
	if ntreeLimit > 0 && ntreeLimit < width {
		width = ntreeLimit
	}
	if width == 0 {
		return nil, errors.NewStructuralError("predict leaf", "model has no trees")
	}

	out := mat.NewDense(rows, width, nil)
	err := p.fanOut(rows, func(start, end int) error {
		row := make([]float64, width)
		for i := start; i < end; i++ {
			leaves, err := p.PredictLeaf(fvec.FromMatRow(X, i, opts...), ntreeLimit)
			if err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
			for j, leaf := range leaves {
				row[j] = float64(leaf)
			}
			out.SetRow(i, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictVectors scores a slice of feature vectors, typically sparse rows read
// from LibSVM text. Result i corresponds to feats[i].
func (p *Predictor) PredictVectors(feats []fvec.FVec, outputMargin bool, ntreeLimit int) ([][]float64, error) {
	out := make([][]float64, len(feats))
	err := p.fanOut(len(feats), func(start, end int) error {
		for i := start; i < end; i++ {
			preds, err := p.Predict(feats[i], outputMargin, ntreeLimit)
			if err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
			out[i] = preds
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictLeafVectors returns leaf indices for each feature vector.
func (p *Predictor) PredictLeafVectors(feats []fvec.FVec, ntreeLimit int) ([][]int, error) {
	out := make([][]int, len(feats))
	err := p.fanOut(len(feats), func(start, end int) error {
		for i := start; i < end; i++ {
			leaves, err := p.PredictLeaf(feats[i], ntreeLimit)
			if err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
			out[i] = leaves
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
