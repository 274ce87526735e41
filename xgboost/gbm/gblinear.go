package gbm

import (
	"fmt"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/modelreader"
)

const linearParamReserved = 32

// LinearModelParam is the parameter block of a linear booster.
type LinearModelParam struct {
	NumFeature     int32
	NumOutputGroup int32
}

// Linear is a linear booster. weights is row-major by feature then group; the
// row at index NumFeature holds the per-group bias.
type Linear struct {
	param   LinearModelParam
	weights []float32
}

// NewLinear builds a linear booster from its weight matrix.
func NewLinear(param LinearModelParam, weights []float32) (*Linear, error) {
	const op = "gblinear"
	if param.NumFeature < 0 {
		return nil, errors.NewStructuralErrorf(op, "negative num_feature %d", param.NumFeature)
	}
	if param.NumOutputGroup < 1 {
		return nil, errors.NewStructuralErrorf(op, "num_output_group %d must be positive", param.NumOutputGroup)
	}
	want := (int(param.NumFeature) + 1) * int(param.NumOutputGroup)
	if len(weights) != want {
		return nil, errors.NewStructuralErrorf(op, "got %d weights, want (%d+1)*%d", len(weights), param.NumFeature, param.NumOutputGroup)
	}
	return &Linear{param: param, weights: weights}, nil
}

// DecodeLinear reads a gblinear payload.
func DecodeLinear(r *modelreader.Reader) (*Linear, error) {
	const op = "gblinear param"
	var p LinearModelParam
	var err error
	if p.NumFeature, err = r.ReadInt32(op); err != nil {
		return nil, err
	}
	if p.NumOutputGroup, err = r.ReadInt32(op); err != nil {
		return nil, err
	}
	if err = r.Skip(op, linearParamReserved*4); err != nil {
		return nil, err
	}
	if p.NumFeature < 0 || p.NumOutputGroup < 1 {
		return nil, errors.NewStructuralErrorf(op, "invalid shape num_feature=%d num_output_group=%d", p.NumFeature, p.NumOutputGroup)
	}

	// The weight vector carries its own length prefix; the declared shape wins.
	n, err := r.ReadInt64("gblinear weights")
	if err != nil {
		return nil, err
	}
	want := (int64(p.NumFeature) + 1) * int64(p.NumOutputGroup)
	if n != want {
		errors.Warn(errors.NewDecodeWarning("gblinear weights",
			fmt.Sprintf("length prefix %d disagrees with (num_feature+1)*num_output_group = %d", n, want)))
	}
	weights, err := r.ReadFloat32s("gblinear weights", int(want))
	if err != nil {
		return nil, err
	}
	return NewLinear(p, weights)
}

func (l *Linear) isBooster() {}

// Name returns "gblinear".
func (l *Linear) Name() string { return NameGBLinear }

// Param returns the linear parameter block.
func (l *Linear) Param() LinearModelParam { return l.param }

// NumOutputGroup returns the number of per-row outputs.
func (l *Linear) NumOutputGroup() int { return int(l.param.NumOutputGroup) }

// Weight returns the coefficient of feature f for group g.
func (l *Linear) Weight(f, g int) float32 {
	return l.weights[f*int(l.param.NumOutputGroup)+g]
}

// Bias returns the intercept of group g.
func (l *Linear) Bias(g int) float32 {
	return l.Weight(int(l.param.NumFeature), g)
}

func (l *Linear) pred(feat fvec.FVec, g int) float32 {
	psum := l.Bias(g)
	for f := 0; f < int(l.param.NumFeature); f++ {
		if v, ok := feat.ValueAt(f); ok {
			psum += v * l.Weight(f, g)
		}
	}
	return psum
}

// Predict returns one raw score per group. ntreeLimit is ignored.
func (l *Linear) Predict(feat fvec.FVec, _ int) ([]float64, error) {
	out := make([]float64, l.param.NumOutputGroup)
	for g := range out {
		out[g] = float64(l.pred(feat, g))
	}
	return out, nil
}

// PredictSingle returns the raw score of a single-group model.
func (l *Linear) PredictSingle(feat fvec.FVec, _ int) (float64, error) {
	if l.param.NumOutputGroup != 1 {
		return 0, errMultiGroup(int(l.param.NumOutputGroup))
	}
	return float64(l.pred(feat, 0)), nil
}

// PredictLeaf always fails: a linear model has no leaves.
func (l *Linear) PredictLeaf(fvec.FVec, int) ([]int, error) {
	return nil, errors.NewStructuralError("predict leaf", "gblinear does not support leaf index prediction")
}
