// Package gbm implements the gradient boosters stored in a legacy XGBoost
// binary model: the tree ensemble (gbtree and its DART variant) and the
// linear booster.
package gbm

import (
	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/modelreader"
)

// Booster kind names as they appear in the model header.
const (
	NameGBTree   = "gbtree"
	NameGBLinear = "gblinear"
	NameDart     = "dart"
)

// Booster produces raw per-group scores. It is implemented only by
// *TreeEnsemble and *Linear.
type Booster interface {
	// Predict returns one raw score per output group.
	Predict(feat fvec.FVec, ntreeLimit int) ([]float64, error)
	// PredictSingle returns the raw score of a single-group model and
	// fails with a StructuralError otherwise.
	PredictSingle(feat fvec.FVec, ntreeLimit int) (float64, error)
	// PredictLeaf returns leaf indices per tree.
	PredictLeaf(feat fvec.FVec, ntreeLimit int) ([]int, error)
	NumOutputGroup() int
	Name() string

	isBooster()
}

var (
	_ Booster = (*TreeEnsemble)(nil)
	_ Booster = (*Linear)(nil)
)

// Decode reads the payload of the booster named name.
func Decode(r *modelreader.Reader, name string, withPBuffer bool) (Booster, error) {
	switch name {
	case NameGBTree, NameDart:
		e, err := DecodeTreeEnsemble(r, withPBuffer, name == NameDart)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", name)
		}
		return e, nil
	case NameGBLinear:
		l, err := DecodeLinear(r)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", name)
		}
		return l, nil
	default:
		return nil, errors.NewUnsupportedBoosterError(name)
	}
}

func errMultiGroup(groups int) error {
	return errors.NewStructuralErrorf("predict single",
		"model has %d output groups; use Predict for multi-output models", groups)
}
