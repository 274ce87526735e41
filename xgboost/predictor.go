package xgboost

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"time"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/gbm"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/modelreader"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/objective"
)

// Header dialects.
const (
	DialectBinf   = "binf"
	DialectLegacy = "legacy"
	DialectSpark  = "xgboost4j-spark"

	learnerParamReserved = 30
)

var sparkPrefix = [3]byte{0x00, 0x05, 0x5f}

// ModelParam holds the learner-level parameters from the model header.
type ModelParam struct {
	BaseScore        float32
	NumFeature       int32
	NumClass         int32
	SavedWithPBuffer bool
	Dialect          string
}

// Predictor scores feature vectors against a decoded model. It is immutable
// after Load and safe for concurrent use.
type Predictor struct {
	param       ModelParam
	objName     string
	boosterName string
	obj         objective.Kind
	booster     gbm.Booster
	cfg         config
}

// Load decodes a model from r. The whole stream up to the end of the booster
// payload is consumed; on error no Predictor is returned.
func Load(r io.Reader, opts ...Option) (*Predictor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("xgboost")
	}

	start := time.Now()
	mr := modelreader.New(r)
	p, err := decode(mr, cfg)
	if err != nil {
		cfg.logger.Debug("model load failed", err,
			log.OperationKey, log.OperationLoad,
			log.BytesKey, mr.Offset(),
		)
		return nil, err
	}

	if cfg.logger.Enabled(context.Background(), log.LevelDebug) {
		fields := []any{
			log.OperationKey, log.OperationLoad,
			log.DialectKey, p.param.Dialect,
			log.ObjectiveKey, p.objName,
			log.BoosterKey, p.boosterName,
			log.NumGroupsKey, p.booster.NumOutputGroup(),
			log.FeaturesKey, p.param.NumFeature,
			log.BytesKey, mr.Offset(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		}
		if e, ok := p.booster.(*gbm.TreeEnsemble); ok {
			fields = append(fields, log.NumTreesKey, e.NumTrees())
		}
		cfg.logger.Debug("model loaded", fields...)
	}
	return p, nil
}

// LoadFromBytes decodes a model held in memory.
func LoadFromBytes(b []byte, opts ...Option) (*Predictor, error) {
	return Load(bytes.NewReader(b), opts...)
}

// LoadFromFile decodes the model stored at path.
func LoadFromFile(path string, opts ...Option) (*Predictor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open model %s", path)
	}
	defer f.Close()

	p, err := Load(bufio.NewReader(f), opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load model %s", path)
	}
	return p, nil
}

func decode(r *modelreader.Reader, cfg config) (*Predictor, error) {
	param, err := decodeModelParam(r)
	if err != nil {
		return nil, err
	}

	objName, err := r.ReadString("objective name")
	if err != nil {
		return nil, err
	}
	boosterName, err := r.ReadString("booster name")
	if err != nil {
		return nil, err
	}

	obj, err := objective.Lookup(objName)
	if err != nil {
		return nil, err
	}

	withPBuffer := param.SavedWithPBuffer && cfg.skipPBuffer
	booster, err := gbm.Decode(r, boosterName, withPBuffer)
	if err != nil {
		return nil, err
	}

	return &Predictor{
		param:       param,
		objName:     objName,
		boosterName: boosterName,
		obj:         obj,
		booster:     booster,
		cfg:         cfg,
	}, nil
}

func decodeModelParam(r *modelreader.Reader) (ModelParam, error) {
	const op = "model header"
	var p ModelParam

	first, err := r.Read4(op)
	if err != nil {
		return p, err
	}
	next, err := r.Read4(op)
	if err != nil {
		return p, err
	}

	switch {
	case string(first[:]) == "binf":
		p.Dialect = DialectBinf
		p.BaseScore = math.Float32frombits(binary.LittleEndian.Uint32(next[:]))
		if p.NumFeature, err = r.ReadInt32(op); err != nil {
			return p, err
		}
	case first[0] == sparkPrefix[0] && first[1] == sparkPrefix[1] && first[2] == sparkPrefix[2]:
		return p, errors.NewUnsupportedFormatError(DialectSpark)
	default:
		p.Dialect = DialectLegacy
		p.BaseScore = math.Float32frombits(binary.LittleEndian.Uint32(first[:]))
		p.NumFeature = int32(binary.LittleEndian.Uint32(next[:]))
	}

	if p.NumClass, err = r.ReadInt32(op); err != nil {
		return p, err
	}
	saved, err := r.ReadInt32(op)
	if err != nil {
		return p, err
	}
	p.SavedWithPBuffer = saved != 0
	if err := r.Skip(op, learnerParamReserved*4); err != nil {
		return p, err
	}
	return p, nil
}

// Param returns the learner-level parameters.
func (p *Predictor) Param() ModelParam { return p.param }

// BaseScore returns the global bias added to every raw score.
func (p *Predictor) BaseScore() float32 { return p.param.BaseScore }

// NumFeature returns the feature count declared in the header.
func (p *Predictor) NumFeature() int { return int(p.param.NumFeature) }

// NumClass returns the class count declared in the header (0 for non-multiclass).
func (p *Predictor) NumClass() int { return int(p.param.NumClass) }

// NumOutputGroup returns the number of raw scores per row.
func (p *Predictor) NumOutputGroup() int { return p.booster.NumOutputGroup() }

// ObjectiveName returns the objective name stored in the model.
func (p *Predictor) ObjectiveName() string { return p.objName }

// Objective returns the output transform selected by the objective name.
func (p *Predictor) Objective() objective.Kind { return p.obj }

// BoosterName returns "gbtree", "dart" or "gblinear".
func (p *Predictor) BoosterName() string { return p.boosterName }

// Booster returns the decoded booster.
func (p *Predictor) Booster() gbm.Booster { return p.booster }

// OutputWidth returns the length of Predict results for the given margin flag.
func (p *Predictor) OutputWidth(outputMargin bool) int {
	if !outputMargin && p.obj == objective.ArgMax {
		return 1
	}
	return p.booster.NumOutputGroup()
}

// PredictRaw returns booster scores plus base score, one per group.
func (p *Predictor) PredictRaw(feat fvec.FVec, ntreeLimit int) ([]float64, error) {
	preds, err := p.booster.Predict(feat, ntreeLimit)
	if err != nil {
		return nil, err
	}
	base := float64(p.param.BaseScore)
	for i := range preds {
		preds[i] += base
	}
	return preds, nil
}

// Predict scores feat. With outputMargin false the objective transform is
// applied; ntreeLimit 0 uses every tree.
func (p *Predictor) Predict(feat fvec.FVec, outputMargin bool, ntreeLimit int) ([]float64, error) {
	preds, err := p.PredictRaw(feat, ntreeLimit)
	if err != nil {
		return nil, err
	}
	if outputMargin {
		return preds, nil
	}
	return p.obj.Vector(preds), nil
}

// PredictSingle scores a single-output model. Multi-output models and
// multiclass objectives with outputMargin false return a StructuralError.
func (p *Predictor) PredictSingle(feat fvec.FVec, outputMargin bool, ntreeLimit int) (float64, error) {
	pred, err := p.booster.PredictSingle(feat, ntreeLimit)
	if err != nil {
		return 0, err
	}
	pred += float64(p.param.BaseScore)
	if outputMargin {
		return pred, nil
	}
	return p.obj.Scalar(pred)
}

// PredictLeaf returns the leaf index reached in each of the first ntreeLimit
// trees. Linear models return a StructuralError.
func (p *Predictor) PredictLeaf(feat fvec.FVec, ntreeLimit int) ([]int, error) {
	return p.booster.PredictLeaf(feat, ntreeLimit)
}
