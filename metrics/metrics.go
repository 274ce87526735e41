// Package metrics computes the evaluation metrics XGBoost reports for its
// objectives, from labels and predictions held in gonum vectors and matrices.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// Metric names accepted by Evaluate.
const (
	RMSE         = "rmse"
	MAE          = "mae"
	LogLoss      = "logloss"
	Error        = "error"
	MultiError   = "merror"
	MultiLogLoss = "mlogloss"
)

// eps clips probabilities away from 0 and 1 in the log-loss metrics.
const eps = 1e-16

type metricFunc func(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error)

var metricFuncs = map[string]metricFunc{
	RMSE:         rmse,
	MAE:          mae,
	LogLoss:      logLoss,
	Error:        errorRate,
	MultiError:   multiError,
	MultiLogLoss: multiLogLoss,
}

var defaultMetrics = map[string]string{
	"reg:linear":       RMSE,
	"reg:squarederror": RMSE,
	"reg:logistic":     RMSE,
	"binary:logistic":  LogLoss,
	"multi:softmax":    MultiError,
	"multi:softprob":   MultiLogLoss,
}

// Names lists the supported metrics in sorted order.
func Names() []string {
	names := make([]string, 0, len(metricFuncs))
	for n := range metricFuncs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default returns the metric XGBoost evaluates for objective, or "" when
// there is none here.
func Default(objective string) string {
	return defaultMetrics[objective]
}

// Evaluate computes metric name over yTrue and the transformed predictions
// yPred, which has one row per label.
func Evaluate(name string, yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	fn, ok := metricFuncs[name]
	if !ok {
		return 0, errors.NewValidationError("metric", "unknown metric", name)
	}
	if err := checkShape(name, yTrue, yPred); err != nil {
		return 0, err
	}
	return fn(yTrue, yPred)
}

func checkShape(name string, yTrue *mat.VecDense, yPred mat.Matrix) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValidationError(name, "empty labels", 0)
	}
	r, c := yPred.Dims()
	if r != n {
		return errors.NewValidationError(name, "prediction rows differ from labels", r)
	}
	if c == 0 {
		return errors.NewValidationError(name, "predictions have no columns", c)
	}
	return nil
}

func rmse(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.At(i, 0)
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n)), nil
}

func mae(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.At(i, 0))
	}
	return sum / float64(n), nil
}

func clip(p float64) float64 {
	return math.Min(math.Max(p, eps), 1-eps)
}

func logLoss(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		y, p := yTrue.AtVec(i), clip(yPred.At(i, 0))
		sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return sum / float64(n), nil
}

// errorRate counts probabilities above 0.5 against labels that are not 1.
func errorRate(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	n := yTrue.Len()
	wrong := 0
	for i := 0; i < n; i++ {
		positive := yPred.At(i, 0) > 0.5
		if positive != (yTrue.AtVec(i) > 0.5) {
			wrong++
		}
	}
	return float64(wrong) / float64(n), nil
}

func classLabel(y float64, numClass int) (int, error) {
	k := int(y)
	if float64(k) != y || k < 0 || (numClass > 1 && k >= numClass) {
		return 0, errors.NewValidationError("label", "not a class index", y)
	}
	return k, nil
}

// multiError takes either a single column of predicted classes or one
// column of probabilities per class.
func multiError(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	n := yTrue.Len()
	_, c := yPred.Dims()
	row := make([]float64, c)
	wrong := 0
	for i := 0; i < n; i++ {
		k, err := classLabel(yTrue.AtVec(i), c)
		if err != nil {
			return 0, err
		}
		var pred int
		if c == 1 {
			pred = int(yPred.At(i, 0))
		} else {
			mat.Row(row, i, yPred)
			pred = floats.MaxIdx(row)
		}
		if pred != k {
			wrong++
		}
	}
	return float64(wrong) / float64(n), nil
}

func multiLogLoss(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	n := yTrue.Len()
	_, c := yPred.Dims()
	if c < 2 {
		return 0, errors.NewValidationError(MultiLogLoss, "needs one probability column per class", c)
	}
	var sum float64
	for i := 0; i < n; i++ {
		k, err := classLabel(yTrue.AtVec(i), c)
		if err != nil {
			return 0, err
		}
		sum -= math.Log(clip(yPred.At(i, k)))
	}
	return sum / float64(n), nil
}
