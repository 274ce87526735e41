// Package objective maps an objective name stored in a model to the transform
// that turns margins into user-facing predictions.
package objective

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// Kind is the output transform selected by an objective name.
type Kind int

const (
	// Identity passes margins through (regression, ranking, logitraw).
	Identity Kind = iota
	// Sigmoid maps a margin to a probability in (0, 1).
	Sigmoid
	// ArgMax returns the index of the largest group score.
	ArgMax
	// Softmax returns a probability per group.
	Softmax
)

var kinds = map[string]Kind{
	"rank:pairwise":    Identity,
	"rank:ndcg":        Identity,
	"rank:map":         Identity,
	"reg:linear":       Identity,
	"reg:squarederror": Identity,
	"binary:logitraw":  Identity,
	"binary:logistic":  Sigmoid,
	"reg:logistic":     Sigmoid,
	"multi:softmax":    ArgMax,
	"multi:softprob":   Softmax,
}

// Lookup returns the Kind for an objective name.
func Lookup(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return 0, errors.NewUnsupportedObjectiveError(name)
	}
	return k, nil
}

// Names returns every supported objective name in sorted order.
func Names() []string {
	out := make([]string, 0, len(kinds))
	for name := range kinds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (k Kind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Sigmoid:
		return "sigmoid"
	case ArgMax:
		return "argmax"
	case Softmax:
		return "softmax"
	default:
		return "unknown"
	}
}

// Multiclass reports whether k only has a vector form.
func (k Kind) Multiclass() bool { return k == ArgMax || k == Softmax }

// Vector transforms a full per-group score vector. The input is not modified.
func (k Kind) Vector(preds []float64) []float64 {
	out := make([]float64, len(preds))
	switch k {
	case Sigmoid:
		for i, v := range preds {
			out[i] = sigmoid(v)
		}
	case ArgMax:
		if len(preds) == 0 {
			return out
		}
		// MaxIdx keeps the first index on ties.
		return []float64{float64(floats.MaxIdx(preds))}
	case Softmax:
		if len(preds) == 0 {
			return out
		}
		maxVal := floats.Max(preds)
		for i, v := range preds {
			out[i] = math.Exp(v - maxVal)
		}
		floats.Scale(1/floats.Sum(out), out)
	default:
		copy(out, preds)
	}
	return out
}

// Scalar transforms a single-group score. Multiclass kinds have no scalar
// form and return a StructuralError.
func (k Kind) Scalar(pred float64) (float64, error) {
	switch k {
	case Identity:
		return pred, nil
	case Sigmoid:
		return sigmoid(pred), nil
	default:
		return 0, errors.NewStructuralErrorf("objective scalar",
			"%s objective has no scalar form; use the vector form", k)
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
