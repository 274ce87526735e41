// Package fvec provides read-only feature vectors for tree traversal and
// linear scoring.
package fvec

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// FVec looks up feature values by index. The second result is false when the
// feature is missing.
type FVec interface {
	ValueAt(index int) (float32, bool)
}

// Dense is an FVec backed by a slice indexed by feature id. Indices past the
// end and NaN values are missing.
type Dense struct {
	values      []float32
	zeroMissing bool
}

// DenseOption configures a Dense vector.
type DenseOption func(*Dense)

// WithZeroAsMissing reports stored zeros as missing, for dense arrays that
// encode "unset" as 0.
func WithZeroAsMissing(enabled bool) DenseOption {
	return func(d *Dense) { d.zeroMissing = enabled }
}

// NewDense wraps values without copying.
func NewDense(values []float32, opts ...DenseOption) *Dense {
	d := &Dense{values: values}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromFloat64s converts values to float32, the precision trees compare in.
func FromFloat64s(values []float64, opts ...DenseOption) *Dense {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return NewDense(out, opts...)
}

// FromMatRow copies row i of m into a Dense vector.
func FromMatRow(m mat.Matrix, i int, opts ...DenseOption) *Dense {
	_, c := m.Dims()
	out := make([]float32, c)
	for j := 0; j < c; j++ {
		out[j] = float32(m.At(i, j))
	}
	return NewDense(out, opts...)
}

// Len returns the number of stored slots, missing or not.
func (d *Dense) Len() int { return len(d.values) }

// ZeroAsMissing reports whether stored zeros are treated as missing.
func (d *Dense) ZeroAsMissing() bool { return d.zeroMissing }

func (d *Dense) ValueAt(index int) (float32, bool) {
	if index < 0 || index >= len(d.values) {
		return 0, false
	}
	v := d.values[index]
	if math.IsNaN(float64(v)) {
		return 0, false
	}
	if d.zeroMissing && v == 0 {
		return 0, false
	}
	return v, true
}

// Sparse is an FVec backed by a map; absent keys are missing.
type Sparse map[int]float32

// SparseFromFloat64 converts a float64 map.
func SparseFromFloat64(m map[int]float64) Sparse {
	s := make(Sparse, len(m))
	for k, v := range m {
		s[k] = float32(v)
	}
	return s
}

func (s Sparse) ValueAt(index int) (float32, bool) {
	v, ok := s[index]
	return v, ok
}
