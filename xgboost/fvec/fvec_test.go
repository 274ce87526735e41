package fvec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDense(t *testing.T) {
	d := NewDense([]float32{0.5, 0, float32(math.NaN()), -2})

	tests := []struct {
		index int
		want  float32
		ok    bool
	}{
		{0, 0.5, true},
		{1, 0, true},
		{2, 0, false},
		{3, -2, true},
		{4, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		v, ok := d.ValueAt(tt.index)
		assert.Equal(t, tt.ok, ok, "index %d", tt.index)
		assert.Equal(t, tt.want, v, "index %d", tt.index)
	}
	assert.Equal(t, 4, d.Len())
	assert.False(t, d.ZeroAsMissing())
}

func TestDenseZeroAsMissing(t *testing.T) {
	d := NewDense([]float32{0, 1}, WithZeroAsMissing(true))

	_, ok := d.ValueAt(0)
	assert.False(t, ok)
	v, ok := d.ValueAt(1)
	assert.True(t, ok)
	assert.Equal(t, float32(1), v)
	assert.True(t, d.ZeroAsMissing())
}

func TestFromFloat64s(t *testing.T) {
	d := FromFloat64s([]float64{0.1, 3})
	v, ok := d.ValueAt(0)
	assert.True(t, ok)
	assert.Equal(t, float32(0.1), v)
}

func TestFromMatRow(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, math.NaN(), 0,
	})
	d := FromMatRow(m, 1, WithZeroAsMissing(true))

	v, ok := d.ValueAt(0)
	assert.True(t, ok)
	assert.Equal(t, float32(4), v)
	_, ok = d.ValueAt(1)
	assert.False(t, ok)
	_, ok = d.ValueAt(2)
	assert.False(t, ok)
}

func TestSparse(t *testing.T) {
	s := SparseFromFloat64(map[int]float64{0: 0.2, 5: 0})

	v, ok := s.ValueAt(0)
	assert.True(t, ok)
	assert.Equal(t, float32(0.2), v)

	v, ok = s.ValueAt(5)
	assert.True(t, ok)
	assert.Equal(t, float32(0), v)

	_, ok = s.ValueAt(1)
	assert.False(t, ok)
}

var (
	_ FVec = (*Dense)(nil)
	_ FVec = Sparse(nil)
)
