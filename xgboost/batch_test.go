package xgboost

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/xgbtest"
)

func randomMatrix(rows, cols int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		if rng.Intn(10) == 0 {
			data[i] = math.NaN()
			continue
		}
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

func TestPredictBatchMatchesRowByRow(t *testing.T) {
	m := softprobModel()
	m.Trees = append(m.Trees,
		xgbtest.Stump(0, 0.3, 1, -1, true),
		xgbtest.Stump(0, 0.6, -1, 1, false),
		xgbtest.Stump(0, 0.9, 0.5, 0, true),
	)
	m.TreeInfo = append(m.TreeInfo, 0, 1, 2)

	X := randomMatrix(500, 1, 7)
	for _, workers := range []int{1, 3, 0} {
		p := load(t, m, WithWorkers(workers), WithParallelThreshold(10))

		got, err := p.PredictBatch(X, false, 0)
		require.NoError(t, err)
		r, c := got.Dims()
		assert.Equal(t, 500, r)
		assert.Equal(t, 3, c)

		for i := 0; i < r; i++ {
			want, err := p.Predict(fvec.FromMatRow(X, i), false, 0)
			require.NoError(t, err)
			assert.Equal(t, want, mat.Row(nil, i, got), "row %d workers %d", i, workers)
		}
	}
}

func TestPredictBatchZeroAsMissing(t *testing.T) {
	p := load(t, binaryStump())
	X := mat.NewDense(2, 1, []float64{0, 0.7})

	plain, err := p.PredictBatch(X, true, 0)
	require.NoError(t, err)
	assert.Equal(t, -0.5, plain.At(0, 0))

	zeroMissing, err := p.PredictBatch(X, true, 0, fvec.WithZeroAsMissing(true))
	require.NoError(t, err)
	assert.Equal(t, 1.5, zeroMissing.At(0, 0), "missing takes the default right child")
	assert.Equal(t, 1.5, zeroMissing.At(1, 0))
}

func TestPredictBatchArgMaxWidth(t *testing.T) {
	m := softprobModel()
	m.Objective = "multi:softmax"
	p := load(t, m)

	got, err := p.PredictBatch(mat.NewDense(4, 1, nil), false, 0)
	require.NoError(t, err)
	_, c := got.Dims()
	assert.Equal(t, 1, c)
}

func TestPredictBatchEmptyMatrix(t *testing.T) {
	p := load(t, binaryStump())
	_, err := p.PredictBatch(&mat.Dense{}, false, 0)
	assert.Error(t, err)
}

func TestPredictLeafBatch(t *testing.T) {
	m := binaryStump()
	m.Trees = append(m.Trees, xgbtest.Stump(0, 0.1, 0, 0, true))
	p := load(t, m, WithParallelThreshold(0), WithWorkers(2))

	X := mat.NewDense(3, 1, []float64{0.05, 0.2, math.NaN()})
	got, err := p.PredictLeafBatch(X, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, mat.Row(nil, 0, got))
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 1, got))
	assert.Equal(t, []float64{2, 1}, mat.Row(nil, 2, got))

	got, err = p.PredictLeafBatch(X, 1)
	require.NoError(t, err)
	_, c := got.Dims()
	assert.Equal(t, 1, c)
}

func TestPredictLeafBatchLinear(t *testing.T) {
	p := load(t, linearModel())
	_, err := p.PredictLeafBatch(mat.NewDense(1, 2, nil), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStructural))
}

func TestPredictVectors(t *testing.T) {
	p := load(t, linearModel(), WithParallelThreshold(1))
	feats := []fvec.FVec{
		fvec.Sparse{0: 3, 1: 1},
		fvec.Sparse{},
		fvec.NewDense([]float32{1, 1}),
	}
	got, err := p.PredictVectors(feats, false, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2.5}, {0.5}, {0.5}}, got)

	_, err = p.PredictLeafVectors(feats, 0)
	assert.True(t, errors.Is(err, errors.ErrStructural))
}

func TestPredictLeafVectors(t *testing.T) {
	p := load(t, binaryStump(), WithWorkers(4), WithParallelThreshold(0))
	got, err := p.PredictLeafVectors([]fvec.FVec{fvec.Sparse{0: 0.1}, fvec.Sparse{0: 0.9}, fvec.Sparse{}}, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1}, {2}, {2}}, got)
}

func TestPredictLeafWithoutTrees(t *testing.T) {
	p := load(t, xgbtest.Model{NumFeature: 1, Objective: "reg:linear", Booster: "gbtree"})

	leaves, err := p.PredictLeaf(fvec.Sparse{}, 0)
	require.NoError(t, err)
	assert.Empty(t, leaves)

	rows, err := p.PredictLeafVectors([]fvec.FVec{fvec.Sparse{}}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0])

	_, err = p.PredictLeafBatch(mat.NewDense(1, 1, nil), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStructural))
}
