package gbm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/modelreader"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/xgbtest"
)

func decodeBooster(t *testing.T, m xgbtest.Model, withPBuffer bool) Booster {
	t.Helper()
	r := modelreader.New(bytes.NewReader(m.BoosterBytes()))
	b, err := Decode(r, m.Booster, withPBuffer)
	require.NoError(t, err)
	_, err = r.ReadUint8("trailing")
	assert.True(t, errors.Is(err, errors.ErrTruncated), "payload must be consumed exactly")
	return b
}

func threeClassModel() xgbtest.Model {
	// Two boosting rounds; round two only moves class 1.
	return xgbtest.Model{
		Booster: NameGBTree,
		Trees: []xgbtest.Tree{
			xgbtest.Constant(2.0),
			xgbtest.Constant(1.0),
			xgbtest.Constant(0.1),
			xgbtest.Constant(0),
			xgbtest.Stump(0, 0.5, 0.5, -0.5, true),
			xgbtest.Constant(0),
		},
		TreeInfo:       []int32{0, 1, 2, 0, 1, 2},
		NumOutputGroup: 3,
	}
}

func TestTreeEnsembleGroups(t *testing.T) {
	b := decodeBooster(t, threeClassModel(), false)
	e, ok := b.(*TreeEnsemble)
	require.True(t, ok)

	assert.Equal(t, NameGBTree, e.Name())
	assert.False(t, e.IsDart())
	assert.Equal(t, 3, e.NumOutputGroup())
	assert.Equal(t, 6, e.NumTrees())
	for g := 0; g < 3; g++ {
		assert.Equal(t, 2, e.NumTreesInGroup(g))
	}
	assert.Equal(t, 1, e.TreeGroup(4))
	assert.Equal(t, float32(1), e.WeightDrop(0))

	got, err := e.Predict(fvec.Sparse{0: 0.2}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 1.5, float64(float32(0.1))}, got)

	got, err = e.Predict(fvec.Sparse{0: 0.2}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 1.0, float64(float32(0.1))}, got)

	_, err = e.PredictSingle(fvec.Sparse{}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStructural))
}

func TestTreeEnsembleNTreeLimitClamp(t *testing.T) {
	b := decodeBooster(t, threeClassModel(), false)
	feat := fvec.Sparse{0: 0.9}

	all, err := b.Predict(feat, 0)
	require.NoError(t, err)
	for _, n := range []int{2, 3, 1000} {
		got, err := b.Predict(feat, n)
		require.NoError(t, err)
		assert.Equal(t, all, got, "ntree_limit %d", n)
	}
}

func TestTreeEnsemblePredictLeaf(t *testing.T) {
	b := decodeBooster(t, threeClassModel(), false)

	leaves, err := b.PredictLeaf(fvec.Sparse{0: 0.9}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 2, 0}, leaves)

	leaves, err = b.PredictLeaf(fvec.Sparse{}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 1}, leaves, "missing feature takes the default-left child")

	leaves, err = b.PredictLeaf(fvec.Sparse{}, 99)
	require.NoError(t, err)
	assert.Len(t, leaves, 6)
}

func TestSingleGroupPredict(t *testing.T) {
	m := xgbtest.Model{
		Booster: NameGBTree,
		Trees:   []xgbtest.Tree{xgbtest.Stump(0, 0.5, -1, 1, false), xgbtest.Constant(0.25)},
	}
	b := decodeBooster(t, m, false)

	v, err := b.PredictSingle(fvec.Sparse{0: 0.2}, 0)
	require.NoError(t, err)
	assert.Equal(t, -0.75, v)

	v, err = b.PredictSingle(fvec.Sparse{0: 0.7}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestDartWeights(t *testing.T) {
	m := xgbtest.Model{
		Booster:    NameDart,
		Trees:      []xgbtest.Tree{xgbtest.Constant(1), xgbtest.Constant(1)},
		WeightDrop: []float32{0.5, 0.25},
	}
	b := decodeBooster(t, m, false)
	e := b.(*TreeEnsemble)

	assert.Equal(t, NameDart, e.Name())
	assert.True(t, e.IsDart())
	assert.Equal(t, float32(0.25), e.WeightDrop(1))

	v, err := b.PredictSingle(fvec.Sparse{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.75, v)

	v, err = b.PredictSingle(fvec.Sparse{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
}

func TestDartEmptyEnsemble(t *testing.T) {
	b := decodeBooster(t, xgbtest.Model{Booster: NameDart}, false)
	v, err := b.PredictSingle(fvec.Sparse{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestDartWeightCountMismatch(t *testing.T) {
	m := xgbtest.Model{
		Booster:    NameDart,
		Trees:      []xgbtest.Tree{xgbtest.Constant(1), xgbtest.Constant(1)},
		WeightDrop: []float32{0.5},
	}
	_, err := Decode(modelreader.New(bytes.NewReader(m.BoosterBytes())), NameDart, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStructural))
}

func TestPredictionBufferSkip(t *testing.T) {
	m := xgbtest.Model{
		Booster:        NameGBTree,
		SavedWithPBuff: true,
		NumPBuffer:     3,
		SizeLeafVector: 1,
		Trees:          []xgbtest.Tree{xgbtest.Constant(1.5)},
	}
	b := decodeBooster(t, m, true)
	e := b.(*TreeEnsemble)
	assert.Equal(t, int64(3*1*2), e.Param().PredBufferSize())

	v, err := b.PredictSingle(fvec.Sparse{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	// Without the header flag the buffer bytes are left unread.
	r := modelreader.New(bytes.NewReader(m.BoosterBytes()))
	_, err = Decode(r, NameGBTree, false)
	require.NoError(t, err)
	_, err = r.ReadBytes("buffer", 8*6)
	assert.NoError(t, err)
}

func TestTreeInfoOutOfRange(t *testing.T) {
	m := xgbtest.Model{
		Booster:        NameGBTree,
		Trees:          []xgbtest.Tree{xgbtest.Constant(1)},
		TreeInfo:       []int32{2},
		NumOutputGroup: 2,
	}
	_, err := Decode(modelreader.New(bytes.NewReader(m.BoosterBytes())), NameGBTree, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStructural))
}

func TestDecodeUnknownBooster(t *testing.T) {
	_, err := Decode(modelreader.New(bytes.NewReader(nil)), "gbforest", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedBooster))

	var be *errors.UnsupportedBoosterError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "gbforest", be.Name)
}

func TestDecodeTreeEnsembleTruncated(t *testing.T) {
	data := threeClassModel().BoosterBytes()
	for _, cut := range []int{0, 100, 160, len(data) - 4, len(data) - 1} {
		_, err := Decode(modelreader.New(bytes.NewReader(data[:cut])), NameGBTree, false)
		require.Error(t, err, "cut at %d", cut)
		assert.True(t, errors.Is(err, errors.ErrTruncated), "cut at %d", cut)
	}
}

func TestDeterministicPredict(t *testing.T) {
	b := decodeBooster(t, threeClassModel(), false)
	feat := fvec.Sparse{0: 0.3}
	first, err := b.Predict(feat, 0)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := b.Predict(feat, 0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDartWeightsFollowGroupPosition(t *testing.T) {
	m := xgbtest.Model{
		Booster:        NameDart,
		Trees:          []xgbtest.Tree{xgbtest.Constant(1), xgbtest.Constant(1), xgbtest.Constant(1), xgbtest.Constant(1)},
		TreeInfo:       []int32{0, 1, 0, 1},
		NumOutputGroup: 2,
		WeightDrop:     []float32{0.5, 0.25, 0.125, 2},
	}
	e := decodeBooster(t, m, false).(*TreeEnsemble)

	assert.Equal(t, float32(0.25), e.WeightDrop(1))

	got, err := e.Predict(fvec.Sparse{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75, 0.75}, got)

	got, err = e.Predict(fvec.Sparse{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, got)
}
