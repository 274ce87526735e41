package gbm

import (
	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/modelreader"
)

const gbtreeParamReserved = 31

// TreeModelParam is the parameter block of a tree ensemble.
type TreeModelParam struct {
	NumTrees       int32
	NumRoots       int32
	NumFeature     int32
	NumPBuffer     int64
	NumOutputGroup int32
	SizeLeafVector int32
}

// PredBufferSize is the number of 8-byte prediction buffer entries that
// follow the tree group ids when a model was saved with its buffer.
func (p TreeModelParam) PredBufferSize() int64 {
	return p.NumPBuffer * int64(p.NumOutputGroup) * int64(p.SizeLeafVector+1)
}

// TreeEnsemble is an additive ensemble of regression trees. A non-nil
// weightDrop makes it the DART variant: the j-th tree of a group is scaled
// by weightDrop[j], its position within that group.
type TreeEnsemble struct {
	param      TreeModelParam
	trees      []*RegTree
	treeInfo   []int32
	groupTrees [][]int
	weightDrop []float32
}

// NewTreeEnsemble assembles an ensemble from decoded parts. treeInfo[i] is the
// output group owning trees[i]. Pass a nil weightDrop for plain gbtree.
func NewTreeEnsemble(param TreeModelParam, trees []*RegTree, treeInfo []int32, weightDrop []float32) (*TreeEnsemble, error) {
	const op = "gbtree"
	if param.NumTrees < 0 {
		return nil, errors.NewStructuralErrorf(op, "negative num_trees %d", param.NumTrees)
	}
	if param.NumOutputGroup < 1 {
		return nil, errors.NewStructuralErrorf(op, "num_output_group %d must be positive", param.NumOutputGroup)
	}
	if len(trees) != int(param.NumTrees) || len(treeInfo) != len(trees) {
		return nil, errors.NewStructuralErrorf(op, "got %d trees and %d group ids, param says %d", len(trees), len(treeInfo), param.NumTrees)
	}
	if weightDrop != nil && len(weightDrop) != len(trees) {
		return nil, errors.NewStructuralErrorf(op, "dart has %d drop weights for %d trees", len(weightDrop), len(trees))
	}

	groupTrees := make([][]int, param.NumOutputGroup)
	for i, g := range treeInfo {
		if g < 0 || g >= param.NumOutputGroup {
			return nil, errors.NewStructuralErrorf(op, "tree %d belongs to group %d outside [0, %d)", i, g, param.NumOutputGroup)
		}
		groupTrees[g] = append(groupTrees[g], i)
	}
	return &TreeEnsemble{
		param:      param,
		trees:      trees,
		treeInfo:   treeInfo,
		groupTrees: groupTrees,
		weightDrop: weightDrop,
	}, nil
}

// DecodeTreeEnsemble reads a gbtree or dart payload. withPBuffer says whether
// the model header declared a saved prediction buffer.
func DecodeTreeEnsemble(r *modelreader.Reader, withPBuffer, isDart bool) (*TreeEnsemble, error) {
	param, err := decodeTreeModelParam(r)
	if err != nil {
		return nil, err
	}
	if param.NumTrees < 0 {
		return nil, errors.NewStructuralErrorf("gbtree param", "negative num_trees %d", param.NumTrees)
	}

	trees := make([]*RegTree, 0, capHint(int(param.NumTrees)))
	for i := int32(0); i < param.NumTrees; i++ {
		t, err := DecodeRegTree(r)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		trees = append(trees, t)
	}

	treeInfo, err := r.ReadInt32s("gbtree tree_info", int(param.NumTrees))
	if err != nil {
		return nil, err
	}

	if param.NumPBuffer != 0 && withPBuffer {
		size := param.PredBufferSize()
		if size < 0 {
			return nil, errors.NewStructuralErrorf("gbtree pbuffer", "negative prediction buffer size %d", size)
		}
		if err := r.Skip("gbtree pbuffer", 8*size); err != nil {
			return nil, err
		}
	}

	var weightDrop []float32
	if isDart {
		weightDrop = []float32{}
		// Writers only emit drop weights for non-empty ensembles.
		if param.NumTrees != 0 {
			n, err := r.ReadInt64("dart weight_drop")
			if err != nil {
				return nil, err
			}
			if n != int64(param.NumTrees) {
				return nil, errors.NewStructuralErrorf("dart weight_drop", "got %d drop weights for %d trees", n, param.NumTrees)
			}
			if weightDrop, err = r.ReadFloat32s("dart weight_drop", int(n)); err != nil {
				return nil, err
			}
		}
	}
	return NewTreeEnsemble(param, trees, treeInfo, weightDrop)
}

func decodeTreeModelParam(r *modelreader.Reader) (TreeModelParam, error) {
	const op = "gbtree param"
	var p TreeModelParam
	var err error
	if p.NumTrees, err = r.ReadInt32(op); err != nil {
		return p, err
	}
	if p.NumRoots, err = r.ReadInt32(op); err != nil {
		return p, err
	}
	if p.NumFeature, err = r.ReadInt32(op); err != nil {
		return p, err
	}
	if err = r.Skip(op, 4); err != nil { // pad
		return p, err
	}
	if p.NumPBuffer, err = r.ReadInt64(op); err != nil {
		return p, err
	}
	if p.NumOutputGroup, err = r.ReadInt32(op); err != nil {
		return p, err
	}
	if p.SizeLeafVector, err = r.ReadInt32(op); err != nil {
		return p, err
	}
	// reserved block plus trailing pad
	err = r.Skip(op, (gbtreeParamReserved+1)*4)
	return p, err
}

func (e *TreeEnsemble) isBooster() {}

// Name returns "dart" or "gbtree".
func (e *TreeEnsemble) Name() string {
	if e.IsDart() {
		return NameDart
	}
	return NameGBTree
}

// Param returns the ensemble parameter block.
func (e *TreeEnsemble) Param() TreeModelParam { return e.param }

// NumOutputGroup returns the number of per-row outputs.
func (e *TreeEnsemble) NumOutputGroup() int { return int(e.param.NumOutputGroup) }

// NumTrees returns the total number of trees across groups.
func (e *TreeEnsemble) NumTrees() int { return len(e.trees) }

// NumTreesInGroup returns how many trees belong to group g.
func (e *TreeEnsemble) NumTreesInGroup(g int) int { return len(e.groupTrees[g]) }

// Tree returns tree i in file order.
func (e *TreeEnsemble) Tree(i int) *RegTree { return e.trees[i] }

// TreeGroup returns the output group owning tree i.
func (e *TreeEnsemble) TreeGroup(i int) int { return int(e.treeInfo[i]) }

// IsDart reports whether trees carry drop weights.
func (e *TreeEnsemble) IsDart() bool { return e.weightDrop != nil }

// WeightDrop returns the drop weight applied to the j-th tree of every
// output group, 1 for plain gbtree.
func (e *TreeEnsemble) WeightDrop(j int) float32 {
	if e.weightDrop == nil {
		return 1
	}
	return e.weightDrop[j]
}

// limit resolves ntreeLimit against n available trees. 0 or anything above n
// means all of them.
func limit(ntreeLimit, n int) int {
	if ntreeLimit <= 0 || ntreeLimit > n {
		return n
	}
	return ntreeLimit
}

func (e *TreeEnsemble) predGroup(feat fvec.FVec, g, ntreeLimit int) (float64, error) {
	ids := e.groupTrees[g]
	k := limit(ntreeLimit, len(ids))
	var sum float64
	for j, i := range ids[:k] {
		v, err := e.trees[i].LeafValue(feat, 0)
		if err != nil {
			return 0, errors.Wrapf(err, "tree %d", i)
		}
		if e.weightDrop != nil {
			v *= float64(e.weightDrop[j])
		}
		sum += v
	}
	return sum, nil
}

// Predict returns one raw score per output group, summing the first
// ntreeLimit trees of each group.
func (e *TreeEnsemble) Predict(feat fvec.FVec, ntreeLimit int) ([]float64, error) {
	out := make([]float64, len(e.groupTrees))
	for g := range e.groupTrees {
		v, err := e.predGroup(feat, g, ntreeLimit)
		if err != nil {
			return nil, err
		}
		out[g] = v
	}
	return out, nil
}

// PredictSingle returns the raw score of a single-group ensemble.
func (e *TreeEnsemble) PredictSingle(feat fvec.FVec, ntreeLimit int) (float64, error) {
	if len(e.groupTrees) != 1 {
		return 0, errMultiGroup(len(e.groupTrees))
	}
	return e.predGroup(feat, 0, ntreeLimit)
}

// PredictLeaf returns the leaf reached in each of the first ntreeLimit trees
// of the whole ensemble, in file order.
func (e *TreeEnsemble) PredictLeaf(feat fvec.FVec, ntreeLimit int) ([]int, error) {
	k := limit(ntreeLimit, len(e.trees))
	out := make([]int, k)
	for i := 0; i < k; i++ {
		idx, err := e.trees[i].LeafIndex(feat, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		out[i] = idx
	}
	return out, nil
}
