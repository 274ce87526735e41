package gbm

import (
	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/modelreader"
)

const (
	defaultLeftBit = uint32(1) << 31
	splitIndexMask = defaultLeftBit - 1
	parentMask     = int32(^uint32(0) >> 1)

	treeParamReserved = 31
)

// TreeParam is the fixed parameter block at the head of every tree.
type TreeParam struct {
	NumRoots       int32
	NumNodes       int32
	NumDeleted     int32
	MaxDepth       int32
	NumFeature     int32
	SizeLeafVector int32
}

// Node is one entry of a tree's node array. Children are indices into the
// same array; Left == -1 marks a leaf.
type Node struct {
	Parent      int32
	Left        int32
	Right       int32
	SplitIndex  uint32
	DefaultLeft bool
	// Value holds the leaf value for leaves and the split condition otherwise.
	Value float32
}

// IsLeaf reports whether n is terminal.
func (n Node) IsLeaf() bool { return n.Left == -1 }

// DefaultChild is the child taken when the split feature is missing.
func (n Node) DefaultChild() int32 {
	if n.DefaultLeft {
		return n.Left
	}
	return n.Right
}

// next picks the child for feat. NaN counts as missing.
func (n Node) next(feat fvec.FVec) int32 {
	v, ok := feat.ValueAt(int(n.SplitIndex))
	if !ok || v != v {
		return n.DefaultChild()
	}
	if v < n.Value {
		return n.Left
	}
	return n.Right
}

// NodeStat is per-node training metadata. Inference ignores it; Dump prints it.
type NodeStat struct {
	LossChg      float32
	SumHess      float32
	BaseWeight   float32
	LeafChildCnt int32
}

// RegTree is a single regression tree with index-addressed nodes.
type RegTree struct {
	param    TreeParam
	nodes    []Node
	stats    []NodeStat
	maxSteps int
}

// NewRegTree builds a tree from decoded parts after validating child indices.
func NewRegTree(param TreeParam, nodes []Node, stats []NodeStat) (*RegTree, error) {
	const op = "regtree"
	if param.NumNodes < 1 {
		return nil, errors.NewStructuralErrorf(op, "tree has %d nodes", param.NumNodes)
	}
	if param.NumRoots < 1 || param.NumRoots > param.NumNodes {
		return nil, errors.NewStructuralErrorf(op, "num_roots %d out of range for %d nodes", param.NumRoots, param.NumNodes)
	}
	if len(nodes) != int(param.NumNodes) {
		return nil, errors.NewStructuralErrorf(op, "got %d nodes, param says %d", len(nodes), param.NumNodes)
	}
	if stats != nil && len(stats) != len(nodes) {
		return nil, errors.NewStructuralErrorf(op, "got %d stats for %d nodes", len(stats), len(nodes))
	}
	for i := range nodes {
		n := &nodes[i]
		if n.IsLeaf() {
			continue
		}
		if n.Left < 0 || n.Left >= param.NumNodes || n.Right < 0 || n.Right >= param.NumNodes {
			return nil, errors.NewStructuralErrorf(op, "node %d has children (%d, %d) outside [0, %d)", i, n.Left, n.Right, param.NumNodes)
		}
	}

	// A path in an acyclic tree visits each node at most once; max_depth is
	// often left at 0 by writers so it cannot bound traversal alone.
	maxSteps := int(param.MaxDepth) + 1
	if int(param.NumNodes) > maxSteps {
		maxSteps = int(param.NumNodes)
	}
	if stats == nil {
		stats = make([]NodeStat, len(nodes))
	}
	return &RegTree{param: param, nodes: nodes, stats: stats, maxSteps: maxSteps}, nil
}

// DecodeRegTree reads the parameter block, the node array and the stats array.
func DecodeRegTree(r *modelreader.Reader) (*RegTree, error) {
	const op = "regtree param"
	var p TreeParam
	for _, dst := range []*int32{&p.NumRoots, &p.NumNodes, &p.NumDeleted, &p.MaxDepth, &p.NumFeature, &p.SizeLeafVector} {
		v, err := r.ReadInt32(op)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	if err := r.Skip(op, treeParamReserved*4); err != nil {
		return nil, err
	}
	if p.NumNodes < 1 {
		return nil, errors.NewStructuralErrorf(op, "tree has %d nodes", p.NumNodes)
	}

	nodes := make([]Node, 0, capHint(int(p.NumNodes)))
	for i := int32(0); i < p.NumNodes; i++ {
		n, err := decodeNode(r)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		nodes = append(nodes, n)
	}

	stats := make([]NodeStat, 0, len(nodes))
	for i := int32(0); i < p.NumNodes; i++ {
		s, err := decodeStat(r)
		if err != nil {
			return nil, errors.Wrapf(err, "node stat %d", i)
		}
		stats = append(stats, s)
	}
	return NewRegTree(p, nodes, stats)
}

func decodeNode(r *modelreader.Reader) (Node, error) {
	const op = "regtree node"
	var n Node
	parent, err := r.ReadInt32(op)
	if err != nil {
		return n, err
	}
	if n.Left, err = r.ReadInt32(op); err != nil {
		return n, err
	}
	if n.Right, err = r.ReadInt32(op); err != nil {
		return n, err
	}
	sindex, err := r.ReadUint32(op)
	if err != nil {
		return n, err
	}
	if n.Value, err = r.ReadFloat32(op); err != nil {
		return n, err
	}

	// The top bit of parent flags a left child; the root stores -1.
	if parent == -1 {
		n.Parent = -1
	} else {
		n.Parent = parent & parentMask
	}
	n.SplitIndex = sindex & splitIndexMask
	n.DefaultLeft = sindex&defaultLeftBit != 0
	return n, nil
}

func decodeStat(r *modelreader.Reader) (NodeStat, error) {
	const op = "regtree stat"
	var s NodeStat
	var err error
	if s.LossChg, err = r.ReadFloat32(op); err != nil {
		return s, err
	}
	if s.SumHess, err = r.ReadFloat32(op); err != nil {
		return s, err
	}
	if s.BaseWeight, err = r.ReadFloat32(op); err != nil {
		return s, err
	}
	s.LeafChildCnt, err = r.ReadInt32(op)
	return s, err
}

// Param returns the tree's parameter block.
func (t *RegTree) Param() TreeParam { return t.param }

// NumNodes returns the length of the node array.
func (t *RegTree) NumNodes() int { return len(t.nodes) }

// Node returns a copy of node i.
func (t *RegTree) Node(i int) Node { return t.nodes[i] }

// Stat returns the stats of node i.
func (t *RegTree) Stat(i int) NodeStat { return t.stats[i] }

// LeafIndex walks from root to a leaf and returns the leaf's node index.
func (t *RegTree) LeafIndex(feat fvec.FVec, root int) (int, error) {
	if root < 0 || root >= int(t.param.NumRoots) {
		return 0, errors.NewStructuralErrorf("leaf index", "root %d out of range [0, %d)", root, t.param.NumRoots)
	}
	idx := int32(root)
	for step := 0; step < t.maxSteps; step++ {
		n := &t.nodes[idx]
		if n.IsLeaf() {
			return int(idx), nil
		}
		idx = n.next(feat)
	}
	return 0, errors.NewStructuralErrorf("leaf index", "no leaf reached from root %d within %d steps", root, t.maxSteps)
}

// LeafValue returns the value of the leaf reached from root.
func (t *RegTree) LeafValue(feat fvec.FVec, root int) (float64, error) {
	idx, err := t.LeafIndex(feat, root)
	if err != nil {
		return 0, err
	}
	return float64(t.nodes[idx].Value), nil
}

func capHint(n int) int {
	const limit = 1 << 16
	if n > limit {
		return limit
	}
	return n
}
