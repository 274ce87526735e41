// Package xgbtest writes legacy XGBoost binary models from Go values so tests
// and examples can build fixtures in memory.
package xgbtest

import (
	"bytes"
	"encoding/binary"
)

// Node is a tree node to be written. Parent links are derived from children.
type Node struct {
	Left        int32
	Right       int32
	Feature     uint32
	DefaultLeft bool
	// Value is the leaf value of a leaf or the split condition of a split.
	Value float32
	Gain  float32
	Cover float32
}

// Leaf returns a terminal node.
func Leaf(v float32) Node {
	return Node{Left: -1, Right: -1, Value: v}
}

// Split returns an internal node sending value < cond to left.
func Split(feature uint32, cond float32, left, right int32, defaultLeft bool) Node {
	return Node{Left: left, Right: right, Feature: feature, Value: cond, DefaultLeft: defaultLeft}
}

// Tree is a regression tree to be written.
type Tree struct {
	Nodes      []Node
	NumRoots   int32 // written as 1 when zero
	MaxDepth   int32
	NumFeature int32
}

// Stump is a single split on feature f: value < cond scores left, otherwise right.
func Stump(f uint32, cond, left, right float32, defaultLeft bool) Tree {
	return Tree{
		Nodes:    []Node{Split(f, cond, 1, 2, defaultLeft), Leaf(left), Leaf(right)},
		MaxDepth: 1,
	}
}

// Constant is a tree made of a single leaf.
func Constant(v float32) Tree {
	return Tree{Nodes: []Node{Leaf(v)}}
}

// Model describes a complete binary model.
type Model struct {
	// Binf writes the "binf" magic header dialect instead of the legacy one.
	Binf           bool
	BaseScore      float32
	NumFeature     int32
	NumClass       int32
	SavedWithPBuff bool
	Objective      string
	Booster        string

	// Tree ensemble payload (gbtree and dart).
	Trees          []Tree
	TreeInfo       []int32 // all zero when nil
	NumOutputGroup int32   // 1 when zero
	NumPBuffer     int64
	SizeLeafVector int32
	WeightDrop     []float32 // dart only

	// Linear payload (gblinear). Weights is row-major by feature then group
	// with the bias row last.
	LinearNumFeature int32
	LinearWeights    []float32
	// LinearLengthPrefix overrides the weight vector length prefix when set.
	LinearLengthPrefix *int64
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) put(values ...interface{}) {
	for _, v := range values {
		if err := binary.Write(&w.buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
}

func (w *writer) zeros(n int) {
	w.buf.Write(make([]byte, n))
}

func (w *writer) str(s string) {
	w.put(int64(len(s)))
	w.buf.WriteString(s)
}

// Bytes serializes the whole model.
func (m Model) Bytes() []byte {
	w := &writer{}
	if m.Binf {
		w.buf.WriteString("binf")
	}
	w.put(m.BaseScore, m.NumFeature, m.NumClass)
	if m.SavedWithPBuff {
		w.put(int32(1))
	} else {
		w.put(int32(0))
	}
	w.zeros(30 * 4)
	w.str(m.Objective)
	w.str(m.Booster)
	w.buf.Write(m.BoosterBytes())
	return w.buf.Bytes()
}

// BoosterBytes serializes only the booster payload selected by m.Booster.
func (m Model) BoosterBytes() []byte {
	if m.Booster == "gblinear" {
		return m.linearBytes()
	}
	return m.ensembleBytes()
}

func (m Model) groups() int32 {
	if m.NumOutputGroup == 0 {
		return 1
	}
	return m.NumOutputGroup
}

func (m Model) ensembleBytes() []byte {
	w := &writer{}
	groups := m.groups()
	w.put(int32(len(m.Trees)), int32(1), m.NumFeature, int32(0))
	w.put(m.NumPBuffer, groups, m.SizeLeafVector)
	w.zeros(32 * 4)
	for _, t := range m.Trees {
		w.buf.Write(t.Bytes())
	}
	for i := range m.Trees {
		if m.TreeInfo != nil {
			w.put(m.TreeInfo[i])
		} else {
			w.put(int32(0))
		}
	}
	if m.NumPBuffer != 0 && m.SavedWithPBuff {
		w.zeros(int(8 * m.NumPBuffer * int64(groups) * int64(m.SizeLeafVector+1)))
	}
	if m.Booster == "dart" && len(m.Trees) != 0 {
		w.put(int64(len(m.WeightDrop)), m.WeightDrop)
	}
	return w.buf.Bytes()
}

func (m Model) linearBytes() []byte {
	w := &writer{}
	w.put(m.LinearNumFeature, m.groups())
	w.zeros(32 * 4)
	n := int64(len(m.LinearWeights))
	if m.LinearLengthPrefix != nil {
		n = *m.LinearLengthPrefix
	}
	w.put(n, m.LinearWeights)
	return w.buf.Bytes()
}

// Bytes serializes a single tree.
func (t Tree) Bytes() []byte {
	w := &writer{}
	roots := t.NumRoots
	if roots == 0 {
		roots = 1
	}
	w.put(roots, int32(len(t.Nodes)), int32(0), t.MaxDepth, t.NumFeature, int32(0))
	w.zeros(31 * 4)

	parents := make([]int32, len(t.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range t.Nodes {
		if n.Left == -1 {
			continue
		}
		if n.Left >= 0 && int(n.Left) < len(parents) {
			parents[n.Left] = int32(uint32(i) | 1<<31)
		}
		if n.Right >= 0 && int(n.Right) < len(parents) {
			parents[n.Right] = int32(i)
		}
	}

	for i, n := range t.Nodes {
		sindex := n.Feature
		if n.DefaultLeft {
			sindex |= 1 << 31
		}
		w.put(parents[i], n.Left, n.Right, sindex, n.Value)
	}
	for _, n := range t.Nodes {
		w.put(n.Gain, n.Cover, float32(0), int32(0))
	}
	return w.buf.Bytes()
}

// SparkHeader returns the leading bytes of an xgboost4j-spark model file.
func SparkHeader() []byte {
	return []byte{0x00, 0x05, 0x5f, 0x73, 0x00, 0x00, 0x00, 0x00}
}
