package gbm

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

type dumpFrame struct {
	node  int32
	depth int
}

// walk visits nodes depth-first, left child before right, and fails if a node
// is reached twice.
func (t *RegTree) walk(root int32, visit func(idx int32, depth int)) error {
	seen := make([]bool, len(t.nodes))
	stack := []dumpFrame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.node] {
			return errors.NewStructuralErrorf("walk tree", "node %d reached twice", f.node)
		}
		seen[f.node] = true
		visit(f.node, f.depth)

		n := &t.nodes[f.node]
		if !n.IsLeaf() {
			stack = append(stack, dumpFrame{n.Right, f.depth + 1}, dumpFrame{n.Left, f.depth + 1})
		}
	}
	return nil
}

// Dump renders the tree in XGBoost's text dump format. withStats appends gain
// and cover taken from the node stats.
func (t *RegTree) Dump(withStats bool) (string, error) {
	var sb strings.Builder
	for root := int32(0); root < t.param.NumRoots; root++ {
		err := t.walk(root, func(idx int32, depth int) {
			n := &t.nodes[idx]
			s := &t.stats[idx]
			sb.WriteString(strings.Repeat("\t", depth))
			sb.WriteString(strconv.Itoa(int(idx)))
			if n.IsLeaf() {
				sb.WriteString(":leaf=")
				sb.WriteString(formatFloat(n.Value))
				if withStats {
					sb.WriteString(",cover=")
					sb.WriteString(formatFloat(s.SumHess))
				}
				sb.WriteByte('\n')
				return
			}
			sb.WriteString(":[f")
			sb.WriteString(strconv.FormatUint(uint64(n.SplitIndex), 10))
			sb.WriteByte('<')
			sb.WriteString(formatFloat(n.Value))
			sb.WriteString("] yes=")
			sb.WriteString(strconv.Itoa(int(n.Left)))
			sb.WriteString(",no=")
			sb.WriteString(strconv.Itoa(int(n.Right)))
			sb.WriteString(",missing=")
			sb.WriteString(strconv.Itoa(int(n.DefaultChild())))
			if withStats {
				sb.WriteString(",gain=")
				sb.WriteString(formatFloat(s.LossChg))
				sb.WriteString(",cover=")
				sb.WriteString(formatFloat(s.SumHess))
			}
			sb.WriteByte('\n')
		})
		if err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Dump renders every tree, one string per tree in file order.
func (e *TreeEnsemble) Dump(withStats bool) ([]string, error) {
	out := make([]string, len(e.trees))
	for i, t := range e.trees {
		s, err := t.Dump(withStats)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		out[i] = s
	}
	return out, nil
}

// Dump renders the biases and then the weights, one line per value with
// groups varying fastest.
func (l *Linear) Dump() string {
	var sb strings.Builder
	groups := int(l.param.NumOutputGroup)
	sb.WriteString("bias:\n")
	for g := 0; g < groups; g++ {
		sb.WriteString(formatFloat(l.Bias(g)))
		sb.WriteByte('\n')
	}
	sb.WriteString("weight:\n")
	for f := 0; f < int(l.param.NumFeature); f++ {
		for g := 0; g < groups; g++ {
			sb.WriteString(formatFloat(l.Weight(f, g)))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// DumpBooster dumps either booster kind as a list of text blocks.
func DumpBooster(b Booster, withStats bool) ([]string, error) {
	switch v := b.(type) {
	case *TreeEnsemble:
		return v.Dump(withStats)
	case *Linear:
		return []string{v.Dump()}, nil
	default:
		return nil, errors.NewUnsupportedBoosterError(b.Name())
	}
}
