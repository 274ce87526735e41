package gbm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// RenderFormats maps file extensions to graphviz output formats.
var RenderFormats = map[string]graphviz.Format{
	"dot": graphviz.XDOT,
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
	"jpg": graphviz.JPG,
}

// ParseRenderFormat resolves an extension such as "svg" to a graphviz format.
func ParseRenderFormat(ext string) (graphviz.Format, error) {
	f, ok := RenderFormats[ext]
	if !ok {
		return "", errors.NewValidationError("format", "must be one of dot, svg, png, jpg", ext)
	}
	return f, nil
}

func nodeLabel(n *Node) string {
	if n.IsLeaf() {
		return "leaf=" + formatFloat(n.Value)
	}
	return fmt.Sprintf("f%d<%s", n.SplitIndex, formatFloat(n.Value))
}

// Graph builds a graphviz graph of tree t. The caller must close both the
// returned Graphviz and Graph.
func (t *RegTree) Graph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	g := graphviz.New()
	graph, err := g.Graph()
	if err != nil {
		g.Close()
		return nil, nil, errors.Wrap(err, "create graph")
	}

	gnodes := make([]*cgraph.Node, len(t.nodes))
	var buildErr error
	err = t.walk(0, func(idx int32, _ int) {
		if buildErr != nil {
			return
		}
		n := &t.nodes[idx]
		gn, err := graph.CreateNode(strconv.Itoa(int(idx)))
		if err != nil {
			buildErr = err
			return
		}
		gn.Set("label", nodeLabel(n))
		if n.IsLeaf() {
			gn.Set("shape", "box")
		}
		gnodes[idx] = gn
	})
	if err == nil {
		err = buildErr
	}
	if err == nil {
		err = t.addEdges(graph, gnodes)
	}
	if err != nil {
		graph.Close()
		g.Close()
		return nil, nil, errors.Wrap(err, "build graph")
	}
	return g, graph, nil
}

func (t *RegTree) addEdges(graph *cgraph.Graph, gnodes []*cgraph.Node) error {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.IsLeaf() || gnodes[i] == nil {
			continue
		}
		for _, child := range []int32{n.Left, n.Right} {
			e, err := graph.CreateEdge("", gnodes[i], gnodes[child])
			if err != nil {
				return err
			}
			switch {
			case child == n.Left && child == n.DefaultChild():
				e.SetLabel("yes, missing")
			case child == n.Left:
				e.SetLabel("yes")
			case child == n.DefaultChild():
				e.SetLabel("no, missing")
			default:
				e.SetLabel("no")
			}
		}
	}
	return nil
}

// Render writes tree t to w in the given format.
func (t *RegTree) Render(w io.Writer, format graphviz.Format) error {
	g, graph, err := t.Graph()
	if err != nil {
		return err
	}
	defer g.Close()
	defer graph.Close()
	if err := g.Render(graph, format, w); err != nil {
		return errors.Wrap(err, "render graph")
	}
	return nil
}
