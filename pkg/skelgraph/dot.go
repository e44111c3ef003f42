package skelgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

var kindColors = map[Kind]string{
	KindIsolated: "#bdbdbd",
	KindEndpoint: "#6baed6",
	KindJunction: "#fd8d3c",
	KindLoop:     "#74c476",
}

// ToDOT converts g to an undirected Graphviz graph. Nodes are labelled with
// their ID and logical position; edges with their length in pixels.
func ToDOT(g *Graph) string {
	var buf strings.Builder
	buf.WriteString("graph skeleton {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=10, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontsize=9, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  n%d [label=\"%d\", xlabel=\"%s (%d,%d)\", fillcolor=%q];\n",
			n.ID, n.ID, n.Kind, n.At.X, n.At.Y, kindColors[n.Kind])
	}

	if len(g.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  n%d -- n%d [label=\"%d\"];\n", e.From, e.To, e.Length())
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out and renders a DOT graph with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
