package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/spendwatch/paygraph/pkg/paygraph"
	"github.com/spendwatch/paygraph/pkg/scene"
)

// ToDOT converts a snapshot to Graphviz DOT source. Organizations are drawn
// as filled boxes and contractors as ellipses; edge pen widths carry the
// payment-amount scaling, and positions are exported as pinned Graphviz
// coordinates so the force layout survives the round trip.
func ToDOT(snap scene.Snapshot) string {
	var buf bytes.Buffer
	buf.WriteString("graph payments {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range snap.Nodes {
		shape, fill := "ellipse", "lightgoldenrod"
		if n.Kind == paygraph.KindOrg {
			shape, fill = "box", "lightblue"
		}
		// Graphviz points use y-up; world coordinates use y-down.
		fmt.Fprintf(&buf, "  %q [shape=%s, fillcolor=%s, pos=\"%.2f,%.2f!\", width=%.2f];\n",
			n.ID, shape, fill, n.X/72, -n.Y/72, n.Radius/36)
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.2f, label=%q];\n",
			e.SourceID, e.TargetID, e.Width, fmt.Sprintf("%d", e.Contracts))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// GraphvizSVG renders DOT source to SVG using Graphviz.
func GraphvizSVG(ctx context.Context, dot string) ([]byte, error) {
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
