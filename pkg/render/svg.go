package render

import (
	"fmt"
	"io"

	"github.com/spendwatch/paygraph/pkg/paygraph"
	"github.com/spendwatch/paygraph/pkg/scene"
)

// Node fill colors by kind.
const (
	orgFill        = "#2563eb"
	contractorFill = "#f59e0b"
	edgeStroke     = "#94a3b8"
)

// SVGOptions configures WriteSVG.
type SVGOptions struct {
	Width  float64 // frame width in pixels
	Height float64 // frame height in pixels
	Labels bool    // include node ID labels
}

// DefaultSVGOptions returns an 800x600 frame without labels.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 600}
}

// WriteSVG writes the snapshot as an SVG document. The snapshot's transform
// becomes a single <g transform> wrapper; all node and edge geometry stays in
// world coordinates, matching what interactive render bindings do.
func WriteSVG(w io.Writer, snap scene.Snapshot, opts SVGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		o := DefaultSVGOptions()
		opts.Width, opts.Height = o.Width, o.Height
	}

	var err error
	pf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	pf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)

	t := snap.Transform
	pf(`  <g transform="translate(%.4f %.4f) scale(%.4f)">`+"\n", t.PanX, t.PanY, t.K)

	// Edges first so nodes paint on top.
	for _, e := range snap.Edges {
		pf(`    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="0.6"/>`+"\n",
			e.X1, e.Y1, e.X2, e.Y2, edgeStroke, e.Width)
	}

	for _, n := range snap.Nodes {
		fill := contractorFill
		if n.Kind == paygraph.KindOrg {
			fill = orgFill
		}
		pf(`    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", n.X, n.Y, n.Radius, fill)
		if opts.Labels {
			pf(`    <text x="%.2f" y="%.2f" font-size="10" text-anchor="middle">%s</text>`+"\n",
				n.X, n.Y-n.Radius-3, escapeXML(n.ID))
		}
	}

	pf("  </g>\n</svg>\n")
	return err
}

func escapeXML(s string) string {
	var out []byte
	for _, c := range []byte(s) {
		switch c {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
