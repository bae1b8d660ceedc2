// Package render turns scene snapshots into static artifacts.
//
// The scene never draws; these sinks are render bindings for the
// "write a file" case. Three formats are supported:
//
//   - SVG: hand-written vector output. The viewport transform is applied
//     once, on a scene-wrapping <g> element; node and edge elements use
//     untransformed world coordinates.
//   - DOT: Graphviz source for interoperability with graph tooling, plus a
//     Graphviz-rendered SVG variant via goccy/go-graphviz.
//   - JSON: the snapshot itself, pretty-printed, for external visualization
//     tools and round-trip inspection.
package render

// Format constants for output artifacts.
const (
	FormatSVG         = "svg"
	FormatDOT         = "dot"
	FormatGraphvizSVG = "gvsvg"
	FormatJSON        = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:         true,
	FormatDOT:         true,
	FormatGraphvizSVG: true,
	FormatJSON:        true,
}
