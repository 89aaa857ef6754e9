// Package render groups the scene exporters.
//
// The [dot] subpackage converts a scene into Graphviz DOT with every node
// pinned at its laid out position, renders that to SVG through the embedded
// Graphviz, and keeps the DOT in step with the scene's dirty flags:
//
//	src := dot.ToDOT(s, dot.Options{Labels: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// JSON export lives in pkg/graph.
package render
