// Package pkg provides the core libraries for scgraph, the engine behind an
// interactive graph editor.
//
// # Overview
//
// A scene holds point nodes, content nodes, connectors, contours and buses.
// Producers describe the scene as a stream of events; the layout engine
// spreads it out with a d3-style force simulation; renderers export it.
//
//  1. [geom] - Vectors, polygons and projections
//  2. [scene] - The mutable entity model with dirty flags and selection
//  3. [ingest] - Producer events applied to a scene
//  4. [layout] - Simulation graph builder and force engine
//  5. [graph] - Serialization types for scenes and positions
//  6. [render/dot] - Graphviz DOT and SVG export
//  7. [pipeline] - Headless ingest → layout → render with caching
//  8. [session], [server] - Live sessions over HTTP
//
// # Architecture
//
//	producer events (JSON lines)
//	         ↓
//	    [ingest] (resolve references, create objects)
//	         ↓
//	    [scene] (geometry, dirty flags)
//	         ↓
//	    [layout] (ticks until alpha < alpha_min)
//	         ↓
//	    SVG/DOT/JSON output or dirty-object polling
//
// # Quick Start
//
//	s := scene.New()
//	a := scene.NewPointNode(geom.V(380, 300), scene.ClassNode)
//	b := scene.NewPointNode(geom.V(420, 300), scene.ClassNode)
//	s.Append(a, b, scene.NewConnector(a, b, scene.ClassEdge))
//
//	m := layout.NewManager(s)
//	ticks, err := m.Run(ctx, 0)
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(s, dot.Options{Labels: true}))
//
// # Supporting Packages
//
// [cache] stores layouts and renders in files or Redis. [config] loads TOML
// or YAML settings. [errors] carries machine-readable error codes.
// [observability] and [metrics] report layout, ingest, cache and HTTP events
// to Prometheus.
package pkg
