// Package dot renders a scene as Graphviz DOT and SVG.
//
// # Overview
//
// This package is the reference consumer of the scene's dirty flags. A
// [Syncer] takes the objects whose visual representation is stale, clears
// their flags and regenerates the DOT source. The DOT source pins every
// element at its scene coordinates, so Graphviz only draws and never lays
// out:
//
//	syncer := dot.NewSyncer(dot.Options{Labels: true}, logger)
//	if n := syncer.Sync(s); n > 0 {
//	    svg, err := dot.RenderSVG(ctx, syncer.DOT())
//	}
//
// # Drawing model
//
// Point nodes become fixed-size circles and content nodes become boxes of
// their measured size. Connectors, buses and contour outlines are drawn as
// chains of invisible anchor points placed at their resolved geometry, so a
// connector ending on another connector is drawn exactly where the scene
// attached it. Scene y grows downwards; DOT y grows upwards, so y is flipped
// against the container height.
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process. No system Graphviz install is needed.
package dot
