// Package graph provides serialization types for scenes and layouts.
//
// This package defines the wire format for scgraph data, used for JSON
// output, HTTP responses and the layout cache.
//
// # Architecture
//
// The package sits at the serialization boundary between the live scene and
// external formats:
//
//   - [Scene]: a snapshot of every object with its resolved geometry
//   - [Positions]: simulated node and contour positions keyed by external
//     address, the unit stored in the layout cache
//   - pkg/scene.Scene: the live, mutable entity model
//
// Use [FromScene] or [FromObjects] to take snapshots and [PositionsOf] /
// [Positions.Apply] to move layouts between scenes.
//
// # Scene Serialization
//
// Objects reference each other by local id:
//
//	{
//	  "width": 800, "height": 600,
//	  "nodes": [{"id": 1, "addr": 10, "kind": "point", "x": 0, "y": 0, ...}],
//	  "connectors": [{"id": 3, "source": 1, "target": 2, "from": {...}, "to": {...}}]
//	}
//
// Local ids are only stable within one process. Anything that must survive
// a restart, such as cached positions, is keyed by external address instead.
package graph
