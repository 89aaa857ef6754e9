// Package layout turns a scene into a force-directed simulation and writes the
// simulated positions back into the scene.
//
// # Overview
//
// Layout runs in two stages:
//
//  1. [Build] wraps every node, content node and contour of a scene in a
//     [Vertex] and every connector in a [Link], partitioned into [Group]s by
//     the address of the owning contour.
//  2. An [Engine] simulates one group with d3-force semantics (centering,
//     many-body repulsion, link springs, alpha decay) and writes positions back
//     into the wrapped objects after every tick.
//
// [Manager] ties the two together for a host loop: DoLayout rebuilds the graph
// and restarts the engine, Step advances one tick, Run drives ticks until the
// simulation converges or a tick limit is reached.
//
// # Dot Vertices
//
// Connectors never become vertices. When a connector is attached to another
// connector (or a bus), the builder synthesises a [VertexDot] for that end.
// Dots carry no charge and are not simulated independently: after each tick a
// dot is moved to the resolved end point of the connector it belongs to, so it
// tracks the connector it is attached to.
//
// # Spring Length
//
// A link's rest length compensates for the shapes at both ends:
//
//	rest = base + (centre gap - boundary gap)
//
// with base 100 for ordinary links and 50 when either end is a dot. The
// visible distance between the two boundary points therefore converges to the
// base length no matter how large the shapes are.
//
// # Groups
//
// Only the top-level group (key 0, objects outside any contour) is simulated.
// Objects owned by a contour move with it when its vertex moves.
//
// # Concurrency
//
// Engines and managers are not safe for concurrent use. Hosts serialise ticks
// and scene mutations, as pkg/session does.
package layout
