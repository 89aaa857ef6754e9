// Package scene holds the in-memory entity model of a graph editor scene:
// point nodes, content nodes, connectors, buses and contours, together with
// the dirty flags that drive incremental redraw.
//
// # Overview
//
// Every visual element implements [Object]. The five concrete variants are
// [PointNode], [ContentNode], [Connector], [Contour] and [Bus]; [Object.Kind]
// reports which one a value is. All of them embed [Base], which carries the
// identity, geometry, topology back-references and flags shared by every
// variant.
//
// A [Scene] owns the objects. It keeps one collection per variant, an index
// from external address to object, and the current selection:
//
//	s := scene.New()
//	a := scene.NewPointNode(geom.V(0, 0), scene.ClassNode|scene.ClassConst)
//	b := scene.NewPointNode(geom.V(100, 0), scene.ClassNode|scene.ClassConst)
//	c := scene.NewConnector(a, b, scene.ClassArc|scene.ClassConst)
//	s.Append(a, b, c)
//
// # Dirty Flags
//
// Each object carries two independent flags:
//
//   - NeedsUpdate: derived geometry (connector boundary points, midpoints)
//     is stale and must be recomputed by [Object.Update].
//   - NeedsSync: the visual representation is stale. A renderer reads the
//     objects returned by [Scene.Dirty] and clears the flag with
//     [Object.MarkSynced].
//
// [Object.SetPosition] sets NeedsSync on the moved object and propagates
// NeedsUpdate through [Object.RequestUpdate] to every incident connector and
// the attached bus, recursively. Propagation keeps a visited set, so cyclic
// incidence (connector attached to connector attached back) terminates.
//
// Reads that depend on derived geometry update lazily: [Object.ConnectionPos]
// on a connector calls [Object.Update] first when the connector is dirty.
//
// # Connection Points
//
// [Object.ConnectionPos] answers "where does a line coming from this point
// touch this object". Point nodes project onto their circle, content nodes
// clip against their padded rectangle, contours clip against their polygon,
// and connectors and buses expose a small disc at a position along their
// path selected by a dot parameter. [Object.CalculateDotPos] is the inverse
// for connectors and buses.
//
// # Lifecycle
//
// Removing an object with [Scene.Remove] only takes it out of the scene's
// collections and the address index. Connectors attached to a removed node
// keep their endpoint reference until they are removed themselves.
// [Scene.DeleteObjects] collects the full cascade (incident connectors,
// attached buses and contour children) and removes all of it.
// [Scene.Discard] removes incident connectors and buses but releases contour
// children instead.
//
// # Concurrency
//
// Scene and its objects are not safe for concurrent use. Hosts that mutate a
// scene from several goroutines serialise access themselves.
package scene
