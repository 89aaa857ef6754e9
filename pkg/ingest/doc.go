// Package ingest applies knowledge-store events to a scene.
//
// A producer describes the scene as a stream of create and remove events
// keyed by external address. Events may arrive out of order: a connector can
// be announced before the objects it joins. [Applier.Apply] therefore works
// in passes, retrying deferred events until a pass makes no progress. Events
// still pending at that point reference objects that will never exist, which
// is a TOPOLOGY error listing the missing addresses.
//
// # Event Format
//
// Events are JSON objects, one per line when read with [Read]:
//
//	{"op":"create","addr":1,"class":"node|const","text":"a","position":{"x":0,"y":0}}
//	{"op":"create","addr":3,"class":"edge","source":1,"target":2}
//	{"op":"create","addr":2,"class":"node","content":"<b>b</b>","content_type":"text/html"}
//	{"op":"remove","addr":3}
//
// The object kind is taken from the "kind" field when present, otherwise
// inferred: vertices make a contour, a source and target make a connector, a
// source alone makes a bus, content makes a content node, anything else is a
// point node.
package ingest
