package ingest

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/geom"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Op is the event operation.
type Op string

const (
	OpCreate Op = "create"
	OpRemove Op = "remove"
)

// Object kinds accepted in [Event.Kind].
const (
	KindNode      = "node"
	KindContent   = "content"
	KindConnector = "connector"
	KindContour   = "contour"
	KindBus       = "bus"
)

// Point is a position in scene coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec converts p to a geometry vector.
func (p Point) Vec() geom.Vec { return geom.V(p.X, p.Y) }

// Event is one producer event.
type Event struct {
	Op   Op     `json:"op"`
	Addr uint64 `json:"addr"`

	// Kind overrides kind inference. See the package documentation.
	Kind string `json:"kind,omitempty"`
	// Class is a "|" or "," separated list of class names.
	Class string `json:"class,omitempty"`

	Source uint64 `json:"source,omitempty"`
	Target uint64 `json:"target,omitempty"`

	Text        string `json:"text,omitempty"`
	Content     string `json:"content,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Level       int    `json:"level,omitempty"`

	// Position places nodes and contours, and is the terminal of a bus.
	Position *Point  `json:"position,omitempty"`
	Vertices []Point `json:"vertices,omitempty"`

	// Copy creates an additional visual copy of an existing address.
	Copy bool `json:"copy,omitempty"`
}

// kind returns the explicit or inferred object kind.
func (e Event) kind() string {
	if e.Kind != "" {
		return strings.ToLower(e.Kind)
	}
	switch {
	case len(e.Vertices) > 0:
		return KindContour
	case e.Source != 0 && e.Target != 0:
		return KindConnector
	case e.Source != 0:
		return KindBus
	case e.Content != "":
		return KindContent
	}
	return KindNode
}

// class parses the class list. An empty list yields the default for kind.
func (e Event) class(kind string) (scene.Class, error) {
	if strings.TrimSpace(e.Class) == "" {
		switch kind {
		case KindConnector, KindBus:
			return scene.ClassEdge, nil
		case KindContour:
			return scene.ClassNode | scene.ClassStruct, nil
		}
		return scene.ClassNode, nil
	}
	c, ok := scene.ParseClass(e.Class)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidInput, "event %d: unknown class %q", e.Addr, e.Class)
	}
	return c, nil
}

// Validate checks the fields that do not depend on scene state.
func (e Event) Validate() error {
	switch e.Op {
	case OpCreate, OpRemove:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "event %d: unknown op %q", e.Addr, e.Op)
	}
	if e.Addr == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "event without address")
	}
	if e.Op == OpRemove {
		return nil
	}

	switch k := e.kind(); k {
	case KindNode, KindContent:
	case KindConnector:
		if e.Source == 0 || e.Target == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "event %d: connector needs source and target", e.Addr)
		}
	case KindBus:
		if e.Source == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "event %d: bus needs a source", e.Addr)
		}
	case KindContour:
		if len(e.Vertices) < 3 {
			return errors.New(errors.ErrCodeInvalidInput, "event %d: contour needs at least 3 vertices", e.Addr)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "event %d: unknown kind %q", e.Addr, k)
	}

	if e.Position != nil {
		if err := errors.ValidateCoordinates(e.Position.X, e.Position.Y); err != nil {
			return err
		}
	}
	for _, v := range e.Vertices {
		if err := errors.ValidateCoordinates(v.X, v.Y); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes newline-delimited JSON events. Blank lines are skipped.
func Read(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: invalid event", line)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read events")
	}
	return events, nil
}
