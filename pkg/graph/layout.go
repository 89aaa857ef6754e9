package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/scgraph/pkg/scene"
)

// =============================================================================
// Positions - Layout Result Format
// =============================================================================

// Positions maps external addresses to laid out positions. Only nodes and
// contours carry positions; connector paths follow from them.
type Positions map[uint64]Point

// PositionsOf collects the positions of every addressed node and contour of
// s. Copies of an address are skipped; the canonical object wins.
func PositionsOf(s *scene.Scene) Positions {
	out := make(Positions)
	for _, addr := range s.Addrs() {
		o, ok := s.ByAddr(addr)
		if !ok {
			continue
		}
		switch o.Kind() {
		case scene.KindPointNode, scene.KindContentNode, scene.KindContour:
			out[uint64(addr)] = pointOf(o.Position())
		}
	}
	return out
}

// Apply moves the objects of s to the recorded positions and returns how many
// were moved. Addresses unknown to s are ignored. Contours are moved before
// nodes so that children end where they were recorded.
func (p Positions) Apply(s *scene.Scene) int {
	var contours, nodes []scene.Object
	for _, addr := range slices.Sorted(maps.Keys(p)) {
		o, ok := s.ByAddr(scene.Addr(addr))
		if !ok {
			continue
		}
		switch o.Kind() {
		case scene.KindContour:
			contours = append(contours, o)
		case scene.KindPointNode, scene.KindContentNode:
			nodes = append(nodes, o)
		}
	}
	for _, o := range append(contours, nodes...) {
		a, _ := o.Addr()
		o.SetPosition(p[uint64(a)].Vec())
	}
	return len(contours) + len(nodes)
}

// positionsJSON is the wire form: JSON object keys must be strings.
type positionsJSON map[string]Point

// MarshalJSON encodes addresses as decimal object keys.
func (p Positions) MarshalJSON() ([]byte, error) {
	out := make(positionsJSON, len(p))
	for k, v := range p {
		out[strconv.FormatUint(k, 10)] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes decimal object keys into addresses.
func (p *Positions) UnmarshalJSON(data []byte) error {
	var in positionsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Positions, len(in))
	for k, v := range in {
		addr, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", k, err)
		}
		out[addr] = v
	}
	*p = out
	return nil
}
