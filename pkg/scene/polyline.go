package scene

import (
	"math"
	"slices"

	"github.com/matzehuels/scgraph/pkg/geom"
)

// DiscRadius is the radius of the attachment disc that a polyline exposes at
// a dot position.
const DiscRadius = 10.0

// DefaultDot is the dot parameter of a freshly created connector end.
const DefaultDot = 0.5

// FallbackPosition replaces non-finite endpoint positions during update.
var FallbackPosition = geom.V(250, 250)

// polyline holds the geometry shared by connectors and buses: resolved
// boundary points at both ends, interior waypoints and the dot parameters
// where each end attaches.
type polyline struct {
	sourcePos geom.Vec
	targetPos geom.Vec
	points    []geom.Vec
	sourceDot float64
	targetDot float64
}

func newPolyline(src, tgt geom.Vec) polyline {
	return polyline{
		sourcePos: src,
		targetPos: tgt,
		sourceDot: DefaultDot,
		targetDot: DefaultDot,
	}
}

// SourcePoint returns the resolved boundary point at the source end.
func (l *polyline) SourcePoint() geom.Vec { return l.sourcePos }

// TargetPoint returns the resolved boundary point at the target end.
func (l *polyline) TargetPoint() geom.Vec { return l.targetPos }

func (l *polyline) SourceDot() float64 { return l.sourceDot }
func (l *polyline) TargetDot() float64 { return l.targetDot }

// Points returns a copy of the interior waypoints.
func (l *polyline) Points() []geom.Vec { return slices.Clone(l.points) }

func (l *polyline) shiftPoints(d geom.Vec) {
	for i := range l.points {
		l.points[i].X += d.X
		l.points[i].Y += d.Y
	}
}

// path returns the full point list from source boundary to target boundary.
func (l *polyline) path() []geom.Vec {
	pts := make([]geom.Vec, 0, len(l.points)+2)
	pts = append(pts, l.sourcePos.XY())
	for _, p := range l.points {
		pts = append(pts, p.XY())
	}
	return append(pts, l.targetPos.XY())
}

// pointAt resolves dot into a segment index and fraction and interpolates the
// position along the path. Segment k runs between path()[k] and path()[k+1].
// An out of range segment index falls back to the middle waypoint. When the
// segment has no waypoint pair, the endpoint centres are used.
func (l *polyline) pointAt(dot float64, srcCentre, tgtCentre geom.Vec) geom.Vec {
	n := len(l.points)

	fl := math.Floor(dot)
	frac := dot - fl
	if math.IsNaN(frac) || math.IsInf(frac, 0) {
		frac = 0
	}
	sector := n / 2
	if fl >= 0 && fl <= float64(n+1) {
		sector = int(fl)
	}

	var beg, end geom.Vec
	switch {
	case sector == 0:
		beg = l.sourcePos
		if n > 0 {
			end = l.points[0]
		} else {
			end = l.targetPos
		}
	case sector == n:
		end = l.targetPos
		if n > 0 {
			beg = l.points[sector-1]
		} else {
			beg = l.sourcePos
		}
	default:
		if n > sector {
			beg = l.points[sector-1]
			end = l.points[sector]
		} else {
			beg = srcCentre
			end = tgtCentre
		}
	}

	return beg.XY().Lerp(end.XY(), frac)
}

// dotPos projects p onto every path segment and returns segment index plus
// offset for the closest segment whose projection falls inside it. A
// zero-length segment stops the search and returns what was found so far.
func (l *polyline) dotPos(p geom.Vec) float64 {
	pts := l.path()
	minDist := -1.0
	result := 0.0

	for i := 1; i < len(pts); i++ {
		proj, t, ok := geom.ProjectOnLine(p, pts[i-1], pts[i])
		if !ok {
			return result
		}
		if t < 0 || t > 1 {
			continue
		}
		if d := p.DistSq(proj); minDist < 0 || d < minDist {
			minDist = d
			result = float64(i-1) + t
		}
	}
	return result
}

func (l *polyline) setPoint(idx int, p geom.Vec) bool {
	if idx < 0 || idx >= len(l.points) {
		return false
	}
	l.points[idx].X = p.X
	l.points[idx].Y = p.Y
	return true
}
