// placement.go implements the four placement-search strategies of
// spec.md §4.G: point, line (arc-length walk), vertex, and interior
// (pole of inaccessibility). Each produces Candidates that the
// caller (render/) feeds through Detector.HasPlacement before accepting.
//
// The arc-length walk and angle-delta rejection are original, built
// directly from spec.md's prose ("walk the polyline by arc length; at
// each step of spacing pixels attempt to center a label with angle equal
// to the tangent; reject a placement if the angle between any two
// consecutive character baselines exceeds max-char-angle-delta; if
// rejected, advance by max-error and retry") since no pack example
// implements text-on-a-path. The pole-of-inaccessibility search is
// grounded on the standard grid/quadtree-refinement algorithm used by
// Mapnik's own interior-labeling (original_source/src/polygon_layout.cpp
// "largest_bounding_box" / centroid-refinement strategy), adapted here as
// a simple iterative grid-shrink since no quadtree utility exists in the
// retrieved pack.
package label

import (
	"math"

	"github.com/cartograph/cartograph/geom"
)

// Mode selects one of spec.md §4.G's four placement strategies.
type Mode int

const (
	ModePoint Mode = iota
	ModeLine
	ModeVertex
	ModeInterior
)

// Candidate is one proposed label anchor: position and baseline angle
// (radians, 0 = +X axis) a symbolizer uses to orient glyphs.
type Candidate struct {
	X, Y  float64
	Angle float64
}

// Params bundles the style properties spec.md §7 lists for placement.
type Params struct {
	Spacing           float64 // line-placement step, px
	MaxError          float64 // line-placement retry advance, px
	MaxCharAngleDelta float64 // radians; reject if exceeded
	DisplacementX     float64
	DisplacementY     float64
}

// Point placement: one candidate at the feature's representative point
// (centroid for polygons, mid-vertex for lines, the point itself for
// points) plus the style's displacement; spec.md §4.G "on failure,
// abandon" — callers try exactly this one candidate.
func Point(g *geom.Geometry, p Params) (Candidate, bool) {
	rx, ry, ok := representativePoint(g)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{X: rx + p.DisplacementX, Y: ry + p.DisplacementY}, true
}

func representativePoint(g *geom.Geometry) (x, y float64, ok bool) {
	switch g.Kind {
	case geom.KindPoint, geom.KindMultiPoint:
		if len(g.Points) == 0 {
			return 0, 0, false
		}
		return g.Points[0].X, g.Points[0].Y, true
	case geom.KindLineString, geom.KindMultiLineString:
		if len(g.Lines) == 0 || len(g.Lines[0]) == 0 {
			return 0, 0, false
		}
		ring := g.Lines[0]
		mid := ring[len(ring)/2]
		return mid.X, mid.Y, true
	case geom.KindPolygon, geom.KindMultiPolygon:
		if len(g.Polygons) == 0 {
			return 0, 0, false
		}
		return polygonCentroid(g.Polygons[0].Exterior)
	}
	return 0, 0, false
}

// polygonCentroid computes the area-weighted centroid of a ring via the
// standard shoelace-sum formula, falling back to the vertex average for
// a degenerate (zero-area) ring.
func polygonCentroid(ring geom.Ring) (x, y float64, ok bool) {
	n := len(ring)
	if n < 3 {
		if n == 0 {
			return 0, 0, false
		}
		var sx, sy float64
		for _, p := range ring {
			sx += p.X
			sy += p.Y
		}
		return sx / float64(n), sy / float64(n), true
	}
	var area, cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
		area += cross
		cx += (ring[i].X + ring[j].X) * cross
		cy += (ring[i].Y + ring[j].Y) * cross
	}
	area *= 0.5
	if math.Abs(area) < 1e-9 {
		var sx, sy float64
		for _, p := range ring {
			sx += p.X
			sy += p.Y
		}
		return sx / float64(n), sy / float64(n), true
	}
	return cx / (6 * area), cy / (6 * area), true
}

// Line walks g's first line by arc length, proposing one candidate every
// Spacing px with the local tangent angle. Each candidate's angle is
// compared with the previous accepted angle; if the delta exceeds a
// positive MaxCharAngleDelta the candidate is skipped and the walk
// advances by MaxError instead of Spacing before retrying.
func Line(g *geom.Geometry, p Params) []Candidate {
	if g.Kind != geom.KindLineString && g.Kind != geom.KindMultiLineString {
		return nil
	}
	if len(g.Lines) == 0 {
		return nil
	}
	ring := g.Lines[0]
	if len(ring) < 2 {
		return nil
	}
	spacing := p.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	maxErr := p.MaxError
	if maxErr <= 0 {
		maxErr = spacing
	}

	var out []Candidate
	haveLast := false
	var lastAngle float64

	target := spacing / 2 // first label centered half a step in, matching a typical tick-mark cadence

	segStart := 0
	segOffset := 0.0 // distance already consumed into the current segment
	accumulated := 0.0

	for {
		x, y, angle, advanced := walkTo(ring, &segStart, &segOffset, target-accumulated)
		if !advanced {
			break
		}
		accumulated = target

		if haveLast && angleDelta(angle, lastAngle) > p.MaxCharAngleDelta && p.MaxCharAngleDelta > 0 {
			target += maxErr
			continue
		}

		out = append(out, Candidate{X: x, Y: y, Angle: angle})
		haveLast = true
		lastAngle = angle
		target += spacing
	}

	return out
}

// walkTo advances along ring starting from (*segStart, *segOffset) by
// exactly delta arc-length units, returning the resulting point and the
// tangent angle of the segment it lands in. Returns advanced=false once
// the ring is exhausted.
func walkTo(ring geom.Ring, segStart *int, segOffset *float64, delta float64) (x, y, angle float64, advanced bool) {
	remaining := delta
	i := *segStart
	offset := *segOffset
	for i < len(ring)-1 {
		a, b := ring[i], ring[i+1]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		available := segLen - offset
		if remaining <= available {
			t := (offset + remaining) / segLen
			if segLen == 0 {
				t = 0
			}
			px := a.X + (b.X-a.X)*t
			py := a.Y + (b.Y-a.Y)*t
			ang := math.Atan2(b.Y-a.Y, b.X-a.X)
			*segStart = i
			*segOffset = offset + remaining
			return px, py, ang, true
		}
		remaining -= available
		offset = 0
		i++
	}
	return 0, 0, 0, false
}

// angleDelta is the smallest absolute difference between two angles,
// wrapped into [0, pi].
func angleDelta(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return math.Abs(d - math.Pi)
}

// Vertex proposes one candidate per vertex of g's first line or ring
// (spec.md §4.G "one candidate per vertex"), angled along the bisector
// of its two incident segments.
func Vertex(g *geom.Geometry) []Candidate {
	var ring geom.Ring
	switch g.Kind {
	case geom.KindLineString, geom.KindMultiLineString:
		if len(g.Lines) == 0 {
			return nil
		}
		ring = g.Lines[0]
	case geom.KindPolygon, geom.KindMultiPolygon:
		if len(g.Polygons) == 0 {
			return nil
		}
		ring = g.Polygons[0].Exterior
	default:
		return nil
	}
	if len(ring) == 0 {
		return nil
	}

	out := make([]Candidate, len(ring))
	n := len(ring)
	for i, p := range ring {
		prev := ring[(i-1+n)%n]
		next := ring[(i+1)%n]
		a1 := math.Atan2(p.Y-prev.Y, p.X-prev.X)
		a2 := math.Atan2(next.Y-p.Y, next.X-p.X)
		out[i] = Candidate{X: p.X, Y: p.Y, Angle: (a1 + a2) / 2}
	}
	return out
}

// Interior returns the pole of inaccessibility of g's first polygon
// (spec.md §4.G): the interior point maximizing distance to the
// boundary, found by iteratively refining a grid over the bounding box.
func Interior(g *geom.Geometry) (Candidate, bool) {
	if g.Kind != geom.KindPolygon && g.Kind != geom.KindMultiPolygon {
		return Candidate{}, false
	}
	if len(g.Polygons) == 0 {
		return Candidate{}, false
	}
	poly := g.Polygons[0]
	if len(poly.Exterior) < 3 {
		return Candidate{}, false
	}

	box := g.Bounds()
	cellSize := math.Max(box.MaxX-box.MinX, box.MaxY-box.MinY)
	if cellSize <= 0 {
		return Candidate{}, false
	}

	bestX, bestY, ok := polygonCentroid(poly.Exterior)
	if !ok {
		return Candidate{}, false
	}
	bestDist := distanceToBoundary(bestX, bestY, poly)

	const iterations = 8
	const gridN = 5
	for iter := 0; iter < iterations; iter++ {
		step := cellSize / math.Pow(2, float64(iter)+1)
		improved := false
		for gy := -gridN / 2; gy <= gridN/2; gy++ {
			for gx := -gridN / 2; gx <= gridN/2; gx++ {
				cx := bestX + float64(gx)*step
				cy := bestY + float64(gy)*step
				if cx < box.MinX || cx > box.MaxX || cy < box.MinY || cy > box.MaxY {
					continue
				}
				if !pointInRing(cx, cy, poly.Exterior) {
					continue
				}
				d := distanceToBoundary(cx, cy, poly)
				if d > bestDist {
					bestDist = d
					bestX, bestY = cx, cy
					improved = true
				}
			}
		}
		if !improved && iter > 2 {
			break
		}
	}

	return Candidate{X: bestX, Y: bestY}, true
}

func distanceToBoundary(x, y float64, poly geom.Polygon) float64 {
	d := distanceToRing(x, y, poly.Exterior)
	for _, hole := range poly.Holes {
		if hd := distanceToRing(x, y, hole); hd < d {
			d = hd
		}
	}
	return d
}

func distanceToRing(x, y float64, ring geom.Ring) float64 {
	if len(ring) == 0 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		d := distToSegment(x, y, a.X, a.Y, b.X, b.Y)
		if d < best {
			best = d
		}
	}
	return best
}

func distToSegment(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(px-cx, py-cy)
}

// pointInRing is a standard even-odd ray-casting point-in-polygon test.
func pointInRing(x, y float64, ring geom.Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}
