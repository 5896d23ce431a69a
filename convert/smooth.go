package convert

import (
	"math"

	"github.com/cartograph/cartograph/vertex"
)

// SmoothAlgorithm selects the control-point generation strategy.
type SmoothAlgorithm int

const (
	// SmoothBasic picks control points from chords between neighbours;
	// the smoothing value scales deflection uniformly.
	SmoothBasic SmoothAlgorithm = iota
	// SmoothAdaptive scales deflection by the deviation from a straight
	// angle at each vertex, so near-colinear vertices get no smoothing.
	SmoothAdaptive
)

// Smooth replaces each interior vertex of a polyline/ring with a Curve4
// (cubic Bezier) pair, per spec.md §4.C item 5. Each vertex uses only
// itself and its two neighbours, but NewSmooth collects the whole input
// stream and smooths it eagerly, so buffering grows with the input rather
// than being limited to that window.
type Smooth struct {
	value     float64
	algorithm SmoothAlgorithm
	out       []vertex.Vertex
	pos       int
}

func NewSmooth(in vertex.Stream, value float64, algorithm SmoothAlgorithm) *Smooth {
	s := &Smooth{value: value, algorithm: algorithm}
	s.out = smoothAll(vertex.Collect(in), value, algorithm)
	return s
}

func (s *Smooth) Rewind(int) { s.pos = 0 }

func (s *Smooth) Vertex() vertex.Vertex {
	if s.pos >= len(s.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := s.out[s.pos]
	s.pos++
	return v
}

func smoothAll(verts []vertex.Vertex, value float64, algo SmoothAlgorithm) []vertex.Vertex {
	var out []vertex.Vertex
	var pts []point
	closeAfter := false

	flush := func() {
		if len(pts) == 0 {
			return
		}
		out = append(out, smoothRing(pts, value, algo, closeAfter)...)
		pts = nil
		closeAfter = false
	}

	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			flush()
			pts = append(pts, point{v.X, v.Y})
		case vertex.LineTo:
			pts = append(pts, point{v.X, v.Y})
		case vertex.Close:
			closeAfter = true
		case vertex.End:
			flush()
			out = append(out, vertex.Vertex{Cmd: vertex.End})
		}
	}
	flush()
	if len(out) == 0 || out[len(out)-1].Cmd != vertex.End {
		out = append(out, vertex.Vertex{Cmd: vertex.End})
	}
	return out
}

func smoothRing(pts []point, value float64, algo SmoothAlgorithm, closed bool) []vertex.Vertex {
	if value <= 0 || len(pts) < 3 {
		return emitPolylineOrClose(pts, closed)
	}
	n := len(pts)
	out := []vertex.Vertex{{Cmd: vertex.MoveTo, X: pts[0].x, Y: pts[0].y}}
	limit := n - 1
	if closed {
		limit = n
	}
	for i := 1; i < limit+1 && i < n; i++ {
		prev := pts[i-1]
		cur := pts[i%n]
		var next point
		hasNext := false
		if i+1 < n {
			next = pts[i+1]
			hasNext = true
		} else if closed {
			next = pts[(i+1)%n]
			hasNext = true
		}
		scale := value
		if algo == SmoothAdaptive && hasNext {
			scale = value * deflection(prev, cur, next)
		}
		c1x := prev.x + (cur.x-prev.x)*(1-scale*0.33)
		c1y := prev.y + (cur.y-prev.y)*(1-scale*0.33)
		c2x := cur.x - (cur.x-prev.x)*(scale*0.33)
		c2y := cur.y - (cur.y-prev.y)*(scale*0.33)
		out = append(out, vertex.Vertex{Cmd: vertex.Curve4, CX1: c1x, CY1: c1y, CX2: c2x, CY2: c2y, X: cur.x, Y: cur.y})
	}
	if closed {
		out = append(out, vertex.Vertex{Cmd: vertex.Close})
	}
	return out
}

// deflection returns a value in [0,1]: 0 at a perfectly straight angle
// through cur, 1 at a full reversal — used to damp SmoothAdaptive's
// control-point deflection near-colinear vertices.
func deflection(a, b, c point) float64 {
	v1x, v1y := b.x-a.x, b.y-a.y
	v2x, v2y := c.x-b.x, c.y-b.y
	l1, l2 := math.Hypot(v1x, v1y), math.Hypot(v2x, v2y)
	if l1 == 0 || l2 == 0 {
		return 0
	}
	cosAngle := (v1x*v2x + v1y*v2y) / (l1 * l2)
	if cosAngle > 1 {
		cosAngle = 1
	}
	if cosAngle < -1 {
		cosAngle = -1
	}
	return (1 - cosAngle) / 2
}

func emitPolylineOrClose(pts []point, closed bool) []vertex.Vertex {
	if len(pts) == 0 {
		return nil
	}
	out := []vertex.Vertex{{Cmd: vertex.MoveTo, X: pts[0].x, Y: pts[0].y}}
	for _, p := range pts[1:] {
		out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
	}
	if closed {
		out = append(out, vertex.Vertex{Cmd: vertex.Close})
	}
	return out
}

// Flatten converts Curve3/Curve4 commands in a stream to LineTo segments
// via recursive de Casteljau subdivision at tolerance tol, so the
// rasterizer (component D) never sees a curve command — grounded on
// internal/stroke/expander.go's flattenQuad/flattenCubic.
type Flatten struct {
	tol float64
	out []vertex.Vertex
	pos int
}

func NewFlatten(in vertex.Stream, tol float64) *Flatten {
	f := &Flatten{tol: tol}
	f.out = flattenAll(vertex.Collect(in), tol)
	return f
}

func (f *Flatten) Rewind(int) { f.pos = 0 }

func (f *Flatten) Vertex() vertex.Vertex {
	if f.pos >= len(f.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := f.out[f.pos]
	f.pos++
	return v
}

func flattenAll(verts []vertex.Vertex, tol float64) []vertex.Vertex {
	var out []vertex.Vertex
	var cur point
	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			out = append(out, v)
			cur = point{v.X, v.Y}
		case vertex.LineTo:
			out = append(out, v)
			cur = point{v.X, v.Y}
		case vertex.Curve3:
			pts := flattenQuad(cur, point{v.CX1, v.CY1}, point{v.X, v.Y}, tol)
			for _, p := range pts {
				out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
			}
			cur = point{v.X, v.Y}
		case vertex.Curve4:
			pts := flattenCubic(cur, point{v.CX1, v.CY1}, point{v.CX2, v.CY2}, point{v.X, v.Y}, tol)
			for _, p := range pts {
				out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
			}
			cur = point{v.X, v.Y}
		default:
			out = append(out, v)
		}
	}
	return out
}

func flattenQuad(p0, p1, p2 point, tol float64) []point {
	return flattenQuadRec(p0, p1, p2, tol, 0)
}

func flattenQuadRec(p0, p1, p2 point, tol float64, depth int) []point {
	if depth > 24 || distanceToLine(p1, p0, p2) <= tol {
		return []point{p2}
	}
	p01 := mid(p0, p1)
	p12 := mid(p1, p2)
	p012 := mid(p01, p12)
	left := flattenQuadRec(p0, p01, p012, tol, depth+1)
	right := flattenQuadRec(p012, p12, p2, tol, depth+1)
	return append(left, right...)
}

func flattenCubic(p0, p1, p2, p3 point, tol float64) []point {
	return flattenCubicRec(p0, p1, p2, p3, tol, 0)
}

func flattenCubicRec(p0, p1, p2, p3 point, tol float64, depth int) []point {
	if depth > 24 || (distanceToLine(p1, p0, p3) <= tol && distanceToLine(p2, p0, p3) <= tol) {
		return []point{p3}
	}
	p01, p12, p23 := mid(p0, p1), mid(p1, p2), mid(p2, p3)
	p012, p123 := mid(p01, p12), mid(p12, p23)
	p0123 := mid(p012, p123)
	left := flattenCubicRec(p0, p01, p012, p0123, tol, depth+1)
	right := flattenCubicRec(p0123, p123, p23, p3, tol, depth+1)
	return append(left, right...)
}

func mid(a, b point) point { return point{(a.x + b.x) / 2, (a.y + b.y) / 2} }

func distanceToLine(p, a, b point) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	num := math.Abs(dy*p.x - dx*p.y + b.x*a.y - b.y*a.x)
	return num / math.Hypot(dx, dy)
}
