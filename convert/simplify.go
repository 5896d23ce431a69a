package convert

import (
	"math"

	"github.com/cartograph/cartograph/vertex"
)

// Simplify reduces vertex count with Douglas-Peucker at the given pixel
// tolerance, preserving MoveTo/Close commands (spec.md §4.C item 4).
// Buffering is O(input): the whole subpath must be seen before deciding
// which interior vertices survive.
type Simplify struct {
	tolerance float64
	out       []vertex.Vertex
	pos       int
}

func NewSimplify(in vertex.Stream, tolerance float64) *Simplify {
	s := &Simplify{tolerance: tolerance}
	s.out = simplifyAll(vertex.Collect(in), tolerance)
	return s
}

func (s *Simplify) Rewind(int) { s.pos = 0 }

func (s *Simplify) Vertex() vertex.Vertex {
	if s.pos >= len(s.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := s.out[s.pos]
	s.pos++
	return v
}

func simplifyAll(verts []vertex.Vertex, tol float64) []vertex.Vertex {
	var out []vertex.Vertex
	var pts []point
	closeAfter := false

	flush := func() {
		if len(pts) == 0 {
			return
		}
		kept := douglasPeucker(pts, tol)
		out = append(out, vertex.Vertex{Cmd: vertex.MoveTo, X: kept[0].x, Y: kept[0].y})
		for _, p := range kept[1:] {
			out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
		}
		if closeAfter {
			out = append(out, vertex.Vertex{Cmd: vertex.Close})
		}
		pts = nil
		closeAfter = false
	}

	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			flush()
			pts = append(pts, point{v.X, v.Y})
		case vertex.LineTo, vertex.Curve3, vertex.Curve4:
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

// douglasPeucker recursively keeps the point of maximum perpendicular
// deviation from the chord whenever it exceeds tol.
func douglasPeucker(pts []point, tol float64) []point {
	if len(pts) < 3 {
		return pts
	}
	first, last := pts[0], pts[len(pts)-1]
	maxDist := -1.0
	maxIdx := 0
	for i := 1; i < len(pts)-1; i++ {
		d := perpendicularDistance(pts[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist <= tol {
		return []point{first, last}
	}
	left := douglasPeucker(pts[:maxIdx+1], tol)
	right := douglasPeucker(pts[maxIdx:], tol)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b point) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	num := math.Abs(dy*p.x - dx*p.y + b.x*a.y - b.y*a.x)
	den := math.Hypot(dx, dy)
	return num / den
}
