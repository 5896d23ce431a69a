package convert

import (
	"github.com/cartograph/cartograph/internal/stroke"
	"github.com/cartograph/cartograph/vertex"
)

// LineCap is the spec.md stroke-linecap vocabulary.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is the spec.md stroke-linejoin vocabulary. MiterRevert behaves
// like Miter but falls back to Bevel past the miter limit instead of to
// a clipped miter — internal/stroke's MiterJoin already does exactly
// that fallback, so both spec values map onto the same converter join.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinMiterRevert
	JoinRound
	JoinBevel
)

// StrokeStyle is the spec.md §6 stroke-* configuration vocabulary,
// already resolved to pixel units (width pre-scaled by scale_factor).
type StrokeStyle struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// Stroke expands a polyline input stream to a filled outline, per
// spec.md §4.C item 8. Adapted directly from internal/stroke's
// StrokeExpander (tiny-skia/kurbo-style forward/backward offset path
// with explicit joins and caps); this converter only bridges
// vertex.Stream to stroke.PathElement and back.
type Stroke struct {
	out []vertex.Vertex
	pos int
}

func NewStroke(in vertex.Stream, style StrokeStyle, tolerance float64) *Stroke {
	elements := toStrokeElements(vertex.Collect(in))
	expander := stroke.NewStrokeExpander(stroke.Stroke{
		Width:      style.Width,
		Cap:        toStrokeCap(style.Cap),
		Join:       toStrokeJoin(style.Join),
		MiterLimit: style.MiterLimit,
	})
	expander.SetTolerance(tolerance)
	expanded := expander.Expand(elements)
	s := &Stroke{out: fromStrokeElements(expanded)}
	return s
}

func (s *Stroke) Rewind(int) { s.pos = 0 }

func (s *Stroke) Vertex() vertex.Vertex {
	if s.pos >= len(s.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := s.out[s.pos]
	s.pos++
	return v
}

func toStrokeCap(c LineCap) stroke.LineCap {
	switch c {
	case CapRound:
		return stroke.LineCapRound
	case CapSquare:
		return stroke.LineCapSquare
	default:
		return stroke.LineCapButt
	}
}

func toStrokeJoin(j LineJoin) stroke.LineJoin {
	switch j {
	case JoinRound:
		return stroke.LineJoinRound
	case JoinBevel:
		return stroke.LineJoinBevel
	default:
		return stroke.LineJoinMiter
	}
}

func toStrokeElements(verts []vertex.Vertex) []stroke.PathElement {
	var out []stroke.PathElement
	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			out = append(out, stroke.MoveTo{Point: stroke.Point{X: v.X, Y: v.Y}})
		case vertex.LineTo:
			out = append(out, stroke.LineTo{Point: stroke.Point{X: v.X, Y: v.Y}})
		case vertex.Curve3:
			out = append(out, stroke.QuadTo{
				Control: stroke.Point{X: v.CX1, Y: v.CY1},
				Point:   stroke.Point{X: v.X, Y: v.Y},
			})
		case vertex.Curve4:
			out = append(out, stroke.CubicTo{
				Control1: stroke.Point{X: v.CX1, Y: v.CY1},
				Control2: stroke.Point{X: v.CX2, Y: v.CY2},
				Point:    stroke.Point{X: v.X, Y: v.Y},
			})
		case vertex.Close:
			out = append(out, stroke.Close{})
		}
	}
	return out
}

func fromStrokeElements(elements []stroke.PathElement) []vertex.Vertex {
	out := make([]vertex.Vertex, 0, len(elements)+1)
	for _, el := range elements {
		switch e := el.(type) {
		case stroke.MoveTo:
			out = append(out, vertex.Vertex{Cmd: vertex.MoveTo, X: e.Point.X, Y: e.Point.Y})
		case stroke.LineTo:
			out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: e.Point.X, Y: e.Point.Y})
		case stroke.QuadTo:
			out = append(out, vertex.Vertex{Cmd: vertex.Curve3, CX1: e.Control.X, CY1: e.Control.Y, X: e.Point.X, Y: e.Point.Y})
		case stroke.CubicTo:
			out = append(out, vertex.Vertex{
				Cmd: vertex.Curve4,
				CX1: e.Control1.X, CY1: e.Control1.Y,
				CX2: e.Control2.X, CY2: e.Control2.Y,
				X: e.Point.X, Y: e.Point.Y,
			})
		case stroke.Close:
			out = append(out, vertex.Vertex{Cmd: vertex.Close})
		}
	}
	out = append(out, vertex.Vertex{Cmd: vertex.End})
	return out
}
