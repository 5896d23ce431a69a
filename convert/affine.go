package convert

import "github.com/cartograph/cartograph/vertex"

// Affine applies Matrix m to every vertex of the input stream, used both
// for the per-feature geometry transform (item 2) and the map's view
// transform (item 3) — spec.md draws no algorithmic distinction between
// the two, only a difference in where the matrix comes from. Buffering
// is O(1): each vertex is transformed and re-emitted as it arrives.
type Affine struct {
	in vertex.Stream
	m  Matrix
}

// NewAffine wraps in with transform m. If m is Identity, callers should
// skip wrapping entirely (the converter chain table in spec.md §4.H
// marks this step with "?" for exactly that reason at the geometry-
// transform stage; the view affine stage is unconditional).
func NewAffine(in vertex.Stream, m Matrix) *Affine {
	return &Affine{in: in, m: m}
}

func (a *Affine) Rewind(pathIdx int) { a.in.Rewind(pathIdx) }

func (a *Affine) Vertex() vertex.Vertex {
	v := a.in.Vertex()
	switch v.Cmd {
	case vertex.MoveTo, vertex.LineTo:
		v.X, v.Y = a.m.Apply(v.X, v.Y)
	case vertex.Curve3:
		v.CX1, v.CY1 = a.m.Apply(v.CX1, v.CY1)
		v.X, v.Y = a.m.Apply(v.X, v.Y)
	case vertex.Curve4:
		v.CX1, v.CY1 = a.m.Apply(v.CX1, v.CY1)
		v.CX2, v.CY2 = a.m.Apply(v.CX2, v.CY2)
		v.X, v.Y = a.m.Apply(v.X, v.Y)
	}
	return v
}
