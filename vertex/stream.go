// Package vertex implements cartograph's vertex stream (component B):
// a lazy sequence of (command, x, y) tuples consumed by the converter
// stack and, ultimately, the rasterizer.
package vertex

// Command is the vertex command alphabet (spec.md §3/§4.B).
type Command uint8

const (
	// MoveTo starts a new subpath at (x, y).
	MoveTo Command = iota
	// LineTo draws a straight segment to (x, y).
	LineTo
	// Curve3 draws a quadratic Bezier segment with one control point,
	// emitted by the stroke converter before curve flattening (the
	// smooth converter emits Curve4).
	Curve3
	// Curve4 draws a cubic Bezier segment with two control points.
	Curve4
	// Close closes the current subpath back to its MoveTo point.
	Close
	// End terminates the stream. No further Vertex calls are valid.
	End
)

// Vertex is one (command, point) pair. Curve3/Curve4 pack their control
// points into CX1,CY1[,CX2,CY2]; LineTo/MoveTo only use X,Y.
type Vertex struct {
	Cmd            Command
	X, Y           float64
	CX1, CY1       float64
	CX2, CY2       float64
}

// Stream is a finite, single-pass sequence of vertices whose traversal
// can be restarted from the beginning; traversal state is owned by the
// stream (spec.md §3). Concurrent use of one Stream value is undefined.
type Stream interface {
	// Rewind resets traversal to the start of subpath pathIdx (0 for the
	// first subpath of a Geometry-derived stream; converters that don't
	// distinguish subpaths ignore the index and always restart at 0).
	Rewind(pathIdx int)
	// Vertex advances traversal by one command, returning the next
	// vertex. After End has been returned, further calls keep returning
	// End.
	Vertex() Vertex
}

// Slice is a Stream backed by a pre-built []Vertex, the terminal form
// most converters and the rasterizer actually consume.
type Slice struct {
	verts []Vertex
	pos   int
}

// NewSlice wraps verts as a Stream. A trailing End is appended if the
// caller didn't already terminate the slice.
func NewSlice(verts []Vertex) *Slice {
	if len(verts) == 0 || verts[len(verts)-1].Cmd != End {
		verts = append(verts, Vertex{Cmd: End})
	}
	return &Slice{verts: verts}
}

func (s *Slice) Rewind(int) { s.pos = 0 }

func (s *Slice) Vertex() Vertex {
	if s.pos >= len(s.verts) {
		return Vertex{Cmd: End}
	}
	v := s.verts[s.pos]
	s.pos++
	return v
}

// Builder accumulates vertices into a Slice, mirroring the teacher's
// path_builder.go moveTo/lineTo/curveTo/close accumulation shape.
type Builder struct {
	verts   []Vertex
	started bool
}

func (b *Builder) MoveTo(x, y float64) {
	b.verts = append(b.verts, Vertex{Cmd: MoveTo, X: x, Y: y})
	b.started = true
}

func (b *Builder) LineTo(x, y float64) {
	if !b.started {
		b.MoveTo(x, y)
		return
	}
	b.verts = append(b.verts, Vertex{Cmd: LineTo, X: x, Y: y})
}

func (b *Builder) Curve3To(cx, cy, x, y float64) {
	b.verts = append(b.verts, Vertex{Cmd: Curve3, CX1: cx, CY1: cy, X: x, Y: y})
}

func (b *Builder) Curve4To(cx1, cy1, cx2, cy2, x, y float64) {
	b.verts = append(b.verts, Vertex{Cmd: Curve4, CX1: cx1, CY1: cy1, CX2: cx2, CY2: cy2, X: x, Y: y})
}

func (b *Builder) Close() {
	b.verts = append(b.verts, Vertex{Cmd: Close})
}

// Append adds raw vertices to the builder, skipping any trailing End —
// used when splicing one already-built stream's vertices into another
// (e.g. a geometry Collection concatenating its members' streams).
func (b *Builder) Append(vs ...Vertex) {
	for _, v := range vs {
		if v.Cmd == End {
			continue
		}
		b.verts = append(b.verts, v)
	}
}

// Build finalizes the accumulated vertices into a Stream.
func (b *Builder) Build() *Slice {
	return NewSlice(b.verts)
}

// Collect drains stream into a []Vertex, for converters that need
// random-ish access over a small window (clip/simplify) despite the
// single-pass Stream contract.
func Collect(stream Stream) []Vertex {
	stream.Rewind(0)
	var out []Vertex
	for {
		v := stream.Vertex()
		out = append(out, v)
		if v.Cmd == End {
			return out
		}
	}
}
