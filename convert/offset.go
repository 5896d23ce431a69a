package convert

import (
	"math"

	"github.com/cartograph/cartograph/vertex"
)

// Offset produces the parallel curve at signed distance d: each segment
// is shifted along its normal, with miter joins at interior vertices
// (spec.md §4.C item 6). Each join uses only the previous and current
// segment, but NewOffset collects the whole input stream and offsets it
// eagerly, so buffering grows with the input rather than staying O(1).
type Offset struct {
	d   float64
	out []vertex.Vertex
	pos int
}

func NewOffset(in vertex.Stream, d float64) *Offset {
	o := &Offset{d: d}
	o.out = offsetAll(vertex.Collect(in), d)
	return o
}

func (o *Offset) Rewind(int) { o.pos = 0 }

func (o *Offset) Vertex() vertex.Vertex {
	if o.pos >= len(o.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := o.out[o.pos]
	o.pos++
	return v
}

func offsetAll(verts []vertex.Vertex, d float64) []vertex.Vertex {
	var out []vertex.Vertex
	var pts []point
	closeAfter := false

	flush := func() {
		if len(pts) < 2 {
			pts = nil
			return
		}
		shifted := offsetPolyline(pts, d, closeAfter)
		out = append(out, vertex.Vertex{Cmd: vertex.MoveTo, X: shifted[0].x, Y: shifted[0].y})
		for _, p := range shifted[1:] {
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

// offsetPolyline shifts each segment by d along its left normal, joining
// consecutive shifted segments with a miter (their intersection point).
func offsetPolyline(pts []point, d float64, closed bool) []point {
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	normals := make([]point, segs)
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		dx, dy := b.x-a.x, b.y-a.y
		l := math.Hypot(dx, dy)
		if l == 0 {
			normals[i] = point{0, 0}
			continue
		}
		normals[i] = point{-dy / l * d, dx / l * d}
	}

	out := make([]point, 0, n)
	for i := 0; i < n; i++ {
		prevSeg := (i - 1 + segs) % segs
		curSeg := i % segs
		if !closed {
			if i == 0 {
				p := point{pts[0].x + normals[0].x, pts[0].y + normals[0].y}
				out = append(out, p)
				continue
			}
			if i == n-1 {
				p := point{pts[i].x + normals[segs-1].x, pts[i].y + normals[segs-1].y}
				out = append(out, p)
				continue
			}
		}
		nPrev, nCur := normals[prevSeg], normals[curSeg]
		mx, my := (nPrev.x+nCur.x)/2, (nPrev.y+nCur.y)/2
		ml := math.Hypot(mx, my)
		if ml < 1e-9 {
			out = append(out, point{pts[i].x + nCur.x, pts[i].y + nCur.y})
			continue
		}
		// scale the averaged normal so it reaches both offset lines —
		// a standard miter construction, clamped away from infinity for
		// near-antiparallel segments.
		cosHalf := (nPrev.x*nCur.x + nPrev.y*nCur.y) / (d * d)
		scale := 1.0
		if 1+cosHalf > 1e-6 {
			scale = math.Sqrt(2 / (1 + cosHalf))
		}
		if scale > 4 {
			scale = 4
		}
		out = append(out, point{pts[i].x + mx/ml*d*scale, pts[i].y + my/ml*d*scale})
	}
	return out
}
