package convert

import "github.com/cartograph/cartograph/vertex"

// ClipBox is the padded-viewport rectangle clipping is performed against.
type ClipBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Clip clips an input vertex stream against box: Liang-Barsky for open
// polylines (subpaths with no Close), Sutherland-Hodgman for closed
// polygon rings (subpaths terminated by Close). NewClip collects the whole
// input stream and clips it eagerly, so buffering grows with the input; it
// is not bounded to one segment per line or one ring per polygon.
type Clip struct {
	box ClipBox
	out []vertex.Vertex
	pos int
}

// NewClip collects in (spec.md's Stream contract permits this — clipping
// "need[s] random-ish access only over a small window") and produces the
// clipped stream eagerly.
func NewClip(in vertex.Stream, box ClipBox) *Clip {
	c := &Clip{box: box}
	c.out = clipAll(vertex.Collect(in), box)
	return c
}

func (c *Clip) Rewind(int) { c.pos = 0 }

func (c *Clip) Vertex() vertex.Vertex {
	if c.pos >= len(c.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := c.out[c.pos]
	c.pos++
	return v
}

func clipAll(verts []vertex.Vertex, box ClipBox) []vertex.Vertex {
	var out []vertex.Vertex
	var ring []point
	closed := false

	flush := func() {
		if len(ring) == 0 {
			return
		}
		if closed {
			out = append(out, emitPolygon(sutherlandHodgman(ring, box))...)
		} else {
			out = append(out, emitPolylines(liangBarskyPolyline(ring, box))...)
		}
		ring = nil
		closed = false
	}

	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			flush()
			ring = append(ring, point{v.X, v.Y})
		case vertex.LineTo, vertex.Curve3, vertex.Curve4:
			ring = append(ring, point{v.X, v.Y})
		case vertex.Close:
			closed = true
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

type point struct{ x, y float64 }

func emitPolygon(ring []point) []vertex.Vertex {
	if len(ring) == 0 {
		return nil
	}
	out := make([]vertex.Vertex, 0, len(ring)+1)
	out = append(out, vertex.Vertex{Cmd: vertex.MoveTo, X: ring[0].x, Y: ring[0].y})
	for _, p := range ring[1:] {
		out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
	}
	out = append(out, vertex.Vertex{Cmd: vertex.Close})
	return out
}

func emitPolylines(lines [][]point) []vertex.Vertex {
	var out []vertex.Vertex
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		out = append(out, vertex.Vertex{Cmd: vertex.MoveTo, X: line[0].x, Y: line[0].y})
		for _, p := range line[1:] {
			out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
		}
	}
	return out
}

// sutherlandHodgman clips a closed polygon ring against box, one edge of
// the clip rectangle at a time.
func sutherlandHodgman(ring []point, box ClipBox) []point {
	edges := []struct {
		inside func(p point) bool
		isect  func(a, b point) point
	}{
		{func(p point) bool { return p.x >= box.MinX }, func(a, b point) point { return xAt(a, b, box.MinX) }},
		{func(p point) bool { return p.x <= box.MaxX }, func(a, b point) point { return xAt(a, b, box.MaxX) }},
		{func(p point) bool { return p.y >= box.MinY }, func(a, b point) point { return yAt(a, b, box.MinY) }},
		{func(p point) bool { return p.y <= box.MaxY }, func(a, b point) point { return yAt(a, b, box.MaxY) }},
	}
	out := ring
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = nil
		for i := range in {
			cur := in[i]
			prev := in[(i-1+len(in))%len(in)]
			curIn := e.inside(cur)
			prevIn := e.inside(prev)
			switch {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn && !prevIn:
				out = append(out, e.isect(prev, cur), cur)
			case !curIn && prevIn:
				out = append(out, e.isect(prev, cur))
			}
		}
	}
	return out
}

func xAt(a, b point, x float64) point {
	t := (x - a.x) / (b.x - a.x)
	return point{x, a.y + t*(b.y-a.y)}
}

func yAt(a, b point, y float64) point {
	t := (y - a.y) / (b.y - a.y)
	return point{a.x + t*(b.x-a.x), y}
}

// liangBarskyPolyline clips an open polyline segment-by-segment against
// box, producing zero or more surviving sub-segments (a segment entirely
// outside yields none; a segment straddling the boundary is trimmed).
// A surviving piece that does not start where the previous one ended
// begins a new polyline.
func liangBarskyPolyline(pts []point, box ClipBox) [][]point {
	var lines [][]point
	var cur []point
	for i := 0; i+1 < len(pts); i++ {
		a, b, ok := liangBarsky(pts[i], pts[i+1], box)
		if !ok {
			if len(cur) > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			continue
		}
		if n := len(cur); n > 0 {
			if ex, ey := cur[n-1].x-a.x, cur[n-1].y-a.y; ex*ex+ey*ey > 1e-18 {
				lines = append(lines, cur)
				cur = nil
			}
		}
		if len(cur) == 0 {
			cur = append(cur, a)
		}
		cur = append(cur, b)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	if len(pts) == 1 {
		p := pts[0]
		if p.x >= box.MinX && p.x <= box.MaxX && p.y >= box.MinY && p.y <= box.MaxY {
			lines = append(lines, []point{p})
		}
	}
	return lines
}

// liangBarsky clips segment a-b against box, returning the trimmed
// segment and whether any part of it survives.
func liangBarsky(a, b point, box ClipBox) (point, point, bool) {
	dx, dy := b.x-a.x, b.y-a.y
	t0, t1 := 0.0, 1.0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a.x - box.MinX, box.MaxX - a.x, a.y - box.MinY, box.MaxY - a.y}
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return point{}, point{}, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return point{}, point{}, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return point{}, point{}, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return point{a.x + t0*dx, a.y + t0*dy}, point{a.x + t1*dx, a.y + t1*dy}, true
}
