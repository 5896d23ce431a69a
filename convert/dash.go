package convert

import (
	"math"

	"github.com/cartograph/cartograph/vertex"
)

// DashPattern is an ordered list of (dash, gap) lengths in pixels and a
// starting offset, matching the teacher's Dash{Array, Offset} descriptor
// (dash.go) — which the teacher declares but never walks. The walk
// implemented here is grounded on AGG's vcgen_dash algorithm
// (original_source/deps/agg/include/agg_vcgen_dash.h): state resets to
// Offset on every explicit MoveTo, and continues across a Close as part
// of the same arc-length walk (DESIGN.md Open Question 1).
type DashPattern struct {
	Array  []float64 // alternating dash, gap, dash, gap, ...
	Offset float64
}

// IsDashed reports whether the pattern produces any gaps at all.
func (d DashPattern) IsDashed() bool {
	if len(d.Array) == 0 {
		return false
	}
	for _, v := range effectiveArray(d.Array) {
		if v <= 0 {
			return false
		}
	}
	return len(effectiveArray(d.Array)) > 1
}

// patternLength sums one full period of the (possibly array-doubled)
// dash pattern.
func (d DashPattern) patternLength() float64 {
	total := 0.0
	for _, v := range effectiveArray(d.Array) {
		total += v
	}
	return total
}

// effectiveArray duplicates an odd-length array so it always alternates
// dash/gap/dash/gap, matching the teacher's Dash.effectiveArray.
func effectiveArray(arr []float64) []float64 {
	if len(arr)%2 == 1 {
		return append(append([]float64{}, arr...), arr...)
	}
	return arr
}

func (d DashPattern) normalizedOffset() float64 {
	length := d.patternLength()
	if length <= 0 {
		return 0
	}
	off := math.Mod(d.Offset, length)
	if off < 0 {
		off += length
	}
	return off
}

// Dash walks each subpath by arc length, emitting only the "on" dash
// segments as separate MoveTo/LineTo runs; gaps produce no vertices.
// NewDash collects the whole input stream and dashes it eagerly, so
// buffering grows with the input; it is not O(1) per segment.
type Dash struct {
	pattern DashPattern
	out     []vertex.Vertex
	pos     int
}

func NewDash(in vertex.Stream, pattern DashPattern) *Dash {
	d := &Dash{pattern: pattern}
	d.out = dashAll(vertex.Collect(in), pattern)
	return d
}

func (d *Dash) Rewind(int) { d.pos = 0 }

func (d *Dash) Vertex() vertex.Vertex {
	if d.pos >= len(d.out) {
		return vertex.Vertex{Cmd: vertex.End}
	}
	v := d.out[d.pos]
	d.pos++
	return v
}

func dashAll(verts []vertex.Vertex, pattern DashPattern) []vertex.Vertex {
	if !pattern.IsDashed() {
		return verts
	}
	arr := effectiveArray(pattern.Array)
	var out []vertex.Vertex
	var cur point
	var start point

	// walker state: index into arr and remaining length in the current
	// dash/gap element, reset at every MoveTo per the Close-aware policy.
	var idx int
	var remaining float64
	on := true
	var penDown bool

	resetWalk := func() {
		idx = 0
		remaining = arr[0]
		on = true
		off := pattern.normalizedOffset()
		for off > 0 {
			if off < remaining {
				remaining -= off
				break
			}
			off -= remaining
			idx = (idx + 1) % len(arr)
			remaining = arr[idx]
			on = !on
		}
	}

	emitMoveTo := func(p point) {
		out = append(out, vertex.Vertex{Cmd: vertex.MoveTo, X: p.x, Y: p.y})
		penDown = true
	}
	emitLineTo := func(p point) {
		out = append(out, vertex.Vertex{Cmd: vertex.LineTo, X: p.x, Y: p.y})
	}

	walkSegment := func(a, b point) {
		segLen := math.Hypot(b.x-a.x, b.y-a.y)
		if segLen == 0 {
			return
		}
		travelled := 0.0
		p := a
		for travelled < segLen {
			step := math.Min(remaining, segLen-travelled)
			t1 := (travelled + step) / segLen
			next := point{a.x + (b.x-a.x)*t1, a.y + (b.y-a.y)*t1}
			if on {
				if !penDown {
					emitMoveTo(p)
				}
				emitLineTo(next)
			} else {
				penDown = false
			}
			travelled += step
			remaining -= step
			p = next
			if remaining <= 1e-9 {
				idx = (idx + 1) % len(arr)
				remaining = arr[idx]
				on = !on
				penDown = penDown && on
			}
		}
	}

	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			cur = point{v.X, v.Y}
			start = cur
			penDown = false
			resetWalk()
		case vertex.LineTo:
			next := point{v.X, v.Y}
			walkSegment(cur, next)
			cur = next
		case vertex.Close:
			walkSegment(cur, start)
			cur = start
		case vertex.End:
			out = append(out, vertex.Vertex{Cmd: vertex.End})
		}
	}
	if len(out) == 0 || out[len(out)-1].Cmd != vertex.End {
		out = append(out, vertex.Vertex{Cmd: vertex.End})
	}
	return out
}
