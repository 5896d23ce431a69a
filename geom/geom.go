// Package geom implements cartograph's geometry data model: a tagged
// union over Point, MultiPoint, LineString, MultiLineString, Polygon
// (exterior + holes), MultiPolygon, and Collection (spec.md §3), each
// able to yield a vertex.Stream. Grounded on the teacher's path.go
// constructors (Rectangle/Circle/Ellipse/Arc), generalized from an
// imperative path builder into a static tagged union.
package geom

import (
	"math"

	"github.com/cartograph/cartograph/vertex"
)

// Kind discriminates the Geometry tagged union.
type Kind uint8

const (
	KindPoint Kind = iota
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
	KindCollection
)

// Point is a single coordinate pair.
type Point struct{ X, Y float64 }

// Ring is a closed sequence of points (exterior or hole of a Polygon).
type Ring []Point

// Polygon is an exterior ring plus zero or more hole rings.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether b has never been extended (no geometry seen).
func (b Box) Empty() bool { return b.MinX > b.MaxX }

// Union returns the smallest Box containing both b and o.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Box{
		MinX: math.Min(b.MinX, o.MinX), MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX), MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Intersects reports whether b and o overlap (touching counts).
func (b Box) Intersects(o Box) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// Expand returns b grown by margin on every side.
func (b Box) Expand(margin float64) Box {
	return Box{b.MinX - margin, b.MinY - margin, b.MaxX + margin, b.MaxY + margin}
}

// emptyBox is the identity element for Union — MinX > MaxX marks "empty".
var emptyBox = Box{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}

// Geometry is the tagged-union geometry value. Exactly one of the Point*/
// Lines/Polygons/Collection fields is meaningful, selected by Kind.
// Bounding box is cached lazily on first call to Bounds.
type Geometry struct {
	Kind        Kind
	Points      []Point   // KindPoint (len 1) / KindMultiPoint
	Lines       []Ring    // KindLineString (len 1) / KindMultiLineString
	Polygons    []Polygon // KindPolygon (len 1) / KindMultiPolygon
	Collection  []Geometry

	bbox    Box
	bboxSet bool
}

func NewPoint(x, y float64) Geometry {
	return Geometry{Kind: KindPoint, Points: []Point{{x, y}}}
}

func NewMultiPoint(pts []Point) Geometry {
	return Geometry{Kind: KindMultiPoint, Points: pts}
}

func NewLineString(pts []Point) Geometry {
	return Geometry{Kind: KindLineString, Lines: []Ring{pts}}
}

func NewMultiLineString(lines []Ring) Geometry {
	return Geometry{Kind: KindMultiLineString, Lines: lines}
}

func NewPolygon(p Polygon) Geometry {
	return Geometry{Kind: KindPolygon, Polygons: []Polygon{p}}
}

func NewMultiPolygon(ps []Polygon) Geometry {
	return Geometry{Kind: KindMultiPolygon, Polygons: ps}
}

func NewCollection(gs []Geometry) Geometry {
	return Geometry{Kind: KindCollection, Collection: gs}
}

// Bounds returns the geometry's bounding box, computing and caching it on
// first use.
func (g *Geometry) Bounds() Box {
	if g.bboxSet {
		return g.bbox
	}
	b := emptyBox
	for _, p := range g.Points {
		b = b.Union(Box{p.X, p.Y, p.X, p.Y})
	}
	for _, ring := range g.Lines {
		for _, p := range ring {
			b = b.Union(Box{p.X, p.Y, p.X, p.Y})
		}
	}
	for _, poly := range g.Polygons {
		for _, p := range poly.Exterior {
			b = b.Union(Box{p.X, p.Y, p.X, p.Y})
		}
	}
	for i := range g.Collection {
		b = b.Union(g.Collection[i].Bounds())
	}
	g.bbox = b
	g.bboxSet = true
	return b
}

// Stream builds a vertex.Stream traversing the geometry: a MoveTo at
// each subpath start, LineTo thereafter, Close for polygon rings, End at
// the finish (spec.md §4.B).
func (g *Geometry) Stream() vertex.Stream {
	var b vertex.Builder
	switch g.Kind {
	case KindPoint, KindMultiPoint:
		for _, p := range g.Points {
			b.MoveTo(p.X, p.Y)
		}
	case KindLineString, KindMultiLineString:
		for _, ring := range g.Lines {
			emitRing(&b, ring, false)
		}
	case KindPolygon, KindMultiPolygon:
		for _, poly := range g.Polygons {
			emitRing(&b, poly.Exterior, true)
			for _, hole := range poly.Holes {
				emitRing(&b, hole, true)
			}
		}
	case KindCollection:
		for i := range g.Collection {
			b.Append(vertex.Collect(g.Collection[i].Stream())...)
		}
	}
	return b.Build()
}

func emitRing(b *vertex.Builder, ring Ring, closed bool) {
	if len(ring) == 0 {
		return
	}
	b.MoveTo(ring[0].X, ring[0].Y)
	for _, p := range ring[1:] {
		b.LineTo(p.X, p.Y)
	}
	if closed {
		b.Close()
	}
}

// Rectangle returns an axis-aligned rectangle polygon.
func Rectangle(x, y, w, h float64) Geometry {
	return NewPolygon(Polygon{Exterior: Ring{
		{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h},
	}})
}
