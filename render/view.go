// Package render implements component I (spec.md §4.I "Feature/style
// processor"): the outer loop driving layers, styles, rules, and
// features through symbolizer.Dispatch into a destination buffer.
package render

import (
	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/datasource"
)

// View is the caller-supplied mapping from a render pass's geographic
// extent to its destination buffer — analogous to Mapnik's own
// map.zoom_to_box() call, kept outside style.Map itself since spec.md's
// Map is purely the style dictionary root (layers + named style
// dictionary), not a viewport.
type View struct {
	// Extent is the visible geographic bounding box.
	Extent datasource.Box2D

	// Affine maps extent coordinates to destination-buffer pixels
	// (spec.md §4.C item 3: "extent x screen-size composed with
	// scale-factor").
	Affine convert.Matrix

	// ScaleFactor multiplies stroke widths and marker transforms
	// (spec.md §4.C item 8, §4.F item 2).
	ScaleFactor float64

	// FlattenTolerance is the curve-flattening tolerance in
	// destination-buffer pixels (spec.md §4.C item 5).
	FlattenTolerance float64
}

// clipBox derives the symbolizer-level clip rectangle from the view
// extent, in the same coordinate space geometry is clipped in — after
// the affine transform, so destination-buffer pixel space.
func (v View) clipBox() convert.ClipBox {
	x0, y0 := v.Affine.Apply(v.Extent.MinX, v.Extent.MinY)
	x1, y1 := v.Affine.Apply(v.Extent.MaxX, v.Extent.MaxY)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return convert.ClipBox{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
}

// paddedQuery returns the datasource query extent: the view extent
// padded by bufferSizePx destination-buffer pixels, converted to extent
// units through the affine's inverse (spec.md §4.I item 1: "viewport ∩
// layer maximum-extent, padded by buffer-size").
func (v View) paddedQuery(bufferSizePx float64) datasource.Box2D {
	if bufferSizePx <= 0 {
		return v.Extent
	}
	inv := v.Affine.Invert()
	padX, padY := inv.ApplyVector(bufferSizePx, bufferSizePx)
	padX, padY = absF(padX), absF(padY)
	return datasource.Box2D{
		MinX: v.Extent.MinX - padX,
		MinY: v.Extent.MinY - padY,
		MaxX: v.Extent.MaxX + padX,
		MaxY: v.Extent.MaxY + padY,
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// boxesIntersect reports whether a and b overlap (spec.md §4.I: "whose
// declared extent intersects the viewport").
func boxesIntersect(a, b datasource.Box2D) bool {
	return !(a.MaxX < b.MinX || a.MinX > b.MaxX || a.MaxY < b.MinY || a.MinY > b.MaxY)
}
