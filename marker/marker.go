// Package marker renders point symbols (spec.md §4.F "Marker and SVG
// renderer"): a vector marker is a small geom.Geometry styled with
// fill/stroke/gradient and driven through the same convert chain and
// raster.Rasterizer as any polygon/line symbolizer; a bitmap marker is
// an RGBA8 image composited through resample.Warp's scale+rotate affine.
// Grounded on gogpu-gg's path/fill/stroke pipeline (the same converter
// stack convert/ already adapts) for the vector half, and on
// internal/image/interp.go's sampling idiom (now resample.Warp) for the
// bitmap half.
package marker

import (
	"math"

	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/resample"
	"github.com/cartograph/cartograph/vertex"
)

// Symbol is a point-placed marker: either a vector shape or a bitmap
// image, never both (spec.md §3 "Marker symbol").
type Symbol struct {
	// Vector path, nil for a bitmap marker.
	Path *geom.Geometry

	// Fill is resolved to a flat premultiplied color before Render is
	// called; a Gradient samples one color per feature (e.g. off an
	// attribute value), it does not paint per-pixel inside one marker.
	Fill        pixel.Color
	Stroke      pixel.Color
	StrokeWidth float64
	HasStroke   bool

	// Bitmap, nil for a vector marker.
	Bitmap resample.Source

	// Width/Height are the marker's natural size in pixels before
	// Transform is applied (spec.md §6 "marker-width"/"marker-height").
	Width, Height float64
}

// Placement positions one Symbol instance: translation, rotation
// (radians), and a uniform scale on top of the symbol's natural size.
type Placement struct {
	X, Y     float64
	Rotation float64
	Scale    float64
}

// Render draws sym at placement into dst (spec.md §4.F: "Bitmap markers
// are composited with the scale+rotate transform through 4.E"; vector
// markers run through convert's affine and flatten stages, plus stroke
// when the symbol has one, and the same rasterizer; no clip stage).
func Render(dst *pixel.Buffer[pixel.RGBA8], sym Symbol, p Placement, mode pixel.Mode) {
	if sym.Path != nil {
		renderVector(dst, sym, p, mode)
		return
	}
	if sym.Bitmap != nil {
		renderBitmap(dst, sym, p)
	}
}

func renderVector(dst *pixel.Buffer[pixel.RGBA8], sym Symbol, p Placement, mode pixel.Mode) {
	center := convert.Translate(-sym.Width/2, -sym.Height/2)
	scale := convert.ScaleMatrix(p.Scale, p.Scale)
	rotate := convert.Rotate(p.Rotation)
	translate := convert.Translate(p.X, p.Y)
	m := center.Multiply(scale).Multiply(rotate).Multiply(translate)

	w, h := dst.Width(), dst.Height()

	if sym.Fill.A > 0 {
		stream := sym.Path.Stream()
		affine := convert.NewAffine(stream, m)
		flat := convert.NewFlatten(affine, 0.25)
		r := raster.New(w, h)
		r.AddStream(flat)
		fillColor := sym.Fill
		r.Fill(dst, raster.FillRuleEvenOdd, raster.LinearGamma, fillColor, mode)
	}

	if sym.HasStroke && sym.StrokeWidth > 0 {
		stream := sym.Path.Stream()
		affine := convert.NewAffine(stream, m)
		flat := convert.NewFlatten(affine, 0.25)
		stroked := convert.NewStroke(flat, convert.StrokeStyle{
			Width: sym.StrokeWidth * p.Scale,
			Cap:   convert.CapButt,
			Join:  convert.JoinMiter,
		}, 0.25)
		r := raster.New(w, h)
		r.AddVertices(vertex.Collect(stroked))
		r.Fill(dst, raster.FillRuleNonZero, raster.LinearGamma, sym.Stroke, mode)
	}
}

// renderBitmap warps sym.Bitmap into a small staging buffer sized to its
// rotated+scaled footprint, then src-over composites that staging buffer
// onto dst at p's placement — resample.Warp itself always fills its
// entire destination buffer (the contract raster symbolizers want for a
// full-extent raster tile), so a marker, which must blend onto existing
// map content rather than overwrite it, stages first.
func renderBitmap(dst *pixel.Buffer[pixel.RGBA8], sym Symbol, p Placement) {
	sw, sh := sym.Bitmap.Bounds()
	if sw == 0 || sh == 0 {
		return
	}

	outW := int(math.Ceil(sym.Width * p.Scale))
	outH := int(math.Ceil(sym.Height * p.Scale))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	footprint := int(math.Ceil(math.Hypot(float64(outW), float64(outH)))) + 2

	staging := pixel.New[pixel.RGBA8](footprint, footprint)

	sx := (sym.Width * p.Scale) / float64(sw)
	sy := (sym.Height * p.Scale) / float64(sh)
	cosR, sinR := math.Cos(p.Rotation), math.Sin(p.Rotation)

	// srcToDst maps a source-image pixel, centered on the source image's
	// own midpoint, through scale+rotate into the staging buffer's
	// center (spec.md §4.F "the scale+rotate transform").
	srcToDst := resample.Affine{
		A: sx * cosR, B: sx * sinR,
		C: -sy * sinR, D: sy * cosR,
		E: float64(footprint) / 2, F: float64(footprint) / 2,
	}
	toCenter := resample.Affine{A: 1, D: 1, E: -float64(sw) / 2, F: -float64(sh) / 2}
	combined := composeAffine(toCenter, srcToDst)

	nodata := resample.NodataValue{} // unset: edge-clone only within the footprint canvas itself
	resample.Warp(staging, sym.Bitmap, combined, resample.FilterBilinear, nodata)

	ox := int(math.Round(p.X)) - footprint/2
	oy := int(math.Round(p.Y)) - footprint/2
	for y := 0; y < footprint; y++ {
		for x := 0; x < footprint; x++ {
			src := staging.At(x, y)
			if src.A == 0 {
				continue
			}
			dx, dy := ox+x, oy+y
			dst.Set(dx, dy, pixel.BlendPixel(pixel.SrcOver, src, dst.At(dx, dy)))
		}
	}
}

// composeAffine returns the transform that applies a then b.
func composeAffine(a, b resample.Affine) resample.Affine {
	return resample.Affine{
		A: a.A*b.A + a.B*b.C,
		B: a.A*b.B + a.B*b.D,
		C: a.C*b.A + a.D*b.C,
		D: a.C*b.B + a.D*b.D,
		E: a.E*b.A + a.F*b.C + b.E,
		F: a.E*b.B + a.F*b.D + b.F,
	}
}
