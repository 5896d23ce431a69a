package symbolizer

import (
	"math"
	"sort"

	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/style"
	"github.com/cartograph/cartograph/vertex"
)

// isometricFactor mimics an isometric projection for the building
// symbolizer's extruded height (spec.md's Building-symbolizer
// algorithmic detail: "Height uses a fixed aspect factor (0.7071)").
// Not parameterized per spec.md §9's Open Questions, which says to
// retain the value as-is.
const isometricFactor = 0.7071

// renderBuilding is spec.md's Building-symbolizer algorithm: split the
// exterior ring into segments, sort by min-Y descending, extrude each
// into a face quad darkened to 0.8·rgb, stroke the vertical edges at the
// same darkened color, then fill the roof (ring shifted +h) at the
// nominal color.
func renderBuilding(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	if g.Kind != geom.KindPolygon && g.Kind != geom.KindMultiPolygon {
		return
	}
	if len(g.Polygons) == 0 {
		return
	}

	fill := colorProp(sym, "fill", attrs, pixelGray)
	opacity := opacityProp(sym, "fill-opacity", attrs)
	fill = scaleColorOpacity(fill, opacity)
	if fill.A == 0 {
		return
	}
	heightPx := floatProp(sym, "height", attrs, 0) * isometricFactor
	if heightPx <= 0 {
		renderPolygon(ctx, sym, g, attrs)
		return
	}

	darkened := pixel.Color{
		R: uint8(float64(fill.R) * 0.8),
		G: uint8(float64(fill.G) * 0.8),
		B: uint8(float64(fill.B) * 0.8),
		A: fill.A,
	}

	for _, poly := range g.Polygons {
		ring := transformRing(ctx, poly.Exterior)
		if len(ring) < 2 {
			continue
		}

		type segment struct{ x0, y0, x1, y1 float64 }
		segs := make([]segment, 0, len(ring))
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			segs = append(segs, segment{a.x, a.y, b.x, b.y})
		}
		sort.SliceStable(segs, func(i, j int) bool {
			return math.Min(segs[i].y0, segs[i].y1) > math.Min(segs[j].y0, segs[j].y1)
		})

		for _, seg := range segs {
			var b vertex.Builder
			b.MoveTo(seg.x0, seg.y0)
			b.LineTo(seg.x1, seg.y1)
			b.LineTo(seg.x1, seg.y1+heightPx)
			b.LineTo(seg.x0, seg.y0+heightPx)
			b.Close()

			r := raster.New(ctx.Dst.Width(), ctx.Dst.Height())
			r.AddStream(b.Build())
			r.Fill(ctx.Dst, raster.FillRuleEvenOdd, ctx.Gamma, darkened, ctx.Mode)

			var edges vertex.Builder
			edges.MoveTo(seg.x0, seg.y0)
			edges.LineTo(seg.x0, seg.y0+heightPx)
			edges.MoveTo(seg.x1, seg.y1)
			edges.LineTo(seg.x1, seg.y1+heightPx)

			edgeRaster := raster.New(ctx.Dst.Width(), ctx.Dst.Height())
			stroked := convert.NewStroke(edges.Build(), convert.StrokeStyle{Width: 1.0 * ctx.ScaleFactor, Cap: convert.CapButt, Join: convert.JoinMiter}, ctx.FlattenTolerance)
			edgeRaster.AddStream(stroked)
			edgeRaster.Fill(ctx.Dst, raster.FillRuleNonZero, ctx.Gamma, darkened, ctx.Mode)
		}

		var roof vertex.Builder
		for i, p := range ring {
			if i == 0 {
				roof.MoveTo(p.x, p.y+heightPx)
			} else {
				roof.LineTo(p.x, p.y+heightPx)
			}
		}
		roof.Close()

		roofRaster := raster.New(ctx.Dst.Width(), ctx.Dst.Height())
		roofRaster.AddStream(roof.Build())
		roofRaster.Fill(ctx.Dst, raster.FillRuleEvenOdd, ctx.Gamma, fill, ctx.Mode)
	}
}

type screenPoint struct{ x, y float64 }

// transformRing applies ctx.Affine to a polygon ring, producing screen
// coordinates the building extrusion operates in directly (the building
// algorithm needs vertex-level access the generic vectorChain pipeline
// doesn't expose, so it applies the affine itself rather than routing
// through vectorChain).
func transformRing(ctx *Context, ring geom.Ring) []screenPoint {
	out := make([]screenPoint, len(ring))
	for i, p := range ring {
		x, y := ctx.Affine.Apply(p.X, p.Y)
		out[i] = screenPoint{x, y}
	}
	return out
}
