package symbolizer

import (
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/style"
)

// renderPolygon is spec.md §4.H's Polygon row: clip? · transform ·
// affine · simplify? · smooth?, filled with an even-odd rule.
func renderPolygon(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	fill := colorProp(sym, "fill", attrs, pixelGray)
	opacity := opacityProp(sym, "fill-opacity", attrs)
	fill = scaleColorOpacity(fill, opacity)
	if fill.A == 0 {
		return
	}

	s := vectorChain(ctx, sym, g, attrs, chainOptions{clip: true, simplify: true, smooth: true})
	fillRaster(ctx, s, raster.FillRuleEvenOdd, fill)
}
