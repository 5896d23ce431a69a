package symbolizer

import (
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/style"
)

// renderLine is spec.md §4.H's Line row: clip? · transform · affine ·
// simplify? · smooth? · offset? · dash? · stroke, filled with a
// non-zero rule (the stroke converter already emits a closed outline
// polygon, so non-zero correctly unions overlapping dash segments).
func renderLine(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	strokeColor := colorProp(sym, "stroke", attrs, pixelGray)
	opacity := opacityProp(sym, "stroke-opacity", attrs)
	strokeColor = scaleColorOpacity(strokeColor, opacity)
	if strokeColor.A == 0 {
		return
	}

	s := vectorChain(ctx, sym, g, attrs, chainOptions{clip: true, simplify: true, smooth: true})
	outline := dashedStroke(ctx, sym, s, attrs)
	fillRaster(ctx, outline, raster.FillRuleNonZero, strokeColor)
}
