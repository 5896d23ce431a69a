package symbolizer

import (
	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/style"
	"github.com/cartograph/cartograph/vertex"
)

// renderDebug is spec.md §4.H's Debug row: no converter chain of its
// own, just a direct draw of either the label detector's collision
// boxes or the feature's own transformed vertices as small crosses,
// whichever the `mode` property selects.
func renderDebug(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	mode := stringProp(sym, "mode", attrs, "collision")
	color := colorProp(sym, "stroke", attrs, pixel.Color{R: 255, A: 255})

	switch mode {
	case "vertex":
		drawVertexCrosses(ctx, g, color)
	default:
		drawCollisionBoxes(ctx, color)
	}
}

// drawVertexCrosses plots a small "+" at every vertex of g after the map
// view transform, a raw visual aid for checking geometry placement.
func drawVertexCrosses(ctx *Context, g *geom.Geometry, color pixel.Color) {
	var s vertex.Stream = convert.NewAffine(g.Stream(), ctx.Affine)
	for {
		v := s.Vertex()
		if v.Cmd == vertex.End {
			return
		}
		if v.Cmd == vertex.MoveTo || v.Cmd == vertex.LineTo {
			plotCross(ctx, v.X, v.Y, color)
		}
	}
}

func plotCross(ctx *Context, x, y float64, color pixel.Color) {
	const arm = 3
	cx, cy := int(x), int(y)
	c := pixel.RGBA8(color.Premultiply())
	for i := -arm; i <= arm; i++ {
		setBlend(ctx, cx+i, cy, c)
		setBlend(ctx, cx, cy+i, c)
	}
}

func setBlend(ctx *Context, x, y int, c pixel.RGBA8) {
	ctx.Dst.Set(x, y, pixel.BlendPixel(ctx.Mode, c, ctx.Dst.At(x, y)))
}

// drawCollisionBoxes outlines every record currently held by the label
// detector — the bulk-loaded and loose records alike — as hollow
// rectangles, the usual "label collision debug" overlay.
func drawCollisionBoxes(ctx *Context, color pixel.Color) {
	if ctx.Detector == nil {
		return
	}
	c := pixel.RGBA8(color.Premultiply())
	for _, box := range ctx.Detector.Boxes() {
		outlineBox(ctx, box, c)
	}
}

func outlineBox(ctx *Context, box geom.Box, c pixel.RGBA8) {
	x0, y0 := int(box.MinX), int(box.MinY)
	x1, y1 := int(box.MaxX), int(box.MaxY)
	for x := x0; x <= x1; x++ {
		setBlend(ctx, x, y0, c)
		setBlend(ctx, x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		setBlend(ctx, x0, y, c)
		setBlend(ctx, x1, y, c)
	}
}
