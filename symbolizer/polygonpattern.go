package symbolizer

import (
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pattern"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/style"
)

// PatternSource resolves a symbolizer's `file` property to a decoded
// pattern image; render.New takes an implementation from its caller and
// hands it unchanged to every symbolizer Context (render keeps no image
// cache of its own).
type PatternSource interface {
	Load(file string) (*pattern.Source, bool)
}

// renderPolygonPattern is spec.md §4.H's Polygon-pattern row: the same
// clip·transform·affine·simplify?·smooth? chain as a plain Polygon, but
// the rasterizer's coverage mask is painted from a repeat-wrapped
// pattern image offset from the feature's origin rather than a solid
// color.
func renderPolygonPattern(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	file := stringProp(sym, "file", attrs, "")
	if file == "" || ctx.Patterns == nil {
		return
	}
	src, ok := ctx.Patterns.Load(file)
	if !ok {
		return
	}

	s := vectorChain(ctx, sym, g, attrs, chainOptions{clip: true, simplify: true, smooth: true})
	r := raster.New(ctx.Dst.Width(), ctx.Dst.Height())
	r.AddStream(s)
	mask := r.Mask(raster.FillRuleEvenOdd, ctx.Gamma)

	// Feature origin: the transformed geometry's own bounding-box
	// top-left, so the pattern tiles consistently relative to the
	// feature rather than the page (spec.md §4.H "offset from feature
	// origin").
	bbox := g.Bounds()
	ox, oy := ctx.Affine.Apply(bbox.MinX, bbox.MinY)
	originX, originY := int(ox), int(oy)

	pw, ph := src.Bounds()
	if pw == 0 || ph == 0 {
		return
	}

	opacity := opacityProp(sym, "fill-opacity", attrs)

	w, h := ctx.Dst.Width(), ctx.Dst.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cov := mask.At(x, y).Y
			if cov == 0 {
				continue
			}
			sx := (x - originX) % pw
			if sx < 0 {
				sx += pw
			}
			sy := (y - originY) % ph
			if sy < 0 {
				sy += ph
			}
			c := src.At(sx, sy)
			premul := pixel.Color{R: c.R, G: c.G, B: c.B, A: c.A}.Premultiply()
			alpha := float64(cov) / 255.0 * opacity
			scaled := scaleColorOpacity(premul, alpha)
			if scaled.A == 0 {
				continue
			}
			dst := ctx.Dst.At(x, y)
			ctx.Dst.Set(x, y, pixel.BlendPixel(ctx.Mode, pixel.RGBA8(scaled), dst))
		}
	}
}
