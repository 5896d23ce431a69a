package symbolizer

import (
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/label"
	"github.com/cartograph/cartograph/marker"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/style"
)

// renderText implements spec.md §4.H's Text/Shield row: no converter
// chain (no clip, simplify or smooth — glyph placement needs the raw
// geometry's vertices, not a decimated approximation); 4.G searches the
// raw geometry and each candidate is projected through ctx.Affine into a
// glyph-line origin, 4.A blits the shaped run, and — for shield — 4.F
// renders a marker centered behind the text first. Both rows share this
// function; shield differs only in the marker background, whose
// footprint is folded into the collision box (spec.md: "Text/Shield ...
// shield marker via 4.F").
func renderText(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any, shield bool) {
	text := stringProp(sym, "text-name", attrs, "")
	if text == "" || ctx.Fonts == nil {
		return
	}

	faceKey := stringProp(sym, "face-name", attrs, "default")
	size := floatProp(sym, "size", attrs, 10)
	fill := colorProp(sym, "fill", attrs, pixel.Color{A: 255})
	fill = scaleColorOpacity(fill, opacityProp(sym, "text-opacity", attrs))

	haloFill := colorProp(sym, "halo-fill", attrs, pixel.Color{R: 255, G: 255, B: 255, A: 255})
	haloRadius := int(floatProp(sym, "halo-radius", attrs, 0))

	dx := floatProp(sym, "dx", attrs, 0)
	dy := floatProp(sym, "dy", attrs, 0)

	placementMode := toPlacementMode(placementProp(sym, attrs))
	spacing := floatProp(sym, "spacing", attrs, 100)
	maxError := floatProp(sym, "max-error", attrs, spacing)
	allowOverlap := boolProp(sym, "allow-overlap", attrs, false)

	key := text
	margin := floatProp(sym, "margin", attrs, 2)

	glyphs, ok := ctx.Fonts.Shape(text, faceKey, size)
	if !ok || len(glyphs) == 0 {
		return
	}
	runLen := glyphRunLength(glyphs)

	candidates := searchPlacements(placementMode, g, label.Params{
		Spacing:  spacing,
		MaxError: maxError,
	})

	var sMarker marker.Symbol
	haveMarker := false
	if shield {
		if file := stringProp(sym, "file", attrs, ""); file != "" && ctx.Markers != nil {
			if loaded, ok := ctx.Markers.Load(file); ok {
				sMarker = loaded
				haveMarker = true
			}
		}
	}

	for _, c := range candidates {
		px, py := ctx.Affine.Apply(c.X, c.Y)
		originX := px - runLen/2 + dx
		originY := py + dy

		box := geom.Box{MinX: originX, MinY: originY - size, MaxX: originX + runLen, MaxY: originY}
		if haveMarker {
			box = geom.Box{
				MinX: minF(box.MinX, px-sMarker.Width/2),
				MinY: minF(box.MinY, py-sMarker.Height/2),
				MaxX: maxF(box.MaxX, px+sMarker.Width/2),
				MaxY: maxF(box.MaxY, py+sMarker.Height/2),
			}
		}

		if !allowOverlap && ctx.Detector != nil {
			if ctx.Detector.HasPlacement(box, key, margin, 0) {
				continue
			}
		}

		if haveMarker {
			marker.Render(ctx.Dst, sMarker, marker.Placement{X: px, Y: py, Rotation: c.Angle, Scale: 1.0}, ctx.Mode)
		}

		blitGlyphRun(ctx, glyphs, faceKey, size, originX, originY, fill, haloFill, haloRadius)

		if ctx.Detector != nil {
			ctx.Detector.Insert(label.Record{Box: box, Key: key, Margin: margin})
		}
	}
}

// glyphRunLength sums a shaped run's pen advance — its on-screen width
// at size px, used to center the run on its placement candidate.
func glyphRunLength(glyphs []ShapedGlyph) float64 {
	var total float64
	for _, gl := range glyphs {
		total += gl.XAdvance
	}
	return total
}

// blitGlyphRun walks glyphs left to right from (originX, originY),
// rasterizing each one's coverage mask via ctx.Fonts.Bitmap and
// compositing halo-then-fill, mirroring spec.md §4.A's composite
// primitive applied per glyph.
func blitGlyphRun(ctx *Context, glyphs []ShapedGlyph, faceKey string, size, originX, originY float64, fill, halo pixel.Color, haloRadius int) {
	pen := originX
	for _, gl := range glyphs {
		img, ok := ctx.Fonts.Bitmap(faceKey, gl.Codepoint, size)
		if ok {
			blitGlyphImage(ctx, img, pen, originY, fill, halo, haloRadius)
		}
		pen += gl.XAdvance
	}
}

// blitGlyphImage composites one glyph's coverage mask, first the halo
// (if haloRadius > 0) dilated by sampling a (2r+1) neighborhood max, then
// the fill on top — matching Mapnik's halo-under-fill text rendering.
func blitGlyphImage(ctx *Context, img GlyphImage, originX, originY float64, fill, halo pixel.Color, haloRadius int) {
	if img.Width == 0 || img.Rows == 0 || len(img.Buffer) == 0 {
		return
	}
	baseX := int(originX) + img.Left
	baseY := int(originY) - img.Rows + img.Top

	if haloRadius > 0 {
		for y := 0; y < img.Rows; y++ {
			for x := 0; x < img.Width; x++ {
				cov := haloCoverage(img, x, y, haloRadius)
				if cov == 0 {
					continue
				}
				blendGlyphPixel(ctx, baseX+x, baseY+y, halo, cov)
			}
		}
	}

	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Width; x++ {
			cov := img.Buffer[y*img.Pitch+x]
			if cov == 0 {
				continue
			}
			blendGlyphPixel(ctx, baseX+x, baseY+y, fill, cov)
		}
	}
}

func haloCoverage(img GlyphImage, x, y, radius int) byte {
	var max byte
	for oy := -radius; oy <= radius; oy++ {
		ny := y + oy
		if ny < 0 || ny >= img.Rows {
			continue
		}
		for ox := -radius; ox <= radius; ox++ {
			nx := x + ox
			if nx < 0 || nx >= img.Width {
				continue
			}
			if c := img.Buffer[ny*img.Pitch+nx]; c > max {
				max = c
			}
		}
	}
	return max
}

func blendGlyphPixel(ctx *Context, x, y int, color pixel.Color, coverage byte) {
	a := float64(color.A) * (float64(coverage) / 255.0)
	src := pixel.Color{R: color.R, G: color.G, B: color.B, A: uint8(a + 0.5)}.Premultiply()
	dst := ctx.Dst.At(x, y)
	ctx.Dst.Set(x, y, pixel.BlendPixel(ctx.Mode, pixel.RGBA8(src), dst))
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
