// Package symbolizer implements component H (spec.md §4.H "Symbolizer
// dispatch"): for each symbolizer variant it selects the converter
// chain of component C and the coverage consumer that drives it home —
// a rasterizer fill, the label detector, the marker renderer, or the
// image resampler.
//
// Grounded on gogpu-gg's own per-primitive draw methods (FillPath/
// StrokePath and friends): the teacher already has one function per
// drawing operation feeding the same convert→raster pipeline this
// package generalizes to be driven by a style.Symbolizer instead of
// direct API calls. Dispatch is a plain type switch over
// style.SymbolizerKind (spec.md §9's visitor-over-tagged-union redesign
// note), not a Visit-method interface.
package symbolizer

import (
	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/datasource"
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/label"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/style"
	"github.com/cartograph/cartograph/vertex"
)

// Context bundles everything a symbolizer needs beyond the feature and
// its own properties: the destination buffer, the view transform, the
// label detector, and shared process-wide caches.
type Context struct {
	Dst *pixel.Buffer[pixel.RGBA8]

	// Affine is the map's view transform (extent x screen-size composed
	// with scale-factor, spec.md §4.C item 3).
	Affine convert.Matrix

	// ClipBox is the padded viewport used when a symbolizer's `clip`
	// property is set.
	ClipBox convert.ClipBox

	// ScaleFactor multiplies stroke widths and marker transforms
	// (spec.md §4.C item 8, §4.F item 2).
	ScaleFactor float64

	// FlattenTolerance is the curve-flattening tolerance in pixels,
	// typically derived from the current zoom (spec.md §4.C item 5).
	FlattenTolerance float64

	Gamma raster.Gamma
	Mode  pixel.Mode

	Detector *label.Detector
	Fonts    FontSource
	Patterns PatternSource
	Markers  MarkerSource

	Attrs map[string]any
}

// FontSource is the narrow font/shaping capability text/shield
// symbolizers need; kept as an interface here so symbolizer does not
// import font directly, mirroring spec.md §6's consumed-interface style
// for externally delegated concerns.
type FontSource interface {
	Shape(text string, faceKey string, size float64) ([]ShapedGlyph, bool)
	Bitmap(faceKey string, codepoint rune, size float64) (GlyphImage, bool)
}

// ShapedGlyph is the subset of font.Glyph text placement needs.
type ShapedGlyph struct {
	Codepoint rune
	XAdvance  float64
	YAdvance  float64
}

// GlyphImage is the subset of font.GlyphBitmap text blitting needs.
type GlyphImage struct {
	Width, Rows int
	Pitch       int
	Buffer      []byte
	Left, Top   int
}

// Dispatch renders one (feature, symbolizer) pair (spec.md §4.H). attrs
// is the feature's resolved attribute map, already projected to the
// style's attribute union by the caller (render.Processor).
func Dispatch(ctx *Context, sym style.Symbolizer, feat datasource.Feature, attrs map[string]any) {
	geometry, hasGeom := feat.Geometry()

	switch sym.Kind {
	case style.KindPolygon:
		if hasGeom {
			renderPolygon(ctx, sym, &geometry, attrs)
		}
	case style.KindLine:
		if hasGeom {
			renderLine(ctx, sym, &geometry, attrs)
		}
	case style.KindPolygonPattern:
		if hasGeom {
			renderPolygonPattern(ctx, sym, &geometry, attrs)
		}
	case style.KindLinePattern:
		if hasGeom {
			renderLinePattern(ctx, sym, &geometry, attrs)
		}
	case style.KindMarker, style.KindPoint:
		if hasGeom {
			renderMarker(ctx, sym, &geometry, attrs)
		}
	case style.KindRaster:
		if tile, ok := feat.Raster(); ok {
			renderRaster(ctx, sym, tile, attrs)
		}
	case style.KindText:
		if hasGeom {
			renderText(ctx, sym, &geometry, attrs, false)
		}
	case style.KindShield:
		if hasGeom {
			renderText(ctx, sym, &geometry, attrs, true)
		}
	case style.KindBuilding:
		if hasGeom {
			renderBuilding(ctx, sym, &geometry, attrs)
		}
	case style.KindDebug:
		if hasGeom {
			renderDebug(ctx, sym, &geometry, attrs)
		}
	case style.KindGroup:
		for _, child := range sym.Children {
			Dispatch(ctx, child, feat, attrs)
		}
	}
}

// chainOptions controls which optional converter stages vectorChain
// inserts, mirroring the per-symbolizer column of spec.md §4.H's table.
type chainOptions struct {
	clip     bool
	simplify bool
	smooth   bool
}

// vectorChain assembles the fixed-order 4.C prefix every vector
// symbolizer shares: clip? -> geometry transform (none: per-feature
// `transform` expressions are applied upstream by the caller onto g) ->
// affine (the map view transform) -> simplify? -> smooth? -> flatten.
// The result is curve-free and ready for raster.Rasterizer.AddStream or
// a further offset/dash/stroke stage.
func vectorChain(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any, opts chainOptions) vertex.Stream {
	var s vertex.Stream = g.Stream()

	if opts.clip && boolProp(sym, "clip", attrs, true) {
		s = convert.NewClip(s, ctx.ClipBox)
	}

	s = convert.NewAffine(s, ctx.Affine)

	if opts.simplify {
		if tol := floatProp(sym, "simplify-tolerance", attrs, 0); tol > 0 {
			s = convert.NewSimplify(s, tol)
		}
	}

	if opts.smooth {
		if value := floatProp(sym, "smooth", attrs, 0); value > 0 {
			algo := convert.SmoothBasic
			if stringProp(sym, "smooth-algorithm", attrs, "basic") == "adaptive" {
				algo = convert.SmoothAdaptive
			}
			s = convert.NewSmooth(s, value, algo)
		}
	}

	return convert.NewFlatten(s, ctx.FlattenTolerance)
}

// strokeStyleFor resolves a symbolizer's stroke-* properties into a
// convert.StrokeStyle, width already scaled by ScaleFactor (spec.md §4.C
// item 8: "Width is in pixels pre-scaled by scale_factor").
func strokeStyleFor(ctx *Context, sym style.Symbolizer, attrs map[string]any) convert.StrokeStyle {
	return convert.StrokeStyle{
		Width:      floatProp(sym, "stroke-width", attrs, 1.0) * ctx.ScaleFactor,
		Cap:        toLineCap(lineCapProp(sym, attrs)),
		Join:       toLineJoin(lineJoinProp(sym, attrs)),
		MiterLimit: floatProp(sym, "stroke-miterlimit", attrs, 4.0),
	}
}

func toLineCap(s string) convert.LineCap {
	switch s {
	case "round":
		return convert.CapRound
	case "square":
		return convert.CapSquare
	default:
		return convert.CapButt
	}
}

func toLineJoin(s string) convert.LineJoin {
	switch s {
	case "miter-revert":
		return convert.JoinMiterRevert
	case "round":
		return convert.JoinRound
	case "bevel":
		return convert.JoinBevel
	default:
		return convert.JoinMiter
	}
}

// dashedStroke applies an optional dash stage before stroking, per
// spec.md §4.H's Line row ("offset? · dash? · stroke").
func dashedStroke(ctx *Context, sym style.Symbolizer, s vertex.Stream, attrs map[string]any) vertex.Stream {
	if offsetD := floatProp(sym, "offset", attrs, 0); offsetD != 0 {
		s = convert.NewOffset(s, offsetD)
	}
	if dashes := dashArrayProp(sym, attrs); len(dashes) > 0 {
		s = convert.NewDash(s, toDashPattern(dashes))
	}
	return convert.NewStroke(s, strokeStyleFor(ctx, sym, attrs), ctx.FlattenTolerance)
}

func toDashPattern(pairs []float64) convert.DashPattern {
	return convert.DashPattern{Array: pairs}
}

// fillRaster rasterizes s under rule and composites color through mode
// into ctx.Dst — the shared tail of the Polygon/Line/vector-marker rows
// of spec.md §4.H's table.
func fillRaster(ctx *Context, s vertex.Stream, rule raster.FillRule, color pixel.Color) {
	if color.A == 0 {
		return
	}
	r := raster.New(ctx.Dst.Width(), ctx.Dst.Height())
	r.AddStream(s)
	r.Fill(ctx.Dst, rule, ctx.Gamma, color, ctx.Mode)
}
