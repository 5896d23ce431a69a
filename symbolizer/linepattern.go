package symbolizer

import (
	"math"

	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pattern"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/resample"
	"github.com/cartograph/cartograph/style"
	"github.com/cartograph/cartograph/vertex"
)

// renderLinePattern is spec.md §4.H's Line-pattern row: clip · transform
// · affine · simplify? · smooth?, then an image-pattern outline renderer
// stepping the pattern image along arc length. Grounded on
// marker.go's bitmap-marker path (stage into a small buffer, then
// src-over composite via resample.Warp) since both are "stamp a small
// raster image repeatedly along a transformed path" operations; here
// the stamps tile edge-to-edge along the tangent instead of being
// independently placed at label-search candidates.
func renderLinePattern(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	file := stringProp(sym, "file", attrs, "")
	if file == "" || ctx.Patterns == nil {
		return
	}
	src, ok := ctx.Patterns.Load(file)
	if !ok {
		return
	}
	pw, ph := src.Bounds()
	if pw == 0 || ph == 0 {
		return
	}

	s := vectorChain(ctx, sym, g, attrs, chainOptions{clip: true, simplify: true, smooth: true})
	verts := vertex.Collect(s)

	opacity := opacityProp(sym, "opacity", attrs)
	footprint := int(math.Ceil(math.Hypot(float64(pw), float64(ph)))) + 2
	staging := pixel.New[pixel.RGBA8](footprint, footprint)

	var startX, startY float64
	var have bool
	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			startX, startY = v.X, v.Y
			have = true
		case vertex.LineTo:
			if have {
				stampSegment(ctx, src, staging, footprint, startX, startY, v.X, v.Y, float64(pw), float64(ph), opacity)
			}
			startX, startY = v.X, v.Y
		case vertex.Close:
			// Closed rings are not line-pattern targets (spec.md §4.H's
			// Line-pattern row operates on polylines); nothing to stamp.
		}
	}
}

// stampSegment tiles src along segment (x0,y0)-(x1,y1) in steps of
// patternW, each stamp rotated to the segment's tangent and centered on
// the line (patternH spans across the line).
func stampSegment(ctx *Context, src *pattern.Source, staging *pixel.Buffer[pixel.RGBA8], footprint int, x0, y0, x1, y1, patternW, patternH, opacity float64) {
	segLen := math.Hypot(x1-x0, y1-y0)
	if segLen < 1e-9 {
		return
	}
	angle := math.Atan2(y1-y0, x1-x0)
	cosA, sinA := math.Cos(angle), math.Sin(angle)

	steps := int(math.Ceil(segLen / patternW))
	for i := 0; i < steps; i++ {
		d := float64(i) * patternW
		cx := x0 + cosA*d + cosA*patternW/2
		cy := y0 + sinA*d + sinA*patternW/2

		for y := 0; y < footprint; y++ {
			for x := 0; x < footprint; x++ {
				staging.Set(x, y, pixel.RGBA8{})
			}
		}

		srcToDst := resample.Affine{
			A: cosA, B: sinA,
			C: -sinA, D: cosA,
			E: float64(footprint) / 2, F: float64(footprint) / 2,
		}
		toCenter := resample.Affine{A: 1, D: 1, E: -patternW / 2, F: -patternH / 2}
		combined := composeResampleAffine(toCenter, srcToDst)
		resample.Warp(staging, patternSourceAdapter{src}, combined, resample.FilterBilinear, resample.NodataValue{})

		ox := int(math.Round(cx)) - footprint/2
		oy := int(math.Round(cy)) - footprint/2
		for y := 0; y < footprint; y++ {
			for x := 0; x < footprint; x++ {
				s := staging.At(x, y)
				if s.A == 0 {
					continue
				}
				s = scaleRGBA8Opacity(s, opacity)
				dx, dy := ox+x, oy+y
				ctx.Dst.Set(dx, dy, pixel.BlendPixel(ctx.Mode, s, ctx.Dst.At(dx, dy)))
			}
		}
	}
}

func scaleRGBA8Opacity(c pixel.RGBA8, opacity float64) pixel.RGBA8 {
	if opacity >= 1.0 {
		return c
	}
	if opacity <= 0 {
		return pixel.RGBA8{}
	}
	return pixel.RGBA8{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}

// patternSourceAdapter bridges a pattern.Source's unpremultiplied RGBA8
// accessor to resample.Source's contract, premultiplying each sample
// since resample.Warp's output feeds straight into a premultiplied
// staging buffer.
type patternSourceAdapter struct {
	src *pattern.Source
}

func (p patternSourceAdapter) Bounds() (int, int) { return p.src.Bounds() }

func (p patternSourceAdapter) At(x, y int) pixel.RGBA8 {
	c := p.src.At(x, y)
	premul := pixel.Color{R: c.R, G: c.G, B: c.B, A: c.A}.Premultiply()
	return pixel.RGBA8(premul)
}

// composeResampleAffine returns the transform that applies a then b.
func composeResampleAffine(a, b resample.Affine) resample.Affine {
	return resample.Affine{
		A: a.A*b.A + a.B*b.C,
		B: a.A*b.B + a.B*b.D,
		C: a.C*b.A + a.D*b.C,
		D: a.C*b.B + a.D*b.D,
		E: a.E*b.A + a.F*b.C + b.E,
		F: a.E*b.B + a.F*b.D + b.F,
	}
}
