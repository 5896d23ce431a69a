package pixel

import (
	"github.com/cartograph/cartograph/internal/blend"
	"github.com/cartograph/cartograph/mcerrors"
)

// Mode is the blend-mode enum named in spec.md §4.A, re-exported from
// internal/blend so callers never import the internal package directly.
type Mode = blend.BlendMode

// The full spec.md §4.A enum, aliased onto internal/blend's constants
// (Porter-Duff + advanced separable + non-separable + cartograph's own
// minus/contrast/invert/grain/linear-dodge/linear-burn/divide additions).
const (
	Clear           = blend.BlendClear
	Src             = blend.BlendSource
	Dst             = blend.BlendDestination
	SrcOver         = blend.BlendSourceOver
	DstOver         = blend.BlendDestinationOver
	SrcIn           = blend.BlendSourceIn
	DstIn           = blend.BlendDestinationIn
	SrcOut          = blend.BlendSourceOut
	DstOut          = blend.BlendDestinationOut
	SrcAtop         = blend.BlendSourceAtop
	DstAtop         = blend.BlendDestinationAtop
	Xor             = blend.BlendXor
	Plus            = blend.BlendPlus
	Minus           = blend.BlendMinus
	Multiply        = blend.BlendMultiply
	Screen          = blend.BlendScreen
	Overlay         = blend.BlendOverlay
	Darken          = blend.BlendDarken
	Lighten         = blend.BlendLighten
	ColorDodge      = blend.BlendColorDodge
	ColorBurn       = blend.BlendColorBurn
	HardLight       = blend.BlendHardLight
	SoftLight       = blend.BlendSoftLight
	Difference      = blend.BlendDifference
	Exclusion       = blend.BlendExclusion
	Contrast        = blend.BlendContrast
	Invert          = blend.BlendInvert
	InvertRGB       = blend.BlendInvertRGB
	GrainMerge      = blend.BlendGrainMerge
	GrainExtract    = blend.BlendGrainExtract
	Hue             = blend.BlendHue
	Saturation      = blend.BlendSaturation
	ColorMode       = blend.BlendColor
	Value           = blend.BlendLuminosity // spec.md names the HSL-space mode "value"
	LinearDodge     = blend.BlendLinearDodge
	LinearBurn      = blend.BlendLinearBurn
	Divide          = blend.BlendDivide
)

// Fill writes c to every pixel of b. Precondition: b's existing contents
// (and c) must agree on the premultiplied flag the caller is tracking —
// cartograph buffers are premultiplied end to end, so c must already be
// premultiplied.
func Fill(b *Buffer[RGBA8], c Color) {
	mustPremultiplied("pixel.Fill", c)
	p := RGBA8(c)
	for y := 0; y < b.height; y++ {
		FillSpan(b, 0, b.width, y, p)
	}
}

// Composite blends src onto dst at integer offset (dx, dy) using mode and
// opacity, clipped to dst's rectangle. Both buffers must already be
// premultiplied.
func Composite(dst, src *Buffer[RGBA8], mode Mode, opacity float64, dx, dy int) {
	if opacity <= 0 {
		return
	}
	fn := blend.GetBlendFuncExt(mode)
	x0, y0 := dx, dy
	x1, y1 := dx+src.width, dy+src.height
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > dst.width {
		x1 = dst.width
	}
	if y1 > dst.height {
		y1 = dst.height
	}
	for y := y0; y < y1; y++ {
		sy := y - dy
		for x := x0; x < x1; x++ {
			sx := x - dx
			sp := src.At(sx, sy)
			if opacity < 1 {
				sp = RGBA8{
					R: scale(sp.R, opacity),
					G: scale(sp.G, opacity),
					B: scale(sp.B, opacity),
					A: scale(sp.A, opacity),
				}
			}
			dp := dst.At(x, y)
			r, g, b, a := fn(sp.R, sp.G, sp.B, sp.A, dp.R, dp.G, dp.B, dp.A)
			dst.Set(x, y, RGBA8{r, g, b, a})
		}
	}
}

// BlendPixel composites one premultiplied src pixel onto one premultiplied
// dst pixel under mode, with no opacity scaling. Used by the rasterizer
// (package raster) to composite per-coverage-span fill/stroke color
// directly into a destination buffer without staging a full source buffer.
func BlendPixel(mode Mode, src, dst RGBA8) RGBA8 {
	fn := blend.GetBlendFuncExt(mode)
	r, g, b, a := fn(src.R, src.G, src.B, src.A, dst.R, dst.G, dst.B, dst.A)
	return RGBA8{r, g, b, a}
}

func scale(c uint8, opacity float64) uint8 {
	v := float64(c) * opacity
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v + 0.5)
}

// Premultiply rewrites every pixel of b in place to premultiplied form.
// Buffer has no premultiplied flag, so a second call rescales again.
func Premultiply(b *Buffer[RGBA8]) {
	for i, p := range b.pix {
		c := Color(p).Premultiply()
		b.pix[i] = RGBA8(c)
	}
}

// Demultiply rewrites every pixel of b in place to unpremultiplied form.
// Buffer has no premultiplied flag, so a second call rescales again. This is the only supported path to hand a buffer to an
// external PNG/JPEG/TIFF/WebP encoder (spec.md §6).
func Demultiply(b *Buffer[RGBA8]) {
	for i, p := range b.pix {
		c := Color(p).Unpremultiply()
		b.pix[i] = RGBA8(c)
	}
}

// MustSamePixelType is called at the few boundaries where two buffers of
// possibly-different instantiations meet (e.g. a raster symbolizer
// staging buffer). Go's type system already rejects any such mismatch at
// compile time for typed call sites; this exists for the dynamic
// dispatch path in symbolizer/raster.go where the concrete Buffer
// instantiation is only known at runtime.
func MustSamePixelType(got, want string) {
	if got != want {
		mcerrors.Panic("pixel.compatibility", nil)
	}
}
