// Package pixel implements cartograph's typed 2D pixel storage and
// per-pixel compositing kernels (component A of the rendering pipeline).
//
// Color is 8-bit RGBA, and the pipeline works on premultiplied pixels
// throughout. Neither Color nor Buffer records whether its channels are
// premultiplied: callers keep track of that, and converting a buffer
// twice rescales its channels twice.
package pixel

import "github.com/cartograph/cartograph/mcerrors"

// Color is an 8-bit RGBA color value. Whether its channels are
// premultiplied is recorded neither by Color nor by the owning Buffer —
// Color is a bare quadruple, matching the rasterizer cell's own
// unadorned (r,g,b,a) byte tuple.
type Color struct {
	R, G, B, A uint8
}

// RGBA8 is the standard premultipliable pixel type used by vector
// symbolizers and the main rendering buffer.
type RGBA8 struct {
	R, G, B, A uint8
}

// Gray8 is an 8-bit single-channel pixel type, used by alpha masks and
// grayscale raster sources.
type Gray8 struct{ Y uint8 }

// Gray16 is a 16-bit single-channel pixel type.
type Gray16 struct{ Y uint16 }

// GrayF32 is a floating-point single-channel pixel type, used for DEM /
// elevation raster sources where nodata must be represented exactly.
type GrayF32 struct{ Y float32 }

// Premultiply returns c with its RGB channels scaled by A/255. It is not
// idempotent: premultiplying an already-premultiplied color rescales it
// again. Neither Color nor Buffer carries a premultiplied flag.
func (c Color) Premultiply() Color {
	if c.A == 255 {
		return c
	}
	return Color{
		R: mulDiv255(c.R, c.A),
		G: mulDiv255(c.G, c.A),
		B: mulDiv255(c.B, c.A),
		A: c.A,
	}
}

// Unpremultiply returns c with its RGB channels divided by A/255. A
// transparent color unpremultiplies to itself (division by zero is
// avoided, not undefined).
func (c Color) Unpremultiply() Color {
	if c.A == 0 || c.A == 255 {
		return c
	}
	return Color{
		R: divByAlpha(c.R, c.A),
		G: divByAlpha(c.G, c.A),
		B: divByAlpha(c.B, c.A),
		A: c.A,
	}
}

// Valid reports whether c satisfies the premultiplied invariant
// r,g,b <= a (testable property 1).
func (c Color) Valid() bool {
	return c.R <= c.A && c.G <= c.A && c.B <= c.A
}

func mulDiv255(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

func divByAlpha(c, a uint8) uint8 {
	v := (uint16(c)*255 + uint16(a)/2) / uint16(a)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// mustPremultiplied panics with an InvariantViolation if c is not a valid
// premultiplied color — used at API boundaries that declare a
// premultiplied precondition (fill, composite).
func mustPremultiplied(op string, c Color) {
	if !c.Valid() {
		mcerrors.Panic(op, nil)
	}
}
