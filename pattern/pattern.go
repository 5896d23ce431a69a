// Package pattern implements the pattern-source contract of spec.md §3
// ("Pattern source: a read-only RGBA-8 image accessor with wrap modes
// (repeat, clamp, clone)"), consumed by symbolizer/polygonpattern.go and
// symbolizer/linepattern.go.
//
// Decoding and resizing (for mesh-size-driven pattern scaling) are
// delegated to github.com/disintegration/imaging, already carried by
// the teacher's dependency graph by way of esimov-caire's processing
// pipeline (imaging.Decode/imaging.Resize with a Lanczos filter) rather
// than hand-rolled here.
package pattern

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"github.com/cartograph/cartograph/mcerrors"
	"github.com/cartograph/cartograph/pixel"
)

// WrapMode selects how a Source samples outside its native image bounds.
type WrapMode int

const (
	// WrapRepeat tiles the pattern image (spec.md §3 "repeat").
	WrapRepeat WrapMode = iota
	// WrapClamp clones the nearest edge pixel (spec.md §3 "clamp").
	WrapClamp
	// WrapClone is an alias for Clamp retained for the spec's own naming
	// ("clone"); both describe nearest-edge-pixel extension.
	WrapClone
)

// Source is a read-only RGBA-8 pattern image plus a wrap mode, satisfying
// both resample.Source (for scaling) and the per-pixel accessor the
// polygon/line pattern span generators sample through.
type Source struct {
	img  *image.NRGBA
	wrap WrapMode
}

// Decode parses pattern image bytes (PNG/JPEG/GIF/TIFF/BMP, whatever
// imaging's underlying decoders support) into a Source.
func Decode(data []byte, wrap WrapMode) (*Source, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, mcerrors.New(mcerrors.MissingAsset, "pattern.Decode", err)
	}
	nrgba := imaging.Clone(img)
	return &Source{img: nrgba, wrap: wrap}, nil
}

// Resize returns a copy of s scaled to width×height using a Lanczos
// filter (spec.md §7's `mesh-size`/`scaling` properties drive this for
// raster sources generally; pattern images resize once at load time
// rather than per destination pixel).
func (s *Source) Resize(width, height int) *Source {
	resized := imaging.Resize(s.img, width, height, imaging.Lanczos)
	return &Source{img: resized, wrap: s.wrap}
}

// Bounds reports the pattern's native pixel dimensions, satisfying
// resample.Source.
func (s *Source) Bounds() (w, h int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// At samples the pattern at (x, y), applying the wrap mode when the
// coordinate falls outside the native bounds. Returned color is
// unpremultiplied RGBA8, matching the teacher's RasterTile convention.
func (s *Source) At(x, y int) pixel.RGBA8 {
	w, h := s.Bounds()
	if w == 0 || h == 0 {
		return pixel.RGBA8{}
	}
	x, y = s.wrapCoord(x, w), s.wrapCoord(y, h)
	c := s.img.NRGBAAt(x, y)
	return pixel.RGBA8{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (s *Source) wrapCoord(v, size int) int {
	switch s.wrap {
	case WrapRepeat:
		v %= size
		if v < 0 {
			v += size
		}
		return v
	default: // WrapClamp, WrapClone
		if v < 0 {
			return 0
		}
		if v >= size {
			return size - 1
		}
		return v
	}
}

// Span fills dst (a row of len pixels, sampled at integer-spaced source
// x starting at srcX0, fixed srcY) — the per-scanline accessor the
// polygon-pattern span generator uses to avoid a per-pixel method-call
// dispatch in the fill loop.
func (s *Source) Span(dst []pixel.RGBA8, srcX0, srcY int) {
	for i := range dst {
		dst[i] = s.At(srcX0+i, srcY)
	}
}
