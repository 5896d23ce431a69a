// Package font implements the Font/face interface consumed by the label
// placement and text/shield symbolizers (spec.md §6 "Font/face (consumed)"):
// shape(text, face-set) -> []Glyph and bitmap(face, codepoint, size) ->
// GlyphBitmap. Unlike gogpu-gg's ~40-file text/ engine (multi-script runs,
// color fonts, MSDF caches, emoji), cartograph only needs shaping and
// grayscale glyph bitmaps, so this wraps go-text/typesetting directly
// rather than porting that engine — grounded on text/shaper_gotext.go's
// GoTextShaper (pooled HarfbuzzShaper + font.Font cache) and
// text/rasterize.go's RasterizeGlyph (per-glyph alpha-mask extraction).
package font

import (
	"bytes"
	"errors"
	"image"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"

	"github.com/cartograph/cartograph/mcerrors"
)

var (
	errNilSource = errors.New("nil font source")
	errNoGlyph   = errors.New("codepoint has no glyph")
)

// GlyphID is a font-specific glyph index, assigned by the font file.
type GlyphID uint16

// Glyph is one shaped glyph, positioned relative to the line origin
// (spec.md §6 "shape(text, face-set) -> []Glyph{codepoint, advance,
// bearing}").
type Glyph struct {
	Cluster            int
	GID                GlyphID
	X, Y               float64
	XAdvance, YAdvance float64
}

// GlyphBitmap is a single rasterized glyph (spec.md §6 "bitmap(face,
// codepoint, size) -> GlyphBitmap{width, rows, pitch, buffer}"). Buffer
// holds Rows*Pitch bytes of 8-bit coverage, row-major, top-down.
type GlyphBitmap struct {
	Width, Rows int
	Pitch       int
	Buffer      []byte
	Left, Top   int
}

// Direction is a shaping run's writing direction.
type Direction int

const (
	DirectionLTR Direction = iota
	DirectionRTL
	DirectionTTB
	DirectionBTT
)

func (d Direction) toDi() di.Direction {
	switch d {
	case DirectionRTL:
		return di.DirectionRTL
	case DirectionTTB:
		return di.DirectionTTB
	case DirectionBTT:
		return di.DirectionBTT
	default:
		return di.DirectionLTR
	}
}

// Source is a loaded font file: immutable once parsed, safe for
// concurrent use by many Faces and Shapers (mirrors text.FontSource's
// role, minus the multi-format container text/parser.go adds).
type Source struct {
	shapeFace *font.Face     // go-text/typesetting, used for HarfBuzz shaping
	otFont    *opentype.Font // golang.org/x/image/font, used for glyph rasterization
}

// NewSource parses raw font-file bytes (TTF/OTF/WOFF) into a Source. Two
// parses are kept side by side, one per library, mirroring the teacher's
// own split: go-text/typesetting for shaping (shaper_gotext.go),
// golang.org/x/image/font/opentype for rasterizing a glyph to an alpha
// mask (rasterize.go's RasterizeGlyph/font.Drawer).
func NewSource(data []byte) (*Source, error) {
	shapeFace, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, mcerrors.New(mcerrors.BadInput, "font.NewSource: parse for shaping", err)
	}
	otFont, err := opentype.Parse(data)
	if err != nil {
		return nil, mcerrors.New(mcerrors.BadInput, "font.NewSource: parse for rasterization", err)
	}
	return &Source{shapeFace: shapeFace, otFont: otFont}, nil
}

// Face is a Source at a fixed pixel size and direction, the unit
// shape/bitmap operate on (spec.md §6 Feature set: "face").
type Face struct {
	Source    *Source
	Size      float64 // pixels per em
	Direction Direction
}

// NewFace binds src to a pixel size and direction.
func NewFace(src *Source, sizePx float64, dir Direction) Face {
	return Face{Source: src, Size: sizePx, Direction: dir}
}

// Shaper shapes runs of text into positioned glyphs and rasterizes
// individual glyphs to alpha masks, grounded on GoTextShaper's pooled
// HarfbuzzShaper (shaper_gotext.go).
type Shaper struct {
	pool sync.Pool
}

// NewShaper builds a Shaper. One Shaper may be shared by many goroutines;
// each Shape call borrows its own HarfbuzzShaper from the pool.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// Shape runs HarfBuzz shaping on text at face's size and direction, and
// returns the resulting glyph run (spec.md §6 "shape(text, face-set) ->
// []Glyph"). Pen advance is accumulated into each glyph's X/Y so callers
// can place glyphs directly without re-walking advances.
func (s *Shaper) Shape(text string, face Face) []Glyph {
	if text == "" || face.Source == nil {
		return nil
	}
	runes := []rune(text)
	dir := face.Direction.toDi()

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      face.Source.shapeFace,
		Size:      floatToFixed(face.Size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.pool.Put(hb)

	glyphs := make([]Glyph, len(out.Glyphs))
	var x, y float64
	for i, g := range out.Glyphs {
		xOff := fixedToFloat(g.XOffset)
		yOff := fixedToFloat(g.YOffset)
		glyphs[i] = Glyph{
			GID:     GlyphID(uint16(g.GlyphID)),
			Cluster: g.TextIndex(),
			X:       x + xOff,
			Y:       y + yOff,
		}
		if dir.IsVertical() {
			adv := fixedToFloat(g.Advance)
			glyphs[i].YAdvance = adv
			y += adv
		} else {
			adv := fixedToFloat(g.Advance)
			glyphs[i].XAdvance = adv
			x += adv
		}
	}
	return glyphs
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(size float64) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// Bitmap rasterizes a single glyph of face to an 8-bit coverage mask
// (spec.md §6 "bitmap(face, codepoint, size) -> GlyphBitmap"), grounded
// on RasterizeGlyph: build an opentype.Face at face.Size/72dpi, measure
// GlyphBounds, then draw the single codepoint onto an *image.Alpha via
// font.Drawer. Runs a second, independent font library from Shape's
// go-text/typesetting path because x/image/font's sfnt rasterizer (not
// go-text's outline accessor) is what the teacher actually wires for
// this step.
func (s *Shaper) Bitmap(face Face, codepoint rune) (GlyphBitmap, error) {
	if face.Source == nil || face.Source.otFont == nil {
		mcerrors.Panic("font.Bitmap", errNilSource)
	}
	otFace, err := opentype.NewFace(face.Source.otFont, &opentype.FaceOptions{
		Size:    face.Size,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return GlyphBitmap{}, mcerrors.New(mcerrors.BadInput, "font.Bitmap: build opentype face", err)
	}
	defer otFace.Close()

	bounds, _, ok := otFace.GlyphBounds(codepoint)
	if !ok {
		return GlyphBitmap{}, mcerrors.New(mcerrors.MissingAsset, "font.Bitmap", errNoGlyph)
	}

	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	rect := image.Rect(minX, minY, maxX, maxY)
	mask := image.NewAlpha(rect)

	drawer := &xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: otFace,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(codepoint))

	w, h := rect.Dx(), rect.Dy()
	return GlyphBitmap{
		Width:  w,
		Rows:   h,
		Pitch:  mask.Stride,
		Buffer: append([]byte(nil), mask.Pix...),
		Left:   minX,
		Top:    minY,
	}, nil
}
