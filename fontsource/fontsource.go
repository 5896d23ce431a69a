// Package fontsource bridges font.Shaper/font.Source (shape-by-Face,
// keyed on a fixed pixel size) to symbolizer.FontSource (shape-by-
// faceKey+size, called fresh for every candidate placement). It is the
// one place a face-name string turns into a font.Face, so font itself
// stays free of any symbolizer import (symbolizer.FontSource already
// documents that split).
package fontsource

import (
	"sync"

	"github.com/cartograph/cartograph/font"
	"github.com/cartograph/cartograph/symbolizer"
)

// Adapter implements symbolizer.FontSource over a set of named
// font.Source files shaped through one shared font.Shaper.
type Adapter struct {
	shaper *font.Shaper

	mu      sync.RWMutex
	sources map[string]*font.Source
}

// New builds an empty Adapter. Register faces with Register before
// rendering; an unregistered faceKey makes Shape/Bitmap report false,
// which callers treat as a text row's MissingAsset fallback.
func New() *Adapter {
	return &Adapter{shaper: font.NewShaper(), sources: make(map[string]*font.Source)}
}

// Register binds key (a symbolizer `face-name` value) to a parsed
// font.Source.
func (a *Adapter) Register(key string, src *font.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sources[key] = src
}

func (a *Adapter) lookup(key string) (*font.Source, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	src, ok := a.sources[key]
	return src, ok
}

// Shape implements symbolizer.FontSource.
func (a *Adapter) Shape(text string, faceKey string, size float64) ([]symbolizer.ShapedGlyph, bool) {
	src, ok := a.lookup(faceKey)
	if !ok {
		return nil, false
	}
	face := font.NewFace(src, size, font.DirectionLTR)
	glyphs := a.shaper.Shape(text, face)
	if len(glyphs) == 0 {
		return nil, false
	}

	runes := []rune(text)
	out := make([]symbolizer.ShapedGlyph, len(glyphs))
	for i, g := range glyphs {
		var cp rune
		if g.Cluster >= 0 && g.Cluster < len(runes) {
			cp = runes[g.Cluster]
		}
		out[i] = symbolizer.ShapedGlyph{Codepoint: cp, XAdvance: g.XAdvance, YAdvance: g.YAdvance}
	}
	return out, true
}

// Bitmap implements symbolizer.FontSource.
func (a *Adapter) Bitmap(faceKey string, codepoint rune, size float64) (symbolizer.GlyphImage, bool) {
	src, ok := a.lookup(faceKey)
	if !ok {
		return symbolizer.GlyphImage{}, false
	}
	face := font.NewFace(src, size, font.DirectionLTR)
	bmp, err := a.shaper.Bitmap(face, codepoint)
	if err != nil {
		return symbolizer.GlyphImage{}, false
	}
	return symbolizer.GlyphImage{
		Width: bmp.Width, Rows: bmp.Rows, Pitch: bmp.Pitch,
		Buffer: bmp.Buffer, Left: bmp.Left, Top: bmp.Top,
	}, true
}
