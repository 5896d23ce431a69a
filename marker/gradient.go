// Package marker implements the SVG/vector and bitmap marker renderer
// (spec.md §4.F): markers are drawn through the same converter chain and
// rasterizer as polygon/line symbolizers, plus a gradient fill and a
// resample.Warp-backed bitmap path.
//
// gradient.go adapts gogpu-gg's gradient.go (ColorStop, ExtendMode,
// sortStops/applyExtendMode/colorAtOffset's binary-search offset lookup)
// onto marker fill/stroke paint, swapping the teacher's own
// linearize-blend-delinearize interpolation for
// github.com/lucasb-eyer/go-colorful's perceptual LAB blend (cogentcore-core
// already carries go-colorful for this exact class of color math).
package marker

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cartograph/cartograph/pixel"
)

// ExtendMode defines how a gradient extends beyond its defined bounds.
type ExtendMode int

const (
	ExtendPad ExtendMode = iota
	ExtendRepeat
	ExtendReflect
)

// ColorStop is a color anchored at a position in [0,1] along a gradient.
type ColorStop struct {
	Offset float64
	Color  pixel.RGBA8
}

// Gradient is a sorted, precomputed color ramp: a 1024-entry LUT so
// marker fills don't re-run the binary search and LAB blend per pixel.
type Gradient struct {
	stops []ColorStop
	mode  ExtendMode
	lut   [gradientLUTSize]pixel.RGBA8
}

const gradientLUTSize = 1024

// NewGradient builds a Gradient from stops (need not be pre-sorted) and
// precomputes its lookup table.
func NewGradient(stops []ColorStop, mode ExtendMode) *Gradient {
	g := &Gradient{stops: sortStops(stops), mode: mode}
	for i := range g.lut {
		t := float64(i) / float64(gradientLUTSize-1)
		g.lut[i] = g.colorAt(t)
	}
	return g
}

// At samples the precomputed LUT at t, applying the extend mode first.
func (g *Gradient) At(t float64) pixel.RGBA8 {
	t = applyExtendMode(t, g.mode)
	idx := int(t * float64(gradientLUTSize-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= gradientLUTSize {
		idx = gradientLUTSize - 1
	}
	return g.lut[idx]
}

func sortStops(stops []ColorStop) []ColorStop {
	if len(stops) == 0 {
		return stops
	}
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	return sorted
}

func applyExtendMode(t float64, mode ExtendMode) float64 {
	switch mode {
	case ExtendRepeat:
		t -= math.Floor(t)
		if t < 0 {
			t++
		}
	case ExtendReflect:
		t = math.Abs(t)
		period := math.Floor(t)
		t -= period
		if int(period)%2 == 1 {
			t = 1 - t
		}
	default:
		t = clamp01(t)
	}
	return t
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// colorAt is the uncached offset->color lookup the LUT is built from,
// mirroring gogpu-gg's colorAtOffset: binary search the sorted stops,
// then blend the bracketing pair.
func (g *Gradient) colorAt(t float64) pixel.RGBA8 {
	stops := g.stops
	if len(stops) == 0 {
		return pixel.RGBA8{}
	}
	if len(stops) == 1 {
		return stops[0].Color
	}

	idx := sort.Search(len(stops), func(i int) bool { return stops[i].Offset >= t })
	if idx == 0 {
		return stops[0].Color
	}
	if idx >= len(stops) {
		return stops[len(stops)-1].Color
	}

	s1, s2 := stops[idx-1], stops[idx]
	if s2.Offset == s1.Offset {
		return s1.Color
	}
	localT := (t - s1.Offset) / (s2.Offset - s1.Offset)
	return blendLab(s1.Color, s2.Color, localT)
}

// blendLab interpolates two unpremultiplied RGBA8 colors perceptually
// via go-colorful's CIE-LAB blend, alpha interpolated linearly alongside.
func blendLab(a, b pixel.RGBA8, t float64) pixel.RGBA8 {
	c1 := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	c2 := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	blended := c1.BlendLab(c2, t)
	r, gr, bl := blended.Clamped().RGB255()
	alpha := float64(a.A) + t*(float64(b.A)-float64(a.A))
	return pixel.RGBA8{R: r, G: gr, B: bl, A: uint8(alpha + 0.5)}
}
