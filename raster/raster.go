// Package raster is the thin public face of component D (spec.md §4.D):
// it walks a flattened vertex stream through internal/scanraster's
// analytic cell/cover/area accumulator and composites the resulting
// anti-aliased coverage into a pixel.Buffer, so symbolizer/render code
// never has to touch internal/scanraster directly.
package raster

import (
	"github.com/cartograph/cartograph/internal/scanraster"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/vertex"
)

// FillRule selects how overlapping subpaths combine, re-exported from
// internal/scanraster.
type FillRule = scanraster.FillRule

const (
	FillRuleNonZero = scanraster.FillRuleNonZero
	FillRuleEvenOdd = scanraster.FillRuleEvenOdd
)

// Gamma remaps linear coverage before it becomes alpha, re-exported from
// internal/scanraster.
type Gamma = scanraster.GammaFunc

var (
	LinearGamma    = scanraster.LinearGamma
	PowerGamma     = scanraster.PowerGamma
	ThresholdGamma = scanraster.ThresholdGamma
)

// Rasterizer accumulates one or more subpaths (via AddStream or
// AddVertices) and then sweeps them into coverage via Fill/Mask. Reset
// between unrelated geometries; a single Rasterizer may accumulate many
// AddStream calls
// before one Fill, which is how a single non-zero fill covers a
// MultiPolygon's several rings.
type Rasterizer struct {
	cr            *scanraster.CellRaster
	width, height int
}

func New(width, height int) *Rasterizer {
	return &Rasterizer{cr: scanraster.NewCellRaster(), width: width, height: height}
}

func (r *Rasterizer) Reset() { r.cr.Reset() }

// AddStream drains stream (which must already be curve-free — run it
// through convert.Flatten first) and adds its edges to the accumulator.
func (r *Rasterizer) AddStream(stream vertex.Stream) {
	r.AddVertices(vertex.Collect(stream))
}

// AddVertices adds the edges of an already-flattened vertex slice.
func (r *Rasterizer) AddVertices(verts []vertex.Vertex) {
	var startX, startY float64
	var haveStart bool
	for _, v := range verts {
		switch v.Cmd {
		case vertex.MoveTo:
			r.cr.MoveTo(v.X, v.Y)
			startX, startY = v.X, v.Y
			haveStart = true
		case vertex.LineTo, vertex.Curve3, vertex.Curve4:
			// Curve3/Curve4 are handled defensively as straight
			// segments to their endpoint; convert.Flatten should
			// already have removed them before this stage.
			r.cr.LineTo(v.X, v.Y)
		case vertex.Close:
			if haveStart {
				r.cr.LineTo(startX, startY)
			}
		}
	}
}

// Mask sweeps the accumulated cells into a coverage buffer (one Gray8
// sample per pixel, 0 = uncovered, 255 = fully covered), e.g. for a
// clip mask or a marker's alpha channel.
func (r *Rasterizer) Mask(rule FillRule, gamma Gamma) *pixel.Buffer[pixel.Gray8] {
	mask := pixel.New[pixel.Gray8](r.width, r.height)
	cells := r.cr.Finish()
	scanraster.Sweep(cells, r.width, r.height, rule, gamma, func(y int, spans []scanraster.Span) {
		for _, s := range spans {
			for x := s.X; x < s.X+s.Len; x++ {
				mask.Set(x, y, pixel.Gray8{Y: s.Alpha})
			}
		}
	})
	return mask
}

// Fill sweeps the accumulated cells and composites color (already
// premultiplied) through mode into dst wherever coverage is non-zero,
// scaling color's own alpha by each span's coverage fraction.
func (r *Rasterizer) Fill(dst *pixel.Buffer[pixel.RGBA8], rule FillRule, gamma Gamma, color pixel.Color, mode pixel.Mode) {
	cells := r.cr.Finish()
	src := pixel.RGBA8(color)
	scanraster.Sweep(cells, r.width, r.height, rule, gamma, func(y int, spans []scanraster.Span) {
		if y < 0 || y >= dst.Height() {
			return
		}
		for _, s := range spans {
			scaled := src
			if s.Alpha != 255 {
				scaled = pixel.RGBA8{
					R: mulDiv255(src.R, s.Alpha),
					G: mulDiv255(src.G, s.Alpha),
					B: mulDiv255(src.B, s.Alpha),
					A: mulDiv255(src.A, s.Alpha),
				}
			}
			for x := s.X; x < s.X+s.Len && x < dst.Width(); x++ {
				if x < 0 {
					continue
				}
				dp := dst.At(x, y)
				dst.Set(x, y, pixel.BlendPixel(mode, scaled, dp))
			}
		}
	})
}

func mulDiv255(a, b uint8) uint8 {
	v := uint32(a) * uint32(b)
	return uint8((v + 128 + v>>8) >> 8)
}
