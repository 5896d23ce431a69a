// Package scanraster implements component D's rasterizer (spec.md §4.D):
// an analytic (exact trapezoidal-area) anti-aliased fill algorithm, a
// sub-pixel cell/cover/area accumulator swept into per-scanline coverage
// spans. Grounded on the cover/area accumulation scheme common to the
// AGG-descended scanline rasterizers in the pack (FreeType's smooth
// rasterizer and AGG's scanline_aa use the same cell model). Curve
// commands never reach this rasterizer: convert.Flatten reduces them to
// line segments upstream, so the accumulator only ever walks straight
// edges.
package scanraster

import (
	"math"
	"sort"
)

const (
	cellShift  = 8
	cellScale  = 1 << cellShift
	cellMask   = cellScale - 1
	cellScale2 = cellScale * 2
	cellMask2  = cellScale2 - 1
)

// Cell is one sub-pixel accumulator bucket: Cover is the signed sub-pixel
// y-extent of edges crossing this cell's row at this column, and Area is
// the signed double-area of the part of the cell to the right of those
// edges.
type Cell struct {
	X, Y        int32
	Cover, Area int32
}

// CellRaster accumulates Cells for a sequence of MoveTo/LineTo subpaths.
// It holds no notion of fill rule or color; Sweep turns the finished
// cell list into per-scanline coverage spans.
type CellRaster struct {
	cells      []Cell
	curX, curY int32
	cx, cy     int32
	cover, area int32
	minX, minY int32
	maxX, maxY int32
}

func NewCellRaster() *CellRaster {
	r := &CellRaster{}
	r.Reset()
	return r
}

func (r *CellRaster) Reset() {
	r.cells = r.cells[:0]
	r.curX, r.curY = 0, 0
	r.cx, r.cy = 0, 0
	r.cover, r.area = 0, 0
	r.minX, r.minY = math.MaxInt32, math.MaxInt32
	r.maxX, r.maxY = math.MinInt32, math.MinInt32
}

func subpixel(v float64) int32 { return int32(math.Round(v * cellScale)) }

// MoveTo starts a new subpath at (x,y) in pixel coordinates.
func (r *CellRaster) MoveTo(x, y float64) {
	sx, sy := subpixel(x), subpixel(y)
	r.setCell(sx>>cellShift, sy>>cellShift)
	r.curX, r.curY = sx, sy
}

// LineTo adds an edge from the current point to (x,y) in pixel coordinates.
func (r *CellRaster) LineTo(x, y float64) {
	sx, sy := subpixel(x), subpixel(y)
	r.line(r.curX, r.curY, sx, sy)
	r.curX, r.curY = sx, sy
}

// Finish flushes the pending cell and returns the accumulated cells.
// The returned slice aliases the raster's internal storage; callers must
// Sort it (or call Sweep) before the raster is reused.
func (r *CellRaster) Finish() []Cell {
	r.flushCell()
	return r.cells
}

func (r *CellRaster) Bounds() (minX, minY, maxX, maxY int32) {
	return r.minX, r.minY, r.maxX, r.maxY
}

func (r *CellRaster) flushCell() {
	if r.cover != 0 || r.area != 0 {
		r.cells = append(r.cells, Cell{X: r.cx, Y: r.cy, Cover: r.cover, Area: r.area})
		if r.cx < r.minX {
			r.minX = r.cx
		}
		if r.cx > r.maxX {
			r.maxX = r.cx
		}
		if r.cy < r.minY {
			r.minY = r.cy
		}
		if r.cy > r.maxY {
			r.maxY = r.cy
		}
	}
}

func (r *CellRaster) setCell(cx, cy int32) {
	if cx != r.cx || cy != r.cy {
		r.flushCell()
		r.cx, r.cy = cx, cy
		r.cover, r.area = 0, 0
	}
}

// line walks a single sub-pixel edge, splitting it at every scanline
// (and, via renderHLine, every pixel column) it crosses.
func (r *CellRaster) line(x1, y1, x2, y2 int32) {
	const dxLimit = 16384 * cellScale
	dx := x2 - x1
	if dx >= dxLimit || dx <= -dxLimit {
		cx := (x1 + x2) >> 1
		cy := (y1 + y2) >> 1
		r.line(x1, y1, cx, cy)
		r.line(cx, cy, x2, y2)
		return
	}

	dy := y2 - y1
	ey1 := y1 >> cellShift
	ey2 := y2 >> cellShift
	fy1 := y1 & cellMask
	fy2 := y2 & cellMask

	if ey1 == ey2 {
		r.renderHLine(ey1, x1, fy1, x2, fy2)
		return
	}

	incr := int32(1)
	if dx == 0 {
		ex := x1 >> cellShift
		twoFx := (x1 - (ex << cellShift)) << 1
		first := int32(cellScale)
		if dy < 0 {
			first = 0
			incr = -1
		}
		delta := first - fy1
		r.cover += delta
		r.area += twoFx * delta
		ey1 += incr
		r.setCell(ex, ey1)

		delta = first + first - cellScale
		areaDelta := twoFx * delta
		for ey1 != ey2 {
			r.cover += delta
			r.area += areaDelta
			ey1 += incr
			r.setCell(ex, ey1)
		}
		delta = fy2 - cellScale + first
		r.cover += delta
		r.area += twoFx * delta
		return
	}

	p := (cellScale - fy1) * dx
	first := int32(cellScale)
	if dy < 0 {
		p = fy1 * dx
		first = 0
		incr = -1
		dy = -dy
	}
	delta := p / dy
	mod := p % dy
	if mod < 0 {
		delta--
		mod += dy
	}
	xFrom := x1 + delta
	r.renderHLine(ey1, x1, fy1, xFrom, first)
	ey1 += incr
	r.setCell(xFrom>>cellShift, ey1)

	if ey1 != ey2 {
		p = cellScale * dx
		lift := p / dy
		rem := p % dy
		if rem < 0 {
			lift--
			rem += dy
		}
		mod -= dy
		for ey1 != ey2 {
			delta = lift
			mod += rem
			if mod >= 0 {
				mod -= dy
				delta++
			}
			xTo := xFrom + delta
			r.renderHLine(ey1, xFrom, cellScale-first, xTo, first)
			xFrom = xTo
			ey1 += incr
			r.setCell(xFrom>>cellShift, ey1)
		}
	}
	r.renderHLine(ey1, xFrom, cellScale-first, x2, fy2)
}

// renderHLine distributes one scanline-row's worth of an edge (vertical
// extent y1..y2, both already local sub-pixel coordinates) across every
// pixel column it crosses on row ey.
func (r *CellRaster) renderHLine(ey, x1, y1, x2, y2 int32) {
	ex1 := x1 >> cellShift
	ex2 := x2 >> cellShift
	fx1 := x1 & cellMask
	fx2 := x2 & cellMask

	if y1 == y2 {
		r.setCell(ex2, ey)
		return
	}

	if ex1 == ex2 {
		delta := y2 - y1
		r.cover += delta
		r.area += (fx1 + fx2) * delta
		return
	}

	p := (cellScale - fx1) * (y2 - y1)
	first := int32(cellScale)
	incr := int32(1)
	dx := x2 - x1
	if dx < 0 {
		p = fx1 * (y2 - y1)
		first = 0
		incr = -1
		dx = -dx
	}
	delta := p / dx
	mod := p % dx
	if mod < 0 {
		delta--
		mod += dx
	}
	r.cover += delta
	r.area += (fx1 + first) * delta
	ex1 += incr
	r.setCell(ex1, ey)
	y1 += delta

	if ex1 != ex2 {
		p = cellScale * (y2 - y1)
		lift := p / dx
		rem := p % dx
		if rem < 0 {
			lift--
			rem += dx
		}
		mod -= dx
		for ex1 != ex2 {
			delta = lift
			mod += rem
			if mod >= 0 {
				mod -= dx
				delta++
			}
			r.cover += delta
			r.area += cellScale * delta
			y1 += delta
			ex1 += incr
			r.setCell(ex1, ey)
		}
	}
	delta = y2 - y1
	r.cover += delta
	r.area += (first + fx2) * delta
}

// FillRule selects how overlapping subpaths combine when Sweep resolves
// coverage into alpha (spec.md §4.D).
type FillRule int

const (
	FillRuleNonZero FillRule = iota
	FillRuleEvenOdd
)

// Span is one run of constant alpha coverage on a single scanline.
type Span struct {
	X, Len int
	Alpha  uint8
}

// GammaFunc remaps linear coverage (0-255) to adjusted alpha (0-255).
type GammaFunc func(alpha uint8) uint8

// LinearGamma is the identity mapping.
func LinearGamma(a uint8) uint8 { return a }

// PowerGamma builds a gamma-corrected LUT: out = round(255*(in/255)^g).
func PowerGamma(g float64) GammaFunc {
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := math.Pow(float64(i)/255.0, g)
		if v > 1 {
			v = 1
		}
		lut[i] = uint8(math.Round(v * 255))
	}
	return func(a uint8) uint8 { return lut[a] }
}

// ThresholdGamma snaps coverage below t to 0 and at-or-above t to full.
func ThresholdGamma(t uint8) GammaFunc {
	return func(a uint8) uint8 {
		if a >= t {
			return 255
		}
		return 0
	}
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}

// calculateAlpha turns a raw (cover<<(cellShift+1))-ish accumulator value
// into an 8-bit coverage, applying the fill rule per spec.md §4.D: the
// non-zero rule clamps |cover| to full; the even-odd rule reflects cover
// into [0, 2*scale] and folds it back into [0, scale].
func calculateAlpha(raw int32, rule FillRule) uint8 {
	cover := raw >> (cellShift + 1)
	if cover < 0 {
		cover = -cover
	}
	if rule == FillRuleEvenOdd {
		cover &= cellMask2
		if cover > cellScale {
			cover = cellScale2 - cover
		}
	}
	if cover > cellMask {
		cover = cellMask
	}
	return uint8(cover)
}

// Sweep sorts cells and invokes emit once per scanline row that has any
// coverage, in ascending y order, with the row's coverage spans clipped
// to [0,width). Rows entirely outside [0,height) are skipped.
func Sweep(cells []Cell, width, height int, rule FillRule, gamma GammaFunc, emit func(y int, spans []Span)) {
	if len(cells) == 0 {
		return
	}
	if gamma == nil {
		gamma = LinearGamma
	}
	sortCells(cells)

	n := len(cells)
	i := 0
	var spans []Span
	for i < n {
		y := cells[i].Y
		if y < 0 || y >= int32(height) {
			for i < n && cells[i].Y == y {
				i++
			}
			continue
		}

		spans = spans[:0]
		var cover int32
		for i < n && cells[i].Y == y {
			x := cells[i].X
			area := cells[i].Area
			cover += cells[i].Cover
			i++
			for i < n && cells[i].Y == y && cells[i].X == x {
				area += cells[i].Area
				cover += cells[i].Cover
				i++
			}

			if area != 0 {
				a := gamma(calculateAlpha((cover<<(cellShift+1))-area, rule))
				if a > 0 && x >= 0 && x < int32(width) {
					spans = append(spans, Span{X: int(x), Len: 1, Alpha: a})
				}
				x++
			}

			if i < n && cells[i].Y == y && cells[i].X > x {
				a := gamma(calculateAlpha(cover<<(cellShift+1), rule))
				if a > 0 {
					x0, x1 := x, cells[i].X
					if x0 < 0 {
						x0 = 0
					}
					if x1 > int32(width) {
						x1 = int32(width)
					}
					if x1 > x0 {
						spans = append(spans, Span{X: int(x0), Len: int(x1 - x0), Alpha: a})
					}
				}
			}
		}
		emit(int(y), spans)
	}
}
