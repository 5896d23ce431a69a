// Package resample implements the affine-warp image resampler of
// spec.md §4.E: warp(dst, src, affine_src_to_dst, filter, nodata?) fills
// dst by inverse-mapping each destination pixel into source space and
// reconstructing through a named kernel.
//
// The named filter set and edge/nodata policy are grounded on Mapnik's
// own resampler (original_source/src/image_scaling.cpp,
// image_scaling_traits.hpp: AGG's agg_image_filters.h kernel family —
// near, bilinear, bicubic, spline16, spline36, hanning, hamming,
// hermite, kaiser, quadric, catrom, gaussian, bessel, mitchell, sinc,
// lanczos, blackman). The sampling loop's structure (normalized
// coordinate to pixel, edge clamp, weighted accumulation) follows the
// teacher's internal/image/interp.go (SampleNearest/SampleBilinear/
// SampleBicubic), generalized from three hardcoded kernels to the
// per-filter kernel table below.
package resample

import (
	"math"

	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pixel"
)

// Filter names the reconstruction kernel used by Warp.
type Filter int

const (
	FilterNear Filter = iota
	FilterBilinear
	FilterBicubic
	FilterSpline16
	FilterSpline36
	FilterHanning
	FilterHamming
	FilterHermite
	FilterKaiser
	FilterQuadric
	FilterCatrom
	FilterGaussian
	FilterBessel
	FilterMitchell
	FilterSinc
	FilterLanczos
	FilterBlackman
)

// ParseFilter maps spec.md §4.E's filter name vocabulary onto a Filter.
func ParseFilter(name string) (Filter, bool) {
	f, ok := filterNames[name]
	return f, ok
}

var filterNames = map[string]Filter{
	"near":      FilterNear,
	"bilinear":  FilterBilinear,
	"bicubic":   FilterBicubic,
	"spline16":  FilterSpline16,
	"spline36":  FilterSpline36,
	"hanning":   FilterHanning,
	"hamming":   FilterHamming,
	"hermite":   FilterHermite,
	"kaiser":    FilterKaiser,
	"quadric":   FilterQuadric,
	"catrom":    FilterCatrom,
	"gaussian":  FilterGaussian,
	"bessel":    FilterBessel,
	"mitchell":  FilterMitchell,
	"sinc":      FilterSinc,
	"lanczos":   FilterLanczos,
	"blackman":  FilterBlackman,
}

// kernel is a windowed reconstruction filter: Radius is its support in
// source pixels, Weight(x) its value at offset x (|x| <= Radius).
type kernel struct {
	Radius float64
	Weight func(x float64) float64
}

const piConst = math.Pi

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := piConst * x
	return math.Sin(px) / px
}

func bessel(x float64) float64 {
	if x == 0 {
		return piConst / 4
	}
	return besselJ1(piConst*x) / (2 * x)
}

// besselJ1 is a polynomial approximation of the first-order Bessel
// function (Abramowitz & Stegun 9.4.4/9.4.6), the same approximation
// AGG's image_filters.h uses for its Bessel kernel.
func besselJ1(x float64) float64 {
	ax := math.Abs(x)
	if ax < 8 {
		y := x * x
		p1 := 72362614232.0 + y*(-7895059235.0+y*(242396853.1+y*(-2972611.439+y*(15704.48260+y*(-30.16036606)))))
		p2 := 144725228442.0 + y*(2300535178.0+y*(18583304.74+y*(99447.43394+y*(376.9991397+y*1.0))))
		return p1 / p2
	}
	z := 8 / ax
	y := z * z
	xx := ax - 2.356194491
	p1 := 1 + y*(0.183105e-2+y*(-0.3516396496e-4+y*(0.2457520174e-5+y*-0.240337019e-6)))
	p2 := 0.04687499995 + y*(-0.2002690873e-3+y*(0.8449199096e-5+y*(-0.88228987e-6+y*0.105787412e-6)))
	sign := 1.0
	if x < 0 {
		sign = -1
	}
	return sign * math.Sqrt(0.636619772/ax) * (math.Cos(xx)*p1 - z*math.Sin(xx)*p2)
}

func hanningWindow(x, radius float64) float64 {
	return 0.5 + 0.5*math.Cos(piConst*x/radius)
}

func hammingWindow(x, radius float64) float64 {
	return 0.54 + 0.46*math.Cos(piConst*x/radius)
}

func blackmanWindow(x, radius float64) float64 {
	return 0.42 + 0.5*math.Cos(piConst*x/radius) + 0.08*math.Cos(2*piConst*x/radius)
}

func kaiserWindow(x, radius, a, epsilon float64) float64 {
	t := x / radius
	if 1-t*t < 0 {
		return epsilon
	}
	return besselI0(a*math.Sqrt(1-t*t)) / besselI0(a)
}

func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	for k := 1; k < 30; k++ {
		term *= (x / 2) * (x / 2) / float64(k*k)
		sum += term
	}
	return sum
}

func kernelFor(f Filter) kernel {
	switch f {
	case FilterBilinear:
		return kernel{Radius: 1, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			if ax >= 1 {
				return 0
			}
			return 1 - ax
		}}
	case FilterHermite:
		return kernel{Radius: 1, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			if ax >= 1 {
				return 0
			}
			return (2*ax-3)*ax*ax + 1
		}}
	case FilterQuadric:
		return kernel{Radius: 1.5, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			switch {
			case ax < 0.5:
				return 0.75 - ax*ax
			case ax < 1.5:
				t := ax - 1.5
				return 0.5 * t * t
			default:
				return 0
			}
		}}
	case FilterBicubic, FilterCatrom:
		// AGG's image_filter_bicubic and image_filter_catrom share the
		// Catmull-Rom cubic convolution (a = -0.5).
		return kernel{Radius: 2, Weight: cubicConvolution(-0.5)}
	case FilterMitchell:
		return kernel{Radius: 2, Weight: mitchellNetravali(1.0/3, 1.0/3)}
	case FilterSpline16:
		return kernel{Radius: 2, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			switch {
			case ax < 1:
				return ((ax-9.0/5)*ax-1.0/5)*ax + 1
			case ax < 2:
				return ((-1.0/3*(ax-1)+4.0/5)*(ax-1)-7.0/15)*(ax - 1)
			default:
				return 0
			}
		}}
	case FilterSpline36:
		return kernel{Radius: 3, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			switch {
			case ax < 1:
				return ((13.0/11*ax-453.0/209)*ax-3.0/209)*ax + 1
			case ax < 2:
				t := ax - 1
				return ((-6.0/11*t+270.0/209)*t-156.0/209)*t
			case ax < 3:
				t := ax - 2
				return ((1.0/11*t-45.0/209)*t+26.0/209)*t
			default:
				return 0
			}
		}}
	case FilterGaussian:
		return kernel{Radius: 2, Weight: func(x float64) float64 {
			return math.Exp(-2*x*x) * math.Sqrt(2/piConst)
		}}
	case FilterBessel:
		return kernel{Radius: 3.2383, Weight: func(x float64) float64 {
			if x == 0 {
				return piConst / 4
			}
			return bessel(x)
		}}
	case FilterSinc:
		return kernel{Radius: 4, Weight: func(x float64) float64 { return sinc(x) }}
	case FilterLanczos:
		const radius = 3.0
		return kernel{Radius: radius, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			if ax >= radius {
				return 0
			}
			return sinc(x) * sinc(x/radius)
		}}
	case FilterHanning:
		const radius = 1.0
		return kernel{Radius: radius, Weight: func(x float64) float64 {
			return sinc(x) * hanningWindow(x, radius)
		}}
	case FilterHamming:
		const radius = 1.0
		return kernel{Radius: radius, Weight: func(x float64) float64 {
			return sinc(x) * hammingWindow(x, radius)
		}}
	case FilterBlackman:
		const radius = 3.0
		return kernel{Radius: radius, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			if ax >= radius {
				return 0
			}
			return sinc(x) * blackmanWindow(x, radius)
		}}
	case FilterKaiser:
		const radius = 1.0
		return kernel{Radius: radius, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			if ax >= radius {
				return 0
			}
			return sinc(x) * kaiserWindow(x, radius, 6.33, 0)
		}}
	default:
		return kernel{Radius: 1, Weight: func(x float64) float64 {
			ax := math.Abs(x)
			if ax >= 1 {
				return 0
			}
			return 1 - ax
		}}
	}
}

func cubicConvolution(a float64) func(float64) float64 {
	return func(x float64) float64 {
		ax := math.Abs(x)
		switch {
		case ax <= 1:
			return ((a+2)*ax-(a+3))*ax*ax + 1
		case ax < 2:
			return (((ax-5)*ax+8)*ax - 4) * a
		default:
			return 0
		}
	}
}

func mitchellNetravali(b, c float64) func(float64) float64 {
	return func(x float64) float64 {
		ax := math.Abs(x)
		switch {
		case ax < 1:
			return ((12-9*b-6*c)*ax*ax*ax+(-18+12*b+6*c)*ax*ax+(6-2*b))/6
		case ax < 2:
			return ((-b-6*c)*ax*ax*ax+(6*b+30*c)*ax*ax+(-12*b-48*c)*ax+(8*b+24*c))/6
		default:
			return 0
		}
	}
}

// Affine is a 2D affine transform mapping x' = A*x + C*y + E,
// y' = B*x + D*y + F. This field layout differs from convert.Matrix
// (x' = A*x + B*y + C); resample keeps its own type so this package
// does not depend on convert.
type Affine struct {
	A, B, C, D, E, F float64
}

// Apply maps (x,y) through the affine.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Invert returns m's inverse, used to map destination pixels back to
// source space.
func (m Affine) Invert() Affine {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Affine{A: 1, D: 1}
	}
	invDet := 1 / det
	a := m.D * invDet
	b := -m.B * invDet
	c := -m.C * invDet
	d := m.A * invDet
	e := -(a*m.E + c*m.F)
	f := -(b*m.E + d*m.F)
	return Affine{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Source is the source image Warp samples: any premultiplied RGBA8
// buffer, accessed by integer coordinate with edge-clone-out-of-bounds
// (spec.md §4.E "Edge policy").
type Source interface {
	Bounds() (w, h int)
	At(x, y int) pixel.RGBA8
}

// NodataValue marks a source sample to be excluded from the weighted
// average (spec.md §4.E).
type NodataValue struct {
	pixel.RGBA8
	Set bool
}

const meshCellPx = 16

// Warp fills dst by inverse-mapping each destination pixel through
// srcToDst's inverse and reconstructing with filter (spec.md §4.E). For
// an affine transform this is exact; WarpMesh below subdivides a
// non-affine (projected) mapping into meshCellPx affine cells first.
func Warp(dst *pixel.Buffer[pixel.RGBA8], src Source, srcToDst Affine, filter Filter, nodata NodataValue) {
	inv := srcToDst.Invert()
	k := kernelFor(filter)
	sw, sh := src.Bounds()
	dw, dh := dst.Width(), dst.Height()

	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			sx, sy := inv.Apply(float64(dx)+0.5, float64(dy)+0.5)
			dst.Set(dx, dy, sampleOne(src, sw, sh, sx-0.5, sy-0.5, filter, k, nodata))
		}
	}
}

// WarpMesh subdivides dst into meshCellPx square cells, approximates
// the inverse of srcToDstNonlinear within each cell by an affine fit
// through three of its corners (see fitAffine), and warps that cell with Warp's kernel
// logic (spec.md §4.E "Mesh warp" — default cell size 16px, configurable
// per raster symbolizer via cellPx).
func WarpMesh(dst *pixel.Buffer[pixel.RGBA8], src Source, srcToDstNonlinear func(x, y float64) (float64, float64), filter Filter, nodata NodataValue, cellPx int) {
	if cellPx <= 0 {
		cellPx = meshCellPx
	}
	k := kernelFor(filter)
	sw, sh := src.Bounds()
	dw, dh := dst.Width(), dst.Height()

	for cy := 0; cy < dh; cy += cellPx {
		for cx := 0; cx < dw; cx += cellPx {
			x1, y1 := cx, cy
			x2, y2 := minInt(cx+cellPx, dw), minInt(cy+cellPx, dh)
			cellAffine := fitAffine(srcToDstNonlinear, x1, y1, x2, y2)
			inv := cellAffine.Invert()
			for y := y1; y < y2; y++ {
				for x := x1; x < x2; x++ {
					sx, sy := inv.Apply(float64(x)+0.5, float64(y)+0.5)
					dst.Set(x, y, sampleOne(src, sw, sh, sx-0.5, sy-0.5, filter, k, nodata))
				}
			}
		}
	}
}

// fitAffine approximates srcToDst restricted to [x1,x2)x[y1,y2) by the
// affine mapping its three corners (origin, +x, +y) exactly.
func fitAffine(srcToDst func(x, y float64) (float64, float64), x1, y1, x2, y2 int) Affine {
	ox, oy := srcToDst(float64(x1), float64(y1))
	px, py := srcToDst(float64(x2), float64(y1))
	qx, qy := srcToDst(float64(x1), float64(y2))
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	return Affine{
		A: (px - ox) / dx, B: (py - oy) / dx,
		C: (qx - ox) / dy, D: (qy - oy) / dy,
		E: ox - float64(x1)*((px-ox)/dx) - float64(y1)*((qx-ox)/dy),
		F: oy - float64(x1)*((py-oy)/dx) - float64(y1)*((qy-oy)/dy),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// sampleOne reconstructs one destination pixel from a continuous source
// coordinate (sx, sy) using kernel k. FilterNear bypasses the kernel
// entirely per spec.md §4.E ("near, which samples without a kernel").
func sampleOne(src Source, sw, sh int, sx, sy float64, filter Filter, k kernel, nodata NodataValue) pixel.RGBA8 {
	if filter == FilterNear {
		x := clampInt(int(math.Floor(sx+0.5)), 0, sw-1)
		y := clampInt(int(math.Floor(sy+0.5)), 0, sh-1)
		return src.At(x, y)
	}

	x0 := int(math.Floor(sx - k.Radius + 1))
	x1 := int(math.Ceil(sx + k.Radius))
	y0 := int(math.Floor(sy - k.Radius + 1))
	y1 := int(math.Ceil(sy + k.Radius))

	var rSum, gSum, bSum, aSum, wSum float64
	for y := y0; y <= y1; y++ {
		wy := k.Weight(sy - float64(y))
		if wy == 0 {
			continue
		}
		cy := clampInt(y, 0, sh-1)
		for x := x0; x <= x1; x++ {
			wx := k.Weight(sx - float64(x))
			if wx == 0 {
				continue
			}
			cx := clampInt(x, 0, sw-1)
			p := src.At(cx, cy)
			if nodata.Set && p == nodata.RGBA8 {
				continue
			}
			w := wx * wy
			rSum += w * float64(p.R)
			gSum += w * float64(p.G)
			bSum += w * float64(p.B)
			aSum += w * float64(p.A)
			wSum += w
		}
	}

	if wSum == 0 {
		if nodata.Set {
			return nodata.RGBA8
		}
		return pixel.RGBA8{}
	}
	return pixel.RGBA8{
		R: clampByte(rSum / wSum),
		G: clampByte(gSum / wSum),
		B: clampByte(bSum / wSum),
		A: clampByte(aSum / wSum),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// BoundsFromBox returns the pixel bounding box a geom.Box covers at a
// given scale, used by symbolizer/raster.go to size the staging buffer
// before calling Warp (spec.md §4.H Raster row: "4.E into a staging
// buffer").
func BoundsFromBox(b geom.Box, scale float64) (w, h int) {
	w = int(math.Ceil((b.MaxX - b.MinX) * scale))
	h = int(math.Ceil((b.MaxY - b.MinY) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
