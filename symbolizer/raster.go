package symbolizer

import (
	"github.com/cartograph/cartograph/datasource"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/resample"
	"github.com/cartograph/cartograph/style"
)

// renderRaster is spec.md §4.H's Raster row: no converter chain (it uses
// the tile's own declared extent rather than a feature geometry), 4.E
// warps the tile into a staging buffer sized to the destination, then
// 4.A composites it in.
func renderRaster(ctx *Context, sym style.Symbolizer, tile datasource.RasterTile, attrs map[string]any) {
	if tile.Width == 0 || tile.Height == 0 {
		return
	}

	filterName := stringProp(sym, "scaling", attrs, "bilinear")
	filter, ok := resample.ParseFilter(filterName)
	if !ok {
		filter = resample.FilterBilinear
	}
	meshSize := int(floatProp(sym, "mesh-size", attrs, 0))

	w, h := ctx.Dst.Width(), ctx.Dst.Height()
	staging := pixel.New[pixel.RGBA8](w, h)

	srcToDst := rasterTileAffine(ctx, tile)
	adapter := rasterTileSource{tile: tile}

	opacity := opacityProp(sym, "opacity", attrs)

	if meshSize > 0 {
		resample.WarpMesh(staging, adapter, func(sx, sy float64) (float64, float64) {
			return srcToDst.Apply(sx, sy)
		}, filter, resample.NodataValue{}, meshSize)
	} else {
		resample.Warp(staging, adapter, srcToDst, filter, resample.NodataValue{})
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := staging.At(x, y)
			if src.A == 0 {
				continue
			}
			if opacity < 1.0 {
				src = scaleRGBA8Opacity(src, opacity)
			}
			dst := ctx.Dst.At(x, y)
			ctx.Dst.Set(x, y, pixel.BlendPixel(ctx.Mode, src, dst))
		}
	}
}

// rasterTileAffine derives the source-pixel -> destination-pixel affine
// for tile: tile pixel (0,0) is the extent's top-left in a north-up
// raster, composed with the map's own geometry -> screen affine
// (ctx.Affine), since both legs are affine the composition is too.
func rasterTileAffine(ctx *Context, tile datasource.RasterTile) resample.Affine {
	extW := tile.Extent.MaxX - tile.Extent.MinX
	extH := tile.Extent.MaxY - tile.Extent.MinY
	var sxPerPx, syPerPx float64
	if tile.Width > 0 {
		sxPerPx = extW / float64(tile.Width)
	}
	if tile.Height > 0 {
		syPerPx = -extH / float64(tile.Height)
	}

	// tileToGeo: geoX = sxPerPx*px + extent.MinX, geoY = syPerPx*py + extent.MaxY
	tileToGeo := resample.Affine{
		A: sxPerPx, C: 0, E: tile.Extent.MinX,
		B: 0, D: syPerPx, F: tile.Extent.MaxY,
	}

	geoToScreen := resample.Affine{
		A: ctx.Affine.A, C: ctx.Affine.B, E: ctx.Affine.C,
		B: ctx.Affine.D, D: ctx.Affine.E, F: ctx.Affine.F,
	}

	return composeResampleAffine(tileToGeo, geoToScreen)
}

// rasterTileSource adapts a datasource.RasterTile (unpremultiplied,
// row-major RGBA bytes) to resample.Source, premultiplying on read.
type rasterTileSource struct {
	tile datasource.RasterTile
}

func (r rasterTileSource) Bounds() (int, int) { return r.tile.Width, r.tile.Height }

func (r rasterTileSource) At(x, y int) pixel.RGBA8 {
	if x < 0 || y < 0 || x >= r.tile.Width || y >= r.tile.Height {
		return pixel.RGBA8{}
	}
	i := (y*r.tile.Width + x) * 4
	if i+3 >= len(r.tile.Pix) {
		return pixel.RGBA8{}
	}
	c := pixel.Color{R: r.tile.Pix[i], G: r.tile.Pix[i+1], B: r.tile.Pix[i+2], A: r.tile.Pix[i+3]}
	return pixel.RGBA8(c.Premultiply())
}
