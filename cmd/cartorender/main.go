// Command cartorender renders a thematic map to a PNG file.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/cartograph/cartograph/config"
	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/datasource"
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/render"
	"github.com/cartograph/cartograph/style"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "map.png", "output file")
	)
	flag.Parse()

	dst := pixel.New[pixel.RGBA8](*width, *height)
	pixel.Fill(dst, pixel.Color{R: 245, G: 243, B: 238, A: 255}.Premultiply())

	m, sources, view := demoMap(*width, *height)

	p := render.New(nil, nil, nil, config.WithRenderMode(config.RenderModeAA))
	if err := p.Render(m, sources, view, dst); err != nil {
		log.Fatalf("render: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer func() { _ = f.Close() }()

	if err := pixel.EncodePNG(f, dst); err != nil {
		log.Fatalf("encode png: %v", err)
	}

	log.Printf("map saved to %s (%dx%d)\n", *output, *width, *height)
}

// demoMap builds a small hand-coded style.Map and backing datasources —
// one polygon layer and one line layer over a 100x100 unit extent —
// mirroring ggdemo's own hand-built shapes demo rather than loading a
// style document (document parsing is out of scope, spec.md §1).
func demoMap(width, height int) (style.Map, map[string]datasource.Datasource, render.View) {
	extent := datasource.Box2D{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}

	landPoly := geom.NewPolygon(geom.Polygon{
		Exterior: geom.Ring{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 90}, {X: 10, Y: 90}},
	})
	road := geom.NewLineString(geom.Ring{{X: 10, Y: 50}, {X: 50, Y: 20}, {X: 90, Y: 50}})

	landSource := datasource.NewMemory(datasource.Vector, extent, []datasource.MemoryFeature{
		{IDValue: 1, Geom: landPoly, HasGeom: true, Attrs: map[string]any{"name": "land"}},
	})
	roadSource := datasource.NewMemory(datasource.Vector, extent, []datasource.MemoryFeature{
		{IDValue: 2, Geom: road, HasGeom: true, Attrs: map[string]any{"name": "road"}},
	})

	landStyle := style.FeatureTypeStyle{
		Name: "land",
		Rules: []style.Rule{{
			Symbolizers: []style.Symbolizer{{
				Kind: style.KindPolygon,
				Properties: map[string]style.Value{
					"fill": style.Lit("#b7d8a8"),
				},
			}},
		}},
	}
	roadStyle := style.FeatureTypeStyle{
		Name: "road",
		Rules: []style.Rule{{
			Symbolizers: []style.Symbolizer{{
				Kind: style.KindLine,
				Properties: map[string]style.Value{
					"stroke":       style.Lit("#8a8a8a"),
					"stroke-width": style.Lit(3.0),
				},
			}},
		}},
	}

	m := style.Map{
		Layers: []style.Layer{
			{Name: "land", StyleNames: []string{"land"}},
			{Name: "roads", StyleNames: []string{"road"}},
		},
		Styles:     map[string]style.FeatureTypeStyle{"land": landStyle, "road": roadStyle},
		Width:      width,
		Height:     height,
		ScaleDenom: 1,
	}

	sources := map[string]datasource.Datasource{
		"land":  landSource,
		"roads": roadSource,
	}

	sx := float64(width) / (extent.MaxX - extent.MinX)
	sy := float64(height) / (extent.MaxY - extent.MinY)
	view := render.View{
		Extent:           extent,
		Affine:           convert.Matrix{A: sx, E: sy},
		ScaleFactor:      1.0,
		FlattenTolerance: 0.25,
	}
	return m, sources, view
}
