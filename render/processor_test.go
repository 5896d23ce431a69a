package render

import (
	"testing"

	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/datasource"
	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/style"
)

func TestProcessorRenderFillsPolygon(t *testing.T) {
	extent := datasource.Box2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	square := geom.NewPolygon(geom.Polygon{
		Exterior: geom.Ring{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}},
	})
	src := datasource.NewMemory(datasource.Vector, extent, []datasource.MemoryFeature{
		{IDValue: 1, Geom: square, HasGeom: true, Attrs: map[string]any{"kind": "land"}},
	})

	fts := style.FeatureTypeStyle{
		Rules: []style.Rule{{
			Symbolizers: []style.Symbolizer{{
				Kind:       style.KindPolygon,
				Properties: map[string]style.Value{"fill": style.Lit("#ff0000")},
			}},
		}},
	}
	m := style.Map{
		Layers:     []style.Layer{{Name: "land", StyleNames: []string{"land"}}},
		Styles:     map[string]style.FeatureTypeStyle{"land": fts},
		Width:      10,
		Height:     10,
		ScaleDenom: 1,
	}

	view := View{Extent: extent, Affine: convert.Matrix{A: 1, E: 1}}
	dst := pixel.New[pixel.RGBA8](10, 10)

	p := New(nil, nil, nil)
	if err := p.Render(m, map[string]datasource.Datasource{"land": src}, view, dst); err != nil {
		t.Fatalf("Render: %v", err)
	}

	center := dst.At(5, 5)
	if center.A == 0 {
		t.Fatalf("center pixel not painted: %+v", center)
	}

	corner := dst.At(0, 0)
	if corner.A != 0 {
		t.Fatalf("corner pixel outside the polygon was painted: %+v", corner)
	}
}

func TestProcessorRenderSkipsInactiveLayer(t *testing.T) {
	extent := datasource.Box2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	src := datasource.NewMemory(datasource.Vector, extent, nil)

	m := style.Map{
		Layers:     []style.Layer{{Name: "land", StyleNames: []string{"land"}, MinScale: 1000}},
		Styles:     map[string]style.FeatureTypeStyle{"land": {}},
		Width:      10,
		Height:     10,
		ScaleDenom: 1, // below MinScale, layer inactive
	}
	view := View{Extent: extent, Affine: convert.Matrix{A: 1, E: 1}}
	dst := pixel.New[pixel.RGBA8](10, 10)

	p := New(nil, nil, nil)
	if err := p.Render(m, map[string]datasource.Datasource{"land": src}, view, dst); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if dst.At(5, 5).A != 0 {
		t.Fatalf("inactive layer painted a pixel")
	}
}

func TestProcessorRenderMissingSourceSkipsLayer(t *testing.T) {
	extent := datasource.Box2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	m := style.Map{
		Layers: []style.Layer{{Name: "land", StyleNames: []string{"land"}}},
		Styles: map[string]style.FeatureTypeStyle{"land": {}},
		Width:  10, Height: 10,
	}
	view := View{Extent: extent, Affine: convert.Matrix{A: 1, E: 1}}
	dst := pixel.New[pixel.RGBA8](10, 10)

	p := New(nil, nil, nil)
	if err := p.Render(m, map[string]datasource.Datasource{}, view, dst); err != nil {
		t.Fatalf("Render with no matching source: %v", err)
	}
}
