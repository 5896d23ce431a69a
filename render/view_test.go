package render

import (
	"testing"

	"github.com/cartograph/cartograph/convert"
	"github.com/cartograph/cartograph/datasource"
)

func TestViewClipBox(t *testing.T) {
	v := View{
		Extent: datasource.Box2D{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50},
		// flips Y, as a screen-space affine typically does
		Affine: convert.Matrix{A: 2, E: -2, F: 100},
	}
	got := v.clipBox()
	if got.MinX != 0 || got.MaxX != 200 {
		t.Fatalf("x range = [%v, %v], want [0, 200]", got.MinX, got.MaxX)
	}
	if got.MinY != 0 || got.MaxY != 100 {
		t.Fatalf("y range = [%v, %v], want [0, 100]", got.MinY, got.MaxY)
	}
}

func TestViewPaddedQueryZeroBuffer(t *testing.T) {
	v := View{Extent: datasource.Box2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}}
	got := v.paddedQuery(0)
	if got != v.Extent {
		t.Fatalf("paddedQuery(0) = %+v, want unchanged extent %+v", got, v.Extent)
	}
}

func TestViewPaddedQueryExpandsByPixelBuffer(t *testing.T) {
	v := View{
		Extent: datasource.Box2D{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100},
		Affine: convert.Matrix{A: 2, E: 2},
	}
	got := v.paddedQuery(10)
	want := datasource.Box2D{MinX: -5, MinY: -5, MaxX: 105, MaxY: 105}
	if got != want {
		t.Fatalf("paddedQuery(10) = %+v, want %+v", got, want)
	}
}

func TestBoxesIntersect(t *testing.T) {
	a := datasource.Box2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tests := []struct {
		name string
		b    datasource.Box2D
		want bool
	}{
		{"overlapping", datasource.Box2D{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}, true},
		{"touching edge", datasource.Box2D{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, true},
		{"disjoint", datasource.Box2D{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boxesIntersect(a, tt.b); got != tt.want {
				t.Fatalf("boxesIntersect(%+v, %+v) = %v, want %v", a, tt.b, got, tt.want)
			}
		})
	}
}
