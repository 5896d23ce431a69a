package label

import (
	"math"
	"testing"

	"github.com/cartograph/cartograph/geom"
)

func TestPointPlacement(t *testing.T) {
	tests := []struct {
		name    string
		geo     geom.Geometry
		wantX   float64
		wantY   float64
		wantOK  bool
	}{
		{
			name:   "point geometry returns the point itself",
			geo:    geom.NewPoint(5, 7),
			wantX:  5,
			wantY:  7,
			wantOK: true,
		},
		{
			name:   "line geometry returns mid-vertex",
			geo:    geom.NewLineString([]geom.Point{{0, 0}, {10, 0}, {20, 0}}),
			wantX:  10,
			wantY:  0,
			wantOK: true,
		},
		{
			name: "square polygon returns its centroid",
			geo: geom.NewPolygon(geom.Polygon{
				Exterior: geom.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
			}),
			wantX:  5,
			wantY:  5,
			wantOK: true,
		},
		{
			name:   "empty multipoint fails",
			geo:    geom.NewMultiPoint(nil),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Point(&tt.geo, Params{})
			if ok != tt.wantOK {
				t.Fatalf("Point() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(c.X-tt.wantX) > 1e-9 || math.Abs(c.Y-tt.wantY) > 1e-9 {
				t.Errorf("Point() = (%v,%v), want (%v,%v)", c.X, c.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPointPlacementDisplacement(t *testing.T) {
	g := geom.NewPoint(0, 0)
	c, ok := Point(&g, Params{DisplacementX: 3, DisplacementY: -4})
	if !ok {
		t.Fatal("expected placement to succeed")
	}
	if c.X != 3 || c.Y != -4 {
		t.Errorf("Point() = (%v,%v), want (3,-4)", c.X, c.Y)
	}
}

func TestLinePlacementSpacing(t *testing.T) {
	// A straight 100px horizontal line, spacing 25, should yield evenly
	// spaced candidates with a zero tangent angle throughout.
	g := geom.NewLineString([]geom.Point{{0, 0}, {100, 0}})
	candidates := Line(&g, Params{Spacing: 25, MaxError: 25})

	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	for i, c := range candidates {
		if math.Abs(c.Angle) > 1e-9 {
			t.Errorf("candidate %d angle = %v, want 0", i, c.Angle)
		}
		if c.X < 0 || c.X > 100 {
			t.Errorf("candidate %d X = %v out of range", i, c.X)
		}
	}
	for i := 1; i < len(candidates); i++ {
		gotSpacing := candidates[i].X - candidates[i-1].X
		if math.Abs(gotSpacing-25) > 1e-6 {
			t.Errorf("spacing between candidate %d and %d = %v, want 25", i-1, i, gotSpacing)
		}
	}
}

func TestLinePlacementRejectsSharpAngle(t *testing.T) {
	// A line with a near-reversal in the middle: placements spanning the
	// corner should be rejected under a tight max-char-angle-delta.
	g := geom.NewLineString([]geom.Point{{0, 0}, {50, 0}, {50 - 1e-6, 50}})
	candidates := Line(&g, Params{Spacing: 10, MaxError: 5, MaxCharAngleDelta: 0.01})

	for i := 1; i < len(candidates); i++ {
		if angleDelta(candidates[i].Angle, candidates[i-1].Angle) > 0.01+1e-9 {
			t.Errorf("consecutive candidates %d,%d exceed max-char-angle-delta", i-1, i)
		}
	}
}

func TestLinePlacementNonLineGeometryReturnsNil(t *testing.T) {
	g := geom.NewPoint(0, 0)
	if c := Line(&g, Params{Spacing: 10}); c != nil {
		t.Errorf("Line() on a point geometry = %v, want nil", c)
	}
}

func TestVertexPlacement(t *testing.T) {
	g := geom.NewLineString([]geom.Point{{0, 0}, {10, 0}, {10, 10}})
	candidates := Vertex(&g)

	if len(candidates) != 3 {
		t.Fatalf("Vertex() returned %d candidates, want 3", len(candidates))
	}
	for i, p := range []geom.Point{{0, 0}, {10, 0}, {10, 10}} {
		if candidates[i].X != p.X || candidates[i].Y != p.Y {
			t.Errorf("candidate %d = (%v,%v), want (%v,%v)", i, candidates[i].X, candidates[i].Y, p.X, p.Y)
		}
	}
}

func TestInteriorPlacementSquare(t *testing.T) {
	g := geom.NewPolygon(geom.Polygon{
		Exterior: geom.Ring{{0, 0}, {20, 0}, {20, 20}, {0, 20}},
	})

	c, ok := Interior(&g)
	if !ok {
		t.Fatal("expected interior placement to succeed")
	}
	if !pointInRing(c.X, c.Y, g.Polygons[0].Exterior) {
		t.Errorf("Interior() = (%v,%v) not inside polygon", c.X, c.Y)
	}
	// For a square the pole of inaccessibility is the center.
	if math.Abs(c.X-10) > 2 || math.Abs(c.Y-10) > 2 {
		t.Errorf("Interior() = (%v,%v), want near (10,10)", c.X, c.Y)
	}
}

func TestInteriorPlacementNonPolygonFails(t *testing.T) {
	g := geom.NewLineString([]geom.Point{{0, 0}, {1, 1}})
	if _, ok := Interior(&g); ok {
		t.Errorf("Interior() on a line geometry succeeded, want failure")
	}
}

func TestPointInRing(t *testing.T) {
	ring := geom.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 5, 5, true},
		{"outside", 15, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointInRing(tt.x, tt.y, ring); got != tt.want {
				t.Errorf("pointInRing(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
