package symbolizer

import (
	"math"

	"github.com/cartograph/cartograph/geom"
	"github.com/cartograph/cartograph/label"
	"github.com/cartograph/cartograph/marker"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/style"
)

// MarkerSource resolves a Marker/Point symbolizer's `file` property (or
// its absence, for a built-in default) into a marker.Symbol template.
// SVG path parsing is an external collaborator (spec.md §1 Non-goals:
// "the SVG parser"); this interface is the consumed contract.
type MarkerSource interface {
	Load(file string) (marker.Symbol, bool)
}

// defaultMarkerSymbol is used when no MarkerSource is wired or the
// requested file is missing — a small filled circle, matching spec.md
// §7's MissingAsset policy ("marker: use a built-in placeholder
// vector"), never fatal.
func defaultMarkerSymbol() marker.Symbol {
	const r = 5.0
	pts := make([]geom.Point, 0, 16)
	for i := 0; i < 16; i++ {
		a := 2 * math.Pi * float64(i) / 16
		pts = append(pts, geom.Point{X: r + r*math.Cos(a), Y: r + r*math.Sin(a)})
	}
	path := geom.NewPolygon(geom.Polygon{Exterior: pts})
	return marker.Symbol{
		Path:   &path,
		Fill:   pixel.Color{R: 0, G: 0, B: 0, A: 255},
		Width:  2 * r,
		Height: 2 * r,
	}
}

// renderMarker is spec.md §4.H's Marker row: placement search (4.G) on
// the raw geometry, each candidate projected through ctx.Affine, then one
// marker.Render (4.F) per accepted placement. No clip, simplify or smooth
// converter runs on the geometry.
func renderMarker(ctx *Context, sym style.Symbolizer, g *geom.Geometry, attrs map[string]any) {
	sMarker := defaultMarkerSymbol()
	if file := stringProp(sym, "file", attrs, ""); file != "" && ctx.Markers != nil {
		if loaded, ok := ctx.Markers.Load(file); ok {
			sMarker = loaded
		}
	}

	fillSet, hasFill := resolve(sym, "fill", attrs)
	if hasFill {
		if c, ok := fillSet.(string); ok {
			if parsed, ok := parseColor(c); ok {
				sMarker.Fill = parsed
			}
		}
	}
	sMarker.Fill = scaleColorOpacity(sMarker.Fill, opacityProp(sym, "fill-opacity", attrs))

	if strokeSet, hasStroke := resolve(sym, "stroke", attrs); hasStroke {
		if c, ok := strokeSet.(string); ok {
			if parsed, ok := parseColor(c); ok {
				sMarker.Stroke = scaleColorOpacity(parsed, opacityProp(sym, "stroke-opacity", attrs))
				sMarker.HasStroke = true
				sMarker.StrokeWidth = floatProp(sym, "stroke-width", attrs, 1.0)
			}
		}
	}

	placementMode := toPlacementMode(placementProp(sym, attrs))
	allowOverlap := boolProp(sym, "allow-overlap", attrs, false)
	ignorePlacement := boolProp(sym, "ignore-placement", attrs, false)
	spacing := floatProp(sym, "spacing", attrs, 100)
	maxError := floatProp(sym, "max-error", attrs, spacing)

	key := stringProp(sym, "file", attrs, "marker")
	margin := 0.0

	candidates := searchPlacements(placementMode, g, label.Params{
		Spacing:  spacing,
		MaxError: maxError,
	})

	for _, c := range candidates {
		dx, dy := ctx.Affine.Apply(c.X, c.Y)
		box := markerBox(dx, dy, sMarker.Width, sMarker.Height)

		if !allowOverlap && ctx.Detector != nil {
			if ctx.Detector.HasPlacement(box, key, margin, 0) {
				continue
			}
		}

		marker.Render(ctx.Dst, sMarker, marker.Placement{X: dx, Y: dy, Rotation: c.Angle, Scale: 1.0}, ctx.Mode)

		if !ignorePlacement && ctx.Detector != nil {
			ctx.Detector.Insert(label.Record{Box: box, Key: key, Margin: margin})
		}
	}
}

func markerBox(x, y, w, h float64) geom.Box {
	return geom.Box{MinX: x - w/2, MinY: y - h/2, MaxX: x + w/2, MaxY: y + h/2}
}

func toPlacementMode(s string) label.Mode {
	switch s {
	case "line":
		return label.ModeLine
	case "vertex":
		return label.ModeVertex
	case "interior":
		return label.ModeInterior
	default:
		return label.ModePoint
	}
}

// searchPlacements runs the spec.md §4.G placement-search strategy
// selected by mode, in the feature's untransformed coordinate space —
// label search happens in raw geometry space and the
// caller projects each candidate through ctx.Affine, matching how
// renderMarker above applies ctx.Affine per returned candidate.
func searchPlacements(mode label.Mode, g *geom.Geometry, p label.Params) []label.Candidate {
	switch mode {
	case label.ModeLine:
		return label.Line(g, p)
	case label.ModeVertex:
		return label.Vertex(g)
	case label.ModeInterior:
		if c, ok := label.Interior(g); ok {
			return []label.Candidate{c}
		}
		return nil
	default:
		if c, ok := label.Point(g, p); ok {
			return []label.Candidate{c}
		}
		return nil
	}
}
