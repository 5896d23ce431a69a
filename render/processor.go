package render

import (
	"github.com/cartograph/cartograph/config"
	"github.com/cartograph/cartograph/datasource"
	"github.com/cartograph/cartograph/label"
	"github.com/cartograph/cartograph/mcerrors"
	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/raster"
	"github.com/cartograph/cartograph/style"
	"github.com/cartograph/cartograph/symbolizer"

	"github.com/cartograph/cartograph/cartolog"
)

// Processor runs spec.md §4.I's feature/style loop over a style.Map,
// driving symbolizer.Dispatch for every firing (feature, symbolizer)
// pair. One Processor is safe for concurrent Render calls against
// independent (Map, buffer, detector) triples (spec.md §5: "Two render
// passes may run concurrently on independent Map/pixel buffer/detector
// triples"); it holds no per-pass mutable state itself.
type Processor struct {
	opts     config.Options
	fonts    symbolizer.FontSource
	patterns symbolizer.PatternSource
	markers  symbolizer.MarkerSource
}

// New builds a Processor. fonts/patterns/markers may be nil — symbolizer
// rows that need them (Text/Shield, *Pattern, Marker with a `file`
// property) then degrade to their documented MissingAsset fallback
// rather than failing the pass.
func New(fonts symbolizer.FontSource, patterns symbolizer.PatternSource, markers symbolizer.MarkerSource, opts ...config.Option) *Processor {
	return &Processor{
		opts:     config.Apply(opts...),
		fonts:    fonts,
		patterns: patterns,
		markers:  markers,
	}
}

// Render draws m into dst under view, querying features from sources
// (keyed by layer name — concrete datasources are out of scope per
// spec.md §1, so wiring a layer to its backing Datasource is the
// caller's job). Cancellation is checked between layers, per the
// Cancel context supplied at construction (spec.md §5: "Implementations
// MAY offer a cancellation token checked between features"). Returns
// the first BadInput error or cancellation encountered; a per-layer
// DatasourceIOError is logged and that layer skipped, matching
// mcerrors' documented policy.
func (p *Processor) Render(m style.Map, sources map[string]datasource.Datasource, view View, dst *pixel.Buffer[pixel.RGBA8]) error {
	detector := label.NewDetector()

	for _, layer := range m.Layers {
		select {
		case <-p.opts.Cancel.Done():
			return p.opts.Cancel.Err()
		default:
		}

		if !layer.Active(m.ScaleDenom) {
			continue
		}

		ds, ok := sources[layer.Name]
		if !ok {
			continue
		}
		if !boxesIntersect(ds.Envelope(), view.Extent) {
			continue
		}

		if layer.ClearLabelCache {
			detector.Clear()
		}

		if err := p.renderLayer(m, layer, ds, view, detector, dst); err != nil {
			if mcerrors.Is(err, mcerrors.DatasourceIOError) {
				cartolog.Logger().Warn("layer skipped", "layer", layer.Name, "error", err)
				continue
			}
			return err
		}
	}
	return nil
}

func (p *Processor) renderLayer(m style.Map, layer style.Layer, ds datasource.Datasource, view View, detector *label.Detector, dst *pixel.Buffer[pixel.RGBA8]) error {
	queryExtent := view.paddedQuery(layer.BufferSize)

	for _, fts := range m.StylesFor(layer) {
		ifRules, elseRules := fts.ActiveRules(m.ScaleDenom)
		if len(ifRules) == 0 && len(elseRules) == 0 {
			continue
		}

		filterFactor := layer.QueryFilterFactor
		if filterFactor == 0 {
			filterFactor = 1
		}
		query := datasource.Query{
			Bbox:          queryExtent,
			Width:         m.Width,
			Height:        m.Height,
			Resolution:    view.ScaleFactor,
			PropertyNames: collectAttrNames(fts),
			FilterFactor:  filterFactor,
		}

		fset, err := ds.Features(query)
		if err != nil {
			return mcerrors.New(mcerrors.DatasourceIOError, "render.Processor.renderLayer", err)
		}

		target := dst
		if fts.HasStyleLevelCompositing() {
			target = pixel.New[pixel.RGBA8](dst.Width(), dst.Height())
		}

		symCtx := &symbolizer.Context{
			Dst:              target,
			Affine:           view.Affine,
			ClipBox:          view.clipBox(),
			ScaleFactor:      view.ScaleFactor,
			FlattenTolerance: view.FlattenTolerance,
			Gamma:            p.opts.GammaFunc,
			Mode:             pixel.SrcOver,
			Detector:         detector,
			Fonts:            p.fonts,
			Patterns:         p.patterns,
			Markers:          p.markers,
		}
		if symCtx.Gamma == nil {
			symCtx.Gamma = raster.LinearGamma
		}

		p.renderFeatures(fset, fts, ifRules, elseRules, query.PropertyNames, symCtx)
		fset.Close()

		if target != dst {
			compositeStyle(dst, target, fts)
		}
	}
	return nil
}

func (p *Processor) renderFeatures(fset datasource.Featureset, fts style.FeatureTypeStyle, ifRules, elseRules []style.Rule, attrNames []string, symCtx *symbolizer.Context) {
	for {
		feat, ok := fset.Next()
		if !ok {
			return
		}

		attrs := buildAttrs(feat, attrNames)

		var firing []style.Rule
		for _, r := range ifRules {
			if r.Matches(attrs) {
				firing = append(firing, r)
			}
		}
		if len(firing) == 0 {
			for _, r := range elseRules {
				if r.Matches(attrs) {
					firing = append(firing, r)
				}
			}
		}

		for _, r := range firing {
			for _, sym := range r.Symbolizers {
				symbolizer.Dispatch(symCtx, sym, feat, attrs)
			}
		}
	}
}

// compositeStyle applies the style's comp_op/opacity and blends private
// onto dst (spec.md §4.I item 3). Image-filter application is not
// implemented: spec.md names `image-filters` as "list of filter atoms"
// but defines no concrete filter set or parameters to implement against,
// so a style that sets only image-filters (no comp_op, opacity == 1)
// still triggers the private-buffer path for isolation but composites
// with a plain source-over/full-opacity blend.
func compositeStyle(dst, private *pixel.Buffer[pixel.RGBA8], fts style.FeatureTypeStyle) {
	mode := pixel.SrcOver
	if m, ok := compOpMode(fts.CompOp); ok {
		mode = m
	}
	opacity := fts.Opacity
	if opacity <= 0 {
		opacity = 1.0
	}
	pixel.Composite(dst, private, mode, opacity, 0, 0)
}

func compOpMode(name string) (pixel.Mode, bool) {
	switch name {
	case "":
		return pixel.SrcOver, false
	case "src-over":
		return pixel.SrcOver, true
	case "src":
		return pixel.Src, true
	case "dst-over":
		return pixel.DstOver, true
	case "src-in":
		return pixel.SrcIn, true
	case "dst-in":
		return pixel.DstIn, true
	case "src-out":
		return pixel.SrcOut, true
	case "dst-out":
		return pixel.DstOut, true
	case "src-atop":
		return pixel.SrcAtop, true
	case "dst-atop":
		return pixel.DstAtop, true
	case "xor":
		return pixel.Xor, true
	case "plus":
		return pixel.Plus, true
	case "minus":
		return pixel.Minus, true
	case "multiply":
		return pixel.Multiply, true
	case "screen":
		return pixel.Screen, true
	case "overlay":
		return pixel.Overlay, true
	case "darken":
		return pixel.Darken, true
	case "lighten":
		return pixel.Lighten, true
	case "color-dodge":
		return pixel.ColorDodge, true
	case "color-burn":
		return pixel.ColorBurn, true
	case "hard-light":
		return pixel.HardLight, true
	case "soft-light":
		return pixel.SoftLight, true
	case "difference":
		return pixel.Difference, true
	case "exclusion":
		return pixel.Exclusion, true
	case "contrast":
		return pixel.Contrast, true
	case "invert":
		return pixel.Invert, true
	case "invert-rgb":
		return pixel.InvertRGB, true
	case "grain-merge":
		return pixel.GrainMerge, true
	case "grain-extract":
		return pixel.GrainExtract, true
	case "hue":
		return pixel.Hue, true
	case "saturation":
		return pixel.Saturation, true
	case "color":
		return pixel.ColorMode, true
	case "value":
		return pixel.Value, true
	case "linear-dodge":
		return pixel.LinearDodge, true
	case "linear-burn":
		return pixel.LinearBurn, true
	case "divide":
		return pixel.Divide, true
	default:
		return pixel.SrcOver, false
	}
}
