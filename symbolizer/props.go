// props.go resolves a style.Symbolizer's typed property values against
// one feature's attributes (spec.md §6 "Configuration vocabulary"). This
// is the property-getter half of the visitor-over-tagged-union redesign
// spec.md §9 calls for: a plain function per accessor, no getter
// interface per symbolizer kind.
package symbolizer

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/style"
)

// pixelGray is the fallback fill/stroke color when a symbolizer sets
// neither a literal nor an expression for the property — matching
// Mapnik's own "gray" default symbolizer color.
var pixelGray = pixel.Color{R: 128, G: 128, B: 128, A: 255}

// resolve evaluates sym's key against attrs, returning ok=false when the
// key is unset.
func resolve(sym style.Symbolizer, key string, attrs map[string]any) (any, bool) {
	v, has := sym.Get(key)
	if !has || v.IsZero() {
		return nil, false
	}
	val, err := v.Resolve(attrs)
	if err != nil || val == nil {
		return nil, false
	}
	return val, true
}

func floatProp(sym style.Symbolizer, key string, attrs map[string]any, def float64) float64 {
	v, ok := resolve(sym, key, attrs)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

func boolProp(sym style.Symbolizer, key string, attrs map[string]any, def bool) bool {
	v, ok := resolve(sym, key, attrs)
	if !ok {
		return def
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return def
}

func stringProp(sym style.Symbolizer, key string, attrs map[string]any, def string) string {
	v, ok := resolve(sym, key, attrs)
	if !ok {
		return def
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return def
}

// colorProp resolves a color property to an unpremultiplied pixel.Color,
// unscaled (the symbolizer's own `opacity`/`fill-opacity`/
// `stroke-opacity` keys are applied by the caller, not here).
func colorProp(sym style.Symbolizer, key string, attrs map[string]any, def pixel.Color) pixel.Color {
	v, ok := resolve(sym, key, attrs)
	if !ok {
		return def
	}
	switch c := v.(type) {
	case pixel.Color:
		return c
	case string:
		if parsed, ok := parseColor(c); ok {
			return parsed
		}
	}
	return def
}

// parseColor accepts "#rrggbb" or "#rrggbbaa" hex strings, delegating the
// rgb portion to go-colorful (already carried for marker/gradient.go's
// LAB blending) and handling the optional alpha suffix itself.
func parseColor(s string) (pixel.Color, bool) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	hex := s
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		hex = s[:7]
		if a, err := strconv.ParseUint(s[7:9], 16, 8); err == nil {
			alpha = uint8(a)
		}
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return pixel.Color{}, false
	}
	r, g, b := c.RGB255()
	return pixel.Color{R: r, G: g, B: b, A: alpha}, true
}

// opacityProp resolves the effective alpha multiplier for a fill or
// stroke: `opacity` combined multiplicatively with the more specific
// `fill-opacity`/`stroke-opacity` key (spec.md §6).
func opacityProp(sym style.Symbolizer, specificKey string, attrs map[string]any) float64 {
	overall := floatProp(sym, "opacity", attrs, 1.0)
	specific := floatProp(sym, specificKey, attrs, 1.0)
	return overall * specific
}

// scaleColorOpacity multiplies c's alpha by extra (already in [0,1]) on
// top of whatever alpha c already carries; RGB is left unchanged.
func scaleColorOpacity(c pixel.Color, extra float64) pixel.Color {
	if extra >= 1.0 {
		return c
	}
	if extra <= 0 {
		return pixel.Color{}
	}
	return pixel.Color{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A)*extra + 0.5)}
}

// dashArrayProp resolves a `stroke-dasharray` property already shaped as
// []float64 pairs; cartograph does not parse a DSL for this (spec.md §1
// "expression/filter parsing" is an external collaborator) — callers
// supply dasharrays as literal Go values when building a Symbolizer.
func dashArrayProp(sym style.Symbolizer, attrs map[string]any) []float64 {
	v, ok := resolve(sym, "stroke-dasharray", attrs)
	if !ok {
		return nil
	}
	arr, isArr := v.([]float64)
	if !isArr {
		return nil
	}
	return arr
}

func lineCapProp(sym style.Symbolizer, attrs map[string]any) string {
	return stringProp(sym, "stroke-linecap", attrs, "butt")
}

func lineJoinProp(sym style.Symbolizer, attrs map[string]any) string {
	return stringProp(sym, "stroke-linejoin", attrs, "miter")
}

func placementProp(sym style.Symbolizer, attrs map[string]any) string {
	return stringProp(sym, "placement", attrs, "point")
}
