package symbolizer

import (
	"testing"

	"github.com/cartograph/cartograph/pixel"
	"github.com/cartograph/cartograph/style"
)

func TestFloatPropFallsBackToDefault(t *testing.T) {
	sym := style.Symbolizer{}
	if got := floatProp(sym, "size", nil, 12); got != 12 {
		t.Fatalf("floatProp = %v, want 12", got)
	}
}

func TestFloatPropParsesStringLiteral(t *testing.T) {
	sym := style.Symbolizer{Properties: map[string]style.Value{
		"width": style.Lit("2.5"),
	}}
	if got := floatProp(sym, "width", nil, 0); got != 2.5 {
		t.Fatalf("floatProp = %v, want 2.5", got)
	}
}

func TestColorPropParsesHexWithoutAlpha(t *testing.T) {
	sym := style.Symbolizer{Properties: map[string]style.Value{
		"fill": style.Lit("#ff0000"),
	}}
	got := colorProp(sym, "fill", nil, pixel.Color{})
	want := pixel.Color{R: 255, G: 0, B: 0, A: 255}
	if got != want {
		t.Fatalf("colorProp = %+v, want %+v", got, want)
	}
}

func TestColorPropParsesHexWithAlphaSuffix(t *testing.T) {
	sym := style.Symbolizer{Properties: map[string]style.Value{
		"fill": style.Lit("#00ff0080"),
	}}
	got := colorProp(sym, "fill", nil, pixel.Color{})
	if got.R != 0 || got.G != 255 || got.B != 0 || got.A != 0x80 {
		t.Fatalf("colorProp = %+v, want G=255 A=0x80", got)
	}
}

func TestColorPropInvalidHexFallsBackToDefault(t *testing.T) {
	sym := style.Symbolizer{Properties: map[string]style.Value{
		"fill": style.Lit("not-a-color"),
	}}
	def := pixel.Color{R: 1, G: 2, B: 3, A: 4}
	got := colorProp(sym, "fill", nil, def)
	if got != def {
		t.Fatalf("colorProp = %+v, want default %+v", got, def)
	}
}

func TestOpacityPropCombinesOverallAndSpecific(t *testing.T) {
	sym := style.Symbolizer{Properties: map[string]style.Value{
		"opacity":      style.Lit(0.5),
		"fill-opacity": style.Lit(0.5),
	}}
	got := opacityProp(sym, "fill-opacity", nil)
	if got != 0.25 {
		t.Fatalf("opacityProp = %v, want 0.25", got)
	}
}

func TestScaleColorOpacity(t *testing.T) {
	c := pixel.Color{R: 10, G: 20, B: 30, A: 200}
	if got := scaleColorOpacity(c, 1.0); got != c {
		t.Fatalf("scaleColorOpacity(c, 1.0) = %+v, want unchanged %+v", got, c)
	}
	if got := scaleColorOpacity(c, 0); got != (pixel.Color{}) {
		t.Fatalf("scaleColorOpacity(c, 0) = %+v, want zero value", got)
	}
	got := scaleColorOpacity(c, 0.5)
	if got.A != 100 {
		t.Fatalf("scaleColorOpacity(c, 0.5).A = %v, want 100", got.A)
	}
}

func TestBoolPropFallback(t *testing.T) {
	sym := style.Symbolizer{Properties: map[string]style.Value{
		"allow-overlap": style.Lit(true),
	}}
	if !boolProp(sym, "allow-overlap", nil, false) {
		t.Fatalf("boolProp = false, want true")
	}
	if !boolProp(sym, "missing-key", nil, true) {
		t.Fatalf("boolProp default = false, want true")
	}
}
