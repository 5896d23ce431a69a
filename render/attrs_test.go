package render

import (
	"sort"
	"testing"

	"github.com/cartograph/cartograph/style"
)

// attrExpr is a minimal style.Expr that also implements namedExpr, as a
// real expression-language adapter would.
type attrExpr struct {
	names []string
	value any
}

func (e attrExpr) Eval(attrs map[string]any) (any, error) { return e.value, nil }
func (e attrExpr) AttrNames() []string                    { return e.names }

// plainExpr implements style.Expr only, not namedExpr, to exercise the
// fallback-to-nothing path.
type plainExpr struct{ value any }

func (e plainExpr) Eval(attrs map[string]any) (any, error) { return e.value, nil }

func TestCollectAttrNames(t *testing.T) {
	fts := style.FeatureTypeStyle{
		Rules: []style.Rule{
			{
				Filter: attrExpr{names: []string{"class"}, value: true},
				Symbolizers: []style.Symbolizer{
					{Properties: map[string]style.Value{
						"fill": {Expr: attrExpr{names: []string{"color"}, value: "#fff"}},
					}},
				},
			},
			{
				Filter: plainExpr{value: true},
				Symbolizers: []style.Symbolizer{
					{Properties: map[string]style.Value{
						"stroke-width": {Expr: attrExpr{names: []string{"class", "width"}, value: 1.0}},
					}},
				},
			},
		},
	}

	got := collectAttrNames(fts)
	sort.Strings(got)
	want := []string{"class", "color", "width"}
	if len(got) != len(want) {
		t.Fatalf("collectAttrNames = %v, want %v", got, want)
	}
	for i, n := range want {
		if got[i] != n {
			t.Fatalf("collectAttrNames = %v, want %v", got, want)
		}
	}
}

func TestCollectAttrNamesNoNamedExpr(t *testing.T) {
	fts := style.FeatureTypeStyle{
		Rules: []style.Rule{{Filter: plainExpr{value: true}}},
	}
	got := collectAttrNames(fts)
	if len(got) != 0 {
		t.Fatalf("collectAttrNames = %v, want empty", got)
	}
}

type fakeAttrFeature struct{ attrs map[string]any }

func (f fakeAttrFeature) Attr(name string) (any, bool) {
	v, ok := f.attrs[name]
	return v, ok
}

func TestBuildAttrsProjectsOnlyRequestedNames(t *testing.T) {
	feat := fakeAttrFeature{attrs: map[string]any{"class": "road", "width": 3.0, "hidden": "nope"}}
	got := buildAttrs(feat, []string{"class", "width", "missing"})

	if len(got) != 2 {
		t.Fatalf("buildAttrs = %v, want 2 entries", got)
	}
	if got["class"] != "road" || got["width"] != 3.0 {
		t.Fatalf("buildAttrs = %v, want class=road width=3", got)
	}
	if _, ok := got["hidden"]; ok {
		t.Fatalf("buildAttrs leaked unrequested attribute %v", got)
	}
}
