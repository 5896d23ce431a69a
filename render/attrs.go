package render

import "github.com/cartograph/cartograph/style"

// namedExpr is an optional capability a style.Expr may implement to
// declare which feature attributes it reads, letting the processor build
// the query's property-name projection (spec.md §4.I item 2.a: "collect
// the union of referenced attribute names") without cartograph parsing
// an expression language itself (spec.md §1 Non-goals). Expressions that
// don't implement it are simply excluded from the projection — the
// attrs map built for them will be missing those keys, which is no
// different from how an unprojected column reads in any columnar query
// engine.
type namedExpr interface {
	AttrNames() []string
}

// collectAttrNames unions every rule filter's and every symbolizer
// property's referenced attribute names across one style.
func collectAttrNames(fts style.FeatureTypeStyle) []string {
	seen := make(map[string]struct{})
	add := func(expr style.Expr) {
		if expr == nil {
			return
		}
		if ne, ok := expr.(namedExpr); ok {
			for _, n := range ne.AttrNames() {
				seen[n] = struct{}{}
			}
		}
	}

	for _, rule := range fts.Rules {
		add(rule.Filter)
		for _, sym := range rule.Symbolizers {
			collectSymbolizerAttrNames(sym, add)
		}
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	return out
}

func collectSymbolizerAttrNames(sym style.Symbolizer, add func(style.Expr)) {
	for _, v := range sym.Properties {
		add(v.Expr)
	}
	for _, child := range sym.Children {
		collectSymbolizerAttrNames(child, add)
	}
}

// buildAttrs materializes the attribute map one feature exposes to rule
// filters and symbolizer properties, fetching exactly the projected
// names (spec.md §6 "attr(name) -> Value").
func buildAttrs(feat interface {
	Attr(name string) (any, bool)
}, names []string) map[string]any {
	attrs := make(map[string]any, len(names))
	for _, n := range names {
		if v, ok := feat.Attr(n); ok {
			attrs[n] = v
		}
	}
	return attrs
}
