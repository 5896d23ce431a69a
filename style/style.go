// Package style holds the Map → Layer → Style → Rule → Symbolizer tree
// (spec.md §3 "Style tree") and the property-value sum type every
// symbolizer's configuration is built from.
package style

// Value is a property value that is either a literal or an expression
// evaluated per feature (spec.md §3 Symbolizer). cartograph does not
// implement an expression language (spec.md §1 Non-goals: "expression/
// filter parsing" is an external collaborator); Expr is a narrow
// consumed-interface escape hatch for callers that embed their own.
type Value struct {
	Literal any
	Expr    Expr
}

// Expr evaluates a property value against one feature's attributes.
type Expr interface {
	Eval(attrs map[string]any) (any, error)
}

// Lit wraps a constant value as a Value with no per-feature expression.
func Lit(v any) Value { return Value{Literal: v} }

// Resolve returns the value for one feature: the expression's result if
// set, otherwise the literal.
func (v Value) Resolve(attrs map[string]any) (any, error) {
	if v.Expr != nil {
		return v.Expr.Eval(attrs)
	}
	return v.Literal, nil
}

// IsZero reports whether the value carries neither a literal nor an
// expression.
func (v Value) IsZero() bool { return v.Expr == nil && v.Literal == nil }

// Rule is a guarded bundle of symbolizers (spec.md §3 "Style tree").
type Rule struct {
	Name        string
	MinScale    float64 // denominator, 0 = unbounded
	MaxScale    float64 // denominator, 0 = unbounded
	Filter      Expr    // nil = always matches
	Else        bool
	Symbolizers []Symbolizer
}

// Active reports whether the rule's scale window contains scaleDenom.
func (r Rule) Active(scaleDenom float64) bool {
	if r.MinScale > 0 && scaleDenom < r.MinScale {
		return false
	}
	if r.MaxScale > 0 && scaleDenom > r.MaxScale {
		return false
	}
	return true
}

// Matches evaluates the rule's filter against one feature's attributes.
// A rule with no filter always matches.
func (r Rule) Matches(attrs map[string]any) bool {
	if r.Filter == nil {
		return true
	}
	v, err := r.Filter.Eval(attrs)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// FeatureTypeStyle is a named, ordered list of rules.
type FeatureTypeStyle struct {
	Name  string
	Rules []Rule

	// CompOp/ImageFilters/Opacity < 1 force style-level compositing
	// through a private buffer (spec.md §4.I "Style-level composite").
	CompOp       string
	ImageFilters []string
	Opacity      float64 // 0 means "unset"; Processor treats 0 as 1.0
}

// ActiveRules partitions rules into if/else groups active at scaleDenom,
// in source order (spec.md §4.I item 2.a).
func (s FeatureTypeStyle) ActiveRules(scaleDenom float64) (ifRules, elseRules []Rule) {
	for _, r := range s.Rules {
		if !r.Active(scaleDenom) {
			continue
		}
		if r.Else {
			elseRules = append(elseRules, r)
		} else {
			ifRules = append(ifRules, r)
		}
	}
	return
}

// HasStyleLevelCompositing reports whether this style must render into a
// private buffer (spec.md §4.I item 3).
func (s FeatureTypeStyle) HasStyleLevelCompositing() bool {
	return s.CompOp != "" || len(s.ImageFilters) > 0 || (s.Opacity > 0 && s.Opacity < 1)
}

// Layer is one map layer: a datasource reference, a scale window, an
// optional declared extent, and the style names it draws with.
type Layer struct {
	Name             string
	StyleNames       []string
	MinScale         float64
	MaxScale         float64
	ClearLabelCache  bool
	BufferSize       float64 // query-extent padding, pixels
	QueryFilterFactor float64
}

// Active reports whether the layer's scale window contains scaleDenom.
func (l Layer) Active(scaleDenom float64) bool {
	if l.MinScale > 0 && scaleDenom < l.MinScale {
		return false
	}
	if l.MaxScale > 0 && scaleDenom > l.MaxScale {
		return false
	}
	return true
}

// Map is the style dictionary's root: an ordered list of layers plus the
// named style dictionary they reference.
type Map struct {
	Layers []Layer
	Styles map[string]FeatureTypeStyle

	Width, Height int
	ScaleDenom    float64
	Background    *Value // optional background fill color
}

// StylesFor resolves a layer's style-name list into FeatureTypeStyle
// values, skipping names with no dictionary entry.
func (m Map) StylesFor(l Layer) []FeatureTypeStyle {
	out := make([]FeatureTypeStyle, 0, len(l.StyleNames))
	for _, name := range l.StyleNames {
		if s, ok := m.Styles[name]; ok {
			out = append(out, s)
		}
	}
	return out
}
