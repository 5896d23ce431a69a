// Package config configures a render.Processor via functional options,
// grounded on gogpu-gg's ContextOption/contextOptions pattern
// (options.go): an unexported options struct with defaults, and one
// exported With* constructor per knob.
package config

import (
	"context"
	"time"

	"github.com/cartograph/cartograph/internal/scanraster"
	"github.com/cartograph/cartograph/mapcache"
)

// RenderMode names a rasterizer engine. render.Processor keeps it in
// Options but does not read it: every mode renders through the same
// anti-aliased raster.Rasterizer.
type RenderMode int

const (
	// RenderModeAA is the default analytic anti-aliased rasterizer
	// (raster.Rasterizer, spec.md §4.D).
	RenderModeAA RenderMode = iota
	// RenderModeFast names a quick preview mode; no separate rasterizer
	// backs it, so it renders identically to RenderModeAA.
	RenderModeFast
)

// Option configures a Processor during construction.
type Option func(*Options)

// Options holds resolved renderer configuration. Exported so render.New
// can read it directly; callers normally only ever see Option values.
type Options struct {
	Clock       func() time.Time
	Cancel      context.Context
	MarkerCache *mapcache.Sharded[string, []byte]
	FontCache   *mapcache.Sharded[string, any]
	GammaFunc   scanraster.GammaFunc
	RenderMode  RenderMode
}

// Default returns the zero-value-safe option set: a real clock, a
// background (never-cancelled) context, no caches (MarkerCache and
// FontCache are nil), identity gamma, and the anti-aliased render mode.
func Default() Options {
	return Options{
		Clock:      time.Now,
		Cancel:     context.Background(),
		GammaFunc:  scanraster.LinearGamma,
		RenderMode: RenderModeAA,
	}
}

// Apply folds opts onto Default().
func Apply(opts ...Option) Options {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source kept in Options.Clock.
// render.Processor does not read it and writes no timing log lines.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) { o.Clock = clock }
}

// WithCancel supplies a context whose cancellation render.Processor
// checks between layers, not between features.
func WithCancel(ctx context.Context) Option {
	return func(o *Options) { o.Cancel = ctx }
}

// WithMarkerCache sets Options.MarkerCache, a process-wide marker-image
// cache (spec.md §5 "Shared resources"). render.Processor does not read
// it, and nil leaves no cache at all.
func WithMarkerCache(c *mapcache.Sharded[string, []byte]) Option {
	return func(o *Options) { o.MarkerCache = c }
}

// WithFontCache sets Options.FontCache, a process-wide font-face cache.
// render.Processor does not read it.
func WithFontCache(c *mapcache.Sharded[string, any]) Option {
	return func(o *Options) { o.FontCache = c }
}

// WithGammaFunc sets the default rasterizer gamma (spec.md §4.D
// "Gamma"); individual symbolizers may still override it per-call.
func WithGammaFunc(g scanraster.GammaFunc) Option {
	return func(o *Options) { o.GammaFunc = g }
}

// WithRenderMode sets Options.RenderMode; it does not change the
// rasterizer (see RenderMode).
func WithRenderMode(m RenderMode) Option {
	return func(o *Options) { o.RenderMode = m }
}
