// Package datasource declares the external feature-source contract
// consumed by render.Processor (spec.md §6 "Datasource interface
// (consumed)"). Concrete datasources (GeoJSON, shapefile, PostGIS, …)
// are out of scope (spec.md §1); only the interface and a minimal
// in-memory reference implementation live here.
package datasource

import "github.com/cartograph/cartograph/geom"

// Type reports whether a Datasource serves vector features or raster
// tiles.
type Type int

const (
	Vector Type = iota
	Raster
)

// Box2D is an axis-aligned query/extent box in the datasource's native
// (geographic or projected) coordinate space.
type Box2D struct {
	MinX, MinY, MaxX, MaxY float64
}

// Query is the parameter bundle passed to Features (spec.md §6).
type Query struct {
	Bbox          Box2D
	Width, Height int
	Resolution    float64
	PropertyNames []string
	Variables     map[string]any
	FilterFactor  float64
}

// RasterTile is the payload of a Feature whose datasource Type is
// Raster: a decoded image plus its placement extent.
type RasterTile struct {
	Width, Height int
	Pix           []byte // 8-bit RGBA, row-major, unpremultiplied
	Extent        Box2D
}

// Feature is the shape consumed by the feature/style processor
// (spec.md §6 "Feature shape (consumed)").
type Feature interface {
	ID() int64
	Geometry() (geom.Geometry, bool)
	Raster() (RasterTile, bool)
	Attr(name string) (any, bool)
}

// Featureset is a single-pass iterator of features returned by a
// datasource for one query.
type Featureset interface {
	Next() (Feature, bool)
	Close()
}

// Datasource is the external collaborator interface (spec.md §6).
type Datasource interface {
	Type() Type
	Envelope() Box2D
	Features(q Query) (Featureset, error)
}
