package datasource

import "github.com/cartograph/cartograph/geom"

// MemoryFeature is a plain in-memory Feature value.
type MemoryFeature struct {
	IDValue int64
	Geom    geom.Geometry
	HasGeom bool
	Tile    RasterTile
	HasTile bool
	Attrs   map[string]any
}

func (f MemoryFeature) ID() int64 { return f.IDValue }

func (f MemoryFeature) Geometry() (geom.Geometry, bool) { return f.Geom, f.HasGeom }

func (f MemoryFeature) Raster() (RasterTile, bool) { return f.Tile, f.HasTile }

func (f MemoryFeature) Attr(name string) (any, bool) {
	v, ok := f.Attrs[name]
	return v, ok
}

// Memory is a preloaded-slice Datasource (SPEC_FULL.md "Datasource
// reference implementation"): no file-format parsing, just a vector or
// raster feature set held in memory, filtered to the query bbox on
// Features. It exists so tests and cmd/cartorender have something
// concrete to render without a real datasource plugin.
type Memory struct {
	kind     Type
	extent   Box2D
	features []MemoryFeature
}

func NewMemory(kind Type, extent Box2D, features []MemoryFeature) *Memory {
	return &Memory{kind: kind, extent: extent, features: features}
}

func (m *Memory) Type() Type { return m.kind }

func (m *Memory) Envelope() Box2D { return m.extent }

func (m *Memory) Features(q Query) (Featureset, error) {
	var out []Feature
	for _, f := range m.features {
		if f.HasGeom {
			b := f.Geom.Bounds()
			if b.MaxX < q.Bbox.MinX || b.MinX > q.Bbox.MaxX || b.MaxY < q.Bbox.MinY || b.MinY > q.Bbox.MaxY {
				continue
			}
		}
		out = append(out, f)
	}
	return &memoryFeatureset{features: out}, nil
}

type memoryFeatureset struct {
	features []Feature
	pos      int
}

func (fs *memoryFeatureset) Next() (Feature, bool) {
	if fs.pos >= len(fs.features) {
		return nil, false
	}
	f := fs.features[fs.pos]
	fs.pos++
	return f, true
}

func (fs *memoryFeatureset) Close() {}
