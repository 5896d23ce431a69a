// Package label implements the label placement and collision detector
// of spec.md §4.G: an R-tree over (bbox, label-key, margin) records,
// bulk-loaded on construction, with point/line/vertex/interior placement
// search feeding it.
//
// No R-tree library appears anywhere in the retrieved pack (checked
// every example repo's go.mod plus other_examples/: none import
// github.com/dhconnelly/rtreego or any spatial-index package), so
// rtree.go is original, standard-library-only code — the "no suitable
// library found" exception, not a default. Its bulk-load is an STR
// (sort-tile-recursive) packing, the classic bulk-load algorithm for a
// static or slowly-growing R-tree; its node/query shape (bounding-box
// MBR, leaf records, recursive intersect search) follows the
// geom.Box-based bounding-box convention already established by
// geom/geom.go rather than inventing a second box type.
package label

import (
	"math"
	"sort"

	"github.com/cartograph/cartograph/geom"
)

// Record is one placed label's reserved footprint.
type Record struct {
	Box    geom.Box
	Key    string
	Margin float64
}

const leafCapacity = 8

type node struct {
	box      geom.Box
	records  []Record // non-nil only for a leaf
	children []*node
}

func (n *node) isLeaf() bool { return n.children == nil }

func (n *node) intersects(b geom.Box) bool {
	return !(b.MaxX < n.box.MinX || b.MinX > n.box.MaxX || b.MaxY < n.box.MinY || b.MinY > n.box.MaxY)
}

func expand(b geom.Box, margin float64) geom.Box {
	return geom.Box{MinX: b.MinX - margin, MinY: b.MinY - margin, MaxX: b.MaxX + margin, MaxY: b.MaxY + margin}
}

func union(a, b geom.Box) geom.Box {
	return geom.Box{
		MinX: math.Min(a.MinX, b.MinX), MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX), MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

// Detector is the collision detector of spec.md §4.G: has_placement,
// insert, clear. It owns one R-tree per construction/clear cycle; insert
// after the initial bulk-load appends without a full rebuild.
type Detector struct {
	root  *node
	loose []Record // inserts since the last bulk-load; searched linearly
}

// NewDetector builds an empty Detector (spec.md §4.G: "also clears at
// detector construction").
func NewDetector() *Detector {
	return &Detector{}
}

// Bulk loads records via sort-tile-recursive packing — used to seed a
// Detector with the previous pass's placements, or to compact after many
// loose inserts.
func (d *Detector) Bulk(records []Record) {
	d.root = strPack(records)
	d.loose = nil
}

// HasPlacement reports whether box (a label-key key's candidate
// footprint) collides with any existing record (spec.md §4.G
// has_placement): intersection with any record's bbox expanded by
// margin, or a same-key record within minDistance.
func (d *Detector) HasPlacement(box geom.Box, key string, margin float64, minDistance float64) bool {
	candidate := expand(box, margin)
	found := false
	d.visit(candidate, func(r Record) bool {
		rb := expand(r.Box, margin)
		if boxesIntersect(rb, box) {
			found = true
			return false
		}
		if r.Key == key && minDistance > 0 && centerDistance(r.Box, box) < minDistance {
			found = true
			return false
		}
		return true
	})
	return found
}

func boxesIntersect(a, b geom.Box) bool {
	return !(a.MaxX < b.MinX || a.MinX > b.MaxX || a.MaxY < b.MinY || a.MinY > b.MaxY)
}

func centerDistance(a, b geom.Box) float64 {
	acx, acy := (a.MinX+a.MaxX)/2, (a.MinY+a.MaxY)/2
	bcx, bcy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	return math.Hypot(acx-bcx, acy-bcy)
}

// visit calls fn for every record whose bbox might intersect query,
// walking the bulk-loaded tree then the loose insert list; stops early
// if fn returns false.
func (d *Detector) visit(query geom.Box, fn func(Record) bool) {
	if d.root != nil {
		if !visitNode(d.root, query, fn) {
			return
		}
	}
	for _, r := range d.loose {
		if !fn(r) {
			return
		}
	}
}

func visitNode(n *node, query geom.Box, fn func(Record) bool) bool {
	if !n.intersects(query) {
		return true
	}
	if n.isLeaf() {
		for _, r := range n.records {
			if !fn(r) {
				return false
			}
		}
		return true
	}
	for _, c := range n.children {
		if !visitNode(c, query, fn) {
			return false
		}
	}
	return true
}

// Insert unconditionally adds record (spec.md §4.G insert). Appended to
// the loose list rather than rebuilding the whole tree; call Bulk to
// compact once a pass's placements are final.
func (d *Detector) Insert(r Record) {
	d.loose = append(d.loose, r)
}

// Clear drops all records (spec.md §4.G clear — called at layer start
// when clear_label_cache is set).
func (d *Detector) Clear() {
	d.root = nil
	d.loose = nil
}

// Len returns the total number of records held (bulk-loaded plus
// loose), used by tests asserting invariant 8 ("the detector's size
// equals the number of candidate placements").
func (d *Detector) Len() int {
	n := len(d.loose)
	if d.root != nil {
		n += countLeaves(d.root)
	}
	return n
}

// Boxes returns every record's bbox currently held (bulk-loaded plus
// loose), for a debug symbolizer's collision-box overlay.
func (d *Detector) Boxes() []geom.Box {
	out := make([]geom.Box, 0, d.Len())
	if d.root != nil {
		collectBoxes(d.root, &out)
	}
	for _, r := range d.loose {
		out = append(out, r.Box)
	}
	return out
}

func collectBoxes(n *node, out *[]geom.Box) {
	if n.isLeaf() {
		for _, r := range n.records {
			*out = append(*out, r.Box)
		}
		return
	}
	for _, c := range n.children {
		collectBoxes(c, out)
	}
}

func countLeaves(n *node) int {
	if n.isLeaf() {
		return len(n.records)
	}
	total := 0
	for _, c := range n.children {
		total += countLeaves(c)
	}
	return total
}

// strPack builds a balanced R-tree from records via sort-tile-recursive
// bulk loading: sort by X into ceil(sqrt(n/leafCapacity)) vertical
// slices, sort each slice by Y, pack into leaves of leafCapacity, then
// recursively pack the resulting leaves the same way one level up.
func strPack(records []Record) *node {
	if len(records) == 0 {
		return nil
	}
	leaves := make([]*node, 0, (len(records)+leafCapacity-1)/leafCapacity)
	sorted := append([]Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Box.MinX < sorted[j].Box.MinX })

	numLeaves := (len(sorted) + leafCapacity - 1) / leafCapacity
	numSlices := int(math.Ceil(math.Sqrt(float64(numLeaves))))
	if numSlices < 1 {
		numSlices = 1
	}
	sliceSize := (len(sorted) + numSlices - 1) / numSlices

	for s := 0; s < len(sorted); s += sliceSize {
		end := s + sliceSize
		if end > len(sorted) {
			end = len(sorted)
		}
		slice := sorted[s:end]
		sort.Slice(slice, func(i, j int) bool { return slice[i].Box.MinY < slice[j].Box.MinY })
		for i := 0; i < len(slice); i += leafCapacity {
			j := i + leafCapacity
			if j > len(slice) {
				j = len(slice)
			}
			leaves = append(leaves, newLeaf(slice[i:j]))
		}
	}

	return packLevel(leaves)
}

func newLeaf(records []Record) *node {
	recs := append([]Record(nil), records...)
	box := recs[0].Box
	for _, r := range recs[1:] {
		box = union(box, r.Box)
	}
	return &node{box: box, records: recs}
}

// packLevel recursively groups nodes into parents of leafCapacity
// children until a single root remains.
func packLevel(nodes []*node) *node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	var parents []*node
	for i := 0; i < len(nodes); i += leafCapacity {
		j := i + leafCapacity
		if j > len(nodes) {
			j = len(nodes)
		}
		group := nodes[i:j]
		box := group[0].box
		for _, n := range group[1:] {
			box = union(box, n.box)
		}
		parents = append(parents, &node{box: box, children: append([]*node(nil), group...)})
	}
	return packLevel(parents)
}
