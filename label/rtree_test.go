package label

import (
	"testing"

	"github.com/cartograph/cartograph/geom"
)

func box(minX, minY, maxX, maxY float64) geom.Box {
	return geom.Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func TestDetectorHasPlacementIntersection(t *testing.T) {
	tests := []struct {
		name      string
		existing  geom.Box
		margin    float64
		candidate geom.Box
		want      bool
	}{
		{
			name:      "no overlap",
			existing:  box(0, 0, 10, 10),
			margin:    0,
			candidate: box(20, 20, 30, 30),
			want:      false,
		},
		{
			name:      "direct overlap",
			existing:  box(0, 0, 10, 10),
			margin:    0,
			candidate: box(5, 5, 15, 15),
			want:      true,
		},
		{
			name:      "margin closes the gap",
			existing:  box(0, 0, 10, 10),
			margin:    5,
			candidate: box(12, 0, 20, 10),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			d.Insert(Record{Box: tt.existing, Key: "a"})

			got := d.HasPlacement(tt.candidate, "b", tt.margin, 0)
			if got != tt.want {
				t.Errorf("HasPlacement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectorHasPlacementMinDistance(t *testing.T) {
	d := NewDetector()
	d.Insert(Record{Box: box(0, 0, 10, 10), Key: "river"})

	// Same key, far enough away: no collision from min-distance alone.
	if d.HasPlacement(box(100, 100, 110, 110), "river", 0, 5) {
		t.Errorf("expected no collision for distant same-key placement")
	}

	// Same key, within min-distance of the first record's center.
	if !d.HasPlacement(box(11, 0, 15, 5), "river", 0, 20) {
		t.Errorf("expected collision for same-key placement within min-distance")
	}

	// Different key at the same position: min-distance does not apply.
	if d.HasPlacement(box(11, 0, 15, 5), "road", 0, 20) {
		t.Errorf("expected no collision for different-key placement outside bbox overlap")
	}
}

func TestDetectorClear(t *testing.T) {
	d := NewDetector()
	d.Insert(Record{Box: box(0, 0, 10, 10), Key: "a"})
	d.Bulk([]Record{{Box: box(20, 20, 30, 30), Key: "b"}})

	if d.Len() == 0 {
		t.Fatalf("expected non-empty detector before Clear")
	}

	d.Clear()

	if d.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", d.Len())
	}
	if d.HasPlacement(box(20, 20, 30, 30), "b", 0, 0) {
		t.Errorf("expected no collisions after Clear()")
	}
}

func TestDetectorBulkLoadMatchesRecordCount(t *testing.T) {
	records := make([]Record, 0, 200)
	for i := 0; i < 200; i++ {
		x := float64(i * 10)
		records = append(records, Record{Box: box(x, x, x+5, x+5), Key: "k"})
	}

	d := NewDetector()
	d.Bulk(records)

	if got := d.Len(); got != len(records) {
		t.Errorf("Len() = %d, want %d", got, len(records))
	}

	for _, r := range records {
		if !d.HasPlacement(r.Box, "other", 0, 0) {
			t.Errorf("expected collision against bulk-loaded record %+v", r.Box)
		}
	}
}

func TestDetectorInsertAfterBulkIsVisible(t *testing.T) {
	d := NewDetector()
	d.Bulk([]Record{{Box: box(0, 0, 10, 10), Key: "a"}})
	d.Insert(Record{Box: box(100, 100, 110, 110), Key: "b"})

	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
	if !d.HasPlacement(box(100, 100, 110, 110), "c", 0, 0) {
		t.Errorf("expected loose insert to be visible to HasPlacement")
	}
}
