package scanraster

import "testing"

func TestCellRasterFillsAxisAlignedSquare(t *testing.T) {
	r := NewCellRaster()
	r.MoveTo(2, 2)
	r.LineTo(6, 2)
	r.LineTo(6, 6)
	r.LineTo(2, 6)
	r.LineTo(2, 2)
	cells := r.Finish()

	const w, h = 10, 10
	covered := make(map[[2]int]uint8)
	Sweep(cells, w, h, FillRuleNonZero, LinearGamma, func(y int, spans []Span) {
		for _, s := range spans {
			for x := s.X; x < s.X+s.Len; x++ {
				covered[[2]int{x, y}] = s.Alpha
			}
		}
	})

	if a := covered[[2]int{3, 3}]; a != 255 {
		t.Fatalf("interior pixel (3,3) alpha = %d, want 255", a)
	}
	if a, ok := covered[[2]int{8, 8}]; ok && a != 0 {
		t.Fatalf("exterior pixel (8,8) alpha = %d, want uncovered", a)
	}
}

func TestCellRasterEvenOddVsNonZero(t *testing.T) {
	// Two overlapping squares wound the same direction: non-zero fills
	// the overlap, even-odd punches a hole in it.
	newOverlap := func() []Cell {
		r := NewCellRaster()
		r.MoveTo(0, 0)
		r.LineTo(6, 0)
		r.LineTo(6, 6)
		r.LineTo(0, 6)
		r.LineTo(0, 0)
		r.MoveTo(2, 2)
		r.LineTo(8, 2)
		r.LineTo(8, 8)
		r.LineTo(2, 8)
		r.LineTo(2, 2)
		return r.Finish()
	}

	const w, h = 10, 10

	nonZero := make(map[[2]int]uint8)
	Sweep(append([]Cell(nil), newOverlap()...), w, h, FillRuleNonZero, LinearGamma, func(y int, spans []Span) {
		for _, s := range spans {
			for x := s.X; x < s.X+s.Len; x++ {
				nonZero[[2]int{x, y}] = s.Alpha
			}
		}
	})
	if a := nonZero[[2]int{3, 3}]; a != 255 {
		t.Fatalf("non-zero overlap pixel (3,3) alpha = %d, want 255", a)
	}

	evenOdd := make(map[[2]int]uint8)
	Sweep(append([]Cell(nil), newOverlap()...), w, h, FillRuleEvenOdd, LinearGamma, func(y int, spans []Span) {
		for _, s := range spans {
			for x := s.X; x < s.X+s.Len; x++ {
				evenOdd[[2]int{x, y}] = s.Alpha
			}
		}
	})
	if a := evenOdd[[2]int{3, 3}]; a != 0 {
		t.Fatalf("even-odd overlap pixel (3,3) alpha = %d, want uncovered (hole)", a)
	}
	if a := evenOdd[[2]int{1, 1}]; a != 255 {
		t.Fatalf("even-odd non-overlap pixel (1,1) alpha = %d, want 255", a)
	}
}

func TestThresholdGamma(t *testing.T) {
	g := ThresholdGamma(128)
	if g(127) != 0 {
		t.Fatalf("ThresholdGamma(128)(127) = %d, want 0", g(127))
	}
	if g(128) != 255 {
		t.Fatalf("ThresholdGamma(128)(128) = %d, want 255", g(128))
	}
}

func TestPowerGammaIdentityAtOne(t *testing.T) {
	g := PowerGamma(1.0)
	for _, v := range []uint8{0, 64, 128, 255} {
		if got := g(v); got != v {
			t.Fatalf("PowerGamma(1.0)(%d) = %d, want %d", v, got, v)
		}
	}
}

func TestSweepSkipsRowsOutsideHeight(t *testing.T) {
	r := NewCellRaster()
	r.MoveTo(0, -5)
	r.LineTo(4, -5)
	r.LineTo(4, 20)
	r.LineTo(0, 20)
	r.LineTo(0, -5)
	cells := r.Finish()

	var sawOutOfRange bool
	Sweep(cells, 10, 10, FillRuleNonZero, LinearGamma, func(y int, spans []Span) {
		if y < 0 || y >= 10 {
			sawOutOfRange = true
		}
	})
	if sawOutOfRange {
		t.Fatalf("Sweep emitted a row outside [0, height)")
	}
}
