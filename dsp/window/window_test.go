package window

import (
	"math"
	"testing"
)

var allTypes = []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman, TypeFlatTop, TypeKaiser}

func TestGenerateFiniteAndSymmetric(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 65)
			if len(w) != 65 {
				t.Fatalf("len=%d, want 65", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
				if d := math.Abs(v - w[len(w)-1-i]); d > 1e-12 {
					t.Fatalf("asymmetric at %d: %v vs %v", i, v, w[len(w)-1-i])
				}
			}

			if c := w[32]; math.Abs(c-1) > 1e-3 {
				t.Fatalf("center = %v, want 1", c)
			}
		})
	}
}

func TestGenerateEmpty(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("expected nil, got %v", w)
	}

	if w := Generate(TypeHann, 1); len(w) != 1 || math.Abs(w[0]-1) > 1e-12 {
		t.Fatalf("single sample window = %v, want [1]", w)
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	a := Generate(TypeHann, 16)
	b := Generate(TypeHann, 16, WithPeriodic())

	if a[15] != 0 || b[15] == 0 {
		t.Fatalf("unexpected last samples: symmetric %v periodic %v", a[15], b[15])
	}
}

func TestKaiser(t *testing.T) {
	w, err := Kaiser(9, 5)
	if err != nil {
		t.Fatal(err)
	}

	want := 1 / BesselI0(5)
	if math.Abs(w[0]-want) > 1e-15 || math.Abs(w[4]-1) > 1e-15 {
		t.Fatalf("edges %v center %v, want %v and 1", w[0], w[4], want)
	}

	for _, tc := range []struct {
		size int
		beta float64
	}{{0, 5}, {8, -1}, {8, math.NaN()}} {
		if _, err := Kaiser(tc.size, tc.beta); err == nil {
			t.Fatalf("Kaiser(%d, %v): expected error", tc.size, tc.beta)
		}
	}

	flat := Generate(TypeKaiser, 8, WithBeta(0))
	for _, v := range flat {
		if v != 1 {
			t.Fatalf("beta 0 should be rectangular, got %v", flat)
		}
	}
}

func TestKaiserBeta(t *testing.T) {
	tests := []struct {
		db, want float64
	}{
		{60, 5.65326},
		{40, 3.39532},
		{10, 0},
	}

	for _, tc := range tests {
		if got := KaiserBeta(tc.db); math.Abs(got-tc.want) > 1e-4 {
			t.Fatalf("KaiserBeta(%v) = %v, want %v", tc.db, got, tc.want)
		}
	}
}

func TestBesselI0(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 1},
		{1, 1.2660658777520082},
		{5, 27.239871823604442},
	}

	for _, tc := range tests {
		if got := BesselI0(tc.x); math.Abs(got-tc.want) > 1e-12*tc.want {
			t.Fatalf("I0(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestApplyRectangularIsNoop(t *testing.T) {
	buf := []float64{1, 2, 3}
	Apply(TypeRectangular, buf)

	if buf[0] != 1 || buf[1] != 2 || buf[2] != 3 {
		t.Fatalf("buffer changed: %v", buf)
	}
}

func TestCoherentGainAndENBW(t *testing.T) {
	w := Generate(TypeHann, 1024, WithPeriodic())

	if g := CoherentGain(w); math.Abs(g-0.5) > 1e-12 {
		t.Fatalf("coherent gain = %v, want 0.5", g)
	}

	enbw, err := EquivalentNoiseBandwidth(w)
	if err != nil || math.Abs(enbw-1.5) > 1e-9 {
		t.Fatalf("ENBW = %v (%v), want 1.5", enbw, err)
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}

	if _, err := EquivalentNoiseBandwidth([]float64{1, -1}); err == nil {
		t.Fatal("expected error for zero coherent gain")
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range allTypes {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}

	if got, err := ParseType(""); err != nil || got != TypeRectangular {
		t.Fatalf("empty name = %v, %v", got, err)
	}

	if _, err := ParseType("bartlett"); err == nil {
		t.Fatal("expected error")
	}
}
