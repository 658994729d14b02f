package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance). An eps of 0 demands
// bit-identical values.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if i, ok := firstMismatch(got, want, eps); !ok {
		if len(got) != len(want) {
			t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
		}
		t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], math.Abs(got[i]-want[i]), eps)
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireIntegral fails t if any element is not a whole number, as
// expected of values written back as ADC counts.
func RequireIntegral(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if v != math.Trunc(v) {
			t.Fatalf("index %d: %v is not a whole count", i, v)
		}
	}
}

// firstMismatch returns the first index whose values differ by more than
// eps, or ok == true if there is none. A length mismatch reports index -1.
func firstMismatch(got, want []float64, eps float64) (int, bool) {
	if len(got) != len(want) {
		return -1, false
	}
	for i := range got {
		if !(math.Abs(got[i]-want[i]) <= eps) {
			return i, false
		}
	}
	return 0, true
}
