package spectrum

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/rotospeed/dsp/core"
)

// MagnitudeFromParts computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
//
// This uses the SIMD kernels of algo-vecmath when available (AVX2, SSE2,
// NEON). All three slices must have the same length.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// RoundMagnitudes rounds every bin half-up to an integer in place.
func RoundMagnitudes(mag []float64) {
	for i, v := range mag {
		mag[i] = core.RoundHalfUp(v)
	}
}

// PeakBin scans mag[from:to] for the largest value. Ties keep the lowest
// index. If the range is empty, from and mag[from] are returned as they
// are (from must index mag).
func PeakBin(mag []float64, from, to int) (int, float64) {
	idx, peak := from, mag[from]
	for i := from; i < to; i++ {
		if mag[i] > peak {
			idx, peak = i, mag[i]
		}
	}
	return idx, peak
}

// Resolution returns the bin spacing in Hz of an n-point transform.
func Resolution(sampleRate float64, n int) float64 {
	return sampleRate / float64(n)
}
