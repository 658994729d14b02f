package fir

import (
	"math"
	"math/cmplx"
)

// Filter is one decimation table: a symmetric low-pass coefficient set and
// the ratio it was designed for. It is immutable and safe for concurrent use.
type Filter struct {
	coeffs []float64
	scale  int
}

// New wraps coeffs as a table for scale. The coefficients are copied.
func New(coeffs []float64, scale int) *Filter {
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return &Filter{coeffs: c, scale: scale}
}

// Taps returns the number of coefficients.
func (f *Filter) Taps() int {
	return len(f.coeffs)
}

// Scale returns the decimation ratio.
func (f *Filter) Scale() int {
	return f.scale
}

// Coefficients returns a copy of the coefficients.
func (f *Filter) Coefficients() []float64 {
	c := make([]float64, len(f.coeffs))
	copy(c, f.coeffs)
	return c
}

// Dot returns the filter output for window, which must hold Taps samples.
func (f *Filter) Dot(window []float64) float64 {
	window = window[:len(f.coeffs)]

	var acc float64
	for i, c := range f.coeffs {
		acc += window[i] * c
	}
	return acc
}

// DCGain returns the sum of the coefficients.
func (f *Filter) DCGain() float64 {
	var sum float64
	for _, c := range f.coeffs {
		sum += c
	}
	return sum
}

// Response returns H(e^{jw}) at freqHz for a filter running at sampleRate.
func (f *Filter) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate

	var re, im float64
	for k, c := range f.coeffs {
		s, co := math.Sincos(w * float64(k))
		re += c * co
		im -= c * s
	}
	return complex(re, im)
}

// MagnitudeDB returns |H| in dB at freqHz.
func (f *Filter) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(f.Response(freqHz, sampleRate)))
}

// OutputNyquistDB returns the gain at the Nyquist frequency of the
// decimated stream, relative to the input rate.
func (f *Filter) OutputNyquistDB() float64 {
	return f.MagnitudeDB(0.5/float64(f.scale), 1)
}

// StopbandDB returns the highest gain between the stopband edge and the
// input Nyquist frequency, sampled at points frequencies.
func (f *Filter) StopbandDB(points int) float64 {
	nyquist := 0.5 / float64(f.scale)
	fst := 2*nyquist - nyquist*passbandFraction
	points = max(points, 2)

	worst := math.Inf(-1)
	for k := range points {
		freq := fst + (0.5-fst)*float64(k)/float64(points-1)
		worst = max(worst, f.MagnitudeDB(freq, 1))
	}
	return worst
}
