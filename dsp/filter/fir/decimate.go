package fir

import (
	"fmt"

	"github.com/cwbudde/rotospeed/dsp/core"
)

// Decimate low-pass filters input with the table for scale and keeps every
// scale-th output in one pass: output k is the dot product of the table
// with input[k*scale : k*scale+taps]. Windows are taken while
// k*scale+taps < len(input); the trailing partial window is dropped.
// Outputs are rounded half-up to integer counts.
//
// scale 1 returns input itself. input is never modified.
func Decimate(input []float64, scale int) ([]float64, error) {
	if scale == 1 {
		return input, nil
	}

	f, err := Lookup(scale)
	if err != nil {
		return nil, err
	}

	taps := f.Taps()
	if len(input) <= taps {
		return nil, fmt.Errorf("fir: %d samples, scale %d needs more than %d: %w",
			len(input), scale, taps, core.ErrInsufficientSamples)
	}

	out := make([]float64, 0, OutputLen(len(input), taps, scale))
	for pos := 0; pos+taps < len(input); pos += scale {
		out = append(out, core.RoundHalfUp(f.Dot(input[pos:pos+taps])))
	}

	return out, nil
}

// OutputLen returns how many samples [Decimate] produces for an input of n
// samples with a table of the given length: ceil((n-taps)/scale), or 0
// when n <= taps.
func OutputLen(n, taps, scale int) int {
	if n <= taps || scale <= 0 {
		return 0
	}

	return (n - taps + scale - 1) / scale
}
