package bank

import (
	"fmt"
	"math"

	"github.com/cwbudde/rotospeed/dsp/core"
)

// GenerateRange returns a geometric sweep of cutoff frequencies in
// ascending order. It starts at maxHz and repeatedly steps down to
// ceil(f - f*precision) while f stays above minHz, so consecutive entries
// differ by at most precision relative to the larger one and sampling is
// denser towards the low end. maxHz is always the last entry; no entry is
// <= minHz.
//
// Where ceil would not move f (f*precision < 1 near integer f), the step is
// forced down by 1 Hz so the sweep terminates.
func GenerateRange(minHz, maxHz, precision float64) ([]float64, error) {
	if !core.IsFinite(minHz) || !core.IsFinite(maxHz) || minHz < 0 || maxHz <= minHz {
		return nil, fmt.Errorf("bank: frequency range [%v, %v]: %w", minHz, maxHz, core.ErrInvalidFilterParameters)
	}

	if !(precision > 0 && precision < 1) {
		return nil, fmt.Errorf("bank: precision %v outside (0, 1): %w", precision, core.ErrInvalidFilterParameters)
	}

	var desc []float64
	for f := maxHz; f > minHz; {
		desc = append(desc, f)

		next := math.Ceil(f - f*precision)
		if next >= f {
			next = math.Ceil(f) - 1
		}
		f = next
	}

	out := make([]float64, len(desc))
	for i, f := range desc {
		out[len(desc)-1-i] = f
	}

	return out, nil
}
