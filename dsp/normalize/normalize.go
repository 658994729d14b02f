package normalize

import (
	"fmt"
	"math"

	"github.com/cwbudde/rotospeed/dsp/core"
)

// Reference scale of the bench ADC: a 4.096 V full scale mapped onto 16 bits.
const (
	DefaultSourceMax      = 4.096
	DefaultDestinationMax = math.MaxUint16
)

// Normalize maps every value v to round(v * (dstMax+1) / srcMax), clamped to
// [0, dstMax]. Values at or above srcMax map to dstMax, negative values and
// NaN map to 0. The input is not modified.
func Normalize(series []float64, srcMax float64, dstMax uint32) ([]uint32, error) {
	if srcMax <= 0 || !core.IsFinite(srcMax) {
		return nil, fmt.Errorf("normalize: source maximum must be positive and finite: %v", srcMax)
	}

	out := make([]uint32, len(series))
	scale := (float64(dstMax) + 1) / srcMax
	limit := float64(dstMax)

	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		out[i] = uint32(core.Clamp(core.RoundHalfUp(v*scale), 0, limit))
	}

	return out, nil
}

// Scale is Normalize with the bench ADC defaults.
func Scale(series []float64) []uint32 {
	out, _ := Normalize(series, DefaultSourceMax, DefaultDestinationMax)
	return out
}
