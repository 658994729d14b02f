package biquad

import (
	"fmt"
	"math"

	"github.com/cwbudde/rotospeed/dsp/core"
)

// Coefficients holds the transfer function coefficients of a single
// second-order section. a0 is normalized to 1 and not stored.
type Coefficients struct {
	A1, A2     float64 // feedback (denominator)
	B0, B1, B2 float64 // feedforward (numerator)
}

// DesignLowpass returns a second-order Butterworth lowpass at cutoff (Hz).
//
// The cutoff must lie strictly inside (0, sampleRate/2).
func DesignLowpass(sampleRate, cutoff float64) (Coefficients, error) {
	w, norm, err := prewarp(sampleRate, cutoff)
	if err != nil {
		return Coefficients{}, err
	}

	b1 := 2 * norm * w * w
	b0 := 0.5 * b1

	return Coefficients{
		A1: 2 * norm * (w*w - 1),
		A2: norm * (w*(w-math.Sqrt2) + 1),
		B0: b0,
		B1: b1,
		B2: b0,
	}, nil
}

// DesignHighpass returns a second-order Butterworth highpass at cutoff (Hz).
//
// It shares the denominator of [DesignLowpass]; the numerator follows from
// the s -> 1/s substitution of the analog prototype.
func DesignHighpass(sampleRate, cutoff float64) (Coefficients, error) {
	w, norm, err := prewarp(sampleRate, cutoff)
	if err != nil {
		return Coefficients{}, err
	}

	return Coefficients{
		A1: 2 * norm * (w*w - 1),
		A2: norm * (w*(w-math.Sqrt2) + 1),
		B0: norm,
		B1: -2 * norm,
		B2: norm,
	}, nil
}

// prewarp validates the design parameters and returns the prewarped
// analog frequency w = tan(pi*fc/fs) with the Butterworth normalization.
func prewarp(sampleRate, cutoff float64) (w, norm float64, err error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, 0, fmt.Errorf("biquad: sample rate %v: %w", sampleRate, core.ErrInvalidFilterParameters)
	}

	if !(cutoff > 0 && cutoff < sampleRate/2) {
		return 0, 0, fmt.Errorf("biquad: cutoff %v outside (0, %v): %w",
			cutoff, sampleRate/2, core.ErrInvalidFilterParameters)
	}

	w = math.Tan(math.Pi * cutoff / sampleRate)
	norm = 1 / (w*(w+math.Sqrt2) + 1)

	return w, norm, nil
}

// Apply filters input on a fresh [State] seeded from the first three input
// samples and returns a new series of the same length. input is not
// modified and no state survives the call.
func Apply(c Coefficients, input []float64) ([]float64, error) {
	if len(input) < historyLen {
		return nil, fmt.Errorf("biquad: %d samples, need at least %d: %w",
			len(input), historyLen, core.ErrInsufficientSamples)
	}

	s := NewSection(c, SeedState(input))
	out := make([]float64, len(input))
	s.ProcessBlockTo(out, input)

	return out, nil
}

// Cascade runs input through passes successive [Apply] calls, each pass
// filtering the previous pass's output on fresh state.
func Cascade(c Coefficients, input []float64, passes int) ([]float64, error) {
	if passes < 1 {
		return nil, fmt.Errorf("biquad: passes must be >= 1: %d", passes)
	}

	out := input
	for range passes {
		var err error

		out, err = Apply(c, out)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
