package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/fft"
	"github.com/cwbudde/rotospeed/dsp/window"
)

// Mode selects the per-bin value returned by [Compute].
type Mode int

const (
	// ModeMagnitude returns sqrt(re^2 + im^2).
	ModeMagnitude Mode = iota
	// ModeRealAbs returns |re|, the quick-look spectrum of the filter tool.
	ModeRealAbs
)

// SpectrumConfig describes a single-window spectrum.
type SpectrumConfig struct {
	// Size is the transform length.
	Size int
	// Offset is the first sample of the window.
	Offset int
	// ZeroDC clears bin 0, which otherwise dominates the scale of raw ADC dumps.
	ZeroDC bool
	Mode   Mode
	// Window tapers the frame before the transform. The zero value is
	// rectangular, which leaves samples untouched.
	Window    window.Type
	Transform fft.Factory
}

// Compute returns the spectrum of series[Offset : Offset+Size]: one value
// per bin, Size values in total. Values are not rounded.
func Compute(series []float64, cfg SpectrumConfig) ([]float64, error) {
	if cfg.Size < 2 {
		return nil, fmt.Errorf("spectrum: size must be >= 2: %d", cfg.Size)
	}

	if cfg.Offset < 0 {
		return nil, fmt.Errorf("spectrum: negative offset %d", cfg.Offset)
	}

	if cfg.Offset+cfg.Size > len(series) {
		return nil, fmt.Errorf("spectrum: window [%d, %d) exceeds %d samples: %w",
			cfg.Offset, cfg.Offset+cfg.Size, len(series), core.ErrInsufficientSamples)
	}

	frame := series[cfg.Offset : cfg.Offset+cfg.Size]
	for i, v := range frame {
		if !core.IsFinite(v) {
			return nil, fmt.Errorf("spectrum: sample %d is %v: %w", cfg.Offset+i, v, core.ErrMalformedSample)
		}
	}

	factory := cfg.Transform
	if factory == nil {
		factory = fft.NewAlgoFFT
	}

	tr, err := factory(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: transform for %d points: %w", cfg.Size, err)
	}

	if cfg.Window != window.TypeRectangular {
		frame = append([]float64(nil), frame...)
		window.Apply(cfg.Window, frame, window.WithPeriodic())
	}

	re := make([]float64, cfg.Size)
	im := make([]float64, cfg.Size)
	if err := tr.Forward(re, im, frame); err != nil {
		return nil, err
	}

	out := make([]float64, cfg.Size)
	switch cfg.Mode {
	case ModeMagnitude:
		MagnitudeFromParts(out, re, im)
	case ModeRealAbs:
		for i, v := range re {
			out[i] = math.Abs(v)
		}
	default:
		return nil, fmt.Errorf("spectrum: unknown mode %d", cfg.Mode)
	}

	if cfg.ZeroDC {
		out[0] = 0
	}

	return out, nil
}
