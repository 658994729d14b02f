// Package fft adapts third-party FFT libraries to the forward real-input
// transform the spectrum analysis needs.
//
// A [Transformer] turns N real samples into N real and N imaginary DFT
// outputs (unnormalized, negative exponent). Transformers own scratch
// buffers and are not safe for concurrent use; concurrent callers create
// one per goroutine from a [Factory].
package fft

import (
	"fmt"
	"strings"
)

// Transformer computes a fixed-size forward DFT of real input.
type Transformer interface {
	// Size returns the transform length N.
	Size() int

	// Forward writes the DFT of src into re and im. All three slices must
	// have length Size().
	Forward(re, im, src []float64) error
}

// Factory creates a Transformer for n-point frames.
type Factory func(n int) (Transformer, error)

// Backend names an FFT implementation.
type Backend string

const (
	BackendAlgoFFT Backend = "algofft"
	BackendGonum   Backend = "gonum"
	BackendGoDSP   Backend = "godsp"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = BackendAlgoFFT

// Backends returns all known backends.
func Backends() []Backend {
	return []Backend{BackendAlgoFFT, BackendGonum, BackendGoDSP}
}

// ParseBackend resolves a case-insensitive backend name. The empty string
// selects [DefaultBackend].
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return DefaultBackend, nil
	}

	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}

	return "", fmt.Errorf("fft: unknown backend %q", name)
}

// NewFactory returns the factory for backend b.
func NewFactory(b Backend) (Factory, error) {
	switch b {
	case BackendAlgoFFT:
		return NewAlgoFFT, nil
	case BackendGonum:
		return NewGonum, nil
	case BackendGoDSP:
		return NewGoDSP, nil
	default:
		return nil, fmt.Errorf("fft: unknown backend %q", string(b))
	}
}

func validateSize(n int) error {
	if n < 2 {
		return fmt.Errorf("fft: size must be >= 2: %d", n)
	}
	return nil
}

func checkLengths(n int, re, im, src []float64) error {
	if len(src) != n || len(re) != n || len(im) != n {
		return fmt.Errorf("fft: length mismatch: size=%d src=%d re=%d im=%d", n, len(src), len(re), len(im))
	}
	return nil
}
