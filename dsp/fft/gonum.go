package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

type gonumTransformer struct {
	fft    *fourier.FFT
	n      int
	coeffs []complex128
}

// NewGonum returns a gonum real-FFT transformer. gonum yields the
// non-negative half of the spectrum; the upper half is filled in by
// conjugate symmetry.
func NewGonum(n int) (Transformer, error) {
	if err := validateSize(n); err != nil {
		return nil, err
	}

	return &gonumTransformer{
		fft:    fourier.NewFFT(n),
		n:      n,
		coeffs: make([]complex128, n/2+1),
	}, nil
}

func (t *gonumTransformer) Size() int { return t.n }

func (t *gonumTransformer) Forward(re, im, src []float64) error {
	if err := checkLengths(t.n, re, im, src); err != nil {
		return err
	}

	half := t.fft.Coefficients(t.coeffs, src)
	for k, c := range half {
		re[k] = real(c)
		im[k] = imag(c)
	}

	for k := len(half); k < t.n; k++ {
		c := half[t.n-k]
		re[k] = real(c)
		im[k] = -imag(c)
	}

	return nil
}
