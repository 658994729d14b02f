package fft

import (
	"github.com/mjibson/go-dsp/fft"
)

type goDSPTransformer struct {
	n int
}

// NewGoDSP returns a go-dsp backed transformer.
func NewGoDSP(n int) (Transformer, error) {
	if err := validateSize(n); err != nil {
		return nil, err
	}

	return &goDSPTransformer{n: n}, nil
}

func (t *goDSPTransformer) Size() int { return t.n }

func (t *goDSPTransformer) Forward(re, im, src []float64) error {
	if err := checkLengths(t.n, re, im, src); err != nil {
		return err
	}

	for k, c := range fft.FFTReal(src) {
		re[k] = real(c)
		im[k] = imag(c)
	}

	return nil
}
