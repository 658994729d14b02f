package fft

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

type algoTransformer struct {
	plan    *algofft.Plan[complex128]
	in, out []complex128
}

// NewAlgoFFT returns an algo-fft backed transformer.
func NewAlgoFFT(n int) (Transformer, error) {
	if err := validateSize(n); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("fft: algofft plan for %d points: %w", n, err)
	}

	return &algoTransformer{
		plan: plan,
		in:   make([]complex128, n),
		out:  make([]complex128, n),
	}, nil
}

func (t *algoTransformer) Size() int { return len(t.in) }

func (t *algoTransformer) Forward(re, im, src []float64) error {
	if err := checkLengths(len(t.in), re, im, src); err != nil {
		return err
	}

	for i, x := range src {
		t.in[i] = complex(x, 0)
	}

	if err := t.plan.Forward(t.out, t.in); err != nil {
		return fmt.Errorf("fft: algofft forward: %w", err)
	}

	for i, c := range t.out {
		re[i] = real(c)
		im[i] = imag(c)
	}

	return nil
}
