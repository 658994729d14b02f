package bank

import (
	"fmt"
	"sort"

	"github.com/cwbudde/rotospeed/dsp/filter/biquad"
)

// Kind selects the response of every band in a Bank.
type Kind int

const (
	KindLowpass Kind = iota
	KindHighpass
)

func (k Kind) String() string {
	switch k {
	case KindLowpass:
		return "lowpass"
	case KindHighpass:
		return "highpass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Band is one designed filter of a Bank.
type Band struct {
	CutoffHz float64
	Coeffs   biquad.Coefficients
}

// MagnitudeDB returns the band's magnitude response in dB.
func (b Band) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return b.Coeffs.MagnitudeDB(freqHz, sampleRate)
}

// Bank is a set of second-order Butterworth filters, one per cutoff,
// ordered by ascending cutoff. Coefficients are designed once and shared
// read-only, so a Bank is safe for concurrent use.
type Bank struct {
	bands      []Band
	sampleRate float64
	kind       Kind
}

// New designs one section of the given kind per cutoff. Every cutoff must
// satisfy the biquad design constraints.
func New(kind Kind, sampleRate float64, cutoffs []float64) (*Bank, error) {
	design := biquad.DesignLowpass
	switch kind {
	case KindLowpass:
	case KindHighpass:
		design = biquad.DesignHighpass
	default:
		return nil, fmt.Errorf("bank: unknown kind %v", kind)
	}

	bands := make([]Band, 0, len(cutoffs))
	for _, fc := range cutoffs {
		c, err := design(sampleRate, fc)
		if err != nil {
			return nil, fmt.Errorf("bank: band %v Hz: %w", fc, err)
		}
		bands = append(bands, Band{CutoffHz: fc, Coeffs: c})
	}

	sort.Slice(bands, func(i, j int) bool {
		return bands[i].CutoffHz < bands[j].CutoffHz
	})

	return &Bank{bands: bands, sampleRate: sampleRate, kind: kind}, nil
}

// NewLowpass builds a lowpass bank over cutoffs.
func NewLowpass(sampleRate float64, cutoffs []float64) (*Bank, error) {
	return New(KindLowpass, sampleRate, cutoffs)
}

// Sweep builds a bank over GenerateRange(minHz, maxHz, precision).
func Sweep(kind Kind, sampleRate, minHz, maxHz, precision float64) (*Bank, error) {
	cutoffs, err := GenerateRange(minHz, maxHz, precision)
	if err != nil {
		return nil, err
	}

	return New(kind, sampleRate, cutoffs)
}

// Bands returns all bands in the bank, ordered low to high cutoff.
func (b *Bank) Bands() []Band { return b.bands }

// NumBands returns the number of bands.
func (b *Bank) NumBands() int { return len(b.bands) }

// SampleRate returns the sample rate the bank was built for.
func (b *Bank) SampleRate() float64 { return b.sampleRate }

// Kind returns the response type of the bands.
func (b *Bank) Kind() Kind { return b.kind }

// Select returns the index of the band with the lowest cutoff at or above
// freqHz, falling back to the highest band.
func (b *Bank) Select(freqHz float64) (int, bool) {
	if len(b.bands) == 0 {
		return 0, false
	}

	i := sort.Search(len(b.bands), func(k int) bool {
		return b.bands[k].CutoffHz >= freqHz
	})
	if i == len(b.bands) {
		i--
	}

	return i, true
}

// Apply filters series through band i on fresh state.
func (b *Bank) Apply(i int, series []float64) ([]float64, error) {
	if i < 0 || i >= len(b.bands) {
		return nil, fmt.Errorf("bank: band index %d out of range [0, %d)", i, len(b.bands))
	}

	return biquad.Apply(b.bands[i].Coeffs, series)
}

// ProcessBlock filters series through every band.
// Returns a slice of per-band output blocks: result[band][sample].
func (b *Bank) ProcessBlock(series []float64) ([][]float64, error) {
	result := make([][]float64, len(b.bands))
	for i := range b.bands {
		out, err := b.Apply(i, series)
		if err != nil {
			return nil, err
		}
		result[i] = out
	}
	return result, nil
}
