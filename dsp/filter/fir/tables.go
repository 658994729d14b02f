package fir

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/window"
)

// Decimation table targets. For a ratio s the new Nyquist edge is 0.5/s
// (normalized to the input rate); the passband ends at 7/8 of it, the
// cutoff sits at the new Nyquist (passband edge * 8/7) and the stopband
// starts at 9/8 of it, so nothing folds back into the passband.
const (
	stopbandAttenuationDB = 60.0
	passbandFraction      = 7.0 / 8.0
)

var supportedScales = []int{2, 3, 4, 8}

var (
	tablesOnce sync.Once
	tables     map[int]*Filter
)

// SupportedScales returns the decimation ratios that have a table.
func SupportedScales() []int {
	return append([]int(nil), supportedScales...)
}

// Table returns a copy of the low-pass coefficient table for scale.
func Table(scale int) ([]float64, error) {
	f, err := Lookup(scale)
	if err != nil {
		return nil, err
	}

	return f.Coefficients(), nil
}

// Taps returns the table length for scale.
func Taps(scale int) (int, error) {
	f, err := Lookup(scale)
	if err != nil {
		return 0, err
	}

	return f.Taps(), nil
}

// Lookup returns the shared table for scale.
func Lookup(scale int) (*Filter, error) {
	tablesOnce.Do(buildTables)

	f, ok := tables[scale]
	if !ok {
		return nil, fmt.Errorf("fir: no table for scale %d (supported %v): %w",
			scale, supportedScales, core.ErrUnsupportedScale)
	}

	return f, nil
}

func buildTables() {
	tables = make(map[int]*Filter, len(supportedScales))
	for _, s := range supportedScales {
		tables[s] = New(designDecimationTable(s), s)
	}
}

// designDecimationTable returns a Kaiser-windowed sinc low-pass with unity
// DC gain. Length and beta follow Kaiser's empirical formulas for the
// attenuation target; the length is forced odd for a symmetric center tap.
func designDecimationTable(scale int) []float64 {
	nyquist := 0.5 / float64(scale)
	fp := nyquist * passbandFraction
	fst := 2*nyquist - fp
	fc := nyquist

	n := int(math.Ceil((stopbandAttenuationDB-7.95)/(2.285*2*math.Pi*(fst-fp)))) + 1
	if n%2 == 0 {
		n++
	}

	kaiser, err := window.Kaiser(n, window.KaiserBeta(stopbandAttenuationDB))
	if err != nil {
		panic(fmt.Sprintf("fir: kaiser window for scale %d: %v", scale, err))
	}

	taps := make([]float64, n)
	center := 0.5 * float64(n-1)

	var sum float64
	for i := range n {
		t := float64(i) - center
		taps[i] = 2 * fc * sinc(2*fc*t) * kaiser[i]
		sum += taps[i]
	}

	for i := range taps {
		taps[i] /= sum
	}

	return taps
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}
