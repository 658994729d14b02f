package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/fft"
	"github.com/cwbudde/rotospeed/dsp/filter/fir"
	"github.com/cwbudde/rotospeed/dsp/window"
	"github.com/cwbudde/rotospeed/internal/testutil"
)

func TestCompute_RawMagnitude(t *testing.T) {
	series := testutil.BinTone(5, 64, 0.3, 64)

	mag, err := Compute(series, SpectrumConfig{Size: 64})
	if err != nil {
		t.Fatal(err)
	}

	if len(mag) != 64 {
		t.Fatalf("len = %d, want 64", len(mag))
	}

	// 0.3 * 64 / 2 = 9.6 stays unrounded.
	if math.Abs(mag[5]-9.6) > 1e-9 || math.Abs(mag[59]-9.6) > 1e-9 {
		t.Fatalf("mag[5]=%v mag[59]=%v, want 9.6", mag[5], mag[59])
	}
}

func TestCompute_ZeroDCAndOffset(t *testing.T) {
	series := append(testutil.DeterministicNoise(4, 1e6, 100), testutil.DC(10, 64)...)

	mag, err := Compute(series, SpectrumConfig{Size: 64, Offset: 100})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mag[0]-640) > 1e-9 {
		t.Fatalf("DC bin = %v, want 640", mag[0])
	}

	mag, err = Compute(series, SpectrumConfig{Size: 64, Offset: 100, ZeroDC: true})
	if err != nil {
		t.Fatal(err)
	}
	if mag[0] != 0 {
		t.Fatalf("DC bin = %v, want 0", mag[0])
	}
}

func TestCompute_RealAbs(t *testing.T) {
	// A sine puts its energy in the imaginary part only.
	series := testutil.DeterministicSine(5, 64, 1, 64)

	mag, _ := Compute(series, SpectrumConfig{Size: 64})
	abs, err := Compute(series, SpectrumConfig{Size: 64, Mode: ModeRealAbs})
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(mag[5]-32) > 1e-9 || abs[5] > 1e-9 {
		t.Fatalf("magnitude %v, |re| %v; want 32 and 0", mag[5], abs[5])
	}

	if _, err := Compute(series, SpectrumConfig{Size: 64, Mode: Mode(5)}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCompute_Errors(t *testing.T) {
	series := make([]float64, 100)

	if _, err := Compute(series, SpectrumConfig{Size: 64, Offset: 40}); !errors.Is(err, core.ErrInsufficientSamples) {
		t.Fatalf("err = %v", err)
	}

	if _, err := Compute(series, SpectrumConfig{Size: 1}); err == nil {
		t.Fatal("expected size error")
	}

	if _, err := Compute(series, SpectrumConfig{Size: 8, Offset: -1}); err == nil {
		t.Fatal("expected offset error")
	}

	series[3] = math.Inf(1)
	if _, err := Compute(series, SpectrumConfig{Size: 8}); !errors.Is(err, core.ErrMalformedSample) {
		t.Fatalf("err = %v", err)
	}
}

func TestCompute_BackendsAgree(t *testing.T) {
	series := testutil.DeterministicNoise(8, 100, 512)

	ref, err := Compute(series, SpectrumConfig{Size: 512})
	if err != nil {
		t.Fatal(err)
	}

	got, err := Compute(series, SpectrumConfig{Size: 512, Transform: fft.NewGonum})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, got, ref, 1e-7)
}

func TestCompute_DecimatedToneKeepsLocation(t *testing.T) {
	const (
		inputRate = 32768.0
		toneHz    = 1000.0
		size      = 1024
	)

	raw := testutil.Add(
		testutil.DeterministicSine(toneHz, inputRate, 2000, 8192),
		testutil.DC(2048, 8192),
	)

	decimated, err := fir.Decimate(raw, 2)
	if err != nil {
		t.Fatal(err)
	}

	mag, err := Compute(decimated, SpectrumConfig{Size: size, ZeroDC: true})
	if err != nil {
		t.Fatal(err)
	}

	bin, _ := PeakBin(mag, 1, size/2)
	want := toneHz / Resolution(inputRate/2, size)
	if math.Abs(float64(bin)-want) > 1 {
		t.Fatalf("peak bin %d, want %.1f within one bin", bin, want)
	}
}

func TestCompute_HannWindow(t *testing.T) {
	series := testutil.BinTone(5, 64, 1, 64)
	orig := append([]float64(nil), series...)

	mag, err := Compute(series, SpectrumConfig{Size: 64, Window: window.TypeHann})
	if err != nil {
		t.Fatal(err)
	}

	// A periodic Hann halves the bin-centered peak and spreads a quarter of
	// the unwindowed magnitude into each neighbor.
	want := map[int]float64{4: 8, 5: 16, 6: 8, 10: 0}
	for bin, v := range want {
		if math.Abs(mag[bin]-v) > 1e-9 {
			t.Fatalf("mag[%d] = %v, want %v", bin, mag[bin], v)
		}
	}

	testutil.RequireSliceNearlyEqual(t, series, orig, 0)
}
