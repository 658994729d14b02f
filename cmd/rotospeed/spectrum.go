package main

import (
	"errors"
	"io"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/fft"
	"github.com/cwbudde/rotospeed/dsp/spectrum"
	"github.com/cwbudde/rotospeed/dsp/window"
	"github.com/cwbudde/rotospeed/internal/sampleio"
)

func runSpectrum(args []string, _, stderr io.Writer) (err error) {
	fs, g := newFlagSet("spectrum", "spectrum -p points [flags] file", stderr)
	points := fs.Int("p", 0, "number of FFT points (required)")
	offset := fs.Int("offset", 0, "first sample of the window")
	keepDC := fs.Bool("keep-dc", false, "keep bin 0 instead of zeroing it")
	win := fs.String("window", "", "taper: rectangular, hann, hamming, blackman, flat-top or kaiser")
	backend := fs.String("backend", "", "FFT backend: algofft, gonum or godsp (default from config)")
	out := fs.String("o", "", "output file (default <file>.spectre)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := inputFile(fs)
	if err != nil {
		return err
	}

	if *points == 0 {
		fs.Usage()
		return errors.New("-p is required")
	}

	s, err := g.open(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()

	name := s.cfg.Detector.Backend
	if *backend != "" {
		name = *backend
	}
	b, err := fft.ParseBackend(name)
	if err != nil {
		return err
	}
	factory, err := fft.NewFactory(b)
	if err != nil {
		return err
	}

	taper, err := window.ParseType(*win)
	if err != nil {
		return err
	}

	series, err := s.read(input)
	if err != nil {
		return err
	}

	mag, err := spectrum.Compute(series, spectrum.SpectrumConfig{
		Size:      *points,
		Offset:    *offset,
		ZeroDC:    !*keepDC,
		Window:    taper,
		Transform: factory,
	})
	if err != nil {
		return err
	}

	for i, v := range mag {
		mag[i] = core.RoundHalfUp(v)
	}

	return s.write(outputPath(input, *out, "spectre"), func(w io.Writer) error {
		return sampleio.WriteSeries(w, mag, sampleio.Shortest)
	})
}
