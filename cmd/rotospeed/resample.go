package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/rotospeed/dsp/filter/fir"
	"github.com/cwbudde/rotospeed/internal/sampleio"
	"github.com/cwbudde/rotospeed/measure/rpm"
)

func runResample(args []string, _, stderr io.Writer) (err error) {
	fs, g := newFlagSet("resample", "resample -s {2,3,4,8} [flags] file", stderr)
	scale := fs.Int("s", 0, fmt.Sprintf("decimation ratio, one of %v (required)", fir.SupportedScales()))
	out := fs.String("o", "", "output file (default <file>.resampled)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := inputFile(fs)
	if err != nil {
		return err
	}

	if *scale == 0 {
		fs.Usage()
		return errors.New("-s is required")
	}

	s, err := g.open(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()

	series, err := s.read(input)
	if err != nil {
		return err
	}

	start := time.Now()
	resampled, err := fir.Decimate(series, *scale)
	if err != nil {
		return err
	}
	s.rec.ObserveStage(rpm.StageDecimate, time.Since(start))

	table, err := fir.Lookup(*scale)
	if err != nil {
		return err
	}
	s.log.Debug("decimated",
		"scale", *scale,
		"in", len(series),
		"out", len(resampled),
		"taps", table.Taps(),
		"nyquist_db", table.OutputNyquistDB(),
		"stopband_db", table.StopbandDB(256))

	return s.write(outputPath(input, *out, "resampled"), func(w io.Writer) error {
		return sampleio.WriteSeries(w, resampled, sampleio.Shortest)
	})
}
