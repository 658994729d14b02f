package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/rotospeed/dsp/filter/bank"
	"github.com/cwbudde/rotospeed/internal/config"
)

func runFreqlist(args []string, stdout, stderr io.Writer) (err error) {
	def := config.Default()
	fs, g := newFlagSet("freqlist", "freqlist [flags]", stderr)
	minHz := fs.Float64("min", def.Sweep.MinHz, "lower bound in Hz (exclusive)")
	maxHz := fs.Float64("max", def.Sweep.MaxHz, "upper bound in Hz")
	precision := fs.Float64("precision", def.Sweep.Precision, "relative step")
	at := fs.Float64("response", 0, "also print each lowpass band's gain in dB at this frequency")
	rate := fs.Float64("rate", def.Filter.SampleRate, "sample rate of the filter bank in Hz")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := g.open(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()

	set := setFlags(fs)
	if set["min"] {
		s.cfg.Sweep.MinHz = *minHz
	}
	if set["max"] {
		s.cfg.Sweep.MaxHz = *maxHz
	}
	if set["precision"] {
		s.cfg.Sweep.Precision = *precision
	}
	if set["rate"] {
		s.cfg.Filter.SampleRate = *rate
	}

	sw := s.cfg.Sweep
	freqs, err := bank.GenerateRange(sw.MinHz, sw.MaxHz, sw.Precision)
	if err != nil {
		return err
	}
	s.log.Debug("generated sweep", "bands", len(freqs))

	if *at <= 0 {
		for _, f := range freqs {
			fmt.Fprintln(stdout, f)
		}
		return nil
	}

	b, err := bank.NewLowpass(s.cfg.Filter.SampleRate, freqs)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "cutoff_hz\tgain_db\t\n")
	for _, band := range b.Bands() {
		fmt.Fprintf(tw, "%.0f\t%.2f\t\n", band.CutoffHz, band.MagnitudeDB(*at, b.SampleRate()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	return nil
}
