package main

import (
	"errors"
	"io"

	"github.com/cwbudde/rotospeed/dsp/spectrum"
	"github.com/cwbudde/rotospeed/internal/config"
	"github.com/cwbudde/rotospeed/internal/sampleio"
	"github.com/cwbudde/rotospeed/measure/rpm"
)

type filterFlags struct {
	rate           float64
	lowpass        float64
	lowpassPasses  int
	highpass       float64
	highpassPasses int
	size           int
	offset         int
	decimals       int
	period         bool
}

func runFilter(args []string, _, stderr io.Writer) (err error) {
	def := config.Default()
	fs, g := newFlagSet("filter", "filter [flags] file", stderr)

	var f filterFlags
	fs.Float64Var(&f.rate, "rate", def.Filter.SampleRate, "sampling frequency of the input in Hz")
	fs.Float64Var(&f.lowpass, "lp", def.Filter.LowpassHz, "lowpass cutoff in Hz")
	fs.IntVar(&f.lowpassPasses, "lp-passes", def.Filter.LowpassPasses, "lowpass passes (0 disables)")
	fs.Float64Var(&f.highpass, "hp", def.Filter.HighpassHz, "highpass cutoff in Hz")
	fs.IntVar(&f.highpassPasses, "hp-passes", def.Filter.HighpassPasses, "highpass passes (0 disables)")
	fs.IntVar(&f.size, "spectrum-size", def.Filter.SpectrumSize, "points of the quick-look spectrum")
	fs.IntVar(&f.offset, "spectrum-offset", def.Filter.SpectrumOffset, "first sample of the quick-look spectrum")
	fs.IntVar(&f.decimals, "decimals", def.Output.Decimals, "decimals of written values")
	fs.BoolVar(&f.period, "period", false, "write '.' instead of ',' as decimal separator")

	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := inputFile(fs)
	if err != nil {
		return err
	}

	s, err := g.open(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()

	if err := f.apply(&s.cfg, setFlags(fs)); err != nil {
		return err
	}

	series, err := s.read(input)
	if err != nil {
		return err
	}

	fc := s.cfg.Filter
	filtered, err := rpm.Condition(series, fc.SampleRate, rpm.Filters{
		LowpassHz:      fc.LowpassHz,
		LowpassPasses:  fc.LowpassPasses,
		HighpassHz:     fc.HighpassHz,
		HighpassPasses: fc.HighpassPasses,
	}, s.log, s.rec)
	if err != nil {
		return err
	}

	format := s.cfg.SeriesFormat()
	if err := s.write(outputPath(input, "", "filtered"), func(w io.Writer) error {
		return sampleio.WriteSeries(w, filtered, format)
	}); err != nil {
		return err
	}

	mag, err := spectrum.Compute(filtered, spectrum.SpectrumConfig{
		Size:   fc.SpectrumSize,
		Offset: fc.SpectrumOffset,
		Mode:   spectrum.ModeRealAbs,
	})
	if err != nil {
		s.log.Warn("skipping spectrum", "err", err)
		return nil
	}

	return s.write(outputPath(input, "", "spectrum"), func(w io.Writer) error {
		return sampleio.WriteSeries(w, mag, format)
	})
}

func (f *filterFlags) apply(cfg *config.Config, set map[string]bool) error {
	fc := &cfg.Filter

	if set["rate"] {
		fc.SampleRate = f.rate
	}
	if set["lp"] {
		fc.LowpassHz = f.lowpass
	}
	if set["lp-passes"] {
		fc.LowpassPasses = f.lowpassPasses
	}
	if set["hp"] {
		fc.HighpassHz = f.highpass
		if !set["hp-passes"] && fc.HighpassPasses == 0 {
			fc.HighpassPasses = 1
		}
	}
	if set["hp-passes"] {
		fc.HighpassPasses = f.highpassPasses
	}
	if set["spectrum-size"] {
		fc.SpectrumSize = f.size
	}
	if set["spectrum-offset"] {
		fc.SpectrumOffset = f.offset
	}
	if set["decimals"] {
		cfg.Output.Decimals = f.decimals
	}
	if set["period"] {
		cfg.Output.DecimalComma = !f.period
	}

	return cfg.Validate()
}
