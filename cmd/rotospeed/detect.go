package main

import (
	"errors"
	"io"

	"github.com/cwbudde/rotospeed/internal/config"
	"github.com/cwbudde/rotospeed/internal/sampleio"
	"github.com/cwbudde/rotospeed/measure/rpm"
)

type detectFlags struct {
	sampling       int
	frame          int
	scale          int
	lowpass        float64
	lowpassPasses  int
	highpass       float64
	highpassPasses int
	ignore         float64
	minPeak        float64
	ppr            float64
	workers        int
	backend        string
	format         string
	out            string
}

func runDetect(args []string, _, stderr io.Writer) (err error) {
	def := config.Default()
	fs, g := newFlagSet("detect", "detect [flags] file", stderr)

	var f detectFlags
	fs.IntVar(&f.sampling, "s", int(def.Detector.SampleRate), "sampling frequency of the input in Hz")
	fs.IntVar(&f.frame, "frame", def.Detector.FrameSize, "FFT frame size (power of two)")
	fs.IntVar(&f.scale, "scale", def.Detector.Decimation, "decimate before detection (1, 2, 3, 4 or 8)")
	fs.Float64Var(&f.lowpass, "lp", def.Detector.LowpassHz, "lowpass cutoff in Hz")
	fs.IntVar(&f.lowpassPasses, "lp-passes", def.Detector.LowpassPasses, "lowpass passes (0 disables)")
	fs.Float64Var(&f.highpass, "hp", def.Detector.HighpassHz, "highpass cutoff in Hz")
	fs.IntVar(&f.highpassPasses, "hp-passes", def.Detector.HighpassPasses, "highpass passes (0 disables)")
	fs.Float64Var(&f.ignore, "ignore", def.Detector.IgnoreBandHz, "low band excluded from the peak search in Hz")
	fs.Float64Var(&f.minPeak, "min-peak", def.Detector.MinPeak, "minimum peak magnitude")
	fs.Float64Var(&f.ppr, "ppr", def.Detector.PulsesPerRevolution, "sensor pulses per revolution")
	fs.IntVar(&f.workers, "workers", def.Detector.Workers, "concurrent frames (0 = all CPUs)")
	fs.StringVar(&f.backend, "backend", def.Detector.Backend, "FFT backend: algofft, gonum or godsp")
	fs.StringVar(&f.format, "format", def.Output.Format, "output format: text or csv")
	fs.StringVar(&f.out, "o", "", "output file (default <file>.detect)")

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

	format, err := sampleio.ParseDetectionFormat(s.cfg.Output.Format)
	if err != nil {
		return err
	}

	series, err := s.read(input)
	if err != nil {
		return err
	}

	d := s.cfg.Detector
	m, runErr := rpm.Run(series, rpm.Config{
		InputRate:      d.SampleRate,
		Decimation:     d.Decimation,
		LowpassHz:      d.LowpassHz,
		LowpassPasses:  d.LowpassPasses,
		HighpassHz:     d.HighpassHz,
		HighpassPasses: d.HighpassPasses,
		Detector:       s.cfg.DetectorConfig(nil),
		Logger:         s.log,
		Observer:       s.rec,
	})
	if m == nil {
		return runErr
	}

	gated := 0
	for _, r := range m.Report.Frames {
		if r.Gated {
			gated++
		}
	}
	s.log.Info("detected",
		"frames", len(m.Report.Frames),
		"gated", gated,
		"dropped", m.Report.Dropped,
		"rate", m.SampleRate,
		"crossing_hz", m.Level.CrossingFrequency(m.SampleRate),
		"complete", m.Report.Complete)

	path := outputPath(input, f.out, "detect")
	writeErr := s.write(path, func(w io.Writer) error {
		return sampleio.WriteDetections(w, m.Report.Frames, format)
	})

	return errors.Join(runErr, writeErr)
}

// apply copies flags given on the command line over cfg and revalidates.
func (f *detectFlags) apply(cfg *config.Config, set map[string]bool) error {
	d := &cfg.Detector

	if set["s"] {
		d.SampleRate = float64(f.sampling)
	}
	if set["frame"] {
		d.FrameSize = f.frame
	}
	if set["scale"] {
		d.Decimation = f.scale
	}
	if set["lp"] {
		d.LowpassHz = f.lowpass
		if !set["lp-passes"] && d.LowpassPasses == 0 {
			d.LowpassPasses = 1
		}
	}
	if set["lp-passes"] {
		d.LowpassPasses = f.lowpassPasses
	}
	if set["hp"] {
		d.HighpassHz = f.highpass
		if !set["hp-passes"] && d.HighpassPasses == 0 {
			d.HighpassPasses = 1
		}
	}
	if set["hp-passes"] {
		d.HighpassPasses = f.highpassPasses
	}
	if set["ignore"] {
		d.IgnoreBandHz = f.ignore
	}
	if set["min-peak"] {
		d.MinPeak = f.minPeak
	}
	if set["ppr"] {
		d.PulsesPerRevolution = f.ppr
	}
	if set["workers"] {
		d.Workers = f.workers
	}
	if set["backend"] {
		d.Backend = f.backend
	}
	if set["format"] {
		cfg.Output.Format = f.format
	}

	return cfg.Validate()
}
