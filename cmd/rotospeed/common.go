package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/cwbudde/rotospeed/internal/config"
	"github.com/cwbudde/rotospeed/internal/metrics"
	"github.com/cwbudde/rotospeed/internal/sampleio"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config      string
	verbose     bool
	noColor     bool
	metricsFile string
}

func newFlagSet(name, synopsis string, stderr io.Writer) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	g := &globalFlags{}
	fs.StringVar(&g.config, "config", "", "TOML rig configuration file")
	fs.BoolVar(&g.verbose, "v", false, "verbose (debug) logging")
	fs.BoolVar(&g.noColor, "no-color", false, "disable colored log output")
	fs.StringVar(&g.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rotospeed %s\n\nFlags:\n", synopsis)
		fs.PrintDefaults()
	}

	return fs, g
}

// session carries the state of one command invocation.
type session struct {
	cfg         config.Config
	log         *slog.Logger
	rec         *metrics.Recorder
	metricsFile string
}

func (g *globalFlags) open(stderr io.Writer) (*session, error) {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}

	log := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    g.noColor,
	}))

	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, err
	}
	if g.config != "" {
		log.Debug("loaded configuration", "path", g.config)
	}

	return &session{cfg: cfg, log: log, rec: metrics.New(), metricsFile: g.metricsFile}, nil
}

func (s *session) read(path string) ([]float64, error) {
	series, err := sampleio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s.rec.AddSamplesRead(len(series))
	s.log.Debug("read samples", "path", path, "samples", len(series))

	return series, nil
}

func (s *session) write(path string, write func(io.Writer) error) error {
	if err := sampleio.WriteFile(path, write); err != nil {
		return err
	}
	s.log.Info("wrote", "path", path)
	return nil
}

// close exports metrics when requested. Commands defer it right after open,
// so failed and incomplete runs are still recorded.
func (s *session) close() error {
	if s.metricsFile == "" {
		return nil
	}

	if err := s.rec.WriteTextfile(s.metricsFile); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	s.log.Debug("wrote metrics", "path", s.metricsFile)

	return nil
}

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// inputFile returns the single positional argument.
func inputFile(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errors.New("expected exactly one input file")
	}
	return fs.Arg(0), nil
}

// outputPath appends ext to input unless override is set.
func outputPath(input, override, ext string) string {
	if override != "" {
		return override
	}
	return input + "." + ext
}
