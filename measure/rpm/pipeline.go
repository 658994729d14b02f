package rpm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/filter/biquad"
	"github.com/cwbudde/rotospeed/dsp/filter/fir"
	"github.com/cwbudde/rotospeed/dsp/spectrum"
	"github.com/cwbudde/rotospeed/stats/level"
)

// Stage names one pipeline step.
type Stage string

const (
	StageDecimate Stage = "decimate"
	StageLowpass  Stage = "lowpass"
	StageHighpass Stage = "highpass"
	StageDetect   Stage = "detect"
)

// Observer receives pipeline progress. Implementations must be safe to call
// from the goroutine running [Run].
type Observer interface {
	ObserveStage(stage Stage, elapsed time.Duration)
	ObserveReport(report *spectrum.Report)
}

// Filters selects the biquad conditioning passes. Passes of 0 disable a
// stage.
type Filters struct {
	LowpassHz      float64
	LowpassPasses  int
	HighpassHz     float64
	HighpassPasses int
}

// Config describes one pipeline run.
type Config struct {
	// InputRate is the sample rate of the series handed to Run.
	InputRate float64
	// Decimation is 1 (or 0) for none, otherwise one of fir.SupportedScales.
	Decimation int

	// Passes of 0 disable a filter stage.
	LowpassHz      float64
	LowpassPasses  int
	HighpassHz     float64
	HighpassPasses int

	// Detector configures detection. Its SampleRate is replaced by the rate
	// after decimation.
	Detector spectrum.DetectorConfig

	Logger   *slog.Logger
	Observer Observer
}

// Measurement is the outcome of [Run].
type Measurement struct {
	// SampleRate is the rate the detector ran at.
	SampleRate float64
	// Conditioned is the series after decimation and filtering.
	Conditioned []float64
	// Level summarizes Conditioned. Its crossing frequency is a coarse
	// cross-check of the spectral result.
	Level level.Stats
	// Report holds per-frame results. It may be incomplete when Run
	// returns an error from the detect stage.
	Report *spectrum.Report
}

// Run conditions series and detects the rotational speed of every frame.
// On a frame failure the partial Measurement is returned with the error.
func Run(series []float64, cfg Config) (*Measurement, error) {
	if cfg.InputRate <= 0 || !core.IsFinite(cfg.InputRate) {
		return nil, fmt.Errorf("rpm: input rate %v: %w", cfg.InputRate, core.ErrInvalidFilterParameters)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	decimation := max(cfg.Decimation, 1)
	rate := cfg.InputRate / float64(decimation)
	data := series

	if decimation > 1 {
		var err error
		start := time.Now()
		data, err = fir.Decimate(data, decimation)
		if err != nil {
			return nil, fmt.Errorf("rpm: decimate: %w", err)
		}
		observeStage(log, cfg.Observer, StageDecimate, start, slog.Int("scale", decimation), slog.Int("samples", len(data)))
	}

	data, err := Condition(data, rate, cfg.filters(), log, cfg.Observer)
	if err != nil {
		return nil, err
	}

	lvl := level.Calculate(data)
	log.Debug("conditioned level",
		slog.Float64("dc", lvl.DC),
		slog.Float64("ac_rms", lvl.ACRMS),
		slog.Float64("crossing_hz", lvl.CrossingFrequency(rate)))

	dcfg := cfg.Detector
	dcfg.SampleRate = rate

	detector, err := spectrum.NewDetectorFromConfig(dcfg)
	if err != nil {
		return nil, fmt.Errorf("rpm: %w", err)
	}

	start := time.Now()
	report, err := detector.Detect(data)
	m := &Measurement{SampleRate: rate, Conditioned: data, Level: lvl, Report: report}

	if report != nil {
		observeStage(log, cfg.Observer, StageDetect, start,
			slog.Int("frames", len(report.Frames)),
			slog.Int("dropped", report.Dropped),
			slog.Bool("complete", report.Complete))
		if cfg.Observer != nil {
			cfg.Observer.ObserveReport(report)
		}
	}

	if err != nil {
		if report == nil {
			m = nil
		}
		return m, fmt.Errorf("rpm: detect: %w", err)
	}

	return m, nil
}

func (cfg *Config) filters() Filters {
	return Filters{
		LowpassHz:      cfg.LowpassHz,
		LowpassPasses:  cfg.LowpassPasses,
		HighpassHz:     cfg.HighpassHz,
		HighpassPasses: cfg.HighpassPasses,
	}
}

// Condition runs the lowpass passes, then the highpass passes, over series
// sampled at rate. log and obs may be nil. The input is not modified.
func Condition(series []float64, rate float64, f Filters, log *slog.Logger, obs Observer) ([]float64, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	data := series

	if f.LowpassPasses > 0 {
		var err error
		start := time.Now()
		data, err = filterPasses(biquad.DesignLowpass, data, rate, f.LowpassHz, f.LowpassPasses)
		if err != nil {
			return nil, fmt.Errorf("rpm: lowpass: %w", err)
		}
		observeStage(log, obs, StageLowpass, start, slog.Float64("cutoff_hz", f.LowpassHz), slog.Int("passes", f.LowpassPasses))
	}

	if f.HighpassPasses > 0 {
		var err error
		start := time.Now()
		data, err = filterPasses(biquad.DesignHighpass, data, rate, f.HighpassHz, f.HighpassPasses)
		if err != nil {
			return nil, fmt.Errorf("rpm: highpass: %w", err)
		}
		observeStage(log, obs, StageHighpass, start, slog.Float64("cutoff_hz", f.HighpassHz), slog.Int("passes", f.HighpassPasses))
	}

	return data, nil
}

type designFunc func(sampleRate, cutoff float64) (biquad.Coefficients, error)

func filterPasses(design designFunc, data []float64, rate, cutoff float64, passes int) ([]float64, error) {
	c, err := design(rate, cutoff)
	if err != nil {
		return nil, err
	}
	return biquad.Cascade(c, data, passes)
}

func observeStage(log *slog.Logger, obs Observer, stage Stage, start time.Time, attrs ...slog.Attr) {
	elapsed := time.Since(start)
	if obs != nil {
		obs.ObserveStage(stage, elapsed)
	}

	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("stage", string(stage)), slog.Duration("elapsed", elapsed))
	for _, a := range attrs {
		args = append(args, a)
	}
	log.Debug("pipeline stage done", args...)
}
