package spectrum

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/rotospeed/dsp/core"
	"github.com/cwbudde/rotospeed/dsp/fft"
)

// Speed-sensor rig defaults.
const (
	// DefaultIgnoreBandHz is the low-frequency band excluded from the peak
	// search (mains hum and drift).
	DefaultIgnoreBandHz = 500.0

	// DefaultMinPeak is the smallest rounded bin magnitude accepted as a
	// rotational signal.
	DefaultMinPeak = 168014.0 / 2

	// DefaultPulsesPerRevolution is the number of sensor pulses per shaft
	// revolution on the bench rig.
	DefaultPulsesPerRevolution = 8.0
)

// ErrInvalidConfig reports an unusable detector configuration.
var ErrInvalidConfig = errors.New("spectrum: invalid detector configuration")

// Result is the speed estimate of one frame.
type Result struct {
	// FrequencyHz is the dominant frequency, or 0 when the frame was gated.
	FrequencyHz float64
	// PeakMagnitude is the rounded magnitude of the dominant bin. It is
	// reported even when the frame was gated.
	PeakMagnitude float64
	// RPM is FrequencyHz / PulsesPerRevolution * 60.
	RPM float64
	// Bin is the index of the dominant bin.
	Bin int
	// Gated is true when PeakMagnitude fell below the minimum peak.
	Gated bool
}

// Report is the outcome of [Detector.Detect].
type Report struct {
	// Frames holds one Result per analyzed frame, in frame order. When
	// Complete is false it holds the frames finished before the first
	// failing one.
	Frames []Result
	// Complete is false when analysis stopped on an error.
	Complete bool
	// Dropped is the number of trailing samples shorter than a frame.
	Dropped int
}

// FrameError reports the frame on which detection failed.
type FrameError struct {
	Index  int
	Offset int
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("spectrum: frame %d (sample %d): %v", e.Index, e.Offset, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// DetectorConfig holds the speed-detection parameters.
type DetectorConfig struct {
	SampleRate          float64
	FrameSize           int
	IgnoreBandHz        float64
	MinPeak             float64
	PulsesPerRevolution float64
	// Workers bounds concurrent frame analysis. 0 uses GOMAXPROCS.
	Workers   int
	Transform fft.Factory
}

// DetectorOption mutates a DetectorConfig.
type DetectorOption func(*DetectorConfig)

// DefaultDetectorConfig returns the bench rig configuration.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		SampleRate:          core.DefaultSampleRate,
		FrameSize:           core.DefaultFrameSize,
		IgnoreBandHz:        DefaultIgnoreBandHz,
		MinPeak:             DefaultMinPeak,
		PulsesPerRevolution: DefaultPulsesPerRevolution,
		Transform:           fft.NewAlgoFFT,
	}
}

// WithProcessorConfig copies sample rate and frame size from a shared config.
func WithProcessorConfig(pc core.ProcessorConfig) DetectorOption {
	return func(cfg *DetectorConfig) {
		cfg.SampleRate = pc.SampleRate
		cfg.FrameSize = pc.FrameSize
	}
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) DetectorOption {
	return func(cfg *DetectorConfig) { cfg.SampleRate = sampleRate }
}

// WithFrameSize sets the frame (and transform) length.
func WithFrameSize(n int) DetectorOption {
	return func(cfg *DetectorConfig) { cfg.FrameSize = n }
}

// WithIgnoreBand sets the low-frequency band excluded from the peak search.
func WithIgnoreBand(hz float64) DetectorOption {
	return func(cfg *DetectorConfig) { cfg.IgnoreBandHz = hz }
}

// WithMinPeak sets the noise gate threshold.
func WithMinPeak(peak float64) DetectorOption {
	return func(cfg *DetectorConfig) { cfg.MinPeak = peak }
}

// WithPulsesPerRevolution sets the sensor pulses per shaft revolution.
func WithPulsesPerRevolution(n float64) DetectorOption {
	return func(cfg *DetectorConfig) { cfg.PulsesPerRevolution = n }
}

// WithWorkers bounds concurrent frame analysis.
func WithWorkers(n int) DetectorOption {
	return func(cfg *DetectorConfig) { cfg.Workers = n }
}

// WithTransform selects the forward transform backend.
func WithTransform(f fft.Factory) DetectorOption {
	return func(cfg *DetectorConfig) {
		if f != nil {
			cfg.Transform = f
		}
	}
}

// Detector estimates rotational speed frame by frame. It holds no
// per-series state and is safe for concurrent use.
type Detector struct {
	cfg        DetectorConfig
	resolution float64
	skip       int
}

// NewDetector validates the configuration and returns a Detector.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	cfg := DefaultDetectorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return NewDetectorFromConfig(cfg)
}

// NewDetectorFromConfig validates cfg and returns a Detector.
func NewDetectorFromConfig(cfg DetectorConfig) (*Detector, error) {
	if cfg.SampleRate <= 0 || !core.IsFinite(cfg.SampleRate) {
		return nil, fmt.Errorf("%w: sample rate %v", ErrInvalidConfig, cfg.SampleRate)
	}

	if cfg.FrameSize < 4 || !core.IsPowerOfTwo(cfg.FrameSize) {
		return nil, fmt.Errorf("%w: frame size %d is not a power of two >= 4", ErrInvalidConfig, cfg.FrameSize)
	}

	if cfg.IgnoreBandHz < 0 || !core.IsFinite(cfg.IgnoreBandHz) {
		return nil, fmt.Errorf("%w: ignore band %v Hz", ErrInvalidConfig, cfg.IgnoreBandHz)
	}

	if cfg.MinPeak < 0 || math.IsNaN(cfg.MinPeak) {
		return nil, fmt.Errorf("%w: minimum peak %v", ErrInvalidConfig, cfg.MinPeak)
	}

	if cfg.PulsesPerRevolution <= 0 || !core.IsFinite(cfg.PulsesPerRevolution) {
		return nil, fmt.Errorf("%w: pulses per revolution %v", ErrInvalidConfig, cfg.PulsesPerRevolution)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers %d", ErrInvalidConfig, cfg.Workers)
	}

	if cfg.Transform == nil {
		cfg.Transform = fft.NewAlgoFFT
	}

	resolution := Resolution(cfg.SampleRate, cfg.FrameSize)
	skip := int(math.Ceil(cfg.IgnoreBandHz/resolution)) + 1

	if skip >= cfg.FrameSize/2 {
		return nil, fmt.Errorf("%w: ignore band %v Hz leaves no bins below Nyquist", ErrInvalidConfig, cfg.IgnoreBandHz)
	}

	return &Detector{cfg: cfg, resolution: resolution, skip: skip}, nil
}

// Detect is a one-shot helper around [NewDetector] and [Detector.Detect].
func Detect(series []float64, sampleRate float64, frameSize int, opts ...DetectorOption) (*Report, error) {
	opts = append([]DetectorOption{WithSampleRate(sampleRate), WithFrameSize(frameSize)}, opts...)

	d, err := NewDetector(opts...)
	if err != nil {
		return nil, err
	}

	return d.Detect(series)
}

// Config returns the validated configuration.
func (d *Detector) Config() DetectorConfig { return d.cfg }

// Resolution returns the bin spacing in Hz.
func (d *Detector) Resolution() float64 { return d.resolution }

// FirstBin returns the lowest bin included in the peak search.
func (d *Detector) FirstBin() int { return d.skip }

// Detect analyzes every whole frame of series. Frames advance by exactly
// FrameSize samples; the trailing remainder is dropped. On a frame failure
// the returned Report is incomplete and the error is a [*FrameError].
func (d *Detector) Detect(series []float64) (*Report, error) {
	n := d.cfg.FrameSize
	if len(series) < n {
		return nil, fmt.Errorf("spectrum: %d samples, frame needs %d: %w", len(series), n, core.ErrInsufficientSamples)
	}

	frames := len(series) / n
	report := &Report{Dropped: len(series) - frames*n}

	workers := d.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, frames)

	analyzers := make([]*frameAnalyzer, workers)
	for i := range analyzers {
		a, err := d.newFrameAnalyzer()
		if err != nil {
			return report, err
		}
		analyzers[i] = a
	}

	results := make([]Result, frames)
	done := make([]bool, frames)

	var err error
	if workers == 1 {
		err = d.detectSequential(series, analyzers[0], results, done)
	} else {
		err = d.detectParallel(series, analyzers, results, done)
	}

	prefix := 0
	for prefix < frames && done[prefix] {
		prefix++
	}

	report.Frames = results[:prefix]
	report.Complete = err == nil

	return report, err
}

func (d *Detector) detectSequential(series []float64, a *frameAnalyzer, results []Result, done []bool) error {
	n := d.cfg.FrameSize
	for idx := range results {
		r, err := a.analyze(series[idx*n : (idx+1)*n])
		if err != nil {
			return &FrameError{Index: idx, Offset: idx * n, Err: err}
		}
		results[idx] = r
		done[idx] = true
	}
	return nil
}

func (d *Detector) detectParallel(series []float64, analyzers []*frameAnalyzer, results []Result, done []bool) error {
	n := d.cfg.FrameSize
	g, ctx := errgroup.WithContext(context.Background())
	jobs := make(chan int)

	for _, a := range analyzers {
		g.Go(func() error {
			for idx := range jobs {
				r, err := a.analyze(series[idx*n : (idx+1)*n])
				if err != nil {
					return &FrameError{Index: idx, Offset: idx * n, Err: err}
				}
				// Each index is handed to exactly one worker.
				results[idx] = r
				done[idx] = true
			}
			return nil
		})
	}

feed:
	for idx := range results {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)

	return g.Wait()
}

// frameAnalyzer owns one transformer and its scratch buffers.
type frameAnalyzer struct {
	d           *Detector
	tr          fft.Transformer
	re, im, mag []float64
}

func (d *Detector) newFrameAnalyzer() (*frameAnalyzer, error) {
	n := d.cfg.FrameSize

	tr, err := d.cfg.Transform(n)
	if err != nil {
		return nil, fmt.Errorf("spectrum: transform for %d points: %w", n, err)
	}

	if tr.Size() != n {
		return nil, fmt.Errorf("spectrum: transform size %d, want %d", tr.Size(), n)
	}

	return &frameAnalyzer{
		d:   d,
		tr:  tr,
		re:  make([]float64, n),
		im:  make([]float64, n),
		mag: make([]float64, n),
	}, nil
}

func (a *frameAnalyzer) analyze(frame []float64) (Result, error) {
	for i, v := range frame {
		if !core.IsFinite(v) {
			return Result{}, fmt.Errorf("sample %d is %v: %w", i, v, core.ErrMalformedSample)
		}
	}

	if err := a.tr.Forward(a.re, a.im, frame); err != nil {
		return Result{}, err
	}

	MagnitudeFromParts(a.mag, a.re, a.im)
	RoundMagnitudes(a.mag)

	cfg := a.d.cfg
	bin, peak := PeakBin(a.mag, a.d.skip, cfg.FrameSize/2)

	r := Result{
		FrequencyHz:   float64(bin) * a.d.resolution,
		PeakMagnitude: peak,
		Bin:           bin,
	}

	if peak < cfg.MinPeak {
		r.FrequencyHz = 0
		r.Gated = true
	}

	r.RPM = r.FrequencyHz / cfg.PulsesPerRevolution * 60

	return r, nil
}
